package agent

import (
	"context"
	"testing"

	"github.com/hupe1980/researchmesh/core"
	"github.com/hupe1980/researchmesh/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEditorWithoutFeedbackSignalsNoAction(t *testing.T) {
	llm := model.NewMockModel("mock", "mock")
	a := NewEditorAgent(llm)
	assert.Equal(t, core.AgentEditor, a.Name())

	result, err := a.Process(context.Background(), core.Request{
		Topic:        "Topic",
		PriorOutputs: core.Outputs{},
	})
	require.NoError(t, err)

	action, _ := result.String("edit_action")
	assert.Equal(t, EditActionNoAction, action)
}

func TestEditorRevisesPresentAnalyses(t *testing.T) {
	llm := model.NewMockModel("mock", "mock")
	llm.SetFallback("revised text")

	outputs := core.Outputs{
		core.AgentPeerReview: {core.NewResult(map[string]any{
			"quality_score": 4.0,
			"weaknesses":    []string{"thin evidence"},
		})},
		core.AgentQuantitativeAnalysis: {core.NewResult(map[string]any{"analysis": "numbers"})},
		core.AgentSynthesis:            {core.NewResult(map[string]any{"integrated_findings": "draft"})},
		// qualitative analysis intentionally absent
	}

	a := NewEditorAgent(llm)
	result, err := a.Process(context.Background(), core.Request{Topic: "Topic", PriorOutputs: outputs})
	require.NoError(t, err)

	action, _ := result.String("edit_action")
	assert.Equal(t, EditActionRevised, action)

	revised, ok := result.Data["revised_sections"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "revised text", revised[core.AgentQuantitativeAnalysis])
	assert.Equal(t, "revised text", revised[core.AgentSynthesis])
	assert.NotContains(t, revised, core.AgentQualitativeAnalysis)

	issues, ok := result.Float("issues_addressed")
	require.True(t, ok)
	assert.Equal(t, 1.0, issues)
}

func TestEditorPropagatesModelFailure(t *testing.T) {
	llm := model.NewMockModel("mock", "mock")
	llm.FailWith(assert.AnError)

	outputs := core.Outputs{
		core.AgentComplianceCheck: {core.NewResult(map[string]any{
			"violations": []string{"informal tone"},
		})},
		core.AgentSynthesis: {core.NewResult(map[string]any{"integrated_findings": "draft"})},
	}

	a := NewEditorAgent(llm)
	_, err := a.Process(context.Background(), core.Request{Topic: "Topic", PriorOutputs: outputs})
	assert.Error(t, err)
}
