package agent

import (
	"context"
	"testing"

	"github.com/hupe1980/researchmesh/core"
	"github.com/hupe1980/researchmesh/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultScorer(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    float64
	}{
		{"plain score line", "Quality Score: 8.5/10\nSolid work.", 8.5},
		{"lowercase with equals", "overall score = 4", 4},
		{"score without label prefix", "Score: 6.0", 6.0},
		{"no score defaults", "Looks fine to me.", 7.0},
		{"clamped above ten", "Quality Score: 15", 10},
		{"integer score", "quality score: 3", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultScorer(tt.content))
		})
	}
}

func TestExtractSection(t *testing.T) {
	content := `The review follows.

Weaknesses:
- thin evidence base
- missing counterarguments

Recommendations:
- add primary sources
* tighten the argument

Closing remarks.`

	assert.Equal(t, []string{"thin evidence base", "missing counterarguments"}, extractSection(content, "weakness", 5))
	assert.Equal(t, []string{"add primary sources", "tighten the argument"}, extractSection(content, "recommendation", 6))
	assert.Equal(t, []string{"thin evidence base"}, extractSection(content, "weakness", 1))
	assert.Empty(t, extractSection(content, "violation", 10))
}

func TestPeerReviewAgentScoresReview(t *testing.T) {
	llm := model.NewMockModel("mock", "mock")
	llm.SetFallback(`Quality Score: 4.5/10

Weaknesses:
- unsupported claims

Recommendations:
- cite primary literature`)

	a := NewPeerReviewAgent(llm)
	assert.Equal(t, core.AgentPeerReview, a.Name())

	result, err := a.Process(context.Background(), core.Request{Topic: "Topic", Task: "review"})
	require.NoError(t, err)

	score, ok := result.Float("quality_score")
	require.True(t, ok)
	assert.Equal(t, 4.5, score)
	assert.Equal(t, []string{"unsupported claims"}, result.Strings("weaknesses"))
	assert.Equal(t, []string{"cite primary literature"}, result.Strings("recommendations"))
}

func TestPeerReviewAgentCustomScorer(t *testing.T) {
	llm := model.NewMockModel("mock", "mock")
	a := NewPeerReviewAgent(llm, func(o *PeerReviewOptions) {
		o.Scorer = func(string) float64 { return 2.5 }
	})

	result, err := a.Process(context.Background(), core.Request{Topic: "Topic", Task: "review"})
	require.NoError(t, err)

	score, ok := result.Float("quality_score")
	require.True(t, ok)
	assert.Equal(t, 2.5, score)
}

func TestComplianceCheckAgentExtractsViolations(t *testing.T) {
	llm := model.NewMockModel("mock", "mock")
	llm.SetFallback(`Violations:
- informal tone in results section`)

	a := NewComplianceCheckAgent(llm)
	result, err := a.Process(context.Background(), core.Request{Topic: "Topic", Task: "check"})
	require.NoError(t, err)

	assert.Equal(t, []string{"informal tone in results section"}, result.Strings("violations"))
}
