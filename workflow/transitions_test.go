package workflow

import (
	"testing"

	"github.com/hupe1980/researchmesh/core"
	"github.com/hupe1980/researchmesh/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func planningState(errors int, withOutputs bool) *core.WorkflowState {
	b := testutil.NewStateBuilder("Topic").Errors(errors)
	if withOutputs {
		for _, name := range researchPlanningAgents {
			b.Output(name, map[string]any{"content": "ok"})
		}
	}
	return b.Build()
}

func analysisState(errors int, withOutputs bool) *core.WorkflowState {
	b := testutil.NewStateBuilder("Topic").Errors(errors)
	if withOutputs {
		for _, name := range analysisAgents {
			b.Output(name, map[string]any{"content": "ok"})
		}
	}
	return b.Build()
}

func TestDecideAfterResearchPlanning(t *testing.T) {
	tests := []struct {
		name        string
		errors      int
		withOutputs bool
		want        Decision
	}{
		{"complete at the error limit", researchPlanningErrorLimit, true, DecisionContinue},
		{"over the error limit", researchPlanningErrorLimit + 1, true, DecisionEnd},
		{"over the limit and incomplete", researchPlanningErrorLimit + 1, false, DecisionEnd},
		{"incomplete within the limit", researchPlanningErrorLimit, false, DecisionRetry},
		{"incomplete without errors", 0, false, DecisionRetry},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, decideAfterResearchPlanning(planningState(tt.errors, tt.withOutputs)))
		})
	}
}

func TestDecideAfterDataCollection(t *testing.T) {
	assert.Equal(t, DecisionContinue, decideAfterDataCollection(planningState(dataCollectionErrorLimit, true)))
	assert.Equal(t, DecisionEnd, decideAfterDataCollection(planningState(dataCollectionErrorLimit+1, true)))
}

func TestDecideAfterAnalysis(t *testing.T) {
	tests := []struct {
		name        string
		errors      int
		withOutputs bool
		want        Decision
	}{
		{"complete at the error limit", analysisErrorLimit, true, DecisionContinue},
		{"over the error limit", analysisErrorLimit + 1, true, DecisionEnd},
		{"incomplete within the limit", analysisErrorLimit, false, DecisionRetry},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, decideAfterAnalysis(analysisState(tt.errors, tt.withOutputs)))
		})
	}
}

func TestDecideAfterQualityAssurance(t *testing.T) {
	tests := []struct {
		name    string
		errors  int
		score   float64
		retries int
		want    Decision
	}{
		{"passing score continues", 0, 8.0, 0, DecisionContinue},
		{"score at the threshold continues", 0, 6.0, 0, DecisionContinue},
		{"failing score diverts to editing", 0, 5.9, 0, DecisionEdit},
		{"failing score with budget left", 0, 2.0, 2, DecisionEdit},
		{"exhausted budget forces continue", 0, 2.0, 3, DecisionContinue},
		{"budget beyond the cap still continues", 0, 2.0, 4, DecisionContinue},
		{"error budget dominates a passing score", qualityAssuranceErrorLimit + 1, 9.0, 0, DecisionEnd},
		{"error budget dominates an exhausted retry budget", qualityAssuranceErrorLimit + 1, 2.0, 3, DecisionEnd},
		{"errors at the limit continue", qualityAssuranceErrorLimit, 8.0, 0, DecisionContinue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := testutil.NewStateBuilder("Topic").
				Errors(tt.errors).
				Output(core.AgentPeerReview, map[string]any{"quality_score": tt.score}).
				QARetries(tt.retries).
				Build()
			assert.Equal(t, tt.want, decideAfterQualityAssurance(state, DefaultQualityThreshold, DefaultMaxQARetries))
		})
	}
}

func TestQualityScoreFallsBackWithoutReview(t *testing.T) {
	// a missing or unscored review must never trap the run in editing
	state := testutil.NewStateBuilder("Topic").Build()
	assert.Equal(t, defaultQualityScore, qualityScore(state))
	assert.Equal(t, DecisionContinue, decideAfterQualityAssurance(state, DefaultQualityThreshold, DefaultMaxQARetries))

	unscored := testutil.NewStateBuilder("Topic").
		Output(core.AgentPeerReview, map[string]any{"weaknesses": []string{"vague"}}).
		Build()
	assert.Equal(t, defaultQualityScore, qualityScore(unscored))
}
