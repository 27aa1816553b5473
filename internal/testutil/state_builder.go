package testutil

import (
	"github.com/hupe1980/researchmesh/core"
)

// StateBuilder provides a fluent helper for constructing workflow states in
// tests. Example:
//
//	state := NewStateBuilder("Topic").
//		Output(core.AgentPeerReview, map[string]any{"quality_score": 4.0}).
//		Errors(2).
//		Build()
//
// Chain only the parts you need; sensible defaults are applied.
type StateBuilder struct {
	state *core.WorkflowState
}

// NewStateBuilder creates a builder around a fresh state for the topic.
func NewStateBuilder(topic string) *StateBuilder {
	return &StateBuilder{state: core.NewWorkflowState(topic, nil)}
}

// Requirement sets one requirements entry (chainable).
func (b *StateBuilder) Requirement(key string, val any) *StateBuilder {
	b.state.Requirements[key] = val
	return b
}

// Output appends a result with the given data for the named agent and marks
// it completed (chainable).
func (b *StateBuilder) Output(name string, data map[string]any) *StateBuilder {
	b.state.AppendOutput(name, core.NewResult(data))
	b.state.MarkAgentCompleted(name)
	return b
}

// Errors appends n placeholder error messages (chainable).
func (b *StateBuilder) Errors(n int) *StateBuilder {
	for i := 0; i < n; i++ {
		b.state.RecordError("test error")
	}
	return b
}

// QARetries sets the quality-gate retry counter (chainable).
func (b *StateBuilder) QARetries(n int) *StateBuilder {
	b.state.QARetryCount = n
	return b
}

// Phase records the current phase (chainable).
func (b *StateBuilder) Phase(p core.Phase) *StateBuilder {
	b.state.EnterPhase(p)
	return b
}

// Build returns the assembled state.
func (b *StateBuilder) Build() *core.WorkflowState {
	return b.state
}
