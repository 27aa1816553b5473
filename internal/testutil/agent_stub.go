package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/researchmesh/core"
)

// StubAgent is a scriptable core.Agent test double. By default it returns a
// minimal result carrying its own name; FailTimes makes the first n
// invocations fail, which drives retry paths in workflow tests.
type StubAgent struct {
	mu        sync.Mutex
	name      string
	data      map[string]any
	failTimes int
	calls     int
}

// NewStubAgent creates a stub answering with {"content": "<name> output"}.
func NewStubAgent(name string) *StubAgent {
	return &StubAgent{name: name, data: map[string]any{"content": name + " output"}}
}

// WithData replaces the result data returned on success (chainable).
func (a *StubAgent) WithData(data map[string]any) *StubAgent {
	a.data = data
	return a
}

// FailTimes makes the first n invocations return an error (chainable).
func (a *StubAgent) FailTimes(n int) *StubAgent {
	a.failTimes = n
	return a
}

// Name implements core.Agent.
func (a *StubAgent) Name() string { return a.name }

// Calls reports how often Process has been invoked.
func (a *StubAgent) Calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

// Process implements core.Agent.
func (a *StubAgent) Process(_ context.Context, _ core.Request) (core.Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	if a.calls <= a.failTimes {
		return core.Result{}, fmt.Errorf("stub %s failure %d", a.name, a.calls)
	}
	data := make(map[string]any, len(a.data))
	for k, v := range a.data {
		data[k] = v
	}
	return core.NewResult(data), nil
}

// Roster registers a stub for every canonical agent name and returns the
// registry plus the stubs keyed by name, for per-agent scripting.
func Roster() (*core.Registry, map[string]*StubAgent) {
	registry := core.NewRegistry()
	stubs := map[string]*StubAgent{}
	for _, name := range []string{
		core.AgentDomainAnalysis,
		core.AgentLiteratureSurvey,
		core.AgentResearchQuestions,
		core.AgentQuantitativeAnalysis,
		core.AgentQualitativeAnalysis,
		core.AgentSynthesis,
		core.AgentPeerReview,
		core.AgentCitationVerification,
		core.AgentComplianceCheck,
		core.AgentSectionWriter,
		core.AgentCoherenceCheck,
		core.AgentFinalAssembly,
		core.AgentEditor,
	} {
		stub := NewStubAgent(name)
		registry.Register(stub)
		stubs[name] = stub
	}
	return registry, stubs
}
