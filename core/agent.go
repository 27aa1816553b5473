package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Canonical agent identifiers. Phase executors run agents under these names
// and transition predicates check them as phase-completion evidence.
const (
	AgentDomainAnalysis       = "domain_analysis"
	AgentLiteratureSurvey     = "literature_survey"
	AgentResearchQuestions    = "research_questions"
	AgentQuantitativeAnalysis = "quantitative_analysis"
	AgentQualitativeAnalysis  = "qualitative_analysis"
	AgentSynthesis            = "synthesis"
	AgentPeerReview           = "peer_review"
	AgentCitationVerification = "citation_verification"
	AgentComplianceCheck      = "compliance_check"
	AgentSectionWriter        = "section_writer"
	AgentCoherenceCheck       = "coherence_check"
	AgentFinalAssembly        = "final_assembly"
	AgentEditor               = "editor"
)

// ReportSections lists the report sections in their canonical order. The
// report generation phase writes them one by one and final assembly joins
// them in this order, tolerating gaps.
var ReportSections = []string{
	"introduction",
	"literature_review",
	"methodology",
	"results",
	"discussion",
	"conclusion",
}

// ErrAgentNotRegistered is returned by Registry.Get for unknown agent names.
var ErrAgentNotRegistered = errors.New("agent not registered")

// Request carries the inputs for a single agent invocation.
//
// PriorOutputs is a read-only view of everything earlier agents have
// produced; agents must not mutate it. Context carries phase-supplied side
// data such as user sources or the report section to write.
type Request struct {
	Topic        string
	Task         string
	PriorOutputs Outputs
	Context      map[string]any
}

// Agent is the uniform contract every phase-step agent implements.
//
// Process consumes the topic and task plus prior outputs and returns a
// structured Result containing at least a timestamp. Implementations must
// never mutate the request; failures are reported through the error return
// and recovered by the phase executor, not the agent.
type Agent interface {
	Name() string
	Process(ctx context.Context, req Request) (Result, error)
}

// Registry resolves agents by name. The workflow engine addresses agents
// exclusively through the registry so any implementation satisfying the
// Agent contract can be substituted, including test doubles.
type Registry struct {
	mu     sync.RWMutex
	agents map[string]Agent
}

// NewRegistry creates an empty agent registry.
func NewRegistry() *Registry {
	return &Registry{agents: map[string]Agent{}}
}

// Register adds an agent under its own name, replacing any previous entry.
func (r *Registry) Register(agents ...Agent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range agents {
		r.agents[a.Name()] = a
	}
}

// Get returns the agent registered under name.
func (r *Registry) Get(name string) (Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.agents[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAgentNotRegistered, name)
	}
	return a, nil
}

// Names returns the sorted names of all registered agents.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.agents))
	for n := range r.agents {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
