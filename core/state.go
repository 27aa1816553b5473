package core

import (
	"time"
)

// Phase identifies one stage of the research workflow.
type Phase string

// Workflow phases. Editing is an auxiliary stage: it participates in the
// quality loop but is never recorded as a completed phase and contributes
// nothing to the completion percentage.
const (
	PhaseInit             Phase = "init"
	PhaseResearchPlanning Phase = "research_planning"
	PhaseDataCollection   Phase = "data_collection"
	PhaseAnalysis         Phase = "analysis"
	PhaseQualityAssurance Phase = "quality_assurance"
	PhaseEditing          Phase = "editing"
	PhaseReportGeneration Phase = "report_generation"
	PhaseDone             Phase = "done"
	PhaseFailed           Phase = "failed"
)

// CountablePhases is the number of phases that contribute to the completion
// percentage: research planning, data collection, analysis, quality
// assurance and report generation. Each completed phase adds 20%.
const CountablePhases = 5

// Progress tracks the monotonically growing completion record of a run.
// PhasesCompleted never loses entries, even across analysis/QA retries.
type Progress struct {
	CurrentPhase         Phase      `json:"current_phase"`
	CompletionPercentage int        `json:"completion_percentage"`
	PhasesCompleted      []Phase    `json:"phases_completed"`
	StartTime            time.Time  `json:"start_time"`
	CompletedAt          *time.Time `json:"completed_at,omitempty"`
}

// WorkflowState is the single mutable record threaded through all phases of
// one run. It is exclusively owned by that run: phases and agents execute
// strictly sequentially, so no internal locking is needed, and no two runs
// ever share a state instance.
//
// Every field is plain structured data (maps, slices, strings, numbers) so
// the state can be serialized for session persistence and restored later.
type WorkflowState struct {
	ResearchTopic   string         `json:"research_topic"`
	CurrentPhase    Phase          `json:"current_phase"`
	AgentOutputs    Outputs        `json:"agent_outputs"`
	CompletedAgents []string       `json:"completed_agents"`
	Requirements    map[string]any `json:"requirements"`
	UserSources     map[string]any `json:"user_sources"`
	Progress        Progress       `json:"progress"`
	Errors          []string       `json:"errors"`
	QARetryCount    int            `json:"qa_retry_count"`
}

// NewWorkflowState initializes the state for a fresh run. The topic is
// immutable afterwards and requirements are read-only configuration.
func NewWorkflowState(topic string, requirements map[string]any) *WorkflowState {
	if requirements == nil {
		requirements = map[string]any{}
	}
	return &WorkflowState{
		ResearchTopic:   topic,
		CurrentPhase:    PhaseInit,
		AgentOutputs:    Outputs{},
		CompletedAgents: []string{},
		Requirements:    requirements,
		UserSources:     map[string]any{},
		Progress: Progress{
			CurrentPhase:         PhaseInit,
			CompletionPercentage: 0,
			PhasesCompleted:      []Phase{},
			StartTime:            time.Now().UTC(),
		},
		Errors: []string{},
	}
}

// EnterPhase records the phase currently executing in both the state and its
// progress record.
func (s *WorkflowState) EnterPhase(p Phase) {
	s.CurrentPhase = p
	s.Progress.CurrentPhase = p
}

// RecordError appends an error message. The error list is append-only and is
// never cleared; its length drives the phase-specific abort thresholds.
func (s *WorkflowState) RecordError(msg string) {
	s.Errors = append(s.Errors, msg)
}

// AppendOutput adds a result to the named agent's output list.
func (s *WorkflowState) AppendOutput(name string, r Result) {
	s.AgentOutputs[name] = append(s.AgentOutputs[name], r)
}

// ReplaceOutput discards the named agent's previous output list and records
// the given result as its only entry. Rerunning phases use this so a retry
// reflects only the fresh attempt.
func (s *WorkflowState) ReplaceOutput(name string, r Result) {
	s.AgentOutputs[name] = []Result{r}
}

// MarkAgentCompleted appends the agent to the completion list. The list is
// set-like: marking an already completed agent is a no-op, so a phase retry
// cannot record duplicates.
func (s *WorkflowState) MarkAgentCompleted(name string) {
	if s.AgentCompleted(name) {
		return
	}
	s.CompletedAgents = append(s.CompletedAgents, name)
}

// ResetAgents removes the named agents from the completion list so a phase
// retry reflects only the agents that succeed in the fresh attempt. Agents
// not listed are left untouched.
func (s *WorkflowState) ResetAgents(names ...string) {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	kept := s.CompletedAgents[:0]
	for _, n := range s.CompletedAgents {
		if !drop[n] {
			kept = append(kept, n)
		}
	}
	s.CompletedAgents = kept
}

// AgentCompleted reports whether the agent is in the completion list.
func (s *WorkflowState) AgentCompleted(name string) bool {
	for _, n := range s.CompletedAgents {
		if n == name {
			return true
		}
	}
	return false
}

// MarkPhaseCompleted records the phase as completed at most once and
// recomputes the coarse completion percentage (20% per countable phase).
// The idempotent append keeps PhasesCompleted stable across phase retries.
func (s *WorkflowState) MarkPhaseCompleted(p Phase) {
	for _, done := range s.Progress.PhasesCompleted {
		if done == p {
			s.recomputePercentage()
			return
		}
	}
	s.Progress.PhasesCompleted = append(s.Progress.PhasesCompleted, p)
	s.recomputePercentage()
}

func (s *WorkflowState) recomputePercentage() {
	pct := len(s.Progress.PhasesCompleted) * (100 / CountablePhases)
	if pct > 100 {
		pct = 100
	}
	s.Progress.CompletionPercentage = pct
}

// IncrementQARetry bumps the quality-assurance retry counter and returns the
// new value. The quality-assurance phase executor is the only caller; the
// transition predicate reads the counter but never writes it.
func (s *WorkflowState) IncrementQARetry() int {
	s.QARetryCount++
	return s.QARetryCount
}

// Clone returns a deep copy of the state safe for independent mutation, used
// when persisting snapshots between phases.
func (s *WorkflowState) Clone() *WorkflowState {
	clone := &WorkflowState{
		ResearchTopic:   s.ResearchTopic,
		CurrentPhase:    s.CurrentPhase,
		AgentOutputs:    s.AgentOutputs.Clone(),
		CompletedAgents: append([]string{}, s.CompletedAgents...),
		Requirements:    cloneMap(s.Requirements),
		UserSources:     cloneMap(s.UserSources),
		Progress: Progress{
			CurrentPhase:         s.Progress.CurrentPhase,
			CompletionPercentage: s.Progress.CompletionPercentage,
			PhasesCompleted:      append([]Phase{}, s.Progress.PhasesCompleted...),
			StartTime:            s.Progress.StartTime,
		},
		Errors:       append([]string{}, s.Errors...),
		QARetryCount: s.QARetryCount,
	}
	if s.Progress.CompletedAt != nil {
		t := *s.Progress.CompletedAt
		clone.Progress.CompletedAt = &t
	}
	return clone
}

func cloneMap(m map[string]any) map[string]any {
	clone := make(map[string]any, len(m))
	for k, v := range m {
		clone[k] = v
	}
	return clone
}
