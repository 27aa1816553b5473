package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hupe1980/researchmesh/core"
	"github.com/hupe1980/researchmesh/logging"
	"github.com/hupe1980/researchmesh/session"
)

// Status is the terminal outcome of a run.
type Status string

const (
	// StatusCompleted marks a run that finished report generation without
	// any recorded errors.
	StatusCompleted Status = "completed"
	// StatusCompletedWithErrors marks a run that produced a report despite
	// recorded agent errors, or that was ended early by an error threshold.
	StatusCompletedWithErrors Status = "completed_with_errors"
	// StatusFailed marks a run aborted by a panic or cancellation.
	StatusFailed Status = "failed"
)

// Result is the final outcome handed back to the caller, a read-only
// projection of the workflow state at termination.
type Result struct {
	RunID           string         `json:"run_id"`
	Status          Status         `json:"status"`
	ResearchTopic   string         `json:"research_topic"`
	AgentOutputs    core.Outputs   `json:"agent_outputs"`
	Progress        core.Progress  `json:"progress"`
	Errors          []string       `json:"errors"`
	CompletedAgents []string       `json:"completed_agents"`
	Requirements    map[string]any `json:"requirements"`
}

// ProgressCallback is notified after every phase with the phase that just ran
// and the current completion percentage. Callbacks are strictly fire and
// forget: a panicking callback is logged and never affects the run.
type ProgressCallback func(phase core.Phase, completion int)

// SourceProvider supplies user sources for the data collection phase.
type SourceProvider interface {
	Collect(ctx context.Context, topic string) (map[string]any, error)
}

// StaticSources is a SourceProvider serving a fixed source map, typically
// documents the user uploaded before starting the run.
type StaticSources map[string]any

// Collect implements SourceProvider.
func (s StaticSources) Collect(_ context.Context, _ string) (map[string]any, error) {
	return s, nil
}

// Options configures a Supervisor.
type Options struct {
	// Logger receives the engine's structured log output.
	Logger logging.Logger
	// Sources supplies user sources during data collection.
	Sources SourceProvider
	// Store, when set, receives a state snapshot after every phase.
	Store session.Store
	// ProgressCallback, when set, is notified after every phase.
	ProgressCallback ProgressCallback
	// QualityThreshold is the peer-review score below which the quality
	// gate diverts into editing.
	QualityThreshold float64
	// MaxQARetries bounds how many editing loops a run may take.
	MaxQARetries int
}

// Supervisor owns the research workflow: it sequences the phases, applies the
// transition predicates between them and carries the shared state through the
// run. A Supervisor is stateless across runs and safe to reuse.
type Supervisor struct {
	registry         *core.Registry
	logger           logging.Logger
	sources          SourceProvider
	store            session.Store
	callback         ProgressCallback
	qualityThreshold float64
	maxQARetries     int
}

// NewSupervisor creates a Supervisor over the given agent registry.
func NewSupervisor(registry *core.Registry, optFns ...func(o *Options)) *Supervisor {
	opts := Options{
		Logger:           logging.NoOpLogger{},
		Sources:          StaticSources{},
		QualityThreshold: DefaultQualityThreshold,
		MaxQARetries:     DefaultMaxQARetries,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.Sources == nil {
		opts.Sources = StaticSources{}
	}

	return &Supervisor{
		registry:         registry,
		logger:           opts.Logger,
		sources:          opts.Sources,
		store:            opts.Store,
		callback:         opts.ProgressCallback,
		qualityThreshold: opts.QualityThreshold,
		maxQARetries:     opts.MaxQARetries,
	}
}

// Run executes the full research workflow for the topic and returns the
// terminal result. Requirements carries the run configuration visible to
// agents (question depth, citation style, audience and so on); nil is fine.
//
// Run never panics: an agent or callback panic is contained, and a panic in
// the engine itself yields a failed result. Cancelling the context stops the
// run at the next phase boundary with a failed result.
func (sup *Supervisor) Run(ctx context.Context, topic string, requirements map[string]any) (result *Result, err error) {
	if topic == "" {
		return nil, errors.New("research topic must not be empty")
	}

	runID := uuid.NewString()
	state := core.NewWorkflowState(topic, requirements)

	sup.logger.Info("Starting research workflow", "run_id", runID, "topic", topic)

	defer func() {
		if r := recover(); r != nil {
			sup.logger.Error("Workflow panicked", "run_id", runID, "panic", r)
			state.RecordError(fmt.Sprintf("workflow panic: %v", r))
			state.EnterPhase(core.PhaseFailed)
			result, err = sup.terminalResult(runID, state, StatusFailed), nil
		}
	}()

	phase := core.PhaseResearchPlanning
	for {
		if ctxErr := ctx.Err(); ctxErr != nil {
			state.RecordError(fmt.Sprintf("workflow cancelled: %v", ctxErr))
			state.EnterPhase(core.PhaseFailed)
			return sup.terminalResult(runID, state, StatusFailed), nil
		}

		switch phase {
		case core.PhaseResearchPlanning:
			sup.runResearchPlanning(ctx, state)
			sup.afterPhase(runID, state)
			switch decideAfterResearchPlanning(state) {
			case DecisionContinue:
				phase = core.PhaseDataCollection
			case DecisionEnd:
				return sup.finish(runID, state), nil
			default:
				// retry: stay on research planning
			}

		case core.PhaseDataCollection:
			sup.runDataCollection(ctx, state)
			sup.afterPhase(runID, state)
			if decideAfterDataCollection(state) == DecisionEnd {
				return sup.finish(runID, state), nil
			}
			phase = core.PhaseAnalysis

		case core.PhaseAnalysis:
			sup.runAnalysis(ctx, state)
			sup.afterPhase(runID, state)
			switch decideAfterAnalysis(state) {
			case DecisionContinue:
				phase = core.PhaseQualityAssurance
			case DecisionEnd:
				return sup.finish(runID, state), nil
			default:
				// retry: stay on analysis
			}

		case core.PhaseQualityAssurance:
			sup.runQualityAssurance(ctx, state)
			sup.afterPhase(runID, state)
			switch decideAfterQualityAssurance(state, sup.qualityThreshold, sup.maxQARetries) {
			case DecisionEdit:
				phase = core.PhaseEditing
			case DecisionEnd:
				return sup.finish(runID, state), nil
			default:
				phase = core.PhaseReportGeneration
			}

		case core.PhaseEditing:
			sup.runEditing(ctx, state)
			sup.afterPhase(runID, state)
			// editing always loops back into a fresh analysis pass
			phase = core.PhaseAnalysis

		case core.PhaseReportGeneration:
			sup.runReportGeneration(ctx, state)
			sup.afterPhase(runID, state)
			return sup.finish(runID, state), nil

		default:
			return nil, fmt.Errorf("unknown workflow phase: %s", phase)
		}
	}
}

// afterPhase emits the progress callback and persists a state snapshot. Both
// are best-effort; neither can fail or stall the run.
func (sup *Supervisor) afterPhase(runID string, state *core.WorkflowState) {
	sup.notify(state.Progress.CurrentPhase, state.Progress.CompletionPercentage)

	if sup.store == nil {
		return
	}
	if err := sup.store.Save(runID, state); err != nil {
		sup.logger.Warn("Failed to persist state snapshot", "run_id", runID, "error", err)
	}
}

func (sup *Supervisor) notify(phase core.Phase, completion int) {
	if sup.callback == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			sup.logger.Warn("Progress callback panicked", "phase", phase, "panic", r)
		}
	}()
	sup.callback(phase, completion)
}

// finish closes out a run that terminated through a transition decision,
// deriving the status from the recorded errors.
func (sup *Supervisor) finish(runID string, state *core.WorkflowState) *Result {
	state.EnterPhase(core.PhaseDone)

	status := StatusCompleted
	if len(state.Errors) > 0 {
		status = StatusCompletedWithErrors
	}

	sup.logger.Info("Research workflow finished",
		"run_id", runID,
		"status", string(status),
		"completion", state.Progress.CompletionPercentage,
		"errors", len(state.Errors),
	)

	return sup.terminalResult(runID, state, status)
}

// terminalResult projects the state into a Result decoupled from the engine's
// mutable copy.
func (sup *Supervisor) terminalResult(runID string, state *core.WorkflowState, status Status) *Result {
	snapshot := state.Clone()
	return &Result{
		RunID:           runID,
		Status:          status,
		ResearchTopic:   snapshot.ResearchTopic,
		AgentOutputs:    snapshot.AgentOutputs,
		Progress:        snapshot.Progress,
		Errors:          snapshot.Errors,
		CompletedAgents: snapshot.CompletedAgents,
		Requirements:    snapshot.Requirements,
	}
}

// FinalReport extracts the assembled report text from the result, with
// ok=false when the run ended before final assembly.
func (r *Result) FinalReport() (string, bool) {
	assembly, ok := r.AgentOutputs.Latest(core.AgentFinalAssembly)
	if !ok {
		return "", false
	}
	return assembly.String("final_report")
}
