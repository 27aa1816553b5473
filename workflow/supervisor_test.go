package workflow

import (
	"context"
	"fmt"
	"testing"

	"github.com/hupe1980/researchmesh/core"
	"github.com/hupe1980/researchmesh/internal/testutil"
	"github.com/hupe1980/researchmesh/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunHappyPath(t *testing.T) {
	registry, stubs := testutil.Roster()
	stubs[core.AgentPeerReview].WithData(map[string]any{"quality_score": 8.5})
	stubs[core.AgentFinalAssembly].WithData(map[string]any{"final_report": "# Report"})

	var notifications []int
	store := session.NewInMemoryStore()

	sup := NewSupervisor(registry, func(o *Options) {
		o.Store = store
		o.ProgressCallback = func(_ core.Phase, completion int) {
			notifications = append(notifications, completion)
		}
	})

	result, err := sup.Run(context.Background(), "Quantum Error Correction", map[string]any{"citation_style": "APA"})
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, result.Status)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 100, result.Progress.CompletionPercentage)
	require.NotNil(t, result.Progress.CompletedAt)

	// all five countable phases exactly once, in order
	assert.Equal(t, []core.Phase{
		core.PhaseResearchPlanning,
		core.PhaseDataCollection,
		core.PhaseAnalysis,
		core.PhaseQualityAssurance,
		core.PhaseReportGeneration,
	}, result.Progress.PhasesCompleted)

	// a passing score never touches the editing loop
	assert.Zero(t, stubs[core.AgentEditor].Calls())

	// one section-writer call per report section
	assert.Equal(t, len(core.ReportSections), stubs[core.AgentSectionWriter].Calls())

	report, ok := result.FinalReport()
	require.True(t, ok)
	assert.Equal(t, "# Report", report)

	// callback fired after every phase with non-decreasing completion
	require.NotEmpty(t, notifications)
	for i := 1; i < len(notifications); i++ {
		assert.GreaterOrEqual(t, notifications[i], notifications[i-1])
	}
	assert.Equal(t, 100, notifications[len(notifications)-1])

	// snapshots were persisted under the run ID
	ids, err := store.List()
	require.NoError(t, err)
	require.Equal(t, []string{result.RunID}, ids)
	snapshot, err := store.Load(result.RunID)
	require.NoError(t, err)
	assert.Equal(t, 100, snapshot.Progress.CompletionPercentage)
}

func TestRunQualityLoopExhaustsRetryBudget(t *testing.T) {
	registry, stubs := testutil.Roster()
	// the review never passes, so the run must ship after the retry budget
	stubs[core.AgentPeerReview].WithData(map[string]any{"quality_score": 4.0})

	store := session.NewInMemoryStore()
	sup := NewSupervisor(registry, func(o *Options) {
		o.Store = store
	})

	result, err := sup.Run(context.Background(), "Grid-Scale Batteries", nil)
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, result.Status)
	assert.Equal(t, 100, result.Progress.CompletionPercentage)

	// three failing QA passes, two editing loops between them
	assert.Equal(t, 3, stubs[core.AgentPeerReview].Calls())
	assert.Equal(t, 2, stubs[core.AgentEditor].Calls())
	assert.Equal(t, 3, stubs[core.AgentQuantitativeAnalysis].Calls())

	// phases completed stays capped and duplicate-free across the loops
	assert.Len(t, result.Progress.PhasesCompleted, core.CountablePhases)
	seen := map[core.Phase]bool{}
	for _, p := range result.Progress.PhasesCompleted {
		assert.False(t, seen[p], "phase %s recorded twice", p)
		seen[p] = true
	}
	assert.NotContains(t, result.Progress.PhasesCompleted, core.PhaseEditing)

	// the counter stops at the budget
	snapshot, err := store.Load(result.RunID)
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxQARetries, snapshot.QARetryCount)

	// rerunnable phases replace outputs, so each analysis agent holds one entry
	assert.Len(t, result.AgentOutputs[core.AgentSynthesis], 1)
}

func TestRunEndsWhenPlanningErrorsExceedLimit(t *testing.T) {
	registry, stubs := testutil.Roster()
	for _, name := range researchPlanningAgents {
		stubs[name].FailTimes(100)
	}

	sup := NewSupervisor(registry)
	result, err := sup.Run(context.Background(), "Doomed Topic", nil)
	require.NoError(t, err)

	assert.Equal(t, StatusCompletedWithErrors, result.Status)
	assert.Nil(t, result.Progress.CompletedAt)
	assert.Less(t, result.Progress.CompletionPercentage, 100)

	// first pass records 3 errors (at the limit, retry), second pass 6 (end)
	assert.Len(t, result.Errors, 6)
	assert.Equal(t, 2, stubs[core.AgentDomainAnalysis].Calls())
	assert.Zero(t, stubs[core.AgentQuantitativeAnalysis].Calls())
}

func TestRunRetriesResearchPlanningOnce(t *testing.T) {
	registry, stubs := testutil.Roster()
	stubs[core.AgentPeerReview].WithData(map[string]any{"quality_score": 9.0})
	stubs[core.AgentDomainAnalysis].FailTimes(1)

	sup := NewSupervisor(registry)
	result, err := sup.Run(context.Background(), "Topic", nil)
	require.NoError(t, err)

	assert.Equal(t, StatusCompletedWithErrors, result.Status)
	assert.Equal(t, 100, result.Progress.CompletionPercentage)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], core.AgentDomainAnalysis)

	// the whole planning team reruns on retry
	assert.Equal(t, 2, stubs[core.AgentDomainAnalysis].Calls())
	assert.Equal(t, 2, stubs[core.AgentLiteratureSurvey].Calls())
}

func TestRunAnalysisRetryReplacesOutputs(t *testing.T) {
	registry, stubs := testutil.Roster()
	stubs[core.AgentPeerReview].WithData(map[string]any{"quality_score": 9.0})
	stubs[core.AgentQuantitativeAnalysis].FailTimes(1)

	sup := NewSupervisor(registry)
	result, err := sup.Run(context.Background(), "Topic", nil)
	require.NoError(t, err)

	assert.Equal(t, StatusCompletedWithErrors, result.Status)
	assert.Equal(t, 2, stubs[core.AgentQualitativeAnalysis].Calls())

	// the error names both the phase and the failing agent
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Analysis")
	assert.Contains(t, result.Errors[0], core.AgentQuantitativeAnalysis)

	// replace semantics: the retried phase leaves exactly one entry per agent
	assert.Len(t, result.AgentOutputs[core.AgentQualitativeAnalysis], 1)
	assert.Len(t, result.AgentOutputs[core.AgentSynthesis], 1)

	// completion marks were reset between attempts, no duplicates
	count := 0
	for _, name := range result.CompletedAgents {
		if name == core.AgentQualitativeAnalysis {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestRunAgentPanicIsRecorded(t *testing.T) {
	registry, stubs := testutil.Roster()
	stubs[core.AgentPeerReview].WithData(map[string]any{"quality_score": 9.0})
	registry.Register(panicAgent{name: core.AgentComplianceCheck})

	sup := NewSupervisor(registry)
	result, err := sup.Run(context.Background(), "Topic", nil)
	require.NoError(t, err)

	assert.Equal(t, StatusCompletedWithErrors, result.Status)
	assert.Equal(t, 100, result.Progress.CompletionPercentage)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "panicked")
	assert.Contains(t, result.Errors[0], core.AgentComplianceCheck)
}

func TestRunCallbackPanicIsContained(t *testing.T) {
	registry, stubs := testutil.Roster()
	stubs[core.AgentPeerReview].WithData(map[string]any{"quality_score": 9.0})

	sup := NewSupervisor(registry, func(o *Options) {
		o.ProgressCallback = func(core.Phase, int) { panic("observer bug") }
	})

	result, err := sup.Run(context.Background(), "Topic", nil)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, result.Status)
}

func TestRunRejectsEmptyTopic(t *testing.T) {
	registry, _ := testutil.Roster()
	sup := NewSupervisor(registry)

	_, err := sup.Run(context.Background(), "", nil)
	assert.Error(t, err)
}

func TestRunCancelledContext(t *testing.T) {
	registry, _ := testutil.Roster()
	sup := NewSupervisor(registry)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := sup.Run(ctx, "Topic", nil)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, result.Status)
	assert.Equal(t, core.PhaseFailed, result.Progress.CurrentPhase)
}

func TestRunCollectsUserSources(t *testing.T) {
	registry, stubs := testutil.Roster()
	stubs[core.AgentPeerReview].WithData(map[string]any{"quality_score": 9.0})

	store := session.NewInMemoryStore()
	sup := NewSupervisor(registry, func(o *Options) {
		o.Sources = StaticSources{"paper.pdf": map[string]any{"pages": 12}}
		o.Store = store
	})

	result, err := sup.Run(context.Background(), "Topic", nil)
	require.NoError(t, err)

	snapshot, err := store.Load(result.RunID)
	require.NoError(t, err)
	assert.Contains(t, snapshot.UserSources, "paper.pdf")
}

func TestRunSourceProviderFailureIsNonFatal(t *testing.T) {
	registry, stubs := testutil.Roster()
	stubs[core.AgentPeerReview].WithData(map[string]any{"quality_score": 9.0})

	sup := NewSupervisor(registry, func(o *Options) {
		o.Sources = failingSources{}
	})

	result, err := sup.Run(context.Background(), "Topic", nil)
	require.NoError(t, err)

	assert.Equal(t, StatusCompletedWithErrors, result.Status)
	assert.Equal(t, 100, result.Progress.CompletionPercentage)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Data collection")
}

func TestRunEditingAppliesRevisions(t *testing.T) {
	registry, stubs := testutil.Roster()
	stubs[core.AgentEditor].WithData(map[string]any{
		"edit_action": "revised",
		"revised_sections": map[string]any{
			core.AgentSynthesis: "sharper findings",
			"unknown_agent":     "ignored",
		},
	})

	sup := NewSupervisor(registry)
	state := testutil.NewStateBuilder("Topic").
		Output(core.AgentSynthesis, map[string]any{"integrated_findings": "draft findings"}).
		Output(core.AgentPeerReview, map[string]any{"quality_score": 4.0, "weaknesses": []string{"thin evidence"}}).
		Build()

	sup.runEditing(context.Background(), state)

	synthesis, ok := state.AgentOutputs.Latest(core.AgentSynthesis)
	require.True(t, ok)
	findings, ok := synthesis.String("integrated_findings")
	require.True(t, ok)
	assert.Equal(t, "sharper findings", findings)

	_, known := state.AgentOutputs["unknown_agent"]
	assert.False(t, known)

	assert.True(t, state.AgentCompleted(core.AgentEditor))
	assert.NotContains(t, state.Progress.PhasesCompleted, core.PhaseEditing)
}

func TestRunQualityAssuranceIncrementsOncePerPass(t *testing.T) {
	registry, stubs := testutil.Roster()
	stubs[core.AgentPeerReview].WithData(map[string]any{"quality_score": 3.0})

	sup := NewSupervisor(registry)

	state := testutil.NewStateBuilder("Topic").Build()
	sup.runQualityAssurance(context.Background(), state)
	assert.Equal(t, 1, state.QARetryCount)

	// at the budget the executor stops incrementing
	state.QARetryCount = DefaultMaxQARetries
	sup.runQualityAssurance(context.Background(), state)
	assert.Equal(t, DefaultMaxQARetries, state.QARetryCount)
}

type panicAgent struct{ name string }

func (a panicAgent) Name() string { return a.name }

func (a panicAgent) Process(context.Context, core.Request) (core.Result, error) {
	panic("compliance data corrupted")
}

type failingSources struct{}

func (failingSources) Collect(context.Context, string) (map[string]any, error) {
	return nil, fmt.Errorf("source backend unavailable")
}
