package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/researchmesh/core"
)

// revisedOutputKey maps an analysis agent to the field its content lives
// under, so an editor revision lands where the downstream prompts look.
var revisedOutputKey = map[string]string{
	core.AgentQuantitativeAnalysis: "analysis",
	core.AgentQualitativeAnalysis:  "analysis",
	core.AgentSynthesis:            "integrated_findings",
}

// runResearchPlanning executes the planning team: domain analysis, literature
// survey and research questions, in that order. Outputs append, so a phase
// retry keeps the earlier partial results visible to the fresh attempt.
func (sup *Supervisor) runResearchPlanning(ctx context.Context, state *core.WorkflowState) {
	state.EnterPhase(core.PhaseResearchPlanning)
	sup.logger.Info("Starting research planning phase", "topic", state.ResearchTopic)

	extra := map[string]any{
		"question_depth": state.Requirements["question_depth"],
		"strategic_mode": state.Requirements["strategic_mode"],
	}
	sup.runAgents(ctx, state, "Research planning", researchPlanningAgents, false, extra)

	state.MarkPhaseCompleted(core.PhaseResearchPlanning)
}

// runDataCollection merges user-provided sources into the state. Collection
// failures are recorded but never block the run; the analysis phase simply
// works with whatever sources are present.
func (sup *Supervisor) runDataCollection(ctx context.Context, state *core.WorkflowState) {
	state.EnterPhase(core.PhaseDataCollection)
	sup.logger.Info("Starting data collection phase")

	sources, err := sup.sources.Collect(ctx, state.ResearchTopic)
	if err != nil {
		state.RecordError(fmt.Sprintf("Data collection error: %v", err))
	} else {
		for key, src := range sources {
			state.UserSources[key] = src
		}
		sup.logger.Info("Data collection finished", "sources", len(state.UserSources))
	}

	state.MarkPhaseCompleted(core.PhaseDataCollection)
}

// runAnalysis executes the analysis team. The phase is rerunnable: completion
// marks of its agents are cleared on entry and outputs replace rather than
// append, so after a retry or an editing loop the state reflects only the
// freshest attempt.
func (sup *Supervisor) runAnalysis(ctx context.Context, state *core.WorkflowState) {
	state.EnterPhase(core.PhaseAnalysis)
	sup.logger.Info("Starting analysis phase")

	state.ResetAgents(analysisAgents...)
	extra := map[string]any{
		"user_sources": state.UserSources,
	}
	sup.runAgents(ctx, state, "Analysis", analysisAgents, true, extra)

	state.MarkPhaseCompleted(core.PhaseAnalysis)
}

// runQualityAssurance executes the QA team, then applies the retry-budget
// bookkeeping of the quality gate: the counter increments exactly once per
// failing pass and only while budget remains. The transition predicate reads
// the counter but never writes it.
func (sup *Supervisor) runQualityAssurance(ctx context.Context, state *core.WorkflowState) {
	state.EnterPhase(core.PhaseQualityAssurance)
	sup.logger.Info("Starting quality assurance phase")

	state.ResetAgents(qualityAssuranceAgents...)
	extra := map[string]any{
		"citation_style": state.Requirements["citation_style"],
	}
	sup.runAgents(ctx, state, "Quality assurance", qualityAssuranceAgents, true, extra)

	score := qualityScore(state)
	if score < sup.qualityThreshold && state.QARetryCount < sup.maxQARetries {
		retries := state.IncrementQARetry()
		sup.logger.Info("Quality below threshold", "score", score, "threshold", sup.qualityThreshold, "qa_retry", retries)
	} else {
		sup.logger.Info("Quality assurance finished", "score", score, "qa_retry", state.QARetryCount)
	}

	state.MarkPhaseCompleted(core.PhaseQualityAssurance)
}

// runEditing invokes the editor on the QA feedback and overwrites the revised
// analysis entries in place. Editing is auxiliary: it is never marked as a
// completed phase and contributes nothing to the completion percentage. The
// driver unconditionally reruns analysis afterwards.
func (sup *Supervisor) runEditing(ctx context.Context, state *core.WorkflowState) {
	state.EnterPhase(core.PhaseEditing)
	sup.logger.Info("Starting editing phase", "qa_retry", state.QARetryCount)

	result, err := sup.invoke(ctx, state, core.AgentEditor, "Editing: revise analysis per quality feedback", nil)
	if err != nil {
		state.RecordError(fmt.Sprintf("Editing error in %s: %v", core.AgentEditor, err))
		return
	}
	state.AppendOutput(core.AgentEditor, result)
	state.MarkAgentCompleted(core.AgentEditor)

	revised, _ := result.Data["revised_sections"].(map[string]any)
	for name, v := range revised {
		text, ok := v.(string)
		if !ok || text == "" {
			continue
		}
		key, ok := revisedOutputKey[name]
		if !ok {
			continue
		}
		state.ReplaceOutput(name, core.NewResult(map[string]any{
			key:       text,
			"content": text,
			"revised": true,
		}))
	}
	if len(revised) > 0 {
		sup.logger.Info("Editing finished", "revised_sections", len(revised))
	}
}

// runReportGeneration writes every report section, checks coherence and
// assembles the final document. It is the terminal phase: on completion the
// run is pinned to 100% and stamped with its completion time.
func (sup *Supervisor) runReportGeneration(ctx context.Context, state *core.WorkflowState) {
	state.EnterPhase(core.PhaseReportGeneration)
	sup.logger.Info("Starting report generation phase")

	extra := map[string]any{
		"citation_style": state.Requirements["citation_style"],
		"audience":       state.Requirements["audience"],
	}

	for _, section := range core.ReportSections {
		sectionExtra := map[string]any{
			"citation_style": extra["citation_style"],
			"audience":       extra["audience"],
			"section":        section,
		}
		task := fmt.Sprintf("Report generation: write %s section", section)
		result, err := sup.invoke(ctx, state, core.AgentSectionWriter, task, sectionExtra)
		if err != nil {
			state.RecordError(fmt.Sprintf("Report generation error in %s (%s): %v", core.AgentSectionWriter, section, err))
			continue
		}
		state.AppendOutput(core.AgentSectionWriter, result)
	}
	if state.AgentOutputs.Has(core.AgentSectionWriter) {
		state.MarkAgentCompleted(core.AgentSectionWriter)
	}

	sup.runAgents(ctx, state, "Report generation", []string{core.AgentCoherenceCheck, core.AgentFinalAssembly}, false, extra)

	state.MarkPhaseCompleted(core.PhaseReportGeneration)
	state.Progress.CompletionPercentage = 100
	now := time.Now().UTC()
	state.Progress.CompletedAt = &now
}

// runAgents runs the named agents in order against the shared state,
// best-effort: a failing agent is recorded under the phase label and the
// remaining agents still run. replace selects ReplaceOutput semantics for
// rerunnable phases.
func (sup *Supervisor) runAgents(ctx context.Context, state *core.WorkflowState, label string, names []string, replace bool, extra map[string]any) {
	for _, name := range names {
		task := fmt.Sprintf("%s: %s", label, name)
		result, err := sup.invoke(ctx, state, name, task, extra)
		if err != nil {
			state.RecordError(fmt.Sprintf("%s error in %s: %v", label, name, err))
			continue
		}
		if replace {
			state.ReplaceOutput(name, result)
		} else {
			state.AppendOutput(name, result)
		}
		state.MarkAgentCompleted(name)
	}
}

// invoke resolves and runs a single agent, converting panics into errors so a
// misbehaving agent degrades into a recorded phase error instead of killing
// the run.
func (sup *Supervisor) invoke(ctx context.Context, state *core.WorkflowState, name, task string, extra map[string]any) (result core.Result, err error) {
	agent, err := sup.registry.Get(name)
	if err != nil {
		return core.Result{}, err
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("agent panicked: %v", r)
		}
	}()

	start := time.Now()
	result, err = agent.Process(ctx, core.Request{
		Topic:        state.ResearchTopic,
		Task:         task,
		PriorOutputs: state.AgentOutputs,
		Context:      extra,
	})
	if err != nil {
		sup.logger.Warn("Agent failed", "agent", name, "duration", time.Since(start), "error", err)
		return core.Result{}, err
	}
	sup.logger.Debug("Agent finished", "agent", name, "duration", time.Since(start))

	return result, nil
}
