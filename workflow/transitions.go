package workflow

import (
	"github.com/hupe1980/researchmesh/core"
)

// Decision is the outcome of a transition predicate evaluated after a phase.
type Decision string

const (
	// DecisionContinue advances to the next phase in the sequence.
	DecisionContinue Decision = "continue"
	// DecisionRetry reruns the phase that just executed.
	DecisionRetry Decision = "retry"
	// DecisionEdit diverts into the editing phase before rerunning analysis.
	DecisionEdit Decision = "edit"
	// DecisionEnd aborts the run; no further phases execute.
	DecisionEnd Decision = "end"
)

// Per-phase abort thresholds on the cumulative error count. The limits
// escalate because later phases inherit every error recorded before them; a
// run that is already troubled gets less slack the further it progresses.
// A phase aborts when the error count strictly exceeds its limit.
const (
	researchPlanningErrorLimit = 3
	dataCollectionErrorLimit   = 5
	analysisErrorLimit         = 7
	qualityAssuranceErrorLimit = 10
)

// Quality gate defaults, overridable through the supervisor options.
const (
	// DefaultQualityThreshold is the peer-review score below which the run
	// is sent through the editing loop.
	DefaultQualityThreshold = 6.0
	// DefaultMaxQARetries bounds how many editing loops a run may take.
	DefaultMaxQARetries = 3
	// defaultQualityScore is assumed when no peer review output exists or
	// it carries no score. Failing open keeps a broken reviewer from
	// trapping the run in the editing loop.
	defaultQualityScore = 7.0
)

// Agent rosters per phase, in execution order.
var (
	researchPlanningAgents = []string{
		core.AgentDomainAnalysis,
		core.AgentLiteratureSurvey,
		core.AgentResearchQuestions,
	}
	analysisAgents = []string{
		core.AgentQuantitativeAnalysis,
		core.AgentQualitativeAnalysis,
		core.AgentSynthesis,
	}
	qualityAssuranceAgents = []string{
		core.AgentPeerReview,
		core.AgentCitationVerification,
		core.AgentComplianceCheck,
	}
)

// decideAfterResearchPlanning ends a run drowning in errors, continues once
// all planning agents have produced output, and retries the phase otherwise.
func decideAfterResearchPlanning(s *core.WorkflowState) Decision {
	if len(s.Errors) > researchPlanningErrorLimit {
		return DecisionEnd
	}
	if s.AgentOutputs.Has(researchPlanningAgents...) {
		return DecisionContinue
	}
	return DecisionRetry
}

// decideAfterDataCollection only checks the error budget. Data collection is
// best-effort: missing sources degrade the analysis but never block it, so
// there is no retry branch.
func decideAfterDataCollection(s *core.WorkflowState) Decision {
	if len(s.Errors) > dataCollectionErrorLimit {
		return DecisionEnd
	}
	return DecisionContinue
}

// decideAfterAnalysis mirrors the research planning shape with a larger error
// budget: end over the limit, continue when all analysis outputs exist,
// retry otherwise.
func decideAfterAnalysis(s *core.WorkflowState) Decision {
	if len(s.Errors) > analysisErrorLimit {
		return DecisionEnd
	}
	if s.AgentOutputs.Has(analysisAgents...) {
		return DecisionContinue
	}
	return DecisionRetry
}

// decideAfterQualityAssurance implements the quality gate. The checks are
// ordered: the error budget dominates everything, an exhausted retry budget
// forces the run onward regardless of score, and only then does a low score
// divert into editing. The predicate reads qa_retry_count but never writes
// it; the QA phase executor owns the increment.
func decideAfterQualityAssurance(s *core.WorkflowState, threshold float64, maxRetries int) Decision {
	if len(s.Errors) > qualityAssuranceErrorLimit {
		return DecisionEnd
	}
	if s.QARetryCount >= maxRetries {
		return DecisionContinue
	}
	if qualityScore(s) < threshold {
		return DecisionEdit
	}
	return DecisionContinue
}

// qualityScore reads the peer-review quality score from the state, falling
// back to defaultQualityScore when the review is absent or unscored.
func qualityScore(s *core.WorkflowState) float64 {
	review, ok := s.AgentOutputs.Latest(core.AgentPeerReview)
	if !ok {
		return defaultQualityScore
	}
	score, ok := review.Float("quality_score")
	if !ok {
		return defaultQualityScore
	}
	return score
}
