// Package workflow implements the supervisor that drives a research run
// through its phases: research planning, data collection, analysis, quality
// assurance, an optional editing loop and report generation.
//
// The design separates three concerns:
//
//   - Phase executors run a fixed ordered list of agents against the shared
//     WorkflowState, best-effort: an agent failure is recorded and the
//     remaining agents still run.
//   - Transition predicates are pure functions of the state deciding whether
//     to continue, retry the same phase, divert through editing, or end.
//     They never mutate the state.
//   - The driver loop applies executor and predicate pairs until a terminal
//     decision, emitting progress callbacks and state snapshots after every
//     phase.
//
// Termination is guaranteed by escalating per-phase error thresholds and by
// the bounded quality-gate retry budget.
package workflow
