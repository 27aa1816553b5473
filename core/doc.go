// Package core defines the shared contracts of the research workflow engine:
// the Agent interface every phase-step agent implements, the Result record
// agents produce, the WorkflowState threaded through all phases, and the
// Registry used to resolve agents by name.
//
// The package is dependency-free by design so that agent implementations,
// model backends and the workflow engine can all depend on it without cycles.
package core
