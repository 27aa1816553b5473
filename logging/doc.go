// Package logging provides a minimal logging interface and adapters for the
// research workflow engine.
//
// The Logger interface defines the standard logging methods (Debug, Info,
// Warn, Error) that the supervisor, phase executors and agents use for
// observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - WorkflowLogger with contextual helpers (run, phase, component)
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	sup := workflow.NewSupervisor(registry, func(o *workflow.Options) {
//		o.Logger = logger
//	})
//
// The design intentionally keeps the interface minimal to avoid vendor
// lock-in while supporting structured logging where available.
package logging
