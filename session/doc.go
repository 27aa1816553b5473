// Package session persists workflow state snapshots between phases so a run
// can be inspected while in flight and resumed or audited afterwards.
//
// The Store interface is deliberately small: save a snapshot under its run
// ID, load it back, list known runs, delete one. Two implementations are
// provided: InMemoryStore for tests and ephemeral use, and FileStore writing
// one JSON document per run.
package session
