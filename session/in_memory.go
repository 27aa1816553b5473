package session

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/hupe1980/researchmesh/core"
)

// ErrStateNotFound is returned by Load for unknown run IDs.
var ErrStateNotFound = errors.New("workflow state not found")

// Store persists workflow state snapshots keyed by run ID. The supervisor
// saves after every phase, so Save overwrites any previous snapshot for the
// same run.
type Store interface {
	Save(runID string, state *core.WorkflowState) error
	Load(runID string) (*core.WorkflowState, error)
	List() ([]string, error)
	Delete(runID string) error
}

// InMemoryStore is a volatile Store holding snapshots in a process-local map.
// It is safe for concurrent access and best suited for tests or ephemeral
// use. Snapshots are cloned on the way in and out so callers can never
// mutate stored state through a retained pointer.
type InMemoryStore struct {
	mu     sync.RWMutex
	states map[string]*core.WorkflowState
}

// NewInMemoryStore constructs an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{states: make(map[string]*core.WorkflowState)}
}

// Save stores a clone of the snapshot under the run ID.
func (s *InMemoryStore) Save(runID string, state *core.WorkflowState) error {
	if runID == "" {
		return fmt.Errorf("run id must not be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[runID] = state.Clone()
	return nil
}

// Load returns a clone of the snapshot stored under the run ID.
func (s *InMemoryStore) Load(runID string) (*core.WorkflowState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.states[runID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrStateNotFound, runID)
	}
	return state.Clone(), nil
}

// List returns the sorted run IDs of all stored snapshots.
func (s *InMemoryStore) List() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.states))
	for id := range s.states {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Delete removes the snapshot stored under the run ID. Deleting an unknown
// run is not an error.
func (s *InMemoryStore) Delete(runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, runID)
	return nil
}
