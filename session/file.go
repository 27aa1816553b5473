package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/hupe1980/researchmesh/core"
)

// FileStore persists snapshots as one JSON document per run under a base
// directory. It is safe for concurrent use within a single process; writes go
// through a temp file rename so a crash never leaves a half-written snapshot.
type FileStore struct {
	mu  sync.Mutex
	dir string
}

// NewFileStore creates a FileStore rooted at dir, creating the directory if
// needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Save writes the snapshot as JSON under the run ID.
func (s *FileStore) Save(runID string, state *core.WorkflowState) error {
	if err := validateRunID(runID); err != nil {
		return err
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal workflow state: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := s.path(runID) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write workflow state: %w", err)
	}
	if err := os.Rename(tmp, s.path(runID)); err != nil {
		return fmt.Errorf("write workflow state: %w", err)
	}
	return nil
}

// Load reads the snapshot stored under the run ID.
func (s *FileStore) Load(runID string) (*core.WorkflowState, error) {
	if err := validateRunID(runID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(runID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrStateNotFound, runID)
		}
		return nil, fmt.Errorf("read workflow state: %w", err)
	}

	var state core.WorkflowState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("unmarshal workflow state: %w", err)
	}
	return &state, nil
}

// List returns the sorted run IDs of all stored snapshots.
func (s *FileStore) List() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list session dir: %w", err)
	}

	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}

// Delete removes the snapshot stored under the run ID. Deleting an unknown
// run is not an error.
func (s *FileStore) Delete(runID string) error {
	if err := validateRunID(runID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(runID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete workflow state: %w", err)
	}
	return nil
}

func (s *FileStore) path(runID string) string {
	return filepath.Join(s.dir, runID+".json")
}

// validateRunID rejects IDs that would escape the base directory.
func validateRunID(runID string) error {
	if runID == "" {
		return fmt.Errorf("run id must not be empty")
	}
	if strings.ContainsAny(runID, `/\`) || strings.Contains(runID, "..") {
		return fmt.Errorf("invalid run id: %s", runID)
	}
	return nil
}
