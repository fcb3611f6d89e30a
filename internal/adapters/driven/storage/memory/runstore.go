// Package memory provides in-memory implementations of driven storage ports.
// They are used in tests and for ephemeral runs where no data directory is
// available.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/samarth/internal/core/domain"
	"github.com/custodia-labs/samarth/internal/core/ports/driven"
)

// Ensure RunStore implements the interface.
var _ driven.IndexRunStore = (*RunStore)(nil)

// RunStore is an in-memory implementation of driven.IndexRunStore.
type RunStore struct {
	mu   sync.RWMutex
	runs map[string]domain.IndexRun
}

// NewRunStore creates a new in-memory run store.
func NewRunStore() *RunStore {
	return &RunStore{
		runs: make(map[string]domain.IndexRun),
	}
}

// Save stores or updates a run.
func (s *RunStore) Save(_ context.Context, run domain.IndexRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = cloneRun(run)
	return nil
}

// Get retrieves a run by ID.
func (s *RunStore) Get(_ context.Context, id string) (*domain.IndexRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	run = cloneRun(run)
	return &run, nil
}

// List returns up to limit runs, newest first. A non-positive limit returns all.
func (s *RunStore) List(_ context.Context, limit int) ([]domain.IndexRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]domain.IndexRun, 0, len(s.runs))
	for _, run := range s.runs {
		runs = append(runs, cloneRun(run))
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})

	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

func cloneRun(run domain.IndexRun) domain.IndexRun {
	if run.Documents != nil {
		docs := make(map[domain.DatasetCategory]int, len(run.Documents))
		for k, v := range run.Documents {
			docs[k] = v
		}
		run.Documents = docs
	}
	if run.Skipped != nil {
		run.Skipped = append([]domain.DatasetCategory(nil), run.Skipped...)
	}
	return run
}
