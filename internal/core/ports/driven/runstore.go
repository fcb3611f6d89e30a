package driven

import (
	"context"

	"github.com/custodia-labs/samarth/internal/core/domain"
)

// IndexRunStore persists the history of indexing runs.
type IndexRunStore interface {
	// Save inserts or updates a run.
	Save(ctx context.Context, run domain.IndexRun) error

	// Get retrieves a run by ID. Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, id string) (*domain.IndexRun, error)

	// List returns the most recent runs, newest first.
	List(ctx context.Context, limit int) ([]domain.IndexRun, error)
}
