package driving

import (
	"context"

	"github.com/custodia-labs/samarth/internal/core/domain"
)

// IndexService builds the vector index from the upstream datasets.
// At most one run is active at a time.
type IndexService interface {
	// Start launches a background run. It returns false with the current
	// status when a run is already in progress.
	Start(ctx context.Context) (domain.IndexStatus, bool)

	// Run indexes synchronously. Returns domain.ErrIndexingInProgress if a
	// background run is active.
	Run(ctx context.Context) error

	// Status returns a snapshot of the indexing state.
	Status() domain.IndexStatus

	// Cancel stops the active run, if any.
	Cancel()

	// Wait blocks until the active background run finishes.
	Wait()

	// History lists recent runs, newest first.
	History(ctx context.Context, limit int) ([]domain.IndexRun, error)
}
