package driven

import "github.com/custodia-labs/samarth/internal/core/domain"

// VectorIndex stores embeddings alongside document text and metadata and
// answers exact nearest-neighbour queries by Euclidean distance.
//
// The three parallel sequences (texts, metadata, vectors) always have the
// same length. The dimension is fixed at construction.
type VectorIndex interface {
	// Add appends a batch in lockstep. All sequences must have equal length and
	// every embedding must match Dimension(), otherwise nothing is added.
	// The batch becomes visible to readers atomically.
	Add(embeddings [][]float32, texts []string, metadata []domain.Metadata) error

	// Replace validates a batch like Add and swaps it in as the entire
	// corpus in one step. On error the current corpus is kept.
	Replace(embeddings [][]float32, texts []string, metadata []domain.Metadata) error

	// Search returns the min(k, Len()) nearest documents, nearest first.
	// An empty index yields an empty slice and no error.
	Search(query []float32, k int) ([]domain.SearchResult, error)

	// Persist writes the index to durable storage as one coherent unit.
	Persist() error

	// Restore loads previously persisted data. It returns false when none
	// exists and wraps domain.ErrCorruptIndex when the data is invalid.
	Restore() (bool, error)

	// Reset empties the index.
	Reset()

	// Stats reports document and index counts.
	Stats() domain.IndexStats

	// Len returns the number of indexed documents.
	Len() int

	// Dimension returns the fixed embedding dimension.
	Dimension() int
}
