package flat

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/samarth/internal/core/domain"
	"github.com/custodia-labs/samarth/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index is an in-memory exact L2 index with optional directory persistence.
// texts, metadata and vectors always hold the same number of documents;
// vectors is stored row-major with dim values per document.
type Index struct {
	dir string
	dim int

	mu       sync.RWMutex
	texts    []string
	metadata []domain.Metadata
	vectors  []float32

	persistMu sync.Mutex
}

// New creates an empty index of the given dimension persisting to dir.
// An empty dir keeps the index in memory only.
func New(dim int, dir string) (*Index, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("%w: dimension must be positive, got %d", domain.ErrInvalidInput, dim)
	}
	return &Index{dim: dim, dir: dir}, nil
}

// Dir returns the persistence directory.
func (x *Index) Dir() string {
	return x.dir
}

// Dimension returns the fixed embedding dimension.
func (x *Index) Dimension() int {
	return x.dim
}

// Len returns the number of indexed documents.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.texts)
}

// Stats reports document counts.
func (x *Index) Stats() domain.IndexStats {
	n := x.Len()
	return domain.IndexStats{
		TotalDocuments:     n,
		EmbeddingDimension: x.dim,
		IndexSize:          n,
	}
}

// Add validates the whole batch, then appends it under the write lock so
// readers observe either none or all of it.
func (x *Index) Add(embeddings [][]float32, texts []string, metadata []domain.Metadata) error {
	flat, md, err := x.prepare(embeddings, texts, metadata)
	if err != nil || len(flat) == 0 {
		return err
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	x.texts = append(x.texts, texts...)
	x.metadata = append(x.metadata, md...)
	x.vectors = append(x.vectors, flat...)
	return nil
}

// Replace validates the batch and swaps it in as the whole corpus.
// Readers see the old corpus until the swap and the new one after it.
func (x *Index) Replace(embeddings [][]float32, texts []string, metadata []domain.Metadata) error {
	flat, md, err := x.prepare(embeddings, texts, metadata)
	if err != nil {
		return err
	}
	x.replace(append([]string(nil), texts...), md, flat)
	return nil
}

// prepare checks a batch and copies it into the row-major layout.
func (x *Index) prepare(
	embeddings [][]float32, texts []string, metadata []domain.Metadata,
) ([]float32, []domain.Metadata, error) {
	if len(embeddings) != len(texts) || len(texts) != len(metadata) {
		return nil, nil, fmt.Errorf("%w: batch lengths differ: %d embeddings, %d texts, %d metadata",
			domain.ErrInvalidInput, len(embeddings), len(texts), len(metadata))
	}
	for i, e := range embeddings {
		if len(e) != x.dim {
			return nil, nil, fmt.Errorf("%w: embedding %d has dimension %d, index expects %d",
				domain.ErrDimensionMismatch, i, len(e), x.dim)
		}
	}

	flat := make([]float32, 0, len(embeddings)*x.dim)
	for _, e := range embeddings {
		flat = append(flat, e...)
	}
	md := make([]domain.Metadata, len(metadata))
	copy(md, metadata)
	return flat, md, nil
}

// Search returns the k nearest documents by Euclidean distance, nearest
// first. Equal distances keep insertion order.
func (x *Index) Search(query []float32, k int) ([]domain.SearchResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidInput, k)
	}
	if len(query) != x.dim {
		return nil, fmt.Errorf("%w: query has dimension %d, index expects %d",
			domain.ErrDimensionMismatch, len(query), x.dim)
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	n := len(x.texts)
	if n == 0 {
		return []domain.SearchResult{}, nil
	}

	type scored struct {
		idx  int
		dist float64
	}
	scoreds := make([]scored, n)
	for i := 0; i < n; i++ {
		scoreds[i] = scored{idx: i, dist: l2Distance(query, x.vectors[i*x.dim:(i+1)*x.dim])}
	}
	sort.SliceStable(scoreds, func(a, b int) bool { return scoreds[a].dist < scoreds[b].dist })

	if k > n {
		k = n
	}
	results := make([]domain.SearchResult, k)
	for i := 0; i < k; i++ {
		s := scoreds[i]
		results[i] = domain.SearchResult{
			Document:   x.texts[s.idx],
			Metadata:   x.metadata[s.idx],
			Distance:   s.dist,
			Similarity: domain.SimilarityFromDistance(s.dist),
		}
	}
	return results, nil
}

// Reset empties the index.
func (x *Index) Reset() {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.texts = nil
	x.metadata = nil
	x.vectors = nil
}

// replace swaps in a fully loaded corpus.
func (x *Index) replace(texts []string, metadata []domain.Metadata, vectors []float32) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.texts = texts
	x.metadata = metadata
	x.vectors = vectors
}

// snapshot returns the current corpus. Add only appends beyond the
// snapshot's length and Reset replaces the slices, so the returned slices
// stay valid without holding the lock.
func (x *Index) snapshot() ([]string, []domain.Metadata, []float32) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.texts[:len(x.texts):len(x.texts)],
		x.metadata[:len(x.metadata):len(x.metadata)],
		x.vectors[:len(x.vectors):len(x.vectors)]
}

// l2Distance is the Euclidean distance between equal-length vectors.
func l2Distance(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
