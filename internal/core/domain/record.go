package domain

// Record is a formatted dataset row ready for embedding: a natural-language
// sentence plus structured metadata.
type Record struct {
	Text     string
	Metadata Metadata
}

// SearchResult is a nearest-neighbour hit from the vector index.
type SearchResult struct {
	// Document is the full indexed text.
	Document string `json:"document"`

	// Metadata is the record metadata stored alongside the text.
	Metadata Metadata `json:"metadata"`

	// Distance is the Euclidean distance to the query vector.
	Distance float64 `json:"distance"`

	// Similarity is 1/(1+Distance). Only meaningful for ranking within
	// a single result set.
	Similarity float64 `json:"similarity"`
}

// SimilarityFromDistance converts a non-negative distance to a similarity in (0,1].
func SimilarityFromDistance(distance float64) float64 {
	return 1 / (1 + distance)
}

// IndexStats reports vector index size. IndexSize always equals
// TotalDocuments; any divergence is a bug.
type IndexStats struct {
	TotalDocuments     int `json:"total_documents"`
	EmbeddingDimension int `json:"embedding_dimension"`
	IndexSize          int `json:"index_size"`
}
