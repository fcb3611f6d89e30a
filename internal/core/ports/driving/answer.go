package driving

import (
	"context"

	"github.com/custodia-labs/samarth/internal/core/domain"
)

// AnswerService answers natural-language questions over the indexed corpus.
type AnswerService interface {
	// Answer runs the retrieve-and-generate pipeline for a query.
	// Expected conditions (not indexed, no results, LLM failure) are reported
	// through the response Outcome; only infrastructure failures and invalid
	// input return an error.
	Answer(ctx context.Context, query string) (domain.AnswerResponse, error)

	// Stats reports vector index and cache occupancy.
	Stats(ctx context.Context) Stats

	// ClearCache drops all cached answers.
	ClearCache(ctx context.Context) error
}

// Stats is the combined view returned by the stats endpoints.
type Stats struct {
	VectorStore domain.IndexStats  `json:"vector_store"`
	Cache       domain.CacheStats  `json:"cache"`
	IsIndexed   bool               `json:"is_indexed"`
	IndexStatus domain.IndexStatus `json:"index_status"`
}
