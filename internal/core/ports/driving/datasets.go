package driving

import "context"

// DatasetService searches the upstream dataset catalogue.
type DatasetService interface {
	// SearchDatasets returns catalogue entries matching the query.
	// Upstream failures degrade to an empty list.
	SearchDatasets(ctx context.Context, query string) []map[string]any
}
