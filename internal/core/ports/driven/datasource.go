package driven

import "context"

// DataSource fetches raw records from the upstream open-data API.
type DataSource interface {
	// FetchRecords returns one page of raw records for a resource.
	// Filters are applied as exact-match field filters.
	FetchRecords(ctx context.Context, resourceID string, filters map[string]string, limit, offset int) ([]map[string]any, error)

	// SearchCatalog searches the dataset catalogue.
	SearchCatalog(ctx context.Context, query string) ([]map[string]any, error)
}
