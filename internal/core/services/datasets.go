package services

import (
	"context"
	"strings"

	"github.com/custodia-labs/samarth/internal/core/ports/driven"
	"github.com/custodia-labs/samarth/internal/core/ports/driving"
	"github.com/custodia-labs/samarth/internal/logger"
)

// Ensure DatasetService implements the interface.
var _ driving.DatasetService = (*DatasetService)(nil)

// DatasetService searches the upstream catalogue.
type DatasetService struct {
	source driven.DataSource
}

// NewDatasetService creates a new dataset service.
func NewDatasetService(source driven.DataSource) *DatasetService {
	return &DatasetService{source: source}
}

// SearchDatasets returns catalogue entries matching the query. Upstream
// failures are logged and yield an empty list.
func (s *DatasetService) SearchDatasets(ctx context.Context, query string) []map[string]any {
	query = strings.TrimSpace(query)
	if query == "" {
		return []map[string]any{}
	}

	results, err := s.source.SearchCatalog(ctx, query)
	if err != nil {
		logger.Warn("search datasets %q: %v", query, err)
		return []map[string]any{}
	}
	if results == nil {
		return []map[string]any{}
	}
	return results
}
