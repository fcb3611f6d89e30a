package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/samarth/internal/core/domain"
)

func TestDatasetService_SearchDatasets(t *testing.T) {
	source := &mockDataSource{}
	var got string
	source.searchFunc = func(_ context.Context, query string) ([]map[string]any, error) {
		got = query
		return []map[string]any{{"title": "District wise crop production", "index_name": "35be999b"}}, nil
	}
	svc := NewDatasetService(source)

	results := svc.SearchDatasets(context.Background(), "  crop production ")
	require.Len(t, results, 1)
	assert.Equal(t, "District wise crop production", results[0]["title"])
	assert.Equal(t, "crop production", got)
}

func TestDatasetService_EmptyQuery(t *testing.T) {
	source := &mockDataSource{}
	called := false
	source.searchFunc = func(_ context.Context, _ string) ([]map[string]any, error) {
		called = true
		return nil, nil
	}
	svc := NewDatasetService(source)

	results := svc.SearchDatasets(context.Background(), "   ")
	assert.NotNil(t, results)
	assert.Empty(t, results)
	assert.False(t, called)
}

func TestDatasetService_UpstreamFailure(t *testing.T) {
	source := &mockDataSource{}
	source.searchFunc = func(_ context.Context, _ string) ([]map[string]any, error) {
		return nil, domain.ErrDataSourceUnavailable
	}
	svc := NewDatasetService(source)

	results := svc.SearchDatasets(context.Background(), "rainfall")
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestDatasetService_NilResults(t *testing.T) {
	source := &mockDataSource{}
	source.searchFunc = func(_ context.Context, _ string) ([]map[string]any, error) {
		return nil, nil
	}

	results := NewDatasetService(source).SearchDatasets(context.Background(), "rainfall")
	assert.NotNil(t, results)
}
