package mcp

import (
	"context"

	"github.com/custodia-labs/samarth/internal/core/domain"
	"github.com/custodia-labs/samarth/internal/core/ports/driving"
)

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	resp  domain.AnswerResponse
	err   error
	stats driving.Stats
	query string
}

func (m *mockAnswerService) Answer(_ context.Context, query string) (domain.AnswerResponse, error) {
	m.query = query
	return m.resp, m.err
}

func (m *mockAnswerService) Stats(_ context.Context) driving.Stats {
	return m.stats
}

func (m *mockAnswerService) ClearCache(_ context.Context) error {
	return nil
}

// mockIndexService is a mock implementation of driving.IndexService.
type mockIndexService struct {
	status domain.IndexStatus
	runs   []domain.IndexRun
	err    error
}

func (m *mockIndexService) Start(_ context.Context) (domain.IndexStatus, bool) {
	return m.status, false
}

func (m *mockIndexService) Run(_ context.Context) error { return nil }

func (m *mockIndexService) Status() domain.IndexStatus { return m.status }

func (m *mockIndexService) Cancel() {}

func (m *mockIndexService) Wait() {}

func (m *mockIndexService) History(_ context.Context, _ int) ([]domain.IndexRun, error) {
	return m.runs, m.err
}

// mockDatasetService is a mock implementation of driving.DatasetService.
type mockDatasetService struct {
	results []map[string]any
}

func (m *mockDatasetService) SearchDatasets(_ context.Context, _ string) []map[string]any {
	return m.results
}
