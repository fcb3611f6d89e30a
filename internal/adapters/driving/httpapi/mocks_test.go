package httpapi

import (
	"context"

	"github.com/custodia-labs/samarth/internal/core/domain"
	"github.com/custodia-labs/samarth/internal/core/ports/driving"
)

type mockAnswerService struct {
	answerFunc func(ctx context.Context, query string) (domain.AnswerResponse, error)
	stats      driving.Stats
	clearErr   error
	cleared    int
}

func (m *mockAnswerService) Answer(ctx context.Context, query string) (domain.AnswerResponse, error) {
	if m.answerFunc != nil {
		return m.answerFunc(ctx, query)
	}
	return domain.AnswerResponse{Answer: "ok", Outcome: domain.OutcomeGenerated}, nil
}

func (m *mockAnswerService) Stats(_ context.Context) driving.Stats {
	return m.stats
}

func (m *mockAnswerService) ClearCache(_ context.Context) error {
	m.cleared++
	return m.clearErr
}

type mockIndexService struct {
	status  domain.IndexStatus
	started bool
	runs    []domain.IndexRun
	runsErr error
	limit   int
}

func (m *mockIndexService) Start(_ context.Context) (domain.IndexStatus, bool) {
	return m.status, m.started
}

func (m *mockIndexService) Run(_ context.Context) error { return nil }

func (m *mockIndexService) Status() domain.IndexStatus { return m.status }

func (m *mockIndexService) Cancel() {}

func (m *mockIndexService) Wait() {}

func (m *mockIndexService) History(_ context.Context, limit int) ([]domain.IndexRun, error) {
	m.limit = limit
	return m.runs, m.runsErr
}

type mockDatasetService struct {
	query   string
	results []map[string]any
}

func (m *mockDatasetService) SearchDatasets(_ context.Context, query string) []map[string]any {
	m.query = query
	if m.results == nil {
		return []map[string]any{}
	}
	return m.results
}
