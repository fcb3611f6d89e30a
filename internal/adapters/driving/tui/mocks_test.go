package tui

import (
	"context"
	"sync"

	"github.com/custodia-labs/samarth/internal/core/domain"
	"github.com/custodia-labs/samarth/internal/core/ports/driving"
)

type mockAnswerService struct {
	mu      sync.Mutex
	resp    domain.AnswerResponse
	err     error
	queries []string
}

func (m *mockAnswerService) Answer(_ context.Context, query string) (domain.AnswerResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, query)
	return m.resp, m.err
}

func (m *mockAnswerService) Stats(_ context.Context) driving.Stats { return driving.Stats{} }

func (m *mockAnswerService) ClearCache(_ context.Context) error { return nil }

type mockIndexService struct {
	status  domain.IndexStatus
	started bool
	starts  int
}

func (m *mockIndexService) Start(_ context.Context) (domain.IndexStatus, bool) {
	m.starts++
	return m.status, m.started
}

func (m *mockIndexService) Run(_ context.Context) error { return nil }

func (m *mockIndexService) Status() domain.IndexStatus { return m.status }

func (m *mockIndexService) Cancel() {}

func (m *mockIndexService) Wait() {}

func (m *mockIndexService) History(_ context.Context, _ int) ([]domain.IndexRun, error) {
	return nil, nil
}
