package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/custodia-labs/samarth/internal/core/domain"
	"github.com/custodia-labs/samarth/internal/core/ports/driving"
)

type mockAnswerService struct {
	resp  domain.AnswerResponse
	err   error
	query string
	stats driving.Stats
}

func (m *mockAnswerService) Answer(_ context.Context, query string) (domain.AnswerResponse, error) {
	m.query = query
	return m.resp, m.err
}

func (m *mockAnswerService) Stats(_ context.Context) driving.Stats { return m.stats }

func (m *mockAnswerService) ClearCache(_ context.Context) error { return nil }

type mockIndexService struct {
	runErr error
	status domain.IndexStatus
	runs   []domain.IndexRun
	ran    int
}

func (m *mockIndexService) Start(_ context.Context) (domain.IndexStatus, bool) {
	return m.status, true
}

func (m *mockIndexService) Run(_ context.Context) error {
	m.ran++
	return m.runErr
}

func (m *mockIndexService) Status() domain.IndexStatus { return m.status }

func (m *mockIndexService) Cancel() {}

func (m *mockIndexService) Wait() {}

func (m *mockIndexService) History(_ context.Context, limit int) ([]domain.IndexRun, error) {
	if limit < len(m.runs) {
		return m.runs[:limit], nil
	}
	return m.runs, nil
}

type mockDatasetService struct {
	results []map[string]any
}

func (m *mockDatasetService) SearchDatasets(_ context.Context, _ string) []map[string]any {
	return m.results
}

type testServices struct {
	answers  *mockAnswerService
	index    *mockIndexService
	datasets *mockDatasetService
}

// setupTestServices installs mock services and restores globals afterwards.
func setupTestServices(t *testing.T) *testServices {
	t.Helper()
	ts := &testServices{
		answers:  &mockAnswerService{},
		index:    &mockIndexService{status: domain.IndexStatus{State: domain.IndexStateNotStarted}},
		datasets: &mockDatasetService{},
	}

	answerService = ts.answers
	indexService = ts.index
	datasetService = ts.datasets
	configDir = t.TempDir()

	t.Cleanup(func() {
		answerService = nil
		indexService = nil
		datasetService = nil
		settingsService = nil
		configDir = ""
		askJSON, statsJSON, indexJSON, datasetsJSON = false, false, false, false
		historyLimit = 10
		rootCmd.SetArgs(nil)
	})
	return ts
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func sampleRun() domain.IndexRun {
	finished := time.Date(2024, 4, 2, 9, 1, 0, 0, time.UTC)
	return domain.IndexRun{
		ID:         "run-1",
		StartedAt:  time.Date(2024, 4, 2, 9, 0, 0, 0, time.UTC),
		FinishedAt: &finished,
		State:      domain.IndexStateComplete,
		Documents:  map[domain.DatasetCategory]int{domain.DatasetCropProduction: 5},
		Skipped:    []domain.DatasetCategory{domain.DatasetRainfall},
	}
}
