package services

import (
	"context"
	"crypto/md5" //nolint:gosec // test fixture
	"encoding/hex"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/samarth/internal/adapters/driven/cache/memory"
	"github.com/custodia-labs/samarth/internal/adapters/driven/config/file"
	"github.com/custodia-labs/samarth/internal/adapters/driven/embedding/hashing"
	runmemory "github.com/custodia-labs/samarth/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/samarth/internal/adapters/driven/vectorindex/flat"
	"github.com/custodia-labs/samarth/internal/core/domain"
	"github.com/custodia-labs/samarth/internal/core/ports/driven"
)

const testDim = 128

// mockLLM records calls and returns chatFunc's result.
type mockLLM struct {
	mu       sync.Mutex
	calls    int
	messages []driven.ChatMessage
	opts     driven.ChatOptions
	chatFunc func(ctx context.Context, messages []driven.ChatMessage) (string, error)
}

func (m *mockLLM) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	m.mu.Lock()
	m.calls++
	m.messages = messages
	m.opts = opts
	m.mu.Unlock()
	if m.chatFunc != nil {
		return m.chatFunc(ctx, messages)
	}
	return "Punjab produced the most wheat. [Source 1]", nil
}

func (m *mockLLM) ModelName() string            { return "mock-llm" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

func (m *mockLLM) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// failingEmbedder fails every call.
type failingEmbedder struct{}

func (failingEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return nil, errors.New("embedding backend down")
}

func (failingEmbedder) EmbedBatch(_ context.Context, _ []string) ([][]float32, error) {
	return nil, errors.New("embedding backend down")
}

func (failingEmbedder) Dimensions() int              { return testDim }
func (failingEmbedder) ModelName() string            { return "failing" }
func (failingEmbedder) Ping(_ context.Context) error { return nil }
func (failingEmbedder) Close() error                 { return nil }

// mockDataSource serves canned rows per resource.
type mockDataSource struct {
	mu         sync.Mutex
	rows       map[string][]map[string]any
	errs       map[string]error
	fetches    int
	fetchFunc  func(ctx context.Context, resourceID string) ([]map[string]any, error)
	searchFunc func(ctx context.Context, query string) ([]map[string]any, error)
}

func (m *mockDataSource) FetchRecords(
	ctx context.Context, resourceID string, _ map[string]string, _, _ int,
) ([]map[string]any, error) {
	m.mu.Lock()
	m.fetches++
	m.mu.Unlock()
	if m.fetchFunc != nil {
		return m.fetchFunc(ctx, resourceID)
	}
	if err := m.errs[resourceID]; err != nil {
		return nil, err
	}
	return m.rows[resourceID], nil
}

func (m *mockDataSource) SearchCatalog(ctx context.Context, query string) ([]map[string]any, error) {
	if m.searchFunc != nil {
		return m.searchFunc(ctx, query)
	}
	return []map[string]any{}, nil
}

// failingCacheStore errors on every operation.
type failingCacheStore struct{}

func (failingCacheStore) Get(_ context.Context, _ string) ([]byte, bool, error) {
	return nil, false, errors.New("cache down")
}
func (failingCacheStore) Set(_ context.Context, _ string, _ []byte) error {
	return errors.New("cache down")
}
func (failingCacheStore) Clear(_ context.Context) error      { return errors.New("cache down") }
func (failingCacheStore) Len(_ context.Context) (int, error) { return 0, errors.New("cache down") }
func (failingCacheStore) MaxSize() int                       { return 10 }
func (failingCacheStore) TTL() time.Duration                 { return time.Minute }
func (failingCacheStore) Close() error                       { return nil }

// Sample upstream rows in the shapes data.gov.in returns.
func sampleCropRows() []map[string]any {
	return []map[string]any{
		{
			"state_name": "Punjab", "district_name": "LUDHIANA", "crop_year": "2010",
			"season": "Rabi", "crop": "Wheat", "area_": "250000", "production_": "1250000",
		},
		{
			"state_name": "Kerala", "district_name": "ALAPPUZHA", "crop_year": 2011,
			"season": "Kharif", "crop": "Rice", "area_": 40000, "production_": 120000,
		},
	}
}

func sampleRainfallRows() []map[string]any {
	return []map[string]any{
		{
			"SUBDIVISION": "Coastal Karnataka", "YEAR": "2012", "ANNUAL": "3400.5",
			"JAN": "1", "FEB": "2", "MAR": "3", "APR": "40", "MAY": "150", "JUN": "900",
			"JUL": "1100", "AUG": "700", "SEP": "300", "OCT": "150", "NOV": "40", "DEC": "14.5",
		},
	}
}

func newSampleSource() *mockDataSource {
	return &mockDataSource{rows: map[string][]map[string]any{
		domain.DefaultCropResource:     sampleCropRows(),
		domain.DefaultRainfallResource: sampleRainfallRows(),
	}}
}

// testRig wires real in-memory adapters around the services under test.
type testRig struct {
	index    *flat.Index
	embedder driven.EmbeddingService
	cache    *ResultCache
	store    *memory.Store
	runs     *runmemory.RunStore
	prompts  *file.PromptStore
	source   *mockDataSource
	llm      *mockLLM
	indexer  *IndexService
	answers  *AnswerService
}

func newTestRig(t *testing.T) *testRig {
	t.Helper()

	index, err := flat.New(testDim, t.TempDir())
	require.NoError(t, err)
	embedder, err := hashing.NewEmbeddingService(testDim)
	require.NoError(t, err)
	prompts, err := file.NewPromptStore(t.TempDir())
	require.NoError(t, err)

	rig := &testRig{
		index:    index,
		embedder: embedder,
		store:    memory.NewStore(100, time.Hour),
		runs:     runmemory.NewRunStore(),
		prompts:  prompts,
		source:   newSampleSource(),
		llm:      &mockLLM{},
	}
	rig.cache = NewResultCache(rig.store)
	rig.indexer = NewIndexService(rig.index, rig.embedder, rig.source, rig.runs, rig.cache, IndexConfig{EmbedBatchSize: 2})
	rig.answers = NewAnswerService(rig.index, rig.embedder, rig.llm, rig.prompts, rig.cache, AnswerConfig{})
	rig.answers.SetStatusReporter(rig.indexer)
	return rig
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s)) //nolint:gosec // test fixture
	return hex.EncodeToString(sum[:])
}
