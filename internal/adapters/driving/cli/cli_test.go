package cli

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/samarth/internal/core/domain"
	"github.com/custodia-labs/samarth/internal/core/ports/driving"
)

func TestRootCmd_HasSubcommands(t *testing.T) {
	names := make([]string, 0)
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"serve", "index", "ask", "stats", "datasets", "config", "history", "mcp", "tui", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestVersionCmd(t *testing.T) {
	setupTestServices(t)
	original := version
	version = "test-version-1.0.0"
	defer func() { version = original }()

	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "samarth version test-version-1.0.0")
}

func TestAskCmd(t *testing.T) {
	ts := setupTestServices(t)
	ts.answers.resp = domain.AnswerResponse{
		Answer: "Punjab produced 1,250,000 tonnes of wheat in 2010. [Source 1]",
		Sources: []domain.Source{{
			Text:      "In Punjab, Ludhiana district, Wheat crop production was...",
			Source:    domain.SourceMinistryOfAgriculture,
			Type:      "crop_production",
			Relevance: 0.512,
		}},
	}

	out, err := execute(t, "ask", "wheat", "in", "Punjab")
	require.NoError(t, err)

	assert.Equal(t, "wheat in Punjab", ts.answers.query)
	assert.Contains(t, out, "[Source 1]")
	assert.Contains(t, out, "Sources:")
	assert.Contains(t, out, "[1] data.gov.in - Ministry of Agriculture (crop_production, relevance 0.512)")
}

func TestAskCmd_JSON(t *testing.T) {
	ts := setupTestServices(t)
	ts.answers.resp = domain.AnswerResponse{Answer: domain.AnswerNotIndexed}

	out, err := execute(t, "ask", "--json", "anything")
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.Equal(t, domain.AnswerNotIndexed, body["answer"])
	assert.Equal(t, []any{}, body["sources"])
}

func TestAskCmd_RequiresQuestion(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "ask")
	assert.Error(t, err)
}

func TestAskCmd_Error(t *testing.T) {
	ts := setupTestServices(t)
	ts.answers.err = errors.New("embed query: timeout")

	_, err := execute(t, "ask", "rainfall")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ask failed")
}

func TestStatsCmd(t *testing.T) {
	ts := setupTestServices(t)
	ts.answers.stats = driving.Stats{
		VectorStore: domain.IndexStats{TotalDocuments: 12, EmbeddingDimension: 384, IndexSize: 12},
		Cache:       domain.CacheStats{Size: 1, MaxSize: 1000, TTL: 3600, CurrSize: 1},
		IsIndexed:   true,
		IndexStatus: domain.IndexStatus{State: domain.IndexStateComplete},
	}

	out, err := execute(t, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Documents: 12")
	assert.Contains(t, out, "State: complete")
	assert.Contains(t, out, "Entries: 1 / 1000")
	assert.Contains(t, out, "TTL: 3600s")
}

func TestIndexCmd(t *testing.T) {
	ts := setupTestServices(t)
	ts.index.status = domain.IndexStatus{State: domain.IndexStateComplete, RunID: "run-1", DocumentsAdded: 5}
	ts.index.runs = []domain.IndexRun{sampleRun()}

	out, err := execute(t, "index")
	require.NoError(t, err)

	assert.Equal(t, 1, ts.index.ran)
	assert.Contains(t, out, "Indexed 5 documents (run run-1)")
	assert.Contains(t, out, "Skipped: rainfall")
}

func TestIndexCmd_AllSkippedKeepsIndex(t *testing.T) {
	ts := setupTestServices(t)
	ts.index.status = domain.IndexStatus{State: domain.IndexStateComplete, RunID: "run-2", DocumentsAdded: 5}
	run := sampleRun()
	run.ID = "run-2"
	run.Documents = map[domain.DatasetCategory]int{}
	run.Skipped = []domain.DatasetCategory{domain.DatasetCropProduction, domain.DatasetRainfall}
	ts.index.runs = []domain.IndexRun{run}

	out, err := execute(t, "index")
	require.NoError(t, err)

	assert.Contains(t, out, "kept the previous index (5 documents)")
	assert.NotContains(t, out, "Indexed 5 documents")
	assert.Contains(t, out, "Skipped: crop_production")
}

func TestIndexCmd_Failure(t *testing.T) {
	ts := setupTestServices(t)
	ts.index.runErr = domain.ErrIndexingInProgress

	_, err := execute(t, "index")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrIndexingInProgress)
}

func TestHistoryCmd(t *testing.T) {
	ts := setupTestServices(t)
	failed := sampleRun()
	failed.ID = "run-0"
	failed.State = domain.IndexStateFailed
	failed.Reason = "cancelled"
	ts.index.runs = []domain.IndexRun{sampleRun(), failed}

	out, err := execute(t, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "run-0")
	assert.Contains(t, out, "Reason: cancelled")
}

func TestHistoryCmd_Empty(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No indexing runs recorded.")
}

func TestDatasetsSearchCmd(t *testing.T) {
	ts := setupTestServices(t)
	ts.datasets.results = []map[string]any{{"title": "Rainfall in India", "index_name": "8e0bd482"}}

	out, err := execute(t, "datasets", "search", "rainfall")
	require.NoError(t, err)
	assert.Contains(t, out, "[1] Rainfall in India")
	assert.Contains(t, out, "Resource: 8e0bd482")
}

func TestDatasetsSearchCmd_NoResults(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "datasets", "search", "nothing")
	require.NoError(t, err)
	assert.Contains(t, out, "No datasets found.")
}

func TestConfigPathCmd(t *testing.T) {
	setupTestServices(t)
	dir := configDir

	out, err := execute(t, "config", "path", "--config-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(dir, "config.toml"))
}

func TestConfigSetAndShow(t *testing.T) {
	setupTestServices(t)
	dir := configDir

	out, err := execute(t, "config", "set", "llm.api_key", "sk-1234567890abcdef", "--config-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Set llm.api_key = sk-1...cdef")

	_, err = execute(t, "config", "set", "llm.provider", "openai", "--config-dir", dir)
	require.NoError(t, err)

	out, err = execute(t, "config", "show", "--config-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "[LLM]")
	assert.Contains(t, out, "OpenAI-compatible (cloud)")
	assert.NotContains(t, out, "sk-1234567890abcdef")
	assert.FileExists(t, filepath.Join(dir, "config.toml"))
}

func TestConfigSetCmd_UnknownKey(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "config", "set", "no.such_key", "1", "--config-dir", configDir)
	assert.Error(t, err)
}

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Short key", input: "abc123", expected: "****"},
		{name: "Exactly 8 chars", input: "12345678", expected: "****"},
		{name: "Long key", input: "sk-1234567890abcdef", expected: "sk-1...cdef"},
		{name: "Empty key", input: "", expected: "****"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, maskAPIKey(tt.input))
		})
	}
}
