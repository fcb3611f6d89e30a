package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/samarth/internal/core/domain"
	"github.com/custodia-labs/samarth/internal/core/ports/driven"
)

func indexedRig(t *testing.T) *testRig {
	t.Helper()
	rig := newTestRig(t)
	require.NoError(t, rig.indexer.Run(context.Background()))
	require.Equal(t, 3, rig.index.Len())
	return rig
}

func TestAnswer_EndToEndPunjabWheat(t *testing.T) {
	rig := indexedRig(t)
	ctx := context.Background()

	resp, err := rig.answers.Answer(ctx, "What was the wheat production in Punjab in 2010?")
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeGenerated, resp.Outcome)
	assert.Equal(t, "Punjab produced the most wheat. [Source 1]", resp.Answer)
	require.Len(t, resp.Sources, 3)

	top := resp.Sources[0]
	require.NotNil(t, top.Metadata.Crop)
	assert.Equal(t, "Punjab", top.Metadata.Crop.State)
	assert.Equal(t, domain.SourceMinistryOfAgriculture, top.Source)
	assert.Equal(t, "crop_production", top.Type)
	assert.True(t, strings.HasSuffix(top.Text, "..."))
	for i := 1; i < len(resp.Sources); i++ {
		assert.GreaterOrEqual(t, resp.Sources[i-1].Relevance, resp.Sources[i].Relevance)
	}

	require.NotNil(t, resp.QueryInfo)
	assert.Equal(t, []string{"Punjab"}, resp.QueryInfo.States)
	assert.Equal(t, []string{"Wheat"}, resp.QueryInfo.Crops)
	assert.Equal(t, []int{2010}, resp.QueryInfo.Years)

	// The prompt carries the system persona and numbered sources.
	require.Len(t, rig.llm.messages, 2)
	assert.Equal(t, driven.RoleSystem, rig.llm.messages[0].Role)
	assert.Contains(t, rig.llm.messages[0].Content, "You are Samarth")
	assert.Contains(t, rig.llm.messages[1].Content, "[Source 1: data.gov.in - Ministry of Agriculture]")
	assert.Contains(t, rig.llm.messages[1].Content, "Question: What was the wheat production in Punjab in 2010?")
	assert.Equal(t, AnswerMaxTokens, rig.llm.opts.MaxTokens)
	assert.InDelta(t, AnswerTemperature, rig.llm.opts.Temperature, 1e-9)

	// The wire form exposes flat metadata.
	data, err := json.Marshal(resp)
	require.NoError(t, err)
	var wire map[string]any
	require.NoError(t, json.Unmarshal(data, &wire))
	first := wire["sources"].([]any)[0].(map[string]any)
	assert.Equal(t, "Punjab", first["metadata"].(map[string]any)["state"])
}

func TestAnswer_CacheHitSkipsLLM(t *testing.T) {
	rig := indexedRig(t)
	ctx := context.Background()

	first, err := rig.answers.Answer(ctx, "rainfall in coastal karnataka")
	require.NoError(t, err)
	second, err := rig.answers.Answer(ctx, "rainfall in coastal karnataka")
	require.NoError(t, err)

	assert.Equal(t, 1, rig.llm.callCount())
	assert.Equal(t, domain.OutcomeCacheHit, second.Outcome)
	assert.Equal(t, first.Answer, second.Answer)
	assert.Equal(t, first.Sources, second.Sources)
}

func TestAnswer_NotIndexed(t *testing.T) {
	rig := newTestRig(t)

	resp, err := rig.answers.Answer(context.Background(), "anything")
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeNotIndexed, resp.Outcome)
	assert.Equal(t, domain.AnswerNotIndexed, resp.Answer)
	assert.Empty(t, resp.Sources)
	assert.Nil(t, resp.QueryInfo)
	assert.Zero(t, rig.llm.callCount())
	assert.Zero(t, rig.cache.Stats(context.Background()).Size)

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"answer":"`+domain.AnswerNotIndexed+`","sources":[],"query_info":{}}`, string(data))
}

func TestAnswer_DegradesWhenLLMFails(t *testing.T) {
	rig := indexedRig(t)
	rig.llm.chatFunc = func(_ context.Context, _ []driven.ChatMessage) (string, error) {
		return "", errors.New("upstream 503")
	}
	ctx := context.Background()

	resp, err := rig.answers.Answer(ctx, "wheat in punjab")
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeDegraded, resp.Outcome)
	assert.Equal(t, "I apologize, but I encountered an error: upstream 503", resp.Answer)
	assert.NotEmpty(t, resp.Sources)
	assert.NotNil(t, resp.QueryInfo)

	// Degraded answers are not cached, so a recovered LLM is used next time.
	rig.llm.chatFunc = nil
	resp, err = rig.answers.Answer(ctx, "wheat in punjab")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeGenerated, resp.Outcome)
	assert.Equal(t, 2, rig.llm.callCount())
}

func TestAnswer_DegradesWithoutLLM(t *testing.T) {
	rig := indexedRig(t)
	answers := NewAnswerService(rig.index, rig.embedder, nil, rig.prompts, rig.cache, AnswerConfig{})

	resp, err := answers.Answer(context.Background(), "wheat in punjab")
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeDegraded, resp.Outcome)
	assert.True(t, strings.HasPrefix(resp.Answer, domain.AnswerApologyPrefix))
	assert.Len(t, resp.Sources, 3)
}

func TestAnswer_GenerateTimeout(t *testing.T) {
	rig := indexedRig(t)
	rig.llm.chatFunc = func(ctx context.Context, _ []driven.ChatMessage) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}
	answers := NewAnswerService(rig.index, rig.embedder, rig.llm, rig.prompts, rig.cache,
		AnswerConfig{GenerateTimeout: 20 * time.Millisecond})

	resp, err := answers.Answer(context.Background(), "wheat")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeDegraded, resp.Outcome)
	assert.Contains(t, resp.Answer, "deadline exceeded")
}

func TestAnswer_NoResultsNotCached(t *testing.T) {
	rig := indexedRig(t)
	answers := NewAnswerService(&emptySearchIndex{VectorIndex: rig.index}, rig.embedder, rig.llm, rig.prompts, rig.cache, AnswerConfig{})
	ctx := context.Background()

	resp, err := answers.Answer(ctx, "wheat")
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeNoResults, resp.Outcome)
	assert.Equal(t, domain.AnswerNoResults, resp.Answer)
	assert.Empty(t, resp.Sources)
	require.NotNil(t, resp.QueryInfo)
	assert.Equal(t, "wheat", resp.QueryInfo.OriginalQuery)
	assert.Zero(t, rig.llm.callCount())
	assert.Zero(t, rig.cache.Stats(ctx).Size)
}

func TestAnswer_EmptyQuery(t *testing.T) {
	rig := newTestRig(t)

	_, err := rig.answers.Answer(context.Background(), "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAnswer_EmbeddingFailureIsError(t *testing.T) {
	rig := indexedRig(t)
	answers := NewAnswerService(rig.index, failingEmbedder{}, rig.llm, rig.prompts, rig.cache, AnswerConfig{})

	_, err := answers.Answer(context.Background(), "wheat")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embed query")
}

func TestAnswer_TopK(t *testing.T) {
	rig := indexedRig(t)
	answers := NewAnswerService(rig.index, rig.embedder, rig.llm, rig.prompts, rig.cache, AnswerConfig{TopK: 1})

	resp, err := answers.Answer(context.Background(), "rice in kerala")
	require.NoError(t, err)
	assert.Len(t, resp.Sources, 1)
}

func TestAnswerService_StatsAndClearCache(t *testing.T) {
	rig := indexedRig(t)
	ctx := context.Background()

	_, err := rig.answers.Answer(ctx, "wheat")
	require.NoError(t, err)

	stats := rig.answers.Stats(ctx)
	assert.True(t, stats.IsIndexed)
	assert.Equal(t, 3, stats.VectorStore.TotalDocuments)
	assert.Equal(t, testDim, stats.VectorStore.EmbeddingDimension)
	assert.Equal(t, 1, stats.Cache.Size)
	assert.Equal(t, domain.IndexStateComplete, stats.IndexStatus.State)

	require.NoError(t, rig.answers.ClearCache(ctx))
	assert.Zero(t, rig.answers.Stats(ctx).Cache.Size)
}

func TestAnswerService_ClearCacheStoreDown(t *testing.T) {
	rig := indexedRig(t)
	answers := NewAnswerService(rig.index, rig.embedder, rig.llm, rig.prompts,
		NewResultCache(failingCacheStore{}), AnswerConfig{})

	assert.NoError(t, answers.ClearCache(context.Background()))
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short...", preview("short"))

	long := strings.Repeat("अ", 250)
	got := preview(long)
	assert.Equal(t, 203, len([]rune(got)))
	assert.True(t, strings.HasSuffix(got, "..."))
}

// emptySearchIndex reports documents but never finds any.
type emptySearchIndex struct {
	driven.VectorIndex
}

func (e *emptySearchIndex) Search(_ []float32, _ int) ([]domain.SearchResult, error) {
	return []domain.SearchResult{}, nil
}
