package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/samarth/internal/core/domain"
	"github.com/custodia-labs/samarth/internal/core/ports/driven"
	"github.com/custodia-labs/samarth/internal/core/ports/driving"
	"github.com/custodia-labs/samarth/internal/logger"
)

// Ensure AnswerService implements the interface.
var _ driving.AnswerService = (*AnswerService)(nil)

// Generation parameters for answers.
const (
	AnswerTemperature = 0.3
	AnswerMaxTokens   = 1024

	// DefaultTopK is the number of documents retrieved per question.
	DefaultTopK = 5

	// DefaultGenerateTimeout bounds a single LLM call.
	DefaultGenerateTimeout = 60 * time.Second

	// previewRunes is the length of a source preview before the ellipsis.
	previewRunes = 200
)

// StatusReporter exposes the indexing state for stats.
type StatusReporter interface {
	Status() domain.IndexStatus
}

// AnswerConfig tunes retrieval and generation.
type AnswerConfig struct {
	TopK            int
	GenerateTimeout time.Duration
}

// AnswerService runs the retrieve-then-generate pipeline.
type AnswerService struct {
	index    driven.VectorIndex
	embedder driven.EmbeddingService
	llm      driven.LLMService
	prompts  driven.PromptStore
	cache    *ResultCache
	status   StatusReporter
	cfg      AnswerConfig
}

// NewAnswerService creates a new answer service.
// The llm parameter is optional; without it answers degrade to an apology
// that still lists the retrieved sources.
func NewAnswerService(
	index driven.VectorIndex,
	embedder driven.EmbeddingService,
	llm driven.LLMService,
	prompts driven.PromptStore,
	cache *ResultCache,
	cfg AnswerConfig,
) *AnswerService {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	if cfg.GenerateTimeout <= 0 {
		cfg.GenerateTimeout = DefaultGenerateTimeout
	}
	return &AnswerService{
		index:    index,
		embedder: embedder,
		llm:      llm,
		prompts:  prompts,
		cache:    cache,
		cfg:      cfg,
	}
}

// SetStatusReporter sets the source of the index status shown in stats.
func (s *AnswerService) SetStatusReporter(r StatusReporter) {
	s.status = r
}

// Answer answers a question from the indexed corpus.
func (s *AnswerService) Answer(ctx context.Context, query string) (domain.AnswerResponse, error) {
	logger.Section("Answer")
	if strings.TrimSpace(query) == "" {
		return domain.AnswerResponse{}, fmt.Errorf("%w: no query provided", domain.ErrInvalidInput)
	}

	if s.index.Len() == 0 {
		logger.Debug("index is empty, not answering %q", query)
		return domain.AnswerResponse{
			Answer:  domain.AnswerNotIndexed,
			Sources: []domain.Source{},
			Outcome: domain.OutcomeNotIndexed,
		}, nil
	}

	params := map[string]any{"query": query}
	if cached, ok := s.cache.Get(ctx, params); ok {
		logger.Info("returning cached result for %q", query)
		cached.Outcome = domain.OutcomeCacheHit
		return cached, nil
	}

	info := ParseQuery(query)
	logger.Debug("query type %s, states %v, crops %v, years %v", info.QueryType, info.States, info.Crops, info.Years)

	results, err := s.retrieve(ctx, query)
	if err != nil {
		return domain.AnswerResponse{}, err
	}
	if len(results) == 0 {
		return domain.AnswerResponse{
			Answer:    domain.AnswerNoResults,
			Sources:   []domain.Source{},
			QueryInfo: &info,
			Outcome:   domain.OutcomeNoResults,
		}, nil
	}

	resp := domain.AnswerResponse{
		Sources:   packageSources(results),
		QueryInfo: &info,
	}

	answer, err := s.generate(ctx, query, FormatContext(results))
	if err != nil {
		logger.Warn("generate answer: %v", err)
		resp.Answer = domain.AnswerApologyPrefix + err.Error()
		resp.Outcome = domain.OutcomeDegraded
		return resp, nil
	}

	resp.Answer = answer
	resp.Outcome = domain.OutcomeGenerated
	s.cache.Set(ctx, params, resp)
	return resp, nil
}

// retrieve embeds the query and returns its nearest documents.
func (s *AnswerService) retrieve(ctx context.Context, query string) ([]domain.SearchResult, error) {
	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := s.index.Search(vec, s.cfg.TopK)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	logger.Debug("retrieved %d documents", len(results))
	return results, nil
}

// generate asks the LLM for an answer grounded in the assembled context.
func (s *AnswerService) generate(ctx context.Context, query, contextText string) (string, error) {
	if s.llm == nil {
		return "", domain.ErrLLMUnavailable
	}

	system, err := s.prompts.Load(driven.PromptAnswerSystem)
	if err != nil {
		return "", fmt.Errorf("load system prompt: %w", err)
	}
	userTemplate, err := s.prompts.Load(driven.PromptAnswerUser)
	if err != nil {
		return "", fmt.Errorf("load user prompt: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.GenerateTimeout)
	defer cancel()

	start := time.Now()
	answer, err := s.llm.Chat(ctx, []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: system},
		{Role: driven.RoleUser, Content: fmt.Sprintf(userTemplate, contextText, query)},
	}, driven.ChatOptions{MaxTokens: AnswerMaxTokens, Temperature: AnswerTemperature})
	if err != nil {
		return "", err
	}
	logger.Debug("generated answer with %s in %s", s.llm.ModelName(), time.Since(start).Round(time.Millisecond))
	return answer, nil
}

// packageSources converts search hits into cited sources.
func packageSources(results []domain.SearchResult) []domain.Source {
	sources := make([]domain.Source, len(results))
	for i, r := range results {
		sources[i] = domain.Source{
			Text:      preview(r.Document),
			Source:    r.Metadata.SourceLabel(),
			Type:      r.Metadata.TypeLabel(),
			Metadata:  r.Metadata,
			Relevance: r.Similarity,
		}
	}
	return sources
}

// preview truncates text to previewRunes runes and always appends "...".
func preview(text string) string {
	runes := []rune(text)
	if len(runes) > previewRunes {
		runes = runes[:previewRunes]
	}
	return string(runes) + "..."
}

// Stats reports vector index and cache occupancy.
func (s *AnswerService) Stats(ctx context.Context) driving.Stats {
	stats := driving.Stats{
		VectorStore: s.index.Stats(),
		Cache:       s.cache.Stats(ctx),
		IsIndexed:   s.index.Len() > 0,
	}
	if s.status != nil {
		stats.IndexStatus = s.status.Status()
	} else if stats.IsIndexed {
		stats.IndexStatus = domain.IndexStatus{State: domain.IndexStateComplete, DocumentsAdded: s.index.Len()}
	} else {
		stats.IndexStatus = domain.IndexStatus{State: domain.IndexStateNotStarted}
	}
	return stats
}

// ClearCache drops all cached answers. Store failures are logged, never
// returned.
func (s *AnswerService) ClearCache(ctx context.Context) error {
	s.cache.Clear(ctx)
	return nil
}
