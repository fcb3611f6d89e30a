package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/samarth/internal/core/domain"
	"github.com/custodia-labs/samarth/internal/core/ports/driven"
	"github.com/custodia-labs/samarth/internal/core/ports/driving"
	"github.com/custodia-labs/samarth/internal/logger"
)

// Ensure IndexService implements the interface.
var _ driving.IndexService = (*IndexService)(nil)

// Indexing defaults.
const (
	DefaultFetchLimit     = 1000
	DefaultEmbedBatchSize = 32
	DefaultFetchTimeout   = 30 * time.Second
)

// reasonCancelled is the failure reason of a cancelled run.
const reasonCancelled = "cancelled"

// IndexConfig selects the upstream resources and batch sizes.
type IndexConfig struct {
	CropResource     string
	RainfallResource string
	FetchLimit       int
	EmbedBatchSize   int
	FetchTimeout     time.Duration
}

// dataset pairs an upstream resource with its record formatter.
type dataset struct {
	category   domain.DatasetCategory
	resourceID string
	format     func(rows []map[string]any) []domain.Record
}

// IndexService fetches the upstream datasets, embeds them and swaps the
// result into the vector index. At most one run is active at a time.
type IndexService struct {
	index    driven.VectorIndex
	embedder driven.EmbeddingService
	source   driven.DataSource
	runs     driven.IndexRunStore
	cache    *ResultCache
	cfg      IndexConfig
	now      func() time.Time

	mu     sync.Mutex
	status domain.IndexStatus
	cancel context.CancelFunc
	done   chan struct{}
}

// NewIndexService creates a new index service.
// The cache parameter is optional; when set it is cleared after every
// successful run so answers never outlive the corpus they came from.
func NewIndexService(
	index driven.VectorIndex,
	embedder driven.EmbeddingService,
	source driven.DataSource,
	runs driven.IndexRunStore,
	cache *ResultCache,
	cfg IndexConfig,
) *IndexService {
	if cfg.CropResource == "" {
		cfg.CropResource = domain.DefaultCropResource
	}
	if cfg.RainfallResource == "" {
		cfg.RainfallResource = domain.DefaultRainfallResource
	}
	if cfg.FetchLimit <= 0 {
		cfg.FetchLimit = DefaultFetchLimit
	}
	if cfg.EmbedBatchSize <= 0 {
		cfg.EmbedBatchSize = DefaultEmbedBatchSize
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultFetchTimeout
	}
	return &IndexService{
		index:    index,
		embedder: embedder,
		source:   source,
		runs:     runs,
		cache:    cache,
		cfg:      cfg,
		now:      time.Now,
		status:   domain.IndexStatus{State: domain.IndexStateNotStarted},
	}
}

// Restore loads a persisted index. It reports whether one was found;
// corruption is returned as an error so startup can refuse to continue.
// It returns domain.ErrIndexingInProgress while a run is active. The lock
// is held throughout so no run can start while the index is being swapped.
func (s *IndexService) Restore(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status.State == domain.IndexStateInProgress {
		return false, domain.ErrIndexingInProgress
	}

	restored, err := s.index.Restore()
	if err != nil {
		return false, fmt.Errorf("restore index: %w", err)
	}

	if restored {
		s.status = domain.IndexStatus{State: domain.IndexStateComplete, DocumentsAdded: s.index.Len()}
		if last, err := s.runs.List(ctx, 1); err == nil && len(last) == 1 {
			s.status.RunID = last[0].ID
			s.status.StartedAt = timePtr(last[0].StartedAt)
			s.status.FinishedAt = copyTime(last[0].FinishedAt)
		}
		logger.Info("restored index with %d documents", s.status.DocumentsAdded)
	} else {
		s.status = domain.IndexStatus{State: domain.IndexStateNotStarted}
	}
	return restored, nil
}

// Reload re-reads the persisted index written by another process and
// drops cached answers. It is a no-op while a run is active.
func (s *IndexService) Reload(ctx context.Context) error {
	if _, err := s.Restore(ctx); err != nil {
		if errors.Is(err, domain.ErrIndexingInProgress) {
			logger.Debug("skipping reload while indexing")
			return nil
		}
		return err
	}
	if s.cache != nil {
		s.cache.Clear(ctx)
	}
	return nil
}

// Start launches a background run.
func (s *IndexService) Start(ctx context.Context) (domain.IndexStatus, bool) {
	run, runCtx, cancel, ok := s.begin(context.WithoutCancel(ctx))
	if !ok {
		return s.Status(), false
	}

	s.mu.Lock()
	done := s.done
	status := s.copyStatus()
	s.mu.Unlock()

	go func() {
		defer close(done)
		_ = s.execute(runCtx, cancel, run)
	}()
	return status, true
}

// Run indexes synchronously.
func (s *IndexService) Run(ctx context.Context) error {
	run, runCtx, cancel, ok := s.begin(ctx)
	if !ok {
		return domain.ErrIndexingInProgress
	}

	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	defer close(done)

	return s.execute(runCtx, cancel, run)
}

// begin moves to InProgress unless a run is already active.
func (s *IndexService) begin(ctx context.Context) (domain.IndexRun, context.Context, context.CancelFunc, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status.State == domain.IndexStateInProgress {
		return domain.IndexRun{}, nil, nil, false
	}

	run := domain.IndexRun{
		ID:        uuid.New().String(),
		StartedAt: s.now(),
		State:     domain.IndexStateInProgress,
		Documents: make(map[domain.DatasetCategory]int),
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.status = domain.IndexStatus{
		State:     domain.IndexStateInProgress,
		RunID:     run.ID,
		StartedAt: timePtr(run.StartedAt),
	}

	s.saveRun(run)
	logger.Info("indexing run %s started", run.ID)
	return run, runCtx, cancel, true
}

// execute runs the pipeline and records the outcome. cancel is the run's
// own CancelFunc from begin.
func (s *IndexService) execute(ctx context.Context, cancel context.CancelFunc, run domain.IndexRun) error {
	err := s.build(ctx, &run)
	if err != nil && ctx.Err() != nil {
		err = fmt.Errorf("%s: %w", reasonCancelled, ctx.Err())
	}

	finished := s.now()
	run.FinishedAt = &finished
	if err != nil {
		run.State = domain.IndexStateFailed
		run.Reason = err.Error()
		if errors.Is(err, context.Canceled) {
			run.Reason = reasonCancelled
		}
		logger.Error("indexing run %s failed: %v", run.ID, err)
	} else {
		run.State = domain.IndexStateComplete
		logger.Info("indexing run %s complete: %d documents", run.ID, run.TotalDocuments())
	}
	s.saveRun(run)

	docs := run.TotalDocuments()
	if run.State == domain.IndexStateComplete && docs == 0 {
		// Every dataset was skipped; the previous corpus is still served.
		docs = s.index.Len()
	}

	cancel()
	s.mu.Lock()
	s.status = domain.IndexStatus{
		State:          run.State,
		Reason:         run.Reason,
		RunID:          run.ID,
		StartedAt:      timePtr(run.StartedAt),
		FinishedAt:     timePtr(finished),
		DocumentsAdded: docs,
	}
	s.cancel = nil
	s.mu.Unlock()

	return err
}

// build fetches, formats and embeds every dataset, then swaps the corpus in.
func (s *IndexService) build(ctx context.Context, run *domain.IndexRun) error {
	logger.Section("Index")

	var (
		texts      []string
		metadata   []domain.Metadata
		embeddings [][]float32
	)

	for _, ds := range s.datasets() {
		records, err := s.fetch(ctx, ds)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Warn("skipping %s: %v", ds.category, err)
			run.Skipped = append(run.Skipped, ds.category)
			continue
		}
		if len(records) == 0 {
			logger.Warn("skipping %s: no usable records", ds.category)
			run.Skipped = append(run.Skipped, ds.category)
			continue
		}

		batchTexts := make([]string, len(records))
		for i, r := range records {
			batchTexts[i] = r.Text
			metadata = append(metadata, r.Metadata)
		}

		logger.Info("generating embeddings for %d %s documents", len(records), ds.category)
		vecs, err := s.embed(ctx, batchTexts)
		if err != nil {
			return fmt.Errorf("embed %s: %w", ds.category, err)
		}

		texts = append(texts, batchTexts...)
		embeddings = append(embeddings, vecs...)
		run.Documents[ds.category] = len(records)
	}

	if len(texts) == 0 {
		// Nothing fetched: keep serving the previous corpus.
		logger.Warn("no datasets could be fetched, index left unchanged")
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.index.Replace(embeddings, texts, metadata); err != nil {
		return fmt.Errorf("replace index: %w", err)
	}
	if err := s.index.Persist(); err != nil {
		return fmt.Errorf("persist index: %w", err)
	}

	if s.cache != nil {
		s.cache.Clear(ctx)
	}
	return nil
}

func (s *IndexService) datasets() []dataset {
	return []dataset{
		{category: domain.DatasetCropProduction, resourceID: s.cfg.CropResource, format: CropRecords},
		{category: domain.DatasetRainfall, resourceID: s.cfg.RainfallResource, format: RainfallRecords},
	}
}

// fetch downloads one dataset page and formats its rows.
func (s *IndexService) fetch(ctx context.Context, ds dataset) ([]domain.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	defer cancel()

	logger.Info("fetching %s data", ds.category)
	rows, err := s.source.FetchRecords(ctx, ds.resourceID, nil, s.cfg.FetchLimit, 0)
	if err != nil {
		return nil, err
	}
	return ds.format(rows), nil
}

// embed embeds texts in batches of EmbedBatchSize.
func (s *IndexService) embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += s.cfg.EmbedBatchSize {
		end := min(start+s.cfg.EmbedBatchSize, len(texts))
		vecs, err := s.embedder.EmbedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		if len(vecs) != end-start {
			return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(vecs), end-start)
		}
		out = append(out, vecs...)
	}
	return out, nil
}

// Status returns a snapshot of the indexing state.
func (s *IndexService) Status() domain.IndexStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyStatus()
}

// copyStatus returns the status with its time pointers detached.
// Caller must hold s.mu.
func (s *IndexService) copyStatus() domain.IndexStatus {
	st := s.status
	st.StartedAt = copyTime(st.StartedAt)
	st.FinishedAt = copyTime(st.FinishedAt)
	return st
}

// Cancel stops the active run, if any.
func (s *IndexService) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

// Wait blocks until the active run finishes.
func (s *IndexService) Wait() {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done != nil {
		<-done
	}
}

// History lists recent runs, newest first.
func (s *IndexService) History(ctx context.Context, limit int) ([]domain.IndexRun, error) {
	runs, err := s.runs.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list index runs: %w", err)
	}
	return runs, nil
}

// saveRun records a run, logging rather than failing on store errors.
func (s *IndexService) saveRun(run domain.IndexRun) {
	if err := s.runs.Save(context.Background(), run); err != nil {
		logger.Warn("save index run %s: %v", run.ID, err)
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
