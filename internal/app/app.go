// Package app wires the driven adapters into the core services for a
// configuration directory. It is the composition root shared by every
// driving adapter.
package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/samarth/internal/adapters/driven/ai"
	"github.com/custodia-labs/samarth/internal/adapters/driven/cache/memory"
	"github.com/custodia-labs/samarth/internal/adapters/driven/config/file"
	"github.com/custodia-labs/samarth/internal/adapters/driven/datagov"
	runmemory "github.com/custodia-labs/samarth/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/samarth/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/samarth/internal/adapters/driven/vectorindex/flat"
	"github.com/custodia-labs/samarth/internal/adapters/driven/watcher"
	"github.com/custodia-labs/samarth/internal/core/domain"
	"github.com/custodia-labs/samarth/internal/core/ports/driven"
	"github.com/custodia-labs/samarth/internal/core/services"
	"github.com/custodia-labs/samarth/internal/logger"
)

// Directory names below the config directory.
const (
	IndexDirName   = "index"
	DataDirName    = "data"
	PromptsDirName = "prompts"
)

// ResolveConfigDir returns override, or ~/.samarth when empty.
func ResolveConfigDir(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	return file.DefaultConfigDir()
}

// NewSettingsService builds the settings service over the TOML config file.
func NewSettingsService(configDir string) (*services.SettingsService, error) {
	store, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	return services.NewSettingsService(store, ai.NewConfigValidator()), nil
}

// App holds the wired services.
type App struct {
	Settings  *domain.Settings
	ConfigDir string
	IndexDir  string

	Index    *services.IndexService
	Answers  *services.AnswerService
	Datasets *services.DatasetService

	// Warnings lists non-fatal setup problems, such as a missing LLM.
	Warnings []string

	ai     *ai.InitResult
	cache  driven.CacheStore
	store  *sqlite.Store
	source *datagov.Client
}

// New wires the application. Embedding setup failures are fatal; LLM
// failures only degrade answers and are reported in Warnings.
func New(configDir string, settings *domain.Settings) (*App, error) {
	a := &App{
		Settings:  settings,
		ConfigDir: configDir,
		IndexDir:  settings.Index.Dir,
	}
	if a.IndexDir == "" {
		a.IndexDir = filepath.Join(configDir, IndexDirName)
	}

	aiResult, err := ai.Init(settings)
	if err != nil {
		return nil, fmt.Errorf("initialise embeddings: %w", err)
	}
	a.ai = aiResult
	a.Warnings = append(a.Warnings, aiResult.Warnings...)

	index, err := flat.New(aiResult.EmbeddingService.Dimensions(), a.IndexDir)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create index: %w", err)
	}

	runs, err := a.openStorage(settings)
	if err != nil {
		a.Close()
		return nil, err
	}

	prompts, err := file.NewPromptStore(filepath.Join(configDir, PromptsDirName))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("open prompts: %w", err)
	}

	a.source = datagov.NewClient(datagov.Config{
		BaseURL: settings.DataGov.BaseURL,
		APIKey:  settings.DataGov.APIKey,
		Timeout: settings.Index.FetchTimeout,
	})

	cache := services.NewResultCache(a.cache)
	a.Index = services.NewIndexService(index, aiResult.EmbeddingService, a.source, runs, cache, services.IndexConfig{
		CropResource:     settings.DataGov.CropResource,
		RainfallResource: settings.DataGov.RainfallResource,
		FetchLimit:       settings.DataGov.Limit,
		EmbedBatchSize:   settings.Index.EmbedBatchSize,
		FetchTimeout:     settings.Index.FetchTimeout,
	})
	a.Answers = services.NewAnswerService(index, aiResult.EmbeddingService, aiResult.LLMService, prompts, cache,
		services.AnswerConfig{
			TopK:            settings.Index.TopK,
			GenerateTimeout: settings.Index.GenerateTimeout,
		})
	a.Answers.SetStatusReporter(a.Index)
	a.Datasets = services.NewDatasetService(a.source)

	return a, nil
}

// openStorage opens the SQLite store for run history and picks the cache
// backend. Without SQLite, history is kept in memory for this process.
func (a *App) openStorage(settings *domain.Settings) (driven.IndexRunStore, error) {
	store, err := sqlite.NewStore(filepath.Join(a.ConfigDir, DataDirName))
	if err != nil {
		if settings.Cache.Backend == domain.CacheBackendSQLite {
			return nil, fmt.Errorf("open sqlite cache: %w", err)
		}
		msg := fmt.Sprintf("run history kept in memory only: %v", err)
		logger.Warn("%s", msg)
		a.Warnings = append(a.Warnings, msg)
		a.cache = memory.NewStore(settings.Cache.MaxSize, settings.Cache.TTL)
		return runmemory.NewRunStore(), nil
	}
	a.store = store

	if settings.Cache.Backend == domain.CacheBackendSQLite {
		a.cache = store.CacheStore(settings.Cache.MaxSize, settings.Cache.TTL)
	} else {
		a.cache = memory.NewStore(settings.Cache.MaxSize, settings.Cache.TTL)
	}
	return store.RunStore(), nil
}

// Restore loads the persisted index. A corrupt index is an error.
func (a *App) Restore(ctx context.Context) (bool, error) {
	return a.Index.Restore(ctx)
}

// WatchIndex reloads the index whenever another process re-persists it.
// It blocks until ctx is cancelled.
func (a *App) WatchIndex(ctx context.Context) error {
	return watcher.New(a.IndexDir, a.Index).Run(ctx)
}

// Close releases provider and storage resources.
func (a *App) Close() error {
	var errs []error
	if a.ai != nil {
		a.ai.Close()
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close cache: %w", err))
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
	}
	return errors.Join(errs...)
}
