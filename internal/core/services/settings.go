package services

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/samarth/internal/core/domain"
	"github.com/custodia-labs/samarth/internal/core/ports/driven"
	"github.com/custodia-labs/samarth/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyServerAddr        = "server.addr"
	keyServerCORS        = "server.cors_origins"
	keyIndexDir          = "index.dir"
	keyIndexTopK         = "index.top_k"
	keyIndexAutoIndex    = "index.auto_index"
	keyIndexBatchSize    = "index.embed_batch_size"
	keyIndexGenTimeout   = "index.generate_timeout"
	keyIndexFetchTimeout = "index.fetch_timeout"
	keyIndexWatch        = "index.watch"
	keyCacheBackend      = "cache.backend"
	keyCacheMaxSize      = "cache.max_size"
	keyCacheTTL          = "cache.ttl"
	keyEmbedProvider     = "embedding.provider"
	keyEmbedModel        = "embedding.model"
	keyEmbedBaseURL      = "embedding.base_url"
	keyEmbedAPIKey       = "embedding.api_key"
	keyEmbedDims         = "embedding.dimensions"
	keyLLMProvider       = "llm.provider"
	keyLLMModel          = "llm.model"
	keyLLMBaseURL        = "llm.base_url"
	keyLLMAPIKey         = "llm.api_key"
	keyDataGovBaseURL    = "datagov.base_url"
	keyDataGovAPIKey     = "datagov.api_key"
	keyDataGovCrop       = "datagov.crop_resource"
	keyDataGovRainfall   = "datagov.rainfall_resource"
	keyDataGovLimit      = "datagov.limit"
)

// GroqBaseURL is the OpenAI-compatible Groq endpoint.
const GroqBaseURL = "https://api.groq.com/openai/v1"

// DefaultGroqModel is the Groq model used when LLM_PROVIDER=groq.
const DefaultGroqModel = "llama-3.3-70b-versatile"

// valueKind describes how a string value for a key is parsed.
type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindBool
	kindDuration
	kindList
	kindProvider
	kindBackend
)

// settingKeys lists every supported key and its value kind.
var settingKeys = map[string]valueKind{
	keyServerAddr:        kindString,
	keyServerCORS:        kindList,
	keyIndexDir:          kindString,
	keyIndexTopK:         kindInt,
	keyIndexAutoIndex:    kindBool,
	keyIndexBatchSize:    kindInt,
	keyIndexGenTimeout:   kindDuration,
	keyIndexFetchTimeout: kindDuration,
	keyIndexWatch:        kindBool,
	keyCacheBackend:      kindBackend,
	keyCacheMaxSize:      kindInt,
	keyCacheTTL:          kindDuration,
	keyEmbedProvider:     kindProvider,
	keyEmbedModel:        kindString,
	keyEmbedBaseURL:      kindString,
	keyEmbedAPIKey:       kindString,
	keyEmbedDims:         kindInt,
	keyLLMProvider:       kindProvider,
	keyLLMModel:          kindString,
	keyLLMBaseURL:        kindString,
	keyLLMAPIKey:         kindString,
	keyDataGovBaseURL:    kindString,
	keyDataGovAPIKey:     kindString,
	keyDataGovCrop:       kindString,
	keyDataGovRainfall:   kindString,
	keyDataGovLimit:      kindInt,
}

// SettingKeys returns every supported configuration key.
func SettingKeys() []string {
	keys := make([]string, 0, len(settingKeys))
	for k := range settingKeys {
		keys = append(keys, k)
	}
	return keys
}

// IsSecretKey reports whether a key holds a credential that should be masked.
func IsSecretKey(key string) bool {
	return strings.HasSuffix(key, ".api_key")
}

// SettingsService manages application settings.
// Values resolve in order: environment, config file, defaults.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
// The aiValidator parameter is optional; without it Validate skips pings.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings with environment overrides applied.
func (s *SettingsService) Get() (*domain.Settings, error) {
	d := domain.DefaultSettings()

	settings := &domain.Settings{
		Server: domain.ServerSettings{
			Addr:        s.getString(keyServerAddr, d.Server.Addr),
			CORSOrigins: s.getList(keyServerCORS, d.Server.CORSOrigins),
		},
		Index: domain.IndexSettings{
			Dir:             s.getString(keyIndexDir, d.Index.Dir),
			TopK:            s.getInt(keyIndexTopK, d.Index.TopK),
			AutoIndex:       s.getBool(keyIndexAutoIndex, d.Index.AutoIndex),
			EmbedBatchSize:  s.getInt(keyIndexBatchSize, d.Index.EmbedBatchSize),
			GenerateTimeout: s.getDuration(keyIndexGenTimeout, d.Index.GenerateTimeout),
			FetchTimeout:    s.getDuration(keyIndexFetchTimeout, d.Index.FetchTimeout),
			Watch:           s.getBool(keyIndexWatch, d.Index.Watch),
		},
		Cache: domain.CacheSettings{
			Backend: domain.CacheBackend(s.getString(keyCacheBackend, string(d.Cache.Backend))),
			MaxSize: s.getInt(keyCacheMaxSize, d.Cache.MaxSize),
			TTL:     s.getDuration(keyCacheTTL, d.Cache.TTL),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:   s.getProvider(keyEmbedProvider, d.Embedding.Provider),
			Model:      s.configStore.GetString(keyEmbedModel),
			BaseURL:    s.configStore.GetString(keyEmbedBaseURL),
			APIKey:     s.configStore.GetString(keyEmbedAPIKey),
			Dimensions: s.getInt(keyEmbedDims, d.Embedding.Dimensions),
		},
		LLM: domain.LLMSettings{
			Provider: s.getProvider(keyLLMProvider, d.LLM.Provider),
			Model:    s.configStore.GetString(keyLLMModel),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL),
			APIKey:   s.configStore.GetString(keyLLMAPIKey),
		},
		DataGov: domain.DataGovSettings{
			BaseURL:          s.getString(keyDataGovBaseURL, d.DataGov.BaseURL),
			APIKey:           s.configStore.GetString(keyDataGovAPIKey),
			CropResource:     s.getString(keyDataGovCrop, d.DataGov.CropResource),
			RainfallResource: s.getString(keyDataGovRainfall, d.DataGov.RainfallResource),
			Limit:            s.getInt(keyDataGovLimit, d.DataGov.Limit),
		},
	}

	s.applyEnv(settings)
	return settings, nil
}

// applyEnv layers the environment variables over file settings.
func (s *SettingsService) applyEnv(settings *domain.Settings) {
	if v := s.getenv("DATA_GOV_API_KEY"); v != "" {
		settings.DataGov.APIKey = v
	}

	if v := s.getenv("SAMARTH_ADDR"); v != "" {
		settings.Server.Addr = v
	} else if port := firstNonEmpty(s.getenv("PORT"), s.getenv("FLASK_PORT")); port != "" {
		settings.Server.Addr = ":" + port
	}

	if v := s.getenv("CACHE_DURATION"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			settings.Cache.TTL = time.Duration(secs) * time.Second
		}
	}

	// LLM_PROVIDER=groq selects the OpenAI-compatible Groq endpoint.
	switch provider := strings.ToLower(s.getenv("LLM_PROVIDER")); provider {
	case "":
	case "groq":
		settings.LLM.Provider = domain.AIProviderOpenAI
		settings.LLM.BaseURL = GroqBaseURL
		if settings.LLM.Model == "" {
			settings.LLM.Model = DefaultGroqModel
		}
	default:
		if p := domain.AIProvider(provider); p.IsValid() {
			settings.LLM.Provider = p
		}
	}
	if v := s.getenv("LLM_MODEL"); v != "" {
		settings.LLM.Model = v
	}
	if v := s.getenv("EMBEDDING_PROVIDER"); v != "" {
		if p := domain.AIProvider(strings.ToLower(v)); p.IsValid() {
			settings.Embedding.Provider = p
		}
	}
	if v := s.getenv("EMBEDDING_MODEL"); v != "" {
		settings.Embedding.Model = v
	}

	if settings.LLM.APIKey == "" {
		settings.LLM.APIKey = s.envKeyFor(settings.LLM.Provider, settings.LLM.BaseURL)
	}
	if settings.Embedding.APIKey == "" {
		settings.Embedding.APIKey = s.envKeyFor(settings.Embedding.Provider, settings.Embedding.BaseURL)
	}
}

// envKeyFor returns the provider API key from the environment.
func (s *SettingsService) envKeyFor(provider domain.AIProvider, baseURL string) string {
	switch provider {
	case domain.AIProviderOpenAI:
		if strings.Contains(baseURL, "groq.com") {
			return s.getenv("GROQ_API_KEY")
		}
		return s.getenv("OPENAI_API_KEY")
	case domain.AIProviderAnthropic:
		return s.getenv("ANTHROPIC_API_KEY")
	case domain.AIProviderGemini:
		return firstNonEmpty(s.getenv("GEMINI_API_KEY"), s.getenv("GOOGLE_API_KEY"))
	default:
		return ""
	}
}

// Save persists application settings. Empty API keys are not written so
// credentials supplied through the environment stay out of the file.
func (s *SettingsService) Save(settings *domain.Settings) error {
	values := map[string]any{
		keyServerAddr:        settings.Server.Addr,
		keyServerCORS:        settings.Server.CORSOrigins,
		keyIndexDir:          settings.Index.Dir,
		keyIndexTopK:         settings.Index.TopK,
		keyIndexAutoIndex:    settings.Index.AutoIndex,
		keyIndexBatchSize:    settings.Index.EmbedBatchSize,
		keyIndexGenTimeout:   settings.Index.GenerateTimeout.String(),
		keyIndexFetchTimeout: settings.Index.FetchTimeout.String(),
		keyIndexWatch:        settings.Index.Watch,
		keyCacheBackend:      string(settings.Cache.Backend),
		keyCacheMaxSize:      settings.Cache.MaxSize,
		keyCacheTTL:          settings.Cache.TTL.String(),
		keyEmbedProvider:     settings.Embedding.Provider.String(),
		keyEmbedModel:        settings.Embedding.Model,
		keyEmbedBaseURL:      settings.Embedding.BaseURL,
		keyEmbedDims:         settings.Embedding.Dimensions,
		keyLLMProvider:       settings.LLM.Provider.String(),
		keyLLMModel:          settings.LLM.Model,
		keyLLMBaseURL:        settings.LLM.BaseURL,
		keyDataGovBaseURL:    settings.DataGov.BaseURL,
		keyDataGovCrop:       settings.DataGov.CropResource,
		keyDataGovRainfall:   settings.DataGov.RainfallResource,
		keyDataGovLimit:      settings.DataGov.Limit,
	}
	secrets := map[string]string{
		keyEmbedAPIKey:   settings.Embedding.APIKey,
		keyLLMAPIKey:     settings.LLM.APIKey,
		keyDataGovAPIKey: settings.DataGov.APIKey,
	}
	for k, v := range secrets {
		if v != "" {
			values[k] = v
		}
	}

	for key, value := range values {
		if err := s.configStore.Set(key, value); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
	}
	if err := s.configStore.Save(); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

// Set parses and stores a single key, then persists the file.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKeys[key]
	if !ok {
		return fmt.Errorf("%w: unknown config key %q", domain.ErrInvalidInput, key)
	}

	parsed, err := parseSetting(kind, strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	if err := s.configStore.Save(); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

// parseSetting converts a command-line value to its stored form.
func parseSetting(kind valueKind, value string) (any, error) {
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("expected an integer, got %q", value)
		}
		if n <= 0 {
			return nil, fmt.Errorf("must be positive, got %d", n)
		}
		return n, nil
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("expected true or false, got %q", value)
		}
		return b, nil
	case kindDuration:
		d, err := parseDuration(value)
		if err != nil {
			return nil, err
		}
		return d.String(), nil
	case kindList:
		var items []string
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		return items, nil
	case kindProvider:
		if !domain.AIProvider(value).IsValid() {
			return nil, fmt.Errorf("unknown provider %q", value)
		}
		return value, nil
	case kindBackend:
		if !domain.CacheBackend(value).IsValid() {
			return nil, fmt.Errorf("unknown cache backend %q", value)
		}
		return value, nil
	default:
		return value, nil
	}
}

// parseDuration accepts Go durations ("90s", "1h") or plain seconds.
func parseDuration(value string) (time.Duration, error) {
	if secs, err := strconv.Atoi(value); err == nil {
		if secs <= 0 {
			return 0, fmt.Errorf("must be positive, got %d", secs)
		}
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("expected a duration such as 30s or 1h, got %q", value)
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive, got %s", d)
	}
	return d, nil
}

// Validate checks the settings for consistency and, when a validator is
// set, pings the configured AI providers.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.Embedding.IsConfigured() {
		if settings.Embedding.Provider.RequiresAPIKey() {
			return fmt.Errorf("embedding provider %s requires an API key", settings.Embedding.Provider)
		}
		return fmt.Errorf("embedding provider %q does not support embeddings", settings.Embedding.Provider)
	}
	if settings.LLM.Provider != "" && !settings.LLM.IsConfigured() {
		return fmt.Errorf("LLM provider %s is not usable: check the provider name and API key", settings.LLM.Provider)
	}
	if !settings.Cache.Backend.IsValid() {
		return fmt.Errorf("unknown cache backend %q", settings.Cache.Backend)
	}
	if settings.Index.TopK <= 0 || settings.Cache.MaxSize <= 0 || settings.Index.EmbedBatchSize <= 0 {
		return fmt.Errorf("index.top_k, index.embed_batch_size and cache.max_size must be positive")
	}

	if s.aiValidator == nil {
		return nil
	}
	if err := s.aiValidator.ValidateEmbedding(&settings.Embedding); err != nil {
		return fmt.Errorf("embedding provider: %w", err)
	}
	if err := s.aiValidator.ValidateLLM(&settings.LLM); err != nil {
		return fmt.Errorf("LLM provider: %w", err)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.Settings {
	return domain.DefaultSettings()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getList(key string, defaultVal []string) []string {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetStringSlice(key)
}

// getDuration reads a duration string or an integer number of seconds.
func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	if secs := s.configStore.GetInt(key); secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if str := s.configStore.GetString(key); str != "" {
		if d, err := parseDuration(str); err == nil {
			return d
		}
	}
	return defaultVal
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
