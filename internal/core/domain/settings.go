package domain

import "time"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API, or any compatible API such as Groq.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderGemini is Google Gemini cloud API.
	AIProviderGemini AIProvider = "gemini"

	// AIProviderHashing is the offline feature-hashing embedder.
	AIProviderHashing AIProvider = "hashing"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic, AIProviderGemini, AIProviderHashing:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic || p == AIProviderGemini
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama || p == AIProviderHashing
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI-compatible (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderGemini:
		return "Google Gemini (cloud)"
	case AIProviderHashing:
		return "Feature hashing (offline)"
	default:
		return Unknown
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or compatible APIs).
	BaseURL string

	// APIKey is the API key (for cloud providers).
	APIKey string

	// Dimensions overrides the model's default vector size.
	Dimensions int
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderAnthropic {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama, Groq or compatible APIs).
	BaseURL string

	// APIKey is the API key (for cloud providers).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() || l.Provider == AIProviderHashing {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// ServerSettings holds HTTP server configuration.
type ServerSettings struct {
	// Addr is the listen address.
	Addr string

	// CORSOrigins lists allowed browser origins.
	CORSOrigins []string
}

// IndexSettings holds vector index and indexing configuration.
type IndexSettings struct {
	// Dir is the directory holding the persisted index files.
	Dir string

	// TopK is the number of documents retrieved per query.
	TopK int

	// AutoIndex starts indexing at server startup when nothing was restored.
	AutoIndex bool

	// EmbedBatchSize bounds texts per embedding request.
	EmbedBatchSize int

	// GenerateTimeout bounds each LLM call.
	GenerateTimeout time.Duration

	// FetchTimeout bounds each upstream data fetch.
	FetchTimeout time.Duration

	// Watch reloads the index when another process re-persists it.
	Watch bool
}

// CacheBackend selects the result cache store.
type CacheBackend string

// Cache backends.
const (
	CacheBackendMemory CacheBackend = "memory"
	CacheBackendSQLite CacheBackend = "sqlite"
)

// IsValid returns true if the backend is recognised.
func (b CacheBackend) IsValid() bool {
	return b == CacheBackendMemory || b == CacheBackendSQLite
}

// CacheSettings holds result cache configuration.
type CacheSettings struct {
	Backend CacheBackend
	MaxSize int
	TTL     time.Duration
}

// DataGovSettings holds data.gov.in client configuration.
type DataGovSettings struct {
	BaseURL          string
	APIKey           string
	CropResource     string
	RainfallResource string

	// Limit is the number of records fetched per dataset.
	Limit int
}

// Settings holds all application settings.
type Settings struct {
	Server    ServerSettings
	Index     IndexSettings
	Cache     CacheSettings
	Embedding EmbeddingSettings
	LLM       LLMSettings
	DataGov   DataGovSettings
}

// Default resource identifiers on data.gov.in.
const (
	DefaultCropResource     = "35be999b-0208-4354-b557-f6ca9a5355de"
	DefaultRainfallResource = "8e0bd482-4aba-4d99-9cb9-ff124f6f1c2f"
)

// DefaultSettings returns settings with sensible defaults.
// The offline hashing embedder is used until a real provider is configured;
// the LLM is left unconfigured so answers degrade until one is set.
func DefaultSettings() Settings {
	return Settings{
		Server: ServerSettings{
			Addr:        ":5000",
			CORSOrigins: []string{"https://gov-chatbot-bfe73.web.app"},
		},
		Index: IndexSettings{
			Dir:             "",
			TopK:            5,
			AutoIndex:       true,
			EmbedBatchSize:  32,
			GenerateTimeout: 60 * time.Second,
			FetchTimeout:    30 * time.Second,
			Watch:           true,
		},
		Cache: CacheSettings{
			Backend: CacheBackendMemory,
			MaxSize: 1000,
			TTL:     time.Hour,
		},
		Embedding: EmbeddingSettings{
			Provider:   AIProviderHashing,
			Dimensions: 384,
		},
		LLM: LLMSettings{},
		DataGov: DataGovSettings{
			BaseURL:          "https://api.data.gov.in",
			CropResource:     DefaultCropResource,
			RainfallResource: DefaultRainfallResource,
			Limit:            1000,
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderHashing,
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderGemini,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
		AIProviderGemini,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:  "all-minilm",
		AIProviderOpenAI:  "text-embedding-3-small",
		AIProviderGemini:  "text-embedding-004",
		AIProviderHashing: "hashing-384",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
		AIProviderGemini:    "gemini-2.5-flash",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
		// Gemini models
		"text-embedding-004": 768,
	}
}
