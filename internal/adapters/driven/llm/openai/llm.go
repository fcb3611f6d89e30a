// Package openai synthesises answers through an OpenAI-compatible chat
// completions API. Groq is served by the same adapter with BaseURL set to
// GroqBaseURL.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/samarth/internal/core/domain"
	"github.com/custodia-labs/samarth/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

// Defaults for answer synthesis.
const (
	DefaultBaseURL    = "https://api.openai.com/v1"
	GroqBaseURL       = "https://api.groq.com/openai/v1"
	DefaultLLMModel   = "gpt-4o-mini"
	DefaultGroqModel  = "llama-3.3-70b-versatile"
	DefaultLLMTimeout = 120 * time.Second
)

// LLMConfig selects the chat model that writes answers from retrieved
// dataset records.
type LLMConfig struct {
	APIKey  string
	BaseURL string

	// Model defaults to DefaultLLMModel, or DefaultGroqModel when BaseURL
	// is GroqBaseURL.
	Model string

	Timeout time.Duration
}

// LLMService sends the answer prompt to /chat/completions.
type LLMService struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

type chatCompletionRequest struct {
	Model       string              `json:"model"`
	Messages    []chatCompletionMsg `json:"messages"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
	Temperature float64             `json:"temperature,omitempty"`
}

type chatCompletionMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewLLMService validates cfg and fills in defaults.
func NewLLMService(cfg LLMConfig) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: an API key is required for answer synthesis")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
		if cfg.BaseURL == GroqBaseURL {
			cfg.Model = DefaultGroqModel
		}
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}

	return &LLMService{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}, nil
}

// Chat returns the first completion for the answer prompt. A 429 wraps
// domain.ErrRateLimited so the answer service can fall back to the
// retrieved records.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	chatMessages := make([]chatCompletionMsg, len(messages))
	for i, msg := range messages {
		chatMessages[i] = chatCompletionMsg{Role: msg.Role, Content: msg.Content}
	}

	status, body, err := s.post(ctx, "/chat/completions", chatCompletionRequest{
		Model:       s.model,
		Messages:    chatMessages,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	})
	if err != nil {
		return "", err
	}
	if status == http.StatusTooManyRequests {
		return "", fmt.Errorf("openai: answer with %s: %w: %s", s.model, domain.ErrRateLimited, body)
	}

	var chatResp chatCompletionResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		if status != http.StatusOK {
			return "", fmt.Errorf("openai: answer with %s failed (status %d): %s", s.model, status, body)
		}
		return "", fmt.Errorf("openai: decode answer from %s: %w", s.model, err)
	}
	if chatResp.Error != nil {
		return "", fmt.Errorf("openai: answer with %s rejected: %s", s.model, chatResp.Error.Message)
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("openai: answer with %s failed (status %d): %s", s.model, status, body)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("openai: %s returned no response choices for the answer prompt", s.model)
	}

	return chatResp.Choices[0].Message.Content, nil
}

// post sends payload as JSON and returns the status and raw body.
func (s *LLMService) post(ctx context.Context, path string, payload any) (int, []byte, error) {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("openai: encode answer prompt: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return 0, nil, fmt.Errorf("openai: build answer request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("openai: reach %s: %w", s.baseURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("openai: read answer from %s: %w", s.model, err)
	}
	return resp.StatusCode, body, nil
}

// ModelName is reported in answer stats.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping lists models. It checks the key without spending tokens.
func (s *LLMService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/models", http.NoBody)
	if err != nil {
		return fmt.Errorf("openai: build health check: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("openai: chat provider at %s unreachable: %w", s.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("openai: chat provider health check returned status %d: %s", resp.StatusCode, body)
	}
	return nil
}

// Close is a no-op; the HTTP client holds no resources.
func (s *LLMService) Close() error {
	return nil
}
