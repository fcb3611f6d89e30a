package datagov

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/samarth/internal/core/domain"
	"github.com/custodia-labs/samarth/internal/core/ports/driven"
	"github.com/custodia-labs/samarth/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.DataSource = (*Client)(nil)

const (
	// DefaultBaseURL is the data.gov.in API root.
	DefaultBaseURL = "https://api.data.gov.in"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// MaxRetries is the number of retries after a 429 response.
	MaxRetries = 3
)

// Config holds configuration for the data.gov.in client.
type Config struct {
	// BaseURL is the API root (default: https://api.data.gov.in).
	BaseURL string

	// APIKey is the data.gov.in API key. Public resources accept the
	// sample key, so an empty key is sent as-is.
	APIKey string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// Client fetches resources and searches the catalog.
type Client struct {
	client      *http.Client
	baseURL     string
	apiKey      string
	rateLimiter *RateLimiter
}

// NewClient creates a new data.gov.in client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		client:      &http.Client{Timeout: cfg.Timeout},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		rateLimiter: NewRateLimiter(),
	}
}

type resourceResponse struct {
	Records []map[string]any `json:"records"`
	Total   int              `json:"total"`
	Message string           `json:"message"`
	Status  string           `json:"status"`
}

type catalogResponse struct {
	Results []map[string]any `json:"results"`
}

// FetchRecords returns one page of records from a resource. Filters map
// a field name to a required value, e.g. {"state_name": "Punjab"}.
func (c *Client) FetchRecords(
	ctx context.Context,
	resourceID string,
	filters map[string]string,
	limit, offset int,
) ([]map[string]any, error) {
	if resourceID == "" {
		return nil, fmt.Errorf("%w: empty resource id", domain.ErrInvalidInput)
	}

	params := c.baseParams()
	params.Set("offset", strconv.Itoa(offset))
	params.Set("limit", strconv.Itoa(limit))
	for key, value := range filters {
		params.Set("filters["+key+"]", value)
	}

	endpoint := c.baseURL + "/resource/" + url.PathEscape(resourceID)

	var resp resourceResponse
	if err := c.getJSON(ctx, endpoint, params, &resp); err != nil {
		return nil, err
	}
	if resp.Records == nil && resp.Status == "error" {
		return nil, fmt.Errorf("%w: %s", domain.ErrDataSourceUnavailable, resp.Message)
	}

	logger.Debug("datagov: fetched %d records from %s (offset %d)", len(resp.Records), resourceID, offset)
	if resp.Records == nil {
		return []map[string]any{}, nil
	}
	return resp.Records, nil
}

// SearchCatalog returns catalog entries matching a free-text query.
func (c *Client) SearchCatalog(ctx context.Context, query string) ([]map[string]any, error) {
	params := c.baseParams()
	params.Set("q", query)

	var resp catalogResponse
	if err := c.getJSON(ctx, c.baseURL+"/catalog/search", params, &resp); err != nil {
		return nil, err
	}
	if resp.Results == nil {
		return []map[string]any{}, nil
	}
	return resp.Results, nil
}

func (c *Client) baseParams() url.Values {
	params := url.Values{}
	params.Set("api-key", c.apiKey)
	params.Set("format", "json")
	return params
}

// getJSON issues a rate-limited GET and decodes the body into out.
// 429 responses are retried up to MaxRetries times.
func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values, out any) error {
	target := endpoint + "?" + encodeParams(params)

	for attempt := 0; ; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return fmt.Errorf("%w: %w", domain.ErrDataSourceUnavailable, err)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			wait := c.rateLimiter.Backoff(resp)
			resp.Body.Close()
			if attempt >= MaxRetries {
				return fmt.Errorf("datagov: %w after %d retries", domain.ErrRateLimited, attempt)
			}
			logger.Warn("datagov: rate limited, retrying in %s", wait)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("%w: read response: %w", domain.ErrDataSourceUnavailable, err)
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("%w: status %d: %s", domain.ErrDataSourceUnavailable, resp.StatusCode, truncate(body, 200))
		}
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("%w: decode response: %w", domain.ErrDataSourceUnavailable, err)
		}
		return nil
	}
}

// encodeParams is url.Values.Encode without escaping the brackets of
// filters[...] keys, which the API matches literally.
func encodeParams(params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		escapedKey := url.QueryEscape(k)
		escapedKey = strings.NewReplacer("%5B", "[", "%5D", "]").Replace(escapedKey)
		for _, v := range params[k] {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(escapedKey)
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(v))
		}
	}
	return b.String()
}

func truncate(body []byte, n int) string {
	if len(body) <= n {
		return string(body)
	}
	return string(body[:n]) + "..."
}
