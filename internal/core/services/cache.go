package services

import (
	"bytes"
	"context"
	"crypto/md5" //nolint:gosec // cache key fingerprint, not a security boundary
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/samarth/internal/core/domain"
	"github.com/custodia-labs/samarth/internal/core/ports/driven"
	"github.com/custodia-labs/samarth/internal/logger"
)

// QueryCachePrefix namespaces cached answers.
const QueryCachePrefix = "query"

// ResultCache memoises answers keyed by a fingerprint of the request
// parameters. It fails open: store and decode errors are logged and
// treated as misses so the answer path never fails because of the cache.
type ResultCache struct {
	store  driven.CacheStore
	prefix string
}

// NewResultCache creates a result cache over the given store.
func NewResultCache(store driven.CacheStore) *ResultCache {
	return &ResultCache{store: store, prefix: QueryCachePrefix}
}

// CacheKey returns prefix + ":" + hex(md5(canonical JSON of params)).
// Map keys are sorted at every level, so equal parameter sets always
// produce equal keys.
func CacheKey(prefix string, params map[string]any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(params); err != nil {
		return "", fmt.Errorf("encode cache params: %w", err)
	}
	sum := md5.Sum(bytes.TrimRight(buf.Bytes(), "\n")) //nolint:gosec // fingerprint only
	return prefix + ":" + hex.EncodeToString(sum[:]), nil
}

// Get returns a cached answer. Any failure is reported as a miss.
func (c *ResultCache) Get(ctx context.Context, params map[string]any) (domain.AnswerResponse, bool) {
	key, err := CacheKey(c.prefix, params)
	if err != nil {
		logger.Warn("cache get: %v", err)
		return domain.AnswerResponse{}, false
	}

	data, ok, err := c.store.Get(ctx, key)
	if err != nil {
		logger.Warn("cache get %s: %v", key, err)
		return domain.AnswerResponse{}, false
	}
	if !ok {
		return domain.AnswerResponse{}, false
	}

	var resp domain.AnswerResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		logger.Warn("cache decode %s: %v", key, err)
		return domain.AnswerResponse{}, false
	}
	return resp, true
}

// Set stores an answer. The value is encoded immediately so later changes
// by the caller do not affect the cached copy. Failures are logged.
func (c *ResultCache) Set(ctx context.Context, params map[string]any, value domain.AnswerResponse) {
	key, err := CacheKey(c.prefix, params)
	if err != nil {
		logger.Warn("cache set: %v", err)
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		logger.Warn("cache encode %s: %v", key, err)
		return
	}

	if err := c.store.Set(ctx, key, data); err != nil {
		logger.Warn("cache set %s: %v", key, err)
	}
}

// Clear removes all cached answers. Failures are logged.
func (c *ResultCache) Clear(ctx context.Context) {
	if err := c.store.Clear(ctx); err != nil {
		logger.Warn("cache clear: %v", err)
	}
}

// Stats reports cache occupancy. A store error reports zero entries.
func (c *ResultCache) Stats(ctx context.Context) domain.CacheStats {
	size, err := c.store.Len(ctx)
	if err != nil {
		logger.Warn("cache stats: %v", err)
		size = 0
	}
	return domain.CacheStats{
		Size:     size,
		MaxSize:  c.store.MaxSize(),
		TTL:      int(c.store.TTL().Seconds()),
		CurrSize: size,
	}
}
