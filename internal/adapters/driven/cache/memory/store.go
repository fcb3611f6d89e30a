// Package memory provides an in-process result cache store with TTL expiry
// and least-recently-used eviction.
package memory

import (
	"bytes"
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/custodia-labs/samarth/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.CacheStore = (*Store)(nil)

// Store wraps an expirable LRU. Values are copied on the way in and out so
// callers cannot mutate cached entries.
type Store struct {
	lru     *expirable.LRU[string, []byte]
	maxSize int
	ttl     time.Duration
}

// NewStore creates a cache holding at most maxSize entries for ttl each.
func NewStore(maxSize int, ttl time.Duration) *Store {
	return &Store{
		lru:     expirable.NewLRU[string, []byte](maxSize, nil, ttl),
		maxSize: maxSize,
		ttl:     ttl,
	}
}

// Get returns a live entry and marks it most recently used.
func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	value, ok := s.lru.Get(key)
	if !ok {
		return nil, false, nil
	}
	return bytes.Clone(value), true, nil
}

// Set stores value under key. Re-setting a key resets its expiry.
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.lru.Add(key, bytes.Clone(value))
	return nil
}

// Clear removes all entries.
func (s *Store) Clear(_ context.Context) error {
	s.lru.Purge()
	return nil
}

// Len returns the number of entries not yet expired.
func (s *Store) Len(_ context.Context) (int, error) {
	return len(s.lru.Values()), nil
}

// MaxSize returns the entry bound.
func (s *Store) MaxSize() int {
	return s.maxSize
}

// TTL returns the entry time-to-live.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Close drops all entries.
func (s *Store) Close() error {
	s.lru.Purge()
	return nil
}
