package driven

import (
	"context"
	"time"
)

// CacheStore is the byte store behind the result cache. Implementations
// enforce TTL expiry and least-recently-used eviction.
// Errors are reported, and the result cache treats them as misses.
type CacheStore interface {
	// Get returns the value for key. Expired entries are reported absent.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key, replacing any entry and resetting its expiry.
	Set(ctx context.Context, key string, value []byte) error

	// Clear removes all entries.
	Clear(ctx context.Context) error

	// Len returns the number of live entries.
	Len(ctx context.Context) (int, error)

	// MaxSize returns the entry bound.
	MaxSize() int

	// TTL returns the entry time-to-live.
	TTL() time.Duration

	// Close releases resources.
	Close() error
}
