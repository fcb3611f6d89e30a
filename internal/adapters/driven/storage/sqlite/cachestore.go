package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/samarth/internal/core/ports/driven"
)

// cacheStore implements driven.CacheStore on the cache_entries table.
// accessed_at is a logical clock: every read or write stamps the entry
// with one more than the current maximum, so eviction order is exact
// even when operations share a wall-clock tick.
type cacheStore struct {
	store   *Store
	maxSize int
	ttl     time.Duration
	now     func() time.Time
}

var _ driven.CacheStore = (*cacheStore)(nil)

// Get returns a live entry and marks it most recently used.
func (s *cacheStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.store.db.QueryRowContext(ctx, `
		SELECT value FROM cache_entries WHERE key = ? AND expires_at > ?
	`, key, s.now().UnixNano()).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cache entry: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		UPDATE cache_entries
		SET accessed_at = (SELECT COALESCE(MAX(accessed_at), 0) + 1 FROM cache_entries)
		WHERE key = ?
	`, key)
	if err != nil {
		return nil, false, fmt.Errorf("touching cache entry: %w", err)
	}
	return value, true, nil
}

// Set upserts an entry with a fresh expiry, then evicts expired entries and
// the least recently used entries beyond maxSize.
func (s *cacheStore) Set(ctx context.Context, key string, value []byte) error {
	now := s.now()

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning cache transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO cache_entries (key, value, expires_at, accessed_at)
		VALUES (?, ?, ?, (SELECT COALESCE(MAX(accessed_at), 0) + 1 FROM cache_entries))
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			expires_at = excluded.expires_at,
			accessed_at = excluded.accessed_at
	`, key, value, now.Add(s.ttl).UnixNano())
	if err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM cache_entries WHERE expires_at <= ?", now.UnixNano()); err != nil {
		return fmt.Errorf("evicting expired entries: %w", err)
	}

	if s.maxSize > 0 {
		_, err = tx.ExecContext(ctx, `
			DELETE FROM cache_entries WHERE key IN (
				SELECT key FROM cache_entries ORDER BY accessed_at DESC LIMIT -1 OFFSET ?
			)
		`, s.maxSize)
		if err != nil {
			return fmt.Errorf("evicting least recently used entries: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing cache entry: %w", err)
	}
	return nil
}

// Clear removes all entries.
func (s *cacheStore) Clear(ctx context.Context) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM cache_entries"); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	return nil
}

// Len counts live entries.
func (s *cacheStore) Len(ctx context.Context) (int, error) {
	var n int
	err := s.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM cache_entries WHERE expires_at > ?", s.now().UnixNano()).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting cache entries: %w", err)
	}
	return n, nil
}

// MaxSize returns the entry bound.
func (s *cacheStore) MaxSize() int {
	return s.maxSize
}

// TTL returns the entry time-to-live.
func (s *cacheStore) TTL() time.Duration {
	return s.ttl
}

// Close is a no-op; the owning Store closes the database.
func (s *cacheStore) Close() error {
	return nil
}
