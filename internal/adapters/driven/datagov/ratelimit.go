package datagov

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// ProactiveRate is the steady request rate against data.gov.in.
	ProactiveRate = 2

	// ProactiveBurst allows short bursts, e.g. both datasets at startup.
	ProactiveBurst = 5

	// DefaultBackoff is used for a 429 without a usable Retry-After.
	DefaultBackoff = 2 * time.Second

	// MaxBackoff caps the wait the server can ask for.
	MaxBackoff = time.Minute

	// HeaderRetryAfter is the retry-after header (seconds or HTTP date).
	HeaderRetryAfter = "Retry-After"
)

// RateLimiter combines a token bucket with the server's own backoff hints.
type RateLimiter struct {
	mu         sync.Mutex
	bucket     *rate.Limiter
	retryAfter time.Time
	fallback   time.Duration
	now        func() time.Time
}

// NewRateLimiter creates a rate limiter with proactive throttling.
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		bucket:   rate.NewLimiter(rate.Limit(ProactiveRate), ProactiveBurst),
		fallback: DefaultBackoff,
		now:      time.Now,
	}
}

// Wait blocks until it's safe to make a request.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := r.bucket.Wait(ctx); err != nil {
		return err
	}

	r.mu.Lock()
	until := r.retryAfter
	r.mu.Unlock()

	if wait := until.Sub(r.now()); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	return nil
}

// Backoff records a 429 response and returns how long callers will wait.
func (r *RateLimiter) Backoff(resp *http.Response) time.Duration {
	wait := parseRetryAfter(resp.Header.Get(HeaderRetryAfter), r.now())
	if wait <= 0 {
		wait = r.fallback
	}
	if wait > MaxBackoff {
		wait = MaxBackoff
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if until := r.now().Add(wait); until.After(r.retryAfter) {
		r.retryAfter = until
	}
	return wait
}

// parseRetryAfter accepts delta-seconds or an HTTP date.
func parseRetryAfter(value string, now time.Time) time.Duration {
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		return at.Sub(now)
	}
	return 0
}
