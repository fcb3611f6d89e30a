package datagov

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 5*time.Second, parseRetryAfter("5", now))
	assert.Equal(t, time.Duration(0), parseRetryAfter("", now))
	assert.Equal(t, time.Duration(0), parseRetryAfter("soon", now))
	assert.Equal(t, 10*time.Second, parseRetryAfter(now.Add(10*time.Second).Format(http.TimeFormat), now))
}

func TestBackoff_ClampsAndDefaults(t *testing.T) {
	r := NewRateLimiter()

	resp := &http.Response{Header: http.Header{}}
	assert.Equal(t, DefaultBackoff, r.Backoff(resp))

	resp.Header.Set(HeaderRetryAfter, "3600")
	assert.Equal(t, MaxBackoff, r.Backoff(resp))
}

func TestBackoff_KeepsLatestDeadline(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	r := NewRateLimiter()
	r.now = func() time.Time { return now }

	long := &http.Response{Header: http.Header{HeaderRetryAfter: []string{"30"}}}
	short := &http.Response{Header: http.Header{HeaderRetryAfter: []string{"1"}}}
	r.Backoff(long)
	r.Backoff(short)

	assert.Equal(t, now.Add(30*time.Second), r.retryAfter)
}
