package web

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// defaultBackoff applies when a 429 response carries no usable Retry-After.
const defaultBackoff = 30 * time.Second

// RateLimiter throttles page fetches with a token bucket and honours
// Retry-After backoff after a 429 response.
type RateLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
	now     func() time.Time
}

// NewRateLimiter creates a limiter allowing rps requests per second with
// the given burst. rps <= 0 disables throttling.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(limit, burst),
		now:     time.Now,
	}
}

// Wait blocks until a request may be made or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if wait := retryAt.Sub(r.now()); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return r.limiter.Wait(ctx)
}

// RecordRateLimited sets a backoff from a Retry-After header value, which
// may be a number of seconds or an HTTP date.
func (r *RateLimiter) RecordRateLimited(retryAfter string) {
	backoff := defaultBackoff
	if secs, err := strconv.Atoi(retryAfter); err == nil && secs > 0 {
		backoff = time.Duration(secs) * time.Second
	} else if at, err := http.ParseTime(retryAfter); err == nil {
		if d := at.Sub(r.now()); d > 0 {
			backoff = d
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.retryAt = r.now().Add(backoff)
}

// RetryAt returns the end of the current backoff period, if any.
func (r *RateLimiter) RetryAt() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.retryAt
}
