package util

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

var (
	// DefaultRate is the default minimum time between requests
	DefaultRate = 200 * time.Millisecond
	// DefaultBurst is the default burst size
	DefaultBurst = 5
)

// RateLimiter implements a token bucket limiter used to bound bursts of
// remote writes (position syncs, cast commands).
type RateLimiter struct {
	mu        sync.Mutex
	last      time.Time
	rate      time.Duration
	tokens    int
	maxTokens int
}

// NewRateLimiter creates a new RateLimiter.
// rate is the minimum time between requests, burst the maximum number of
// tokens that can be consumed at once.
func NewRateLimiter(rate time.Duration, burst int) *RateLimiter {
	if rate <= 0 {
		rate = DefaultRate
	}
	if burst <= 0 {
		burst = DefaultBurst
	}

	return &RateLimiter{
		last:      time.Now(),
		rate:      rate,
		tokens:    burst,
		maxTokens: burst,
	}
}

// Wait blocks until a token is available or the context is cancelled
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()

	now := time.Now()

	delta := now.Sub(r.last)
	newTokens := int(float64(delta) / float64(r.rate))
	if newTokens > 0 {
		r.tokens += newTokens
		if r.tokens > r.maxTokens {
			r.tokens = r.maxTokens
		}
		r.last = now
	}

	if r.tokens > 0 {
		r.tokens--
		r.mu.Unlock()
		return nil
	}

	// Wait with jitter (up to 20% of rate) to avoid thundering herds
	waitTime := r.rate + time.Duration(rand.Float64()*0.2*float64(r.rate))
	next := r.last.Add(waitTime)

	r.mu.Unlock()

	timer := time.NewTimer(time.Until(next))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}

	r.mu.Lock()
	r.last = time.Now()
	r.mu.Unlock()
	return nil
}
