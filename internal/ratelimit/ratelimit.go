package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nikmel/jobwire/internal/model"
)

// SourceLimiter enforces a minimum delay between requests to the same source
// family (e.g. every Greenhouse board shares one budget).
type SourceLimiter struct {
	mu       sync.Mutex
	lastCall map[string]time.Time // key: source family
	minDelay time.Duration
}

// NewSourceLimiter creates a limiter that enforces minDelay between
// consecutive requests to the same source family.
func NewSourceLimiter(minDelay time.Duration) *SourceLimiter {
	return &SourceLimiter{
		lastCall: make(map[string]time.Time),
		minDelay: minDelay,
	}
}

// Wait blocks until enough time has passed since the last request to the
// given source family. Returns an error if the context is cancelled while
// waiting.
func (r *SourceLimiter) Wait(ctx context.Context, family string) error {
	r.mu.Lock()
	last, ok := r.lastCall[family]
	now := time.Now()

	if !ok {
		// First request for this family — no wait needed.
		r.lastCall[family] = now
		r.mu.Unlock()
		return nil
	}

	elapsed := now.Sub(last)
	if elapsed >= r.minDelay {
		r.lastCall[family] = now
		r.mu.Unlock()
		return nil
	}

	remaining := r.minDelay - elapsed
	r.mu.Unlock()

	select {
	case <-ctx.Done():
		return fmt.Errorf("rate limiter wait for %s: %w", family, ctx.Err())
	case <-time.After(remaining):
	}

	r.mu.Lock()
	r.lastCall[family] = time.Now()
	r.mu.Unlock()

	return nil
}

// LimitedAdapter is a decorator that waits for the source family's rate
// budget before delegating to the wrapped SourceAdapter.
type LimitedAdapter struct {
	inner   model.SourceAdapter
	limiter *SourceLimiter
	family  string
}

// NewLimitedAdapter wraps a SourceAdapter with family-level rate limiting.
// All adapters of the same family should share the same limiter instance.
func NewLimitedAdapter(inner model.SourceAdapter, limiter *SourceLimiter, family string) *LimitedAdapter {
	return &LimitedAdapter{
		inner:   inner,
		limiter: limiter,
		family:  family,
	}
}

func (a *LimitedAdapter) Name() string { return a.inner.Name() }

// Fetch waits for the rate limiter to allow a request, then delegates to the
// wrapped adapter.
func (a *LimitedAdapter) Fetch(ctx context.Context) ([]model.Job, error) {
	if err := a.limiter.Wait(ctx, a.family); err != nil {
		return nil, err
	}
	return a.inner.Fetch(ctx)
}
