package llm

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// RateLimitedProvider wraps a Provider with a token bucket that holds at
// most a minute's worth of requests.
type RateLimitedProvider struct {
	provider Provider
	perSec   float64
	burst    float64

	mu     sync.Mutex
	tokens float64
	last   time.Time
	now    func() time.Time
}

// NewRateLimitedProvider wraps the given provider with a rate limiter
// that allows at most rpm requests per minute. A non-positive rpm
// returns the provider unwrapped.
func NewRateLimitedProvider(provider Provider, rpm int) Provider {
	if rpm <= 0 || provider == nil {
		return provider
	}
	return &RateLimitedProvider{
		provider: provider,
		perSec:   float64(rpm) / 60,
		burst:    float64(rpm),
		tokens:   float64(rpm),
		last:     time.Now(),
		now:      time.Now,
	}
}

func (r *RateLimitedProvider) Name() string {
	return r.provider.Name()
}

func (r *RateLimitedProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	return r.provider.Complete(ctx, req)
}

// reserve takes a token and returns how long the caller must wait before
// using it. The token is taken even when the delay is positive.
func (r *RateLimitedProvider) reserve() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.tokens += now.Sub(r.last).Seconds() * r.perSec
	if r.tokens > r.burst {
		r.tokens = r.burst
	}
	r.last = now

	r.tokens--
	if r.tokens >= 0 {
		return 0
	}
	return time.Duration(-r.tokens / r.perSec * float64(time.Second))
}

// cancel returns a reserved token that was never used.
func (r *RateLimitedProvider) cancel() {
	r.mu.Lock()
	r.tokens++
	r.mu.Unlock()
}

func (r *RateLimitedProvider) wait(ctx context.Context) error {
	delay := r.reserve()
	if delay == 0 {
		return nil
	}
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < delay {
		r.cancel()
		return fmt.Errorf("%s: rate limit of %.0f requests/min exceeded: %w",
			r.provider.Name(), r.burst, context.DeadlineExceeded)
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		r.cancel()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
