package chain

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter provides per-endpoint token bucket rate limiting. Endpoints
// are arbitrary keys, usually the remote host name.
type RateLimiter struct {
	mu         sync.RWMutex
	limiters   map[string]*rate.Limiter
	rateLimit  rate.Limit
	burstLimit int
}

// NewRateLimiter creates a limiter allowing ratePerSecond requests with the given burst.
func NewRateLimiter(ratePerSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiters:   make(map[string]*rate.Limiter),
		rateLimit:  rate.Limit(ratePerSecond),
		burstLimit: burst,
	}
}

// DefaultRateLimiter returns a rate limiter allowing 5 requests/second, burst of 10.
func DefaultRateLimiter() *RateLimiter {
	return NewRateLimiter(5, 10)
}

// SetLimit overrides the rate for a single endpoint, e.g. for a provider
// whose free tier is stricter than the default.
func (r *RateLimiter) SetLimit(endpoint string, ratePerSecond float64, burst int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.limiters[endpoint] = rate.NewLimiter(rate.Limit(ratePerSecond), burst)
}

// Allow reports whether a request to the endpoint may proceed now.
func (r *RateLimiter) Allow(endpoint string) bool {
	return r.limiter(endpoint).Allow()
}

// Wait blocks until a request to the endpoint is allowed or the context is canceled.
func (r *RateLimiter) Wait(ctx context.Context, endpoint string) error {
	return r.limiter(endpoint).Wait(ctx)
}

func (r *RateLimiter) limiter(endpoint string) *rate.Limiter {
	r.mu.RLock()
	l, ok := r.limiters[endpoint]
	r.mu.RUnlock()
	if ok {
		return l
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Another goroutine may have created it while we waited for the write lock.
	if l, ok = r.limiters[endpoint]; ok {
		return l
	}
	l = rate.NewLimiter(r.rateLimit, r.burstLimit)
	r.limiters[endpoint] = l
	return l
}
