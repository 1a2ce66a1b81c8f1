package utils

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter spaces out requests per host so supplier sites are not hammered
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	delay    time.Duration
}

// NewRateLimiter creates a RateLimiter allowing one request per delayMs per host
func NewRateLimiter(delayMs int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		delay:    time.Duration(delayMs) * time.Millisecond,
	}
}

func (r *RateLimiter) limiter(host string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.limiters[host]
	if !ok {
		limit := rate.Inf
		if r.delay > 0 {
			limit = rate.Every(r.delay)
		}
		l = rate.NewLimiter(limit, 1)
		r.limiters[host] = l
	}
	return l
}

// Wait blocks until a request to host is allowed or ctx is done
func (r *RateLimiter) Wait(ctx context.Context, host string) error {
	return r.limiter(host).Wait(ctx)
}
