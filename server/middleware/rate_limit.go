package middleware

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// maxKeys caps the per-key limiter map. When the cap is hit the map is
// reset wholesale; saturated buckets refill after the reset, which is
// acceptable for a throttle that only slows generation calls down.
const maxKeys = 4096

// RateLimiter throttles generation requests per customer. Anonymous
// requests share a single bucket keyed by remote address.
type RateLimiter struct {
	mu     sync.Mutex
	limits map[string]*rate.Limiter

	r     rate.Limit
	burst int
}

// NewRateLimiter allows roughly one generation every interval with the
// given burst per key.
func NewRateLimiter(interval time.Duration, burst int) *RateLimiter {
	return &RateLimiter{
		limits: make(map[string]*rate.Limiter),
		r:      rate.Every(interval),
		burst:  burst,
	}
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, ok := rl.limits[key]
	if !ok {
		if len(rl.limits) >= maxKeys {
			rl.limits = make(map[string]*rate.Limiter)
		}
		limiter = rate.NewLimiter(rl.r, rl.burst)
		rl.limits[key] = limiter
	}
	return limiter
}

// Allow reports whether a request under key may proceed now.
func (rl *RateLimiter) Allow(key string) bool {
	return rl.getLimiter(key).Allow()
}
