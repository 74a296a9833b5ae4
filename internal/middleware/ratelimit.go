package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/eventflow/backend/internal/metrics"
	"github.com/eventflow/backend/pkg/response"
)

// LimiterConfig configures a per-client token bucket.
type LimiterConfig struct {
	RPS     float64       // steady refill rate
	Burst   int           // bucket size
	IdleTTL time.Duration // buckets unused this long are dropped
}

type keyLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per key in memory.
type RateLimiter struct {
	conf      LimiterConfig
	mu        sync.Mutex
	buckets   map[string]*keyLimiter
	lastSweep time.Time
	now       func() time.Time
}

// NewRateLimiter creates a limiter. Idle buckets are swept while serving requests.
func NewRateLimiter(conf LimiterConfig) *RateLimiter {
	if conf.IdleTTL <= 0 {
		conf.IdleTTL = 10 * time.Minute
	}
	if conf.Burst <= 0 {
		conf.Burst = 1
	}
	return &RateLimiter{
		conf:      conf,
		buckets:   make(map[string]*keyLimiter),
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// Allow takes a token from key's bucket.
func (rl *RateLimiter) Allow(key string) bool {
	return rl.getLimiter(key).AllowN(rl.now(), 1)
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	now := rl.now()
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if now.Sub(rl.lastSweep) > rl.conf.IdleTTL {
		for k, b := range rl.buckets {
			if now.Sub(b.lastSeen) > rl.conf.IdleTTL {
				delete(rl.buckets, k)
			}
		}
		rl.lastSweep = now
	}

	if b, ok := rl.buckets[key]; ok {
		b.lastSeen = now
		return b.limiter
	}
	lim := rate.NewLimiter(rate.Limit(rl.conf.RPS), rl.conf.Burst)
	rl.buckets[key] = &keyLimiter{limiter: lim, lastSeen: now}
	return lim
}

func (rl *RateLimiter) size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.buckets)
}

// KeySelector picks the rate limit key for a request.
type KeySelector func(c *gin.Context) string

// ByClientIP limits per client address.
func ByClientIP(c *gin.Context) string { return c.ClientIP() }

// Middleware rejects requests over the limit with 429.
func (rl *RateLimiter) Middleware(selectKey KeySelector) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(selectKey(c)) {
			metrics.RateLimiterRejections.WithLabelValues(c.FullPath()).Inc()
			c.Header("Retry-After", "1")
			response.TooManyRequests(c, "too many requests, please try again later")
			c.Abort()
			return
		}
		c.Next()
	}
}
