package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// keyFunc picks the identity a request is limited under.
type keyFunc func(*gin.Context) string

// KeyByUserOrIP limits authenticated callers per user id and everyone else
// per client IP. The prefixes keep the two namespaces apart.
func KeyByUserOrIP() keyFunc {
	return func(c *gin.Context) string {
		if id, ok := UserID(c); ok {
			return "user:" + strconv.FormatInt(id, 10)
		}
		return "ip:" + c.ClientIP()
	}
}

// IsRateBypass reports whether IdempotencyValidator served a stored replay,
// which must not spend the caller's budget.
func IsRateBypass(c *gin.Context) bool {
	return c.GetBool(ctxKeyRateBypass)
}

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a process-local token bucket per identity. Use it for a
// single replica; RedisRateLimiter shares budgets across replicas.
type RateLimiter struct {
	limit rate.Limit
	burst int
	keyFn keyFunc

	mu      sync.Mutex
	buckets map[string]*bucket
	idleTTL time.Duration
	sweepAt time.Time
	now     func() time.Time
}

// NewRateLimiter refills rps tokens per second up to burst (minimum 1).
func NewRateLimiter(rps float64, burst int, keyFn keyFunc) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	rl := &RateLimiter{
		limit:   rate.Limit(rps),
		burst:   burst,
		keyFn:   keyFn,
		buckets: make(map[string]*bucket),
		idleTTL: 10 * time.Minute,
		now:     time.Now,
	}
	rl.sweepAt = rl.now().Add(rl.idleTTL)
	return rl
}

// limiter returns the bucket for key. Once per idleTTL it first drops
// buckets idle for at least idleTTL, so a stale bucket is never revived.
func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if !now.Before(rl.sweepAt) {
		for k, b := range rl.buckets {
			if now.Sub(b.lastSeen) >= rl.idleTTL {
				delete(rl.buckets, k)
			}
		}
		rl.sweepAt = now.Add(rl.idleTTL)
	}

	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(rl.limit, rl.burst)}
		rl.buckets[key] = b
	}
	b.lastSeen = now
	return b.lim
}

// Handler rejects over-budget requests with 429 and a Retry-After hint
// derived from the bucket's refill rate.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsRateBypass(c) {
			c.Next()
			return
		}
		if rl.limiter(rl.keyFn(c)).Allow() {
			c.Next()
			return
		}
		rateLimited.WithLabelValues(limiterLocal).Inc()
		c.Header("Retry-After", strconv.FormatInt(rl.retryAfter(), 10))
		abortJSON(c, http.StatusTooManyRequests, "rate_limited", "rate limit exceeded")
	}
}

// retryAfter is the whole seconds until one token is back, at least 1.
func (rl *RateLimiter) retryAfter() int64 {
	if rl.limit <= 0 {
		return 1
	}
	return int64(math.Max(1, math.Ceil(1/float64(rl.limit))))
}
