// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements a distributed fixed-window rate limiter backed by
// Redis. Each identity gets one counter per window (INCR, with EXPIRE set on
// the first hit), so every replica behind a load balancer enforces the same
// budget. When Redis is unreachable the limiter fails open and logs a warning.
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

// RedisRateLimiter enforces limit requests per window per identity.
type RedisRateLimiter struct {
	client *goredis.Client
	limit  int64
	window time.Duration
	keyFn  keyFunc
	prefix string
}

// NewRedisRateLimiter returns a limiter allowing limit requests per window.
// limit <= 0 is coerced to 1; window <= 0 defaults to one second.
func NewRedisRateLimiter(client *goredis.Client, limit int, window time.Duration, keyFn keyFunc) *RedisRateLimiter {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Second
	}
	return &RedisRateLimiter{
		client: client,
		limit:  int64(limit),
		window: window,
		keyFn:  keyFn,
		prefix: "rate:http:",
	}
}

// Allow increments the counter for key and reports whether the request fits
// in the current window, plus the time until the window resets.
func (rl *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	if rl.client == nil {
		return false, 0, fmt.Errorf("redis client is nil")
	}
	k := rl.prefix + key

	count, err := rl.client.Incr(ctx, k).Result()
	if err != nil {
		return false, 0, fmt.Errorf("increment rate key: %w", err)
	}
	if count == 1 {
		if err := rl.client.Expire(ctx, k, rl.window).Err(); err != nil {
			return false, 0, fmt.Errorf("set rate key ttl: %w", err)
		}
	}

	ttl, err := rl.client.TTL(ctx, k).Result()
	if err != nil {
		return false, 0, fmt.Errorf("read rate key ttl: %w", err)
	}
	if ttl < 0 {
		ttl = 0
	}
	return count <= rl.limit, ttl, nil
}

// Handler returns a Gin middleware enforcing the limit. Replays flagged by
// IdempotencyValidator skip limiting, matching RateLimiter.
func (rl *RedisRateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsRateBypass(c) {
			c.Next()
			return
		}

		ok, ttl, err := rl.Allow(c.Request.Context(), rl.keyFn(c))
		if err != nil {
			LoggerFrom(c).Warn().Err(err).Msg("rate limiter unavailable, allowing request")
			c.Next()
			return
		}
		if ok {
			c.Next()
			return
		}

		rateLimited.WithLabelValues(limiterRedis).Inc()
		c.Header("Retry-After", strconv.FormatInt(ceilSeconds(ttl), 10))
		abortJSON(c, http.StatusTooManyRequests, "rate_limited", "rate limit exceeded")
	}
}

// ceilSeconds rounds d up to whole seconds, never below 1.
func ceilSeconds(d time.Duration) int64 {
	sec := int64(d / time.Second)
	if d%time.Second != 0 {
		sec++
	}
	if sec <= 0 {
		sec = 1
	}
	return sec
}
