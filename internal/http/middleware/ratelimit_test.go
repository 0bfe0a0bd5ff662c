package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyByUserOrIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	req := httptest.NewRequest(http.MethodGet, "/likes", nil)
	req.RemoteAddr = net.JoinHostPort("203.0.113.9", "5555")
	c.Request = req

	assert.Equal(t, "ip:203.0.113.9", KeyByUserOrIP()(c))
	SetUserID(c, 123)
	assert.Equal(t, "user:123", KeyByUserOrIP()(c))
}

func TestIsRateBypass(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.False(t, IsRateBypass(c))
	c.Set(ctxKeyRateBypass, "yes")
	assert.False(t, IsRateBypass(c))
	c.Set(ctxKeyRateBypass, true)
	assert.True(t, IsRateBypass(c))
}

func TestNewRateLimiter_BurstFloorAndBucketReuse(t *testing.T) {
	rl := NewRateLimiter(2, 0, KeyByUserOrIP())
	assert.Equal(t, 1, rl.burst)

	a := rl.limiter("user:1")
	assert.Same(t, a, rl.limiter("user:1"))
	assert.NotSame(t, a, rl.limiter("user:2"))
}

func TestRateLimiter_SweepsIdleBuckets(t *testing.T) {
	rl := NewRateLimiter(1, 1, KeyByUserOrIP())
	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return clock }
	rl.sweepAt = clock.Add(rl.idleTTL)

	old := rl.limiter("user:old")
	clock = clock.Add(5 * time.Minute)
	rl.limiter("user:recent")

	// Past the sweep deadline: "old" idled a full TTL, "recent" did not.
	clock = clock.Add(5 * time.Minute)
	rl.limiter("user:other")

	rl.mu.Lock()
	_, hasOld := rl.buckets["user:old"]
	_, hasRecent := rl.buckets["user:recent"]
	rl.mu.Unlock()
	assert.False(t, hasOld)
	assert.True(t, hasRecent)
	assert.NotSame(t, old, rl.limiter("user:old"), "evicted bucket must start fresh")
}

func TestRateLimiter_RetryAfter(t *testing.T) {
	assert.EqualValues(t, 1, NewRateLimiter(5, 1, nil).retryAfter())
	assert.EqualValues(t, 4, NewRateLimiter(0.25, 1, nil).retryAfter())
	assert.EqualValues(t, 1, NewRateLimiter(0, 1, nil).retryAfter())
}

func TestRateLimiter_Handler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter(0.5, 1, KeyByUserOrIP())

	r := gin.New()
	r.Use(RequestID(), rl.Handler())
	r.POST("/likes/:userId", func(c *gin.Context) { c.Status(http.StatusCreated) })

	base := testutil.ToFloat64(rateLimited.WithLabelValues(limiterLocal))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/likes/2", nil))
	require.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/likes/3", nil))
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "2", w.Header().Get("Retry-After"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "rate_limited", body["code"])
	assert.Equal(t, w.Header().Get(HeaderRequestID), body["request_id"])
	assert.Equal(t, base+1, testutil.ToFloat64(rateLimited.WithLabelValues(limiterLocal)))

	// A replay flagged upstream passes even with an empty bucket.
	rb := gin.New()
	rb.Use(func(c *gin.Context) { c.Set(ctxKeyRateBypass, true); c.Next() }, rl.Handler())
	rb.POST("/likes/:userId", func(c *gin.Context) { c.Status(http.StatusCreated) })
	w = httptest.NewRecorder()
	rb.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/likes/3", nil))
	assert.Equal(t, http.StatusCreated, w.Code)
}
