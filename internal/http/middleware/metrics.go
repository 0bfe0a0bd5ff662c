package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// unmatchedRoute labels requests that hit no registered route, so probes
// for random URLs cannot grow label cardinality.
const unmatchedRoute = "unmatched"

// Limiter label values for rateLimited.
const (
	limiterLocal = "local"
	limiterRedis = "redis"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by method, route template and status code.",
	}, []string{"method", "route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency by method and route template.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	httpInflight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "http_requests_inflight",
		Help: "HTTP requests currently being served.",
	})

	// Match lists dominate the upper buckets; likes and slot edits are tiny.
	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_response_size_bytes",
		Help:    "HTTP response body size by method and route template.",
		Buckets: prometheus.ExponentialBuckets(128, 4, 8), // 128B .. 2MiB
	}, []string{"method", "route"})

	rateLimited = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_rate_limited_total",
		Help: "Requests rejected with 429 by limiter backend.",
	}, []string{"limiter"})

	idempotentReplays = promauto.NewCounter(prometheus.CounterOpts{
		Name: "http_idempotent_replays_total",
		Help: "Responses served from the Idempotency-Key store.",
	})
)

// Metrics records request count, latency, response size and in-flight
// requests. Mount /metrics with promhttp next to it.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpInflight.Inc()
		defer httpInflight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		method := c.Request.Method
		httpRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		if size := c.Writer.Size(); size >= 0 {
			httpResponseSize.WithLabelValues(method, route).Observe(float64(size))
		}
	}
}
