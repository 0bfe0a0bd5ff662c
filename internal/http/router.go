// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, authentication, idempotency, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"context"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	_ "github.com/tbourn/go-match-backend/docs" // registers the OpenAPI document served at /swagger
	"github.com/tbourn/go-match-backend/internal/auth"
	"github.com/tbourn/go-match-backend/internal/config"
	"github.com/tbourn/go-match-backend/internal/http/handlers"
	"github.com/tbourn/go-match-backend/internal/http/middleware"
	"github.com/tbourn/go-match-backend/internal/repo"
	"github.com/tbourn/go-match-backend/internal/services"
)

// idempotencyStore adapts the repository free functions to the
// middleware.IdempotencyStore interface expected by IdempotencyValidator.
type idempotencyStore struct {
	db  *gorm.DB
	ttl time.Duration
}

// Lookup proxies repo.GetIdempotency; a missing or expired record is a miss.
func (s idempotencyStore) Lookup(ctx context.Context, userID int64, scope, key string, now time.Time) (*middleware.StoredResponse, error) {
	rec, err := repo.GetIdempotency(ctx, s.db, userID, scope, key, now)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &middleware.StoredResponse{Status: rec.Status, Body: rec.Body}, nil
}

// Save proxies repo.CreateIdempotency. Losing the race against a concurrent
// first request with the same key is not an error: its response is kept.
func (s idempotencyStore) Save(ctx context.Context, userID int64, scope, key string, status int, body []byte) error {
	_, err := repo.CreateIdempotency(ctx, s.db, userID, scope, key, status, body, s.ttl)
	if errors.Is(err, repo.ErrDuplicate) {
		return nil
	}
	return err
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), CORS and security
// headers, health and metrics endpoints, optional Swagger UI, and then mounts
// the authenticated API under cfg.APIBasePath. rdb may be nil, in which case
// rate limiting stays in-process.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Gzip response compression
//  7. Metrics
//  8. CORS and Security headers
//
// and on the API group only, so health checks and preflights never need
// credentials:
//  9. Authenticate: bearer token (or X-User-ID in dev) of an existing user
//  10. Idempotency validator (before rate limiter to allow bypass on replay)
//  11. Rate limiter (per user, Redis-backed when configured)
func RegisterRoutes(r *gin.Engine, db *gorm.DB, rdb *goredis.Client, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{
			middleware.HeaderUserID,
		},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Compress responses for clients that ask for it
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 7) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 8) CORS posture and security headers
	useCORS(r, cfg.CORS.AllowedOrigins)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:      cfg.Security.EnableHSTS,
		HSTSMaxAge:      cfg.Security.HSTSMaxAge,
		CacheControl:    "private, no-cache",
		BrowserPolicies: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← repo/db
	profiles := services.DBProfileStore{DB: db}
	likeSvc := services.NewLikeService(db)
	matchSvc := services.NewMatchService(db)
	availSvc := services.NewAvailabilityService(db)
	if cfg.MaxSlotsPerSubmission > 0 {
		availSvc.MaxSlotsPerSubmission = cfg.MaxSlotsPerSubmission
	}
	h := handlers.New(likeSvc, matchSvc, availSvc)

	// Public API
	api := groupWithPrefix(r, cfg.APIBasePath) // e.g. "/api/v1"

	// 9) Identity
	var verifier middleware.TokenVerifier
	if cfg.Auth.JWTSecret != "" {
		verifier = auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTTL)
	}
	api.Use(middleware.Authenticate(middleware.AuthOptions{
		Verifier:    verifier,
		AllowHeader: cfg.Auth.AllowHeader,
		UserExists:  profiles.UserExists,
	}))

	// 10) Idempotency (before rate limiting)
	api.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{MaxLen: 200},
		idempotencyStore{db: db, ttl: cfg.IdempotencyTTL},
	))

	// 11) Rate limiter per user
	api.Use(rateLimiter(rdb, cfg))

	{
		// Likes
		api.POST("/likes/:userId", h.LikeUser)
		api.GET("/likes", h.ListMyLikes)

		// Matches
		api.GET("/matches", h.ListMyMatches)
		api.GET("/matches/:id", h.GetMatch)

		// Availability
		api.POST("/matches/:id/availability", h.SubmitAvailability)
		api.PUT("/matches/:id/availability/:slotId", h.UpdateAvailabilitySlot)
		api.DELETE("/matches/:id/availability/:slotId", h.DeleteAvailabilitySlot)
	}
}

// rateLimiter picks the shared Redis fixed-window limiter when a client is
// available and the in-process token bucket otherwise. The Redis window
// admits what the bucket would over the same period, plus the burst.
func rateLimiter(rdb *goredis.Client, cfg config.Config) gin.HandlerFunc {
	if rdb != nil {
		limit := int(math.Ceil(cfg.RateRPS*cfg.RateWindow.Seconds())) + cfg.RateBurst
		return middleware.NewRedisRateLimiter(rdb, limit, cfg.RateWindow, middleware.KeyByUserOrIP()).Handler()
	}
	return middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP()).Handler()
}

// useCORS installs the CORS posture (safe defaults: allow all if none
// configured).
func useCORS(r *gin.Engine, origins []string) {
	allowHeaders := []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderUserID, middleware.HeaderIdempotencyKey}
	exposeHeaders := []string{"X-Request-ID", "Content-Length", "ETag", "Retry-After", middleware.HeaderIdempotencyReplayed}

	if len(origins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    exposeHeaders,
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
		return
	}

	// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	r.Use(func(c *gin.Context) {
		if origin := c.GetHeader("Origin"); origin != "" {
			if _, ok := allowed[origin]; ok {
				h := c.Writer.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
			}
		}
		c.Next()
	})
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     allowHeaders,
		ExposeHeaders:    exposeHeaders,
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
