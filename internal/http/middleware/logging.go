// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// Every access logger here does two jobs. Before the handlers run it puts a
// request-scoped zerolog.Logger (carrying request_id) into the Gin context
// and into the request context, so services reach it through zerolog.Ctx.
// After the handlers run it writes one line per request, at info for 2xx/3xx,
// warn for 4xx and error for 5xx or when handlers recorded Gin errors.
//
// The caller's user id and the match id are resolved after the chain ran,
// since authentication lives on the API group below the access logger.
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	loggerKey = "logger"
	// maxQueryLogLength caps the raw query bytes written to a log line.
	maxQueryLogLength = 2048
)

// Logger writes a structured access log for each request.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		route := routeOf(c)

		l := log.With().
			Str("request_id", RequestIDFrom(c)).
			Str("method", c.Request.Method).
			Str("path", route).
			Logger()
		attachLogger(c, &l)

		c.Next()

		ctx := l.With().
			Str("remote_ip", c.ClientIP()).
			Str("user_agent", c.Request.UserAgent()).
			Str("referer", c.Request.Referer()).
			Str("query", truncate(c.Request.URL.RawQuery, maxQueryLogLength)).
			Int64("bytes_in", c.Request.ContentLength)
		ctx = outcomeFields(c, ctx, start)
		out := ctx.Logger()
		logAtLevel(c, &out).Msg("request")
	}
}

// outcomeFields adds what is only known once the handlers returned.
func outcomeFields(c *gin.Context, ctx zerolog.Context, start time.Time) zerolog.Context {
	ctx = ctx.
		Int("status", c.Writer.Status()).
		Dur("latency", time.Since(start)).
		Int("bytes_out", c.Writer.Size())
	if uid, ok := UserID(c); ok {
		ctx = ctx.Int64("user_id", uid)
	}
	if mid := c.Param("id"); mid != "" {
		ctx = ctx.Str("match_id", mid)
	}
	if IsReplay(c) {
		ctx = ctx.Bool("idempotent_replay", true)
	}
	return ctx
}

func logAtLevel(c *gin.Context, l *zerolog.Logger) *zerolog.Event {
	status := c.Writer.Status()
	switch {
	case len(c.Errors) > 0:
		return l.Error().Str("errors", c.Errors.String())
	case status >= 500:
		return l.Error()
	case status >= 400:
		return l.Warn()
	default:
		return l.Info()
	}
}

// attachLogger stores l under the "logger" key and on the request context.
func attachLogger(c *gin.Context, l *zerolog.Logger) {
	c.Set(loggerKey, l)
	c.Request = c.Request.WithContext(l.WithContext(c.Request.Context()))
}

// LoggerFrom returns the request-scoped logger, or the global one when no
// access logger ran. Never nil.
func LoggerFrom(c *gin.Context) *zerolog.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if l, ok := v.(*zerolog.Logger); ok {
			return l
		}
	}
	l := log.With().Logger()
	return &l
}

// routeOf prefers the registered route template so ids stay out of the path.
func routeOf(c *gin.Context) string {
	if p := c.FullPath(); p != "" {
		return p
	}
	return c.Request.URL.Path
}

// truncate cuts s to max bytes and marks the cut; max <= 0 keeps s whole.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
