// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements idempotency support for POST requests. A client that
// sends an Idempotency-Key header gets the first successful response stored
// for (user, path, key); retries with the same key are answered from the
// store with Idempotency-Replayed: true and never reach the handler.
//
// Design goals:
//   - Keep transport concerns (validation, capture, replay) in middleware.
//   - Decouple persistence via the narrow IdempotencyStore interface.
//   - Only 2xx responses are stored so failed attempts can be retried.
package middleware

import (
	"bytes"
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey is the canonical request header that clients use to
// convey an idempotency key for unsafe operations (e.g., POST).
const HeaderIdempotencyKey = "Idempotency-Key"

// HeaderIdempotencyReplayed marks responses served from the store.
const HeaderIdempotencyReplayed = "Idempotency-Replayed"

// Context keys used internally to stash idempotency state.
const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyIdemReplay = "idem.replay" // bool: true when a stored replay was served
	ctxKeyRateBypass = "rate.bypass" // bool: true to skip rate limiting
)

// maxStoredBody caps how much of a response is kept for replay.
const maxStoredBody = 1 << 20

// GetIdempotencyKey returns the validated idempotency key stored in the Gin
// context by IdempotencyValidator. The second return value indicates presence.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeyIdemKey)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// IsReplay reports whether the request was answered from a stored response.
func IsReplay(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyIdemReplay)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// StoredResponse is a previously completed response.
type StoredResponse struct {
	Status int
	Body   []byte
}

// IdempotencyStore persists and looks up completed responses. Scope is the
// request path, so a key only replays for the resource it was first used on.
type IdempotencyStore interface {
	// Lookup returns the stored response, or (nil, nil) when none is live.
	Lookup(ctx context.Context, userID int64, scope, key string, now time.Time) (*StoredResponse, error)
	// Save records a completed response. Losing a concurrent save is not an error.
	Save(ctx context.Context, userID int64, scope, key string, status int, body []byte) error
}

// IdempotencyOptions configures header validation behavior for
// IdempotencyValidator.
type IdempotencyOptions struct {
	// MaxLen caps the accepted key length. Values <= 0 default to 200.
	MaxLen int
	// Pattern restricts allowed characters. If nil, a conservative RFC7230-like
	// token pattern is used: ^[A-Za-z0-9._~\-:]+$
	Pattern *regexp.Regexp
}

// IdempotencyValidator validates the Idempotency-Key header on POST requests
// and, with a store, replays or records responses.
//
// Behavior:
//   - Non-POST requests and requests without the header pass through.
//   - An invalid key yields 400 bad_idempotency_key.
//   - Without an authenticated user the key is validated but not used.
//   - A live stored response is written back verbatim and the chain aborts.
//   - Otherwise the handler runs and a 2xx response is stored.
func IdempotencyValidator(opts IdempotencyOptions, store IdempotencyStore) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		// RFC-7230-ish token + common safe chars.
		pat = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)
	}

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			abortJSON(c, http.StatusBadRequest, "bad_idempotency_key", "invalid Idempotency-Key")
			return
		}
		c.Set(ctxKeyIdemKey, key)

		uid, ok := UserID(c)
		if store == nil || !ok {
			c.Next()
			return
		}
		scope := c.Request.URL.Path
		ctx := c.Request.Context()

		prev, err := store.Lookup(ctx, uid, scope, key, time.Now().UTC())
		if err != nil {
			// Lookup failures must not block normal processing.
			LoggerFrom(c).Warn().Err(err).Msg("idempotency lookup failed")
		}
		if prev != nil {
			c.Set(ctxKeyIdemReplay, true)
			c.Set(ctxKeyRateBypass, true)
			idempotentReplays.Inc()
			c.Header(HeaderIdempotencyReplayed, "true")
			c.Data(prev.Status, "application/json; charset=utf-8", prev.Body)
			c.Abort()
			return
		}

		rec := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = rec
		c.Next()

		status := c.Writer.Status()
		if status < 200 || status >= 300 || rec.overflow {
			return
		}
		if err := store.Save(ctx, uid, scope, key, status, rec.buf.Bytes()); err != nil {
			LoggerFrom(c).Warn().Err(err).Msg("idempotency save failed")
		}
	}
}

// bodyRecorder tees the response body into a buffer for storage.
type bodyRecorder struct {
	gin.ResponseWriter
	buf      bytes.Buffer
	overflow bool
}

func (w *bodyRecorder) capture(n int, write func()) {
	if w.overflow {
		return
	}
	if w.buf.Len()+n > maxStoredBody {
		w.overflow = true
		w.buf.Reset()
		return
	}
	write()
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.capture(len(b), func() { w.buf.Write(b) })
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.capture(len(s), func() { w.buf.WriteString(s) })
	return w.ResponseWriter.WriteString(s)
}
