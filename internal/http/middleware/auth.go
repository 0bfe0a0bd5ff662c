// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements request authentication. Every API request must carry
// an identity that resolves to an existing user:
//
//   - Authorization: Bearer <jwt> is verified by the configured TokenVerifier
//     and its subject becomes the user id.
//   - X-User-ID: <int> is accepted only when AllowHeader is set (local
//     development and tests).
//
// The resolved id is stored in the Gin context under "userID" as an int64
// and can be read with UserID.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-match-backend/internal/utils"
)

const (
	// userIDKey is the Gin context key under which the caller's id is stored.
	userIDKey = "userID"
	// HeaderUserID carries a raw user id in development mode.
	HeaderUserID = "X-User-ID"
)

// TokenVerifier turns a raw bearer token into a user id.
type TokenVerifier interface {
	Verify(raw string) (int64, error)
}

// UserLookup reports whether a user id refers to an existing user.
type UserLookup func(ctx context.Context, id int64) (bool, error)

// AuthOptions configures Authenticate.
type AuthOptions struct {
	// Verifier checks bearer tokens. Nil rejects every bearer token.
	Verifier TokenVerifier
	// AllowHeader enables the X-User-ID fallback.
	AllowHeader bool
	// UserExists, when set, rejects identities that do not map to a user.
	UserExists UserLookup
}

// UserID returns the authenticated caller's id set by Authenticate.
func UserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok && id > 0
}

// SetUserID stores id as the authenticated caller. Exposed for tests and
// alternative identity middleware.
func SetUserID(c *gin.Context, id int64) { c.Set(userIDKey, id) }

// Authenticate resolves the caller's identity or aborts with 401.
func Authenticate(opts AuthOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		var (
			id  int64
			err error
			ok  bool
		)
		if token, present := bearerToken(c.GetHeader("Authorization")); present {
			if opts.Verifier != nil {
				id, err = opts.Verifier.Verify(token)
				ok = err == nil && id > 0
			}
		} else if raw := strings.TrimSpace(c.GetHeader(HeaderUserID)); raw != "" && opts.AllowHeader {
			id, ok = utils.ParseID(raw)
		}
		if !ok {
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "missing or invalid credentials")
			return
		}

		if opts.UserExists != nil {
			exists, err := opts.UserExists(c.Request.Context(), id)
			if err != nil {
				LoggerFrom(c).Error().Err(err).Int64("user_id", id).Msg("identity lookup failed")
				abortJSON(c, http.StatusInternalServerError, "internal_error", "internal server error")
				return
			}
			if !exists {
				abortJSON(c, http.StatusUnauthorized, "unauthorized", "unknown user")
				return
			}
		}

		SetUserID(c, id)
		c.Next()
	}
}

// bearerToken extracts the token from an Authorization header value.
// present is true whenever the header uses the Bearer scheme, even with an
// empty token, so a malformed bearer never falls through to other schemes.
func bearerToken(value string) (token string, present bool) {
	parts := strings.SplitN(strings.TrimSpace(value), " ", 2)
	if len(parts) == 0 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	if len(parts) < 2 {
		return "", true
	}
	return strings.TrimSpace(parts[1]), true
}

// abortJSON writes the standard error envelope and stops the chain.
func abortJSON(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"request_id": RequestIDFrom(c),
		"code":       code,
		"message":    msg,
	})
}
