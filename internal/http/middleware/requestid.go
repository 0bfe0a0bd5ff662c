package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// requestIDKey holds the correlation id in the Gin context.
	requestIDKey = "requestID"
	// HeaderRequestID carries the correlation id in both directions.
	HeaderRequestID = "X-Request-ID"
)

// RequestID reuses the caller's X-Request-ID or mints a UUID, echoes it on
// the response and stores it for the rest of the chain. Mount it first so
// logs, error envelopes and panics all carry the same id.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(HeaderRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Header(HeaderRequestID, rid)
		c.Next()
	}
}

// RequestIDFrom returns the correlation id set by RequestID, or "".
func RequestIDFrom(c *gin.Context) string {
	v, _ := c.Get(requestIDKey)
	return asString(v)
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}
