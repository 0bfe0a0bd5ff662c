// Package handlers implements the HTTP endpoints of the match API on top of
// the like, match and availability services.
//
// Every failure leaves through fail with the same envelope:
//
//	HTTP/1.1 409 Conflict
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "conflict",
//	  "message": "user already liked"
//	}
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-match-backend/internal/http/middleware"
	"github.com/tbourn/go-match-backend/internal/services"
)

// ErrorResponse is the error envelope returned by every endpoint.
type ErrorResponse struct {
	// Echo of X-Request-ID, for matching a client error to server logs
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable machine-readable code, see errors.go
	Code string `json:"code" example:"not_found"`
	// Human-readable message, safe to show to users
	Message string `json:"message" example:"resource not found"`
}

// fail aborts with the envelope. 5xx responses are also logged with the
// request-scoped logger.
func fail(c *gin.Context, status int, code, msg string) {
	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		RequestID: c.Writer.Header().Get(middleware.HeaderRequestID),
		Code:      code,
		Message:   msg,
	})
}

// Fail lets the router answer NoRoute and NoMethod with the same envelope.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

func ok(c *gin.Context, status int, body any) { c.JSON(status, body) }

func noContent(c *gin.Context) { c.Status(http.StatusNoContent) }

// serviceFailure maps one service sentinel onto the wire. An empty message
// echoes err.Error(), which for validation errors names the bad field.
type serviceFailure struct {
	target error
	status int
	code   string
	msg    string
}

var serviceFailures = []serviceFailure{
	{services.ErrSelfLike, http.StatusBadRequest, ErrCodeInvalidOperation, ""},
	{services.ErrInvalidWindow, http.StatusBadRequest, ErrCodeBadRequest, ""},
	{services.ErrUserNotFound, http.StatusNotFound, ErrCodeNotFound, "user not found"},
	{services.ErrMatchNotFound, http.StatusNotFound, ErrCodeNotFound, "match not found"},
	{services.ErrSlotNotFound, http.StatusNotFound, ErrCodeNotFound, "availability slot not found"},
	{services.ErrNotParticipant, http.StatusForbidden, ErrCodeForbidden, "not a participant of this match"},
	{services.ErrDuplicateLike, http.StatusConflict, ErrCodeConflict, "user already liked"},
}

// failFromService answers a service error. Anything not in serviceFailures
// is a 500 whose cause is logged but never sent to the client.
func failFromService(c *gin.Context, err error) {
	for _, f := range serviceFailures {
		if !errors.Is(err, f.target) {
			continue
		}
		msg := f.msg
		if msg == "" {
			msg = err.Error()
		}
		fail(c, f.status, f.code, msg)
		return
	}
	middleware.LoggerFrom(c).Error().Err(err).Msg("service call failed")
	fail(c, http.StatusInternalServerError, ErrCodeInternal, "internal server error")
}
