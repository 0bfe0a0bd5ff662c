package handlers

// Error codes carried in ErrorResponse.Code. Clients branch on these, not on
// the message. Middleware writes the same envelope with the codes it owns
// (rate_limited, bad_idempotency_key).
const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeForbidden        = "forbidden"
	ErrCodeNotFound         = "not_found"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodeConflict         = "conflict"
	ErrCodeRateLimited      = "rate_limited"
	ErrCodeInternal         = "internal_error"

	// ErrCodeInvalidOperation rejects a request that is well formed but
	// makes no sense for the caller, such as liking yourself.
	ErrCodeInvalidOperation = "invalid_operation"
)
