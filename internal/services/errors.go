// Package services defines the business logic for likes, matches and
// availability reconciliation. This file centralizes common service-level
// error values so that they can be consistently returned by service methods
// and checked by callers.
//
// These errors are intended for internal use by the service layer and translation
// into user-facing messages or HTTP status codes should be performed at the
// handler/controller layer.
package services

import "errors"

// Like-related errors.
var (
	// ErrSelfLike is returned when a user attempts to like themselves.
	ErrSelfLike = errors.New("cannot like yourself")

	// ErrUserNotFound indicates that the target user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrDuplicateLike is returned when the same user likes the same target
	// a second time. Re-liking is rejected rather than treated as a no-op.
	ErrDuplicateLike = errors.New("already liked this user")
)

// Match and availability errors.
var (
	// ErrMatchNotFound indicates that the requested match does not exist.
	ErrMatchNotFound = errors.New("match not found")

	// ErrNotParticipant is returned when the requester is not one of the two
	// users of the match.
	ErrNotParticipant = errors.New("not a participant of this match")

	// ErrSlotNotFound indicates that the slot does not exist or is not owned
	// by the requester within the given match.
	ErrSlotNotFound = errors.New("availability slot not found")

	// ErrInvalidWindow is wrapped by every availability validation failure
	// (inverted or incomplete window, too many windows).
	ErrInvalidWindow = errors.New("invalid availability window")
)
