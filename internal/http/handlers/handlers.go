// Package handlers provides HTTP handler implementations for the public API.
//
// This file declares the service contracts consumed by the handlers and the
// Handlers aggregate that route registration binds to. Handlers are
// transport-thin: they parse path/body input, read the authenticated caller
// from the Gin context, call a service, and translate the result.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-match-backend/internal/domain"
	"github.com/tbourn/go-match-backend/internal/http/middleware"
	"github.com/tbourn/go-match-backend/internal/services"
	"github.com/tbourn/go-match-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// LikeService records likes and lists the caller's outgoing likes.
type LikeService interface {
	// Like records from -> to and reports whether it completed a match.
	Like(ctx context.Context, from, to int64) (*services.LikeResult, error)
	// ListLiked returns the ids the user has liked, oldest first.
	ListLiked(ctx context.Context, userID int64) ([]int64, error)
}

// MatchService exposes read access to matches.
type MatchService interface {
	// Get returns a match with both participants' slots.
	Get(ctx context.Context, matchID, requester int64) (*domain.Match, error)
	// ListForUser returns the user's matches, newest first.
	ListForUser(ctx context.Context, userID int64) ([]services.MatchSummary, error)
	// Stats returns the match count and latest match or profile update for ETags.
	Stats(ctx context.Context, userID int64) (int64, *time.Time, error)
}

// AvailabilityService submits and edits availability.
type AvailabilityService interface {
	Submit(ctx context.Context, matchID, userID int64, windows []domain.Window) (*services.SubmissionOutcome, error)
	UpdateSlot(ctx context.Context, matchID, userID, slotID int64, w domain.Window) (*domain.AvailabilitySlot, error)
	DeleteSlot(ctx context.Context, matchID, userID, slotID int64) error
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for likes, matches and availability.
type Handlers struct {
	likeSvc  LikeService
	matchSvc MatchService
	availSvc AvailabilityService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(likeSvc LikeService, matchSvc MatchService, availSvc AvailabilityService) *Handlers {
	return &Handlers{likeSvc: likeSvc, matchSvc: matchSvc, availSvc: availSvc}
}

// currentUser returns the authenticated caller. Routes are mounted behind
// middleware.Authenticate, so a missing id is answered with 401 rather than
// a default identity.
func currentUser(c *gin.Context) (int64, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "missing or invalid credentials")
		return 0, false
	}
	return id, true
}

// pathID parses a positive integer path parameter, failing with 400.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, ok := utils.ParseID(c.Param(name))
	if !ok {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, name+" must be a positive integer")
		return 0, false
	}
	return id, true
}
