// Match HTTP handlers.
//
// This file exposes REST endpoints for match resources:
//   - GET    /matches        (list, weak ETag support)
//   - GET    /matches/{id}   (one match with both participants' slots)
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-match-backend/internal/services"
)

// ListMatchesResponse wraps the caller's matches.
type ListMatchesResponse struct {
	Matches []services.MatchSummary `json:"matches"`
}

// ListMyMatches godoc
// @ID          listMyMatches
// @Summary     List matches
// @Description Returns the caller's matches (newest first) with the other participant's public profile. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Matches
// @Produce     json
// @Security    BearerAuth
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"matches:1:3:1700000000\")
//
// @Success     200  {object} handlers.ListMatchesResponse
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /matches [get]
func (h *Handlers) ListMyMatches(c *gin.Context) {
	uid, okUser := currentUser(c)
	if !okUser {
		return
	}
	ctx := c.Request.Context()

	// ETag pre-check (best effort).
	if count, maxTS, err := h.matchSvc.Stats(ctx, uid); err == nil {
		var ts int64
		if maxTS != nil {
			ts = maxTS.UnixNano()
		}
		etag := fmt.Sprintf(`W/"matches:%d:%d:%d"`, uid, count, ts)
		c.Header("ETag", etag)
		if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
			c.Status(http.StatusNotModified)
			return
		}
	}

	items, err := h.matchSvc.ListForUser(ctx, uid)
	if err != nil {
		failFromService(c, err)
		return
	}
	if items == nil {
		items = []services.MatchSummary{}
	}
	ok(c, http.StatusOK, ListMatchesResponse{Matches: items})
}

// GetMatch godoc
// @ID          getMatch
// @Summary     Get a match
// @Description Returns a match the caller takes part in, with both participants' availability slots.
// @Tags        Matches
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  int  true  "Match ID"  minimum(1) example(7)
//
// @Success     200  {object} domain.Match
// @Failure     400  {object} handlers.ErrorResponse "Invalid id"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     403  {object} handlers.ErrorResponse "Not a participant"
// @Failure     404  {object} handlers.ErrorResponse "Match not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /matches/{id} [get]
func (h *Handlers) GetMatch(c *gin.Context) {
	uid, okUser := currentUser(c)
	if !okUser {
		return
	}
	matchID, okID := pathID(c, "id")
	if !okID {
		return
	}
	m, err := h.matchSvc.Get(c.Request.Context(), matchID, uid)
	if err != nil {
		failFromService(c, err)
		return
	}
	ok(c, http.StatusOK, m)
}
