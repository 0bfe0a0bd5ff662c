// Like HTTP handlers.
//
// This file exposes REST endpoints for the like ledger:
//   - POST   /likes/{userId}   (like a user; may create a match)
//   - GET    /likes            (ids the caller has liked)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListLikesResponse wraps the ids of users the caller has liked.
type ListLikesResponse struct {
	UserIDs []int64 `json:"user_ids"`
}

// LikeUser godoc
// @ID          likeUser
// @Summary     Like a user
// @Description Records a like from the caller to userId. When userId already liked the caller, the match is returned with is_match=true.
// @Tags        Likes
// @Produce     json
// @Security    BearerAuth
//
// @Param       userId           path    int     true  "Target user ID"                       minimum(1) example(42)
// @Param       Idempotency-Key  header  string  false "Replays the first successful response" example(like-42-retry)
//
// @Success     201  {object}  services.LikeResult
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid id or self-like"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     404  {object}  handlers.ErrorResponse  "Target user not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Already liked"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /likes/{userId} [post]
func (h *Handlers) LikeUser(c *gin.Context) {
	uid, okUser := currentUser(c)
	if !okUser {
		return
	}
	target, okID := pathID(c, "userId")
	if !okID {
		return
	}

	res, err := h.likeSvc.Like(c.Request.Context(), uid, target)
	if err != nil {
		failFromService(c, err)
		return
	}
	ok(c, http.StatusCreated, res)
}

// ListMyLikes godoc
// @ID          listMyLikes
// @Summary     List liked users
// @Description Returns the ids of every user the caller has liked, oldest first.
// @Tags        Likes
// @Produce     json
// @Security    BearerAuth
//
// @Success     200  {object}  handlers.ListLikesResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /likes [get]
func (h *Handlers) ListMyLikes(c *gin.Context) {
	uid, okUser := currentUser(c)
	if !okUser {
		return
	}
	ids, err := h.likeSvc.ListLiked(c.Request.Context(), uid)
	if err != nil {
		failFromService(c, err)
		return
	}
	if ids == nil {
		ids = []int64{}
	}
	ok(c, http.StatusOK, ListLikesResponse{UserIDs: ids})
}
