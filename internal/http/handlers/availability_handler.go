// Availability HTTP handlers.
//
// This file exposes REST endpoints for a match's availability:
//   - POST   /matches/{id}/availability             (replace caller's slots, reconcile)
//   - PUT    /matches/{id}/availability/{slotId}    (edit one slot)
//   - DELETE /matches/{id}/availability/{slotId}    (remove one slot)
//
// Instants are ISO 8601 / RFC 3339 strings. The date may also be a plain
// YYYY-MM-DD; any time-of-day on it is ignored.
package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-match-backend/internal/domain"
)

// AvailabilitySlotRequest is one proposed free window.
type AvailabilitySlotRequest struct {
	// Date is the calendar day of the window.
	Date string `json:"date" example:"2025-06-01"`
	// StartTime is the window start instant.
	StartTime string `json:"start_time" example:"2025-06-01T14:00:00Z"`
	// EndTime is the window end instant; must be after StartTime.
	EndTime string `json:"end_time" example:"2025-06-01T16:00:00Z"`
}

// SubmitAvailabilityRequest is the JSON payload for an availability submission.
type SubmitAvailabilityRequest struct {
	// Slots replaces every slot the caller had for the match. May be empty.
	Slots []AvailabilitySlotRequest `json:"slots"`
}

// toWindow parses the request strings. Missing fields become zero times so
// the service reports them with its own validation error.
func (r AvailabilitySlotRequest) toWindow() (domain.Window, error) {
	var (
		w   domain.Window
		err error
	)
	if w.Date, err = parseDate(r.Date); err != nil {
		return w, fmt.Errorf("date: %w", err)
	}
	if w.Start, err = parseInstant(r.StartTime); err != nil {
		return w, fmt.Errorf("start_time: %w", err)
	}
	if w.End, err = parseInstant(r.EndTime); err != nil {
		return w, fmt.Errorf("end_time: %w", err)
	}
	return w, nil
}

func parseInstant(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected RFC 3339 timestamp, got %q", s)
	}
	return t, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) == len(time.DateOnly) {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			return t, nil
		}
	}
	return parseInstant(s)
}

// SubmitAvailability godoc
// @ID          submitAvailability
// @Summary     Submit availability for a match
// @Description Replaces the caller's availability for the match. When both participants have submitted, the first overlapping window schedules the date; if none overlaps, both sides are reset and must resubmit.
// @Tags        Availability
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       id               path    int     true  "Match ID"                              minimum(1) example(7)
// @Param       Idempotency-Key  header  string  false "Replays the first successful response" example(avail-7-1)
// @Param       body             body    handlers.SubmitAvailabilityRequest true "Availability windows"
//
// @Success     200  {object} services.SubmissionOutcome
// @Failure     400  {object} handlers.ErrorResponse "Invalid payload or window"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     403  {object} handlers.ErrorResponse "Not a participant"
// @Failure     404  {object} handlers.ErrorResponse "Match not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /matches/{id}/availability [post]
func (h *Handlers) SubmitAvailability(c *gin.Context) {
	uid, okUser := currentUser(c)
	if !okUser {
		return
	}
	matchID, okID := pathID(c, "id")
	if !okID {
		return
	}

	var req SubmitAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	windows := make([]domain.Window, 0, len(req.Slots))
	for i, s := range req.Slots {
		w, err := s.toWindow()
		if err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, fmt.Sprintf("slots[%d].%v", i, err))
			return
		}
		windows = append(windows, w)
	}

	out, err := h.availSvc.Submit(c.Request.Context(), matchID, uid, windows)
	if err != nil {
		failFromService(c, err)
		return
	}
	ok(c, http.StatusOK, out)
}

// UpdateAvailabilitySlot godoc
// @ID          updateAvailabilitySlot
// @Summary     Edit an availability slot
// @Description Overwrites one of the caller's slots. Does not trigger reconciliation.
// @Tags        Availability
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       id      path  int  true  "Match ID"  minimum(1) example(7)
// @Param       slotId  path  int  true  "Slot ID"   minimum(1) example(31)
// @Param       body    body  handlers.AvailabilitySlotRequest true "New window"
//
// @Success     200  {object} domain.AvailabilitySlot
// @Failure     400  {object} handlers.ErrorResponse "Invalid payload or window"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     403  {object} handlers.ErrorResponse "Not a participant"
// @Failure     404  {object} handlers.ErrorResponse "Match or slot not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /matches/{id}/availability/{slotId} [put]
func (h *Handlers) UpdateAvailabilitySlot(c *gin.Context) {
	uid, okUser := currentUser(c)
	if !okUser {
		return
	}
	matchID, okID := pathID(c, "id")
	if !okID {
		return
	}
	slotID, okSlot := pathID(c, "slotId")
	if !okSlot {
		return
	}

	var req AvailabilitySlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	w, err := req.toWindow()
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}

	slot, err := h.availSvc.UpdateSlot(c.Request.Context(), matchID, uid, slotID, w)
	if err != nil {
		failFromService(c, err)
		return
	}
	ok(c, http.StatusOK, slot)
}

// DeleteAvailabilitySlot godoc
// @ID          deleteAvailabilitySlot
// @Summary     Delete an availability slot
// @Description Removes one of the caller's slots. Does not trigger reconciliation.
// @Tags        Availability
// @Produce     json
// @Security    BearerAuth
//
// @Param       id      path  int  true  "Match ID"  minimum(1) example(7)
// @Param       slotId  path  int  true  "Slot ID"   minimum(1) example(31)
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Invalid id"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     403  {object} handlers.ErrorResponse "Not a participant"
// @Failure     404  {object} handlers.ErrorResponse "Match or slot not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /matches/{id}/availability/{slotId} [delete]
func (h *Handlers) DeleteAvailabilitySlot(c *gin.Context) {
	uid, okUser := currentUser(c)
	if !okUser {
		return
	}
	matchID, okID := pathID(c, "id")
	if !okID {
		return
	}
	slotID, okSlot := pathID(c, "slotId")
	if !okSlot {
		return
	}

	if err := h.availSvc.DeleteSlot(c.Request.Context(), matchID, uid, slotID); err != nil {
		failFromService(c, err)
		return
	}
	noContent(c)
}
