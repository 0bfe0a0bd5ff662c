// Package services – AvailabilityService
//
// This file implements the per-match availability submission protocol. Each
// participant submits a list of windows that replaces their previous set.
// When the submission leaves both participants' flags set, reconciliation
// runs in the same transaction.
//
// Submissions for one match are serialised by locking the match row before
// anything is read, so the second submitter always reconciles against the
// first submitter's committed slots.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-match-backend/internal/domain"
	"github.com/tbourn/go-match-backend/internal/repo"
)

// SubmissionStatus is the caller-visible result of a submission.
type SubmissionStatus string

const (
	// SubmissionWaiting means the other participant has not submitted yet.
	SubmissionWaiting SubmissionStatus = "waiting"
	// SubmissionScheduled means reconciliation found a common slot.
	SubmissionScheduled SubmissionStatus = "scheduled"
	// SubmissionReset means no common slot was found and both must resubmit.
	SubmissionReset SubmissionStatus = "reset"
)

// DefaultMaxSlotsPerSubmission caps the number of windows in one submission.
const DefaultMaxSlotsPerSubmission = 50

// SubmissionOutcome is returned by Submit.
type SubmissionOutcome struct {
	Status      SubmissionStatus `json:"status"`
	Match       *domain.Match    `json:"match"`
	ScheduledAt *time.Time       `json:"scheduled_at,omitempty"`
}

// AvailabilityService implements availability submission and slot edits.
type AvailabilityService struct {
	DB *gorm.DB

	// MaxSlotsPerSubmission caps windows per submission; <= 0 disables the cap.
	MaxSlotsPerSubmission int
}

// NewAvailabilityService constructs an AvailabilityService with defaults.
func NewAvailabilityService(db *gorm.DB) *AvailabilityService {
	return &AvailabilityService{DB: db, MaxSlotsPerSubmission: DefaultMaxSlotsPerSubmission}
}

// Submit replaces userID's availability for matchID with windows and, when
// both participants have now submitted, reconciles the match.
//
// Semantics and validation:
//   - Every window must have all fields and start < end, and the list may not
//     exceed MaxSlotsPerSubmission; otherwise an error wrapping ErrInvalidWindow.
//     Nothing is written when validation fails.
//   - matchID must exist (ErrMatchNotFound) and userID must participate
//     (ErrNotParticipant).
//   - An empty list is valid: it clears the user's slots and still sets the flag.
//   - Resubmitting after a date was scheduled replaces the slots and
//     reconciles again.
func (s *AvailabilityService) Submit(ctx context.Context, matchID, userID int64, windows []domain.Window) (*SubmissionOutcome, error) {
	tr := otel.Tracer("services/AvailabilityService")
	ctx, span := tr.Start(ctx, "Submit",
		trace.WithAttributes(
			attribute.Int64("match.id", matchID),
			attribute.Int64("user.id", userID),
			attribute.Int("slots.count", len(windows)),
		),
	)
	defer span.End()

	normalized, err := s.validate(windows)
	if err != nil {
		return nil, err
	}

	var out *SubmissionOutcome
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := lockParticipantMatch(ctx, tx, matchID, userID)
		if err != nil {
			return err
		}

		if _, err := repo.ReplaceSlots(ctx, tx, m.ID, userID, normalized); err != nil {
			return err
		}
		if userID == m.UserAID {
			m.UserAAvailabilitySubmitted = true
		} else {
			m.UserBAvailabilitySubmitted = true
		}
		if err := repo.SaveMatchState(ctx, tx, m); err != nil {
			return err
		}

		out = &SubmissionOutcome{Status: SubmissionWaiting}
		if m.BothSubmitted() {
			res, err := Reconcile(ctx, tx, m)
			if err != nil {
				return err
			}
			if res.Found {
				out.Status = SubmissionScheduled
				out.ScheduledAt = res.ScheduledAt
			} else {
				out.Status = SubmissionReset
			}
		}

		m, err = repo.GetMatchWithSlots(ctx, tx, m.ID)
		if err != nil {
			return err
		}
		out.Match = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	availabilitySubmissions.Inc()
	span.SetAttributes(attribute.String("submission.status", string(out.Status)))
	return out, nil
}

// UpdateSlot replaces the window of one of userID's slots. It never triggers
// reconciliation.
func (s *AvailabilityService) UpdateSlot(ctx context.Context, matchID, userID, slotID int64, w domain.Window) (*domain.AvailabilitySlot, error) {
	tr := otel.Tracer("services/AvailabilityService")
	ctx, span := tr.Start(ctx, "UpdateSlot",
		trace.WithAttributes(
			attribute.Int64("match.id", matchID),
			attribute.Int64("user.id", userID),
			attribute.Int64("slot.id", slotID),
		),
	)
	defer span.End()

	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWindow, err)
	}
	w = w.Normalize()

	var slot *domain.AvailabilitySlot
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockParticipantMatch(ctx, tx, matchID, userID); err != nil {
			return err
		}
		var err error
		slot, err = repo.UpdateSlot(ctx, tx, matchID, userID, slotID, w)
		if errors.Is(err, repo.ErrNotFound) {
			return ErrSlotNotFound
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return slot, nil
}

// DeleteSlot removes one of userID's slots. It never triggers reconciliation.
func (s *AvailabilityService) DeleteSlot(ctx context.Context, matchID, userID, slotID int64) error {
	tr := otel.Tracer("services/AvailabilityService")
	ctx, span := tr.Start(ctx, "DeleteSlot",
		trace.WithAttributes(
			attribute.Int64("match.id", matchID),
			attribute.Int64("user.id", userID),
			attribute.Int64("slot.id", slotID),
		),
	)
	defer span.End()

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockParticipantMatch(ctx, tx, matchID, userID); err != nil {
			return err
		}
		err := repo.DeleteSlot(ctx, tx, matchID, userID, slotID)
		if errors.Is(err, repo.ErrNotFound) {
			return ErrSlotNotFound
		}
		return err
	})
}

// validate checks every window and returns them normalised.
func (s *AvailabilityService) validate(windows []domain.Window) ([]domain.Window, error) {
	if s.MaxSlotsPerSubmission > 0 && len(windows) > s.MaxSlotsPerSubmission {
		return nil, fmt.Errorf("%w: at most %d windows per submission, got %d",
			ErrInvalidWindow, s.MaxSlotsPerSubmission, len(windows))
	}
	out := make([]domain.Window, 0, len(windows))
	for i, w := range windows {
		if err := w.Validate(); err != nil {
			return nil, fmt.Errorf("%w: window %d: %v", ErrInvalidWindow, i, err)
		}
		out = append(out, w.Normalize())
	}
	return out, nil
}

// lockParticipantMatch takes the match lock and loads the match, mapping
// missing rows and strangers onto the service errors.
func lockParticipantMatch(ctx context.Context, tx *gorm.DB, matchID, userID int64) (*domain.Match, error) {
	if err := repo.LockMatch(ctx, tx, matchID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	m, err := repo.GetMatch(ctx, tx, matchID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	if !m.IsParticipant(userID) {
		return nil, ErrNotParticipant
	}
	return m, nil
}
