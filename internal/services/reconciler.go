// Package services – Slot reconciler
//
// Reconciliation runs once both participants of a match have submitted
// availability. It walks user A's slots in stored order and, for each, user
// B's slots in stored order, and stops at the first same-day pair whose
// windows overlap. The overlap start becomes the scheduled instant. When no
// pair overlaps the match is reset: both flags cleared and every slot of the
// match deleted, so both users start over.
package services

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-match-backend/internal/domain"
	"github.com/tbourn/go-match-backend/internal/repo"
)

// ReconcileResult reports the outcome of a reconciliation.
type ReconcileResult struct {
	Found       bool
	ScheduledAt *time.Time
}

// FindFirstOverlap returns the start of the first overlap between a slot of
// a and a slot of b on the same calendar day. Iteration is a-major in the
// given order; the first hit wins even if a later pair overlaps longer or
// earlier. Windows that merely touch (end == start) do not overlap.
func FindFirstOverlap(a, b []domain.AvailabilitySlot) (time.Time, bool) {
	for _, sa := range a {
		for _, sb := range b {
			// Stored days are UTC midnights; drivers may return them in the
			// session zone.
			if !domain.SameDay(sa.Date.UTC(), sb.Date.UTC()) {
				continue
			}
			start := sa.StartTime
			if sb.StartTime.After(start) {
				start = sb.StartTime
			}
			end := sa.EndTime
			if sb.EndTime.Before(end) {
				end = sb.EndTime
			}
			if start.Before(end) {
				return start.UTC(), true
			}
		}
	}
	return time.Time{}, false
}

// Reconcile computes the outcome for m from its committed slots and persists
// it on tx. m is updated in place. Callers must hold the match lock.
func Reconcile(ctx context.Context, tx *gorm.DB, m *domain.Match) (ReconcileResult, error) {
	tr := otel.Tracer("services/Reconciler")
	ctx, span := tr.Start(ctx, "Reconcile",
		trace.WithAttributes(attribute.Int64("match.id", m.ID)),
	)
	defer span.End()

	slots, err := repo.ListSlots(ctx, tx, m.ID)
	if err != nil {
		return ReconcileResult{}, err
	}
	var a, b []domain.AvailabilitySlot
	for _, s := range slots {
		switch s.UserID {
		case m.UserAID:
			a = append(a, s)
		case m.UserBID:
			b = append(b, s)
		}
	}

	at, found := FindFirstOverlap(a, b)
	span.SetAttributes(attribute.Bool("reconcile.found", found))

	if found {
		m.DateScheduledAt = &at
		if err := repo.SaveMatchState(ctx, tx, m); err != nil {
			return ReconcileResult{}, err
		}
		reconciliations.WithLabelValues(outcomeScheduled).Inc()
		logFor(ctx).Info().Int64("match_id", m.ID).Time("scheduled_at", at).Msg("date scheduled")
		return ReconcileResult{Found: true, ScheduledAt: &at}, nil
	}

	m.UserAAvailabilitySubmitted = false
	m.UserBAvailabilitySubmitted = false
	m.DateScheduledAt = nil
	if err := repo.SaveMatchState(ctx, tx, m); err != nil {
		return ReconcileResult{}, err
	}
	n, err := repo.DeleteSlotsForMatch(ctx, tx, m.ID)
	if err != nil {
		return ReconcileResult{}, err
	}
	m.Slots = nil
	reconciliations.WithLabelValues(outcomeReset).Inc()
	logFor(ctx).Info().Int64("match_id", m.ID).Int64("slots_deleted", n).Msg("no common slot, availability reset")
	return ReconcileResult{Found: false}, nil
}
