package services

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbourn/go-match-backend/internal/domain"
	"github.com/tbourn/go-match-backend/internal/repo"
)

func TestFindFirstOverlap(t *testing.T) {
	next := day.AddDate(0, 0, 1)

	tests := []struct {
		name   string
		a, b   []domain.AvailabilitySlot
		want   time.Time
		wantOK bool
	}{
		{
			name:   "partial overlap starts at later start",
			a:      []domain.AvailabilitySlot{slot(1, 1, win(day, 14, 16))},
			b:      []domain.AvailabilitySlot{slot(2, 2, win(day, 15, 17))},
			want:   day.Add(15 * time.Hour),
			wantOK: true,
		},
		{
			name: "disjoint windows",
			a:    []domain.AvailabilitySlot{slot(1, 1, win(day, 9, 10))},
			b:    []domain.AvailabilitySlot{slot(2, 2, win(day, 18, 20))},
		},
		{
			name: "touching windows do not overlap",
			a:    []domain.AvailabilitySlot{slot(1, 1, win(day, 9, 10))},
			b:    []domain.AvailabilitySlot{slot(2, 2, win(day, 10, 11))},
		},
		{
			name: "different calendar days never match",
			a:    []domain.AvailabilitySlot{slot(1, 1, win(day, 9, 12))},
			b:    []domain.AvailabilitySlot{slot(2, 2, domain.Window{Date: next, Start: day.Add(10 * time.Hour), End: day.Add(11 * time.Hour)})},
		},
		{
			name: "same day compared by calendar date not timestamp",
			a: []domain.AvailabilitySlot{slot(1, 1, domain.Window{
				Date: day.Add(7 * time.Hour), Start: day.Add(9 * time.Hour), End: day.Add(12 * time.Hour),
			})},
			b:      []domain.AvailabilitySlot{slot(2, 2, win(day, 11, 13))},
			want:   day.Add(11 * time.Hour),
			wantOK: true,
		},
		{
			name: "containment yields inner start",
			a:    []domain.AvailabilitySlot{slot(1, 1, win(day, 8, 20))},
			b:    []domain.AvailabilitySlot{slot(2, 2, win(day, 12, 13))},
			want: day.Add(12 * time.Hour), wantOK: true,
		},
		{
			name: "empty side",
			a:    []domain.AvailabilitySlot{slot(1, 1, win(day, 8, 20))},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := FindFirstOverlap(tc.a, tc.b)
			assert.Equal(t, tc.wantOK, ok)
			if tc.wantOK {
				assert.True(t, got.Equal(tc.want), "got %v want %v", got, tc.want)
			}
		})
	}
}

// The first overlapping pair in A-major stored order wins, even when a later
// pair overlaps earlier in the day or for longer.
func TestFindFirstOverlap_FirstHitWinsOverEarlierOrLonger(t *testing.T) {
	a := []domain.AvailabilitySlot{
		slot(1, 1, win(day, 18, 19)), // overlaps b[1] for 30 minutes, late
		slot(2, 1, win(day, 8, 12)),  // overlaps b[0] for 3 hours, early
	}
	b := []domain.AvailabilitySlot{
		slot(3, 2, win(day, 9, 12)),
		slot(4, 2, domain.Window{Date: day, Start: day.Add(18*time.Hour + 30*time.Minute), End: day.Add(21 * time.Hour)}),
	}

	got, ok := FindFirstOverlap(a, b)
	require.True(t, ok)
	assert.True(t, got.Equal(day.Add(18*time.Hour+30*time.Minute)), "got %v", got)
}

func TestFindFirstOverlap_StoredDaysInSessionZone(t *testing.T) {
	// A driver may hand back the stored UTC midnight in its session zone,
	// where it reads as the previous evening.
	est := time.FixedZone("EST", -5*3600)
	a := slot(1, 1, win(day, 14, 16))
	a.Date = day.In(est)
	b := slot(2, 2, win(day, 15, 17))

	got, ok := FindFirstOverlap([]domain.AvailabilitySlot{a}, []domain.AvailabilitySlot{b})
	require.True(t, ok)
	assert.True(t, got.Equal(day.Add(15*time.Hour)), "got %v", got)
}

func TestReconcile_ScheduledKeepsFlagsAndSlots(t *testing.T) {
	ctx := context.Background()
	db := newSvcDB(t)
	a, b := seedUser(t, db, "ann"), seedUser(t, db, "bob")
	m := seedMatch(t, db, a.ID, b.ID)

	_, err := repo.ReplaceSlots(ctx, db, m.ID, a.ID, []domain.Window{win(day, 14, 16)})
	require.NoError(t, err)
	_, err = repo.ReplaceSlots(ctx, db, m.ID, b.ID, []domain.Window{win(day, 15, 17)})
	require.NoError(t, err)
	m.UserAAvailabilitySubmitted, m.UserBAvailabilitySubmitted = true, true

	before := testutil.ToFloat64(reconciliations.WithLabelValues(outcomeScheduled))
	res, err := Reconcile(ctx, db, m)
	require.NoError(t, err)
	require.True(t, res.Found)
	assert.True(t, res.ScheduledAt.Equal(day.Add(15*time.Hour)))
	assert.Equal(t, before+1, testutil.ToFloat64(reconciliations.WithLabelValues(outcomeScheduled)))

	got, err := repo.GetMatchWithSlots(ctx, db, m.ID)
	require.NoError(t, err)
	assert.True(t, got.BothSubmitted())
	require.NotNil(t, got.DateScheduledAt)
	assert.True(t, got.DateScheduledAt.Equal(day.Add(15*time.Hour)))
	assert.Len(t, got.Slots, 2)
	assert.Equal(t, domain.PhaseScheduled, got.Phase())
}

func TestReconcile_NoOverlapResetsEverything(t *testing.T) {
	ctx := context.Background()
	db := newSvcDB(t)
	a, b := seedUser(t, db, "ann"), seedUser(t, db, "bob")
	m := seedMatch(t, db, a.ID, b.ID)

	_, err := repo.ReplaceSlots(ctx, db, m.ID, a.ID, []domain.Window{win(day, 9, 10)})
	require.NoError(t, err)
	_, err = repo.ReplaceSlots(ctx, db, m.ID, b.ID, []domain.Window{win(day, 18, 20)})
	require.NoError(t, err)
	m.UserAAvailabilitySubmitted, m.UserBAvailabilitySubmitted = true, true

	before := testutil.ToFloat64(reconciliations.WithLabelValues(outcomeReset))
	res, err := Reconcile(ctx, db, m)
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.Nil(t, res.ScheduledAt)
	assert.Equal(t, before+1, testutil.ToFloat64(reconciliations.WithLabelValues(outcomeReset)))

	got, err := repo.GetMatchWithSlots(ctx, db, m.ID)
	require.NoError(t, err)
	assert.False(t, got.UserAAvailabilitySubmitted)
	assert.False(t, got.UserBAvailabilitySubmitted)
	assert.Nil(t, got.DateScheduledAt)
	assert.Empty(t, got.Slots)
	assert.Equal(t, domain.PhaseAwaitingBoth, got.Phase())
}
