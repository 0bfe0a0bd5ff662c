package domain

import (
	"errors"
	"time"
)

// ErrEmptyWindow is returned by Window.Validate when start is not strictly
// before end.
var ErrEmptyWindow = errors.New("start time must be before end time")

// ErrMissingWindowField is returned by Window.Validate when any of the three
// instants is the zero time.
var ErrMissingWindowField = errors.New("date, start time and end time are required")

// Window is a proposed free interval on a calendar day.
type Window struct {
	Date  time.Time
	Start time.Time
	End   time.Time
}

// Validate checks the window's shape.
func (w Window) Validate() error {
	if w.Date.IsZero() || w.Start.IsZero() || w.End.IsZero() {
		return ErrMissingWindowField
	}
	if !w.Start.Before(w.End) {
		return ErrEmptyWindow
	}
	return nil
}

// Normalize returns the window with Date reduced to its calendar day at UTC
// midnight and the instants converted to UTC. Any time-of-day padding on Date
// is discarded.
func (w Window) Normalize() Window {
	return Window{
		Date:  CalendarDay(w.Date),
		Start: w.Start.UTC(),
		End:   w.End.UTC(),
	}
}

// CalendarDay returns midnight UTC of the day t is written on. The day is
// read in t's own offset, so "2024-01-01T05:00:00+07:00" is 2024-01-01.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether a and b are written on the same calendar day,
// each read in its own offset and ignoring time of day.
func SameDay(a, b time.Time) bool {
	return CalendarDay(a).Equal(CalendarDay(b))
}
