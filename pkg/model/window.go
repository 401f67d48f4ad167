package model

import (
	"time"

	apperrors "lcr/pkg/errors"
)

// Layouts accepted for booking instants. Offset-less layouts are recognized
// only so they can be rejected as naive instead of as garbage.
const (
	naiveLayout         = "2006-01-02T15:04:05"
	naiveFractionLayout = "2006-01-02T15:04:05.999999999"
)

// Window is a half-open interval [Start, End). Start belongs to the window,
// End does not, so back-to-back bookings sharing a boundary never conflict.
type Window struct {
	Start time.Time `json:"start" bson:"start"`
	End   time.Time `json:"end" bson:"end"`
}

// NewWindow builds a window from instants that already carry their offset.
func NewWindow(start, end time.Time) (Window, error) {
	if !start.Before(end) {
		return Window{}, apperrors.InvertedWindow()
	}
	return Window{Start: start, End: end}, nil
}

// ParseWindow builds a window from wire-format timestamps. Both instants must
// be RFC3339 with an explicit offset; an offset-less timestamp fails with a
// NAIVE_TIMESTAMP error rather than a generic parse failure.
func ParseWindow(startRaw, endRaw string) (Window, error) {
	start, err := parseInstant(startRaw, "start")
	if err != nil {
		return Window{}, err
	}
	end, err := parseInstant(endRaw, "end")
	if err != nil {
		return Window{}, err
	}
	return NewWindow(start, end)
}

func parseInstant(raw, field string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, raw)
	if err == nil {
		return t, nil
	}
	for _, layout := range []string{naiveLayout, naiveFractionLayout} {
		if _, naiveErr := time.Parse(layout, raw); naiveErr == nil {
			return time.Time{}, apperrors.NaiveTimestamp(field)
		}
	}
	return time.Time{}, apperrors.InvalidInput(field + " must be an RFC3339 datetime")
}

// Overlaps is the sole interval predicate in the repo: two half-open windows
// overlap iff a.Start < b.End && b.Start < a.End.
func (w Window) Overlaps(other Window) bool {
	return w.Start.Before(other.End) && other.Start.Before(w.End)
}

// Contains reports whether the instant falls inside the half-open window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}
