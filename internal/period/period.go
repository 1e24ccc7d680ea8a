// Package period provides the calendar-day interval type shared by the
// metering, tenancy and distribution calculations. Periods are half-open:
// Start is included, End is excluded.
package period

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidRange = errors.New("invalid_range")

type Period struct {
	Start time.Time
	End   time.Time
}

// New validates start < end and normalizes both bounds to UTC midnight.
func New(start, end time.Time) (Period, error) {
	p := Period{Start: Day(start), End: Day(end)}
	if !p.Start.Before(p.End) {
		return Period{}, fmt.Errorf("%w: start %s is not before end %s",
			ErrInvalidRange, p.Start.Format(time.DateOnly), p.End.Format(time.DateOnly))
	}
	return p, nil
}

// Day truncates a timestamp to UTC midnight.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}

// Days returns the length of the period in days.
func (p Period) Days() int {
	return DaysBetween(p.Start, p.End)
}

// Contains reports whether the day t lies within [Start, End].
// Both bounds are valid reading dates for a period, hence End is included.
func (p Period) Contains(t time.Time) bool {
	d := Day(t)
	return !d.Before(p.Start) && !d.After(p.End)
}

// Clip intersects p with other. The second return value is false when the
// intersection is empty.
func (p Period) Clip(other Period) (Period, bool) {
	start := p.Start
	if other.Start.After(start) {
		start = other.Start
	}
	end := p.End
	if other.End.Before(end) {
		end = other.End
	}
	if !start.Before(end) {
		return Period{}, false
	}
	return Period{Start: start, End: end}, true
}

func (p Period) String() string {
	return p.Start.Format(time.DateOnly) + ".." + p.End.Format(time.DateOnly)
}
