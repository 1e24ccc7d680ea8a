package domain

import (
	"sort"
	"time"

	"github.com/tabacha/librelandlord/internal/period"
)

// DateMode selects which date pair of a renter bounds the occupancy.
type DateMode string

const (
	// DateModeOccupancy uses the physical move-in/move-out dates.
	DateModeOccupancy DateMode = "occupancy"
	// DateModeContract uses the contract dates, falling back to the move
	// dates where a contract date is unset.
	DateModeContract DateMode = "contract"
)

// Interval is one contiguous slice of a calculation window that is either
// occupied by a single renter or vacant (Renter == nil).
type Interval struct {
	Period period.Period
	Renter *Renter
}

func (i Interval) Vacant() bool { return i.Renter == nil }

// Window returns the renter's occupancy bounds for the given mode. The end
// is exclusive; an open tenancy returns ok==false for the end.
func (r Renter) Window(mode DateMode) (start time.Time, end time.Time, openEnded bool) {
	start = period.Day(r.MoveInDate)
	out := r.MoveOutDate
	if mode == DateModeContract {
		if r.ContractStartDate != nil {
			start = period.Day(*r.ContractStartDate)
		}
		if r.ContractEndDate != nil {
			out = r.ContractEndDate
		}
	}
	if out == nil {
		return start, time.Time{}, true
	}
	return start, period.Day(*out), false
}

// SplitOccupancy covers p with a gap-free sequence of intervals built from
// the renters of one apartment. Uncovered stretches before, between and
// after tenancies become vacant intervals. Renters are processed in
// occupancy-start order; overlapping tenancies keep the earlier renter until
// its end.
func SplitOccupancy(p period.Period, renters []Renter, mode DateMode) []Interval {
	sorted := make([]Renter, len(renters))
	copy(sorted, renters)
	sort.SliceStable(sorted, func(i, j int) bool {
		si, _, _ := sorted[i].Window(mode)
		sj, _, _ := sorted[j].Window(mode)
		return si.Before(sj)
	})

	var intervals []Interval
	cursor := p.Start
	for i := range sorted {
		r := sorted[i]
		start, end, open := r.Window(mode)
		if open {
			end = p.End
		}
		clipped, ok := period.Period{Start: start, End: end}.Clip(p)
		if !ok {
			continue
		}
		if clipped.Start.Before(cursor) {
			clipped.Start = cursor
			if !clipped.Start.Before(clipped.End) {
				continue
			}
		}
		if cursor.Before(clipped.Start) {
			intervals = append(intervals, Interval{
				Period: period.Period{Start: cursor, End: clipped.Start},
			})
		}
		intervals = append(intervals, Interval{Period: clipped, Renter: &sorted[i]})
		cursor = clipped.End
	}
	if cursor.Before(p.End) {
		intervals = append(intervals, Interval{
			Period: period.Period{Start: cursor, End: p.End},
		})
	}
	return intervals
}
