// Package dateweek provides Monday-anchored calendar-week arithmetic used by
// the periodization planner. All functions normalize to UTC midnight; ranges
// are inclusive on both ends.
package dateweek

import (
	"iter"
	"time"
)

// Week is one calendar week slice of a range. End may be earlier than the
// natural Sunday when the decomposed range stops mid-week.
type Week struct {
	Start time.Time // always a Monday
	End   time.Time // Start+6d, clipped to the range end
}

// Day truncates t to UTC midnight, dropping the time-of-day component.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WeekStart returns the Monday at or before t, at UTC midnight.
// Go counts Sunday as weekday 0, which maps to an offset of 6 days back.
func WeekStart(t time.Time) time.Time {
	d := Day(t)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// WeekEnd returns the Sunday at or after t, at UTC midnight.
func WeekEnd(t time.Time) time.Time {
	return WeekStart(t).AddDate(0, 0, 6)
}

// Decompose splits [rangeStart, rangeEnd] into consecutive weeks starting at
// rangeStart's Monday. The final week's End is clipped to rangeEnd. The
// sequence is lazy and restartable; it is empty when rangeEnd precedes
// rangeStart.
func Decompose(rangeStart, rangeEnd time.Time) iter.Seq[Week] {
	return func(yield func(Week) bool) {
		end := Day(rangeEnd)
		for start := WeekStart(rangeStart); !start.After(end); start = start.AddDate(0, 0, 7) {
			weekEnd := start.AddDate(0, 0, 6)
			if weekEnd.After(end) {
				weekEnd = end
			}
			if !yield(Week{Start: start, End: weekEnd}) {
				return
			}
		}
	}
}

// Count returns the number of weeks Decompose yields for the same range:
// ceil(alignedDays / 7), counting from rangeStart's Monday.
func Count(rangeStart, rangeEnd time.Time) int {
	start := WeekStart(rangeStart)
	end := Day(rangeEnd)
	if end.Before(start) {
		return 0
	}
	days := int(end.Sub(start).Hours()/24) + 1
	return (days + 6) / 7
}
