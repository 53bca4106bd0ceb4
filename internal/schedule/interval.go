// Package schedule holds the time-ordering policy for dated work items, the
// prioritized set that keeps them sorted and the overlap validator that guards
// every create and update.
package schedule

import (
	"time"

	"task-tracker/internal/domain"
)

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// IntervalOf returns the interval covered by item. The boolean is false for
// undated items, which never take part in ordering or conflict checks.
func IntervalOf(item domain.Item) (Interval, bool) {
	if item == nil {
		return Interval{}, false
	}
	start, end := item.Span()
	if start == nil || end == nil {
		return Interval{}, false
	}
	return Interval{Start: *start, End: *end}, true
}

// Conflicts reports whether two intervals clash. Identical starts always
// clash, even for zero-length intervals.
func (i Interval) Conflicts(other Interval) bool {
	if i.Start.Equal(other.Start) {
		return true
	}
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// Before orders dated items by start time, then by id. It must only be called
// with dated items.
func Before(a, b domain.Item) bool {
	ia, _ := IntervalOf(a)
	ib, _ := IntervalOf(b)
	if !ia.Start.Equal(ib.Start) {
		return ia.Start.Before(ib.Start)
	}
	return a.ItemID() < b.ItemID()
}
