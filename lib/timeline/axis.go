package timeline

import (
	"time"
)

// Axis is the dense, gap-free sequence of calendar days a table is built
// over: one entry per day from the season's first scheduled game to its
// last, off-days included. An Axis is immutable once built.
type Axis struct {
	dates []time.Time
	index map[int]int
}

// dayKey collapses a time to its calendar day so lookups ignore the
// time-of-day and zone the source happened to report.
func dayKey(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}

// NewAxis builds an axis covering every calendar day in the inclusive
// [first, last] window.
func NewAxis(first, last time.Time) (*Axis, error) {
	first = time.Date(first.Year(), first.Month(), first.Day(), 0, 0, 0, 0, time.UTC)
	last = time.Date(last.Year(), last.Month(), last.Day(), 0, 0, 0, 0, time.UTC)
	if last.Before(first) {
		return nil, &EmptyScheduleError{Season: first.Year()}
	}

	a := &Axis{index: make(map[int]int)}
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		a.index[dayKey(d)] = len(a.dates)
		a.dates = append(a.dates, d)
	}
	return a, nil
}

// AxisFromDates builds an axis spanning the earliest to the latest of the
// given schedule dates. The dates are assumed ordered, as returned by the
// schedule endpoint. Returns EmptyScheduleError if there are none.
func AxisFromDates(season int, dates []time.Time) (*Axis, error) {
	if len(dates) == 0 {
		return nil, &EmptyScheduleError{Season: season}
	}
	return NewAxis(dates[0], dates[len(dates)-1])
}

// Len returns the number of days on the axis.
func (a *Axis) Len() int {
	return len(a.dates)
}

// Dates returns the axis days in order. Callers must not modify the
// returned slice.
func (a *Axis) Dates() []time.Time {
	return a.dates
}

// At returns the day at position i.
func (a *Axis) At(i int) time.Time {
	return a.dates[i]
}

// First returns the first day on the axis.
func (a *Axis) First() time.Time {
	return a.dates[0]
}

// Last returns the last day on the axis.
func (a *Axis) Last() time.Time {
	return a.dates[len(a.dates)-1]
}

// Lookup returns the position of the given calendar day, if present.
func (a *Axis) Lookup(t time.Time) (int, bool) {
	i, ok := a.index[dayKey(t)]
	return i, ok
}
