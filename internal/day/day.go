// Package day buckets instants into local calendar days.
//
// Every place that needs "today", "the same day" or "N days ago" goes through
// this package so that logging, the daily view, clearing and the weekly trend
// agree on where midnight is.
package day

import (
	"fmt"
	"strings"
	"time"
)

const layout = "2006-01-02"

// Day is a civil date with no time-of-day and no location.
type Day struct {
	Year  int
	Month time.Month
	Day   int
}

// Of returns the local calendar day containing t. A nil loc means time.Local.
func Of(t time.Time, loc *time.Location) Day {
	y, m, d := t.In(orLocal(loc)).Date()
	return Day{Year: y, Month: m, Day: d}
}

// Same reports whether a and b fall on the same local calendar day.
func Same(a, b time.Time, loc *time.Location) bool {
	return Of(a, loc) == Of(b, loc)
}

// Parse reads a YYYY-MM-DD date.
func Parse(value string) (Day, error) {
	t, err := time.Parse(layout, strings.TrimSpace(value))
	if err != nil {
		return Day{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return Day{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// Start returns local midnight at the beginning of d.
func (d Day) Start(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, orLocal(loc))
}

// At returns the wall clock time hour:minute on d in loc.
func (d Day) At(hour, minute int, loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, hour, minute, 0, 0, orLocal(loc))
}

// AddDays moves d by n calendar days. Month and year boundaries are
// normalized, and DST transitions cannot skip or repeat a day.
func (d Day) AddDays(n int) Day {
	t := time.Date(d.Year, d.Month, d.Day+n, 12, 0, 0, 0, time.UTC)
	return Day{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// Contains reports whether t falls on d in loc.
func (d Day) Contains(t time.Time, loc *time.Location) bool {
	return Of(t, loc) == d
}

func (d Day) Weekday() time.Weekday {
	return time.Date(d.Year, d.Month, d.Day, 12, 0, 0, 0, time.UTC).Weekday()
}

// ShortWeekday is the three letter English weekday name, e.g. "Mon".
func (d Day) ShortWeekday() string {
	return d.Weekday().String()[:3]
}

func (d Day) Before(other Day) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

func (d Day) IsZero() bool {
	return d == Day{}
}

func (d Day) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func orLocal(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}
