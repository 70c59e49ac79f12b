package day

import (
	"testing"
	"time"
)

func TestSameUsesLocalCalendarDay(t *testing.T) {
	t.Parallel()
	loc := time.FixedZone("UTC-5", -5*3600)

	// 03:30 UTC is still the previous evening at UTC-5.
	a := time.Date(2026, 3, 10, 3, 30, 0, 0, time.UTC)
	b := time.Date(2026, 3, 9, 20, 0, 0, 0, loc)
	if !Same(a, b, loc) {
		t.Fatalf("expected %s and %s to share a local day", a, b)
	}
	if Same(a, b, time.UTC) {
		t.Fatalf("expected different UTC days for %s and %s", a, b)
	}
}

func TestAddDaysCrossesMonthAndYear(t *testing.T) {
	t.Parallel()
	d := Day{Year: 2026, Month: time.January, Day: 2}
	if got := d.AddDays(-3).String(); got != "2025-12-30" {
		t.Fatalf("expected 2025-12-30, got %s", got)
	}
	if got := (Day{Year: 2024, Month: time.February, Day: 28}).AddDays(1).String(); got != "2024-02-29" {
		t.Fatalf("expected leap day, got %s", got)
	}
}

func TestAddDaysAcrossDSTTransition(t *testing.T) {
	t.Parallel()
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	// 2026-03-08 is the spring-forward day in New York.
	d := Day{Year: 2026, Month: time.March, Day: 9}
	prev := d.AddDays(-1)
	if prev.String() != "2026-03-08" {
		t.Fatalf("expected 2026-03-08, got %s", prev)
	}
	if !prev.Contains(time.Date(2026, 3, 8, 23, 59, 0, 0, loc), loc) {
		t.Fatalf("expected late evening to be inside the DST day")
	}
}

func TestParseAndShortWeekday(t *testing.T) {
	t.Parallel()
	d, err := Parse("2026-10-19")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d.ShortWeekday() != "Mon" {
		t.Fatalf("expected Mon, got %s", d.ShortWeekday())
	}
	if _, err := Parse("19/10/2026"); err == nil {
		t.Fatalf("expected malformed date to fail")
	}
}

func TestStartIsLocalMidnight(t *testing.T) {
	t.Parallel()
	loc := time.FixedZone("UTC+9", 9*3600)
	start := Day{Year: 2026, Month: time.May, Day: 1}.Start(loc)
	if start.Hour() != 0 || start.Location() != loc {
		t.Fatalf("unexpected start %s", start)
	}
	if !(Day{Year: 2026, Month: time.April, Day: 30}).Before(Of(start, loc)) {
		t.Fatalf("expected April 30 to sort before May 1")
	}
}

func TestAtUsesGivenLocation(t *testing.T) {
	t.Parallel()
	loc := time.FixedZone("UTC+2", 2*3600)
	d := Day{Year: 2026, Month: time.March, Day: 10}

	got := d.At(0, 30, loc)
	if !got.Equal(time.Date(2026, 3, 9, 22, 30, 0, 0, time.UTC)) {
		t.Fatalf("unexpected instant %s", got)
	}
	if !d.Contains(got, loc) {
		t.Fatalf("expected %s to fall on %s in %s", got, d, loc)
	}
}
