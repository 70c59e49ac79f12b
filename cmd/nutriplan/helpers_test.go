package nutriplan

import (
	"testing"
	"time"
)

func TestParseLogClockResolvesInStoreLocation(t *testing.T) {
	t.Parallel()
	loc := time.FixedZone("UTC-5", -5*3600)

	c, err := parseLogClock("2026-03-10", "23:30")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := time.Date(2026, 3, 11, 4, 30, 0, 0, time.UTC)
	if got := c.in(loc); !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}

	noon, err := parseLogClock("2026-03-10", "")
	if err != nil {
		t.Fatalf("parse date only: %v", err)
	}
	if got := noon.in(loc); got.Hour() != 12 || got.Location() != loc {
		t.Fatalf("expected local noon, got %s", got)
	}

	none, err := parseLogClock("", "")
	if err != nil || !none.in(loc).IsZero() {
		t.Fatalf("expected zero time without flags, got %s (%v)", none.in(loc), err)
	}
}

func TestParseLogClockRejectsBadInput(t *testing.T) {
	t.Parallel()
	for _, tc := range []struct{ date, clock string }{
		{"", "08:00"},
		{"10/03/2026", ""},
		{"2026-03-10", "8pm"},
	} {
		if _, err := parseLogClock(tc.date, tc.clock); err == nil {
			t.Fatalf("expected error for date=%q time=%q", tc.date, tc.clock)
		}
	}
}
