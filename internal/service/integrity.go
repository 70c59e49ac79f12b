package service

import (
	"fmt"
	"time"

	"github.com/saadjs/nutriplan/internal/model"
	"github.com/saadjs/nutriplan/internal/nutrition"
)

type DoctorIssue struct {
	EntryID string `json:"entry_id"`
	Problem string `json:"problem"`
}

type DoctorReport struct {
	Entries          int           `json:"entries"`
	DuplicateIDs     int           `json:"duplicate_ids"`
	ZeroTimestamps   int           `json:"zero_timestamps"`
	InvalidNutrition int           `json:"invalid_nutrition"`
	FutureEntries    int           `json:"future_entries"`
	Issues           []DoctorIssue `json:"issues,omitempty"`
	FixedEntries     int           `json:"fixed_entries,omitempty"`
	DroppedEntries   int           `json:"dropped_entries,omitempty"`
}

func (r DoctorReport) Healthy() bool {
	return r.DuplicateIDs == 0 && r.ZeroTimestamps == 0 && r.InvalidNutrition == 0 && r.FutureEntries == 0
}

const (
	problemDuplicateID      = "duplicate id"
	problemZeroTimestamp    = "missing timestamp"
	problemInvalidNutrition = "invalid nutrition"
	problemFutureTimestamp  = "timestamp in the future"
)

// RunDoctor checks the log for repeated ids, missing timestamps, nutrition
// values that are negative or not finite, and entries logged after now.
// With fix, repeated ids and undated entries are dropped (the first
// occurrence of an id is kept) and invalid nutrition is zeroed. Future
// entries are only reported.
func RunDoctor(store LogStore, now time.Time, fix bool) (DoctorReport, error) {
	entries := store.Entries()
	report := DoctorReport{Entries: len(entries)}
	seen := map[string]bool{}
	kept := make([]model.LogEntry, 0, len(entries))
	for _, e := range entries {
		drop := false
		if seen[e.ID] {
			report.DuplicateIDs++
			report.Issues = append(report.Issues, DoctorIssue{EntryID: e.ID, Problem: problemDuplicateID})
			drop = true
		}
		seen[e.ID] = true
		if e.Timestamp.IsZero() {
			report.ZeroTimestamps++
			report.Issues = append(report.Issues, DoctorIssue{EntryID: e.ID, Problem: problemZeroTimestamp})
			drop = true
		} else if e.Timestamp.After(now) {
			report.FutureEntries++
			report.Issues = append(report.Issues, DoctorIssue{EntryID: e.ID, Problem: problemFutureTimestamp})
		}
		if !nutrition.Valid(e.Nutrition) {
			report.InvalidNutrition++
			report.Issues = append(report.Issues, DoctorIssue{EntryID: e.ID, Problem: problemInvalidNutrition})
			if !drop {
				e.Nutrition = nutrition.Sanitize(e.Nutrition)
				report.FixedEntries++
			}
		}
		if drop {
			report.DroppedEntries++
			continue
		}
		kept = append(kept, e)
	}

	if !fix {
		report.FixedEntries = 0
		report.DroppedEntries = 0
		return report, nil
	}
	if report.FixedEntries == 0 && report.DroppedEntries == 0 {
		return report, nil
	}
	if err := store.Replace(kept); err != nil {
		return report, fmt.Errorf("doctor fix: %w", err)
	}
	return report, nil
}
