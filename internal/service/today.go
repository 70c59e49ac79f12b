package service

import (
	"time"

	"github.com/saadjs/nutriplan/internal/day"
	"github.com/saadjs/nutriplan/internal/model"
	"github.com/saadjs/nutriplan/internal/nutrition"
)

// DayReader is the read side of the food log the views need.
type DayReader interface {
	EntriesForDay(d day.Day) []model.LogEntry
	Location() *time.Location
}

type TodayView struct {
	Date     string                       `json:"date"`
	Totals   model.Nutrition              `json:"totals"`
	Entries  []model.LogEntry             `json:"entries"`
	Progress []nutrition.NutrientProgress `json:"progress"`
}

// BuildToday summarizes the local day containing now. It is recomputed on
// every call.
func BuildToday(store DayReader, now time.Time) TodayView {
	return BuildDay(store, day.Of(now, store.Location()))
}

func BuildDay(store DayReader, d day.Day) TodayView {
	entries := store.EntriesForDay(d)
	totals := nutrition.Aggregate(entries)
	return TodayView{
		Date:     d.String(),
		Totals:   totals,
		Entries:  entries,
		Progress: nutrition.Progress(totals, nutrition.DefaultTargets),
	}
}
