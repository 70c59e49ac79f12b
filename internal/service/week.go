package service

import (
	"time"

	"github.com/saadjs/nutriplan/internal/day"
	"github.com/saadjs/nutriplan/internal/model"
	"github.com/saadjs/nutriplan/internal/nutrition"
)

const trendDays = 7

type TrendPoint struct {
	Label  string          `json:"label"`
	Date   string          `json:"date"`
	Totals model.Nutrition `json:"totals"`
}

type WeekTrend struct {
	Points []TrendPoint `json:"points"`
}

// ChartSeries holds the four parallel series a chart draws, one value per
// label.
type ChartSeries struct {
	Labels   []string  `json:"labels"`
	Calories []float64 `json:"calories"`
	Protein  []float64 `json:"protein"`
	Carbs    []float64 `json:"carbs"`
	Fat      []float64 `json:"fat"`
}

// BuildWeek returns exactly seven points, oldest first, ending with the
// local day containing now. Days without entries have zero totals.
func BuildWeek(store DayReader, now time.Time) WeekTrend {
	today := day.Of(now, store.Location())
	points := make([]TrendPoint, 0, trendDays)
	for i := trendDays - 1; i >= 0; i-- {
		d := today.AddDays(-i)
		points = append(points, TrendPoint{
			Label:  d.ShortWeekday(),
			Date:   d.String(),
			Totals: nutrition.Aggregate(store.EntriesForDay(d)),
		})
	}
	return WeekTrend{Points: points}
}

func (w WeekTrend) Series() ChartSeries {
	s := ChartSeries{
		Labels:   make([]string, 0, len(w.Points)),
		Calories: make([]float64, 0, len(w.Points)),
		Protein:  make([]float64, 0, len(w.Points)),
		Carbs:    make([]float64, 0, len(w.Points)),
		Fat:      make([]float64, 0, len(w.Points)),
	}
	for _, p := range w.Points {
		s.Labels = append(s.Labels, p.Label)
		s.Calories = append(s.Calories, p.Totals.Calories)
		s.Protein = append(s.Protein, p.Totals.Protein)
		s.Carbs = append(s.Carbs, p.Totals.Carbs)
		s.Fat = append(s.Fat, p.Totals.Fat)
	}
	return s
}

// Average is the mean of the daily totals over the trend.
func (w WeekTrend) Average() model.Nutrition {
	if len(w.Points) == 0 {
		return model.Nutrition{}
	}
	var sum model.Nutrition
	for _, p := range w.Points {
		sum = sum.Add(p.Totals)
	}
	n := float64(len(w.Points))
	return model.Nutrition{
		Calories: sum.Calories / n,
		Protein:  sum.Protein / n,
		Carbs:    sum.Carbs / n,
		Fat:      sum.Fat / n,
		Fiber:    sum.Fiber / n,
		Sugar:    sum.Sugar / n,
	}
}
