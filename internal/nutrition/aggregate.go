// Package nutrition sums log entries into daily totals and maps totals onto
// progress against daily targets.
package nutrition

import (
	"math"

	"github.com/saadjs/nutriplan/internal/model"
)

// Aggregate returns the elementwise sum of every entry's nutrition. An empty
// slice yields all zeros. A field holding NaN, an infinity or a negative value
// contributes 0, which keeps totals sane when the persisted log was edited by
// hand.
func Aggregate(entries []model.LogEntry) model.Nutrition {
	var out model.Nutrition
	for _, e := range entries {
		out = out.Add(Sanitize(e.Nutrition))
	}
	return out
}

// Sanitize replaces every field that is not a finite non-negative number
// with 0.
func Sanitize(n model.Nutrition) model.Nutrition {
	return model.Nutrition{
		Calories: orZero(n.Calories),
		Protein:  orZero(n.Protein),
		Carbs:    orZero(n.Carbs),
		Fat:      orZero(n.Fat),
		Fiber:    orZero(n.Fiber),
		Sugar:    orZero(n.Sugar),
	}
}

// Valid reports whether every field is a finite non-negative number.
func Valid(n model.Nutrition) bool {
	return Sanitize(n) == n
}

func orZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
