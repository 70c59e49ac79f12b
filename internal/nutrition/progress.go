package nutrition

import "github.com/saadjs/nutriplan/internal/model"

// Targets are the daily amounts progress is measured against.
type Targets struct {
	Calories float64
	Protein  float64
	Carbs    float64
	Fat      float64
}

// DefaultTargets is the fixed daily reference intake.
var DefaultTargets = Targets{
	Calories: 2000,
	Protein:  50,
	Carbs:    250,
	Fat:      65,
}

type NutrientProgress struct {
	Nutrient string  `json:"nutrient"`
	Unit     string  `json:"unit"`
	Actual   float64 `json:"actual"`
	Target   float64 `json:"target"`
	Percent  float64 `json:"percent"`
}

// Percent is 100*actual/target clamped to [0, 100]. A non-positive target
// yields 0.
func Percent(actual, target float64) float64 {
	if target <= 0 {
		return 0
	}
	p := 100 * orZero(actual) / target
	if p > 100 {
		return 100
	}
	return p
}

// Progress maps totals onto calories, protein, carbs and fat progress, in
// that order.
func Progress(totals model.Nutrition, t Targets) []NutrientProgress {
	totals = Sanitize(totals)
	return []NutrientProgress{
		{Nutrient: "calories", Unit: "kcal", Actual: totals.Calories, Target: t.Calories, Percent: Percent(totals.Calories, t.Calories)},
		{Nutrient: "protein", Unit: "g", Actual: totals.Protein, Target: t.Protein, Percent: Percent(totals.Protein, t.Protein)},
		{Nutrient: "carbs", Unit: "g", Actual: totals.Carbs, Target: t.Carbs, Percent: Percent(totals.Carbs, t.Carbs)},
		{Nutrient: "fat", Unit: "g", Actual: totals.Fat, Target: t.Fat, Percent: Percent(totals.Fat, t.Fat)},
	}
}
