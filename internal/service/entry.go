package service

import (
	"context"
	"strings"

	"github.com/saadjs/nutriplan/internal/model"
	"github.com/saadjs/nutriplan/internal/provider/mealdb"
	"github.com/saadjs/nutriplan/internal/provider/openfoodfacts"
)

// MealNutritionSource supplies nutrition for a recipe. TheMealDB carries no
// nutrition data, so the value has to come from somewhere else.
type MealNutritionSource interface {
	MealNutrition(ctx context.Context, meal mealdb.Meal) (model.Nutrition, error)
}

// FixedNutrition returns the same values for every meal. The CLI builds one
// from --calories/--protein/... flags.
type FixedNutrition model.Nutrition

func (f FixedNutrition) MealNutrition(ctx context.Context, meal mealdb.Meal) (model.Nutrition, error) {
	n := model.Nutrition(f)
	for _, field := range []struct {
		name  string
		value float64
	}{
		{"calories", n.Calories},
		{"protein", n.Protein},
		{"carbs", n.Carbs},
		{"fat", n.Fat},
		{"fiber", n.Fiber},
		{"sugar", n.Sugar},
	} {
		if err := validateNonNegativeFloat(field.name, field.value); err != nil {
			return model.Nutrition{}, err
		}
	}
	return n, nil
}

// NewMealEntry resolves nutrition through src and builds the entry. A
// failing source produces no entry.
func NewMealEntry(ctx context.Context, meal mealdb.Meal, src MealNutritionSource) (model.LogEntry, error) {
	n, err := src.MealNutrition(ctx, meal)
	if err != nil {
		return model.LogEntry{}, err
	}
	return MealEntry(meal, n), nil
}

// MealEntry builds an unsaved meal entry. Id and timestamp are left for the
// store to assign.
func MealEntry(meal mealdb.Meal, n model.Nutrition) model.LogEntry {
	name := strings.TrimSpace(meal.Name)
	if name == "" {
		name = model.PlaceholderMealName
	}
	return model.LogEntry{
		Kind:      model.KindMeal,
		Name:      name,
		ImageURL:  strings.TrimSpace(meal.ThumbnailURL),
		Nutrition: n,
	}
}

// ProductEntry builds an unsaved product entry from per-100g values.
func ProductEntry(p openfoodfacts.Product) model.LogEntry {
	return model.LogEntry{
		Kind:     model.KindProduct,
		Name:     firstNonEmpty(p.Name, model.PlaceholderProductName),
		ImageURL: firstNonEmpty(p.ImageURL, model.PlaceholderImageURL),
		Brand:    firstNonEmpty(p.Brand, model.PlaceholderBrand),
		Quantity: firstNonEmpty(p.Quantity, p.ServingSize, model.DefaultQuantity),
		Nutrition: model.Nutrition{
			Calories: p.Nutriments.Calories,
			Protein:  p.Nutriments.Protein,
			Carbs:    p.Nutriments.Carbs,
			Fat:      p.Nutriments.Fat,
			Fiber:    p.Nutriments.Fiber,
			Sugar:    p.Nutriments.Sugar,
		},
	}
}
