package service_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/saadjs/nutriplan/internal/model"
	"github.com/saadjs/nutriplan/internal/provider/mealdb"
	"github.com/saadjs/nutriplan/internal/provider/openfoodfacts"
	"github.com/saadjs/nutriplan/internal/service"
)

func TestProductEntryAppliesPlaceholders(t *testing.T) {
	t.Parallel()

	e := service.ProductEntry(openfoodfacts.Product{ServingSize: "30 g", Nutriments: openfoodfacts.Nutriments{Calories: 120}})
	require.Equal(t, model.KindProduct, e.Kind)
	require.Equal(t, model.PlaceholderProductName, e.Name)
	require.Equal(t, model.PlaceholderBrand, e.Brand)
	require.Equal(t, model.PlaceholderImageURL, e.ImageURL)
	require.Equal(t, "30 g", e.Quantity)
	require.Equal(t, model.Nutrition{Calories: 120}, e.Nutrition)
	require.Empty(t, e.ID)
	require.True(t, e.Timestamp.IsZero())

	bare := service.ProductEntry(openfoodfacts.Product{Name: "Oat Milk", Brand: "Oatly"})
	require.Equal(t, model.DefaultQuantity, bare.Quantity)
	require.Equal(t, "Oat Milk", bare.Name)
}

func TestMealEntryUsesNutritionSource(t *testing.T) {
	t.Parallel()

	meal := mealdb.Meal{ID: "52771", Name: "Spicy Arrabiata Penne", ThumbnailURL: "https://img.example/penne.jpg"}
	src := service.FixedNutrition{Calories: 650, Protein: 18, Carbs: 90, Fat: 22}

	e, err := service.NewMealEntry(context.Background(), meal, src)
	require.NoError(t, err)
	require.Equal(t, model.KindMeal, e.Kind)
	require.Equal(t, "Spicy Arrabiata Penne", e.Name)
	require.Equal(t, "https://img.example/penne.jpg", e.ImageURL)
	require.Equal(t, model.Nutrition{Calories: 650, Protein: 18, Carbs: 90, Fat: 22}, e.Nutrition)

	unnamed := service.MealEntry(mealdb.Meal{}, model.Nutrition{})
	require.Equal(t, model.PlaceholderMealName, unnamed.Name)
}

func TestFixedNutritionRejectsInvalidValues(t *testing.T) {
	t.Parallel()

	_, err := service.NewMealEntry(context.Background(), mealdb.Meal{Name: "x"}, service.FixedNutrition{Protein: -1})
	require.ErrorContains(t, err, "protein must be >= 0")

	_, err = service.FixedNutrition{Fat: math.Inf(1)}.MealNutrition(context.Background(), mealdb.Meal{})
	require.ErrorContains(t, err, "fat must be a finite number")
}

type failingSource struct{}

func (failingSource) MealNutrition(context.Context, mealdb.Meal) (model.Nutrition, error) {
	return model.Nutrition{}, errors.New("nutrition service down")
}

func TestNewMealEntryPropagatesSourceFailure(t *testing.T) {
	t.Parallel()

	_, err := service.NewMealEntry(context.Background(), mealdb.Meal{Name: "x"}, failingSource{})
	require.ErrorContains(t, err, "nutrition service down")
}
