package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/saadjs/nutriplan/internal/provider/mealdb"
	"github.com/saadjs/nutriplan/internal/provider/openfoodfacts"
)

type MealFilter struct {
	Category string
	Name     string
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// FilterMeals keeps meals whose category equals f.Category and whose name
// contains f.Name, both case-insensitively. Empty fields match everything.
func FilterMeals(meals []mealdb.Meal, f MealFilter) []mealdb.Meal {
	category := normalizeName(f.Category)
	name := normalizeName(f.Name)
	out := make([]mealdb.Meal, 0, len(meals))
	for _, m := range meals {
		if category != "" && normalizeName(m.Category) != category {
			continue
		}
		if name != "" && !strings.Contains(normalizeName(m.Name), name) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// MealCategories counts meals per category, most common first.
func MealCategories(meals []mealdb.Meal) []CategoryCount {
	counts := map[string]int{}
	for _, m := range meals {
		c := strings.TrimSpace(m.Category)
		if c == "" {
			continue
		}
		counts[c]++
	}
	out := make([]CategoryCount, 0, len(counts))
	for c, n := range counts {
		out = append(out, CategoryCount{Category: c, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// ParseGrade validates a Nutri-Score grade flag. Empty means no filter.
func ParseGrade(grade string) (string, error) {
	g := normalizeName(grade)
	switch g {
	case "", "a", "b", "c", "d", "e":
		return g, nil
	default:
		return "", fmt.Errorf("invalid nutri-score grade %q (expected a-e)", grade)
	}
}

// FilterProductsByGrade keeps products with the given Nutri-Score grade.
func FilterProductsByGrade(products []openfoodfacts.Product, grade string) []openfoodfacts.Product {
	g := normalizeName(grade)
	if g == "" {
		return products
	}
	out := make([]openfoodfacts.Product, 0, len(products))
	for _, p := range products {
		if normalizeName(p.NutritionGrade) == g {
			out = append(out, p)
		}
	}
	return out
}
