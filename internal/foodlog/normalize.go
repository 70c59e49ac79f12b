package foodlog

import (
	"strings"

	"github.com/saadjs/nutriplan/internal/model"
)

// Normalize applies the construction defaults to the descriptive fields of
// e: an empty kind becomes a meal, an empty name becomes the placeholder for
// its kind, and brand and quantity are kept for products only.
func Normalize(e model.LogEntry) model.LogEntry {
	e.ID = strings.TrimSpace(e.ID)
	e.Name = strings.TrimSpace(e.Name)
	e.ImageURL = strings.TrimSpace(e.ImageURL)
	if e.Kind == "" {
		e.Kind = model.KindMeal
	}
	switch e.Kind {
	case model.KindProduct:
		if e.Name == "" {
			e.Name = model.PlaceholderProductName
		}
		e.Brand = strings.TrimSpace(e.Brand)
		if e.Brand == "" {
			e.Brand = model.PlaceholderBrand
		}
		e.Quantity = strings.TrimSpace(e.Quantity)
		if e.Quantity == "" {
			e.Quantity = model.DefaultQuantity
		}
	default:
		if e.Name == "" {
			e.Name = model.PlaceholderMealName
		}
		e.Brand = ""
		e.Quantity = ""
	}
	return e
}
