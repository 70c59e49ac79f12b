package model

import "time"

type Kind string

const (
	KindMeal    Kind = "meal"
	KindProduct Kind = "product"
)

func (k Kind) Valid() bool {
	return k == KindMeal || k == KindProduct
}

const (
	PlaceholderMealName    = "Unknown Meal"
	PlaceholderProductName = "Unknown Product"
	PlaceholderBrand       = "Unknown Brand"
	PlaceholderImageURL    = "https://via.placeholder.com/300x200?text=No+Image"
	DefaultQuantity        = "100g"
)

// Nutrition is a fixed six field record. Calories are kcal, the rest grams.
type Nutrition struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Fiber    float64 `json:"fiber"`
	Sugar    float64 `json:"sugar"`
}

func (n Nutrition) Add(other Nutrition) Nutrition {
	return Nutrition{
		Calories: n.Calories + other.Calories,
		Protein:  n.Protein + other.Protein,
		Carbs:    n.Carbs + other.Carbs,
		Fat:      n.Fat + other.Fat,
		Fiber:    n.Fiber + other.Fiber,
		Sugar:    n.Sugar + other.Sugar,
	}
}

// LogEntry is one journaled consumption event. The JSON layout is the
// persisted format of the food log.
type LogEntry struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"type"`
	Name      string    `json:"name"`
	ImageURL  string    `json:"image,omitempty"`
	Brand     string    `json:"brand,omitempty"`
	Quantity  string    `json:"quantity,omitempty"`
	Nutrition Nutrition `json:"nutrition"`
	Timestamp time.Time `json:"date"`
}
