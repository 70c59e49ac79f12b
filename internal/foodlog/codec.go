package foodlog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/saadjs/nutriplan/internal/model"
)

// storedID accepts both string ids and the numeric millisecond ids written
// by older clients.
type storedID string

func (id *storedID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = storedID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("entry id must be a string or number: %w", err)
	}
	if i, err := n.Int64(); err == nil {
		*id = storedID(strconv.FormatInt(i, 10))
		return nil
	}
	*id = storedID(n.String())
	return nil
}

// storedFloat accepts what older clients wrote for a nutrient: a number, a
// numeric string as OpenFoodFacts returns it, or null. Anything else, and
// any non-finite value, reads as 0.
type storedFloat float64

func (f *storedFloat) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	var n float64
	switch t := v.(type) {
	case float64:
		n = t
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err == nil {
			n = parsed
		}
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		n = 0
	}
	*f = storedFloat(n)
	return nil
}

type storedNutrition struct {
	Calories storedFloat `json:"calories"`
	Protein  storedFloat `json:"protein"`
	Carbs    storedFloat `json:"carbs"`
	Fat      storedFloat `json:"fat"`
	Fiber    storedFloat `json:"fiber"`
	Sugar    storedFloat `json:"sugar"`
}

func (n storedNutrition) toNutrition() model.Nutrition {
	return model.Nutrition{
		Calories: float64(n.Calories),
		Protein:  float64(n.Protein),
		Carbs:    float64(n.Carbs),
		Fat:      float64(n.Fat),
		Fiber:    float64(n.Fiber),
		Sugar:    float64(n.Sugar),
	}
}

// storedTime reads an RFC 3339 string or epoch milliseconds. Any other value
// is the zero time, which doctor reports as a missing date.
type storedTime time.Time

func (st *storedTime) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	var t time.Time
	switch x := v.(type) {
	case string:
		if parsed, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(x)); err == nil {
			t = parsed
		}
	case float64:
		if !math.IsNaN(x) && !math.IsInf(x, 0) && x > 0 {
			t = time.UnixMilli(int64(x)).UTC()
		}
	}
	*st = storedTime(t)
	return nil
}

type storedEntry struct {
	ID        storedID        `json:"id"`
	Kind      model.Kind      `json:"type"`
	Name      string          `json:"name"`
	ImageURL  string          `json:"image"`
	Brand     string          `json:"brand"`
	Quantity  string          `json:"quantity"`
	Nutrition storedNutrition `json:"nutrition"`
	Timestamp storedTime      `json:"date"`
}

// Decode parses a persisted food log. A JSON null decodes to an empty log.
// Bad nutrient or date values are read leniently; an element that still
// cannot be read as an entry is left out and counted in skipped. Only a
// value that is not a JSON array is an error.
func Decode(b []byte) (entries []model.LogEntry, skipped int, err error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(b, &elems); err != nil {
		return nil, 0, fmt.Errorf("decode food log: %w", err)
	}
	out := make([]model.LogEntry, 0, len(elems))
	for _, raw := range elems {
		var s storedEntry
		if err := json.Unmarshal(raw, &s); err != nil || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			skipped++
			continue
		}
		out = append(out, model.LogEntry{
			ID:        string(s.ID),
			Kind:      s.Kind,
			Name:      s.Name,
			ImageURL:  s.ImageURL,
			Brand:     s.Brand,
			Quantity:  s.Quantity,
			Nutrition: s.Nutrition.toNutrition(),
			Timestamp: time.Time(s.Timestamp),
		})
	}
	return out, skipped, nil
}

// Encode serializes the whole log. An empty log encodes as [] rather than
// null.
func Encode(entries []model.LogEntry) ([]byte, error) {
	if entries == nil {
		entries = []model.LogEntry{}
	}
	b, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("encode food log: %w", err)
	}
	return b, nil
}
