package mealdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	defaultBaseURL = "https://www.themealdb.com/api/json/v1/1"
	// MaxMeals caps how many recipes a listing returns.
	MaxMeals       = 25
	maxIngredients = 20
	lookupWorkers  = 4
)

var ErrNotFound = errors.New("mealdb: meal not found")

type Ingredient struct {
	Name    string `json:"name"`
	Measure string `json:"measure"`
}

type Meal struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	ThumbnailURL string       `json:"thumbnail_url"`
	Category     string       `json:"category"`
	Area         string       `json:"area"`
	Instructions string       `json:"instructions"`
	Ingredients  []Ingredient `json:"ingredients"`
	YouTubeURL   string       `json:"youtube_url,omitempty"`
}

// YouTubeID extracts the video id from YouTubeURL, or "".
func (m Meal) YouTubeID() string {
	u, err := url.Parse(strings.TrimSpace(m.YouTubeURL))
	if err != nil || u.Host == "" {
		return ""
	}
	if v := u.Query().Get("v"); v != "" {
		return v
	}
	if strings.HasSuffix(u.Host, "youtu.be") {
		return strings.Trim(u.Path, "/")
	}
	return ""
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 12 * time.Second
	}
	return &Client{BaseURL: baseURL, HTTPClient: &http.Client{Timeout: timeout}}
}

// ListMeals returns at most MaxMeals recipes from an empty-name search.
func (c *Client) ListMeals(ctx context.Context) ([]Meal, error) {
	meals, err := c.fetch(ctx, c.base()+"/search.php?s=", "search")
	if err != nil {
		return nil, err
	}
	if len(meals) > MaxMeals {
		meals = meals[:MaxMeals]
	}
	return meals, nil
}

func (c *Client) LookupMeal(ctx context.Context, id string) (Meal, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Meal{}, fmt.Errorf("meal id is required")
	}
	meals, err := c.fetch(ctx, c.base()+"/lookup.php?i="+url.QueryEscape(id), "lookup")
	if err != nil {
		return Meal{}, err
	}
	if len(meals) == 0 {
		return Meal{}, fmt.Errorf("meal %q: %w", id, ErrNotFound)
	}
	return meals[0], nil
}

// LookupMeals fetches several meals concurrently and returns them in the
// order of ids. The first failure cancels the rest.
func (c *Client) LookupMeals(ctx context.Context, ids []string) ([]Meal, error) {
	out := make([]Meal, len(ids))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(lookupWorkers)
	for i, id := range ids {
		g.Go(func() error {
			m, err := c.LookupMeal(ctx, id)
			if err != nil {
				return err
			}
			out[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) base() string {
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		base = defaultBaseURL
	}
	return base
}

func (c *Client) fetch(ctx context.Context, u, action string) ([]Meal, error) {
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 12 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create mealdb %s request: %w", action, err)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute mealdb %s request: %w", action, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read mealdb %s response: %w", action, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("mealdb %s request failed with status %d", action, resp.StatusCode)
	}

	var parsed mealsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode mealdb %s response: %w", action, err)
	}
	out := make([]Meal, 0, len(parsed.Meals))
	for _, raw := range parsed.Meals {
		out = append(out, raw.toMeal())
	}
	return out, nil
}

// rawMeal is one element of the "meals" array. TheMealDB flattens the
// ingredient list into strIngredient1..20 / strMeasure1..20, any of which
// may be null or blank.
type rawMeal map[string]any

type mealsResponse struct {
	Meals []rawMeal `json:"meals"`
}

func (r rawMeal) str(key string) string {
	s, _ := r[key].(string)
	return strings.TrimSpace(s)
}

func (r rawMeal) toMeal() Meal {
	m := Meal{
		ID:           r.str("idMeal"),
		Name:         r.str("strMeal"),
		ThumbnailURL: r.str("strMealThumb"),
		Category:     r.str("strCategory"),
		Area:         r.str("strArea"),
		Instructions: r.str("strInstructions"),
		YouTubeURL:   r.str("strYoutube"),
	}
	for i := 1; i <= maxIngredients; i++ {
		name := r.str("strIngredient" + strconv.Itoa(i))
		if name == "" {
			continue
		}
		m.Ingredients = append(m.Ingredients, Ingredient{
			Name:    name,
			Measure: r.str("strMeasure" + strconv.Itoa(i)),
		})
	}
	return m
}
