package openfoodfacts

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

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL   = "https://world.openfoodfacts.org"
	defaultUserAgent = "nutriplan/1.0 (+https://github.com/saadjs/nutriplan)"
	DefaultPageSize  = 20
)

var ErrNotFound = errors.New("openfoodfacts: product not found")

// Nutriments are per-100g values. Missing values are 0.
type Nutriments struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Fiber    float64 `json:"fiber"`
	Sugar    float64 `json:"sugar"`
}

type Product struct {
	Code           string     `json:"code"`
	Name           string     `json:"name"`
	Brand          string     `json:"brand"`
	ImageURL       string     `json:"image_url"`
	Quantity       string     `json:"quantity"`
	ServingSize    string     `json:"serving_size"`
	Nutriments     Nutriments `json:"nutriments"`
	NutritionGrade string     `json:"nutrition_grade"`
	NovaGroup      int        `json:"nova_group"`
}

// Client talks to the public OpenFoodFacts API. The zero value works
// against the production endpoint without rate limiting; NewClient adds the
// limits the API asks clients to respect.
type Client struct {
	BaseURL      string
	HTTPClient   *http.Client
	UserAgent    string
	SearchLimit  *rate.Limiter
	ProductLimit *rate.Limiter
}

// NewClient returns a client limited to 10 searches and 100 product reads
// per minute.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 12 * time.Second
	}
	return &Client{
		BaseURL:      baseURL,
		HTTPClient:   &http.Client{Timeout: timeout},
		SearchLimit:  rate.NewLimiter(rate.Every(6*time.Second), 2),
		ProductLimit: rate.NewLimiter(rate.Every(600*time.Millisecond), 5),
	}
}

func (c *Client) LookupBarcode(ctx context.Context, barcode string) (Product, []byte, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return Product{}, nil, fmt.Errorf("barcode is required")
	}
	if err := wait(ctx, c.ProductLimit); err != nil {
		return Product{}, nil, err
	}
	u := fmt.Sprintf("%s/api/v0/product/%s.json", c.base(), url.PathEscape(barcode))
	body, err := c.get(ctx, u, "lookup")
	if err != nil {
		return Product{}, body, err
	}

	var parsed offResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Product{}, body, fmt.Errorf("decode openfoodfacts response: %w", err)
	}
	if parsed.Status != 1 || parsed.Product == nil {
		return Product{}, body, fmt.Errorf("barcode %q: %w", barcode, ErrNotFound)
	}
	p := parsed.Product.toProduct()
	if p.Code == "" {
		p.Code = barcode
	}
	return p, body, nil
}

// Search runs a free-text product search. No match is an empty slice, not
// an error.
func (c *Client) Search(ctx context.Context, query string, pageSize int) ([]Product, []byte, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil, fmt.Errorf("search query is required")
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if err := wait(ctx, c.SearchLimit); err != nil {
		return nil, nil, err
	}
	u := fmt.Sprintf("%s/cgi/search.pl?search_terms=%s&search_simple=1&action=process&json=1&page_size=%d",
		c.base(),
		url.QueryEscape(query),
		pageSize,
	)
	body, err := c.get(ctx, u, "search")
	if err != nil {
		return nil, body, err
	}
	var parsed offSearchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, body, fmt.Errorf("decode openfoodfacts search response: %w", err)
	}
	out := make([]Product, 0, len(parsed.Products))
	for _, p := range parsed.Products {
		out = append(out, p.toProduct())
	}
	return out, body, nil
}

func (c *Client) base() string {
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		base = defaultBaseURL
	}
	return base
}

func (c *Client) get(ctx context.Context, u, action string) ([]byte, error) {
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 12 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create openfoodfacts %s request: %w", action, err)
	}
	ua := c.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	req.Header.Set("User-Agent", ua)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute openfoodfacts %s request: %w", action, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read openfoodfacts %s response: %w", action, err)
	}
	if resp.StatusCode == http.StatusNotFound && action == "lookup" {
		return body, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return body, fmt.Errorf("openfoodfacts %s request failed with status %d", action, resp.StatusCode)
	}
	return body, nil
}

func wait(ctx context.Context, l *rate.Limiter) error {
	if l == nil {
		return nil
	}
	if err := l.Wait(ctx); err != nil {
		return fmt.Errorf("openfoodfacts rate limit: %w", err)
	}
	return nil
}

func nutrientValue(n map[string]any, base string) float64 {
	if v, ok := parseFloatAny(n[base+"_100g"]); ok && v >= 0 {
		return v
	}
	return 0
}

func parseFloatAny(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func (p offProduct) toProduct() Product {
	nova := 0
	if v, ok := parseFloatAny(p.NovaGroup); ok {
		nova = int(v)
	}
	return Product{
		Code:        strings.TrimSpace(p.Code),
		Name:        strings.TrimSpace(p.ProductName),
		Brand:       strings.TrimSpace(p.Brands),
		ImageURL:    strings.TrimSpace(p.ImageFrontURL),
		Quantity:    strings.TrimSpace(p.Quantity),
		ServingSize: strings.TrimSpace(p.ServingSize),
		Nutriments: Nutriments{
			Calories: nutrientValue(p.Nutriments, "energy-kcal"),
			Protein:  nutrientValue(p.Nutriments, "proteins"),
			Carbs:    nutrientValue(p.Nutriments, "carbohydrates"),
			Fat:      nutrientValue(p.Nutriments, "fat"),
			Fiber:    nutrientValue(p.Nutriments, "fiber"),
			Sugar:    nutrientValue(p.Nutriments, "sugars"),
		},
		NutritionGrade: strings.ToLower(strings.TrimSpace(p.NutritionGrades)),
		NovaGroup:      nova,
	}
}

type offResponse struct {
	Status  int         `json:"status"`
	Product *offProduct `json:"product"`
}

type offProduct struct {
	Code            string         `json:"code"`
	ProductName     string         `json:"product_name"`
	Brands          string         `json:"brands"`
	ImageFrontURL   string         `json:"image_front_url"`
	Quantity        string         `json:"quantity"`
	ServingSize     string         `json:"serving_size"`
	NutritionGrades string         `json:"nutrition_grades"`
	NovaGroup       any            `json:"nova_group"`
	Nutriments      map[string]any `json:"nutriments"`
}

type offSearchResponse struct {
	Count    int          `json:"count"`
	Products []offProduct `json:"products"`
}
