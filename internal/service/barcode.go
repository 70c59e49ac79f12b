package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/saadjs/nutriplan/internal/provider/openfoodfacts"
)

const DefaultProductCacheTTL = 30 * 24 * time.Hour

var barcodePattern = regexp.MustCompile(`^\d{8,14}$`)

// ProductClient looks a product up by barcode.
type ProductClient interface {
	LookupBarcode(ctx context.Context, barcode string) (openfoodfacts.Product, []byte, error)
}

type ProductLookupOptions struct {
	TTL time.Duration
	// Refresh skips the cached row and always asks the provider.
	Refresh bool
	Now     func() time.Time
	Logger  *zap.Logger
}

type ProductLookupResult struct {
	Product   openfoodfacts.Product `json:"product"`
	FromCache bool                  `json:"from_cache"`
}

type ProductCacheItem struct {
	Barcode   string    `json:"barcode"`
	Name      string    `json:"name"`
	Brand     string    `json:"brand"`
	FetchedAt time.Time `json:"fetched_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type ProductCachePurge struct {
	All     bool
	Expired bool
	Barcode string
}

// LookupProduct resolves a barcode through the product_cache table and falls
// back to client. A nil db disables caching. Cache read and write failures
// are logged and never fail the lookup.
func LookupProduct(ctx context.Context, db *sql.DB, client ProductClient, barcode string, opts ProductLookupOptions) (ProductLookupResult, error) {
	barcode = strings.TrimSpace(barcode)
	if !isValidBarcode(barcode) {
		return ProductLookupResult{}, fmt.Errorf("invalid barcode %q (expected 8-14 digits)", barcode)
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultProductCacheTTL
	}

	if db != nil && !opts.Refresh {
		cached, found, err := lookupProductCache(db, barcode, now())
		if err != nil {
			logger.Warn("product cache read failed", zap.String("barcode", barcode), zap.Error(err))
		} else if found {
			logger.Debug("product cache hit", zap.String("barcode", barcode))
			return ProductLookupResult{Product: cached, FromCache: true}, nil
		}
	}

	product, _, err := client.LookupBarcode(ctx, barcode)
	if err != nil {
		return ProductLookupResult{}, err
	}
	if product.Code == "" {
		product.Code = barcode
	}
	if db != nil {
		if err := upsertProductCache(db, barcode, product, now(), ttl); err != nil {
			logger.Warn("product cache write failed", zap.String("barcode", barcode), zap.Error(err))
		}
	}
	return ProductLookupResult{Product: product}, nil
}

func ListProductCache(db *sql.DB, limit int) ([]ProductCacheItem, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := db.Query(`SELECT barcode, name, brand, fetched_at, expires_at FROM product_cache ORDER BY fetched_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list product cache: %w", err)
	}
	defer rows.Close()
	out := make([]ProductCacheItem, 0)
	for rows.Next() {
		var item ProductCacheItem
		var fetched, expires string
		if err := rows.Scan(&item.Barcode, &item.Name, &item.Brand, &fetched, &expires); err != nil {
			return nil, fmt.Errorf("scan product cache: %w", err)
		}
		item.FetchedAt, _ = time.Parse(time.RFC3339, fetched)
		item.ExpiresAt, _ = time.Parse(time.RFC3339, expires)
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product cache: %w", err)
	}
	return out, nil
}

func PurgeProductCache(db *sql.DB, p ProductCachePurge, now time.Time) (int64, error) {
	barcode := strings.TrimSpace(p.Barcode)
	var (
		res sql.Result
		err error
	)
	switch {
	case p.All:
		res, err = db.Exec(`DELETE FROM product_cache`)
	case p.Expired:
		res, err = db.Exec(`DELETE FROM product_cache WHERE expires_at <= ?`, formatCacheTime(now))
	case barcode != "":
		res, err = db.Exec(`DELETE FROM product_cache WHERE barcode = ?`, barcode)
	default:
		return 0, fmt.Errorf("specify --all, --expired, or --barcode")
	}
	if err != nil {
		return 0, fmt.Errorf("purge product cache: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge product cache rows affected: %w", err)
	}
	return affected, nil
}

func isValidBarcode(code string) bool {
	return barcodePattern.MatchString(code)
}

func lookupProductCache(db *sql.DB, barcode string, now time.Time) (openfoodfacts.Product, bool, error) {
	var productJSON, expiresRaw string
	err := db.QueryRow(`SELECT product_json, expires_at FROM product_cache WHERE barcode = ?`, barcode).Scan(&productJSON, &expiresRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return openfoodfacts.Product{}, false, nil
	}
	if err != nil {
		return openfoodfacts.Product{}, false, fmt.Errorf("lookup product cache: %w", err)
	}
	expiresAt, err := time.Parse(time.RFC3339, expiresRaw)
	if err != nil {
		return openfoodfacts.Product{}, false, fmt.Errorf("parse product cache expiry: %w", err)
	}
	if !now.Before(expiresAt) {
		return openfoodfacts.Product{}, false, nil
	}
	var p openfoodfacts.Product
	if err := json.Unmarshal([]byte(productJSON), &p); err != nil {
		return openfoodfacts.Product{}, false, fmt.Errorf("decode cached product: %w", err)
	}
	return p, true, nil
}

func upsertProductCache(db *sql.DB, barcode string, p openfoodfacts.Product, now time.Time, ttl time.Duration) error {
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode cached product: %w", err)
	}
	_, err = db.Exec(`
INSERT INTO product_cache(barcode, name, brand, product_json, fetched_at, expires_at)
VALUES(?, ?, ?, ?, ?, ?)
ON CONFLICT(barcode) DO UPDATE SET
  name=excluded.name,
  brand=excluded.brand,
  product_json=excluded.product_json,
  fetched_at=excluded.fetched_at,
  expires_at=excluded.expires_at
`, barcode, p.Name, p.Brand, string(b), formatCacheTime(now), formatCacheTime(now.Add(ttl)))
	if err != nil {
		return fmt.Errorf("upsert product cache: %w", err)
	}
	return nil
}

func formatCacheTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
