// Package config loads nutriplan's YAML settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/saadjs/nutriplan/internal/app"
)

// EnvPath overrides the config file location.
const EnvPath = "NUTRIPLAN_CONFIG"

const (
	StorageSQLite = "sqlite"
	StorageFile   = "file"
)

type Config struct {
	Storage              string        `yaml:"storage" validate:"oneof=sqlite file"`
	DBPath               string        `yaml:"db_path" validate:"required_if=Storage sqlite"`
	DataDir              string        `yaml:"data_dir" validate:"required_if=Storage file"`
	LogLevel             string        `yaml:"log_level" validate:"oneof=debug info warn error"`
	HTTPTimeout          time.Duration `yaml:"http_timeout" validate:"gt=0"`
	MealDBBaseURL        string        `yaml:"mealdb_base_url" validate:"omitempty,url"`
	OpenFoodFactsBaseURL string        `yaml:"openfoodfacts_base_url" validate:"omitempty,url"`
	ProductPageSize      int           `yaml:"product_page_size" validate:"min=1,max=100"`
	BarcodeCacheTTL      time.Duration `yaml:"barcode_cache_ttl" validate:"gte=0"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func Default() (Config, error) {
	dbPath, err := app.DefaultDBPath()
	if err != nil {
		return Config{}, err
	}
	dataDir, err := app.DefaultDataDir()
	if err != nil {
		return Config{}, err
	}
	return Config{
		Storage:              StorageSQLite,
		DBPath:               dbPath,
		DataDir:              dataDir,
		LogLevel:             "warn",
		HTTPTimeout:          12 * time.Second,
		MealDBBaseURL:        "https://www.themealdb.com/api/json/v1/1",
		OpenFoodFactsBaseURL: "https://world.openfoodfacts.org",
		ProductPageSize:      20,
		BarcodeCacheTTL:      30 * 24 * time.Hour,
	}, nil
}

// ResolvePath picks the config file: an explicit flag, then $NUTRIPLAN_CONFIG,
// then the per-user default.
func ResolvePath(flagValue string) (string, error) {
	if p := strings.TrimSpace(flagValue); p != "" {
		return p, nil
	}
	if p := strings.TrimSpace(os.Getenv(EnvPath)); p != "" {
		return p, nil
	}
	return app.DefaultConfigPath()
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg, err := Default()
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.Storage = strings.ToLower(strings.TrimSpace(c.Storage))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.DBPath = strings.TrimSpace(c.DBPath)
	c.DataDir = strings.TrimSpace(c.DataDir)
}

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Save writes c as YAML, creating the parent directory.
func Save(path string, c Config) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}
