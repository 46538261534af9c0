// Package config loads service configuration from defaults, TOML files, a
// .env file and environment variables, in that order of increasing
// precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/atmx/listing-metrics/internal/format"
	"github.com/atmx/listing-metrics/internal/normalize"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("config: invalid")

type Config struct {
	Environment string         `toml:"environment"`
	Server      ServerConfig   `toml:"server"`
	Storage     StorageConfig  `toml:"storage"`
	Listings    ListingsConfig `toml:"listings"`
	Logging     LoggingConfig  `toml:"logging"`
}

type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns the listen address.
func (c ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// StorageConfig selects the store. An empty DatabaseURL means in-memory;
// RedisURL only takes effect together with a database.
type StorageConfig struct {
	DatabaseURL string `toml:"database_url"`
	RedisURL    string `toml:"redis_url"`
	CacheTTL    string `toml:"cache_ttl"`
}

func (c *StorageConfig) GetCacheTTL() time.Duration {
	d, err := time.ParseDuration(c.CacheTTL)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

type ListingsConfig struct {
	Currency    string `toml:"currency"`     // ISO 4217 display currency
	InputPolicy string `toml:"input_policy"` // "lenient" or "strict"
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "text"
}

func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "",
			Port: 8080,
		},
		Storage: StorageConfig{
			CacheTTL: "30s",
		},
		Listings: ListingsConfig{
			Currency:    format.DefaultCurrency,
			InputPolicy: string(normalize.Lenient),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds a Config. A .env file in the working directory is loaded
// into the process environment first if present. Then defaults are
// overlaid with each existing TOML file in paths, followed by the file
// named by LISTINGS_CONFIG, and finally by environment variables.
func Load(paths ...string) (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	if p := os.Getenv("LISTINGS_CONFIG"); p != "" {
		paths = append(paths, p)
	}

	config := NewDefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

func applyEnvOverrides(config *Config) {
	if env := os.Getenv("LISTINGS_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("LISTINGS_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		config.Storage.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		config.Storage.RedisURL = v
	}
	if v := os.Getenv("LISTINGS_CACHE_TTL"); v != "" {
		config.Storage.CacheTTL = v
	}

	if v := os.Getenv("LISTINGS_CURRENCY"); v != "" {
		config.Listings.Currency = strings.ToUpper(v)
	}
	if v := os.Getenv("LISTINGS_INPUT_POLICY"); v != "" {
		config.Listings.InputPolicy = v
	}

	if level := os.Getenv("LISTINGS_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if f := os.Getenv("LISTINGS_LOG_FORMAT"); f != "" {
		config.Logging.Format = f
	}
}

// Validate reports settings the service cannot start with.
func (c *Config) Validate() error {
	var errs []error

	if _, err := normalize.ParsePolicy(c.Listings.InputPolicy); err != nil {
		errs = append(errs, err)
	}
	if _, err := format.New(c.Listings.Currency); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Logging.Format))
	}
	if _, err := parseLevel(c.Logging.Level); err != nil {
		errs = append(errs, err)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Server.Port))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
