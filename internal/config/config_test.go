package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestConfig_Defaults(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "BRL", cfg.Listings.Currency)
	assert.Equal(t, "lenient", cfg.Listings.InputPolicy)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 30*time.Second, cfg.Storage.GetCacheTTL())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_TOMLOverridesDefaults(t *testing.T) {
	path := writeFile(t, "listings.toml", `
environment = "production"

[server]
port = 9000

[listings]
currency = "USD"
input_policy = "strict"

[logging]
level = "debug"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "USD", cfg.Listings.Currency)
	assert.Equal(t, "strict", cfg.Listings.InputPolicy)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format, "unset keys keep defaults")
	assert.True(t, cfg.IsProduction())
}

func TestLoad_MissingFileSkipped(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoad_MalformedFile(t *testing.T) {
	path := writeFile(t, "bad.toml", "[server\nport = ")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	path := writeFile(t, "listings.toml", `
[server]
port = 9000

[listings]
currency = "USD"
`)
	t.Setenv("PORT", "9191")
	t.Setenv("LISTINGS_CURRENCY", "eur")
	t.Setenv("LISTINGS_CACHE_TTL", "2m")
	t.Setenv("DATABASE_URL", "postgres://localhost/listings")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, "EUR", cfg.Listings.Currency)
	assert.Equal(t, 2*time.Minute, cfg.Storage.GetCacheTTL())
	assert.Equal(t, "postgres://localhost/listings", cfg.Storage.DatabaseURL)
}

func TestLoad_ConfigPathFromEnv(t *testing.T) {
	path := writeFile(t, "custom.toml", `
[logging]
format = "text"
`)
	t.Setenv("LISTINGS_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestConfig_PortEnvIgnoresGarbage(t *testing.T) {
	t.Setenv("PORT", "not-a-port")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		bad    string
	}{
		{"unknown policy", func(c *Config) { c.Listings.InputPolicy = "fuzzy" }, "fuzzy"},
		{"unknown format", func(c *Config) { c.Logging.Format = "xml" }, "xml"},
		{"unknown level", func(c *Config) { c.Logging.Level = "loud" }, "loud"},
		{"unknown currency", func(c *Config) { c.Listings.Currency = "XYZ" }, "XYZ"},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }, "70000"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tc.bad)
		})
	}
}

func TestGetCacheTTL_Fallback(t *testing.T) {
	s := StorageConfig{CacheTTL: "soon"}
	assert.Equal(t, 30*time.Second, s.GetCacheTTL())
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LoggingConfig{Level: "warn", Format: "json"})

	logger.Info("hidden")
	logger.Warn("shown", "listing_id", "l-1")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"listing_id":"l-1"`)

	buf.Reset()
	text := NewLogger(&buf, LoggingConfig{Level: "debug", Format: "text"})
	text.Debug("details")
	assert.True(t, strings.Contains(buf.String(), "msg=details"), buf.String())
}
