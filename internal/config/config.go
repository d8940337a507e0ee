// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// ErrLookupNotConfigured is returned by Validate when no upstream API key
// is present. The server still starts, but every lookup fails fast and the
// readiness probe reports the degraded state.
var ErrLookupNotConfigured = errors.New("GO_UPC_API_KEY is not set")

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Upstream product database (Go-UPC)
	GoUPCAPIKey   string        `env:"GO_UPC_API_KEY"`
	GoUPCBaseURL  string        `env:"GO_UPC_BASE_URL" envDefault:"https://go-upc.com/api/v1"`
	LookupTimeout time.Duration `env:"LOOKUP_TIMEOUT" envDefault:"10s"`

	// Artifact export
	ExportEnabled bool   `env:"EXPORT_ENABLED" envDefault:"true"`
	ImagesDir     string `env:"IMAGES_DIR" envDefault:"./images"`

	// User store. Empty means the in-memory store seeded with the
	// superadmin account; postgres:// selects PostgreSQL; anything else
	// is treated as a SQLite file path.
	DatabaseURL string `env:"DATABASE_URL" envDefault:""`

	// Session store. Empty means in-memory sessions.
	RedisURL   string        `env:"REDIS_URL" envDefault:""`
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	// Authentication
	AuthEnabled         bool   `env:"AUTH_ENABLED" envDefault:"true"`
	RegistrationEnabled bool   `env:"REGISTRATION_ENABLED" envDefault:"true"`
	SuperadminEmail     string `env:"SUPERADMIN_EMAIL" envDefault:"admin@skufinder.local"`
	SuperadminPassword  string `env:"SUPERADMIN_PASSWORD" envDefault:""`

	// Login rate limiting (fixed window, per IP)
	LoginRateLimit  int           `env:"LOGIN_RATE_LIMIT" envDefault:"10"`
	LoginRateWindow time.Duration `env:"LOGIN_RATE_WINDOW" envDefault:"1m"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// CORS configuration
	// Comma-separated list of allowed origins (e.g., "https://example.com,https://app.example.com")
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:""`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// LookupConfigured reports whether the upstream API credential is present.
func (c *Config) LookupConfigured() bool {
	return c.GoUPCAPIKey != ""
}

// Validate reports configuration problems that do not prevent startup but
// degrade the service.
func (c *Config) Validate() error {
	if !c.LookupConfigured() {
		return ErrLookupNotConfigured
	}
	return nil
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// Load parses environment variables and returns a Config.
// Returns an error if a variable cannot be parsed into its field type.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}
