package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the configuration for the journal service.
// Environment variables are parsed from the JOURNAL_ prefix,
// e.g. JOURNAL_HTTP_PORT, JOURNAL_POSTGRES_DSN.
type Config struct {
	// Build target selects the high-level environment: local, cloud
	BuildTarget string `envconfig:"BUILD_TARGET" default:"local"`

	// DBDriver selects the store backend; "auto" derives it from BuildTarget.
	DBDriver string `envconfig:"DB_DRIVER" default:"auto"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Postgres Configuration
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`

	// SQLite Configuration (local target)
	SQLitePath string `envconfig:"SQLITE_PATH" default:"journal.db"`

	// Gemini API
	GeminiAPIKey  string `envconfig:"GEMINI_API_KEY" default:""`
	GeminiModel   string `envconfig:"GEMINI_MODEL" default:"gemini-2.0-flash"`
	GeminiBaseURL string `envconfig:"GEMINI_BASE_URL" default:"https://generativelanguage.googleapis.com"`

	// Auth
	JWTSecret   string `envconfig:"JWT_SECRET" default:"dev-secret-change-in-production"`
	JWTTTLHours int    `envconfig:"JWT_TTL_HOURS" default:"720"`

	// Image storage: S3 when bucket is set, local directory otherwise.
	S3Bucket  string `envconfig:"S3_BUCKET" default:""`
	AWSRegion string `envconfig:"AWS_REGION" default:"us-east-1"`
	UploadDir string `envconfig:"UPLOAD_DIR" default:"uploads"`

	// HistoryDepth is how many recent entries feed the analyzer prompt.
	HistoryDepth int `envconfig:"HISTORY_DEPTH" default:"5"`

	// Health checking
	HealthIntervalSeconds     int `envconfig:"HEALTH_INTERVAL_SECONDS" default:"30"`
	HealthProbeTimeoutSeconds int `envconfig:"HEALTH_PROBE_TIMEOUT_SECONDS" default:"2"`
}

// ResolveDefaults validates BuildTarget and derives DBDriver when set to
// "auto" or empty.
func (c *Config) ResolveDefaults() error {
	var defaultDB string

	switch c.BuildTarget {
	case "local":
		defaultDB = "sqlite"
	case "cloud":
		defaultDB = "postgres"
	default:
		return fmt.Errorf("unsupported BUILD_TARGET: %s", c.BuildTarget)
	}

	if c.DBDriver == "" || c.DBDriver == "auto" {
		c.DBDriver = defaultDB
	}

	allowedDB := map[string]bool{"postgres": true, "sqlite": true}
	if !allowedDB[c.DBDriver] {
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}
	if c.DBDriver == "postgres" && c.PostgresDSN == "" {
		return fmt.Errorf("JOURNAL_POSTGRES_DSN is required when DB_DRIVER=postgres")
	}
	if c.HistoryDepth <= 0 {
		c.HistoryDepth = 5
	}
	return nil
}

// New creates a new Config by parsing environment variables.
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("JOURNAL", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// GetHTTPAddr returns the HTTP server address.
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
