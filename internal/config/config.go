// Package config provides centralized configuration management for the
// application. Settings load from environment variables with sensible
// defaults and are validated on startup so misconfiguration fails fast.
// Core logic never reads these values directly; main resolves them and
// passes explicit structs down.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	Databricks DatabricksConfig
	Upload     UploadConfig
	Rate       RateLimitConfig
	Security   SecurityConfig
	Logging    LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8050)
	Port int `env:"SERVER_PORT" envAlt:"PORT" default:"8050"`

	// ReadTimeout is the maximum duration for reading the request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing the response (default: 5m,
	// long enough for a warehouse statement to finish)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"5m"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 5m)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"5m"`
}

// DatabricksConfig holds workspace connection settings.
//
// Host may be left empty to run the editor without a workspace; upload and
// execute requests then fail with a configuration error. When Host is set,
// either Token or the ClientID/ClientSecret pair must be set too.
type DatabricksConfig struct {
	// Host is the workspace URL, e.g. https://adb-123.azuredatabricks.net
	Host string `env:"DATABRICKS_HOST"`

	// Token is a personal access token
	Token string `env:"DATABRICKS_TOKEN" envAlt:"DATABRICKS_ACCESS_TOKEN"`

	// ClientID/ClientSecret select OAuth machine-to-machine auth
	ClientID     string `env:"DATABRICKS_CLIENT_ID"`
	ClientSecret string `env:"DATABRICKS_CLIENT_SECRET"`

	// WarehouseHTTPPath is the SQL warehouse HTTP path,
	// e.g. /sql/1.0/warehouses/abc123
	WarehouseHTTPPath string `env:"DATABRICKS_WAREHOUSE_HTTP_PATH" envAlt:"DATABRICKS_HTTP_PATH"`

	// Catalog is the default target catalog (default: main)
	Catalog string `env:"DATABRICKS_CATALOG" default:"main"`

	// Schema is the default target schema (default: default)
	Schema string `env:"DATABRICKS_SCHEMA" default:"default"`

	// Volume is the default volume for uploads (default: csv_uploads)
	Volume string `env:"DATABRICKS_VOLUME" default:"csv_uploads"`

	// Timeout bounds each workspace HTTP round trip (default: 60s)
	Timeout time.Duration `env:"DATABRICKS_TIMEOUT" default:"60s"`

	// MaxConcurrent caps in-flight workspace calls (default: 5)
	MaxConcurrent int `env:"DATABRICKS_MAX_CONCURRENT" default:"5"`
}

// UploadConfig holds CSV upload and edit-session settings.
type UploadConfig struct {
	// MaxFileSize is the maximum accepted upload in bytes (default: 10MB)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"10485760"`

	// HistoryLimit is the undo stack capacity per session (default: 10)
	HistoryLimit int `env:"EDIT_HISTORY_LIMIT" default:"10"`

	// SampleRows bounds how many rows schema inference examines (default: 200)
	SampleRows int `env:"INFER_SAMPLE_ROWS" default:"200"`

	// SessionTTL is how long an idle session survives (default: 2h)
	SessionTTL time.Duration `env:"SESSION_TTL" default:"2h"`

	// SweepInterval is how often expired sessions are evicted (default: 10m)
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" default:"10m"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// RequireAPIKey enables X-API-Key validation on API routes (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is the comma-separated list of accepted keys
	APIKeys []string `env:"API_KEYS"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`

	// Debug forces debug-level logging regardless of Level (default: false)
	Debug bool `env:"DEBUG" default:"false"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// EffectiveLevel resolves the effective log level, honoring the debug flag.
func (c *LoggingConfig) EffectiveLevel() string {
	if c.Debug {
		return "debug"
	}
	return c.Level
}

// Validate checks that the configuration is consistent.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}

	if c.Databricks.Host != "" {
		if c.Databricks.Token == "" && (c.Databricks.ClientID == "" || c.Databricks.ClientSecret == "") {
			errs = append(errs, "DATABRICKS_HOST is set but no credentials were provided; set DATABRICKS_TOKEN or DATABRICKS_CLIENT_ID and DATABRICKS_CLIENT_SECRET")
		}
		if !strings.HasPrefix(c.Databricks.Host, "https://") && !strings.HasPrefix(c.Databricks.Host, "http://") {
			errs = append(errs, "DATABRICKS_HOST must be a URL including the scheme")
		}
	}
	if c.Databricks.MaxConcurrent <= 0 {
		errs = append(errs, "DATABRICKS_MAX_CONCURRENT must be positive")
	}

	if c.Upload.MaxFileSize <= 0 {
		errs = append(errs, "UPLOAD_MAX_FILE_SIZE must be positive")
	}
	if c.Upload.HistoryLimit <= 0 {
		errs = append(errs, "EDIT_HISTORY_LIMIT must be positive")
	}
	if c.Upload.SampleRows <= 0 {
		errs = append(errs, "INFER_SAMPLE_ROWS must be positive")
	}
	if c.Upload.SessionTTL <= 0 {
		errs = append(errs, "SESSION_TTL must be positive")
	}

	if c.Rate.Enabled && c.Rate.RequestsPerMinute <= 0 {
		errs = append(errs, "RATE_LIMIT_REQUESTS_PER_MINUTE must be positive when rate limiting is enabled")
	}

	if c.Security.RequireAPIKey && len(c.Security.APIKeys) == 0 {
		errs = append(errs, "REQUIRE_API_KEY is true but API_KEYS is empty; configure at least one API key or disable auth")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// String returns a safe string representation of the config for logging.
// Credentials are masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Server: {Host: %q, Port: %d}, ", c.Server.Host, c.Server.Port))
	b.WriteString(fmt.Sprintf("Databricks: {Host: %q, Token: [MASKED], Catalog: %q, Schema: %q, Volume: %q}, ",
		c.Databricks.Host, c.Databricks.Catalog, c.Databricks.Schema, c.Databricks.Volume))
	b.WriteString(fmt.Sprintf("Upload: {MaxFileSize: %d, HistoryLimit: %d, SampleRows: %d}, ",
		c.Upload.MaxFileSize, c.Upload.HistoryLimit, c.Upload.SampleRows))
	b.WriteString(fmt.Sprintf("Rate: {Enabled: %v, RequestsPerMinute: %d}, ",
		c.Rate.Enabled, c.Rate.RequestsPerMinute))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q, Debug: %v}",
		c.Logging.Level, c.Logging.Format, c.Logging.Debug))
	b.WriteString("}")
	return b.String()
}
