// Package config loads service settings from environment variables. Every
// field has a default, and Validate reports all problems at once so a bad
// deployment fails on startup with a complete list.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Upload   UploadConfig
	Session  SessionConfig
	Audit    AuditConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`
	Port int    `env:"SERVER_PORT" default:"8080"`

	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
	RequestTimeout  time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// DatabaseConfig describes the optional PostgreSQL source. With no URL the
// server only accepts CSV uploads.
type DatabaseConfig struct {
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"10"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"0"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`

	// MaxRows caps rows read from a single query (0 = unlimited).
	MaxRows int `env:"DB_MAX_ROWS" default:"1000000"`
}

// Enabled reports whether a database source is configured.
func (c *DatabaseConfig) Enabled() bool { return c.URL != "" }

// UploadConfig bounds CSV loads.
type UploadConfig struct {
	MaxFileSize   int64         `env:"UPLOAD_MAX_FILE_SIZE" default:"104857600"`
	MaxConcurrent int           `env:"UPLOAD_MAX_CONCURRENT" default:"4"`
	MaxWaitTime   time.Duration `env:"UPLOAD_MAX_WAIT_TIME" default:"30s"`
}

// SessionConfig controls how long loaded tables stay in memory.
type SessionConfig struct {
	TTL             time.Duration `env:"SESSION_TTL" default:"1h"`
	JanitorInterval time.Duration `env:"SESSION_JANITOR_INTERVAL" default:"5m"`
	MaxSessions     int           `env:"SESSION_MAX" default:"50"`
}

// AuditConfig selects the default dataset and an optional YAML rules file
// overriding its audit rules.
type AuditConfig struct {
	Dataset   string `env:"AUDIT_DATASET" default:"crash_reports"`
	RulesFile string `env:"AUDIT_RULES_FILE"`
}

// SecurityConfig holds request-level protections.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of proxy CIDRs whose
	// X-Real-IP / X-Forwarded-For headers are honoured.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	RequireAPIKey bool     `env:"REQUIRE_API_KEY" default:"false"`
	APIKeys       []string `env:"API_KEYS"`

	// RateLimit is requests per RateWindow per client IP. 0 disables it.
	RateLimit  int           `env:"RATE_LIMIT" default:"100"`
	RateWindow time.Duration `env:"RATE_LIMIT_WINDOW" default:"1m"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is text or json.
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the listen address in host:port form.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
