// Package config reads the server and gridctl settings from environment
// variables. Each field names its variable in an env tag, with an optional
// envAlt fallback, a default, and required:"true" for settings without one.
package config

import (
	"strconv"
	"time"
)

// Config is the complete set of settings, one section per concern.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Table    TableConfig
	Export   ExportConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Host            string        `env:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `env:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"` // covers export downloads
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
	RequestTimeout  time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

type DatabaseConfig struct {
	// URL is the PostgreSQL connection string. DB_URL is accepted for
	// older deployments.
	URL string `env:"DATABASE_URL" envAlt:"DB_URL" required:"true"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"20"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"4"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
	QueryTimeout    time.Duration `env:"DB_QUERY_TIMEOUT" default:"10s"` // per page fetch
}

// TableConfig holds list screen settings.
type TableConfig struct {
	DefaultPerPage int `env:"TABLE_DEFAULT_PER_PAGE" default:"25"`

	// OpaqueFields are record keys never descended while flattening, for
	// pages that declare none of their own.
	OpaqueFields []string `env:"TABLE_OPAQUE_FIELDS" default:"shipments"`

	// PagesFile is an optional TOML file of page overrides, watched and
	// re-applied on change.
	PagesFile string `env:"TABLE_PAGES_FILE"`

	MountTTL time.Duration `env:"TABLE_MOUNT_TTL" default:"30m"` // idle session lifetime
}

type ExportConfig struct {
	Prefix        string        `env:"EXPORT_PREFIX" default:"Fulfillment"` // workbook title and file name
	IncludeHidden bool          `env:"EXPORT_INCLUDE_HIDDEN" default:"true"`
	MaxConcurrent int           `env:"EXPORT_MAX_CONCURRENT" default:"4"`
	MaxWaitTime   time.Duration `env:"EXPORT_MAX_WAIT_TIME" default:"10s"`
}

// RateLimitConfig limits requests per client IP per minute.
type RateLimitConfig struct {
	Enabled           bool `env:"RATE_LIMIT_ENABLED" default:"true"`
	RequestsPerMinute int  `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`
	ExportLimit       int  `env:"RATE_LIMIT_EXPORT" default:"10"`
}

type SecurityConfig struct {
	// TrustedProxies are the CIDRs allowed to set X-Forwarded-For and
	// X-Real-IP.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// RequireAPIKey guards /api with the X-API-Key header.
	RequireAPIKey bool     `env:"REQUIRE_API_KEY" default:"false"`
	APIKeys       []string `env:"API_KEYS"`

	SecureCookies bool `env:"SECURITY_SECURE_COOKIES" default:"false"`
}

type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" default:"info"`  // debug, info, warn, error
	Format string `env:"LOG_FORMAT" default:"text"` // text or json
}

// Addr returns the listen address as host:port.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// OpaqueSet returns OpaqueFields as a set, or nil when none are configured.
func (c TableConfig) OpaqueSet() map[string]bool {
	if len(c.OpaqueFields) == 0 {
		return nil
	}
	set := make(map[string]bool, len(c.OpaqueFields))
	for _, f := range c.OpaqueFields {
		set[f] = true
	}
	return set
}
