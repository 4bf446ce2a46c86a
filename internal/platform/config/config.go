// Package config provides configuration loading and management using koanf.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Default configuration values.
const (
	// DefaultServerPort is the default HTTP server port.
	DefaultServerPort = 8080

	// DefaultMaxRequestSize is the default maximum request body size (1MB).
	DefaultMaxRequestSize = 1 << 20

	DefaultLogFileMaxSizeMB  = 100
	DefaultLogFileMaxBackups = 3
	DefaultLogFileMaxAgeDays = 28

	// DefaultDatabasePath is relative to the working directory.
	DefaultDatabasePath = "./data/quotebox.db"

	// DefaultDatabaseMaxOpenConns bounds the sqlite pool. Writers still
	// serialize on the database lock.
	DefaultDatabaseMaxOpenConns = 8

	DefaultDatabaseBusyTimeout = 5 * time.Second

	DefaultSessionCookieName = "quotebox_session"

	// DefaultSessionMaxAge is two weeks in seconds.
	DefaultSessionMaxAge = 14 * 24 * 60 * 60

	DefaultPopularLimit = 10
	DefaultSearchLimit  = 20

	DefaultAuthSubjectHeader = "X-User-ID"
	DefaultAuthRolesHeader   = "X-User-Roles"
	DefaultAdminRole         = "admin"
)

// Config is the root configuration structure.
type Config struct {
	App       AppConfig       `koanf:"app"       validate:"required"`
	Server    ServerConfig    `koanf:"server"    validate:"required"`
	Log       LogConfig       `koanf:"log"       validate:"required"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Database  DatabaseConfig  `koanf:"database"  validate:"required"`
	Session   SessionConfig   `koanf:"session"   validate:"required"`
	Quotes    QuotesConfig    `koanf:"quotes"    validate:"required"`
	Auth      AuthConfig      `koanf:"auth"      validate:"required"`
}

// AppConfig contains application-level settings.
type AppConfig struct {
	Name        string `koanf:"name"        validate:"required"`
	Version     string `koanf:"version"     validate:"required"`
	Environment string `koanf:"environment" validate:"required,oneof=local dev qa prod test"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"             validate:"required,min=1,max=65535"`
	Host            string        `koanf:"host"             validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout"     validate:"required,min=1s"`
	WriteTimeout    time.Duration `koanf:"write_timeout"    validate:"required,min=1s"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"     validate:"required,min=1s"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"required,min=1s"`
	MaxRequestSize  int64         `koanf:"max_request_size" validate:"required,min=1"`

	// TrustedProxies are the addresses whose forwarding headers set the
	// client IP. Empty trusts no proxy.
	TrustedProxies []string `koanf:"trusted_proxies" validate:"omitempty,dive,ip|cidr"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string        `koanf:"level"  validate:"required,oneof=trace debug info warn error"`
	Format string        `koanf:"format" validate:"required,oneof=json text pretty"`
	File   LogFileConfig `koanf:"file"`
}

// LogFileConfig contains rolling log file settings.
type LogFileConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Path       string `koanf:"path"        validate:"required_if=Enabled true"`
	MaxSizeMB  int    `koanf:"max_size"    validate:"omitempty,min=1,max=1024"`
	MaxBackups int    `koanf:"max_backups" validate:"omitempty,min=0,max=100"`
	MaxAgeDays int    `koanf:"max_age"     validate:"omitempty,min=0,max=365"`
	Compress   bool   `koanf:"compress"`
}

// TelemetryConfig contains OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled      bool    `koanf:"enabled"`
	Endpoint     string  `koanf:"endpoint"      validate:"required_if=Enabled true,omitempty,url"`
	ServiceName  string  `koanf:"service_name"  validate:"required_if=Enabled true"`
	SamplingRate float64 `koanf:"sampling_rate" validate:"min=0,max=1"`
}

// DatabaseConfig locates the sqlite file holding quotes, sources and the
// vote ledger.
type DatabaseConfig struct {
	Path           string        `koanf:"path"             validate:"required"`
	MaxOpenConns   int           `koanf:"max_open_conns"   validate:"required,min=1,max=64"`
	BusyTimeout    time.Duration `koanf:"busy_timeout"     validate:"required,min=1ms"`
	MigrateOnStart bool          `koanf:"migrate_on_start"`
}

// SessionConfig controls the visitor cookie.
type SessionConfig struct {
	Secret     string `koanf:"secret"      validate:"required,min=32"`
	CookieName string `koanf:"cookie_name" validate:"required"`
	MaxAge     int    `koanf:"max_age"     validate:"min=0"`
	Secure     bool   `koanf:"secure"`
}

// QuotesConfig tunes listing sizes.
type QuotesConfig struct {
	PopularLimit int `koanf:"popular_limit" validate:"required,min=1,max=100"`
	SearchLimit  int `koanf:"search_limit"  validate:"required,min=1,max=100"`
}

// AuthConfig names the headers a fronting gateway sets after it has
// authenticated a collaborator. The service trusts them and only checks the
// role, so the admin API must never be reachable except through that gateway.
type AuthConfig struct {
	SubjectHeader string `koanf:"subject_header" validate:"required"`
	RolesHeader   string `koanf:"roles_header"   validate:"required"`
	AdminRole     string `koanf:"admin_role"     validate:"required"`
}

// defaults returns the default configuration values. session.secret has no
// default and must come from a file or APP_SESSION__SECRET.
func defaults() map[string]any {
	return map[string]any{
		"app.name":        "quotebox",
		"app.version":     "dev",
		"app.environment": "local",

		"server.port":             DefaultServerPort,
		"server.host":             "0.0.0.0",
		"server.read_timeout":     "30s",
		"server.write_timeout":    "30s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "10s",
		"server.max_request_size": DefaultMaxRequestSize,
		"server.trusted_proxies":  []string{"127.0.0.1", "::1"},

		"log.level":            "info",
		"log.format":           "json",
		"log.file.enabled":     false,
		"log.file.path":        "./logs/quotebox.log",
		"log.file.max_size":    DefaultLogFileMaxSizeMB,
		"log.file.max_backups": DefaultLogFileMaxBackups,
		"log.file.max_age":     DefaultLogFileMaxAgeDays,
		"log.file.compress":    true,

		"telemetry.enabled":       false,
		"telemetry.endpoint":      "",
		"telemetry.service_name":  "quotebox",
		"telemetry.sampling_rate": 1.0,

		"database.path":             DefaultDatabasePath,
		"database.max_open_conns":   DefaultDatabaseMaxOpenConns,
		"database.busy_timeout":     DefaultDatabaseBusyTimeout.String(),
		"database.migrate_on_start": true,

		"session.cookie_name": DefaultSessionCookieName,
		"session.max_age":     DefaultSessionMaxAge,
		"session.secure":      false,

		"quotes.popular_limit": DefaultPopularLimit,
		"quotes.search_limit":  DefaultSearchLimit,

		"auth.subject_header": DefaultAuthSubjectHeader,
		"auth.roles_header":   DefaultAuthRolesHeader,
		"auth.admin_role":     DefaultAdminRole,
	}
}

// Load loads configuration with the following precedence (highest to lowest):
//  1. Environment variables (APP_ prefix)
//  2. Profile config file (configs/{profile}.yaml)
//  3. Base config file (configs/base.yaml)
//  4. Default values
func Load(profile string) (*Config, error) {
	return LoadFrom("configs", profile)
}

// LoadFrom is Load with an explicit config directory.
func LoadFrom(dir, profile string) (*Config, error) {
	k := koanf.New(".")

	err := k.Load(confmap.Provider(defaults(), "."), nil)
	if err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	err = loadFileIfExists(k, fmt.Sprintf("%s/base.yaml", dir))
	if err != nil {
		return nil, fmt.Errorf("loading base config: %w", err)
	}

	if profile != "" {
		err := loadFileIfExists(k, fmt.Sprintf("%s/%s.yaml", dir, profile))
		if err != nil {
			return nil, fmt.Errorf("loading profile config %q: %w", profile, err)
		}
	}

	err = k.Load(env.Provider("APP_", ".", envKey), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	var cfg Config

	err = k.Unmarshal("", &cfg)
	if err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return &cfg, nil
}

// envKey maps APP_SERVER_PORT to server.port. Keys whose leaf contains an
// underscore use a double underscore as the section separator:
// APP_DATABASE__MAX_OPEN_CONNS is database.max_open_conns.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, "APP_"))
	if strings.Contains(key, "__") {
		return strings.ReplaceAll(key, "__", ".")
	}

	return strings.ReplaceAll(key, "_", ".")
}

// loadFileIfExists loads a YAML config file if it exists.
// Returns nil if the file doesn't exist, error only for parse/read failures.
func loadFileIfExists(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return k.Load(file.Provider(path), yaml.Parser())
}
