package config

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validConfig returns a fully valid configuration for testing.
func validConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:        "quotebox",
			Version:     "1.0.0",
			Environment: "local",
		},
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxRequestSize:  1048576,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Database: DatabaseConfig{
			Path:         "./data/quotebox.db",
			MaxOpenConns: 8,
			BusyTimeout:  5 * time.Second,
		},
		Session: SessionConfig{
			Secret:     strings.Repeat("k", 32),
			CookieName: "quotebox_session",
			MaxAge:     3600,
			Secure:     true,
		},
		Quotes: QuotesConfig{
			PopularLimit: 10,
			SearchLimit:  20,
		},
		Auth: AuthConfig{
			SubjectHeader: "X-User-ID",
			RolesHeader:   "X-User-Roles",
			AdminRole:     "admin",
		},
	}
}

// requireInvalid asserts validation fails and names field.
func requireInvalid(t *testing.T, cfg *Config, field string) {
	t.Helper()

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), field)
}

func TestConfig_Validate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestConfig_Validate_AppConfig(t *testing.T) {
	t.Run("missing name", func(t *testing.T) {
		cfg := validConfig()
		cfg.App.Name = ""
		requireInvalid(t, cfg, "app.name is required")
	})

	t.Run("invalid environment", func(t *testing.T) {
		cfg := validConfig()
		cfg.App.Environment = "staging"
		requireInvalid(t, cfg, "app.environment must be one of")
	})

	for _, env := range []string{"local", "dev", "qa", "prod", "test"} {
		t.Run("environment "+env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = env
			assert.NoError(t, cfg.Validate())
		})
	}
}

func TestConfig_Validate_ServerConfig(t *testing.T) {
	tests := []struct {
		name    string
		port    int
		wantErr bool
	}{
		{"minimum valid port", 1, false},
		{"maximum valid port", 65535, false},
		{"zero port", 0, true},
		{"port too high", 65536, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Server.Port = tt.port

			if tt.wantErr {
				requireInvalid(t, cfg, "server.port")
			} else {
				assert.NoError(t, cfg.Validate())
			}
		})
	}

	t.Run("timeout minimum", func(t *testing.T) {
		cfg := validConfig()
		cfg.Server.ReadTimeout = 500 * time.Millisecond
		requireInvalid(t, cfg, "server.readtimeout")
	})

	t.Run("trusted proxies accept addresses and ranges", func(t *testing.T) {
		cfg := validConfig()
		cfg.Server.TrustedProxies = []string{"10.0.0.1", "172.16.0.0/12", "::1"}
		assert.NoError(t, cfg.Validate())
	})

	t.Run("trusted proxy must be an address", func(t *testing.T) {
		cfg := validConfig()
		cfg.Server.TrustedProxies = []string{"gateway.internal"}
		requireInvalid(t, cfg, "server.trustedproxies")
	})
}

func TestConfig_Validate_LogConfig(t *testing.T) {
	for _, level := range []string{"trace", "debug", "info", "warn", "error"} {
		t.Run(level, func(t *testing.T) {
			cfg := validConfig()
			cfg.Log.Level = level
			assert.NoError(t, cfg.Validate())
		})
	}

	t.Run("uppercase level rejected", func(t *testing.T) {
		cfg := validConfig()
		cfg.Log.Level = "DEBUG"
		requireInvalid(t, cfg, "log.level")
	})

	t.Run("invalid format", func(t *testing.T) {
		cfg := validConfig()
		cfg.Log.Format = "xml"
		requireInvalid(t, cfg, "log.format")
	})

	t.Run("file enabled without path", func(t *testing.T) {
		cfg := validConfig()
		cfg.Log.File.Enabled = true
		requireInvalid(t, cfg, "log.file.path is required when")
	})

	t.Run("file max size bound", func(t *testing.T) {
		cfg := validConfig()
		cfg.Log.File = LogFileConfig{Enabled: true, Path: "/var/log/quotebox.log", MaxSizeMB: 1025}
		requireInvalid(t, cfg, "log.file.maxsizemb")
	})
}

func TestConfig_Validate_TelemetryConfig(t *testing.T) {
	t.Run("enabled requires endpoint", func(t *testing.T) {
		cfg := validConfig()
		cfg.Telemetry = TelemetryConfig{Enabled: true, ServiceName: "quotebox"}
		requireInvalid(t, cfg, "telemetry.endpoint")
	})

	t.Run("enabled rejects non-url endpoint", func(t *testing.T) {
		cfg := validConfig()
		cfg.Telemetry = TelemetryConfig{Enabled: true, Endpoint: "not-a-url", ServiceName: "quotebox"}
		requireInvalid(t, cfg, "telemetry.endpoint must be a valid URL")
	})

	for _, rate := range []float64{-0.1, 1.1} {
		t.Run(fmt.Sprintf("sampling rate %v", rate), func(t *testing.T) {
			cfg := validConfig()
			cfg.Telemetry.SamplingRate = rate
			requireInvalid(t, cfg, "telemetry.samplingrate")
		})
	}
}

func TestConfig_Validate_DatabaseConfig(t *testing.T) {
	t.Run("missing path", func(t *testing.T) {
		cfg := validConfig()
		cfg.Database.Path = ""
		requireInvalid(t, cfg, "database.path is required")
	})

	t.Run("pool too large", func(t *testing.T) {
		cfg := validConfig()
		cfg.Database.MaxOpenConns = 65
		requireInvalid(t, cfg, "database.maxopenconns must be at most 64")
	})

	t.Run("memory database allowed", func(t *testing.T) {
		cfg := validConfig()
		cfg.Database.Path = ":memory:"
		assert.NoError(t, cfg.Validate())
	})
}

func TestConfig_Validate_SessionConfig(t *testing.T) {
	t.Run("short secret", func(t *testing.T) {
		cfg := validConfig()
		cfg.Session.Secret = "too-short"
		requireInvalid(t, cfg, "session.secret must be at least 32 characters")
	})

	t.Run("missing secret", func(t *testing.T) {
		cfg := validConfig()
		cfg.Session.Secret = ""
		requireInvalid(t, cfg, "session.secret is required")
	})

	t.Run("insecure cookie allowed locally", func(t *testing.T) {
		cfg := validConfig()
		cfg.Session.Secure = false
		assert.NoError(t, cfg.Validate())
	})

	t.Run("insecure cookie rejected in prod", func(t *testing.T) {
		cfg := validConfig()
		cfg.App.Environment = "prod"
		cfg.Session.Secure = false
		assert.ErrorIs(t, cfg.Validate(), ErrInsecureSession)
	})
}

func TestConfig_Validate_QuotesConfig(t *testing.T) {
	cfg := validConfig()
	cfg.Quotes.PopularLimit = 0
	requireInvalid(t, cfg, "quotes.popularlimit")

	cfg = validConfig()
	cfg.Quotes.SearchLimit = 101
	requireInvalid(t, cfg, "quotes.searchlimit")
}

func TestConfig_Validate_AuthConfig(t *testing.T) {
	cfg := validConfig()
	cfg.Auth.AdminRole = ""
	requireInvalid(t, cfg, "auth.adminrole is required")

	cfg = validConfig()
	cfg.Auth.RolesHeader = ""
	requireInvalid(t, cfg, "auth.rolesheader is required")
}

func TestConfig_Validate_MultipleErrors(t *testing.T) {
	cfg := &Config{
		App:    AppConfig{Environment: "invalid"},
		Server: ServerConfig{Port: -1},
	}

	err := cfg.Validate()
	require.Error(t, err)

	errStr := err.Error()
	assert.Contains(t, errStr, "app.name")
	assert.Contains(t, errStr, "app.version")
	assert.Contains(t, errStr, "session")
}

func TestFormatFieldPath(t *testing.T) {
	tests := []struct {
		namespace string
		expected  string
	}{
		{"Config.Server.Port", "server.port"},
		{"Config.Session.CookieName", "session.cookiename"},
		{"Config.Log.File.Path", "log.file.path"},
		{"Config", "config"},
	}

	for _, tt := range tests {
		t.Run(tt.namespace, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatFieldPath(tt.namespace))
		})
	}
}
