// Package main is the entry point for quotebox.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/quotebox/internal/platform/config"
	"github.com/jsamuelsen/quotebox/internal/platform/logging"
	"github.com/jsamuelsen/quotebox/internal/storage/sqlite"
)

// Build-time variables, injected via ldflags.
// Example: go build -ldflags "-X main.Version=1.0.0 -X main.Commit=$(git rev-parse HEAD) -X main.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	// Version is the semantic version of the service.
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "unknown"

	// BuildTime is the timestamp when the binary was built.
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var profile string

	cmd := &cobra.Command{
		Use:           "quotebox",
		Short:         "Weighted random quotes with likes and dislikes",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), profile)
		},
	}

	cmd.PersistentFlags().StringVarP(&profile, "profile", "p", os.Getenv("APP_ENVIRONMENT"),
		"config profile to load from configs/{profile}.yaml (default $APP_ENVIRONMENT or local)")

	cmd.AddCommand(
		serveCmd(&profile),
		migrateCmd(&profile),
		seedCmd(&profile),
		versionCmd(),
	)

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "quotebox %s (commit %s, built %s)\n", Version, Commit, BuildTime)
		},
	}
}

// loadConfig loads and validates the configuration for profile (fail fast).
func loadConfig(profile string) (*config.Config, error) {
	if profile == "" {
		profile = "local"
	}

	cfg, err := config.Load(profile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// newLogger builds the process logger from cfg and installs it as the default.
func newLogger(cfg *config.Config) *slog.Logger {
	logger := logging.New(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
	logging.SetDefault(logger)

	return logger
}

func openStore(ctx context.Context, cfg *config.DatabaseConfig) (*sqlite.Store, error) {
	store, err := sqlite.Open(ctx, sqlite.Config{
		Path:         cfg.Path,
		MaxOpenConns: cfg.MaxOpenConns,
		BusyTimeout:  cfg.BusyTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	return store, nil
}
