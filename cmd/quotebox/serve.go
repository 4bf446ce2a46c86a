package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/jsamuelsen/quotebox/internal/adapters/http"
	"github.com/jsamuelsen/quotebox/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quotebox/internal/adapters/http/session"
	"github.com/jsamuelsen/quotebox/internal/app"
	"github.com/jsamuelsen/quotebox/internal/platform/metrics"
	"github.com/jsamuelsen/quotebox/internal/platform/telemetry"
	"github.com/jsamuelsen/quotebox/internal/ports"
)

func serveCmd(profile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (default)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), *profile)
		},
	}
}

func serve(ctx context.Context, profile string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// 1. Load and validate configuration (fail fast)
	cfg, err := loadConfig(profile)
	if err != nil {
		return err
	}

	// 2. Initialize logging
	logger := newLogger(cfg)

	logger.Info("starting service",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
	)

	// 3. Initialize telemetry (noop if disabled)
	telProvider, err := telemetry.New(ctx, &telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		Endpoint:     cfg.Telemetry.Endpoint,
		ServiceName:  cfg.Telemetry.ServiceName,
		Version:      Version,
		Environment:  cfg.App.Environment,
		SamplingRate: cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	defer func() {
		if shutdownErr := telProvider.Shutdown(ctx); shutdownErr != nil {
			logger.Error("telemetry shutdown error", slog.Any("error", shutdownErr))
		}
	}()

	// 4. Open the store and bring the schema up to date
	store, err := openStore(ctx, &cfg.Database)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			logger.Error("closing database", slog.Any("error", closeErr))
		}
	}()

	if cfg.Database.MigrateOnStart {
		applied, err := store.Migrate(ctx)
		if err != nil {
			return err
		}

		logger.Info("database ready", slog.String("path", cfg.Database.Path), slog.Int("migrations_applied", applied))
	}

	// 5. Readiness: the store must be reachable and migrated
	readiness, err := ports.NewReadinessChecks(ports.DefaultCheckTimeout, store)
	if err != nil {
		return fmt.Errorf("building readiness checks: %w", err)
	}

	// 6. Prometheus collectors for quote activity
	collectors := metrics.New(prometheus.DefaultRegisterer)

	// 7. Application services
	quoteService := app.NewQuoteService(app.QuoteServiceConfig{
		Store:        store,
		Recorder:     collectors,
		Logger:       logger,
		PopularLimit: cfg.Quotes.PopularLimit,
		SearchLimit:  cfg.Quotes.SearchLimit,
	})

	voteService := app.NewVoteService(app.VoteServiceConfig{
		Store:    store,
		Recorder: collectors,
		Logger:   logger,
	})

	// 8. Visitor sessions
	sessions, err := session.NewManager(session.Config{
		Secret:     cfg.Session.Secret,
		CookieName: cfg.Session.CookieName,
		MaxAge:     cfg.Session.MaxAge,
		Secure:     cfg.Session.Secure,
		Ledger:     voteService,
	})
	if err != nil {
		return fmt.Errorf("creating session manager: %w", err)
	}

	// 9. HTTP server with all middleware and routes
	server, err := http.New(&cfg.Server, logger)
	if err != nil {
		return fmt.Errorf("creating http server: %w", err)
	}

	err = http.SetupRouter(server.Engine(), http.RouterConfig{
		AppName: cfg.App.Name,
		Health: handlers.NewHealthHandler(
			readiness,
			handlers.NewBuildInfo(Version, Commit, BuildTime),
			metrics.Handler(prometheus.DefaultGatherer),
		),
		Pages:    handlers.NewPageHandler(quoteService, sessions),
		Votes:    handlers.NewVoteHandler(quoteService, voteService, sessions),
		API:      handlers.NewQuoteHandler(quoteService),
		Sessions: sessions,
		Auth:     &cfg.Auth,
		Timeout:  http.DefaultRequestTimeout,
	})
	if err != nil {
		return fmt.Errorf("setting up router: %w", err)
	}

	// 10. Start server (non-blocking) and wait for a shutdown signal
	serverErr, err := server.Start()
	if err != nil {
		return err
	}

	return waitForShutdown(ctx, logger, server, serverErr, cfg.Server.ShutdownTimeout)
}

// waitForShutdown blocks until a shutdown signal is received or server error occurs.
// It then performs graceful shutdown of the HTTP server.
func waitForShutdown(
	ctx context.Context,
	logger *slog.Logger,
	server *http.Server,
	serverErr <-chan error,
	shutdownTimeout time.Duration,
) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)

	case sig := <-quit:
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))

	case <-ctx.Done():
		logger.Info("context cancelled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	logger.Info("initiating graceful shutdown",
		slog.Duration("timeout", shutdownTimeout),
	)

	// Stop accepting new requests, drain in-flight
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("shutdown complete")

	return nil
}
