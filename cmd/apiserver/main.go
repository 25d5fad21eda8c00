// API server entry point for PolicyInsight.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/turtacn/PolicyInsight/internal/app"
	"github.com/turtacn/PolicyInsight/internal/config"
	"github.com/turtacn/PolicyInsight/internal/infrastructure/monitoring/logging"
	httpserver "github.com/turtacn/PolicyInsight/internal/interfaces/http"
	"github.com/turtacn/PolicyInsight/internal/interfaces/http/handlers"
	"github.com/turtacn/PolicyInsight/internal/interfaces/http/middleware"
)

// Build-time variables injected via ldflags.
var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: environment only)")
	migrate := flag.Bool("migrate", true, "apply pending database migrations at start-up")
	flag.Parse()

	cfg, err := config.LoadOrEnv(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(logging.LogConfig{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, *configPath, *migrate, logger); err != nil {
		logger.Error("API server terminated", logging.Err(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, configPath string, migrate bool, logger logging.Logger) error {
	if !cfg.Auth.Enabled {
		return fmt.Errorf("auth.enabled must be true: every /api/v1 route needs a verified user")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting PolicyInsight API server",
		logging.String("version", version),
		logging.String("mode", cfg.Server.Mode),
		logging.Int("port", cfg.Server.Port))

	// ── Stores and services ──────────────────────────────────────────────────
	stack, err := app.NewStack(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer stack.Close()

	if migrate {
		if err := stack.Migrate(); err != nil {
			return err
		}
	}

	// ── HTTP ─────────────────────────────────────────────────────────────────
	routerCfg := httpserver.RouterConfig{
		ComparisonHandler: handlers.NewComparisonHandler(stack.Comparisons, logger),
		HealthHandler:     handlers.NewHealthHandler(version, stack.HealthCheckers()...),
		AuthMiddleware: middleware.NewAuthMiddleware(
			middleware.NewJWTValidator(cfg.Auth.JWTSecret, cfg.Auth.Issuer),
			middleware.AuthConfig{}, logger),
		LoggingMiddleware: middleware.NewLoggingMiddleware(logger, stack.Metrics, middleware.DefaultLoggingConfig()),
		Logger:            logger,
		MetricsCollector:  stack.Collector,
	}
	if len(cfg.Server.CORSAllowedOrigins) > 0 {
		routerCfg.CORSMiddleware = middleware.NewCORSMiddleware(middleware.DefaultCORSConfig(cfg.Server.CORSAllowedOrigins))
	}
	if cfg.Server.RateLimitRPS > 0 {
		routerCfg.RateLimitMiddleware = middleware.NewRateLimitMiddleware(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.Server.RateLimitRPS,
			BurstSize:         cfg.Server.RateLimitBurst,
		})
	}

	srv := httpserver.NewServer(cfg.Server, httpserver.NewRouter(routerCfg), logger)

	if configPath != "" {
		config.Watch(configPath, func(*config.Config) {
			logger.Info("configuration file changed; restart the server to apply it",
				logging.String("path", configPath))
		}, func(err error) {
			logger.Warn("ignoring invalid configuration change", logging.Err(err))
		})
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	return srv.Shutdown(context.Background())
}

//Personal.AI order the ending
