// Background worker for PolicyInsight. It consumes comparison regeneration
// requests from Kafka and re-runs the AI augmentation for each one.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/turtacn/PolicyInsight/internal/app"
	"github.com/turtacn/PolicyInsight/internal/application/comparison"
	"github.com/turtacn/PolicyInsight/internal/config"
	"github.com/turtacn/PolicyInsight/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/PolicyInsight/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PolicyInsight/internal/interfaces/http/handlers"
)

const (
	defaultHealthPort    = 8081
	statsInterval        = time.Minute
	healthShutdownPeriod = 5 * time.Second
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: environment only)")
	healthPort := flag.Int("health-port", defaultHealthPort, "port for /healthz, /readyz and /metrics (0 disables)")
	ensureTopics := flag.Bool("ensure-topics", false, "create the Kafka topics before consuming")
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

	if err := run(cfg, *healthPort, *ensureTopics, logger.Named("worker")); err != nil {
		logger.Error("worker terminated", logging.Err(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, healthPort int, ensureTopics bool, logger logging.Logger) error {
	if !cfg.Kafka.Enabled {
		return fmt.Errorf("kafka.enabled must be true: the worker has nothing to consume")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	topic := kafka.TopicName(cfg.Kafka.TopicPrefix, kafka.TopicComparisonRegenerate)
	logger.Info("starting PolicyInsight worker",
		logging.String("version", version),
		logging.String("topic", topic),
		logging.String("group", cfg.Kafka.GroupID))

	if ensureTopics {
		if err := createTopics(ctx, cfg.Kafka, logger); err != nil {
			return err
		}
	}

	// ── Stores and services ──────────────────────────────────────────────────
	stack, err := app.NewStack(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer stack.Close()

	// ── Consumer ─────────────────────────────────────────────────────────────
	consumer, err := kafka.NewConsumer(kafka.ConsumerConfigFromKafka(cfg.Kafka, topic), stack.Producer, logger)
	if err != nil {
		return fmt.Errorf("kafka consumer: %w", err)
	}
	defer func() {
		if err := consumer.Close(); err != nil {
			logger.Warn("failed to close kafka consumer", logging.Err(err))
		}
	}()

	handler := comparison.NewRegenerationHandler(stack.Comparisons, stack.Metrics, logger)
	consumer.Subscribe(topic, handler.Handle)

	// ── Health ───────────────────────────────────────────────────────────────
	var healthSrv *http.Server
	if healthPort > 0 {
		healthSrv = startHealthServer(healthPort, stack, logger)
	}

	if err := consumer.Start(ctx); err != nil {
		return fmt.Errorf("kafka consumer: %w", err)
	}

	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			logStats(consumer.Stats(), logger)
		case <-ctx.Done():
			logger.Info("shutdown signal received")
			logStats(consumer.Stats(), logger)
			if healthSrv != nil {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), healthShutdownPeriod)
				defer cancel()
				if err := healthSrv.Shutdown(shutdownCtx); err != nil {
					logger.Warn("health server shutdown failed", logging.Err(err))
				}
			}
			return nil
		}
	}
}

func createTopics(ctx context.Context, cfg config.KafkaConfig, logger logging.Logger) error {
	tm, err := kafka.NewTopicManager(cfg.Brokers, logger)
	if err != nil {
		return fmt.Errorf("kafka topics: %w", err)
	}
	defer tm.Close()

	if err := tm.EnsureTopics(ctx, kafka.DefaultTopics(cfg.TopicPrefix, 1)); err != nil {
		return fmt.Errorf("kafka topics: %w", err)
	}
	return nil
}

// startHealthServer serves liveness, readiness and, when enabled, metrics
// for orchestrator probes.
func startHealthServer(port int, stack *app.Stack, logger logging.Logger) *http.Server {
	health := handlers.NewHealthHandler(version, stack.HealthCheckers()...)

	r := chi.NewRouter()
	r.Get("/healthz", health.Liveness)
	r.Get("/readyz", health.Readiness)
	if stack.Collector != nil {
		r.Handle("/metrics", stack.Collector.Handler())
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("health server listening", logging.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("health server error", logging.Err(err))
		}
	}()
	return srv
}

func logStats(s kafka.ConsumerStats, logger logging.Logger) {
	logger.Info("consumer stats",
		logging.Int64("consumed", s.MessagesConsumed),
		logging.Int64("processed", s.MessagesProcessed),
		logging.Int64("failed", s.MessagesFailed),
		logging.Int64("retried", s.MessagesRetried),
		logging.Int64("dead_lettered", s.MessagesDeadLettered))
}

//Personal.AI order the ending
