// Package app assembles the process-wide dependencies shared by the API
// server and the worker: metrics, store clients and the comparison service.
package app

import (
	"context"
	"fmt"

	"github.com/turtacn/PolicyInsight/internal/application/comparison"
	"github.com/turtacn/PolicyInsight/internal/config"
	"github.com/turtacn/PolicyInsight/internal/infrastructure/database/postgres"
	"github.com/turtacn/PolicyInsight/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/PolicyInsight/internal/infrastructure/database/redis"
	"github.com/turtacn/PolicyInsight/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/PolicyInsight/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PolicyInsight/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/PolicyInsight/internal/infrastructure/storage/minio"
	"github.com/turtacn/PolicyInsight/internal/intelligence/common"
	"github.com/turtacn/PolicyInsight/internal/intelligence/insight_gpt"
	pc "github.com/turtacn/PolicyInsight/internal/intelligence/policy_compare"
	"github.com/turtacn/PolicyInsight/internal/interfaces/http/handlers"
)

// Stack holds the connected clients and the services built on them.
// Optional stores are nil when disabled in the configuration.
type Stack struct {
	Config    *config.Config
	Logger    logging.Logger
	Collector prometheus.MetricsCollector
	Metrics   *prometheus.ComparisonMetrics

	Postgres *postgres.Connection
	Redis    *redis.Client
	MinIO    *minio.Client
	Producer *kafka.Producer

	Comparisons comparison.Service
}

// NewStack connects every enabled store and wires the comparison service.
// On error, whatever was already connected is closed.
func NewStack(ctx context.Context, cfg *config.Config, logger logging.Logger) (*Stack, error) {
	s := &Stack{
		Config:  cfg,
		Logger:  logger,
		Metrics: prometheus.NewNoopComparisonMetrics(),
	}

	if cfg.Metrics.Enabled {
		c, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:            cfg.Metrics.Namespace,
			EnableProcessMetrics: true,
			EnableGoMetrics:      true,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("metrics: %w", err)
		}
		s.Collector = c
		s.Metrics = prometheus.NewComparisonMetrics(c)
	}

	if err := s.connect(ctx); err != nil {
		s.Close()
		return nil, err
	}

	svc, err := s.newComparisonService(ctx)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.Comparisons = svc
	return s, nil
}

func (s *Stack) connect(ctx context.Context) error {
	cfg, logger := s.Config, s.Logger

	pg, err := postgres.NewConnection(cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	s.Postgres = pg

	if cfg.Redis.Enabled {
		rc, err := redis.NewClient(cfg.Redis, logger)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		s.Redis = rc
	}

	if cfg.MinIO.Enabled {
		mc, err := minio.NewClient(ctx, cfg.MinIO, logger)
		if err != nil {
			return fmt.Errorf("minio: %w", err)
		}
		s.MinIO = mc
	}

	if cfg.Kafka.Enabled {
		p, err := kafka.NewProducer(kafka.ProducerConfigFromKafka(cfg.Kafka), s.Metrics, logger)
		if err != nil {
			return fmt.Errorf("kafka: %w", err)
		}
		s.Producer = p
	}

	logger.Info("infrastructure initialized",
		logging.Bool("redis", s.Redis != nil),
		logging.Bool("minio", s.MinIO != nil),
		logging.Bool("kafka", s.Producer != nil))
	return nil
}

// newComparisonService wires the engine, the optional AI augmenter and the
// stores into the comparison service.
func (s *Stack) newComparisonService(ctx context.Context) (comparison.Service, error) {
	cfg, logger := s.Config, s.Logger

	deps := comparison.Dependencies{
		Policies:    repositories.NewPostgresPolicyRepo(s.Postgres, logger),
		Comparisons: repositories.NewPostgresComparisonRepo(s.Postgres, logger),
		Logger:      logger.Named("comparison"),
	}

	var cache common.AnswerCache
	if s.Redis != nil {
		cache = redis.NewRedisCache(s.Redis, logger)
		deps.Locker = redis.NewLocker(s.Redis, logger)
	}
	if s.MinIO != nil {
		deps.Texts = minio.NewTextStore(s.MinIO, logger)
	}
	if s.Producer != nil {
		deps.Events = kafka.NewEventPublisher(s.Producer, cfg.Kafka.TopicPrefix, logger)
	}

	engine := pc.NewEngine(pc.ThresholdsFromConfig(cfg.Comparison), logger.Named("engine"))

	asker, err := common.NewAskerFromConfig(ctx, cfg.AI, cache, s.Metrics, logger)
	if err != nil {
		return nil, fmt.Errorf("ai: %w", err)
	}
	var augmenter pc.Augmenter
	if asker != nil {
		augmenter = insight_gpt.NewAugmenter(asker, insight_gpt.Config{
			Timeout:            cfg.AI.Timeout,
			PromptContentLimit: cfg.Comparison.PromptContentLimit,
			Thresholds:         engine.Thresholds(),
		}, s.Metrics, logger)
	}
	deps.Comparer = pc.NewOrchestrator(engine, augmenter, s.Metrics, logger)

	return comparison.NewService(deps)
}

// Migrate applies every pending schema migration.
func (s *Stack) Migrate() error {
	m := postgres.NewMigrator(s.Config.Database.DSN(), s.Config.Database.MigrationPath, s.Logger)
	if err := m.Up(); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	return nil
}

// HealthCheckers adapts the connected stores to readiness checks. Disabled
// stores are skipped.
func (s *Stack) HealthCheckers() []handlers.HealthChecker {
	var checks []handlers.HealthChecker
	if s.Postgres != nil {
		checks = append(checks, handlers.CheckFunc{Component: "postgres", Fn: s.Postgres.HealthCheck})
	}
	if s.Redis != nil {
		checks = append(checks, handlers.CheckFunc{Component: "redis", Fn: s.Redis.Ping})
	}
	if s.MinIO != nil {
		checks = append(checks, handlers.CheckFunc{Component: "minio", Fn: s.MinIO.HealthCheck})
	}
	return checks
}

// Close releases every connected client. It is safe on a partial Stack.
func (s *Stack) Close() {
	if s.Producer != nil {
		if err := s.Producer.Close(); err != nil {
			s.Logger.Warn("failed to close kafka producer", logging.Err(err))
		}
	}
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			s.Logger.Warn("failed to close redis client", logging.Err(err))
		}
	}
	if s.Postgres != nil {
		if err := s.Postgres.Close(); err != nil {
			s.Logger.Warn("failed to close database", logging.Err(err))
		}
	}
}

//Personal.AI order the ending
