package common

import (
	"context"

	"github.com/turtacn/PolicyInsight/internal/config"
	"github.com/turtacn/PolicyInsight/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PolicyInsight/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/PolicyInsight/pkg/errors"
)

// NewAskerFromConfig builds the configured Asker with metrics and, when cache
// is non-nil, answer caching. It returns nil, nil when AI is disabled.
func NewAskerFromConfig(ctx context.Context, cfg config.AIConfig, cache AnswerCache, metrics *prometheus.ComparisonMetrics, logger logging.Logger) (Asker, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	var (
		base Asker
		err  error
	)
	switch cfg.Provider {
	case ProviderGemini:
		base, err = NewGeminiAsker(ctx, cfg.APIKey, cfg.Model, logger)
	case ProviderHTTP, "":
		var opts []HTTPAskerOption
		if cfg.APIKey != "" {
			opts = append(opts, WithAPIKey(cfg.APIKey))
		}
		base, err = NewHTTPAsker(cfg.Endpoint, logger, opts...)
	default:
		return nil, errors.Newf(errors.ErrCodeValidation, "unknown ai provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	return NewCachedAsker(WithMetrics(base, metrics), cache, cfg.CacheTTL, metrics, logger), nil
}
