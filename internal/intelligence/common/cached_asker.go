package common

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/turtacn/PolicyInsight/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PolicyInsight/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/PolicyInsight/pkg/errors"
)

// AnswerCache is the slice of the Redis cache the CachedAsker needs.
type AnswerCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// CachedAsker memoizes answers by prompt hash. Cache failures degrade to a
// live call; an empty answer is never stored.
type CachedAsker struct {
	next    Asker
	cache   AnswerCache
	ttl     time.Duration
	metrics *prometheus.ComparisonMetrics
	logger  logging.Logger
}

// NewCachedAsker wraps next with cache. A nil cache returns next unchanged.
func NewCachedAsker(next Asker, cache AnswerCache, ttl time.Duration, metrics *prometheus.ComparisonMetrics, logger logging.Logger) Asker {
	if cache == nil {
		return next
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &CachedAsker{next: next, cache: cache, ttl: ttl, metrics: metrics, logger: logger}
}

func (c *CachedAsker) Provider() string { return c.next.Provider() }

func (c *CachedAsker) Ask(ctx context.Context, question string) (string, error) {
	key := AnswerCacheKey(c.next.Provider(), question)

	var cached string
	err := c.cache.Get(ctx, key, &cached)
	switch {
	case err == nil && cached != "":
		c.metrics.RecordAICache(true)
		return cached, nil
	case err != nil && !errors.IsNotFound(err):
		c.logger.Warn("ai answer cache read failed", logging.Err(err))
	}
	c.metrics.RecordAICache(false)

	answer, err := c.next.Ask(ctx, question)
	if err != nil {
		return "", err
	}
	if answer != "" {
		if setErr := c.cache.Set(ctx, key, answer, c.ttl); setErr != nil {
			c.logger.Warn("ai answer cache write failed", logging.Err(setErr))
		}
	}
	return answer, nil
}

// AnswerCacheKey is "ai:answer:<provider>:<sha256(question)>".
func AnswerCacheKey(provider, question string) string {
	sum := sha256.Sum256([]byte(question))
	return "ai:answer:" + provider + ":" + hex.EncodeToString(sum[:])
}
