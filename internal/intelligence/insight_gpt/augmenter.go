package insight_gpt

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/turtacn/PolicyInsight/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PolicyInsight/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/PolicyInsight/internal/intelligence/common"
	pc "github.com/turtacn/PolicyInsight/internal/intelligence/policy_compare"
)

// Fallback reasons reported to metrics.
const (
	FallbackTimeout = "timeout"
	FallbackError   = "error"
	FallbackEmpty   = "empty"
	FallbackPrompt  = "prompt"
)

// DefaultTimeout bounds a single model call.
const DefaultTimeout = 120 * time.Second

// Config tunes the Augmenter.
type Config struct {
	Timeout            time.Duration
	PromptContentLimit int
	Thresholds         pc.Thresholds
}

// Augmenter asks a model about two analyses and merges the answer into the
// rule-based result. Any failure leaves the rule result untouched.
type Augmenter struct {
	asker   common.Asker
	cfg     Config
	metrics *prometheus.ComparisonMetrics
	logger  logging.Logger
}

var _ pc.Augmenter = (*Augmenter)(nil)

// NewAugmenter creates an Augmenter around asker.
func NewAugmenter(asker common.Asker, cfg Config, metrics *prometheus.ComparisonMetrics, logger logging.Logger) *Augmenter {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.PromptContentLimit <= 0 {
		cfg.PromptContentLimit = DefaultPromptContentLimit
	}
	cfg.Thresholds = withDefaultThresholds(cfg.Thresholds)
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Augmenter{asker: asker, cfg: cfg, metrics: metrics, logger: logger.Named("insight_gpt")}
}

// Augment makes one model call under the configured timeout. It never
// retries; on error, timeout, cancellation or an empty answer it returns
// base and false.
func (g *Augmenter) Augment(ctx context.Context, a, b pc.DocumentAnalysis, base pc.ComparisonResult) (pc.ComparisonResult, bool) {
	prompt, err := BuildPrompt(a, b, g.cfg.PromptContentLimit)
	if err != nil {
		g.fallback(FallbackPrompt, err)
		return base, false
	}

	callCtx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	answer, err := g.asker.Ask(callCtx, prompt)
	if err != nil {
		reason := FallbackError
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.Canceled) {
			reason = FallbackTimeout
		}
		g.fallback(reason, err)
		return base, false
	}
	if strings.TrimSpace(answer) == "" {
		g.fallback(FallbackEmpty, nil)
		return base, false
	}

	return Merge(base, ParseAnswer(answer), g.cfg.Thresholds), true
}

func (g *Augmenter) fallback(reason string, err error) {
	g.metrics.RecordAIFallback(reason)
	fields := []logging.Field{logging.String("reason", reason)}
	if err != nil {
		fields = append(fields, logging.Err(err))
	}
	g.logger.Warn("ai augmentation skipped, keeping rule-based result", fields...)
}

// Merge folds a parsed answer into the rule-based result. Model items come
// first; the score never drops below the rule score or leaves [floor, 100].
func Merge(base pc.ComparisonResult, ans Answer, th pc.Thresholds) pc.ComparisonResult {
	th = withDefaultThresholds(th)
	out := base
	ruleScore := base.RelevanceScore

	if ans.Summary != "" {
		out.Summary = ans.Summary
	}
	out.KeyDifferences = concatCapped(ans.Differences, base.KeyDifferences, pc.MaxKeyDifferences)
	out.Recommendations = concatCapped(ans.Recommendations, base.Recommendations, pc.MaxRecommendations)
	out.IsRelevant = ruleScore > th.AIRelevantThreshold
	out.RelevanceScore = pc.ClampScore(max(ruleScore, ans.Relevance), th.RelevanceFloor)
	out.Augmented = true
	return out
}

func concatCapped(first, second []string, limit int) []string {
	out := make([]string, 0, min(len(first)+len(second), limit))
	for _, list := range [][]string{first, second} {
		for _, s := range list {
			if len(out) == limit {
				return out
			}
			out = append(out, s)
		}
	}
	return out
}

func withDefaultThresholds(t pc.Thresholds) pc.Thresholds {
	d := pc.DefaultThresholds()
	if t.RelevanceFloor <= 0 {
		t.RelevanceFloor = d.RelevanceFloor
	}
	if t.AIRelevantThreshold <= 0 {
		t.AIRelevantThreshold = d.AIRelevantThreshold
	}
	return t
}
