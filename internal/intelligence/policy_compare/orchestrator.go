package policy_compare

import (
	"context"
	"time"

	"github.com/turtacn/PolicyInsight/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PolicyInsight/internal/infrastructure/monitoring/prometheus"
)

// Augmenter enriches a rule-based result with model-generated insights.
// It returns base unchanged and false whenever augmentation does not happen.
type Augmenter interface {
	Augment(ctx context.Context, a, b DocumentAnalysis, base ComparisonResult) (ComparisonResult, bool)
}

// CompareOption adjusts a single Orchestrator.Compare call.
type CompareOption func(*compareOptions)

type compareOptions struct {
	withAI bool
}

// WithoutAI skips augmentation for one call.
func WithoutAI() CompareOption {
	return func(o *compareOptions) { o.withAI = false }
}

// WithAI sets whether augmentation runs for one call.
func WithAI(enabled bool) CompareOption {
	return func(o *compareOptions) { o.withAI = enabled }
}

// Orchestrator validates inputs, runs the Engine and, when configured, the
// Augmenter.
type Orchestrator struct {
	engine    *Engine
	augmenter Augmenter
	metrics   *prometheus.ComparisonMetrics
	logger    logging.Logger
}

// NewOrchestrator wires an Orchestrator. augmenter and metrics may be nil.
func NewOrchestrator(engine *Engine, augmenter Augmenter, metrics *prometheus.ComparisonMetrics, logger logging.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if engine == nil {
		engine = NewEngine(DefaultThresholds(), logger)
	}
	return &Orchestrator{engine: engine, augmenter: augmenter, metrics: metrics, logger: logger}
}

// Engine exposes the rule engine, used by callers that only need analyses.
func (o *Orchestrator) Engine() *Engine { return o.engine }

// Compare runs the full comparison of two documents. Only a missing title
// is an error; low-signal content still yields a scored result.
func (o *Orchestrator) Compare(ctx context.Context, doc1, doc2 DocumentInput, opts ...CompareOption) (ComparisonResult, error) {
	if err := doc1.Validate(); err != nil {
		return ComparisonResult{}, err
	}
	if err := doc2.Validate(); err != nil {
		return ComparisonResult{}, err
	}

	options := compareOptions{withAI: true}
	for _, opt := range opts {
		opt(&options)
	}

	start := time.Now()
	a, b := o.engine.Analyze(doc1), o.engine.Analyze(doc2)
	result := o.engine.CompareAnalyses(a, b)

	if options.withAI && o.augmenter != nil {
		if augmented, ok := o.augmenter.Augment(ctx, a, b, result); ok {
			result = augmented
		}
	}

	o.metrics.RecordComparison(string(result.Kind), nil, time.Since(start), result.RelevanceScore)
	o.logger.Info("comparison completed",
		logging.String("doc1", doc1.ID),
		logging.String("doc2", doc2.ID),
		logging.String("kind", string(result.Kind)),
		logging.Int("relevance_score", result.RelevanceScore),
		logging.Bool("augmented", result.Augmented),
		logging.Duration("elapsed", time.Since(start)))

	return result, nil
}
