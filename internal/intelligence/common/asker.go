// Package common holds the model-access plumbing shared by the intelligence
// packages: the Asker capability and its HTTP, Gemini, caching and metrics
// implementations.
package common

import (
	"context"
	"time"

	"github.com/turtacn/PolicyInsight/internal/infrastructure/monitoring/prometheus"
)

// Asker sends one question to a question-answering model and returns the
// model's free-text answer.
type Asker interface {
	Ask(ctx context.Context, question string) (string, error)
	// Provider names the backend for metrics and logs.
	Provider() string
}

// Provider names.
const (
	ProviderHTTP   = "http"
	ProviderGemini = "gemini"
)

// instrumentedAsker records latency and outcome of every call.
type instrumentedAsker struct {
	next    Asker
	metrics *prometheus.ComparisonMetrics
}

// WithMetrics wraps next so each Ask is counted and timed.
func WithMetrics(next Asker, metrics *prometheus.ComparisonMetrics) Asker {
	if metrics == nil {
		return next
	}
	return &instrumentedAsker{next: next, metrics: metrics}
}

func (a *instrumentedAsker) Ask(ctx context.Context, question string) (string, error) {
	start := time.Now()
	answer, err := a.next.Ask(ctx, question)
	a.metrics.RecordAICall(a.next.Provider(), err, time.Since(start))
	return answer, err
}

func (a *instrumentedAsker) Provider() string { return a.next.Provider() }
