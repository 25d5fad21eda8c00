package prometheus

import (
	"strconv"
	"time"
)

// Outcome labels shared by the comparison counters.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Default buckets.
var (
	DefaultHTTPDurationBuckets       = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120}
	DefaultComparisonDurationBuckets = []float64{.001, .005, .01, .05, .1, .5, 1, 5, 15, 30, 60, 120}
	DefaultAIDurationBuckets         = []float64{.5, 1, 2, 5, 10, 30, 60, 120}
	RelevanceScoreBuckets            = []float64{20, 30, 40, 50, 60, 70, 80, 90, 100}
)

// ComparisonMetrics groups every metric PolicyInsight exports.
type ComparisonMetrics struct {
	ComparisonsTotal   CounterVec   // kind, outcome
	ComparisonDuration HistogramVec // kind
	RelevanceScore     HistogramVec // kind

	AICallsTotal     CounterVec   // provider, status
	AICallDuration   HistogramVec // provider
	AIFallbacksTotal CounterVec   // reason
	AICacheTotal     CounterVec   // result

	EventsTotal CounterVec // topic, status

	HTTPRequestsTotal   CounterVec   // method, route, status
	HTTPRequestDuration HistogramVec // method, route
	HTTPActiveRequests  GaugeVec
}

// NewComparisonMetrics registers all metrics on c.
func NewComparisonMetrics(c MetricsCollector) *ComparisonMetrics {
	return &ComparisonMetrics{
		ComparisonsTotal:   c.RegisterCounter("comparisons_total", "Policy comparisons performed", "kind", "outcome"),
		ComparisonDuration: c.RegisterHistogram("comparison_duration_seconds", "Comparison latency", DefaultComparisonDurationBuckets, "kind"),
		RelevanceScore:     c.RegisterHistogram("comparison_relevance_score", "Relevance scores produced", RelevanceScoreBuckets, "kind"),

		AICallsTotal:     c.RegisterCounter("ai_calls_total", "Calls to the question-answering service", "provider", "status"),
		AICallDuration:   c.RegisterHistogram("ai_call_duration_seconds", "AI call latency", DefaultAIDurationBuckets, "provider"),
		AIFallbacksTotal: c.RegisterCounter("ai_fallbacks_total", "Comparisons that fell back to rule-only output", "reason"),
		AICacheTotal:     c.RegisterCounter("ai_cache_total", "AI answer cache lookups", "result"),

		EventsTotal: c.RegisterCounter("events_total", "Comparison events published or consumed", "topic", "status"),

		HTTPRequestsTotal:   c.RegisterCounter("http_requests_total", "HTTP requests served", "method", "route", "status"),
		HTTPRequestDuration: c.RegisterHistogram("http_request_duration_seconds", "HTTP request latency", DefaultHTTPDurationBuckets, "method", "route"),
		HTTPActiveRequests:  c.RegisterGauge("http_active_requests", "In-flight HTTP requests"),
	}
}

// NewNoopComparisonMetrics returns metrics that record nothing.
func NewNoopComparisonMetrics() *ComparisonMetrics {
	return &ComparisonMetrics{
		ComparisonsTotal:    noopCounterVec{},
		ComparisonDuration:  noopHistogramVec{},
		RelevanceScore:      noopHistogramVec{},
		AICallsTotal:        noopCounterVec{},
		AICallDuration:      noopHistogramVec{},
		AIFallbacksTotal:    noopCounterVec{},
		AICacheTotal:        noopCounterVec{},
		EventsTotal:         noopCounterVec{},
		HTTPRequestsTotal:   noopCounterVec{},
		HTTPRequestDuration: noopHistogramVec{},
		HTTPActiveRequests:  noopGaugeVec{},
	}
}

// RecordComparison records one finished comparison. A nil receiver is a no-op.
func (m *ComparisonMetrics) RecordComparison(kind string, err error, d time.Duration, score int) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	m.ComparisonsTotal.WithLabelValues(kind, outcome).Inc()
	m.ComparisonDuration.WithLabelValues(kind).Observe(d.Seconds())
	if err == nil {
		m.RelevanceScore.WithLabelValues(kind).Observe(float64(score))
	}
}

// RecordAICall records one AI round trip.
func (m *ComparisonMetrics) RecordAICall(provider string, err error, d time.Duration) {
	if m == nil {
		return
	}
	status := OutcomeSuccess
	if err != nil {
		status = OutcomeError
	}
	m.AICallsTotal.WithLabelValues(provider, status).Inc()
	m.AICallDuration.WithLabelValues(provider).Observe(d.Seconds())
}

// RecordAIFallback counts a comparison that kept the rule-only result.
func (m *ComparisonMetrics) RecordAIFallback(reason string) {
	if m == nil {
		return
	}
	m.AIFallbacksTotal.WithLabelValues(reason).Inc()
}

// RecordAICache counts a cache hit or miss.
func (m *ComparisonMetrics) RecordAICache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.AICacheTotal.WithLabelValues(result).Inc()
}

// RecordEvent counts a published or consumed event.
func (m *ComparisonMetrics) RecordEvent(topic string, err error) {
	if m == nil {
		return
	}
	status := OutcomeSuccess
	if err != nil {
		status = OutcomeError
	}
	m.EventsTotal.WithLabelValues(topic, status).Inc()
}

// RecordHTTPRequest records a served HTTP request.
func (m *ComparisonMetrics) RecordHTTPRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

//Personal.AI order the ending
