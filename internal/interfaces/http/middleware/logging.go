package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/turtacn/PolicyInsight/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PolicyInsight/internal/infrastructure/monitoring/prometheus"
)

// LoggingConfig holds configuration for the request logging middleware.
type LoggingConfig struct {
	// SkipPaths are not logged (probes, metrics scrapes). They are still counted.
	SkipPaths []string

	// SlowThreshold is the duration above which a request is logged as slow.
	SlowThreshold time.Duration
}

// DefaultLoggingConfig returns the logging configuration used by the API server.
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		SkipPaths:     []string{"/healthz", "/readyz", "/metrics"},
		SlowThreshold: 10 * time.Second,
	}
}

// LoggingMiddleware logs each request and records its metrics.
type LoggingMiddleware struct {
	logger  logging.Logger
	metrics *prometheus.ComparisonMetrics
	config  LoggingConfig
	skip    map[string]bool
}

// NewLoggingMiddleware creates a LoggingMiddleware. metrics may be nil.
func NewLoggingMiddleware(logger logging.Logger, metrics *prometheus.ComparisonMetrics, config LoggingConfig) *LoggingMiddleware {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	skip := make(map[string]bool, len(config.SkipPaths))
	for _, p := range config.SkipPaths {
		skip[p] = true
	}
	return &LoggingMiddleware{logger: logger, metrics: metrics, config: config, skip: skip}
}

// Handler must run after chi's RequestID middleware so the id can be
// echoed and attached to the logging context.
func (m *LoggingMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ctx := r.Context()
		requestID := chimw.GetReqID(ctx)
		if requestID != "" {
			w.Header().Set("X-Request-ID", requestID)
			ctx = logging.ContextWithRequestID(ctx, requestID)
			r = r.WithContext(ctx)
		}

		if m.metrics != nil {
			m.metrics.HTTPActiveRequests.WithLabelValues().Inc()
			defer m.metrics.HTTPActiveRequests.WithLabelValues().Dec()
		}

		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		duration := time.Since(start)
		m.metrics.RecordHTTPRequest(r.Method, routePattern(r), status, duration)

		if m.skip[r.URL.Path] {
			return
		}

		fields := []logging.Field{
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Int("status", status),
			logging.Duration("duration", duration),
			logging.Int("bytes", ww.BytesWritten()),
			logging.String("remote_addr", r.RemoteAddr),
		}
		if r.URL.RawQuery != "" {
			fields = append(fields, logging.String("query", r.URL.RawQuery))
		}
		if requestID != "" {
			fields = append(fields, logging.String("request_id", requestID))
		}

		switch {
		case status >= 500:
			m.logger.Error("HTTP request completed with server error", fields...)
		case status >= 400:
			m.logger.Warn("HTTP request completed with client error", fields...)
		case m.config.SlowThreshold > 0 && duration >= m.config.SlowThreshold:
			m.logger.Warn("HTTP request completed (slow)", fields...)
		default:
			m.logger.Info("HTTP request completed", fields...)
		}
	})
}

// routePattern returns the matched chi pattern, never the raw path.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

//Personal.AI order the ending
