package comparison

import (
	"context"

	"github.com/turtacn/PolicyInsight/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/PolicyInsight/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PolicyInsight/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/PolicyInsight/pkg/errors"
)

// RegenerationHandler consumes regeneration requests and runs them.
type RegenerationHandler struct {
	svc     Service
	metrics *prometheus.ComparisonMetrics
	logger  logging.Logger
}

// NewRegenerationHandler creates a handler over svc.
func NewRegenerationHandler(svc Service, metrics *prometheus.ComparisonMetrics, logger logging.Logger) *RegenerationHandler {
	return &RegenerationHandler{svc: svc, metrics: metrics, logger: logger}
}

// Handle implements kafka.MessageHandler. Requests that can never succeed
// (malformed, deleted comparison, lost ownership, already running) are
// acknowledged; other failures are returned so the consumer retries them.
func (h *RegenerationHandler) Handle(ctx context.Context, msg *kafka.Message) error {
	req, err := kafka.DecodeRegenerationRequest(msg)
	if err != nil {
		h.metrics.RecordEvent(msg.Topic, err)
		h.logger.Warn("dropping malformed regeneration request",
			logging.Int64("offset", msg.Offset),
			logging.Err(err))
		return nil
	}

	ctx = logging.ContextWithUserID(ctx, req.UserID)
	if traceID := msg.Headers["trace_id"]; traceID != "" {
		ctx = logging.ContextWithRequestID(ctx, traceID)
	}

	_, err = h.svc.RegenerateInsights(ctx, req.UserID, req.ComparisonID)
	h.metrics.RecordEvent(msg.Topic, err)
	switch {
	case err == nil:
		return nil
	case errors.IsNotFound(err), errors.IsValidation(err), errors.IsConflict(err):
		logging.WithContext(ctx, h.logger).Warn("regeneration request skipped",
			logging.String("comparison_id", req.ComparisonID),
			logging.Err(err))
		return nil
	default:
		return err
	}
}

//Personal.AI order the ending
