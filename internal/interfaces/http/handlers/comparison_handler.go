package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/turtacn/PolicyInsight/internal/application/comparison"
	"github.com/turtacn/PolicyInsight/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PolicyInsight/pkg/errors"
)

// ComparisonHandler handles HTTP requests for policy comparisons.
type ComparisonHandler struct {
	svc    comparison.Service
	logger logging.Logger
}

// NewComparisonHandler creates a new ComparisonHandler.
func NewComparisonHandler(svc comparison.Service, logger logging.Logger) *ComparisonHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &ComparisonHandler{svc: svc, logger: logger}
}

// RegenerationQueuedResponse is returned by an asynchronous regenerate request.
type RegenerationQueuedResponse struct {
	ComparisonID string `json:"comparison_id"`
	Status       string `json:"status"`
}

// requireUser writes 401 and returns "" when the request carries no user.
func requireUser(w http.ResponseWriter, r *http.Request) string {
	userID := getUserIDFromContext(r)
	if userID == "" {
		writeAppError(w, errors.New(errors.ErrCodeUnauthorized, "authentication required"))
	}
	return userID
}

// logFailure logs server-side failures; client errors are left to the
// request logger.
func (h *ComparisonHandler) logFailure(r *http.Request, msg string, err error, fields ...logging.Field) {
	if errors.HTTPStatusForCode(errors.GetCode(err)) < http.StatusInternalServerError {
		return
	}
	fields = append(fields, logging.Err(err))
	logging.WithContext(r.Context(), h.logger).Error(msg, fields...)
}

// Create handles POST /api/v1/policy-comparisons.
func (h *ComparisonHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}
	var req comparison.CreateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAppError(w, err)
		return
	}

	c, err := h.svc.Create(r.Context(), userID, &req)
	if err != nil {
		h.logFailure(r, "failed to create comparison", err)
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// QuickCompare handles POST /api/v1/policy-comparisons/compare/quick.
func (h *ComparisonHandler) QuickCompare(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}
	var req comparison.QuickCompareRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAppError(w, err)
		return
	}

	res, err := h.svc.QuickCompare(r.Context(), userID, &req)
	if err != nil {
		h.logFailure(r, "failed to run quick comparison", err)
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// List handles GET /api/v1/policy-comparisons.
func (h *ComparisonHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}
	page, pageSize := parsePagination(r)

	result, err := h.svc.List(r.Context(), userID, page, pageSize)
	if err != nil {
		h.logFailure(r, "failed to list comparisons", err)
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Get handles GET /api/v1/policy-comparisons/{comparisonID}.
func (h *ComparisonHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}
	id := chi.URLParam(r, "comparisonID")

	c, err := h.svc.Get(r.Context(), userID, id)
	if err != nil {
		h.logFailure(r, "failed to get comparison", err, logging.String("comparison_id", id))
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// RegenerateInsights handles PATCH /api/v1/policy-comparisons/{comparisonID}/regenerate-insights.
// With ?async=true the job is queued and 202 is returned.
func (h *ComparisonHandler) RegenerateInsights(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}
	id := chi.URLParam(r, "comparisonID")

	async := false
	if v := r.URL.Query().Get("async"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeAppError(w, errors.Newf(errors.ErrCodeValidation, "invalid async flag %q", v))
			return
		}
		async = b
	}

	if async {
		if err := h.svc.RequestRegeneration(r.Context(), userID, id); err != nil {
			h.logFailure(r, "failed to queue insights regeneration", err, logging.String("comparison_id", id))
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, RegenerationQueuedResponse{ComparisonID: id, Status: "queued"})
		return
	}

	c, err := h.svc.RegenerateInsights(r.Context(), userID, id)
	if err != nil {
		h.logFailure(r, "failed to regenerate insights", err, logging.String("comparison_id", id))
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// Delete handles DELETE /api/v1/policy-comparisons/{comparisonID}.
func (h *ComparisonHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}
	id := chi.URLParam(r, "comparisonID")

	if err := h.svc.Delete(r.Context(), userID, id); err != nil {
		h.logFailure(r, "failed to delete comparison", err, logging.String("comparison_id", id))
		writeAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

//Personal.AI order the ending
