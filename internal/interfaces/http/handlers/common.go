package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/turtacn/PolicyInsight/internal/interfaces/http/middleware"
	"github.com/turtacn/PolicyInsight/pkg/errors"
)

// maxBodyBytes caps request bodies; comparison requests carry two ids.
const maxBodyBytes = 1 << 20

// getUserIDFromContext extracts user ID from request context (set by auth middleware).
func getUserIDFromContext(r *http.Request) string {
	return middleware.ContextGetUserID(r.Context())
}

// parsePagination extracts page and page_size from query parameters.
// Values that do not parse are left at zero for the service to default.
func parsePagination(r *http.Request) (int, int) {
	var page, pageSize int
	if v := r.URL.Query().Get("page"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			page = p
		}
	}
	if v := r.URL.Query().Get("page_size"); v != "" {
		if ps, err := strconv.Atoi(v); err == nil {
			pageSize = ps
		}
	}
	return page, pageSize
}

// decodeJSON reads a JSON request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return errors.New(errors.ErrCodeComparisonInputInvalid, "request body is required")
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return errors.Wrap(err, errors.ErrCodeComparisonInputInvalid, "invalid request body")
	}
	return nil
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeAppError maps an error to its HTTP status. Server-side failures are
// reported with the code's generic message only.
func writeAppError(w http.ResponseWriter, err error) {
	var ae *errors.AppError
	if !errors.As(err, &ae) {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Code:    string(errors.ErrCodeInternal),
			Message: "internal server error",
		})
		return
	}

	status := errors.HTTPStatusForCode(ae.Code)
	msg := ae.Message
	if status >= http.StatusInternalServerError {
		msg = errors.DefaultMessageForCode(ae.Code)
	}
	writeJSON(w, status, ErrorResponse{Code: string(ae.Code), Message: msg})
}

//Personal.AI order the ending
