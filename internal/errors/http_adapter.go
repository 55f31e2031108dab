package errors

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// HTTPErrorAdapter maps classified errors to HTTP status codes and
// renders a uniform JSON error payload.
type HTTPErrorAdapter struct {
	logger *slog.Logger
}

// NewHTTPErrorAdapter creates an adapter; a nil logger falls back to
// the default package logger.
func NewHTTPErrorAdapter(logger *slog.Logger) *HTTPErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPErrorAdapter{logger: logger}
}

// HTTPErrorResponse is the standard JSON error payload.
type HTTPErrorResponse struct {
	Error     string        `json:"error"`
	Category  Category      `json:"category,omitempty"`
	Retryable bool          `json:"retryable,omitempty"`
	Details   ContextFields `json:"details,omitempty"`
}

// StatusCodeFor determines the HTTP status for an error based on its
// category. Unclassified errors map to 500.
func (a *HTTPErrorAdapter) StatusCodeFor(err error) int {
	if err == nil {
		return http.StatusOK
	}
	switch GetCategory(err) {
	case CategoryValidation, CategoryConfig:
		return http.StatusBadRequest
	case CategoryNotFound:
		return http.StatusNotFound
	case CategoryExternal, CategoryTransport:
		return http.StatusBadGateway
	case CategoryTimeout:
		return http.StatusGatewayTimeout
	case CategoryUpstream:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// WriteErrorResponse writes the JSON error payload and logs it at a
// level matching its severity.
func (a *HTTPErrorAdapter) WriteErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		w.WriteHeader(http.StatusOK)
		return
	}

	status := a.StatusCodeFor(err)
	payload := HTTPErrorResponse{Error: err.Error()}
	var e *Error
	if asErr(err, &e) {
		payload.Error = e.Message
		payload.Category = e.Category
		payload.Retryable = e.Retryable
		payload.Details = e.Context
	}

	if status >= http.StatusInternalServerError {
		a.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		a.logger.Warn("request rejected", "method", r.Method, "path", r.URL.Path, "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encodeErr := json.NewEncoder(w).Encode(payload); encodeErr != nil {
		a.logger.Error("failed to encode error response", "error", encodeErr)
	}
}
