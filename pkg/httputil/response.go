package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	apperrors "github.com/utafrali/accounts/pkg/errors"
	"github.com/utafrali/accounts/pkg/logger"
	"github.com/utafrali/accounts/pkg/validator"
)

// Response is the JSON envelope used by every endpoint. Successful responses
// carry Message and optionally Data; failures carry Error, Code and optional
// Details.
type Response struct {
	Message   string         `json:"message,omitempty"`
	Data      any            `json:"data,omitempty"`
	Error     string         `json:"error,omitempty"`
	Code      string         `json:"code,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteSuccess writes a {message, data} envelope.
func WriteSuccess(w http.ResponseWriter, status int, message string, data any) {
	WriteJSON(w, status, Response{Message: message, Data: data})
}

// WriteError writes a standardized error response based on the error type.
// Internal errors are logged with the given attrs (operation name and the
// identifiers involved) and returned as 500 with the underlying message in
// details. It prefers the request-scoped logger from context over fallback.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger, attrs ...any) {
	l := logger.FromContext(r.Context())
	if l == slog.Default() && fallback != nil {
		l = fallback
	}

	requestID := logger.CorrelationIDFromContext(r.Context())

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			appErr = apperrors.Empty("resource not found")
		case errors.Is(err, apperrors.ErrAlreadyExists):
			appErr = &apperrors.AppError{Code: "ALREADY_EXISTS", Message: "resource already exists", Status: http.StatusConflict}
		case errors.Is(err, apperrors.ErrInvalidInput):
			appErr = apperrors.InvalidInput(err.Error())
		default:
			appErr = apperrors.Internal(err)
		}
	}

	if appErr.Status == http.StatusInternalServerError {
		logAttrs := append([]any{
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		}, attrs...)
		l.ErrorContext(r.Context(), "internal error", logAttrs...)
	}

	WriteJSON(w, appErr.Status, Response{
		Error:     appErr.Message,
		Code:      appErr.Code,
		Details:   appErr.Details,
		RequestID: requestID,
	})
}

// WriteValidationError writes a 400 response for a request body that failed
// decoding or struct validation. Field-level messages are returned in details.
func WriteValidationError(w http.ResponseWriter, err error) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		details := map[string]any{"fields": valErr.Fields()}
		if missing := valErr.Missing(); len(missing) > 0 {
			details["missing"] = missing
		}
		WriteJSON(w, http.StatusBadRequest, Response{
			Error:   "request validation failed",
			Code:    "VALIDATION_ERROR",
			Details: details,
		})
		return
	}

	WriteJSON(w, http.StatusBadRequest, Response{
		Error: err.Error(),
		Code:  "INVALID_INPUT",
	})
}

// ParseID parses a positive integer identifier from a path parameter. If it
// is invalid, a 400 response with code INVALID_PARAMETER is written and false
// is returned, signaling the caller to return early.
func ParseID(w http.ResponseWriter, name, param string) (int64, bool) {
	id, err := strconv.ParseInt(param, 10, 64)
	if err != nil || id < 1 {
		WriteJSON(w, http.StatusBadRequest, Response{
			Error:   "invalid " + name + ": " + param,
			Code:    "INVALID_PARAMETER",
			Details: map[string]any{name: param},
		})
		return 0, false
	}
	return id, true
}
