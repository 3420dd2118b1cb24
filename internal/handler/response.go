package handler

// Response helpers shared by every handler.
//
// Every error response from the API has the same shape:
//
//	{"error": "not_found", "message": "snippet not found with id abc123"}
//
// and validation failures additionally carry per-field details:
//
//	{"error": "validation_error", "message": "...",
//	 "fields": [{"field": "name", "message": "name must be 3-25 characters"}]}
//
// so a form can highlight every invalid field from one response.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/snippetshare/internal/apperror"
)

// FieldError is one field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse is the standard error format returned by all API endpoints.
type ErrorResponse struct {
	Error   string       `json:"error"`
	Message string       `json:"message"`
	Fields  []FieldError `json:"fields,omitempty"`
}

// writeJSON sends a JSON response with the given status code.
// Headers and status must be written before the body — once Encode writes,
// the headers are on the wire.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to the appropriate HTTP status code.
// This is the only place that translation happens — the service layer never
// sees HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	// Multi-field validation failures carry their field list across.
	var verr *apperror.ValidationErrors
	if errors.As(err, &verr) {
		fields := make([]FieldError, 0, len(verr.Fields))
		for _, f := range verr.Fields {
			fields = append(fields, FieldError{Field: f.Field, Message: f.Message})
		}
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: verr.Error(),
			Fields:  fields,
		})
		return
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		errorType := "internal_error"

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			errorType = "validation_error"
		case errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusUnauthorized
			errorType = "unauthorized"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			errorType = "not_found"
		case errors.Is(err, apperror.ErrForbidden):
			status = http.StatusForbidden
			errorType = "forbidden"
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
			errorType = "conflict"
		}

		resp := ErrorResponse{
			Error:   errorType,
			Message: appErr.Message,
		}
		if appErr.Field != "" {
			resp.Fields = []FieldError{{Field: appErr.Field, Message: appErr.Message}}
		}
		writeJSON(w, status, resp)
		return
	}

	// Unknown error — generic 500. Never leak internals (SQL, paths) to the
	// client; the details were already logged where the error happened.
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}
