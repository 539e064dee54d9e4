// Package transport contains the HTTP router, middleware chain, and all
// request handlers for the catalog API.
package transport

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/pitabwire/assetattr/internal/observability"
	"github.com/pitabwire/assetattr/model"
)

// statusForCode maps ErrorEnvelope codes to HTTP status codes.
var statusForCode = map[string]int{
	model.ErrBadRequest:                http.StatusBadRequest,
	model.ErrForbidden:                 http.StatusForbidden,
	model.ErrNotFound:                  http.StatusNotFound,
	model.ErrInvalidInput:              http.StatusUnprocessableEntity,
	model.ErrReferentialGuardViolation: http.StatusConflict,
	model.ErrImmutableEntity:           http.StatusForbidden,
	model.ErrInternalError:             http.StatusInternalServerError,
}

type errorResponse struct {
	Error *model.ErrorEnvelope `json:"error"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	if body != nil {
		json.NewEncoder(w).Encode(body)
	}
}

// WriteError writes an ErrorEnvelope as a JSON response with the correct
// HTTP status code. Errors that are not envelopes are logged and answered
// with a generic 500.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var ee *model.ErrorEnvelope
	if !errors.As(err, &ee) {
		observability.RequestLogger(r.Context(), zap.NewNop()).Error("unhandled error",
			zap.Error(err),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
		)
		ee = model.NewInternalError()
	}

	status := statusForCode[ee.Code]
	if status == 0 {
		status = http.StatusInternalServerError
	}

	out := *ee
	out.TraceID = observability.TraceIDFromContext(r.Context())
	WriteJSON(w, status, errorResponse{Error: &out})
}

// WriteNotFound writes a 404 error response.
func WriteNotFound(w http.ResponseWriter, r *http.Request, msg string) {
	WriteError(w, r, model.NewNotFoundError(msg))
}

// WriteNoContent writes an empty 204 response.
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
