package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.opentelemetry.io/otel/attribute"

	"github.com/pitabwire/assetattr/internal/observability"
	"github.com/pitabwire/assetattr/internal/openapi"
	"github.com/pitabwire/assetattr/model"
)

// decodeBody reads the request body, validates it against the operation's
// request schema and decodes it into dst. On failure the error response has
// already been written and false is returned.
func (h *handlers) decodeBody(w http.ResponseWriter, r *http.Request, operationID string, dst any) bool {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, r, model.NewBadRequestError("request body too large"))
			return false
		}
		WriteError(w, r, model.NewBadRequestError("reading request body failed"))
		return false
	}

	var raw any
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &raw); err != nil {
			WriteError(w, r, model.NewBadRequestError("invalid JSON body"))
			return false
		}
	}

	if verrs := h.api.ValidateRequest(operationID, raw); len(verrs) > 0 {
		if h.metrics != nil {
			h.metrics.RecordRequestInvalid(observability.RoutePattern(r))
		}
		WriteError(w, r, model.NewInvalidInputError("request body failed validation", fieldErrors(verrs)...))
		return false
	}

	if err := json.Unmarshal(data, dst); err != nil {
		WriteError(w, r, model.NewBadRequestError("invalid JSON body"))
		return false
	}
	return true
}

func fieldErrors(verrs []openapi.ValidationError) []model.FieldError {
	out := make([]model.FieldError, 0, len(verrs))
	for _, ve := range verrs {
		fe := model.FieldError{Field: ve.Field, Code: model.FieldInvalid, Message: ve.Message}
		if ve.Missing {
			fe.Code = model.FieldRequired
		}
		if fe.Field == "" {
			fe.Field = "body"
		}
		out = append(out, fe)
	}
	return out
}

// traced runs fn inside a span named after the catalog operation.
func traced(r *http.Request, operation string, fn func(context.Context) error, attrs ...attribute.KeyValue) error {
	attrs = append(attrs, observability.AttrOperation.String(operation))
	ctx, span := observability.StartSpan(r.Context(), "catalog."+operation, attrs...)
	err := fn(ctx)
	observability.EndSpanWithError(span, err)
	return err
}

// nullableString distinguishes an absent JSON member from an explicit null.
type nullableString struct {
	Set   bool
	Value *string
}

func (n *nullableString) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	n.Value = &s
	return nil
}
