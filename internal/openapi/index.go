// Package openapi carries the embedded API document of the HTTP surface and
// validates request bodies against it before they are decoded.
package openapi

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed api.yaml
var apiDocument []byte

// Operation is one method on one path of the document.
type Operation struct {
	ID           string
	Method       string
	PathTemplate string
	Body         *openapi3.Schema
	BodyRequired bool
}

// ValidationError describes a schema validation error.
type ValidationError struct {
	Field   string
	Message string
	Missing bool
}

// Index is an in-memory index of the document's operations.
type Index struct {
	doc        *openapi3.T
	operations map[string]Operation // key: operationId
	byRoute    map[string]string    // key: "METHOD path" → operationId
}

// Load parses and validates the embedded document.
func Load() (*Index, error) {
	return LoadData(apiDocument)
}

// LoadData parses and validates a document and indexes its operations.
func LoadData(data []byte) (*Index, error) {
	loader := openapi3.NewLoader()
	loader.IsExternalRefsAllowed = false

	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("openapi: loading document: %w", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("openapi: validating document: %w", err)
	}

	idx := &Index{
		doc:        doc,
		operations: make(map[string]Operation),
		byRoute:    make(map[string]string),
	}
	for path, pathItem := range doc.Paths.Map() {
		for method, op := range pathItem.Operations() {
			if op.OperationID == "" {
				continue
			}
			indexed := Operation{
				ID:           op.OperationID,
				Method:       method,
				PathTemplate: path,
			}
			if op.RequestBody != nil && op.RequestBody.Value != nil {
				rb := op.RequestBody.Value
				indexed.BodyRequired = rb.Required
				if ct := rb.Content.Get("application/json"); ct != nil && ct.Schema != nil {
					indexed.Body = ct.Schema.Value
				}
			}
			idx.operations[op.OperationID] = indexed
			idx.byRoute[method+" "+path] = op.OperationID
		}
	}
	return idx, nil
}

// Operation returns the indexed operation with the given id.
func (idx *Index) Operation(operationID string) (Operation, bool) {
	op, ok := idx.operations[operationID]
	return op, ok
}

// Lookup finds the operation registered for a method and path template.
func (idx *Index) Lookup(method, pathTemplate string) (Operation, bool) {
	id, ok := idx.byRoute[strings.ToUpper(method)+" "+pathTemplate]
	if !ok {
		return Operation{}, false
	}
	return idx.operations[id], true
}

// OperationIDs returns all operation ids, sorted.
func (idx *Index) OperationIDs() []string {
	ids := make([]string, 0, len(idx.operations))
	for id := range idx.operations {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Document returns the document encoded as JSON.
func (idx *Index) Document() ([]byte, error) {
	return idx.doc.MarshalJSON()
}

// ValidateRequest validates a decoded JSON body against the operation's
// request schema. A nil body means the request had none. Returns nil when
// the body is acceptable.
func (idx *Index) ValidateRequest(operationID string, body any) []ValidationError {
	op, ok := idx.operations[operationID]
	if !ok {
		return []ValidationError{{Message: fmt.Sprintf("operation %s not found", operationID)}}
	}
	if op.Body == nil {
		return nil
	}
	if body == nil {
		if op.BodyRequired {
			return []ValidationError{{Message: "request body is required", Missing: true}}
		}
		return nil
	}

	err := op.Body.VisitJSON(body, openapi3.MultiErrors())
	if err == nil {
		return nil
	}

	var errs []ValidationError
	for _, e := range flatten(err) {
		errs = append(errs, toValidationError(e))
	}
	sort.SliceStable(errs, func(i, j int) bool { return errs[i].Field < errs[j].Field })
	return errs
}

// flatten unwraps nested MultiErrors produced by array and object visits.
func flatten(err error) []error {
	var multi openapi3.MultiError
	if !errors.As(err, &multi) {
		return []error{err}
	}
	var out []error
	for _, e := range multi {
		out = append(out, flatten(e)...)
	}
	return out
}

func toValidationError(err error) ValidationError {
	var se *openapi3.SchemaError
	if !errors.As(err, &se) {
		return ValidationError{Message: err.Error()}
	}
	return ValidationError{
		Field:   jsonField(se.JSONPointer()),
		Message: se.Reason,
		Missing: se.SchemaField == "required",
	}
}

// jsonField renders ["dropdown_options", "1"] as "dropdown_options[1]".
func jsonField(pointer []string) string {
	var b strings.Builder
	for _, part := range pointer {
		if part != "" && strings.Trim(part, "0123456789") == "" {
			b.WriteString("[" + part + "]")
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}
