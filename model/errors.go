package model

import (
	"errors"
	"fmt"
)

// Standard error codes.
const (
	ErrBadRequest    = "BAD_REQUEST"
	ErrNotFound      = "NOT_FOUND"
	ErrForbidden     = "FORBIDDEN"
	ErrInternalError = "INTERNAL_ERROR"
)

// Catalog-specific error codes.
const (
	ErrInvalidInput              = "INVALID_INPUT"
	ErrReferentialGuardViolation = "REFERENTIAL_GUARD_VIOLATION"
	ErrImmutableEntity           = "IMMUTABLE_ENTITY"
)

// Field-level detail codes.
const (
	FieldRequired = "REQUIRED"
	FieldInvalid  = "INVALID"
	FieldUnknown  = "UNKNOWN_REFERENCE"
)

// ErrorEnvelope is the error value returned by every catalog operation and
// the body of every error response. It implements the error interface.
type ErrorEnvelope struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details []FieldError `json:"details,omitempty"`
	TraceID string       `json:"trace_id,omitempty"`
}

// Error implements the error interface.
func (e *ErrorEnvelope) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// FieldError describes a field-level validation error.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// IsCode reports whether err is, or wraps, an ErrorEnvelope with the given code.
func IsCode(err error, code string) bool {
	var ee *ErrorEnvelope
	if errors.As(err, &ee) {
		return ee.Code == code
	}
	return false
}

// NewBadRequestError returns a BAD_REQUEST error.
func NewBadRequestError(msg string) *ErrorEnvelope {
	return &ErrorEnvelope{Code: ErrBadRequest, Message: msg}
}

// NewNotFoundError returns a NOT_FOUND error.
func NewNotFoundError(msg string) *ErrorEnvelope {
	return &ErrorEnvelope{Code: ErrNotFound, Message: msg}
}

// NewForbiddenError returns a FORBIDDEN error.
func NewForbiddenError(msg string) *ErrorEnvelope {
	return &ErrorEnvelope{Code: ErrForbidden, Message: msg}
}

// NewInvalidInputError returns an INVALID_INPUT error. Details are optional.
func NewInvalidInputError(msg string, details ...FieldError) *ErrorEnvelope {
	return &ErrorEnvelope{Code: ErrInvalidInput, Message: msg, Details: details}
}

// NewReferentialGuardError returns a REFERENTIAL_GUARD_VIOLATION error.
func NewReferentialGuardError(msg string) *ErrorEnvelope {
	return &ErrorEnvelope{Code: ErrReferentialGuardViolation, Message: msg}
}

// NewImmutableEntityError returns an IMMUTABLE_ENTITY error.
func NewImmutableEntityError(msg string) *ErrorEnvelope {
	return &ErrorEnvelope{Code: ErrImmutableEntity, Message: msg}
}

// NewInternalError returns an INTERNAL_ERROR.
func NewInternalError() *ErrorEnvelope {
	return &ErrorEnvelope{
		Code:    ErrInternalError,
		Message: "An unexpected error occurred",
	}
}
