// Package errors provides standardized domain errors with codes for the Shelfmark API.
//
// Usage:
//
//	// In services - return typed errors
//	if resp.StatusCode == http.StatusUnauthorized {
//	    return errors.DestinationAuth("destination token rejected")
//	}
//
//	// In handlers - check with errors.Is
//	if errors.Is(err, errors.ErrDestinationNotFound) {
//	    response.NotFound(w, err.Error(), logger)
//	    return
//	}
//
//	// Or use the Code directly for switch statements
//	var domainErr *errors.Error
//	if errors.As(err, &domainErr) {
//	    switch domainErr.Code {
//	    case errors.CodeDestinationAuth:
//	        response.Unauthorized(w, domainErr.Message, logger)
//	    case errors.CodeDuplicateAmbiguous:
//	        response.Conflict(w, domainErr.Message, logger)
//	    }
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the application.
const (
	CodeNotFound   Code = "NOT_FOUND"
	CodeValidation Code = "VALIDATION"
	CodeConflict   Code = "CONFLICT"
	CodeInternal   Code = "INTERNAL"

	// Reconciliation engine codes. Per-field codes (mapping, coercion,
	// date) are recoverable: the field is skipped and the session
	// continues. Destination codes propagate to the session boundary
	// unmodified in kind.
	CodeMappingUnavailable    Code = "MAPPING_UNAVAILABLE"
	CodeCoercionRejected      Code = "COERCION_REJECTED"
	CodeDateUnresolvable      Code = "DATE_UNRESOLVABLE"
	CodeDestinationAuth       Code = "DESTINATION_AUTH"
	CodeDestinationNotFound   Code = "DESTINATION_NOT_FOUND"
	CodeDestinationValidation Code = "DESTINATION_VALIDATION"
	CodeDuplicateAmbiguous    Code = "DUPLICATE_AMBIGUOUS"
)

// HTTPStatus returns the appropriate HTTP status code for an error code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound, CodeDestinationNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeDuplicateAmbiguous:
		return http.StatusConflict
	case CodeDestinationAuth:
		return http.StatusUnauthorized
	case CodeValidation, CodeCoercionRejected, CodeDateUnresolvable:
		return http.StatusBadRequest
	case CodeMappingUnavailable:
		return http.StatusUnprocessableEntity
	case CodeDestinationValidation:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error  // unexported, for wrapping
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error.
// Matches if target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithDetails returns a new error with additional details.
func (e *Error) WithDetails(details any) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		cause:   e.cause,
	}
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		cause:   err,
	}
}

// Sentinel errors for use with errors.Is().
var (
	ErrNotFound              = &Error{Code: CodeNotFound, Message: "not found"}
	ErrValidation            = &Error{Code: CodeValidation, Message: "validation error"}
	ErrConflict              = &Error{Code: CodeConflict, Message: "conflict"}
	ErrInternal              = &Error{Code: CodeInternal, Message: "internal error"}
	ErrMappingUnavailable    = &Error{Code: CodeMappingUnavailable, Message: "no compatible property found"}
	ErrCoercionRejected      = &Error{Code: CodeCoercionRejected, Message: "value cannot satisfy target kind"}
	ErrDateUnresolvable      = &Error{Code: CodeDateUnresolvable, Message: "no date or year recoverable"}
	ErrDestinationAuth       = &Error{Code: CodeDestinationAuth, Message: "destination credential rejected"}
	ErrDestinationNotFound   = &Error{Code: CodeDestinationNotFound, Message: "destination record or collection missing"}
	ErrDestinationValidation = &Error{Code: CodeDestinationValidation, Message: "payload rejected by destination"}
	ErrDuplicateAmbiguous    = &Error{Code: CodeDuplicateAmbiguous, Message: "duplicate decision required before write"}
)

// Constructor functions for creating errors with custom messages.

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// NotFoundf creates a not found error with formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// Validationf creates a validation error with formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// ValidationWithDetails creates a validation error with details.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// Conflict creates a conflict error.
func Conflict(msg string) *Error {
	return &Error{Code: CodeConflict, Message: msg}
}

// Conflictf creates a conflict error with formatted message.
func Conflictf(format string, args ...any) *Error {
	return &Error{Code: CodeConflict, Message: fmt.Sprintf(format, args...)}
}

// Internal creates an internal error.
func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg}
}

// Internalf creates an internal error with formatted message.
func Internalf(format string, args ...any) *Error {
	return &Error{Code: CodeInternal, Message: fmt.Sprintf(format, args...)}
}

// MappingUnavailable creates a mapping unavailable error.
func MappingUnavailable(msg string) *Error {
	return &Error{Code: CodeMappingUnavailable, Message: msg}
}

// CoercionRejected creates a coercion rejected error.
func CoercionRejected(msg string) *Error {
	return &Error{Code: CodeCoercionRejected, Message: msg}
}

// DateUnresolvable creates a date unresolvable error.
func DateUnresolvable(msg string) *Error {
	return &Error{Code: CodeDateUnresolvable, Message: msg}
}

// DestinationAuth creates a destination auth error.
func DestinationAuth(msg string) *Error {
	return &Error{Code: CodeDestinationAuth, Message: msg}
}

// DestinationNotFound creates a destination not found error.
func DestinationNotFound(msg string) *Error {
	return &Error{Code: CodeDestinationNotFound, Message: msg}
}

// DestinationNotFoundf creates a destination not found error with formatted message.
func DestinationNotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeDestinationNotFound, Message: fmt.Sprintf(format, args...)}
}

// DestinationValidation creates a destination validation error carrying the
// service's raw diagnostic for display.
func DestinationValidation(msg string, diagnostic any) *Error {
	return &Error{Code: CodeDestinationValidation, Message: msg, Details: diagnostic}
}

// DuplicateAmbiguous creates a duplicate ambiguous error.
func DuplicateAmbiguous(msg string) *Error {
	return &Error{Code: CodeDuplicateAmbiguous, Message: msg}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// Wrapf wraps an error with a code and formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}
