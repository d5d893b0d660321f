package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeUnauthorized = "unauthorized"
	CodeForbidden    = "forbidden"
	CodeValidation   = "validation"
	CodeNotFound     = "not_found"
	CodeInternal     = "internal"
)

// Error is a structured application error carrying the HTTP status that
// should be reported for it.
type Error struct {
	Code    string
	Status  int
	Message string
	Cause   error
}

// New creates a new Error.
func New(code string, status int, message string, cause error) *Error {
	return &Error{Code: code, Status: status, Message: message, Cause: cause}
}

// Validation builds a 400 validation error.
func Validation(message string) *Error {
	return New(CodeValidation, http.StatusBadRequest, message, nil)
}

// NotFound builds a 404 error.
func NotFound(message string) *Error {
	return New(CodeNotFound, http.StatusNotFound, message, nil)
}

// Forbidden builds a 403 error.
func Forbidden(message string) *Error {
	return New(CodeForbidden, http.StatusForbidden, message, nil)
}

// Internal builds a 500 error wrapping the cause. The cause is kept for
// logging but never written to the response.
func Internal(message string, cause error) *Error {
	return New(CodeInternal, http.StatusInternalServerError, message, cause)
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

// Unwrap returns the root cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// As extracts an *Error if present anywhere in the chain.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}
