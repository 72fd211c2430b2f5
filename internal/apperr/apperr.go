// Package apperr defines the error kinds surfaced by the career dashboard.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an Error.
type Kind string

// Error kinds.
const (
	KindConfiguration Kind = "CONFIGURATION_ERROR"
	KindValidation    Kind = "VALIDATION_ERROR"
	KindAuth          Kind = "AUTH_ERROR"
	KindExternal      Kind = "EXTERNAL_SERVICE_ERROR"
	KindParse         Kind = "PARSE_ERROR"
	KindNotFound      Kind = "NOT_FOUND"
)

// Error is a classified application error.
type Error struct {
	Kind       Kind
	Message    string
	StatusCode int
	Context    map[string]any
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// WithCause attaches an underlying error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// With adds a context key/value pair used in logs.
func (e *Error) With(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

func newError(kind Kind, status int, message string) *Error {
	return &Error{Kind: kind, Message: message, StatusCode: status}
}

// Configuration reports missing or invalid server-side configuration.
func Configuration(message string) *Error {
	return newError(KindConfiguration, http.StatusInternalServerError, message)
}

// Validation reports malformed user input.
func Validation(message string) *Error {
	return newError(KindValidation, http.StatusBadRequest, message)
}

// Auth reports that an operation needs a service that is not connected.
func Auth(message string) *Error {
	return newError(KindAuth, http.StatusUnauthorized, message)
}

// External reports a failed third-party call.
func External(message string, cause error) *Error {
	return newError(KindExternal, http.StatusBadGateway, message).WithCause(cause)
}

// Parse reports an AI response that did not match the expected shape.
func Parse(message string, cause error) *Error {
	return newError(KindParse, http.StatusBadGateway, message).WithCause(cause)
}

// NotFound reports a missing record.
func NotFound(message string) *Error {
	return newError(KindNotFound, http.StatusNotFound, message)
}

// KindOf returns the Kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// StatusOf maps err to an HTTP status code. Unclassified errors are 500.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) && e.StatusCode != 0 {
		return e.StatusCode
	}
	return http.StatusInternalServerError
}

// MessageOf returns the user-facing message of err. Causes of external and
// parse errors are kept out of responses.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}
