// Package apperr defines the error kinds surfaced by questline services.
// Adapters translate the kind into a transport status; the message is safe to
// show to clients, the wrapped cause is for logs only.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies an application error.
type Code string

const (
	CodeInvalidInput      Code = "INVALID_INPUT"
	CodeNotFound          Code = "NOT_FOUND"
	CodeInvalidTransition Code = "INVALID_TRANSITION"
	CodeGenerationFailed  Code = "GENERATION_FAILED"
	CodeUnauthorized      Code = "UNAUTHORIZED"
	CodeRateLimited       Code = "RATE_LIMIT_EXCEEDED"
	CodeInternal          Code = "INTERNAL_ERROR"
)

// Error is a classified application error.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Validation reports malformed or missing client input.
func Validation(message string) *Error {
	return &Error{Code: CodeInvalidInput, Message: message}
}

// NotFound reports a missing resource, or one owned by another user.
func NotFound(message string) *Error {
	return &Error{Code: CodeNotFound, Message: message}
}

// InvalidTransition reports a state-machine guard failure.
func InvalidTransition(reason string) *Error {
	return &Error{Code: CodeInvalidTransition, Message: reason}
}

// Generation reports a failed or malformed content-oracle response.
func Generation(cause error) *Error {
	return &Error{Code: CodeGenerationFailed, Message: "failed to generate roadmap", Err: cause}
}

// Unauthorized reports a missing or invalid identity.
func Unauthorized(message string) *Error {
	return &Error{Code: CodeUnauthorized, Message: message}
}

// RateLimited reports that the caller exceeded its request budget.
func RateLimited() *Error {
	return &Error{Code: CodeRateLimited, Message: "rate limit exceeded"}
}

// Internal wraps an unexpected failure. The cause is never shown to clients.
func Internal(cause error) *Error {
	return &Error{Code: CodeInternal, Message: "internal server error", Err: cause}
}

// As extracts an *Error from the chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// CodeOf returns the error's code, or CodeInternal for unclassified errors.
func CodeOf(err error) Code {
	if appErr, ok := As(err); ok {
		return appErr.Code
	}
	return CodeInternal
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	if err == nil {
		return false
	}
	return CodeOf(err) == code
}

// HTTPStatus maps a code to its transport status.
func HTTPStatus(code Code) int {
	switch code {
	case CodeInvalidInput:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidTransition:
		return http.StatusConflict
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeGenerationFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the client-safe message for err.
func PublicMessage(err error) string {
	if appErr, ok := As(err); ok {
		return appErr.Message
	}
	return "internal server error"
}
