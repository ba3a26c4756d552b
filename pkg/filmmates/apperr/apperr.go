// Package apperr defines the error taxonomy shared by the Film Mates handlers.
//
// Services return *Error values (or wrap them); handlers translate them into
// JSON responses with Respond. Queries that must not leak the existence of a
// list return NotFound, mutations return Forbidden with a descriptive message.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Code represents a machine-readable error code.
type Code string

const (
	CodeNotFound     Code = "NOT_FOUND"
	CodeForbidden    Code = "FORBIDDEN"
	CodeValidation   Code = "VALIDATION"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeUnconfigured Code = "UNCONFIGURED"
	CodeUpstream     Code = "UPSTREAM"
	CodeInternal     Code = "INTERNAL"
)

// HTTPStatus returns the HTTP status code for an error code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeForbidden:
		return http.StatusForbidden
	case CodeValidation:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeUnconfigured:
		return http.StatusServiceUnavailable
	case CodeUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a code and a user-facing message.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// WithCause returns a copy of e wrapping err.
func (e *Error) WithCause(err error) *Error {
	return &Error{Code: e.Code, Message: e.Message, cause: err}
}

// Sentinel errors for use with errors.Is.
var (
	ErrNotFound     = &Error{Code: CodeNotFound, Message: "not found"}
	ErrForbidden    = &Error{Code: CodeForbidden, Message: "forbidden"}
	ErrValidation   = &Error{Code: CodeValidation, Message: "validation error"}
	ErrUnauthorized = &Error{Code: CodeUnauthorized, Message: "authentication required"}
	ErrUnconfigured = &Error{Code: CodeUnconfigured, Message: "not configured"}
	ErrUpstream     = &Error{Code: CodeUpstream, Message: "upstream failure"}
	ErrInternal     = &Error{Code: CodeInternal, Message: "internal error"}
)

func NotFound(msg string) *Error     { return &Error{Code: CodeNotFound, Message: msg} }
func Forbidden(msg string) *Error    { return &Error{Code: CodeForbidden, Message: msg} }
func Validation(msg string) *Error   { return &Error{Code: CodeValidation, Message: msg} }
func Unconfigured(msg string) *Error { return &Error{Code: CodeUnconfigured, Message: msg} }
func Upstream(msg string) *Error     { return &Error{Code: CodeUpstream, Message: msg} }

// Internal wraps an unexpected failure behind a generic message.
func Internal(msg string, cause error) *Error {
	return &Error{Code: CodeInternal, Message: msg, cause: cause}
}

// Respond writes err as a JSON error body. Domain errors keep their message;
// anything else becomes a 500 with fallback as the message.
func Respond(c *gin.Context, err error, fallback string) {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		if domainErr.Code == CodeInternal {
			_ = c.Error(err)
		}
		c.JSON(domainErr.Code.HTTPStatus(), gin.H{"error": domainErr.Message})
		return
	}
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
}
