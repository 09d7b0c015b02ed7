// Package apperr defines the error taxonomy shared by the HTTP endpoints and
// the client orchestrator.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error by how the caller is expected to react to it
type Kind string

const (
	// NotConfigured means a required setting is missing. Permanent until an
	// operator fixes the configuration.
	NotConfigured Kind = "NOT_CONFIGURED"
	// InvalidInput means the caller sent something it can correct.
	InvalidInput Kind = "INVALID_INPUT"
	// Forbidden is a security rejection and is never retried.
	Forbidden Kind = "FORBIDDEN"
	// UpstreamFailure means an external service answered with a non-success status.
	UpstreamFailure Kind = "UPSTREAM_FAILURE"
	// Internal covers every unexpected failure.
	Internal Kind = "INTERNAL"
)

// Error is a classified error carrying the status and the user-facing message
// reported at the HTTP boundary. Err holds the cause for logs only.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given kind with its default status
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Status: defaultStatus(kind), Message: message}
}

// Wrap creates an error of the given kind that keeps cause for logging
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Status: defaultStatus(kind), Message: message, Err: cause}
}

// Upstream creates an UpstreamFailure that reports the upstream status code
func Upstream(status int, message string) *Error {
	return &Error{Kind: UpstreamFailure, Status: status, Message: message}
}

// HTTPStatus returns the status to report for err. Unclassified errors are 500.
func HTTPStatus(err error) int {
	var e *Error
	if errors.As(err, &e) && e.Status != 0 {
		return e.Status
	}
	return http.StatusInternalServerError
}

// KindOf returns the kind of err, or Internal when err is unclassified
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Is reports whether err is classified as kind
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

func defaultStatus(kind Kind) int {
	switch kind {
	case NotConfigured:
		return http.StatusServiceUnavailable
	case InvalidInput:
		return http.StatusBadRequest
	case Forbidden:
		return http.StatusForbidden
	case UpstreamFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
