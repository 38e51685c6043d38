// Package apperr defines the error taxonomy shared by gateways and handlers.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error into one of the conditions the API distinguishes.
type Kind int

const (
	KindUnexpected Kind = iota
	KindValidation
	KindUnauthenticated
	KindNotFound
	KindDuplicate
	KindHasDependents
)

// Error carries a client-safe message plus an optional wrapped cause.
// The cause is logged server-side and never rendered to clients.
type Error struct {
	Kind    Kind
	Message string
	Details string
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

// HTTPStatus maps the error kind to an HTTP status code
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation, KindHasDependents:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindDuplicate:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Validation reports missing or malformed input
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// ValidationDetails reports malformed input with field-level detail
func ValidationDetails(message, details string) *Error {
	return &Error{Kind: KindValidation, Message: message, Details: details}
}

// Unauthenticated reports a missing or invalid session
func Unauthenticated(message string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: message}
}

// NotFound reports an absent row. Rows owned by another user are reported
// identically so ownership is not observable through error shapes.
func NotFound(resource string) *Error {
	return &Error{Kind: KindNotFound, Message: resource + " not found"}
}

// Duplicate reports a uniqueness violation, pre-checked or store-rejected
func Duplicate(message string) *Error {
	return &Error{Kind: KindDuplicate, Message: message}
}

// HasDependents reports a delete blocked by referencing rows
func HasDependents(message string) *Error {
	return &Error{Kind: KindHasDependents, Message: message}
}

// Unexpected wraps any other failure behind a generic client message
func Unexpected(message string, cause error) *Error {
	return &Error{Kind: KindUnexpected, Message: message, cause: cause}
}

// From extracts an *Error from err, downgrading unknown errors to KindUnexpected
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Unexpected("Internal server error", err)
}

// IsKind reports whether err classifies as the given kind
func IsKind(err error, kind Kind) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind == kind
	}
	return kind == KindUnexpected
}
