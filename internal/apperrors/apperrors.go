// Package apperrors provides the tagged error type returned by the study services
package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies a domain error
type Kind string

const (
	// KindNotFound is returned when a session, catalog item or replacement card does not exist
	KindNotFound Kind = "not_found"
	// KindValidation is returned when input is rejected before any state is touched
	KindValidation Kind = "validation"
	// KindConflict is returned when a uniqueness constraint is hit
	KindConflict Kind = "conflict"
	// KindInternal is returned for storage or cache failures
	KindInternal Kind = "internal"
)

// Error is a domain error carrying its Kind and an optional cause
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil && e.Message != "" {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// NotFound creates a KindNotFound error
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Validation creates a KindValidation error
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Conflict creates a KindConflict error
func Conflict(message string, err error) *Error {
	return &Error{Kind: KindConflict, Message: message, Err: err}
}

// Internal wraps a storage or cache failure
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf returns the Kind of the first *Error in the chain, KindInternal otherwise
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind
func Is(err error, kind Kind) bool {
	if err == nil {
		return false
	}
	return KindOf(err) == kind
}

// Wrap keeps an existing *Error untouched and wraps anything else as internal
func Wrap(message string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}
	return Internal(message, err)
}
