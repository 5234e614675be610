// Package errors provides structured error types for the orgchart engine.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the HTTP API and the library
//   - Machine-readable error codes for programmatic handling
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures (bad tree, config, container)
//   - NOT_FOUND / SESSION_NOT_FOUND: Resource not found
//   - CYCLIC_OR_TOO_DEEP: The input is not a finite tree
//   - NETWORK_ERROR / INTERNAL_ERROR: Everything else
//
// [Code.Client] separates the caller's mistakes from system failures.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeCyclicOrTooDeep, "node %q exceeds depth %d", id, max)
//	if errors.Is(err, errors.ErrCodeCyclicOrTooDeep) {
//	    // Show the malformed-tree state instead of a chart
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidConfig    Code = "INVALID_CONFIG"
	ErrCodeInvalidContainer Code = "INVALID_CONTAINER"
	ErrCodeInvalidFormat    Code = "INVALID_FORMAT"

	// Structural errors in caller-supplied trees
	ErrCodeCyclicOrTooDeep Code = "CYCLIC_OR_TOO_DEEP"

	// Resource not found errors
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeSessionNotFound Code = "SESSION_NOT_FOUND"

	// Network errors
	ErrCodeNetwork Code = "NETWORK_ERROR"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Client reports whether the code blames the caller's input rather than
// the system. The HTTP API answers client codes with 4xx statuses and does
// not log them.
func (c Code) Client() bool {
	switch c {
	case ErrCodeInvalidInput, ErrCodeInvalidConfig, ErrCodeInvalidContainer, ErrCodeInvalidFormat,
		ErrCodeCyclicOrTooDeep, ErrCodeNotFound, ErrCodeSessionNotFound:
		return true
	}
	return false
}

// Error is a coded error. Message is meant for end users; Cause may carry
// driver or system details and is only part of Error().
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is makes any *Error with the same code match, so the standard
// errors.Is(err, &Error{Code: c}) works on codes.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// New returns an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an Error with a formatted message around cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether any coded error in err's chain has the given code, so
// a NOT_FOUND wrapped as NETWORK_ERROR still matches both.
func Is(err error, code Code) bool {
	return err != nil && errors.Is(err, &Error{Code: code})
}

// GetCode returns the code of the outermost coded error in err's chain, or
// "" when there is none.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the outermost coded error's message without code or
// cause, or err's full text for uncoded errors.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
