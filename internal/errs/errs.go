// Package errs defines the coded errors shared across the installer.
// Codes are stable strings so tests and callers can match on the failure
// category without parsing messages.
package errs

import (
	"errors"
	"fmt"
)

// Code identifies a failure category.
type Code string

const (
	// Parse-time failures.
	InvalidActionType        Code = "INVALID_ACTION_TYPE"
	InvalidActionDescription Code = "INVALID_ACTION_DESCRIPTION"
	InvalidPackage           Code = "INVALID_PACKAGE"

	// Execute-time failures.
	TooManyBackups    Code = "TOO_MANY_BACKUPS"
	NotADirectory     Code = "NOT_A_DIRECTORY"
	DestinationIsFile Code = "DESTINATION_IS_FILE"
	TargetUnwritable  Code = "TARGET_UNWRITABLE"
	ExecutionFailed   Code = "EXECUTION_FAILED"
	GitSyncFailed     Code = "GIT_SYNC_FAILED"
)

// Error is a coded error, optionally wrapping a lower-level cause.
type Error struct {
	Code    Code
	Message string
	Wrapped error
}

func (e *Error) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Wrapped }

// Is matches two coded errors by code, so errors.Is can be used with a
// bare New(code, "") sentinel.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// New creates a coded error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an existing error.
// Returns nil when err is nil.
func Wrap(err error, code Code, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Wrapped: err}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Wrapped: err}
}

// IsCode reports whether err (or anything it wraps) carries the given code.
func IsCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// CodeOf returns the code carried by err, or "" for uncoded errors.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
