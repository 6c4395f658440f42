package solver

import (
	"errors"
	"fmt"
)

// Class represents the classification of a solver error for retry logic.
type Class string

const (
	// ClassUnavailable indicates the backend refused access to the licensed
	// environment because another holder currently has it. Retryable: once
	// the contending holder releases, the same call is expected to succeed.
	ClassUnavailable Class = "unavailable"

	// ClassInvalidState indicates an operation was attempted in the wrong
	// lifecycle phase, such as staging an environment parameter after the
	// environment has started. Programmer error, not retryable.
	ClassInvalidState Class = "invalid-state"

	// ClassSolve indicates an opaque backend failure during parameter
	// application or optimization. The wrapped error carries the backend's
	// diagnostic text; no finer typing is provided.
	ClassSolve Class = "solve"
)

// ErrLicenseBusy is the sentinel backends wrap to signal that the scarce
// environment resource is held by another handle or process. The adapter
// maps it to ClassUnavailable at the boundary.
var ErrLicenseBusy = errors.New("license environment busy")

// Error is a classified solver error with optional operation and parameter
// context. Backend-native errors are wrapped here at the adapter boundary
// so callers only ever see this type.
type Error struct {
	// Class is the error classification for retry logic.
	Class Class `json:"class"`

	// Message is the human-readable error message.
	Message string `json:"message"`

	// Op is the adapter operation during which the error occurred.
	Op string `json:"op,omitempty"`

	// Param is the option name involved, if applicable.
	Param string `json:"param,omitempty"`

	// Err is the underlying backend error.
	Err error `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Param != "" {
		msg = fmt.Sprintf("%s (param=%s)", msg, e.Param)
	}
	if e.Op != "" {
		msg = fmt.Sprintf("%s (op=%s)", msg, e.Op)
	}
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Class, msg, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Class, msg)
}

// Unwrap returns the underlying error for error chain inspection.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is implements error equality checking for errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Class == t.Class
}

// WithOp adds operation context to an error.
func (e *Error) WithOp(op string) *Error {
	e.Op = op
	return e
}

// WithParam adds parameter context to an error.
func (e *Error) WithParam(name string) *Error {
	e.Param = name
	return e
}

// NewUnavailableError creates a new contention error.
func NewUnavailableError(message string, err error) *Error {
	return &Error{Class: ClassUnavailable, Message: message, Err: err}
}

// NewInvalidStateError creates a new lifecycle-phase error.
func NewInvalidStateError(message string, err error) *Error {
	return &Error{Class: ClassInvalidState, Message: message, Err: err}
}

// NewSolveError creates a new opaque backend-failure error.
func NewSolveError(message string, err error) *Error {
	return &Error{Class: ClassSolve, Message: message, Err: err}
}

// IsUnavailable returns true if the error is classified as contention.
func IsUnavailable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Class == ClassUnavailable
	}
	return false
}

// IsInvalidState returns true if the error is a lifecycle-phase violation.
func IsInvalidState(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Class == ClassInvalidState
	}
	return false
}

// IsSolveError returns true if the error is an opaque backend failure.
func IsSolveError(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Class == ClassSolve
	}
	return false
}

// IsRetryable returns true if the error can be retried. Only contention
// errors are retryable; a fresh attempt after the contending holder
// releases is expected to succeed.
func IsRetryable(err error) bool {
	return IsUnavailable(err)
}
