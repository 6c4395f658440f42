package solver

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		unavailable bool
		invalid     bool
		solve       bool
		retryable   bool
	}{
		{
			name:        "unavailable",
			err:         NewUnavailableError("held elsewhere", ErrLicenseBusy),
			unavailable: true,
			retryable:   true,
		},
		{
			name:    "invalid state",
			err:     NewInvalidStateError("wrong phase", nil),
			invalid: true,
		},
		{
			name:  "solve",
			err:   NewSolveError("backend failed", errors.New("numerical trouble")),
			solve: true,
		},
		{
			name: "plain error",
			err:  errors.New("something else"),
		},
		{
			name:        "wrapped unavailable",
			err:         fmt.Errorf("solving: %w", NewUnavailableError("held elsewhere", nil)),
			unavailable: true,
			retryable:   true,
		},
		{
			name: "nil",
			err:  nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUnavailable(tt.err); got != tt.unavailable {
				t.Errorf("IsUnavailable() = %v, want %v", got, tt.unavailable)
			}
			if got := IsInvalidState(tt.err); got != tt.invalid {
				t.Errorf("IsInvalidState() = %v, want %v", got, tt.invalid)
			}
			if got := IsSolveError(tt.err); got != tt.solve {
				t.Errorf("IsSolveError() = %v, want %v", got, tt.solve)
			}
			if got := IsRetryable(tt.err); got != tt.retryable {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.retryable)
			}
		})
	}
}

func TestErrorMessageIncludesContext(t *testing.T) {
	err := NewInvalidStateError("parameter staged after start", nil).
		WithOp("configure").
		WithParam("MemLimit")

	msg := err.Error()
	for _, want := range []string{"invalid-state", "configure", "MemLimit"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("seat taken: %w", ErrLicenseBusy)
	err := NewUnavailableError("environment busy", cause)

	if !errors.Is(err, ErrLicenseBusy) {
		t.Errorf("errors.Is(err, ErrLicenseBusy) = false, want true")
	}
	if got := errors.Unwrap(err); got != cause {
		t.Errorf("Unwrap() = %v, want %v", got, cause)
	}
}

func TestErrorIsMatchesOnClass(t *testing.T) {
	err := NewUnavailableError("a", nil)
	if !errors.Is(err, NewUnavailableError("b", nil)) {
		t.Errorf("errors with the same class do not match")
	}
	if errors.Is(err, NewSolveError("b", nil)) {
		t.Errorf("errors with different classes match")
	}
}
