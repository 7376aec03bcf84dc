package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestExecutionError_Error(t *testing.T) {
	e := &ExecutionError{Message: "wait condition timed out"}
	if got := e.Error(); got != "wait condition timed out" {
		t.Errorf("Error() = %q", got)
	}

	withCause := e.WithCause(errors.New("element detached"))
	expected := "wait condition timed out: element detached"
	if got := withCause.Error(); got != expected {
		t.Errorf("Error() = %q, want %q", got, expected)
	}
}

func TestExecutionError_IsMatchesDerived(t *testing.T) {
	derived := ErrWaitTimeout.
		WithMessage("element %q never became visible", "warning banner").
		WithDetails(map[string]interface{}{"lastState": "absent"})

	if !errors.Is(derived, ErrWaitTimeout) {
		t.Error("derived error should match ErrWaitTimeout")
	}
	if errors.Is(derived, ErrUnknownLocator) {
		t.Error("derived error should not match a different predefined error")
	}
}

func TestExecutionError_IsMatchesThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("step registration: %w", ErrUnexpectedNavigation.WithCause(errors.New("at /index.php?route=common/home")))

	if !errors.Is(wrapped, ErrUnexpectedNavigation) {
		t.Error("wrapped derived error should still match ErrUnexpectedNavigation")
	}
}

func TestExecutionError_WithDetailsDoesNotMutateBase(t *testing.T) {
	_ = ErrWaitTimeout.WithDetails(map[string]interface{}{"elapsed": "5s"})

	if len(ErrWaitTimeout.Details) != 0 {
		t.Errorf("predefined error mutated: %v", ErrWaitTimeout.Details)
	}
}

func TestExecutionError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	e := ErrSessionLost.WithCause(cause)

	if !errors.Is(e, cause) {
		t.Error("errors.Is should find the cause through Unwrap")
	}
}

func TestExecutionError_Categories(t *testing.T) {
	tests := []struct {
		err      *ExecutionError
		category ErrorCategory
	}{
		{ErrUnknownLocator, ErrCategoryLocator},
		{ErrWaitTimeout, ErrCategoryTimeout},
		{ErrUnexpectedNavigation, ErrCategoryNavigation},
		{ErrKnownIssueMismatch, ErrCategoryKnownIssue},
		{ErrSessionLost, ErrCategoryDriver},
		{ErrInvalidConfig, ErrCategoryConfig},
	}

	for _, tt := range tests {
		t.Run(tt.err.Code, func(t *testing.T) {
			if tt.err.Category != tt.category {
				t.Errorf("Category = %s, want %s", tt.err.Category, tt.category)
			}
		})
	}
}
