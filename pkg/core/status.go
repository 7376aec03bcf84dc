package core

import (
	"encoding/json"
	"fmt"
)

// StepStatus represents the execution status of a flow step.
type StepStatus int

const (
	StatusPending    StepStatus = iota // Not yet started
	StatusRunning                      // Currently executing
	StatusPassed                       // Completed successfully
	StatusFailed                       // Expected UI state was not reached
	StatusErrored                      // Infrastructure error (driver, config)
	StatusSkipped                      // Not executed because an earlier step failed
	StatusKnownIssue                   // Failed exactly as a documented defect predicts
)

// String returns the string representation of StepStatus.
func (s StepStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusPassed:
		return "passed"
	case StatusFailed:
		return "failed"
	case StatusErrored:
		return "errored"
	case StatusSkipped:
		return "skipped"
	case StatusKnownIssue:
		return "known-issue"
	default:
		return "unknown"
	}
}

// MarshalJSON renders the status as its string form so reports stay
// readable without a decoder ring.
func (s StepStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON parses the string form produced by MarshalJSON.
func (s *StepStatus) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch v {
	case "pending":
		*s = StatusPending
	case "running":
		*s = StatusRunning
	case "passed":
		*s = StatusPassed
	case "failed":
		*s = StatusFailed
	case "errored":
		*s = StatusErrored
	case "skipped":
		*s = StatusSkipped
	case "known-issue":
		*s = StatusKnownIssue
	default:
		return fmt.Errorf("unknown step status %q", v)
	}
	return nil
}

// IsTerminal returns true if the status is a final state.
func (s StepStatus) IsTerminal() bool {
	switch s {
	case StatusPassed, StatusFailed, StatusErrored, StatusSkipped, StatusKnownIssue:
		return true
	default:
		return false
	}
}

// IsSuccess returns true if the status does not fail the owning flow.
// A known-issue step is an expected outcome: it counts as success but is
// reported distinctly from a genuine pass.
func (s StepStatus) IsSuccess() bool {
	return s == StatusPassed || s == StatusKnownIssue
}

// ErrorCategory classifies failures for reporting and retry policy.
type ErrorCategory int

const (
	ErrCategoryNone       ErrorCategory = iota // No error
	ErrCategoryLocator                         // Unknown or malformed locator (configuration, never retried)
	ErrCategoryTimeout                         // UI did not reach the expected state within budget
	ErrCategoryNavigation                      // Page went somewhere neither expected nor current
	ErrCategoryKnownIssue                      // Documented defect bookkeeping went stale
	ErrCategoryDriver                          // Browser session lost or protocol failure
	ErrCategoryConfig                          // Invalid harness configuration
)

// MarshalJSON renders the category as its string form.
func (c ErrorCategory) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// String returns the string representation of ErrorCategory.
func (c ErrorCategory) String() string {
	switch c {
	case ErrCategoryNone:
		return "none"
	case ErrCategoryLocator:
		return "locator"
	case ErrCategoryTimeout:
		return "timeout"
	case ErrCategoryNavigation:
		return "navigation"
	case ErrCategoryKnownIssue:
		return "known-issue"
	case ErrCategoryDriver:
		return "driver"
	case ErrCategoryConfig:
		return "config"
	default:
		return "unknown"
	}
}
