package core

import (
	"fmt"
)

// ExecutionError is a structured error with a category and diagnostic
// details. Callers match on the predefined vars with errors.Is; the
// derived copies produced by WithCause/WithDetails still match their
// original through Is.
type ExecutionError struct {
	Category ErrorCategory
	Code     string                 // Machine-readable code: wait_timeout, unknown_locator, ...
	Message  string                 // Human-readable message
	Details  map[string]interface{} // Diagnostic context: page, locator, last observed state
	Cause    error                  // Underlying error
	base     *ExecutionError        // The predefined var this was derived from
}

// Error implements the error interface.
func (e *ExecutionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// Is matches derived copies against their predefined base error.
func (e *ExecutionError) Is(target error) bool {
	t, ok := target.(*ExecutionError)
	if !ok {
		return false
	}
	return e == t || e.base == t
}

func (e *ExecutionError) derive() *ExecutionError {
	base := e.base
	if base == nil {
		base = e
	}
	details := make(map[string]interface{}, len(e.Details))
	for k, v := range e.Details {
		details[k] = v
	}
	return &ExecutionError{
		Category: e.Category,
		Code:     e.Code,
		Message:  e.Message,
		Details:  details,
		Cause:    e.Cause,
		base:     base,
	}
}

// WithCause returns a copy of the error with the given cause.
func (e *ExecutionError) WithCause(cause error) *ExecutionError {
	d := e.derive()
	d.Cause = cause
	return d
}

// WithMessage returns a copy of the error with a custom message.
func (e *ExecutionError) WithMessage(format string, args ...interface{}) *ExecutionError {
	d := e.derive()
	d.Message = fmt.Sprintf(format, args...)
	return d
}

// WithDetails returns a copy of the error with additional details merged in.
func (e *ExecutionError) WithDetails(details map[string]interface{}) *ExecutionError {
	d := e.derive()
	for k, v := range details {
		d.Details[k] = v
	}
	return d
}

// Predefined errors. These are the failure modes the harness distinguishes;
// everything a flow surfaces is one of these (possibly derived).
var (
	// ErrUnknownLocator is a configuration error: a page object asked the
	// registry for a name it never declared. Fatal to the calling action,
	// never retried.
	ErrUnknownLocator = &ExecutionError{
		Category: ErrCategoryLocator,
		Code:     "unknown_locator",
		Message:  "unknown locator",
	}

	// ErrWaitTimeout means the UI did not reach the expected state within
	// the wait budget. Details carry the last observed state and elapsed
	// time.
	ErrWaitTimeout = &ExecutionError{
		Category: ErrCategoryTimeout,
		Code:     "wait_timeout",
		Message:  "wait condition timed out",
	}

	// ErrUnexpectedNavigation means the page moved to neither the expected
	// next page nor stayed where it was: the app redirected somewhere else
	// entirely, which is a different failure mode than never responding.
	ErrUnexpectedNavigation = &ExecutionError{
		Category: ErrCategoryNavigation,
		Code:     "unexpected_navigation",
		Message:  "page navigated to an unexpected location",
	}

	// ErrKnownIssueMismatch means a step tagged as a known defect did not
	// fail the way the defect predicts. Surfaced as a failure so defect
	// documentation cannot silently go stale.
	ErrKnownIssueMismatch = &ExecutionError{
		Category: ErrCategoryKnownIssue,
		Code:     "known_issue_mismatch",
		Message:  "step tagged as known issue did not fail as documented",
	}

	// ErrSessionLost means the browser session died under the harness.
	ErrSessionLost = &ExecutionError{
		Category: ErrCategoryDriver,
		Code:     "session_lost",
		Message:  "browser session lost",
	}

	// ErrInvalidConfig means the harness configuration is unusable.
	ErrInvalidConfig = &ExecutionError{
		Category: ErrCategoryConfig,
		Code:     "invalid_config",
		Message:  "invalid configuration",
	}
)

// NewExecutionError creates a new ExecutionError with the given parameters.
func NewExecutionError(category ErrorCategory, code, message string) *ExecutionError {
	return &ExecutionError{
		Category: category,
		Code:     code,
		Message:  message,
	}
}
