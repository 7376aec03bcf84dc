package core

import (
	"time"
)

// Outcome is the pass/fail result of one assertion.
type Outcome string

// Outcome values.
const (
	OutcomePass Outcome = "pass"
	OutcomeFail Outcome = "fail"
)

// Verdict records the result of one assertion: what was expected, what was
// observed, and enough context to diagnose a failure without re-running.
// Every assertion yields exactly one Verdict; a test case's final result is
// the conjunction of all its Verdicts.
type Verdict struct {
	Name     string        `json:"name"`              // Which check: visible, text, url, absent
	Outcome  Outcome       `json:"outcome"`           // pass or fail
	Expected string        `json:"expected"`          // Expected state, human-readable
	Observed string        `json:"observed"`          // Last observed state
	URL      string        `json:"url,omitempty"`     // Current URL at assertion time
	Locator  string        `json:"locator,omitempty"` // Locator the check targeted
	Elapsed  time.Duration `json:"elapsed"`           // Time spent waiting for the state
	Message  string        `json:"message,omitempty"` // Failure explanation
}

// Passed reports whether the verdict is a pass.
func (v Verdict) Passed() bool { return v.Outcome == OutcomePass }

// StepResult captures the complete outcome of executing a single flow step.
type StepResult struct {
	Index      int           `json:"index"`                // 0-based position in the flow
	Name       string        `json:"name"`                 // Step name: "submit registration", ...
	Status     StepStatus    `json:"status"`               //
	Category   ErrorCategory `json:"errorCategory,omitempty"`
	KnownIssue string        `json:"knownIssue,omitempty"` // Issue ID when tagged expected-to-fail
	StartTime  time.Time     `json:"startTime"`
	Duration   time.Duration `json:"duration"`
	Error      string        `json:"error,omitempty"`      // Technical error message
	Verdicts   []Verdict     `json:"verdicts,omitempty"`   // Assertions evaluated during the step
	Screenshot string        `json:"screenshot,omitempty"` // Artifact path captured on failure
}

// FlowResult captures the complete outcome of executing one flow. A flow
// either completes every step, or it halts at a specific step and that
// step is identified here.
type FlowResult struct {
	Name      string        `json:"name"`
	Scenario  string        `json:"scenario,omitempty"` // Data set the flow ran with
	Status    StepStatus    `json:"status"`
	StartTime time.Time     `json:"startTime"`
	Duration  time.Duration `json:"duration"`

	Steps []StepResult `json:"steps"`

	// Failure attribution (set when Status is failed or errored)
	FailedStep  string `json:"failedStep,omitempty"`
	FailedIndex int    `json:"failedIndex,omitempty"`
	Error       string `json:"error,omitempty"`

	// Known issues observed at tagged steps, by issue ID
	KnownIssues []string `json:"knownIssues,omitempty"`

	// Summary (computed)
	TotalSteps      int `json:"totalSteps"`
	PassedSteps     int `json:"passedSteps"`
	FailedSteps     int `json:"failedSteps"`
	SkippedSteps    int `json:"skippedSteps"`
	KnownIssueSteps int `json:"knownIssueSteps,omitempty"`
}

// ComputeSummary calculates step counts from the Steps slice.
func (f *FlowResult) ComputeSummary() {
	f.TotalSteps = len(f.Steps)
	f.PassedSteps = 0
	f.FailedSteps = 0
	f.SkippedSteps = 0
	f.KnownIssueSteps = 0

	for _, step := range f.Steps {
		switch step.Status {
		case StatusPassed:
			f.PassedSteps++
		case StatusFailed, StatusErrored:
			f.FailedSteps++
		case StatusSkipped:
			f.SkippedSteps++
		case StatusKnownIssue:
			f.KnownIssueSteps++
		}
	}
}

// AggregateStatus determines the flow status from step results.
// Any failed or errored step fails the flow. A flow whose only
// deviations are known-issue steps is a known-issue pass: it succeeds
// but stays distinguishable from a genuine all-green run.
func (f *FlowResult) AggregateStatus() StepStatus {
	status := StatusPassed
	for _, step := range f.Steps {
		switch step.Status {
		case StatusFailed:
			return StatusFailed
		case StatusErrored:
			return StatusErrored
		case StatusKnownIssue:
			status = StatusKnownIssue
		}
	}
	return status
}

// Verdicts returns every verdict recorded across all steps, in order.
func (f *FlowResult) Verdicts() []Verdict {
	var all []Verdict
	for _, step := range f.Steps {
		all = append(all, step.Verdicts...)
	}
	return all
}

// SuiteResult captures the complete outcome of executing multiple flows.
type SuiteResult struct {
	Name      string        `json:"name"`
	RunID     string        `json:"runId"`
	StartTime time.Time     `json:"startTime"`
	Duration  time.Duration `json:"duration"`

	Flows []FlowResult `json:"flows"`

	// Summary. Known-issue flows count as passed (the expected outcome
	// occurred) but are also reported separately so a run with suppressed
	// defects never looks identical to a clean one.
	TotalFlows      int `json:"totalFlows"`
	PassedFlows     int `json:"passedFlows"`
	FailedFlows     int `json:"failedFlows"`
	SkippedFlows    int `json:"skippedFlows"`
	KnownIssueFlows int `json:"knownIssueFlows,omitempty"`
}

// ComputeSummary calculates flow counts from the Flows slice.
func (s *SuiteResult) ComputeSummary() {
	s.TotalFlows = len(s.Flows)
	s.PassedFlows = 0
	s.FailedFlows = 0
	s.SkippedFlows = 0
	s.KnownIssueFlows = 0

	for _, flow := range s.Flows {
		switch flow.Status {
		case StatusPassed:
			s.PassedFlows++
		case StatusKnownIssue:
			s.PassedFlows++
			s.KnownIssueFlows++
		case StatusFailed, StatusErrored:
			s.FailedFlows++
		case StatusSkipped:
			s.SkippedFlows++
		}
	}
}

// Success returns true if every flow passed, counting known-issue passes.
func (s *SuiteResult) Success() bool {
	for _, flow := range s.Flows {
		if !flow.Status.IsSuccess() {
			return false
		}
	}
	return len(s.Flows) > 0
}
