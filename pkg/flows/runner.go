// Package flows defines end-to-end user journeys as ordered steps and runs
// them sequentially. A step failure halts the flow, marks the remaining
// steps skipped and records which step broke; steps tagged with a tracked
// defect are reinterpreted instead of halting.
package flows

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/storefront-qa/storecheck/pkg/core"
	"github.com/storefront-qa/storecheck/pkg/logger"
	"github.com/storefront-qa/storecheck/pkg/pages"
	"github.com/storefront-qa/storecheck/pkg/testdata"
	"github.com/storefront-qa/storecheck/pkg/verify"
)

// Context is handed to every step. Check accumulates soft assertions for
// the step; the runner folds its verdicts into the step result.
type Context struct {
	Session *pages.Session
	Data    testdata.Scenario
	Check   *verify.Checker
}

// Step is one unit of a flow.
type Step struct {
	Name string

	// KnownIssue names a tracked defect. A failure of this step is the
	// expected outcome and does not halt the flow; an unexpected pass is
	// reported so the tracker entry gets closed.
	KnownIssue string

	Do func(ctx context.Context, fc *Context) error
}

// Flow is a named sequence of steps with an optional overall deadline.
type Flow struct {
	Name    string
	Timeout time.Duration
	Steps   []Step
}

// Runner executes flows against one session.
type Runner struct {
	session *pages.Session

	// ScreenshotDir, when set, receives a capture of the page for every
	// failed step.
	ScreenshotDir string
}

// NewRunner creates a runner bound to a session.
func NewRunner(session *pages.Session) *Runner {
	return &Runner{session: session}
}

// Run executes a flow with the given data set and returns its result. The
// result is always fully populated; Run does not return an error because a
// failing flow is a result, not a malfunction of the runner.
func (r *Runner) Run(ctx context.Context, flow Flow, data testdata.Scenario) core.FlowResult {
	if flow.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, flow.Timeout)
		defer cancel()
	}

	result := core.FlowResult{
		Name:      flow.Name,
		Scenario:  data.ID,
		StartTime: time.Now(),
		Steps:     make([]core.StepResult, 0, len(flow.Steps)),
	}
	logger.Info("flow %s started (scenario %s)", flow.Name, data.ID)

	halted := false
	for i, step := range flow.Steps {
		sr := core.StepResult{
			Index:      i,
			Name:       step.Name,
			Status:     core.StatusSkipped,
			KnownIssue: step.KnownIssue,
		}
		if halted {
			result.Steps = append(result.Steps, sr)
			continue
		}

		sr.Status = core.StatusRunning
		sr.StartTime = time.Now()

		fc := &Context{
			Session: r.session,
			Data:    data,
			Check:   verify.NewChecker(r.session.Driver(), r.session.WaitOptions()),
		}

		err := r.runStep(ctx, step, fc)
		sr.Duration = time.Since(sr.StartTime)
		sr.Verdicts = fc.Check.Verdicts()
		assertionFailure := false
		if err == nil && fc.Check.Failed() {
			err = fc.Check.Err()
			assertionFailure = true
		}

		switch {
		case err == nil && step.KnownIssue != "":
			// The defect this step tracks did not reproduce.
			mismatch := core.ErrKnownIssueMismatch.
				WithMessage("step %q passed but is tagged with known issue %s", step.Name, step.KnownIssue)
			sr.Status = core.StatusFailed
			sr.Category = core.ErrCategoryKnownIssue
			sr.Error = mismatch.Error()
			logger.Error("flow %s step %s: %v", flow.Name, step.Name, mismatch)

		case err == nil:
			sr.Status = core.StatusPassed

		case step.KnownIssue != "":
			sr.Status = core.StatusKnownIssue
			sr.Category = core.ErrCategoryKnownIssue
			sr.Error = err.Error()
			result.KnownIssues = append(result.KnownIssues, step.KnownIssue)
			logger.Warn("flow %s step %s failed as tracked by %s: %v",
				flow.Name, step.Name, step.KnownIssue, err)

		case assertionFailure:
			// The page never reached the asserted state within the wait.
			sr.Status = core.StatusFailed
			sr.Category = core.ErrCategoryTimeout
			sr.Error = err.Error()
			logger.Error("flow %s step %s failed: %v", flow.Name, step.Name, err)

		default:
			sr.Status, sr.Category = classify(err)
			sr.Error = err.Error()
			logger.Error("flow %s step %s %s: %v", flow.Name, step.Name, sr.Status, err)
		}

		if sr.Status == core.StatusFailed || sr.Status == core.StatusErrored {
			sr.Screenshot = r.captureFailure(flow.Name, step.Name)
			result.FailedStep = step.Name
			result.FailedIndex = i
			result.Error = sr.Error
			halted = true
		}

		result.Steps = append(result.Steps, sr)
	}

	result.Duration = time.Since(result.StartTime)
	result.Status = result.AggregateStatus()
	result.ComputeSummary()
	logger.Info("flow %s finished: %s (%s)", flow.Name, result.Status, result.Duration.Round(time.Millisecond))
	return result
}

// runStep guards against a step outliving the flow deadline and against
// panics in step bodies taking down the whole run.
func (r *Runner) runStep(ctx context.Context, step Step, fc *Context) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = core.NewExecutionError(core.ErrCategoryDriver, "STEP_PANIC",
				fmt.Sprintf("step %q panicked: %v", step.Name, rec))
		}
	}()
	if ctx.Err() != nil {
		return core.ErrWaitTimeout.
			WithMessage("flow deadline exhausted before step %q", step.Name).
			WithCause(ctx.Err())
	}
	return step.Do(ctx, fc)
}

// classify maps an error to a step status and category. Infrastructure
// problems (lost session, bad config) are errored; everything the app
// itself did wrong is a plain failure.
func classify(err error) (core.StepStatus, core.ErrorCategory) {
	var execErr *core.ExecutionError
	if errors.As(err, &execErr) {
		switch execErr.Category {
		case core.ErrCategoryDriver, core.ErrCategoryConfig:
			return core.StatusErrored, execErr.Category
		default:
			return core.StatusFailed, execErr.Category
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return core.StatusFailed, core.ErrCategoryTimeout
	}
	return core.StatusErrored, core.ErrCategoryDriver
}

// captureFailure saves a screenshot for a failed step and returns its
// path, or "" when screenshots are disabled or the capture itself fails.
// The flow context may already be dead here, so the capture gets its own.
func (r *Runner) captureFailure(flowName, stepName string) string {
	if r.ScreenshotDir == "" {
		return ""
	}
	if err := os.MkdirAll(r.ScreenshotDir, 0o755); err != nil {
		logger.Warn("screenshot dir: %v", err)
		return ""
	}
	name := fmt.Sprintf("%s--%s--%d.png", slug(flowName), slug(stepName), time.Now().UnixMilli())
	path := filepath.Join(r.ScreenshotDir, name)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.session.Driver().Screenshot(ctx, path); err != nil {
		logger.Warn("screenshot %s: %v", path, err)
		return ""
	}
	return path
}

func slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '-'
		}
	}, s)
}
