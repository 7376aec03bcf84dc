// Package verify is the assertion layer. Every check is itself a bounded
// wait: asserting "the warning is shown" polls for the warning with the
// same engine interactions use, so an element appearing a moment after an
// instantaneous check would have run cannot produce a flaky failure.
// Each check yields exactly one Verdict; the checker accumulates them so a
// scenario's final result is the conjunction of everything it asserted.
package verify

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/storefront-qa/storecheck/pkg/core"
	"github.com/storefront-qa/storecheck/pkg/locator"
	"github.com/storefront-qa/storecheck/pkg/wait"
)

// Checker runs checks against one browser session and records their
// verdicts. Not safe for concurrent use; a test case owns its checker.
type Checker struct {
	driver   core.Driver
	opts     wait.Options
	verdicts []core.Verdict
}

// NewChecker creates a checker with the given wait bounds.
func NewChecker(driver core.Driver, opts wait.Options) *Checker {
	return &Checker{driver: driver, opts: opts}
}

// record finishes a verdict with shared diagnostics and stores it.
func (c *Checker) record(ctx context.Context, v core.Verdict, waitErr error, start time.Time) core.Verdict {
	v.Elapsed = time.Since(start).Round(time.Millisecond)
	if url, err := c.driver.CurrentURL(ctx); err == nil {
		v.URL = url
	}
	if waitErr == nil {
		v.Outcome = core.OutcomePass
		v.Observed = v.Expected
	} else {
		v.Outcome = core.OutcomeFail
		v.Message = waitErr.Error()
		v.Observed = lastObserved(waitErr)
	}
	c.verdicts = append(c.verdicts, v)
	return v
}

func lastObserved(err error) string {
	var execErr *core.ExecutionError
	if errors.As(err, &execErr) {
		if observed, ok := execErr.Details["lastObserved"].(string); ok {
			return observed
		}
	}
	return err.Error()
}

// ExpectVisible checks that the element becomes visible within the budget.
func (c *Checker) ExpectVisible(ctx context.Context, s locator.Strategy) core.Verdict {
	start := time.Now()
	err := wait.Until(ctx, wait.Visible(c.driver, s), c.opts)
	return c.record(ctx, core.Verdict{
		Name:     "visible",
		Expected: "element visible",
		Locator:  s.Describe(),
	}, err, start)
}

// ExpectAbsent checks that the strategy matches nothing within the budget.
// Absence gets the same waiting discipline as presence.
func (c *Checker) ExpectAbsent(ctx context.Context, s locator.Strategy) core.Verdict {
	start := time.Now()
	err := wait.Until(ctx, wait.Absent(c.driver, s), c.opts)
	return c.record(ctx, core.Verdict{
		Name:     "absent",
		Expected: "element absent",
		Locator:  s.Describe(),
	}, err, start)
}

// ExpectText checks that the element's text becomes exactly expected.
func (c *Checker) ExpectText(ctx context.Context, s locator.Strategy, expected string) core.Verdict {
	start := time.Now()
	err := wait.Until(ctx, wait.TextIs(c.driver, s, expected), c.opts)
	return c.record(ctx, core.Verdict{
		Name:     "text",
		Expected: fmt.Sprintf("text %q", expected),
		Locator:  s.Describe(),
	}, err, start)
}

// ExpectTextContains checks that the element's text comes to contain substr.
func (c *Checker) ExpectTextContains(ctx context.Context, s locator.Strategy, substr string) core.Verdict {
	start := time.Now()
	err := wait.Until(ctx, wait.TextContains(c.driver, s, substr), c.opts)
	return c.record(ctx, core.Verdict{
		Name:     "textContains",
		Expected: fmt.Sprintf("text containing %q", substr),
		Locator:  s.Describe(),
	}, err, start)
}

// ExpectURLContains checks that the current URL comes to contain fragment.
func (c *Checker) ExpectURLContains(ctx context.Context, fragment string) core.Verdict {
	start := time.Now()
	err := wait.Until(ctx, wait.URLContains(c.driver, fragment), c.opts)
	return c.record(ctx, core.Verdict{
		Name:     "urlContains",
		Expected: fmt.Sprintf("url containing %q", fragment),
	}, err, start)
}

// ExpectURLMatches checks the current URL against a regular expression.
// An invalid pattern fails the verdict immediately without waiting.
func (c *Checker) ExpectURLMatches(ctx context.Context, pattern string) core.Verdict {
	start := time.Now()
	re, err := regexp.Compile(pattern)
	if err != nil {
		return c.record(ctx, core.Verdict{
			Name:     "urlMatches",
			Expected: fmt.Sprintf("url matching %q", pattern),
		}, core.ErrInvalidConfig.WithMessage("bad url pattern %q", pattern).WithCause(err), start)
	}
	waitErr := wait.Until(ctx, wait.URLMatches(c.driver, re), c.opts)
	return c.record(ctx, core.Verdict{
		Name:     "urlMatches",
		Expected: fmt.Sprintf("url matching %q", pattern),
	}, waitErr, start)
}

// Verdicts returns everything checked so far, in order.
func (c *Checker) Verdicts() []core.Verdict {
	return c.verdicts
}

// Failed reports whether any recorded verdict failed.
func (c *Checker) Failed() bool {
	for _, v := range c.verdicts {
		if !v.Passed() {
			return true
		}
	}
	return false
}

// Err returns nil when all verdicts passed, otherwise one error listing
// every failed check.
func (c *Checker) Err() error {
	var failures []string
	for _, v := range c.verdicts {
		if !v.Passed() {
			failures = append(failures, fmt.Sprintf("%s %s: expected %s, observed %s", v.Name, v.Locator, v.Expected, v.Observed))
		}
	}
	if len(failures) == 0 {
		return nil
	}
	return fmt.Errorf("%d assertion(s) failed:\n%s", len(failures), strings.Join(failures, "\n"))
}
