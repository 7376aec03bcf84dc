// Package wait is the synchronization engine: every interaction and
// assertion in the harness routes UI readiness through Until rather than
// sleeping, which is what keeps runs reproducible across machine speeds.
package wait

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/storefront-qa/storecheck/pkg/core"
)

// Defaults applied when an Options field is zero.
const (
	DefaultTimeout = 15 * time.Second
	DefaultPoll    = 250 * time.Millisecond
)

// Options bounds one wait. Stability, when set, requires the condition to
// hold continuously for that long before success is declared; it guards
// against transient flicker (an alert that appears and is immediately
// replaced, a row that re-renders).
type Options struct {
	Timeout   time.Duration
	Poll      time.Duration
	Stability time.Duration
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Poll <= 0 {
		o.Poll = DefaultPoll
	}
	return o
}

// Condition is a predicate over observable UI state. Evaluate returns
// whether the predicate holds and a description of what was actually
// observed, kept for timeout diagnostics.
type Condition interface {
	Evaluate(ctx context.Context) (ok bool, observed string, err error)
	Describe() string
}

type transientError struct {
	err error
}

func (t *transientError) Error() string { return t.err.Error() }
func (t *transientError) Unwrap() error { return t.err }

// Transient marks an error as a not-yet-satisfied signal: the engine keeps
// polling instead of aborting. Drivers use it for resolution races such as
// an element detaching mid-check. Any unmarked error aborts the wait
// immediately.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// IsTransient reports whether err is marked transient.
func IsTransient(err error) bool {
	var t *transientError
	return errors.As(err, &t)
}

var errNotSatisfied = errors.New("condition not satisfied")
var errHolding = errors.New("condition holding, stability window open")

// Until polls cond every Poll until it holds (and has held for Stability,
// if set) or Timeout elapses. It returns on the first polling instant the
// predicate is satisfied. On timeout the returned error wraps
// core.ErrWaitTimeout and carries the last observed state; a non-transient
// evaluation error is returned as-is without waiting out the budget.
func Until(ctx context.Context, cond Condition, opts Options) error {
	opts = opts.withDefaults()

	waitCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	start := time.Now()
	lastObserved := "not yet evaluated"
	var holdStart time.Time

	operation := func() error {
		ok, observed, err := cond.Evaluate(waitCtx)
		if err != nil {
			if IsTransient(err) {
				lastObserved = "transient error: " + err.Error()
				holdStart = time.Time{}
				return err
			}
			return backoff.Permanent(err)
		}
		lastObserved = observed
		if !ok {
			holdStart = time.Time{}
			return errNotSatisfied
		}
		if opts.Stability > 0 {
			if holdStart.IsZero() {
				holdStart = time.Now()
			}
			if time.Since(holdStart) < opts.Stability {
				return errHolding
			}
		}
		return nil
	}

	b := backoff.WithContext(backoff.NewConstantBackOff(opts.Poll), waitCtx)
	err := backoff.Retry(operation, b)
	if err == nil {
		return nil
	}

	// The parent context ending is a hard abort, not a condition timeout.
	if ctx.Err() != nil {
		return ctx.Err()
	}

	// A permanent error carries its own failure mode (unknown locator,
	// session lost); pass it through untouched.
	if !errors.Is(err, errNotSatisfied) && !errors.Is(err, errHolding) && !IsTransient(err) && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	elapsed := time.Since(start).Round(time.Millisecond)
	return core.ErrWaitTimeout.
		WithMessage("timed out after %s waiting for %s", elapsed, cond.Describe()).
		WithDetails(map[string]interface{}{
			"condition":    cond.Describe(),
			"lastObserved": lastObserved,
			"elapsed":      elapsed.String(),
			"timeout":      opts.Timeout.String(),
		})
}
