package verify_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/storefront-qa/storecheck/pkg/core"
	"github.com/storefront-qa/storecheck/pkg/driver/mock"
	"github.com/storefront-qa/storecheck/pkg/locator"
	"github.com/storefront-qa/storecheck/pkg/verify"
	"github.com/storefront-qa/storecheck/pkg/wait"
)

var shortOpts = wait.Options{Timeout: 400 * time.Millisecond, Poll: 20 * time.Millisecond}

func newLoginDriver() *mock.Driver {
	d := mock.New()
	d.SetURL("http://localhost/index.php?route=account/account")
	d.AddVisible(locator.ByID("input-email").Selector(), "")
	d.AddElement(locator.ByCSS("div.alert.alert-danger").Selector(), mock.Element{
		Text: "Warning: No match for E-Mail Address and/or Password.", Visible: true, Enabled: true,
	})
	return d
}

func TestChecker_ExpectVisiblePass(t *testing.T) {
	c := verify.NewChecker(newLoginDriver(), shortOpts)

	v := c.ExpectVisible(context.Background(), locator.ByID("input-email"))
	if !v.Passed() {
		t.Fatalf("verdict failed: %+v", v)
	}
	if v.URL == "" {
		t.Error("verdict should carry the current URL")
	}
	if v.Locator == "" {
		t.Error("verdict should carry the locator")
	}
}

func TestChecker_ExpectVisibleFailCarriesDiagnostics(t *testing.T) {
	c := verify.NewChecker(newLoginDriver(), shortOpts)

	v := c.ExpectVisible(context.Background(), locator.ByID("missing"))
	if v.Passed() {
		t.Fatal("verdict should fail for a missing element")
	}
	if v.Observed != "absent" {
		t.Errorf("Observed = %q, want %q", v.Observed, "absent")
	}
	if v.Elapsed <= 0 {
		t.Error("verdict should record elapsed wait time")
	}
	if !strings.Contains(v.URL, "route=account/account") {
		t.Errorf("URL = %q", v.URL)
	}
}

func TestChecker_ExpectTextExpectedFailureScenario(t *testing.T) {
	// Scenario B from the journey catalog: the app rejects a bad password,
	// so the warning-text check passing means the test passes.
	c := verify.NewChecker(newLoginDriver(), shortOpts)

	v := c.ExpectTextContains(context.Background(), locator.ByCSS("div.alert.alert-danger"), "Warning: No match")
	if !v.Passed() {
		t.Fatalf("verdict failed: %+v", v)
	}
}

func TestChecker_ExpectTextMismatchReportsObserved(t *testing.T) {
	c := verify.NewChecker(newLoginDriver(), shortOpts)

	v := c.ExpectText(context.Background(), locator.ByCSS("div.alert.alert-danger"), "Your Account Has Been Created!")
	if v.Passed() {
		t.Fatal("verdict should fail on text mismatch")
	}
	if !strings.Contains(v.Observed, "Warning: No match") {
		t.Errorf("Observed = %q, want the actual text", v.Observed)
	}
	if !strings.Contains(v.Expected, "Your Account Has Been Created!") {
		t.Errorf("Expected = %q", v.Expected)
	}
}

func TestChecker_ExpectAbsentWaitsForRemoval(t *testing.T) {
	d := newLoginDriver()
	row := locator.ByCSS("#content table tr.line-item")
	d.AddVisible(row.Selector(), "MacBook Air")

	go func() {
		time.Sleep(100 * time.Millisecond)
		d.RemoveElement(row.Selector())
	}()

	c := verify.NewChecker(d, wait.Options{Timeout: time.Second, Poll: 20 * time.Millisecond})
	v := c.ExpectAbsent(context.Background(), row)
	if !v.Passed() {
		t.Fatalf("verdict failed: %+v", v)
	}
}

func TestChecker_ExpectURLMatches(t *testing.T) {
	c := verify.NewChecker(newLoginDriver(), shortOpts)

	if v := c.ExpectURLMatches(context.Background(), `route=account/account`); !v.Passed() {
		t.Errorf("verdict failed: %+v", v)
	}
	if v := c.ExpectURLMatches(context.Background(), `route=checkout/success`); v.Passed() {
		t.Error("verdict should fail for non-matching URL")
	}
}

func TestChecker_ExpectURLMatchesBadPattern(t *testing.T) {
	c := verify.NewChecker(newLoginDriver(), shortOpts)

	start := time.Now()
	v := c.ExpectURLMatches(context.Background(), `(`)
	if v.Passed() {
		t.Fatal("verdict should fail for an invalid pattern")
	}
	if time.Since(start) > 200*time.Millisecond {
		t.Error("invalid pattern should fail without waiting out the budget")
	}
}

func TestChecker_Accumulation(t *testing.T) {
	c := verify.NewChecker(newLoginDriver(), shortOpts)
	ctx := context.Background()

	c.ExpectVisible(ctx, locator.ByID("input-email"))
	c.ExpectVisible(ctx, locator.ByID("missing"))
	c.ExpectURLContains(ctx, "route=account/account")

	if got := len(c.Verdicts()); got != 3 {
		t.Fatalf("Verdicts() = %d, want 3 (one verdict per assertion)", got)
	}
	if !c.Failed() {
		t.Error("Failed() should be true with one failing verdict")
	}
	err := c.Err()
	if err == nil {
		t.Fatal("Err() should summarize failures")
	}
	if !strings.Contains(err.Error(), "1 assertion(s) failed") {
		t.Errorf("Err() = %v", err)
	}
}

func TestChecker_ErrNilWhenAllPass(t *testing.T) {
	c := verify.NewChecker(newLoginDriver(), shortOpts)
	c.ExpectVisible(context.Background(), locator.ByID("input-email"))

	if err := c.Err(); err != nil {
		t.Errorf("Err() = %v, want nil", err)
	}
	if c.Failed() {
		t.Error("Failed() should be false")
	}
}

func TestChecker_VerdictOutcomeValues(t *testing.T) {
	c := verify.NewChecker(newLoginDriver(), shortOpts)

	pass := c.ExpectVisible(context.Background(), locator.ByID("input-email"))
	fail := c.ExpectVisible(context.Background(), locator.ByID("missing"))

	if pass.Outcome != core.OutcomePass || fail.Outcome != core.OutcomeFail {
		t.Errorf("outcomes = %s / %s", pass.Outcome, fail.Outcome)
	}
}
