package pages

import (
	"context"
	"strings"

	"github.com/storefront-qa/storecheck/pkg/locator"
	"github.com/storefront-qa/storecheck/pkg/wait"
)

const (
	loginRoute   = "account/login"
	accountRoute = "account/account"
)

var loginLocators = map[string]locator.Strategy{
	"email":    locator.ByID("input-email"),
	"password": locator.ByID("input-password"),
	"submit":   locator.ByCSS("button.btn.btn-primary[type='submit']"),
	"warning":  locator.ByCSS("div.alert.alert-danger"),
}

// LoginPage drives the account login form.
type LoginPage struct {
	s *Session
}

// Open navigates to the login page and waits for the email field.
func (p *LoginPage) Open(ctx context.Context) error {
	if err := p.s.open(ctx, p.s.routeURL(loginRoute)); err != nil {
		return err
	}
	return p.s.waitVisible(ctx, loginPageID, "email")
}

// OpenWhileLoggedIn navigates to the login route and reports whether the
// store bounced to the account dashboard, which it does for a session
// that is already authenticated.
func (p *LoginPage) OpenWhileLoggedIn(ctx context.Context) (bool, error) {
	if err := p.s.open(ctx, p.s.routeURL(loginRoute)); err != nil {
		return false, err
	}
	st, err := p.s.resolve(loginPageID, "email")
	if err != nil {
		return false, err
	}
	err = wait.Until(ctx, wait.Any(
		wait.URLContains(p.s.drv, accountRoute),
		wait.Visible(p.s.drv, st),
	), p.s.opts)
	if err != nil {
		return false, err
	}
	return p.OnDashboard(ctx)
}

// FillCredentials types email and password. Values are trimmed the way a
// user pasting them would expect.
func (p *LoginPage) FillCredentials(ctx context.Context, email, password string) error {
	if err := p.s.typeInto(ctx, loginPageID, "email", strings.TrimSpace(email)); err != nil {
		return err
	}
	return p.s.typeInto(ctx, loginPageID, "password", strings.TrimSpace(password))
}

// Submit presses Enter in the password field, which submits the form the
// same way the login button does.
func (p *LoginPage) Submit(ctx context.Context) error {
	st, err := p.s.resolve(loginPageID, "password")
	if err != nil {
		return err
	}
	if err := wait.Until(ctx, wait.Visible(p.s.drv, st), p.s.opts); err != nil {
		return err
	}
	return p.s.drv.Press(ctx, st, "Enter")
}

// SubmitWithButton clicks the Login button instead of pressing Enter.
func (p *LoginPage) SubmitWithButton(ctx context.Context) error {
	return p.s.click(ctx, loginPageID, "submit")
}

// Login fills the form and submits it via Enter.
func (p *LoginPage) Login(ctx context.Context, email, password string) error {
	if err := p.FillCredentials(ctx, email, password); err != nil {
		return err
	}
	return p.Submit(ctx)
}

// ExpectDashboard waits for the account dashboard after a submit. Landing
// anywhere else is reported as an unexpected navigation.
func (p *LoginPage) ExpectDashboard(ctx context.Context) error {
	return p.s.expectRoute(ctx, accountRoute)
}

// WarningText waits for the danger alert and returns its text.
func (p *LoginPage) WarningText(ctx context.Context) (string, error) {
	return p.s.textOf(ctx, loginPageID, "warning")
}

// OnLoginPage reports whether the browser is still on the login route.
func (p *LoginPage) OnLoginPage(ctx context.Context) (bool, error) {
	return p.s.onRoute(ctx, loginRoute)
}

// OnDashboard reports whether the browser reached the account dashboard.
func (p *LoginPage) OnDashboard(ctx context.Context) (bool, error) {
	return p.s.onRoute(ctx, accountRoute)
}

// AccountLocked inspects the warning text for lockout wording. OpenCart
// throttles repeated failures, so suites that hammer the login form check
// this before blaming credentials.
func (p *LoginPage) AccountLocked(ctx context.Context) (bool, error) {
	text, err := p.WarningText(ctx)
	if err != nil {
		return false, err
	}
	lower := strings.ToLower(text)
	for _, kw := range []string{"locked", "too many", "captcha"} {
		if strings.Contains(lower, kw) {
			return true, nil
		}
	}
	return false, nil
}
