package pages

import (
	"context"
	"strings"

	"github.com/storefront-qa/storecheck/pkg/core"
	"github.com/storefront-qa/storecheck/pkg/locator"
	"github.com/storefront-qa/storecheck/pkg/wait"
)

const (
	registerRoute        = "account/register"
	registerSuccessRoute = "account/success"
)

var registrationLocators = map[string]locator.Strategy{
	"first-name":      locator.ByID("input-firstname"),
	"last-name":       locator.ByID("input-lastname"),
	"email":           locator.ByID("input-email"),
	"password":        locator.ByID("input-password"),
	"privacy-agree":   locator.ByCSS("input[name='agree'][type='checkbox']"),
	"continue":        locator.ByXPath("//button[normalize-space()='Continue']"),
	"warning":         locator.ByCSS(".alert-danger"),
	"error-firstname": locator.ByID("error-firstname"),
	"error-lastname":  locator.ByID("error-lastname"),
	"error-email":     locator.ByID("error-email"),
	"error-password":  locator.ByID("error-password"),
}

// RegistrationPage drives the account registration form.
type RegistrationPage struct {
	s *Session
}

// Open navigates to the registration page. The page can settle three ways:
// the form renders, the store redirects (already logged in), or a warning
// banner appears. Open succeeds on any of them; callers that need the form
// itself check OnRegisterPage afterwards.
func (p *RegistrationPage) Open(ctx context.Context) error {
	if err := p.s.open(ctx, p.s.routeURL(registerRoute)); err != nil {
		return err
	}

	first, err := p.s.resolve(registrationPageID, "first-name")
	if err != nil {
		return err
	}
	warning, err := p.s.resolve(registrationPageID, "warning")
	if err != nil {
		return err
	}

	redirected := wait.Func("left registration route", func(ctx context.Context) (bool, string, error) {
		u, err := p.s.drv.CurrentURL(ctx)
		if err != nil {
			return false, "", err
		}
		return !strings.Contains(u, "route="+registerRoute), u, nil
	})

	return wait.Until(ctx, wait.Any(
		wait.Visible(p.s.drv, first),
		redirected,
		wait.Visible(p.s.drv, warning),
	), p.s.opts)
}

// OnRegisterPage reports whether the browser is still on the register route.
func (p *RegistrationPage) OnRegisterPage(ctx context.Context) (bool, error) {
	return p.s.onRoute(ctx, registerRoute)
}

// Fill enters the form fields without submitting.
func (p *RegistrationPage) Fill(ctx context.Context, first, last, email, password string) error {
	fields := []struct{ name, value string }{
		{"first-name", first},
		{"last-name", last},
		{"email", email},
		{"password", password},
	}
	for _, f := range fields {
		if err := p.s.typeInto(ctx, registrationPageID, f.name, f.value); err != nil {
			return err
		}
	}
	return nil
}

// SetPrivacyAgreement checks or unchecks the privacy policy box.
func (p *RegistrationPage) SetPrivacyAgreement(ctx context.Context, agree bool) error {
	st, err := p.s.resolve(registrationPageID, "privacy-agree")
	if err != nil {
		return err
	}
	if err := wait.Until(ctx, wait.Present(p.s.drv, st), p.s.opts); err != nil {
		return err
	}
	return p.s.drv.SetChecked(ctx, st, agree)
}

// Submit clicks Continue.
func (p *RegistrationPage) Submit(ctx context.Context) error {
	return p.s.click(ctx, registrationPageID, "continue")
}

// Register fills the whole form and submits it.
func (p *RegistrationPage) Register(ctx context.Context, first, last, email, password string, agree bool) error {
	if err := p.Fill(ctx, first, last, email, password); err != nil {
		return err
	}
	if err := p.SetPrivacyAgreement(ctx, agree); err != nil {
		return err
	}
	return p.Submit(ctx)
}

// ExpectSuccess waits for the account-created page.
func (p *RegistrationPage) ExpectSuccess(ctx context.Context) error {
	return p.s.expectRoute(ctx, registerSuccessRoute)
}

// WarningText waits for the top warning banner and returns its text.
func (p *RegistrationPage) WarningText(ctx context.Context) (string, error) {
	return p.s.textOf(ctx, registrationPageID, "warning")
}

// FieldError returns the inline validation message for a form field, one
// of "firstname", "lastname", "email" or "password".
func (p *RegistrationPage) FieldError(ctx context.Context, field string) (string, error) {
	name := "error-" + field
	if _, err := p.s.reg.Resolve(registrationPageID, name); err != nil {
		return "", core.ErrUnknownLocator.
			WithMessage("no field error locator for %q", field).
			WithCause(err)
	}
	return p.s.textOf(ctx, registrationPageID, name)
}
