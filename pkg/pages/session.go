// Package pages holds the page objects for the storefront. Each page type
// exposes intent-level actions (log in, register, add to cart) and keeps
// the locators and wait logic to itself, so flows never touch selectors.
package pages

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/storefront-qa/storecheck/pkg/core"
	"github.com/storefront-qa/storecheck/pkg/locator"
	"github.com/storefront-qa/storecheck/pkg/wait"
)

// Page IDs used as registry namespaces.
const (
	loginPageID        = "login"
	registrationPageID = "registration"
	navigationPageID   = "navigation"
	productPageID      = "product"
	cartPageID         = "cart"
	checkoutPageID     = "checkout"
)

// Session ties a driver, the wait options and the locator registry together
// for one browser session. All page objects hang off a Session.
type Session struct {
	drv     core.Driver
	baseURL string
	opts    wait.Options
	reg     *locator.Registry
}

// NewSession builds a session against a driver. baseURL is the storefront
// entry point, e.g. "http://localhost/opencart/upload/index.php".
func NewSession(drv core.Driver, baseURL string, opts wait.Options) *Session {
	s := &Session{
		drv:     drv,
		baseURL: strings.TrimRight(baseURL, "/"),
		opts:    opts,
		reg:     locator.NewRegistry(),
	}
	s.reg.Register(loginPageID, loginLocators)
	s.reg.Register(registrationPageID, registrationLocators)
	s.reg.Register(navigationPageID, navigationLocators)
	s.reg.Register(productPageID, productLocators)
	s.reg.Register(cartPageID, cartLocators)
	s.reg.Register(checkoutPageID, checkoutLocators)
	return s
}

// Driver exposes the underlying driver, mainly for the verification layer.
func (s *Session) Driver() core.Driver { return s.drv }

// WaitOptions returns the session's default wait options.
func (s *Session) WaitOptions() wait.Options { return s.opts }

// Registry exposes the locator registry.
func (s *Session) Registry() *locator.Registry { return s.reg }

// Page accessors.
func (s *Session) Login() *LoginPage               { return &LoginPage{s: s} }
func (s *Session) Registration() *RegistrationPage { return &RegistrationPage{s: s} }
func (s *Session) Navigation() *NavigationPage     { return &NavigationPage{s: s} }
func (s *Session) Product() *ProductPage           { return &ProductPage{s: s} }
func (s *Session) Cart() *CartPage                 { return &CartPage{s: s} }
func (s *Session) Checkout() *CheckoutPage         { return &CheckoutPage{s: s} }

// routeURL builds a storefront URL for an OpenCart route.
func (s *Session) routeURL(route string) string {
	return fmt.Sprintf("%s?route=%s&language=en-gb", s.baseURL, route)
}

func (s *Session) resolve(pageID, name string) (locator.Strategy, error) {
	st, err := s.reg.Resolve(pageID, name)
	if err != nil {
		if errors.Is(err, locator.ErrUnknown) {
			return locator.Strategy{}, core.ErrUnknownLocator.
				WithMessage("page %q has no locator %q", pageID, name).
				WithCause(err)
		}
		return locator.Strategy{}, err
	}
	return st, nil
}

// open navigates to url and waits for the document to finish loading.
// Element-level waits still follow; this only rules out reading a page
// that is mid-load.
func (s *Session) open(ctx context.Context, url string) error {
	if err := s.drv.Navigate(ctx, url); err != nil {
		return err
	}
	return wait.Until(ctx, wait.DocumentReady(s.drv), s.opts)
}

// click waits for the named element to be clickable, then clicks it.
func (s *Session) click(ctx context.Context, pageID, name string) error {
	st, err := s.resolve(pageID, name)
	if err != nil {
		return err
	}
	return s.clickStrategy(ctx, st)
}

func (s *Session) clickStrategy(ctx context.Context, st locator.Strategy) error {
	if err := wait.Until(ctx, wait.Clickable(s.drv, st), s.opts); err != nil {
		return err
	}
	return s.drv.Click(ctx, st)
}

// typeInto waits for visibility and replaces the element's value.
func (s *Session) typeInto(ctx context.Context, pageID, name, text string) error {
	st, err := s.resolve(pageID, name)
	if err != nil {
		return err
	}
	if err := wait.Until(ctx, wait.Visible(s.drv, st), s.opts); err != nil {
		return err
	}
	return s.drv.Type(ctx, st, text)
}

func (s *Session) waitVisible(ctx context.Context, pageID, name string) error {
	st, err := s.resolve(pageID, name)
	if err != nil {
		return err
	}
	return wait.Until(ctx, wait.Visible(s.drv, st), s.opts)
}

func (s *Session) textOf(ctx context.Context, pageID, name string) (string, error) {
	st, err := s.resolve(pageID, name)
	if err != nil {
		return "", err
	}
	if err := wait.Until(ctx, wait.Visible(s.drv, st), s.opts); err != nil {
		return "", err
	}
	return s.drv.Text(ctx, st)
}

// expectRoute waits until the browser lands on the given route. When the
// wait runs out it inspects where the browser actually ended up: a
// different route is reported as an unexpected navigation rather than a
// plain timeout, so the failure names both URLs.
func (s *Session) expectRoute(ctx context.Context, route string) error {
	fragment := "route=" + route
	err := wait.Until(ctx, wait.URLContains(s.drv, fragment), s.opts)
	if err == nil {
		return nil
	}
	if !errors.Is(err, core.ErrWaitTimeout) {
		return err
	}
	actual, urlErr := s.drv.CurrentURL(ctx)
	if urlErr != nil {
		return err
	}
	return core.ErrUnexpectedNavigation.
		WithMessage("expected route %q, browser is at %s", route, actual).
		WithDetails(map[string]interface{}{"expectedRoute": route, "actualURL": actual}).
		WithCause(err)
}

// onRoute reports whether the current URL carries the given route.
func (s *Session) onRoute(ctx context.Context, route string) (bool, error) {
	u, err := s.drv.CurrentURL(ctx)
	if err != nil {
		return false, err
	}
	return strings.Contains(u, "route="+route), nil
}
