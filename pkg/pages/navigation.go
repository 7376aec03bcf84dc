package pages

import (
	"context"
	"fmt"
	"strings"

	"github.com/storefront-qa/storecheck/pkg/locator"
	"github.com/storefront-qa/storecheck/pkg/wait"
)

var navigationLocators = map[string]locator.Strategy{
	"content":          locator.ByCSS("div#content"),
	"heading":          locator.ByCSS("#content h1"),
	"cart-link":        locator.ByXPath("//a[@title='Shopping Cart']"),
	"checkout-link":    locator.ByXPath("//a[@title='Checkout']"),
	"my-account":       locator.ByCSS("a[href*='route=account/account']"),
	"login-link":       locator.ByLinkText("Login"),
	"logout-link":      locator.ByLinkText("Logout"),
	"desktops":         locator.ByLinkText("Desktops"),
	"desktops-mac":     locator.ByPartialLinkText("Mac"),
	"laptops":          locator.ByLinkText("Laptops & Notebooks"),
	"laptops-show-all": locator.ByXPath("//a[@class='see-all' and contains(., 'Laptops')]"),
	"success-alert":    locator.ByCSS("div.alert-success"),
	"danger-alert":     locator.ByCSS("div.alert-danger"),
	"currency-toggle":  locator.ByCSS("#form-currency a.dropdown-toggle"),
	"currency-symbol":  locator.ByCSS("#form-currency strong"),
}

// NavigationPage covers the storefront header, category menus and the
// page chrome shared by every screen.
type NavigationPage struct {
	s *Session
}

// OpenHome loads the storefront landing page.
func (p *NavigationPage) OpenHome(ctx context.Context) error {
	if err := p.s.open(ctx, p.s.baseURL); err != nil {
		return err
	}
	return p.s.waitVisible(ctx, navigationPageID, "content")
}

// OpenCategory clicks through a top menu entry, descending into the
// submenu entry when one is given, and waits for the listing content.
func (p *NavigationPage) OpenCategory(ctx context.Context, menu, submenu string) error {
	if err := p.s.click(ctx, navigationPageID, menu); err != nil {
		return err
	}
	if submenu != "" {
		if err := p.s.click(ctx, navigationPageID, submenu); err != nil {
			return err
		}
	}
	return p.s.waitVisible(ctx, navigationPageID, "content")
}

// OpenDesktopsMac opens the Desktops > Mac category listing.
func (p *NavigationPage) OpenDesktopsMac(ctx context.Context) error {
	return p.OpenCategory(ctx, "desktops", "desktops-mac")
}

// OpenLaptops opens the full Laptops & Notebooks listing.
func (p *NavigationPage) OpenLaptops(ctx context.Context) error {
	return p.OpenCategory(ctx, "laptops", "laptops-show-all")
}

// OpenCart opens the cart page from the header.
func (p *NavigationPage) OpenCart(ctx context.Context) error {
	if err := p.s.click(ctx, navigationPageID, "cart-link"); err != nil {
		return err
	}
	return p.s.waitVisible(ctx, navigationPageID, "content")
}

// OpenCheckout opens checkout from the header and waits for a checkout
// route. An authenticated user with a filled cart lands on the checkout
// form; an empty cart bounces to the cart page, which still matches.
func (p *NavigationPage) OpenCheckout(ctx context.Context) error {
	if err := p.s.click(ctx, navigationPageID, "checkout-link"); err != nil {
		return err
	}
	if err := p.s.expectRoute(ctx, "checkout"); err != nil {
		return err
	}
	return p.s.waitVisible(ctx, navigationPageID, "content")
}

// currencyChoice builds the dropdown entry for a currency by its label,
// e.g. "£ Pound Sterling" or "$ US Dollar".
func (p *NavigationPage) currencyChoice(label string) locator.Strategy {
	return locator.ByXPath(fmt.Sprintf(
		"//form[@id='form-currency']//a[normalize-space()='%s']", label))
}

// SwitchCurrency picks a currency from the header dropdown and waits for
// the header to show the matching symbol.
func (p *NavigationPage) SwitchCurrency(ctx context.Context, symbol, label string) error {
	if err := p.s.click(ctx, navigationPageID, "currency-toggle"); err != nil {
		return err
	}
	if err := p.s.clickStrategy(ctx, p.currencyChoice(label)); err != nil {
		return err
	}
	st, err := p.s.resolve(navigationPageID, "currency-symbol")
	if err != nil {
		return err
	}
	return wait.Until(ctx, wait.TextIs(p.s.drv, st, symbol), p.s.opts)
}

// Logout clicks the header Logout link.
func (p *NavigationPage) Logout(ctx context.Context) error {
	if err := p.s.click(ctx, navigationPageID, "logout-link"); err != nil {
		return err
	}
	return p.s.expectRoute(ctx, "account/logout")
}

// HeadingContains reports whether the main page heading carries the text.
func (p *NavigationPage) HeadingContains(ctx context.Context, want string) (bool, error) {
	text, err := p.s.textOf(ctx, navigationPageID, "heading")
	if err != nil {
		return false, err
	}
	return strings.Contains(text, want), nil
}

// SuccessAlert waits for the success banner and returns its text.
func (p *NavigationPage) SuccessAlert(ctx context.Context) (string, error) {
	return p.s.textOf(ctx, navigationPageID, "success-alert")
}

// RedirectedToLogin reports whether the browser bounced to the login page,
// which the store does for account areas when the session is anonymous.
func (p *NavigationPage) RedirectedToLogin(ctx context.Context) (bool, error) {
	return p.s.onRoute(ctx, loginRoute)
}

// WaitContent blocks until the main content region is visible.
func (p *NavigationPage) WaitContent(ctx context.Context) error {
	return p.s.waitVisible(ctx, navigationPageID, "content")
}

// ContentVisible is a single-shot check without waiting.
func (p *NavigationPage) ContentVisible(ctx context.Context) (bool, error) {
	st, err := p.s.resolve(navigationPageID, "content")
	if err != nil {
		return false, err
	}
	state, err := p.s.drv.State(ctx, st)
	if err != nil {
		return false, err
	}
	return state.Visible, nil
}
