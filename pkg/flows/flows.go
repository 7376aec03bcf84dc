package flows

import (
	"context"
	"time"

	"github.com/storefront-qa/storecheck/pkg/locator"
)

// IssuePaymentConfirm tracks the demo store's flaky order confirmation:
// the confirm call intermittently returns before the payment extension is
// wired up, so the success page never renders.
const IssuePaymentConfirm = "STORE-214"

// Locators the verification steps target directly.
var (
	dangerAlert  = locator.ByCSS("div.alert-danger")
	successAlert = locator.ByCSS(".alert-success")
)

// Registration is the account sign-up journey. With an invalid data set
// the expected outcome is the storefront rejecting the form.
func Registration() Flow {
	return Flow{
		Name:    "registration",
		Timeout: 2 * time.Minute,
		Steps: []Step{
			{
				Name: "open registration page",
				Do: func(ctx context.Context, fc *Context) error {
					return fc.Session.Registration().Open(ctx)
				},
			},
			{
				Name: "submit registration form",
				Do: func(ctx context.Context, fc *Context) error {
					c := fc.Data.Customer
					agree := fc.Data.ID != "registration/no-privacy-agreement"
					return fc.Session.Registration().Register(ctx,
						c.FirstName, c.LastName, c.Email, c.Password, agree)
				},
			},
			{
				Name: "verify registration outcome",
				Do: func(ctx context.Context, fc *Context) error {
					if fc.Data.Invalid {
						fc.Check.ExpectURLContains(ctx, "route=account/register")
						fc.Check.ExpectTextContains(ctx, dangerAlert, alertFragment(fc.Data.ExpectedWarning))
						return nil
					}
					if err := fc.Session.Registration().ExpectSuccess(ctx); err != nil {
						return err
					}
					fc.Check.ExpectURLContains(ctx, "route=account/success")
					return nil
				},
			},
		},
	}
}

// RegistrationBlankFields variant: field-level validation messages appear
// inline, not in the top banner.
func RegistrationBlankFields() Flow {
	return Flow{
		Name:    "registration-blank-fields",
		Timeout: 2 * time.Minute,
		Steps: []Step{
			{
				Name: "open registration page",
				Do: func(ctx context.Context, fc *Context) error {
					return fc.Session.Registration().Open(ctx)
				},
			},
			{
				Name: "submit empty form",
				Do: func(ctx context.Context, fc *Context) error {
					if err := fc.Session.Registration().SetPrivacyAgreement(ctx, true); err != nil {
						return err
					}
					return fc.Session.Registration().Submit(ctx)
				},
			},
			{
				Name: "verify field errors",
				Do: func(ctx context.Context, fc *Context) error {
					fc.Check.ExpectURLContains(ctx, "route=account/register")
					for _, field := range []string{"firstname", "lastname", "email", "password"} {
						fc.Check.ExpectVisible(ctx, locator.ByID("error-"+field))
					}
					return nil
				},
			},
		},
	}
}

// Login is the sign-in journey.
func Login() Flow {
	return Flow{
		Name:    "login",
		Timeout: time.Minute,
		Steps: []Step{
			{
				Name: "open login page",
				Do: func(ctx context.Context, fc *Context) error {
					return fc.Session.Login().Open(ctx)
				},
			},
			{
				Name: "submit credentials",
				Do: func(ctx context.Context, fc *Context) error {
					c := fc.Data.Customer
					return fc.Session.Login().Login(ctx, c.Email, c.Password)
				},
			},
			{
				Name: "verify login outcome",
				Do: func(ctx context.Context, fc *Context) error {
					if fc.Data.Invalid {
						fc.Check.ExpectURLContains(ctx, "route=account/login")
						fc.Check.ExpectTextContains(ctx, dangerAlert, alertFragment(fc.Data.ExpectedWarning))
						return nil
					}
					if err := fc.Session.Login().ExpectDashboard(ctx); err != nil {
						return err
					}
					fc.Check.ExpectURLContains(ctx, "route=account/account")
					return nil
				},
			},
		},
	}
}

// AddToCart browses to each product through its category, adds it, then
// verifies the cart contents.
func AddToCart() Flow {
	return Flow{
		Name:    "add-to-cart",
		Timeout: 3 * time.Minute,
		Steps: []Step{
			{
				Name: "open storefront",
				Do: func(ctx context.Context, fc *Context) error {
					return fc.Session.Navigation().OpenHome(ctx)
				},
			},
			{
				Name: "add products from category listings",
				Do: func(ctx context.Context, fc *Context) error {
					for _, item := range fc.Data.Products {
						if err := openListingFor(ctx, fc, item.Name); err != nil {
							return err
						}
						if err := fc.Session.Product().OpenFromListing(ctx, item.Name); err != nil {
							return err
						}
						if err := fc.Session.Product().Add(ctx, item.Quantity); err != nil {
							return err
						}
						fc.Check.ExpectTextContains(ctx, successAlert, "to your shopping cart!")
					}
					return nil
				},
			},
			{
				Name: "verify cart contents",
				Do: func(ctx context.Context, fc *Context) error {
					cart := fc.Session.Cart()
					if err := cart.Open(ctx); err != nil {
						return err
					}
					for _, item := range fc.Data.Products {
						if err := cart.Contains(ctx, item.Name); err != nil {
							return err
						}
						if err := cart.WaitQuantity(ctx, item.Name, item.Quantity); err != nil {
							return err
						}
					}
					return nil
				},
			},
		},
	}
}

// Checkout runs the purchase end to end: sign in, fill the cart, then the
// one-page checkout with a new shipping address. The order confirmation
// carries a known-issue tag while STORE-214 stays open.
func Checkout() Flow {
	login := Login()
	cart := AddToCart()

	steps := append([]Step{}, login.Steps...)
	steps = append(steps, cart.Steps...)
	steps = append(steps,
		Step{
			Name: "proceed to checkout",
			Do: func(ctx context.Context, fc *Context) error {
				return fc.Session.Cart().ProceedToCheckout(ctx)
			},
		},
		Step{
			Name: "fill shipping address",
			Do: func(ctx context.Context, fc *Context) error {
				co := fc.Session.Checkout()
				if err := co.SelectNewAddress(ctx); err != nil {
					return err
				}
				if err := co.FillShippingAddress(ctx, fc.Data.Address); err != nil {
					return err
				}
				return co.SubmitShippingAddress(ctx)
			},
		},
		Step{
			Name: "choose shipping and payment",
			Do: func(ctx context.Context, fc *Context) error {
				co := fc.Session.Checkout()
				if err := co.ChooseShippingMethod(ctx, "Flat Shipping Rate"); err != nil {
					return err
				}
				return co.ChoosePaymentMethod(ctx, "Cash On Delivery")
			},
		},
		Step{
			Name:       "confirm order",
			KnownIssue: IssuePaymentConfirm,
			Do: func(ctx context.Context, fc *Context) error {
				co := fc.Session.Checkout()
				if err := co.AgreeToTermsIfShown(ctx); err != nil {
					return err
				}
				if err := co.ConfirmOrder(ctx); err != nil {
					return err
				}
				placed, err := co.OrderPlaced(ctx)
				if err != nil {
					return err
				}
				if !placed {
					fc.Check.ExpectTextContains(ctx,
						locator.ByCSS("#content h1"), "Your order has been placed!")
				}
				return nil
			},
		},
	)

	return Flow{Name: "checkout", Timeout: 5 * time.Minute, Steps: steps}
}

// openListingFor opens the category listing a demo product lives on.
func openListingFor(ctx context.Context, fc *Context, product string) error {
	nav := fc.Session.Navigation()
	if err := nav.OpenHome(ctx); err != nil {
		return err
	}
	switch product {
	case "iMac":
		return nav.OpenDesktopsMac(ctx)
	default:
		return nav.OpenLaptops(ctx)
	}
}

// alertFragment trims the "Warning: " prefix so the assertion matches the
// meaningful part of the banner regardless of theme wording.
func alertFragment(warning string) string {
	const prefix = "Warning: "
	if len(warning) > len(prefix) && warning[:len(prefix)] == prefix {
		return warning[len(prefix):]
	}
	return warning
}
