package pages

import (
	"context"
	"strings"

	"github.com/storefront-qa/storecheck/pkg/core"
	"github.com/storefront-qa/storecheck/pkg/locator"
	"github.com/storefront-qa/storecheck/pkg/testdata"
	"github.com/storefront-qa/storecheck/pkg/wait"
)

var checkoutLocators = map[string]locator.Strategy{
	"shipping-new-radio":   locator.ByID("input-shipping-new"),
	"shipping-new-section": locator.ByID("shipping-new"),
	"shipping-firstname":   locator.ByID("input-shipping-firstname"),
	"shipping-lastname":    locator.ByID("input-shipping-lastname"),
	"shipping-address-1":   locator.ByID("input-shipping-address-1"),
	"shipping-city":        locator.ByID("input-shipping-city"),
	"shipping-postcode":    locator.ByID("input-shipping-postcode"),
	"shipping-country":     locator.ByID("input-shipping-country"),
	"shipping-zone":        locator.ByID("input-shipping-zone"),
	"shipping-continue":    locator.ByID("button-shipping-address"),

	"shipping-method-select":  locator.ByID("input-shipping-method"),
	"shipping-method-refresh": locator.ByID("button-shipping-method"),
	"payment-method-select":   locator.ByID("input-payment-method"),
	"payment-method-refresh":  locator.ByID("button-payment-method"),

	"agree":   locator.ByID("input-agree"),
	"alert":   locator.ByCSS("#alert .alert-danger"),
	"confirm": locator.ByCSS("#checkout-payment button.btn-primary"),
	"heading": locator.ByCSS("#content h1"),
}

// CheckoutPage runs the one-page checkout: shipping address, shipping and
// payment methods, then order confirmation.
type CheckoutPage struct {
	s *Session
}

// SelectNewAddress switches to the "new address" form when the store
// offers the choice. Accounts without a stored address get the form
// directly and there is no radio to click.
func (p *CheckoutPage) SelectNewAddress(ctx context.Context) error {
	radio, err := p.s.resolve(checkoutPageID, "shipping-new-radio")
	if err != nil {
		return err
	}
	n, err := p.s.drv.Count(ctx, radio)
	if err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	state, err := p.s.drv.State(ctx, radio)
	if err != nil {
		return err
	}
	if !state.Selected {
		if err := p.s.clickStrategy(ctx, radio); err != nil {
			return err
		}
	}
	return p.s.waitVisible(ctx, checkoutPageID, "shipping-new-section")
}

// FillShippingAddress enters the shipping form from an address data set.
func (p *CheckoutPage) FillShippingAddress(ctx context.Context, addr testdata.Address) error {
	fields := []struct{ name, value string }{
		{"shipping-firstname", addr.FirstName},
		{"shipping-lastname", addr.LastName},
		{"shipping-address-1", addr.Line1},
		{"shipping-city", addr.City},
		{"shipping-postcode", addr.Postcode},
	}
	for _, f := range fields {
		if err := p.s.typeInto(ctx, checkoutPageID, f.name, f.value); err != nil {
			return err
		}
	}

	country, err := p.s.resolve(checkoutPageID, "shipping-country")
	if err != nil {
		return err
	}
	if err := p.s.drv.SelectByText(ctx, country, addr.Country); err != nil {
		return err
	}

	// The zone list reloads after the country pick.
	zone, err := p.s.resolve(checkoutPageID, "shipping-zone")
	if err != nil {
		return err
	}
	if err := wait.Until(ctx, wait.Clickable(p.s.drv, zone), p.s.opts); err != nil {
		return err
	}
	return p.s.drv.SelectByText(ctx, zone, addr.Zone)
}

// SubmitShippingAddress applies the address step and waits for the
// shipping method section to render.
func (p *CheckoutPage) SubmitShippingAddress(ctx context.Context) error {
	if err := p.s.click(ctx, checkoutPageID, "shipping-continue"); err != nil {
		return err
	}
	refresh, err := p.s.resolve(checkoutPageID, "shipping-method-refresh")
	if err != nil {
		return err
	}
	return wait.Until(ctx, wait.Present(p.s.drv, refresh), p.s.opts)
}

// ChooseShippingMethod refreshes the shipping method list, picks the given
// method and waits for the payment section.
func (p *CheckoutPage) ChooseShippingMethod(ctx context.Context, method string) error {
	if err := p.s.click(ctx, checkoutPageID, "shipping-method-refresh"); err != nil {
		return err
	}
	sel, err := p.s.resolve(checkoutPageID, "shipping-method-select")
	if err != nil {
		return err
	}
	if err := wait.Until(ctx, wait.Present(p.s.drv, sel), p.s.opts); err != nil {
		return err
	}
	if err := p.s.drv.SelectByText(ctx, sel, method); err != nil {
		return err
	}
	refresh, err := p.s.resolve(checkoutPageID, "payment-method-refresh")
	if err != nil {
		return err
	}
	return wait.Until(ctx, wait.Present(p.s.drv, refresh), p.s.opts)
}

// ChoosePaymentMethod refreshes the payment method list, picks the given
// method and waits for the confirm button to become clickable.
func (p *CheckoutPage) ChoosePaymentMethod(ctx context.Context, method string) error {
	if err := p.s.click(ctx, checkoutPageID, "payment-method-refresh"); err != nil {
		return err
	}

	if missing, err := p.noPaymentMethods(ctx); err != nil {
		return err
	} else if missing {
		return core.ErrInvalidConfig.WithMessage("store offers no payment method")
	}

	sel, err := p.s.resolve(checkoutPageID, "payment-method-select")
	if err != nil {
		return err
	}
	if err := wait.Until(ctx, wait.Present(p.s.drv, sel), p.s.opts); err != nil {
		return err
	}
	if err := p.s.drv.SelectByText(ctx, sel, method); err != nil {
		return err
	}
	confirm, err := p.s.resolve(checkoutPageID, "confirm")
	if err != nil {
		return err
	}
	return wait.Until(ctx, wait.Clickable(p.s.drv, confirm), p.s.opts)
}

func (p *CheckoutPage) noPaymentMethods(ctx context.Context) (bool, error) {
	alert, err := p.s.resolve(checkoutPageID, "alert")
	if err != nil {
		return false, err
	}
	n, err := p.s.drv.Count(ctx, alert)
	if err != nil || n == 0 {
		return false, err
	}
	text, err := p.s.drv.Text(ctx, alert)
	if err != nil {
		return false, err
	}
	return strings.Contains(strings.ToLower(text), "no payment method available"), nil
}

// AgreeToTermsIfShown ticks the terms checkbox when the store renders one.
func (p *CheckoutPage) AgreeToTermsIfShown(ctx context.Context) error {
	agree, err := p.s.resolve(checkoutPageID, "agree")
	if err != nil {
		return err
	}
	n, err := p.s.drv.Count(ctx, agree)
	if err != nil || n == 0 {
		return err
	}
	return p.s.drv.SetChecked(ctx, agree, true)
}

// ConfirmOrder clicks Confirm Order and waits for the success heading.
func (p *CheckoutPage) ConfirmOrder(ctx context.Context) error {
	if err := p.s.click(ctx, checkoutPageID, "confirm"); err != nil {
		return err
	}
	return p.s.waitVisible(ctx, checkoutPageID, "heading")
}

// OrderPlaced checks the success heading wording.
func (p *CheckoutPage) OrderPlaced(ctx context.Context) (bool, error) {
	text, err := p.s.textOf(ctx, checkoutPageID, "heading")
	if err != nil {
		return false, err
	}
	return strings.Contains(strings.ToLower(text), "your order has been placed"), nil
}

// CompleteNewAddressCheckout runs the whole checkout with a fresh address,
// taking the first offered shipping and payment methods by label.
func (p *CheckoutPage) CompleteNewAddressCheckout(ctx context.Context, addr testdata.Address, shippingMethod, paymentMethod string) error {
	if err := p.SelectNewAddress(ctx); err != nil {
		return err
	}
	if err := p.FillShippingAddress(ctx, addr); err != nil {
		return err
	}
	if err := p.SubmitShippingAddress(ctx); err != nil {
		return err
	}
	if err := p.ChooseShippingMethod(ctx, shippingMethod); err != nil {
		return err
	}
	if err := p.ChoosePaymentMethod(ctx, paymentMethod); err != nil {
		return err
	}
	if err := p.AgreeToTermsIfShown(ctx); err != nil {
		return err
	}
	return p.ConfirmOrder(ctx)
}
