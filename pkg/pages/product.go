package pages

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/storefront-qa/storecheck/pkg/locator"
	"github.com/storefront-qa/storecheck/pkg/wait"
)

var productLocators = map[string]locator.Strategy{
	"quantity":      locator.ByID("input-quantity"),
	"add-to-cart":   locator.ByID("button-cart"),
	"success-alert": locator.ByCSS(".alert-success"),
	"option-select": locator.ByXPath("//select[contains(@id, 'input-option')]"),
}

// ProductPage covers product listings and the product detail screen.
type ProductPage struct {
	s *Session
}

// tile builds the locator for a product link on a listing page. Product
// names are data, so these cannot live in the static registry.
func (p *ProductPage) tile(name string) locator.Strategy {
	return locator.ByXPath(fmt.Sprintf(
		"//div[contains(@class,'product-thumb')]//a[normalize-space(text())='%s']", name))
}

// OpenFromListing clicks a product by name on the current listing page and
// waits until the detail page shows the add-to-cart button.
func (p *ProductPage) OpenFromListing(ctx context.Context, name string) error {
	if err := p.s.clickStrategy(ctx, p.tile(name)); err != nil {
		return err
	}
	return p.s.waitVisible(ctx, productPageID, "add-to-cart")
}

// VisibleOnListing reports whether a product tile is visible without waiting.
func (p *ProductPage) VisibleOnListing(ctx context.Context, name string) (bool, error) {
	state, err := p.s.drv.State(ctx, p.tile(name))
	if err != nil {
		return false, err
	}
	return state.Visible, nil
}

// SetQuantity replaces the quantity field value.
func (p *ProductPage) SetQuantity(ctx context.Context, qty int) error {
	return p.s.typeInto(ctx, productPageID, "quantity", strconv.Itoa(qty))
}

// AddToCart clicks the add button and waits for the success banner. The
// banner is injected asynchronously after the AJAX call returns, so the
// wait here is what keeps the subsequent cart check honest.
func (p *ProductPage) AddToCart(ctx context.Context) error {
	if err := p.s.click(ctx, productPageID, "add-to-cart"); err != nil {
		return err
	}
	return p.s.waitVisible(ctx, productPageID, "success-alert")
}

// Add sets the quantity and adds the product in one call.
func (p *ProductPage) Add(ctx context.Context, qty int) error {
	if err := p.SetQuantity(ctx, qty); err != nil {
		return err
	}
	return p.AddToCart(ctx)
}

// AddedSuccessfully checks the success banner wording.
func (p *ProductPage) AddedSuccessfully(ctx context.Context) (bool, error) {
	text, err := p.s.textOf(ctx, productPageID, "success-alert")
	if err != nil {
		return false, err
	}
	return strings.Contains(text, "Success: You have added") &&
		strings.Contains(text, "to your shopping cart!"), nil
}

// SelectRequiredOption picks the first real value of a product option
// dropdown, skipping the "Please Select" placeholder.
func (p *ProductPage) SelectRequiredOption(ctx context.Context, optionText string) error {
	st, err := p.s.resolve(productPageID, "option-select")
	if err != nil {
		return err
	}
	if err := wait.Until(ctx, wait.Present(p.s.drv, st), p.s.opts); err != nil {
		return err
	}
	return p.s.drv.SelectByText(ctx, st, optionText)
}
