package pages

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/storefront-qa/storecheck/pkg/locator"
	"github.com/storefront-qa/storecheck/pkg/wait"
)

const cartRoute = "checkout/cart"

var cartLocators = map[string]locator.Strategy{
	"content":       locator.ByID("content"),
	"table":         locator.ByCSS("#content table.table"),
	"rows":          locator.ByCSS("#content table.table tbody tr"),
	"empty-message": locator.ByXPath("//*[@id='content']//p[contains(.,'Your shopping cart is empty')]"),
	"checkout":      locator.ByLinkText("Checkout"),
	"update": locator.ByXPath(
		"//button[@type='submit' and contains(@formaction,'route=checkout/cart') and contains(@formaction,'edit')]"),
	"grand-total": locator.ByXPath(
		"//*[@id='checkout-total']//tr[.//*[normalize-space()='Total']]/td[2]"),
}

// CartPage drives the shopping cart screen.
type CartPage struct {
	s *Session
}

// Row locators are built per product name, like the tiles on listings.
func (p *CartPage) row(product string) locator.Strategy {
	return locator.ByXPath(fmt.Sprintf(
		"//div[@id='content']//table[contains(@class,'table')]//tr[.//a[normalize-space()='%s']]", product))
}

func (p *CartPage) qtyInput(product string) locator.Strategy {
	return locator.ByXPath(fmt.Sprintf(
		"//a[normalize-space()='%s']/ancestor::tr//input[contains(@name,'quantity')]", product))
}

func (p *CartPage) removeButton(product string) locator.Strategy {
	return locator.ByXPath(fmt.Sprintf(
		"//tr[.//a[normalize-space()='%s']]//button[contains(@formaction,'cart') and contains(@formaction,'remove')]", product))
}

// Open navigates straight to the cart page.
func (p *CartPage) Open(ctx context.Context) error {
	if err := p.s.open(ctx, p.s.routeURL(cartRoute)); err != nil {
		return err
	}
	return p.WaitReady(ctx)
}

// WaitReady blocks until the cart content is visible.
func (p *CartPage) WaitReady(ctx context.Context) error {
	return p.s.waitVisible(ctx, cartPageID, "content")
}

// Contains waits until a row for the product exists.
func (p *CartPage) Contains(ctx context.Context, product string) error {
	return wait.Until(ctx, wait.Present(p.s.drv, p.row(product)), p.s.opts)
}

// HasProduct is a single-shot presence check.
func (p *CartPage) HasProduct(ctx context.Context, product string) (bool, error) {
	n, err := p.s.drv.Count(ctx, p.row(product))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// IsEmpty reports whether the empty-cart message is shown.
func (p *CartPage) IsEmpty(ctx context.Context) (bool, error) {
	st, err := p.s.resolve(cartPageID, "empty-message")
	if err != nil {
		return false, err
	}
	n, err := p.s.drv.Count(ctx, st)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Quantity reads the quantity input for a product row.
func (p *CartPage) Quantity(ctx context.Context, product string) (int, error) {
	st := p.qtyInput(product)
	if err := wait.Until(ctx, wait.Present(p.s.drv, st), p.s.opts); err != nil {
		return 0, err
	}
	raw, err := p.s.drv.Attribute(ctx, st, "value")
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(raw))
}

// WaitQuantity blocks until the row shows the expected quantity. Cart
// updates round-trip through the server, so the old value can linger.
func (p *CartPage) WaitQuantity(ctx context.Context, product string, want int) error {
	cond := wait.Func(fmt.Sprintf("cart quantity of %q is %d", product, want),
		func(ctx context.Context) (bool, string, error) {
			raw, err := p.s.drv.Attribute(ctx, p.qtyInput(product), "value")
			if err != nil {
				return false, "", wait.Transient(err)
			}
			got, convErr := strconv.Atoi(strings.TrimSpace(raw))
			if convErr != nil {
				return false, raw, nil
			}
			return got == want, strconv.Itoa(got), nil
		})
	return wait.Until(ctx, cond, p.s.opts)
}

// SetQuantity types a new quantity without applying it.
func (p *CartPage) SetQuantity(ctx context.Context, product string, qty int) error {
	st := p.qtyInput(product)
	if err := wait.Until(ctx, wait.Clickable(p.s.drv, st), p.s.opts); err != nil {
		return err
	}
	return p.s.drv.Type(ctx, st, strconv.Itoa(qty))
}

// UpdateQuantity changes a row's quantity and clicks Update.
func (p *CartPage) UpdateQuantity(ctx context.Context, product string, qty int) error {
	if err := p.SetQuantity(ctx, product, qty); err != nil {
		return err
	}
	if err := p.s.click(ctx, cartPageID, "update"); err != nil {
		return err
	}
	return p.WaitReady(ctx)
}

// Remove deletes a product row and waits until it is gone or the cart
// reports itself empty.
func (p *CartPage) Remove(ctx context.Context, product string) error {
	if err := p.s.clickStrategy(ctx, p.removeButton(product)); err != nil {
		return err
	}
	empty, err := p.s.resolve(cartPageID, "empty-message")
	if err != nil {
		return err
	}
	return wait.Until(ctx, wait.Any(
		wait.Absent(p.s.drv, p.row(product)),
		wait.Present(p.s.drv, empty),
	), p.s.opts)
}

func (p *CartPage) unitPriceCell(product string) locator.Strategy {
	return locator.ByXPath(fmt.Sprintf(
		"//tr[.//a[normalize-space()='%s']]/td[5]", product))
}

func (p *CartPage) lineTotalCell(product string) locator.Strategy {
	return locator.ByXPath(fmt.Sprintf(
		"//tr[.//a[normalize-space()='%s']]/td[6]", product))
}

// UnitPrice reads the per-item price of a product's cart row.
func (p *CartPage) UnitPrice(ctx context.Context, product string) (float64, error) {
	return p.priceAt(ctx, p.unitPriceCell(product))
}

// LineTotal reads the row total of a product's cart row.
func (p *CartPage) LineTotal(ctx context.Context, product string) (float64, error) {
	return p.priceAt(ctx, p.lineTotalCell(product))
}

// GrandTotal reads the cart total as a number, stripping currency marks.
func (p *CartPage) GrandTotal(ctx context.Context) (float64, error) {
	st, err := p.s.resolve(cartPageID, "grand-total")
	if err != nil {
		return 0, err
	}
	return p.priceAt(ctx, st)
}

func (p *CartPage) priceAt(ctx context.Context, st locator.Strategy) (float64, error) {
	if err := wait.Until(ctx, wait.Visible(p.s.drv, st), p.s.opts); err != nil {
		return 0, err
	}
	text, err := p.s.drv.Text(ctx, st)
	if err != nil {
		return 0, err
	}
	return parsePrice(text)
}

// parsePrice strips currency symbols and thousands separators.
func parsePrice(text string) (float64, error) {
	clean := strings.NewReplacer("£", "", "$", "", "€", "", ",", "").Replace(text)
	return strconv.ParseFloat(strings.TrimSpace(clean), 64)
}

// ProceedToCheckout clicks Checkout from the cart page.
func (p *CartPage) ProceedToCheckout(ctx context.Context) error {
	if err := p.s.click(ctx, cartPageID, "checkout"); err != nil {
		return err
	}
	return p.s.expectRoute(ctx, "checkout")
}
