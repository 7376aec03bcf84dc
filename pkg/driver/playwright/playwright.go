// Package playwright implements the driver interface on a real browser via
// playwright-go. The harness's wait engine owns all polling, so every call
// here is single-shot: it acts on the page as it is right now, with a short
// protocol timeout instead of Playwright's default auto-waiting.
package playwright

import (
	"context"
	"fmt"
	"strings"

	pw "github.com/playwright-community/playwright-go"

	"github.com/storefront-qa/storecheck/pkg/core"
	"github.com/storefront-qa/storecheck/pkg/locator"
	"github.com/storefront-qa/storecheck/pkg/logger"
)

// Options configures the browser session.
type Options struct {
	Browser  string // chromium, firefox or webkit
	Headless bool
	SlowMoMs float64

	// ActionTimeoutMs bounds individual protocol calls. This is not the
	// synchronization timeout; it only keeps a wedged browser from
	// hanging the run.
	ActionTimeoutMs float64
}

func (o *Options) withDefaults() {
	if o.Browser == "" {
		o.Browser = "chromium"
	}
	if o.ActionTimeoutMs == 0 {
		o.ActionTimeoutMs = 5000
	}
}

// Driver drives one page in one browser context.
type Driver struct {
	pw      *pw.Playwright
	browser pw.Browser
	browCtx pw.BrowserContext
	page    pw.Page
	opts    Options
}

// New launches a browser and opens a fresh page.
func New(opts Options) (*Driver, error) {
	opts.withDefaults()

	run, err := pw.Run()
	if err != nil {
		return nil, core.ErrSessionLost.
			WithMessage("starting playwright (run the install command first?)").
			WithCause(err)
	}

	var bt pw.BrowserType
	switch strings.ToLower(opts.Browser) {
	case "chromium":
		bt = run.Chromium
	case "firefox":
		bt = run.Firefox
	case "webkit":
		bt = run.WebKit
	default:
		run.Stop()
		return nil, core.ErrInvalidConfig.WithMessage("unknown browser %q", opts.Browser)
	}

	browser, err := bt.Launch(pw.BrowserTypeLaunchOptions{
		Headless: pw.Bool(opts.Headless),
		SlowMo:   pw.Float(opts.SlowMoMs),
	})
	if err != nil {
		run.Stop()
		return nil, core.ErrSessionLost.WithMessage("launching %s", opts.Browser).WithCause(err)
	}

	browCtx, err := browser.NewContext(pw.BrowserNewContextOptions{
		Viewport: &pw.Size{Width: 1280, Height: 720},
	})
	if err != nil {
		browser.Close()
		run.Stop()
		return nil, core.ErrSessionLost.WithMessage("creating browser context").WithCause(err)
	}

	page, err := browCtx.NewPage()
	if err != nil {
		browCtx.Close()
		browser.Close()
		run.Stop()
		return nil, core.ErrSessionLost.WithMessage("opening page").WithCause(err)
	}

	// The storefront raises JS confirm dialogs on some actions; accept
	// them so a forgotten dialog cannot wedge the session.
	page.OnDialog(func(d pw.Dialog) { d.Accept() })

	logger.Info("browser session started: %s headless=%v", opts.Browser, opts.Headless)
	return &Driver{pw: run, browser: browser, browCtx: browCtx, page: page, opts: opts}, nil
}

var _ core.Driver = (*Driver)(nil)

func (d *Driver) loc(s locator.Strategy) pw.Locator {
	return d.page.Locator(s.Selector()).First()
}

// wrap turns a protocol error into the harness taxonomy. A closed page or
// browser is a lost session; anything else stays a driver error with the
// locator attached.
func (d *Driver) wrap(err error, op string, s locator.Strategy) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.Contains(msg, "Target closed") ||
		strings.Contains(msg, "has been closed") ||
		strings.Contains(msg, "browser closed") {
		return core.ErrSessionLost.WithMessage("%s: browser session is gone", op).WithCause(err)
	}
	return core.NewExecutionError(core.ErrCategoryDriver, "DRIVER_CALL",
		fmt.Sprintf("%s %s", op, s.Describe())).WithCause(err)
}

func (d *Driver) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := d.page.Goto(url, pw.PageGotoOptions{
		WaitUntil: pw.WaitUntilStateDomcontentloaded,
		Timeout:   pw.Float(30000),
	})
	return d.wrap(err, "navigate to "+url, locator.Strategy{})
}

func (d *Driver) CurrentURL(context.Context) (string, error) {
	return d.page.URL(), nil
}

func (d *Driver) Title(context.Context) (string, error) {
	title, err := d.page.Title()
	return title, d.wrap(err, "read title", locator.Strategy{})
}

func (d *Driver) Ready(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	state, err := d.page.Evaluate("document.readyState")
	if err != nil {
		return false, d.wrap(err, "read document state", locator.Strategy{})
	}
	s, _ := state.(string)
	return s == "complete", nil
}

func (d *Driver) Click(ctx context.Context, s locator.Strategy) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := d.loc(s).Click(pw.LocatorClickOptions{Timeout: pw.Float(d.opts.ActionTimeoutMs)})
	return d.wrap(err, "click", s)
}

// Type replaces the element's value rather than appending to it.
func (d *Driver) Type(ctx context.Context, s locator.Strategy, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l := d.loc(s)
	if err := l.Clear(pw.LocatorClearOptions{Timeout: pw.Float(d.opts.ActionTimeoutMs)}); err != nil {
		return d.wrap(err, "clear", s)
	}
	err := l.Fill(text, pw.LocatorFillOptions{Timeout: pw.Float(d.opts.ActionTimeoutMs)})
	return d.wrap(err, "type", s)
}

func (d *Driver) Press(ctx context.Context, s locator.Strategy, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := d.loc(s).Press(key, pw.LocatorPressOptions{Timeout: pw.Float(d.opts.ActionTimeoutMs)})
	return d.wrap(err, "press "+key, s)
}

func (d *Driver) Text(ctx context.Context, s locator.Strategy) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text, err := d.loc(s).InnerText(pw.LocatorInnerTextOptions{Timeout: pw.Float(d.opts.ActionTimeoutMs)})
	if err != nil {
		return "", d.wrap(err, "read text", s)
	}
	return strings.TrimSpace(text), nil
}

func (d *Driver) Attribute(ctx context.Context, s locator.Strategy, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	l := d.loc(s)
	// The live value of form controls is a property, not the attribute.
	if name == "value" {
		v, err := l.InputValue(pw.LocatorInputValueOptions{Timeout: pw.Float(d.opts.ActionTimeoutMs)})
		return v, d.wrap(err, "read value", s)
	}
	v, err := l.GetAttribute(name, pw.LocatorGetAttributeOptions{Timeout: pw.Float(d.opts.ActionTimeoutMs)})
	return v, d.wrap(err, "read attribute "+name, s)
}

// State reports the element's state without waiting. An absent element is
// a zero state, never an error; the wait engine decides what absence means.
func (d *Driver) State(ctx context.Context, s locator.Strategy) (core.ElementState, error) {
	if err := ctx.Err(); err != nil {
		return core.ElementState{}, err
	}
	l := d.loc(s)
	n, err := d.page.Locator(s.Selector()).Count()
	if err != nil {
		return core.ElementState{}, d.wrap(err, "count", s)
	}
	if n == 0 {
		return core.ElementState{}, nil
	}

	state := core.ElementState{Present: true}
	if state.Visible, err = l.IsVisible(); err != nil {
		return core.ElementState{}, d.wrap(err, "visibility", s)
	}
	if state.Enabled, err = l.IsEnabled(pw.LocatorIsEnabledOptions{Timeout: pw.Float(d.opts.ActionTimeoutMs)}); err != nil {
		return core.ElementState{}, d.wrap(err, "enabled", s)
	}
	// IsChecked errors on elements that are not checkboxes or radios.
	if checked, err := l.IsChecked(pw.LocatorIsCheckedOptions{Timeout: pw.Float(d.opts.ActionTimeoutMs)}); err == nil {
		state.Selected = checked
	}
	return state, nil
}

func (d *Driver) Count(ctx context.Context, s locator.Strategy) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	n, err := d.page.Locator(s.Selector()).Count()
	return n, d.wrap(err, "count", s)
}

func (d *Driver) SelectByText(ctx context.Context, s locator.Strategy, label string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := d.loc(s).SelectOption(pw.SelectOptionValues{Labels: &[]string{label}},
		pw.LocatorSelectOptionOptions{Timeout: pw.Float(d.opts.ActionTimeoutMs)})
	return d.wrap(err, "select "+label, s)
}

func (d *Driver) SetChecked(ctx context.Context, s locator.Strategy, checked bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := d.loc(s).SetChecked(checked,
		pw.LocatorSetCheckedOptions{Timeout: pw.Float(d.opts.ActionTimeoutMs)})
	return d.wrap(err, "set checked", s)
}

func (d *Driver) Screenshot(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := d.page.Screenshot(pw.PageScreenshotOptions{
		Path:     pw.String(path),
		FullPage: pw.Bool(true),
	})
	return d.wrap(err, "screenshot", locator.Strategy{})
}

// Reset drops cookies and returns to a blank page, so the next flow starts
// from an anonymous session without relaunching the browser.
func (d *Driver) Reset(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := d.browCtx.ClearCookies(); err != nil {
		return d.wrap(err, "clear cookies", locator.Strategy{})
	}
	_, err := d.page.Goto("about:blank")
	return d.wrap(err, "reset", locator.Strategy{})
}

// Close tears the whole browser session down.
func (d *Driver) Close() error {
	var firstErr error
	for _, step := range []func() error{
		func() error { return d.browCtx.Close() },
		func() error { return d.browser.Close() },
		d.pw.Stop,
	} {
		if err := step(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	logger.Info("browser session closed")
	return firstErr
}
