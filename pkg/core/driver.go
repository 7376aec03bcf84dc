// Package core provides the execution model types for storecheck: the
// browser driver boundary, the error taxonomy, and the result types that
// flows and assertions produce.
package core

import (
	"context"

	"github.com/storefront-qa/storecheck/pkg/locator"
)

// Driver is the browser automation boundary. Page objects and wait
// conditions depend only on this primitive set, never on a concrete
// automation protocol. One Driver wraps one browser session; a session is
// shared by reference across the page objects of a single test case and is
// never used concurrently within that case.
type Driver interface {
	// Navigate loads the given URL and returns once the document has loaded.
	Navigate(ctx context.Context, url string) error

	// CurrentURL returns the URL of the active document.
	CurrentURL(ctx context.Context) (string, error)

	// Title returns the document title.
	Title(ctx context.Context) (string, error)

	// Ready reports whether the document has finished loading.
	Ready(ctx context.Context) (bool, error)

	// Click clicks the element identified by the strategy.
	Click(ctx context.Context, s locator.Strategy) error

	// Type clears the element and types the given text into it.
	Type(ctx context.Context, s locator.Strategy, text string) error

	// Press sends a single key (e.g. "Enter") to the element.
	Press(ctx context.Context, s locator.Strategy, key string) error

	// Text returns the visible text of the element, trimmed.
	Text(ctx context.Context, s locator.Strategy) (string, error)

	// Attribute returns the value of the named attribute, or "" when unset.
	Attribute(ctx context.Context, s locator.Strategy, name string) (string, error)

	// State reports the observable state of the element. An element that
	// does not exist yields a zero ElementState, not an error.
	State(ctx context.Context, s locator.Strategy) (ElementState, error)

	// Count returns how many elements the strategy matches.
	Count(ctx context.Context, s locator.Strategy) (int, error)

	// SelectByText picks the option with the given visible label from a
	// select element.
	SelectByText(ctx context.Context, s locator.Strategy, label string) error

	// SetChecked checks or unchecks a checkbox/radio element.
	SetChecked(ctx context.Context, s locator.Strategy, checked bool) error

	// Screenshot writes a PNG of the current viewport to path.
	Screenshot(ctx context.Context, path string) error

	// Reset returns the session to a clean state (cookies and storage
	// cleared) so the next test case starts from scratch.
	Reset(ctx context.Context) error

	// Close releases the session.
	Close() error
}

// ElementState captures the observable state of one element at one instant.
type ElementState struct {
	Present  bool `json:"present"`  // Exists in the DOM
	Visible  bool `json:"visible"`  // Rendered and displayed
	Enabled  bool `json:"enabled"`  // Not disabled
	Selected bool `json:"selected"` // Checked/selected, for checkable elements
}

// Clickable reports whether the element can receive a click.
func (s ElementState) Clickable() bool {
	return s.Visible && s.Enabled
}

// String returns a compact description for diagnostics.
func (s ElementState) String() string {
	switch {
	case !s.Present:
		return "absent"
	case !s.Visible:
		return "present, not visible"
	case !s.Enabled:
		return "visible, disabled"
	default:
		return "visible"
	}
}
