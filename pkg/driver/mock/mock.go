// Package mock provides a scriptable in-memory driver for testing the
// harness without a browser. Tests declare elements keyed by resolved
// selector, attach side effects to clicks and navigations, and can inject
// transient or fatal driver errors.
package mock

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/storefront-qa/storecheck/pkg/core"
	"github.com/storefront-qa/storecheck/pkg/locator"
	"github.com/storefront-qa/storecheck/pkg/wait"
)

// Element is the scripted state of one DOM node.
type Element struct {
	Text       string
	Value      string
	Visible    bool
	Enabled    bool
	Selected   bool
	Count      int               // Matching element count; 0 defaults to 1
	Attributes map[string]string

	// AppearAfter delays presence: the element reports absent for this
	// many State/Count calls before showing up. Models late rendering.
	AppearAfter int

	// TransientFor makes the first N lookups fail with a transient error,
	// as a detached/re-rendering node would.
	TransientFor int

	seen int
}

// Driver is a scriptable core.Driver. The zero value is not usable; use New.
type Driver struct {
	mu sync.Mutex

	url      string
	title    string
	elements map[string]*Element

	onClick    map[string]func(d *Driver)
	onPress    map[string]func(d *Driver, key string)
	onNavigate map[string]func(d *Driver)

	failWith   error // Every call fails with this when set
	loadingFor int   // Ready() reports false this many more times
	resetCount int
	closed     bool
}

// New creates an empty mock driver.
func New() *Driver {
	return &Driver{
		elements:   make(map[string]*Element),
		onClick:    make(map[string]func(*Driver)),
		onPress:    make(map[string]func(*Driver, string)),
		onNavigate: make(map[string]func(*Driver)),
	}
}

// --- scripting surface (called by tests, and by script callbacks which
// already hold the lock through the calling driver method) ---

// SetURL sets the current URL without firing navigation scripts.
func (d *Driver) SetURL(url string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.url = url
}

// SetURLLocked is SetURL for use inside OnClick/OnNavigate callbacks.
func (d *Driver) SetURLLocked(url string) { d.url = url }

// SetTitle sets the document title.
func (d *Driver) SetTitle(title string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.title = title
}

// AddElement declares or replaces an element under its resolved selector.
func (d *Driver) AddElement(selector string, el Element) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.addElementLocked(selector, el)
}

// AddElementLocked is AddElement for use inside script callbacks.
func (d *Driver) AddElementLocked(selector string, el Element) {
	d.addElementLocked(selector, el)
}

func (d *Driver) addElementLocked(selector string, el Element) {
	copied := el
	if copied.Count == 0 {
		copied.Count = 1
	}
	d.elements[selector] = &copied
}

// AddVisible is shorthand for a visible, enabled element with text.
func (d *Driver) AddVisible(selector, text string) {
	d.AddElement(selector, Element{Text: text, Visible: true, Enabled: true})
}

// RemoveElement removes an element from the page.
func (d *Driver) RemoveElement(selector string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.elements, selector)
}

// RemoveElementLocked is RemoveElement for use inside script callbacks.
func (d *Driver) RemoveElementLocked(selector string) {
	delete(d.elements, selector)
}

// OnClick attaches a side effect to clicking the selector.
func (d *Driver) OnClick(selector string, fn func(d *Driver)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onClick[selector] = fn
}

// OnPress attaches a side effect to a key press on the selector.
func (d *Driver) OnPress(selector string, fn func(d *Driver, key string)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onPress[selector] = fn
}

// OnNavigate attaches a page-setup callback fired when the given URL (or a
// URL containing it) is loaded.
func (d *Driver) OnNavigate(urlFragment string, fn func(d *Driver)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onNavigate[urlFragment] = fn
}

// FailWith makes every subsequent driver call return err.
func (d *Driver) FailWith(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failWith = err
}

// ResetCount reports how many times Reset was called.
func (d *Driver) ResetCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.resetCount
}

// Value returns the scripted element's typed value, for test inspection.
func (d *Driver) Value(selector string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ValueLocked(selector)
}

// ValueLocked is Value for use inside script callbacks.
func (d *Driver) ValueLocked(selector string) string {
	if el, ok := d.elements[selector]; ok {
		return el.Value
	}
	return ""
}

// --- core.Driver implementation ---

func (d *Driver) lookup(s locator.Strategy) (*Element, error) {
	sel := s.Selector()
	el, ok := d.elements[sel]
	if !ok {
		return nil, nil
	}
	el.seen++
	if el.seen <= el.TransientFor {
		return nil, wait.Transient(fmt.Errorf("element %s detached", sel))
	}
	if el.seen <= el.TransientFor+el.AppearAfter {
		return nil, nil
	}
	return el, nil
}

// Navigate sets the URL and fires any matching page-setup script.
func (d *Driver) Navigate(_ context.Context, url string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failWith != nil {
		return d.failWith
	}
	d.url = url
	for fragment, fn := range d.onNavigate {
		if strings.Contains(url, fragment) {
			fn(d)
		}
	}
	return nil
}

// CurrentURL returns the current URL.
func (d *Driver) CurrentURL(context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failWith != nil {
		return "", d.failWith
	}
	return d.url, nil
}

// Title returns the document title.
func (d *Driver) Title(context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failWith != nil {
		return "", d.failWith
	}
	return d.title, nil
}

// Ready reports document readiness. Loading for the first LoadingFor
// calls after a navigation when scripted, ready otherwise.
func (d *Driver) Ready(context.Context) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failWith != nil {
		return false, d.failWith
	}
	if d.loadingFor > 0 {
		d.loadingFor--
		return false, nil
	}
	return true, nil
}

// SetLoadingFor makes the next n Ready calls report a loading document.
func (d *Driver) SetLoadingFor(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.loadingFor = n
}

// Click fires the element's click script.
func (d *Driver) Click(_ context.Context, s locator.Strategy) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failWith != nil {
		return d.failWith
	}
	el, err := d.lookup(s)
	if err != nil {
		return err
	}
	if el == nil || !el.Visible || !el.Enabled {
		return fmt.Errorf("mock: element %s not clickable", s.Describe())
	}
	if fn, ok := d.onClick[s.Selector()]; ok {
		fn(d)
	}
	return nil
}

// Type records the text into the element's value.
func (d *Driver) Type(_ context.Context, s locator.Strategy, text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failWith != nil {
		return d.failWith
	}
	el, err := d.lookup(s)
	if err != nil {
		return err
	}
	if el == nil {
		return fmt.Errorf("mock: element %s not found", s.Describe())
	}
	el.Value = text
	return nil
}

// Press fires the element's key-press script.
func (d *Driver) Press(_ context.Context, s locator.Strategy, key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failWith != nil {
		return d.failWith
	}
	el, err := d.lookup(s)
	if err != nil {
		return err
	}
	if el == nil {
		return fmt.Errorf("mock: element %s not found", s.Describe())
	}
	if fn, ok := d.onPress[s.Selector()]; ok {
		fn(d, key)
	}
	return nil
}

// Text returns the element's scripted text.
func (d *Driver) Text(_ context.Context, s locator.Strategy) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failWith != nil {
		return "", d.failWith
	}
	el, err := d.lookup(s)
	if err != nil {
		return "", err
	}
	if el == nil {
		return "", fmt.Errorf("mock: element %s not found", s.Describe())
	}
	return strings.TrimSpace(el.Text), nil
}

// Attribute returns a scripted attribute value.
func (d *Driver) Attribute(_ context.Context, s locator.Strategy, name string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failWith != nil {
		return "", d.failWith
	}
	el, err := d.lookup(s)
	if err != nil {
		return "", err
	}
	if el == nil {
		return "", fmt.Errorf("mock: element %s not found", s.Describe())
	}
	if name == "value" && el.Value != "" {
		return el.Value, nil
	}
	return el.Attributes[name], nil
}

// State reports the element's scripted state; absent elements are a zero
// state, not an error.
func (d *Driver) State(_ context.Context, s locator.Strategy) (core.ElementState, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failWith != nil {
		return core.ElementState{}, d.failWith
	}
	el, err := d.lookup(s)
	if err != nil {
		return core.ElementState{}, err
	}
	if el == nil {
		return core.ElementState{}, nil
	}
	return core.ElementState{
		Present:  true,
		Visible:  el.Visible,
		Enabled:  el.Enabled,
		Selected: el.Selected,
	}, nil
}

// Count returns the scripted match count.
func (d *Driver) Count(_ context.Context, s locator.Strategy) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failWith != nil {
		return 0, d.failWith
	}
	el, err := d.lookup(s)
	if err != nil {
		return 0, err
	}
	if el == nil {
		return 0, nil
	}
	return el.Count, nil
}

// SelectByText records the chosen label as the element value.
func (d *Driver) SelectByText(_ context.Context, s locator.Strategy, label string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failWith != nil {
		return d.failWith
	}
	el, err := d.lookup(s)
	if err != nil {
		return err
	}
	if el == nil {
		return fmt.Errorf("mock: element %s not found", s.Describe())
	}
	el.Value = label
	return nil
}

// SetChecked toggles the element's selected state.
func (d *Driver) SetChecked(_ context.Context, s locator.Strategy, checked bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failWith != nil {
		return d.failWith
	}
	el, err := d.lookup(s)
	if err != nil {
		return err
	}
	if el == nil {
		return fmt.Errorf("mock: element %s not found", s.Describe())
	}
	el.Selected = checked
	return nil
}

// Screenshot is a no-op that records nothing.
func (d *Driver) Screenshot(context.Context, string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.failWith
}

// Reset clears the scripted page.
func (d *Driver) Reset(context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failWith != nil {
		return d.failWith
	}
	d.resetCount++
	d.elements = make(map[string]*Element)
	d.url = ""
	return nil
}

// Close marks the driver closed.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}
