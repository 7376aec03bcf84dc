package locator

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknown is returned when a page has no locator under the requested
// name. It is a configuration error: callers must not retry it.
var ErrUnknown = errors.New("unknown locator")

// Registry holds the locator tables of all registered pages. Tables are
// declared once at page construction and never mutated afterwards, so
// lookups need no locking within a test case.
type Registry struct {
	pages map[string]map[string]Strategy
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{pages: make(map[string]map[string]Strategy)}
}

// Register declares the locator table for a page. Redeclaring a name within
// the same page is a programming error and panics: locator tables are static
// by design, a duplicate means two declarations disagree about one element.
func (r *Registry) Register(pageID string, table map[string]Strategy) {
	page, ok := r.pages[pageID]
	if !ok {
		page = make(map[string]Strategy, len(table))
		r.pages[pageID] = page
	}
	for name, strategy := range table {
		if _, exists := page[name]; exists {
			panic(fmt.Sprintf("locator: duplicate name %q on page %q", name, pageID))
		}
		page[name] = strategy
	}
}

// Resolve returns the strategy registered for name on pageID. The error
// wraps ErrUnknown and names both the page and the missing locator.
func (r *Registry) Resolve(pageID, name string) (Strategy, error) {
	page, ok := r.pages[pageID]
	if !ok {
		return Strategy{}, fmt.Errorf("%w: page %q is not registered", ErrUnknown, pageID)
	}
	strategy, ok := page[name]
	if !ok {
		return Strategy{}, fmt.Errorf("%w: %q on page %q", ErrUnknown, name, pageID)
	}
	return strategy, nil
}

// Names returns the sorted locator names registered for a page. Used in
// failure diagnostics to show what the page does declare.
func (r *Registry) Names(pageID string) []string {
	page := r.pages[pageID]
	names := make([]string, 0, len(page))
	for name := range page {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
