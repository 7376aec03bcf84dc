package wait

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/storefront-qa/storecheck/pkg/core"
	"github.com/storefront-qa/storecheck/pkg/locator"
)

// Func adapts a closure into a Condition.
func Func(desc string, eval func(ctx context.Context) (bool, string, error)) Condition {
	return &funcCondition{desc: desc, eval: eval}
}

type funcCondition struct {
	desc string
	eval func(ctx context.Context) (bool, string, error)
}

func (c *funcCondition) Evaluate(ctx context.Context) (bool, string, error) { return c.eval(ctx) }
func (c *funcCondition) Describe() string                                   { return c.desc }

// Visible holds when the element exists and is displayed.
func Visible(d core.Driver, s locator.Strategy) Condition {
	return Func(fmt.Sprintf("element %s visible", s.Describe()), func(ctx context.Context) (bool, string, error) {
		state, err := d.State(ctx, s)
		if err != nil {
			return false, "", err
		}
		return state.Visible, state.String(), nil
	})
}

// Present holds when the element exists in the DOM, visible or not.
func Present(d core.Driver, s locator.Strategy) Condition {
	return Func(fmt.Sprintf("element %s present", s.Describe()), func(ctx context.Context) (bool, string, error) {
		state, err := d.State(ctx, s)
		if err != nil {
			return false, "", err
		}
		return state.Present, state.String(), nil
	})
}

// Clickable holds when the element is visible and enabled.
func Clickable(d core.Driver, s locator.Strategy) Condition {
	return Func(fmt.Sprintf("element %s clickable", s.Describe()), func(ctx context.Context) (bool, string, error) {
		state, err := d.State(ctx, s)
		if err != nil {
			return false, "", err
		}
		return state.Clickable(), state.String(), nil
	})
}

// Absent holds when the strategy matches nothing. Absence is a first-class
// wait: "this element must be gone" gets the same polling discipline as
// "this element must appear".
func Absent(d core.Driver, s locator.Strategy) Condition {
	return Func(fmt.Sprintf("element %s absent", s.Describe()), func(ctx context.Context) (bool, string, error) {
		count, err := d.Count(ctx, s)
		if err != nil {
			return false, "", err
		}
		return count == 0, fmt.Sprintf("%d matching element(s)", count), nil
	})
}

// TextIs holds when the element's visible text equals expected exactly.
func TextIs(d core.Driver, s locator.Strategy, expected string) Condition {
	return Func(fmt.Sprintf("element %s text == %q", s.Describe(), expected), func(ctx context.Context) (bool, string, error) {
		state, err := d.State(ctx, s)
		if err != nil {
			return false, "", err
		}
		if !state.Visible {
			return false, state.String(), nil
		}
		text, err := d.Text(ctx, s)
		if err != nil {
			return false, "", err
		}
		return text == expected, fmt.Sprintf("text %q", text), nil
	})
}

// TextContains holds when the element's visible text contains substr.
func TextContains(d core.Driver, s locator.Strategy, substr string) Condition {
	return Func(fmt.Sprintf("element %s text contains %q", s.Describe(), substr), func(ctx context.Context) (bool, string, error) {
		state, err := d.State(ctx, s)
		if err != nil {
			return false, "", err
		}
		if !state.Visible {
			return false, state.String(), nil
		}
		text, err := d.Text(ctx, s)
		if err != nil {
			return false, "", err
		}
		return strings.Contains(text, substr), fmt.Sprintf("text %q", text), nil
	})
}

// URLContains holds when the current URL contains fragment.
func URLContains(d core.Driver, fragment string) Condition {
	return Func(fmt.Sprintf("url contains %q", fragment), func(ctx context.Context) (bool, string, error) {
		url, err := d.CurrentURL(ctx)
		if err != nil {
			return false, "", err
		}
		return strings.Contains(url, fragment), "url " + url, nil
	})
}

// URLMatches holds when the current URL matches the pattern.
func URLMatches(d core.Driver, pattern *regexp.Regexp) Condition {
	return Func(fmt.Sprintf("url matches %q", pattern), func(ctx context.Context) (bool, string, error) {
		url, err := d.CurrentURL(ctx)
		if err != nil {
			return false, "", err
		}
		return pattern.MatchString(url), "url " + url, nil
	})
}

// DocumentReady holds once the document has finished loading.
func DocumentReady(d core.Driver) Condition {
	return Func("document ready", func(ctx context.Context) (bool, string, error) {
		ready, err := d.Ready(ctx)
		if err != nil {
			return false, "", err
		}
		if !ready {
			return false, "document loading", nil
		}
		return true, "document complete", nil
	})
}

// Any holds when at least one of the conditions holds. The registration
// page guard needs this shape: form ready, or redirected away, or a warning
// shown all mean the page has settled.
func Any(conds ...Condition) Condition {
	descs := make([]string, len(conds))
	for i, c := range conds {
		descs[i] = c.Describe()
	}
	desc := "any of: " + strings.Join(descs, " | ")
	return Func(desc, func(ctx context.Context) (bool, string, error) {
		observed := make([]string, 0, len(conds))
		for _, c := range conds {
			ok, obs, err := c.Evaluate(ctx)
			if err != nil {
				return false, "", err
			}
			if ok {
				return true, obs, nil
			}
			observed = append(observed, obs)
		}
		return false, strings.Join(observed, "; "), nil
	})
}

// All holds when every condition holds.
func All(conds ...Condition) Condition {
	descs := make([]string, len(conds))
	for i, c := range conds {
		descs[i] = c.Describe()
	}
	desc := "all of: " + strings.Join(descs, " & ")
	return Func(desc, func(ctx context.Context) (bool, string, error) {
		for _, c := range conds {
			ok, obs, err := c.Evaluate(ctx)
			if err != nil {
				return false, "", err
			}
			if !ok {
				return false, obs, nil
			}
		}
		return true, desc, nil
	})
}
