// Package locator maps symbolic element names to resolution strategies.
// Strategies are pure data; nothing here touches the browser.
package locator

// Kind identifies how a strategy value is interpreted by the driver.
type Kind string

// Strategy kinds.
const (
	CSS             Kind = "css"
	XPath           Kind = "xpath"
	ID              Kind = "id"
	Name            Kind = "name"
	LinkText        Kind = "linkText"
	PartialLinkText Kind = "partialLinkText"
)

// Strategy describes how to find one element. Scope, when set, restricts
// the search to descendants of the element found by the parent strategy.
type Strategy struct {
	Kind  Kind
	Value string
	Scope *Strategy
}

// ByCSS returns a CSS selector strategy.
func ByCSS(value string) Strategy { return Strategy{Kind: CSS, Value: value} }

// ByXPath returns an XPath strategy.
func ByXPath(value string) Strategy { return Strategy{Kind: XPath, Value: value} }

// ByID returns an element-id strategy.
func ByID(value string) Strategy { return Strategy{Kind: ID, Value: value} }

// ByName returns a name-attribute strategy.
func ByName(value string) Strategy { return Strategy{Kind: Name, Value: value} }

// ByLinkText returns an exact link text strategy.
func ByLinkText(value string) Strategy { return Strategy{Kind: LinkText, Value: value} }

// ByPartialLinkText returns a substring link text strategy.
func ByPartialLinkText(value string) Strategy { return Strategy{Kind: PartialLinkText, Value: value} }

// Within returns a copy of s scoped to descendants of parent.
func (s Strategy) Within(parent Strategy) Strategy {
	p := parent
	s.Scope = &p
	return s
}

// IsZero returns true when no strategy is set.
func (s Strategy) IsZero() bool {
	return s.Kind == "" && s.Value == ""
}

// Describe returns a human-readable form like css="#input-email".
func (s Strategy) Describe() string {
	if s.IsZero() {
		return ""
	}
	d := string(s.Kind) + "=\"" + s.Value + "\""
	if s.Scope != nil {
		d = s.Scope.Describe() + " >> " + d
	}
	return d
}

// Selector converts the strategy into a single selector string understood
// by the playwright driver. ID, name and link-text kinds are normalized to
// CSS/XPath so the driver only ever deals with two engines.
func (s Strategy) Selector() string {
	var sel string
	switch s.Kind {
	case CSS:
		sel = s.Value
	case XPath:
		sel = "xpath=" + s.Value
	case ID:
		sel = "#" + s.Value
	case Name:
		sel = "[name=\"" + s.Value + "\"]"
	case LinkText:
		sel = "xpath=//a[normalize-space()=\"" + s.Value + "\"]"
	case PartialLinkText:
		sel = "xpath=//a[contains(normalize-space(), \"" + s.Value + "\")]"
	}
	if s.Scope != nil {
		sel = s.Scope.Selector() + " >> " + sel
	}
	return sel
}
