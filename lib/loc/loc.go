package loc

import (
	"fmt"

	"github.com/gravitational/uitest/lib/browser"

	"github.com/gravitational/trace"
)

// Selector returns a locator for a raw selector string, i.e. "css=h1" or "text=Docs"
func Selector(selector string) Locator {
	return Locator{selector: selector}
}

// Handle returns a locator for a previously resolved element query
func Handle(element browser.Element) Locator {
	return Locator{element: element}
}

// Locator references a UI element either by selector or by a resolved
// element query. It carries no identity of its own: it is resolved against
// the page on every use.
type Locator struct {
	selector string
	element  browser.Element
}

// IsHandle reports whether the locator wraps a resolved element query
func (r Locator) IsHandle() bool {
	return r.element != nil
}

// IsZero reports whether the locator references nothing
func (r Locator) IsZero() bool {
	return r.element == nil && r.selector == ""
}

// Resolve normalizes the locator to an element query on page
func (r Locator) Resolve(page browser.Page) (browser.Element, error) {
	switch {
	case r.element != nil:
		return r.element, nil
	case r.selector != "":
		if page == nil {
			return nil, trace.BadParameter("no page to resolve %q against", r.selector)
		}
		return page.Locator(r.selector), nil
	default:
		return nil, trace.BadParameter("empty locator")
	}
}

// String describes the locator for error messages
func (r Locator) String() string {
	switch {
	case r.element != nil:
		return fmt.Sprintf("[Locator %v]", r.element)
	case r.selector != "":
		return r.selector
	default:
		return "<empty>"
	}
}

// MarshalText encodes a selector locator; handles have no textual form
func (r Locator) MarshalText() ([]byte, error) {
	if r.element != nil {
		return nil, trace.BadParameter("cannot marshal resolved locator %v", r)
	}
	return []byte(r.selector), nil
}

// UnmarshalText decodes a selector locator, so element documents can be
// decoded straight into Locator fields
func (r *Locator) UnmarshalText(p []byte) error {
	if len(p) == 0 {
		return trace.BadParameter("empty selector")
	}
	*r = Selector(string(p))
	return nil
}
