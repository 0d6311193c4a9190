package loc

import (
	"encoding/json"
	"testing"

	"github.com/gravitational/uitest/lib/browser/browsertest"

	"github.com/gravitational/trace"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestSelectorResolvesAgainstPage(t *testing.T) {
	header := browsertest.NewElement("h1")
	page := browsertest.NewPage().Add(header)

	el, err := Selector("h1").Resolve(page)
	require.NoError(t, err)
	require.Equal(t, header, el)
	require.Equal(t, "h1", Selector("h1").String())
}

func TestHandleResolvesToItself(t *testing.T) {
	button := browsertest.NewElement("#submit")
	l := Handle(button)

	el, err := l.Resolve(nil)
	require.NoError(t, err)
	require.Equal(t, button, el)
	require.True(t, l.IsHandle())
	require.Equal(t, "[Locator #submit]", l.String())
}

func TestEmptyLocator(t *testing.T) {
	var l Locator
	require.True(t, l.IsZero())
	_, err := l.Resolve(browsertest.NewPage())
	require.True(t, trace.IsBadParameter(err))
}

func TestUnmarshalSelector(t *testing.T) {
	var doc struct {
		Header Locator `json:"header"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"header":"css=h1.title"}`), &doc))
	require.Equal(t, "css=h1.title", doc.Header.String())
	require.False(t, doc.Header.IsHandle())

	_, err := Handle(browsertest.NewElement("a")).MarshalText()
	require.Error(t, err)
}

func TestSelectorRoundTripDescribes(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		selector := rapid.StringMatching(`[a-z#.\[\]=]{1,20}`).Draw(t, "selector")
		page := browsertest.NewPage()
		el, err := Selector(selector).Resolve(page)
		if err != nil {
			t.Fatalf("resolve %q: %v", selector, err)
		}
		if el.String() != selector || Selector(selector).String() != selector {
			t.Fatalf("locator for %q described as %q", selector, el.String())
		}
	})
}
