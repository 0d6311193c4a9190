// Package browsertest provides in-memory fakes of the browser interfaces
// for exercising the harness without a browser engine.
package browsertest

import (
	"strings"
	"sync"
	"time"

	"github.com/gravitational/uitest/lib/browser"

	"github.com/gravitational/trace"
)

// PNG is a minimal PNG signature returned by fake screenshots
var PNG = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// Option is an <option> of a fake <select> element
type Option struct {
	Value string
	Label string
}

// Element is a programmable fake browser.Element.
// Nil hooks mean the call succeeds immediately.
type Element struct {
	mu sync.Mutex

	Selector string

	// WaitForFn overrides WaitFor
	WaitForFn func(state browser.State, timeout time.Duration) error
	// ClickFn overrides Click
	ClickFn func() error
	// EnabledFn overrides IsEnabled (default: enabled)
	EnabledFn func() (bool, error)
	// VisibleFn overrides IsVisible (default: visible)
	VisibleFn func() (bool, error)
	// TextFn overrides TextContent
	TextFn func() (string, error)
	// ScrollErr is returned from ScrollIntoCenter
	ScrollErr error
	// FillErr is returned from Fill and Type
	FillErr error

	// Value is the current input value
	Value string
	// Text is the text content returned when TextFn is nil
	Text string
	// Options are the options of a <select>
	Options []Option
	// Selected holds the values picked by the last SelectOption
	Selected []string
	// Files holds the files set by SetInputFiles
	Files []string

	calls []string
}

// NewElement returns a fake element for selector
func NewElement(selector string) *Element {
	return &Element{Selector: selector}
}

// Missing returns an element that never appears: every wait blocks
// for the full timeout and then fails
func Missing(selector string) *Element {
	e := NewElement(selector)
	e.WaitForFn = func(state browser.State, timeout time.Duration) error {
		if state == browser.StateDetached || state == browser.StateHidden {
			return nil
		}
		time.Sleep(timeout)
		return trace.LimitExceeded("timeout %v exceeded waiting for %q to be %v", timeout, selector, state)
	}
	e.ClickFn = func() error {
		return trace.NotFound("element %q not found", selector)
	}
	e.VisibleFn = func() (bool, error) { return false, nil }
	e.EnabledFn = func() (bool, error) { return false, trace.NotFound("element %q not found", selector) }
	e.TextFn = func() (string, error) { return "", trace.NotFound("element %q not found", selector) }
	return e
}

// Calls returns the names of the methods invoked on the element, in order
func (e *Element) Calls() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.calls...)
}

// CallCount returns how many times method was invoked
func (e *Element) CallCount(method string) int {
	var n int
	for _, c := range e.Calls() {
		if c == method {
			n++
		}
	}
	return n
}

func (e *Element) record(call string) {
	e.mu.Lock()
	e.calls = append(e.calls, call)
	e.mu.Unlock()
}

func (e *Element) WaitFor(state browser.State, timeout time.Duration) error {
	e.record("WaitFor:" + string(state))
	if e.WaitForFn != nil {
		return e.WaitForFn(state, timeout)
	}
	return nil
}

func (e *Element) Click(timeout time.Duration) error {
	e.record("Click")
	if e.ClickFn != nil {
		return e.ClickFn()
	}
	return nil
}

func (e *Element) Fill(value string, timeout time.Duration) error {
	e.record("Fill")
	if e.FillErr != nil {
		return e.FillErr
	}
	e.mu.Lock()
	e.Value = value
	e.mu.Unlock()
	return nil
}

func (e *Element) Type(text string, timeout time.Duration) error {
	e.record("Type")
	if e.FillErr != nil {
		return e.FillErr
	}
	e.mu.Lock()
	e.Value += text
	e.mu.Unlock()
	return nil
}

func (e *Element) TextContent(timeout time.Duration) (string, error) {
	e.record("TextContent")
	if e.TextFn != nil {
		return e.TextFn()
	}
	return e.Text, nil
}

func (e *Element) IsEnabled() (bool, error) {
	e.record("IsEnabled")
	if e.EnabledFn != nil {
		return e.EnabledFn()
	}
	return true, nil
}

func (e *Element) IsVisible() (bool, error) {
	e.record("IsVisible")
	if e.VisibleFn != nil {
		return e.VisibleFn()
	}
	return true, nil
}

func (e *Element) ScrollIntoCenter() error {
	e.record("ScrollIntoCenter")
	return e.ScrollErr
}

func (e *Element) Hover(timeout time.Duration) error {
	e.record("Hover")
	return nil
}

func (e *Element) SetInputFiles(paths []string) error {
	e.record("SetInputFiles")
	e.Files = paths
	return nil
}

func (e *Element) SelectOption(by browser.SelectBy, timeout time.Duration) ([]string, error) {
	e.record("SelectOption")
	var selected []string
	for i, o := range e.Options {
		switch {
		case contains(by.Values, o.Value), contains(by.Labels, o.Label), containsInt(by.Indexes, i):
			selected = append(selected, o.Value)
		}
	}
	e.Selected = selected
	return selected, nil
}

func (e *Element) OptionCount() (int, error) {
	e.record("OptionCount")
	return len(e.Options), nil
}

func (e *Element) String() string {
	return e.Selector
}

// Page is a fake browser.Page serving registered elements.
// Unregistered selectors resolve to Missing elements.
type Page struct {
	mu sync.Mutex

	// CloseErr is returned from Close
	CloseErr error
	// ScreenshotErr is returned from Screenshot
	ScreenshotErr error
	// Recorder receives lifecycle events when set
	Recorder *Recorder

	url         string
	visited     []string
	screenshots int
	keys        []string
	scripts     []string
	elements    map[string]*Element
}

// NewPage returns an empty fake page
func NewPage() *Page {
	return &Page{elements: map[string]*Element{}}
}

// Add registers elements with the page, keyed by their selector
func (p *Page) Add(elements ...*Element) *Page {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, e := range elements {
		p.elements[e.Selector] = e
	}
	return p
}

// Element returns the registered element for selector
func (p *Page) Element(selector string) *Element {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.elements[selector]
}

func (p *Page) Locator(selector string) browser.Element {
	p.mu.Lock()
	defer p.mu.Unlock()
	if e, ok := p.elements[selector]; ok {
		return e
	}
	e := Missing(selector)
	p.elements[selector] = e
	return e
}

func (p *Page) Goto(url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.url = url
	p.visited = append(p.visited, url)
	return nil
}

// Visited returns the URLs navigated to, in order
func (p *Page) Visited() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.visited...)
}

func (p *Page) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url
}

func (p *Page) Screenshot() ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Recorder.Record("screenshot")
	if p.ScreenshotErr != nil {
		return nil, p.ScreenshotErr
	}
	p.screenshots++
	return PNG, nil
}

// Screenshots returns the number of screenshots taken
func (p *Page) Screenshots() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.screenshots
}

func (p *Page) PressKey(key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, key)
	return nil
}

// Keys returns the keys pressed, in order
func (p *Page) Keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.keys...)
}

func (p *Page) Reload() error {
	return nil
}

func (p *Page) WaitForLoadState(state browser.LoadState, timeout time.Duration) error {
	return nil
}

func (p *Page) WaitForURL(url interface{}, timeout time.Duration) error {
	if s, ok := url.(string); ok && !strings.HasSuffix(p.URL(), s) {
		time.Sleep(timeout)
		return trace.LimitExceeded("url %q not reached within %v", s, timeout)
	}
	return nil
}

func (p *Page) Evaluate(script string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scripts = append(p.scripts, script)
	return nil
}

// Scripts returns the scripts evaluated, in order
func (p *Page) Scripts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.scripts...)
}

func (p *Page) Close() error {
	p.Recorder.Record("page.close")
	return p.CloseErr
}

// Context is a fake browser.Context
type Context struct {
	// Page is returned from NewPage
	Page *Page
	// NewPageErr is returned from NewPage
	NewPageErr error
	// CloseErr is returned from Close
	CloseErr error
	// Recorder receives lifecycle events when set
	Recorder *Recorder
}

func (c *Context) NewPage() (browser.Page, error) {
	if c.NewPageErr != nil {
		return nil, c.NewPageErr
	}
	return c.Page, nil
}

func (c *Context) Close() error {
	c.Recorder.Record("context.close")
	return c.CloseErr
}

// Browser is a fake browser.Browser
type Browser struct {
	// Context is returned from NewContext
	Context *Context
	// CloseErr is returned from Close
	CloseErr error
	// Recorder receives lifecycle events when set
	Recorder *Recorder
}

func (b *Browser) NewContext() (browser.Context, error) {
	return b.Context, nil
}

func (b *Browser) Close() error {
	b.Recorder.Record("browser.close")
	return b.CloseErr
}

// NewSession returns a session of fakes sharing one recorder
func NewSession(id string, page *Page) (*browser.Session, *Recorder) {
	rec := &Recorder{}
	page.Recorder = rec
	ctx := &Context{Page: page, Recorder: rec}
	b := &Browser{Context: ctx, Recorder: rec}
	return &browser.Session{ID: id, Browser: b, Context: ctx, Page: page}, rec
}

// Recorder keeps an ordered log of lifecycle events. A nil Recorder discards events.
type Recorder struct {
	mu     sync.Mutex
	events []string
}

// Record appends an event
func (r *Recorder) Record(event string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
}

// Events returns recorded events in order
func (r *Recorder) Events() []string {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

func containsInt(values []int, v int) bool {
	for _, i := range values {
		if i == v {
			return true
		}
	}
	return false
}
