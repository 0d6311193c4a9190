/*
Copyright 2020 Gravitational, Inc.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package playwright

import (
	"errors"
	"time"

	"github.com/gravitational/uitest/lib/browser"

	"github.com/gravitational/trace"
	pw "github.com/playwright-community/playwright-go"
)

const scrollIntoCenter = "el => el.scrollIntoView({block: 'center', inline: 'center'})"

// ms converts d into the millisecond timeout playwright expects
func ms(d time.Duration) *float64 {
	return pw.Float(float64(d / time.Millisecond))
}

// convertError maps playwright timeouts onto trace.LimitExceeded
func convertError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pw.ErrTimeout) {
		return trace.LimitExceeded("%s", err.Error())
	}
	return trace.Wrap(err)
}

func waitState(state browser.State) *pw.WaitForSelectorState {
	switch state {
	case browser.StateAttached:
		return pw.WaitForSelectorStateAttached
	case browser.StateDetached:
		return pw.WaitForSelectorStateDetached
	case browser.StateHidden:
		return pw.WaitForSelectorStateHidden
	default:
		return pw.WaitForSelectorStateVisible
	}
}

func loadState(state browser.LoadState) *pw.LoadState {
	switch state {
	case browser.LoadStateDOMContentLoaded:
		return pw.LoadStateDomcontentloaded
	case browser.LoadStateNetworkIdle:
		return pw.LoadStateNetworkidle
	default:
		return pw.LoadStateLoad
	}
}

type element struct {
	locator  pw.Locator
	selector string
}

func (e *element) WaitFor(state browser.State, timeout time.Duration) error {
	return convertError(e.locator.WaitFor(pw.LocatorWaitForOptions{
		State:   waitState(state),
		Timeout: ms(timeout),
	}))
}

func (e *element) Click(timeout time.Duration) error {
	return convertError(e.locator.Click(pw.LocatorClickOptions{Timeout: ms(timeout)}))
}

func (e *element) Fill(value string, timeout time.Duration) error {
	return convertError(e.locator.Fill(value, pw.LocatorFillOptions{Timeout: ms(timeout)}))
}

func (e *element) Type(text string, timeout time.Duration) error {
	return convertError(e.locator.PressSequentially(text, pw.LocatorPressSequentiallyOptions{Timeout: ms(timeout)}))
}

func (e *element) TextContent(timeout time.Duration) (string, error) {
	text, err := e.locator.TextContent(pw.LocatorTextContentOptions{Timeout: ms(timeout)})
	return text, convertError(err)
}

func (e *element) IsEnabled() (bool, error) {
	enabled, err := e.locator.IsEnabled()
	return enabled, convertError(err)
}

func (e *element) IsVisible() (bool, error) {
	visible, err := e.locator.IsVisible()
	return visible, convertError(err)
}

func (e *element) ScrollIntoCenter() error {
	_, err := e.locator.Evaluate(scrollIntoCenter, nil)
	return convertError(err)
}

func (e *element) Hover(timeout time.Duration) error {
	return convertError(e.locator.Hover(pw.LocatorHoverOptions{Timeout: ms(timeout)}))
}

func (e *element) SetInputFiles(paths []string) error {
	return convertError(e.locator.SetInputFiles(paths))
}

func (e *element) SelectOption(by browser.SelectBy, timeout time.Duration) ([]string, error) {
	var values pw.SelectOptionValues
	switch {
	case len(by.Values) != 0:
		values.Values = &by.Values
	case len(by.Labels) != 0:
		values.Labels = &by.Labels
	case len(by.Indexes) != 0:
		values.Indexes = &by.Indexes
	default:
		return nil, trace.BadParameter("nothing to select")
	}
	selected, err := e.locator.SelectOption(values, pw.LocatorSelectOptionOptions{Timeout: ms(timeout)})
	return selected, convertError(err)
}

func (e *element) OptionCount() (int, error) {
	count, err := e.locator.Locator("option").Count()
	return count, convertError(err)
}

func (e *element) String() string {
	return e.selector
}

type page struct {
	page pw.Page
}

func (p *page) Locator(selector string) browser.Element {
	return &element{locator: p.page.Locator(selector), selector: selector}
}

func (p *page) Goto(url string) error {
	_, err := p.page.Goto(url)
	return convertError(err)
}

func (p *page) URL() string {
	return p.page.URL()
}

func (p *page) Screenshot() ([]byte, error) {
	data, err := p.page.Screenshot(pw.PageScreenshotOptions{
		Type:     pw.ScreenshotTypePng,
		FullPage: pw.Bool(false),
	})
	return data, convertError(err)
}

func (p *page) PressKey(key string) error {
	return convertError(p.page.Keyboard().Press(key))
}

func (p *page) Reload() error {
	_, err := p.page.Reload()
	return convertError(err)
}

func (p *page) WaitForLoadState(state browser.LoadState, timeout time.Duration) error {
	return convertError(p.page.WaitForLoadState(pw.PageWaitForLoadStateOptions{
		State:   loadState(state),
		Timeout: ms(timeout),
	}))
}

func (p *page) WaitForURL(url interface{}, timeout time.Duration) error {
	return convertError(p.page.WaitForURL(url, pw.PageWaitForURLOptions{Timeout: ms(timeout)}))
}

func (p *page) Evaluate(script string) error {
	_, err := p.page.Evaluate(script)
	return convertError(err)
}

func (p *page) Close() error {
	return convertError(p.page.Close())
}

type browserContext struct {
	context pw.BrowserContext
	monitor *monitor
}

func (c *browserContext) NewPage() (browser.Page, error) {
	pg, err := c.context.NewPage()
	if err != nil {
		return nil, convertError(err)
	}
	if c.monitor != nil {
		c.monitor.attach(pg)
	}
	return &page{page: pg}, nil
}

func (c *browserContext) Close() error {
	return convertError(c.context.Close())
}

type engineBrowser struct {
	browser pw.Browser
	options pw.BrowserNewContextOptions
	monitor *monitor
}

func (b *engineBrowser) NewContext() (browser.Context, error) {
	ctx, err := b.browser.NewContext(b.options)
	if err != nil {
		return nil, convertError(err)
	}
	return &browserContext{context: ctx, monitor: b.monitor}, nil
}

func (b *engineBrowser) Close() error {
	return convertError(b.browser.Close())
}
