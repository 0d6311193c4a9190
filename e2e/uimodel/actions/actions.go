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

// Package actions is the UI action facade page objects are built on.
//
// Every verb resolves its locator against the page first, waits for the
// element precondition, acts and either succeeds silently or returns a single
// error naming the action and the locator. Timeouts are optional trailing
// arguments; the first one given wins.
package actions

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/gravitational/uitest/lib/browser"
	"github.com/gravitational/uitest/lib/constants"
	"github.com/gravitational/uitest/lib/defaults"
	"github.com/gravitational/uitest/lib/loc"
	"github.com/gravitational/uitest/lib/metrics"
	"github.com/gravitational/uitest/lib/tracing"
	"github.com/gravitational/uitest/lib/wait"

	"github.com/gravitational/trace"
	"github.com/sirupsen/logrus"
)

const (
	scrollToTop    = "window.scrollTo({top: 0, behavior: 'smooth'})"
	scrollToBottom = "window.scrollTo({top: document.body.scrollHeight, behavior: 'smooth'})"
)

// UI executes actions against a single page
type UI struct {
	logrus.FieldLogger
	page browser.Page
}

// New returns a facade bound to page
func New(page browser.Page, log logrus.FieldLogger) *UI {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &UI{FieldLogger: log, page: page}
}

// Page returns the page the facade is bound to
func (u *UI) Page() browser.Page {
	return u.page
}

// Click waits for the element to be attached and visible, scrolls it into
// the center of the viewport and clicks it
func (u *UI) Click(ctx context.Context, l loc.Locator, timeout ...time.Duration) error {
	return u.elementAction(ctx, "click", l, func(el browser.Element) error {
		if err := u.click(el, pick(defaults.ActionTimeout, timeout)); err != nil {
			return actionError(err, "failed to click %q", l)
		}
		return nil
	})
}

func (u *UI) click(el browser.Element, timeout time.Duration) error {
	if err := el.WaitFor(browser.StateAttached, timeout); err != nil {
		return trace.Wrap(err)
	}
	if err := el.WaitFor(browser.StateVisible, timeout); err != nil {
		return trace.Wrap(err)
	}
	u.scroll(el)
	return trace.Wrap(el.Click(timeout))
}

// ClickWithRetry clicks up to retries+1 times with a fixed delay between
// attempts. It stops at the first successful click.
func (u *UI) ClickWithRetry(ctx context.Context, l loc.Locator, retries int, delay time.Duration) error {
	if retries < 0 {
		return trace.BadParameter("retries must be >= 0, got %v", retries)
	}
	attempts := retries + 1
	return u.elementAction(ctx, "click_with_retry", l, func(el browser.Element) error {
		r := wait.Retryer{
			Delay:       delay,
			Attempts:    attempts,
			FixedDelay:  true,
			FieldLogger: u.WithField(constants.FieldLocator, l.String()),
		}
		err := r.Do(ctx, func() error {
			if err := u.click(el, defaults.ActionTimeout); err != nil {
				return actionError(err, "failed to click %q", l)
			}
			return nil
		})
		if err != nil {
			return actionError(err, "failed to click %q after %v attempts", l, attempts)
		}
		return nil
	})
}

// Type writes text key by key. Existing content is kept unless clear is set.
func (u *UI) Type(ctx context.Context, l loc.Locator, text string, clear bool, timeout ...time.Duration) error {
	return u.elementAction(ctx, "type", l, func(el browser.Element) error {
		t := pick(defaults.ActionTimeout, timeout)
		err := u.visible(el, t)
		if err == nil && clear {
			err = el.Fill("", t)
		}
		if err == nil {
			err = el.Type(text, t)
		}
		if err != nil {
			return actionError(err, "failed to type into %q", l)
		}
		return nil
	})
}

// SetValue replaces the content of an input with value
func (u *UI) SetValue(ctx context.Context, l loc.Locator, value string, timeout ...time.Duration) error {
	return u.elementAction(ctx, "set_value", l, func(el browser.Element) error {
		t := pick(defaults.ActionTimeout, timeout)
		err := u.visible(el, t)
		if err == nil {
			err = el.Fill("", t)
		}
		if err == nil {
			err = el.Fill(value, t)
		}
		if err != nil {
			return actionError(err, "failed to set value %q in %q", value, l)
		}
		return nil
	})
}

// ClearValue clears an input or textarea
func (u *UI) ClearValue(ctx context.Context, l loc.Locator, timeout ...time.Duration) error {
	return u.elementAction(ctx, "clear_value", l, func(el browser.Element) error {
		t := pick(defaults.ActionTimeout, timeout)
		err := u.visible(el, t)
		if err == nil {
			err = el.Fill("", t)
		}
		if err != nil {
			return actionError(err, "failed to clear value in %q", l)
		}
		return nil
	})
}

// GetText returns the text content of a visible element, empty if it has none
func (u *UI) GetText(ctx context.Context, l loc.Locator, timeout ...time.Duration) (text string, err error) {
	err = u.elementAction(ctx, "get_text", l, func(el browser.Element) error {
		t := pick(defaults.ActionTimeout, timeout)
		err := u.visible(el, t)
		if err == nil {
			text, err = el.TextContent(t)
		}
		if err != nil {
			return actionError(err, "failed to get text from %q", l)
		}
		return nil
	})
	return text, err
}

// IsVisible reports whether the element is visible right now.
// Any failure to evaluate the element counts as not visible.
func (u *UI) IsVisible(ctx context.Context, l loc.Locator) bool {
	var visible bool
	u.elementAction(ctx, "is_visible", l, func(el browser.Element) error {
		ok, err := el.IsVisible()
		if err != nil {
			u.WithError(err).WithField(constants.FieldLocator, l.String()).Debug("visibility check failed")
			return nil
		}
		visible = ok
		return nil
	})
	return visible
}

// Hover moves the pointer over a visible element
func (u *UI) Hover(ctx context.Context, l loc.Locator, timeout ...time.Duration) error {
	return u.elementAction(ctx, "hover", l, func(el browser.Element) error {
		t := pick(defaults.ActionTimeout, timeout)
		err := el.WaitFor(browser.StateVisible, t)
		if err == nil {
			err = el.Hover(t)
		}
		if err != nil {
			return actionError(err, "failed to hover over %q", l)
		}
		return nil
	})
}

// UploadFile sets the files of an <input type="file">
func (u *UI) UploadFile(ctx context.Context, l loc.Locator, paths ...string) error {
	if len(paths) == 0 {
		return trace.BadParameter("no files to upload into %q", l)
	}
	return u.elementAction(ctx, "upload_file", l, func(el browser.Element) error {
		if err := el.SetInputFiles(paths); err != nil {
			return actionError(err, "failed to upload %v into %q", strings.Join(paths, ", "), l)
		}
		return nil
	})
}

// ScrollIntoCenter scrolls the element into the center of the viewport.
// Scroll failures are logged and ignored.
func (u *UI) ScrollIntoCenter(ctx context.Context, l loc.Locator) error {
	return u.elementAction(ctx, "scroll_into_center", l, func(el browser.Element) error {
		u.scroll(el)
		return nil
	})
}

// WaitForVisible waits until the element is visible
func (u *UI) WaitForVisible(ctx context.Context, l loc.Locator, timeout ...time.Duration) error {
	return u.waitFor(ctx, "wait_for_visible", l, browser.StateVisible, timeout)
}

// WaitForNotVisible waits until the element is hidden or gone
func (u *UI) WaitForNotVisible(ctx context.Context, l loc.Locator, timeout ...time.Duration) error {
	return u.waitFor(ctx, "wait_for_not_visible", l, browser.StateHidden, timeout)
}

// WaitForDetached waits until the element is removed from the DOM
func (u *UI) WaitForDetached(ctx context.Context, l loc.Locator, timeout ...time.Duration) error {
	return u.waitFor(ctx, "wait_for_detached", l, browser.StateDetached, timeout)
}

// WaitForAttached waits until the element is present in the DOM
func (u *UI) WaitForAttached(ctx context.Context, l loc.Locator, timeout ...time.Duration) error {
	return u.waitFor(ctx, "wait_for_attached", l, browser.StateAttached, timeout)
}

func (u *UI) waitFor(ctx context.Context, action string, l loc.Locator, state browser.State, timeout []time.Duration) error {
	t := pick(defaults.WaitTimeout, timeout)
	return u.elementAction(ctx, action, l, func(el browser.Element) error {
		if err := el.WaitFor(state, t); err != nil {
			return trace.LimitExceeded("element %q did not become %v within %v: %v",
				l, state, t, trace.UserMessage(err))
		}
		return nil
	})
}

// WaitForEnabled polls until the element is enabled
func (u *UI) WaitForEnabled(ctx context.Context, l loc.Locator, timeout ...time.Duration) error {
	return u.poll(ctx, "wait_for_enabled", l, "enabled", timeout, func(el browser.Element) bool {
		enabled, err := el.IsEnabled()
		return err == nil && enabled
	})
}

// WaitForDisabled polls until the element is disabled
func (u *UI) WaitForDisabled(ctx context.Context, l loc.Locator, timeout ...time.Duration) error {
	return u.poll(ctx, "wait_for_disabled", l, "disabled", timeout, func(el browser.Element) bool {
		enabled, err := el.IsEnabled()
		return err == nil && !enabled
	})
}

// WaitForText polls until the element text satisfies expected
func (u *UI) WaitForText(ctx context.Context, l loc.Locator, expected TextMatcher, timeout ...time.Duration) error {
	if expected == nil {
		return trace.BadParameter("missing text matcher")
	}
	return u.poll(ctx, "wait_for_text", l, fmt.Sprintf("text %v", expected), timeout, func(el browser.Element) bool {
		text, err := el.TextContent(defaults.PollInterval)
		if err != nil {
			text = ""
		}
		return expected.Match(text)
	})
}

func (u *UI) poll(ctx context.Context, action string, l loc.Locator, what string, timeout []time.Duration, cond func(browser.Element) bool) error {
	t := pick(defaults.WaitTimeout, timeout)
	return u.elementAction(ctx, action, l, func(el browser.Element) error {
		err := wait.Until(ctx, defaults.PollInterval, t, func() bool { return cond(el) })
		if err != nil {
			if trace.IsLimitExceeded(err) {
				return trace.LimitExceeded("element %q did not become %v within %v", l, what, t)
			}
			return trace.Wrap(err)
		}
		return nil
	})
}

// SelectByValue selects the <option> with the given value
func (u *UI) SelectByValue(ctx context.Context, l loc.Locator, value string, timeout ...time.Duration) error {
	return u.selectOption(ctx, "select_by_value", l, browser.SelectBy{Values: []string{value}},
		fmt.Sprintf("value %q", value), timeout)
}

// SelectByLabel selects the <option> with the given visible text
func (u *UI) SelectByLabel(ctx context.Context, l loc.Locator, label string, timeout ...time.Duration) error {
	return u.selectOption(ctx, "select_by_label", l, browser.SelectBy{Labels: []string{label}},
		fmt.Sprintf("label %q", label), timeout)
}

// SelectByIndex selects the <option> at the zero-based index
func (u *UI) SelectByIndex(ctx context.Context, l loc.Locator, index int, timeout ...time.Duration) error {
	return u.elementAction(ctx, "select_by_index", l, func(el browser.Element) error {
		count, err := el.OptionCount()
		if err != nil {
			return actionError(err, "failed to list options of %q", l)
		}
		if index < 0 || index >= count {
			return trace.NotFound("no option found at index %v for %q", index, l)
		}
		return u.selectOn(el, l, browser.SelectBy{Indexes: []int{index}},
			fmt.Sprintf("index %v", index), pick(defaults.ActionTimeout, timeout))
	})
}

func (u *UI) selectOption(ctx context.Context, action string, l loc.Locator, by browser.SelectBy, what string, timeout []time.Duration) error {
	return u.elementAction(ctx, action, l, func(el browser.Element) error {
		return u.selectOn(el, l, by, what, pick(defaults.ActionTimeout, timeout))
	})
}

func (u *UI) selectOn(el browser.Element, l loc.Locator, by browser.SelectBy, what string, timeout time.Duration) error {
	selected, err := el.SelectOption(by, timeout)
	if err != nil {
		return actionError(err, "failed to select %v on %q", what, l)
	}
	if len(selected) == 0 {
		return trace.NotFound("failed to select %v on %q", what, l)
	}
	return nil
}

// PressKey presses a single key, i.e. Enter, Escape or Tab
func (u *UI) PressKey(ctx context.Context, key string) error {
	return u.pageAction(ctx, "press_key", func() error {
		if err := u.page.PressKey(key); err != nil {
			return actionError(err, "failed to press %q", key)
		}
		return nil
	})
}

// ScrollToTop scrolls the window to the top
func (u *UI) ScrollToTop(ctx context.Context) error {
	return u.pageAction(ctx, "scroll_to_top", func() error {
		return trace.Wrap(u.page.Evaluate(scrollToTop), "failed to scroll to top")
	})
}

// ScrollToBottom scrolls the window to the bottom
func (u *UI) ScrollToBottom(ctx context.Context) error {
	return u.pageAction(ctx, "scroll_to_bottom", func() error {
		return trace.Wrap(u.page.Evaluate(scrollToBottom), "failed to scroll to bottom")
	})
}

// Wait pauses for d or until ctx is done
func (u *UI) Wait(ctx context.Context, d time.Duration) {
	wait.Sleep(ctx, d)
}

// Refresh reloads the page and waits for state
func (u *UI) Refresh(ctx context.Context, state browser.LoadState, timeout ...time.Duration) error {
	return u.pageAction(ctx, "refresh", func() error {
		if err := u.page.Reload(); err != nil {
			return actionError(err, "failed to reload %v", u.page.URL())
		}
		return trace.Wrap(u.page.WaitForLoadState(state, pick(defaults.LoadStateTimeout, timeout)))
	})
}

// WaitForLoadState waits until the page reaches state
func (u *UI) WaitForLoadState(ctx context.Context, state browser.LoadState, timeout ...time.Duration) error {
	t := pick(defaults.LoadStateTimeout, timeout)
	return u.pageAction(ctx, "wait_for_load_state", func() error {
		if err := u.page.WaitForLoadState(state, t); err != nil {
			return trace.LimitExceeded("page did not reach %v within %v: %v", state, t, trace.UserMessage(err))
		}
		return nil
	})
}

// WaitForURL waits until the page URL matches url, either a string
// (exact or glob) or a *regexp.Regexp
func (u *UI) WaitForURL(ctx context.Context, url interface{}, timeout ...time.Duration) error {
	switch url.(type) {
	case string, *regexp.Regexp:
	default:
		return trace.BadParameter("unsupported URL matcher %T", url)
	}
	t := pick(defaults.WaitTimeout, timeout)
	return u.pageAction(ctx, "wait_for_url", func() error {
		if err := u.page.WaitForURL(url, t); err != nil {
			return trace.LimitExceeded("page URL did not match %v within %v: %v", url, t, trace.UserMessage(err))
		}
		return nil
	})
}

// NavigateTo opens url in the page
func (u *UI) NavigateTo(ctx context.Context, url string) error {
	return u.pageAction(ctx, "navigate", func() error {
		if err := u.page.Goto(url); err != nil {
			return actionError(err, "failed to navigate to %v", url)
		}
		return nil
	})
}

// elementAction resolves l and runs fn on the element inside an instrumented action
func (u *UI) elementAction(ctx context.Context, action string, l loc.Locator, fn func(browser.Element) error) error {
	ctx, span := tracing.Start(ctx, "ui."+action, tracing.AttrLocator.String(l.String()))
	start := time.Now()
	log := u.WithFields(logrus.Fields{
		constants.FieldAction:  action,
		constants.FieldLocator: l.String(),
	})
	log.Debug("start")

	err := u.run(ctx, l, fn)

	metrics.ObserveAction(action, start, err)
	tracing.End(span, err)
	if err != nil {
		log.WithError(err).Debug("failed")
	} else {
		log.Debugf("done in %v", time.Since(start))
	}
	return err
}

func (u *UI) run(ctx context.Context, l loc.Locator, fn func(browser.Element) error) error {
	if err := ctx.Err(); err != nil {
		return trace.Wrap(err)
	}
	el, err := l.Resolve(u.page)
	if err != nil {
		return trace.Wrap(err)
	}
	return fn(el)
}

// pageAction runs a page-level action that targets no element
func (u *UI) pageAction(ctx context.Context, action string, fn func() error) error {
	ctx, span := tracing.Start(ctx, "ui."+action)
	start := time.Now()
	log := u.WithField(constants.FieldAction, action)
	log.Debug("start")

	err := ctx.Err()
	if err == nil {
		err = fn()
	}

	metrics.ObserveAction(action, start, err)
	tracing.End(span, err)
	if err != nil {
		log.WithError(err).Debug("failed")
	}
	return trace.Wrap(err)
}

func (u *UI) visible(el browser.Element, timeout time.Duration) error {
	if err := el.WaitFor(browser.StateVisible, timeout); err != nil {
		return trace.Wrap(err)
	}
	u.scroll(el)
	return nil
}

// scroll centers the element in the viewport; failures are not fatal
func (u *UI) scroll(el browser.Element) {
	if err := el.ScrollIntoCenter(); err != nil {
		u.WithError(err).WithField(constants.FieldLocator, el.String()).Debug("scroll into center failed")
	}
}

// pick returns the first of the optional values or def
func pick(def time.Duration, params []time.Duration) time.Duration {
	if len(params) != 0 && params[0] > 0 {
		return params[0]
	}
	return def
}

// actionError wraps err with a message naming the action and the locator,
// keeping the timeout and not found kinds of err
func actionError(err error, format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...) + ": " + trace.UserMessage(err)
	switch {
	case trace.IsLimitExceeded(err):
		return trace.LimitExceeded("%s", msg)
	case trace.IsNotFound(err):
		return trace.NotFound("%s", msg)
	default:
		return trace.Errorf("%s", msg)
	}
}
