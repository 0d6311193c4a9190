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

// Package browser defines the narrow view of a browser engine the harness
// depends on. The playwright driver implements it; tests substitute fakes.
package browser

import (
	"time"
)

// State is an element state an Element can be waited on for
type State string

const (
	// StateAttached is satisfied once the element is present in the DOM
	StateAttached State = "attached"
	// StateDetached is satisfied once the element is no longer in the DOM
	StateDetached State = "detached"
	// StateVisible is satisfied once the element has a non-empty bounding box
	StateVisible State = "visible"
	// StateHidden is satisfied once the element is detached or invisible
	StateHidden State = "hidden"
)

// LoadState is a page lifecycle state
type LoadState string

const (
	LoadStateLoad             LoadState = "load"
	LoadStateDOMContentLoaded LoadState = "domcontentloaded"
	LoadStateNetworkIdle      LoadState = "networkidle"
)

// SelectBy describes which <option> elements of a <select> to pick.
// Exactly one of the fields is expected to be set.
type SelectBy struct {
	Values  []string
	Labels  []string
	Indexes []int
}

// Element is a lazily evaluated query for an element on a page.
// It is resolved against the live DOM on every call.
type Element interface {
	// WaitFor blocks until the element reaches state or timeout elapses
	WaitFor(state State, timeout time.Duration) error
	// Click clicks the element
	Click(timeout time.Duration) error
	// Fill replaces the value of an input element
	Fill(value string, timeout time.Duration) error
	// Type sends text key by key without clearing existing content
	Type(text string, timeout time.Duration) error
	// TextContent returns the element text, empty if there is none
	TextContent(timeout time.Duration) (string, error)
	// IsEnabled reports whether the element is enabled right now
	IsEnabled() (bool, error)
	// IsVisible reports whether the element is visible right now
	IsVisible() (bool, error)
	// ScrollIntoCenter scrolls the element into the center of the viewport
	ScrollIntoCenter() error
	// Hover moves the pointer over the element
	Hover(timeout time.Duration) error
	// SetInputFiles sets the files of an <input type="file">
	SetInputFiles(paths []string) error
	// SelectOption selects options of a <select> and returns the selected values
	SelectOption(by SelectBy, timeout time.Duration) ([]string, error)
	// OptionCount returns the number of <option> elements under the element
	OptionCount() (int, error)
	// String describes the element query
	String() string
}

// Page is a single tab within a browsing context
type Page interface {
	// Locator returns a lazy element query for selector
	Locator(selector string) Element
	// Goto navigates to url
	Goto(url string) error
	// URL returns the current page URL
	URL() string
	// Screenshot captures the visible viewport as PNG
	Screenshot() ([]byte, error)
	// PressKey presses a single keyboard key, i.e. Enter or Escape
	PressKey(key string) error
	// Reload reloads the page
	Reload() error
	// WaitForLoadState blocks until the page reaches state
	WaitForLoadState(state LoadState, timeout time.Duration) error
	// WaitForURL blocks until the page URL matches url, which is either
	// a string (exact or glob) or a *regexp.Regexp
	WaitForURL(url interface{}, timeout time.Duration) error
	// Evaluate runs a script in the page
	Evaluate(script string) error
	// Close closes the page
	Close() error
}

// Context is an isolated browsing context (cookies, storage)
type Context interface {
	// NewPage opens a new page in this context
	NewPage() (Page, error)
	// Close closes the context and all its pages
	Close() error
}

// Browser is a running (local) or connected (remote) browser
type Browser interface {
	// NewContext creates a new browsing context
	NewContext() (Context, error)
	// Close closes the browser or the connection to it
	Close() error
}
