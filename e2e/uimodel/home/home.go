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

// Package home implements the page object of the application home page
package home

import (
	"context"
	_ "embed"

	"github.com/gravitational/uitest/e2e/uimodel/actions"
	"github.com/gravitational/uitest/e2e/uimodel/defaults"
	"github.com/gravitational/uitest/lib/loc"

	"github.com/gravitational/trace"
	"gopkg.in/yaml.v2"
)

//go:embed elements.yaml
var elementsDocument []byte

// Element is an entry of an element document
type Element struct {
	Locator loc.Locator `yaml:"locator"`
}

// Elements are the home page elements
type Elements struct {
	LoginLink Element `yaml:"loginLink"`
	Header    Element `yaml:"homePageHeader"`
}

// ParseElements decodes an element document
func ParseElements(data []byte) (*Elements, error) {
	var elements Elements
	if err := yaml.UnmarshalStrict(data, &elements); err != nil {
		return nil, trace.BadParameter("invalid element document: %v", err)
	}
	if elements.LoginLink.Locator.IsZero() || elements.Header.Locator.IsZero() {
		return nil, trace.BadParameter("element document misses loginLink or homePageHeader")
	}
	return &elements, nil
}

var elements = mustParse(elementsDocument)

func mustParse(data []byte) Elements {
	e, err := ParseElements(data)
	if err != nil {
		panic(err)
	}
	return *e
}

// Page is the home page
type Page struct {
	ui       *actions.UI
	elements Elements
}

// New returns the home page object acting through ui
func New(ui *actions.UI) *Page {
	return &Page{ui: ui, elements: elements}
}

// ClickOnHomePage follows the login link
func (p *Page) ClickOnHomePage(ctx context.Context) error {
	p.ui.Debug("Following the login link.")
	return trace.Wrap(p.ui.Click(ctx, p.elements.LoginLink.Locator))
}

// ValidateHomePage verifies the page header is shown
func (p *Page) ValidateHomePage(ctx context.Context) error {
	header := p.elements.Header.Locator
	if err := p.ui.WaitForVisible(ctx, header, defaults.HeaderTimeout); err != nil {
		return trace.Wrap(err)
	}
	if !p.ui.IsVisible(ctx, header) {
		return trace.CompareFailed("expected %q to be visible", header)
	}
	return nil
}
