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

package framework

import (
	"context"
	"reflect"
	"sync"
	"time"

	"github.com/gravitational/uitest/driver"
	"github.com/gravitational/uitest/e2e/uimodel/actions"
	"github.com/gravitational/uitest/lib/browser"
	"github.com/gravitational/uitest/lib/config"
	"github.com/gravitational/uitest/lib/constants"
	"github.com/gravitational/uitest/lib/metrics"

	"github.com/google/uuid"
	"github.com/gravitational/trace"
	"github.com/sirupsen/logrus"
	oteltrace "go.opentelemetry.io/otel/trace"
)

type worldState int

const (
	stateNew worldState = iota
	stateActive
	stateTornDown
)

func (s worldState) String() string {
	switch s {
	case stateNew:
		return "uninitialized"
	case stateActive:
		return "active"
	default:
		return "torn down"
	}
}

// World is the context of a single scenario: the browser session,
// the action facade bound to its page and the page objects built on top
type World struct {
	logrus.FieldLogger
	// ID uniquely identifies the scenario run
	ID string
	// Name is the scenario name
	Name string
	// Environment is the application environment
	Environment string
	// BaseURL is the application URL
	BaseURL string
	// Values is the merged environment config
	Values config.Values
	// Started is when the world was created
	Started time.Time

	mu      sync.Mutex
	state   worldState
	target  driver.Target
	session *browser.Session
	ui      *actions.UI
	pages   map[reflect.Type]interface{}
	span    oteltrace.Span
}

// NewWorld returns an uninitialized world for the named scenario
func NewWorld(name string, settings *Settings, log logrus.FieldLogger) *World {
	id := uuid.New().String()
	return &World{
		FieldLogger: log.WithFields(logrus.Fields{
			constants.FieldScenario:    name,
			constants.FieldEnvironment: settings.Environment,
		}),
		ID:          id,
		Name:        name,
		Environment: settings.Environment,
		BaseURL:     settings.BaseURL,
		Values:      settings.Values,
		Started:     time.Now(),
		pages:       make(map[reflect.Type]interface{}),
	}
}

// Start launches the browser session for target and binds the action facade to its page
func (w *World) Start(ctx context.Context, launcher driver.Launcher, target driver.Target) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != stateNew {
		return trace.CompareFailed("scenario %q is %v, cannot start", w.Name, w.state)
	}
	session, err := launcher.Launch(ctx, target)
	if err != nil {
		return trace.Wrap(err)
	}
	w.FieldLogger = w.WithFields(logrus.Fields{
		constants.FieldSession: session.ID,
		constants.FieldTarget:  target.String(),
	})
	w.target = target
	w.session = session
	w.ui = actions.New(session.Page, w.FieldLogger)
	w.state = stateActive
	metrics.ActiveSessions.Inc()
	return nil
}

// Target returns the target the session was started for
func (w *World) Target() driver.Target {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.target
}

// Session returns the active browser session
func (w *World) Session() (*browser.Session, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.checkActive(); err != nil {
		return nil, trace.Wrap(err)
	}
	return w.session, nil
}

// UI returns the action facade bound to the session page
func (w *World) UI() (*actions.UI, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.checkActive(); err != nil {
		return nil, trace.Wrap(err)
	}
	return w.ui, nil
}

// Page returns the session page
func (w *World) Page() (browser.Page, error) {
	session, err := w.Session()
	if err != nil {
		return nil, trace.Wrap(err)
	}
	return session.Page, nil
}

// Screenshot captures the visible viewport of the session page
func (w *World) Screenshot() ([]byte, error) {
	page, err := w.Page()
	if err != nil {
		return nil, trace.Wrap(err)
	}
	data, err := page.Screenshot()
	return data, trace.Wrap(err)
}

// Teardown closes the session. It is safe to call more than once;
// only the first call closes anything.
func (w *World) Teardown() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == stateTornDown {
		return nil
	}
	wasActive := w.state == stateActive
	w.state = stateTornDown
	w.pages = nil
	w.ui = nil
	if !wasActive {
		return nil
	}
	metrics.ActiveSessions.Dec()
	err := w.session.Close(w.FieldLogger)
	if err != nil {
		metrics.TeardownErrors.Inc()
	}
	return trace.Wrap(err)
}

func (w *World) checkActive() error {
	switch w.state {
	case stateNew:
		return trace.BadParameter("scenario %q has no browser session yet", w.Name)
	case stateTornDown:
		return trace.CompareFailed("scenario %q has already been torn down", w.Name)
	}
	return nil
}

// GetPage returns the page object of type T for this scenario, building it
// with factory on first use. Later calls return the same instance.
func GetPage[T any](w *World, factory func(*actions.UI) T) (T, error) {
	var zero T
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.checkActive(); err != nil {
		return zero, trace.Wrap(err)
	}
	key := reflect.TypeOf((*T)(nil)).Elem()
	if page, ok := w.pages[key]; ok {
		return page.(T), nil
	}
	page := factory(w.ui)
	w.pages[key] = page
	return page, nil
}
