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

package browser

import (
	"time"

	"github.com/gravitational/uitest/lib/constants"
	"github.com/gravitational/uitest/lib/defaults"

	"github.com/gravitational/trace"
	"github.com/sirupsen/logrus"
)

// Session is the browser, context and page triple owned by a single scenario
type Session struct {
	// ID uniquely identifies the session in logs and artifact names
	ID string
	// Browser is the running or connected browser
	Browser Browser
	// Context is the browsing context the page lives in
	Context Context
	// Page is the page scenario steps act on
	Page Page
}

// Close tears the session down in the order page, context, browser.
// Every step runs even if an earlier one failed; each close completes
// (or times out) before the next starts. The errors are aggregated.
func (s *Session) Close(log logrus.FieldLogger) error {
	if s == nil {
		return nil
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField(constants.FieldSession, s.ID)

	var errors []error
	step := func(name string, fn func() error) {
		if err := closeWithTimeout(fn, defaults.TeardownTimeout); err != nil {
			log.WithError(err).Warnf("failed to close %v", name)
			errors = append(errors, trace.Wrap(err, "closing %v", name))
			return
		}
		log.Debugf("closed %v", name)
	}

	if s.Page != nil {
		step("page", s.Page.Close)
	}
	if s.Context != nil {
		step("context", s.Context.Close)
	}
	if s.Browser != nil {
		step("browser", s.Browser.Close)
	}
	return trace.NewAggregate(errors...)
}

func closeWithTimeout(fn func() error, timeout time.Duration) error {
	errC := make(chan error, 1)
	go func() {
		errC <- fn()
	}()
	select {
	case err := <-errC:
		return trace.Wrap(err)
	case <-time.After(timeout):
		return trace.LimitExceeded("close did not complete within %v", timeout)
	}
}
