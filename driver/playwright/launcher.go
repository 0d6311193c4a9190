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

// Package playwright implements browser sessions on top of playwright-go
package playwright

import (
	"context"
	"strings"
	"time"

	"github.com/gravitational/uitest/driver"
	"github.com/gravitational/uitest/lib/browser"
	"github.com/gravitational/uitest/lib/constants"
	"github.com/gravitational/uitest/lib/defaults"
	"github.com/gravitational/uitest/lib/metrics"
	"github.com/gravitational/uitest/lib/wait"

	"github.com/cenkalti/backoff"
	"github.com/google/uuid"
	"github.com/gravitational/trace"
	pw "github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"
)

// ClientVersion is the playwright version driven by playwright-go
const ClientVersion = "1.52.0"

// Config configures the launcher
type Config struct {
	// Headless launches local browsers without a window
	Headless bool
	// Monitor logs console, page errors and network traffic of every page
	Monitor bool
	// Install downloads the driver and browsers before the first launch
	Install bool
	// ConnectTimeout bounds the time spent connecting to a remote browser
	ConnectTimeout time.Duration
}

// CheckAndSetDefaults fills in defaults
func (r *Config) CheckAndSetDefaults() error {
	if r.ConnectTimeout == 0 {
		r.ConnectTimeout = defaults.RemoteConnectTimeout
	}
	if r.ConnectTimeout < 0 {
		return trace.BadParameter("connect timeout must be positive, got %v", r.ConnectTimeout)
	}
	return nil
}

// Launcher starts browser sessions through a single shared playwright driver.
// Every session owns its browser; only the driver process is shared.
type Launcher struct {
	logrus.FieldLogger
	config Config
	pw     *pw.Playwright
}

// New starts the playwright driver
func New(config Config, log logrus.FieldLogger) (*Launcher, error) {
	if err := config.CheckAndSetDefaults(); err != nil {
		return nil, trace.Wrap(err)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	if config.Install {
		if err := pw.Install(); err != nil {
			return nil, trace.Wrap(err, "failed to install playwright driver")
		}
	}
	p, err := pw.Run()
	if err != nil {
		return nil, trace.Wrap(err, "failed to start playwright driver")
	}
	return &Launcher{FieldLogger: log, config: config, pw: p}, nil
}

// Stop stops the playwright driver
func (l *Launcher) Stop() error {
	return trace.Wrap(l.pw.Stop())
}

// Launch starts a browser for target and opens one context with one page.
// It never navigates.
func (l *Launcher) Launch(ctx context.Context, target driver.Target) (session *browser.Session, err error) {
	id := uuid.New().String()
	log := l.WithFields(logrus.Fields{
		constants.FieldSession: id,
		constants.FieldTarget:  target.String(),
	})
	defer func() {
		metrics.Sessions.WithLabelValues(target.Mode, metrics.Result(err)).Inc()
	}()

	var b *engineBrowser
	if target.IsRemote() {
		b, err = l.connect(ctx, target, log)
	} else {
		b, err = l.launch(target)
	}
	if err != nil {
		return nil, trace.Wrap(err)
	}
	if l.config.Monitor {
		b.monitor = newMonitor(log)
	}

	session = &browser.Session{ID: id, Browser: b}
	if session.Context, err = b.NewContext(); err != nil {
		session.Close(log)
		return nil, trace.Wrap(err, "failed to create browser context")
	}
	if session.Page, err = session.Context.NewPage(); err != nil {
		session.Close(log)
		return nil, trace.Wrap(err, "failed to open page")
	}
	log.Info("browser session started")
	return session, nil
}

func (l *Launcher) launch(target driver.Target) (*engineBrowser, error) {
	var engine pw.BrowserType
	switch target.Engine {
	case constants.EngineFirefox:
		engine = l.pw.Firefox
	case constants.EngineWebKit:
		engine = l.pw.WebKit
	default:
		engine = l.pw.Chromium
	}
	options := pw.BrowserTypeLaunchOptions{
		Headless: pw.Bool(l.config.Headless),
		Args:     []string{"--start-maximized"},
	}
	if target.Channel != "" && engine == l.pw.Chromium {
		options.Channel = pw.String(target.Channel)
	}
	b, err := engine.Launch(options)
	if err != nil {
		return nil, trace.Wrap(convertError(err), "failed to launch %v", target)
	}
	return &engineBrowser{
		browser: b,
		options: pw.BrowserNewContextOptions{NoViewport: pw.Bool(true)},
	}, nil
}

// connect connects to the remote device farm, retrying transient failures
// with exponential backoff for at most ConnectTimeout
func (l *Launcher) connect(ctx context.Context, target driver.Target, log logrus.FieldLogger) (*engineBrowser, error) {
	caps := target.Capabilities.Clone()
	if !caps.HasClientVersion() {
		if err := caps.SetClientVersion(ClientVersion); err != nil {
			return nil, trace.Wrap(err)
		}
	}
	endpoint, err := caps.Endpoint()
	if err != nil {
		return nil, trace.Wrap(err)
	}
	log.WithField("caps", caps.Redacted()).Info("connecting to remote browser")

	connect := func(endpoint string, timeout time.Duration) (pw.Browser, error) {
		return l.pw.Chromium.Connect(endpoint, pw.BrowserTypeConnectOptions{Timeout: ms(timeout)})
	}
	remote, err := connectWithRetry(ctx, endpoint, connect, l.config.ConnectTimeout, log)
	if err != nil {
		return nil, trace.Wrap(err, "failed to connect to %v", target)
	}
	return &engineBrowser{browser: remote}, nil
}

// connectFunc dials a remote browser endpoint within timeout
type connectFunc func(endpoint string, timeout time.Duration) (pw.Browser, error)

// connectWithRetry calls connect until it succeeds or total elapses.
// Rejected credentials or capabilities stop the retries at once.
func connectWithRetry(ctx context.Context, endpoint string, connect connectFunc, total time.Duration, log logrus.FieldLogger) (pw.Browser, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = defaults.RemoteConnectInitialDelay
	b.MaxElapsedTime = total

	timeout := attemptTimeout(total)
	var remote pw.Browser
	err := wait.RetryWithInterval(ctx, b, func() error {
		var err error
		remote, err = connect(endpoint, timeout)
		if err != nil && isRejected(err) {
			return wait.Abort(trace.AccessDenied("remote browser rejected the session: %v", err))
		}
		return convertError(err)
	}, log)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	return remote, nil
}

// attemptTimeout splits total so that at least three attempts fit into it
func attemptTimeout(total time.Duration) time.Duration {
	timeout := total / 3
	if timeout > defaults.RemoteConnectAttemptTimeout {
		return defaults.RemoteConnectAttemptTimeout
	}
	return timeout
}

// isRejected reports whether the device farm refused the session for a reason
// another attempt cannot fix
func isRejected(err error) bool {
	message := strings.ToLower(err.Error())
	for _, marker := range rejectedMarkers {
		if strings.Contains(message, marker) {
			return true
		}
	}
	return false
}

var rejectedMarkers = []string{
	"401", "403", "unauthorized", "forbidden",
	"invalid credentials", "authentication failed",
	"invalid capabilit", "unsupported capabilit", "could not find a matching",
}
