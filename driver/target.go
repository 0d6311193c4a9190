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

// Package driver resolves where and how a scenario browser session is started
package driver

import (
	"context"
	"fmt"
	"strings"

	"github.com/gravitational/uitest/driver/browserstack"
	"github.com/gravitational/uitest/lib/browser"
	"github.com/gravitational/uitest/lib/config"
	"github.com/gravitational/uitest/lib/constants"
	"github.com/gravitational/uitest/lib/defaults"

	"github.com/gravitational/trace"
	"github.com/sirupsen/logrus"
)

// Parameters are the per-run profile parameters. They take precedence over
// environment variables of the same meaning.
type Parameters map[string]string

// Get returns the trimmed parameter key, falling back to environment variable env
func (p Parameters) Get(key, env string, lookup config.LookupFunc) string {
	if v := strings.TrimSpace(p[key]); v != "" {
		return v
	}
	return lookup.Getenv(env)
}

// Target describes the browser a session runs in. It is immutable once resolved.
type Target struct {
	// Mode is either local or browserstack
	Mode string
	// Engine is the browser engine for local sessions
	Engine string
	// Channel is the optional branded build of the chromium engine
	Channel string
	// Capabilities describe the remote browser for browserstack sessions
	Capabilities browserstack.Capabilities
}

// IsRemote reports whether the target is a remote device farm
func (t Target) IsRemote() bool {
	return t.Mode == constants.TargetBrowserStack
}

// String describes the target for logging. It never includes credentials.
func (t Target) String() string {
	if t.IsRemote() {
		return fmt.Sprintf("browserstack(%v %v on %v %v)",
			t.Capabilities[browserstack.CapBrowser], t.Capabilities[browserstack.CapBrowserVersion],
			t.Capabilities[browserstack.CapOS], t.Capabilities[browserstack.CapOSVersion])
	}
	if t.Channel != "" {
		return fmt.Sprintf("local(%v/%v)", t.Engine, t.Channel)
	}
	return fmt.Sprintf("local(%v)", t.Engine)
}

// ResolveTarget derives the session target from profile parameters and the environment.
// Any target other than browserstack runs locally.
// A remote target without credentials fails with trace.BadParameter before
// anything is allocated.
func ResolveTarget(params Parameters, lookup config.LookupFunc) (*Target, error) {
	mode := strings.ToLower(params.Get(constants.ParamTarget, constants.EnvTarget, lookup))
	switch mode {
	case constants.TargetLocal, constants.TargetBrowserStack:
	case "":
		mode = constants.TargetLocal
	default:
		logrus.WithField(constants.FieldTarget, mode).Warnf("Unknown target, using %v.", constants.TargetLocal)
		mode = constants.TargetLocal
	}

	if mode == constants.TargetBrowserStack {
		caps, err := browserstack.NewCapabilities(params, lookup, config.EnvironmentName(lookup))
		if err != nil {
			return nil, trace.Wrap(err)
		}
		return &Target{Mode: mode, Engine: constants.EngineChromium, Capabilities: caps}, nil
	}

	target := &Target{Mode: mode, Engine: engine(params.Get(constants.ParamBrowser, constants.EnvBrowser, lookup))}
	if target.Engine == constants.EngineChromium {
		target.Channel = params.Get(constants.ParamChannel, constants.EnvChannel, lookup)
	}
	return target, nil
}

// engine maps a browser name onto a supported engine.
// Unknown names fall back to chromium.
func engine(name string) string {
	switch strings.ToLower(name) {
	case constants.EngineFirefox:
		return constants.EngineFirefox
	case constants.EngineWebKit:
		return constants.EngineWebKit
	default:
		return defaults.Engine
	}
}

// Launcher starts browser sessions
type Launcher interface {
	// Launch returns a connected session for target. It never navigates.
	Launch(ctx context.Context, target Target) (*browser.Session, error)
}
