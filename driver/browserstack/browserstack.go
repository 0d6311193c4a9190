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

// Package browserstack builds the capability payload and connection
// endpoint for the BrowserStack device farm
package browserstack

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/gravitational/uitest/lib/config"
	"github.com/gravitational/uitest/lib/constants"
	"github.com/gravitational/uitest/lib/system"

	"github.com/gravitational/trace"
	"github.com/hashicorp/go-version"
)

// Capability keys
const (
	CapOS                = "os"
	CapOSVersion         = "os_version"
	CapBrowser           = "browser"
	CapBrowserVersion    = "browser_version"
	CapUsername          = "browserstack.username"
	CapAccessKey         = "browserstack.accessKey"
	CapProject           = "project"
	CapBuild             = "build"
	CapName              = "name"
	CapPlaywrightVersion = "browserstack.playwrightVersion"
	CapClientVersion     = "client.playwrightVersion"
	CapDebug             = "browserstack.debug"
	CapConsole           = "browserstack.console"
	CapNetworkLogs       = "browserstack.networkLogs"
	CapLocal             = "browserstack.local"
	CapLocalIdentifier   = "browserstack.localIdentifier"
)

const (
	// EndpointURL is the playwright endpoint of the device farm
	EndpointURL = "wss://cdp.browserstack.com/playwright"

	defaultBrowser        = "chrome"
	defaultOS             = "Windows"
	defaultOSVersion      = "11"
	defaultBrowserVersion = "latest"
	defaultProject        = "Cucumber Playwright"
	defaultName           = "BDD run"
	playwrightVersion     = "1.latest"

	redacted = "<redacted>"
)

// Capabilities is the capability payload sent with the connection request
type Capabilities map[string]string

// NewCapabilities builds the capability payload from profile parameters
// (which win) over environment variables over built-in defaults.
// Both BROWSERSTACK_USERNAME and BROWSERSTACK_ACCESS_KEY are required:
// without them it fails with trace.BadParameter and nothing else is evaluated.
func NewCapabilities(params map[string]string, lookup config.LookupFunc, appEnv string) (Capabilities, error) {
	user := lookup.Getenv(constants.EnvBrowserStackUsername)
	key := lookup.Getenv(constants.EnvBrowserStackAccessKey)
	if user == "" || key == "" {
		return nil, trace.BadParameter("missing BrowserStack credentials, set %v and %v",
			constants.EnvBrowserStackUsername, constants.EnvBrowserStackAccessKey)
	}

	get := func(param, env, def string) string {
		if v := strings.TrimSpace(params[param]); v != "" {
			return v
		}
		if v := lookup.Getenv(env); v != "" {
			return v
		}
		return def
	}

	caps := Capabilities{
		CapOS:                get(constants.ParamBSOS, constants.EnvBSOS, defaultOS),
		CapOSVersion:         get(constants.ParamBSOSVersion, constants.EnvBSOSVersion, defaultOSVersion),
		CapBrowser:           get(constants.ParamBSBrowser, constants.EnvBSBrowser, defaultBrowser),
		CapBrowserVersion:    get(constants.ParamBSBrowserVersion, constants.EnvBSBrowserVersion, defaultBrowserVersion),
		CapUsername:          user,
		CapAccessKey:         key,
		CapProject:           get("", constants.EnvBSProject, defaultProject),
		CapBuild:             get("", constants.EnvBSBuild, "build-"+appEnv),
		CapName:              get("", constants.EnvBSName, defaultName),
		CapPlaywrightVersion: playwrightVersion,
		CapDebug:             "true",
		CapConsole:           "info",
		CapNetworkLogs:       "true",
	}
	if v := lookup.Getenv(constants.EnvPlaywrightVersion); v != "" {
		if err := caps.SetClientVersion(v); err != nil {
			return nil, trace.Wrap(err)
		}
	}
	if local := strings.ToLower(lookup.Getenv(constants.EnvBSLocal)); local == "true" || local == "1" {
		caps[CapLocal] = "true"
		if id := lookup.Getenv(constants.EnvBSLocalID); id != "" {
			caps[CapLocalIdentifier] = id
		}
	}
	return caps, nil
}

// SetClientVersion records the version of the local playwright client.
// The version must be a valid semantic version.
func (c Capabilities) SetClientVersion(v string) error {
	parsed, err := version.NewVersion(strings.TrimPrefix(strings.TrimSpace(v), "v"))
	if err != nil {
		return trace.BadParameter("invalid playwright client version %q: %v", v, err)
	}
	c[CapClientVersion] = parsed.String()
	return nil
}

// HasClientVersion reports whether the client version is set
func (c Capabilities) HasClientVersion() bool {
	return c[CapClientVersion] != ""
}

// Endpoint returns the connection URL with the JSON capability payload
// URL-encoded into the caps query parameter
func (c Capabilities) Endpoint() (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", trace.Wrap(err)
	}
	return EndpointURL + "?caps=" + url.QueryEscape(string(data)), nil
}

// Clone returns a copy of the capabilities
func (c Capabilities) Clone() Capabilities {
	out := make(Capabilities, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Redacted returns a copy of the capabilities safe for logging
func (c Capabilities) Redacted() Capabilities {
	out := c.Clone()
	if _, ok := out[CapAccessKey]; ok {
		out[CapAccessKey] = redacted
	}
	return out
}

// ProbeClientVersion asks the locally installed playwright CLI for its version
func ProbeClientVersion(ctx context.Context) (string, error) {
	out, err := system.Output(ctx, "npx", "playwright", "--version")
	if err != nil {
		return "", trace.Wrap(err)
	}
	// output is of the form "Version 1.52.0"
	fields := strings.Fields(out)
	if len(fields) == 0 {
		return "", trace.BadParameter("unexpected playwright version output %q", out)
	}
	v, err := version.NewVersion(fields[len(fields)-1])
	if err != nil {
		return "", trace.BadParameter("unexpected playwright version output %q: %v", out, err)
	}
	return v.String(), nil
}
