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

package config

import (
	"encoding/json"
	"io/ioutil"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/gravitational/uitest/lib/constants"
	"github.com/gravitational/uitest/lib/defaults"

	"github.com/gravitational/trace"
	"gopkg.in/go-playground/validator.v9"
	"gopkg.in/yaml.v2"
)

// DefaultProfile is the profile used when none is requested
const DefaultProfile = "default"

// Profile is a named set of run settings: scenario parameters
// (which take precedence over environment variables) plus runner options
type Profile struct {
	// Parameters are passed to every scenario, i.e. target, browser, channel
	Parameters map[string]string `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	// Formats lists godog formatters as name[:file]; relative files land in the report dir
	Formats []string `json:"formats,omitempty" yaml:"formats,omitempty"`
	// Concurrency is the number of parallel scenario worker slots
	Concurrency int `json:"concurrency,omitempty" yaml:"concurrency,omitempty" validate:"gte=0,lte=64"`
	// StepTimeout bounds every scenario step
	StepTimeout *Timeout `json:"step_timeout,omitempty" yaml:"step_timeout,omitempty"`
	// Tags is a godog tag expression filtering scenarios
	Tags string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// CheckAndSetDefaults validates profile parameters and fills in runner defaults
func (r *Profile) CheckAndSetDefaults() error {
	if r.Parameters == nil {
		r.Parameters = map[string]string{}
	}
	if channel := r.Parameters[constants.ParamChannel]; channel != "" {
		if engine := r.Parameters[constants.ParamBrowser]; engine != "" && strings.ToLower(engine) != constants.EngineChromium {
			return trace.BadParameter("channel %q requires the %v engine, got %q",
				channel, constants.EngineChromium, engine)
		}
	}
	if len(r.Formats) == 0 {
		r.Formats = []string{"pretty", "cucumber:cucumber.json", "junit:junit.xml"}
	}
	if r.Concurrency == 0 {
		r.Concurrency = defaults.Concurrency
	}
	if r.StepTimeout == nil {
		r.StepTimeout = &Timeout{defaults.StepTimeout}
	}
	return nil
}

// Timeout returns the step timeout of the profile
func (r Profile) Timeout() time.Duration {
	if r.StepTimeout == nil {
		return defaults.StepTimeout
	}
	return r.StepTimeout.Duration
}

// Profiles is a registry of named profiles
type Profiles struct {
	entries map[string]Profile
}

// NewProfiles returns a registry holding the built-in profiles
func NewProfiles() *Profiles {
	p := &Profiles{entries: map[string]Profile{}}
	p.Add(DefaultProfile, Profile{})
	p.Add("ci", Profile{Formats: []string{"progress", "cucumber:cucumber.json", "junit:junit.xml"}})
	p.Add("chrome", Profile{Parameters: map[string]string{
		constants.ParamBrowser: constants.EngineChromium,
		constants.ParamChannel: constants.ChannelChrome,
	}})
	p.Add("edge", Profile{Parameters: map[string]string{
		constants.ParamBrowser: constants.EngineChromium,
		constants.ParamChannel: constants.ChannelEdge,
	}})
	p.Add("firefox", Profile{Parameters: map[string]string{
		constants.ParamBrowser: constants.EngineFirefox,
	}})
	p.Add("bs-chrome", Profile{Parameters: map[string]string{
		constants.ParamTarget:           constants.TargetBrowserStack,
		constants.ParamBSBrowser:        "chrome",
		constants.ParamBSOS:             "Windows",
		constants.ParamBSOSVersion:      "11",
		constants.ParamBSBrowserVersion: "latest",
	}})
	return p
}

// Add adds a profile, replacing an existing one with the same name
func (c *Profiles) Add(name string, p Profile) {
	c.entries[name] = p
}

// Names lists the registered profiles
func (c *Profiles) Names() []string {
	names := make([]string, 0, len(c.entries))
	for name := range c.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadFile adds the profiles from a YAML (or JSON) document mapping
// profile names to profiles
func (c *Profiles) LoadFile(path string) error {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return trace.ConvertSystemError(err)
	}
	var profiles map[string]Profile
	if err := yaml.Unmarshal(data, &profiles); err != nil {
		return trace.BadParameter("invalid profiles file %v: %v", path, err)
	}
	for name, p := range profiles {
		c.Add(name, p)
	}
	return nil
}

// Parse takes a profile reference of the form name or name=JSON and returns
// the named profile with the JSON applied on top, validated and defaulted
func (c *Profiles) Parse(arg string) (*Profile, error) {
	key, data := arg, ""
	if split := withArgs.FindStringSubmatch(arg); len(split) == 3 {
		key, data = split[1], split[2]
	}
	if key == "" {
		key = DefaultProfile
	}

	entry, there := c.entries[key]
	if !there {
		return nil, trace.NotFound("no such profile: %q", key)
	}

	// copy the parameters so overrides do not leak into the registry
	profile := entry
	profile.Parameters = make(map[string]string, len(entry.Parameters))
	for k, v := range entry.Parameters {
		profile.Parameters[k] = v
	}
	profile.Formats = append([]string(nil), entry.Formats...)
	if entry.StepTimeout != nil {
		timeout := *entry.StepTimeout
		profile.StepTimeout = &timeout
	}

	if data != "" {
		if err := json.Unmarshal([]byte(data), &profile); err != nil {
			return nil, trace.BadParameter("JSON decode %q failed: %v", data, err)
		}
	}

	if err := checkAndSetDefaults(&profile); err != nil {
		return nil, trace.Wrap(err, "profile %q", key)
	}
	return &profile, nil
}

var withArgs = regexp.MustCompile(`^(\S+?)=(.+)$`)

type defaulter interface {
	CheckAndSetDefaults() error
}

// checkAndSetDefaults validates parameters according to struct field tags and
// custom logic specified by implementing the defaulter interface.
func checkAndSetDefaults(param interface{}) error {
	if err := validator.New().Struct(param); err != nil {
		return trace.BadParameter("%s", err.Error())
	}

	if d, ok := param.(defaulter); ok {
		return trace.Wrap(d.CheckAndSetDefaults())
	}
	return nil
}
