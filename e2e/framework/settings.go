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
	"path/filepath"
	"strings"

	"github.com/gravitational/uitest/driver"
	"github.com/gravitational/uitest/lib/config"
	"github.com/gravitational/uitest/lib/defaults"

	"github.com/gravitational/configure"
	"github.com/gravitational/trace"
)

// Options are the process level knobs, set from flags and environment
type Options struct {
	// ConfigFile is the environment config document
	ConfigFile string `json:"config_file" env:"UITEST_CONFIG_FILE"`
	// ReportDir receives report files and screenshots
	ReportDir string `json:"report_dir" env:"UITEST_REPORT_DIR"`
	// Headless runs local browsers without a window
	Headless bool `json:"headless" env:"HEADLESS"`
	// Monitor logs page console, errors and network traffic
	Monitor bool `json:"monitor" env:"MONITOR"`
	// ArtifactBucket optionally receives failure screenshots
	ArtifactBucket string `json:"artifact_bucket" env:"UITEST_ARTIFACT_BUCKET"`
	// ArtifactRegion is the region of ArtifactBucket
	ArtifactRegion string `json:"artifact_region" env:"UITEST_ARTIFACT_REGION"`
	// GCLProjectID enables cloud logging and status publishing
	GCLProjectID string `json:"gcl_project_id" env:"UITEST_GCL_PROJECT_ID"`
	// ProgressDataset and ProgressTable enable scenario result rows in BigQuery
	ProgressDataset string `json:"progress_dataset" env:"UITEST_BQ_DATASET"`
	ProgressTable   string `json:"progress_table" env:"UITEST_BQ_TABLE"`
}

// ParseEnv overrides options from the environment
func (r *Options) ParseEnv() error {
	return trace.Wrap(configure.ParseEnv(r))
}

// CheckAndSetDefaults validates options and fills in defaults
func (r *Options) CheckAndSetDefaults() error {
	if r.ArtifactBucket != "" && r.ArtifactRegion == "" {
		return trace.BadParameter("artifact bucket %q requires a region", r.ArtifactBucket)
	}
	if (r.ProgressDataset == "") != (r.ProgressTable == "") {
		return trace.BadParameter("progress dataset and table must be set together")
	}
	if r.ConfigFile == "" {
		r.ConfigFile = defaults.ConfigFile
	}
	if r.ReportDir == "" {
		r.ReportDir = defaults.ReportDir
	}
	return nil
}

// Settings is the resolved run configuration. It is built once before
// any scenario starts and is read-only afterwards.
type Settings struct {
	Options
	// Profile holds scenario parameters and runner options
	Profile config.Profile
	// Paths are feature files or directories
	Paths []string
	// Environ is the environment snapshot taken at startup
	Environ config.Environ
	// Environment is the application environment name
	Environment string
	// Values is the config for Environment merged over common
	Values config.Values
	// BaseURL is the application URL
	BaseURL string
}

// NewSettings validates opts, loads the config document and resolves it for
// the selected environment. A missing environment section fails here,
// before any browser is started.
func NewSettings(opts Options, profile config.Profile, paths []string, environ config.Environ) (*Settings, error) {
	if err := opts.CheckAndSetDefaults(); err != nil {
		return nil, trace.Wrap(err)
	}
	if err := profile.CheckAndSetDefaults(); err != nil {
		return nil, trace.Wrap(err)
	}
	if environ == nil {
		environ = config.Environ{}
	}
	doc, err := config.Load(opts.ConfigFile)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	lookup := config.LookupFunc(environ.Lookup)
	name := config.EnvironmentName(lookup)
	values, err := doc.Resolve(name)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	if len(paths) == 0 {
		paths = []string{defaults.FeaturePath}
	}
	return &Settings{
		Options:     opts,
		Profile:     profile,
		Paths:       paths,
		Environ:     environ,
		Environment: name,
		Values:      values,
		BaseURL:     config.BaseURL(name, values, lookup),
	}, nil
}

// Lookup looks up a variable in the environment snapshot
func (s *Settings) Lookup(key string) (string, bool) {
	return s.Environ.Lookup(key)
}

// Target resolves the browser target from profile parameters and the environment
func (s *Settings) Target() (*driver.Target, error) {
	target, err := driver.ResolveTarget(driver.Parameters(s.Profile.Parameters), s.Lookup)
	return target, trace.Wrap(err)
}

// Formats returns the godog format option, with relative output files
// placed in the report directory
func (s *Settings) Formats() string {
	formats := make([]string, 0, len(s.Profile.Formats))
	for _, format := range s.Profile.Formats {
		name, out := format, ""
		if i := strings.IndexByte(format, ':'); i >= 0 {
			name, out = format[:i], format[i+1:]
		}
		if out != "" && !filepath.IsAbs(out) {
			out = filepath.Join(s.ReportDir, out)
		}
		if out != "" {
			name = name + ":" + out
		}
		formats = append(formats, name)
	}
	return strings.Join(formats, ",")
}
