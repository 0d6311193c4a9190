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
	"io"
	"os"
	"testing"

	"github.com/gravitational/uitest/lib/system"

	"github.com/cucumber/godog"
	"github.com/gravitational/trace"
)

// SuiteConfig configures a feature run
type SuiteConfig struct {
	// Name names the suite in reports
	Name string
	// Settings is the resolved run configuration
	Settings *Settings
	// Hooks manage the session of every scenario
	Hooks *Hooks
	// Steps registers step definitions
	Steps func(*godog.ScenarioContext)
	// Output receives the output of formatters without a file
	Output io.Writer
	// TestingT runs every scenario as a subtest when set
	TestingT *testing.T
}

// NewSuite returns the godog suite running the configured features
func NewSuite(config SuiteConfig) (*godog.TestSuite, error) {
	if config.Settings == nil || config.Hooks == nil || config.Steps == nil {
		return nil, trace.BadParameter("suite requires settings, hooks and steps")
	}
	if config.Name == "" {
		config.Name = "uitest"
	}
	if config.Output == nil {
		config.Output = os.Stdout
	}
	settings := config.Settings
	if err := system.EnsureDir(settings.ReportDir); err != nil {
		return nil, trace.Wrap(err)
	}
	return &godog.TestSuite{
		Name: config.Name,
		ScenarioInitializer: func(sc *godog.ScenarioContext) {
			config.Hooks.Register(sc)
			config.Steps(sc)
		},
		Options: &godog.Options{
			Format:      settings.Formats(),
			Paths:       settings.Paths,
			Tags:        settings.Profile.Tags,
			Concurrency: settings.Profile.Concurrency,
			Strict:      true,
			Output:      config.Output,
			TestingT:    config.TestingT,
		},
	}, nil
}

// Run runs the suite and returns an error unless every scenario passed
func Run(suite *godog.TestSuite) error {
	if status := suite.Run(); status != 0 {
		return trace.CompareFailed("feature run failed with status %v", status)
	}
	return nil
}
