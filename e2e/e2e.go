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

// Package e2e wires settings, the browser launcher, scenario hooks
// and step definitions into a feature run
package e2e

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/gravitational/uitest/driver/playwright"
	"github.com/gravitational/uitest/e2e/framework"
	"github.com/gravitational/uitest/e2e/steps"
	"github.com/gravitational/uitest/lib/artifacts"
	"github.com/gravitational/uitest/lib/metrics"
	"github.com/gravitational/uitest/lib/system"
	"github.com/gravitational/uitest/lib/tracing"
	"github.com/gravitational/uitest/lib/xlog"

	"github.com/cucumber/godog"
	"github.com/gravitational/trace"
	"github.com/sirupsen/logrus"
)

// Config configures a feature run
type Config struct {
	// Settings is the resolved run configuration
	Settings *framework.Settings
	// Install downloads the playwright driver and browsers first
	Install bool
	// Output receives formatter output without a file
	Output io.Writer
	// TestingT runs scenarios as subtests when set
	TestingT *testing.T
}

// Runner owns everything shared by the scenarios of a run
type Runner struct {
	logrus.FieldLogger
	settings *framework.Settings
	launcher *playwright.Launcher
	tracing  *tracing.Provider
	gcl      *xlog.GCLClient
	suite    *godog.TestSuite
}

// New prepares a feature run. Nothing is launched until Run.
func New(ctx context.Context, config Config, log *logrus.Logger) (runner *Runner, err error) {
	settings := config.Settings
	if settings == nil {
		return nil, trace.BadParameter("missing settings")
	}
	if err := system.EnsureDir(settings.ReportDir); err != nil {
		return nil, trace.Wrap(err)
	}
	runner = &Runner{FieldLogger: log.WithField("env", settings.Environment), settings: settings}
	defer func() {
		if err != nil {
			runner.Close()
		}
	}()

	runner.tracing, err = tracing.NewFileProvider(filepath.Join(settings.ReportDir, "traces.json"))
	if err != nil {
		return nil, trace.Wrap(err)
	}

	stores := artifacts.Stores{artifacts.NewLocal(settings.ReportDir)}
	if settings.ArtifactBucket != "" {
		s3, err := artifacts.NewS3(artifacts.S3Config{
			Bucket: settings.ArtifactBucket,
			Region: settings.ArtifactRegion,
			Prefix: settings.Environment,
		}, log)
		if err != nil {
			return nil, trace.Wrap(err)
		}
		stores = append(stores, s3)
	}

	var reporters xlog.Reporters
	if settings.GCLProjectID != "" {
		runner.gcl, err = xlog.NewGCLClient(ctx, settings.GCLProjectID)
		if err != nil {
			return nil, trace.Wrap(err)
		}
		log.Hooks.Add(runner.gcl.Hook("uitest", logrus.Fields{"env": settings.Environment}))
		reporters = append(reporters, runner.gcl)
		if settings.ProgressDataset != "" {
			progress, err := xlog.NewProgressReporter(ctx, settings.GCLProjectID, settings.ProgressDataset, settings.ProgressTable)
			if err != nil {
				return nil, trace.Wrap(err)
			}
			reporters = append(reporters, progress)
		}
	}

	runner.launcher, err = playwright.New(playwright.Config{
		Headless: settings.Headless,
		Monitor:  settings.Monitor,
		Install:  config.Install,
	}, log)
	if err != nil {
		return nil, trace.Wrap(err)
	}

	hooksConfig := framework.HooksConfig{
		Settings:  settings,
		Launcher:  runner.launcher,
		Artifacts: stores,
	}
	if len(reporters) != 0 {
		hooksConfig.Reporter = reporters
	}
	hooks, err := framework.NewHooks(hooksConfig, log)
	if err != nil {
		return nil, trace.Wrap(err)
	}

	runner.suite, err = framework.NewSuite(framework.SuiteConfig{
		Settings: settings,
		Hooks:    hooks,
		Steps:    steps.Register,
		Output:   config.Output,
		TestingT: config.TestingT,
	})
	if err != nil {
		return nil, trace.Wrap(err)
	}
	return runner, nil
}

// Run runs every scenario and fails unless all passed
func (r *Runner) Run() error {
	r.WithField("paths", r.settings.Paths).Info("Running features.")
	return trace.Wrap(framework.Run(r.suite))
}

// Close stops the driver, flushes traces and writes the metrics file
func (r *Runner) Close() error {
	var errors []error
	if r.launcher != nil {
		errors = append(errors, r.launcher.Stop())
	}
	if r.tracing != nil {
		errors = append(errors, r.tracing.Shutdown(context.Background()))
	}
	if r.gcl != nil {
		r.gcl.Close()
	}
	errors = append(errors, metrics.WriteTextfile(filepath.Join(r.settings.ReportDir, "metrics.prom")))
	return trace.NewAggregate(errors...)
}
