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
	"time"

	"github.com/gravitational/uitest/driver"
	"github.com/gravitational/uitest/lib/artifacts"
	"github.com/gravitational/uitest/lib/constants"
	"github.com/gravitational/uitest/lib/metrics"
	"github.com/gravitational/uitest/lib/tracing"
	"github.com/gravitational/uitest/lib/xlog"

	"github.com/cucumber/godog"
	"github.com/dustin/go-humanize"
	"github.com/gravitational/trace"
	"github.com/sirupsen/logrus"
)

// HooksConfig configures scenario lifecycle hooks
type HooksConfig struct {
	// Settings is the resolved run configuration
	Settings *Settings
	// Launcher starts browser sessions
	Launcher driver.Launcher
	// Artifacts persists failure screenshots
	Artifacts artifacts.Store
	// Reporter optionally receives scenario results
	Reporter xlog.Reporter
}

// CheckAndSetDefaults validates the configuration
func (r *HooksConfig) CheckAndSetDefaults() error {
	if r.Settings == nil {
		return trace.BadParameter("missing settings")
	}
	if r.Launcher == nil {
		return trace.BadParameter("missing launcher")
	}
	if r.Artifacts == nil {
		r.Artifacts = artifacts.NewLocal(r.Settings.ReportDir)
	}
	return nil
}

// Hooks sets up and tears down the browser session around every scenario
// and captures a screenshot of every failed step
type Hooks struct {
	logrus.FieldLogger
	config HooksConfig
	attach func(ctx context.Context, attachments ...godog.Attachment) context.Context
}

// NewHooks returns scenario hooks
func NewHooks(config HooksConfig, log logrus.FieldLogger) (*Hooks, error) {
	if err := config.CheckAndSetDefaults(); err != nil {
		return nil, trace.Wrap(err)
	}
	return &Hooks{
		FieldLogger: log,
		config:      config,
		attach:      godog.Attach,
	}, nil
}

// Register installs the hooks on a scenario context
func (h *Hooks) Register(sc *godog.ScenarioContext) {
	sc.Before(h.BeforeScenario)
	sc.After(h.AfterScenario)
	sc.StepContext().Before(h.BeforeStep)
	sc.StepContext().After(h.AfterStep)
}

// BeforeScenario resolves the target, starts a browser session
// and stores the scenario world in the context
func (h *Hooks) BeforeScenario(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
	target, err := h.config.Settings.Target()
	if err != nil {
		return ctx, trace.Wrap(err)
	}
	w := NewWorld(sc.Name, h.config.Settings, h.FieldLogger)
	ctx, w.span = tracing.Start(ctx, "scenario",
		tracing.AttrScenario.String(sc.Name),
		tracing.AttrTarget.String(target.String()))
	ctx = WithWorld(ctx, w)
	if err := w.Start(ctx, h.config.Launcher, *target); err != nil {
		tracing.End(w.span, err)
		return ctx, trace.Wrap(err)
	}
	w.span.SetAttributes(tracing.AttrSession.String(w.session.ID))
	w.Info("Scenario started.")
	return ctx, nil
}

// BeforeStep bounds the step with the profile step timeout
func (h *Hooks) BeforeStep(ctx context.Context, st *godog.Step) (context.Context, error) {
	stepCtx, cancel := context.WithTimeout(ctx, h.config.Settings.Profile.Timeout())
	return context.WithValue(stepCtx, stepKey{}, &stepScope{parent: ctx, cancel: cancel}), nil
}

// AfterStep captures a screenshot of a failed step and attaches it to the report.
// The step deadline is released and the context outliving the step is returned.
func (h *Hooks) AfterStep(ctx context.Context, st *godog.Step, status godog.StepResultStatus, err error) (context.Context, error) {
	if scope, ok := ctx.Value(stepKey{}).(*stepScope); ok {
		scope.cancel()
		ctx = scope.parent
	}
	if status != godog.StepFailed {
		return ctx, nil
	}
	w, werr := WorldFrom(ctx)
	if werr != nil {
		return ctx, nil
	}
	log := w.WithField(constants.FieldStep, st.Text)
	log.WithError(err).Warn("Step failed.")

	data, serr := w.Screenshot()
	if serr != nil {
		log.WithError(serr).Warn("Failed to capture screenshot.")
		return ctx, nil
	}
	name := artifacts.ScreenshotName(w.Name, time.Now())
	ctx = h.attach(ctx, godog.Attachment{
		Body:      data,
		FileName:  name,
		MediaType: constants.MediaTypePNG,
	})
	metrics.Screenshots.Inc()

	location, serr := h.config.Artifacts.Save(ctx, name, data, constants.MediaTypePNG)
	if serr != nil {
		log.WithError(serr).Warn("Failed to store screenshot.")
	}
	if location != "" {
		log.WithField("size", humanize.Bytes(uint64(len(data)))).Infof("Saved screenshot to %v.", location)
	}
	return ctx, nil
}

// AfterScenario tears the session down regardless of the outcome and reports the result.
// Teardown errors are logged and never fail the scenario.
func (h *Hooks) AfterScenario(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
	w, werr := WorldFrom(ctx)
	if werr != nil {
		metrics.Scenarios.WithLabelValues(metrics.Result(err)).Inc()
		return ctx, nil
	}
	if terr := w.Teardown(); terr != nil {
		w.WithError(terr).Warn("Session teardown reported errors.")
	}
	metrics.Scenarios.WithLabelValues(metrics.Result(err)).Inc()
	tracing.End(w.span, err)

	result := w.result(err)
	log := w.WithFields(logrus.Fields{"status": result.Status, "duration": time.Since(w.Started)})
	if err != nil {
		log.WithError(err).Warn("Scenario failed.")
	} else {
		log.Info("Scenario passed.")
	}
	if h.config.Reporter != nil {
		if rerr := h.config.Reporter.ReportScenario(context.WithoutCancel(ctx), result); rerr != nil {
			w.WithError(rerr).Warn("Failed to report scenario result.")
		}
	}
	return ctx, nil
}

func (w *World) result(err error) xlog.ScenarioResult {
	result := xlog.ScenarioResult{
		ID:          w.ID,
		Name:        w.Name,
		Environment: w.Environment,
		Target:      w.Target().String(),
		Status:      xlog.StatusPassed,
		Started:     w.Started,
		Seconds:     time.Since(w.Started).Seconds(),
	}
	if err != nil {
		result.Status = xlog.StatusFailed
		result.Error = trace.UserMessage(err)
	}
	return result
}
