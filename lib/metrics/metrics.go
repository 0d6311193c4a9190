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

// Package metrics declares the harness metrics and exports them
// in the node exporter textfile format at the end of a run
package metrics

import (
	"time"

	"github.com/gravitational/trace"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result label values
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Registry holds every harness metric
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	// Actions counts UI facade verbs by outcome
	Actions = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "uitest",
			Name:      "actions_total",
			Help:      "Total number of UI actions executed",
		},
		[]string{"action", "result"},
	)

	// ActionDuration observes how long UI facade verbs take
	ActionDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "uitest",
			Name:      "action_duration_seconds",
			Help:      "UI action latency in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
		},
		[]string{"action"},
	)

	// Sessions counts browser session launches by target and outcome
	Sessions = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "uitest",
			Name:      "sessions_total",
			Help:      "Total number of browser sessions launched",
		},
		[]string{"target", "result"},
	)

	// ActiveSessions is the number of browser sessions currently open
	ActiveSessions = factory.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "uitest",
			Name:      "sessions_active",
			Help:      "Number of currently open browser sessions",
		},
	)

	// TeardownErrors counts failed close calls during session teardown
	TeardownErrors = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: "uitest",
			Name:      "teardown_errors_total",
			Help:      "Total number of session teardowns that reported errors",
		},
	)

	// Scenarios counts finished scenarios by outcome
	Scenarios = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "uitest",
			Name:      "scenarios_total",
			Help:      "Total number of scenarios run",
		},
		[]string{"result"},
	)

	// Screenshots counts failure screenshots attached to reports
	Screenshots = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: "uitest",
			Name:      "screenshots_total",
			Help:      "Total number of failure screenshots captured",
		},
	)
)

// Result maps an error onto a result label
func Result(err error) string {
	if err != nil {
		return ResultFailure
	}
	return ResultSuccess
}

// ObserveAction records the outcome and latency of a UI action started at start
func ObserveAction(action string, start time.Time, err error) {
	Actions.WithLabelValues(action, Result(err)).Inc()
	ActionDuration.WithLabelValues(action).Observe(time.Since(start).Seconds())
}

// WriteTextfile writes the current state of Registry to path
func WriteTextfile(path string) error {
	return trace.Wrap(prometheus.WriteToTextfile(path, Registry))
}
