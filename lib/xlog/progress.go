package xlog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gravitational/trace"

	"cloud.google.com/go/bigquery"
)

// ScenarioResult is the outcome of a single scenario
type ScenarioResult struct {
	// ID is the unique id of the scenario run
	ID string `json:"id" bigquery:"id"`
	// Name is the scenario name
	Name string `json:"name" bigquery:"name"`
	// Environment is the application environment
	Environment string `json:"environment" bigquery:"environment"`
	// Target describes the browser the scenario ran in
	Target string `json:"target" bigquery:"target"`
	// Status is either passed or failed
	Status string `json:"status" bigquery:"status"`
	// Error is the failure message, if any
	Error string `json:"error,omitempty" bigquery:"error"`
	// Started is when the scenario started
	Started time.Time `json:"started" bigquery:"started"`
	// Seconds is how long the scenario took
	Seconds float64 `json:"seconds" bigquery:"seconds"`
}

// Scenario statuses
const (
	StatusPassed = "passed"
	StatusFailed = "failed"
)

// Reporter receives scenario results
type Reporter interface {
	ReportScenario(ctx context.Context, result ScenarioResult) error
}

// Reporters fans a result out to every reporter, aggregating errors
type Reporters []Reporter

// ReportScenario implements Reporter
func (r Reporters) ReportScenario(ctx context.Context, result ScenarioResult) error {
	var errors []error
	for _, reporter := range r {
		if err := reporter.ReportScenario(ctx, result); err != nil {
			errors = append(errors, err)
		}
	}
	return trace.NewAggregate(errors...)
}

// ProgressReporter streams scenario results into a BigQuery table
type ProgressReporter struct {
	uploader *bigquery.Uploader
}

var reporters sync.Map

// NewProgressReporter initializes progress reporter
func NewProgressReporter(ctx context.Context, projectID, datasetID, tableID string) (*ProgressReporter, error) {
	key := fmt.Sprintf("%s-%s-%s", projectID, datasetID, tableID)
	stored, ok := reporters.Load(key)
	if ok {
		return stored.(*ProgressReporter), nil
	}

	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, trace.ConvertSystemError(err)
	}

	rep := ProgressReporter{
		uploader: client.Dataset(datasetID).Table(tableID).Uploader(),
	}

	reporters.Store(key, &rep)
	return &rep, nil
}

// Put streams record into the table
func (r *ProgressReporter) Put(ctx context.Context, record interface{}) error {
	return trace.Wrap(r.uploader.Put(ctx, record))
}

// ReportScenario implements Reporter
func (r *ProgressReporter) ReportScenario(ctx context.Context, result ScenarioResult) error {
	return r.Put(ctx, result)
}
