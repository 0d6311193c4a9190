package xlog

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/gravitational/trace"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

func TestConsoleLoggerFiltersByLevel(t *testing.T) {
	log := ConsoleLogger(logrus.WarnLevel)
	hook := &consoleHook{}
	for _, h := range log.Hooks[logrus.InfoLevel] {
		if c, ok := h.(*consoleHook); ok {
			hook = c
		}
	}
	require.NotNil(t, hook.console)

	recorder := test.NewLocal(hook.console)
	log.Info("dropped")
	log.Warn("kept")
	require.Len(t, recorder.AllEntries(), 1)
	require.Equal(t, "kept", recorder.LastEntry().Message)
}

func TestLabels(t *testing.T) {
	got := labels(logrus.Fields{"env": "tst", "workers": 2})
	require.Equal(t, map[string]string{"env": "tst", "workers": "2"}, got)
}

func TestSeverity(t *testing.T) {
	require.Equal(t, levelMap[logrus.WarnLevel], severity(logrus.WarnLevel))
	require.Equal(t, levelMap[logrus.DebugLevel], severity(logrus.DebugLevel))
}

type recordingReporter struct {
	results []ScenarioResult
	err     error
}

func (r *recordingReporter) ReportScenario(ctx context.Context, result ScenarioResult) error {
	r.results = append(r.results, result)
	return r.err
}

func TestReportersFanOut(t *testing.T) {
	first := &recordingReporter{err: errors.New("topic unavailable")}
	second := &recordingReporter{}

	err := Reporters{first, second}.ReportScenario(context.Background(), ScenarioResult{Name: "home", Status: StatusPassed})
	require.Error(t, err)
	require.Len(t, first.results, 1)
	require.Len(t, second.results, 1)
}

type recordingT struct {
	testing.TB
	lines []string
}

func (r *recordingT) Log(args ...interface{}) {
	r.lines = append(r.lines, fmt.Sprint(args...))
}

func TestNewLoggerForwardsToTest(t *testing.T) {
	rec := &recordingT{TB: t}
	log := NewLogger(rec, logrus.WarnLevel)
	log.WithField("scenario", "home").Debug("below console level")

	require.Len(t, rec.lines, 1)
	require.Contains(t, rec.lines[0], "below console level")
	require.Contains(t, rec.lines[0], "scenario:home")
}

func TestConsoleFormatter(t *testing.T) {
	InitLogger(logrus.InfoLevel)
	defer InitLogger(logrus.InfoLevel)
	_, ok := logrus.StandardLogger().Formatter.(*trace.TextFormatter)
	require.True(t, ok, "unexpected formatter %T", logrus.StandardLogger().Formatter)

	log := ConsoleLogger(logrus.InfoLevel)
	var hook *consoleHook
	for _, h := range log.Hooks[logrus.InfoLevel] {
		if c, ok := h.(*consoleHook); ok {
			hook = c
		}
	}
	require.NotNil(t, hook)

	entry := logrus.NewEntry(hook.console).WithField("env", "tst")
	entry.Message = "session started"
	entry.Level = logrus.InfoLevel
	out, err := hook.console.Formatter.Format(entry)
	require.NoError(t, err)
	require.Contains(t, string(out), "session started")
	require.NotContains(t, string(out), "panic in log formatter")
}
