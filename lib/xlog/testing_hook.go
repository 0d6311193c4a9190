package xlog

import (
	"fmt"
	"testing"

	"github.com/sirupsen/logrus"
)

// TestingHook forwards log entries to the test log
type TestingHook struct {
	t testing.TB
}

// NewTestingHook returns a hook logging to t
func NewTestingHook(t testing.TB) *TestingHook {
	return &TestingHook{t: t}
}

func (hook *TestingHook) Fire(e *logrus.Entry) error {
	hook.t.Log(e.Message, fmt.Sprint(e.Data))
	return nil
}

// Levels returns logging levels supported by logrus
func (hook *TestingHook) Levels() []logrus.Level {
	return []logrus.Level{
		logrus.PanicLevel,
		logrus.FatalLevel,
		logrus.ErrorLevel,
		logrus.WarnLevel,
		logrus.InfoLevel,
		logrus.DebugLevel,
	}
}

// NewLogger returns a console logger at level which also prints everything
// to the test log
func NewLogger(t testing.TB, level logrus.Level) *logrus.Logger {
	log := ConsoleLogger(level)
	log.Hooks.Add(NewTestingHook(t))
	return log
}
