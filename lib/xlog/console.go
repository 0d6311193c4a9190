package xlog

import (
	"io/ioutil"
	"os"

	"github.com/gravitational/trace"
	"github.com/sirupsen/logrus"
)

// InitLogger configures the standard logger for command line use
func InitLogger(level logrus.Level) {
	logrus.StandardLogger().Hooks = make(logrus.LevelHooks)
	logrus.SetFormatter(&trace.TextFormatter{})
	logrus.SetOutput(os.Stderr)
	logrus.SetLevel(level)
}

// ConsoleLogger returns logger which writes everything to hooks plus console for events above certain level
func ConsoleLogger(consoleLevel logrus.Level) *logrus.Logger {
	log := logrus.New()
	log.Level = logrus.DebugLevel
	log.Out = ioutil.Discard

	consoleLog := logrus.New()
	consoleLog.Level = consoleLevel
	consoleLog.Formatter = &trace.TextFormatter{}
	log.Hooks.Add(&consoleHook{consoleLog, consoleLevel})

	return log
}

type consoleHook struct {
	console *logrus.Logger
	level   logrus.Level
}

func (hook *consoleHook) Fire(e *logrus.Entry) error {
	if e.Level > hook.level {
		return nil
	}

	var log logrus.FieldLogger
	if e.Data != nil {
		log = hook.console.WithFields(e.Data)
	} else {
		log = hook.console
	}

	switch e.Level {
	case logrus.ErrorLevel:
		log.Error(e.Message)
	case logrus.WarnLevel:
		log.Warn(e.Message)
	case logrus.InfoLevel:
		log.Info(e.Message)
	case logrus.DebugLevel:
		log.Debug(e.Message)
	default:
		// panic and fatal are handled by the originating logger
		log.Error(e.Message)
	}

	return nil
}

// Levels returns logging levels supported by logrus
func (hook *consoleHook) Levels() []logrus.Level {
	return []logrus.Level{
		logrus.PanicLevel,
		logrus.FatalLevel,
		logrus.ErrorLevel,
		logrus.WarnLevel,
		logrus.InfoLevel,
		logrus.DebugLevel,
	}
}
