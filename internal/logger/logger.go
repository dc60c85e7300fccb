// Package logger wraps a process-wide logrus logger.
package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

var defaultLogger = &logrus.Logger{
	Out:       os.Stdout,
	Formatter: new(logrus.JSONFormatter),
	Hooks:     make(logrus.LevelHooks),
	Level:     logrus.InfoLevel,
}

// SetLevel parses lvl and applies it; unknown levels keep the current one.
func SetLevel(lvl string) {
	parsed, err := logrus.ParseLevel(lvl)
	if err != nil {
		defaultLogger.Warnf("unknown log level %q, keeping %s", lvl, defaultLogger.GetLevel())
		return
	}
	defaultLogger.SetLevel(parsed)
}

// WithFields returns an entry carrying the given structured fields.
func WithFields(fields logrus.Fields) *logrus.Entry {
	return defaultLogger.WithFields(fields)
}

// Debug logs message at Debug level.
func Debug(msg string) {
	defaultLogger.Debugln(msg)
}

// Info logs message at Info level.
func Info(msg string) {
	defaultLogger.Infoln(msg)
}

// Warn logs message at Warn level.
func Warn(msg string) {
	defaultLogger.Warnln(msg)
}

// Error logs errors at Error level.
func Error(err error) {
	defaultLogger.Errorln(err)
}

// Fatal logs errors at Fatal level and exits.
func Fatal(err error) {
	defaultLogger.Fatalln(err)
}
