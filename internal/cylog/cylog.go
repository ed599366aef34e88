// Package cylog is the process-wide structured logger: a thin
// logrus.Logger wrapper giving every package the same field conventions
// (query text, row counts, durations) instead of each one formatting its
// own log lines.
package cylog

import (
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Logger is the shared structured logger handle. Fields attach per-call
// via With, matching logrus's chained-entry idiom.
type Logger struct {
	*logrus.Logger
}

var std = New()

// New returns a Logger writing JSON lines to stderr at Info level.
func New() *Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetLevel(logrus.InfoLevel)
	return &Logger{Logger: l}
}

// Std returns the package-level default logger.
func Std() *Logger { return std }

// SetLevel adjusts the default logger's verbosity, parsing the same
// level names logrus.ParseLevel accepts ("debug", "info", "warn", ...).
func SetLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	std.SetLevel(lvl)
	return nil
}

// Query returns a logging entry scoped to one query execution, carrying
// the fields every query-lifecycle log line needs plus a fresh query_id
// so a single statement's parse/plan/execute lines can be correlated in
// an aggregated log stream.
func Query(text string) *logrus.Entry {
	return std.WithFields(logrus.Fields{
		"component": "executor",
		"query":     text,
		"query_id":  uuid.NewString(),
	})
}

// Storage returns a logging entry scoped to the storage backend.
func Storage() *logrus.Entry {
	return std.WithField("component", "storage")
}
