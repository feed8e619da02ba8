// Package logging provides the structured logger used across the invoices
// service and CLI.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Fields carries structured key/value pairs for a log entry.
type Fields map[string]interface{}

var base = newBase()

func newBase() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetLevel(parseLevel(os.Getenv("LOG_LEVEL")))
	return l
}

func parseLevel(s string) logrus.Level {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(s))
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// SetLevel changes the level of every logger.
func SetLevel(level string) {
	base.SetLevel(parseLevel(level))
}

// SetOutput redirects every logger.
func SetOutput(w io.Writer) {
	base.SetOutput(w)
}

// UseTextFormat switches to human-readable output, used by the CLI.
func UseTextFormat() {
	base.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
}

// Logger is a component-scoped structured logger.
type Logger struct {
	entry *logrus.Entry
}

// NewLogger creates a logger tagged with the given component name.
func NewLogger(component string) *Logger {
	return &Logger{entry: base.WithField("component", component)}
}

func (l *Logger) with(fields []Fields) *logrus.Entry {
	e := l.entry
	for _, f := range fields {
		e = e.WithFields(logrus.Fields(f))
	}
	return e
}

func (l *Logger) Debug(msg string, fields ...Fields) { l.with(fields).Debug(msg) }
func (l *Logger) Info(msg string, fields ...Fields)  { l.with(fields).Info(msg) }
func (l *Logger) Warn(msg string, fields ...Fields)  { l.with(fields).Warn(msg) }
func (l *Logger) Error(msg string, fields ...Fields) { l.with(fields).Error(msg) }

// Fatal logs and exits the process.
func (l *Logger) Fatal(msg string, fields ...Fields) { l.with(fields).Fatal(msg) }

// Infof logs an unstructured message.
func Infof(format string, args ...interface{}) {
	base.Infof(format, args...)
}

// Info logs a structured message without a component.
func Info(msg string, fields Fields) {
	base.WithFields(logrus.Fields(fields)).Info(msg)
}
