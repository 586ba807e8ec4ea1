// Package logging defines the logger used by the value codecs and builders.
// Nothing in this module logs unless a Logger is configured.
package logging

import (
	"io"
	"log"
	"slices"
)

// Classification is the severity attached to a log entry.
type Classification string

const (
	Warn  Classification = "WARN"
	Debug Classification = "DEBUG"
)

// Logger is an interface for logging entries at certain classifications.
type Logger interface {
	// Logf is expected to support the standard fmt package "verbs".
	Logf(level Classification, format string, v ...interface{})
}

// Noop is a Logger implementation that simply does not perform any logging.
type Noop struct{}

func (Noop) Logf(Classification, string, ...interface{}) {}

// StandardLogger is a Logger implementation that wraps the standard library
// logger, and delegates logging to its Printf method.
type StandardLogger struct {
	Logger *log.Logger
}

// Logf logs the given classification and message to the underlying logger.
func (s StandardLogger) Logf(classification Classification, format string, v ...interface{}) {
	if len(classification) != 0 {
		format = string(classification) + " " + format
	}

	s.Logger.Printf(format, v...)
}

// NewStandardLogger returns a new StandardLogger writing to w.
func NewStandardLogger(w io.Writer) *StandardLogger {
	return &StandardLogger{
		Logger: log.New(w, "VALUE ", log.LstdFlags),
	}
}

// Filter forwards only the listed classifications to Logger.
type Filter struct {
	Logger Logger
	Allow  []Classification
}

// Logf forwards the entry when its classification is allowed.
func (f Filter) Logf(classification Classification, format string, v ...interface{}) {
	if f.Logger == nil || !slices.Contains(f.Allow, classification) {
		return
	}
	f.Logger.Logf(classification, format, v...)
}

// OrNoop returns l, or Noop when l is nil.
func OrNoop(l Logger) Logger {
	if l == nil {
		return Noop{}
	}
	return l
}
