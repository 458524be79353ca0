// Package logging defines the minimal logging contract shared by every
// component in this module. No component reaches for a process-global
// logger; each takes a Logger by reference and defaults to NopLogger.
package logging

import (
	"fmt"
	"log"
	"os"
)

// Logger is the structured logging interface the CLI hands to the
// valuation driver.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// NopLogger discards everything. It is the default when no Logger is
// supplied, so components never need a nil check on the hot path.
type NopLogger struct{}

func (NopLogger) Debugf(format string, args ...any) {}
func (NopLogger) Infof(format string, args ...any)  {}
func (NopLogger) Warnf(format string, args ...any)  {}
func (NopLogger) Errorf(format string, args ...any) {}

// StdLogger writes to a standard library *log.Logger, with a severity
// prefix per call. Used by the CLI when a human is watching stdout/stderr.
type StdLogger struct {
	out *log.Logger
}

// NewStdLogger returns a Logger writing to stderr with the given prefix.
func NewStdLogger(prefix string) *StdLogger {
	return &StdLogger{out: log.New(os.Stderr, prefix, log.LstdFlags)}
}

func (l *StdLogger) Debugf(format string, args ...any) { l.out.Print("DEBUG " + fmt.Sprintf(format, args...)) }
func (l *StdLogger) Infof(format string, args ...any)  { l.out.Print("INFO  " + fmt.Sprintf(format, args...)) }
func (l *StdLogger) Warnf(format string, args ...any)  { l.out.Print("WARN  " + fmt.Sprintf(format, args...)) }
func (l *StdLogger) Errorf(format string, args ...any) { l.out.Print("ERROR " + fmt.Sprintf(format, args...)) }

// OrDefault returns l if non-nil, otherwise NopLogger{}. Mirrors the
// teacher's CalculationEngine.SetLogger nil-guard.
func OrDefault(l Logger) Logger {
	if l == nil {
		return NopLogger{}
	}
	return l
}
