// Package logging provides a small leveled wrapper around the standard
// library's log.Logger, used for startup, accept and close events across the
// reactor and command-line entrypoint.
package logging

import (
	"io"
	"log"
	"os"
)

// Level selects which prefixed sub-logger a message is written through.
type Level string

const (
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
	LevelDebug Level = "DEBUG"
)

// Logger is a leveled logger: each level gets its own prefixed
// *log.Logger writing to the same destination.
type Logger struct {
	info  *log.Logger
	warn  *log.Logger
	error *log.Logger
	debug *log.Logger
}

// New builds a Logger writing every level to w.
func New(w io.Writer) *Logger {
	return &Logger{
		info:  log.New(w, "[INFO]  ", log.LstdFlags),
		warn:  log.New(w, "[WARN]  ", log.LstdFlags),
		error: log.New(w, "[ERROR] ", log.LstdFlags),
		debug: log.New(w, "[DEBUG] ", log.LstdFlags),
	}
}

// Default builds a Logger writing to stderr, matching the teacher's
// unconfigured default.
func Default() *Logger {
	return New(os.Stderr)
}

func (l *Logger) sub(level Level) *log.Logger {
	switch level {
	case LevelWarn:
		return l.warn
	case LevelError:
		return l.error
	case LevelDebug:
		return l.debug
	default:
		return l.info
	}
}

// Printf logs at INFO, matching the signature the reactor's log lines are
// already written with.
func (l *Logger) Printf(format string, v ...interface{}) {
	l.info.Printf(format, v...)
}

// Println logs at INFO.
func (l *Logger) Println(v ...interface{}) {
	l.info.Println(v...)
}

// Leveled logs format at the given level.
func (l *Logger) Leveled(level Level, format string, v ...interface{}) {
	l.sub(level).Printf(format, v...)
}

// Info logs at INFO.
func (l *Logger) Info(format string, v ...interface{}) { l.Leveled(LevelInfo, format, v...) }

// Warn logs at WARN.
func (l *Logger) Warn(format string, v ...interface{}) { l.Leveled(LevelWarn, format, v...) }

// Error logs at ERROR.
func (l *Logger) Error(format string, v ...interface{}) { l.Leveled(LevelError, format, v...) }
