// Package tjitlog provides the tracing JIT core's leveled logger: a
// thin wrapper over the standard library's log package, the same
// shape as the logging helper used elsewhere in this corpus
// (internal/logging in the go-ublk example) rather than pulling in a
// structured-logging dependency for what is, on the hot path, mostly
// silent.
package tjitlog

import (
	"fmt"
	"io"
	"log"
	"os"
)

// Level controls which calls actually reach the underlying writer.
type Level int

const (
	LevelSilent Level = iota
	LevelError
	LevelWarn
	LevelInfo
	LevelDebug
)

// Logger is safe for concurrent use; the ENTER/MERGE hot path calls
// it from every interpreter goroutine.
type Logger struct {
	level Level
	l     *log.Logger
}

// New creates a Logger writing to os.Stderr at the given level.
func New(level Level) *Logger {
	return NewWithWriter(level, os.Stderr)
}

// NewWithWriter creates a Logger writing to an arbitrary io.Writer,
// primarily for tests that want to capture output.
func NewWithWriter(level Level, w io.Writer) *Logger {
	return &Logger{level: level, l: log.New(w, "tjit: ", log.LstdFlags)}
}

func (lg *Logger) log(level Level, tag, format string, args ...interface{}) {
	if lg == nil || level > lg.level {
		return
	}
	lg.l.Printf("[%s] %s", tag, fmt.Sprintf(format, args...))
}

func (lg *Logger) Errorf(format string, args ...interface{}) { lg.log(LevelError, "error", format, args...) }
func (lg *Logger) Warnf(format string, args ...interface{})  { lg.log(LevelWarn, "warn", format, args...) }
func (lg *Logger) Infof(format string, args ...interface{})  { lg.log(LevelInfo, "info", format, args...) }
func (lg *Logger) Debugf(format string, args ...interface{}) { lg.log(LevelDebug, "debug", format, args...) }

// SetLevel adjusts verbosity at runtime, e.g. from a CLI flag.
func (lg *Logger) SetLevel(level Level) { lg.level = level }
