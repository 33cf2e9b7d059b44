// Package logging provides the process-wide, atomically-replaceable log
// sink described in spec.md §5/§9's "optional logging sink" design note:
// initialised on first use, safe to replace at any point, never required.
package logging

import (
	"fmt"
	"log"
	"sync/atomic"
)

// Level orders log severities, least to most severe.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Field is a single structured key/value pair attached to a log entry.
type Field struct {
	Key   string
	Value interface{}
}

// Sink receives log entries. Hosts embedding this module can install their
// own implementation via SetSink to route entries into their own logging
// framework instead of the default stdlib-backed one.
type Sink interface {
	Log(level Level, msg string, fields ...Field)
}

type stdlibSink struct{}

func (stdlibSink) Log(level Level, msg string, fields ...Field) {
	if len(fields) == 0 {
		log.Printf("[%s] %s", level, msg)
		return
	}
	log.Printf("[%s] %s %s", level, msg, formatFields(fields))
}

func formatFields(fields []Field) string {
	out := ""
	for i, f := range fields {
		if i > 0 {
			out += " "
		}
		out += fmt.Sprintf("%s=%v", f.Key, f.Value)
	}
	return out
}

// sinkHolder wraps the installed Sink so that every value stored in current
// has the same concrete type, which atomic.Value requires.
type sinkHolder struct{ sink Sink }

var (
	current atomic.Value // holds sinkHolder
	level   atomic.Int32
)

func init() {
	current.Store(sinkHolder{sink: stdlibSink{}})
	level.Store(int32(LevelInfo))
}

// SetSink atomically replaces the active sink. Safe to call concurrently
// with Log calls from any goroutine.
func SetSink(s Sink) {
	if s == nil {
		s = stdlibSink{}
	}
	current.Store(sinkHolder{sink: s})
}

// SetLevel atomically changes the minimum level that reaches the sink.
func SetLevel(l Level) {
	level.Store(int32(l))
}

// Log emits an entry to the currently installed sink, if its level meets or
// exceeds the configured minimum.
func Log(l Level, msg string, fields ...Field) {
	if int32(l) < level.Load() {
		return
	}
	current.Load().(sinkHolder).sink.Log(l, msg, fields...)
}

// Debugf, Infof, Warnf and Errorf are printf-style convenience wrappers
// matching the teacher's log.Printf-centric call sites.
func Debugf(format string, args ...interface{}) { Log(LevelDebug, fmt.Sprintf(format, args...)) }
func Infof(format string, args ...interface{})  { Log(LevelInfo, fmt.Sprintf(format, args...)) }
func Warnf(format string, args ...interface{})  { Log(LevelWarn, fmt.Sprintf(format, args...)) }
func Errorf(format string, args ...interface{}) { Log(LevelError, fmt.Sprintf(format, args...)) }
