// Package logger provides a small leveled logging tool.
package logger

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"
)

// Level is a log severity level.
type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var currentLevel atomic.Int32

func init() {
	currentLevel.Store(int32(LevelInfo))
}

// SetLevel sets the global log level.
func SetLevel(level Level) {
	currentLevel.Store(int32(level))
}

// SetLevelFromString sets the global log level from its string name.
// Unknown names fall back to info.
func SetLevelFromString(level string) {
	switch strings.ToLower(level) {
	case "debug":
		SetLevel(LevelDebug)
	case "info":
		SetLevel(LevelInfo)
	case "warn", "warning":
		SetLevel(LevelWarn)
	case "error":
		SetLevel(LevelError)
	default:
		SetLevel(LevelInfo)
	}
}

// IsDebugEnabled reports whether debug output is enabled.
func IsDebugEnabled() bool {
	return Level(currentLevel.Load()) <= LevelDebug
}

func output(level Level, tag, component, format string, args ...any) {
	if Level(currentLevel.Load()) > level {
		return
	}
	if component != "" {
		format = "[" + tag + "] " + component + ": " + format
	} else {
		format = "[" + tag + "] " + format
	}
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

// Debug logs a debug message.
func Debug(format string, args ...any) { output(LevelDebug, "DEBUG", "", format, args...) }

// Info logs an informational message.
func Info(format string, args ...any) { output(LevelInfo, "INFO", "", format, args...) }

// Warn logs a warning message.
func Warn(format string, args ...any) { output(LevelWarn, "WARN", "", format, args...) }

// Error logs an error message.
func Error(format string, args ...any) { output(LevelError, "ERROR", "", format, args...) }

// Component returns a logger that prefixes every message with a component
// name, so the coordinator and the security framework can be told apart in
// interleaved output.
func Component(name string) *ComponentLogger {
	return &ComponentLogger{name: name}
}

// ComponentLogger is a named sub-logger sharing the global level.
type ComponentLogger struct {
	name string
}

func (l *ComponentLogger) Debug(format string, args ...any) {
	output(LevelDebug, "DEBUG", l.name, format, args...)
}

func (l *ComponentLogger) Info(format string, args ...any) {
	output(LevelInfo, "INFO", l.name, format, args...)
}

func (l *ComponentLogger) Warn(format string, args ...any) {
	output(LevelWarn, "WARN", l.name, format, args...)
}

func (l *ComponentLogger) Error(format string, args ...any) {
	output(LevelError, "ERROR", l.name, format, args...)
}
