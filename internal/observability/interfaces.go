// Package observability provides the structured logger used across the
// server. All output goes to the diagnostic stream so it never mixes with
// protocol frames on stdout.
package observability

import "strings"

// LogLevel defines log message severity
type LogLevel string

// Log levels
const (
	LogLevelDebug LogLevel = "DEBUG"
	LogLevelInfo  LogLevel = "INFO"
	LogLevelWarn  LogLevel = "WARN"
	LogLevelError LogLevel = "ERROR"
	LogLevelFatal LogLevel = "FATAL"
)

// ParseLogLevel converts a config string ("debug", "INFO", ...) into a
// LogLevel, falling back to info.
func ParseLogLevel(s string) LogLevel {
	switch LogLevel(strings.ToUpper(strings.TrimSpace(s))) {
	case LogLevelDebug:
		return LogLevelDebug
	case LogLevelWarn, "WARNING":
		return LogLevelWarn
	case LogLevelError:
		return LogLevelError
	case LogLevelFatal:
		return LogLevelFatal
	default:
		return LogLevelInfo
	}
}

// Logger defines the interface for logging
type Logger interface {
	// Core logging methods with fields
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	Fatal(msg string, fields map[string]interface{})

	// Formatted logging methods
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})

	// Context methods
	WithPrefix(prefix string) Logger
	With(fields map[string]interface{}) Logger
}

// LevelSetter is implemented by loggers whose level can change at runtime
type LevelSetter interface {
	SetLevel(level LogLevel)
	Level() LogLevel
}
