package observability

import (
	"fmt"
	"io"
	"os"
	"sort"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger is a Logger backed by zap with a JSON encoder
type ZapLogger struct {
	base  *zap.Logger
	level zap.AtomicLevel
}

// NewLogger creates a logger for service writing JSON lines to stderr.
func NewLogger(service string, level LogLevel) *ZapLogger {
	return NewLoggerWithWriter(service, level, os.Stderr)
}

// NewLoggerWithWriter creates a logger writing to w.
func NewLoggerWithWriter(service string, level LogLevel, w io.Writer) *ZapLogger {
	atom := zap.NewAtomicLevelAt(toZapLevel(level))

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "timestamp"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	// w is shared by every goroutine that logs
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.Lock(zapcore.AddSync(w)), atom)

	return &ZapLogger{
		base:  zap.New(core).Named(service),
		level: atom,
	}
}

// SetLevel changes the minimum level of this logger and every logger
// derived from it.
func (l *ZapLogger) SetLevel(level LogLevel) {
	l.level.SetLevel(toZapLevel(level))
}

// Level returns the current minimum level
func (l *ZapLogger) Level() LogLevel {
	switch l.level.Level() {
	case zapcore.DebugLevel:
		return LogLevelDebug
	case zapcore.WarnLevel:
		return LogLevelWarn
	case zapcore.ErrorLevel:
		return LogLevelError
	case zapcore.FatalLevel:
		return LogLevelFatal
	default:
		return LogLevelInfo
	}
}

// Sync flushes buffered entries
func (l *ZapLogger) Sync() error {
	return l.base.Sync()
}

// Debug logs a debug message
func (l *ZapLogger) Debug(msg string, fields map[string]interface{}) {
	l.base.Debug(msg, toZapFields(fields)...)
}

// Info logs an info message
func (l *ZapLogger) Info(msg string, fields map[string]interface{}) {
	l.base.Info(msg, toZapFields(fields)...)
}

// Warn logs a warning message
func (l *ZapLogger) Warn(msg string, fields map[string]interface{}) {
	l.base.Warn(msg, toZapFields(fields)...)
}

// Error logs an error message
func (l *ZapLogger) Error(msg string, fields map[string]interface{}) {
	l.base.Error(msg, toZapFields(fields)...)
}

// Fatal logs a fatal message and exits
func (l *ZapLogger) Fatal(msg string, fields map[string]interface{}) {
	l.base.Fatal(msg, toZapFields(fields)...)
}

// Debugf logs a formatted debug message
func (l *ZapLogger) Debugf(format string, args ...interface{}) {
	if l.base.Core().Enabled(zapcore.DebugLevel) {
		l.base.Debug(fmt.Sprintf(format, args...))
	}
}

// Infof logs a formatted info message
func (l *ZapLogger) Infof(format string, args ...interface{}) {
	l.base.Info(fmt.Sprintf(format, args...))
}

// Warnf logs a formatted warning message
func (l *ZapLogger) Warnf(format string, args ...interface{}) {
	l.base.Warn(fmt.Sprintf(format, args...))
}

// Errorf logs a formatted error message
func (l *ZapLogger) Errorf(format string, args ...interface{}) {
	l.base.Error(fmt.Sprintf(format, args...))
}

// WithPrefix returns a child logger named prefix
func (l *ZapLogger) WithPrefix(prefix string) Logger {
	return &ZapLogger{base: l.base.Named(prefix), level: l.level}
}

// With returns a child logger that always carries fields
func (l *ZapLogger) With(fields map[string]interface{}) Logger {
	return &ZapLogger{base: l.base.With(toZapFields(fields)...), level: l.level}
}

// toZapFields converts a field map in key order so output is stable
func toZapFields(fields map[string]interface{}) []zap.Field {
	if len(fields) == 0 {
		return nil
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		if err, ok := fields[k].(error); ok {
			out = append(out, zap.NamedError(k, err))
			continue
		}
		out = append(out, zap.Any(k, fields[k]))
	}
	return out
}

func toZapLevel(level LogLevel) zapcore.Level {
	switch level {
	case LogLevelDebug:
		return zapcore.DebugLevel
	case LogLevelWarn:
		return zapcore.WarnLevel
	case LogLevelError:
		return zapcore.ErrorLevel
	case LogLevelFatal:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}
