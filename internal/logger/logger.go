// Package logger provides a small structured logging facade over log/slog
// with typed field constructors, so call sites stay terse and the backend
// stays swappable in tests.
package logger

import (
	"io"
	"log/slog"
)

// LogLevel controls the minimum severity emitted by a logger.
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

// Field is a typed key/value attribute attached to a log record.
type Field struct {
	Key   string
	Value any
}

// String returns a string-valued field.
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

// Int returns an int-valued field.
func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

// Int64 returns an int64-valued field.
func Int64(key string, value int64) Field {
	return Field{Key: key, Value: value}
}

// Float64 returns a float64-valued field.
func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

// Bool returns a bool-valued field.
func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

// Error returns a field holding an error under the conventional "error" key.
// A nil error produces a field with a nil value.
func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Any returns a field holding an arbitrary value.
func Any(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Logger is the logging interface used throughout the engine.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger
}

// slogLogger adapts log/slog to the Logger interface.
type slogLogger struct {
	sl *slog.Logger
}

// NewSlogLogger creates a Logger writing text records to w at the given
// minimum level. The baseFields, if any, are attached to every record.
func NewSlogLogger(w io.Writer, level LogLevel, baseFields []Field) Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: slogLevel(level)})
	sl := slog.New(handler)
	if len(baseFields) > 0 {
		sl = sl.With(attrs(baseFields)...)
	}
	return &slogLogger{sl: sl}
}

func (l *slogLogger) Debug(msg string, fields ...Field) { l.sl.Debug(msg, attrs(fields)...) }
func (l *slogLogger) Info(msg string, fields ...Field)  { l.sl.Info(msg, attrs(fields)...) }
func (l *slogLogger) Warn(msg string, fields ...Field)  { l.sl.Warn(msg, attrs(fields)...) }
func (l *slogLogger) Error(msg string, fields ...Field) { l.sl.Error(msg, attrs(fields)...) }

func (l *slogLogger) With(fields ...Field) Logger {
	return &slogLogger{sl: l.sl.With(attrs(fields)...)}
}

func slogLevel(level LogLevel) slog.Level {
	switch level {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func attrs(fields []Field) []any {
	out := make([]any, 0, len(fields)*2)
	for _, f := range fields {
		out = append(out, f.Key, f.Value)
	}
	return out
}
