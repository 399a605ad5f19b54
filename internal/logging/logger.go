package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger struct {
	*zap.Logger
}

func NewLogger(level string) (*Logger, error) {
	config := zap.NewProductionConfig()

	// Parse log level
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}
	config.Level = zap.NewAtomicLevelAt(zapLevel)

	logger, err := config.Build()
	if err != nil {
		return nil, err
	}

	return &Logger{logger}, nil
}

// Field is a structured logging field, re-exported so callers outside this
// package don't need to import zap directly.
type Field = zap.Field

// F builds a Field from an arbitrary key/value pair.
func F(key string, value any) Field {
	return zap.Any(key, value)
}

// Sink is an injectable diagnostic sink. Core components that need to
// surface a warning (e.g. index deserialization falling back to empty)
// take a Sink instead of depending on *Logger directly, so they don't
// force a concrete logger on every caller.
type Sink interface {
	Warn(msg string, fields ...Field)
}

type zapSink struct {
	l *zap.Logger
}

// NewSink wraps a *zap.Logger as a Sink.
func NewSink(l *zap.Logger) Sink {
	return &zapSink{l: l}
}

func (s *zapSink) Warn(msg string, fields ...Field) {
	s.l.Warn(msg, fields...)
}

type noopSink struct{}

func (noopSink) Warn(string, ...Field) {}

// Noop discards every diagnostic. Useful for tests and callers that don't
// care about non-fatal warnings.
var Noop Sink = noopSink{}
