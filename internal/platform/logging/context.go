package logging

import (
	"context"
	"log/slog"
)

// Attribute keys shared by every line logged on behalf of a request or cycle.
const (
	KeyRequestID     = "request_id"
	KeyCorrelationID = "correlation_id"
	KeyTraceID       = "trace_id"
	KeyCycle         = "cycle"
	KeyCycleID       = "cycle_id"
)

type loggerKey struct{}

var defaultLogger = slog.Default()

// FromContext returns the logger stored in ctx, or the default logger.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := Lookup(ctx); ok {
		return logger
	}

	return defaultLogger
}

// Lookup returns the logger stored in ctx, if any.
func Lookup(ctx context.Context) (*slog.Logger, bool) {
	if ctx == nil {
		return nil, false
	}

	logger, ok := ctx.Value(loggerKey{}).(*slog.Logger)

	return logger, ok
}

// WithContext stores logger in ctx.
func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// SetDefault replaces the fallback logger and the slog default.
func SetDefault(logger *slog.Logger) {
	defaultLogger = logger
	slog.SetDefault(logger)
}

func tag(ctx context.Context, attrs ...any) context.Context {
	return WithContext(ctx, FromContext(ctx).With(attrs...))
}

// WithRequestID tags the context logger with a request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return tag(ctx, KeyRequestID, id)
}

// WithCorrelationID tags the context logger with a correlation ID.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return tag(ctx, KeyCorrelationID, id)
}

// WithTraceID tags the context logger with the active trace ID.
func WithTraceID(ctx context.Context, id string) context.Context {
	return tag(ctx, KeyTraceID, id)
}

// WithCycle tags the context logger with a sync cycle kind and ID so every
// line emitted during one cycle can be grouped.
func WithCycle(ctx context.Context, kind, cycleID string) context.Context {
	return tag(ctx, KeyCycle, kind, KeyCycleID, cycleID)
}
