package logging

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

// sessionRefLen is how much of a session token is safe to log.
const sessionRefLen = 8

var defaultLogger = slog.Default()

// FromContext returns the request-scoped logger, or the default logger when
// ctx is nil or carries none.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return defaultLogger
	}

	if logger, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return logger
	}

	return defaultLogger
}

// WithContext stores a logger in the context.
func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// With enriches the logger in ctx with attrs.
func With(ctx context.Context, attrs ...slog.Attr) context.Context {
	args := make([]any, len(attrs))
	for i, a := range attrs {
		args[i] = a
	}

	return WithContext(ctx, FromContext(ctx).With(args...))
}

// WithRequestID adds request_id to the logger in context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return With(ctx, slog.String("request_id", requestID))
}

// WithTraceID adds trace_id to the logger in context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return With(ctx, slog.String("trace_id", traceID))
}

// WithSessionRef adds a short, non-replayable prefix of the visitor's
// session token as session_ref. The full token never reaches the logs.
func WithSessionRef(ctx context.Context, sessionID string) context.Context {
	ref := sessionID
	if len(ref) > sessionRefLen {
		ref = ref[:sessionRefLen]
	}

	return With(ctx, slog.String("session_ref", ref))
}

// SetDefault sets the fallback logger and the slog package default.
func SetDefault(logger *slog.Logger) {
	defaultLogger = logger
	slog.SetDefault(logger)
}
