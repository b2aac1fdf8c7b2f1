package slogx

import (
	"context"
	"log/slog"
)

type loggerKey struct{}

// WithContext stores logger in ctx for FromContext.
func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the request-scoped logger placed by HTTPMiddleware,
// or slog.Default when there is none.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// WithUser tags the context logger with the verified user, so every line
// logged after the gate names who made the request.
func WithUser(ctx context.Context, userID int64) context.Context {
	return WithContext(ctx, FromContext(ctx).With(slog.Int64("user_id", userID)))
}
