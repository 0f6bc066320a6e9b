package logger

import (
	"context"
	"log/slog"
)

type contextKey string

const (
	batchIDKey contextKey = "batch_id"
	loggerKey  contextKey = "logger"
)

// WithBatchID adds an import batch ID to the context.
func WithBatchID(ctx context.Context, batchID string) context.Context {
	return context.WithValue(ctx, batchIDKey, batchID)
}

// BatchIDFromContext extracts the batch ID from context.
func BatchIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(batchIDKey).(string); ok {
		return id
	}
	return ""
}

// WithLogger stores a logger in the context.
func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the context's logger, or the default logger, tagged
// with the batch ID when one is present.
func FromContext(ctx context.Context) *slog.Logger {
	l, ok := ctx.Value(loggerKey).(*slog.Logger)
	if !ok {
		l = Default()
	}
	if batchID := BatchIDFromContext(ctx); batchID != "" {
		l = l.With("batch_id", batchID)
	}
	return l
}
