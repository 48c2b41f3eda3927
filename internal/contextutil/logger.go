package contextutil

import (
	"context"
	"log/slog"
)

type contextKey string

const loggerKey contextKey = "logger"

// WithLogger returns a context carrying the given logger. Commands attach
// their configured logger once and every layer below picks it up.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// LoggerFromContext extracts a logger from context if available, otherwise returns the default logger.
// This helper can be used by any package that needs to extract a logger from context.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if ctxLogger := ctx.Value(loggerKey); ctxLogger != nil {
		if l, ok := ctxLogger.(*slog.Logger); ok {
			return l
		}
	}
	return slog.Default()
}
