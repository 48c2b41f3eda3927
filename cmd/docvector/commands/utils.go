package commands

import (
	"context"
	"log/slog"
	"os"

	"docvector/internal/config"
	"docvector/internal/contextutil"
)

// loadConfig loads configuration, configures structured logging per its
// settings, and returns a context carrying the logger.
func loadConfig() (*config.Config, context.Context, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	ctx := contextutil.WithLogger(context.Background(), logger)
	return cfg, ctx, nil
}
