package common

import (
	"context"
	"log/slog"
)

// Context keys for storing values in context
type contextKey string

const (
	ContextKeyRunID    contextKey = "run_id"
	ContextKeyDocument contextKey = "document"
	ContextKeyLogger   contextKey = "logger"
)

// WithRunID adds a run ID to the context
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, ContextKeyRunID, runID)
}

// RunIDFromContext extracts the run ID from context
func RunIDFromContext(ctx context.Context) string {
	if runID, ok := ctx.Value(ContextKeyRunID).(string); ok {
		return runID
	}
	return ""
}

// WithDocument tags the context with the document path being processed
func WithDocument(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, ContextKeyDocument, path)
}

// DocumentFromContext extracts the document path from context
func DocumentFromContext(ctx context.Context) string {
	if p, ok := ctx.Value(ContextKeyDocument).(string); ok {
		return p
	}
	return ""
}

// WithLogger stores a logger in the context
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ContextKeyLogger, logger)
}

// LoggerFromContext returns the context logger, falling back to slog.Default.
// run_id is attached when present.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(ContextKeyLogger).(*slog.Logger)
	if !ok || logger == nil {
		logger = slog.Default()
	}
	if id := RunIDFromContext(ctx); id != "" {
		logger = logger.With("run_id", id)
	}
	return logger
}
