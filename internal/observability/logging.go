// Package observability carries structured logging context for runs
// and stages through context.Context.
package observability

import (
	"context"
	"log/slog"
)

// LogContext holds structured logging context for one request path.
type LogContext struct {
	RunID string
	Stage string
}

type logContextKeyType string

const logContextKey logContextKeyType = "log-context"

// WithRunID adds a run ID to the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	lc := extractLogContext(ctx)
	lc.RunID = runID
	return context.WithValue(ctx, logContextKey, lc)
}

// WithStage adds a stage name to the context.
func WithStage(ctx context.Context, stage string) context.Context {
	lc := extractLogContext(ctx)
	lc.Stage = stage
	return context.WithValue(ctx, logContextKey, lc)
}

// GetContext returns the structured log context from ctx.
func GetContext(ctx context.Context) LogContext {
	return extractLogContext(ctx)
}

func extractLogContext(ctx context.Context) LogContext {
	if lc, ok := ctx.Value(logContextKey).(LogContext); ok {
		return lc
	}
	return LogContext{}
}

func logAttrs(ctx context.Context, attrs []slog.Attr) []slog.Attr {
	lc := extractLogContext(ctx)
	out := make([]slog.Attr, 0, len(attrs)+2)
	if lc.RunID != "" {
		out = append(out, slog.String("run.id", lc.RunID))
	}
	if lc.Stage != "" {
		out = append(out, slog.String("stage", lc.Stage))
	}
	return append(out, attrs...)
}

// InfoContext logs an info message with context attributes attached.
func InfoContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	slog.LogAttrs(ctx, slog.LevelInfo, msg, logAttrs(ctx, attrs)...)
}

// WarnContext logs a warning message with context attributes attached.
func WarnContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	slog.LogAttrs(ctx, slog.LevelWarn, msg, logAttrs(ctx, attrs)...)
}

// ErrorContext logs an error message with context attributes attached.
func ErrorContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	slog.LogAttrs(ctx, slog.LevelError, msg, logAttrs(ctx, attrs)...)
}

// DebugContext logs a debug message with context attributes attached.
func DebugContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	slog.LogAttrs(ctx, slog.LevelDebug, msg, logAttrs(ctx, attrs)...)
}
