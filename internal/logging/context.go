package logging

import (
	"context"
	"log/slog"
	"strings"
)

type contextKey string

const (
	runIDKey   contextKey = "run_id"
	channelKey contextKey = "channel"
)

// WithRunID tags ctx with the pipeline run identifier.
func WithRunID(ctx context.Context, runID string) context.Context {
	if strings.TrimSpace(runID) == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, runID)
}

// WithChannel tags ctx with the channel label currently being scanned.
func WithChannel(ctx context.Context, label string) context.Context {
	if strings.TrimSpace(label) == "" {
		return ctx
	}
	return context.WithValue(ctx, channelKey, label)
}

// RunIDFromContext returns the run identifier stored in ctx.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(runIDKey).(string)
	return id, ok && id != ""
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	var fields []slog.Attr
	if id, ok := RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if label, ok := ctx.Value(channelKey).(string); ok && label != "" {
		fields = append(fields, slog.String(FieldChannel, label))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
