package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/trace"
)

// Init installs a JSON logger tagged with the service name as the default.
func Init(service string) *slog.Logger {
	return InitWriter(os.Stdout, service)
}

func InitWriter(w io.Writer, service string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}
	logger := slog.New(slog.NewJSONHandler(w, opts)).With(slog.String("service", service))
	slog.SetDefault(logger)
	return logger
}

// From returns the default logger with trace and span ids from ctx, if any.
func From(ctx context.Context) *slog.Logger {
	logger := slog.Default()

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		logger = logger.With(
			slog.String("trace_id", span.SpanContext().TraceID().String()),
			slog.String("span_id", span.SpanContext().SpanID().String()),
		)
	}

	return logger
}
