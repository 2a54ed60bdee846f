package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/trace"
)

// New builds the application logger. Logs go to stderr so they never mix
// with the console menus on stdout.
//
// prod/dev: JSONHandler for log aggregation.
// anything else: TextHandler with red ERROR messages.
func New() *slog.Logger {
	return NewWithWriter(os.Stderr, os.Getenv("ENV"))
}

// NewWithWriter is New with an explicit sink and environment name.
func NewWithWriter(w io.Writer, env string) *slog.Logger {
	if env == "prod" || env == "dev" {
		return slog.New(contextHandler{Handler: slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:     slog.LevelInfo,
			AddSource: true,
		})})
	}
	return slog.New(contextHandler{
		Handler:     slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}),
		colorErrors: true,
	})
}

func NewWithServiceContext(serviceName, version string) *slog.Logger {
	return New().With(
		slog.String("service", serviceName),
		slog.String("version", version),
		slog.String("environment", os.Getenv("ENV")),
	)
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const (
	red   = "\x1b[31m"
	reset = "\x1b[0m"
)

// contextHandler decorates every record before passing it on: it attaches
// the trace and span IDs of the active span and, for terminal output, paints
// ERROR messages red.
type contextHandler struct {
	slog.Handler
	colorErrors bool
}

func (h contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	if h.colorErrors && r.Level >= slog.LevelError {
		r.Message = red + r.Message + reset
	}
	return h.Handler.Handle(ctx, r)
}

func (h contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return contextHandler{Handler: h.Handler.WithAttrs(attrs), colorErrors: h.colorErrors}
}

func (h contextHandler) WithGroup(name string) slog.Handler {
	return contextHandler{Handler: h.Handler.WithGroup(name), colorErrors: h.colorErrors}
}
