package logging

import (
	"context"
	"log/slog"
	"sync/atomic"

	"go.opentelemetry.io/otel/trace"
)

type ctxKey struct{}

// processLogger backs FromContext when a context carries no logger.
var processLogger atomic.Pointer[slog.Logger]

func init() {
	processLogger.Store(slog.Default())
}

// SetDefault makes logger the fallback for FromContext and the slog default.
func SetDefault(logger *slog.Logger) {
	processLogger.Store(logger)
	slog.SetDefault(logger)
}

// FromContext returns the logger stored in ctx, or the process default.
// A nil ctx is allowed.
func FromContext(ctx context.Context) *slog.Logger {
	return FromContextOr(ctx, processLogger.Load())
}

// FromContextOr is FromContext with an explicit fallback. Components that
// were built with their own logger use it so background work, which has no
// request logger, still logs through the component's logger.
func FromContextOr(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if ctx == nil {
		return fallback
	}

	if logger, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return logger
	}

	return fallback
}

// WithContext stores logger in ctx.
func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// WithAttrs returns ctx carrying its logger enriched with attrs.
func WithAttrs(ctx context.Context, attrs ...slog.Attr) context.Context {
	return withAttrs(ctx, FromContext(ctx), attrs)
}

func withAttrs(ctx context.Context, base *slog.Logger, attrs []slog.Attr) context.Context {
	if len(attrs) == 0 {
		return ctx
	}

	return WithContext(ctx, slog.New(base.Handler().WithAttrs(attrs)))
}

// WithRequestID tags the context logger with request_id.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return WithAttrs(ctx, slog.String("request_id", requestID))
}

// WithCorrelationID tags the context logger with correlation_id.
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return WithAttrs(ctx, slog.String("correlation_id", correlationID))
}

// WithSpan tags the context logger, or fallback when ctx has none, with the
// trace_id and span_id of the span in ctx. Without a valid span ctx is
// returned as is.
func WithSpan(ctx context.Context, fallback *slog.Logger) context.Context {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return ctx
	}

	return withAttrs(ctx, FromContextOr(ctx, fallback), []slog.Attr{
		slog.String("trace_id", sc.TraceID().String()),
		slog.String("span_id", sc.SpanID().String()),
	})
}
