package telemetry

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/quotesync/internal/platform/logging"
)

const (
	instrumentationName = "github.com/jsamuelsen/quotesync/telemetry"

	// TraceIDHeader carries the request's trace ID back to the caller.
	TraceIDHeader = "X-Trace-ID"
)

// Middleware returns two handlers for engine.Use. The first opens a server
// span per request through otelgin. The second echoes the trace ID in
// X-Trace-ID, tags the request logger with it and records request metrics
// by route template. Requests for skipPaths get neither.
func Middleware(serviceName string, skipPaths ...string) []gin.HandlerFunc {
	skipped := make(map[string]bool, len(skipPaths))
	for _, p := range skipPaths {
		skipped[p] = true
	}

	tracing := otelgin.Middleware(serviceName, otelgin.WithFilter(func(r *http.Request) bool {
		return !skipped[r.URL.Path]
	}))

	m, err := newServerMetrics()
	if err != nil {
		// Requests are still served, just not measured.
		otel.Handle(err)
	}

	return []gin.HandlerFunc{tracing, func(c *gin.Context) {
		if skipped[c.Request.URL.Path] {
			c.Next()
			return
		}

		if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
			c.Header(TraceIDHeader, sc.TraceID().String())
			c.Request = c.Request.WithContext(logging.WithSpan(c.Request.Context(), logging.FromContext(c.Request.Context())))
		}

		if m == nil {
			c.Next()
			return
		}

		m.observe(c)
	}}
}

type serverMetrics struct {
	duration metric.Float64Histogram
	total    metric.Int64Counter
	inFlight metric.Int64UpDownCounter
}

func newServerMetrics() (*serverMetrics, error) {
	meter := otel.Meter(instrumentationName)

	duration, errDuration := meter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("Time spent serving a request"),
		metric.WithUnit("s"),
	)
	total, errTotal := meter.Int64Counter("http.server.request.total",
		metric.WithDescription("Requests served"),
	)
	inFlight, errInFlight := meter.Int64UpDownCounter("http.server.active_requests",
		metric.WithDescription("Requests being served"),
	)

	if err := errors.Join(errDuration, errTotal, errInFlight); err != nil {
		return nil, err
	}

	return &serverMetrics{duration: duration, total: total, inFlight: inFlight}, nil
}

// observe runs the rest of the chain and records it. Queries do not split
// series: /api/v1/quotes?category=Life is counted under /api/v1/quotes.
func (m *serverMetrics) observe(c *gin.Context) {
	ctx := c.Request.Context()
	start := time.Now()

	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}

	base := []attribute.KeyValue{
		attribute.String("http.method", c.Request.Method),
		attribute.String("http.route", route),
	}

	m.inFlight.Add(ctx, 1, metric.WithAttributes(base...))
	defer m.inFlight.Add(ctx, -1, metric.WithAttributes(base...))

	c.Next()

	done := metric.WithAttributes(append(base, attribute.Int("http.status_code", c.Writer.Status()))...)
	m.duration.Record(ctx, time.Since(start).Seconds(), done)
	m.total.Add(ctx, 1, done)
}
