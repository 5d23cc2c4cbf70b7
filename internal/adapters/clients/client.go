package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/quotesync/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quotesync/internal/platform/config"
	"github.com/jsamuelsen/quotesync/internal/platform/logging"
)

const instrumentationName = "github.com/jsamuelsen/quotesync/internal/adapters/clients"

// defaultTimeout applies when Config.Timeout is unset.
const defaultTimeout = 30 * time.Second

// Config configures a Client.
type Config struct {
	// BaseURL is prefixed to every request path, e.g.
	// "https://jsonplaceholder.typicode.com".
	BaseURL string

	// ServiceName names the remote in logs, spans, metrics and errors.
	ServiceName string

	// Timeout bounds one attempt. Retries and their backoff come on top.
	Timeout time.Duration

	Retry     config.RetryConfig
	Circuit   config.CircuitBreakerConfig
	Transport config.TransportConfig

	// AuthFunc, when set, decorates every attempt, retries included.
	AuthFunc func(*http.Request)

	Logger *slog.Logger
}

// Client talks to the remote quote service. Reads are retried with
// exponential backoff; creates go out once. A circuit breaker stops all
// traffic while the remote keeps failing.
type Client struct {
	http        *http.Client
	baseURL     string
	serviceName string
	cfg         *Config
	logger      *slog.Logger
	cb          *CircuitBreaker
	jitter      func() float64 // in [0,1)

	tracer   trace.Tracer
	duration metric.Float64Histogram
	requests metric.Int64Counter
}

// New validates cfg, fills its defaults and builds the client.
func New(cfg *Config) (*Client, error) {
	switch {
	case cfg == nil:
		return nil, errors.New("config is required")
	case cfg.ServiceName == "":
		return nil, errors.New("service name is required")
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	cfg.Retry.MaxAttempts = max(cfg.Retry.MaxAttempts, 1)

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	logger = logger.With(slog.String("component", "clients.Client"), slog.String("downstream", cfg.ServiceName))

	cb := NewCircuitBreaker(cfg.Circuit)
	cb.OnStateChange(func(from, to State) {
		logger.Warn("circuit breaker state changed", slog.String("from", from.String()), slog.String("to", to.String()))
	})

	meter := otel.Meter(instrumentationName)

	duration, err := meter.Float64Histogram("http.client.request.duration",
		metric.WithDescription("Duration of calls to the remote quote service, retries included"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration metric: %w", err)
	}

	requests, err := meter.Int64Counter("http.client.request.total",
		metric.WithDescription("Calls to the remote quote service by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating request counter: %w", err)
	}

	return &Client{
		http:        &http.Client{Timeout: cfg.Timeout, Transport: newTransport(cfg.Transport)},
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		serviceName: cfg.ServiceName,
		cfg:         cfg,
		logger:      logger,
		cb:          cb,
		jitter:      rand.Float64, //nolint:gosec // backoff jitter
		tracer:      otel.Tracer(instrumentationName),
		duration:    duration,
		requests:    requests,
	}, nil
}

func newTransport(tc config.TransportConfig) *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()

	t.MaxIdleConns = tc.MaxIdleConns
	if t.MaxIdleConns <= 0 {
		t.MaxIdleConns = config.DefaultTransportMaxIdleConns
	}

	t.MaxIdleConnsPerHost = tc.MaxIdleConnsPerHost
	if t.MaxIdleConnsPerHost <= 0 {
		t.MaxIdleConnsPerHost = config.DefaultTransportMaxIdleConnsPerHost
	}

	if tc.IdleConnTimeout > 0 {
		t.IdleConnTimeout = tc.IdleConnTimeout
	}

	return t
}

// Do sends req under the circuit breaker, retrying where that is safe.
//
// Only GET, HEAD, PUT, DELETE and OPTIONS requests are retried, and a body
// is resent only when req.GetBody can rewind it. A 5xx left after the last
// attempt comes back as a *StatusError; every other response is returned
// for the caller to inspect.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	start := time.Now()
	logger := logging.FromContextOr(ctx, c.logger).With(
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
	)

	if !c.cb.Allow() {
		c.observe(ctx, req.Method, 0, start, "circuit_open")
		logger.WarnContext(ctx, "request refused while circuit is open", slog.Duration("retry_in", c.cb.RetryIn()))

		return nil, ErrCircuitOpen
	}

	ctx, span := c.tracer.Start(ctx, "HTTP "+req.Method+" "+c.serviceName,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", req.Method),
			attribute.String("http.url", req.URL.String()),
			attribute.String("peer.service", c.serviceName),
		),
	)
	defer span.End()

	c.decorate(ctx, req)

	resp, attempts, err := c.send(ctx, req, logger)
	span.SetAttributes(attribute.Int("http.attempts", attempts))

	if err != nil {
		c.cb.RecordFailure()
		span.SetStatus(codes.Error, err.Error())
		c.observe(ctx, req.Method, 0, start, "error")
		logger.WarnContext(ctx, "request failed",
			slog.Int("attempts", attempts),
			slog.Duration("duration", time.Since(start)),
			slog.Any("error", err),
		)

		return nil, err
	}

	// A rate-limited remote is treated as a failing one.
	if resp.StatusCode == http.StatusTooManyRequests {
		c.cb.RecordFailure()
	} else {
		c.cb.RecordSuccess()
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode >= http.StatusBadRequest {
		span.SetStatus(codes.Error, "HTTP "+resp.Status)
	}

	c.observe(ctx, req.Method, resp.StatusCode, start, fmt.Sprintf("%dxx", resp.StatusCode/100))
	logger.DebugContext(ctx, "request completed",
		slog.Int("status", resp.StatusCode),
		slog.Int("attempts", attempts),
		slog.Duration("duration", time.Since(start)),
	)

	return resp, nil
}

// Get fetches path, which may carry a query string.
func (c *Client) Get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL(path), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	return c.Do(ctx, req)
}

// PostJSON posts v encoded as JSON.
func (c *Client) PostJSON(ctx context.Context, path string, v any) (*http.Response, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.buildURL(path), bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return c.Do(ctx, req)
}

// CircuitState returns the current state of the circuit breaker.
func (c *Client) CircuitState() State {
	return c.cb.State()
}

// CircuitRetryIn returns how long the open circuit keeps refusing calls.
func (c *Client) CircuitRetryIn() time.Duration {
	return c.cb.RetryIn()
}

// ServiceName returns the remote's name.
func (c *Client) ServiceName() string {
	return c.serviceName
}

// decorate copies request and correlation IDs from ctx, injects the trace
// context and applies AuthFunc.
func (c *Client) decorate(ctx context.Context, req *http.Request) {
	if id := middleware.RequestIDFromContext(ctx); id != "" {
		req.Header.Set(middleware.HeaderRequestID, id)
	}

	if id := middleware.CorrelationIDFromContext(ctx); id != "" {
		req.Header.Set(middleware.HeaderCorrelationID, id)
	}

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	if c.cfg.AuthFunc != nil {
		c.cfg.AuthFunc(req)
	}
}

func (c *Client) buildURL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return c.baseURL + path
}

func (c *Client) observe(ctx context.Context, method string, status int, start time.Time, result string) {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("peer.service", c.serviceName),
		attribute.String("result", result),
	}

	if status > 0 {
		attrs = append(attrs, attribute.Int("http.status_code", status))
	}

	set := metric.WithAttributes(attrs...)
	c.duration.Record(ctx, time.Since(start).Seconds(), set)
	c.requests.Add(ctx, 1, set)
}

// BearerAuth returns an AuthFunc sending token as a bearer credential, or
// nil when token is empty.
func BearerAuth(token string) func(*http.Request) {
	if token == "" {
		return nil
	}

	return func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}
