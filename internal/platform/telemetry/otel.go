// Package telemetry exports traces and metrics over OTLP and instruments
// inbound HTTP requests.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/jsamuelsen/quotesync/internal/platform/config"
)

const (
	flushTimeout   = 5 * time.Second
	exportInterval = 15 * time.Second
)

// Config describes where and how telemetry is exported.
type Config struct {
	Enabled bool

	// Endpoint is the OTLP gRPC collector URL. An http:// scheme disables TLS.
	Endpoint     string
	ServiceName  string
	Version      string
	Environment  string
	SamplingRate float64
}

// ConfigFrom derives the telemetry settings from the application config.
// The service name falls back to the app name.
func ConfigFrom(cfg *config.Config) *Config {
	return &Config{
		Enabled:      cfg.Telemetry.Enabled,
		Endpoint:     cfg.Telemetry.Endpoint,
		ServiceName:  cmpString(cfg.Telemetry.ServiceName, cfg.App.Name),
		Version:      cfg.App.Version,
		Environment:  cfg.App.Environment,
		SamplingRate: cfg.Telemetry.SamplingRate,
	}
}

// Provider owns the exporters started by New.
type Provider struct {
	shutdowns []func(context.Context) error
}

// New installs the W3C trace context and baggage propagators, then, when
// cfg.Enabled is set, starts OTLP trace and metric exporters and registers
// them as the global providers. The HTTP client, the reconciler and the
// request middleware all instrument through the globals.
func New(ctx context.Context, cfg *Config) (*Provider, error) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	p := &Provider{}
	if !cfg.Enabled {
		return p, nil
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.Version),
		semconv.DeploymentEnvironment(cfg.Environment),
	))
	if err != nil {
		return nil, fmt.Errorf("building telemetry resource: %w", err)
	}

	spans, err := otlptracegrpc.New(ctx, otlptracegrpc.WithEndpointURL(cfg.Endpoint))
	if err != nil {
		return nil, fmt.Errorf("starting span exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(spans),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SamplingRate))),
	)
	p.shutdowns = append(p.shutdowns, tp.Shutdown)

	metrics, err := otlpmetricgrpc.New(ctx, otlpmetricgrpc.WithEndpointURL(cfg.Endpoint))
	if err != nil {
		return nil, errors.Join(fmt.Errorf("starting metric exporter: %w", err), p.Shutdown(ctx))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metrics, sdkmetric.WithInterval(exportInterval))),
	)
	p.shutdowns = append(p.shutdowns, mp.Shutdown)

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)

	return p, nil
}

// Enabled reports whether exporters are running.
func (p *Provider) Enabled() bool {
	return len(p.shutdowns) > 0
}

// Shutdown flushes what is buffered and stops the exporters, giving up after
// a few seconds.
func (p *Provider) Shutdown(ctx context.Context) error {
	if !p.Enabled() {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, flushTimeout)
	defer cancel()

	var errs []error
	for _, shutdown := range p.shutdowns {
		if err := shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	p.shutdowns = nil

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("stopping telemetry: %w", err)
	}

	return nil
}

func cmpString(v, fallback string) string {
	if v != "" {
		return v
	}

	return fallback
}
