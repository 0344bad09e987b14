// Package telemetry provides OpenTelemetry metrics for the registry
// server, exported in Prometheus format.
package telemetry

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Config controls whether metrics are collected.
type Config struct {
	Enabled bool `yaml:"enabled"`
}

// Provider bundles the meter provider with the handler that serves its
// scrape endpoint.
type Provider struct {
	meterProvider metric.MeterProvider
	handler       http.Handler
}

// MeterProvider returns the underlying OpenTelemetry meter provider.
func (p *Provider) MeterProvider() metric.MeterProvider {
	return p.meterProvider
}

// Handler returns the Prometheus scrape handler. With metrics disabled
// it serves an empty registry.
func (p *Provider) Handler() http.Handler {
	return p.handler
}

// NewProvider builds a Prometheus-backed meter provider, or a no-op one
// when metrics are disabled.
func NewProvider(cfg Config, serviceName, serviceVersion string) (*Provider, error) {
	if !cfg.Enabled {
		slog.Info("Metrics disabled, using no-op meter provider")
		return &Provider{
			meterProvider: noop.NewMeterProvider(),
			handler:       promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{}),
		}, nil
	}

	registry := prometheus.NewRegistry()
	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceName),
		semconv.ServiceVersion(serviceVersion),
	)

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)
	otel.SetMeterProvider(mp)

	return &Provider{
		meterProvider: mp,
		handler:       promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}, nil
}
