package metrics

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	metric2 "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"
)

// MetricProvider is the SDK meter provider installed as the global one.
type MetricProvider interface {
	Meter(name string, options ...metric.MeterOption) metric.Meter
	Shutdown(ctx context.Context) error
}

func getReaders(ctx context.Context, cfg Config, opt []otlpmetricgrpc.Option) []metric2.Reader {
	var readers []metric2.Reader

	for _, provider := range cfg.Provider {
		switch provider.Provider {
		case PrometheusProvider:
			promExporter, err := prometheus.New()
			if err != nil {
				panic(err)
			}

			readers = append(readers, promExporter)
		case OtelCollector:
			cfg := []otlpmetricgrpc.Option{
				otlpmetricgrpc.WithEndpointURL(provider.Endpoint),
				otlpmetricgrpc.WithHeaders(provider.Headers),
			}

			if provider.Insecure {
				cfg = append(cfg, otlpmetricgrpc.WithInsecure())
			}

			exp, err := otlpmetricgrpc.New(ctx, cfg...)
			if err != nil {
				panic(err)
			}

			readers = append(readers, metric2.NewPeriodicReader(exp))
		}
	}

	if len(cfg.Provider) == 0 {
		exp, err := otlpmetricgrpc.New(ctx, opt...)
		if err != nil {
			panic(err)
		}

		readers = append(readers, metric2.NewPeriodicReader(exp))
	}

	return readers
}

// NewMetricProvider builds a meter provider from options and installs it
// globally, so instruments created through otel.Meter start exporting.
func NewMetricProvider(options ...OptionFn) MetricProvider {
	ctx := context.Background()

	var cfg Config

	for _, opt := range options {
		cfg = opt(cfg)
	}

	var opt []otlpmetricgrpc.Option

	readers := getReaders(ctx, cfg, opt)

	var metricsOps []metric2.Option

	for _, reader := range readers {
		metricsOps = append(metricsOps, metric2.WithReader(reader))
	}

	if cfg.ServiceName != "" {
		metricsOps = append(metricsOps, metric2.WithResource(
			resource.NewSchemaless(semconv.ServiceNameKey.String(cfg.ServiceName)),
		))
	} else {
		serviceName := os.Getenv("OTEL_SERVICE_NAME")

		metricsOps = append(metricsOps, metric2.WithResource(
			resource.NewSchemaless(semconv.ServiceNameKey.String(serviceName)),
		))
	}

	meterProvider := metric2.NewMeterProvider(metricsOps...)

	otel.SetMeterProvider(meterProvider)

	return meterProvider
}

// ServePrometheusMetrics serves /metrics until the listener fails. It
// blocks; run it in its own goroutine.
func ServePrometheusMetrics(opt ...PromOptionFn) error {
	var cfg PromServerConfig
	var port = "2223"

	for _, o := range opt {
		cfg = o(cfg)
	}

	if cfg.port != "" {
		port = cfg.port
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("serving metrics on :%s: %w", port, err)
	}
	return nil
}
