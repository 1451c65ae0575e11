package apm

import (
	"context"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"

	"github.com/fd1az/solana-router/internal/logger"
)

type Provider string

const (
	ZipkinProvider  Provider = "ZIPKIN_PROVIDER"
	OTLPProvider    Provider = "OTLP_PROVIDER"
	ConsoleProvider Provider = "CONSOLE_PROVIDER"
	EmptyProvider   Provider = "EMPTY_PROVIDER"
)

// ParseProvider maps telemetry.trace_provider values (console, zipkin,
// otlp, none) to a Provider. Unknown values select EmptyProvider.
func ParseProvider(s string) Provider {
	switch strings.ToLower(s) {
	case "console", "stdout":
		return ConsoleProvider
	case "zipkin":
		return ZipkinProvider
	case "otlp", "otlp-grpc", "otlp-http":
		return OTLPProvider
	}
	return EmptyProvider
}

type TraceProvider interface {
	Stop() error
}

type traceProvider struct {
	tp *sdktrace.TracerProvider
}

// ExporterConfig carries the collector settings for network exporters.
type ExporterConfig struct {
	Endpoint string
	// Headers sent with every OTLP export.
	Headers map[string]string
	// Protocol is "http/protobuf" for OTLP over HTTP, gRPC otherwise.
	Protocol string
}

type TracerOptions struct {
	exporter           sdktrace.SpanExporter
	tracerProviderName string
	useEmpty           bool
}

type TracerOption func(*TracerOptions)

func WithProvider(provider Provider, cfg ExporterConfig, log logger.LoggerInterface) TracerOption {
	switch provider {
	case ZipkinProvider:
		return useZipkin(cfg, log)
	case OTLPProvider:
		return useOTLP(cfg, log)
	case ConsoleProvider:
		return useConsole(log)
	case EmptyProvider:
		return useEmpty()
	}

	log.Warn(context.Background(), "TracerProvider not found, using EmptyProvider", "provider", provider)

	return useEmpty()
}

func useEmpty() TracerOption {
	return func(option *TracerOptions) {
		option.useEmpty = true
		option.tracerProviderName = string(EmptyProvider)
	}
}

func useConsole(log logger.LoggerInterface) TracerOption {
	return func(option *TracerOptions) {
		exp, err := stdouttrace.New(stdouttrace.WithWriter(os.Stderr), stdouttrace.WithPrettyPrint())
		if err != nil {
			log.Error(context.Background(), "stdout trace exporter", "error", err)
			option.useEmpty = true
			return
		}

		option.exporter = exp
		option.tracerProviderName = string(ConsoleProvider)
	}
}

func useZipkin(cfg ExporterConfig, log logger.LoggerInterface) TracerOption {
	return func(option *TracerOptions) {
		exp, err := zipkin.New(cfg.Endpoint)
		if err != nil {
			log.Error(context.Background(), "zipkin exporter", "endpoint", cfg.Endpoint, "error", err)
			option.useEmpty = true
			return
		}

		option.exporter = exp
		option.tracerProviderName = string(ZipkinProvider)
	}
}

func useOTLP(cfg ExporterConfig, log logger.LoggerInterface) TracerOption {
	return func(option *TracerOptions) {
		var exp sdktrace.SpanExporter
		var err error

		if cfg.Protocol == "http/protobuf" {
			log.Info(context.Background(), "initializing OTLP HTTP trace exporter", "endpoint", cfg.Endpoint)
			exp, err = otlptracehttp.New(
				context.Background(),
				otlptracehttp.WithEndpointURL(cfg.Endpoint),
				otlptracehttp.WithHeaders(cfg.Headers),
			)
		} else {
			log.Info(context.Background(), "initializing OTLP gRPC trace exporter", "endpoint", cfg.Endpoint)
			exp, err = otlptracegrpc.New(
				context.Background(),
				otlptracegrpc.WithEndpointURL(cfg.Endpoint),
				otlptracegrpc.WithHeaders(cfg.Headers),
			)
		}

		if err != nil {
			log.Error(context.Background(), "OTLP trace exporter", "endpoint", cfg.Endpoint, "error", err)
			option.useEmpty = true
			return
		}

		option.exporter = exp
		option.tracerProviderName = string(OTLPProvider)
	}
}

func NewTraceProvider(serviceName string, log logger.LoggerInterface, options ...TracerOption) TraceProvider {
	if len(options) == 0 {
		options = []TracerOption{useEmpty()}
	}

	opts := &TracerOptions{}

	for _, opt := range options {
		opt(opts)
	}

	if opts.useEmpty {
		return NewEmptyTraceProvider()
	}

	rsrc, _ := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(serviceName),
			attribute.String("otel.provider", opts.tracerProviderName),
		))

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(opts.exporter),
		sdktrace.WithResource(rsrc),
	)

	// Set global trace provider
	otel.SetTracerProvider(tp)

	// Set trace propagator
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))

	return &traceProvider{
		tp,
	}
}

func (o *traceProvider) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5) //nolint:gomnd
	defer cancel()

	if err := o.tp.Shutdown(ctx); err != nil {
		return err
	}

	return nil
}
