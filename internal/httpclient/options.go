// Package httpclient provides an instrumented HTTP client with OTEL tracing and metrics.
package httpclient

import (
	"net/http"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// ClientOptions holds configuration for the instrumented HTTP client.
type ClientOptions struct {
	meterProvider  metric.MeterProvider
	providerName   string
	roundTripper   http.RoundTripper
	requestTimeout *time.Duration
	headers        map[string]string
	baseURL        string
	tracer         trace.Tracer
}

// ClientOption is a function that configures ClientOptions.
type ClientOption func(*ClientOptions)

// NewClientOptions creates ClientOptions from variadic options.
func NewClientOptions(opts ...ClientOption) *ClientOptions {
	options := &ClientOptions{}
	for _, o := range opts {
		o(options)
	}
	return options
}

// WithMeterProvider sets the OTEL meter provider.
func WithMeterProvider(mp metric.MeterProvider) ClientOption {
	return func(o *ClientOptions) {
		o.meterProvider = mp
	}
}

// WithProviderName sets the provider name for metrics and traces.
func WithProviderName(name string) ClientOption {
	return func(o *ClientOptions) {
		o.providerName = name
	}
}

// WithRoundTripper sets a custom HTTP transport.
func WithRoundTripper(rt http.RoundTripper) ClientOption {
	return func(o *ClientOptions) {
		o.roundTripper = rt
	}
}

// WithRequestTimeout sets the request timeout.
func WithRequestTimeout(timeout time.Duration) ClientOption {
	return func(o *ClientOptions) {
		o.requestTimeout = &timeout
	}
}

// WithHeaders sets default headers for all requests.
func WithHeaders(headers map[string]string) ClientOption {
	return func(o *ClientOptions) {
		o.headers = headers
	}
}

// WithBaseURL sets the base URL for all requests.
func WithBaseURL(url string) ClientOption {
	return func(o *ClientOptions) {
		o.baseURL = url
	}
}

// WithTracer overrides the tracer used for request spans.
func WithTracer(tracer trace.Tracer) ClientOption {
	return func(o *ClientOptions) {
		o.tracer = tracer
	}
}

// ResponseErrorHandler maps a response onto an error, or nil when the
// response is acceptable.
type ResponseErrorHandler func(statusCode int, body []byte) error

// RequestOptions holds per-request configuration.
type RequestOptions struct {
	errorHandler ResponseErrorHandler
	labels       []Label
}

// RequestOption configures a single request.
type RequestOption func(*RequestOptions)

// WithResponseErrorHandler sets a custom error handler for responses.
func WithResponseErrorHandler(handler ResponseErrorHandler) RequestOption {
	return func(o *RequestOptions) {
		o.errorHandler = handler
	}
}

// Label is a key-value pair added to request metrics.
type Label struct {
	Key   string
	Value string
}

// WithLabels sets metric labels for the request.
func WithLabels(labels ...Label) RequestOption {
	return func(o *RequestOptions) {
		o.labels = labels
	}
}
