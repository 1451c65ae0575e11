package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptrace"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/httptrace/otelhttptrace"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultDialKeepAlive   = 10 * time.Second
	defaultRequestTimeout  = 10 * time.Second
	defaultMaxConnsPerHost = 5
	defaultIdleConnTimeout = 2 * time.Minute

	metricRequestCounter = "http_client_requests_total"
)

// Client issues instrumented JSON GET requests against one base URL.
type Client struct {
	client         *http.Client
	requestCounter metric.Int64Counter
	providerName   string
	tracer         trace.Tracer
	baseURL        string
	headers        map[string]string
}

// NewInstrumentedClient creates a new instrumented HTTP client.
func NewInstrumentedClient(opts ...ClientOption) (*Client, error) {
	options := NewClientOptions(opts...)

	transport := options.roundTripper
	if transport == nil {
		transport = &http.Transport{
			DialContext:     (&net.Dialer{KeepAlive: defaultDialKeepAlive}).DialContext,
			MaxConnsPerHost: defaultMaxConnsPerHost,
			IdleConnTimeout: defaultIdleConnTimeout,
		}
	}
	timeout := defaultRequestTimeout
	if options.requestTimeout != nil {
		timeout = *options.requestTimeout
	}

	httpClient := &http.Client{
		Timeout: timeout,
		Transport: otelhttp.NewTransport(
			transport,
			otelhttp.WithClientTrace(func(ctx context.Context) *httptrace.ClientTrace {
				return otelhttptrace.NewClientTrace(ctx)
			}),
		),
	}

	providerName := options.providerName
	if providerName == "" {
		providerName = "default"
	}

	meterProvider := options.meterProvider
	if meterProvider == nil {
		meterProvider = otel.GetMeterProvider()
	}
	meter := meterProvider.Meter(
		"instrumented_http_client",
		metric.WithInstrumentationAttributes(attribute.String("provider", providerName)),
	)
	requestCounter, err := meter.Int64Counter(
		metricRequestCounter,
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	tracer := options.tracer
	if tracer == nil {
		tracer = otel.GetTracerProvider().Tracer("instrumented_http_client")
	}

	return &Client{
		client:         httpClient,
		requestCounter: requestCounter,
		providerName:   providerName,
		tracer:         tracer,
		baseURL:        options.baseURL,
		headers:        options.headers,
	}, nil
}

// GetJSON fetches path (relative to the base URL) and decodes the body into
// result. Status codes >= 400 are errors unless an error handler accepts
// them.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, result any, opts ...RequestOption) error {
	ro := &RequestOptions{}
	for _, o := range opts {
		o(ro)
	}

	fullURL := c.resolve(path)
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	ctx, span := c.tracer.Start(ctx, "http.request",
		trace.WithAttributes(
			attribute.String("http.method", http.MethodGet),
			attribute.String("http.url", fullURL),
			attribute.String("provider", c.providerName),
		),
	)
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create request")
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.fail(ctx, span, ro, err)
		return err
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		c.fail(ctx, span, ro, err)
		return fmt.Errorf("failed to read response body: %w", err)
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if ro.errorHandler != nil {
		err = ro.errorHandler(resp.StatusCode, body)
	} else if resp.StatusCode >= 400 {
		err = fmt.Errorf("HTTP %d: %s", resp.StatusCode, truncate(body, 256))
	}
	if err != nil {
		c.fail(ctx, span, ro, err)
		return err
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			c.fail(ctx, span, ro, err)
			return fmt.Errorf("decode response: %w", err)
		}
	}
	c.record(ctx, ro, true)
	return nil
}

func (c *Client) resolve(path string) string {
	if c.baseURL == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if path == "" {
		return c.baseURL
	}
	return strings.TrimSuffix(c.baseURL, "/") + "/" + strings.TrimPrefix(path, "/")
}

func (c *Client) fail(ctx context.Context, span trace.Span, ro *RequestOptions, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	c.record(ctx, ro, false)
}

func (c *Client) record(ctx context.Context, ro *RequestOptions, success bool) {
	attrs := []attribute.KeyValue{
		attribute.String("provider", c.providerName),
		attribute.Bool("success", success),
	}
	for _, l := range ro.labels {
		attrs = append(attrs, attribute.String(l.Key, l.Value))
	}
	c.requestCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
