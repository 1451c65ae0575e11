package httpclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestClient_GetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/venues":
			if r.URL.Query().Get("pair") != "SOL-USDC" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			if r.Header.Get("X-Api-Key") != "k" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Write([]byte(`{"count":3}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`not here`))
		}
	}))
	defer srv.Close()

	c, err := NewInstrumentedClient(
		WithProviderName("test"),
		WithBaseURL(srv.URL+"/v1/"),
		WithHeaders(map[string]string{"X-Api-Key": "k"}),
	)
	if err != nil {
		t.Fatalf("NewInstrumentedClient() error = %v", err)
	}

	var got struct {
		Count int `json:"count"`
	}
	if err := c.GetJSON(context.Background(), "/venues", url.Values{"pair": {"SOL-USDC"}}, &got); err != nil {
		t.Fatalf("GetJSON() error = %v", err)
	}
	if got.Count != 3 {
		t.Errorf("Count = %d, want 3", got.Count)
	}

	if err := c.GetJSON(context.Background(), "missing", nil, &got); err == nil {
		t.Error("GetJSON(missing) = nil, want HTTP 404 error")
	}
}

func TestClient_ErrorHandler(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer srv.Close()

	c, err := NewInstrumentedClient(WithBaseURL(srv.URL))
	if err != nil {
		t.Fatal(err)
	}

	sentinel := errors.New("teapot")
	err = c.GetJSON(context.Background(), "", nil, nil, WithResponseErrorHandler(func(code int, _ []byte) error {
		if code == http.StatusTeapot {
			return sentinel
		}
		return nil
	}), WithLabels(Label{Key: "endpoint", Value: "root"}))
	if !errors.Is(err, sentinel) {
		t.Errorf("GetJSON() error = %v, want %v", err, sentinel)
	}
}

func TestClient_Resolve(t *testing.T) {
	tests := []struct {
		base, path, want string
	}{
		{"", "http://x/y", "http://x/y"},
		{"http://a/", "/b", "http://a/b"},
		{"http://a", "b", "http://a/b"},
		{"http://a/snap", "", "http://a/snap"},
		{"http://a", "https://other/z", "https://other/z"},
	}
	for _, tt := range tests {
		c := &Client{baseURL: tt.base}
		if got := c.resolve(tt.path); got != tt.want {
			t.Errorf("resolve(%q, %q) = %q, want %q", tt.base, tt.path, got, tt.want)
		}
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestClient_Instrumentation(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))

	status := http.StatusOK
	rt := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: status,
			Body:       io.NopCloser(strings.NewReader(`{"slot":7}`)),
			Header:     http.Header{"Content-Type": []string{"application/json"}},
			Request:    r,
		}, nil
	})

	c, err := NewInstrumentedClient(
		WithProviderName("pool-indexer"),
		WithBaseURL("http://indexer.local"),
		WithRoundTripper(rt),
		WithMeterProvider(mp),
		WithTracer(tp.Tracer("httpclient-test")),
	)
	if err != nil {
		t.Fatalf("NewInstrumentedClient() error = %v", err)
	}

	ctx := context.Background()
	var out struct{ Slot int }
	if err := c.GetJSON(ctx, "/v1/snapshot", nil, &out, WithLabels(Label{Key: "endpoint", Value: "snapshot"})); err != nil {
		t.Fatalf("GetJSON() error = %v", err)
	}
	status = http.StatusServiceUnavailable
	if err := c.GetJSON(ctx, "/v1/snapshot", nil, &out); err == nil {
		t.Fatal("GetJSON() on 503 = nil error")
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != metricRequestCounter {
				continue
			}
			for _, dp := range m.Data.(metricdata.Sum[int64]).DataPoints {
				total += dp.Value
			}
		}
	}
	if total != 2 {
		t.Errorf("%s = %d, want 2", metricRequestCounter, total)
	}

	var requestSpans int
	for _, s := range spans.Ended() {
		if s.Name() == "http.request" {
			requestSpans++
		}
	}
	if requestSpans != 2 {
		t.Errorf("http.request spans = %d, want 2", requestSpans)
	}
}
