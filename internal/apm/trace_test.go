package apm

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func TestParseProvider(t *testing.T) {
	tests := []struct {
		in   string
		want Provider
	}{
		{"console", ConsoleProvider},
		{"STDOUT", ConsoleProvider},
		{"zipkin", ZipkinProvider},
		{"otlp", OTLPProvider},
		{"otlp-http", OTLPProvider},
		{"none", EmptyProvider},
		{"", EmptyProvider},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseProvider(tt.in); got != tt.want {
				t.Errorf("ParseProvider(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestTraceID(t *testing.T) {
	if got := TraceID(context.Background()); got != "" {
		t.Errorf("TraceID(empty ctx) = %q, want empty", got)
	}

	tid, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	sid, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: tid, SpanID: sid, TraceFlags: trace.FlagsSampled})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	if got := TraceID(ctx); got != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Errorf("TraceID() = %q", got)
	}
}

func TestNewTraceProvider_Empty(t *testing.T) {
	tp := NewTraceProvider("router-test", nil, useEmpty())
	if err := tp.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}

func TestTracer_SpanFail(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	_, span := NewTracer("apm-test").StartSpanFromContext(context.Background(), "routing.split")
	span.SetAttributes(attribute.Int("routing.venues", 3))
	span.AddEvent("cached snapshot served")
	span.Fail(nil, "ignored")
	span.Fail(errors.New("boom"), "NO_ROUTE_FOUND")
	span.End()

	ended := rec.Ended()
	if len(ended) != 1 {
		t.Fatalf("ended spans = %d, want 1", len(ended))
	}
	s := ended[0]
	if s.Name() != "routing.split" {
		t.Errorf("Name() = %q", s.Name())
	}
	if s.Status().Code != codes.Error || s.Status().Description != "NO_ROUTE_FOUND" {
		t.Errorf("Status() = %+v", s.Status())
	}
	// AddEvent plus the recorded error.
	if len(s.Events()) != 2 {
		t.Errorf("len(Events()) = %d, want 2", len(s.Events()))
	}
}
