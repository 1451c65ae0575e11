package apm

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span is the slice of trace.Span the router records on.
type Span interface {
	SetAttributes(values ...attribute.KeyValue)
	AddEvent(name string, attrs ...attribute.KeyValue)
	// Fail records err and marks the span as errored with status.
	Fail(err error, status string)
	End(options ...trace.SpanEndOption)
}

type traceSpan struct {
	span trace.Span
}

// NewSpan wraps an OpenTelemetry span.
func NewSpan(span trace.Span) Span {
	return &traceSpan{span: span}
}

func (t *traceSpan) SetAttributes(values ...attribute.KeyValue) {
	t.span.SetAttributes(values...)
}

func (t *traceSpan) AddEvent(name string, attrs ...attribute.KeyValue) {
	t.span.AddEvent(name, trace.WithAttributes(attrs...))
}

func (t *traceSpan) Fail(err error, status string) {
	if err == nil {
		return
	}
	if status == "" {
		status = err.Error()
	}
	t.span.RecordError(err)
	t.span.SetStatus(codes.Error, status)
}

func (t *traceSpan) End(options ...trace.SpanEndOption) {
	t.span.End(options...)
}
