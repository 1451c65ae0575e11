package apm

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Tracer starts spans on a named OpenTelemetry tracer. Spans go to
// whichever provider is global when they start, so a tracer built before
// NewTraceProvider still exports.
type Tracer interface {
	StartSpanFromContext(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, Span)
}

type openTracer struct {
	name string
}

// NewTracer returns a Tracer for an instrumentation scope.
func NewTracer(name string) Tracer {
	return &openTracer{name: name}
}

func (t *openTracer) StartSpanFromContext(
	ctx context.Context, name string, opts ...trace.SpanStartOption,
) (context.Context, Span) {
	ctx, span := otel.Tracer(t.name).Start(ctx, name, opts...)
	return ctx, NewSpan(span)
}

// TraceID returns the active span's trace id, or "" outside a sampled
// span. It matches logger.TraceIDFn.
func TraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}
