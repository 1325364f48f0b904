package usecase

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var usecaseTracer = otel.Tracer("fantasy-hoops/internal/usecase")

// startUsecaseSpan only opens a child span; background callers without a
// traced parent (CLI runs, health checks) get the no-op span from ctx.
func startUsecaseSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if !trace.SpanFromContext(ctx).SpanContext().IsValid() {
		return ctx, trace.SpanFromContext(ctx)
	}
	return usecaseTracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// recordSpanError marks span failed when err is non-nil.
func recordSpanError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
