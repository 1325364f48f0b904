package httpapi

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var apiTracer = otel.Tracer("fantasy-hoops/internal/interfaces/httpapi")

// startHandlerSpan opens "httpapi.Handler.<name>" under the request span set
// by RequestTracing. Untraced requests (health checks, /metrics) get a no-op span.
func startHandlerSpan(r *http.Request, name string) (ctx context.Context, span trace.Span) {
	ctx = r.Context()
	if !trace.SpanFromContext(ctx).SpanContext().IsValid() {
		return ctx, trace.SpanFromContext(ctx)
	}
	return apiTracer.Start(ctx, handlerSpanName(name), trace.WithAttributes(
		attribute.String("http.route", r.Pattern),
	))
}

func handlerSpanName(name string) string {
	return "httpapi.Handler." + name
}
