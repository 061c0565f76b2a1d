package httpapi

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var apiTracer = otel.Tracer("footboard/internal/interfaces/httpapi")

// inertSpan is safe to End without touching any live span.
var inertSpan = trace.SpanFromContext(context.Background())

// startSpan opens a child span for handler-level work. Helpers below the
// handler layer, and requests on filtered routes like /healthz, get an inert
// span so they never start roots of their own.
func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	parent := trace.SpanFromContext(ctx)
	if !parent.SpanContext().IsValid() || !strings.HasPrefix(name, "httpapi.Handler.") {
		return ctx, inertSpan
	}
	return apiTracer.Start(ctx, name)
}
