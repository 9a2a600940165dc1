package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"chocan/internal/core"
)

const instrumentationName = "chocan"

// OTelTracer opens an OpenTelemetry span per operation.
type OTelTracer struct {
	tracer trace.Tracer
}

var _ core.Tracer = (*OTelTracer)(nil)

// NewOTelTracer uses tp, or the global provider when tp is nil.
func NewOTelTracer(tp trace.TracerProvider) *OTelTracer {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &OTelTracer{tracer: tp.Tracer(instrumentationName)}
}

func (t *OTelTracer) Start(ctx context.Context, op string) (context.Context, core.TraceSpan) {
	ctx, span := t.tracer.Start(ctx, op, trace.WithAttributes(attribute.String("chocan.operation", op)))
	return ctx, otelSpan{span: span}
}

type otelSpan struct {
	span trace.Span
}

func (s otelSpan) End(err error) {
	if err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
	} else {
		s.span.SetStatus(codes.Ok, "")
	}
	s.span.End()
}
