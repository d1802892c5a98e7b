package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var (
	ServerOptions   = trace.WithSpanKind(trace.SpanKindServer)
	ClientOptions   = trace.WithSpanKind(trace.SpanKindClient)
	InternalOptions = trace.WithSpanKind(trace.SpanKindInternal)
)

const InstrumentationName = "github.com/GlintPay/agentstack"

func GetTracer(ctx context.Context) trace.Tracer {
	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		return newTracer(span.TracerProvider())
	}
	return newTracer(otel.GetTracerProvider())
}

func newTracer(tp trace.TracerProvider) trace.Tracer {
	return tp.Tracer(InstrumentationName, trace.WithInstrumentationVersion("semver:1.0"))
}
