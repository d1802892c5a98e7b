package otel

import (
	"context"
	"fmt"
	"time"

	"github.com/GlintPay/agentstack/config"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"
)

var emptyShutdown = func() {}

// ShutdownTimeout bounds the final span flush.
var ShutdownTimeout = 5 * time.Second

type shutdowner interface {
	Shutdown(ctx context.Context) error
}

// Setup installs a global tracer provider exporting over OTLP/HTTP. The returned
// function flushes and stops it.
func Setup(ctx context.Context, serviceName string, cfg config.Tracing) (func(), error) {
	if !cfg.Enabled {
		return emptyShutdown, nil
	}

	if cfg.Endpoint == "" {
		return emptyShutdown, fmt.Errorf("missing tracing endpoint")
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
		),
	)
	if err != nil {
		return emptyShutdown, fmt.Errorf("failed to create resource: %w", err)
	}

	traceExporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithInsecure(),
		otlptracehttp.WithEndpoint(cfg.Endpoint),
	)
	if err != nil {
		return emptyShutdown, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	fraction := cfg.SamplerFraction
	if fraction <= 0 {
		fraction = 1
	}

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(fraction)),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(sdktrace.NewBatchSpanProcessor(traceExporter)),
	)
	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	log.Info().Msgf("OpenTelemetry export is enabled, to: %s", cfg.Endpoint)

	return shutdownFunc(tracerProvider, ShutdownTimeout), nil
}

// shutdownFunc runs on its own context: the setup context is usually cancelled by the
// time the process exits.
func shutdownFunc(tp shutdowner, timeout time.Duration) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if e := tp.Shutdown(ctx); e != nil {
			log.Error().Err(e).Msg("Tracer shutdown failed")
		}
	}
}
