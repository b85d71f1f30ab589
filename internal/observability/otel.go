package observability

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// InitOpenTelemetry initializes distributed tracing against an OTLP
// collector (Alloy/Tempo/etc) for the spans this package starts; pkg/clock
// itself starts no spans.
func InitOpenTelemetry(ctx context.Context, serviceName, serviceVersion string) (func(context.Context) error, error) {
	endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if endpoint == "" {
		endpoint = "localhost:4317"
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
			semconv.DeploymentEnvironment("development"),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	conn, err := grpc.DialContext(ctx, endpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithBlock(),
		grpc.WithTimeout(5*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to OTLP endpoint %s: %w", endpoint, err)
	}

	traceExporter, err := otlptrace.New(ctx, otlptracegrpc.NewClient(
		otlptracegrpc.WithGRPCConn(conn),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp),
	)

	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return func(shutdownCtx context.Context) error {
		if err := tracerProvider.ForceFlush(shutdownCtx); err != nil {
			return fmt.Errorf("failed to flush spans: %w", err)
		}
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shutdown tracer provider: %w", err)
		}
		if err := conn.Close(); err != nil {
			return fmt.Errorf("failed to close gRPC connection: %w", err)
		}
		return nil
	}, nil
}

// InitOpenTelemetryOrNoop initializes OpenTelemetry, falling back to a
// no-op shutdown function if the collector is unreachable, so clockd can
// still boot without a tracing backend present.
func InitOpenTelemetryOrNoop(ctx context.Context, serviceName, serviceVersion string) func(context.Context) error {
	shutdown, err := InitOpenTelemetry(ctx, serviceName, serviceVersion)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: opentelemetry tracing init failed: %v\n", err)
		fmt.Fprintf(os.Stderr, "continuing with noop tracer (no traces will be exported)\n")
		return func(context.Context) error { return nil }
	}

	fmt.Printf("opentelemetry tracing initialized (exporting to %s)\n", os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"))
	return shutdown
}
