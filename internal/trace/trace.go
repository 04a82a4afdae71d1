package trace

import (
	"context"
	"io"
	"os"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/rxtech-lab/okx-backtest"

// Config controls the stdout span exporter.
type Config struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
	// Writer receives the exported spans. Defaults to stdout.
	Writer      io.Writer
	PrettyPrint bool
}

var (
	mu             sync.Mutex
	tracerProvider *sdktrace.TracerProvider
)

// Init installs a global tracer provider exporting spans to cfg.Writer.
// A disabled config leaves the no-op global provider in place.
func Init(cfg Config) error {
	if !cfg.Enabled {
		return nil
	}

	writer := cfg.Writer
	if writer == nil {
		writer = os.Stdout
	}

	options := []stdouttrace.Option{stdouttrace.WithWriter(writer)}
	if cfg.PrettyPrint {
		options = append(options, stdouttrace.WithPrettyPrint())
	}

	exporter, err := stdouttrace.New(options...)
	if err != nil {
		return err
	}

	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()

	tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tracerProvider)

	return nil
}

// Shutdown flushes and stops the provider installed by Init.
func Shutdown(ctx context.Context) error {
	mu.Lock()
	defer mu.Unlock()

	if tracerProvider == nil {
		return nil
	}

	err := tracerProvider.Shutdown(ctx)
	tracerProvider = nil

	return err
}

// Tracer returns the tracer of the global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}

func StartSpan(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return Tracer().Start(ctx, spanName, opts...)
}
