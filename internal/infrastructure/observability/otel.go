// Package observability wires OpenTelemetry traces, metrics and logs.
package observability

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// DefaultServiceName is used when Config.ServiceName is empty.
const DefaultServiceName = "todoreminder"

const exportTimeout = 10 * time.Second

// Config holds observability configuration.
type Config struct {
	Enabled        bool   // Export over OTLP/gRPC; otherwise no-op providers and JSON logs
	ServiceName    string
	ServiceVersion string
	LogLevel       slog.Level

	// LogOutput receives JSON logs when Enabled is false. Defaults to stdout.
	LogOutput io.Writer
}

// Telemetry owns the providers created by Init.
type Telemetry struct {
	Logger *slog.Logger

	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	loggerProvider *log.LoggerProvider
}

// Init builds trace, metric and log providers, installs them as the OTel
// globals and returns a logger bridged to the log provider.
//
// With cfg.Enabled the exporters read the standard OTEL_EXPORTER_OTLP_*
// variables (endpoint, headers, insecure). Extra resource attributes come from
// OTEL_RESOURCE_ATTRIBUTES.
func Init(ctx context.Context, cfg Config) (*Telemetry, error) {
	if cfg.ServiceName == "" {
		cfg.ServiceName = DefaultServiceName
	}

	if !cfg.Enabled {
		out := cfg.LogOutput
		if out == nil {
			out = os.Stdout
		}
		tp := sdktrace.NewTracerProvider()
		mp := sdkmetric.NewMeterProvider()
		otel.SetTracerProvider(tp)
		otel.SetMeterProvider(mp)
		return &Telemetry{
			Logger:         slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: cfg.LogLevel})),
			tracerProvider: tp,
			meterProvider:  mp,
			loggerProvider: log.NewLoggerProvider(),
		}, nil
	}

	res, err := newResource(ctx, cfg.ServiceName, cfg.ServiceVersion)
	if err != nil {
		return nil, err
	}

	t := &Telemetry{}
	if t.tracerProvider, err = newTracerProvider(res); err != nil {
		return nil, err
	}
	if t.meterProvider, err = newMeterProvider(res); err != nil {
		return nil, errors.Join(err, t.tracerProvider.Shutdown(ctx))
	}
	if t.loggerProvider, err = newLoggerProvider(res); err != nil {
		return nil, errors.Join(err, t.tracerProvider.Shutdown(ctx), t.meterProvider.Shutdown(ctx))
	}

	otel.SetTracerProvider(t.tracerProvider)
	otel.SetMeterProvider(t.meterProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	t.Logger = otelslog.NewLogger(cfg.ServiceName, otelslog.WithLoggerProvider(t.loggerProvider))
	return t, nil
}

// Shutdown flushes and stops every provider. All providers are shut down even
// if one fails.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	return errors.Join(
		t.tracerProvider.Shutdown(ctx),
		t.meterProvider.Shutdown(ctx),
		t.loggerProvider.Shutdown(ctx),
	)
}

// newResource merges service metadata with the SDK defaults.
// Partial resources and schema URL conflicts are non-fatal.
func newResource(ctx context.Context, serviceName, serviceVersion string) (*resource.Resource, error) {
	serviceResource, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithSchemaURL(semconv.SchemaURL),
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create service resource: %w", err)
	}

	res, err := resource.Merge(resource.Default(), serviceResource)
	if err != nil {
		if errors.Is(err, resource.ErrPartialResource) || errors.Is(err, resource.ErrSchemaURLConflict) {
			return res, nil
		}
		return nil, fmt.Errorf("failed to merge resources: %w", err)
	}

	return res, nil
}

// Exporters are created with context.Background so a cancelled startup
// context cannot wedge their background connections during shutdown.

func newTracerProvider(res *resource.Resource) (*sdktrace.TracerProvider, error) {
	exporter, err := otlptracegrpc.New(context.Background(), otlptracegrpc.WithTimeout(exportTimeout))
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)),
	), nil
}

func newMeterProvider(res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	exporter, err := otlpmetricgrpc.New(context.Background(), otlpmetricgrpc.WithTimeout(exportTimeout))
	if err != nil {
		return nil, fmt.Errorf("failed to create metric exporter: %w", err)
	}

	return sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(15*time.Second))),
	), nil
}

func newLoggerProvider(res *resource.Resource) (*log.LoggerProvider, error) {
	exporter, err := otlploggrpc.New(context.Background(), otlploggrpc.WithTimeout(exportTimeout))
	if err != nil {
		return nil, fmt.Errorf("failed to create log exporter: %w", err)
	}

	return log.NewLoggerProvider(
		log.WithProcessor(log.NewBatchProcessor(exporter, log.WithExportTimeout(5*time.Second))),
		log.WithResource(res),
	), nil
}
