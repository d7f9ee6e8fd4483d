// Package telemetry configures the open telemetry trace and meter providers.
package telemetry

import (
	"context"
	"errors"
	"io"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/mpapenbr/racelog-report/log"
	"github.com/mpapenbr/racelog-report/version"
)

// EndpointStdout writes spans and metrics to stdout instead of sending them
// to a collector.
const EndpointStdout = "stdout"

const serviceName = "rlr"

type (
	Option   func(*settings)
	settings struct {
		endpoint       string
		writer         io.Writer
		metricInterval time.Duration
		runtimeMetrics bool
	}
	Telemetry struct {
		tp *sdktrace.TracerProvider
		mp *sdkmetric.MeterProvider
	}
)

// WithEndpoint sets the otlp grpc endpoint (host:port) or EndpointStdout
func WithEndpoint(endpoint string) Option {
	return func(s *settings) {
		s.endpoint = endpoint
	}
}

// WithWriter is used together with EndpointStdout
func WithWriter(w io.Writer) Option {
	return func(s *settings) {
		s.writer = w
	}
}

// WithMetricInterval sets the export interval of the periodic metric reader
func WithMetricInterval(d time.Duration) Option {
	return func(s *settings) {
		s.metricInterval = d
	}
}

// WithRuntimeMetrics collects go runtime metrics (memory, goroutines, gc)
func WithRuntimeMetrics(enable bool) Option {
	return func(s *settings) {
		s.runtimeMetrics = enable
	}
}

// Setup registers global trace and meter providers.
func Setup(ctx context.Context, opts ...Option) (*Telemetry, error) {
	s := &settings{endpoint: "localhost:4317", metricInterval: time.Minute}
	for _, opt := range opts {
		opt(s)
	}
	if s.endpoint == "" {
		return nil, errors.New("no telemetry endpoint configured")
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", serviceName),
			attribute.String("service.version", version.Version),
		))
	if err != nil {
		return nil, err
	}

	spanExporter, err := newSpanExporter(ctx, s)
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(spanExporter),
		sdktrace.WithResource(res),
	)

	metricExporter, err := newMetricExporter(ctx, s)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, err
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter,
			sdkmetric.WithInterval(s.metricInterval))),
		sdkmetric.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))

	if s.runtimeMetrics {
		if err := runtime.Start(
			runtime.WithMeterProvider(mp),
			runtime.WithMinimumReadMemStatsInterval(time.Second),
		); err != nil {
			log.Warn("Could not start runtime metrics", log.ErrorField(err))
		}
	}
	log.Info("Telemetry enabled", log.String("endpoint", s.endpoint))
	return &Telemetry{tp: tp, mp: mp}, nil
}

func newSpanExporter(ctx context.Context, s *settings) (sdktrace.SpanExporter, error) {
	if s.endpoint == EndpointStdout {
		opts := []stdouttrace.Option{}
		if s.writer != nil {
			opts = append(opts, stdouttrace.WithWriter(s.writer))
		}
		return stdouttrace.New(opts...)
	}
	return otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(s.endpoint),
		otlptracegrpc.WithInsecure())
}

func newMetricExporter(ctx context.Context, s *settings) (sdkmetric.Exporter, error) {
	if s.endpoint == EndpointStdout {
		opts := []stdoutmetric.Option{}
		if s.writer != nil {
			opts = append(opts, stdoutmetric.WithWriter(s.writer))
		}
		return stdoutmetric.New(opts...)
	}
	return otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(s.endpoint),
		otlpmetricgrpc.WithInsecure())
}

// Shutdown flushes pending spans and metrics
func (t *Telemetry) Shutdown(ctx context.Context) error {
	return errors.Join(t.tp.Shutdown(ctx), t.mp.Shutdown(ctx))
}
