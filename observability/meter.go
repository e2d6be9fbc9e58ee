package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/chaincounter/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	Endpoint       string
	Insecure       bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// InitMeter initializes the OpenTelemetry meter provider.
// The returned provider must be shut down on exit.
func InitMeter(ctx context.Context, config *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the instruments for wallet traffic and counter actions.
type Metrics struct {
	rpcTotal       metric.Int64Counter
	rpcDuration    metric.Float64Histogram
	rpcActive      metric.Int64UpDownCounter
	actionTotal    metric.Int64Counter
	actionDuration metric.Float64Histogram
	errorTotal     metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	rpcTotal, err := meter.Int64Counter("rpc.request.total",
		metric.WithDescription("Total number of provider JSON-RPC requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating rpc.request.total counter: %w", err)
	}

	rpcDuration, err := meter.Float64Histogram("rpc.request.duration",
		metric.WithDescription("Duration of provider JSON-RPC requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating rpc.request.duration histogram: %w", err)
	}

	rpcActive, err := meter.Int64UpDownCounter("rpc.request.active",
		metric.WithDescription("Provider requests currently in flight"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating rpc.request.active gauge: %w", err)
	}

	actionTotal, err := meter.Int64Counter("action.total",
		metric.WithDescription("Counter actions by kind and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating action.total counter: %w", err)
	}

	actionDuration, err := meter.Float64Histogram("action.duration",
		metric.WithDescription("Duration of counter actions including confirmation, in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating action.duration histogram: %w", err)
	}

	errorTotal, err := meter.Int64Counter("error.total",
		metric.WithDescription("Errors by code and component"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating error.total counter: %w", err)
	}

	return &Metrics{
		rpcTotal:       rpcTotal,
		rpcDuration:    rpcDuration,
		rpcActive:      rpcActive,
		actionTotal:    actionTotal,
		actionDuration: actionDuration,
		errorTotal:     errorTotal,
	}, nil
}

// RecordRPCStart increments the in-flight request gauge.
func (m *Metrics) RecordRPCStart(ctx context.Context) {
	if m == nil {
		return
	}
	m.rpcActive.Add(ctx, 1)
}

// RecordRPC decrements the in-flight gauge and records a finished request.
func (m *Metrics) RecordRPC(ctx context.Context, provider, method, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.rpcActive.Add(ctx, -1)
	m.rpcTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("method", method),
		attribute.String("status", status),
	))
	m.rpcDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("method", method),
	))
}

// RecordAction records a finished counter action.
func (m *Metrics) RecordAction(ctx context.Context, action, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.actionTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("action", action),
		attribute.String("status", status),
	))
	m.actionDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("action", action),
	))
}

// RecordError records an error by code and component.
func (m *Metrics) RecordError(ctx context.Context, code, component string) {
	if m == nil {
		return
	}
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("code", code),
		attribute.String("component", component),
	))
}
