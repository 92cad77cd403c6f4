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

	"github.com/kbukum/lazyseq/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns defaults for a local collector.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "dev",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter installs an OTLP-exporting meter provider as the global one.
// The caller shuts it down on exit.
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

	logger.Get("observability").Info("meter initialized", logger.Fields(
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

// Instruments holds the metric instruments recorded by observed stages.
// Every measurement carries the stage name as the "stage" attribute.
type Instruments struct {
	pulls        metric.Int64Counter
	values       metric.Int64Counter
	exhausted    metric.Int64Counter
	closes       metric.Int64Counter
	errors       metric.Int64Counter
	pullDuration metric.Float64Histogram
}

// NewInstruments creates the instruments on meter.
func NewInstruments(meter metric.Meter) (*Instruments, error) {
	pulls, err := meter.Int64Counter("lazyseq.pulls",
		metric.WithDescription("Pulls issued against a stage"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating lazyseq.pulls counter: %w", err)
	}

	values, err := meter.Int64Counter("lazyseq.values",
		metric.WithDescription("Elements produced by a stage"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating lazyseq.values counter: %w", err)
	}

	exhausted, err := meter.Int64Counter("lazyseq.exhausted",
		metric.WithDescription("Pulls that reported exhaustion"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating lazyseq.exhausted counter: %w", err)
	}

	closes, err := meter.Int64Counter("lazyseq.closes",
		metric.WithDescription("Early close requests received by a stage"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating lazyseq.closes counter: %w", err)
	}

	errs, err := meter.Int64Counter("lazyseq.errors",
		metric.WithDescription("Pulls that failed, by error kind"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating lazyseq.errors counter: %w", err)
	}

	pullDuration, err := meter.Float64Histogram("lazyseq.pull.duration",
		metric.WithDescription("Time to settle one pull"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating lazyseq.pull.duration histogram: %w", err)
	}

	return &Instruments{
		pulls:        pulls,
		values:       values,
		exhausted:    exhausted,
		closes:       closes,
		errors:       errs,
		pullDuration: pullDuration,
	}, nil
}

// RecordPull records one settled pull of stage.
func (m *Instruments) RecordPull(ctx context.Context, stage string, done bool, err error, d time.Duration) {
	attrs := metric.WithAttributes(attribute.String(AttrStage, stage))
	m.pulls.Add(ctx, 1, attrs)
	m.pullDuration.Record(ctx, d.Seconds(), attrs)
	switch {
	case err != nil:
		m.errors.Add(ctx, 1, metric.WithAttributes(
			attribute.String(AttrStage, stage),
			attribute.String(AttrErrorKind, errorKind(err)),
		))
	case done:
		m.exhausted.Add(ctx, 1, attrs)
	default:
		m.values.Add(ctx, 1, attrs)
	}
}

// RecordClose records an early close of stage.
func (m *Instruments) RecordClose(ctx context.Context, stage string) {
	m.closes.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrStage, stage)))
}
