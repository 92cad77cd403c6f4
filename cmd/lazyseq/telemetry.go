package main

import (
	"context"
	"time"

	"github.com/kbukum/lazyseq/logger"
	"github.com/kbukum/lazyseq/observability"
	"github.com/kbukum/lazyseq/version"
)

const shutdownTimeout = 5 * time.Second

type telemetry struct {
	instruments *observability.Instruments
	shutdowns   []func(context.Context) error
}

// startTelemetry installs OTLP tracer and meter providers when an endpoint
// is configured. Without one, spans go to the no-op global provider and no
// metrics are recorded.
func startTelemetry(ctx context.Context, cfg *Config) (*telemetry, error) {
	t := &telemetry{}
	if !cfg.Telemetry.Enabled() {
		return t, nil
	}
	ver := version.Get().Short()

	tp, err := observability.InitTracer(ctx, &observability.TracerConfig{
		ServiceName:    cfg.Name,
		ServiceVersion: ver,
		Environment:    cfg.Environment,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return nil, err
	}
	t.shutdowns = append(t.shutdowns, tp.Shutdown)

	mp, err := observability.InitMeter(ctx, &observability.MeterConfig{
		ServiceName:    cfg.Name,
		ServiceVersion: ver,
		Environment:    cfg.Environment,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		Interval:       cfg.Telemetry.Interval,
	})
	if err != nil {
		t.shutdown()
		return nil, err
	}
	t.shutdowns = append(t.shutdowns, mp.Shutdown)

	t.instruments, err = observability.NewInstruments(mp.Meter(serviceName))
	if err != nil {
		t.shutdown()
		return nil, err
	}
	return t, nil
}

// shutdown flushes and stops the providers in reverse start order.
func (t *telemetry) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for i := len(t.shutdowns) - 1; i >= 0; i-- {
		if err := t.shutdowns[i](ctx); err != nil {
			logger.Get("telemetry").Warn("telemetry shutdown failed", logger.Fields(logger.FieldError, err.Error()))
		}
	}
	t.shutdowns = nil
}
