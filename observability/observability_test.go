package observability

import (
	"bytes"
	"context"
	stderrors "errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/lazyseq/async"
	"github.com/kbukum/lazyseq/errors"
	"github.com/kbukum/lazyseq/logger"
	"github.com/kbukum/lazyseq/pull"
	"github.com/kbukum/lazyseq/seq"
)

func newTestInstruments(t *testing.T) (*Instruments, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	ins, err := NewInstruments(mp.Meter("test"))
	require.NoError(t, err)
	return ins, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return rm
}

// counter sums the data points of an int64 counter recorded for stage.
func counter(rm metricdata.ResourceMetrics, name, stage string) int64 {
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if m.Name != name || !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				if v, _ := dp.Attributes.Value(attribute.Key(AttrStage)); v.AsString() == stage {
					total += dp.Value
				}
			}
		}
	}
	return total
}

func histogramCount(rm metricdata.ResourceMetrics, name string) uint64 {
	var total uint64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if h, ok := m.Data.(metricdata.Histogram[float64]); ok && m.Name == name {
				for _, dp := range h.DataPoints {
					total += dp.Count
				}
			}
		}
	}
	return total
}

func TestObserve(t *testing.T) {
	ins, reader := newTestInstruments(t)
	ctx := context.Background()

	got, err := Observe[int](ctx, seq.Of(1, 2, 3, 4), "source", ins).Take(2).ToSlice()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, got)

	rm := collect(t, reader)
	assert.Equal(t, int64(2), counter(rm, "lazyseq.pulls", "source"))
	assert.Equal(t, int64(2), counter(rm, "lazyseq.values", "source"))
	assert.Equal(t, int64(0), counter(rm, "lazyseq.exhausted", "source"))
	assert.Equal(t, int64(1), counter(rm, "lazyseq.closes", "source"))
	assert.Equal(t, uint64(2), histogramCount(rm, "lazyseq.pull.duration"))
}

func TestObserve_ExhaustionAndErrors(t *testing.T) {
	ins, reader := newTestInstruments(t)
	ctx := context.Background()

	_, err := Observe[int](ctx, seq.Of(1), "short", ins).ToSlice()
	require.NoError(t, err)

	_, err = Observe[int](ctx, seq.Of(1).Drop(-1), "bad", ins).ToSlice()
	require.True(t, errors.IsRange(err))

	rm := collect(t, reader)
	assert.Equal(t, int64(1), counter(rm, "lazyseq.exhausted", "short"))
	assert.Equal(t, int64(1), counter(rm, "lazyseq.errors", "bad"))
}

func TestObserve_NilInstruments(t *testing.T) {
	src := seq.Of(1)
	assert.Same(t, src, Observe[int](context.Background(), src, "x", nil))
}

func TestObserve_ForwardsInjectedValues(t *testing.T) {
	ins, _ := newTestInstruments(t)
	var injected []any
	src := seq.FromFunc(func(in any) (pull.Result[int], error) {
		injected = append(injected, in)
		return pull.Yield(len(injected)), nil
	})
	s := Observe[int](context.Background(), src, "src", ins)
	_, err := s.Next("a")
	require.NoError(t, err)
	_, err = s.Next("b")
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b"}, injected)
}

func TestObserveAsync(t *testing.T) {
	ins, reader := newTestInstruments(t)
	ctx := context.Background()

	found, err := ObserveAsync[int](async.Of(1, 2, 3), "async-src", ins).
		Find(ctx, func(_ context.Context, n int) (bool, error) { return n == 2, nil }).
		Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, found.MustGet())

	rm := collect(t, reader)
	assert.Equal(t, int64(2), counter(rm, "lazyseq.values", "async-src"))
	assert.Equal(t, int64(1), counter(rm, "lazyseq.closes", "async-src"))
}

func TestWithLogging(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&logger.Config{Level: "debug", Format: "json"}, "test", &buf)

	boom := stderrors.New("boom")
	mapped := seq.Map(seq.Of(1, 2), func(n int) (int, error) {
		if n == 2 {
			return 0, boom
		}
		return n, nil
	})
	_, err := WithLogging[int](mapped, "mapper", log).ToSlice()
	require.ErrorIs(t, err, boom)

	out := buf.String()
	assert.Contains(t, out, `"component":"mapper"`)
	assert.Contains(t, out, `"message":"value"`)
	assert.Contains(t, out, `"message":"pull failed"`)
	assert.Contains(t, out, `"kind":"callback"`)
}

func TestWithLogging_InfoLevelSkipsValues(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&logger.Config{Level: "info", Format: "json"}, "test", &buf)

	_, err := WithLogging[int](seq.Of(1, 2), "quiet", log).ToSlice()
	require.NoError(t, err)
	assert.Empty(t, buf.String())
}

func TestWithLoggingAsync(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&logger.Config{Level: "debug", Format: "json"}, "test", &buf)
	ctx := logger.ContextWithRunID(context.Background(), "run-7")

	got, err := WithLoggingAsync[int](async.Of(5), "src", log).ToSlice(ctx).Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{5}, got)
	assert.Contains(t, buf.String(), `"run_id":"run-7"`)
	assert.Contains(t, buf.String(), `"message":"exhausted"`)
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, "range", errorKind(errors.InvalidLimit("take", -1)))
	assert.Equal(t, "type", errorKind(errors.EmptyReduce()))
	assert.Equal(t, "context", errorKind(context.Canceled))
	assert.Equal(t, "callback", errorKind(stderrors.New("x")))
}

func TestRun(t *testing.T) {
	exp := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	run := NewRun("drop|take", "sync", nil)
	require.NotEmpty(t, run.ID)

	ctx, span := run.Start(context.Background())
	assert.Same(t, run, RunFromContext(ctx))
	id, ok := logger.RunIDFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, run.ID, id)

	run.End(span, 3, errors.EmptyReduce())

	spans := exp.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, SpanRun, spans[0].Name)
	assert.Equal(t, codes.Unset, spans[0].Status.Code)

	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range spans[0].Attributes {
		attrs[kv.Key] = kv.Value
	}
	assert.Equal(t, run.ID, attrs[AttrRunID].AsString())
	assert.Equal(t, "error", attrs[AttrStatus].AsString())
	assert.Equal(t, "type", attrs[AttrErrorKind].AsString())
	assert.Equal(t, int64(3), attrs[AttrValues].AsInt64())
}

func TestRunFromContext_NotSet(t *testing.T) {
	assert.Nil(t, RunFromContext(context.Background()))
}

func TestSetSpanError(t *testing.T) {
	exp := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	SetSpanError(ctx, stderrors.New("bad"))
	span.End()

	spans := exp.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Len(t, spans[0].Events, 1)

	SetSpanError(context.Background(), stderrors.New("no span"))
}

func TestDefaultConfigs(t *testing.T) {
	tc := DefaultTracerConfig("svc")
	assert.Equal(t, "svc", tc.ServiceName)
	assert.Equal(t, 1.0, tc.SampleRate)
	assert.True(t, tc.Insecure)

	mc := DefaultMeterConfig("svc")
	assert.Equal(t, 15*time.Second, mc.Interval)
}

func TestSampler(t *testing.T) {
	assert.True(t, strings.HasPrefix(sampler(1).Description(), "AlwaysOn"))
	assert.True(t, strings.HasPrefix(sampler(0).Description(), "AlwaysOff"))
	assert.True(t, strings.HasPrefix(sampler(0.5).Description(), "TraceIDRatioBased"))
}

func TestNewResource(t *testing.T) {
	res, err := newResource("svc", "1.2.3", "staging")
	require.NoError(t, err)
	v, ok := res.Set().Value("service.name")
	require.True(t, ok)
	assert.Equal(t, "svc", v.AsString())
}

func TestInitExporters(t *testing.T) {
	ctx := context.Background()
	shutdownCtx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
	defer cancel()

	prevT, prevM := otel.GetTracerProvider(), otel.GetMeterProvider()
	t.Cleanup(func() {
		otel.SetTracerProvider(prevT)
		otel.SetMeterProvider(prevM)
	})

	tcfg := DefaultTracerConfig("svc")
	tp, err := InitTracer(ctx, &tcfg)
	require.NoError(t, err)
	_ = tp.Shutdown(shutdownCtx)

	mcfg := DefaultMeterConfig("svc")
	mp, err := InitMeter(ctx, &mcfg)
	require.NoError(t, err)
	_ = mp.Shutdown(shutdownCtx)
}
