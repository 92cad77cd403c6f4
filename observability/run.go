package observability

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/lazyseq/logger"
)

// Run tracks one execution of a sequence chain.
type Run struct {
	ID          string
	Chain       string
	Mode        string
	StartTime   time.Time
	Instruments *Instruments
}

// NewRun creates a run with a fresh id. If ins is nil, stage metrics are
// skipped.
func NewRun(chain, mode string, ins *Instruments) *Run {
	return &Run{
		ID:          uuid.NewString(),
		Chain:       chain,
		Mode:        mode,
		StartTime:   time.Now(),
		Instruments: ins,
	}
}

type runKey struct{}

// WithRun stores r in ctx.
func WithRun(ctx context.Context, r *Run) context.Context {
	return context.WithValue(ctx, runKey{}, r)
}

// RunFromContext returns the run stored in ctx, or nil.
func RunFromContext(ctx context.Context) *Run {
	if r, ok := ctx.Value(runKey{}).(*Run); ok {
		return r
	}
	return nil
}

// Start opens the run span and returns a context carrying the run, its id
// for log lines, and the span.
func (r *Run) Start(ctx context.Context) (context.Context, trace.Span) {
	ctx, span := StartSpan(ctx, SpanRun)
	span.SetAttributes(
		attribute.String(AttrRunID, r.ID),
		attribute.String(AttrChain, r.Chain),
		attribute.String(AttrMode, r.Mode),
	)
	ctx = logger.ContextWithRunID(ctx, r.ID)
	return WithRun(ctx, r), span
}

// End closes the run span, recording the produced value count and err.
func (r *Run) End(span trace.Span, values int, err error) {
	status := "ok"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetAttributes(attribute.String(AttrErrorKind, errorKind(err)))
	}
	span.SetAttributes(
		attribute.String(AttrStatus, status),
		attribute.Int(AttrValues, values),
		attribute.Int64(AttrDuration, r.Duration().Milliseconds()),
	)
	span.End()
}

// Duration returns the elapsed time since the run started.
func (r *Run) Duration() time.Duration {
	return time.Since(r.StartTime)
}
