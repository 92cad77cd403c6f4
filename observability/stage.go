package observability

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/kbukum/lazyseq/async"
	"github.com/kbukum/lazyseq/errors"
	"github.com/kbukum/lazyseq/logger"
	"github.com/kbukum/lazyseq/pull"
	"github.com/kbukum/lazyseq/seq"
)

// Observe wraps a sync iterator so every pull and close of it is recorded
// under stage. The wrapper forwards injected values, Close and Fail
// unchanged. With nil ins the iterator is returned unwrapped.
func Observe[T any](ctx context.Context, it seq.Iterator[T], stage string, ins *Instruments) *seq.Seq[T] {
	if ins == nil {
		return seq.FromIterator(it)
	}
	return seq.FromIterator[T](&observed[T]{ctx: ctx, it: it, stage: stage, ins: ins})
}

type observed[T any] struct {
	ctx   context.Context
	it    seq.Iterator[T]
	stage string
	ins   *Instruments
}

func (o *observed[T]) Next(in any) (pull.Result[T], error) {
	start := time.Now()
	r, err := o.it.Next(in)
	o.ins.RecordPull(o.ctx, o.stage, r.Done, err, time.Since(start))
	return r, err
}

func (o *observed[T]) Close() error {
	o.ins.RecordClose(o.ctx, o.stage)
	return seq.FromIterator(o.it).Close()
}

func (o *observed[T]) Fail(err error) (pull.Result[T], error) {
	return seq.FromIterator(o.it).Fail(err)
}

// ObserveAsync is Observe for async iterators. Pull duration runs from the
// pull request to its settlement.
func ObserveAsync[T any](it async.Iterator[T], stage string, ins *Instruments) *async.Seq[T] {
	if ins == nil {
		return async.FromIterator(it)
	}
	return async.FromIterator[T](&observedAsync[T]{it: it, stage: stage, ins: ins})
}

type observedAsync[T any] struct {
	it    async.Iterator[T]
	stage string
	ins   *Instruments
}

func (o *observedAsync[T]) Next(ctx context.Context, in any) *async.Future[pull.Result[T]] {
	start := time.Now()
	f := o.it.Next(ctx, in)
	return async.Go(func() (pull.Result[T], error) {
		r, err := f.Await(ctx)
		o.ins.RecordPull(ctx, o.stage, r.Done, err, time.Since(start))
		return r, err
	})
}

func (o *observedAsync[T]) Close(ctx context.Context) error {
	o.ins.RecordClose(ctx, o.stage)
	return async.FromIterator(o.it).Close(ctx)
}

func (o *observedAsync[T]) Fail(ctx context.Context, err error) *async.Future[pull.Result[T]] {
	return async.FromIterator(o.it).Fail(ctx, err)
}

// WithLogging wraps a sync iterator so every pull outcome of stage is
// debug-logged, and failures are logged as warnings.
func WithLogging[T any](it seq.Iterator[T], stage string, log *logger.Logger) *seq.Seq[T] {
	return seq.FromIterator[T](&logged[T]{it: it, log: log.WithComponent(stage)})
}

type logged[T any] struct {
	it    seq.Iterator[T]
	log   *logger.Logger
	pulls int
}

func (l *logged[T]) Next(in any) (pull.Result[T], error) {
	r, err := l.it.Next(in)
	l.pulls++
	logPull(l.log, l.pulls, r, err)
	return r, err
}

func (l *logged[T]) Close() error {
	l.log.Debug("closed", logger.Fields(logger.FieldPull, l.pulls))
	return seq.FromIterator(l.it).Close()
}

func (l *logged[T]) Fail(err error) (pull.Result[T], error) {
	return seq.FromIterator(l.it).Fail(err)
}

// WithLoggingAsync is WithLogging for async iterators.
func WithLoggingAsync[T any](it async.Iterator[T], stage string, log *logger.Logger) *async.Seq[T] {
	return async.FromIterator[T](&loggedAsync[T]{it: it, log: log.WithComponent(stage)})
}

type loggedAsync[T any] struct {
	it    async.Iterator[T]
	log   *logger.Logger
	pulls int
}

func (l *loggedAsync[T]) Next(ctx context.Context, in any) *async.Future[pull.Result[T]] {
	l.pulls++
	n, f := l.pulls, l.it.Next(ctx, in)
	return async.Go(func() (pull.Result[T], error) {
		r, err := f.Await(ctx)
		logPull(l.log.WithContext(ctx), n, r, err)
		return r, err
	})
}

func (l *loggedAsync[T]) Close(ctx context.Context) error {
	l.log.Debug("closed", logger.Fields(logger.FieldPull, l.pulls))
	return async.FromIterator(l.it).Close(ctx)
}

func (l *loggedAsync[T]) Fail(ctx context.Context, err error) *async.Future[pull.Result[T]] {
	return async.FromIterator(l.it).Fail(ctx, err)
}

func logPull[T any](log *logger.Logger, n int, r pull.Result[T], err error) {
	switch {
	case err != nil:
		log.Warn("pull failed", logger.Fields(logger.FieldPull, n, logger.FieldError, err.Error(), "kind", errorKind(err)))
	case !log.Enabled(zerolog.DebugLevel):
	case r.Done:
		log.Debug("exhausted", logger.Fields(logger.FieldPull, n, logger.FieldFinal, r.Final))
	default:
		log.Debug("value", logger.Fields(logger.FieldPull, n, logger.FieldValue, r.Value))
	}
}

// errorKind classifies err for metrics and spans: the engine error kind, a
// context error, or "callback" for anything raised by user code.
func errorKind(err error) string {
	if se, ok := errors.AsSeqError(err); ok {
		return se.Code.Kind()
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return "context"
	}
	return "callback"
}
