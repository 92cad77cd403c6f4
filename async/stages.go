package async

import (
	"context"
	"iter"
	"reflect"

	"github.com/go-softwarelab/common/pkg/to"
	"github.com/go-softwarelab/common/pkg/types"

	"github.com/kbukum/lazyseq/errors"
	"github.com/kbukum/lazyseq/pull"
	"github.com/kbukum/lazyseq/seq"
)

// Map transforms each element using fn. The final value passes through untouched.
func Map[T, U any](s Iterator[T], fn func(context.Context, T) (U, error)) *Seq[U] {
	return &Seq[U]{it: &mapStage[T, U]{stage: stage[T]{up: s}, fn: fn}}
}

// FlatMap expands each element through fn and flattens one level. An async
// Iterator[U] result is consumed first; sync iterators, iter.Seq[U], receive
// channels and []U are accepted as well. A result that is a U is produced as
// a single element, except that a slice whose elements all satisfy an
// interface U is flattened. A nil fn fails the first pull with a type error.
func FlatMap[T, U any](s Iterator[T], fn func(context.Context, T) (any, error)) *Seq[U] {
	return &Seq[U]{it: &flatMapStage[T, U]{stage: stage[T]{up: s}, fn: fn}}
}

// Filter keeps only elements for which fn reports true.
func (s *Seq[T]) Filter(fn func(context.Context, T) (bool, error)) *Seq[T] {
	return &Seq[T]{it: &filterStage[T]{stage: stage[T]{up: s.it}, fn: fn}}
}

// Take produces at most limit elements, then closes upstream.
func (s *Seq[T]) Take(limit float64) *Seq[T] {
	n, err := pull.Limit("take", limit)
	return &Seq[T]{it: &takeStage[T]{stage: stage[T]{up: s.it}, remaining: n, err: err}}
}

// Drop discards the first limit elements, then passes the rest through.
func (s *Seq[T]) Drop(limit float64) *Seq[T] {
	n, err := pull.Limit("drop", limit)
	return &Seq[T]{it: &dropStage[T]{stage: stage[T]{up: s.it}, remaining: n, err: err}}
}

// IndexedPairs pairs each element of s with its position in this stage's
// output, starting at 0.
func IndexedPairs[T any](s Iterator[T]) *Seq[types.Pair[int, T]] {
	return &Seq[types.Pair[int, T]]{it: &indexedStage[T]{stage: stage[T]{up: s}}}
}

// --- Stage implementations ---

type stage[T any] struct {
	flight
	up     Iterator[T]
	done   bool
	upDone bool
	closed bool
}

// pull awaits one upstream pull. An error or exhaustion finishes the stage.
func (st *stage[T]) pull(ctx context.Context, in any) (pull.Result[T], error) {
	r, err := st.up.Next(ctx, in).Await(ctx)
	switch {
	case err != nil:
		st.done = true
	case r.Done:
		st.done, st.upDone = true, true
	}
	return r, err
}

func (st *stage[T]) closeUp(ctx context.Context) error {
	if st.upDone || st.closed {
		return nil
	}
	st.closed = true
	return closeIter(ctx, st.up)
}

// Close waits for a pull still in flight, then finishes the stage and
// closes upstream.
func (st *stage[T]) Close(ctx context.Context) error {
	st.wait()
	st.done = true
	return st.closeUp(ctx)
}

// abort finishes the stage on behalf of a consumer failure.
func (st *stage[T]) abort(ctx context.Context, err error) error {
	st.wait()
	return st.finish(ctx, err)
}

// finish ends the stage after err, closing upstream. It runs on the pull
// goroutine, so it must not wait for the current flight.
func (st *stage[T]) finish(ctx context.Context, err error) error {
	st.done = true
	if cerr := st.closeUp(ctx); cerr != nil {
		return cerr
	}
	return err
}

func exhausted[T any]() *Future[pull.Result[T]] {
	return Resolved(pull.Exhausted[T](nil))
}

type mapStage[T, U any] struct {
	stage[T]
	fn func(context.Context, T) (U, error)
}

func (m *mapStage[T, U]) Next(ctx context.Context, in any) *Future[pull.Result[U]] {
	if err := m.land(ctx); err != nil {
		return Rejected[pull.Result[U]](err)
	}
	if m.done {
		return exhausted[U]()
	}
	if m.fn == nil {
		m.done = true
		return Rejected[pull.Result[U]](errors.NotCallable("map", "callback"))
	}
	return launch(&m.flight, func() (pull.Result[U], error) {
		r, err := m.pull(ctx, in)
		if err != nil {
			return pull.Result[U]{}, err
		}
		if r.Done {
			return pull.Exhausted[U](r.Final), nil
		}
		out, err := m.fn(ctx, r.Value)
		if err != nil {
			m.done = true
			return pull.Result[U]{}, err
		}
		return pull.Yield(out), nil
	})
}

func (m *mapStage[T, U]) Fail(ctx context.Context, err error) *Future[pull.Result[U]] {
	return Rejected[pull.Result[U]](m.abort(ctx, err))
}

type filterStage[T any] struct {
	stage[T]
	fn func(context.Context, T) (bool, error)
}

func (f *filterStage[T]) Next(ctx context.Context, in any) *Future[pull.Result[T]] {
	if err := f.land(ctx); err != nil {
		return Rejected[pull.Result[T]](err)
	}
	if f.done {
		return exhausted[T]()
	}
	if f.fn == nil {
		f.done = true
		return Rejected[pull.Result[T]](errors.NotCallable("filter", "predicate"))
	}
	return launch(&f.flight, func() (pull.Result[T], error) {
		for {
			r, err := f.pull(ctx, in)
			if err != nil || r.Done {
				return r, err
			}
			keep, err := f.fn(ctx, r.Value)
			if err != nil {
				f.done = true
				return pull.Result[T]{}, err
			}
			if keep {
				return r, nil
			}
		}
	})
}

func (f *filterStage[T]) Fail(ctx context.Context, err error) *Future[pull.Result[T]] {
	return Rejected[pull.Result[T]](f.abort(ctx, err))
}

type takeStage[T any] struct {
	stage[T]
	remaining int
	err       error
}

func (t *takeStage[T]) Next(ctx context.Context, in any) *Future[pull.Result[T]] {
	if err := t.land(ctx); err != nil {
		return Rejected[pull.Result[T]](err)
	}
	if t.done {
		return exhausted[T]()
	}
	if t.err != nil {
		t.done = true
		return Rejected[pull.Result[T]](t.err)
	}
	if t.remaining <= 0 {
		t.done = true
		return settle(pull.Exhausted[T](nil), t.closeUp(ctx))
	}
	if t.remaining != pull.Unbounded {
		t.remaining--
	}
	return launch(&t.flight, func() (pull.Result[T], error) {
		return t.pull(ctx, in)
	})
}

func (t *takeStage[T]) Fail(ctx context.Context, err error) *Future[pull.Result[T]] {
	return Rejected[pull.Result[T]](t.abort(ctx, err))
}

type dropStage[T any] struct {
	stage[T]
	remaining int
	err       error
}

func (d *dropStage[T]) Next(ctx context.Context, in any) *Future[pull.Result[T]] {
	if err := d.land(ctx); err != nil {
		return Rejected[pull.Result[T]](err)
	}
	if d.done {
		return exhausted[T]()
	}
	if d.err != nil {
		d.done = true
		return Rejected[pull.Result[T]](d.err)
	}
	return launch(&d.flight, func() (pull.Result[T], error) {
		for d.remaining > 0 {
			d.remaining--
			r, err := d.pull(ctx, nil)
			if err != nil || r.Done {
				return r, err
			}
		}
		return d.pull(ctx, in)
	})
}

func (d *dropStage[T]) Fail(ctx context.Context, err error) *Future[pull.Result[T]] {
	return Rejected[pull.Result[T]](d.abort(ctx, err))
}

type indexedStage[T any] struct {
	stage[T]
	index int
}

func (x *indexedStage[T]) Next(ctx context.Context, in any) *Future[pull.Result[types.Pair[int, T]]] {
	if err := x.land(ctx); err != nil {
		return Rejected[pull.Result[types.Pair[int, T]]](err)
	}
	if x.done {
		return exhausted[types.Pair[int, T]]()
	}
	return launch(&x.flight, func() (pull.Result[types.Pair[int, T]], error) {
		r, err := x.pull(ctx, in)
		if err != nil {
			return pull.Result[types.Pair[int, T]]{}, err
		}
		if r.Done {
			return pull.Exhausted[types.Pair[int, T]](r.Final), nil
		}
		p := types.Pair[int, T]{Left: x.index, Right: r.Value}
		x.index++
		return pull.Yield(p), nil
	})
}

func (x *indexedStage[T]) Fail(ctx context.Context, err error) *Future[pull.Result[types.Pair[int, T]]] {
	return Rejected[pull.Result[types.Pair[int, T]]](x.abort(ctx, err))
}

type flatMapStage[T, U any] struct {
	stage[T]
	fn    func(context.Context, T) (any, error)
	inner Iterator[U]
}

func (f *flatMapStage[T, U]) Next(ctx context.Context, in any) *Future[pull.Result[U]] {
	if err := f.land(ctx); err != nil {
		return Rejected[pull.Result[U]](err)
	}
	if f.done {
		return exhausted[U]()
	}
	if f.fn == nil {
		f.done = true
		return Rejected[pull.Result[U]](errors.NotCallable("flatMap", "mapper"))
	}
	return launch(&f.flight, func() (pull.Result[U], error) {
		for {
			if f.inner != nil {
				r, err := f.inner.Next(ctx, in).Await(ctx)
				if err != nil {
					f.inner = nil
					return pull.Result[U]{}, f.finish(ctx, err)
				}
				if !r.Done {
					return r, nil
				}
				f.inner = nil
			}
			// Outer pulls and the first pull of a fresh inner carry no injected value.
			in = nil

			r, err := f.pull(ctx, nil)
			if err != nil {
				return pull.Result[U]{}, err
			}
			if r.Done {
				return pull.Exhausted[U](r.Final), nil
			}
			mapped, err := f.fn(ctx, r.Value)
			if err != nil {
				f.done = true
				return pull.Result[U]{}, err
			}
			inner, single, err := resolveInner[U](mapped)
			if err != nil {
				f.done = true
				return pull.Result[U]{}, err
			}
			if inner == nil {
				return pull.Yield(single), nil
			}
			f.inner = inner
		}
	})
}

func (f *flatMapStage[T, U]) Close(ctx context.Context) error {
	f.wait()
	f.done = true
	if f.inner != nil {
		inner := f.inner
		f.inner = nil
		if err := closeIter(ctx, inner); err != nil {
			_ = f.closeUp(ctx)
			return err
		}
	}
	return f.closeUp(ctx)
}

func (f *flatMapStage[T, U]) Fail(ctx context.Context, err error) *Future[pull.Result[U]] {
	if cerr := f.Close(ctx); cerr != nil {
		return Rejected[pull.Result[U]](cerr)
	}
	return Rejected[pull.Result[U]](err)
}

// resolveInner decides how a flat-map result is consumed: as an inner
// iterator, or as a single element when inner is nil.
func resolveInner[U any](v any) (inner Iterator[U], single U, err error) {
	switch x := v.(type) {
	case Iterator[U]:
		return x, single, nil
	case seq.Iterator[U]:
		return Lift(x), single, nil
	case <-chan U:
		return FromChan(x), single, nil
	case chan U:
		return FromChan[U](x), single, nil
	case iter.Seq[U]:
		return Lift(seq.FromSeq(x)), single, nil
	case func(func(U) bool):
		return Lift(seq.FromSeq(x)), single, nil
	case []U:
		return FromSlice(x), single, nil
	case U:
		if items, ok := pull.Elements[U](x); ok {
			return FromSlice(items), single, nil
		}
		return nil, x, nil
	case nil:
		if any(to.ZeroValue[U]()) == nil {
			return nil, single, nil
		}
	}
	return nil, single, errors.UnexpectedInner(v, reflect.TypeFor[U]().String())
}
