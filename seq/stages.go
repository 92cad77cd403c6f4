package seq

import (
	"iter"
	"reflect"

	"github.com/go-softwarelab/common/pkg/to"
	"github.com/go-softwarelab/common/pkg/types"

	"github.com/kbukum/lazyseq/errors"
	"github.com/kbukum/lazyseq/pull"
)

// Map transforms each element using fn. The final value passes through untouched.
func Map[T, U any](s Iterator[T], fn func(T) (U, error)) *Seq[U] {
	return &Seq[U]{it: &mapStage[T, U]{stage: stage[T]{up: s}, fn: fn}}
}

// FlatMap expands each element through fn and flattens one level. A result
// that is an Iterator[U], an iter.Seq[U] or a []U is consumed in order before
// the next upstream element is pulled; a result that is a U is produced as a
// single element. When U is an interface type, any slice whose elements all
// satisfy U is flattened too, so FlatMap[int, any] flattens a []int. Other
// iterables such as an iter.Seq[int] are still single elements in that case.
// A nil fn fails the first pull with a type error.
func FlatMap[T, U any](s Iterator[T], fn func(T) (any, error)) *Seq[U] {
	return &Seq[U]{it: &flatMapStage[T, U]{stage: stage[T]{up: s}, fn: fn}}
}

// Filter keeps only elements for which fn reports true.
func (s *Seq[T]) Filter(fn func(T) (bool, error)) *Seq[T] {
	return &Seq[T]{it: &filterStage[T]{stage: stage[T]{up: s.it}, fn: fn}}
}

// Take produces at most limit elements, then closes upstream. The limit is
// truncated toward zero; a negative limit fails the first pull with a range error.
func (s *Seq[T]) Take(limit float64) *Seq[T] {
	n, err := pull.Limit("take", limit)
	return &Seq[T]{it: &takeStage[T]{stage: stage[T]{up: s.it}, remaining: n, err: err}}
}

// Drop discards the first limit elements, then passes the rest through. The
// limit is truncated toward zero; a negative limit fails the first pull with
// a range error.
func (s *Seq[T]) Drop(limit float64) *Seq[T] {
	n, err := pull.Limit("drop", limit)
	return &Seq[T]{it: &dropStage[T]{stage: stage[T]{up: s.it}, remaining: n, err: err}}
}

// IndexedPairs pairs each element of s with its position in this stage's
// output, starting at 0. Like Map it is a function because the element type
// changes.
func IndexedPairs[T any](s Iterator[T]) *Seq[types.Pair[int, T]] {
	return &Seq[types.Pair[int, T]]{it: &indexedStage[T]{stage: stage[T]{up: s}}}
}

// --- Stage implementations ---

// stage holds the upstream a combinator owns and its lifecycle flags.
type stage[T any] struct {
	up     Iterator[T]
	done   bool
	upDone bool
	closed bool
}

// pull issues one upstream pull. An error or exhaustion finishes the stage.
func (st *stage[T]) pull(in any) (pull.Result[T], error) {
	r, err := st.up.Next(in)
	switch {
	case err != nil:
		st.done = true
	case r.Done:
		st.done, st.upDone = true, true
	}
	return r, err
}

// closeUp closes upstream unless it already reported exhaustion or was closed.
func (st *stage[T]) closeUp() error {
	if st.upDone || st.closed {
		return nil
	}
	st.closed = true
	return closeIter(st.up)
}

func (st *stage[T]) Close() error {
	st.done = true
	return st.closeUp()
}

// abort finishes the stage after a failure.
func (st *stage[T]) abort(err error) error {
	st.done = true
	if cerr := st.closeUp(); cerr != nil {
		return cerr
	}
	return err
}

type mapStage[T, U any] struct {
	stage[T]
	fn func(T) (U, error)
}

func (m *mapStage[T, U]) Next(in any) (pull.Result[U], error) {
	if m.done {
		return pull.Exhausted[U](nil), nil
	}
	if m.fn == nil {
		m.done = true
		return pull.Result[U]{}, errors.NotCallable("map", "callback")
	}
	r, err := m.pull(in)
	if err != nil {
		return pull.Result[U]{}, err
	}
	if r.Done {
		return pull.Exhausted[U](r.Final), nil
	}
	out, err := m.fn(r.Value)
	if err != nil {
		m.done = true
		return pull.Result[U]{}, err
	}
	return pull.Yield(out), nil
}

func (m *mapStage[T, U]) Fail(err error) (pull.Result[U], error) {
	return pull.Exhausted[U](nil), m.abort(err)
}

type filterStage[T any] struct {
	stage[T]
	fn func(T) (bool, error)
}

func (f *filterStage[T]) Next(in any) (pull.Result[T], error) {
	if f.done {
		return pull.Exhausted[T](nil), nil
	}
	if f.fn == nil {
		f.done = true
		return pull.Result[T]{}, errors.NotCallable("filter", "predicate")
	}
	for {
		r, err := f.pull(in)
		if err != nil || r.Done {
			return r, err
		}
		keep, err := f.fn(r.Value)
		if err != nil {
			f.done = true
			return pull.Result[T]{}, err
		}
		if keep {
			return r, nil
		}
	}
}

func (f *filterStage[T]) Fail(err error) (pull.Result[T], error) {
	return pull.Exhausted[T](nil), f.abort(err)
}

type takeStage[T any] struct {
	stage[T]
	remaining int
	err       error
}

func (t *takeStage[T]) Next(in any) (pull.Result[T], error) {
	if t.done {
		return pull.Exhausted[T](nil), nil
	}
	if t.err != nil {
		t.done = true
		return pull.Result[T]{}, t.err
	}
	if t.remaining <= 0 {
		t.done = true
		if err := t.closeUp(); err != nil {
			return pull.Result[T]{}, err
		}
		return pull.Exhausted[T](nil), nil
	}
	if t.remaining != pull.Unbounded {
		t.remaining--
	}
	return t.pull(in)
}

func (t *takeStage[T]) Fail(err error) (pull.Result[T], error) {
	return pull.Exhausted[T](nil), t.abort(err)
}

type dropStage[T any] struct {
	stage[T]
	remaining int
	err       error
}

func (d *dropStage[T]) Next(in any) (pull.Result[T], error) {
	if d.done {
		return pull.Exhausted[T](nil), nil
	}
	if d.err != nil {
		d.done = true
		return pull.Result[T]{}, d.err
	}
	for d.remaining > 0 {
		d.remaining--
		r, err := d.pull(nil)
		if err != nil || r.Done {
			return r, err
		}
	}
	return d.pull(in)
}

func (d *dropStage[T]) Fail(err error) (pull.Result[T], error) {
	return pull.Exhausted[T](nil), d.abort(err)
}

type indexedStage[T any] struct {
	stage[T]
	index int
}

func (x *indexedStage[T]) Next(in any) (pull.Result[types.Pair[int, T]], error) {
	if x.done {
		return pull.Exhausted[types.Pair[int, T]](nil), nil
	}
	r, err := x.pull(in)
	if err != nil {
		return pull.Result[types.Pair[int, T]]{}, err
	}
	if r.Done {
		return pull.Exhausted[types.Pair[int, T]](r.Final), nil
	}
	p := types.Pair[int, T]{Left: x.index, Right: r.Value}
	x.index++
	return pull.Yield(p), nil
}

func (x *indexedStage[T]) Fail(err error) (pull.Result[types.Pair[int, T]], error) {
	return pull.Exhausted[types.Pair[int, T]](nil), x.abort(err)
}

type flatMapStage[T, U any] struct {
	stage[T]
	fn    func(T) (any, error)
	inner Iterator[U]
}

func (f *flatMapStage[T, U]) Next(in any) (pull.Result[U], error) {
	if f.done {
		return pull.Exhausted[U](nil), nil
	}
	if f.fn == nil {
		f.done = true
		return pull.Result[U]{}, errors.NotCallable("flatMap", "mapper")
	}
	for {
		if f.inner != nil {
			r, err := f.inner.Next(in)
			if err != nil {
				f.inner = nil
				return pull.Result[U]{}, f.abort(err)
			}
			if !r.Done {
				return r, nil
			}
			f.inner = nil
		}
		// Outer pulls and the first pull of a fresh inner carry no injected value.
		in = nil

		r, err := f.pull(nil)
		if err != nil {
			return pull.Result[U]{}, err
		}
		if r.Done {
			return pull.Exhausted[U](r.Final), nil
		}
		mapped, err := f.fn(r.Value)
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
}

func (f *flatMapStage[T, U]) Close() error {
	f.done = true
	if f.inner != nil {
		inner := f.inner
		f.inner = nil
		if err := closeIter(inner); err != nil {
			_ = f.closeUp()
			return err
		}
	}
	return f.closeUp()
}

func (f *flatMapStage[T, U]) Fail(err error) (pull.Result[U], error) {
	if cerr := f.Close(); cerr != nil {
		return pull.Exhausted[U](nil), cerr
	}
	return pull.Exhausted[U](nil), err
}

// resolveInner decides how a flat-map result is consumed: as an inner
// iterator, or as a single element when inner is nil.
func resolveInner[U any](v any) (inner Iterator[U], single U, err error) {
	switch x := v.(type) {
	case Iterator[U]:
		return x, single, nil
	case iter.Seq[U]:
		return FromSeq(x), single, nil
	case func(func(U) bool):
		return FromSeq(x), single, nil
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
