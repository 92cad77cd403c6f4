package seq

import (
	"iter"

	"github.com/go-softwarelab/common/pkg/optional"

	"github.com/kbukum/lazyseq/pull"
)

// Iterator provides pull-based sequential access to a stream of values.
type Iterator[T any] interface {
	// Next returns the next element, or exhaustion with the final value.
	// in is handed to the producer as the injected value of this pull.
	Next(in any) (pull.Result[T], error)
}

// Closer is implemented by iterators that release resources when a consumer
// stops pulling before exhaustion. Close is idempotent.
type Closer interface {
	Close() error
}

// Failer is implemented by iterators that accept an error from their consumer.
type Failer[T any] interface {
	Fail(err error) (pull.Result[T], error)
}

// Sequence is the chainable view of an iterator. Type-changing stages are
// package functions: Map, FlatMap and Fold.
type Sequence[T any] interface {
	Iterator[T]
	Closer
	Failer[T]

	Filter(fn func(T) (bool, error)) *Seq[T]
	Take(limit float64) *Seq[T]
	Drop(limit float64) *Seq[T]

	Reduce(fn func(acc, v T) (T, error), seed optional.Value[T]) (T, error)
	ToSlice() ([]T, error)
	ToSliceMax(n int) ([]T, error)
	ForEach(fn func(T) error) error
	Some(fn func(T) (bool, error)) (bool, error)
	Every(fn func(T) (bool, error)) (bool, error)
	Find(fn func(T) (bool, error)) (optional.Value[T], error)
	All() iter.Seq[T]
	Err() error
}

var _ Sequence[int] = (*Seq[int])(nil)

// Seq wraps an Iterator it exclusively owns.
type Seq[T any] struct {
	it  Iterator[T]
	err error
}

// FromIterator wraps an existing iterator. A *Seq is returned as is.
func FromIterator[T any](it Iterator[T]) *Seq[T] {
	if s, ok := it.(*Seq[T]); ok {
		return s
	}
	return &Seq[T]{it: it}
}

// Next implements Iterator.
func (s *Seq[T]) Next(in any) (pull.Result[T], error) {
	return s.it.Next(in)
}

// Close closes the underlying iterator if it supports closing.
func (s *Seq[T]) Close() error {
	return closeIter(s.it)
}

// Fail hands err to the underlying iterator if it accepts errors. Otherwise
// the iterator is closed and err is returned.
func (s *Seq[T]) Fail(err error) (pull.Result[T], error) {
	if f, ok := s.it.(Failer[T]); ok {
		return f.Fail(err)
	}
	if cerr := closeIter(s.it); cerr != nil {
		return pull.Exhausted[T](nil), cerr
	}
	return pull.Exhausted[T](nil), err
}

// Iter returns the raw Iterator held by this sequence.
func (s *Seq[T]) Iter() Iterator[T] {
	return s.it
}

func closeIter(it any) error {
	if c, ok := it.(Closer); ok {
		return c.Close()
	}
	return nil
}
