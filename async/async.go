package async

import (
	"context"
	"iter"

	"github.com/go-softwarelab/common/pkg/optional"

	"github.com/kbukum/lazyseq/pull"
)

// Iterator provides deferred pull-based access to a stream of values.
type Iterator[T any] interface {
	// Next starts one pull with in as the injected value.
	Next(ctx context.Context, in any) *Future[pull.Result[T]]
}

// Closer is implemented by iterators that release resources when a consumer
// stops pulling early. Close is idempotent.
type Closer interface {
	Close(ctx context.Context) error
}

// Failer is implemented by iterators that accept an error from their consumer.
type Failer[T any] interface {
	Fail(ctx context.Context, err error) *Future[pull.Result[T]]
}

// Sequence is the chainable view of an async iterator. Type-changing stages
// are package functions: Map, FlatMap and Fold.
type Sequence[T any] interface {
	Iterator[T]
	Closer
	Failer[T]

	Filter(fn func(context.Context, T) (bool, error)) *Seq[T]
	Take(limit float64) *Seq[T]
	Drop(limit float64) *Seq[T]

	Reduce(ctx context.Context, fn func(ctx context.Context, acc, v T) (T, error), seed optional.Value[T]) *Future[T]
	ToSlice(ctx context.Context) *Future[[]T]
	ToSliceMax(ctx context.Context, n int) *Future[[]T]
	ForEach(ctx context.Context, fn func(context.Context, T) error) *Future[struct{}]
	Some(ctx context.Context, fn func(context.Context, T) (bool, error)) *Future[bool]
	Every(ctx context.Context, fn func(context.Context, T) (bool, error)) *Future[bool]
	Find(ctx context.Context, fn func(context.Context, T) (bool, error)) *Future[optional.Value[T]]
	All(ctx context.Context) iter.Seq[T]
	Err() error
}

var _ Sequence[int] = (*Seq[int])(nil)

// Seq wraps an async Iterator it exclusively owns.
type Seq[T any] struct {
	it  Iterator[T]
	err error
}

// FromIterator wraps an existing async iterator. A *Seq is returned as is.
func FromIterator[T any](it Iterator[T]) *Seq[T] {
	if s, ok := it.(*Seq[T]); ok {
		return s
	}
	return &Seq[T]{it: it}
}

// Next implements Iterator.
func (s *Seq[T]) Next(ctx context.Context, in any) *Future[pull.Result[T]] {
	return s.it.Next(ctx, in)
}

// Close closes the underlying iterator if it supports closing.
func (s *Seq[T]) Close(ctx context.Context) error {
	return closeIter(ctx, s.it)
}

// Fail hands err to the underlying iterator if it accepts errors. Otherwise
// the iterator is closed and err is returned.
func (s *Seq[T]) Fail(ctx context.Context, err error) *Future[pull.Result[T]] {
	if f, ok := s.it.(Failer[T]); ok {
		return f.Fail(ctx, err)
	}
	if cerr := closeIter(ctx, s.it); cerr != nil {
		return Rejected[pull.Result[T]](cerr)
	}
	return Rejected[pull.Result[T]](err)
}

// Iter returns the raw Iterator held by this sequence.
func (s *Seq[T]) Iter() Iterator[T] {
	return s.it
}

func closeIter(ctx context.Context, it any) error {
	if c, ok := it.(Closer); ok {
		return c.Close(ctx)
	}
	return nil
}
