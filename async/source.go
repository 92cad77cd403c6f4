package async

import (
	"context"
	"reflect"

	"github.com/kbukum/lazyseq/errors"
	"github.com/kbukum/lazyseq/pull"
	"github.com/kbukum/lazyseq/seq"
)

// Puller is a context-aware pull source that reports exhaustion with ok
// false. A Puller that also implements seq.Closer is closed with the
// sequence.
type Puller[T any] interface {
	Next(ctx context.Context) (T, bool, error)
}

// From adapts a value into an async sequence. Accepted sources are an async
// Iterator[T], a Puller[T], a channel of T, and everything seq.From accepts.
func From[T any](src any) (*Seq[T], error) {
	switch x := src.(type) {
	case Iterator[T]:
		return FromIterator(x), nil
	case Puller[T]:
		return FromPuller(x), nil
	case <-chan T:
		return FromChan(x), nil
	case chan T:
		return FromChan[T](x), nil
	}
	s, err := seq.From[T](src)
	if err != nil {
		return nil, errors.NotIterable(src, "async sequence of "+reflect.TypeFor[T]().String())
	}
	return Lift(s), nil
}

// Lift adapts a sync iterator. Each pull runs synchronously on the calling
// goroutine and settles immediately.
func Lift[T any](it seq.Iterator[T]) *Seq[T] {
	return &Seq[T]{it: &liftSource[T]{it: it}}
}

// FromSlice creates an async sequence over a slice of values.
func FromSlice[T any](items []T) *Seq[T] {
	return Lift(seq.FromSlice(items))
}

// Of creates an async sequence over the given values.
func Of[T any](values ...T) *Seq[T] {
	return FromSlice(values)
}

// FromChan creates a sequence that receives from ch until it is closed.
// Closing the sequence stops receiving; the channel itself is left open.
func FromChan[T any](ch <-chan T) *Seq[T] {
	return &Seq[T]{it: &chanSource[T]{ch: ch}}
}

// FromPuller creates a sequence from a context-aware pull source.
func FromPuller[T any](p Puller[T]) *Seq[T] {
	return &Seq[T]{it: &pullerSource[T]{p: p}}
}

// FromFunc creates a sequence from a step function run on its own goroutine
// per pull. The function must keep reporting exhaustion once it has done so.
func FromFunc[T any](fn func(ctx context.Context, in any) (pull.Result[T], error)) *Seq[T] {
	return &Seq[T]{it: funcSource[T](fn)}
}

// --- Internal sources ---

type liftSource[T any] struct {
	it seq.Iterator[T]
}

func (l *liftSource[T]) Next(ctx context.Context, in any) *Future[pull.Result[T]] {
	if err := ctx.Err(); err != nil {
		return Rejected[pull.Result[T]](err)
	}
	r, err := l.it.Next(in)
	return settle(r, err)
}

func (l *liftSource[T]) Close(_ context.Context) error {
	if c, ok := l.it.(seq.Closer); ok {
		return c.Close()
	}
	return nil
}

func (l *liftSource[T]) Fail(ctx context.Context, err error) *Future[pull.Result[T]] {
	if f, ok := l.it.(seq.Failer[T]); ok {
		r, ferr := f.Fail(err)
		return settle(r, ferr)
	}
	if cerr := l.Close(ctx); cerr != nil {
		return Rejected[pull.Result[T]](cerr)
	}
	return Rejected[pull.Result[T]](err)
}

type chanSource[T any] struct {
	flight
	ch   <-chan T
	done bool
}

func (c *chanSource[T]) Next(ctx context.Context, _ any) *Future[pull.Result[T]] {
	if err := c.land(ctx); err != nil {
		return Rejected[pull.Result[T]](err)
	}
	if c.done {
		return exhausted[T]()
	}
	return launch(&c.flight, func() (pull.Result[T], error) {
		select {
		case v, ok := <-c.ch:
			if !ok {
				c.done = true
				return pull.Exhausted[T](nil), nil
			}
			return pull.Yield(v), nil
		case <-ctx.Done():
			return pull.Result[T]{}, ctx.Err()
		}
	})
}

func (c *chanSource[T]) Close(_ context.Context) error {
	c.wait()
	c.done = true
	return nil
}

type pullerSource[T any] struct {
	flight
	p    Puller[T]
	done bool
}

func (s *pullerSource[T]) Next(ctx context.Context, _ any) *Future[pull.Result[T]] {
	if err := s.land(ctx); err != nil {
		return Rejected[pull.Result[T]](err)
	}
	if s.done {
		return exhausted[T]()
	}
	return launch(&s.flight, func() (pull.Result[T], error) {
		v, ok, err := s.p.Next(ctx)
		switch {
		case err != nil:
			s.done = true
			return pull.Result[T]{}, err
		case !ok:
			s.done = true
			return pull.Exhausted[T](nil), nil
		}
		return pull.Yield(v), nil
	})
}

func (s *pullerSource[T]) Close(_ context.Context) error {
	s.wait()
	if s.done {
		return nil
	}
	s.done = true
	if c, ok := s.p.(seq.Closer); ok {
		return c.Close()
	}
	return nil
}

type funcSource[T any] func(ctx context.Context, in any) (pull.Result[T], error)

func (f funcSource[T]) Next(ctx context.Context, in any) *Future[pull.Result[T]] {
	return Go(func() (pull.Result[T], error) {
		return f(ctx, in)
	})
}
