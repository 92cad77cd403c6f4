package async

import (
	"context"

	"github.com/go-softwarelab/common/pkg/optional"

	"github.com/kbukum/lazyseq/errors"
)

// Reduce folds the sequence left to right with fn. With a present seed the
// fold starts from the seed and covers every element. With an absent seed
// the first element seeds the accumulator; an empty sequence is then a type
// error.
func (s *Seq[T]) Reduce(ctx context.Context, fn func(ctx context.Context, acc, v T) (T, error), seed optional.Value[T]) *Future[T] {
	if fn == nil {
		return Rejected[T](errors.NotCallable("reduce", "reducer"))
	}
	return Go(func() (T, error) {
		var acc T
		if seed.IsPresent() {
			acc = seed.MustGet()
		} else {
			r, err := s.Next(ctx, nil).Await(ctx)
			if err != nil {
				return acc, err
			}
			if r.Done {
				return acc, errors.EmptyReduce()
			}
			acc = r.Value
		}
		return fold(ctx, s, fn, acc)
	})
}

// Fold accumulates every element into initial using fn.
func Fold[T, V any](ctx context.Context, s Iterator[T], fn func(ctx context.Context, acc V, v T) (V, error), initial V) *Future[V] {
	if fn == nil {
		return Rejected[V](errors.NotCallable("reduce", "reducer"))
	}
	return Go(func() (V, error) {
		return fold(ctx, s, fn, initial)
	})
}

func fold[T, V any](ctx context.Context, it Iterator[T], fn func(context.Context, V, T) (V, error), acc V) (V, error) {
	for {
		r, err := it.Next(ctx, nil).Await(ctx)
		if err != nil {
			return acc, err
		}
		if r.Done {
			return acc, nil
		}
		next, err := fn(ctx, acc, r.Value)
		if err != nil {
			_ = closeIter(ctx, it)
			return acc, err
		}
		acc = next
	}
}

// ToSlice pulls to exhaustion and settles with the elements in order.
func (s *Seq[T]) ToSlice(ctx context.Context) *Future[[]T] {
	return Go(func() ([]T, error) {
		var out []T
		for {
			r, err := s.Next(ctx, nil).Await(ctx)
			if err != nil {
				return out, err
			}
			if r.Done {
				return out, nil
			}
			out = append(out, r.Value)
		}
	})
}

// ToSliceMax collects at most n elements, then closes the sequence.
func (s *Seq[T]) ToSliceMax(ctx context.Context, n int) *Future[[]T] {
	return Go(func() ([]T, error) {
		out := make([]T, 0, max(n, 0))
		for len(out) < n {
			r, err := s.Next(ctx, nil).Await(ctx)
			if err != nil {
				return out, err
			}
			if r.Done {
				return out, nil
			}
			out = append(out, r.Value)
		}
		return out, s.Close(ctx)
	})
}

// ForEach calls fn for every element in order, awaiting each call before the
// next pull.
func (s *Seq[T]) ForEach(ctx context.Context, fn func(context.Context, T) error) *Future[struct{}] {
	if fn == nil {
		return Rejected[struct{}](errors.NotCallable("forEach", "callback"))
	}
	return Go(func() (struct{}, error) {
		for {
			r, err := s.Next(ctx, nil).Await(ctx)
			if err != nil {
				return struct{}{}, err
			}
			if r.Done {
				return struct{}{}, nil
			}
			if err := fn(ctx, r.Value); err != nil {
				_ = s.Close(ctx)
				return struct{}{}, err
			}
		}
	})
}

// Some reports whether any element satisfies fn, closing the sequence at the
// first match.
func (s *Seq[T]) Some(ctx context.Context, fn func(context.Context, T) (bool, error)) *Future[bool] {
	if fn == nil {
		return Rejected[bool](errors.NotCallable("some", "predicate"))
	}
	return Go(func() (bool, error) {
		_, found, err := s.search(ctx, fn, true)
		return found, err
	})
}

// Every reports whether all elements satisfy fn, closing the sequence at the
// first mismatch.
func (s *Seq[T]) Every(ctx context.Context, fn func(context.Context, T) (bool, error)) *Future[bool] {
	if fn == nil {
		return Rejected[bool](errors.NotCallable("every", "predicate"))
	}
	return Go(func() (bool, error) {
		_, found, err := s.search(ctx, fn, false)
		if err != nil {
			return false, err
		}
		return !found, nil
	})
}

// Find settles with the first element satisfying fn, or an empty value.
func (s *Seq[T]) Find(ctx context.Context, fn func(context.Context, T) (bool, error)) *Future[optional.Value[T]] {
	if fn == nil {
		return Rejected[optional.Value[T]](errors.NotCallable("find", "predicate"))
	}
	return Go(func() (optional.Value[T], error) {
		v, found, err := s.search(ctx, fn, true)
		if err != nil || !found {
			return optional.Empty[T](), err
		}
		return optional.Some(v), nil
	})
}

func (s *Seq[T]) search(ctx context.Context, fn func(context.Context, T) (bool, error), want bool) (T, bool, error) {
	var zero T
	for {
		r, err := s.Next(ctx, nil).Await(ctx)
		if err != nil {
			return zero, false, err
		}
		if r.Done {
			return zero, false, nil
		}
		ok, err := fn(ctx, r.Value)
		if err != nil {
			_ = s.Close(ctx)
			return zero, false, err
		}
		if ok == want {
			return r.Value, true, s.Close(ctx)
		}
	}
}
