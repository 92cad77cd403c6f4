package seq

import (
	"github.com/go-softwarelab/common/pkg/optional"

	"github.com/kbukum/lazyseq/errors"
)

// Reduce folds the sequence left to right with fn. With a present seed the
// fold starts from the seed and covers every element, even when the seed is
// nil. With an absent seed the first element seeds the accumulator; an empty
// sequence is then a type error.
func (s *Seq[T]) Reduce(fn func(acc, v T) (T, error), seed optional.Value[T]) (T, error) {
	var acc T
	if fn == nil {
		return acc, errors.NotCallable("reduce", "reducer")
	}
	if seed.IsPresent() {
		acc = seed.MustGet()
	} else {
		r, err := s.Next(nil)
		if err != nil {
			return acc, err
		}
		if r.Done {
			return acc, errors.EmptyReduce()
		}
		acc = r.Value
	}
	return fold(s, fn, acc)
}

// Fold accumulates every element into initial using fn. It is Reduce with a
// present seed whose type may differ from the element type.
func Fold[T, V any](s Iterator[T], fn func(acc V, v T) (V, error), initial V) (V, error) {
	if fn == nil {
		return initial, errors.NotCallable("reduce", "reducer")
	}
	return fold(s, fn, initial)
}

func fold[T, V any](it Iterator[T], fn func(V, T) (V, error), acc V) (V, error) {
	for {
		r, err := it.Next(nil)
		if err != nil {
			return acc, err
		}
		if r.Done {
			return acc, nil
		}
		next, err := fn(acc, r.Value)
		if err != nil {
			_ = closeIter(it)
			return acc, err
		}
		acc = next
	}
}

// ToSlice pulls to exhaustion and returns the elements in order.
func (s *Seq[T]) ToSlice() ([]T, error) {
	var out []T
	for {
		r, err := s.Next(nil)
		if err != nil {
			return out, err
		}
		if r.Done {
			return out, nil
		}
		out = append(out, r.Value)
	}
}

// ToSliceMax collects at most n elements. It stops pulling once n elements
// are held and then closes the sequence; n <= 0 pulls nothing.
func (s *Seq[T]) ToSliceMax(n int) ([]T, error) {
	out := make([]T, 0, max(n, 0))
	for len(out) < n {
		r, err := s.Next(nil)
		if err != nil {
			return out, err
		}
		if r.Done {
			return out, nil
		}
		out = append(out, r.Value)
	}
	return out, s.Close()
}

// ForEach calls fn for every element in order.
func (s *Seq[T]) ForEach(fn func(T) error) error {
	if fn == nil {
		return errors.NotCallable("forEach", "callback")
	}
	for {
		r, err := s.Next(nil)
		if err != nil {
			return err
		}
		if r.Done {
			return nil
		}
		if err := fn(r.Value); err != nil {
			_ = s.Close()
			return err
		}
	}
}

// Some reports whether any element satisfies fn. It stops at the first
// match and closes the sequence.
func (s *Seq[T]) Some(fn func(T) (bool, error)) (bool, error) {
	_, found, err := s.search("some", fn, true)
	return found, err
}

// Every reports whether all elements satisfy fn. It stops at the first
// mismatch and closes the sequence.
func (s *Seq[T]) Every(fn func(T) (bool, error)) (bool, error) {
	_, found, err := s.search("every", fn, false)
	if err != nil {
		return false, err
	}
	return !found, nil
}

// Find returns the first element satisfying fn, closing the sequence once
// found. The result is empty when nothing matched.
func (s *Seq[T]) Find(fn func(T) (bool, error)) (optional.Value[T], error) {
	v, found, err := s.search("find", fn, true)
	if err != nil || !found {
		return optional.Empty[T](), err
	}
	return optional.Some(v), nil
}

// search pulls until fn returns want, closing the sequence when it stops early.
func (s *Seq[T]) search(op string, fn func(T) (bool, error), want bool) (T, bool, error) {
	var zero T
	if fn == nil {
		return zero, false, errors.NotCallable(op, "predicate")
	}
	for {
		r, err := s.Next(nil)
		if err != nil {
			return zero, false, err
		}
		if r.Done {
			return zero, false, nil
		}
		ok, err := fn(r.Value)
		if err != nil {
			_ = s.Close()
			return zero, false, err
		}
		if ok == want {
			return r.Value, true, s.Close()
		}
	}
}
