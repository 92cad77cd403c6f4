package seq

import (
	"iter"
	"maps"
	"reflect"

	"github.com/go-softwarelab/common/pkg/types"

	"github.com/kbukum/lazyseq/errors"
	"github.com/kbukum/lazyseq/pull"
)

// From adapts any enumerable value into a sequence. Accepted sources are an
// Iterator[T], an iter.Seq[T] (or a plain func(func(T) bool)), a []T, and a
// string when T is string (one code point per element) or rune. Anything
// else is a type error.
func From[T any](src any) (*Seq[T], error) {
	switch x := src.(type) {
	case Iterator[T]:
		return FromIterator(x), nil
	case iter.Seq[T]:
		return FromSeq(x), nil
	case func(func(T) bool):
		return FromSeq(x), nil
	case []T:
		return FromSlice(x), nil
	case string:
		if s, ok := any(FromString(x)).(*Seq[T]); ok {
			return s, nil
		}
		if s, ok := any(FromRunes(x)).(*Seq[T]); ok {
			return s, nil
		}
	}
	return nil, errors.NotIterable(src, "sequence of "+reflect.TypeFor[T]().String())
}

// FromSlice creates a sequence over a slice of values.
func FromSlice[T any](items []T) *Seq[T] {
	return &Seq[T]{it: &sliceSource[T]{items: items}}
}

// Of creates a sequence over the given values.
func Of[T any](values ...T) *Seq[T] {
	return FromSlice(values)
}

// FromString creates a sequence of the string's code points, each as a string.
func FromString(s string) *Seq[string] {
	chars := make([]string, 0, len(s))
	for _, r := range s {
		chars = append(chars, string(r))
	}
	return FromSlice(chars)
}

// FromRunes creates a sequence of the string's code points.
func FromRunes(s string) *Seq[rune] {
	return FromSlice([]rune(s))
}

// FromSeq creates a sequence from a range-over-func iterator. The iterator is
// driven through iter.Pull; closing the sequence stops it.
func FromSeq[T any](s iter.Seq[T]) *Seq[T] {
	return &Seq[T]{it: &pullSource[T]{seq: s}}
}

// FromSeq2 creates a sequence of pairs from a two-value iterator.
func FromSeq2[K, V any](s iter.Seq2[K, V]) *Seq[types.Pair[K, V]] {
	return FromSeq(func(yield func(types.Pair[K, V]) bool) {
		for k, v := range s {
			if !yield(types.Pair[K, V]{Left: k, Right: v}) {
				return
			}
		}
	})
}

// FromMap creates a sequence of key/value pairs. Order follows map iteration
// and is therefore unspecified.
func FromMap[K comparable, V any](m map[K]V) *Seq[types.Pair[K, V]] {
	return FromSeq2(maps.All(m))
}

// FromFunc creates a sequence from a step function. The function must keep
// reporting exhaustion once it has done so.
func FromFunc[T any](fn func(in any) (pull.Result[T], error)) *Seq[T] {
	return &Seq[T]{it: funcSource[T](fn)}
}

// --- Internal sources ---

type sliceSource[T any] struct {
	items []T
	index int
}

func (it *sliceSource[T]) Next(_ any) (pull.Result[T], error) {
	if it.index >= len(it.items) {
		return pull.Exhausted[T](nil), nil
	}
	val := it.items[it.index]
	it.index++
	return pull.Yield(val), nil
}

func (it *sliceSource[T]) Close() error {
	it.index = len(it.items)
	return nil
}

type pullSource[T any] struct {
	seq  iter.Seq[T]
	next func() (T, bool)
	stop func()
	done bool
}

func (it *pullSource[T]) Next(_ any) (pull.Result[T], error) {
	if it.done {
		return pull.Exhausted[T](nil), nil
	}
	if it.next == nil {
		it.next, it.stop = iter.Pull(it.seq)
	}
	v, ok := it.next()
	if !ok {
		return pull.Exhausted[T](nil), it.Close()
	}
	return pull.Yield(v), nil
}

func (it *pullSource[T]) Close() error {
	it.done = true
	if it.stop != nil {
		it.stop()
	}
	return nil
}

type funcSource[T any] func(in any) (pull.Result[T], error)

func (f funcSource[T]) Next(in any) (pull.Result[T], error) {
	return f(in)
}
