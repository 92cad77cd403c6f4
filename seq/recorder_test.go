package seq

import "github.com/kbukum/lazyseq/pull"

// recorder is a slice-backed source that records how it is driven.
type recorder[T any] struct {
	items    []T
	final    any
	index    int
	done     bool
	pulls    int
	closes   int
	injected []any
}

func newRecorder[T any](items ...T) *recorder[T] {
	return &recorder[T]{items: items}
}

func (p *recorder[T]) Next(in any) (pull.Result[T], error) {
	p.pulls++
	p.injected = append(p.injected, in)
	if p.done || p.index >= len(p.items) {
		p.done = true
		return pull.Exhausted[T](p.final), nil
	}
	v := p.items[p.index]
	p.index++
	return pull.Yield(v), nil
}

func (p *recorder[T]) Close() error {
	p.closes++
	p.done = true
	return nil
}

func drain[T any](t interface {
	Helper()
	Fatal(args ...any)
}, it Iterator[T]) ([]T, any) {
	t.Helper()
	var out []T
	for {
		r, err := it.Next(nil)
		if err != nil {
			t.Fatal(err)
		}
		if r.Done {
			return out, r.Final
		}
		out = append(out, r.Value)
	}
}
