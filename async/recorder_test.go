package async

import (
	"context"

	"github.com/kbukum/lazyseq/pull"
)

// recorder is a slice-backed async source that records how it is driven. Pulls
// settle immediately.
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

func (p *recorder[T]) Next(_ context.Context, in any) *Future[pull.Result[T]] {
	p.pulls++
	p.injected = append(p.injected, in)
	if p.done || p.index >= len(p.items) {
		p.done = true
		return Resolved(pull.Exhausted[T](p.final))
	}
	v := p.items[p.index]
	p.index++
	return Resolved(pull.Yield(v))
}

func (p *recorder[T]) Close(context.Context) error {
	p.closes++
	p.done = true
	return nil
}

func drain[T any](t interface {
	Helper()
	Fatal(args ...any)
}, it Iterator[T]) ([]T, any) {
	t.Helper()
	ctx := context.Background()
	var out []T
	for {
		r, err := it.Next(ctx, nil).Await(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if r.Done {
			return out, r.Final
		}
		out = append(out, r.Value)
	}
}
