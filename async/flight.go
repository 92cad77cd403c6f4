package async

import (
	"context"

	"github.com/kbukum/lazyseq/pull"
)

// flight tracks the goroutine serving an iterator's current pull. A consumer
// that stops awaiting a pull, for example because its context ended, leaves
// that goroutine running; the iterator waits for it to settle before touching
// its own state again.
type flight struct {
	settled <-chan struct{}
}

// launch runs body as the current pull of fl.
func launch[T any](fl *flight, body func() (pull.Result[T], error)) *Future[pull.Result[T]] {
	f := Go(body)
	fl.settled = f.done
	return f
}

// land waits for the current pull to settle. It fails with ctx's error,
// leaving the pull in flight, when ctx ends first.
func (fl *flight) land(ctx context.Context) error {
	if fl.settled == nil {
		return nil
	}
	// A settled pull wins over a done ctx.
	select {
	case <-fl.settled:
		fl.settled = nil
		return nil
	default:
	}
	select {
	case <-fl.settled:
		fl.settled = nil
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// wait blocks until the current pull has settled.
func (fl *flight) wait() {
	if fl.settled != nil {
		<-fl.settled
		fl.settled = nil
	}
}
