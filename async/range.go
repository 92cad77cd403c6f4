package async

import (
	"context"
	"iter"
)

// All returns a range-over-func view that awaits each pull in turn.
// Breaking out of the loop closes the sequence; a pull error ends the loop
// and is kept for Err.
func (s *Seq[T]) All(ctx context.Context) iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			r, err := s.Next(ctx, nil).Await(ctx)
			if err != nil {
				s.err = err
				return
			}
			if r.Done {
				return
			}
			if !yield(r.Value) {
				if err := s.Close(ctx); err != nil {
					s.err = err
				}
				return
			}
		}
	}
}

// Err returns the error that ended the last range over All, if any.
func (s *Seq[T]) Err() error {
	return s.err
}
