package seq

import "iter"

// All returns a range-over-func view of the sequence. Breaking out of the
// loop closes the sequence. A pull error ends the loop and is kept for Err.
//
//	for v := range s.All() {
//	    ...
//	}
//	if err := s.Err(); err != nil {
//	    ...
//	}
func (s *Seq[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			r, err := s.Next(nil)
			if err != nil {
				s.err = err
				return
			}
			if r.Done {
				return
			}
			if !yield(r.Value) {
				if err := s.Close(); err != nil {
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
