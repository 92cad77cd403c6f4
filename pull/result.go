package pull

import "fmt"

// Result is the outcome of one pull: an element, or exhaustion with a final value.
type Result[T any] struct {
	// Value is the produced element. Meaningful only when Done is false.
	Value T
	// Final is the sequence's final value. Meaningful only when Done is true.
	Final any
	// Done reports exhaustion. Once a producer reports Done, it keeps doing so.
	Done bool
}

// Yield returns a result carrying an element.
func Yield[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

// Exhausted returns a result reporting exhaustion with the given final value.
func Exhausted[T any](final any) Result[T] {
	return Result[T]{Done: true, Final: final}
}

// String implements fmt.Stringer.
func (r Result[T]) String() string {
	if r.Done {
		return fmt.Sprintf("{done: true, final: %v}", r.Final)
	}
	return fmt.Sprintf("{done: false, value: %v}", r.Value)
}
