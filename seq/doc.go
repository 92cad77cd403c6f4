// Package seq provides lazy, pull-based sequence combinators.
//
// A sequence is anything implementing Iterator: one element per Next call,
// then exhaustion with a final value. Stages wrap exactly one upstream
// iterator and implement Iterator themselves, so chains nest freely. No work
// happens until a consumer pulls.
//
// # Stages
//
//   - Map: transform each element
//   - Filter: keep elements matching a predicate
//   - Take: stop after a number of elements, closing upstream
//   - Drop: skip a number of elements, then pass through
//   - IndexedPairs: pair each element with a local index
//   - FlatMap: expand each element into an inner sequence, one level deep
//
// # Terminals
//
//   - Reduce, Fold: accumulate into one value
//   - ToSlice, ToSliceMax: collect in order
//   - ForEach: run a callback per element
//   - Some, Every, Find: short-circuit, closing upstream when they stop early
//
// # Usage
//
//	s := seq.FromSlice([]int{1, 2, 3, 4, 5})
//	doubled := seq.Map(s, func(n int) (int, error) { return n * 2, nil })
//	firstTwo, err := doubled.Take(2).ToSlice() // [2 4]
//
// Injected values passed to Next travel upstream unchanged through Map,
// Filter, Drop and IndexedPairs, so generator-like sources that accept
// input keep working behind a chain.
//
// Iterators are single-consumer and not safe for concurrent use.
package seq
