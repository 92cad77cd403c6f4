package pull

import "github.com/go-softwarelab/common/pkg/optional"

// Seed returns a present reduction seed. The value is kept even when it is a
// nil pointer or a nil interface: presence is decided by the caller passing
// a seed at all, never by the seed's value.
func Seed[T any](v T) optional.Value[T] {
	return optional.Some(v)
}

// NoSeed returns an absent reduction seed. Reduce then takes its accumulator
// from the first element.
func NoSeed[T any]() optional.Value[T] {
	return optional.Empty[T]()
}
