// Package errors defines the error taxonomy shared by the sync and async
// sequence engines.
//
// Two kinds of engine errors exist:
//
//   - RANGE_ERROR: a Take or Drop limit is negative after truncation.
//   - TYPE_ERROR: a callback is missing, a reduction ran over an empty
//     sequence without a seed, or a value does not expose iteration.
//
// Errors returned by user callbacks are never wrapped in a SeqError; they
// surface unchanged from the pull that triggered them.
//
//	_, err := seq.FromSlice(nums).Take(-1).Next(nil)
//	if errors.IsRange(err) {
//	    // handle
//	}
package errors
