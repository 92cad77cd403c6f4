package pull

import (
	"math"

	"github.com/kbukum/lazyseq/errors"
)

// Unbounded is the remaining count used for an infinite limit.
const Unbounded = math.MaxInt

// Limit truncates a Take or Drop limit toward zero. NaN counts as zero and
// +Inf as Unbounded. A negative truncated value is a range error attributed
// to op.
func Limit(op string, limit float64) (int, error) {
	if math.IsNaN(limit) {
		return 0, nil
	}
	n := math.Trunc(limit)
	if n < 0 {
		return 0, errors.InvalidLimit(op, limit)
	}
	if n >= math.MaxInt {
		return Unbounded, nil
	}
	return int(n), nil
}
