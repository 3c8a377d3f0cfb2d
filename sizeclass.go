package bufpool

import (
	"math"
	"math/bits"
)

const (
	KiB = 1024
	MiB = KiB * KiB
)

// Round rounds required up to the next size-class boundary for the
// strategy. It returns false if the rounded value does not fit in an int;
// base and required are caller-controlled, so every step is overflow-checked.
func (s GrowthStrategy) Round(required, base int) (int, bool) {
	if required <= 0 || base <= 0 {
		return 0, false
	}
	switch s {
	case Linear:
		// Ceiling division without computing required+base-1, which can overflow.
		n := required / base
		if required%base != 0 {
			n++
		}
		if n > math.MaxInt/base {
			return 0, false
		}
		return n * base, true
	case Exponential:
		size := base
		for size < required {
			if size > math.MaxInt/2 {
				return 0, false
			}
			size <<= 1
		}
		return size, true
	default:
		return 0, false
	}
}

// Aligned reports whether value is a valid size-class boundary for the
// strategy, i.e. a non-zero value exactly reproduced by [GrowthStrategy.Round].
func (s GrowthStrategy) Aligned(value, base int) bool {
	if value <= 0 {
		return false
	}
	rounded, ok := s.Round(value, base)
	return ok && rounded == value
}

// classCount returns the number of size classes between base and max.
// Both bounds are assumed validated: base > 0 and max aligned for the strategy.
func (s GrowthStrategy) classCount(base, max int) int {
	switch s {
	case Linear:
		return max / base
	case Exponential:
		// max/base is a power of two, so this is floor(log2(max/base)) + 1.
		return bits.Len(uint(max / base))
	default:
		return 0
	}
}

// classIndex returns the size-class index for an aligned buffer size.
func (s GrowthStrategy) classIndex(size, base int) int {
	switch s {
	case Linear:
		return size/base - 1
	case Exponential:
		return bits.Len(uint(size/base)) - 1
	default:
		return -1
	}
}

// classSize returns the buffer size of the class at index i.
// It is the inverse of classIndex.
func (s GrowthStrategy) classSize(i, base int) int {
	switch s {
	case Linear:
		return (i + 1) * base
	case Exponential:
		return base << i
	default:
		return 0
	}
}
