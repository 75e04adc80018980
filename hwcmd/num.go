package hwcmd

import "golang.org/x/exp/constraints"

// Clip3 clamps v to [lo, hi].
func Clip3[T constraints.Integer](lo, hi, v T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// AlignCeil rounds v up to a multiple of align. align must be a power of two.
func AlignCeil[T constraints.Unsigned](v, align T) T {
	return (v + align - 1) &^ (align - 1)
}

// Bool converts a flag to a one-bit field value.
func Bool(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// Signed returns the two's complement bit pattern of v, so that storing it
// into an n-bit field keeps the low n bits.
func Signed[T constraints.Signed](v T) uint32 {
	return uint32(int64(v))
}
