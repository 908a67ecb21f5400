// Package utils implements small generic helpers used across the library.
package utils

import (
	"math/bits"

	"golang.org/x/exp/constraints"
)

// Min returns the minimum of x and y.
func Min[T constraints.Ordered](x, y T) T {
	if x < y {
		return x
	}
	return y
}

// Max returns the maximum of x and y.
func Max[T constraints.Ordered](x, y T) T {
	if x > y {
		return x
	}
	return y
}

// BitReverse64 returns the bit-reversal of the n first bits of index.
func BitReverse64(index uint64, n int) uint64 {
	return bits.Reverse64(index) >> (64 - n)
}

// IsPowerOfTwo returns true if x is a (strictly positive) power of two.
func IsPowerOfTwo(x uint64) bool {
	return x != 0 && x&(x-1) == 0
}

// DivRound returns round(a/b) for strictly positive b.
func DivRound(a, b uint64) uint64 {
	return (a + b/2) / b
}
