package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMinMax(t *testing.T) {
	require.Equal(t, 3, Min(3, 7))
	require.Equal(t, 7, Max(3, 7))
	require.Equal(t, -1.5, Min(-1.5, 0.0))
	require.Equal(t, uint64(9), Max(uint64(9), uint64(2)))
}

func TestBitReverse64(t *testing.T) {
	require.Equal(t, uint64(0), BitReverse64(0, 3))
	require.Equal(t, uint64(4), BitReverse64(1, 3))
	require.Equal(t, uint64(1), BitReverse64(4, 3))
	require.Equal(t, uint64(3), BitReverse64(6, 3))
	require.Equal(t, uint64(7), BitReverse64(7, 3))

	// involution over the full range
	for i := uint64(0); i < 1<<6; i++ {
		require.Equal(t, i, BitReverse64(BitReverse64(i, 6), 6))
	}
}

func TestIsPowerOfTwo(t *testing.T) {
	require.False(t, IsPowerOfTwo(0))
	require.True(t, IsPowerOfTwo(1))
	require.True(t, IsPowerOfTwo(2))
	require.False(t, IsPowerOfTwo(3))
	require.True(t, IsPowerOfTwo(1<<62))
	require.False(t, IsPowerOfTwo(1<<62|1))
}

func TestDivRound(t *testing.T) {
	require.Equal(t, uint64(0), DivRound(0, 8))
	require.Equal(t, uint64(0), DivRound(3, 8))
	require.Equal(t, uint64(1), DivRound(4, 8))
	require.Equal(t, uint64(1), DivRound(11, 8))
	require.Equal(t, uint64(2), DivRound(12, 8))
}
