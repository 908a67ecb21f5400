package ring

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPoly(t *testing.T) {

	N := 32
	r := testRing(t, N)
	sampler := NewUniformSampler(testPRNG(t), r)

	t.Run("CopyEqual", func(t *testing.T) {
		p := sampler.ReadNew()
		cpy := p.CopyNew()
		require.True(t, p.Equal(cpy))
		cpy.Coeffs[0] ^= 1
		require.False(t, p.Equal(cpy))
	})

	t.Run("Zero", func(t *testing.T) {
		p := sampler.ReadNew()
		p.Zero()
		require.True(t, p.Equal(NewPoly(N)))
	})

	t.Run("Serialization", func(t *testing.T) {
		p := sampler.ReadNew()
		data, err := p.MarshalBinary()
		require.NoError(t, err)
		require.Equal(t, p.BinarySize(), len(data))

		var out Poly
		require.NoError(t, out.UnmarshalBinary(data))
		require.True(t, p.Equal(out))
	})

	t.Run("HostileLength", func(t *testing.T) {
		p := sampler.ReadNew()
		data, err := p.MarshalBinary()
		require.NoError(t, err)
		// corrupt the length prefix
		for i := 0; i < 8; i++ {
			data[i] = 0xff
		}
		var out Poly
		require.Error(t, out.UnmarshalBinary(data))
	})
}
