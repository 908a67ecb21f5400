package glwe

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

var testParametersLiteral = ParametersLiteral{
	LweDimension:  128,
	GlweDimension: 1,
	PolyDegree:    512,
	Q:             2013265921,
	LweStdDev:     4096,
	GlweStdDev:    2,
	PbsBaseLog:    7,
	PbsLevel:      3,
	KsBaseLog:     2,
	KsLevel:       8,
}

func TestParameters(t *testing.T) {

	t.Run("FromLiteral", func(t *testing.T) {

		params, err := NewParametersFromLiteral(testParametersLiteral)
		require.NoError(t, err)

		require.Equal(t, 128, params.LweDimension())
		require.Equal(t, 1, params.GlweDimension())
		require.Equal(t, 512, params.N())
		require.Equal(t, 512, params.ExtractedLweDimension())
		require.Equal(t, uint64(2013265921), params.Q())
		require.Equal(t, 4096.0, params.LweStdDev())
		require.Equal(t, 2.0, params.GlweStdDev())
		require.Equal(t, 7, params.PbsBaseLog())
		require.Equal(t, 3, params.PbsLevel())
		require.Equal(t, 2, params.KsBaseLog())
		require.Equal(t, 8, params.KsLevel())

		require.Empty(t, cmp.Diff(testParametersLiteral, params.ParametersLiteral()))
	})

	t.Run("InvalidLiteral", func(t *testing.T) {

		for _, tc := range []struct {
			name   string
			mutate func(*ParametersLiteral)
		}{
			{"LweDimensionZero", func(pl *ParametersLiteral) { pl.LweDimension = 0 }},
			{"GlweDimensionZero", func(pl *ParametersLiteral) { pl.GlweDimension = 0 }},
			{"PolyDegreeNotPow2", func(pl *ParametersLiteral) { pl.PolyDegree = 500 }},
			{"CompositeQ", func(pl *ParametersLiteral) { pl.Q = 1 << 31 }},
			{"NonNTTFriendlyQ", func(pl *ParametersLiteral) { pl.Q = (1 << 31) - 1 }},
			{"NegativeLweStdDev", func(pl *ParametersLiteral) { pl.LweStdDev = -1 }},
			{"ZeroGlweStdDev", func(pl *ParametersLiteral) { pl.GlweStdDev = 0 }},
			{"PbsBaseLogZero", func(pl *ParametersLiteral) { pl.PbsBaseLog = 0 }},
			{"PbsLevelZero", func(pl *ParametersLiteral) { pl.PbsLevel = 0 }},
			{"GadgetOverflow", func(pl *ParametersLiteral) { pl.KsBaseLog = 32; pl.KsLevel = 2 }},
		} {
			t.Run(tc.name, func(t *testing.T) {
				pl := testParametersLiteral
				tc.mutate(&pl)
				_, err := NewParametersFromLiteral(pl)
				require.Error(t, err)
			})
		}
	})

	t.Run("Fingerprint", func(t *testing.T) {

		paramsA, err := NewParametersFromLiteral(testParametersLiteral)
		require.NoError(t, err)
		paramsB, err := NewParametersFromLiteral(testParametersLiteral)
		require.NoError(t, err)

		require.Equal(t, paramsA.Fingerprint(), paramsB.Fingerprint())
		require.True(t, paramsA.Equal(&paramsB))

		pl := testParametersLiteral
		pl.KsLevel = 7
		paramsC, err := NewParametersFromLiteral(pl)
		require.NoError(t, err)

		require.NotEqual(t, paramsA.Fingerprint(), paramsC.Fingerprint())
		require.False(t, paramsA.Equal(&paramsC))
	})

	t.Run("Serialization", func(t *testing.T) {

		params, err := NewParametersFromLiteral(testParametersLiteral)
		require.NoError(t, err)

		data, err := params.MarshalBinary()
		require.NoError(t, err)
		require.Equal(t, params.BinarySize(), len(data))

		var out Parameters
		require.NoError(t, out.UnmarshalBinary(data))
		require.True(t, params.Equal(&out))
		require.NotNil(t, out.RingQ())
	})

	t.Run("SerializationRejectsInvalid", func(t *testing.T) {

		params, err := NewParametersFromLiteral(testParametersLiteral)
		require.NoError(t, err)

		data, err := params.MarshalBinary()
		require.NoError(t, err)

		// corrupt the modulus field
		copy(data[24:32], []byte{0, 0, 0, 0, 0, 0, 0, 6})

		var out Parameters
		require.Error(t, out.UnmarshalBinary(data))
	})
}
