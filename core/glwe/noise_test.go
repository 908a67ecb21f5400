package glwe

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNoiseVariances(t *testing.T) {

	params := testParameters(t)

	require.Greater(t, LweNoiseVariance(params), 0.0)
	require.Greater(t, GlweNoiseVariance(params), 0.0)
	require.Less(t, GlweNoiseVariance(params), LweNoiseVariance(params))

	// a full blind rotation accumulates one external product per mask
	// coordinate
	require.InDelta(t,
		float64(params.LweDimension()),
		BlindRotationNoiseVariance(params)/ExternalProductNoiseVariance(params),
		1e-9)

	require.Greater(t, KeySwitchNoiseVariance(params), 0.0)
	require.Greater(t, ModSwitchNoiseVariance(params), 0.0)
}

func TestFailureProbability(t *testing.T) {

	t.Run("Clamped", func(t *testing.T) {
		one := new(big.Float).SetFloat64(1)
		require.Equal(t, 0, FailureProbability(0, 1).Cmp(one))
	})

	t.Run("Monotone", func(t *testing.T) {
		require.Greater(t, 0, FailureProbability(10, 1).Cmp(FailureProbability(5, 1)))
	})

	t.Run("BooleanGateBudget", func(t *testing.T) {

		// the default Boolean parameter set
		params, err := NewParametersFromLiteral(ParametersLiteral{
			LweDimension:  742,
			GlweDimension: 2,
			PolyDegree:    1024,
			Q:             2013265921,
			LweStdDev:     8192,
			GlweStdDev:    2,
			PbsBaseLog:    7,
			PbsLevel:      3,
			KsBaseLog:     2,
			KsLevel:       8,
		})
		require.NoError(t, err)

		// worst-case phase noise entering the sign decision of a gate
		// bootstrap: two operand noises, the keyswitch of the previous
		// gate, the blind rotation of the previous gate and the modulus
		// switch
		variance := 2*LweNoiseVariance(params) +
			KeySwitchNoiseVariance(params) +
			BlindRotationNoiseVariance(params) +
			ModSwitchNoiseVariance(params)

		margin := float64(params.Q()) / 16

		pr := FailureProbability(margin, math.Sqrt(variance))

		budget := new(big.Float).SetMantExp(big.NewFloat(1), -40)
		require.Less(t, pr.Cmp(budget), 0)
	})
}
