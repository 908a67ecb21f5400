package glwe

import (
	"math"
	"math/big"

	"github.com/ALTree/bigfloat"
)

// This file implements conservative worst-case estimates of the noise
// variances accumulated by the homomorphic operations, for binary secret
// keys. All variances are expressed in squared ciphertext modulus units.

// LweNoiseVariance returns the noise variance of fresh plain LWE
// ciphertexts.
func LweNoiseVariance(p Parameters) float64 {
	return p.LweStdDev() * p.LweStdDev()
}

// GlweNoiseVariance returns the per-coefficient noise variance of fresh
// GLWE ciphertexts.
func GlweNoiseVariance(p Parameters) float64 {
	return p.GlweStdDev() * p.GlweStdDev()
}

// KeySwitchNoiseVariance returns the noise variance added by one
// keyswitch from the extracted key to the plain LWE key: the gadget noise
// of k*N*level scaled digit terms plus the decomposition residual of k*N
// mask coefficients.
func KeySwitchNoiseVariance(p Parameters) float64 {

	kN := float64(p.ExtractedLweDimension())
	level := float64(p.KsLevel())
	base := math.Exp2(float64(p.KsBaseLog()))
	q := float64(p.Q())

	gadgetVar := kN * level * (base * base / 12) * LweNoiseVariance(p)

	residual := q / (2 * math.Exp2(float64(p.KsBaseLog()*p.KsLevel())))
	residualVar := (kN / 2) * (residual * residual / 3)

	return gadgetVar + residualVar
}

// ExternalProductNoiseVariance returns the noise variance added by one
// external product with a fresh GGSW ciphertext.
func ExternalProductNoiseVariance(p Parameters) float64 {

	k := float64(p.GlweDimension())
	N := float64(p.N())
	level := float64(p.PbsLevel())
	base := math.Exp2(float64(p.PbsBaseLog()))
	q := float64(p.Q())

	gadgetVar := (k + 1) * level * N * (base * base / 12) * GlweNoiseVariance(p)

	residual := q / (2 * math.Exp2(float64(p.PbsBaseLog()*p.PbsLevel())))
	residualVar := (1 + k*N/2) * (residual * residual / 3)

	return gadgetVar + residualVar
}

// BlindRotationNoiseVariance returns the noise variance of the accumulator
// after a full blind rotation (one external product per mask coordinate).
func BlindRotationNoiseVariance(p Parameters) float64 {
	return float64(p.LweDimension()) * ExternalProductNoiseVariance(p)
}

// ModSwitchNoiseVariance returns the phase noise variance added by the
// switch of the ciphertext modulus to 2N before the blind rotation.
func ModSwitchNoiseVariance(p Parameters) float64 {
	n := float64(p.LweDimension())
	step := float64(p.Q()) / float64(2*p.N())
	return (1 + n/2) * (step * step / 12)
}

// FailureProbability returns an upper bound on the probability that a
// centered Gaussian of standard deviation sigma exceeds margin in absolute
// value, computed as 2*exp(-margin^2 / (2*sigma^2)) in arbitrary
// precision. The bound is meaningful even when it is far below the
// smallest positive float64.
func FailureProbability(margin, sigma float64) *big.Float {

	m := new(big.Float).SetPrec(128).SetFloat64(margin)
	s := new(big.Float).SetPrec(128).SetFloat64(sigma)

	x := new(big.Float).SetPrec(128).Quo(m, s)
	x.Mul(x, x)
	x.Quo(x, new(big.Float).SetPrec(128).SetFloat64(2))
	x.Neg(x)

	pr := bigfloat.Exp(x)
	pr.Mul(pr, new(big.Float).SetPrec(128).SetFloat64(2))

	one := new(big.Float).SetPrec(128).SetFloat64(1)
	if pr.Cmp(one) > 0 {
		return one
	}

	return pr
}
