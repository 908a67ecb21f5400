package shortint

import (
	"math/bits"

	"github.com/tuneinsight/tfhe/core/glwe"
)

// Accumulator is the plaintext lookup table of a programmable
// bootstrapping, stored as a trivial GLWE ciphertext. The table has
// ModulusSup boxes of N/ModulusSup coefficients each, pre-rotated by half
// a box so that the nominal noise of the input lands inside the box of its
// message.
type Accumulator struct {
	Glwe *glwe.GlweCiphertext

	// Degree is the largest value the table contains.
	Degree uint64

	fingerprint uint64
}

// GenerateAccumulator builds the lookup table of f over the message and
// carry space [0, ModulusSup): bootstrapping a ciphertext of value v with
// the result evaluates f(v).
func (eval *Evaluator) GenerateAccumulator(f func(uint64) uint64) *Accumulator {

	params := eval.params

	p := params.ModulusSup()
	N := uint64(params.N())
	boxSize := N / p
	delta := params.Delta()
	q := params.Q()
	rQ := params.RingQ()

	acc := &Accumulator{
		Glwe:        glwe.NewGlweCiphertext(params.Parameters),
		fingerprint: params.Fingerprint(),
	}

	body := acc.Glwe.Body()

	for i := uint64(0); i < p; i++ {

		v := f(i)
		if v > acc.Degree {
			acc.Degree = v
		}

		// v*delta mod q
		hi, lo := bits.Mul64(v, delta)
		_, pt := bits.Div64(hi%q, lo, q)

		for j := i * boxSize; j < (i+1)*boxSize; j++ {
			body.Coeffs[j] = pt
		}
	}

	// pre-rotation by half a box: multiply by X^(-boxSize/2)
	rQ.MulByMonomial(body, int(2*N)-int(boxSize/2), eval.buffPoly)
	body.Copy(eval.buffPoly)

	return acc
}

// GenerateBivariateAccumulator builds the lookup table of f over pairs of
// messages, to be evaluated on the combination lhs*MessageModulus + rhs of
// two carry-free ciphertexts.
func (eval *Evaluator) GenerateBivariateAccumulator(f func(x, y uint64) uint64) *Accumulator {
	msgMod := eval.params.MessageModulus()
	return eval.GenerateAccumulator(func(v uint64) uint64 {
		return f((v/msgMod)%msgMod, v%msgMod)
	})
}
