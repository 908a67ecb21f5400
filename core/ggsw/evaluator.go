package ggsw

import (
	"fmt"
	"math/bits"

	"github.com/tuneinsight/tfhe/core/glwe"
	"github.com/tuneinsight/tfhe/ring"
)

// Evaluator implements the external product, the CMux and the programmable
// bootstrapping. It embeds a glwe.Evaluator for the linear operations, the
// keyswitch and the sample extraction. Evaluators hold scratch buffers and
// are not safe for concurrent use; see ShallowCopy.
type Evaluator struct {
	*glwe.Evaluator

	decomposerPbs *glwe.Decomposer

	buffDigits []ring.Poly
	buffNTT    ring.Poly
	buffAccNTT []ring.Poly

	buffDiff *glwe.GlweCiphertext
	buffEP   *glwe.GlweCiphertext
	buffRot  *glwe.GlweCiphertext
	buffAcc  *glwe.GlweCiphertext
}

// NewEvaluator instantiates a new Evaluator.
func NewEvaluator(params glwe.Parameters) *Evaluator {

	N := params.N()
	k := params.GlweDimension()

	buffDigits := make([]ring.Poly, params.PbsLevel())
	for j := range buffDigits {
		buffDigits[j] = ring.NewPoly(N)
	}

	buffAccNTT := make([]ring.Poly, k+1)
	for v := range buffAccNTT {
		buffAccNTT[v] = ring.NewPoly(N)
	}

	return &Evaluator{
		Evaluator:     glwe.NewEvaluator(params),
		decomposerPbs: glwe.NewDecomposer(params.Q(), params.PbsBaseLog(), params.PbsLevel()),
		buffDigits:    buffDigits,
		buffNTT:       ring.NewPoly(N),
		buffAccNTT:    buffAccNTT,
		buffDiff:      glwe.NewGlweCiphertext(params),
		buffEP:        glwe.NewGlweCiphertext(params),
		buffRot:       glwe.NewGlweCiphertext(params),
		buffAcc:       glwe.NewGlweCiphertext(params),
	}
}

// ExternalProduct computes ctOut = ggswCt x ctIn: the mask and body of
// ctIn are gadget-decomposed, switched to the NTT domain and accumulated
// against the rows of ggswCt. ctIn and ctOut may be the same ciphertext;
// both are in the coefficient domain.
func (eval *Evaluator) ExternalProduct(ggswCt *GgswCiphertext, ctIn, ctOut *glwe.GlweCiphertext) error {

	p := eval.GetParameters()
	rQ := p.RingQ()
	k := p.GlweDimension()

	if ctIn.Degree() != k || ctOut.Degree() != k {
		return fmt.Errorf("ggsw.ExternalProduct: ciphertext degree does not match parameters")
	}

	if len(ggswCt.Value) != k+1 || ggswCt.Level != p.PbsLevel() || ggswCt.BaseLog != p.PbsBaseLog() {
		return fmt.Errorf("ggsw.ExternalProduct: ggsw dimensions do not match parameters")
	}

	acc := eval.buffAccNTT
	for v := range acc {
		acc[v].Zero()
	}

	for u := 0; u <= k; u++ {

		eval.decomposerPbs.DecomposePoly(ctIn.Value[u], eval.buffDigits)

		for j := 0; j < ggswCt.Level; j++ {
			rQ.NTT(eval.buffDigits[j], eval.buffNTT)
			for v := 0; v <= k; v++ {
				rQ.MulCoeffsMontgomeryThenAdd(eval.buffNTT, ggswCt.Value[u][j].Value[v], acc[v])
			}
		}
	}

	for v := 0; v <= k; v++ {
		rQ.INTT(acc[v], ctOut.Value[v])
	}

	return nil
}

// CMux computes ctOut = ct0 + ggswCt x (ct1 - ct0): the homomorphic
// selection of ct0 (bit 0) or ct1 (bit 1). ctOut may alias ct0.
func (eval *Evaluator) CMux(ggswCt *GgswCiphertext, ct0, ct1, ctOut *glwe.GlweCiphertext) error {

	rQ := eval.GetParameters().RingQ()

	for v := range eval.buffDiff.Value {
		rQ.Sub(ct1.Value[v], ct0.Value[v], eval.buffDiff.Value[v])
	}

	if err := eval.ExternalProduct(ggswCt, eval.buffDiff, eval.buffEP); err != nil {
		return fmt.Errorf("ggsw.CMux: %w", err)
	}

	for v := range ctOut.Value {
		rQ.Add(ct0.Value[v], eval.buffEP.Value[v], ctOut.Value[v])
	}

	return nil
}

// ModSwitch switches x from Z_q to Z_2N by rounding.
func (eval *Evaluator) ModSwitch(x uint64) uint64 {
	p := eval.GetParameters()
	q := p.Q()
	twoN := uint64(2 * p.N())
	hi, lo := bits.Mul64(x, twoN)
	lo, carry := bits.Add64(lo, q>>1, 0)
	hi += carry
	v, _ := bits.Div64(hi, lo, q)
	return v & (twoN - 1)
}

// BlindRotate homomorphically rotates the accumulator acc by X^(-phase) of
// ct: acc is first rotated by the modswitched body, then one CMux per mask
// coordinate multiplies it by X^(a_i) when the corresponding secret bit is
// set. The ladder is strictly sequential; acc is modified in place.
func (eval *Evaluator) BlindRotate(ct *glwe.LweCiphertext, bsk *BootstrappingKey, acc *glwe.GlweCiphertext) error {

	p := eval.GetParameters()
	rQ := p.RingQ()
	twoN := 2 * p.N()

	if ct.Dimension() != p.LweDimension() {
		return fmt.Errorf("ggsw.BlindRotate: ciphertext dimension %d does not match parameters", ct.Dimension())
	}

	if bsk.InputDimension() != p.LweDimension() {
		return fmt.Errorf("ggsw.BlindRotate: bootstrapping key dimension %d does not match parameters", bsk.InputDimension())
	}

	if bbar := int(eval.ModSwitch(ct.B)); bbar != 0 {
		for v := range acc.Value {
			rQ.MulByMonomial(acc.Value[v], twoN-bbar, eval.buffRot.Value[v])
		}
		acc.Copy(eval.buffRot)
	}

	for i := range ct.A {

		abar := int(eval.ModSwitch(ct.A[i]))
		if abar == 0 {
			continue
		}

		for v := range acc.Value {
			rQ.MulByMonomial(acc.Value[v], abar, eval.buffRot.Value[v])
		}

		if err := eval.CMux(&bsk.Value[i], acc, eval.buffRot, acc); err != nil {
			return fmt.Errorf("ggsw.BlindRotate: %w", err)
		}
	}

	return nil
}

// Bootstrap runs the blind rotation of the test vector by ct and extracts
// the constant coefficient: ctOut is an LWE encryption, of dimension k*N,
// of the test vector coefficient selected by the phase of ct. The test
// vector is left untouched.
func (eval *Evaluator) Bootstrap(ct *glwe.LweCiphertext, testVector *glwe.GlweCiphertext, bsk *BootstrappingKey, ctOut *glwe.LweCiphertext) error {

	eval.buffAcc.Copy(testVector)

	if err := eval.BlindRotate(ct, bsk, eval.buffAcc); err != nil {
		return fmt.Errorf("ggsw.Bootstrap: %w", err)
	}

	if err := eval.SampleExtract(eval.buffAcc, ctOut); err != nil {
		return fmt.Errorf("ggsw.Bootstrap: %w", err)
	}

	return nil
}

// ShallowCopy returns a new Evaluator sharing the parameters of the
// receiver but with fresh buffers.
func (eval *Evaluator) ShallowCopy() *Evaluator {
	return NewEvaluator(eval.GetParameters())
}
