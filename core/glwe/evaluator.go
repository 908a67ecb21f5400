package glwe

import (
	"fmt"

	"github.com/tuneinsight/tfhe/ring"
)

// Evaluator provides the linear operations on LWE ciphertexts, the
// keyswitch and the sample extraction. Evaluators hold scratch buffers and
// are not safe for concurrent use; see ShallowCopy.
type Evaluator struct {
	params Parameters

	decomposerKs *Decomposer
	digits       []int64
}

// NewEvaluator instantiates a new Evaluator.
func NewEvaluator(params Parameters) *Evaluator {
	return &Evaluator{
		params:       params,
		decomposerKs: NewDecomposer(params.Q(), params.KsBaseLog(), params.KsLevel()),
		digits:       make([]int64, params.KsLevel()),
	}
}

// GetParameters returns the parameters of the Evaluator.
func (eval *Evaluator) GetParameters() Parameters {
	return eval.params
}

func checkDimensions(op string, cts ...*LweCiphertext) error {
	n := cts[0].Dimension()
	for _, ct := range cts[1:] {
		if ct.Dimension() != n {
			return fmt.Errorf("%s: mismatched ciphertext dimensions %d != %d", op, n, ct.Dimension())
		}
	}
	return nil
}

// AddLwe computes ctOut = ct0 + ct1.
func (eval *Evaluator) AddLwe(ct0, ct1, ctOut *LweCiphertext) error {
	if err := checkDimensions("glwe.AddLwe", ct0, ct1, ctOut); err != nil {
		return err
	}
	q := eval.params.Q()
	for i := range ctOut.A {
		ctOut.A[i] = ring.CRed(ct0.A[i]+ct1.A[i], q)
	}
	ctOut.B = ring.CRed(ct0.B+ct1.B, q)
	return nil
}

// SubLwe computes ctOut = ct0 - ct1.
func (eval *Evaluator) SubLwe(ct0, ct1, ctOut *LweCiphertext) error {
	if err := checkDimensions("glwe.SubLwe", ct0, ct1, ctOut); err != nil {
		return err
	}
	q := eval.params.Q()
	for i := range ctOut.A {
		ctOut.A[i] = ring.CRed(ct0.A[i]+q-ct1.A[i], q)
	}
	ctOut.B = ring.CRed(ct0.B+q-ct1.B, q)
	return nil
}

// NegLwe computes ctOut = -ct0.
func (eval *Evaluator) NegLwe(ct0, ctOut *LweCiphertext) error {
	if err := checkDimensions("glwe.NegLwe", ct0, ctOut); err != nil {
		return err
	}
	q := eval.params.Q()
	for i := range ctOut.A {
		if ct0.A[i] == 0 {
			ctOut.A[i] = 0
		} else {
			ctOut.A[i] = q - ct0.A[i]
		}
	}
	if ct0.B == 0 {
		ctOut.B = 0
	} else {
		ctOut.B = q - ct0.B
	}
	return nil
}

// MulLweScalar computes ctOut = ct0 * scalar.
func (eval *Evaluator) MulLweScalar(ct0 *LweCiphertext, scalar uint64, ctOut *LweCiphertext) error {
	if err := checkDimensions("glwe.MulLweScalar", ct0, ctOut); err != nil {
		return err
	}
	rQ := eval.params.RingQ()
	q := rQ.Modulus
	scalar = ring.BRedAdd(scalar, q, rQ.BRedConstant)
	for i := range ctOut.A {
		ctOut.A[i] = ring.BRed(ct0.A[i], scalar, q, rQ.BRedConstant)
	}
	ctOut.B = ring.BRed(ct0.B, scalar, q, rQ.BRedConstant)
	return nil
}

// AddLweScalar computes ctOut = ct0 + (0, scalar), i.e. adds the plaintext
// scalar on the body.
func (eval *Evaluator) AddLweScalar(ct0 *LweCiphertext, scalar uint64, ctOut *LweCiphertext) error {
	if err := checkDimensions("glwe.AddLweScalar", ct0, ctOut); err != nil {
		return err
	}
	rQ := eval.params.RingQ()
	copy(ctOut.A, ct0.A)
	ctOut.B = ring.CRed(ct0.B+ring.BRedAdd(scalar, rQ.Modulus, rQ.BRedConstant), rQ.Modulus)
	return nil
}

// SubLweScalar computes ctOut = ct0 - (0, scalar).
func (eval *Evaluator) SubLweScalar(ct0 *LweCiphertext, scalar uint64, ctOut *LweCiphertext) error {
	if err := checkDimensions("glwe.SubLweScalar", ct0, ctOut); err != nil {
		return err
	}
	rQ := eval.params.RingQ()
	q := rQ.Modulus
	copy(ctOut.A, ct0.A)
	ctOut.B = ring.CRed(ct0.B+q-ring.BRedAdd(scalar, q, rQ.BRedConstant), q)
	return nil
}

// KeySwitchLwe switches ctIn, encrypted under the input key of ksk, to the
// output key of ksk: ctOut = (0, B) - sum_ij d_ij * ksk[i][j] with d the
// signed decomposition of the mask of ctIn.
func (eval *Evaluator) KeySwitchLwe(ksk *KeySwitchingKey, ctIn, ctOut *LweCiphertext) error {

	if ctIn.Dimension() != ksk.InputDimension() {
		return fmt.Errorf("glwe.KeySwitchLwe: input dimension %d does not match key input dimension %d", ctIn.Dimension(), ksk.InputDimension())
	}

	if ctOut.Dimension() != ksk.OutputDimension() {
		return fmt.Errorf("glwe.KeySwitchLwe: output dimension %d does not match key output dimension %d", ctOut.Dimension(), ksk.OutputDimension())
	}

	if ksk.BaseLog != eval.params.KsBaseLog() || ksk.Level != eval.params.KsLevel() {
		return fmt.Errorf("glwe.KeySwitchLwe: keyswitching key gadget (baseLog=%d, level=%d) does not match parameters", ksk.BaseLog, ksk.Level)
	}

	rQ := eval.params.RingQ()
	q := rQ.Modulus
	digits := eval.digits

	for i := range ctOut.A {
		ctOut.A[i] = 0
	}
	ctOut.B = ctIn.B

	for i, a := range ctIn.A {

		if a == 0 {
			continue
		}

		eval.decomposerKs.DecomposeScalar(a, digits)

		for j, d := range digits {

			if d == 0 {
				continue
			}

			var mag uint64
			if d > 0 {
				mag = uint64(d)
			} else {
				mag = uint64(-d)
			}

			k := &ksk.Value[i][j]

			if d > 0 {
				for t := range ctOut.A {
					ctOut.A[t] = ring.CRed(ctOut.A[t]+q-ring.BRed(mag, k.A[t], q, rQ.BRedConstant), q)
				}
				ctOut.B = ring.CRed(ctOut.B+q-ring.BRed(mag, k.B, q, rQ.BRedConstant), q)
			} else {
				for t := range ctOut.A {
					ctOut.A[t] = ring.CRed(ctOut.A[t]+ring.BRed(mag, k.A[t], q, rQ.BRedConstant), q)
				}
				ctOut.B = ring.CRed(ctOut.B+ring.BRed(mag, k.B, q, rQ.BRedConstant), q)
			}
		}
	}

	return nil
}

// SampleExtract extracts the LWE encryption of the constant coefficient of
// the GLWE ciphertext ctIn on ctOut, of dimension k*N.
func (eval *Evaluator) SampleExtract(ctIn *GlweCiphertext, ctOut *LweCiphertext) error {

	k := ctIn.Degree()
	N := ctIn.N()

	if ctOut.Dimension() != k*N {
		return fmt.Errorf("glwe.SampleExtract: output dimension %d does not match extracted dimension %d", ctOut.Dimension(), k*N)
	}

	q := eval.params.Q()

	for u := 0; u < k; u++ {
		coeffs := ctIn.Value[u].Coeffs
		out := ctOut.A[u*N:]
		out[0] = coeffs[0]
		for j := 1; j < N; j++ {
			if c := coeffs[N-j]; c == 0 {
				out[j] = 0
			} else {
				out[j] = q - c
			}
		}
	}

	ctOut.B = ctIn.Body().Coeffs[0]

	return nil
}

// ShallowCopy returns a new Evaluator sharing the parameters of the
// receiver but with fresh buffers.
func (eval *Evaluator) ShallowCopy() *Evaluator {
	return NewEvaluator(eval.params)
}
