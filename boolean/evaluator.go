package boolean

import (
	"fmt"

	"github.com/tuneinsight/tfhe/core/ggsw"
	"github.com/tuneinsight/tfhe/core/glwe"
)

// Evaluator evaluates Boolean gates over encrypted bits using a ServerKey.
// Each binary gate is one linear combination followed by one programmable
// bootstrapping and one keyswitch; NOT is a plain negation and MUX merges
// two blind rotations before a single final keyswitch. Evaluators hold
// scratch buffers and are not safe for concurrent use; see ShallowCopy.
type Evaluator struct {
	params Parameters
	sk     *ServerKey
	eval   *ggsw.Evaluator

	// testVector is the trivial GLWE ciphertext whose body has all
	// coefficients equal to q/8, so that the blind rotation outputs the
	// sign of the input phase scaled by q/8.
	testVector *glwe.GlweCiphertext

	buffLin  *glwe.LweCiphertext
	buffBig1 *glwe.LweCiphertext
	buffBig2 *glwe.LweCiphertext
}

// NewEvaluator instantiates a new Evaluator for the given server key.
func NewEvaluator(sk *ServerKey) *Evaluator {

	params := sk.params

	testVector := glwe.NewGlweCiphertext(params.Parameters)
	delta := params.Delta()
	body := testVector.Body()
	for i := range body.Coeffs {
		body.Coeffs[i] = delta
	}

	return &Evaluator{
		params:     params,
		sk:         sk,
		eval:       ggsw.NewEvaluator(params.Parameters),
		testVector: testVector,
		buffLin:    glwe.NewLweCiphertext(params.LweDimension()),
		buffBig1:   glwe.NewLweCiphertext(params.ExtractedLweDimension()),
		buffBig2:   glwe.NewLweCiphertext(params.ExtractedLweDimension()),
	}
}

// GetParameters returns the parameters of the Evaluator.
func (eval *Evaluator) GetParameters() Parameters {
	return eval.params
}

func (eval *Evaluator) checkCiphertexts(op string, cts ...*Ciphertext) error {
	for _, ct := range cts {
		if ct.fingerprint != eval.params.Fingerprint() {
			return fmt.Errorf("%s: %w", op, glwe.ErrParameterMismatch)
		}
		if ct.Value.Dimension() != eval.params.LweDimension() {
			return fmt.Errorf("%s: invalid ciphertext dimension %d", op, ct.Value.Dimension())
		}
	}
	return nil
}

// bootstrapSign runs the sign bootstrapping of lin into the large key and
// writes the extracted ciphertext on big.
func (eval *Evaluator) bootstrapSign(lin, big *glwe.LweCiphertext) error {
	return eval.eval.Bootstrap(lin, eval.testVector, eval.sk.Bsk, big)
}

// finish keyswitches big back under the plain LWE key and wraps it.
func (eval *Evaluator) finish(big *glwe.LweCiphertext) (*Ciphertext, error) {
	ctOut := NewCiphertext(eval.params)
	if err := eval.eval.KeySwitchLwe(eval.sk.Ksk, big, &ctOut.Value); err != nil {
		return nil, err
	}
	return ctOut, nil
}

// bootstrapAndKeySwitch refreshes the linear combination lin and returns
// the resulting ciphertext under the plain LWE key.
func (eval *Evaluator) bootstrapAndKeySwitch(lin *glwe.LweCiphertext) (*Ciphertext, error) {
	if err := eval.bootstrapSign(lin, eval.buffBig1); err != nil {
		return nil, err
	}
	return eval.finish(eval.buffBig1)
}

// Not computes the negation of ct. It is a plain linear operation and does
// not bootstrap.
func (eval *Evaluator) Not(ct *Ciphertext) (*Ciphertext, error) {
	if err := eval.checkCiphertexts("boolean.Not", ct); err != nil {
		return nil, err
	}
	ctOut := NewCiphertext(eval.params)
	if err := eval.eval.NegLwe(&ct.Value, &ctOut.Value); err != nil {
		return nil, fmt.Errorf("boolean.Not: %w", err)
	}
	return ctOut, nil
}

// And computes ct0 AND ct1 with one bootstrapping.
func (eval *Evaluator) And(ct0, ct1 *Ciphertext) (*Ciphertext, error) {
	if err := eval.checkCiphertexts("boolean.And", ct0, ct1); err != nil {
		return nil, err
	}
	lin := eval.buffLin
	eval.eval.AddLwe(&ct0.Value, &ct1.Value, lin)
	eval.eval.SubLweScalar(lin, eval.params.Delta(), lin)
	ct, err := eval.bootstrapAndKeySwitch(lin)
	if err != nil {
		return nil, fmt.Errorf("boolean.And: %w", err)
	}
	return ct, nil
}

// Or computes ct0 OR ct1 with one bootstrapping.
func (eval *Evaluator) Or(ct0, ct1 *Ciphertext) (*Ciphertext, error) {
	if err := eval.checkCiphertexts("boolean.Or", ct0, ct1); err != nil {
		return nil, err
	}
	lin := eval.buffLin
	eval.eval.AddLwe(&ct0.Value, &ct1.Value, lin)
	eval.eval.AddLweScalar(lin, eval.params.Delta(), lin)
	ct, err := eval.bootstrapAndKeySwitch(lin)
	if err != nil {
		return nil, fmt.Errorf("boolean.Or: %w", err)
	}
	return ct, nil
}

// Nand computes ct0 NAND ct1 with one bootstrapping.
func (eval *Evaluator) Nand(ct0, ct1 *Ciphertext) (*Ciphertext, error) {
	if err := eval.checkCiphertexts("boolean.Nand", ct0, ct1); err != nil {
		return nil, err
	}
	lin := eval.buffLin
	eval.eval.AddLwe(&ct0.Value, &ct1.Value, lin)
	eval.eval.NegLwe(lin, lin)
	eval.eval.AddLweScalar(lin, eval.params.Delta(), lin)
	ct, err := eval.bootstrapAndKeySwitch(lin)
	if err != nil {
		return nil, fmt.Errorf("boolean.Nand: %w", err)
	}
	return ct, nil
}

// Nor computes ct0 NOR ct1 with one bootstrapping.
func (eval *Evaluator) Nor(ct0, ct1 *Ciphertext) (*Ciphertext, error) {
	if err := eval.checkCiphertexts("boolean.Nor", ct0, ct1); err != nil {
		return nil, err
	}
	lin := eval.buffLin
	eval.eval.AddLwe(&ct0.Value, &ct1.Value, lin)
	eval.eval.NegLwe(lin, lin)
	eval.eval.SubLweScalar(lin, eval.params.Delta(), lin)
	ct, err := eval.bootstrapAndKeySwitch(lin)
	if err != nil {
		return nil, fmt.Errorf("boolean.Nor: %w", err)
	}
	return ct, nil
}

// Xor computes ct0 XOR ct1 with one bootstrapping.
func (eval *Evaluator) Xor(ct0, ct1 *Ciphertext) (*Ciphertext, error) {
	if err := eval.checkCiphertexts("boolean.Xor", ct0, ct1); err != nil {
		return nil, err
	}
	lin := eval.buffLin
	eval.eval.AddLwe(&ct0.Value, &ct1.Value, lin)
	eval.eval.MulLweScalar(lin, 2, lin)
	eval.eval.AddLweScalar(lin, 2*eval.params.Delta(), lin)
	ct, err := eval.bootstrapAndKeySwitch(lin)
	if err != nil {
		return nil, fmt.Errorf("boolean.Xor: %w", err)
	}
	return ct, nil
}

// Xnor computes ct0 XNOR ct1 with one bootstrapping.
func (eval *Evaluator) Xnor(ct0, ct1 *Ciphertext) (*Ciphertext, error) {
	if err := eval.checkCiphertexts("boolean.Xnor", ct0, ct1); err != nil {
		return nil, err
	}
	lin := eval.buffLin
	eval.eval.AddLwe(&ct0.Value, &ct1.Value, lin)
	eval.eval.MulLweScalar(lin, 2, lin)
	eval.eval.NegLwe(lin, lin)
	eval.eval.SubLweScalar(lin, 2*eval.params.Delta(), lin)
	ct, err := eval.bootstrapAndKeySwitch(lin)
	if err != nil {
		return nil, fmt.Errorf("boolean.Xnor: %w", err)
	}
	return ct, nil
}

// Mux computes ctSel ? ctTrue : ctFalse. It evaluates the two half-gates
// AND(ctSel, ctTrue) and AND(NOT ctSel, ctFalse) with one blind rotation
// each, merges them under the large key and performs a single final
// keyswitch, so the output noise matches that of a regular gate.
func (eval *Evaluator) Mux(ctSel, ctTrue, ctFalse *Ciphertext) (*Ciphertext, error) {

	if err := eval.checkCiphertexts("boolean.Mux", ctSel, ctTrue, ctFalse); err != nil {
		return nil, err
	}

	delta := eval.params.Delta()
	lin := eval.buffLin

	// AND(sel, t)
	eval.eval.AddLwe(&ctSel.Value, &ctTrue.Value, lin)
	eval.eval.SubLweScalar(lin, delta, lin)
	if err := eval.bootstrapSign(lin, eval.buffBig1); err != nil {
		return nil, fmt.Errorf("boolean.Mux: %w", err)
	}

	// AND(NOT sel, f)
	eval.eval.SubLwe(&ctFalse.Value, &ctSel.Value, lin)
	eval.eval.SubLweScalar(lin, delta, lin)
	if err := eval.bootstrapSign(lin, eval.buffBig2); err != nil {
		return nil, fmt.Errorf("boolean.Mux: %w", err)
	}

	// exactly one of the two half-gates encodes -q/8 + the selected bit
	eval.eval.AddLwe(eval.buffBig1, eval.buffBig2, eval.buffBig1)
	eval.eval.AddLweScalar(eval.buffBig1, delta, eval.buffBig1)

	ct, err := eval.finish(eval.buffBig1)
	if err != nil {
		return nil, fmt.Errorf("boolean.Mux: %w", err)
	}
	return ct, nil
}

// ShallowCopy returns a new Evaluator sharing the read-only key material
// of the receiver but with fresh buffers.
func (eval *Evaluator) ShallowCopy() *Evaluator {
	return NewEvaluator(eval.sk)
}
