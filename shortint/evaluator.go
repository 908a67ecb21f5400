package shortint

import (
	"errors"
	"fmt"

	"github.com/tuneinsight/tfhe/core/ggsw"
	"github.com/tuneinsight/tfhe/core/glwe"
	"github.com/tuneinsight/tfhe/ring"
)

// ErrCarryOverflow is returned by the checked operations when the degrees
// of the operands no longer fit the message and carry space.
var ErrCarryOverflow = errors.New("carry space overflow")

// ErrNoiseLevelExceeded is returned by the checked operations when the
// noise levels of the operands exceed the maximum of the parameter set.
var ErrNoiseLevelExceeded = errors.New("noise level exceeded")

// Evaluator evaluates homomorphic operations over shortint ciphertexts
// using a ServerKey. The leveled operations are plain linear algebra over
// the ciphertexts and only update the degree and noise bookkeeping; the
// lookup table evaluations keyswitch down to the plain LWE key and run one
// programmable bootstrapping. Evaluators hold scratch buffers and are not
// safe for concurrent use; see ShallowCopy.
type Evaluator struct {
	params Parameters
	sk     *ServerKey
	eval   *ggsw.Evaluator

	buffPoly  ring.Poly
	buffSmall *glwe.LweCiphertext
	buffBig   *glwe.LweCiphertext

	// msgExtractAcc is the lookup table of x mod MessageModulus, used to
	// empty the carry space of an operand.
	msgExtractAcc *Accumulator
}

// NewEvaluator instantiates a new Evaluator for the given server key.
func NewEvaluator(sk *ServerKey) *Evaluator {

	params := sk.params

	eval := &Evaluator{
		params:    params,
		sk:        sk,
		eval:      ggsw.NewEvaluator(params.Parameters),
		buffPoly:  ring.NewPoly(params.N()),
		buffSmall: glwe.NewLweCiphertext(params.LweDimension()),
		buffBig:   glwe.NewLweCiphertext(params.ExtractedLweDimension()),
	}

	msgMod := params.MessageModulus()
	eval.msgExtractAcc = eval.GenerateAccumulator(func(v uint64) uint64 {
		return v % msgMod
	})

	return eval
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
		if ct.Value.Dimension() != eval.params.ExtractedLweDimension() {
			return fmt.Errorf("%s: invalid ciphertext dimension %d", op, ct.Value.Dimension())
		}
	}
	return nil
}

// UncheckedAdd computes ct0 + ct1 without bootstrapping. The result is
// correct as long as the summed degrees fit the message and carry space;
// no verification is performed.
func (eval *Evaluator) UncheckedAdd(ct0, ct1 *Ciphertext) (*Ciphertext, error) {
	if err := eval.checkCiphertexts("shortint.UncheckedAdd", ct0, ct1); err != nil {
		return nil, err
	}
	ctOut := NewCiphertext(eval.params)
	if err := eval.eval.AddLwe(&ct0.Value, &ct1.Value, &ctOut.Value); err != nil {
		return nil, fmt.Errorf("shortint.UncheckedAdd: %w", err)
	}
	ctOut.Degree = ct0.Degree + ct1.Degree
	ctOut.NoiseLevel = ct0.NoiseLevel + ct1.NoiseLevel
	return ctOut, nil
}

// UncheckedNeg computes the negation of ct without bootstrapping, by
// subtracting it from the trivial encryption of the smallest multiple of
// MessageModulus above its degree. The correcting term is a multiple of
// the message modulus, so the message is unchanged modulo MessageModulus.
func (eval *Evaluator) UncheckedNeg(ct *Ciphertext) (*Ciphertext, error) {
	if err := eval.checkCiphertexts("shortint.UncheckedNeg", ct); err != nil {
		return nil, err
	}
	z := (ct.Degree/eval.params.MessageModulus() + 1) * eval.params.MessageModulus()
	ctOut := NewCiphertext(eval.params)
	if err := eval.eval.NegLwe(&ct.Value, &ctOut.Value); err != nil {
		return nil, fmt.Errorf("shortint.UncheckedNeg: %w", err)
	}
	if err := eval.eval.AddLweScalar(&ctOut.Value, z*eval.params.Delta(), &ctOut.Value); err != nil {
		return nil, fmt.Errorf("shortint.UncheckedNeg: %w", err)
	}
	ctOut.Degree = z
	ctOut.NoiseLevel = ct.NoiseLevel
	return ctOut, nil
}

// UncheckedSub computes ct0 - ct1 without bootstrapping, as the sum of ct0
// and the negation of ct1.
func (eval *Evaluator) UncheckedSub(ct0, ct1 *Ciphertext) (*Ciphertext, error) {
	neg, err := eval.UncheckedNeg(ct1)
	if err != nil {
		return nil, fmt.Errorf("shortint.UncheckedSub: %w", err)
	}
	ctOut, err := eval.UncheckedAdd(ct0, neg)
	if err != nil {
		return nil, fmt.Errorf("shortint.UncheckedSub: %w", err)
	}
	return ctOut, nil
}

// UncheckedScalarAdd computes ct + scalar without bootstrapping, by adding
// the plaintext (scalar mod MessageModulus)*Delta on the body.
func (eval *Evaluator) UncheckedScalarAdd(ct *Ciphertext, scalar uint64) (*Ciphertext, error) {
	if err := eval.checkCiphertexts("shortint.UncheckedScalarAdd", ct); err != nil {
		return nil, err
	}
	scalar %= eval.params.MessageModulus()
	ctOut := NewCiphertext(eval.params)
	if err := eval.eval.AddLweScalar(&ct.Value, scalar*eval.params.Delta(), &ctOut.Value); err != nil {
		return nil, fmt.Errorf("shortint.UncheckedScalarAdd: %w", err)
	}
	ctOut.Degree = ct.Degree + scalar
	ctOut.NoiseLevel = ct.NoiseLevel
	return ctOut, nil
}

// UncheckedScalarMul computes ct * scalar without bootstrapping. Both the
// degree and the noise level are multiplied by the scalar.
func (eval *Evaluator) UncheckedScalarMul(ct *Ciphertext, scalar uint64) (*Ciphertext, error) {
	if err := eval.checkCiphertexts("shortint.UncheckedScalarMul", ct); err != nil {
		return nil, err
	}
	ctOut := NewCiphertext(eval.params)
	if err := eval.eval.MulLweScalar(&ct.Value, scalar, &ctOut.Value); err != nil {
		return nil, fmt.Errorf("shortint.UncheckedScalarMul: %w", err)
	}
	ctOut.Degree = ct.Degree * scalar
	ctOut.NoiseLevel = ct.NoiseLevel * NoiseLevel(scalar)
	return ctOut, nil
}

// checkedBinOp verifies that a leveled binary operation on ct0 and ct1
// stays within the carry space and the noise budget.
func (eval *Evaluator) checkedBinOp(ct0, ct1 *Ciphertext) error {
	if ct0.Degree+ct1.Degree > eval.params.MaxDegree() {
		return ErrCarryOverflow
	}
	if uint64(ct0.NoiseLevel+ct1.NoiseLevel) > eval.params.MaxNoiseLevel() {
		return ErrNoiseLevelExceeded
	}
	return nil
}

// CheckedAdd computes ct0 + ct1 after verifying that the result stays
// within the carry space and the noise budget, and returns
// ErrCarryOverflow or ErrNoiseLevelExceeded otherwise.
func (eval *Evaluator) CheckedAdd(ct0, ct1 *Ciphertext) (*Ciphertext, error) {
	if err := eval.checkCiphertexts("shortint.CheckedAdd", ct0, ct1); err != nil {
		return nil, err
	}
	if err := eval.checkedBinOp(ct0, ct1); err != nil {
		return nil, fmt.Errorf("shortint.CheckedAdd: %w", err)
	}
	return eval.UncheckedAdd(ct0, ct1)
}

// CheckedSub computes ct0 - ct1 under the same verifications as
// CheckedAdd, accounting for the correcting term of the negation.
func (eval *Evaluator) CheckedSub(ct0, ct1 *Ciphertext) (*Ciphertext, error) {
	if err := eval.checkCiphertexts("shortint.CheckedSub", ct0, ct1); err != nil {
		return nil, err
	}
	z := (ct1.Degree/eval.params.MessageModulus() + 1) * eval.params.MessageModulus()
	if ct0.Degree+z > eval.params.MaxDegree() {
		return nil, fmt.Errorf("shortint.CheckedSub: %w", ErrCarryOverflow)
	}
	if uint64(ct0.NoiseLevel+ct1.NoiseLevel) > eval.params.MaxNoiseLevel() {
		return nil, fmt.Errorf("shortint.CheckedSub: %w", ErrNoiseLevelExceeded)
	}
	return eval.UncheckedSub(ct0, ct1)
}

// SmartAdd computes ct0 + ct1, bootstrapping the operands in place first
// when their degrees or noise levels would overflow. ct0 and ct1 may be
// the same ciphertext.
func (eval *Evaluator) SmartAdd(ct0, ct1 *Ciphertext) (*Ciphertext, error) {
	if err := eval.checkCiphertexts("shortint.SmartAdd", ct0, ct1); err != nil {
		return nil, err
	}
	if eval.checkedBinOp(ct0, ct1) != nil {
		if err := eval.messageExtractInPlace(ct0); err != nil {
			return nil, fmt.Errorf("shortint.SmartAdd: %w", err)
		}
		if ct0 != ct1 {
			if err := eval.messageExtractInPlace(ct1); err != nil {
				return nil, fmt.Errorf("shortint.SmartAdd: %w", err)
			}
		}
	}
	return eval.CheckedAdd(ct0, ct1)
}

// KeyswitchProgrammableBootstrap evaluates the lookup table acc on ct: the
// ciphertext is first switched down to the plain LWE key, then blind
// rotated against the table. The result has the degree of the table and
// nominal noise.
func (eval *Evaluator) KeyswitchProgrammableBootstrap(ct *Ciphertext, acc *Accumulator) (*Ciphertext, error) {
	ctOut := NewCiphertext(eval.params)
	if err := eval.keyswitchPBS(ct, acc, ctOut); err != nil {
		return nil, fmt.Errorf("shortint.KeyswitchProgrammableBootstrap: %w", err)
	}
	return ctOut, nil
}

func (eval *Evaluator) keyswitchPBS(ct *Ciphertext, acc *Accumulator, ctOut *Ciphertext) error {

	if err := eval.checkCiphertexts("shortint", ct); err != nil {
		return err
	}

	if acc.fingerprint != eval.params.Fingerprint() {
		return glwe.ErrParameterMismatch
	}

	if err := eval.eval.KeySwitchLwe(eval.sk.Ksk, &ct.Value, eval.buffSmall); err != nil {
		return err
	}

	if err := eval.eval.Bootstrap(eval.buffSmall, acc.Glwe, eval.sk.Bsk, &ctOut.Value); err != nil {
		return err
	}

	ctOut.Degree = acc.Degree
	ctOut.NoiseLevel = NoiseLevelNominal

	return nil
}

// MessageExtract bootstraps ct with the lookup table of x mod
// MessageModulus, emptying its carry space and refreshing its noise.
func (eval *Evaluator) MessageExtract(ct *Ciphertext) (*Ciphertext, error) {
	ctOut := NewCiphertext(eval.params)
	if err := eval.keyswitchPBS(ct, eval.msgExtractAcc, ctOut); err != nil {
		return nil, fmt.Errorf("shortint.MessageExtract: %w", err)
	}
	return ctOut, nil
}

func (eval *Evaluator) messageExtractInPlace(ct *Ciphertext) error {
	return eval.keyswitchPBS(ct, eval.msgExtractAcc, ct)
}

// BivariatePBS evaluates a bivariate lookup table, generated with
// GenerateBivariateAccumulator, on the pair (ct0, ct1). Both operands must
// be carry-free; the pair is packed as ct0*MessageModulus + ct1 before a
// single bootstrapping.
func (eval *Evaluator) BivariatePBS(ct0, ct1 *Ciphertext, acc *Accumulator) (*Ciphertext, error) {

	if err := eval.checkCiphertexts("shortint.BivariatePBS", ct0, ct1); err != nil {
		return nil, err
	}

	msgMod := eval.params.MessageModulus()

	if ct0.Degree >= msgMod || ct1.Degree >= msgMod {
		return nil, fmt.Errorf("shortint.BivariatePBS: %w", ErrCarryOverflow)
	}

	shifted, err := eval.UncheckedScalarMul(ct0, msgMod)
	if err != nil {
		return nil, fmt.Errorf("shortint.BivariatePBS: %w", err)
	}

	combined, err := eval.CheckedAdd(shifted, ct1)
	if err != nil {
		return nil, fmt.Errorf("shortint.BivariatePBS: %w", err)
	}

	ctOut, err := eval.KeyswitchProgrammableBootstrap(combined, acc)
	if err != nil {
		return nil, fmt.Errorf("shortint.BivariatePBS: %w", err)
	}
	return ctOut, nil
}

// UncheckedMul computes ct0 * ct1 mod MessageModulus with one
// bootstrapping. Both operands must be carry-free.
func (eval *Evaluator) UncheckedMul(ct0, ct1 *Ciphertext) (*Ciphertext, error) {
	msgMod := eval.params.MessageModulus()
	acc := eval.GenerateBivariateAccumulator(func(x, y uint64) uint64 {
		return (x * y) % msgMod
	})
	ctOut, err := eval.BivariatePBS(ct0, ct1, acc)
	if err != nil {
		return nil, fmt.Errorf("shortint.UncheckedMul: %w", err)
	}
	return ctOut, nil
}

// SmartMul computes ct0 * ct1 mod MessageModulus, bootstrapping the
// operands in place first when their carries are not empty.
func (eval *Evaluator) SmartMul(ct0, ct1 *Ciphertext) (*Ciphertext, error) {
	if err := eval.checkCiphertexts("shortint.SmartMul", ct0, ct1); err != nil {
		return nil, err
	}
	msgMod := eval.params.MessageModulus()
	if ct0.Degree >= msgMod {
		if err := eval.messageExtractInPlace(ct0); err != nil {
			return nil, fmt.Errorf("shortint.SmartMul: %w", err)
		}
	}
	if ct1.Degree >= msgMod && ct0 != ct1 {
		if err := eval.messageExtractInPlace(ct1); err != nil {
			return nil, fmt.Errorf("shortint.SmartMul: %w", err)
		}
	}
	return eval.UncheckedMul(ct0, ct1)
}

// ShallowCopy returns a new Evaluator sharing the read-only key material
// of the receiver but with fresh buffers.
func (eval *Evaluator) ShallowCopy() *Evaluator {
	return NewEvaluator(eval.sk)
}
