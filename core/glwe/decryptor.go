package glwe

import (
	"fmt"

	"github.com/tuneinsight/tfhe/ring"
)

// Decryptor computes the phase B - <A, sk> of LWE and GLWE ciphertexts.
// Decoding the phase to a message is done by the calling layer.
// Decryptors are not safe for concurrent use; see ShallowCopy.
type Decryptor struct {
	params Parameters

	buffNTT ring.Poly
	buffKey ring.Poly
	buffAcc ring.Poly
}

// NewDecryptor instantiates a new Decryptor.
func NewDecryptor(params Parameters) *Decryptor {
	N := params.N()
	return &Decryptor{
		params:  params,
		buffNTT: ring.NewPoly(N),
		buffKey: ring.NewPoly(N),
		buffAcc: ring.NewPoly(N),
	}
}

// DecryptLwe returns the phase B - <A, sk> mod q of ct.
func (dec *Decryptor) DecryptLwe(sk *LweSecretKey, ct *LweCiphertext) (uint64, error) {

	if ct.Dimension() != sk.Dimension() {
		return 0, fmt.Errorf("glwe.DecryptLwe: ciphertext dimension %d does not match key dimension %d", ct.Dimension(), sk.Dimension())
	}

	q := dec.params.Q()

	phase := ct.B
	for i, s := range sk.Value {
		if s == 1 {
			phase = ring.CRed(phase+q-ct.A[i], q)
		}
	}

	return phase, nil
}

// DecryptGlwe writes the phase polynomial B - sum A_u*S_u of ct on pt.
func (dec *Decryptor) DecryptGlwe(sk *GlweSecretKey, ct *GlweCiphertext, pt ring.Poly) error {

	k := sk.Dimension()

	if ct.Degree() != k {
		return fmt.Errorf("glwe.DecryptGlwe: ciphertext degree %d does not match key dimension %d", ct.Degree(), k)
	}

	rQ := dec.params.RingQ()

	acc := dec.buffAcc
	acc.Zero()

	for u := 0; u < k; u++ {
		rQ.NTT(ct.Value[u], dec.buffNTT)
		rQ.NTT(sk.Value[u], dec.buffKey)
		rQ.MForm(dec.buffKey, dec.buffKey)
		rQ.MulCoeffsMontgomeryThenAdd(dec.buffNTT, dec.buffKey, acc)
	}

	rQ.INTT(acc, acc)
	rQ.Sub(ct.Body(), acc, pt)

	return nil
}

// ShallowCopy returns a new Decryptor sharing the parameters of the
// receiver but with fresh buffers.
func (dec *Decryptor) ShallowCopy() *Decryptor {
	return NewDecryptor(dec.params)
}
