package glwe

import (
	"fmt"

	"github.com/tuneinsight/tfhe/ring"
	"github.com/tuneinsight/tfhe/utils/sampling"
)

// Encryptor encrypts plaintexts under LWE or GLWE secret keys passed
// explicitly. The noise distribution is the parameters' LWE distribution
// for keys of dimension LweDimension and the GLWE distribution otherwise
// (GLWE keys and the extracted large LWE key).
// Encryptors are not safe for concurrent use; see ShallowCopy.
type Encryptor struct {
	params Parameters
	prng   sampling.PRNG

	uniformSampler      *ring.UniformSampler
	gaussianSamplerLwe  *ring.GaussianSampler
	gaussianSamplerGlwe *ring.GaussianSampler

	buffNTT ring.Poly
	buffKey ring.Poly
	buffAcc ring.Poly
}

// NewEncryptor instantiates a new Encryptor drawing its randomness from
// prng.
func NewEncryptor(params Parameters, prng sampling.PRNG) (*Encryptor, error) {

	rQ := params.RingQ()

	gLwe, err := ring.NewGaussianSampler(prng, rQ, params.XeLwe())
	if err != nil {
		return nil, fmt.Errorf("glwe.NewEncryptor: %w", err)
	}

	gGlwe, err := ring.NewGaussianSampler(prng, rQ, params.XeGlwe())
	if err != nil {
		return nil, fmt.Errorf("glwe.NewEncryptor: %w", err)
	}

	return &Encryptor{
		params:              params,
		prng:                prng,
		uniformSampler:      ring.NewUniformSampler(prng, rQ),
		gaussianSamplerLwe:  gLwe,
		gaussianSamplerGlwe: gGlwe,
		buffNTT:             ring.NewPoly(rQ.N),
		buffKey:             ring.NewPoly(rQ.N),
		buffAcc:             ring.NewPoly(rQ.N),
	}, nil
}

// GetParameters returns the parameters of the Encryptor.
func (enc *Encryptor) GetParameters() Parameters {
	return enc.params
}

// noiseSampler returns the Gaussian sampler matching the given key
// dimension.
func (enc *Encryptor) noiseSampler(keyDimension int) *ring.GaussianSampler {
	if keyDimension == enc.params.LweDimension() {
		return enc.gaussianSamplerLwe
	}
	return enc.gaussianSamplerGlwe
}

// EncryptLwe encrypts pt under sk on ct: ct = (A, <A, sk> + pt + e).
func (enc *Encryptor) EncryptLwe(sk *LweSecretKey, pt uint64, ct *LweCiphertext) error {

	n := sk.Dimension()

	if ct.Dimension() != n {
		return fmt.Errorf("glwe.EncryptLwe: ciphertext dimension %d does not match key dimension %d", ct.Dimension(), n)
	}

	rQ := enc.params.RingQ()
	q := rQ.Modulus

	b := enc.noiseSampler(n).NextUint64()
	b = ring.CRed(b+ring.BRedAdd(pt, q, rQ.BRedConstant), q)

	for i, s := range sk.Value {
		a := enc.uniformSampler.NextUint64()
		ct.A[i] = a
		if s == 1 {
			b = ring.CRed(b+a, q)
		}
	}
	ct.B = b

	return nil
}

// EncryptLweNew encrypts pt under sk and returns the resulting ciphertext.
func (enc *Encryptor) EncryptLweNew(sk *LweSecretKey, pt uint64) (*LweCiphertext, error) {
	ct := NewLweCiphertext(sk.Dimension())
	if err := enc.EncryptLwe(sk, pt, ct); err != nil {
		return nil, err
	}
	return ct, nil
}

// EncryptGlwe encrypts the plaintext polynomial pt under sk on ct. Both pt
// and ct are in the coefficient domain.
func (enc *Encryptor) EncryptGlwe(sk *GlweSecretKey, pt ring.Poly, ct *GlweCiphertext) error {

	if err := enc.EncryptZeroGlwe(sk, ct); err != nil {
		return err
	}

	rQ := enc.params.RingQ()
	rQ.Add(ct.Body(), pt, ct.Body())

	return nil
}

// EncryptZeroGlwe encrypts the zero polynomial under sk on ct.
func (enc *Encryptor) EncryptZeroGlwe(sk *GlweSecretKey, ct *GlweCiphertext) error {

	k := sk.Dimension()

	if ct.Degree() != k {
		return fmt.Errorf("glwe.EncryptZeroGlwe: ciphertext degree %d does not match key dimension %d", ct.Degree(), k)
	}

	rQ := enc.params.RingQ()

	acc := enc.buffAcc
	acc.Zero()

	for u := 0; u < k; u++ {
		enc.uniformSampler.Read(ct.Value[u])
		rQ.NTT(ct.Value[u], enc.buffNTT)
		rQ.NTT(sk.Value[u], enc.buffKey)
		rQ.MForm(enc.buffKey, enc.buffKey)
		rQ.MulCoeffsMontgomeryThenAdd(enc.buffNTT, enc.buffKey, acc)
	}

	body := ct.Body()
	rQ.INTT(acc, body)
	enc.gaussianSamplerGlwe.AddTo(body)

	return nil
}

// EncryptGlweNew encrypts pt under sk and returns the resulting ciphertext.
func (enc *Encryptor) EncryptGlweNew(sk *GlweSecretKey, pt ring.Poly) (*GlweCiphertext, error) {
	ct := NewGlweCiphertext(enc.params)
	if err := enc.EncryptGlwe(sk, pt, ct); err != nil {
		return nil, err
	}
	return ct, nil
}

// ShallowCopy returns a new Encryptor sharing the parameters of the
// receiver but with fresh buffers and samplers, drawing from the same prng.
// The prng itself must be safe for concurrent use for the copies to be
// usable concurrently.
func (enc *Encryptor) ShallowCopy() *Encryptor {
	cpy, err := NewEncryptor(enc.params, enc.prng)
	if err != nil {
		panic(err)
	}
	return cpy
}
