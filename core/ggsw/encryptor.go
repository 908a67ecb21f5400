package ggsw

import (
	"fmt"

	"github.com/tuneinsight/tfhe/core/glwe"
	"github.com/tuneinsight/tfhe/ring"
	"github.com/tuneinsight/tfhe/utils/sampling"
)

// Encryptor encrypts scalars as GGSW ciphertexts and generates
// bootstrapping keys. Encryptors are not safe for concurrent use.
type Encryptor struct {
	params  glwe.Parameters
	glweEnc *glwe.Encryptor
	gadget  []uint64
}

// NewEncryptor instantiates a new Encryptor drawing its randomness from
// prng.
func NewEncryptor(params glwe.Parameters, prng sampling.PRNG) (*Encryptor, error) {

	glweEnc, err := glwe.NewEncryptor(params, prng)
	if err != nil {
		return nil, fmt.Errorf("ggsw.NewEncryptor: %w", err)
	}

	return &Encryptor{
		params:  params,
		glweEnc: glweEnc,
		gadget:  glwe.NewDecomposer(params.Q(), params.PbsBaseLog(), params.PbsLevel()).Gadget(),
	}, nil
}

// Encrypt encrypts the scalar m under sk on ct: row (u, j) is a zero GLWE
// encryption with m*g_j added on its u-th component, then switched to the
// NTT and Montgomery domain.
func (enc *Encryptor) Encrypt(sk *glwe.GlweSecretKey, m uint64, ct *GgswCiphertext) error {

	p := enc.params
	rQ := p.RingQ()
	q := rQ.Modulus
	k := p.GlweDimension()

	if len(ct.Value) != k+1 || ct.Level != p.PbsLevel() {
		return fmt.Errorf("ggsw.Encrypt: ciphertext dimensions do not match parameters")
	}

	m = ring.BRedAdd(m, q, rQ.BRedConstant)

	for u := 0; u <= k; u++ {
		for j := 0; j < p.PbsLevel(); j++ {

			row := &ct.Value[u][j]

			if err := enc.glweEnc.EncryptZeroGlwe(sk, row); err != nil {
				return fmt.Errorf("ggsw.Encrypt: %w", err)
			}

			if m != 0 {
				t := ring.BRed(m, enc.gadget[j], q, rQ.BRedConstant)
				row.Value[u].Coeffs[0] = ring.CRed(row.Value[u].Coeffs[0]+t, q)
			}

			for v := 0; v <= k; v++ {
				rQ.NTT(row.Value[v], row.Value[v])
				rQ.MForm(row.Value[v], row.Value[v])
			}
		}
	}

	return nil
}

// EncryptNew encrypts the scalar m under sk and returns the resulting
// GGSW ciphertext.
func (enc *Encryptor) EncryptNew(sk *glwe.GlweSecretKey, m uint64) (*GgswCiphertext, error) {
	ct := NewGgswCiphertext(enc.params)
	if err := enc.Encrypt(sk, m, ct); err != nil {
		return nil, err
	}
	return ct, nil
}

// GenBootstrappingKeyNew generates the bootstrapping key from the plain
// LWE secret key to the GLWE secret key: one GGSW encryption per key bit.
func (enc *Encryptor) GenBootstrappingKeyNew(skLwe *glwe.LweSecretKey, skGlwe *glwe.GlweSecretKey) (*BootstrappingKey, error) {

	bsk := &BootstrappingKey{Value: make([]GgswCiphertext, skLwe.Dimension())}

	for i, s := range skLwe.Value {
		bsk.Value[i] = *NewGgswCiphertext(enc.params)
		if err := enc.Encrypt(skGlwe, s, &bsk.Value[i]); err != nil {
			return nil, fmt.Errorf("ggsw.GenBootstrappingKeyNew: %w", err)
		}
	}

	return bsk, nil
}

// ShallowCopy returns a new Encryptor sharing the parameters of the
// receiver but with fresh buffers and samplers.
func (enc *Encryptor) ShallowCopy() *Encryptor {
	return &Encryptor{
		params:  enc.params,
		glweEnc: enc.glweEnc.ShallowCopy(),
		gadget:  enc.gadget,
	}
}
