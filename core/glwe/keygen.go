package glwe

import (
	"fmt"

	"github.com/tuneinsight/tfhe/ring"
	"github.com/tuneinsight/tfhe/utils/sampling"
)

// KeyGenerator generates LWE and GLWE secret keys and keyswitching keys.
// KeyGenerators are not safe for concurrent use.
type KeyGenerator struct {
	params Parameters
	prng   sampling.PRNG

	binarySampler *ring.BinarySampler
	encryptor     *Encryptor
}

// NewKeyGenerator instantiates a new KeyGenerator drawing its randomness
// from prng.
func NewKeyGenerator(params Parameters, prng sampling.PRNG) (*KeyGenerator, error) {

	binarySampler, err := ring.NewBinarySampler(prng, params.RingQ())
	if err != nil {
		return nil, fmt.Errorf("glwe.NewKeyGenerator: %w", err)
	}

	encryptor, err := NewEncryptor(params, prng)
	if err != nil {
		return nil, fmt.Errorf("glwe.NewKeyGenerator: %w", err)
	}

	return &KeyGenerator{
		params:        params,
		prng:          prng,
		binarySampler: binarySampler,
		encryptor:     encryptor,
	}, nil
}

// GenLweSecretKeyNew generates a new LWE secret key with uniform binary
// coefficients.
func (kgen *KeyGenerator) GenLweSecretKeyNew() *LweSecretKey {
	sk := NewLweSecretKey(kgen.params.LweDimension())
	for i := range sk.Value {
		sk.Value[i] = kgen.binarySampler.NextBit()
	}
	return sk
}

// GenGlweSecretKeyNew generates a new GLWE secret key with uniform binary
// coefficients.
func (kgen *KeyGenerator) GenGlweSecretKeyNew() *GlweSecretKey {
	sk := NewGlweSecretKey(kgen.params)
	for u := range sk.Value {
		kgen.binarySampler.Read(sk.Value[u])
	}
	return sk
}

// GenKeySwitchingKeyNew generates a keyswitching key from skIn to skOut:
// Value[i][j] = Enc_skOut(skIn[i] * g_j) with the keyswitching gadget.
func (kgen *KeyGenerator) GenKeySwitchingKeyNew(skIn, skOut *LweSecretKey) (*KeySwitchingKey, error) {

	p := kgen.params
	ksk := NewKeySwitchingKey(skIn.Dimension(), skOut.Dimension(), p.KsBaseLog(), p.KsLevel())

	decomposer := NewDecomposer(p.Q(), p.KsBaseLog(), p.KsLevel())
	gadget := decomposer.Gadget()

	for i, s := range skIn.Value {
		for j := 0; j < p.KsLevel(); j++ {
			var pt uint64
			if s == 1 {
				pt = gadget[j]
			}
			if err := kgen.encryptor.EncryptLwe(skOut, pt, &ksk.Value[i][j]); err != nil {
				return nil, fmt.Errorf("glwe.GenKeySwitchingKeyNew: %w", err)
			}
		}
	}

	return ksk, nil
}
