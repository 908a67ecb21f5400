package boolean

import (
	"bytes"
	"fmt"
	"io"

	"github.com/tuneinsight/tfhe/core/ggsw"
	"github.com/tuneinsight/tfhe/core/glwe"
	"github.com/tuneinsight/tfhe/utils/sampling"
)

// ClientKey is the secret key material of the Boolean layer: the plain LWE
// secret key under which bits are encrypted and the GLWE secret key of the
// bootstrapping accumulator.
type ClientKey struct {
	params  Parameters
	lweKey  *glwe.LweSecretKey
	glweKey *glwe.GlweSecretKey
}

// ServerKey is the public evaluation key material of the Boolean layer:
// the bootstrapping key and the keyswitching key from the extracted key
// back to the plain LWE key. It is read-only after generation and safe for
// concurrent use.
type ServerKey struct {
	params Parameters
	Bsk    *ggsw.BootstrappingKey
	Ksk    *glwe.KeySwitchingKey
}

// GenerateKeys generates a fresh (ClientKey, ServerKey) pair for the given
// parameters, drawing randomness from the system entropy source.
func GenerateKeys(params Parameters) (*ClientKey, *ServerKey, error) {
	prng, err := sampling.NewPRNG()
	if err != nil {
		return nil, nil, fmt.Errorf("boolean.GenerateKeys: %w", err)
	}
	return GenerateKeysWithPRNG(params, prng)
}

// GenerateKeysWithPRNG generates a fresh (ClientKey, ServerKey) pair,
// drawing randomness from prng. A deterministic prng yields reproducible
// keys.
func GenerateKeysWithPRNG(params Parameters, prng sampling.PRNG) (*ClientKey, *ServerKey, error) {

	kgen, err := glwe.NewKeyGenerator(params.Parameters, prng)
	if err != nil {
		return nil, nil, fmt.Errorf("boolean.GenerateKeysWithPRNG: %w", err)
	}

	ck := &ClientKey{
		params:  params,
		lweKey:  kgen.GenLweSecretKeyNew(),
		glweKey: kgen.GenGlweSecretKeyNew(),
	}

	sk, err := ck.GenServerKeyWithPRNG(prng)
	if err != nil {
		return nil, nil, err
	}

	return ck, sk, nil
}

// GenServerKeyWithPRNG generates the evaluation keys matching the client
// key, drawing randomness from prng.
func (ck *ClientKey) GenServerKeyWithPRNG(prng sampling.PRNG) (*ServerKey, error) {

	params := ck.params

	kgen, err := glwe.NewKeyGenerator(params.Parameters, prng)
	if err != nil {
		return nil, fmt.Errorf("boolean.GenServerKeyWithPRNG: %w", err)
	}

	ggswEnc, err := ggsw.NewEncryptor(params.Parameters, prng)
	if err != nil {
		return nil, fmt.Errorf("boolean.GenServerKeyWithPRNG: %w", err)
	}

	bsk, err := ggswEnc.GenBootstrappingKeyNew(ck.lweKey, ck.glweKey)
	if err != nil {
		return nil, fmt.Errorf("boolean.GenServerKeyWithPRNG: %w", err)
	}

	extracted := glwe.ExtractLweSecretKey(ck.glweKey)
	ksk, err := kgen.GenKeySwitchingKeyNew(extracted, ck.lweKey)
	extracted.Zeroize()
	if err != nil {
		return nil, fmt.Errorf("boolean.GenServerKeyWithPRNG: %w", err)
	}

	return &ServerKey{params: params, Bsk: bsk, Ksk: ksk}, nil
}

// GetParameters returns the parameters of the key.
func (ck *ClientKey) GetParameters() Parameters {
	return ck.params
}

// Zeroize overwrites all secret key coefficients with zeros.
func (ck *ClientKey) Zeroize() {
	ck.lweKey.Zeroize()
	ck.glweKey.Zeroize()
}

// GetParameters returns the parameters of the key.
func (sk *ServerKey) GetParameters() Parameters {
	return sk.params
}

// BinarySize returns the serialized size of the key in bytes.
func (ck *ClientKey) BinarySize() int {
	return ck.params.BinarySize() + ck.lweKey.BinarySize() + ck.glweKey.BinarySize()
}

// WriteTo writes the key on w.
func (ck *ClientKey) WriteTo(w io.Writer) (n int64, err error) {
	var inc int64
	if n, err = ck.params.WriteTo(w); err != nil {
		return n, fmt.Errorf("boolean.ClientKey: %w", err)
	}
	if inc, err = ck.lweKey.WriteTo(w); err != nil {
		return n + inc, fmt.Errorf("boolean.ClientKey: %w", err)
	}
	n += inc
	if inc, err = ck.glweKey.WriteTo(w); err != nil {
		return n + inc, fmt.Errorf("boolean.ClientKey: %w", err)
	}
	return n + inc, nil
}

// ReadFrom reads the key from r.
func (ck *ClientKey) ReadFrom(r io.Reader) (n int64, err error) {
	var inc int64
	if n, err = ck.params.ReadFrom(r); err != nil {
		return n, fmt.Errorf("boolean.ClientKey: %w", err)
	}
	ck.lweKey = &glwe.LweSecretKey{}
	if inc, err = ck.lweKey.ReadFrom(r); err != nil {
		return n + inc, fmt.Errorf("boolean.ClientKey: %w", err)
	}
	n += inc
	ck.glweKey = &glwe.GlweSecretKey{}
	if inc, err = ck.glweKey.ReadFrom(r); err != nil {
		return n + inc, fmt.Errorf("boolean.ClientKey: %w", err)
	}
	return n + inc, nil
}

// MarshalBinary encodes the key into a byte slice.
func (ck *ClientKey) MarshalBinary() (data []byte, err error) {
	buf := bytes.NewBuffer(make([]byte, 0, ck.BinarySize()))
	_, err = ck.WriteTo(buf)
	return buf.Bytes(), err
}

// UnmarshalBinary decodes a byte slice generated by MarshalBinary.
func (ck *ClientKey) UnmarshalBinary(data []byte) (err error) {
	_, err = ck.ReadFrom(bytes.NewReader(data))
	return
}

// BinarySize returns the serialized size of the key in bytes.
func (sk *ServerKey) BinarySize() int {
	return sk.params.BinarySize() + sk.Bsk.BinarySize() + sk.Ksk.BinarySize()
}

// WriteTo writes the key on w.
func (sk *ServerKey) WriteTo(w io.Writer) (n int64, err error) {
	var inc int64
	if n, err = sk.params.WriteTo(w); err != nil {
		return n, fmt.Errorf("boolean.ServerKey: %w", err)
	}
	if inc, err = sk.Bsk.WriteTo(w); err != nil {
		return n + inc, fmt.Errorf("boolean.ServerKey: %w", err)
	}
	n += inc
	if inc, err = sk.Ksk.WriteTo(w); err != nil {
		return n + inc, fmt.Errorf("boolean.ServerKey: %w", err)
	}
	return n + inc, nil
}

// ReadFrom reads the key from r.
func (sk *ServerKey) ReadFrom(r io.Reader) (n int64, err error) {
	var inc int64
	if n, err = sk.params.ReadFrom(r); err != nil {
		return n, fmt.Errorf("boolean.ServerKey: %w", err)
	}
	sk.Bsk = &ggsw.BootstrappingKey{}
	if inc, err = sk.Bsk.ReadFrom(r); err != nil {
		return n + inc, fmt.Errorf("boolean.ServerKey: %w", err)
	}
	n += inc
	sk.Ksk = &glwe.KeySwitchingKey{}
	if inc, err = sk.Ksk.ReadFrom(r); err != nil {
		return n + inc, fmt.Errorf("boolean.ServerKey: %w", err)
	}
	return n + inc, nil
}

// MarshalBinary encodes the key into a byte slice.
func (sk *ServerKey) MarshalBinary() (data []byte, err error) {
	buf := bytes.NewBuffer(make([]byte, 0, sk.BinarySize()))
	_, err = sk.WriteTo(buf)
	return buf.Bytes(), err
}

// UnmarshalBinary decodes a byte slice generated by MarshalBinary.
func (sk *ServerKey) UnmarshalBinary(data []byte) (err error) {
	_, err = sk.ReadFrom(bytes.NewReader(data))
	return
}
