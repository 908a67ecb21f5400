package shortint

import (
	"bytes"
	"fmt"
	"io"

	"github.com/tuneinsight/tfhe/core/ggsw"
	"github.com/tuneinsight/tfhe/core/glwe"
	"github.com/tuneinsight/tfhe/utils/sampling"
)

// ClientKey is the secret key material of the shortint layer. Ciphertexts
// are encrypted under the large LWE key extracted from the GLWE key; the
// plain LWE key is only reached transiently, inside the keyswitch of the
// bootstrapping pipeline.
type ClientKey struct {
	params    Parameters
	lweKey    *glwe.LweSecretKey
	glweKey   *glwe.GlweSecretKey
	bigLweKey *glwe.LweSecretKey
}

// ServerKey is the public evaluation key material of the shortint layer:
// the keyswitching key from the large key down to the plain LWE key and
// the bootstrapping key. It is read-only after generation and safe for
// concurrent use.
type ServerKey struct {
	params Parameters
	Ksk    *glwe.KeySwitchingKey
	Bsk    *ggsw.BootstrappingKey
}

// GenerateKeys generates a fresh (ClientKey, ServerKey) pair for the given
// parameters, drawing randomness from the system entropy source.
func GenerateKeys(params Parameters) (*ClientKey, *ServerKey, error) {
	prng, err := sampling.NewPRNG()
	if err != nil {
		return nil, nil, fmt.Errorf("shortint.GenerateKeys: %w", err)
	}
	return GenerateKeysWithPRNG(params, prng)
}

// GenerateKeysWithPRNG generates a fresh (ClientKey, ServerKey) pair,
// drawing randomness from prng.
func GenerateKeysWithPRNG(params Parameters, prng sampling.PRNG) (*ClientKey, *ServerKey, error) {

	kgen, err := glwe.NewKeyGenerator(params.Parameters, prng)
	if err != nil {
		return nil, nil, fmt.Errorf("shortint.GenerateKeysWithPRNG: %w", err)
	}

	ck := &ClientKey{
		params:  params,
		lweKey:  kgen.GenLweSecretKeyNew(),
		glweKey: kgen.GenGlweSecretKeyNew(),
	}
	ck.bigLweKey = glwe.ExtractLweSecretKey(ck.glweKey)

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
		return nil, fmt.Errorf("shortint.GenServerKeyWithPRNG: %w", err)
	}

	ksk, err := kgen.GenKeySwitchingKeyNew(ck.bigLweKey, ck.lweKey)
	if err != nil {
		return nil, fmt.Errorf("shortint.GenServerKeyWithPRNG: %w", err)
	}

	ggswEnc, err := ggsw.NewEncryptor(params.Parameters, prng)
	if err != nil {
		return nil, fmt.Errorf("shortint.GenServerKeyWithPRNG: %w", err)
	}

	bsk, err := ggswEnc.GenBootstrappingKeyNew(ck.lweKey, ck.glweKey)
	if err != nil {
		return nil, fmt.Errorf("shortint.GenServerKeyWithPRNG: %w", err)
	}

	return &ServerKey{params: params, Ksk: ksk, Bsk: bsk}, nil
}

// GetParameters returns the parameters of the key.
func (ck *ClientKey) GetParameters() Parameters {
	return ck.params
}

// Zeroize overwrites all secret key coefficients with zeros.
func (ck *ClientKey) Zeroize() {
	ck.lweKey.Zeroize()
	ck.glweKey.Zeroize()
	ck.bigLweKey.Zeroize()
}

// GetParameters returns the parameters of the key.
func (sk *ServerKey) GetParameters() Parameters {
	return sk.params
}

// BinarySize returns the serialized size of the key in bytes.
func (ck *ClientKey) BinarySize() int {
	return ck.params.BinarySize() + ck.lweKey.BinarySize() + ck.glweKey.BinarySize()
}

// WriteTo writes the key on w. The extracted large key is not serialized;
// it is rederived on read.
func (ck *ClientKey) WriteTo(w io.Writer) (n int64, err error) {
	var inc int64
	if n, err = ck.params.WriteTo(w); err != nil {
		return n, fmt.Errorf("shortint.ClientKey: %w", err)
	}
	if inc, err = ck.lweKey.WriteTo(w); err != nil {
		return n + inc, fmt.Errorf("shortint.ClientKey: %w", err)
	}
	n += inc
	if inc, err = ck.glweKey.WriteTo(w); err != nil {
		return n + inc, fmt.Errorf("shortint.ClientKey: %w", err)
	}
	return n + inc, nil
}

// ReadFrom reads the key from r.
func (ck *ClientKey) ReadFrom(r io.Reader) (n int64, err error) {
	var inc int64
	if n, err = ck.params.ReadFrom(r); err != nil {
		return n, fmt.Errorf("shortint.ClientKey: %w", err)
	}
	ck.lweKey = &glwe.LweSecretKey{}
	if inc, err = ck.lweKey.ReadFrom(r); err != nil {
		return n + inc, fmt.Errorf("shortint.ClientKey: %w", err)
	}
	n += inc
	ck.glweKey = &glwe.GlweSecretKey{}
	if inc, err = ck.glweKey.ReadFrom(r); err != nil {
		return n + inc, fmt.Errorf("shortint.ClientKey: %w", err)
	}
	n += inc
	ck.bigLweKey = glwe.ExtractLweSecretKey(ck.glweKey)
	return
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
	return sk.params.BinarySize() + sk.Ksk.BinarySize() + sk.Bsk.BinarySize()
}

// WriteTo writes the key on w.
func (sk *ServerKey) WriteTo(w io.Writer) (n int64, err error) {
	var inc int64
	if n, err = sk.params.WriteTo(w); err != nil {
		return n, fmt.Errorf("shortint.ServerKey: %w", err)
	}
	if inc, err = sk.Ksk.WriteTo(w); err != nil {
		return n + inc, fmt.Errorf("shortint.ServerKey: %w", err)
	}
	n += inc
	if inc, err = sk.Bsk.WriteTo(w); err != nil {
		return n + inc, fmt.Errorf("shortint.ServerKey: %w", err)
	}
	return n + inc, nil
}

// ReadFrom reads the key from r.
func (sk *ServerKey) ReadFrom(r io.Reader) (n int64, err error) {
	var inc int64
	if n, err = sk.params.ReadFrom(r); err != nil {
		return n, fmt.Errorf("shortint.ServerKey: %w", err)
	}
	sk.Ksk = &glwe.KeySwitchingKey{}
	if inc, err = sk.Ksk.ReadFrom(r); err != nil {
		return n + inc, fmt.Errorf("shortint.ServerKey: %w", err)
	}
	n += inc
	sk.Bsk = &ggsw.BootstrappingKey{}
	if inc, err = sk.Bsk.ReadFrom(r); err != nil {
		return n + inc, fmt.Errorf("shortint.ServerKey: %w", err)
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
