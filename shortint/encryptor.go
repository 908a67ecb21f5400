package shortint

import (
	"fmt"

	"github.com/tuneinsight/tfhe/core/glwe"
	"github.com/tuneinsight/tfhe/utils/sampling"
)

// Encryptor encrypts shortint messages under a ClientKey. Encryptors are
// not safe for concurrent use; see ShallowCopy.
type Encryptor struct {
	ck  *ClientKey
	enc *glwe.Encryptor
}

// NewEncryptor instantiates a new Encryptor for the given client key,
// drawing randomness from the system entropy source.
func NewEncryptor(ck *ClientKey) (*Encryptor, error) {

	prng, err := sampling.NewPRNG()
	if err != nil {
		return nil, fmt.Errorf("shortint.NewEncryptor: %w", err)
	}

	enc, err := glwe.NewEncryptor(ck.params.Parameters, prng)
	if err != nil {
		return nil, fmt.Errorf("shortint.NewEncryptor: %w", err)
	}

	return &Encryptor{ck: ck, enc: enc}, nil
}

// EncryptNew encrypts the message m mod MessageModulus under the large LWE
// key. The resulting ciphertext has an empty carry, degree
// MessageModulus-1 and nominal noise.
func (e *Encryptor) EncryptNew(m uint64) (*Ciphertext, error) {

	params := e.ck.params
	m %= params.MessageModulus()

	ct := NewCiphertext(params)
	if err := e.enc.EncryptLwe(e.ck.bigLweKey, params.Encode(m), &ct.Value); err != nil {
		return nil, fmt.Errorf("shortint.EncryptNew: %w", err)
	}
	ct.Degree = params.MessageModulus() - 1
	ct.NoiseLevel = NoiseLevelNominal

	return ct, nil
}

// ShallowCopy returns a new Encryptor sharing the key material of the
// receiver but with fresh buffers and samplers.
func (e *Encryptor) ShallowCopy() *Encryptor {
	return &Encryptor{ck: e.ck, enc: e.enc.ShallowCopy()}
}

// Decryptor decrypts shortint ciphertexts with a ClientKey.
type Decryptor struct {
	ck  *ClientKey
	dec *glwe.Decryptor
}

// NewDecryptor instantiates a new Decryptor for the given client key.
func NewDecryptor(ck *ClientKey) *Decryptor {
	return &Decryptor{ck: ck, dec: glwe.NewDecryptor(ck.params.Parameters)}
}

// DecryptMessageAndCarry returns the full message and carry value of ct.
func (d *Decryptor) DecryptMessageAndCarry(ct *Ciphertext) (uint64, error) {

	params := d.ck.params

	if ct.fingerprint != params.Fingerprint() {
		return 0, fmt.Errorf("shortint.DecryptMessageAndCarry: %w", glwe.ErrParameterMismatch)
	}

	phase, err := d.dec.DecryptLwe(d.ck.bigLweKey, &ct.Value)
	if err != nil {
		return 0, fmt.Errorf("shortint.DecryptMessageAndCarry: %w", err)
	}

	return params.Decode(phase), nil
}

// Decrypt returns the message of ct, with the carry discarded.
func (d *Decryptor) Decrypt(ct *Ciphertext) (uint64, error) {
	m, err := d.DecryptMessageAndCarry(ct)
	if err != nil {
		return 0, fmt.Errorf("shortint.Decrypt: %w", err)
	}
	return m % d.ck.params.MessageModulus(), nil
}
