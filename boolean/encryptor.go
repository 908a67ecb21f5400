package boolean

import (
	"fmt"

	"github.com/tuneinsight/tfhe/core/glwe"
	"github.com/tuneinsight/tfhe/utils/sampling"
)

// Encryptor encrypts bits under a ClientKey. Encryptors are not safe for
// concurrent use; see ShallowCopy.
type Encryptor struct {
	ck  *ClientKey
	enc *glwe.Encryptor
}

// NewEncryptor instantiates a new Encryptor for the given client key,
// drawing randomness from the system entropy source.
func NewEncryptor(ck *ClientKey) (*Encryptor, error) {

	prng, err := sampling.NewPRNG()
	if err != nil {
		return nil, fmt.Errorf("boolean.NewEncryptor: %w", err)
	}

	enc, err := glwe.NewEncryptor(ck.params.Parameters, prng)
	if err != nil {
		return nil, fmt.Errorf("boolean.NewEncryptor: %w", err)
	}

	return &Encryptor{ck: ck, enc: enc}, nil
}

// EncryptNew encrypts the bit m: true is encoded as q/8 and false as -q/8.
func (e *Encryptor) EncryptNew(m bool) (*Ciphertext, error) {

	params := e.ck.params
	delta := params.Delta()

	pt := params.Q() - delta
	if m {
		pt = delta
	}

	ct := NewCiphertext(params)
	if err := e.enc.EncryptLwe(e.ck.lweKey, pt, &ct.Value); err != nil {
		return nil, fmt.Errorf("boolean.EncryptNew: %w", err)
	}

	return ct, nil
}

// ShallowCopy returns a new Encryptor sharing the key material of the
// receiver but with fresh buffers and samplers.
func (e *Encryptor) ShallowCopy() *Encryptor {
	return &Encryptor{ck: e.ck, enc: e.enc.ShallowCopy()}
}

// Decryptor decrypts Boolean ciphertexts with a ClientKey.
type Decryptor struct {
	ck  *ClientKey
	dec *glwe.Decryptor
}

// NewDecryptor instantiates a new Decryptor for the given client key.
func NewDecryptor(ck *ClientKey) *Decryptor {
	return &Decryptor{ck: ck, dec: glwe.NewDecryptor(ck.params.Parameters)}
}

// Decrypt returns the bit encrypted by ct: the phase is decoded as true
// when it lies in (0, q/2).
func (d *Decryptor) Decrypt(ct *Ciphertext) (bool, error) {

	params := d.ck.params

	if ct.fingerprint != params.Fingerprint() {
		return false, fmt.Errorf("boolean.Decrypt: %w", glwe.ErrParameterMismatch)
	}

	phase, err := d.dec.DecryptLwe(d.ck.lweKey, &ct.Value)
	if err != nil {
		return false, fmt.Errorf("boolean.Decrypt: %w", err)
	}

	return phase < params.Q()/2, nil
}
