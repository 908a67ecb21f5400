package boolean

import (
	"bytes"
	"fmt"
	"io"

	"github.com/tuneinsight/tfhe/core/glwe"
	"github.com/tuneinsight/tfhe/utils/buffer"
)

// Ciphertext is an LWE encryption of a single bit under the plain LWE
// secret key, tagged with the fingerprint of its parameter set.
type Ciphertext struct {
	Value       glwe.LweCiphertext
	fingerprint uint64
}

// NewCiphertext creates a new zero ciphertext for the given parameters.
func NewCiphertext(params Parameters) *Ciphertext {
	return &Ciphertext{
		Value:       *glwe.NewLweCiphertext(params.LweDimension()),
		fingerprint: params.Fingerprint(),
	}
}

// Fingerprint returns the fingerprint of the parameter set the ciphertext
// was generated under.
func (ct *Ciphertext) Fingerprint() uint64 {
	return ct.fingerprint
}

// CopyNew returns a deep copy of the receiver.
func (ct *Ciphertext) CopyNew() *Ciphertext {
	return &Ciphertext{Value: *ct.Value.CopyNew(), fingerprint: ct.fingerprint}
}

// Equal returns whether the two ciphertexts are identical.
func (ct *Ciphertext) Equal(other *Ciphertext) bool {
	return ct.fingerprint == other.fingerprint && ct.Value.Equal(&other.Value)
}

// BinarySize returns the serialized size of the ciphertext in bytes.
func (ct *Ciphertext) BinarySize() int {
	return 8 + ct.Value.BinarySize()
}

// WriteTo writes the ciphertext on w.
func (ct *Ciphertext) WriteTo(w io.Writer) (n int64, err error) {
	var inc int64
	if n, err = buffer.WriteUint64(w, ct.fingerprint); err != nil {
		return n, fmt.Errorf("boolean.Ciphertext: %w", err)
	}
	if inc, err = ct.Value.WriteTo(w); err != nil {
		return n + inc, fmt.Errorf("boolean.Ciphertext: %w", err)
	}
	return n + inc, nil
}

// ReadFrom reads the ciphertext from r.
func (ct *Ciphertext) ReadFrom(r io.Reader) (n int64, err error) {
	var inc int64
	if n, err = buffer.ReadUint64(r, &ct.fingerprint); err != nil {
		return n, fmt.Errorf("boolean.Ciphertext: %w", err)
	}
	if inc, err = ct.Value.ReadFrom(r); err != nil {
		return n + inc, fmt.Errorf("boolean.Ciphertext: %w", err)
	}
	return n + inc, nil
}

// MarshalBinary encodes the ciphertext into a byte slice.
func (ct *Ciphertext) MarshalBinary() (data []byte, err error) {
	buf := bytes.NewBuffer(make([]byte, 0, ct.BinarySize()))
	_, err = ct.WriteTo(buf)
	return buf.Bytes(), err
}

// UnmarshalBinary decodes a byte slice generated by MarshalBinary.
func (ct *Ciphertext) UnmarshalBinary(data []byte) (err error) {
	_, err = ct.ReadFrom(bytes.NewReader(data))
	return
}
