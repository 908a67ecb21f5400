package shortint

import (
	"bytes"
	"fmt"
	"io"

	"github.com/tuneinsight/tfhe/core/glwe"
	"github.com/tuneinsight/tfhe/utils/buffer"
)

// NoiseLevel counts how many nominal (fresh or freshly bootstrapped)
// noises a ciphertext has accumulated through leveled operations.
type NoiseLevel uint64

const (
	// NoiseLevelZero is the noise level of trivial ciphertexts.
	NoiseLevelZero NoiseLevel = 0

	// NoiseLevelNominal is the noise level of fresh and freshly
	// bootstrapped ciphertexts.
	NoiseLevelNominal NoiseLevel = 1
)

// Ciphertext is an LWE encryption of a message and carry value under the
// extracted large LWE key, tagged with the fingerprint of its parameter
// set and tracking its worst-case degree and noise level.
type Ciphertext struct {
	Value glwe.LweCiphertext

	// Degree is the largest message and carry value the ciphertext may
	// hold, tracked through the leveled operations.
	Degree uint64

	// NoiseLevel is the accumulated noise level of the ciphertext.
	NoiseLevel NoiseLevel

	fingerprint uint64
}

// NewCiphertext creates a new zero ciphertext for the given parameters.
func NewCiphertext(params Parameters) *Ciphertext {
	return &Ciphertext{
		Value:       *glwe.NewLweCiphertext(params.ExtractedLweDimension()),
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
	return &Ciphertext{
		Value:       *ct.Value.CopyNew(),
		Degree:      ct.Degree,
		NoiseLevel:  ct.NoiseLevel,
		fingerprint: ct.fingerprint,
	}
}

// Equal returns whether the two ciphertexts are identical.
func (ct *Ciphertext) Equal(other *Ciphertext) bool {
	return ct.fingerprint == other.fingerprint &&
		ct.Degree == other.Degree &&
		ct.NoiseLevel == other.NoiseLevel &&
		ct.Value.Equal(&other.Value)
}

// BinarySize returns the serialized size of the ciphertext in bytes.
func (ct *Ciphertext) BinarySize() int {
	return 3*8 + ct.Value.BinarySize()
}

// WriteTo writes the ciphertext on w.
func (ct *Ciphertext) WriteTo(w io.Writer) (n int64, err error) {
	var inc int64
	for _, v := range []uint64{ct.fingerprint, ct.Degree, uint64(ct.NoiseLevel)} {
		if inc, err = buffer.WriteUint64(w, v); err != nil {
			return n + inc, fmt.Errorf("shortint.Ciphertext: %w", err)
		}
		n += inc
	}
	if inc, err = ct.Value.WriteTo(w); err != nil {
		return n + inc, fmt.Errorf("shortint.Ciphertext: %w", err)
	}
	return n + inc, nil
}

// ReadFrom reads the ciphertext from r.
func (ct *Ciphertext) ReadFrom(r io.Reader) (n int64, err error) {
	var inc int64
	var noiseLevel uint64
	for _, v := range []*uint64{&ct.fingerprint, &ct.Degree, &noiseLevel} {
		if inc, err = buffer.ReadUint64(r, v); err != nil {
			return n + inc, fmt.Errorf("shortint.Ciphertext: %w", err)
		}
		n += inc
	}
	ct.NoiseLevel = NoiseLevel(noiseLevel)
	if inc, err = ct.Value.ReadFrom(r); err != nil {
		return n + inc, fmt.Errorf("shortint.Ciphertext: %w", err)
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
