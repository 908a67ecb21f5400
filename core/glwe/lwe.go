package glwe

import (
	"bytes"
	"fmt"
	"io"
	"slices"

	"github.com/tuneinsight/tfhe/utils/buffer"
)

// LweCiphertext is a plain LWE ciphertext (A, B) with mask A and body
// B = <A, s> + pt + e mod q.
type LweCiphertext struct {
	A []uint64
	B uint64
}

// NewLweCiphertext creates a new zero LWE ciphertext of mask dimension n.
func NewLweCiphertext(n int) *LweCiphertext {
	return &LweCiphertext{A: make([]uint64, n)}
}

// Dimension returns the mask dimension of the ciphertext.
func (ct *LweCiphertext) Dimension() int {
	return len(ct.A)
}

// Copy copies other on the receiver.
func (ct *LweCiphertext) Copy(other *LweCiphertext) {
	if len(ct.A) != len(other.A) {
		ct.A = make([]uint64, len(other.A))
	}
	copy(ct.A, other.A)
	ct.B = other.B
}

// CopyNew returns a deep copy of the receiver.
func (ct *LweCiphertext) CopyNew() *LweCiphertext {
	return &LweCiphertext{A: slices.Clone(ct.A), B: ct.B}
}

// Equal returns whether the two ciphertexts are identical.
func (ct *LweCiphertext) Equal(other *LweCiphertext) bool {
	return ct.B == other.B && slices.Equal(ct.A, other.A)
}

// BinarySize returns the serialized size of the ciphertext in bytes.
func (ct *LweCiphertext) BinarySize() int {
	return 8 + 8*len(ct.A) + 8
}

// WriteTo writes the ciphertext on w.
func (ct *LweCiphertext) WriteTo(w io.Writer) (n int64, err error) {
	var inc int64
	if n, err = buffer.WriteUint64Slice(w, ct.A); err != nil {
		return n, fmt.Errorf("glwe.LweCiphertext: %w", err)
	}
	if inc, err = buffer.WriteUint64(w, ct.B); err != nil {
		return n + inc, fmt.Errorf("glwe.LweCiphertext: %w", err)
	}
	return n + inc, nil
}

// ReadFrom reads the ciphertext from r.
func (ct *LweCiphertext) ReadFrom(r io.Reader) (n int64, err error) {
	var inc int64
	if n, err = buffer.ReadUint64Slice(r, &ct.A, MaxLweDimension); err != nil {
		return n, fmt.Errorf("glwe.LweCiphertext: %w", err)
	}
	if inc, err = buffer.ReadUint64(r, &ct.B); err != nil {
		return n + inc, fmt.Errorf("glwe.LweCiphertext: %w", err)
	}
	return n + inc, nil
}

// MarshalBinary encodes the ciphertext into a byte slice.
func (ct *LweCiphertext) MarshalBinary() (data []byte, err error) {
	buf := bytes.NewBuffer(make([]byte, 0, ct.BinarySize()))
	_, err = ct.WriteTo(buf)
	return buf.Bytes(), err
}

// UnmarshalBinary decodes a byte slice generated by MarshalBinary.
func (ct *LweCiphertext) UnmarshalBinary(data []byte) (err error) {
	_, err = ct.ReadFrom(bytes.NewReader(data))
	return
}
