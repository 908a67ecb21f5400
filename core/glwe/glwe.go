package glwe

import (
	"bytes"
	"fmt"
	"io"

	"github.com/tuneinsight/tfhe/ring"
	"github.com/tuneinsight/tfhe/utils/buffer"
)

// GlweCiphertext is a GLWE ciphertext (A_1, ..., A_k, B) of k mask
// polynomials and a body polynomial B = sum A_u*S_u + pt + e over the
// negacyclic ring. Unless stated otherwise, GLWE ciphertexts are kept in
// the coefficient domain.
type GlweCiphertext struct {
	Value []ring.Poly
}

// NewGlweCiphertext creates a new zero GLWE ciphertext with the dimensions
// of the given parameters.
func NewGlweCiphertext(p Parameters) *GlweCiphertext {
	value := make([]ring.Poly, p.GlweDimension()+1)
	for i := range value {
		value[i] = ring.NewPoly(p.N())
	}
	return &GlweCiphertext{Value: value}
}

// Degree returns the number k of mask polynomials of the ciphertext.
func (ct *GlweCiphertext) Degree() int {
	return len(ct.Value) - 1
}

// N returns the degree of the polynomials of the ciphertext.
func (ct *GlweCiphertext) N() int {
	return ct.Value[0].N()
}

// Body returns the body polynomial B of the ciphertext.
func (ct *GlweCiphertext) Body() ring.Poly {
	return ct.Value[len(ct.Value)-1]
}

// Zero sets all polynomials of the receiver to zero.
func (ct *GlweCiphertext) Zero() {
	for i := range ct.Value {
		ct.Value[i].Zero()
	}
}

// Copy copies other on the receiver.
func (ct *GlweCiphertext) Copy(other *GlweCiphertext) {
	for i := range ct.Value {
		ct.Value[i].Copy(other.Value[i])
	}
}

// CopyNew returns a deep copy of the receiver.
func (ct *GlweCiphertext) CopyNew() *GlweCiphertext {
	value := make([]ring.Poly, len(ct.Value))
	for i := range value {
		value[i] = ct.Value[i].CopyNew()
	}
	return &GlweCiphertext{Value: value}
}

// Equal returns whether the two ciphertexts are identical.
func (ct *GlweCiphertext) Equal(other *GlweCiphertext) bool {
	if len(ct.Value) != len(other.Value) {
		return false
	}
	for i := range ct.Value {
		if !ct.Value[i].Equal(other.Value[i]) {
			return false
		}
	}
	return true
}

// BinarySize returns the serialized size of the ciphertext in bytes.
func (ct *GlweCiphertext) BinarySize() (size int) {
	size = 8
	for i := range ct.Value {
		size += ct.Value[i].BinarySize()
	}
	return
}

// WriteTo writes the ciphertext on w.
func (ct *GlweCiphertext) WriteTo(w io.Writer) (n int64, err error) {
	var inc int64
	if n, err = buffer.WriteUint64(w, uint64(len(ct.Value))); err != nil {
		return n, fmt.Errorf("glwe.GlweCiphertext: %w", err)
	}
	for i := range ct.Value {
		if inc, err = ct.Value[i].WriteTo(w); err != nil {
			return n + inc, fmt.Errorf("glwe.GlweCiphertext: %w", err)
		}
		n += inc
	}
	return
}

// ReadFrom reads the ciphertext from r.
func (ct *GlweCiphertext) ReadFrom(r io.Reader) (n int64, err error) {
	var size uint64
	var inc int64
	if n, err = buffer.ReadUint64(r, &size); err != nil {
		return n, fmt.Errorf("glwe.GlweCiphertext: %w", err)
	}
	if size < 2 || size > 1<<16 {
		return n, fmt.Errorf("glwe.GlweCiphertext: invalid number of polynomials %d", size)
	}
	if uint64(len(ct.Value)) != size {
		ct.Value = make([]ring.Poly, size)
	}
	for i := range ct.Value {
		if inc, err = ct.Value[i].ReadFrom(r); err != nil {
			return n + inc, fmt.Errorf("glwe.GlweCiphertext: %w", err)
		}
		n += inc
	}
	return
}

// MarshalBinary encodes the ciphertext into a byte slice.
func (ct *GlweCiphertext) MarshalBinary() (data []byte, err error) {
	buf := bytes.NewBuffer(make([]byte, 0, ct.BinarySize()))
	_, err = ct.WriteTo(buf)
	return buf.Bytes(), err
}

// UnmarshalBinary decodes a byte slice generated by MarshalBinary.
func (ct *GlweCiphertext) UnmarshalBinary(data []byte) (err error) {
	_, err = ct.ReadFrom(bytes.NewReader(data))
	return
}
