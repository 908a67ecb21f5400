package ring

import (
	"bytes"
	"fmt"
	"io"
	"slices"

	"github.com/tuneinsight/tfhe/utils/buffer"
)

// Poly is the structure that contains the coefficients of a polynomial of
// degree at most N-1, always kept reduced in [0, q).
type Poly struct {
	Coeffs []uint64
}

// NewPoly creates a new zero polynomial of degree N-1.
func NewPoly(N int) Poly {
	return Poly{Coeffs: make([]uint64, N)}
}

// N returns the number of coefficients of the polynomial.
func (pol Poly) N() int {
	return len(pol.Coeffs)
}

// Zero sets all coefficients of the receiver to zero.
func (pol Poly) Zero() {
	for i := range pol.Coeffs {
		pol.Coeffs[i] = 0
	}
}

// Copy copies the coefficients of p on the receiver.
func (pol Poly) Copy(p Poly) {
	copy(pol.Coeffs, p.Coeffs)
}

// CopyNew returns a deep copy of the receiver.
func (pol Poly) CopyNew() Poly {
	return Poly{Coeffs: slices.Clone(pol.Coeffs)}
}

// Equal returns whether the two polynomials are identical.
func (pol Poly) Equal(other Poly) bool {
	return slices.Equal(pol.Coeffs, other.Coeffs)
}

// BinarySize returns the serialized size of the polynomial in bytes.
func (pol Poly) BinarySize() int {
	return 8 + 8*len(pol.Coeffs)
}

// WriteTo writes the polynomial on w.
func (pol Poly) WriteTo(w io.Writer) (n int64, err error) {
	if n, err = buffer.WriteUint64Slice(w, pol.Coeffs); err != nil {
		return n, fmt.Errorf("ring.Poly: %w", err)
	}
	return
}

// ReadFrom reads the polynomial from r.
func (pol *Poly) ReadFrom(r io.Reader) (n int64, err error) {
	if n, err = buffer.ReadUint64Slice(r, &pol.Coeffs, MaxDegree); err != nil {
		return n, fmt.Errorf("ring.Poly: %w", err)
	}
	return
}

// MarshalBinary encodes the polynomial into a byte slice.
func (pol Poly) MarshalBinary() (data []byte, err error) {
	buf := bytes.NewBuffer(make([]byte, 0, pol.BinarySize()))
	_, err = pol.WriteTo(buf)
	return buf.Bytes(), err
}

// UnmarshalBinary decodes a byte slice generated by MarshalBinary.
func (pol *Poly) UnmarshalBinary(data []byte) (err error) {
	_, err = pol.ReadFrom(bytes.NewReader(data))
	return
}
