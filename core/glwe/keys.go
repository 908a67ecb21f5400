package glwe

import (
	"bytes"
	"fmt"
	"io"

	"github.com/tuneinsight/tfhe/ring"
	"github.com/tuneinsight/tfhe/utils/buffer"
)

// LweSecretKey is a plain LWE secret key with binary coefficients.
type LweSecretKey struct {
	Value []uint64
}

// NewLweSecretKey creates a new zero LWE secret key of dimension n.
func NewLweSecretKey(n int) *LweSecretKey {
	return &LweSecretKey{Value: make([]uint64, n)}
}

// Dimension returns the dimension of the secret key.
func (sk *LweSecretKey) Dimension() int {
	return len(sk.Value)
}

// Zeroize overwrites all coefficients of the secret key with zeros.
func (sk *LweSecretKey) Zeroize() {
	for i := range sk.Value {
		sk.Value[i] = 0
	}
}

// BinarySize returns the serialized size of the key in bytes.
func (sk *LweSecretKey) BinarySize() int {
	return 8 + 8*len(sk.Value)
}

// WriteTo writes the key on w.
func (sk *LweSecretKey) WriteTo(w io.Writer) (n int64, err error) {
	if n, err = buffer.WriteUint64Slice(w, sk.Value); err != nil {
		return n, fmt.Errorf("glwe.LweSecretKey: %w", err)
	}
	return
}

// ReadFrom reads the key from r.
func (sk *LweSecretKey) ReadFrom(r io.Reader) (n int64, err error) {
	if n, err = buffer.ReadUint64Slice(r, &sk.Value, MaxLweDimension); err != nil {
		return n, fmt.Errorf("glwe.LweSecretKey: %w", err)
	}
	return
}

// MarshalBinary encodes the key into a byte slice.
func (sk *LweSecretKey) MarshalBinary() (data []byte, err error) {
	buf := bytes.NewBuffer(make([]byte, 0, sk.BinarySize()))
	_, err = sk.WriteTo(buf)
	return buf.Bytes(), err
}

// UnmarshalBinary decodes a byte slice generated by MarshalBinary.
func (sk *LweSecretKey) UnmarshalBinary(data []byte) (err error) {
	_, err = sk.ReadFrom(bytes.NewReader(data))
	return
}

// GlweSecretKey is a GLWE secret key of k polynomials with binary
// coefficients, kept in the coefficient domain.
type GlweSecretKey struct {
	Value []ring.Poly
}

// NewGlweSecretKey creates a new zero GLWE secret key with the dimensions
// of the given parameters.
func NewGlweSecretKey(p Parameters) *GlweSecretKey {
	value := make([]ring.Poly, p.GlweDimension())
	for i := range value {
		value[i] = ring.NewPoly(p.N())
	}
	return &GlweSecretKey{Value: value}
}

// Dimension returns the number k of polynomials of the secret key.
func (sk *GlweSecretKey) Dimension() int {
	return len(sk.Value)
}

// Zeroize overwrites all coefficients of the secret key with zeros.
func (sk *GlweSecretKey) Zeroize() {
	for i := range sk.Value {
		sk.Value[i].Zero()
	}
}

// ExtractLweSecretKey returns the LWE secret key of dimension k*N under
// which sample-extracted LWE ciphertexts decrypt: s'[u*N+j] = S_u[j].
func ExtractLweSecretKey(sk *GlweSecretKey) *LweSecretKey {
	if len(sk.Value) == 0 {
		return &LweSecretKey{}
	}
	N := sk.Value[0].N()
	out := NewLweSecretKey(len(sk.Value) * N)
	for u := range sk.Value {
		copy(out.Value[u*N:], sk.Value[u].Coeffs)
	}
	return out
}

// BinarySize returns the serialized size of the key in bytes.
func (sk *GlweSecretKey) BinarySize() (size int) {
	size = 8
	for i := range sk.Value {
		size += sk.Value[i].BinarySize()
	}
	return
}

// WriteTo writes the key on w.
func (sk *GlweSecretKey) WriteTo(w io.Writer) (n int64, err error) {
	var inc int64
	if n, err = buffer.WriteUint64(w, uint64(len(sk.Value))); err != nil {
		return n, fmt.Errorf("glwe.GlweSecretKey: %w", err)
	}
	for i := range sk.Value {
		if inc, err = sk.Value[i].WriteTo(w); err != nil {
			return n + inc, fmt.Errorf("glwe.GlweSecretKey: %w", err)
		}
		n += inc
	}
	return
}

// ReadFrom reads the key from r.
func (sk *GlweSecretKey) ReadFrom(r io.Reader) (n int64, err error) {
	var size uint64
	var inc int64
	if n, err = buffer.ReadUint64(r, &size); err != nil {
		return n, fmt.Errorf("glwe.GlweSecretKey: %w", err)
	}
	if size < 1 || size > 1<<16 {
		return n, fmt.Errorf("glwe.GlweSecretKey: invalid number of polynomials %d", size)
	}
	if uint64(len(sk.Value)) != size {
		sk.Value = make([]ring.Poly, size)
	}
	for i := range sk.Value {
		if inc, err = sk.Value[i].ReadFrom(r); err != nil {
			return n + inc, fmt.Errorf("glwe.GlweSecretKey: %w", err)
		}
		n += inc
	}
	return
}

// MarshalBinary encodes the key into a byte slice.
func (sk *GlweSecretKey) MarshalBinary() (data []byte, err error) {
	buf := bytes.NewBuffer(make([]byte, 0, sk.BinarySize()))
	_, err = sk.WriteTo(buf)
	return buf.Bytes(), err
}

// UnmarshalBinary decodes a byte slice generated by MarshalBinary.
func (sk *GlweSecretKey) UnmarshalBinary(data []byte) (err error) {
	_, err = sk.ReadFrom(bytes.NewReader(data))
	return
}

// KeySwitchingKey is a keyswitching key from an input LWE secret key of
// dimension nIn to an output LWE secret key: Value[i][j] encrypts
// skIn[i] * g_j under the output key, where g_j are the gadget elements.
type KeySwitchingKey struct {
	Value   [][]LweCiphertext
	BaseLog int
	Level   int
}

// NewKeySwitchingKey creates a new zero keyswitching key for an input
// dimension nIn and an output dimension nOut.
func NewKeySwitchingKey(nIn, nOut, baseLog, level int) *KeySwitchingKey {
	value := make([][]LweCiphertext, nIn)
	for i := range value {
		value[i] = make([]LweCiphertext, level)
		for j := range value[i] {
			value[i][j] = LweCiphertext{A: make([]uint64, nOut)}
		}
	}
	return &KeySwitchingKey{Value: value, BaseLog: baseLog, Level: level}
}

// InputDimension returns the dimension of the input key.
func (ksk *KeySwitchingKey) InputDimension() int {
	return len(ksk.Value)
}

// OutputDimension returns the dimension of the output key.
func (ksk *KeySwitchingKey) OutputDimension() int {
	if len(ksk.Value) == 0 || len(ksk.Value[0]) == 0 {
		return 0
	}
	return len(ksk.Value[0][0].A)
}

// BinarySize returns the serialized size of the key in bytes.
func (ksk *KeySwitchingKey) BinarySize() (size int) {
	size = 8 + 8 + 8
	for i := range ksk.Value {
		for j := range ksk.Value[i] {
			size += ksk.Value[i][j].BinarySize()
		}
	}
	return
}

// WriteTo writes the key on w.
func (ksk *KeySwitchingKey) WriteTo(w io.Writer) (n int64, err error) {
	var inc int64
	for _, v := range []uint64{uint64(ksk.BaseLog), uint64(ksk.Level), uint64(len(ksk.Value))} {
		if inc, err = buffer.WriteUint64(w, v); err != nil {
			return n + inc, fmt.Errorf("glwe.KeySwitchingKey: %w", err)
		}
		n += inc
	}
	for i := range ksk.Value {
		for j := range ksk.Value[i] {
			if inc, err = ksk.Value[i][j].WriteTo(w); err != nil {
				return n + inc, fmt.Errorf("glwe.KeySwitchingKey: %w", err)
			}
			n += inc
		}
	}
	return
}

// ReadFrom reads the key from r.
func (ksk *KeySwitchingKey) ReadFrom(r io.Reader) (n int64, err error) {
	var inc int64
	var baseLog, level, nIn uint64
	for _, v := range []*uint64{&baseLog, &level, &nIn} {
		if inc, err = buffer.ReadUint64(r, v); err != nil {
			return n + inc, fmt.Errorf("glwe.KeySwitchingKey: %w", err)
		}
		n += inc
	}
	if baseLog < 1 || baseLog > 32 || level < 1 || level > 62 || nIn > MaxLweDimension {
		return n, fmt.Errorf("glwe.KeySwitchingKey: invalid header (baseLog=%d, level=%d, nIn=%d)", baseLog, level, nIn)
	}
	ksk.BaseLog = int(baseLog)
	ksk.Level = int(level)
	ksk.Value = make([][]LweCiphertext, nIn)
	for i := range ksk.Value {
		ksk.Value[i] = make([]LweCiphertext, level)
		for j := range ksk.Value[i] {
			if inc, err = ksk.Value[i][j].ReadFrom(r); err != nil {
				return n + inc, fmt.Errorf("glwe.KeySwitchingKey: %w", err)
			}
			n += inc
		}
	}
	return
}

// MarshalBinary encodes the key into a byte slice.
func (ksk *KeySwitchingKey) MarshalBinary() (data []byte, err error) {
	buf := bytes.NewBuffer(make([]byte, 0, ksk.BinarySize()))
	_, err = ksk.WriteTo(buf)
	return buf.Bytes(), err
}

// UnmarshalBinary decodes a byte slice generated by MarshalBinary.
func (ksk *KeySwitchingKey) UnmarshalBinary(data []byte) (err error) {
	_, err = ksk.ReadFrom(bytes.NewReader(data))
	return
}
