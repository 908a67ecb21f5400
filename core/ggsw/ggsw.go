// Package ggsw implements GGSW ciphertexts and the operations built on
// them: the external product, the CMux and the blind-rotation based
// programmable bootstrapping.
package ggsw

import (
	"bytes"
	"fmt"
	"io"

	"github.com/tuneinsight/tfhe/core/glwe"
	"github.com/tuneinsight/tfhe/utils/buffer"
)

// GgswCiphertext is a GGSW encryption of a scalar: a (k+1) x level matrix
// of GLWE rows, where row (u, j) is a zero encryption with the gadget
// element m*g_j added on its u-th component. All rows are stored in the
// NTT and Montgomery domain.
type GgswCiphertext struct {
	Value   [][]glwe.GlweCiphertext
	BaseLog int
	Level   int
}

// NewGgswCiphertext creates a new zero GGSW ciphertext with the dimensions
// and blind rotation gadget of the given parameters.
func NewGgswCiphertext(p glwe.Parameters) *GgswCiphertext {
	value := make([][]glwe.GlweCiphertext, p.GlweDimension()+1)
	for u := range value {
		value[u] = make([]glwe.GlweCiphertext, p.PbsLevel())
		for j := range value[u] {
			value[u][j] = *glwe.NewGlweCiphertext(p)
		}
	}
	return &GgswCiphertext{Value: value, BaseLog: p.PbsBaseLog(), Level: p.PbsLevel()}
}

// Equal returns whether the two ciphertexts are identical.
func (ct *GgswCiphertext) Equal(other *GgswCiphertext) bool {
	if ct.BaseLog != other.BaseLog || ct.Level != other.Level || len(ct.Value) != len(other.Value) {
		return false
	}
	for u := range ct.Value {
		if len(ct.Value[u]) != len(other.Value[u]) {
			return false
		}
		for j := range ct.Value[u] {
			if !ct.Value[u][j].Equal(&other.Value[u][j]) {
				return false
			}
		}
	}
	return true
}

// BinarySize returns the serialized size of the ciphertext in bytes.
func (ct *GgswCiphertext) BinarySize() (size int) {
	size = 3 * 8
	for u := range ct.Value {
		for j := range ct.Value[u] {
			size += ct.Value[u][j].BinarySize()
		}
	}
	return
}

// WriteTo writes the ciphertext on w.
func (ct *GgswCiphertext) WriteTo(w io.Writer) (n int64, err error) {
	var inc int64
	for _, v := range []uint64{uint64(ct.BaseLog), uint64(ct.Level), uint64(len(ct.Value))} {
		if inc, err = buffer.WriteUint64(w, v); err != nil {
			return n + inc, fmt.Errorf("ggsw.GgswCiphertext: %w", err)
		}
		n += inc
	}
	for u := range ct.Value {
		for j := range ct.Value[u] {
			if inc, err = ct.Value[u][j].WriteTo(w); err != nil {
				return n + inc, fmt.Errorf("ggsw.GgswCiphertext: %w", err)
			}
			n += inc
		}
	}
	return
}

// ReadFrom reads the ciphertext from r.
func (ct *GgswCiphertext) ReadFrom(r io.Reader) (n int64, err error) {
	var inc int64
	var baseLog, level, rows uint64
	for _, v := range []*uint64{&baseLog, &level, &rows} {
		if inc, err = buffer.ReadUint64(r, v); err != nil {
			return n + inc, fmt.Errorf("ggsw.GgswCiphertext: %w", err)
		}
		n += inc
	}
	if baseLog < 1 || baseLog > 32 || level < 1 || level > 62 || rows < 2 || rows > 1<<16 {
		return n, fmt.Errorf("ggsw.GgswCiphertext: invalid header (baseLog=%d, level=%d, rows=%d)", baseLog, level, rows)
	}
	ct.BaseLog = int(baseLog)
	ct.Level = int(level)
	ct.Value = make([][]glwe.GlweCiphertext, rows)
	for u := range ct.Value {
		ct.Value[u] = make([]glwe.GlweCiphertext, level)
		for j := range ct.Value[u] {
			if inc, err = ct.Value[u][j].ReadFrom(r); err != nil {
				return n + inc, fmt.Errorf("ggsw.GgswCiphertext: %w", err)
			}
			n += inc
		}
	}
	return
}

// MarshalBinary encodes the ciphertext into a byte slice.
func (ct *GgswCiphertext) MarshalBinary() (data []byte, err error) {
	buf := bytes.NewBuffer(make([]byte, 0, ct.BinarySize()))
	_, err = ct.WriteTo(buf)
	return buf.Bytes(), err
}

// UnmarshalBinary decodes a byte slice generated by MarshalBinary.
func (ct *GgswCiphertext) UnmarshalBinary(data []byte) (err error) {
	_, err = ct.ReadFrom(bytes.NewReader(data))
	return
}
