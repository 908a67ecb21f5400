package ggsw

import (
	"bytes"
	"fmt"
	"io"

	"github.com/tuneinsight/tfhe/utils/buffer"
)

// BootstrappingKey is the key material of the blind rotation: one GGSW
// encryption of each bit of the plain LWE secret key under the GLWE secret
// key.
type BootstrappingKey struct {
	Value []GgswCiphertext
}

// InputDimension returns the dimension of the LWE secret key the
// bootstrapping key encrypts.
func (bsk *BootstrappingKey) InputDimension() int {
	return len(bsk.Value)
}

// BinarySize returns the serialized size of the key in bytes.
func (bsk *BootstrappingKey) BinarySize() (size int) {
	size = 8
	for i := range bsk.Value {
		size += bsk.Value[i].BinarySize()
	}
	return
}

// WriteTo writes the key on w.
func (bsk *BootstrappingKey) WriteTo(w io.Writer) (n int64, err error) {
	var inc int64
	if n, err = buffer.WriteUint64(w, uint64(len(bsk.Value))); err != nil {
		return n, fmt.Errorf("ggsw.BootstrappingKey: %w", err)
	}
	for i := range bsk.Value {
		if inc, err = bsk.Value[i].WriteTo(w); err != nil {
			return n + inc, fmt.Errorf("ggsw.BootstrappingKey: %w", err)
		}
		n += inc
	}
	return
}

// ReadFrom reads the key from r.
func (bsk *BootstrappingKey) ReadFrom(r io.Reader) (n int64, err error) {
	var inc int64
	var size uint64
	if n, err = buffer.ReadUint64(r, &size); err != nil {
		return n, fmt.Errorf("ggsw.BootstrappingKey: %w", err)
	}
	if size > 1<<20 {
		return n, fmt.Errorf("ggsw.BootstrappingKey: invalid number of entries %d", size)
	}
	bsk.Value = make([]GgswCiphertext, size)
	for i := range bsk.Value {
		if inc, err = bsk.Value[i].ReadFrom(r); err != nil {
			return n + inc, fmt.Errorf("ggsw.BootstrappingKey: %w", err)
		}
		n += inc
	}
	return
}

// MarshalBinary encodes the key into a byte slice.
func (bsk *BootstrappingKey) MarshalBinary() (data []byte, err error) {
	buf := bytes.NewBuffer(make([]byte, 0, bsk.BinarySize()))
	_, err = bsk.WriteTo(buf)
	return buf.Bytes(), err
}

// UnmarshalBinary decodes a byte slice generated by MarshalBinary.
func (bsk *BootstrappingKey) UnmarshalBinary(data []byte) (err error) {
	_, err = bsk.ReadFrom(bytes.NewReader(data))
	return
}
