// Package shortint implements homomorphic arithmetic over small unsigned
// integers. Messages are encoded in the most significant bits of the
// ciphertext with a message space, a carry space absorbing the overflow of
// leveled operations and one bit of padding required by the programmable
// bootstrapping. Every ciphertext tracks its worst-case degree and noise
// level, and lookup tables (accumulators) are evaluated through a
// keyswitch followed by a programmable bootstrapping.
package shortint

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math/bits"

	"github.com/tuneinsight/tfhe/core/glwe"
	"github.com/tuneinsight/tfhe/utils"
	"github.com/tuneinsight/tfhe/utils/buffer"
	"github.com/zeebo/blake3"
)

// ParametersLiteral is a literal representation of shortint parameters.
type ParametersLiteral struct {
	LweDimension  int
	GlweDimension int
	PolyDegree    int
	Q             uint64
	LweStdDev     float64
	GlweStdDev    float64
	PbsBaseLog    int
	PbsLevel      int
	KsBaseLog     int
	KsLevel       int

	// MessageModulus is the size of the message space.
	MessageModulus uint64

	// CarryModulus is the size of the carry space.
	CarryModulus uint64

	// MaxNoiseLevel is the maximum number of nominal noises a ciphertext
	// may accumulate before the checked operations refuse to operate on it.
	MaxNoiseLevel uint64
}

// ParamsMessage2Carry2 is a parameter set with 2 bits of message and
// 2 bits of carry.
var ParamsMessage2Carry2 = ParametersLiteral{
	LweDimension:   742,
	GlweDimension:  1,
	PolyDegree:     2048,
	Q:              2013265921,
	LweStdDev:      8192,
	GlweStdDev:     2,
	PbsBaseLog:     8,
	PbsLevel:       3,
	KsBaseLog:      3,
	KsLevel:        5,
	MessageModulus: 4,
	CarryModulus:   4,
	MaxNoiseLevel:  5,
}

// Parameters represents a checked set of shortint parameters.
type Parameters struct {
	glwe.Parameters
	messageModulus uint64
	carryModulus   uint64
	maxNoiseLevel  uint64
	fingerprint    uint64
}

// NewParametersFromLiteral instantiates a set of shortint parameters from
// the literal representation.
func NewParametersFromLiteral(pl ParametersLiteral) (Parameters, error) {

	core, err := glwe.NewParametersFromLiteral(glwe.ParametersLiteral{
		LweDimension:  pl.LweDimension,
		GlweDimension: pl.GlweDimension,
		PolyDegree:    pl.PolyDegree,
		Q:             pl.Q,
		LweStdDev:     pl.LweStdDev,
		GlweStdDev:    pl.GlweStdDev,
		PbsBaseLog:    pl.PbsBaseLog,
		PbsLevel:      pl.PbsLevel,
		KsBaseLog:     pl.KsBaseLog,
		KsLevel:       pl.KsLevel,
	})
	if err != nil {
		return Parameters{}, fmt.Errorf("shortint.NewParametersFromLiteral: %w", err)
	}

	if pl.MessageModulus < 2 || !utils.IsPowerOfTwo(pl.MessageModulus) {
		return Parameters{}, fmt.Errorf("shortint.NewParametersFromLiteral: MessageModulus=%d must be a power of two at least 2", pl.MessageModulus)
	}

	if pl.CarryModulus < 1 || !utils.IsPowerOfTwo(pl.CarryModulus) {
		return Parameters{}, fmt.Errorf("shortint.NewParametersFromLiteral: CarryModulus=%d must be a power of two at least 1", pl.CarryModulus)
	}

	modSup := pl.MessageModulus * pl.CarryModulus

	if uint64(pl.PolyDegree)%modSup != 0 || (uint64(pl.PolyDegree)/modSup)%2 != 0 {
		return Parameters{}, fmt.Errorf("shortint.NewParametersFromLiteral: PolyDegree=%d must be a multiple of 2*MessageModulus*CarryModulus=%d", pl.PolyDegree, 2*modSup)
	}

	if pl.Q/(2*modSup) < 16 {
		return Parameters{}, fmt.Errorf("shortint.NewParametersFromLiteral: plaintext scaling factor %d too small", pl.Q/(2*modSup))
	}

	if pl.MaxNoiseLevel < 1 {
		return Parameters{}, fmt.Errorf("shortint.NewParametersFromLiteral: MaxNoiseLevel=%d must be at least 1", pl.MaxNoiseLevel)
	}

	p := Parameters{
		Parameters:     core,
		messageModulus: pl.MessageModulus,
		carryModulus:   pl.CarryModulus,
		maxNoiseLevel:  pl.MaxNoiseLevel,
	}

	var buf [32]byte
	binary.BigEndian.PutUint64(buf[0:], core.Fingerprint())
	binary.BigEndian.PutUint64(buf[8:], pl.MessageModulus)
	binary.BigEndian.PutUint64(buf[16:], pl.CarryModulus)
	binary.BigEndian.PutUint64(buf[24:], pl.MaxNoiseLevel)
	digest := blake3.Sum256(buf[:])
	p.fingerprint = binary.BigEndian.Uint64(digest[:8])

	return p, nil
}

// MessageModulus returns the size of the message space.
func (p Parameters) MessageModulus() uint64 {
	return p.messageModulus
}

// CarryModulus returns the size of the carry space.
func (p Parameters) CarryModulus() uint64 {
	return p.carryModulus
}

// ModulusSup returns the size of the full message and carry space.
func (p Parameters) ModulusSup() uint64 {
	return p.messageModulus * p.carryModulus
}

// MaxDegree returns the largest degree a ciphertext may reach while
// remaining bootstrappable, i.e. while its value stays under the padding
// bit.
func (p Parameters) MaxDegree() uint64 {
	return p.ModulusSup() - 1
}

// MaxNoiseLevel returns the maximum noise level accepted by the checked
// operations.
func (p Parameters) MaxNoiseLevel() uint64 {
	return p.maxNoiseLevel
}

// Delta returns the plaintext scaling factor q/(2*ModulusSup), with one
// bit of padding.
func (p Parameters) Delta() uint64 {
	return p.Q() / (2 * p.ModulusSup())
}

// Encode returns the plaintext m*Delta of the message and carry value m.
func (p Parameters) Encode(m uint64) uint64 {
	return (m % (2 * p.ModulusSup())) * p.Delta()
}

// Decode returns the message and carry value round(phase/Delta) mod
// 2*ModulusSup of the given phase.
func (p Parameters) Decode(phase uint64) uint64 {
	twoP := 2 * p.ModulusSup()
	hi, lo := bits.Mul64(phase, twoP)
	lo, carry := bits.Add64(lo, p.Q()>>1, 0)
	hi += carry
	v, _ := bits.Div64(hi, lo, p.Q())
	return v % twoP
}

// Fingerprint returns the 64-bit identifier of the parameter set.
func (p Parameters) Fingerprint() uint64 {
	return p.fingerprint
}

// ParametersLiteral returns the literal representation of the parameter
// set.
func (p Parameters) ParametersLiteral() ParametersLiteral {
	core := p.Parameters.ParametersLiteral()
	return ParametersLiteral{
		LweDimension:   core.LweDimension,
		GlweDimension:  core.GlweDimension,
		PolyDegree:     core.PolyDegree,
		Q:              core.Q,
		LweStdDev:      core.LweStdDev,
		GlweStdDev:     core.GlweStdDev,
		PbsBaseLog:     core.PbsBaseLog,
		PbsLevel:       core.PbsLevel,
		KsBaseLog:      core.KsBaseLog,
		KsLevel:        core.KsLevel,
		MessageModulus: p.messageModulus,
		CarryModulus:   p.carryModulus,
		MaxNoiseLevel:  p.maxNoiseLevel,
	}
}

// Equal returns whether the two parameter sets are identical.
func (p Parameters) Equal(other *Parameters) bool {
	return p.fingerprint == other.fingerprint && p.ParametersLiteral() == other.ParametersLiteral()
}

// BinarySize returns the serialized size of the parameter set in bytes.
func (p Parameters) BinarySize() int {
	return p.Parameters.BinarySize() + 24
}

// WriteTo writes the parameter set on w.
func (p Parameters) WriteTo(w io.Writer) (n int64, err error) {
	var inc int64
	if n, err = p.Parameters.WriteTo(w); err != nil {
		return n, fmt.Errorf("shortint.Parameters: %w", err)
	}
	for _, v := range []uint64{p.messageModulus, p.carryModulus, p.maxNoiseLevel} {
		if inc, err = buffer.WriteUint64(w, v); err != nil {
			return n + inc, fmt.Errorf("shortint.Parameters: %w", err)
		}
		n += inc
	}
	return
}

// ReadFrom reads a parameter set from r, re-validating all fields.
func (p *Parameters) ReadFrom(r io.Reader) (n int64, err error) {
	var core glwe.Parameters
	var inc int64
	if n, err = core.ReadFrom(r); err != nil {
		return n, fmt.Errorf("shortint.Parameters: %w", err)
	}
	var msg, carry, maxNoise uint64
	for _, v := range []*uint64{&msg, &carry, &maxNoise} {
		if inc, err = buffer.ReadUint64(r, v); err != nil {
			return n + inc, fmt.Errorf("shortint.Parameters: %w", err)
		}
		n += inc
	}
	corePl := core.ParametersLiteral()
	if *p, err = NewParametersFromLiteral(ParametersLiteral{
		LweDimension:   corePl.LweDimension,
		GlweDimension:  corePl.GlweDimension,
		PolyDegree:     corePl.PolyDegree,
		Q:              corePl.Q,
		LweStdDev:      corePl.LweStdDev,
		GlweStdDev:     corePl.GlweStdDev,
		PbsBaseLog:     corePl.PbsBaseLog,
		PbsLevel:       corePl.PbsLevel,
		KsBaseLog:      corePl.KsBaseLog,
		KsLevel:        corePl.KsLevel,
		MessageModulus: msg,
		CarryModulus:   carry,
		MaxNoiseLevel:  maxNoise,
	}); err != nil {
		return n, fmt.Errorf("shortint.Parameters: %w", err)
	}
	return
}

// MarshalBinary encodes the parameter set into a byte slice.
func (p Parameters) MarshalBinary() (data []byte, err error) {
	buf := bytes.NewBuffer(make([]byte, 0, p.BinarySize()))
	_, err = p.WriteTo(buf)
	return buf.Bytes(), err
}

// UnmarshalBinary decodes a byte slice generated by MarshalBinary.
func (p *Parameters) UnmarshalBinary(data []byte) (err error) {
	_, err = p.ReadFrom(bytes.NewReader(data))
	return
}
