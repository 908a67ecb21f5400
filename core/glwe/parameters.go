// Package glwe implements the plain LWE and GLWE entities of the
// cryptosystem: parameter sets, secret keys, ciphertexts, encryption,
// decryption, gadget decomposition, keyswitching and sample extraction.
package glwe

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/tuneinsight/tfhe/ring"
	"github.com/tuneinsight/tfhe/utils/buffer"
	"github.com/zeebo/blake3"
)

// MaxLweDimension is the maximum supported LWE mask dimension.
const MaxLweDimension = 1 << 20

// ErrParameterMismatch is returned when an operation mixes entities
// generated under different parameter sets.
var ErrParameterMismatch = errors.New("mismatched parameter sets")

// ParametersLiteral is a literal representation of LWE/GLWE parameters. It
// has public fields and is used to express unchecked user-defined
// parameters literally into Go programs. The NewParametersFromLiteral
// function is used to generate the actual checked parameters from the
// literal representation.
type ParametersLiteral struct {

	// LweDimension is the dimension n of the mask of plain LWE ciphertexts.
	LweDimension int

	// GlweDimension is the number k of mask polynomials of GLWE ciphertexts.
	GlweDimension int

	// PolyDegree is the degree N of the polynomials of the GLWE ring.
	PolyDegree int

	// Q is the ciphertext modulus, a prime with Q = 1 mod 2*PolyDegree.
	Q uint64

	// LweStdDev is the standard deviation of the noise of fresh plain LWE
	// ciphertexts, in ciphertext modulus units.
	LweStdDev float64

	// GlweStdDev is the standard deviation of the noise of fresh GLWE
	// ciphertexts (and of LWE ciphertexts under the extracted key).
	GlweStdDev float64

	// PbsBaseLog is the log2 of the gadget decomposition base used by the
	// external products of the blind rotation.
	PbsBaseLog int

	// PbsLevel is the number of levels of the blind rotation gadget.
	PbsLevel int

	// KsBaseLog is the log2 of the decomposition base used by keyswitching.
	KsBaseLog int

	// KsLevel is the number of levels of the keyswitching gadget.
	KsLevel int
}

// Parameters represents a set of checked LWE/GLWE parameters, along with
// the precomputed ring tables and the parameter set fingerprint.
type Parameters struct {
	lweDimension  int
	glweDimension int
	lweStdDev     float64
	glweStdDev    float64
	pbsBaseLog    int
	pbsLevel      int
	ksBaseLog     int
	ksLevel       int
	ringQ         *ring.Ring
	fingerprint   uint64
}

// NewParametersFromLiteral instantiates a set of parameters from the
// literal representation, validating all fields eagerly.
func NewParametersFromLiteral(pl ParametersLiteral) (Parameters, error) {

	if pl.LweDimension < 1 || pl.LweDimension > MaxLweDimension {
		return Parameters{}, fmt.Errorf("invalid parameters: LweDimension=%d out of range [1, %d]", pl.LweDimension, MaxLweDimension)
	}

	if pl.GlweDimension < 1 {
		return Parameters{}, fmt.Errorf("invalid parameters: GlweDimension=%d must be at least 1", pl.GlweDimension)
	}

	if pl.GlweDimension*pl.PolyDegree > MaxLweDimension {
		return Parameters{}, fmt.Errorf("invalid parameters: extracted dimension %d out of range", pl.GlweDimension*pl.PolyDegree)
	}

	rQ, err := ring.NewRing(pl.PolyDegree, pl.Q)
	if err != nil {
		return Parameters{}, fmt.Errorf("invalid parameters: %w", err)
	}

	if pl.LweStdDev <= 0 || math.IsNaN(pl.LweStdDev) || math.IsInf(pl.LweStdDev, 0) {
		return Parameters{}, fmt.Errorf("invalid parameters: LweStdDev=%f must be finite and positive", pl.LweStdDev)
	}

	if pl.GlweStdDev <= 0 || math.IsNaN(pl.GlweStdDev) || math.IsInf(pl.GlweStdDev, 0) {
		return Parameters{}, fmt.Errorf("invalid parameters: GlweStdDev=%f must be finite and positive", pl.GlweStdDev)
	}

	for _, g := range []struct {
		name           string
		baseLog, level int
	}{
		{"Pbs", pl.PbsBaseLog, pl.PbsLevel},
		{"Ks", pl.KsBaseLog, pl.KsLevel},
	} {
		if g.baseLog < 1 || g.baseLog > 32 {
			return Parameters{}, fmt.Errorf("invalid parameters: %sBaseLog=%d out of range [1, 32]", g.name, g.baseLog)
		}
		if g.level < 1 {
			return Parameters{}, fmt.Errorf("invalid parameters: %sLevel=%d must be at least 1", g.name, g.level)
		}
		if g.baseLog*g.level > 62 {
			return Parameters{}, fmt.Errorf("invalid parameters: %sBaseLog*%sLevel=%d exceeds 62", g.name, g.name, g.baseLog*g.level)
		}
	}

	p := Parameters{
		lweDimension:  pl.LweDimension,
		glweDimension: pl.GlweDimension,
		lweStdDev:     pl.LweStdDev,
		glweStdDev:    pl.GlweStdDev,
		pbsBaseLog:    pl.PbsBaseLog,
		pbsLevel:      pl.PbsLevel,
		ksBaseLog:     pl.KsBaseLog,
		ksLevel:       pl.KsLevel,
		ringQ:         rQ,
	}

	p.fingerprint = fingerprint(pl)

	return p, nil
}

// fingerprint derives a 64-bit identifier of the parameter set from the
// blake3 hash of its canonical binary encoding.
func fingerprint(pl ParametersLiteral) uint64 {
	buf := make([]byte, 0, 80)
	for _, v := range []uint64{
		uint64(pl.LweDimension),
		uint64(pl.GlweDimension),
		uint64(pl.PolyDegree),
		pl.Q,
		math.Float64bits(pl.LweStdDev),
		math.Float64bits(pl.GlweStdDev),
		uint64(pl.PbsBaseLog),
		uint64(pl.PbsLevel),
		uint64(pl.KsBaseLog),
		uint64(pl.KsLevel),
	} {
		buf = binary.BigEndian.AppendUint64(buf, v)
	}
	digest := blake3.Sum256(buf)
	return binary.BigEndian.Uint64(digest[:8])
}

// N returns the degree of the GLWE ring.
func (p Parameters) N() int {
	return p.ringQ.N
}

// LweDimension returns the dimension n of plain LWE ciphertexts.
func (p Parameters) LweDimension() int {
	return p.lweDimension
}

// GlweDimension returns the number k of GLWE mask polynomials.
func (p Parameters) GlweDimension() int {
	return p.glweDimension
}

// ExtractedLweDimension returns the dimension k*N of LWE ciphertexts
// obtained by sample extraction.
func (p Parameters) ExtractedLweDimension() int {
	return p.glweDimension * p.ringQ.N
}

// Q returns the ciphertext modulus.
func (p Parameters) Q() uint64 {
	return p.ringQ.Modulus
}

// RingQ returns the underlying negacyclic ring.
func (p Parameters) RingQ() *ring.Ring {
	return p.ringQ
}

// LweStdDev returns the fresh noise standard deviation of plain LWE
// ciphertexts.
func (p Parameters) LweStdDev() float64 {
	return p.lweStdDev
}

// GlweStdDev returns the fresh noise standard deviation of GLWE
// ciphertexts.
func (p Parameters) GlweStdDev() float64 {
	return p.glweStdDev
}

// XeLwe returns the fresh noise distribution of plain LWE ciphertexts.
func (p Parameters) XeLwe() ring.DiscreteGaussian {
	return ring.DiscreteGaussian{Sigma: p.lweStdDev, Bound: 6 * p.lweStdDev}
}

// XeGlwe returns the fresh noise distribution of GLWE ciphertexts.
func (p Parameters) XeGlwe() ring.DiscreteGaussian {
	return ring.DiscreteGaussian{Sigma: p.glweStdDev, Bound: 6 * p.glweStdDev}
}

// PbsBaseLog returns the log2 of the blind rotation gadget base.
func (p Parameters) PbsBaseLog() int {
	return p.pbsBaseLog
}

// PbsLevel returns the number of levels of the blind rotation gadget.
func (p Parameters) PbsLevel() int {
	return p.pbsLevel
}

// KsBaseLog returns the log2 of the keyswitching gadget base.
func (p Parameters) KsBaseLog() int {
	return p.ksBaseLog
}

// KsLevel returns the number of levels of the keyswitching gadget.
func (p Parameters) KsLevel() int {
	return p.ksLevel
}

// Fingerprint returns the 64-bit identifier of the parameter set.
func (p Parameters) Fingerprint() uint64 {
	return p.fingerprint
}

// ParametersLiteral returns the literal representation of the parameter set.
func (p Parameters) ParametersLiteral() ParametersLiteral {
	return ParametersLiteral{
		LweDimension:  p.lweDimension,
		GlweDimension: p.glweDimension,
		PolyDegree:    p.ringQ.N,
		Q:             p.ringQ.Modulus,
		LweStdDev:     p.lweStdDev,
		GlweStdDev:    p.glweStdDev,
		PbsBaseLog:    p.pbsBaseLog,
		PbsLevel:      p.pbsLevel,
		KsBaseLog:     p.ksBaseLog,
		KsLevel:       p.ksLevel,
	}
}

// Equal returns whether the two parameter sets are identical.
func (p Parameters) Equal(other *Parameters) bool {
	return p.fingerprint == other.fingerprint && p.ParametersLiteral() == other.ParametersLiteral()
}

// BinarySize returns the serialized size of the parameter set in bytes.
func (p Parameters) BinarySize() int {
	return 80
}

// WriteTo writes the parameter set on w.
func (p Parameters) WriteTo(w io.Writer) (n int64, err error) {
	pl := p.ParametersLiteral()
	for _, v := range []uint64{
		uint64(pl.LweDimension),
		uint64(pl.GlweDimension),
		uint64(pl.PolyDegree),
		pl.Q,
		math.Float64bits(pl.LweStdDev),
		math.Float64bits(pl.GlweStdDev),
		uint64(pl.PbsBaseLog),
		uint64(pl.PbsLevel),
		uint64(pl.KsBaseLog),
		uint64(pl.KsLevel),
	} {
		var inc int64
		if inc, err = buffer.WriteUint64(w, v); err != nil {
			return n + inc, fmt.Errorf("glwe.Parameters: %w", err)
		}
		n += inc
	}
	return
}

// ReadFrom reads a parameter set from r, re-validating all fields.
func (p *Parameters) ReadFrom(r io.Reader) (n int64, err error) {
	var v [10]uint64
	for i := range v {
		var inc int64
		if inc, err = buffer.ReadUint64(r, &v[i]); err != nil {
			return n + inc, fmt.Errorf("glwe.Parameters: %w", err)
		}
		n += inc
	}
	pl := ParametersLiteral{
		LweDimension:  int(v[0]),
		GlweDimension: int(v[1]),
		PolyDegree:    int(v[2]),
		Q:             v[3],
		LweStdDev:     math.Float64frombits(v[4]),
		GlweStdDev:    math.Float64frombits(v[5]),
		PbsBaseLog:    int(v[6]),
		PbsLevel:      int(v[7]),
		KsBaseLog:     int(v[8]),
		KsLevel:       int(v[9]),
	}
	if *p, err = NewParametersFromLiteral(pl); err != nil {
		return n, fmt.Errorf("glwe.Parameters: %w", err)
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
