// Package boolean implements homomorphic Boolean algebra: encryption of
// single bits and the evaluation of the gates NOT, AND, OR, XOR, NAND,
// NOR, XNOR and MUX over encrypted bits. Each binary gate computes a small
// linear combination of its operands followed by one programmable
// bootstrapping, so gate outputs always carry fresh noise and circuits of
// arbitrary depth can be evaluated.
package boolean

import (
	"bytes"
	"fmt"
	"io"

	"github.com/tuneinsight/tfhe/core/glwe"
	"github.com/tuneinsight/tfhe/utils"
)

// ParametersLiteral is a literal representation of Boolean parameters.
type ParametersLiteral glwe.ParametersLiteral

// DefaultParameters is a parameter set for Boolean evaluation with a
// failure probability per gate below 2^-40.
var DefaultParameters = ParametersLiteral{
	LweDimension:  742,
	GlweDimension: 2,
	PolyDegree:    1024,
	Q:             2013265921,
	LweStdDev:     8192,
	GlweStdDev:    2,
	PbsBaseLog:    7,
	PbsLevel:      3,
	KsBaseLog:     2,
	KsLevel:       8,
}

// Parameters represents a checked set of Boolean parameters.
type Parameters struct {
	glwe.Parameters
}

// NewParametersFromLiteral instantiates a set of Boolean parameters from
// the literal representation.
func NewParametersFromLiteral(pl ParametersLiteral) (Parameters, error) {
	p, err := glwe.NewParametersFromLiteral(glwe.ParametersLiteral(pl))
	if err != nil {
		return Parameters{}, fmt.Errorf("boolean.NewParametersFromLiteral: %w", err)
	}
	return Parameters{Parameters: p}, nil
}

// Delta returns the scaling factor q/8 of the Boolean encoding: true is
// encoded as Delta and false as -Delta.
func (p Parameters) Delta() uint64 {
	return utils.DivRound(p.Q(), 8)
}

// BinarySize returns the serialized size of the parameter set in bytes.
func (p Parameters) BinarySize() int {
	return p.Parameters.BinarySize()
}

// WriteTo writes the parameter set on w.
func (p Parameters) WriteTo(w io.Writer) (n int64, err error) {
	return p.Parameters.WriteTo(w)
}

// ReadFrom reads a parameter set from r.
func (p *Parameters) ReadFrom(r io.Reader) (n int64, err error) {
	return p.Parameters.ReadFrom(r)
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
