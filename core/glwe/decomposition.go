package glwe

import (
	"math/bits"

	"github.com/tuneinsight/tfhe/ring"
)

// Decomposer computes the signed gadget decomposition in base 2^baseLog
// with the given number of levels: a value a of Z_q is mapped to digits
// d_0, ..., d_{level-1} in [-B/2, B/2) such that sum d_j * g_j is the
// closest approximation of a representable by the gadget, with
// g_j = round(q / B^(j+1)).
type Decomposer struct {
	q        uint64
	baseLog  int
	level    int
	base     uint64
	halfBase uint64
	lastPow  uint64
	gadget   []uint64
	scratch  []int64
}

// NewDecomposer creates a new Decomposer for the modulus q.
// baseLog*level must not exceed 62.
func NewDecomposer(q uint64, baseLog, level int) *Decomposer {

	gadget := make([]uint64, level)
	pow := uint64(1)
	for j := 0; j < level; j++ {
		pow <<= uint(baseLog)
		gadget[j] = (q + pow/2) / pow
	}

	return &Decomposer{
		q:        q,
		baseLog:  baseLog,
		level:    level,
		base:     1 << uint(baseLog),
		halfBase: 1 << uint(baseLog-1),
		lastPow:  pow,
		gadget:   gadget,
		scratch:  make([]int64, level),
	}
}

// Level returns the number of levels of the gadget.
func (d *Decomposer) Level() int {
	return d.level
}

// Gadget returns the gadget elements g_j = round(q / B^(j+1)).
func (d *Decomposer) Gadget() []uint64 {
	return d.gadget
}

// DecomposeScalar writes the signed digits of a on digits, which must have
// length level. digits[0] pairs with the largest gadget element g_0.
func (d *Decomposer) DecomposeScalar(a uint64, digits []int64) {

	// closest multiple of q/B^level
	hi, lo := bits.Mul64(a, d.lastPow)
	lo, carry := bits.Add64(lo, d.q>>1, 0)
	hi += carry
	v, _ := bits.Div64(hi, lo, d.q)
	v &= d.lastPow - 1

	for j := d.level - 1; j >= 0; j-- {
		r := v & (d.base - 1)
		v >>= uint(d.baseLog)
		if r >= d.halfBase {
			digits[j] = int64(r) - int64(d.base)
			v++
		} else {
			digits[j] = int64(r)
		}
	}
}

// Recompose returns sum digits[j] * g_j mod q.
func (d *Decomposer) Recompose(digits []int64) (r uint64) {
	q := d.q
	for j, dig := range digits {
		mag := uint64(dig)
		if dig < 0 {
			mag = uint64(-dig)
		}
		hi, lo := bits.Mul64(mag, d.gadget[j])
		_, t := bits.Div64(hi, lo, q)
		if dig < 0 && t != 0 {
			t = q - t
		}
		r = ring.CRed(r+t, q)
	}
	return
}

// DecomposePoly writes the signed digits of each coefficient of p on the
// level polynomials digits, with negative digits represented mod q.
func (d *Decomposer) DecomposePoly(p ring.Poly, digits []ring.Poly) {

	q := d.q
	scratch := d.scratch

	for i, a := range p.Coeffs {
		d.DecomposeScalar(a, scratch)
		for j, dig := range scratch {
			if dig >= 0 {
				digits[j].Coeffs[i] = uint64(dig)
			} else {
				digits[j].Coeffs[i] = q - uint64(-dig)
			}
		}
	}
}
