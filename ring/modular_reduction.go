package ring

import (
	"math/big"
	"math/bits"
)

// MRedConstant computes the constant qInv = (q^-1) mod 2^64 required for MRed.
func MRedConstant(q uint64) (qInv uint64) {
	var x uint64
	qInv = 1
	x = q
	for i := 0; i < 63; i++ {
		qInv *= x
		x *= x
	}
	return
}

// MForm switches a to the Montgomery domain: returns a*2^64 mod q.
func MForm(a, q uint64, bredconstant [2]uint64) (r uint64) {
	mhi, _ := bits.Mul64(a, bredconstant[1])
	r = -(a*bredconstant[0] + mhi) * q
	if r >= q {
		r -= q
	}
	return
}

// IMForm switches a out of the Montgomery domain: returns a*(2^-64) mod q.
func IMForm(a, q, qInv uint64) (r uint64) {
	r, _ = bits.Mul64(a*qInv, q)
	r = q - r
	if r >= q {
		r -= q
	}
	return
}

// MRed computes x*y*(2^-64) mod q.
func MRed(x, y, q, qInv uint64) (r uint64) {
	ahi, alo := bits.Mul64(x, y)
	R := alo * qInv
	H, _ := bits.Mul64(R, q)
	r = ahi - H + q
	if r >= q {
		r -= q
	}
	return
}

// MRedLazy computes x*y*(2^-64) mod q in constant time.
// The result is between 0 and 2*q-1.
func MRedLazy(x, y, q, qInv uint64) (r uint64) {
	ahi, alo := bits.Mul64(x, y)
	R := alo * qInv
	H, _ := bits.Mul64(R, q)
	r = ahi - H + q
	return
}

// BRedConstant computes the constant for the BRed algorithm.
// Returns ((2^128)/q)/(2^64) and (2^128)/q mod 2^64.
func BRedConstant(q uint64) (constant [2]uint64) {
	bigR := new(big.Int).Lsh(big.NewInt(1), 128)
	bigR.Quo(bigR, new(big.Int).SetUint64(q))

	constant[0] = new(big.Int).Rsh(bigR, 64).Uint64()
	constant[1] = bigR.Uint64()
	return
}

// BRedAdd computes a mod q for arbitrary a uint64.
func BRedAdd(a, q uint64, bredconstant [2]uint64) (r uint64) {
	s0, _ := bits.Mul64(a, bredconstant[0])
	r = a - s0*q
	if r >= q {
		r -= q
	}
	return
}

// BRed computes x*y mod q.
func BRed(x, y, q uint64, bredconstant [2]uint64) (r uint64) {

	var mhi, mlo, lhi, hhi, hlo, s0, s1, carry uint64

	ahi, alo := bits.Mul64(x, y)

	// (alo*blo)>>64

	lhi, _ = bits.Mul64(alo, bredconstant[1])

	// ((ahi*blo + alo*bhi) + (alo*blo))>>64

	mhi, mlo = bits.Mul64(alo, bredconstant[0])

	s0, carry = bits.Add64(mlo, lhi, 0)

	s1 = mhi + carry

	hhi, hlo = bits.Mul64(ahi, bredconstant[1])

	_, carry = bits.Add64(hlo, s0, 0)

	lhi = hhi + carry

	// (ahi*bhi) + (((ahi*blo + alo*bhi) + (alo*blo))>>64)

	s0 = ahi*bredconstant[0] + s1 + lhi

	r = alo - s0*q

	if r >= q {
		r -= q
	}

	return
}

// CRed returns a mod q, where a is required to be in the range [0, 2q-1].
func CRed(a, q uint64) uint64 {
	if a >= q {
		return a - q
	}
	return a
}
