// Package ring implements modular arithmetic and negacyclic polynomial
// arithmetic over the ring Z_q[X]/(X^N+1), for N a power of two and q an
// NTT-friendly prime satisfying q = 1 mod 2N. It also provides the samplers
// (uniform, binary, discrete Gaussian) used for key and noise generation.
package ring

import (
	"fmt"
	"math/big"
	"math/bits"

	"github.com/tuneinsight/tfhe/utils"
)

// MinDegree is the smallest supported ring degree.
const MinDegree = 16

// MaxDegree is the largest supported ring degree.
const MaxDegree = 1 << 17

// Ring is a structure storing the modulus q, the ring degree N and the
// precomputed tables for the negacyclic NTT over Z_q[X]/(X^N+1).
type Ring struct {
	// N is the ring degree.
	N int

	// Modulus is the prime modulus q.
	Modulus uint64

	// NthRoot is the order 2N of the primitive root PrimitiveRoot.
	NthRoot uint64

	// PrimitiveRoot is a primitive 2N-th root of unity mod q.
	PrimitiveRoot uint64

	// Mask is 2^bits.Len(q-1) - 1, used for rejection sampling.
	Mask uint64

	// BRedConstant is the Barrett reduction constant for q.
	BRedConstant [2]uint64

	// MRedConstant is the Montgomery reduction constant for q.
	MRedConstant uint64

	// RootsForward stores psi^(bitreverse(j)) in the Montgomery domain.
	RootsForward []uint64

	// RootsBackward stores psi^(-bitreverse(j)) in the Montgomery domain.
	RootsBackward []uint64

	// NInv is N^-1 mod q in the Montgomery domain.
	NInv uint64
}

// NewRing creates a new Ring of degree N (a power of two) and prime modulus
// q with q = 1 mod 2N, and precomputes the NTT tables.
func NewRing(N int, q uint64) (r *Ring, err error) {

	if N < MinDegree || N > MaxDegree || !utils.IsPowerOfTwo(uint64(N)) {
		return nil, fmt.Errorf("invalid ring degree: N=%d must be a power of two in [%d, %d]", N, MinDegree, MaxDegree)
	}

	if q < 4 || q >= 1<<62 {
		return nil, fmt.Errorf("invalid modulus: q=%d out of range", q)
	}

	if !new(big.Int).SetUint64(q).ProbablyPrime(32) {
		return nil, fmt.Errorf("invalid modulus: q=%d is not prime", q)
	}

	nthRoot := uint64(N) << 1

	if (q-1)%nthRoot != 0 {
		return nil, fmt.Errorf("invalid modulus: q=%d is not 1 mod 2N=%d", q, nthRoot)
	}

	r = &Ring{
		N:            N,
		Modulus:      q,
		NthRoot:      nthRoot,
		Mask:         (1 << uint64(bits.Len64(q-1))) - 1,
		BRedConstant: BRedConstant(q),
		MRedConstant: MRedConstant(q),
	}

	g, err := primitiveRoot(q)
	if err != nil {
		return nil, err
	}

	psi := ModExp(g, (q-1)/nthRoot, q)

	if ModExp(psi, uint64(N), q) != q-1 {
		return nil, fmt.Errorf("internal: %d is not a primitive 2N-th root of unity mod %d", psi, q)
	}

	r.PrimitiveRoot = psi
	r.genNTTTables()

	return r, nil
}

// genNTTTables precomputes the bit-reversed tables of the powers of the
// primitive 2N-th root of unity, in the Montgomery domain.
func (r *Ring) genNTTTables() {

	N := r.N
	q := r.Modulus
	logN := bits.Len64(uint64(N)) - 1

	psi := r.PrimitiveRoot
	psiInv := ModExp(psi, r.NthRoot-1, q)

	psiMont := MForm(psi, q, r.BRedConstant)
	psiInvMont := MForm(psiInv, q, r.BRedConstant)

	r.RootsForward = make([]uint64, N)
	r.RootsBackward = make([]uint64, N)

	r.RootsForward[0] = MForm(1, q, r.BRedConstant)
	r.RootsBackward[0] = r.RootsForward[0]

	for j := uint64(1); j < uint64(N); j++ {
		indexReversePrev := utils.BitReverse64(j-1, logN)
		indexReverseNext := utils.BitReverse64(j, logN)
		r.RootsForward[indexReverseNext] = MRed(r.RootsForward[indexReversePrev], psiMont, q, r.MRedConstant)
		r.RootsBackward[indexReverseNext] = MRed(r.RootsBackward[indexReversePrev], psiInvMont, q, r.MRedConstant)
	}

	r.NInv = MForm(ModExp(uint64(N), q-2, q), q, r.BRedConstant)
}

// ModExp computes x^e mod q.
func ModExp(x, e, q uint64) (r uint64) {
	bredconstant := BRedConstant(q)
	r = 1
	x = BRedAdd(x, q, bredconstant)
	for e > 0 {
		if e&1 == 1 {
			r = BRed(r, x, q, bredconstant)
		}
		x = BRed(x, x, q, bredconstant)
		e >>= 1
	}
	return
}

// primitiveRoot returns a generator of the multiplicative group Z_q^* for a
// prime q.
func primitiveRoot(q uint64) (uint64, error) {

	factors := factorize(q - 1)

candidates:
	for g := uint64(2); g < q; g++ {
		for _, f := range factors {
			if ModExp(g, (q-1)/f, q) == 1 {
				continue candidates
			}
		}
		return g, nil
	}

	return 0, fmt.Errorf("no primitive root found mod %d", q)
}

// factorize returns the distinct prime factors of n by trial division.
func factorize(n uint64) (factors []uint64) {
	for p := uint64(2); p*p <= n; p++ {
		if n%p == 0 {
			factors = append(factors, p)
			for n%p == 0 {
				n /= p
			}
		}
	}
	if n > 1 {
		factors = append(factors, n)
	}
	return
}
