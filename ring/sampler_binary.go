package ring

import (
	"github.com/tuneinsight/tfhe/utils/sampling"
)

// BinarySampler wraps a PRNG and samples polynomials with coefficients
// uniform in {0, 1}.
type BinarySampler struct {
	baseSampler
	randomBufferN []byte
	ptr           int
}

// NewBinarySampler creates a new BinarySampler.
func NewBinarySampler(prng sampling.PRNG, baseRing *Ring) (*BinarySampler, error) {
	buf := make([]byte, 128)
	return &BinarySampler{
		baseSampler:   baseSampler{prng: prng, baseRing: baseRing},
		randomBufferN: buf,
		ptr:           8 * len(buf),
	}, nil
}

// Read samples a polynomial with coefficients uniform in {0, 1} on pol.
func (s *BinarySampler) Read(pol Poly) {
	for i := range pol.Coeffs {
		pol.Coeffs[i] = s.NextBit()
	}
}

// ReadNew samples a new polynomial with coefficients uniform in {0, 1}.
func (s *BinarySampler) ReadNew() Poly {
	pol := NewPoly(s.baseRing.N)
	s.Read(pol)
	return pol
}

// NextBit returns a fresh uniform bit.
func (s *BinarySampler) NextBit() uint64 {
	if s.ptr == 8*len(s.randomBufferN) {
		if _, err := s.prng.Read(s.randomBufferN); err != nil {
			panic(err)
		}
		s.ptr = 0
	}
	bit := uint64(s.randomBufferN[s.ptr>>3]>>(s.ptr&7)) & 1
	s.ptr++
	return bit
}
