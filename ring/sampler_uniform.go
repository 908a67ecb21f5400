package ring

import (
	"encoding/binary"

	"github.com/tuneinsight/tfhe/utils/sampling"
)

// UniformSampler wraps a PRNG and samples polynomials with coefficients
// uniform in Z_q, by rejection sampling on masked 64-bit words.
type UniformSampler struct {
	baseSampler
	randomBufferN []byte
	ptr           int
}

// NewUniformSampler creates a new UniformSampler.
func NewUniformSampler(prng sampling.PRNG, baseRing *Ring) *UniformSampler {
	buf := make([]byte, 1024)
	return &UniformSampler{
		baseSampler:   baseSampler{prng: prng, baseRing: baseRing},
		randomBufferN: buf,
		ptr:           len(buf),
	}
}

// Read samples a polynomial with coefficients uniform in Z_q on pol.
func (s *UniformSampler) Read(pol Poly) {
	for i := range pol.Coeffs {
		pol.Coeffs[i] = s.NextUint64()
	}
}

// ReadNew samples a new polynomial with coefficients uniform in Z_q.
func (s *UniformSampler) ReadNew() Poly {
	pol := NewPoly(s.baseRing.N)
	s.Read(pol)
	return pol
}

// NextUint64 returns a fresh uniform sample in [0, q).
func (s *UniformSampler) NextUint64() (c uint64) {
	q := s.baseRing.Modulus
	mask := s.baseRing.Mask
	for {
		c = s.nextWord() & mask
		if c < q {
			return
		}
	}
}

func (s *UniformSampler) nextWord() uint64 {
	if s.ptr+8 > len(s.randomBufferN) {
		if _, err := s.prng.Read(s.randomBufferN); err != nil {
			panic(err)
		}
		s.ptr = 0
	}
	w := binary.LittleEndian.Uint64(s.randomBufferN[s.ptr:])
	s.ptr += 8
	return w
}
