package ring

import (
	"encoding/binary"
	"math"

	"github.com/tuneinsight/tfhe/utils/sampling"
)

// GaussianSampler wraps a PRNG and samples polynomials with coefficients
// following a centered discrete Gaussian distribution, mapped to [0, q).
type GaussianSampler struct {
	baseSampler
	xe            DiscreteGaussian
	randomBufferN []byte
	ptr           int
}

// NewGaussianSampler creates a new GaussianSampler for the distribution X.
func NewGaussianSampler(prng sampling.PRNG, baseRing *Ring, X DiscreteGaussian) (*GaussianSampler, error) {
	buf := make([]byte, 1024)
	return &GaussianSampler{
		baseSampler:   baseSampler{prng: prng, baseRing: baseRing},
		xe:            X,
		randomBufferN: buf,
		ptr:           len(buf),
	}, nil
}

// Read samples a polynomial with discrete Gaussian coefficients on pol.
func (s *GaussianSampler) Read(pol Poly) {
	for i := range pol.Coeffs {
		pol.Coeffs[i] = s.NextUint64()
	}
}

// ReadNew samples a new polynomial with discrete Gaussian coefficients.
func (s *GaussianSampler) ReadNew() Poly {
	pol := NewPoly(s.baseRing.N)
	s.Read(pol)
	return pol
}

// AddTo samples a fresh noise polynomial and adds it on pol.
func (s *GaussianSampler) AddTo(pol Poly) {
	q := s.baseRing.Modulus
	for i := range pol.Coeffs {
		pol.Coeffs[i] = CRed(pol.Coeffs[i]+s.NextUint64(), q)
	}
}

// NextUint64 returns a fresh discrete Gaussian sample mapped to [0, q):
// negative values x are represented as q - |x|.
func (s *GaussianSampler) NextUint64() uint64 {

	q := s.baseRing.Modulus

	norm, sign := s.normFloat64()

	v := uint64(math.Round(norm * s.xe.Sigma))

	if v == 0 {
		return 0
	}

	if sign == 1 {
		return v
	}

	return q - v
}

// normFloat64 returns the absolute value of a normally distributed float64
// truncated at the distribution bound, along with a uniform sign bit.
func (s *GaussianSampler) normFloat64() (float64, uint64) {

	bound := s.xe.Bound
	if bound <= 0 {
		bound = math.MaxFloat64
	}

	for {
		u1 := s.nextFloat64()
		u2 := s.nextFloat64()

		if u1 == 0 {
			continue
		}

		norm := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
		sign := uint64(0)
		if norm < 0 {
			norm = -norm
			sign = 1
		}
		sign ^= 1

		if norm*s.xe.Sigma <= bound {
			return norm, sign
		}
	}
}

// nextFloat64 returns a uniform float64 in [0, 1).
func (s *GaussianSampler) nextFloat64() float64 {
	if s.ptr+8 > len(s.randomBufferN) {
		if _, err := s.prng.Read(s.randomBufferN); err != nil {
			panic(err)
		}
		s.ptr = 0
	}
	w := binary.LittleEndian.Uint64(s.randomBufferN[s.ptr:])
	s.ptr += 8
	return float64(w>>11) * 0x1p-53
}
