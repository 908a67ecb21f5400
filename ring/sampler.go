package ring

import (
	"fmt"

	"github.com/tuneinsight/tfhe/utils/sampling"
)

// DistributionParameters is an interface for distributions over Z_q.
type DistributionParameters interface {
	// Type returns the distribution name.
	Type() string
}

// DiscreteGaussian is a centered discrete Gaussian distribution of standard
// deviation Sigma, truncated at Bound (absolute value, in ciphertext modulus
// units).
type DiscreteGaussian struct {
	Sigma float64
	Bound float64
}

// Type returns the distribution name.
func (d DiscreteGaussian) Type() string { return "DiscreteGaussian" }

// Binary is the uniform distribution over {0, 1}.
type Binary struct{}

// Type returns the distribution name.
func (d Binary) Type() string { return "Binary" }

// Uniform is the uniform distribution over Z_q.
type Uniform struct{}

// Type returns the distribution name.
func (d Uniform) Type() string { return "Uniform" }

// Sampler is an interface for polynomial samplers over the ring.
type Sampler interface {
	// Read samples a new polynomial on pol.
	Read(pol Poly)
	// ReadNew samples a new polynomial.
	ReadNew() Poly
}

// NewSampler instantiates a new Sampler for the given distribution.
func NewSampler(prng sampling.PRNG, baseRing *Ring, X DistributionParameters) (Sampler, error) {
	switch X := X.(type) {
	case DiscreteGaussian:
		return NewGaussianSampler(prng, baseRing, X)
	case Binary:
		return NewBinarySampler(prng, baseRing)
	case Uniform:
		return NewUniformSampler(prng, baseRing), nil
	default:
		return nil, fmt.Errorf("invalid distribution: want ring.DiscreteGaussian, ring.Binary or ring.Uniform but have %T", X)
	}
}

type baseSampler struct {
	prng     sampling.PRNG
	baseRing *Ring
}
