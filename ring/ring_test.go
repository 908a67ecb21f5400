package ring

import (
	"math/bits"
	"testing"

	"github.com/montanaflynn/stats"
	"github.com/stretchr/testify/require"
	"github.com/tuneinsight/tfhe/utils/sampling"
)

const testQ = 2013265921 // 15 * 2^27 + 1

func testRing(t *testing.T, N int) *Ring {
	r, err := NewRing(N, testQ)
	require.NoError(t, err)
	return r
}

func testPRNG(t *testing.T) sampling.PRNG {
	prng, err := sampling.NewKeyedPRNG([]byte{'r', 'i', 'n', 'g'})
	require.NoError(t, err)
	return prng
}

func TestNewRing(t *testing.T) {

	t.Run("Valid", func(t *testing.T) {
		r := testRing(t, 32)
		require.Equal(t, 32, r.N)
		require.Equal(t, uint64(testQ), r.Modulus)
		require.Equal(t, uint64(64), r.NthRoot)
		// psi is a primitive 2N-th root of unity
		require.Equal(t, uint64(testQ-1), ModExp(r.PrimitiveRoot, 32, testQ))
		require.Equal(t, uint64(1), ModExp(r.PrimitiveRoot, 64, testQ))
	})

	t.Run("InvalidDegree", func(t *testing.T) {
		_, err := NewRing(24, testQ)
		require.Error(t, err)
		_, err = NewRing(8, testQ)
		require.Error(t, err)
	})

	t.Run("CompositeModulus", func(t *testing.T) {
		_, err := NewRing(32, 1<<32)
		require.Error(t, err)
	})

	t.Run("NonNTTFriendlyModulus", func(t *testing.T) {
		// 2^31 - 1 is prime but 2^31 - 2 is not a multiple of 64
		_, err := NewRing(32, (1<<31)-1)
		require.Error(t, err)
	})
}

func TestModularReduction(t *testing.T) {

	q := uint64(testQ)
	bredconstant := BRedConstant(q)
	mredconstant := MRedConstant(q)

	values := []uint64{0, 1, 2, q >> 1, q - 2, q - 1}

	t.Run("CRed", func(t *testing.T) {
		require.Equal(t, uint64(0), CRed(q, q))
		require.Equal(t, q-1, CRed(q-1, q))
		require.Equal(t, uint64(3), CRed(q+3, q))
	})

	t.Run("BRedAdd", func(t *testing.T) {
		require.Equal(t, uint64(0), BRedAdd(q, q, bredconstant))
		require.Equal(t, uint64(5), BRedAdd(3*q+5, q, bredconstant))
		require.Equal(t, (1<<63)%q, BRedAdd(1<<63, q, bredconstant))
	})

	t.Run("BRed", func(t *testing.T) {
		for _, x := range values {
			for _, y := range values {
				hi, lo := bits.Mul64(x, y)
				_, want := bits.Div64(hi, lo, q)
				require.Equal(t, want, BRed(x, y, q, bredconstant))
			}
		}
	})

	t.Run("MRed", func(t *testing.T) {
		for _, x := range values {
			for _, y := range values {
				hi, lo := bits.Mul64(x, y)
				_, want := bits.Div64(hi, lo, q)
				require.Equal(t, want, MRed(x, MForm(y, q, bredconstant), q, mredconstant))
			}
		}
	})

	t.Run("MFormRoundTrip", func(t *testing.T) {
		for _, x := range values {
			require.Equal(t, x, IMForm(MForm(x, q, bredconstant), q, mredconstant))
		}
	})
}

// mulNegacyclicNaive computes p1 * p2 mod (X^N + 1) by schoolbook
// multiplication.
func mulNegacyclicNaive(r *Ring, p1, p2 Poly) Poly {

	N := r.N
	q := r.Modulus

	out := NewPoly(N)
	for i := 0; i < N; i++ {
		for j := 0; j < N; j++ {
			hi, lo := bits.Mul64(p1.Coeffs[i], p2.Coeffs[j])
			_, prod := bits.Div64(hi%q, lo, q)
			if k := i + j; k < N {
				out.Coeffs[k] = CRed(out.Coeffs[k]+prod, q)
			} else {
				out.Coeffs[k-N] = CRed(out.Coeffs[k-N]+q-prod, q)
			}
		}
	}
	return out
}

func TestNTT(t *testing.T) {

	for _, N := range []int{16, 64, 256} {

		r := testRing(t, N)
		sampler := NewUniformSampler(testPRNG(t), r)

		t.Run("RoundTrip", func(t *testing.T) {
			p := sampler.ReadNew()
			pHat := NewPoly(N)
			pOut := NewPoly(N)
			r.NTT(p, pHat)
			require.NotEqual(t, p.Coeffs, pHat.Coeffs)
			r.INTT(pHat, pOut)
			require.Equal(t, p.Coeffs, pOut.Coeffs)
		})

		t.Run("RoundTripInPlace", func(t *testing.T) {
			p := sampler.ReadNew()
			want := p.CopyNew()
			r.NTT(p, p)
			r.INTT(p, p)
			require.Equal(t, want.Coeffs, p.Coeffs)
		})

		t.Run("NegacyclicConvolution", func(t *testing.T) {

			p1 := sampler.ReadNew()
			p2 := sampler.ReadNew()

			want := mulNegacyclicNaive(r, p1, p2)

			p1Hat := NewPoly(N)
			p2Hat := NewPoly(N)
			r.NTT(p1, p1Hat)
			r.NTT(p2, p2Hat)
			r.MForm(p2Hat, p2Hat)

			got := NewPoly(N)
			r.MulCoeffsMontgomery(p1Hat, p2Hat, got)
			r.INTT(got, got)

			require.Equal(t, want.Coeffs, got.Coeffs)
		})
	}
}

func TestMulByMonomial(t *testing.T) {

	N := 16
	r := testRing(t, N)
	sampler := NewUniformSampler(testPRNG(t), r)

	p := sampler.ReadNew()
	out := NewPoly(N)

	t.Run("Identity", func(t *testing.T) {
		r.MulByMonomial(p, 0, out)
		require.Equal(t, p.Coeffs, out.Coeffs)
		r.MulByMonomial(p, 2*N, out)
		require.Equal(t, p.Coeffs, out.Coeffs)
	})

	t.Run("Shift", func(t *testing.T) {
		r.MulByMonomial(p, 1, out)
		// X^N = -1 wraps the leading coefficient negated
		if c := p.Coeffs[N-1]; c == 0 {
			require.Equal(t, uint64(0), out.Coeffs[0])
		} else {
			require.Equal(t, r.Modulus-c, out.Coeffs[0])
		}
		for j := 1; j < N; j++ {
			require.Equal(t, p.Coeffs[j-1], out.Coeffs[j])
		}
	})

	t.Run("Negation", func(t *testing.T) {
		want := NewPoly(N)
		r.Neg(p, want)
		r.MulByMonomial(p, N, out)
		require.Equal(t, want.Coeffs, out.Coeffs)
	})

	t.Run("Composition", func(t *testing.T) {
		tmp := NewPoly(N)
		got := NewPoly(N)
		want := NewPoly(N)
		for _, e := range [][2]int{{3, 5}, {N - 1, 2}, {N, N}, {2*N - 1, 1}} {
			r.MulByMonomial(p, e[0], tmp)
			r.MulByMonomial(tmp, e[1], got)
			r.MulByMonomial(p, e[0]+e[1], want)
			require.Equal(t, want.Coeffs, got.Coeffs)
		}
	})

	t.Run("MatchesConvolution", func(t *testing.T) {
		mono := NewPoly(N)
		mono.Coeffs[3] = 1
		want := mulNegacyclicNaive(r, p, mono)
		r.MulByMonomial(p, 3, out)
		require.Equal(t, want.Coeffs, out.Coeffs)
	})
}

func TestOperations(t *testing.T) {

	N := 16
	r := testRing(t, N)
	q := r.Modulus
	sampler := NewUniformSampler(testPRNG(t), r)

	p1 := sampler.ReadNew()
	p2 := sampler.ReadNew()

	t.Run("AddSub", func(t *testing.T) {
		sum := NewPoly(N)
		back := NewPoly(N)
		r.Add(p1, p2, sum)
		r.Sub(sum, p2, back)
		require.Equal(t, p1.Coeffs, back.Coeffs)
	})

	t.Run("Neg", func(t *testing.T) {
		neg := NewPoly(N)
		zero := NewPoly(N)
		r.Neg(p1, neg)
		r.Add(p1, neg, zero)
		for i := range zero.Coeffs {
			require.Equal(t, uint64(0), zero.Coeffs[i])
		}
	})

	t.Run("MulScalar", func(t *testing.T) {
		out := NewPoly(N)
		r.MulScalar(p1, 3, out)
		for i := range out.Coeffs {
			want := (3 * p1.Coeffs[i]) % q
			require.Equal(t, want, out.Coeffs[i])
		}
	})
}

func TestSamplers(t *testing.T) {

	N := 1024
	r := testRing(t, N)

	t.Run("Uniform", func(t *testing.T) {
		sampler := NewUniformSampler(testPRNG(t), r)
		p := sampler.ReadNew()
		var top int
		for _, c := range p.Coeffs {
			require.Less(t, c, r.Modulus)
			if c > r.Modulus/2 {
				top++
			}
		}
		// both halves of the range are hit
		require.Greater(t, top, N/4)
		require.Less(t, top, 3*N/4)
	})

	t.Run("Binary", func(t *testing.T) {
		sampler, err := NewBinarySampler(testPRNG(t), r)
		require.NoError(t, err)
		p := sampler.ReadNew()
		var ones int
		for _, c := range p.Coeffs {
			require.LessOrEqual(t, c, uint64(1))
			ones += int(c)
		}
		require.Greater(t, ones, N/4)
		require.Less(t, ones, 3*N/4)
	})

	t.Run("Gaussian", func(t *testing.T) {

		sigma := 8192.0
		sampler, err := NewGaussianSampler(testPRNG(t), r, DiscreteGaussian{Sigma: sigma, Bound: 6 * sigma})
		require.NoError(t, err)

		samples := make([]float64, 0, 8*N)
		for k := 0; k < 8; k++ {
			p := sampler.ReadNew()
			for _, c := range p.Coeffs {
				v := float64(c)
				if c > r.Modulus/2 {
					v = -float64(r.Modulus - c)
				}
				require.LessOrEqual(t, v, 6*sigma)
				require.GreaterOrEqual(t, v, -6*sigma)
				samples = append(samples, v)
			}
		}

		mean, err := stats.Mean(samples)
		require.NoError(t, err)
		require.InDelta(t, 0, mean, sigma/2)

		std, err := stats.StandardDeviation(samples)
		require.NoError(t, err)
		require.InEpsilon(t, sigma, std, 0.1)
	})
}
