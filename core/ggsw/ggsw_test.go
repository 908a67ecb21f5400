package ggsw

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tuneinsight/tfhe/core/glwe"
	"github.com/tuneinsight/tfhe/ring"
	"github.com/tuneinsight/tfhe/utils/sampling"
)

var testParametersLiteral = glwe.ParametersLiteral{
	LweDimension:  128,
	GlweDimension: 1,
	PolyDegree:    512,
	Q:             2013265921,
	LweStdDev:     4096,
	GlweStdDev:    2,
	PbsBaseLog:    7,
	PbsLevel:      3,
	KsBaseLog:     2,
	KsLevel:       8,
}

type testContext struct {
	params  glwe.Parameters
	skLwe   *glwe.LweSecretKey
	skGlwe  *glwe.GlweSecretKey
	skBig   *glwe.LweSecretKey
	enc     *Encryptor
	glweEnc *glwe.Encryptor
	dec     *glwe.Decryptor
	eval    *Evaluator
}

func newTestContext(t *testing.T) *testContext {

	params, err := glwe.NewParametersFromLiteral(testParametersLiteral)
	require.NoError(t, err)

	prng, err := sampling.NewKeyedPRNG([]byte{'g', 'g', 's', 'w'})
	require.NoError(t, err)

	kgen, err := glwe.NewKeyGenerator(params, prng)
	require.NoError(t, err)

	skLwe := kgen.GenLweSecretKeyNew()
	skGlwe := kgen.GenGlweSecretKeyNew()

	enc, err := NewEncryptor(params, prng)
	require.NoError(t, err)

	glweEnc, err := glwe.NewEncryptor(params, prng)
	require.NoError(t, err)

	return &testContext{
		params:  params,
		skLwe:   skLwe,
		skGlwe:  skGlwe,
		skBig:   glwe.ExtractLweSecretKey(skGlwe),
		enc:     enc,
		glweEnc: glweEnc,
		dec:     glwe.NewDecryptor(params),
		eval:    NewEvaluator(params),
	}
}

// decodePhase decodes a phase to the closest value of Z_8.
func decodePhase(q, phase uint64) uint64 {
	delta := q / 8
	return ((phase + delta/2) / delta) % 8
}

// constantGlwe encrypts a polynomial with all coefficients equal to pt.
func (tc *testContext) constantGlwe(t *testing.T, pt uint64) *glwe.GlweCiphertext {
	p := ring.NewPoly(tc.params.N())
	for i := range p.Coeffs {
		p.Coeffs[i] = pt
	}
	ct, err := tc.glweEnc.EncryptGlweNew(tc.skGlwe, p)
	require.NoError(t, err)
	return ct
}

func TestExternalProduct(t *testing.T) {

	tc := newTestContext(t)
	params := tc.params
	q := params.Q()
	delta := q / 8

	phase := ring.NewPoly(params.N())

	for _, bit := range []uint64{0, 1} {

		ggswCt, err := tc.enc.EncryptNew(tc.skGlwe, bit)
		require.NoError(t, err)

		ctIn := tc.constantGlwe(t, 3*delta)
		ctOut := glwe.NewGlweCiphertext(params)

		require.NoError(t, tc.eval.ExternalProduct(ggswCt, ctIn, ctOut))
		require.NoError(t, tc.dec.DecryptGlwe(tc.skGlwe, ctOut, phase))

		want := uint64(0)
		if bit == 1 {
			want = 3
		}
		require.Equal(t, want, decodePhase(q, phase.Coeffs[0]))
	}
}

func TestExternalProductInPlace(t *testing.T) {

	tc := newTestContext(t)
	params := tc.params
	q := params.Q()
	delta := q / 8

	ggswCt, err := tc.enc.EncryptNew(tc.skGlwe, 1)
	require.NoError(t, err)

	ct := tc.constantGlwe(t, 2*delta)
	require.NoError(t, tc.eval.ExternalProduct(ggswCt, ct, ct))

	phase := ring.NewPoly(params.N())
	require.NoError(t, tc.dec.DecryptGlwe(tc.skGlwe, ct, phase))
	require.Equal(t, uint64(2), decodePhase(q, phase.Coeffs[0]))
}

func TestCMux(t *testing.T) {

	tc := newTestContext(t)
	params := tc.params
	q := params.Q()
	delta := q / 8

	phase := ring.NewPoly(params.N())

	for _, bit := range []uint64{0, 1} {

		ggswCt, err := tc.enc.EncryptNew(tc.skGlwe, bit)
		require.NoError(t, err)

		ct0 := tc.constantGlwe(t, 2*delta)
		ct1 := tc.constantGlwe(t, 5*delta)
		ctOut := glwe.NewGlweCiphertext(params)

		require.NoError(t, tc.eval.CMux(ggswCt, ct0, ct1, ctOut))
		require.NoError(t, tc.dec.DecryptGlwe(tc.skGlwe, ctOut, phase))

		want := uint64(2)
		if bit == 1 {
			want = 5
		}
		require.Equal(t, want, decodePhase(q, phase.Coeffs[0]))
	}
}

func TestModSwitch(t *testing.T) {

	tc := newTestContext(t)
	q := tc.params.Q()
	twoN := uint64(2 * tc.params.N())

	require.Equal(t, uint64(0), tc.eval.ModSwitch(0))
	require.Equal(t, uint64(0), tc.eval.ModSwitch(q-1))
	require.Equal(t, twoN/2, tc.eval.ModSwitch(q/2))
	require.Equal(t, twoN/4, tc.eval.ModSwitch(q/4))
	require.Equal(t, uint64(1), tc.eval.ModSwitch(q/uint64(2*tc.params.N())))
}

func TestBootstrap(t *testing.T) {

	tc := newTestContext(t)
	params := tc.params
	q := params.Q()
	delta := q / 8

	bsk, err := tc.enc.GenBootstrappingKeyNew(tc.skLwe, tc.skGlwe)
	require.NoError(t, err)
	require.Equal(t, params.LweDimension(), bsk.InputDimension())

	// sign test vector
	testVector := glwe.NewGlweCiphertext(params)
	body := testVector.Body()
	for i := range body.Coeffs {
		body.Coeffs[i] = delta
	}

	ctOut := glwe.NewLweCiphertext(params.ExtractedLweDimension())

	for _, tcase := range []struct {
		pt   uint64
		want uint64
	}{
		{delta, 1},          // positive phase
		{q - delta, 7},      // negative phase
		{3 * delta, 1},      // still in the positive half
		{q - 3*delta, 7},    // still in the negative half
	} {
		ct, err := tc.glweEnc.EncryptLweNew(tc.skLwe, tcase.pt)
		require.NoError(t, err)

		require.NoError(t, tc.eval.Bootstrap(ct, testVector, bsk, ctOut))

		phase, err := tc.dec.DecryptLwe(tc.skBig, ctOut)
		require.NoError(t, err)
		require.Equal(t, tcase.want, decodePhase(q, phase))
	}
}

func TestGgswSerialization(t *testing.T) {

	tc := newTestContext(t)

	t.Run("GgswCiphertext", func(t *testing.T) {
		ct, err := tc.enc.EncryptNew(tc.skGlwe, 1)
		require.NoError(t, err)

		data, err := ct.MarshalBinary()
		require.NoError(t, err)
		require.Equal(t, ct.BinarySize(), len(data))

		out := &GgswCiphertext{}
		require.NoError(t, out.UnmarshalBinary(data))
		require.True(t, ct.Equal(out))
	})

	t.Run("BootstrappingKey", func(t *testing.T) {

		// a reduced dimension keeps the key small
		skSmall := glwe.NewLweSecretKey(4)
		skSmall.Value[1] = 1
		skSmall.Value[2] = 1

		bsk, err := tc.enc.GenBootstrappingKeyNew(skSmall, tc.skGlwe)
		require.NoError(t, err)

		data, err := bsk.MarshalBinary()
		require.NoError(t, err)
		require.Equal(t, bsk.BinarySize(), len(data))

		out := &BootstrappingKey{}
		require.NoError(t, out.UnmarshalBinary(data))
		require.Equal(t, bsk.InputDimension(), out.InputDimension())
		for i := range bsk.Value {
			require.True(t, bsk.Value[i].Equal(&out.Value[i]))
		}
	})
}
