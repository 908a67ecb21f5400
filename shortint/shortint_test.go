package shortint

import (
	"math/bits"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tuneinsight/tfhe/core/glwe"
	"github.com/tuneinsight/tfhe/utils/sampling"
)

// testParametersLiteral is a reduced parameter set used by the tests that
// do not bootstrap, to keep the generated keys small.
var testParametersLiteral = ParametersLiteral{
	LweDimension:   64,
	GlweDimension:  1,
	PolyDegree:     256,
	Q:              2013265921,
	LweStdDev:      4096,
	GlweStdDev:     2,
	PbsBaseLog:     8,
	PbsLevel:       3,
	KsBaseLog:      3,
	KsLevel:        5,
	MessageModulus: 4,
	CarryModulus:   4,
	MaxNoiseLevel:  5,
}

type testContext struct {
	params Parameters
	ck     *ClientKey
	sk     *ServerKey
	enc    *Encryptor
	dec    *Decryptor
	eval   *Evaluator
}

var (
	evalCtx     *testContext
	evalCtxOnce sync.Once
)

// evalTestContext generates one key pair under ParamsMessage2Carry2,
// shared by all evaluation tests.
func evalTestContext(t *testing.T) *testContext {
	evalCtxOnce.Do(func() {
		params, err := NewParametersFromLiteral(ParamsMessage2Carry2)
		if err != nil {
			t.Fatal(err)
		}
		prng, err := sampling.NewKeyedPRNG([]byte{'s', 'h', 'o', 'r', 't'})
		if err != nil {
			t.Fatal(err)
		}
		ck, sk, err := GenerateKeysWithPRNG(params, prng)
		if err != nil {
			t.Fatal(err)
		}
		enc, err := NewEncryptor(ck)
		if err != nil {
			t.Fatal(err)
		}
		evalCtx = &testContext{
			params: params,
			ck:     ck,
			sk:     sk,
			enc:    enc,
			dec:    NewDecryptor(ck),
			eval:   NewEvaluator(sk),
		}
	})
	require.NotNil(t, evalCtx)
	return evalCtx
}

func (tc *testContext) encrypt(t *testing.T, m uint64) *Ciphertext {
	ct, err := tc.enc.EncryptNew(m)
	require.NoError(t, err)
	return ct
}

func (tc *testContext) decrypt(t *testing.T, ct *Ciphertext) uint64 {
	m, err := tc.dec.Decrypt(ct)
	require.NoError(t, err)
	return m
}

func (tc *testContext) decryptFull(t *testing.T, ct *Ciphertext) uint64 {
	m, err := tc.dec.DecryptMessageAndCarry(ct)
	require.NoError(t, err)
	return m
}

func TestShortintParameters(t *testing.T) {

	t.Run("FromLiteral", func(t *testing.T) {
		params, err := NewParametersFromLiteral(ParamsMessage2Carry2)
		require.NoError(t, err)
		require.Equal(t, uint64(4), params.MessageModulus())
		require.Equal(t, uint64(4), params.CarryModulus())
		require.Equal(t, uint64(16), params.ModulusSup())
		require.Equal(t, uint64(15), params.MaxDegree())
		require.Equal(t, uint64(5), params.MaxNoiseLevel())
		require.Equal(t, params.Q()/32, params.Delta())
	})

	t.Run("EncodeDecode", func(t *testing.T) {
		params, err := NewParametersFromLiteral(ParamsMessage2Carry2)
		require.NoError(t, err)
		for m := uint64(0); m < 32; m++ {
			require.Equal(t, m, params.Decode(params.Encode(m)))
		}
	})

	t.Run("InvalidLiteral", func(t *testing.T) {
		for _, tc := range []struct {
			name   string
			mutate func(*ParametersLiteral)
		}{
			{"MessageModulusOne", func(pl *ParametersLiteral) { pl.MessageModulus = 1 }},
			{"MessageModulusNotPow2", func(pl *ParametersLiteral) { pl.MessageModulus = 3 }},
			{"CarryModulusNotPow2", func(pl *ParametersLiteral) { pl.CarryModulus = 6 }},
			{"DegreeNotMultiple", func(pl *ParametersLiteral) { pl.MessageModulus = 128; pl.CarryModulus = 2 }},
			{"MaxNoiseLevelZero", func(pl *ParametersLiteral) { pl.MaxNoiseLevel = 0 }},
		} {
			t.Run(tc.name, func(t *testing.T) {
				pl := testParametersLiteral
				tc.mutate(&pl)
				_, err := NewParametersFromLiteral(pl)
				require.Error(t, err)
			})
		}
	})

	t.Run("Fingerprint", func(t *testing.T) {
		paramsA, err := NewParametersFromLiteral(testParametersLiteral)
		require.NoError(t, err)

		pl := testParametersLiteral
		pl.MessageModulus = 2
		pl.CarryModulus = 8
		paramsB, err := NewParametersFromLiteral(pl)
		require.NoError(t, err)

		// same core parameters, different plaintext split
		require.Equal(t, paramsA.Parameters.Fingerprint(), paramsB.Parameters.Fingerprint())
		require.NotEqual(t, paramsA.Fingerprint(), paramsB.Fingerprint())
	})
}

func TestShortintEncryptDecrypt(t *testing.T) {

	tc := evalTestContext(t)

	for m := uint64(0); m < 4; m++ {
		ct := tc.encrypt(t, m)
		require.Equal(t, uint64(3), ct.Degree)
		require.Equal(t, NoiseLevelNominal, ct.NoiseLevel)
		require.Equal(t, m, tc.decrypt(t, ct))
	}

	// messages are reduced mod MessageModulus
	require.Equal(t, uint64(2), tc.decrypt(t, tc.encrypt(t, 6)))
}

func TestUncheckedAdd(t *testing.T) {

	tc := evalTestContext(t)

	ct, err := tc.eval.UncheckedAdd(tc.encrypt(t, 3), tc.encrypt(t, 2))
	require.NoError(t, err)

	require.Equal(t, uint64(6), ct.Degree)
	require.Equal(t, NoiseLevel(2), ct.NoiseLevel)
	require.Equal(t, uint64(5), tc.decryptFull(t, ct))
	require.Equal(t, uint64(1), tc.decrypt(t, ct))
}

func TestUncheckedNeg(t *testing.T) {

	tc := evalTestContext(t)

	ct, err := tc.eval.UncheckedNeg(tc.encrypt(t, 1))
	require.NoError(t, err)

	require.Equal(t, uint64(4), ct.Degree)
	require.Equal(t, uint64(3), tc.decryptFull(t, ct))
	require.Equal(t, uint64(3), tc.decrypt(t, ct))
}

func TestUncheckedSub(t *testing.T) {

	tc := evalTestContext(t)

	ct, err := tc.eval.UncheckedSub(tc.encrypt(t, 1), tc.encrypt(t, 3))
	require.NoError(t, err)

	require.Equal(t, uint64(7), ct.Degree)
	require.Equal(t, NoiseLevel(2), ct.NoiseLevel)
	require.Equal(t, uint64(2), tc.decryptFull(t, ct))
	require.Equal(t, uint64(2), tc.decrypt(t, ct))
}

func TestUncheckedScalarOperations(t *testing.T) {

	tc := evalTestContext(t)

	t.Run("Add", func(t *testing.T) {
		ct, err := tc.eval.UncheckedScalarAdd(tc.encrypt(t, 2), 3)
		require.NoError(t, err)
		require.Equal(t, uint64(6), ct.Degree)
		require.Equal(t, NoiseLevelNominal, ct.NoiseLevel)
		require.Equal(t, uint64(5), tc.decryptFull(t, ct))
		require.Equal(t, uint64(1), tc.decrypt(t, ct))
	})

	t.Run("Mul", func(t *testing.T) {
		ct, err := tc.eval.UncheckedScalarMul(tc.encrypt(t, 3), 2)
		require.NoError(t, err)
		require.Equal(t, uint64(6), ct.Degree)
		require.Equal(t, NoiseLevel(2), ct.NoiseLevel)
		require.Equal(t, uint64(6), tc.decryptFull(t, ct))
		require.Equal(t, uint64(2), tc.decrypt(t, ct))
	})
}

func TestCheckedOperations(t *testing.T) {

	tc := evalTestContext(t)

	t.Run("AddWithinBudget", func(t *testing.T) {
		ct, err := tc.eval.CheckedAdd(tc.encrypt(t, 3), tc.encrypt(t, 2))
		require.NoError(t, err)
		require.Equal(t, uint64(5), tc.decryptFull(t, ct))
	})

	t.Run("CarryOverflow", func(t *testing.T) {
		ct, err := tc.eval.UncheckedScalarMul(tc.encrypt(t, 3), 5)
		require.NoError(t, err)
		require.Equal(t, uint64(15), ct.Degree)
		_, err = tc.eval.CheckedAdd(ct, tc.encrypt(t, 1))
		require.ErrorIs(t, err, ErrCarryOverflow)
	})

	t.Run("NoiseLevelExceeded", func(t *testing.T) {
		ct := tc.encrypt(t, 1)
		ct.NoiseLevel = 5
		_, err := tc.eval.CheckedAdd(ct, tc.encrypt(t, 0))
		require.ErrorIs(t, err, ErrNoiseLevelExceeded)
	})

	t.Run("SubWithinBudget", func(t *testing.T) {
		ct, err := tc.eval.CheckedSub(tc.encrypt(t, 1), tc.encrypt(t, 3))
		require.NoError(t, err)
		require.Equal(t, uint64(2), tc.decrypt(t, ct))
	})
}

func TestKeyswitchProgrammableBootstrap(t *testing.T) {

	tc := evalTestContext(t)

	t.Run("Identity", func(t *testing.T) {
		acc := tc.eval.GenerateAccumulator(func(v uint64) uint64 { return v % 4 })
		require.Equal(t, uint64(3), acc.Degree)

		for m := uint64(0); m < 4; m++ {
			ct, err := tc.eval.KeyswitchProgrammableBootstrap(tc.encrypt(t, m), acc)
			require.NoError(t, err)
			require.Equal(t, NoiseLevelNominal, ct.NoiseLevel)
			require.Equal(t, uint64(3), ct.Degree)
			require.Equal(t, m, tc.decrypt(t, ct))

			// a second refresh leaves the message unchanged
			ct, err = tc.eval.KeyswitchProgrammableBootstrap(ct, acc)
			require.NoError(t, err)
			require.Equal(t, m, tc.decrypt(t, ct))
		}
	})

	t.Run("Popcount", func(t *testing.T) {
		acc := tc.eval.GenerateAccumulator(func(v uint64) uint64 {
			return uint64(bits.OnesCount64(v))
		})
		require.Equal(t, uint64(4), acc.Degree)

		// 3 + 2 has message and carry value 5 = 0b0101
		sum, err := tc.eval.UncheckedAdd(tc.encrypt(t, 3), tc.encrypt(t, 2))
		require.NoError(t, err)

		ct, err := tc.eval.KeyswitchProgrammableBootstrap(sum, acc)
		require.NoError(t, err)
		require.Equal(t, uint64(2), tc.decryptFull(t, ct))
	})
}

func TestMessageExtract(t *testing.T) {

	tc := evalTestContext(t)

	sum, err := tc.eval.UncheckedAdd(tc.encrypt(t, 3), tc.encrypt(t, 2))
	require.NoError(t, err)
	require.Equal(t, uint64(5), tc.decryptFull(t, sum))

	ct, err := tc.eval.MessageExtract(sum)
	require.NoError(t, err)

	require.Equal(t, uint64(3), ct.Degree)
	require.Equal(t, NoiseLevelNominal, ct.NoiseLevel)
	require.Equal(t, uint64(1), tc.decryptFull(t, ct))
}

func TestSmartAdd(t *testing.T) {

	tc := evalTestContext(t)

	ct0, err := tc.eval.UncheckedScalarMul(tc.encrypt(t, 1), 3)
	require.NoError(t, err)
	ct1, err := tc.eval.UncheckedScalarMul(tc.encrypt(t, 1), 3)
	require.NoError(t, err)

	// degrees 9 + 9 exceed the carry space, so both operands are
	// bootstrapped before the addition
	ct, err := tc.eval.SmartAdd(ct0, ct1)
	require.NoError(t, err)

	require.Equal(t, uint64(3), ct0.Degree)
	require.Equal(t, uint64(3), ct1.Degree)
	require.Equal(t, uint64(6), tc.decryptFull(t, ct))
	require.Equal(t, uint64(2), tc.decrypt(t, ct))
}

func TestBivariatePBS(t *testing.T) {

	tc := evalTestContext(t)

	t.Run("Function", func(t *testing.T) {
		acc := tc.eval.GenerateBivariateAccumulator(func(x, y uint64) uint64 {
			return (2*x + y) % 4
		})
		ct, err := tc.eval.BivariatePBS(tc.encrypt(t, 1), tc.encrypt(t, 2), acc)
		require.NoError(t, err)
		require.Equal(t, uint64(0), tc.decrypt(t, ct))
	})

	t.Run("RejectsCarry", func(t *testing.T) {
		acc := tc.eval.GenerateBivariateAccumulator(func(x, y uint64) uint64 { return x })
		withCarry, err := tc.eval.UncheckedAdd(tc.encrypt(t, 3), tc.encrypt(t, 2))
		require.NoError(t, err)
		_, err = tc.eval.BivariatePBS(withCarry, tc.encrypt(t, 1), acc)
		require.ErrorIs(t, err, ErrCarryOverflow)
	})
}

func TestMul(t *testing.T) {

	tc := evalTestContext(t)

	t.Run("Unchecked", func(t *testing.T) {
		ct, err := tc.eval.UncheckedMul(tc.encrypt(t, 3), tc.encrypt(t, 2))
		require.NoError(t, err)
		require.Equal(t, uint64(2), tc.decrypt(t, ct))
	})

	t.Run("Smart", func(t *testing.T) {
		// 3 + 2 leaves a carry, SmartMul bootstraps it away first
		withCarry, err := tc.eval.UncheckedAdd(tc.encrypt(t, 3), tc.encrypt(t, 2))
		require.NoError(t, err)

		ct, err := tc.eval.SmartMul(withCarry, tc.encrypt(t, 2))
		require.NoError(t, err)
		require.Equal(t, uint64(2), tc.decrypt(t, ct))
	})
}

func TestShortintCrossParameterRejection(t *testing.T) {

	tc := evalTestContext(t)

	otherParams, err := NewParametersFromLiteral(testParametersLiteral)
	require.NoError(t, err)
	prng, err := sampling.NewKeyedPRNG([]byte{'y'})
	require.NoError(t, err)
	otherCk, _, err := GenerateKeysWithPRNG(otherParams, prng)
	require.NoError(t, err)

	otherEnc, err := NewEncryptor(otherCk)
	require.NoError(t, err)
	ctOther, err := otherEnc.EncryptNew(1)
	require.NoError(t, err)

	_, err = tc.eval.UncheckedAdd(tc.encrypt(t, 1), ctOther)
	require.ErrorIs(t, err, glwe.ErrParameterMismatch)

	_, err = tc.dec.Decrypt(ctOther)
	require.ErrorIs(t, err, glwe.ErrParameterMismatch)
}

func TestShortintSerialization(t *testing.T) {

	params, err := NewParametersFromLiteral(testParametersLiteral)
	require.NoError(t, err)

	prng, err := sampling.NewKeyedPRNG([]byte{'z'})
	require.NoError(t, err)

	ck, sk, err := GenerateKeysWithPRNG(params, prng)
	require.NoError(t, err)

	t.Run("Parameters", func(t *testing.T) {
		data, err := params.MarshalBinary()
		require.NoError(t, err)
		require.Equal(t, params.BinarySize(), len(data))

		var out Parameters
		require.NoError(t, out.UnmarshalBinary(data))
		require.True(t, params.Equal(&out))
	})

	t.Run("Ciphertext", func(t *testing.T) {
		enc, err := NewEncryptor(ck)
		require.NoError(t, err)
		ct, err := enc.EncryptNew(2)
		require.NoError(t, err)

		data, err := ct.MarshalBinary()
		require.NoError(t, err)
		require.Equal(t, ct.BinarySize(), len(data))

		out := &Ciphertext{}
		require.NoError(t, out.UnmarshalBinary(data))
		require.True(t, ct.Equal(out))

		m, err := NewDecryptor(ck).Decrypt(out)
		require.NoError(t, err)
		require.Equal(t, uint64(2), m)
	})

	t.Run("ClientKey", func(t *testing.T) {
		data, err := ck.MarshalBinary()
		require.NoError(t, err)
		require.Equal(t, ck.BinarySize(), len(data))

		out := &ClientKey{}
		require.NoError(t, out.UnmarshalBinary(data))
		require.Equal(t, ck.GetParameters().Fingerprint(), out.GetParameters().Fingerprint())

		// the rederived large key decrypts ciphertexts of the original key
		enc, err := NewEncryptor(ck)
		require.NoError(t, err)
		ct, err := enc.EncryptNew(3)
		require.NoError(t, err)
		m, err := NewDecryptor(out).Decrypt(ct)
		require.NoError(t, err)
		require.Equal(t, uint64(3), m)
	})

	t.Run("ServerKey", func(t *testing.T) {
		data, err := sk.MarshalBinary()
		require.NoError(t, err)
		require.Equal(t, sk.BinarySize(), len(data))

		out := &ServerKey{}
		require.NoError(t, out.UnmarshalBinary(data))
		require.Equal(t, sk.GetParameters().Fingerprint(), out.GetParameters().Fingerprint())
		require.Equal(t, sk.Bsk.InputDimension(), out.Bsk.InputDimension())
		require.Equal(t, sk.Ksk.InputDimension(), out.Ksk.InputDimension())
	})
}
