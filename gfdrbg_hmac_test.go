// Copyright © 2021 Gridfinity, LLC. <admin@gridfinity.com>.
//
// All rights reserved.
//
// All use of this code is governed by the MIT license.
// The complete license is available in the LICENSE file.

package gfdrbg_test

import (
	"testing"

	"github.com/johnsonjh/gfdrbg"
	u "github.com/johnsonjh/leaktestfe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// CAVP HMAC_DRBG SHA-256, no reseed, no additional input
const (
	hmacEntropy  = "ca851911349384bffe89de1cbdc46e6831e44d34a4fb935ee285dd14b71a7488"
	hmacNonce    = "659ba96c601dc69fc902940805ec0ca8"
	hmacExpected = "e528e9abf2dece54d47c7e75e5fe302149f817ea9fb4bee6f4199697d04d5b89" +
		"d54fbb978a15b5c443c9ec21036d2460b6f73ebad0dc2aba6e624abf07745bc1" +
		"07694bb7547bb0995f70de25d6b29e2d3011bb19d27676c07162c8b5ccde0668" +
		"961df86803482cb37ed6d5c0bb8d50cf1f50d476aa0458bdaba806f48be9dcb8"
)

func newKATHMAC(
	t testing.TB,
) *gfdrbg.HMACDRBG {
	d, err := gfdrbg.NewHMACDRBG(
		digestSpec(t, "SHA-256"),
		gfdrbg.NewFixedEntropy(256, unhex(t, hmacEntropy)),
		nil,
		unhex(t, hmacNonce),
	)
	require.NoError(
		t,
		err,
	)
	return d
}

func newHMAC(
	t testing.TB,
	name string,
) *gfdrbg.HMACDRBG {
	spec := digestSpec(
		t,
		name,
	)
	d, err := gfdrbg.NewHMACDRBG(
		spec,
		gfdrbg.NewSystemEntropy(spec.SecurityStrength()),
		personalization(name),
		pass[:16],
	)
	require.NoError(
		t,
		err,
	)
	return d
}

func TestHMACKnownAnswer(
	t *testing.T,
) {
	defer u.Leakplug(
		t,
	)
	d := newKATHMAC(
		t,
	)
	out := make(
		[]byte,
		128,
	)
	for i := 0; i < 2; i++ {
		bits, err := d.Generate(
			out,
			nil,
			false,
		)
		require.NoError(t, err)
		assert.Equal(t, 1024, bits)
	}
	assert.Equal(t, unhex(t, hmacExpected), out)
}

func TestHMACDeterministic(
	t *testing.T,
) {
	defer u.Leakplug(
		t,
	)
	a := newKATHMAC(
		t,
	)
	b := newKATHMAC(
		t,
	)
	outA := make([]byte, 77)
	outB := make([]byte, 77)
	for i := 0; i < 3; i++ {
		_, err := a.Generate(outA, personalization("round"), false)
		require.NoError(t, err)
		_, err = b.Generate(outB, personalization("round"), false)
		require.NoError(t, err)
		assert.Equal(t, outA, outB)
	}
}

func TestHMACAllDigests(
	t *testing.T,
) {
	defer u.Leakplug(
		t,
	)
	for _, spec := range gfdrbg.DefaultDigests() {
		t.Run(spec.Name, func(t *testing.T) {
			d := newHMAC(
				t,
				spec.Name,
			)
			assert.Equal(t, "SP800-HMAC-"+spec.Name, d.Algorithm())
			assert.Equal(t, spec.Size(), d.BlockSize())
			for _, n := range []int{0, 1, spec.Size() + 1, 1000} {
				out := make([]byte, n)
				bits, err := d.Generate(out, nil, false)
				require.NoError(t, err)
				assert.Equal(t, n*8, bits)
			}
		})
	}
}

func TestHMACRequestTooLarge(
	t *testing.T,
) {
	defer u.Leakplug(
		t,
	)
	d := newHMAC(
		t,
		"SHA-512",
	)
	key, v := d.State()
	_, err := d.Generate(
		make([]byte, gfdrbg.SP800MaxBitsRequest/8+1),
		nil,
		false,
	)
	require.ErrorIs(t, err, gfdrbg.ErrRequestTooLarge)
	key2, v2 := d.State()
	assert.Equal(t, key, key2)
	assert.Equal(t, v, v2)
	assert.Equal(t, uint64(1), d.ReseedCounter())
}

func TestHMACReseedLimit(
	t *testing.T,
) {
	defer u.Leakplug(
		t,
	)
	d := newHMAC(
		t,
		"SHA3-256",
	)
	out := make(
		[]byte,
		32,
	)
	d.SetReseedCounter(
		gfdrbg.SP800ReseedMax,
	)
	_, err := d.Generate(out, nil, false)
	require.ErrorIs(t, err, gfdrbg.ErrReseedRequired)
	require.NoError(t, d.Reseed(personalization("reseed")))
	assert.Equal(t, uint64(1), d.ReseedCounter())
	_, err = d.Generate(out, nil, false)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), d.ReseedCounter())
}

func TestHMACPredictionResistanceDrawsEntropy(
	t *testing.T,
) {
	defer u.Leakplug(
		t,
	)
	newPR := func() *gfdrbg.HMACDRBG {
		d, err := gfdrbg.NewHMACDRBG(
			digestSpec(t, "SHA-256"),
			gfdrbg.NewFixedEntropy(256, unhex(t, hmacEntropy), pass[:32]),
			nil,
			unhex(t, hmacNonce),
		)
		require.NoError(t, err)
		return d
	}
	additional := personalization("additional")

	d := newPR()
	out := make([]byte, 32)
	_, err := d.Generate(out, additional, true)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), d.ReseedCounter())

	twin := newPR()
	require.NoError(t, twin.Reseed(additional))
	want := make([]byte, 32)
	_, err = twin.Generate(want, nil, false)
	require.NoError(t, err)
	assert.Equal(t, want, out)

	_, err = d.Generate(out, nil, true)
	require.ErrorIs(t, err, gfdrbg.ErrInsufficientEntropy)
}

func TestHMACInsufficientEntropy(
	t *testing.T,
) {
	defer u.Leakplug(
		t,
	)
	_, err := gfdrbg.NewHMACDRBG(
		digestSpec(t, "SHA-512"),
		gfdrbg.NewSystemEntropy(128),
		nil,
		nil,
	)
	require.ErrorIs(t, err, gfdrbg.ErrInsufficientEntropy)
}

func BenchmarkHMACSHA256(
	b *testing.B,
) {
	benchGenerator(
		b,
		newHMAC(b, "SHA-256"),
	)
}

func BenchmarkHMACSM3(
	b *testing.B,
) {
	benchGenerator(
		b,
		newHMAC(b, "SM3"),
	)
}
