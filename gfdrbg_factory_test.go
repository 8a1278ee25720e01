// Copyright © 2021 Gridfinity, LLC. <admin@gridfinity.com>.
//
// All rights reserved.
//
// All use of this code is governed by the MIT license.
// The complete license is available in the LICENSE file.

package gfdrbg_test

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"testing"
	"time"

	"github.com/johnsonjh/gfdrbg"
	u "github.com/johnsonjh/leaktestfe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingEntropy returns distinct deterministic blocks
type countingEntropy struct {
	bits int
	n    uint64
}

func (
	e *countingEntropy,
) EntropySize() int {
	return e.bits
}

func (
	e *countingEntropy,
) IsPredictionResistant() bool {
	return false
}

func (
	e *countingEntropy,
) GetEntropy() (
	[]byte,
	error,
) {
	e.n++
	var ctr [8]byte
	binary.BigEndian.PutUint64(
		ctr[:],
		e.n,
	)
	sum := sha256.Sum256(
		concat(pass, ctr[:]),
	)
	return append([]byte(nil), sum[:(e.bits+7)/8]...), nil
}

// stuckEntropy always returns the same block
type stuckEntropy struct {
	bits int
}

func (
	e *stuckEntropy,
) EntropySize() int {
	return e.bits
}

func (
	e *stuckEntropy,
) IsPredictionResistant() bool {
	return false
}

func (
	e *stuckEntropy,
) GetEntropy() (
	[]byte,
	error,
) {
	return make([]byte, (e.bits+7)/8), nil
}

func concat(
	a,
	b []byte,
) []byte {
	return append(
		append([]byte(nil), a...),
		b...,
	)
}

func deterministicFactory() *gfdrbg.Factory {
	return gfdrbg.NewFactory(
		gfdrbg.WithEntropyProvider(func(bits int) gfdrbg.EntropySource {
			return &countingEntropy{bits: bits}
		}),
		gfdrbg.WithSource(bytes.NewReader(make([]byte, 4096))),
		gfdrbg.WithClock(func() time.Time {
			return time.Unix(1600000000, 0)
		}),
		gfdrbg.WithPersonalization([]byte("deterministic")),
	)
}

func allSpecs(
	f *gfdrbg.Factory,
) []gfdrbg.RandomSpec {
	var specs []gfdrbg.RandomSpec
	for _, d := range f.Digests() {
		specs = append(specs,
			gfdrbg.RandomSpec{Kind: gfdrbg.KindHash, Primitive: d.Name},
			gfdrbg.RandomSpec{Kind: gfdrbg.KindHMAC, Primitive: d.Name},
		)
	}
	for _, c := range f.Ciphers() {
		specs = append(specs,
			gfdrbg.RandomSpec{Kind: gfdrbg.KindCTR, Primitive: c.Name},
			gfdrbg.RandomSpec{Kind: gfdrbg.KindX931, Primitive: c.Name},
		)
	}
	return specs
}

func TestFactoryCreatesEverySpec(
	t *testing.T,
) {
	defer u.Leakplug(
		t,
	)
	f := gfdrbg.NewFactory(
		gfdrbg.WithHealthCheck(true),
	)
	for _, spec := range allSpecs(f) {
		for _, pr := range []bool{false, true} {
			spec.PredictionResistant = pr
			r, err := f.CreateRandom(
				spec,
			)
			require.NoError(t, err, spec.String())
			assert.Equal(t, pr, r.PredictionResistant())
			out := make([]byte, 100)
			require.NoError(t, r.NextBytes(out), spec.String())
			assert.NotEqual(t, make([]byte, 100), out, spec.String())
		}
	}
}

func TestFactoryDeterministic(
	t *testing.T,
) {
	defer u.Leakplug(
		t,
	)
	a := deterministicFactory()
	b := deterministicFactory()
	for _, spec := range allSpecs(a) {
		ra, err := a.CreateRandom(spec)
		require.NoError(t, err, spec.String())
		rb, err := b.CreateRandom(spec)
		require.NoError(t, err, spec.String())
		outA := make([]byte, 64)
		outB := make([]byte, 64)
		require.NoError(t, ra.NextBytes(outA))
		require.NoError(t, rb.NextBytes(outB))
		assert.Equal(t, outA, outB, spec.String())
	}
}

func TestFactoryInvalidSpec(
	t *testing.T,
) {
	defer u.Leakplug(
		t,
	)
	f := gfdrbg.NewFactory()
	for _, spec := range []gfdrbg.RandomSpec{
		{Kind: gfdrbg.KindCTR, Primitive: "ROT13"},
		{Kind: gfdrbg.KindHash, Primitive: "AES-128"},
		{Kind: gfdrbg.KindHMAC, Primitive: "MD5"},
		{Kind: gfdrbg.KindX931, Primitive: "SHA-256"},
		{Kind: gfdrbg.Kind(42), Primitive: "AES-128"},
	} {
		_, err := f.CreateRandom(
			spec,
		)
		require.ErrorIs(t, err, gfdrbg.ErrInvalidSpec, spec.String())
	}
}

func TestFactoryLookupIgnoresCase(
	t *testing.T,
) {
	defer u.Leakplug(
		t,
	)
	f := gfdrbg.NewFactory()
	r, err := f.CreateRandom(
		gfdrbg.RandomSpec{Kind: gfdrbg.KindCTR, Primitive: "aes-128"},
	)
	require.NoError(t, err)
	assert.Equal(t, "SP800-CTR-AES-128", r.Algorithm())
}

func TestFactoryListings(
	t *testing.T,
) {
	defer u.Leakplug(
		t,
	)
	f := gfdrbg.NewFactory()
	assert.Equal(t, gfdrbg.DefaultCiphers()[0].Name, f.Ciphers()[0].Name)
	assert.Len(t, f.Ciphers(), len(gfdrbg.DefaultCiphers()))
	assert.Len(t, f.Digests(), len(gfdrbg.DefaultDigests()))

	narrow := gfdrbg.NewFactory(
		gfdrbg.WithCiphers(cipherSpec(t, "AES-128")),
		gfdrbg.WithDigests(digestSpec(t, "SHA-512")),
	)
	assert.Len(t, narrow.Ciphers(), 1)
	_, err := narrow.CreateRandom(
		gfdrbg.RandomSpec{Kind: gfdrbg.KindCTR, Primitive: "SM4"},
	)
	require.ErrorIs(t, err, gfdrbg.ErrInvalidSpec)
}

func TestCombinedValidation(
	t *testing.T,
) {
	defer u.Leakplug(
		t,
	)
	f := gfdrbg.NewFactory()
	ctr := func(name string) gfdrbg.RandomSpec {
		return gfdrbg.RandomSpec{Kind: gfdrbg.KindCTR, Primitive: name}
	}
	hash := func(name string) gfdrbg.RandomSpec {
		return gfdrbg.RandomSpec{Kind: gfdrbg.KindHash, Primitive: name}
	}
	for _, pair := range [][2]gfdrbg.RandomSpec{
		{ctr("AES-256"), hash("SHA-512")},
		{ctr("DESede"), hash("SHA-512")},
		{ctr("Twofish-192"), hash("SHA-512")},
		{ctr("AES-128"), hash("SHA-256")},
		{ctr("AES-128"), {Kind: gfdrbg.KindHMAC, Primitive: "SHA-512"}},
		{hash("SHA-512"), hash("SHA-512")},
		{ctr("ROT13"), hash("SHA-512")},
	} {
		_, err := f.CreateCombined(
			pair[0],
			pair[1],
		)
		require.ErrorIs(t, err, gfdrbg.ErrInvalidCombination, pair[0].String()+" "+pair[1].String())
	}

	c, err := f.CreateCombined(
		ctr("AES-128"),
		hash("SHA-512"),
	)
	require.NoError(t, err)
	assert.Equal(t, "SP800-CTR-AES-128+DIGEST-SHA-512", c.Algorithm())
	out := make([]byte, 3*gfdrbg.SP800MaxBitsRequest/8)
	require.NoError(t, c.NextBytes(out))
	require.NoError(t, c.Reseed(nil))
}

func TestCombinedIsXOR(
	t *testing.T,
) {
	defer u.Leakplug(
		t,
	)
	a := deterministicFactory()
	b := deterministicFactory()
	c, err := a.CreateCombined(
		gfdrbg.RandomSpec{Kind: gfdrbg.KindCTR, Primitive: "SM4"},
		gfdrbg.RandomSpec{Kind: gfdrbg.KindHash, Primitive: "SHA3-512"},
	)
	require.NoError(t, err)
	ctr, err := b.CreateRandom(
		gfdrbg.RandomSpec{Kind: gfdrbg.KindCTR, Primitive: "SM4"},
	)
	require.NoError(t, err)
	h, err := b.CreateRandom(
		gfdrbg.RandomSpec{Kind: gfdrbg.KindHash, Primitive: "SHA3-512"},
	)
	require.NoError(t, err)

	got := make([]byte, 48)
	require.NoError(t, c.NextBytes(got))
	x := make([]byte, 48)
	y := make([]byte, 48)
	require.NoError(t, ctr.NextBytes(x))
	require.NoError(t, h.NextBytes(y))
	for i := range x {
		x[i] ^= y[i]
	}
	assert.Equal(t, x, got)
}

func TestGenerateRandomCombined(
	t *testing.T,
) {
	defer u.Leakplug(
		t,
	)
	f := gfdrbg.NewFactory()
	for i := 0; i < 20; i++ {
		c, err := f.GenerateRandomCombined()
		require.NoError(t, err)
		cs, ok := f.Cipher(
			c.CTR().Algorithm()[len("SP800-CTR-"):],
		)
		require.True(t, ok)
		assert.Equal(t, 128, cs.BlockBits)
		assert.Equal(t, 128, cs.KeyBits)
		ds, ok := f.Digest(
			c.Hash().Algorithm()[len("DIGEST-"):],
		)
		require.True(t, ok)
		assert.Equal(t, 512, ds.Bits)
	}

	empty := gfdrbg.NewFactory(
		gfdrbg.WithCiphers(cipherSpec(t, "AES-256")),
	)
	_, err := empty.GenerateRandomCombined()
	require.ErrorIs(t, err, gfdrbg.ErrInvalidCombination)
}

func TestFactorySelfSeed(
	t *testing.T,
) {
	defer u.Leakplug(
		t,
	)
	f := gfdrbg.NewFactory()
	before := gfdrbg.DefaultStats.Copy()
	require.NoError(t, f.SelfSeed())
	assert.Equal(t, before.CombinedCreated+1, gfdrbg.DefaultStats.Copy().CombinedCreated)
	buf := make([]byte, 32)
	_, err := f.Read(buf)
	require.NoError(t, err)
	r, err := f.CreateRandom(
		gfdrbg.RandomSpec{Kind: gfdrbg.KindX931, Primitive: "AES-128"},
	)
	require.NoError(t, err)
	require.NoError(t, r.NextBytes(buf))
}

func TestFactoryHealthCheck(
	t *testing.T,
) {
	defer u.Leakplug(
		t,
	)
	f := gfdrbg.NewFactory(
		gfdrbg.WithHealthCheck(true),
		gfdrbg.WithEntropyProvider(func(bits int) gfdrbg.EntropySource {
			return &stuckEntropy{bits: bits}
		}),
	)
	r, err := f.CreateRandom(
		gfdrbg.RandomSpec{Kind: gfdrbg.KindHMAC, Primitive: "SHA-256"},
	)
	require.NoError(t, err)
	err = r.Reseed(
		nil,
	)
	require.ErrorIs(t, err, gfdrbg.ErrInsufficientEntropy)
}

func TestFactoryCreateFromConfig(
	t *testing.T,
) {
	defer u.Leakplug(
		t,
	)
	f := gfdrbg.NewFactory()
	r, err := f.CreateFromConfig(
		&gfdrbg.Config{
			Spec:                "HMAC-SHA-512",
			PredictionResistant: true,
		},
	)
	require.NoError(t, err)
	assert.True(t, r.PredictionResistant())
	assert.Equal(t, "SP800-HMAC-SHA-512", r.Algorithm())

	_, err = f.CreateFromConfig(
		&gfdrbg.Config{
			Spec: "CTR",
		},
	)
	require.ErrorIs(t, err, gfdrbg.ErrInvalidSpec)
}

func TestCombinedRejectsWideBlock(
	t *testing.T,
) {
	defer u.Leakplug(
		t,
	)
	wide := gfdrbg.CipherSpec{
		Name:      "Wide",
		Family:    "Wide",
		KeyBits:   128,
		BlockBits: 256,
		New:       gfdrbg.NewAESCipher,
	}
	f := gfdrbg.NewFactory(
		gfdrbg.WithCiphers(
			wide,
			cipherSpec(t, "AES-128"),
		),
	)
	hash := gfdrbg.RandomSpec{
		Kind:      gfdrbg.KindHash,
		Primitive: "SHA-512",
	}
	_, err := f.CreateCombined(
		gfdrbg.RandomSpec{Kind: gfdrbg.KindCTR, Primitive: "Wide"},
		hash,
	)
	require.ErrorIs(t, err, gfdrbg.ErrInvalidCombination)

	require.NoError(
		t,
		f.ValidateCombined(
			gfdrbg.RandomSpec{Kind: gfdrbg.KindCTR, Primitive: "AES-128"},
			hash,
		),
	)
}
