// Copyright © 2021 Gridfinity, LLC. <admin@gridfinity.com>.
//
// All rights reserved.
//
// All use of this code is governed by the MIT license.
// The complete license is available in the LICENSE file.

package gfdrbg // import "github.com/johnsonjh/gfdrbg"

import (
	"bytes"
	"encoding/hex"

	"github.com/pkg/errors"
)

// FixedEntropy replays a list of blocks, failing once they run out.
// It is intended for known-answer tests.
type FixedEntropy struct {
	bits   int
	blocks [][]byte
}

// NewFixedEntropy returns a source reporting bits per block and
// returning blocks in order.
func NewFixedEntropy(
	bits int,
	blocks ...[]byte,
) *FixedEntropy {
	return &FixedEntropy{
		bits:   bits,
		blocks: blocks,
	}
}

// EntropySize ...
func (
	e *FixedEntropy,
) EntropySize() int {
	return e.bits
}

// IsPredictionResistant ...
func (
	e *FixedEntropy,
) IsPredictionResistant() bool {
	return false
}

// GetEntropy ...
func (
	e *FixedEntropy,
) GetEntropy() (
	[]byte,
	error,
) {
	if len(e.blocks) == 0 {
		return nil, errors.Wrap(
			ErrInsufficientEntropy,
			"fixed entropy exhausted",
		)
	}
	b := e.blocks[0]
	e.blocks = e.blocks[1:]
	return b, nil
}

type knownAnswer struct {
	name     string
	generate func() ([]byte, error)
	expected string
}

func mustHex(
	s string,
) []byte {
	b, err := hex.DecodeString(
		s,
	)
	if err != nil {
		panic(
			err,
		)
	}
	return b
}

var knownAnswers = []knownAnswer{
	{
		name: "SP800-CTR-AES-128",
		generate: func() ([]byte, error) {
			d, err := NewCTRDRBG(
				CipherSpec{Name: "AES-128", Family: "AES", KeyBits: 128, BlockBits: 128, New: NewAESCipher},
				NewFixedEntropy(128, mustHex("890eb067acf7382eff80b0c73bc872c6")),
				nil,
				mustHex("aad471ef3ef1d203"),
			)
			if err != nil {
				return nil, err
			}
			return secondBlock(d, 64)
		},
		expected: "a5514ed7095f64f3d0d3a5760394ab42062f373a25072a6ea6bcfd8489e94af6" +
			"cf18659fea22ed1ca0a9e33f718b115ee536b12809c31b72b08ddd8be1910fa3",
	},
	{
		name: "SP800-HMAC-SHA-256",
		generate: func() ([]byte, error) {
			d, err := NewHMACDRBG(
				sha256Spec(),
				NewFixedEntropy(256, mustHex("ca851911349384bffe89de1cbdc46e6831e44d34a4fb935ee285dd14b71a7488")),
				nil,
				mustHex("659ba96c601dc69fc902940805ec0ca8"),
			)
			if err != nil {
				return nil, err
			}
			return secondBlock(d, 128)
		},
		expected: "e528e9abf2dece54d47c7e75e5fe302149f817ea9fb4bee6f4199697d04d5b89" +
			"d54fbb978a15b5c443c9ec21036d2460b6f73ebad0dc2aba6e624abf07745bc1" +
			"07694bb7547bb0995f70de25d6b29e2d3011bb19d27676c07162c8b5ccde0668" +
			"961df86803482cb37ed6d5c0bb8d50cf1f50d476aa0458bdaba806f48be9dcb8",
	},
	{
		name: "X931-AES-128",
		generate: func() ([]byte, error) {
			d, err := NewX931DRBG(
				CipherSpec{Name: "AES-128", Family: "AES", KeyBits: 128, BlockBits: 128, New: NewAESCipher},
				mustHex("f3b1666d13607242ed061cabb8d46202"),
				NewFixedEntropy(128, mustHex("80000000000000000000000000000000")),
				mustHex("e6b3be782a23fa62d71d4afbb0e922f9"),
			)
			if err != nil {
				return nil, err
			}
			out := make([]byte, 16)
			_, err = d.Generate(out, nil, false)
			return out, err
		},
		expected: "59531ed13bb0c05584796685c12f7641",
	},
}

func sha256Spec() DigestSpec {
	for _, d := range DefaultDigests() {
		if d.Name == "SHA-256" {
			return d
		}
	}
	return DigestSpec{}
}

// secondBlock discards one n byte output and returns the next
func secondBlock(
	g Generator,
	n int,
) (
	[]byte,
	error,
) {
	out := make(
		[]byte,
		n,
	)
	for i := 0; i < 2; i++ {
		_, err := g.Generate(
			out,
			nil,
			false,
		)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// SelfTest runs the built-in known-answer tests for the CTR, HMAC and
// X9.31 generators.
func SelfTest() error {
	for _, ka := range knownAnswers {
		got, err := ka.generate()
		if err != nil {
			return errors.Wrapf(
				err,
				"self test %s",
				ka.name,
			)
		}
		if !bytes.Equal(
			got,
			mustHex(ka.expected),
		) {
			return errors.Errorf(
				"self test %s: got %x",
				ka.name,
				got,
			)
		}
	}
	return nil
}
