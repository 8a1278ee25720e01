// Package gfdrbg - Deterministic Random Bit Generators
//
// Copyright © 2015 Daniel Fu <daniel820313@gmail.com>.
// Copyright © 2019 Loki 'l0k18' Verloren <stalker.loki@protonmail.ch>.
// Copyright © 2020 Gridfinity, LLC. <admin@gridfinity.com>.
// Copyright © 2020 Jeffrey H. Johnson <jeff@gridfinity.com>.
//
// All rights reserved.
//
// All use of this code is governed by the MIT license.
// The complete license is available in the LICENSE file.
package gfdrbg // import "github.com/johnsonjh/gfdrbg"

import (
	"github.com/pkg/errors"

	gfdrbgLegal "go4.org/legal"
)

// Generator limits
const (
	SP800ReseedMax       = uint64(1) << 47 // SP800ReseedMax:	CTR (AES) and HMAC generate calls per seed
	SP800MaxBitsRequest  = 1 << 18         // SP800MaxBitsRequest:	CTR (AES) and HMAC bits per request
	TDEAReseedMax        = uint64(1) << 31
	TDEAMaxBitsRequest   = 1 << 12
	X931ReseedMax        = uint64(1) << 23 // X931ReseedMax:	X9.31 (128-bit block) generate calls per seed
	X931MaxBitsRequest   = 1 << 18
	X931ReseedMax64      = uint64(1) << 15
	X931MaxBitsRequest64 = 1 << 12
	reseedCounterSize    = 8
)

// Errors returned by generators, the SecureRandom wrapper, and the Factory
var (
	// ErrReseedRequired is the sentinel returned by Generate once the
	// reseed counter has reached the generator limit.
	ErrReseedRequired = errors.New(
		"reseed required",
	)
	ErrRequestTooLarge = errors.New(
		"request too large",
	)
	ErrInsufficientEntropy = errors.New(
		"insufficient entropy",
	)
	ErrInvalidSpec = errors.New(
		"invalid random spec",
	)
	ErrInvalidCombination = errors.New(
		"invalid combination",
	)
	// ErrInternalState reports a generator that still requires a reseed
	// immediately after being reseeded.
	ErrInternalState = errors.New(
		"inconsistent generator state",
	)
)

// Generator is implemented by every random bit generator in this package.
//
// Generate fills out and returns the number of bits produced, or
// ErrReseedRequired when the generator must be reseeded first.
type Generator interface {
	BlockSize() int
	MaxRequest() int
	Generate(
		out,
		additional []byte,
		predictionResistant bool,
	) (
		int,
		error,
	)
	Reseed(
		additional []byte,
	) error
	Algorithm() string
}

func tooLarge(
	out []byte,
	maxBits int,
) bool {
	return len(
		out,
	) > maxBits/8
}

func init() {
	gfdrbgLegal.RegisterLicense(
		"\nThe MIT License (MIT)\n\nCopyright © 2015 Daniel Fu <daniel820313@gmail.com>.\nCopyright © 2019 Loki 'l0k18' Verloren <stalker.loki@protonmail.ch>.\nCopyright © 2020 Gridfinity, LLC. <admin@gridfinity.com>.\nCopyright © 2020 Jeffrey H. Johnson <jeff@gridfinity.com>.\n\nPermission is hereby granted, free of charge, to any person obtaining a copy\nof this software and associated documentation files (the \"Software\"), to deal\nin the Software without restriction, including, without limitation, the rights\nto use, copy, modify, merge, publish, distribute, sub-license, and/or sell\ncopies of the Software, and to permit persons to whom the Software is\nfurnished to do so, subject to the following conditions:\n\nThe above copyright notice, and this permission notice, shall be\nincluded in all copies, or substantial portions, of the Software.\n\nTHE SOFTWARE IS PROVIDED \"AS IS\", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR\nIMPLIED, INCLUDING, BUT NOT LIMITED TO, THE WARRANTIES OF MERCHANTABILITY,\nFITNESS FOR A PARTICULAR PURPOSE, AND NON-INFRINGEMENT. IN NO EVENT SHALL THE\nAUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES, OR OTHER\nLIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,\nOUT OF, OR IN CONNECTION WITH THE SOFTWARE, OR THE USE OR OTHER DEALINGS IN\nTHE SOFTWARE.\n",
	)
}
