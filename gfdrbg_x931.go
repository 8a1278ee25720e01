// Copyright © 2020 Gridfinity, LLC. <admin@gridfinity.com>.
// Copyright © 2020 Jeffrey H. Johnson <jeff@gridfinity.com>.
//
// All rights reserved.
//
// All use of this code is governed by the MIT license.
// The complete license is available in the LICENSE file.

package gfdrbg // import "github.com/johnsonjh/gfdrbg"

import (
	"crypto/cipher"

	"github.com/pkg/errors"
	"github.com/templexxx/xor"
)

// X931DRBG is an ANSI X9.31 (appendix A.2.4) generator.
//
// Additional input is accepted to satisfy Generator and ignored: X9.31
// has no additional input parameter.
type X931DRBG struct {
	spec           CipherSpec
	block          cipher.Block
	entropy        EntropySource
	dt             *ByteCounter
	v              []byte // nil until the first entropy draw
	i              []byte
	r              []byte
	reseedCounter  *ByteCounter
	reseedMax      uint64
	maxBitsRequest int
}

// NewX931DRBG keys spec with key and seeds the date/time vector from
// dateTimeVector, truncated or zero padded to the block length. V is
// drawn from entropy on first use.
func NewX931DRBG(
	spec CipherSpec,
	key []byte,
	entropy EntropySource,
	dateTimeVector []byte,
) (
	*X931DRBG,
	error,
) {
	if spec.New == nil {
		return nil, errors.Wrapf(
			ErrInvalidSpec,
			"cipher %q",
			spec.Name,
		)
	}
	block, err := spec.New(
		key,
	)
	if err != nil {
		return nil, errors.Wrap(
			err,
			"x9.31 key",
		)
	}
	bs := block.BlockSize()
	d := &X931DRBG{
		spec:           spec,
		block:          block,
		entropy:        entropy,
		dt:             NewByteCounter(bs),
		i:              make([]byte, bs),
		r:              make([]byte, bs),
		reseedCounter:  NewByteCounter(reseedCounterSize),
		reseedMax:      X931ReseedMax,
		maxBitsRequest: X931MaxBitsRequest,
	}
	switch bs {
	case 8:
		d.reseedMax = X931ReseedMax64
		d.maxBitsRequest = X931MaxBitsRequest64
	case 16:
	default:
		return nil, errors.Wrapf(
			ErrInvalidSpec,
			"cipher %q: %d byte block",
			spec.Name,
			bs,
		)
	}
	copy(
		d.dt.Bytes(),
		dateTimeVector,
	)
	d.reseedCounter.Set(
		1,
	)
	return d, nil
}

// BlockSize ...
func (
	d *X931DRBG,
) BlockSize() int {
	return len(
		d.r,
	)
}

// MaxRequest returns the largest request in bytes
func (
	d *X931DRBG,
) MaxRequest() int {
	return d.maxBitsRequest / 8
}

// Algorithm ...
func (
	d *X931DRBG,
) Algorithm() string {
	return "X931-" + d.spec.Name
}

// Generate fills out with random bytes
func (
	d *X931DRBG,
) Generate(
	out,
	_ []byte,
	predictionResistant bool,
) (
	int,
	error,
) {
	if tooLarge(
		out,
		d.maxBitsRequest,
	) {
		countRejected()
		return 0, errors.Wrapf(
			ErrRequestTooLarge,
			"%d bytes requested from %s",
			len(out),
			d.Algorithm(),
		)
	}
	if d.reseedCounter.ExceedsOrEquals(
		d.reseedMax,
	) {
		countReseedRequired()
		return 0, ErrReseedRequired
	}
	if predictionResistant || d.v == nil {
		v, err := d.drawV()
		if err != nil {
			return 0, err
		}
		d.v = v
	}
	bs := len(d.r)
	for off := 0; off < len(out); off += bs {
		d.block.Encrypt(
			d.i,
			d.dt.Bytes(),
		)
		d.process(
			d.r,
			d.i,
			d.v,
		)
		d.process(
			d.v,
			d.r,
			d.i,
		)
		copy(
			out[off:],
			d.r,
		)
		d.dt.Increment()
	}
	d.reseedCounter.Increment()
	countGenerate(
		len(out),
	)
	return len(out) * 8, nil
}

// Reseed draws a fresh V
func (
	d *X931DRBG,
) Reseed(
	_ []byte,
) error {
	v, err := d.drawV()
	if err != nil {
		return err
	}
	d.v = v
	d.reseedCounter.Set(
		1,
	)
	countReseed()
	return nil
}

// drawV requires exactly one block of entropy
func (
	d *X931DRBG,
) drawV() (
	[]byte,
	error,
) {
	v, err := drawEntropy(
		d.entropy,
		len(d.r),
	)
	if err != nil {
		return nil, err
	}
	if len(v) != len(d.r) {
		return nil, errors.Wrapf(
			ErrInsufficientEntropy,
			"x9.31 needs exactly %d bytes, got %d",
			len(d.r),
			len(v),
		)
	}
	return append(
		[]byte(nil),
		v...,
	), nil
}

// process sets res = E(a ^ b)
func (
	d *X931DRBG,
) process(
	res,
	a,
	b []byte,
) {
	xor.Bytes(
		res,
		a,
		b,
	)
	d.block.Encrypt(
		res,
		res,
	)
}
