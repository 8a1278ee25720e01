// Copyright © 2020 Gridfinity, LLC. <admin@gridfinity.com>.
// Copyright © 2020 Jeffrey H. Johnson <jeff@gridfinity.com>.
//
// All rights reserved.
//
// All use of this code is governed by the MIT license.
// The complete license is available in the LICENSE file.

package gfdrbg // import "github.com/johnsonjh/gfdrbg"

import (
	"crypto/hmac"

	"github.com/pkg/errors"
)

// HMACDRBG is an SP 800-90A HMAC_DRBG
type HMACDRBG struct {
	spec             DigestSpec
	entropy          EntropySource
	key              []byte
	v                []byte
	reseedCounter    *ByteCounter
	securityStrength int
}

// NewHMACDRBG instantiates an HMAC_DRBG over spec
func NewHMACDRBG(
	spec DigestSpec,
	entropy EntropySource,
	personalization,
	nonce []byte,
) (
	*HMACDRBG,
	error,
) {
	if spec.New == nil || spec.Size() == 0 {
		return nil, errors.Wrapf(
			ErrInvalidSpec,
			"digest %q",
			spec.Name,
		)
	}
	d := &HMACDRBG{
		spec:             spec,
		entropy:          entropy,
		key:              make([]byte, spec.Size()),
		v:                make([]byte, spec.Size()),
		reseedCounter:    NewByteCounter(reseedCounterSize),
		securityStrength: spec.SecurityStrength(),
	}
	if entropy.EntropySize() < d.securityStrength {
		return nil, errors.Wrapf(
			ErrInsufficientEntropy,
			"%d bit source for %d bit strength",
			entropy.EntropySize(),
			d.securityStrength,
		)
	}
	e, err := drawEntropy(
		entropy,
		(d.securityStrength+7)/8,
	)
	if err != nil {
		return nil, err
	}
	for i := range d.v {
		d.v[i] = 0x01
	}
	d.update(
		concat(
			e,
			nonce,
			personalization,
		),
	)
	d.reseedCounter.Set(
		1,
	)
	return d, nil
}

// BlockSize ...
func (
	d *HMACDRBG,
) BlockSize() int {
	return d.spec.Size()
}

// MaxRequest returns the largest request in bytes
func (
	d *HMACDRBG,
) MaxRequest() int {
	return SP800MaxBitsRequest / 8
}

// Algorithm ...
func (
	d *HMACDRBG,
) Algorithm() string {
	return "SP800-HMAC-" + d.spec.Name
}

// Generate fills out with random bytes
func (
	d *HMACDRBG,
) Generate(
	out,
	additional []byte,
	predictionResistant bool,
) (
	int,
	error,
) {
	if tooLarge(
		out,
		SP800MaxBitsRequest,
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
		SP800ReseedMax,
	) {
		countReseedRequired()
		return 0, ErrReseedRequired
	}
	if predictionResistant {
		err := d.Reseed(
			additional,
		)
		if err != nil {
			return 0, err
		}
		additional = nil
	}
	if len(additional) > 0 {
		d.update(
			additional,
		)
	}
	mac := hmac.New(
		d.spec.New,
		d.key,
	)
	for off := 0; off < len(out); off += len(d.v) {
		mac.Reset()
		mac.Write(
			d.v,
		)
		d.v = mac.Sum(
			nil,
		)
		copy(
			out[off:],
			d.v,
		)
	}
	d.update(
		additional,
	)
	d.reseedCounter.Increment()
	countGenerate(
		len(out),
	)
	return len(out) * 8, nil
}

// Reseed mixes fresh entropy and additional into the state
func (
	d *HMACDRBG,
) Reseed(
	additional []byte,
) error {
	e, err := drawEntropy(
		d.entropy,
		(d.securityStrength+7)/8,
	)
	if err != nil {
		return err
	}
	d.update(
		concat(
			e,
			additional,
		),
	)
	d.reseedCounter.Set(
		1,
	)
	countReseed()
	return nil
}

// update is HMAC_DRBG_Update
func (
	d *HMACDRBG,
) update(
	data []byte,
) {
	d.updateRound(
		data,
		0x00,
	)
	if len(data) > 0 {
		d.updateRound(
			data,
			0x01,
		)
	}
}

func (
	d *HMACDRBG,
) updateRound(
	data []byte,
	cycle byte,
) {
	mac := hmac.New(
		d.spec.New,
		d.key,
	)
	mac.Write(
		d.v,
	)
	mac.Write(
		[]byte{cycle},
	)
	mac.Write(
		data,
	)
	d.key = mac.Sum(
		nil,
	)
	mac = hmac.New(
		d.spec.New,
		d.key,
	)
	mac.Write(
		d.v,
	)
	d.v = mac.Sum(
		nil,
	)
}
