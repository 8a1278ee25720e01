// Copyright © 2020 Gridfinity, LLC. <admin@gridfinity.com>.
// Copyright © 2020 Jeffrey H. Johnson <jeff@gridfinity.com>.
//
// All rights reserved.
//
// All use of this code is governed by the MIT license.
// The complete license is available in the LICENSE file.

package gfdrbg // import "github.com/johnsonjh/gfdrbg"

import (
	"encoding/binary"
	"hash"

	"github.com/pkg/errors"
)

const (
	digestCycleCount = 10
	digestMaxRequest = 1 << 16
)

// DigestGenerator is the HASH kind: a digest over a seed and an
// incrementing state counter. It keeps no reseed counter and never
// returns ErrReseedRequired.
type DigestGenerator struct {
	spec         DigestSpec
	entropy      EntropySource
	h            hash.Hash
	seed         []byte
	state        []byte
	seedCounter  uint64
	stateCounter uint64
}

// NewDigestGenerator seeds a digest generator with one entropy block,
// nonce and personalization.
func NewDigestGenerator(
	spec DigestSpec,
	entropy EntropySource,
	personalization,
	nonce []byte,
) (
	*DigestGenerator,
	error,
) {
	if spec.New == nil || spec.Size() == 0 {
		return nil, errors.Wrapf(
			ErrInvalidSpec,
			"digest %q",
			spec.Name,
		)
	}
	d := &DigestGenerator{
		spec:         spec,
		entropy:      entropy,
		h:            spec.New(),
		seed:         make([]byte, spec.Size()),
		state:        make([]byte, spec.Size()),
		seedCounter:  1,
		stateCounter: 1,
	}
	e, err := drawEntropy(
		entropy,
		(spec.SecurityStrength()+7)/8,
	)
	if err != nil {
		return nil, err
	}
	d.AddSeedMaterial(
		concat(
			e,
			nonce,
			personalization,
		),
	)
	return d, nil
}

// BlockSize ...
func (
	d *DigestGenerator,
) BlockSize() int {
	return d.spec.Size()
}

// MaxRequest returns the largest request in bytes
func (
	d *DigestGenerator,
) MaxRequest() int {
	return digestMaxRequest
}

// Algorithm ...
func (
	d *DigestGenerator,
) Algorithm() string {
	return "DIGEST-" + d.spec.Name
}

// AddSeedMaterial mixes seed into the generator seed
func (
	d *DigestGenerator,
) AddSeedMaterial(
	seed []byte,
) {
	d.h.Reset()
	d.h.Write(
		seed,
	)
	d.h.Write(
		d.seed,
	)
	d.seed = d.h.Sum(
		nil,
	)
}

// Generate fills out with random bytes
func (
	d *DigestGenerator,
) Generate(
	out,
	additional []byte,
	predictionResistant bool,
) (
	int,
	error,
) {
	if len(out) > digestMaxRequest {
		countRejected()
		return 0, errors.Wrapf(
			ErrRequestTooLarge,
			"%d bytes requested from %s",
			len(out),
			d.Algorithm(),
		)
	}
	if predictionResistant {
		err := d.Reseed(
			additional,
		)
		if err != nil {
			return 0, err
		}
	} else if len(additional) > 0 {
		d.AddSeedMaterial(
			additional,
		)
	}
	d.generateState()
	off := 0
	for i := range out {
		if off == len(d.state) {
			d.generateState()
			off = 0
		}
		out[i] = d.state[off]
		off++
	}
	countGenerate(
		len(out),
	)
	return len(out) * 8, nil
}

// Reseed mixes a fresh entropy block and additional into the seed
func (
	d *DigestGenerator,
) Reseed(
	additional []byte,
) error {
	e, err := drawEntropy(
		d.entropy,
		(d.spec.SecurityStrength()+7)/8,
	)
	if err != nil {
		return err
	}
	d.AddSeedMaterial(
		concat(
			e,
			additional,
		),
	)
	countReseed()
	return nil
}

func (
	d *DigestGenerator,
) generateState() {
	d.h.Reset()
	d.addCounter(
		d.stateCounter,
	)
	d.stateCounter++
	d.h.Write(
		d.state,
	)
	d.h.Write(
		d.seed,
	)
	d.state = d.h.Sum(
		nil,
	)
	if d.stateCounter%digestCycleCount == 0 {
		d.cycleSeed()
	}
}

func (
	d *DigestGenerator,
) cycleSeed() {
	d.h.Reset()
	d.h.Write(
		d.seed,
	)
	d.addCounter(
		d.seedCounter,
	)
	d.seedCounter++
	d.seed = d.h.Sum(
		nil,
	)
}

// addCounter writes c little-endian
func (
	d *DigestGenerator,
) addCounter(
	c uint64,
) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(
		buf[:],
		c,
	)
	d.h.Write(
		buf[:],
	)
}
