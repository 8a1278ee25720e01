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
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
)

// Seeder is implemented by base random sources accepting caller seeds
type Seeder interface {
	SetSeed(
		seed []byte,
	)
}

// SecureRandom serializes access to a single Generator and reseeds it
// on demand.
type SecureRandom struct {
	mu                  sync.Mutex
	drbg                Generator
	entropy             EntropySource
	base                Seeder
	predictionResistant bool
}

// NewSecureRandom wraps drbg; entropy serves GenerateSeed
func NewSecureRandom(
	drbg Generator,
	entropy EntropySource,
	predictionResistant bool,
) *SecureRandom {
	return &SecureRandom{
		drbg:                drbg,
		entropy:             entropy,
		predictionResistant: predictionResistant,
	}
}

// WithBase sets the base random source receiving SetSeed calls
func (
	s *SecureRandom,
) WithBase(
	base Seeder,
) *SecureRandom {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.base = base
	return s
}

// Algorithm returns the name of the underlying generator
func (
	s *SecureRandom,
) Algorithm() string {
	return s.drbg.Algorithm()
}

// PredictionResistant ...
func (
	s *SecureRandom,
) PredictionResistant() bool {
	return s.predictionResistant
}

// NextBytes fills p. A request larger than the generator limit fails
// with ErrRequestTooLarge.
func (
	s *SecureRandom,
) NextBytes(
	p []byte,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fill(
		p,
		nil,
	)
}

// Generate fills p, mixing in additional
func (
	s *SecureRandom,
) Generate(
	p,
	additional []byte,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fill(
		p,
		additional,
	)
}

// Read implements io.Reader, splitting p into requests the generator
// accepts.
func (
	s *SecureRandom,
) Read(
	p []byte,
) (
	int,
	error,
) {
	s.mu.Lock()
	defer s.mu.Unlock()
	limit := s.drbg.MaxRequest()
	n := 0
	for n < len(p) {
		end := n + limit
		if end > len(p) {
			end = len(p)
		}
		err := s.fill(
			p[n:end],
			nil,
		)
		if err != nil {
			return n, err
		}
		n = end
	}
	return n, nil
}

// Reseed reseeds the generator with additional
func (
	s *SecureRandom,
) Reseed(
	additional []byte,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.drbg.Reseed(
		additional,
	)
	if err != nil {
		return errors.Wrap(
			err,
			s.drbg.Algorithm(),
		)
	}
	return nil
}

// GenerateSeed returns n bytes drawn directly from the entropy source
func (
	s *SecureRandom,
) GenerateSeed(
	n int,
) (
	[]byte,
	error,
) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entropy == nil {
		return nil, errors.Wrapf(
			ErrInsufficientEntropy,
			"%s: no entropy source",
			s.drbg.Algorithm(),
		)
	}
	seed := make(
		[]byte,
		0,
		n,
	)
	for len(seed) < n {
		e, err := drawEntropy(
			s.entropy,
			1,
		)
		if err != nil {
			return nil, err
		}
		seed = append(
			seed,
			e...,
		)
	}
	return seed[:n], nil
}

// SetSeed forwards seed to the base random source, if any. The
// generator state is not touched.
func (
	s *SecureRandom,
) SetSeed(
	seed []byte,
) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.base != nil {
		s.base.SetSeed(
			seed,
		)
	}
}

// fill runs one generate call, reseeding and retrying once when the
// generator reports ErrReseedRequired. Caller holds s.mu.
func (
	s *SecureRandom,
) fill(
	p,
	additional []byte,
) error {
	_, err := s.drbg.Generate(
		p,
		additional,
		s.predictionResistant,
	)
	if errors.Is(
		err,
		ErrReseedRequired,
	) {
		atomic.AddUint64(
			&DefaultStats.AutoReseeds,
			1,
		)
		err = s.drbg.Reseed(
			nil,
		)
		if err != nil {
			return errors.Wrap(
				err,
				s.drbg.Algorithm(),
			)
		}
		_, err = s.drbg.Generate(
			p,
			additional,
			s.predictionResistant,
		)
		if errors.Is(
			err,
			ErrReseedRequired,
		) {
			return errors.Wrapf(
				ErrInternalState,
				"%s: reseed required after reseed",
				s.drbg.Algorithm(),
			)
		}
	}
	if err != nil {
		return errors.Wrap(
			err,
			s.drbg.Algorithm(),
		)
	}
	return nil
}
