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
	"crypto/rand"
	"io"
	"sync"
	"sync/atomic"

	hh "github.com/minio/highwayhash"
	"github.com/pkg/errors"
)

// EntropySource defines a source of seed material
type EntropySource interface {
	// EntropySize returns the number of bits returned by each GetEntropy call
	EntropySize() int
	GetEntropy() (
		[]byte,
		error,
	)
	IsPredictionResistant() bool
}

// SystemEntropy reads from the platform random source
type SystemEntropy struct {
	bits   int
	reader io.Reader
}

// NewSystemEntropy returns a source delivering bits of entropy per call
// from crypto/rand.
func NewSystemEntropy(
	bits int,
) *SystemEntropy {
	return &SystemEntropy{
		bits:   bits,
		reader: rand.Reader,
	}
}

// EntropySize ...
func (
	e *SystemEntropy,
) EntropySize() int {
	return e.bits
}

// IsPredictionResistant ...
func (
	e *SystemEntropy,
) IsPredictionResistant() bool {
	return true
}

// GetEntropy ...
func (
	e *SystemEntropy,
) GetEntropy() (
	[]byte,
	error,
) {
	buf := make(
		[]byte,
		(e.bits+7)/8,
	)
	_, err := io.ReadFull(
		e.reader,
		buf,
	)
	if err != nil {
		return nil, errors.Wrap(
			err,
			"io.ReadFull failure",
		)
	}
	return buf, nil
}

// HealthCheckedEntropy applies a repetition test to an underlying
// source: a draw whose HighwayHash fingerprint matches the previous
// draw is rejected as a stuck source.
type HealthCheckedEntropy struct {
	mu     sync.Mutex
	source EntropySource
	key    [hh.Size]byte
	last   uint64
	primed bool
}

// NewHealthCheckedEntropy wraps source
func NewHealthCheckedEntropy(
	source EntropySource,
) (
	*HealthCheckedEntropy,
	error,
) {
	e := &HealthCheckedEntropy{
		source: source,
	}
	_, err := io.ReadFull(
		rand.Reader,
		e.key[:],
	)
	if err != nil {
		return nil, errors.Wrap(
			err,
			"io.ReadFull failure",
		)
	}
	return e, nil
}

// EntropySize ...
func (
	e *HealthCheckedEntropy,
) EntropySize() int {
	return e.source.EntropySize()
}

// IsPredictionResistant ...
func (
	e *HealthCheckedEntropy,
) IsPredictionResistant() bool {
	return e.source.IsPredictionResistant()
}

// GetEntropy ...
func (
	e *HealthCheckedEntropy,
) GetEntropy() (
	[]byte,
	error,
) {
	e.mu.Lock()
	defer e.mu.Unlock()
	buf, err := e.source.GetEntropy()
	if err != nil {
		return nil, err
	}
	if len(buf)*8 < e.source.EntropySize() {
		atomic.AddUint64(
			&DefaultStats.HealthFailures,
			1,
		)
		return nil, errors.Wrapf(
			ErrInsufficientEntropy,
			"short entropy block: %d bytes",
			len(buf),
		)
	}
	fp := hh.Sum64(
		buf,
		e.key[:],
	)
	if e.primed && fp == e.last {
		atomic.AddUint64(
			&DefaultStats.HealthFailures,
			1,
		)
		return nil, errors.Wrap(
			ErrInsufficientEntropy,
			"repeated entropy block",
		)
	}
	e.last = fp
	e.primed = true
	return buf, nil
}

// drawEntropy fetches one block from src and rejects blocks shorter
// than minBytes.
func drawEntropy(
	src EntropySource,
	minBytes int,
) (
	[]byte,
	error,
) {
	buf, err := src.GetEntropy()
	if err != nil {
		return nil, errors.Wrap(
			err,
			"entropy source",
		)
	}
	atomic.AddUint64(
		&DefaultStats.EntropyDraws,
		1,
	)
	atomic.AddUint64(
		&DefaultStats.EntropyBytes,
		uint64(len(buf)),
	)
	if len(buf) < minBytes {
		return nil, errors.Wrapf(
			ErrInsufficientEntropy,
			"got %d bytes, need %d",
			len(buf),
			minBytes,
		)
	}
	return buf, nil
}
