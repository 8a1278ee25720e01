// Copyright © 2015 Daniel Fu <daniel820313@gmail.com>.
// Copyright © 2019 Loki 'l0k18' Verloren <stalker.loki@protonmail.ch>.
// Copyright © 2021 Gridfinity, LLC. <admin@gridfinity.com>.
//
// All rights reserved.
//
// All use of this code is governed by the MIT license.
// The complete license is available in the LICENSE file.

package gfdrbg // import "github.com/johnsonjh/gfdrbg"

import (
	"fmt"
	"sync/atomic"
)

// Stats == generator statistics indicators
type Stats struct {
	GeneratorsCreated uint64 // Generators built by a Factory
	CombinedCreated   uint64 // Combined generators built by a Factory
	GenerateCalls     uint64 // Successful Generate calls
	BytesGenerated    uint64 // Output bytes produced
	ReseedRequired    uint64 // Generate calls refused by the reseed limit
	RequestsRejected  uint64 // Generate calls refused as too large
	Reseeds           uint64 // Reseeds, explicit and automatic
	AutoReseeds       uint64 // Reseeds triggered by SecureRandom
	EntropyDraws      uint64 // Entropy blocks drawn
	EntropyBytes      uint64 // Entropy bytes drawn
	HealthFailures    uint64 // Entropy blocks rejected by the health test
}

func newStats() *Stats {
	return new(
		Stats,
	)
}

// Header returns all field names
func (
	s *Stats,
) Header() []string {
	return []string{
		"GeneratorsCreated",
		"CombinedCreated",
		"GenerateCalls",
		"BytesGenerated",
		"ReseedRequired",
		"RequestsRejected",
		"Reseeds",
		"AutoReseeds",
		"EntropyDraws",
		"EntropyBytes",
		"HealthFailures",
	}
}

// ToSlice returns current Stats info as a slice
func (
	s *Stats,
) ToSlice() []string {
	stats := s.Copy()
	return []string{
		fmt.Sprint(
			stats.GeneratorsCreated,
		),
		fmt.Sprint(
			stats.CombinedCreated,
		),
		fmt.Sprint(
			stats.GenerateCalls,
		),
		fmt.Sprint(
			stats.BytesGenerated,
		),
		fmt.Sprint(
			stats.ReseedRequired,
		),
		fmt.Sprint(
			stats.RequestsRejected,
		),
		fmt.Sprint(
			stats.Reseeds,
		),
		fmt.Sprint(
			stats.AutoReseeds,
		),
		fmt.Sprint(
			stats.EntropyDraws,
		),
		fmt.Sprint(
			stats.EntropyBytes,
		),
		fmt.Sprint(
			stats.HealthFailures,
		),
	}
}

// Copy makes a copy of current Stats snapshot
func (
	s *Stats,
) Copy() *Stats {
	d := newStats()
	d.GeneratorsCreated = atomic.LoadUint64(
		&s.GeneratorsCreated,
	)
	d.CombinedCreated = atomic.LoadUint64(
		&s.CombinedCreated,
	)
	d.GenerateCalls = atomic.LoadUint64(
		&s.GenerateCalls,
	)
	d.BytesGenerated = atomic.LoadUint64(
		&s.BytesGenerated,
	)
	d.ReseedRequired = atomic.LoadUint64(
		&s.ReseedRequired,
	)
	d.RequestsRejected = atomic.LoadUint64(
		&s.RequestsRejected,
	)
	d.Reseeds = atomic.LoadUint64(
		&s.Reseeds,
	)
	d.AutoReseeds = atomic.LoadUint64(
		&s.AutoReseeds,
	)
	d.EntropyDraws = atomic.LoadUint64(
		&s.EntropyDraws,
	)
	d.EntropyBytes = atomic.LoadUint64(
		&s.EntropyBytes,
	)
	d.HealthFailures = atomic.LoadUint64(
		&s.HealthFailures,
	)
	return d
}

// Reset values to zero
func (
	s *Stats,
) Reset() {
	atomic.StoreUint64(
		&s.GeneratorsCreated,
		0,
	)
	atomic.StoreUint64(
		&s.CombinedCreated,
		0,
	)
	atomic.StoreUint64(
		&s.GenerateCalls,
		0,
	)
	atomic.StoreUint64(
		&s.BytesGenerated,
		0,
	)
	atomic.StoreUint64(
		&s.ReseedRequired,
		0,
	)
	atomic.StoreUint64(
		&s.RequestsRejected,
		0,
	)
	atomic.StoreUint64(
		&s.Reseeds,
		0,
	)
	atomic.StoreUint64(
		&s.AutoReseeds,
		0,
	)
	atomic.StoreUint64(
		&s.EntropyDraws,
		0,
	)
	atomic.StoreUint64(
		&s.EntropyBytes,
		0,
	)
	atomic.StoreUint64(
		&s.HealthFailures,
		0,
	)
}

func countGenerate(
	n int,
) {
	atomic.AddUint64(
		&DefaultStats.GenerateCalls,
		1,
	)
	atomic.AddUint64(
		&DefaultStats.BytesGenerated,
		uint64(n),
	)
}

func countReseed() {
	atomic.AddUint64(
		&DefaultStats.Reseeds,
		1,
	)
}

func countReseedRequired() {
	atomic.AddUint64(
		&DefaultStats.ReseedRequired,
		1,
	)
}

func countRejected() {
	atomic.AddUint64(
		&DefaultStats.RequestsRejected,
		1,
	)
}

// DefaultStats is the process-wide statistics collector
var (
	DefaultStats *Stats
)

func init() {
	DefaultStats = newStats()
}
