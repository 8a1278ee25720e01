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
	"encoding/binary"
	"io"
	"math/big"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/templexxx/xor"
)

const (
	combinedBlockBits  = 128
	combinedKeyBits    = 128
	combinedDigestBits = 512
)

// Factory validates RandomSpecs and builds generators from its cipher
// and digest registries.
type Factory struct {
	mu              sync.Mutex
	ciphers         map[string]CipherSpec
	digests         map[string]DigestSpec
	cipherNames     []string
	digestNames     []string
	entropyProvider func(bits int) EntropySource
	personalization []byte
	healthCheck     bool
	source          io.Reader
	now             func() time.Time
	instances       uint64
}

// FactoryOption configures a Factory
type FactoryOption func(
	f *Factory,
)

// WithCiphers replaces the supported ciphers
func WithCiphers(
	specs ...CipherSpec,
) FactoryOption {
	return func(f *Factory) {
		f.ciphers = make(map[string]CipherSpec)
		f.cipherNames = nil
		for _, s := range specs {
			f.ciphers[strings.ToUpper(s.Name)] = s
			f.cipherNames = append(
				f.cipherNames,
				s.Name,
			)
		}
	}
}

// WithDigests replaces the supported digests
func WithDigests(
	specs ...DigestSpec,
) FactoryOption {
	return func(f *Factory) {
		f.digests = make(map[string]DigestSpec)
		f.digestNames = nil
		for _, s := range specs {
			f.digests[strings.ToUpper(s.Name)] = s
			f.digestNames = append(
				f.digestNames,
				s.Name,
			)
		}
	}
}

// WithEntropyProvider sets the constructor of entropy sources; bits is
// the size of each block the generator will draw.
func WithEntropyProvider(
	provider func(bits int) EntropySource,
) FactoryOption {
	return func(f *Factory) {
		f.entropyProvider = provider
	}
}

// WithPersonalization prefixes the personalization string of every
// generator built by the Factory.
func WithPersonalization(
	p []byte,
) FactoryOption {
	return func(f *Factory) {
		f.personalization = append(
			[]byte(nil),
			p...,
		)
	}
}

// WithHealthCheck wraps entropy sources in HealthCheckedEntropy
func WithHealthCheck(
	enabled bool,
) FactoryOption {
	return func(f *Factory) {
		f.healthCheck = enabled
	}
}

// WithSource sets the Factory's own randomness source, used for nonces,
// X9.31 keys and random spec selection.
func WithSource(
	r io.Reader,
) FactoryOption {
	return func(f *Factory) {
		f.source = r
	}
}

// WithClock sets the time source for date/time vectors and
// personalization.
func WithClock(
	now func() time.Time,
) FactoryOption {
	return func(f *Factory) {
		f.now = now
	}
}

// NewFactory returns a Factory supporting DefaultCiphers and
// DefaultDigests, drawing entropy from the system.
func NewFactory(
	opts ...FactoryOption,
) *Factory {
	f := &Factory{
		entropyProvider: func(bits int) EntropySource {
			return NewSystemEntropy(bits)
		},
		source: rand.Reader,
		now:    time.Now,
	}
	WithCiphers(DefaultCiphers()...)(f)
	WithDigests(DefaultDigests()...)(f)
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Ciphers lists the supported ciphers
func (
	f *Factory,
) Ciphers() []CipherSpec {
	specs := make(
		[]CipherSpec,
		0,
		len(f.cipherNames),
	)
	for _, name := range f.cipherNames {
		specs = append(
			specs,
			f.ciphers[strings.ToUpper(name)],
		)
	}
	return specs
}

// Digests lists the supported digests
func (
	f *Factory,
) Digests() []DigestSpec {
	specs := make(
		[]DigestSpec,
		0,
		len(f.digestNames),
	)
	for _, name := range f.digestNames {
		specs = append(
			specs,
			f.digests[strings.ToUpper(name)],
		)
	}
	return specs
}

// Cipher looks up a supported cipher by name
func (
	f *Factory,
) Cipher(
	name string,
) (
	CipherSpec,
	bool,
) {
	s, ok := f.ciphers[strings.ToUpper(name)]
	return s, ok
}

// Digest looks up a supported digest by name
func (
	f *Factory,
) Digest(
	name string,
) (
	DigestSpec,
	bool,
) {
	s, ok := f.digests[strings.ToUpper(name)]
	return s, ok
}

// Validate reports whether spec can be built by f
func (
	f *Factory,
) Validate(
	spec RandomSpec,
) error {
	switch spec.Kind {
	case KindHash, KindHMAC:
		if _, ok := f.Digest(spec.Primitive); !ok {
			return errors.Wrapf(
				ErrInvalidSpec,
				"%s: unsupported digest",
				spec,
			)
		}
	case KindCTR:
		if _, ok := f.Cipher(spec.Primitive); !ok {
			return errors.Wrapf(
				ErrInvalidSpec,
				"%s: unsupported cipher",
				spec,
			)
		}
	case KindX931:
		c, ok := f.Cipher(spec.Primitive)
		if !ok {
			return errors.Wrapf(
				ErrInvalidSpec,
				"%s: unsupported cipher",
				spec,
			)
		}
		if c.BlockBits != 64 && c.BlockBits != 128 {
			return errors.Wrapf(
				ErrInvalidSpec,
				"%s: %d bit block",
				spec,
				c.BlockBits,
			)
		}
	default:
		return errors.Wrapf(
			ErrInvalidSpec,
			"unknown kind %d",
			int(spec.Kind),
		)
	}
	return nil
}

// CreateRandom validates spec and builds a SecureRandom around the
// matching generator.
func (
	f *Factory,
) CreateRandom(
	spec RandomSpec,
) (
	*SecureRandom,
	error,
) {
	err := f.Validate(
		spec,
	)
	if err != nil {
		return nil, err
	}
	var (
		drbg    Generator
		entropy EntropySource
	)
	switch spec.Kind {
	case KindHash, KindHMAC:
		drbg, entropy, err = f.newDigestGenerator(
			spec,
		)
	case KindCTR:
		drbg, entropy, err = f.newCTRGenerator(
			spec,
		)
	case KindX931:
		drbg, entropy, err = f.newX931Generator(
			spec,
		)
	}
	if err != nil {
		return nil, errors.Wrap(
			err,
			spec.String(),
		)
	}
	atomic.AddUint64(
		&DefaultStats.GeneratorsCreated,
		1,
	)
	return NewSecureRandom(
		drbg,
		entropy,
		spec.PredictionResistant,
	), nil
}

func (
	f *Factory,
) newDigestGenerator(
	spec RandomSpec,
) (
	Generator,
	EntropySource,
	error,
) {
	d, _ := f.Digest(
		spec.Primitive,
	)
	strength := d.SecurityStrength()
	entropy, err := f.entropySource(
		strength,
	)
	if err != nil {
		return nil, nil, err
	}
	nonce, err := f.nonce(
		strength,
	)
	if err != nil {
		return nil, nil, err
	}
	if spec.Kind == KindHash {
		g, err := NewDigestGenerator(
			d,
			entropy,
			f.personalizationString(),
			nonce,
		)
		if err != nil {
			return nil, nil, err
		}
		return g, entropy, nil
	}
	g, err := NewHMACDRBG(
		d,
		entropy,
		f.personalizationString(),
		nonce,
	)
	if err != nil {
		return nil, nil, err
	}
	return g, entropy, nil
}

func (
	f *Factory,
) newCTRGenerator(
	spec RandomSpec,
) (
	Generator,
	EntropySource,
	error,
) {
	c, _ := f.Cipher(
		spec.Primitive,
	)
	strength := c.SecurityStrength()
	entropy, err := f.entropySource(
		strength,
	)
	if err != nil {
		return nil, nil, err
	}
	nonce, err := f.nonce(
		strength,
	)
	if err != nil {
		return nil, nil, err
	}
	g, err := NewCTRDRBG(
		c,
		entropy,
		f.personalizationString(),
		nonce,
	)
	if err != nil {
		return nil, nil, err
	}
	return g, entropy, nil
}

func (
	f *Factory,
) newX931Generator(
	spec RandomSpec,
) (
	Generator,
	EntropySource,
	error,
) {
	c, _ := f.Cipher(
		spec.Primitive,
	)
	entropy, err := f.entropySource(
		c.BlockBits,
	)
	if err != nil {
		return nil, nil, err
	}
	key := make(
		[]byte,
		c.KeySize(),
	)
	_, err = io.ReadFull(
		f,
		key,
	)
	if err != nil {
		return nil, nil, errors.Wrap(
			err,
			"x9.31 key",
		)
	}
	g, err := NewX931DRBG(
		c,
		key,
		entropy,
		f.dateTimeVector(c.BlockSize()),
	)
	if err != nil {
		return nil, nil, err
	}
	return g, entropy, nil
}

// CreateFromConfig builds the generator named by cfg
func (
	f *Factory,
) CreateFromConfig(
	cfg *Config,
) (
	*SecureRandom,
	error,
) {
	spec, err := ParseRandomSpec(
		cfg.Spec,
	)
	if err != nil {
		return nil, err
	}
	if cfg.PredictionResistant {
		spec.PredictionResistant = true
	}
	return f.CreateRandom(
		spec,
	)
}

// ValidateCombined checks a CTR and HASH pairing: the CTR cipher must
// have a 128 bit block and key, the HASH digest must be 512 bits.
func (
	f *Factory,
) ValidateCombined(
	ctrSpec,
	hashSpec RandomSpec,
) error {
	if ctrSpec.Kind != KindCTR {
		return errors.Wrapf(
			ErrInvalidCombination,
			"%s is not a CTR spec",
			ctrSpec,
		)
	}
	if hashSpec.Kind != KindHash {
		return errors.Wrapf(
			ErrInvalidCombination,
			"%s is not a HASH spec",
			hashSpec,
		)
	}
	for _, spec := range []RandomSpec{ctrSpec, hashSpec} {
		if err := f.Validate(spec); err != nil {
			return errors.Wrap(
				ErrInvalidCombination,
				err.Error(),
			)
		}
	}
	c, _ := f.Cipher(ctrSpec.Primitive)
	if c.BlockBits != combinedBlockBits || c.KeyBits != combinedKeyBits {
		return errors.Wrapf(
			ErrInvalidCombination,
			"%s: need %d bit block and key, have %d bit block and %d bit key",
			ctrSpec,
			combinedBlockBits,
			c.BlockBits,
			c.KeyBits,
		)
	}
	d, _ := f.Digest(hashSpec.Primitive)
	if d.Bits != combinedDigestBits {
		return errors.Wrapf(
			ErrInvalidCombination,
			"%s: need %d bit digest, have %d",
			hashSpec,
			combinedDigestBits,
			d.Bits,
		)
	}
	return nil
}

// CreateCombined builds a CombinedRandom from a valid pairing
func (
	f *Factory,
) CreateCombined(
	ctrSpec,
	hashSpec RandomSpec,
) (
	*CombinedRandom,
	error,
) {
	err := f.ValidateCombined(
		ctrSpec,
		hashSpec,
	)
	if err != nil {
		return nil, err
	}
	ctr, err := f.CreateRandom(
		ctrSpec,
	)
	if err != nil {
		return nil, err
	}
	h, err := f.CreateRandom(
		hashSpec,
	)
	if err != nil {
		return nil, err
	}
	atomic.AddUint64(
		&DefaultStats.CombinedCreated,
		1,
	)
	return &CombinedRandom{
		ctr:  ctr,
		hash: h,
	}, nil
}

// GenerateRandomCombined picks an eligible cipher and digest uniformly,
// family first and then a spec within the family, and builds a
// CombinedRandom from them.
func (
	f *Factory,
) GenerateRandomCombined() (
	*CombinedRandom,
	error,
) {
	cipherGroups := make(map[string][]string)
	for _, c := range f.Ciphers() {
		if c.BlockBits == combinedBlockBits && c.KeyBits == combinedKeyBits {
			cipherGroups[c.Family] = append(
				cipherGroups[c.Family],
				c.Name,
			)
		}
	}
	digestGroups := make(map[string][]string)
	for _, d := range f.Digests() {
		if d.Bits == combinedDigestBits {
			digestGroups[d.Family] = append(
				digestGroups[d.Family],
				d.Name,
			)
		}
	}
	cipherName, err := f.pickTwoStage(
		cipherGroups,
	)
	if err != nil {
		return nil, errors.Wrap(
			err,
			"no eligible cipher",
		)
	}
	digestName, err := f.pickTwoStage(
		digestGroups,
	)
	if err != nil {
		return nil, errors.Wrap(
			err,
			"no eligible digest",
		)
	}
	return f.CreateCombined(
		RandomSpec{Kind: KindCTR, Primitive: cipherName},
		RandomSpec{Kind: KindHash, Primitive: digestName},
	)
}

// SelfSeed replaces the Factory's own randomness source with a
// randomly chosen CombinedRandom.
func (
	f *Factory,
) SelfSeed() error {
	c, err := f.GenerateRandomCombined()
	if err != nil {
		return errors.Wrap(
			err,
			"self seed",
		)
	}
	f.mu.Lock()
	f.source = c
	f.mu.Unlock()
	return nil
}

// Read draws from the Factory's own randomness source
func (
	f *Factory,
) Read(
	p []byte,
) (
	int,
	error,
) {
	f.mu.Lock()
	src := f.source
	f.mu.Unlock()
	return io.ReadFull(
		src,
		p,
	)
}

func (
	f *Factory,
) pickTwoStage(
	groups map[string][]string,
) (
	string,
	error,
) {
	if len(groups) == 0 {
		return "", ErrInvalidCombination
	}
	families := make(
		[]string,
		0,
		len(groups),
	)
	for family := range groups {
		families = append(
			families,
			family,
		)
	}
	sort.Strings(
		families,
	)
	i, err := f.randomIndex(
		len(families),
	)
	if err != nil {
		return "", err
	}
	names := groups[families[i]]
	j, err := f.randomIndex(
		len(names),
	)
	if err != nil {
		return "", err
	}
	return names[j], nil
}

func (
	f *Factory,
) randomIndex(
	n int,
) (
	int,
	error,
) {
	i, err := rand.Int(
		f,
		big.NewInt(int64(n)),
	)
	if err != nil {
		return 0, errors.Wrap(
			err,
			"random index",
		)
	}
	return int(i.Int64()), nil
}

func (
	f *Factory,
) entropySource(
	bits int,
) (
	EntropySource,
	error,
) {
	src := f.entropyProvider(
		bits,
	)
	if !f.healthCheck {
		return src, nil
	}
	checked, err := NewHealthCheckedEntropy(
		src,
	)
	if err != nil {
		return nil, err
	}
	return checked, nil
}

// nonce returns half the security strength of random bytes
func (
	f *Factory,
) nonce(
	strength int,
) (
	[]byte,
	error,
) {
	n := make(
		[]byte,
		(strength/2+7)/8,
	)
	_, err := io.ReadFull(
		f,
		n,
	)
	if err != nil {
		return nil, errors.Wrap(
			err,
			"nonce",
		)
	}
	return n, nil
}

// personalizationString distinguishes generators sharing a source
func (
	f *Factory,
) personalizationString() []byte {
	var buf [16]byte
	binary.BigEndian.PutUint64(
		buf[0:],
		uint64(f.now().UnixNano()),
	)
	binary.BigEndian.PutUint64(
		buf[8:],
		atomic.AddUint64(&f.instances, 1),
	)
	return concat(
		f.personalization,
		buf[:],
	)
}

func (
	f *Factory,
) dateTimeVector(
	size int,
) []byte {
	var buf [16]byte
	binary.BigEndian.PutUint64(
		buf[0:],
		uint64(f.now().UnixNano()),
	)
	binary.BigEndian.PutUint64(
		buf[8:],
		atomic.AddUint64(&f.instances, 1),
	)
	dt := make(
		[]byte,
		size,
	)
	copy(
		dt,
		buf[:],
	)
	return dt
}

// CombinedRandom XORs the output of an independently seeded CTR
// generator and HASH generator.
type CombinedRandom struct {
	mu   sync.Mutex
	ctr  *SecureRandom
	hash *SecureRandom
}

// Algorithm ...
func (
	c *CombinedRandom,
) Algorithm() string {
	return c.ctr.Algorithm() + "+" + c.hash.Algorithm()
}

// CTR returns the CTR half
func (
	c *CombinedRandom,
) CTR() *SecureRandom {
	return c.ctr
}

// Hash returns the HASH half
func (
	c *CombinedRandom,
) Hash() *SecureRandom {
	return c.hash
}

// Read implements io.Reader
func (
	c *CombinedRandom,
) Read(
	p []byte,
) (
	int,
	error,
) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.ctr.Read(
		p,
	)
	if err != nil {
		return 0, err
	}
	tmp := make(
		[]byte,
		len(p),
	)
	_, err = c.hash.Read(
		tmp,
	)
	if err != nil {
		return 0, err
	}
	xor.Bytes(
		p,
		p,
		tmp,
	)
	return len(p), nil
}

// NextBytes fills p
func (
	c *CombinedRandom,
) NextBytes(
	p []byte,
) error {
	_, err := c.Read(
		p,
	)
	return err
}

// Reseed reseeds both halves with additional
func (
	c *CombinedRandom,
) Reseed(
	additional []byte,
) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	err := c.ctr.Reseed(
		additional,
	)
	if err != nil {
		return err
	}
	return c.hash.Reseed(
		additional,
	)
}
