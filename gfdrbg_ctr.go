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
	"encoding/binary"

	"github.com/pkg/errors"
	"github.com/templexxx/xor"
)

// dfKey keys the BCC stage of the derivation function
var dfKey = []byte{
	0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07,
	0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f,
	0x10, 0x11, 0x12, 0x13, 0x14, 0x15, 0x16, 0x17,
	0x18, 0x19, 0x1a, 0x1b, 0x1c, 0x1d, 0x1e, 0x1f,
}

// CTRDRBG is an SP 800-90A CTR_DRBG using a derivation function
type CTRDRBG struct {
	spec             CipherSpec
	entropy          EntropySource
	block            cipher.Block // keyed with key
	key              []byte
	v                *ByteCounter
	reseedCounter    *ByteCounter
	seedLen          int
	securityStrength int
	reseedMax        uint64
	maxBitsRequest   int
}

// NewCTRDRBG instantiates a CTR_DRBG over spec. One entropy block is
// drawn and combined with nonce and personalization.
func NewCTRDRBG(
	spec CipherSpec,
	entropy EntropySource,
	personalization,
	nonce []byte,
) (
	*CTRDRBG,
	error,
) {
	if spec.New == nil || spec.KeySize() == 0 || spec.BlockSize() == 0 {
		return nil, errors.Wrapf(
			ErrInvalidSpec,
			"cipher %q",
			spec.Name,
		)
	}
	if spec.KeySize() > len(dfKey) {
		return nil, errors.Wrapf(
			ErrInvalidSpec,
			"cipher %q: key too long",
			spec.Name,
		)
	}
	d := &CTRDRBG{
		spec:             spec,
		entropy:          entropy,
		key:              make([]byte, spec.KeySize()),
		v:                NewByteCounter(spec.BlockSize()),
		reseedCounter:    NewByteCounter(reseedCounterSize),
		seedLen:          spec.KeySize() + spec.BlockSize(),
		securityStrength: spec.SecurityStrength(),
		reseedMax:        SP800ReseedMax,
		maxBitsRequest:   SP800MaxBitsRequest,
	}
	if spec.isTDEA() {
		d.reseedMax = TDEAReseedMax
		d.maxBitsRequest = TDEAMaxBitsRequest
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
	seed, err := d.blockCipherDF(
		concat(
			e,
			nonce,
			personalization,
		),
		d.seedLen*8,
	)
	if err != nil {
		return nil, err
	}
	err = d.rekey()
	if err != nil {
		return nil, err
	}
	err = d.update(
		seed,
	)
	if err != nil {
		return nil, err
	}
	d.reseedCounter.Set(
		1,
	)
	return d, nil
}

// BlockSize ...
func (
	d *CTRDRBG,
) BlockSize() int {
	return d.spec.BlockSize()
}

// MaxRequest returns the largest request in bytes
func (
	d *CTRDRBG,
) MaxRequest() int {
	return d.maxBitsRequest / 8
}

// Algorithm ...
func (
	d *CTRDRBG,
) Algorithm() string {
	return "SP800-CTR-" + d.spec.Name
}

// Generate fills out with random bytes
func (
	d *CTRDRBG,
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
	if predictionResistant {
		err := d.Reseed(
			additional,
		)
		if err != nil {
			return 0, err
		}
		additional = nil
	}
	var seed []byte
	if len(additional) > 0 {
		var err error
		seed, err = d.blockCipherDF(
			additional,
			d.seedLen*8,
		)
		if err != nil {
			return 0, err
		}
		err = d.update(
			seed,
		)
		if err != nil {
			return 0, err
		}
	} else {
		seed = make(
			[]byte,
			d.seedLen,
		)
	}
	bs := d.spec.BlockSize()
	buf := make(
		[]byte,
		bs,
	)
	for off := 0; off < len(out); off += bs {
		d.v.Increment()
		d.block.Encrypt(
			buf,
			d.v.Bytes(),
		)
		copy(
			out[off:],
			buf,
		)
	}
	err := d.update(
		seed,
	)
	if err != nil {
		return 0, err
	}
	d.reseedCounter.Increment()
	countGenerate(
		len(out),
	)
	return len(out) * 8, nil
}

// Reseed mixes fresh entropy and additional into the state
func (
	d *CTRDRBG,
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
	seed, err := d.blockCipherDF(
		concat(
			e,
			additional,
		),
		d.seedLen*8,
	)
	if err != nil {
		return err
	}
	err = d.update(
		seed,
	)
	if err != nil {
		return err
	}
	d.reseedCounter.Set(
		1,
	)
	countReseed()
	return nil
}

func (
	d *CTRDRBG,
) rekey() error {
	block, err := d.spec.New(
		d.key,
	)
	if err != nil {
		return errors.Wrap(
			err,
			"ctr drbg rekey",
		)
	}
	d.block = block
	return nil
}

// update is CTR_DRBG_Update; len(seed) must equal the seed length
func (
	d *CTRDRBG,
) update(
	seed []byte,
) error {
	bs := d.spec.BlockSize()
	temp := make(
		[]byte,
		d.seedLen+bs,
	)
	for off := 0; off < d.seedLen; off += bs {
		d.v.Increment()
		d.block.Encrypt(
			temp[off:],
			d.v.Bytes(),
		)
	}
	temp = temp[:d.seedLen]
	xor.Bytes(
		temp,
		temp,
		seed,
	)
	kl := len(d.key)
	copy(
		d.key,
		temp[:kl],
	)
	copy(
		d.v.Bytes(),
		temp[kl:],
	)
	return d.rekey()
}

// blockCipherDF is Block_Cipher_df, returning numBits/8 bytes
func (
	d *CTRDRBG,
) blockCipherDF(
	input []byte,
	numBits int,
) (
	[]byte,
	error,
) {
	if numBits > SP800MaxBitsRequest {
		return nil, errors.Wrapf(
			ErrRequestTooLarge,
			"derivation function: %d bits",
			numBits,
		)
	}
	outLen := d.spec.BlockSize()
	keyLen := d.spec.KeySize()
	n := numBits / 8

	// S = L || N || input || 0x80, zero padded to a block multiple
	sLen := 8 + len(input) + 1
	s := make(
		[]byte,
		((sLen+outLen-1)/outLen)*outLen,
	)
	binary.BigEndian.PutUint32(
		s[0:],
		uint32(len(input)),
	)
	binary.BigEndian.PutUint32(
		s[4:],
		uint32(n),
	)
	copy(
		s[8:],
		input,
	)
	s[8+len(input)] = 0x80

	block, err := d.spec.New(
		dfKey[:keyLen],
	)
	if err != nil {
		return nil, errors.Wrap(
			err,
			"derivation function",
		)
	}
	temp := make(
		[]byte,
		keyLen+outLen,
	)
	iv := make(
		[]byte,
		outLen,
	)
	chain := make(
		[]byte,
		outLen,
	)
	for i := 0; i*outLen < len(temp); i++ {
		binary.BigEndian.PutUint32(
			iv,
			uint32(i),
		)
		bcc(
			block,
			chain,
			iv,
			s,
		)
		copy(
			temp[i*outLen:],
			chain,
		)
	}

	block, err = d.spec.New(
		temp[:keyLen],
	)
	if err != nil {
		return nil, errors.Wrap(
			err,
			"derivation function",
		)
	}
	x := make(
		[]byte,
		outLen,
	)
	copy(
		x,
		temp[keyLen:],
	)
	out := make(
		[]byte,
		n,
	)
	for off := 0; off < n; off += outLen {
		block.Encrypt(
			x,
			x,
		)
		copy(
			out[off:],
			x,
		)
	}
	return out, nil
}

// bcc chains the encryption of iv and every block of data into out
func bcc(
	block cipher.Block,
	out,
	iv,
	data []byte,
) {
	bs := block.BlockSize()
	in := make(
		[]byte,
		bs,
	)
	block.Encrypt(
		out,
		iv,
	)
	for off := 0; off+bs <= len(data); off += bs {
		xor.Bytes(
			in,
			out,
			data[off:off+bs],
		)
		block.Encrypt(
			out,
			in,
		)
	}
}

func concat(
	parts ...[]byte,
) []byte {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	buf := make(
		[]byte,
		0,
		n,
	)
	for _, p := range parts {
		buf = append(
			buf,
			p...,
		)
	}
	return buf
}
