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
	"crypto/aes"
	"crypto/cipher"
	"crypto/des"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"hash"

	"github.com/pkg/errors"
	"github.com/tjfoc/gmsm/sm3"
	"github.com/tjfoc/gmsm/sm4"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
	"golang.org/x/crypto/twofish"
)

const (
	tdeaKeySize         = 21
	tdeaExpandedKeySize = 24
)

// CipherSpec describes a block cipher usable by the CTR and X9.31
// generators. New returns an encrypting cipher.Block for a key of
// KeySize() bytes.
type CipherSpec struct {
	Name      string
	Family    string
	KeyBits   int
	BlockBits int
	New       func(
		key []byte,
	) (
		cipher.Block,
		error,
	)
}

// String ...
func (
	s CipherSpec,
) String() string {
	return s.Name
}

// KeySize returns the key length in bytes
func (
	s CipherSpec,
) KeySize() int {
	return (s.KeyBits + 7) / 8
}

// BlockSize returns the block length in bytes
func (
	s CipherSpec,
) BlockSize() int {
	return s.BlockBits / 8
}

// SecurityStrength returns the security strength in bits
func (
	s CipherSpec,
) SecurityStrength() int {
	if s.isTDEA() {
		return 112
	}
	return s.KeyBits
}

func (
	s CipherSpec,
) isTDEA() bool {
	return s.Family == "DESede"
}

// DigestSpec describes a hash function usable by the HASH and HMAC
// generators.
type DigestSpec struct {
	Name   string
	Family string
	Bits   int
	New    func() hash.Hash
}

// String ...
func (
	s DigestSpec,
) String() string {
	return s.Name
}

// Size returns the digest length in bytes
func (
	s DigestSpec,
) Size() int {
	return s.Bits / 8
}

// SecurityStrength returns the security strength in bits
func (
	s DigestSpec,
) SecurityStrength() int {
	switch {
	case s.Bits <= 160:
		return 128
	case s.Bits <= 224:
		return 192
	default:
		return 256
	}
}

// NewAESCipher function
func NewAESCipher(
	key []byte,
) (
	cipher.Block,
	error,
) {
	block, err := aes.NewCipher(
		key,
	)
	if err != nil {
		return nil, errors.Wrap(
			err,
			"aes",
		)
	}
	return block, nil
}

// NewSM4Cipher function
func NewSM4Cipher(
	key []byte,
) (
	cipher.Block,
	error,
) {
	block, err := sm4.NewCipher(
		key,
	)
	if err != nil {
		return nil, errors.Wrap(
			err,
			"sm4",
		)
	}
	return block, nil
}

// NewTwofishCipher function
func NewTwofishCipher(
	key []byte,
) (
	cipher.Block,
	error,
) {
	block, err := twofish.NewCipher(
		key,
	)
	if err != nil {
		return nil, errors.Wrap(
			err,
			"twofish",
		)
	}
	return block, nil
}

// NewTDEACipher function accepts a 21 byte (168 bit) key, which is
// expanded with DES parity bits, or an already expanded 24 byte key.
func NewTDEACipher(
	key []byte,
) (
	cipher.Block,
	error,
) {
	if len(key) == tdeaKeySize {
		key = expandTDEAKey(
			key,
		)
	}
	block, err := des.NewTripleDESCipher(
		key,
	)
	if err != nil {
		return nil, errors.Wrap(
			err,
			"tdea",
		)
	}
	return block, nil
}

func expandTDEAKey(
	key []byte,
) []byte {
	tmp := make(
		[]byte,
		tdeaExpandedKeySize,
	)
	padTDEAKey(key[0:], tmp[0:])
	padTDEAKey(key[7:], tmp[8:])
	padTDEAKey(key[14:], tmp[16:])
	return tmp
}

// padTDEAKey spreads 56 key bits over 8 bytes and sets odd parity
func padTDEAKey(
	k,
	t []byte,
) {
	t[0] = k[0] & 0xfe
	t[1] = k[0]<<7 | (k[1]&0xfc)>>1
	t[2] = k[1]<<6 | (k[2]&0xf8)>>2
	t[3] = k[2]<<5 | (k[3]&0xf0)>>3
	t[4] = k[3]<<4 | (k[4]&0xe0)>>4
	t[5] = k[4]<<3 | (k[5]&0xc0)>>5
	t[6] = k[5]<<2 | (k[6]&0x80)>>6
	t[7] = k[6] << 1
	for i := 0; i < 8; i++ {
		b := t[i]
		p := (b>>1 ^ b>>2 ^ b>>3 ^ b>>4 ^ b>>5 ^ b>>6 ^ b>>7 ^ 0x01) & 0x01
		t[i] = b&0xfe | p
	}
}

func newBLAKE2b256() hash.Hash {
	h, _ := blake2b.New256(
		nil,
	)
	return h
}

func newBLAKE2b512() hash.Hash {
	h, _ := blake2b.New512(
		nil,
	)
	return h
}

// DefaultCiphers returns the block ciphers supported by default
func DefaultCiphers() []CipherSpec {
	return []CipherSpec{
		{Name: "AES-128", Family: "AES", KeyBits: 128, BlockBits: 128, New: NewAESCipher},
		{Name: "AES-192", Family: "AES", KeyBits: 192, BlockBits: 128, New: NewAESCipher},
		{Name: "AES-256", Family: "AES", KeyBits: 256, BlockBits: 128, New: NewAESCipher},
		{Name: "SM4", Family: "SM4", KeyBits: 128, BlockBits: 128, New: NewSM4Cipher},
		{Name: "Twofish-128", Family: "Twofish", KeyBits: 128, BlockBits: 128, New: NewTwofishCipher},
		{Name: "Twofish-192", Family: "Twofish", KeyBits: 192, BlockBits: 128, New: NewTwofishCipher},
		{Name: "Twofish-256", Family: "Twofish", KeyBits: 256, BlockBits: 128, New: NewTwofishCipher},
		{Name: "DESede", Family: "DESede", KeyBits: 168, BlockBits: 64, New: NewTDEACipher},
	}
}

// DefaultDigests returns the digests supported by default
func DefaultDigests() []DigestSpec {
	return []DigestSpec{
		{Name: "SHA-1", Family: "SHA-1", Bits: 160, New: sha1.New},
		{Name: "SHA-224", Family: "SHA-2", Bits: 224, New: sha256.New224},
		{Name: "SHA-256", Family: "SHA-2", Bits: 256, New: sha256.New},
		{Name: "SHA-384", Family: "SHA-2", Bits: 384, New: sha512.New384},
		{Name: "SHA-512", Family: "SHA-2", Bits: 512, New: sha512.New},
		{Name: "SHA-512/256", Family: "SHA-2", Bits: 256, New: sha512.New512_256},
		{Name: "SHA3-256", Family: "SHA-3", Bits: 256, New: sha3.New256},
		{Name: "SHA3-512", Family: "SHA-3", Bits: 512, New: sha3.New512},
		{Name: "BLAKE2b-256", Family: "BLAKE2b", Bits: 256, New: newBLAKE2b256},
		{Name: "BLAKE2b-512", Family: "BLAKE2b", Bits: 512, New: newBLAKE2b512},
		{Name: "SM3", Family: "SM3", Bits: 256, New: sm3.New},
	}
}
