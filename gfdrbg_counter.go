// Copyright © 2020 Gridfinity, LLC. <admin@gridfinity.com>.
// Copyright © 2020 Jeffrey H. Johnson <jeff@gridfinity.com>.
//
// All rights reserved.
//
// All use of this code is governed by the MIT license.
// The complete license is available in the LICENSE file.

package gfdrbg // import "github.com/johnsonjh/gfdrbg"

// ByteCounter is a fixed-width big-endian unsigned integer
type ByteCounter struct {
	buf []byte
}

// NewByteCounter returns a zeroed counter width bytes wide
func NewByteCounter(
	width int,
) *ByteCounter {
	return &ByteCounter{
		buf: make(
			[]byte,
			width,
		),
	}
}

// Bytes returns the underlying buffer
func (
	c *ByteCounter,
) Bytes() []byte {
	return c.buf
}

// Len ...
func (
	c *ByteCounter,
) Len() int {
	return len(
		c.buf,
	)
}

// Increment adds one, wrapping silently at the counter width
func (
	c *ByteCounter,
) Increment() {
	for i := len(c.buf) - 1; i >= 0; i-- {
		c.buf[i]++
		if c.buf[i] != 0 {
			break
		}
	}
}

// Reset zeroes the counter
func (
	c *ByteCounter,
) Reset() {
	for i := range c.buf {
		c.buf[i] = 0
	}
}

// Set stores v, truncated to the counter width
func (
	c *ByteCounter,
) Set(
	v uint64,
) {
	for i := len(c.buf) - 1; i >= 0; i-- {
		c.buf[i] = byte(
			v,
		)
		v >>= 8
	}
}

// Uint64 returns the low 64 bits of the counter
func (
	c *ByteCounter,
) Uint64() uint64 {
	var v uint64
	start := 0
	if len(c.buf) > 8 {
		start = len(c.buf) - 8
	}
	for _, b := range c.buf[start:] {
		v = v<<8 | uint64(
			b,
		)
	}
	return v
}

// ExceedsOrEquals reports whether the counter is >= limit
func (
	c *ByteCounter,
) ExceedsOrEquals(
	limit uint64,
) bool {
	if len(c.buf) > 8 {
		for _, b := range c.buf[:len(c.buf)-8] {
			if b != 0 {
				return true
			}
		}
	}
	return c.Uint64() >= limit
}
