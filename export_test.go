// Copyright © 2021 Gridfinity, LLC. <admin@gridfinity.com>.
//
// All rights reserved.
//
// All use of this code is governed by the MIT license.
// The complete license is available in the LICENSE file.

package gfdrbg

func (
	d *CTRDRBG,
) ReseedCounter() uint64 {
	return d.reseedCounter.Uint64()
}

func (
	d *CTRDRBG,
) SetReseedCounter(
	v uint64,
) {
	d.reseedCounter.Set(
		v,
	)
}

// State returns copies of Key and V
func (
	d *CTRDRBG,
) State() (
	[]byte,
	[]byte,
) {
	return append([]byte(nil), d.key...),
		append([]byte(nil), d.v.Bytes()...)
}

func (
	d *HMACDRBG,
) ReseedCounter() uint64 {
	return d.reseedCounter.Uint64()
}

func (
	d *HMACDRBG,
) SetReseedCounter(
	v uint64,
) {
	d.reseedCounter.Set(
		v,
	)
}

func (
	d *HMACDRBG,
) State() (
	[]byte,
	[]byte,
) {
	return append([]byte(nil), d.key...),
		append([]byte(nil), d.v...)
}

func (
	d *X931DRBG,
) ReseedCounter() uint64 {
	return d.reseedCounter.Uint64()
}

func (
	d *X931DRBG,
) SetReseedCounter(
	v uint64,
) {
	d.reseedCounter.Set(
		v,
	)
}

func (
	d *X931DRBG,
) DateTime() []byte {
	return append(
		[]byte(nil),
		d.dt.Bytes()...,
	)
}
