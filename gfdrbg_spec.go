// Copyright © 2020 Gridfinity, LLC. <admin@gridfinity.com>.
// Copyright © 2020 Jeffrey H. Johnson <jeff@gridfinity.com>.
//
// All rights reserved.
//
// All use of this code is governed by the MIT license.
// The complete license is available in the LICENSE file.

package gfdrbg // import "github.com/johnsonjh/gfdrbg"

import (
	"strings"

	"github.com/pkg/errors"
)

// Kind selects a generator construction
type Kind int

// Generator kinds
const (
	KindHash Kind = iota
	KindHMAC
	KindCTR
	KindX931
)

const predictionResistantSuffix = "/PR"

var kindNames = map[Kind]string{
	KindHash: "HASH",
	KindHMAC: "HMAC",
	KindCTR:  "CTR",
	KindX931: "X931",
}

// String ...
func (
	k Kind,
) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "UNKNOWN"
}

// RandomSpec selects a generator kind, its primitive, and whether every
// request reseeds first. Primitive names a digest for HASH and HMAC and
// a cipher for CTR and X931.
type RandomSpec struct {
	Kind                Kind
	Primitive           string
	PredictionResistant bool
}

// String renders the spec as accepted by ParseRandomSpec, for example
// "CTR-AES-128" or "HMAC-SHA-256/PR".
func (
	s RandomSpec,
) String() string {
	str := s.Kind.String() + "-" + s.Primitive
	if s.PredictionResistant {
		str += predictionResistantSuffix
	}
	return str
}

// ParseRandomSpec parses "KIND-PRIMITIVE[/PR]". Only the syntax is
// checked; primitive support is decided by a Factory.
func ParseRandomSpec(
	str string,
) (
	RandomSpec,
	error,
) {
	var spec RandomSpec
	str = strings.TrimSpace(
		str,
	)
	if strings.HasSuffix(
		strings.ToUpper(str),
		predictionResistantSuffix,
	) {
		spec.PredictionResistant = true
		str = str[:len(str)-len(predictionResistantSuffix)]
	}
	dash := strings.IndexByte(
		str,
		'-',
	)
	if dash <= 0 || dash == len(str)-1 {
		return spec, errors.Wrapf(
			ErrInvalidSpec,
			"malformed spec %q",
			str,
		)
	}
	kind := strings.ToUpper(
		str[:dash],
	)
	found := false
	for k, name := range kindNames {
		if name == kind {
			spec.Kind = k
			found = true
			break
		}
	}
	if !found {
		return spec, errors.Wrapf(
			ErrInvalidSpec,
			"unknown kind %q",
			kind,
		)
	}
	spec.Primitive = str[dash+1:]
	return spec, nil
}
