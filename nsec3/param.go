/*
Copyright (c) Zoneforge, Inc. and affiliates.
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at
    http://www.apache.org/licenses/LICENSE-2.0
Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package nsec3

import (
	"fmt"
	"slices"
)

// ParamRecord is the NSEC3PARAM companion record a signed zone publishes
// at its apex to advertise the hash parameters its NSEC3 chain was built
// with. It shares the leading NSEC3 fields but carries no next hash or
// type bitmap, its flags byte travels verbatim, and its iteration field is
// the plain 16-bit wire quantity.
type ParamRecord struct {
	algorithm  HashAlgorithm
	flags      uint8
	iterations uint16
	salt       []byte
}

// NewParam validates the fields and returns an immutable ParamRecord.
func NewParam(algorithm HashAlgorithm, flags uint8, iterations uint16, salt []byte) (*ParamRecord, error) {
	p := &ParamRecord{
		algorithm:  algorithm,
		flags:      flags,
		iterations: iterations,
		salt:       slices.Clone(salt),
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *ParamRecord) validate() error {
	if !p.algorithm.Supported() {
		return fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, p.algorithm)
	}
	if len(p.salt) > MaxSaltLength {
		return fmt.Errorf("%w: salt of %d bytes", ErrOutOfRange, len(p.salt))
	}
	return nil
}

// Algorithm returns the hash algorithm.
func (p *ParamRecord) Algorithm() HashAlgorithm {
	return p.algorithm
}

// Flags returns the flags byte exactly as carried.
func (p *ParamRecord) Flags() uint8 {
	return p.flags
}

// Iterations returns the extra hash iteration count.
func (p *ParamRecord) Iterations() uint16 {
	return p.iterations
}

// Salt returns a copy of the salt, nil when absent.
func (p *ParamRecord) Salt() []byte {
	return slices.Clone(p.salt)
}
