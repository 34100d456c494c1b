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

	"github.com/zoneforge/nsec3data/dnsname"
	"github.com/zoneforge/nsec3data/typebitmap"
	"github.com/zoneforge/nsec3data/wire"
)

// DecodeWire parses NSEC3 rdata into a Record owned by the given name.
func DecodeWire(owner dnsname.Name, rdata []byte) (*Record, error) {
	r := &Record{owner: owner}
	if err := r.UnmarshalWire(rdata); err != nil {
		return nil, err
	}
	return r, nil
}

// UnmarshalWire replaces the record's rdata fields with the parsed wire
// form, keeping the owner name. The record is left untouched on error.
func (r *Record) UnmarshalWire(data []byte) error {
	rd := wire.NewReader(data)
	alg, err := rd.ReadU8()
	if err != nil {
		return fmt.Errorf("%w: hash algorithm: %w", ErrMalformed, err)
	}
	flags, err := rd.ReadU8()
	if err != nil {
		return fmt.Errorf("%w: flags: %w", ErrMalformed, err)
	}
	iterLow, err := rd.ReadU16()
	if err != nil {
		return fmt.Errorf("%w: iterations: %w", ErrMalformed, err)
	}
	saltLen, err := rd.ReadU8()
	if err != nil {
		return fmt.Errorf("%w: salt length: %w", ErrMalformed, err)
	}
	var salt []byte
	if saltLen > 0 {
		if salt, err = rd.ReadBytes(int(saltLen)); err != nil {
			return fmt.Errorf("%w: salt: %w", ErrMalformed, err)
		}
	}
	algorithm := HashAlgorithm(alg)
	if !algorithm.Supported() {
		return fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, algorithm)
	}
	next, err := rd.ReadBytes(algorithm.HashLength())
	if err != nil {
		return fmt.Errorf("%w: next hashed owner: %w", ErrMalformed, err)
	}
	types, err := typebitmap.Decode(rd.ReadRemaining())
	if err != nil {
		return fmt.Errorf("%w: type bitmap: %w", ErrMalformed, err)
	}

	out := &Record{
		owner:     r.owner,
		algorithm: algorithm,
		// The top bit of the flags byte is opt-out, the low seven bits
		// extend the iteration count past 16 bits.
		optOut:     flags&0x80 != 0,
		iterations: (uint32(flags&0x7F) << 16) | uint32(iterLow),
		salt:       salt,
		next:       next,
		types:      types,
	}
	if err := out.finish(); err != nil {
		return err
	}
	*r = *out
	return nil
}

// MarshalWire renders the record's rdata. Records whose iteration count
// does not fit the seven spare flag bits cannot be encoded without
// corrupting the opt-out flag, so encoding them fails instead.
func (r *Record) MarshalWire() ([]byte, error) {
	if r.iterations > maxWireIterations {
		return nil, fmt.Errorf("%w: %d iterations do not fit the wire form", ErrOutOfRange, r.iterations)
	}
	flags := uint8(r.iterations >> 16)
	if r.optOut {
		flags |= 0x80
	}
	var w wire.Writer
	w.WriteU8(uint8(r.algorithm))
	w.WriteU8(flags)
	w.WriteU16(uint16(r.iterations))
	w.WriteU8(uint8(len(r.salt)))
	w.WriteBytes(r.salt)
	w.WriteBytes(r.next)
	w.WriteBytes(typebitmap.Encode(r.types))
	return w.Bytes(), nil
}

// DecodeParamWire parses NSEC3PARAM rdata.
func DecodeParamWire(rdata []byte) (*ParamRecord, error) {
	p := &ParamRecord{}
	if err := p.UnmarshalWire(rdata); err != nil {
		return nil, err
	}
	return p, nil
}

// UnmarshalWire replaces the record's fields with the parsed wire form.
// The record is left untouched on error.
func (p *ParamRecord) UnmarshalWire(data []byte) error {
	rd := wire.NewReader(data)
	alg, err := rd.ReadU8()
	if err != nil {
		return fmt.Errorf("%w: hash algorithm: %w", ErrMalformed, err)
	}
	flags, err := rd.ReadU8()
	if err != nil {
		return fmt.Errorf("%w: flags: %w", ErrMalformed, err)
	}
	iterations, err := rd.ReadU16()
	if err != nil {
		return fmt.Errorf("%w: iterations: %w", ErrMalformed, err)
	}
	saltLen, err := rd.ReadU8()
	if err != nil {
		return fmt.Errorf("%w: salt length: %w", ErrMalformed, err)
	}
	var salt []byte
	if saltLen > 0 {
		if salt, err = rd.ReadBytes(int(saltLen)); err != nil {
			return fmt.Errorf("%w: salt: %w", ErrMalformed, err)
		}
	}
	if n := rd.Remaining(); n != 0 {
		return fmt.Errorf("%w: %d trailing bytes", ErrMalformed, n)
	}

	out := &ParamRecord{
		algorithm:  HashAlgorithm(alg),
		flags:      flags,
		iterations: iterations,
		salt:       salt,
	}
	if err := out.validate(); err != nil {
		return err
	}
	*p = *out
	return nil
}

// MarshalWire renders the record's rdata.
func (p *ParamRecord) MarshalWire() []byte {
	var w wire.Writer
	w.WriteU8(uint8(p.algorithm))
	w.WriteU8(p.flags)
	w.WriteU16(p.iterations)
	w.WriteU8(uint8(len(p.salt)))
	w.WriteBytes(p.salt)
	return w.Bytes()
}
