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

// Package nsec3 implements the NSEC3 and NSEC3PARAM resource record data:
// the binary wire codec, the zone file presentation codec, and the
// iterative hashed-owner-name computation the records are defined by.
// Records are immutable once constructed; the Builder covers the usual
// workflow of assembling a record before its chain successor is known.
package nsec3

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/zoneforge/nsec3data/base32"
	"github.com/zoneforge/nsec3data/dnsname"
	"github.com/zoneforge/nsec3data/typebitmap"
)

// Errors returned by record construction and the two codecs. Decoders wrap
// these with detail; match with errors.Is.
var (
	// ErrMalformed reports structurally bad wire or presentation input.
	ErrMalformed = errors.New("malformed nsec3 data")
	// ErrUnsupportedAlgorithm reports a hash algorithm without an
	// implementation.
	ErrUnsupportedAlgorithm = errors.New("unsupported nsec3 hash algorithm")
	// ErrOutOfRange reports a field value outside its documented range.
	ErrOutOfRange = errors.New("nsec3 value out of range")
	// ErrUnknownMnemonic reports an unresolvable type or algorithm name.
	ErrUnknownMnemonic = errors.New("unknown mnemonic")
)

const (
	// MaxIterations is the largest accepted iteration count. The field is
	// 24 bits wide in the record's documented data model.
	MaxIterations = 1<<24 - 1
	// maxWireIterations is the largest iteration count the wire layout
	// can carry; the top bit of the 24-bit field shares its byte with the
	// opt-out flag.
	maxWireIterations = 1<<23 - 1
	// MaxSaltLength is the largest salt the length octet can describe.
	MaxSaltLength = 255
)

// Record is one NSEC3 record: the owner name it lives at and its rdata.
// Values are immutable after construction; build them with a Builder,
// DecodeWire, or DecodeText, and share them freely between goroutines.
type Record struct {
	owner      dnsname.Name
	algorithm  HashAlgorithm
	optOut     bool
	iterations uint32
	salt       []byte
	next       []byte
	types      []uint16
	comment    string

	ownerHash func() ([]byte, error)
}

// finish validates fields shared by every construction path and installs
// the memoized owner hash. All slices must already be private copies.
func (r *Record) finish() error {
	if !r.algorithm.Supported() {
		return fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, r.algorithm)
	}
	if r.iterations > MaxIterations {
		return fmt.Errorf("%w: %d iterations", ErrOutOfRange, r.iterations)
	}
	if len(r.salt) > MaxSaltLength {
		return fmt.Errorf("%w: salt of %d bytes", ErrOutOfRange, len(r.salt))
	}
	if len(r.next) != r.algorithm.HashLength() {
		return fmt.Errorf("%w: next hashed owner is %d bytes, %s needs %d",
			ErrMalformed, len(r.next), r.algorithm, r.algorithm.HashLength())
	}
	r.types = typebitmap.Normalize(r.types)
	owner := r.owner
	r.ownerHash = sync.OnceValues(func() ([]byte, error) {
		return ownerHashFromName(owner)
	})
	return nil
}

// Owner returns the name the record lives at; the zero Name if the record
// was decoded without one.
func (r *Record) Owner() dnsname.Name {
	return r.owner
}

// Algorithm returns the hash algorithm.
func (r *Record) Algorithm() HashAlgorithm {
	return r.algorithm
}

// OptOut reports the opt-out flag.
func (r *Record) OptOut() bool {
	return r.optOut
}

// Iterations returns the extra hash iteration count.
func (r *Record) Iterations() uint32 {
	return r.iterations
}

// Salt returns a copy of the salt, nil when absent.
func (r *Record) Salt() []byte {
	return slices.Clone(r.salt)
}

// NextHashedOwner returns a copy of the next hashed owner name.
func (r *Record) NextHashedOwner() []byte {
	return slices.Clone(r.next)
}

// Types returns a copy of the type codes, ascending and duplicate free.
func (r *Record) Types() []uint16 {
	return slices.Clone(r.types)
}

// Comment returns the trailing presentation-form comment, if any. Comments
// are not part of the wire form.
func (r *Record) Comment() string {
	return r.comment
}

func ownerHashFromName(owner dnsname.Name) ([]byte, error) {
	label := owner.FirstLabel()
	if label == "" {
		return nil, fmt.Errorf("%w: record has no owner name", ErrMalformed)
	}
	h, err := base32.DNS.DecodeString(label)
	if err != nil {
		return nil, fmt.Errorf("owner label %q: %w", label, err)
	}
	return h, nil
}

// OwnerHash returns the hash the record's owner name encodes, recovered by
// base32-decoding its first label. The value is computed once per record
// and cached.
func (r *Record) OwnerHash() ([]byte, error) {
	if r.ownerHash == nil {
		h, err := ownerHashFromName(r.owner)
		return slices.Clone(h), err
	}
	h, err := r.ownerHash()
	return slices.Clone(h), err
}

// Match reports whether name hashes to this record's owner hash under the
// record's own parameters. A nil hasher computes directly.
func (r *Record) Match(name dnsname.Name, hasher *Hasher) (bool, error) {
	own, err := r.OwnerHash()
	if err != nil {
		return false, err
	}
	var digest []byte
	if hasher != nil {
		digest, err = hasher.HashName(name, r.algorithm, r.iterations, r.salt)
	} else {
		digest, err = HashName(name, r.algorithm, r.iterations, r.salt)
	}
	if err != nil {
		return false, err
	}
	return bytes.Equal(own, digest), nil
}

// Builder assembles an NSEC3 record. The zero value is not useful; start
// with NewBuilder. Builders are not safe for concurrent use; the records
// they produce are.
type Builder struct {
	record Record
}

// NewBuilder starts a record at owner with the given hash parameters.
func NewBuilder(owner dnsname.Name, algorithm HashAlgorithm, iterations uint32, salt []byte) *Builder {
	return &Builder{record: Record{
		owner:      owner,
		algorithm:  algorithm,
		iterations: iterations,
		salt:       slices.Clone(salt),
	}}
}

// OptOut sets the opt-out flag.
func (b *Builder) OptOut(optOut bool) *Builder {
	b.record.optOut = optOut
	return b
}

// Types sets the type codes present at the original owner name. Order and
// duplicates do not matter; Build normalizes.
func (b *Builder) Types(types ...uint16) *Builder {
	b.record.types = slices.Clone(types)
	return b
}

// NextHashedOwner sets the chain successor's hashed name, typically once
// the whole chain has been hashed and sorted.
func (b *Builder) NextHashedOwner(next []byte) *Builder {
	b.record.next = slices.Clone(next)
	return b
}

// Comment sets the presentation-form trailing comment.
func (b *Builder) Comment(comment string) *Builder {
	b.record.comment = comment
	return b
}

// Build validates the assembled fields and returns the finished record.
// The builder may be reused; the returned record is independent of it.
func (b *Builder) Build() (*Record, error) {
	r := b.record
	r.salt = slices.Clone(b.record.salt)
	r.next = slices.Clone(b.record.next)
	r.types = slices.Clone(b.record.types)
	if err := r.finish(); err != nil {
		return nil, err
	}
	return &r, nil
}
