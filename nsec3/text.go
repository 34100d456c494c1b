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
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/miekg/dns"

	"github.com/zoneforge/nsec3data/base32"
	"github.com/zoneforge/nsec3data/dnsname"
	"github.com/zoneforge/nsec3data/zonetext"
)

// DecodeText parses presentation-form NSEC3 rdata into a Record owned by
// the given name.
func DecodeText(owner dnsname.Name, s string) (*Record, error) {
	r := &Record{owner: owner}
	if err := r.UnmarshalText([]byte(s)); err != nil {
		return nil, err
	}
	return r, nil
}

// UnmarshalText implements encoding.TextUnmarshaler. The expected field
// order is
//
//	<opt-out> <algorithm> <iterations> <salt> <next> [<type> ...] [; <comment>]
//
// where opt-out is 0 or 1, the algorithm is decimal or a mnemonic, the
// salt is hex with "-" for absent, the next hashed owner is base32, and
// the types are mnemonics or RFC 3597 TYPE<n> names. Parenthesized
// multi-line input is accepted. The record keeps its owner name and is
// left untouched on error.
func (r *Record) UnmarshalText(text []byte) error {
	tok := zonetext.New(string(text))

	flag, err := tok.GetUint8()
	if err != nil {
		return fmt.Errorf("opt-out flag: %w", err)
	}
	if flag > 1 {
		return fmt.Errorf("%w: opt-out flag %d", ErrOutOfRange, flag)
	}

	algTok, err := tok.GetString()
	if err != nil {
		return fmt.Errorf("hash algorithm: %w", err)
	}
	algorithm, err := ParseHashAlgorithm(algTok)
	if err != nil {
		return err
	}

	iterations, err := tok.GetUint32()
	if err != nil {
		return fmt.Errorf("iterations: %w", err)
	}

	saltTok, err := tok.GetString()
	if err != nil {
		return fmt.Errorf("salt: %w", err)
	}
	salt, err := ParseSalt(saltTok)
	if err != nil {
		return err
	}

	nextTok, err := tok.GetString()
	if err != nil {
		return fmt.Errorf("next hashed owner: %w", err)
	}
	// The hash field has a fixed text length once the algorithm is known,
	// so one wrapped across continuation lines can be stitched back
	// together without guessing where the type list starts.
	hashChars := base32.DNS.WithPadding(false).EncodedLen(algorithm.HashLength())
	for len(nextTok) < hashChars {
		t, err := tok.Get()
		if err != nil {
			return err
		}
		if !t.IsString() {
			tok.Unget()
			break
		}
		nextTok += t.Value
	}
	next, err := base32.DNS.DecodeString(nextTok)
	if err != nil {
		return fmt.Errorf("next hashed owner: %w", err)
	}

	var types []uint16
	var comment string
	for {
		t, err := tok.Get()
		if err != nil {
			return err
		}
		if t.IsEOL() {
			break
		}
		if t.Type == zonetext.Comment {
			comment = t.Value
			continue
		}
		code, err := ParseType(t.Value)
		if err != nil {
			return err
		}
		types = append(types, code)
	}

	out := &Record{
		owner:      r.owner,
		algorithm:  algorithm,
		optOut:     flag == 1,
		iterations: iterations,
		salt:       salt,
		next:       next,
		types:      types,
		comment:    comment,
	}
	if err := out.finish(); err != nil {
		return err
	}
	*r = *out
	return nil
}

// String renders the rdata on one line, ending with the comment when one
// is set.
func (r *Record) String() string {
	var sb strings.Builder
	sb.WriteString(r.headString())
	sb.WriteByte(' ')
	sb.WriteString(r.nextString())
	for _, t := range r.types {
		sb.WriteByte(' ')
		sb.WriteString(dns.Type(t).String())
	}
	if r.comment != "" {
		sb.WriteString(" ; ")
		sb.WriteString(r.comment)
	}
	return sb.String()
}

// MarshalText implements encoding.TextMarshaler.
func (r *Record) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// FormatText renders the rdata in parenthesized zone file form, wrapping
// the next hashed owner at lineLength characters with a tab before each
// continuation line. The output parses back through UnmarshalText.
func (r *Record) FormatText(lineLength int) string {
	var sb strings.Builder
	sb.WriteString(r.headString())
	sb.WriteString(" (\n")
	hashCloses := len(r.types) == 0
	sb.WriteString(strings.ToLower(base32.DNS.WithPadding(false).FormatString(r.next, lineLength, "\t", hashCloses)))
	if !hashCloses {
		sb.WriteString("\n\t")
		for i, t := range r.types {
			if i > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(dns.Type(t).String())
		}
		sb.WriteString(" )")
	}
	if r.comment != "" {
		sb.WriteString(" ; ")
		sb.WriteString(r.comment)
	}
	return sb.String()
}

// headString renders the fields before the next hashed owner.
func (r *Record) headString() string {
	flag := 0
	if r.optOut {
		flag = 1
	}
	return fmt.Sprintf("%d %d %d %s", flag, uint8(r.algorithm), r.iterations, SaltString(r.salt))
}

// nextString renders the next hashed owner the way digging tools print
// hashed names, lowercase and unpadded.
func (r *Record) nextString() string {
	return HashedOwnerLabel(r.next)
}

// DecodeParamText parses presentation-form NSEC3PARAM rdata.
func DecodeParamText(s string) (*ParamRecord, error) {
	p := &ParamRecord{}
	if err := p.UnmarshalText([]byte(s)); err != nil {
		return nil, err
	}
	return p, nil
}

// UnmarshalText implements encoding.TextUnmarshaler. The expected field
// order is <algorithm> <flags> <iterations> <salt>, with the same
// algorithm and salt conventions as the NSEC3 record. The record is left
// untouched on error.
func (p *ParamRecord) UnmarshalText(text []byte) error {
	tok := zonetext.New(string(text))

	algTok, err := tok.GetString()
	if err != nil {
		return fmt.Errorf("hash algorithm: %w", err)
	}
	algorithm, err := ParseHashAlgorithm(algTok)
	if err != nil {
		return err
	}

	flags, err := tok.GetUint8()
	if err != nil {
		return fmt.Errorf("flags: %w", err)
	}

	iterations, err := tok.GetUint16()
	if err != nil {
		return fmt.Errorf("iterations: %w", err)
	}

	saltTok, err := tok.GetString()
	if err != nil {
		return fmt.Errorf("salt: %w", err)
	}
	salt, err := ParseSalt(saltTok)
	if err != nil {
		return err
	}

	for {
		t, err := tok.Get()
		if err != nil {
			return err
		}
		if t.IsEOL() {
			break
		}
		if t.Type != zonetext.Comment {
			return fmt.Errorf("%w: unexpected trailing field %q", zonetext.ErrSyntax, t.Value)
		}
	}

	out := &ParamRecord{
		algorithm:  algorithm,
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

// String renders the rdata on one line.
func (p *ParamRecord) String() string {
	return fmt.Sprintf("%d %d %d %s", uint8(p.algorithm), p.flags, p.iterations, SaltString(p.salt))
}

// MarshalText implements encoding.TextMarshaler.
func (p *ParamRecord) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// ParseSalt decodes a hex salt field. "-" marks an absent salt; "0" and
// "00" are accepted for the same, matching what signers in the wild emit.
func ParseSalt(s string) ([]byte, error) {
	switch s {
	case "-", "0", "00":
		return nil, nil
	}
	salt, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: salt %q: %w", ErrMalformed, s, err)
	}
	return salt, nil
}

// SaltString renders a salt as uppercase hex, "-" when absent.
func SaltString(salt []byte) string {
	if len(salt) == 0 {
		return "-"
	}
	return fmt.Sprintf("%X", salt)
}

// ParseType resolves a resource record type name, accepting the RFC 3597
// TYPE<n> form for types without a mnemonic.
func ParseType(s string) (uint16, error) {
	u := strings.ToUpper(s)
	if t, ok := dns.StringToType[u]; ok {
		return t, nil
	}
	if rest, ok := strings.CutPrefix(u, "TYPE"); ok {
		v, err := strconv.ParseUint(rest, 10, 16)
		if err != nil {
			if errors.Is(err, strconv.ErrRange) {
				return 0, fmt.Errorf("%w: type code %q", ErrOutOfRange, s)
			}
			return 0, fmt.Errorf("%w: record type %q", ErrUnknownMnemonic, s)
		}
		return uint16(v), nil
	}
	return 0, fmt.Errorf("%w: record type %q", ErrUnknownMnemonic, s)
}
