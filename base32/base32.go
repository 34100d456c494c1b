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

// Package base32 converts between binary data and the base32 text
// alphabets used in DNS presentation formats. Unlike encoding/base32 from
// the standard library it implements the hashed-owner alphabet of NSEC3
// records (digits before letters) and the relaxed padding rules zone file
// parsers have historically accepted.
package base32

import (
	"errors"
	"fmt"
	"strings"
)

// Decode errors. Both are wrapped with positional detail; match with
// errors.Is.
var (
	// ErrInvalidCharacter reports a character outside the active alphabet.
	ErrInvalidCharacter = errors.New("invalid base32 character")
	// ErrMalformed reports structurally bad input, such as an impossible
	// padding length or padding on input that is not a whole block.
	ErrMalformed = errors.New("malformed base32 input")
)

const padChar = '='

// Encoding is an immutable base32 configuration: a 32-character alphabet
// and whether EncodeToString emits '=' padding. Encodings are safe for
// concurrent use; derive a variant with WithPadding instead of mutating.
type Encoding struct {
	alphabet string
	pad      bool
	decode   [256]int8
}

// DNS is the hashed-owner-name alphabet ("0123456789ABCDEFGHIJKLMNOPQRSTUV")
// used by NSEC3 next-hashed-owner fields. Padding is enabled.
var DNS = newEncoding("0123456789ABCDEFGHIJKLMNOPQRSTUV")

// RFC3548 is the conventional base32 alphabet ("A-Z2-7"). Padding is
// enabled.
var RFC3548 = newEncoding("ABCDEFGHIJKLMNOPQRSTUVWXYZ234567")

func newEncoding(alphabet string) *Encoding {
	enc := &Encoding{alphabet: alphabet, pad: true}
	for i := range enc.decode {
		enc.decode[i] = -1
	}
	for i := 0; i < len(alphabet); i++ {
		enc.decode[alphabet[i]] = int8(i)
	}
	return enc
}

// WithPadding returns an Encoding identical to enc except for the padding
// setting. Decoding accepts both padded and unpadded input either way.
func (enc *Encoding) WithPadding(pad bool) *Encoding {
	if pad == enc.pad {
		return enc
	}
	e := *enc
	e.pad = pad
	return &e
}

// Amount of '=' characters completing the 8-character block produced by a
// partial input block of the given byte length.
func blockLenToPadding(blockLen int) int {
	switch blockLen {
	case 1:
		return 6
	case 2:
		return 4
	case 3:
		return 3
	case 4:
		return 1
	default:
		return 0
	}
}

// Reverse of blockLenToPadding; -1 marks a padding length no input block
// can produce.
func paddingToBlockLen(padding int) int {
	switch padding {
	case 6:
		return 1
	case 4:
		return 2
	case 3:
		return 3
	case 1:
		return 4
	case 0:
		return 5
	default:
		return -1
	}
}

// EncodedLen returns the length in characters of the encoding of n source
// bytes.
func (enc *Encoding) EncodedLen(n int) int {
	if enc.pad {
		return (n + 4) / 5 * 8
	}
	return (n*8 + 4) / 5
}

// EncodeToString encodes src. Each 5-byte input block becomes 8 characters;
// the final partial block keeps only the characters carrying data, followed
// by '=' up to the block boundary when padding is enabled. Empty input
// encodes to the empty string. Encoding never fails.
func (enc *Encoding) EncodeToString(src []byte) string {
	var sb strings.Builder
	var s [5]byte
	var t [8]byte

	nblocks := (len(src) + 4) / 5
	for i := 0; i < nblocks; i++ {
		if i == nblocks-1 {
			s = [5]byte{}
		}
		k := copy(s[:], src[i*5:])
		padding := blockLenToPadding(k)

		// split 40 bits into eight 5-bit symbols
		t[0] = s[0] >> 3
		t[1] = (s[0]&0x07)<<2 | s[1]>>6
		t[2] = s[1] >> 1 & 0x1F
		t[3] = (s[1]&0x01)<<4 | s[2]>>4
		t[4] = (s[2]&0x0F)<<1 | s[3]>>7
		t[5] = s[3] >> 2 & 0x1F
		t[6] = (s[3]&0x03)<<3 | s[4]>>5
		t[7] = s[4] & 0x1F

		for n := 0; n < len(t)-padding; n++ {
			sb.WriteByte(enc.alphabet[t[n]])
		}
		if enc.pad {
			for n := 0; n < padding; n++ {
				sb.WriteByte(padChar)
			}
		}
	}
	return sb.String()
}

// FormatString encodes src and wraps the result into lines of lineLength
// characters, each preceded by prefix. Every line but the last ends with a
// newline; when addClose is set the last line additionally ends with " )",
// closing a parenthesized multi-line rdata block. A lineLength of zero or
// less, or one at least as long as the encoding, produces a single line.
func (enc *Encoding) FormatString(src []byte, lineLength int, prefix string, addClose bool) string {
	s := enc.EncodeToString(src)
	if len(s) == 0 {
		return ""
	}
	if lineLength <= 0 || lineLength >= len(s) {
		if addClose {
			return prefix + s + " )"
		}
		return prefix + s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i += lineLength {
		sb.WriteString(prefix)
		if i+lineLength >= len(s) {
			sb.WriteString(s[i:])
			if addClose {
				sb.WriteString(" )")
			}
		} else {
			sb.WriteString(s[i : i+lineLength])
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// DecodeString decodes base32 text. Whitespace is ignored and letters may
// be in either case. Padding is optional: a final block shorter than 8
// characters is completed implicitly, but an explicit '=' run must leave a
// character count some input block length could actually have produced,
// and may only appear when the stripped input is a whole number of
// 8-character blocks. Decoding fails closed; on error no partial result is
// returned.
func (enc *Encoding) DecodeString(str string) ([]byte, error) {
	in := make([]byte, 0, len(str))
	for i := 0; i < len(str); i++ {
		c := str[i]
		if isSpace(c) {
			continue
		}
		if 'a' <= c && c <= 'z' {
			c -= 'a' - 'A'
		}
		in = append(in, c)
	}

	out := make([]byte, 0, (len(in)+7)/8*5)
	var s [8]int
	var t [5]byte

	nblocks := (len(in) + 7) / 8
	for i := 0; i < nblocks; i++ {
		s = [8]int{}
		padding := 0
		k := 0
		for j := i * 8; j < len(in) && k < len(s); j, k = j+1, k+1 {
			c := in[j]
			if c == padChar {
				if len(in)%8 != 0 {
					return nil, fmt.Errorf("%w: padding in a partial block", ErrMalformed)
				}
				padding = 8 - k
				break
			}
			v := enc.decode[c]
			if v < 0 {
				return nil, fmt.Errorf("%w: %q at offset %d", ErrInvalidCharacter, rune(c), j)
			}
			s[k] = int(v)
		}
		if k != len(s) {
			padding = 8 - k
		}
		blockLen := paddingToBlockLen(padding)
		if blockLen < 0 {
			return nil, fmt.Errorf("%w: %d symbols in final block", ErrMalformed, k)
		}

		// reassemble the 5 bytes, dropping the zero bits the padding
		// scheme guarantees
		t[0] = byte(s[0]<<3 | s[1]>>2)
		t[1] = byte((s[1]&0x03)<<6 | s[2]<<1 | s[3]>>4)
		t[2] = byte((s[3]&0x0F)<<4 | (s[4]>>1)&0x0F)
		t[3] = byte(s[4]<<7 | s[5]<<2 | s[6]>>3)
		t[4] = byte((s[6]&0x07)<<5 | s[7])

		out = append(out, t[:blockLen]...)
	}
	return out, nil
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
