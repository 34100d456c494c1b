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

// Package zonetext tokenizes zone file presentation text for rdata
// parsers: whitespace-separated fields, a single token of pushback for
// greedy field consumption, parenthesis grouping that turns newlines into
// whitespace, and trailing semicolon comments.
package zonetext

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrSyntax reports structurally bad text, such as unbalanced
	// parentheses or a missing field.
	ErrSyntax = errors.New("zone text syntax error")
	// ErrOutOfRange reports a numeric field outside its stated width.
	ErrOutOfRange = errors.New("value out of range")
)

// TokenType discriminates Tokenizer tokens.
type TokenType int

const (
	// EOF marks the end of input.
	EOF TokenType = iota
	// EOL marks a newline outside parentheses.
	EOL
	// String is a whitespace-delimited field.
	String
	// Comment is the text following a semicolon, up to end of line.
	Comment
)

// Token is one lexical element of presentation text.
type Token struct {
	Type  TokenType
	Value string
}

// IsString reports whether the token is a field.
func (t Token) IsString() bool {
	return t.Type == String
}

// IsEOL reports whether the token ends a record: a newline or the end of
// input.
func (t Token) IsEOL() bool {
	return t.Type == EOL || t.Type == EOF
}

// Tokenizer walks a presentation text string. It keeps one token of
// pushback; see Unget.
type Tokenizer struct {
	input  string
	pos    int
	parens int
	last   Token
	ungot  bool
}

// New returns a Tokenizer over s.
func New(s string) *Tokenizer {
	return &Tokenizer{input: s}
}

// Get returns the next token. Whitespace separates tokens and is never
// returned; inside parentheses newlines count as whitespace.
func (t *Tokenizer) Get() (Token, error) {
	if t.ungot {
		t.ungot = false
		return t.last, nil
	}
	tok, err := t.scan()
	if err != nil {
		return Token{}, err
	}
	t.last = tok
	return tok, nil
}

// Unget pushes the last token back so the next Get returns it again. Only
// one token of pushback is kept; calling Unget twice without an
// intervening Get is a programming error and panics.
func (t *Tokenizer) Unget() {
	if t.ungot {
		panic("zonetext: unget of more than one token")
	}
	t.ungot = true
}

func (t *Tokenizer) scan() (Token, error) {
	for t.pos < len(t.input) {
		c := t.input[t.pos]
		switch c {
		case ' ', '\t', '\r':
			t.pos++
		case '\n':
			t.pos++
			if t.parens == 0 {
				return Token{Type: EOL}, nil
			}
		case '(':
			t.pos++
			t.parens++
		case ')':
			if t.parens == 0 {
				return Token{}, fmt.Errorf("%w: unbalanced ')'", ErrSyntax)
			}
			t.pos++
			t.parens--
		case ';':
			t.pos++
			start := t.pos
			for t.pos < len(t.input) && t.input[t.pos] != '\n' {
				t.pos++
			}
			return Token{Type: Comment, Value: strings.TrimSpace(t.input[start:t.pos])}, nil
		default:
			start := t.pos
			for t.pos < len(t.input) && !isDelimiter(t.input[t.pos]) {
				t.pos++
			}
			return Token{Type: String, Value: t.input[start:t.pos]}, nil
		}
	}
	if t.parens > 0 {
		return Token{}, fmt.Errorf("%w: unclosed '('", ErrSyntax)
	}
	return Token{Type: EOF}, nil
}

func isDelimiter(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '(', ')', ';':
		return true
	}
	return false
}

// GetString returns the next token, which must be a field.
func (t *Tokenizer) GetString() (string, error) {
	tok, err := t.Get()
	if err != nil {
		return "", err
	}
	if !tok.IsString() {
		return "", fmt.Errorf("%w: expected a field", ErrSyntax)
	}
	return tok.Value, nil
}

func (t *Tokenizer) getUint(bits int) (uint64, error) {
	s, err := t.GetString()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(s, 10, bits)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, fmt.Errorf("%w: %q does not fit %d bits", ErrOutOfRange, s, bits)
		}
		return 0, fmt.Errorf("%w: %q is not an unsigned integer", ErrSyntax, s)
	}
	return v, nil
}

// GetUint8 returns the next field parsed as an 8-bit unsigned decimal.
func (t *Tokenizer) GetUint8() (uint8, error) {
	v, err := t.getUint(8)
	return uint8(v), err
}

// GetUint16 returns the next field parsed as a 16-bit unsigned decimal.
func (t *Tokenizer) GetUint16() (uint16, error) {
	v, err := t.getUint(16)
	return uint16(v), err
}

// GetUint32 returns the next field parsed as a 32-bit unsigned decimal.
func (t *Tokenizer) GetUint32() (uint32, error) {
	v, err := t.getUint(32)
	return uint32(v), err
}
