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

package zonetext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, tk *Tokenizer) []Token {
	t.Helper()
	var out []Token
	for {
		tok, err := tk.Get()
		require.NoError(t, err)
		out = append(out, tok)
		if tok.Type == EOF {
			return out
		}
	}
}

func TestGet(t *testing.T) {
	toks := collect(t, New("1 1 12\taabbccdd"))
	require.Len(t, toks, 5)
	for i, want := range []string{"1", "1", "12", "aabbccdd"} {
		assert.Equal(t, String, toks[i].Type)
		assert.Equal(t, want, toks[i].Value)
	}
	assert.Equal(t, EOF, toks[4].Type)
}

func TestEOLOutsideParens(t *testing.T) {
	toks := collect(t, New("a\nb"))
	require.Len(t, toks, 4)
	assert.Equal(t, "a", toks[0].Value)
	assert.Equal(t, EOL, toks[1].Type)
	assert.True(t, toks[1].IsEOL())
	assert.Equal(t, "b", toks[2].Value)
	assert.True(t, toks[3].IsEOL())
}

func TestParenGrouping(t *testing.T) {
	toks := collect(t, New("1 (\n2\n3 )\n4"))
	require.Len(t, toks, 6)
	assert.Equal(t, "1", toks[0].Value)
	assert.Equal(t, "2", toks[1].Value)
	assert.Equal(t, "3", toks[2].Value)
	assert.Equal(t, EOL, toks[3].Type)
	assert.Equal(t, "4", toks[4].Value)
	assert.Equal(t, EOF, toks[5].Type)
}

func TestParenErrors(t *testing.T) {
	_, err := New(")").Get()
	assert.ErrorIs(t, err, ErrSyntax)

	tk := New("( a")
	tok, err := tk.Get()
	require.NoError(t, err)
	assert.Equal(t, "a", tok.Value)
	_, err = tk.Get()
	assert.ErrorIs(t, err, ErrSyntax)
}

func TestComment(t *testing.T) {
	tk := New("field ; trailing words\nnext")
	tok, err := tk.Get()
	require.NoError(t, err)
	assert.Equal(t, "field", tok.Value)

	tok, err = tk.Get()
	require.NoError(t, err)
	assert.Equal(t, Comment, tok.Type)
	assert.Equal(t, "trailing words", tok.Value)

	tok, err = tk.Get()
	require.NoError(t, err)
	assert.Equal(t, EOL, tok.Type)

	tok, err = tk.Get()
	require.NoError(t, err)
	assert.Equal(t, "next", tok.Value)
}

func TestUnget(t *testing.T) {
	tk := New("a b")
	tok, err := tk.Get()
	require.NoError(t, err)
	assert.Equal(t, "a", tok.Value)

	tk.Unget()
	tok, err = tk.Get()
	require.NoError(t, err)
	assert.Equal(t, "a", tok.Value)

	tok, err = tk.Get()
	require.NoError(t, err)
	assert.Equal(t, "b", tok.Value)

	tk.Unget()
	assert.Panics(t, func() { tk.Unget() })
}

func TestGetString(t *testing.T) {
	tk := New("abc\n")
	s, err := tk.GetString()
	require.NoError(t, err)
	assert.Equal(t, "abc", s)

	_, err = tk.GetString()
	assert.ErrorIs(t, err, ErrSyntax)
}

func TestNumericGetters(t *testing.T) {
	tk := New("0 255 65535 16777215")
	v8, err := tk.GetUint8()
	require.NoError(t, err)
	assert.Equal(t, uint8(0), v8)
	v8, err = tk.GetUint8()
	require.NoError(t, err)
	assert.Equal(t, uint8(255), v8)
	v16, err := tk.GetUint16()
	require.NoError(t, err)
	assert.Equal(t, uint16(65535), v16)
	v32, err := tk.GetUint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(16777215), v32)
}

func TestNumericGetterErrors(t *testing.T) {
	_, err := New("256").GetUint8()
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = New("65536").GetUint16()
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = New("4294967296").GetUint32()
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = New("twelve").GetUint32()
	assert.ErrorIs(t, err, ErrSyntax)

	_, err = New("-1").GetUint8()
	assert.ErrorIs(t, err, ErrSyntax)
}
