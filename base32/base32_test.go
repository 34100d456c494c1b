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

package base32

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeToString(t *testing.T) {
	tests := []struct {
		in  []byte
		out string
	}{
		{[]byte{}, ""},
		{[]byte{0}, "00======"},
		{[]byte{0, 0}, "0000===="},
		{[]byte{0, 0, 1}, "00002==="},
		{[]byte{0xFC, 0, 0}, "VG000==="},
		{[]byte{0xFF, 0xFF, 0xFF}, "VVVVU==="},
		{[]byte{1, 2, 3, 4, 5, 6, 7, 8, 9}, "041061050O3GG28="},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.out, DNS.EncodeToString(tc.in), "encoding % x", tc.in)
	}
}

func TestEncodeToStringNoPadding(t *testing.T) {
	enc := DNS.WithPadding(false)
	tests := []struct {
		in  []byte
		out string
	}{
		{[]byte{}, ""},
		{[]byte{0}, "00"},
		{[]byte{0, 0}, "0000"},
		{[]byte{0, 0, 1}, "00002"},
		{[]byte{1, 2, 3, 4, 5, 6, 7, 8, 9}, "041061050O3GG28"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.out, enc.EncodeToString(tc.in), "encoding % x", tc.in)
	}
}

func TestRFC3548Encoding(t *testing.T) {
	// RFC 4648 section 10 vectors
	tests := []struct {
		in  string
		out string
	}{
		{"", ""},
		{"f", "MY======"},
		{"fo", "MZXQ===="},
		{"foo", "MZXW6==="},
		{"foob", "MZXW6YQ="},
		{"fooba", "MZXW6YTB"},
		{"foobar", "MZXW6YTBOI======"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.out, RFC3548.EncodeToString([]byte(tc.in)), "encoding %q", tc.in)
		got, err := RFC3548.DecodeString(tc.out)
		require.NoError(t, err, "decoding %q", tc.out)
		assert.Equal(t, []byte(tc.in), got)
	}
}

func TestDecodeString(t *testing.T) {
	tests := []struct {
		name string
		in   string
		out  []byte
	}{
		{"empty", "", []byte{}},
		{"unpadded", "AC", []byte{0x53}},
		{"padded", "AC======", []byte{0x53}},
		{"lowercase", "ac", []byte{0x53}},
		{"mixed case", "aC", []byte{0x53}},
		{"whitespace", " A\tC\n", []byte{0x53}},
		{"full block", "041061050O3GG28=", []byte{1, 2, 3, 4, 5, 6, 7, 8, 9}},
		{"full block unpadded", "041061050O3GG28", []byte{1, 2, 3, 4, 5, 6, 7, 8, 9}},
		{"all zero", "00======", []byte{0}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DNS.DecodeString(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.out, got)
		})
	}
}

func TestDecodeStringRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		in   string
		err  error
	}{
		{"five residual symbols", "000", ErrMalformed},
		{"six residual symbols", "000000", ErrMalformed},
		{"one residual symbol", "0", ErrMalformed},
		{"character outside alphabet", "WX", ErrInvalidCharacter},
		{"padding in partial block", "00=", ErrMalformed},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DNS.DecodeString(tc.in)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.err)
			assert.Nil(t, got)
		})
	}
}

func TestRoundTrip(t *testing.T) {
	// deterministic corpus covering every partial block length
	var corpus [][]byte
	for n := 0; n <= 16; n++ {
		b := make([]byte, n)
		for i := range b {
			b[i] = byte(i*41 + n*7)
		}
		corpus = append(corpus, b)
	}
	corpus = append(corpus, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF})

	for _, enc := range []*Encoding{DNS, RFC3548} {
		for _, b := range corpus {
			padded, err := enc.DecodeString(enc.EncodeToString(b))
			require.NoError(t, err)
			assert.Equal(t, b, padded)

			bare, err := enc.DecodeString(enc.WithPadding(false).EncodeToString(b))
			require.NoError(t, err)
			assert.Equal(t, b, bare)
		}
	}
}

func TestFormatString(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9} // encodes to 16 characters
	tests := []struct {
		name       string
		lineLength int
		prefix     string
		addClose   bool
		out        string
	}{
		{"width 7", 7, "", false, "0410610\n50O3GG2\n8="},
		{"width 6", 6, "", false, "041061\n050O3G\nG28="},
		{"prefix and close", 10, "!_", true, "!_041061050O\n!_3GG28= )"},
		{"width beyond text", 64, "", false, "041061050O3GG28="},
		{"zero width", 0, "", false, "041061050O3GG28="},
		{"negative width", -4, "> ", false, "> 041061050O3GG28="},
		{"exact width", 16, "", true, "041061050O3GG28= )"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := DNS.FormatString(data, tc.lineLength, tc.prefix, tc.addClose)
			assert.Equal(t, tc.out, got)
		})
	}

	assert.Equal(t, "", DNS.FormatString(nil, 10, "!_", true))
}

func TestWithPadding(t *testing.T) {
	assert.Same(t, DNS, DNS.WithPadding(true))
	bare := DNS.WithPadding(false)
	assert.NotSame(t, DNS, bare)
	assert.Same(t, bare, bare.WithPadding(false))
	// derived encoding decodes exactly like the original
	got, err := bare.DecodeString("AC======")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x53}, got)
}

func TestEncodedLen(t *testing.T) {
	bare := DNS.WithPadding(false)
	for n := 0; n <= 25; n++ {
		data := make([]byte, n)
		assert.Len(t, DNS.EncodeToString(data), DNS.EncodedLen(n), "padded, %d bytes", n)
		assert.Len(t, bare.EncodeToString(data), bare.EncodedLen(n), "unpadded, %d bytes", n)
	}
}
