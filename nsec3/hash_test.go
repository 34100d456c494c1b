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
	"crypto/sha1"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zoneforge/nsec3data/dnsname"
)

// Hashed owner names of the RFC 5155 Appendix A example zone: SHA-1,
// 12 iterations, salt aabbccdd.
func TestHashName(t *testing.T) {
	tests := []struct {
		name string
		hash string
	}{
		{"example", "0p9mhaveqvm6t7vbl5lop2u3t2rp3tom"},
		{"a.example", "35mthgpgcu1qg68fab165klnsnk3dpvl"},
		{"ai.example", "gjeqe526plbf1g8mklp59enfd789njgi"},
		{"ns1.example", "2t7b4g4vsa5smi47k61mv5bv1a22bojr"},
		{"ns2.example", "q04jkcevqvmu85r014c7dkba38o0ji5r"},
		{"w.example", "k8udemvp1j2f7eg6jebps17vp3n8i58h"},
		{"*.w.example", "r53bq7cc2uvmubfu5ocmm6pers9tk9en"},
		{"x.w.example", "b4um86eghhds6nea196smvmlo4ors995"},
		{"y.w.example", "ji6neoaepv8b5o6k4ev33abha8ht9fgc"},
		{"x.y.w.example", "2vptu5timamqttgl4luu9kg21e0aor3s"},
		{"xx.example", "t644ebqk9bibcna874givr6joj62mlhv"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := HashName(dnsname.MustParse(tc.name), SHA1, 12, testSalt)
			require.NoError(t, err)
			assert.Equal(t, tc.hash, HashedOwnerLabel(got))
		})
	}
}

func TestHashNameIterations(t *testing.T) {
	name := dnsname.MustParse("example.com")
	salt := []byte{0x01, 0x02}

	// zero iterations is a single application over the canonical form
	h0 := sha1.Sum(append(append([]byte{}, name.Canonical()...), salt...))
	got, err := HashName(name, SHA1, 0, salt)
	require.NoError(t, err)
	assert.Equal(t, h0[:], got)

	// each iteration re-digests the previous digest with the salt
	h1 := sha1.Sum(append(append([]byte{}, h0[:]...), salt...))
	got, err = HashName(name, SHA1, 1, salt)
	require.NoError(t, err)
	assert.Equal(t, h1[:], got)
}

func TestHashNameSaltAndCase(t *testing.T) {
	name := dnsname.MustParse("example.com")

	bare, err := HashName(name, SHA1, 3, nil)
	require.NoError(t, err)
	empty, err := HashName(name, SHA1, 3, []byte{})
	require.NoError(t, err)
	assert.Equal(t, bare, empty)

	// the canonical form folds case before digesting
	upper, err := HashName(dnsname.MustParse("EXAMPLE.COM"), SHA1, 3, nil)
	require.NoError(t, err)
	assert.Equal(t, bare, upper)
}

func TestHashNameUnsupported(t *testing.T) {
	_, err := HashName(dnsname.MustParse("example"), 0, 0, nil)
	assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)
	_, err = HashName(dnsname.MustParse("example"), 2, 0, nil)
	assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)
}

func TestHasher(t *testing.T) {
	h := NewHasher(8)
	name := dnsname.MustParse("a.example")

	first, err := h.HashName(name, SHA1, 12, testSalt)
	require.NoError(t, err)
	assert.Equal(t, "35mthgpgcu1qg68fab165klnsnk3dpvl", HashedOwnerLabel(first))
	assert.Equal(t, 1, h.Len())

	// a repeat is served from the cache
	again, err := h.HashName(name, SHA1, 12, testSalt)
	require.NoError(t, err)
	assert.Equal(t, first, again)
	assert.Equal(t, 1, h.Len())

	// any parameter change is a distinct entry
	_, err = h.HashName(name, SHA1, 13, testSalt)
	require.NoError(t, err)
	assert.Equal(t, 2, h.Len())
	_, err = h.HashName(name, SHA1, 12, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, h.Len())
	_, err = h.HashName(dnsname.MustParse("b.example"), SHA1, 12, testSalt)
	require.NoError(t, err)
	assert.Equal(t, 4, h.Len())

	// callers cannot poison the cached value
	first[0] ^= 0xFF
	again, err = h.HashName(name, SHA1, 12, testSalt)
	require.NoError(t, err)
	assert.Equal(t, "35mthgpgcu1qg68fab165klnsnk3dpvl", HashedOwnerLabel(again))

	// failures are reported, not cached
	_, err = h.HashName(name, 2, 0, nil)
	assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)
	assert.Equal(t, 4, h.Len())
}

func TestHasherDefaultSize(t *testing.T) {
	h := NewHasher(0)
	_, err := h.HashName(dnsname.MustParse("example"), SHA1, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, h.Len())
}
