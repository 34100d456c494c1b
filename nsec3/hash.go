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
	"fmt"
	"slices"

	lru "github.com/hashicorp/golang-lru"

	"github.com/zoneforge/nsec3data/dnsname"
)

// HashName computes the hashed owner of name: iterations plus one
// applications of digest(x concat salt), starting from the canonical wire
// form of the name. A nil and an empty salt hash the same.
func HashName(name dnsname.Name, algorithm HashAlgorithm, iterations uint32, salt []byte) ([]byte, error) {
	if !algorithm.Supported() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, algorithm)
	}
	h := sha1.New()
	w := name.Canonical()
	digest := make([]byte, 0, sha1.Size)
	for i := uint32(0); ; i++ {
		h.Reset()
		h.Write(w)
		h.Write(salt)
		digest = h.Sum(digest[:0])
		if i == iterations {
			break
		}
		w = digest
	}
	return digest, nil
}

const defaultHasherSize = 4096

// Hasher memoizes HashName behind a fixed-size LRU cache. Chain builds
// hash the same names with the same parameters over and over; the cache
// turns the repeat computations into lookups. Safe for concurrent use.
type Hasher struct {
	cache *lru.Cache
}

// NewHasher returns a Hasher keeping up to size hashed names, or a
// default size when size <= 0.
func NewHasher(size int) *Hasher {
	if size <= 0 {
		size = defaultHasherSize
	}
	cache, err := lru.New(size)
	if err != nil {
		// lru.New fails only on a non-positive size.
		panic(err)
	}
	return &Hasher{cache: cache}
}

// HashName is the memoizing form of the package-level HashName.
func (h *Hasher) HashName(name dnsname.Name, algorithm HashAlgorithm, iterations uint32, salt []byte) ([]byte, error) {
	key := fmt.Sprintf("%.3d%.8d%x.%s", algorithm, iterations, salt, name.Canonical())
	if v, ok := h.cache.Get(key); ok {
		return slices.Clone(v.([]byte)), nil
	}
	digest, err := HashName(name, algorithm, iterations, salt)
	if err != nil {
		return nil, err
	}
	h.cache.Add(key, digest)
	return slices.Clone(digest), nil
}

// Len reports how many hashed names the cache currently holds.
func (h *Hasher) Len() int {
	return h.cache.Len()
}
