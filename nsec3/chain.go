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
	"bytes"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/golang/glog"

	"github.com/zoneforge/nsec3data/base32"
	"github.com/zoneforge/nsec3data/dnsname"
)

// HashedOwnerLabel returns the zone file label for a hashed owner,
// lowercase and unpadded.
func HashedOwnerLabel(hash []byte) string {
	return strings.ToLower(base32.DNS.WithPadding(false).EncodeToString(hash))
}

// ChainParams carries the zone-wide parameters an NSEC3 chain is built
// with.
type ChainParams struct {
	Zone       dnsname.Name
	Algorithm  HashAlgorithm
	Iterations uint32
	Salt       []byte
	OptOut     bool
	// Types is the type bitmap stamped on every emitted record.
	Types []uint16
	// Annotate keeps each owner's source name as a text comment.
	Annotate bool
}

// Param returns the NSEC3PARAM record advertising the chain parameters at
// the zone apex. RFC 5155 reserves the param flags, so they are zero, and
// its iteration field is 16 bits on the wire, so wider chain iteration
// counts cannot be advertised.
func (cp ChainParams) Param() (*ParamRecord, error) {
	if cp.Iterations > math.MaxUint16 {
		return nil, fmt.Errorf("%w: %d iterations do not fit NSEC3PARAM", ErrOutOfRange, cp.Iterations)
	}
	return NewParam(cp.Algorithm, 0, uint16(cp.Iterations), cp.Salt)
}

// BuildChain hashes every name, drops duplicate hashed owners, sorts by
// hash, and links each record to its successor with the last wrapping
// around to the first. A nil hasher computes every hash directly.
func BuildChain(params ChainParams, names []dnsname.Name, hasher *Hasher) ([]*Record, error) {
	if len(names) == 0 {
		return nil, errors.New("no names to chain")
	}
	type entry struct {
		hash   []byte
		source dnsname.Name
	}
	entries := make([]entry, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		var hash []byte
		var err error
		if hasher != nil {
			hash, err = hasher.HashName(name, params.Algorithm, params.Iterations, params.Salt)
		} else {
			hash, err = HashName(name, params.Algorithm, params.Iterations, params.Salt)
		}
		if err != nil {
			return nil, fmt.Errorf("hashing %s: %w", name, err)
		}
		if seen[string(hash)] {
			glog.Infof("Dropping duplicate hashed owner for %s", name)
			continue
		}
		seen[string(hash)] = true
		entries = append(entries, entry{hash: hash, source: name})
	}
	slices.SortFunc(entries, func(a, b entry) int {
		return bytes.Compare(a.hash, b.hash)
	})

	records := make([]*Record, 0, len(entries))
	for i, e := range entries {
		owner, err := params.Zone.Prepend(HashedOwnerLabel(e.hash))
		if err != nil {
			return nil, fmt.Errorf("owner for %s: %w", e.source, err)
		}
		b := NewBuilder(owner, params.Algorithm, params.Iterations, params.Salt).
			OptOut(params.OptOut).
			Types(params.Types...).
			NextHashedOwner(entries[(i+1)%len(entries)].hash)
		if params.Annotate {
			b = b.Comment(e.source.String())
		}
		rec, err := b.Build()
		if err != nil {
			return nil, fmt.Errorf("record for %s: %w", e.source, err)
		}
		records = append(records, rec)
	}
	return records, nil
}
