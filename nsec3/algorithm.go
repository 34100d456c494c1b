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
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// HashAlgorithm identifies the digest an NSEC3 record was built with.
// SHA-1 is the only algorithm the registry defines; records carrying any
// other value fail validation rather than being guessed at.
type HashAlgorithm uint8

// SHA1 is hash algorithm 1.
const SHA1 HashAlgorithm = 1

// Supported reports whether the algorithm can be hashed and coded.
func (a HashAlgorithm) Supported() bool {
	return a == SHA1
}

// HashLength returns the digest size in bytes, or 0 for an unsupported
// algorithm.
func (a HashAlgorithm) HashLength() int {
	if a == SHA1 {
		return sha1.Size
	}
	return 0
}

// String returns the mnemonic for known algorithms and the decimal code
// otherwise.
func (a HashAlgorithm) String() string {
	if a == SHA1 {
		return "SHA-1"
	}
	return strconv.Itoa(int(a))
}

// ParseHashAlgorithm reads a presentation-form hash algorithm field:
// either a decimal code or a case-insensitive mnemonic. Unknown mnemonics
// are an error; unknown numeric codes parse and fail later validation, so
// a record naming a future algorithm is rejected for the right reason.
func ParseHashAlgorithm(s string) (HashAlgorithm, error) {
	switch strings.ToUpper(s) {
	case "SHA1", "SHA-1":
		return SHA1, nil
	}
	v, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, fmt.Errorf("%w: hash algorithm %q", ErrOutOfRange, s)
		}
		return 0, fmt.Errorf("%w: hash algorithm %q", ErrUnknownMnemonic, s)
	}
	return HashAlgorithm(v), nil
}
