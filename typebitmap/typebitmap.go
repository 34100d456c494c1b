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

// Package typebitmap implements the windowed type bitmap that NSEC3 and
// structurally identical records use to encode a set of resource record
// type codes. The 16-bit type space is split into 256 windows of 256
// codes; each window present in the set is written as its number, a byte
// count, and that many bitmap bytes with the most significant bit standing
// for the lowest code.
package typebitmap

import (
	"errors"
	"fmt"
	"slices"
)

// Decode errors, distinguishable with errors.Is.
var (
	// ErrTruncated reports a window header cut short by the end of input.
	ErrTruncated = errors.New("truncated type bitmap")
	// ErrWindowOrder reports windows out of ascending order, duplicates
	// included.
	ErrWindowOrder = errors.New("type bitmap window out of order")
	// ErrWindowLength reports a window byte count of zero, above 32, or
	// past the end of input.
	ErrWindowLength = errors.New("invalid type bitmap window length")
)

// maxWindowBytes is the bitmap size covering all 256 codes of one window.
const maxWindowBytes = 32

// Normalize returns types sorted ascending with duplicates collapsed. The
// input slice is not modified.
func Normalize(types []uint16) []uint16 {
	if len(types) == 0 {
		return nil
	}
	out := slices.Clone(types)
	slices.Sort(out)
	return slices.Compact(out)
}

// Encode writes the windowed bitmap for the given type codes. The input
// need not be sorted or free of duplicates; it is normalized first, so the
// encoding is canonical for any order. An empty set encodes to zero bytes.
func Encode(types []uint16) []byte {
	types = Normalize(types)
	if len(types) == 0 {
		return nil
	}

	var out []byte
	var bitmap [maxWindowBytes]byte
	window := -1
	used := 0

	flush := func() {
		out = append(out, byte(window), byte(used))
		out = append(out, bitmap[:used]...)
	}

	for _, t := range types {
		w := int(t >> 8)
		if w != window {
			if window >= 0 {
				flush()
			}
			window = w
			bitmap = [maxWindowBytes]byte{}
			used = 0
		}
		idx := int(t&0xFF) / 8
		bitmap[idx] |= 1 << (7 - t%8)
		// types are ascending, the last one fixes the trimmed length
		used = idx + 1
	}
	flush()
	return out
}

// Decode reads windowed bitmap bytes back into an ascending list of type
// codes. It is strict: windows must be complete, ascending and unique, and
// each byte count must be in [1, 32] and covered by the remaining input.
// Empty input yields an empty list.
func Decode(data []byte) ([]uint16, error) {
	types := []uint16{}
	lastWindow := -1
	for off := 0; off < len(data); {
		if len(data)-off < 2 {
			return nil, fmt.Errorf("%w: %d trailing bytes", ErrTruncated, len(data)-off)
		}
		window := int(data[off])
		length := int(data[off+1])
		off += 2
		if window <= lastWindow {
			return nil, fmt.Errorf("%w: window %d after %d", ErrWindowOrder, window, lastWindow)
		}
		if length == 0 || length > maxWindowBytes {
			return nil, fmt.Errorf("%w: window %d declares %d bytes", ErrWindowLength, window, length)
		}
		if length > len(data)-off {
			return nil, fmt.Errorf("%w: window %d declares %d bytes, %d left", ErrWindowLength, window, length, len(data)-off)
		}
		for i, b := range data[off : off+length] {
			for bit := 0; bit < 8; bit++ {
				if b&(0x80>>bit) != 0 {
					types = append(types, uint16(window<<8|i*8|bit))
				}
			}
		}
		off += length
		lastWindow = window
	}
	return types, nil
}
