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

// Package dnsname holds the small domain name type the rdata codecs work
// against: parsing from dotted presentation form, the canonical
// (lowercased, length-prefixed) wire form used as hash input, and label
// access. Escape sequences and name compression are out of scope.
package dnsname

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidName reports a name that violates the label or length rules.
var ErrInvalidName = errors.New("invalid domain name")

const (
	maxLabelLen = 63
	maxWireLen  = 255
)

// Name is an absolute domain name. The zero value is the root. Names are
// immutable once constructed and safe to share.
type Name struct {
	labels []string
}

// Parse converts dotted presentation form into a Name. The trailing dot is
// optional and "." is the root. Empty labels, labels over 63 octets, and
// names whose wire form exceeds 255 octets are rejected.
func Parse(s string) (Name, error) {
	if s == "" {
		return Name{}, fmt.Errorf("%w: empty string", ErrInvalidName)
	}
	if s == "." {
		return Name{}, nil
	}
	s = strings.TrimSuffix(s, ".")
	labels := strings.Split(s, ".")
	wireLen := 1
	for _, label := range labels {
		if label == "" {
			return Name{}, fmt.Errorf("%w: empty label in %q", ErrInvalidName, s)
		}
		if len(label) > maxLabelLen {
			return Name{}, fmt.Errorf("%w: label %q exceeds %d octets", ErrInvalidName, label, maxLabelLen)
		}
		wireLen += len(label) + 1
	}
	if wireLen > maxWireLen {
		return Name{}, fmt.Errorf("%w: %q exceeds %d octets", ErrInvalidName, s, maxWireLen)
	}
	return Name{labels: labels}, nil
}

// MustParse is Parse for static names; it panics on error.
func MustParse(s string) Name {
	n, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return n
}

// String renders the name absolute, with a trailing dot.
func (n Name) String() string {
	if len(n.labels) == 0 {
		return "."
	}
	return strings.Join(n.labels, ".") + "."
}

// IsRoot reports whether the name is the root.
func (n Name) IsRoot() bool {
	return len(n.labels) == 0
}

// FirstLabel returns the leftmost label as written, or "" for the root.
func (n Name) FirstLabel() string {
	if len(n.labels) == 0 {
		return ""
	}
	return n.labels[0]
}

// Canonical returns the canonical wire form: each label length-prefixed
// with ASCII uppercase folded to lowercase, terminated by the zero root
// label. This is the form hashed by NSEC3.
func (n Name) Canonical() []byte {
	out := make([]byte, 0, n.wireLen())
	for _, label := range n.labels {
		out = append(out, byte(len(label)))
		for i := 0; i < len(label); i++ {
			c := label[i]
			if 'A' <= c && c <= 'Z' {
				c += 'a' - 'A'
			}
			out = append(out, c)
		}
	}
	return append(out, 0)
}

func (n Name) wireLen() int {
	l := 1
	for _, label := range n.labels {
		l += len(label) + 1
	}
	return l
}

// Prepend returns the child name label.n, validating the combined name.
func (n Name) Prepend(label string) (Name, error) {
	if label == "" {
		return Name{}, fmt.Errorf("%w: empty label", ErrInvalidName)
	}
	if strings.Contains(label, ".") {
		return Name{}, fmt.Errorf("%w: label %q contains a dot", ErrInvalidName, label)
	}
	if len(label) > maxLabelLen {
		return Name{}, fmt.Errorf("%w: label %q exceeds %d octets", ErrInvalidName, label, maxLabelLen)
	}
	if n.wireLen()+len(label)+1 > maxWireLen {
		return Name{}, fmt.Errorf("%w: %q.%s exceeds %d octets", ErrInvalidName, label, n, maxWireLen)
	}
	labels := make([]string, 0, len(n.labels)+1)
	labels = append(labels, label)
	labels = append(labels, n.labels...)
	return Name{labels: labels}, nil
}

// Equal compares two names label by label, ignoring ASCII case.
func (n Name) Equal(other Name) bool {
	if len(n.labels) != len(other.labels) {
		return false
	}
	for i := range n.labels {
		if !strings.EqualFold(n.labels[i], other.labels[i]) {
			return false
		}
	}
	return true
}
