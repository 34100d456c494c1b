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

// Package wire provides the byte cursor and sink that rdata codecs read
// from and write to. Multi-byte integers are network byte order.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrUnexpectedEnd reports a read past the end of the buffer. The cursor
// does not advance on a failed read.
var ErrUnexpectedEnd = errors.New("unexpected end of wire data")

// Reader is a cursor over an rdata byte slice. The slice is not copied;
// callers must not modify it while reading.
type Reader struct {
	data []byte
	off  int
}

// NewReader returns a Reader positioned at the start of data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.off
}

func (r *Reader) need(n int) error {
	if r.Remaining() < n {
		return fmt.Errorf("%w: need %d bytes, have %d", ErrUnexpectedEnd, n, r.Remaining())
	}
	return nil
}

// ReadU8 reads one byte.
func (r *Reader) ReadU8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.data[r.off]
	r.off++
	return v, nil
}

// ReadU16 reads a big-endian 16-bit integer.
func (r *Reader) ReadU16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint16(r.data[r.off:])
	r.off += 2
	return v, nil
}

// ReadBytes reads n bytes into a fresh slice.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, r.data[r.off:])
	r.off += n
	return out, nil
}

// ReadRemaining consumes and returns all unread bytes. The result is a
// fresh slice and may be empty.
func (r *Reader) ReadRemaining() []byte {
	out := make([]byte, r.Remaining())
	copy(out, r.data[r.off:])
	r.off = len(r.data)
	return out
}

// Writer accumulates rdata bytes. The zero value is ready to use. Writes
// cannot fail; the result is retrieved with Bytes.
type Writer struct {
	buf []byte
}

// WriteU8 appends one byte.
func (w *Writer) WriteU8(v uint8) {
	w.buf = append(w.buf, v)
}

// WriteU16 appends a big-endian 16-bit integer.
func (w *Writer) WriteU16(v uint16) {
	w.buf = binary.BigEndian.AppendUint16(w.buf, v)
}

// WriteBytes appends b verbatim.
func (w *Writer) WriteBytes(b []byte) {
	w.buf = append(w.buf, b...)
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return len(w.buf)
}

// Bytes returns the accumulated bytes. The slice aliases the Writer's
// internal buffer.
func (w *Writer) Bytes() []byte {
	return w.buf
}
