// MIT License
//
// Copyright 2018 Canonical Ledgers, LLC
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to
// deal in the Software without restriction, including without limitation the
// rights to use, copy, modify, merge, publish, distribute, sublicense, and/or
// sell copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING
// FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS
// IN THE SOFTWARE.

package protocol

import (
	"encoding/binary"
	"errors"
	"io"
)

var ErrTrailingData = errors.New("trailing data")

// Decoder reads the binary encodings written by Encoder. Like Encoder, it
// keeps the first error.
type Decoder struct {
	data []byte
	err  error
}

func NewDecoder(data []byte) *Decoder {
	return &Decoder{data: data}
}

func (dec *Decoder) Err() error {
	return dec.err
}

// Finish returns Err, or ErrTrailingData if unread bytes remain.
func (dec *Decoder) Finish() error {
	if dec.err == nil && len(dec.data) > 0 {
		return ErrTrailingData
	}
	return dec.err
}

func (dec *Decoder) next(n int) []byte {
	if dec.err != nil {
		return make([]byte, n)
	}
	if n < 0 || len(dec.data) < n {
		dec.err = io.ErrUnexpectedEOF
		return make([]byte, n)
	}
	b := dec.data[:n]
	dec.data = dec.data[n:]
	return b
}

func (dec *Decoder) Uvarint() uint64 {
	if dec.err != nil {
		return 0
	}
	v, n := binary.Uvarint(dec.data)
	if n <= 0 {
		dec.err = io.ErrUnexpectedEOF
		return 0
	}
	dec.data = dec.data[n:]
	return v
}

func (dec *Decoder) Uint32() uint32 {
	return binary.LittleEndian.Uint32(dec.next(4))
}

func (dec *Decoder) Uint64() uint64 {
	return binary.LittleEndian.Uint64(dec.next(8))
}

// Raw reads exactly n bytes.
func (dec *Decoder) Raw(n int) []byte {
	return append([]byte{}, dec.next(n)...)
}

// Bytes reads a varint length prefixed byte string.
func (dec *Decoder) Bytes() []byte {
	n := dec.Uvarint()
	if n > uint64(len(dec.data)) {
		dec.err = io.ErrUnexpectedEOF
		return nil
	}
	return dec.Raw(int(n))
}
