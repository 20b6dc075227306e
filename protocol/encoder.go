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
	"io"
)

// Encoder writes the binary serialization of chain objects. The first write
// error is kept and all following writes are no-ops.
type Encoder struct {
	w   io.Writer
	err error
	buf [binary.MaxVarintLen64]byte
}

// BinaryMarshaler is implemented by everything that has a wire encoding.
type BinaryMarshaler interface {
	MarshalBinary(enc *Encoder)
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Err returns the first error encountered.
func (enc *Encoder) Err() error {
	return enc.err
}

func (enc *Encoder) write(data []byte) {
	if enc.err != nil {
		return
	}
	_, enc.err = enc.w.Write(data)
}

func (enc *Encoder) Uvarint(v uint64) {
	n := binary.PutUvarint(enc.buf[:], v)
	enc.write(enc.buf[:n])
}

func (enc *Encoder) Uint8(v uint8) {
	enc.write([]byte{v})
}

func (enc *Encoder) Uint16(v uint16) {
	binary.LittleEndian.PutUint16(enc.buf[:2], v)
	enc.write(enc.buf[:2])
}

func (enc *Encoder) Int16(v int16) {
	enc.Uint16(uint16(v))
}

func (enc *Encoder) Uint32(v uint32) {
	binary.LittleEndian.PutUint32(enc.buf[:4], v)
	enc.write(enc.buf[:4])
}

func (enc *Encoder) Uint64(v uint64) {
	binary.LittleEndian.PutUint64(enc.buf[:8], v)
	enc.write(enc.buf[:8])
}

func (enc *Encoder) Int64(v int64) {
	enc.Uint64(uint64(v))
}

func (enc *Encoder) Bool(v bool) {
	if v {
		enc.Uint8(1)
		return
	}
	enc.Uint8(0)
}

// String writes the varint length followed by the bytes of s.
func (enc *Encoder) String(s string) {
	enc.Uvarint(uint64(len(s)))
	enc.write([]byte(s))
}

// Bytes writes the varint length followed by data.
func (enc *Encoder) Bytes(data []byte) {
	enc.Uvarint(uint64(len(data)))
	enc.write(data)
}

// Raw writes data without a length prefix.
func (enc *Encoder) Raw(data []byte) {
	enc.write(data)
}

// Strings writes an array of strings.
func (enc *Encoder) Strings(ss []string) {
	enc.Uvarint(uint64(len(ss)))
	for _, s := range ss {
		enc.String(s)
	}
}

// Optional writes the presence flag of v and then v itself when present.
func (enc *Encoder) Optional(v BinaryMarshaler, present bool) {
	enc.Bool(present)
	if present {
		v.MarshalBinary(enc)
	}
}

// Encode writes v.
func (enc *Encoder) Encode(v BinaryMarshaler) {
	v.MarshalBinary(enc)
}

func (enc *Encoder) fail(err error) {
	if enc.err == nil {
		enc.err = err
	}
}
