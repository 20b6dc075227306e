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
	"github.com/Steem-Tools/steemgo/keys"
)

// Memo is the wire object of an encrypted transfer memo.
type Memo struct {
	From      *keys.PublicKey
	To        *keys.PublicKey
	Nonce     uint64
	Check     uint32
	Encrypted []byte
}

func (m *Memo) MarshalBinary(enc *Encoder) {
	enc.Raw(m.From.Bytes())
	enc.Raw(m.To.Bytes())
	enc.Uint64(m.Nonce)
	enc.Uint32(m.Check)
	enc.Bytes(m.Encrypted)
}

// UnmarshalBinary decodes a Memo. Keys use the default prefix.
func (m *Memo) UnmarshalBinary(data []byte) error {
	dec := NewDecoder(data)
	from := dec.Raw(keys.PublicKeySize)
	to := dec.Raw(keys.PublicKeySize)
	m.Nonce = dec.Uint64()
	m.Check = dec.Uint32()
	m.Encrypted = dec.Bytes()
	if err := dec.Finish(); err != nil {
		return err
	}
	var err error
	if m.From, err = keys.PublicKeyFromBytes(from); err != nil {
		return err
	}
	if m.To, err = keys.PublicKeyFromBytes(to); err != nil {
		return err
	}
	return nil
}
