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
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Steem-Tools/steemgo/keys"
)

// Extensions are always empty.
type Extensions []json.RawMessage

func (e Extensions) MarshalJSON() ([]byte, error) {
	if e == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]json.RawMessage(e))
}

// Transaction is a signed list of operations.
type Transaction struct {
	RefBlockNum    uint16              `json:"ref_block_num"`
	RefBlockPrefix uint32              `json:"ref_block_prefix"`
	Expiration     Time                `json:"expiration"`
	Operations     []OperationEnvelope `json:"operations"`
	Extensions     Extensions          `json:"extensions"`
	Signatures     StringList          `json:"signatures"`
}

// NewTransaction returns an unsigned Transaction of ops.
func NewTransaction(ops ...Operation) *Transaction {
	return &Transaction{Operations: Envelopes(ops...)}
}

// AppendOps adds ops to tx.
func (tx *Transaction) AppendOps(ops ...Operation) {
	tx.Operations = append(tx.Operations, Envelopes(ops...)...)
}

// SetExpiration sets the expiration to now plus d.
func (tx *Transaction) SetExpiration(now time.Time, d time.Duration) {
	tx.Expiration = NewTime(now.Add(d))
}

// MarshalBinary writes everything except the signatures.
func (tx *Transaction) MarshalBinary(enc *Encoder) {
	enc.Uint16(tx.RefBlockNum)
	enc.Uint32(tx.RefBlockPrefix)
	tx.Expiration.MarshalBinary(enc)
	enc.Uvarint(uint64(len(tx.Operations)))
	for _, op := range tx.Operations {
		op.MarshalBinary(enc)
	}
	// Extensions are never populated.
	enc.Uvarint(0)
}

// Bytes returns the serialization used for digests.
func (tx *Transaction) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	tx.MarshalBinary(enc)
	if err := enc.Err(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SignedBytes returns the serialization including the signatures.
func (tx *Transaction) SignedBytes() ([]byte, error) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	tx.MarshalBinary(enc)
	enc.Uvarint(uint64(len(tx.Signatures)))
	for _, sig := range tx.Signatures {
		data, err := hex.DecodeString(sig)
		if err != nil {
			return nil, fmt.Errorf("signature: %w", err)
		}
		enc.Raw(data)
	}
	if err := enc.Err(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Digest returns sha256(chain id ‖ tx bytes).
func (tx *Transaction) Digest(chain Chain) ([]byte, error) {
	data, err := tx.Bytes()
	if err != nil {
		return nil, err
	}
	h := sha256.New()
	h.Write(chain.ID[:])
	h.Write(data)
	return h.Sum(nil), nil
}

// ID returns the transaction id: the first 20 bytes of sha256(tx bytes) in
// hex.
func (tx *Transaction) ID() (string, error) {
	data, err := tx.Bytes()
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:20]), nil
}

// Sign appends a signature from each distinct key.
func (tx *Transaction) Sign(chain Chain, privs ...*keys.PrivateKey) error {
	digest, err := tx.Digest(chain)
	if err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(privs))
	for _, priv := range privs {
		id := string(priv.PublicKey().Bytes())
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		sig, err := priv.SignCompact(digest)
		if err != nil {
			return err
		}
		tx.Signatures = append(tx.Signatures, hex.EncodeToString(sig))
	}
	return nil
}

// RecoverSigners returns the public keys of all signatures, using the
// prefix of chain.
func (tx *Transaction) RecoverSigners(chain Chain) ([]*keys.PublicKey, error) {
	digest, err := tx.Digest(chain)
	if err != nil {
		return nil, err
	}
	pubs := make([]*keys.PublicKey, 0, len(tx.Signatures))
	for _, s := range tx.Signatures {
		sig, err := hex.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("signature: %w", err)
		}
		pub, err := keys.RecoverCompact(sig, digest)
		if err != nil {
			return nil, err
		}
		pubs = append(pubs, pub.WithPrefix(chain.Prefix))
	}
	return pubs, nil
}

// Verify reports whether every key in pubs signed tx.
func (tx *Transaction) Verify(chain Chain, pubs ...*keys.PublicKey) (bool, error) {
	signers, err := tx.RecoverSigners(chain)
	if err != nil {
		return false, err
	}
	for _, pub := range pubs {
		found := false
		for _, signer := range signers {
			if signer.Equal(pub) {
				found = true
				break
			}
		}
		if !found {
			return false, nil
		}
	}
	return true, nil
}
