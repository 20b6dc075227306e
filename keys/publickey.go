package keys

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/mr-tron/base58"
	"golang.org/x/crypto/ripemd160"
)

// DefaultPrefix is the public key prefix of the main STEEM network.
const DefaultPrefix = "STM"

// PublicKeySize is the length of a compressed public key.
const PublicKeySize = 33

// PublicKey is a compressed secp256k1 public key and the network prefix used
// to encode it.
type PublicKey struct {
	key    *secp256k1.PublicKey
	Prefix string
}

// NewPublicKey parses a prefixed public key, such as
// "STM6UtYWWs3rkZGV8JA86qrgkG6tyFksgECefKE1MiH4HkLD8PFGL". The prefix is any
// leading run of upper case letters.
func NewPublicKey(s string) (*PublicKey, error) {
	i := strings.IndexFunc(s, func(r rune) bool { return r < 'A' || r > 'Z' })
	if i < 1 {
		return nil, ErrInvalidPrefix
	}
	return NewPublicKeyWithPrefix(s, s[:i])
}

// NewPublicKeyWithPrefix parses s, which must begin with prefix.
func NewPublicKeyWithPrefix(s, prefix string) (*PublicKey, error) {
	if !strings.HasPrefix(s, prefix) {
		return nil, ErrInvalidPrefix
	}
	data, err := base58.Decode(s[len(prefix):])
	if err != nil {
		return nil, fmt.Errorf("base58: %w", err)
	}
	if len(data) != PublicKeySize+4 {
		return nil, ErrInvalidLength
	}
	raw, check := data[:PublicKeySize], data[PublicKeySize:]
	if !bytes.Equal(ripemd160Sum(raw)[:4], check) {
		return nil, ErrInvalidChecksum
	}
	pub, err := PublicKeyFromBytes(raw)
	if err != nil {
		return nil, err
	}
	pub.Prefix = prefix
	return pub, nil
}

// PublicKeyFromBytes parses a compressed or uncompressed public key. The
// returned key uses DefaultPrefix.
func PublicKeyFromBytes(raw []byte) (*PublicKey, error) {
	key, err := secp256k1.ParsePubKey(raw)
	if err != nil {
		return nil, err
	}
	return &PublicKey{key: key, Prefix: DefaultPrefix}, nil
}

// Bytes returns the 33 byte compressed encoding of k.
func (k *PublicKey) Bytes() []byte {
	return k.key.SerializeCompressed()
}

// String returns the prefixed base58 encoding of k.
func (k *PublicKey) String() string {
	raw := k.Bytes()
	data := make([]byte, 0, PublicKeySize+4)
	data = append(data, raw...)
	data = append(data, ripemd160Sum(raw)[:4]...)
	prefix := k.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return prefix + base58.Encode(data)
}

// WithPrefix returns a copy of k that encodes with prefix.
func (k *PublicKey) WithPrefix(prefix string) *PublicKey {
	return &PublicKey{key: k.key, Prefix: prefix}
}

// Equal reports whether k and o are the same point, ignoring prefixes.
func (k *PublicKey) Equal(o *PublicKey) bool {
	if k == nil || o == nil {
		return k == o
	}
	return k.key.IsEqual(o.key)
}

// Less orders public keys by their compressed encoding.
func (k *PublicKey) Less(o *PublicKey) bool {
	return bytes.Compare(k.Bytes(), o.Bytes()) < 0
}

// Address returns the Address derived from k.
func (k *PublicKey) Address() Address {
	return NewAddressFromPublicKey(k)
}

// MarshalJSON encodes k as a JSON string.
func (k *PublicKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON decodes a JSON string into k.
func (k *PublicKey) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%T: expected JSON string", k)
	}
	pub, err := NewPublicKey(s)
	if err != nil {
		return fmt.Errorf("%T: %w", k, err)
	}
	*k = *pub
	return nil
}

func ripemd160Sum(data []byte) []byte {
	h := ripemd160.New()
	h.Write(data)
	return h.Sum(nil)
}
