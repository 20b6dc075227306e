package keys

import (
	"bytes"
	"crypto/sha512"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
)

// Address is the 20 byte ripemd160(sha512(pubkey)) digest of a public key.
// Addresses are not used by operations but are printed by wallets.
type Address struct {
	Hash   [20]byte
	Prefix string
}

// NewAddressFromPublicKey derives the Address of pub.
func NewAddressFromPublicKey(pub *PublicKey) Address {
	digest := sha512.Sum512(pub.Bytes())
	var adr Address
	copy(adr.Hash[:], ripemd160Sum(digest[:]))
	adr.Prefix = pub.Prefix
	return adr
}

// NewAddress parses an encoded address with the given prefix.
func NewAddress(s, prefix string) (Address, error) {
	var adr Address
	if !strings.HasPrefix(s, prefix) {
		return adr, ErrInvalidPrefix
	}
	data, err := base58.Decode(s[len(prefix):])
	if err != nil {
		return adr, fmt.Errorf("base58: %w", err)
	}
	if len(data) != len(adr.Hash)+4 {
		return adr, ErrInvalidLength
	}
	if !bytes.Equal(ripemd160Sum(data[:20])[:4], data[20:]) {
		return adr, ErrInvalidChecksum
	}
	copy(adr.Hash[:], data)
	adr.Prefix = prefix
	return adr, nil
}

func (adr Address) String() string {
	data := make([]byte, 0, 24)
	data = append(data, adr.Hash[:]...)
	data = append(data, ripemd160Sum(adr.Hash[:])[:4]...)
	prefix := adr.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return prefix + base58.Encode(data)
}
