package keys

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/mr-tron/base58"
)

// WIFVersion is the version byte that prefixes every WIF encoded key.
const WIFVersion = 0x80

var (
	ErrInvalidLength   = errors.New("invalid length")
	ErrInvalidChecksum = errors.New("checksum error")
	ErrInvalidVersion  = errors.New("invalid version byte")
	ErrInvalidPrefix   = errors.New("invalid prefix")
)

// PrivateKey is a secp256k1 secret key.
type PrivateKey struct {
	key *secp256k1.PrivateKey
}

// NewPrivateKey parses a WIF encoded private key.
func NewPrivateKey(wif string) (*PrivateKey, error) {
	data, err := base58.Decode(wif)
	if err != nil {
		return nil, fmt.Errorf("base58: %w", err)
	}
	if len(data) != 1+32+4 {
		return nil, ErrInvalidLength
	}
	if data[0] != WIFVersion {
		return nil, ErrInvalidVersion
	}
	payload, check := data[:33], data[33:]
	if !bytes.Equal(doubleSHA256(payload)[:4], check) {
		return nil, ErrInvalidChecksum
	}
	return PrivateKeyFromBytes(payload[1:]), nil
}

// PrivateKeyFromBytes returns the PrivateKey for the 32 byte secret. Values
// larger than the curve order are reduced modulo the order.
func PrivateKeyFromBytes(secret []byte) *PrivateKey {
	return &PrivateKey{key: secp256k1.PrivKeyFromBytes(secret)}
}

// GeneratePrivateKey returns a new random PrivateKey.
func GeneratePrivateKey() (*PrivateKey, error) {
	var secret [32]byte
	for {
		if _, err := rand.Read(secret[:]); err != nil {
			return nil, err
		}
		key := PrivateKeyFromBytes(secret[:])
		if !key.key.Key.IsZero() {
			return key, nil
		}
	}
}

// Bytes returns the 32 byte secret.
func (k *PrivateKey) Bytes() []byte {
	return k.key.Serialize()
}

// String returns the WIF encoding of k.
func (k *PrivateKey) String() string {
	payload := make([]byte, 0, 1+32+4)
	payload = append(payload, WIFVersion)
	payload = append(payload, k.Bytes()...)
	payload = append(payload, doubleSHA256(payload)[:4]...)
	return base58.Encode(payload)
}

// PublicKey returns the PublicKey of k using the default prefix.
func (k *PrivateKey) PublicKey() *PublicKey {
	return &PublicKey{key: k.key.PubKey(), Prefix: DefaultPrefix}
}

// SharedSecret returns the x coordinate of the ECDH point of k and pub.
func (k *PrivateKey) SharedSecret(pub *PublicKey) []byte {
	return secp256k1.GenerateSharedSecret(k.key, pub.key)
}

// MarshalText implements encoding.TextMarshaler.
func (k *PrivateKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *PrivateKey) UnmarshalText(text []byte) error {
	key, err := NewPrivateKey(string(text))
	if err != nil {
		return err
	}
	*k = *key
	return nil
}

func doubleSHA256(data []byte) []byte {
	first := sha256.Sum256(data)
	second := sha256.Sum256(first[:])
	return second[:]
}
