// Package memo encrypts and decrypts transfer memos.
//
// An encrypted memo is "#" followed by the base58 encoding of the memo wire
// object. The cipher key is derived from the ECDH shared secret of the
// sender and recipient memo keys and a nonce.
package memo

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/Steem-Tools/steemgo/keys"
	"github.com/Steem-Tools/steemgo/protocol"
	"github.com/mr-tron/base58"
)

var (
	ErrNotEncrypted = errors.New("memo is not encrypted")
	ErrChecksum     = errors.New("memo checksum mismatch")
	ErrWrongKey     = errors.New("private key does not belong to memo")
)

// RandomNonce returns a random uint64.
func RandomNonce() (uint64, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

// encryptionKey returns sha512(le64(nonce) ‖ sha512(shared x)).
func encryptionKey(priv *keys.PrivateKey, pub *keys.PublicKey,
	nonce uint64) []byte {
	secret := sha512.Sum512(priv.SharedSecret(pub))
	var buf [8 + sha512.Size]byte
	binary.LittleEndian.PutUint64(buf[:8], nonce)
	copy(buf[8:], secret[:])
	ek := sha512.Sum512(buf[:])
	return ek[:]
}

func checksum(ek []byte) uint32 {
	sum := sha256.Sum256(ek)
	return binary.LittleEndian.Uint32(sum[:4])
}

// Encode encrypts message from the owner of priv to pub.
func Encode(priv *keys.PrivateKey, pub *keys.PublicKey,
	nonce uint64, message string) (string, error) {
	ek := encryptionKey(priv, pub, nonce)
	block, err := aes.NewCipher(ek[:32])
	if err != nil {
		return "", err
	}
	plain := pad([]byte(message))
	encrypted := make([]byte, len(plain))
	cipher.NewCBCEncrypter(block, ek[32:48]).CryptBlocks(encrypted, plain)

	m := protocol.Memo{
		From:      priv.PublicKey(),
		To:        pub,
		Nonce:     nonce,
		Check:     checksum(ek),
		Encrypted: encrypted,
	}
	var buf bytes.Buffer
	enc := protocol.NewEncoder(&buf)
	m.MarshalBinary(enc)
	if err := enc.Err(); err != nil {
		return "", err
	}
	return "#" + base58.Encode(buf.Bytes()), nil
}

func parse(memo string) (*protocol.Memo, error) {
	if !strings.HasPrefix(memo, "#") {
		return nil, ErrNotEncrypted
	}
	data, err := base58.Decode(memo[1:])
	if err != nil {
		return nil, fmt.Errorf("base58: %w", err)
	}
	var m protocol.Memo
	if err := m.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("memo: %w", err)
	}
	return &m, nil
}

// InvolvedKeys returns the sender and recipient keys of an encrypted memo.
func InvolvedKeys(memo string) (from, to *keys.PublicKey, err error) {
	m, err := parse(memo)
	if err != nil {
		return nil, nil, err
	}
	return m.From, m.To, nil
}

// Decode decrypts memo with the private key of either party.
func Decode(priv *keys.PrivateKey, memo string) (string, error) {
	m, err := parse(memo)
	if err != nil {
		return "", err
	}
	var other *keys.PublicKey
	switch mine := priv.PublicKey(); {
	case mine.Equal(m.From):
		other = m.To
	case mine.Equal(m.To):
		other = m.From
	default:
		return "", ErrWrongKey
	}

	ek := encryptionKey(priv, other, m.Nonce)
	if checksum(ek) != m.Check {
		return "", ErrChecksum
	}
	if len(m.Encrypted)%aes.BlockSize != 0 {
		return "", fmt.Errorf("memo: ciphertext is not a multiple of the block size")
	}
	block, err := aes.NewCipher(ek[:32])
	if err != nil {
		return "", err
	}
	plain := make([]byte, len(m.Encrypted))
	cipher.NewCBCDecrypter(block, ek[32:48]).CryptBlocks(plain, m.Encrypted)
	return string(unpad(plain)), nil
}

// pad applies PKCS#7 padding unless data is already block aligned.
func pad(data []byte) []byte {
	n := aes.BlockSize - len(data)%aes.BlockSize
	if n == aes.BlockSize {
		return data
	}
	return append(data, bytes.Repeat([]byte{byte(n)}, n)...)
}

// unpad strips PKCS#7 padding when it is valid and leaves data untouched
// otherwise.
func unpad(data []byte) []byte {
	if len(data) == 0 {
		return data
	}
	n := int(data[len(data)-1])
	if n == 0 || n >= aes.BlockSize || n > len(data) {
		return data
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return data
		}
	}
	return data[:len(data)-n]
}
