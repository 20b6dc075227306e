package keys

import (
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"strings"
)

// Roles of the authorities of an account.
const (
	RoleOwner   = "owner"
	RoleActive  = "active"
	RolePosting = "posting"
	RoleMemo    = "memo"
)

// Roles lists all roles in the order wallets display them.
var Roles = []string{RoleOwner, RoleActive, RolePosting, RoleMemo}

// PasswordKey derives the private key for role of account from a password,
// as the steemit.com web wallet does.
func PasswordKey(account, password, role string) *PrivateKey {
	seed := sha256.Sum256([]byte(account + role + password))
	return PrivateKeyFromBytes(seed[:])
}

// BrainKey derives a sequence of private keys from a brain key phrase.
type BrainKey struct {
	phrase   string
	Sequence int
}

// NewBrainKey returns a BrainKey for the normalized phrase starting at
// sequence.
func NewBrainKey(phrase string, sequence int) *BrainKey {
	return &BrainKey{phrase: normalizeBrainKey(phrase), Sequence: sequence}
}

// Phrase returns the normalized brain key phrase.
func (bk *BrainKey) Phrase() string {
	return bk.phrase
}

// PrivateKey returns sha256(sha512(phrase + " " + sequence)).
func (bk *BrainKey) PrivateKey() *PrivateKey {
	encoded := fmt.Sprintf("%s %d", bk.phrase, bk.Sequence)
	a := sha512.Sum512([]byte(encoded))
	s := sha256.Sum256(a[:])
	return PrivateKeyFromBytes(s[:])
}

// Next increments the sequence and returns the next private key.
func (bk *BrainKey) Next() *PrivateKey {
	bk.Sequence++
	return bk.PrivateKey()
}

func normalizeBrainKey(phrase string) string {
	return strings.ToUpper(strings.Join(strings.Fields(phrase), " "))
}
