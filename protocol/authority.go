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
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/Steem-Tools/steemgo/keys"
)

// ErrThresholdTooRestrictive is returned when the weights of an Authority
// can never reach its threshold.
var ErrThresholdTooRestrictive = errors.New("threshold too restrictive")

// AccountAuth grants weight to the authority of another account.
type AccountAuth struct {
	Account string
	Weight  uint16
}

func (a AccountAuth) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{a.Account, a.Weight})
}

func (a *AccountAuth) UnmarshalJSON(data []byte) error {
	pair := []interface{}{&a.Account, &a.Weight}
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("%T: %w", a, err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("%T: expected [account, weight]", a)
	}
	return nil
}

// KeyAuth grants weight to a public key.
type KeyAuth struct {
	Key    *keys.PublicKey
	Weight uint16
}

func (k KeyAuth) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{k.Key, k.Weight})
}

func (k *KeyAuth) UnmarshalJSON(data []byte) error {
	k.Key = new(keys.PublicKey)
	pair := []interface{}{k.Key, &k.Weight}
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("%T: %w", k, err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("%T: expected [key, weight]", k)
	}
	return nil
}

// Authority is a weighted multi-signature permission of an account.
type Authority struct {
	WeightThreshold uint32        `json:"weight_threshold"`
	AccountAuths    []AccountAuth `json:"account_auths"`
	KeyAuths        []KeyAuth     `json:"key_auths"`
}

// NewKeyAuthority returns the single key authority with threshold 1.
func NewKeyAuthority(pub *keys.PublicKey) *Authority {
	return &Authority{
		WeightThreshold: 1,
		AccountAuths:    []AccountAuth{},
		KeyAuths:        []KeyAuth{{Key: pub, Weight: 1}},
	}
}

// TotalWeight is the sum of all account and key weights.
func (a *Authority) TotalWeight() uint32 {
	var total uint32
	for _, aa := range a.AccountAuths {
		total += uint32(aa.Weight)
	}
	for _, ka := range a.KeyAuths {
		total += uint32(ka.Weight)
	}
	return total
}

// Validate ensures that the threshold is reachable.
func (a *Authority) Validate() error {
	if a.TotalWeight() < a.WeightThreshold {
		return fmt.Errorf("%w: weights sum to %v, threshold is %v",
			ErrThresholdTooRestrictive, a.TotalWeight(), a.WeightThreshold)
	}
	return nil
}

// HasKey reports whether pub is one of the key auths.
func (a *Authority) HasKey(pub *keys.PublicKey) bool {
	for _, ka := range a.KeyAuths {
		if ka.Key.Equal(pub) {
			return true
		}
	}
	return false
}

// HasAccount reports whether account is one of the account auths.
func (a *Authority) HasAccount(account string) bool {
	for _, aa := range a.AccountAuths {
		if aa.Account == account {
			return true
		}
	}
	return false
}

// MarshalBinary writes the threshold, the account auths sorted by name and
// the key auths sorted by compressed key bytes.
func (a *Authority) MarshalBinary(enc *Encoder) {
	enc.Uint32(a.WeightThreshold)

	accounts := append([]AccountAuth{}, a.AccountAuths...)
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].Account < accounts[j].Account
	})
	enc.Uvarint(uint64(len(accounts)))
	for _, aa := range accounts {
		enc.String(aa.Account)
		enc.Uint16(aa.Weight)
	}

	keyAuths := append([]KeyAuth{}, a.KeyAuths...)
	sort.Slice(keyAuths, func(i, j int) bool {
		return keyAuths[i].Key.Less(keyAuths[j].Key)
	})
	enc.Uvarint(uint64(len(keyAuths)))
	for _, ka := range keyAuths {
		enc.Raw(ka.Key.Bytes())
		enc.Uint16(ka.Weight)
	}
}

// Price is the ratio of two amounts.
type Price struct {
	Base  Amount `json:"base"`
	Quote Amount `json:"quote"`
}

func (p Price) MarshalBinary(enc *Encoder) {
	p.Base.MarshalBinary(enc)
	p.Quote.MarshalBinary(enc)
}

// Float64 returns base/quote.
func (p Price) Float64() float64 {
	q := p.Quote.Float64()
	if q == 0 {
		return 0
	}
	return p.Base.Float64() / q
}

// ExchangeRate is the price published by witnesses.
type ExchangeRate = Price

// ChainProperties are the parameters voted on by witnesses.
type ChainProperties struct {
	AccountCreationFee Amount `json:"account_creation_fee"`
	MaximumBlockSize   uint32 `json:"maximum_block_size"`
	SBDInterestRate    uint16 `json:"sbd_interest_rate"`
}

func (p ChainProperties) MarshalBinary(enc *Encoder) {
	p.AccountCreationFee.MarshalBinary(enc)
	enc.Uint32(p.MaximumBlockSize)
	enc.Uint16(p.SBDInterestRate)
}
