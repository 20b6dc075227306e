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

package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/Steem-Tools/steemgo/api"
	"github.com/Steem-Tools/steemgo/keys"
	"github.com/patrickmn/go-cache"
)

func (w *Wallet) nodeAPI() (*api.API, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.api == nil {
		return nil, ErrNoAPI
	}
	return w.api, nil
}

// account returns the account called name. Results are cached for
// AccountCacheTTL.
func (w *Wallet) account(ctx context.Context, name string) (*api.Account, error) {
	if acc, ok := w.accounts.Get(name); ok {
		return acc.(*api.Account), nil
	}
	a, err := w.nodeAPI()
	if err != nil {
		return nil, err
	}
	acc, err := a.GetAccount(ctx, name)
	if err != nil {
		return nil, err
	}
	w.accounts.Set(name, acc, cache.DefaultExpiration)
	return acc, nil
}

// OwnerKey returns the owner key of account held by the Wallet.
func (w *Wallet) OwnerKey(ctx context.Context, account string) (*keys.PrivateKey, error) {
	return w.RoleKey(ctx, account, keys.RoleOwner)
}

// ActiveKey returns the active key of account held by the Wallet.
func (w *Wallet) ActiveKey(ctx context.Context, account string) (*keys.PrivateKey, error) {
	return w.RoleKey(ctx, account, keys.RoleActive)
}

// PostingKey returns the posting key of account held by the Wallet.
func (w *Wallet) PostingKey(ctx context.Context, account string) (*keys.PrivateKey, error) {
	return w.RoleKey(ctx, account, keys.RolePosting)
}

// MemoKey returns the memo key of account held by the Wallet.
func (w *Wallet) MemoKey(ctx context.Context, account string) (*keys.PrivateKey, error) {
	return w.RoleKey(ctx, account, keys.RoleMemo)
}

// RoleKey returns the first key of the role authority of account that the
// Wallet holds. A key forced for role is returned without looking up the
// account.
func (w *Wallet) RoleKey(ctx context.Context,
	account, role string) (*keys.PrivateKey, error) {
	if !validRole(role) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	if priv, ok := w.ForcedKey(role); ok {
		return priv, nil
	}
	acc, err := w.account(ctx, account)
	if err != nil {
		return nil, err
	}
	var pubs []*keys.PublicKey
	if role == keys.RoleMemo {
		if acc.MemoKey != nil {
			pubs = append(pubs, acc.MemoKey)
		}
	} else if auth := acc.Authority(role); auth != nil {
		for _, ka := range auth.KeyAuths {
			pubs = append(pubs, ka.Key)
		}
	}
	for _, pub := range pubs {
		priv, err := w.PrivateKeyForPublicKey(ctx, pub)
		if err == nil {
			return priv, nil
		}
		if !errors.Is(err, ErrMissingKey) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %v key of %q", ErrMissingKey, role, account)
}

// AccountFromPublicKey returns the first account whose authorities reference
// pub, or "" if there is none.
func (w *Wallet) AccountFromPublicKey(ctx context.Context,
	pub *keys.PublicKey) (string, error) {
	a, err := w.nodeAPI()
	if err != nil {
		return "", err
	}
	refs, err := a.GetKeyReferences(ctx, pub)
	if err != nil {
		return "", err
	}
	if len(refs) == 0 || len(refs[0]) == 0 {
		return "", nil
	}
	return refs[0][0], nil
}

// AccountKey describes a key held by the Wallet.
type AccountKey struct {
	// Name and Type are empty if no account references PubKey.
	Name   string          `json:"name"`
	Type   string          `json:"type"`
	PubKey *keys.PublicKey `json:"pubkey"`
}

// Account returns the account and role of pub.
func (w *Wallet) Account(ctx context.Context, pub *keys.PublicKey) (AccountKey, error) {
	name, err := w.AccountFromPublicKey(ctx, pub)
	if err != nil || name == "" {
		return AccountKey{PubKey: pub}, err
	}
	acc, err := w.account(ctx, name)
	if err != nil {
		return AccountKey{}, err
	}
	return AccountKey{Name: name, Type: KeyType(acc, pub), PubKey: pub}, nil
}

// KeyType returns the role of pub within acc, or "" if acc does not
// reference pub.
func KeyType(acc *api.Account, pub *keys.PublicKey) string {
	if acc.MemoKey != nil && acc.MemoKey.Equal(pub) {
		return keys.RoleMemo
	}
	for _, role := range []string{keys.RoleOwner, keys.RolePosting, keys.RoleActive} {
		auth := acc.Authority(role)
		if auth != nil && auth.HasKey(pub) {
			return role
		}
	}
	return ""
}

// Accounts returns the account of every key held by the Wallet.
func (w *Wallet) Accounts(ctx context.Context) ([]AccountKey, error) {
	pubs, err := w.PublicKeys(ctx)
	if err != nil {
		return nil, err
	}
	accounts := make([]AccountKey, 0, len(pubs))
	for _, pub := range pubs {
		acc, err := w.Account(ctx, pub)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, acc)
	}
	return accounts, nil
}

// AccountsWithPermissions returns, for every account with a key in the
// Wallet, which roles are held.
func (w *Wallet) AccountsWithPermissions(ctx context.Context) (
	map[string]map[string]bool, error) {
	accounts, err := w.Accounts(ctx)
	if err != nil {
		return nil, err
	}
	perms := make(map[string]map[string]bool)
	for _, acc := range accounts {
		if acc.Name == "" {
			continue
		}
		p, ok := perms[acc.Name]
		if !ok {
			p = make(map[string]bool, len(keys.Roles))
			for _, role := range keys.Roles {
				p[role] = false
			}
			perms[acc.Name] = p
		}
		if acc.Type != "" {
			p[acc.Type] = true
		}
	}
	return perms, nil
}

// RemoveAccount removes every key of account from the Wallet.
func (w *Wallet) RemoveAccount(ctx context.Context, account string) error {
	accounts, err := w.Accounts(ctx)
	if err != nil {
		return err
	}
	for _, acc := range accounts {
		if acc.Name != account {
			continue
		}
		if err := w.RemovePrivateKey(ctx, acc.PubKey); err != nil {
			return err
		}
	}
	return nil
}
