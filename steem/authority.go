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

package steem

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Steem-Tools/steemgo/api"
	"github.com/Steem-Tools/steemgo/keys"
	"github.com/Steem-Tools/steemgo/protocol"
	"github.com/Steem-Tools/steemgo/txbuilder"
)

func copyAuthority(a *protocol.Authority) *protocol.Authority {
	if a == nil {
		return &protocol.Authority{
			AccountAuths: []protocol.AccountAuth{},
			KeyAuths:     []protocol.KeyAuth{},
		}
	}
	return &protocol.Authority{
		WeightThreshold: a.WeightThreshold,
		AccountAuths:    append([]protocol.AccountAuth{}, a.AccountAuths...),
		KeyAuths:        append([]protocol.KeyAuth{}, a.KeyAuths...),
	}
}

func validPermission(permission string) error {
	switch permission {
	case keys.RoleOwner, keys.RoleActive, keys.RolePosting:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidPermission, permission)
}

// updateAuthority broadcasts an account_update replacing the permission
// authority of acc. The owner authority needs the owner key, the others
// the active key.
func (s *Steem) updateAuthority(ctx context.Context, acc *api.Account,
	permission string, auth *protocol.Authority) (*txbuilder.Builder, error) {
	op := &protocol.AccountUpdate{
		Account:      acc.Name,
		MemoKey:      acc.MemoKey,
		JSONMetadata: acc.JSONMetadata,
	}
	signWith := keys.RoleActive
	switch permission {
	case keys.RoleOwner:
		op.Owner = auth
		signWith = keys.RoleOwner
	case keys.RoleActive:
		op.Active = auth
	case keys.RolePosting:
		op.Posting = auth
	}
	return s.FinalizeOp(ctx, acc.Name, signWith, op)
}

// Allow grants foreign, a public key or an account name, weight in the
// permission authority of account. A zero weight uses the current
// threshold. A non zero threshold replaces the current one.
func (s *Steem) Allow(ctx context.Context, foreign string, weight uint16,
	permission, account string, threshold uint32) (*txbuilder.Builder, error) {
	account, err := orDefault(account, s.DefaultAuthor)
	if err != nil {
		return nil, err
	}
	if err := validPermission(permission); err != nil {
		return nil, err
	}
	acc, err := s.API.GetAccount(ctx, account)
	if err != nil {
		return nil, err
	}
	auth := copyAuthority(acc.Authority(permission))
	if weight == 0 {
		weight = uint16(auth.WeightThreshold)
	}

	if pub, err := keys.NewPublicKeyWithPrefix(foreign, s.chain.Prefix); err == nil {
		auth.KeyAuths = append(auth.KeyAuths, protocol.KeyAuth{Key: pub, Weight: weight})
	} else {
		foreignAcc, err := s.API.GetAccount(ctx, foreign)
		if err != nil {
			return nil, fmt.Errorf("unknown foreign account or invalid public key %q: %w",
				foreign, err)
		}
		auth.AccountAuths = append(auth.AccountAuths,
			protocol.AccountAuth{Account: foreignAcc.Name, Weight: weight})
	}

	if threshold > 0 {
		auth.WeightThreshold = threshold
		if err := auth.Validate(); err != nil {
			return nil, err
		}
	}
	return s.updateAuthority(ctx, acc, permission, auth)
}

// Disallow removes foreign, a public key or an account name, from the
// permission authority of account. If the remaining weights cannot reach the
// threshold, it is lowered by the removed weight.
func (s *Steem) Disallow(ctx context.Context, foreign, permission, account string,
	threshold uint32) (*txbuilder.Builder, error) {
	account, err := orDefault(account, s.DefaultAuthor)
	if err != nil {
		return nil, err
	}
	if err := validPermission(permission); err != nil {
		return nil, err
	}
	acc, err := s.API.GetAccount(ctx, account)
	if err != nil {
		return nil, err
	}
	auth := copyAuthority(acc.Authority(permission))

	var removed []uint16
	if pub, err := keys.NewPublicKeyWithPrefix(foreign, s.chain.Prefix); err == nil {
		kept := auth.KeyAuths[:0]
		for _, ka := range auth.KeyAuths {
			if ka.Key.Equal(pub) {
				removed = append(removed, ka.Weight)
				continue
			}
			kept = append(kept, ka)
		}
		auth.KeyAuths = kept
	} else {
		foreignAcc, err := s.API.GetAccount(ctx, foreign)
		if err != nil {
			return nil, fmt.Errorf("unknown foreign account or invalid public key %q: %w",
				foreign, err)
		}
		kept := auth.AccountAuths[:0]
		for _, aa := range auth.AccountAuths {
			if aa.Account == foreignAcc.Name {
				removed = append(removed, aa.Weight)
				continue
			}
			kept = append(kept, aa)
		}
		auth.AccountAuths = kept
	}
	if len(removed) == 0 {
		return nil, fmt.Errorf("%w: %q in %v authority of %q",
			ErrForeignNotFound, foreign, permission, account)
	}

	if threshold > 0 {
		auth.WeightThreshold = threshold
	}
	if err := auth.Validate(); err != nil {
		if !errors.Is(err, protocol.ErrThresholdTooRestrictive) {
			return nil, err
		}
		reduce := uint32(removed[0])
		if reduce > auth.WeightThreshold {
			reduce = auth.WeightThreshold
		}
		s.log.Warnf("The threshold of the %v authority of %v will be reduced by %v",
			permission, account, reduce)
		auth.WeightThreshold -= reduce
		if err := auth.Validate(); err != nil {
			return nil, err
		}
	}
	return s.updateAuthority(ctx, acc, permission, auth)
}

// UpdateMemoKey replaces the memo public key of account. No private key is
// added to the wallet.
func (s *Steem) UpdateMemoKey(ctx context.Context, key,
	account string) (*txbuilder.Builder, error) {
	account, err := orDefault(account, s.DefaultAuthor)
	if err != nil {
		return nil, err
	}
	pub, err := keys.NewPublicKeyWithPrefix(key, s.chain.Prefix)
	if err != nil {
		return nil, err
	}
	acc, err := s.API.GetAccount(ctx, account)
	if err != nil {
		return nil, err
	}
	op := &protocol.AccountUpdate{
		Account:      acc.Name,
		MemoKey:      pub,
		JSONMetadata: acc.JSONMetadata,
	}
	return s.FinalizeOp(ctx, acc.Name, keys.RoleActive, op)
}

// UpdateAccountProfile replaces the json_metadata of account with profile.
func (s *Steem) UpdateAccountProfile(ctx context.Context,
	profile map[string]interface{}, account string) (*txbuilder.Builder, error) {
	account, err := orDefault(account, s.DefaultAccount)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(profile)
	if err != nil {
		return nil, fmt.Errorf("json_metadata: %w", err)
	}
	acc, err := s.API.GetAccount(ctx, account)
	if err != nil {
		return nil, err
	}
	op := &protocol.AccountUpdate{
		Account:      acc.Name,
		MemoKey:      acc.MemoKey,
		JSONMetadata: string(data),
	}
	return s.FinalizeOp(ctx, acc.Name, keys.RoleActive, op)
}
