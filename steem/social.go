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
	"fmt"

	"github.com/Steem-Tools/steemgo/keys"
	"github.com/Steem-Tools/steemgo/protocol"
	"github.com/Steem-Tools/steemgo/txbuilder"
)

// ApproveWitness votes for witness.
func (s *Steem) ApproveWitness(ctx context.Context,
	witness, account string) (*txbuilder.Builder, error) {
	return s.witnessVote(ctx, witness, account, true)
}

// DisapproveWitness removes the vote of account for witness.
func (s *Steem) DisapproveWitness(ctx context.Context,
	witness, account string) (*txbuilder.Builder, error) {
	return s.witnessVote(ctx, witness, account, false)
}

func (s *Steem) witnessVote(ctx context.Context, witness, account string,
	approve bool) (*txbuilder.Builder, error) {
	account, err := orDefault(account, s.DefaultAccount)
	if err != nil {
		return nil, err
	}
	if _, err := s.API.GetAccount(ctx, account); err != nil {
		return nil, err
	}
	op := &protocol.AccountWitnessVote{Account: account, Witness: witness,
		Approve: approve}
	return s.FinalizeOp(ctx, account, keys.RoleActive, op)
}

// CustomJSON broadcasts payload encoded as JSON under id. It is signed by
// the first of requiredAuths with its active key, or else by the first of
// requiredPostingAuths with its posting key.
func (s *Steem) CustomJSON(ctx context.Context, id string, payload interface{},
	requiredAuths, requiredPostingAuths []string) (*txbuilder.Builder, error) {
	var account, permission string
	switch {
	case len(requiredAuths) > 0:
		account, permission = requiredAuths[0], keys.RoleActive
	case len(requiredPostingAuths) > 0:
		account, permission = requiredPostingAuths[0], keys.RolePosting
	default:
		return nil, ErrNoAuths
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("custom_json %v: %w", id, err)
	}
	op := &protocol.CustomJSON{
		RequiredAuths:        requiredAuths,
		RequiredPostingAuths: requiredPostingAuths,
		ID:                   id,
		JSON:                 string(data),
	}
	return s.FinalizeOp(ctx, account, permission, op)
}

// FollowID is the custom_json id of the follow plugin.
const FollowID = "follow"

// Follow makes account follow the blog of follow. A nil what defaults to
// "blog".
func (s *Steem) Follow(ctx context.Context, follow string, what []string,
	account string) (*txbuilder.Builder, error) {
	if what == nil {
		what = []string{"blog"}
	}
	return s.follow(ctx, follow, what, account)
}

// Unfollow clears what account follows of unfollow.
func (s *Steem) Unfollow(ctx context.Context, unfollow,
	account string) (*txbuilder.Builder, error) {
	return s.follow(ctx, unfollow, []string{}, account)
}

func (s *Steem) follow(ctx context.Context, follow string, what []string,
	account string) (*txbuilder.Builder, error) {
	account, err := orDefault(account, s.DefaultAccount)
	if err != nil {
		return nil, err
	}
	payload := []interface{}{"follow", map[string]interface{}{
		"follower":  account,
		"following": follow,
		"what":      what,
	}}
	return s.CustomJSON(ctx, FollowID, payload, nil, []string{account})
}

// Resteem shares the post identified by identifier on the blog of account.
func (s *Steem) Resteem(ctx context.Context, identifier,
	account string) (*txbuilder.Builder, error) {
	account, err := orDefault(account, s.DefaultAuthor)
	if err != nil {
		return nil, err
	}
	author, permlink, err := ResolveIdentifier(identifier)
	if err != nil {
		return nil, err
	}
	payload := []interface{}{"reblog", map[string]interface{}{
		"account":  account,
		"author":   author,
		"permlink": permlink,
	}}
	return s.CustomJSON(ctx, FollowID, payload, nil, []string{account})
}
