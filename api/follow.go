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

package api

import (
	"context"

	"github.com/Steem-Tools/steemgo/keys"
)

// GetFollowers returns up to limit followers of account starting at start.
// kind is "blog" or "ignore".
func (a *API) GetFollowers(ctx context.Context,
	account, start, kind string, limit uint32) ([]*FollowEntry, error) {
	var entries []*FollowEntry
	if err := a.Call(ctx, FollowAPI, "get_followers",
		[]interface{}{account, start, kind, limit}, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (a *API) GetFollowing(ctx context.Context,
	account, start, kind string, limit uint32) ([]*FollowEntry, error) {
	var entries []*FollowEntry
	if err := a.Call(ctx, FollowAPI, "get_following",
		[]interface{}{account, start, kind, limit}, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (a *API) GetFollowCount(ctx context.Context,
	account string) (*FollowCount, error) {
	var count FollowCount
	if err := a.Call(ctx, FollowAPI, "get_follow_count",
		[]interface{}{account}, &count); err != nil {
		return nil, err
	}
	return &count, nil
}

// GetKeyReferences returns, for each key, the accounts whose authorities
// reference it.
func (a *API) GetKeyReferences(ctx context.Context,
	pubs ...*keys.PublicKey) ([][]string, error) {
	var refs [][]string
	if err := a.Call(ctx, AccountByKeyAPI, "get_key_references",
		[]interface{}{pubs}, &refs); err != nil {
		return nil, err
	}
	return refs, nil
}
