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
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Steem-Tools/steemgo/keys"
	"github.com/Steem-Tools/steemgo/protocol"
	"github.com/patrickmn/go-cache"
)

func (a *API) GetDynamicGlobalProperties(
	ctx context.Context) (*DynamicGlobalProperties, error) {
	var props DynamicGlobalProperties
	if err := a.Call(ctx, DatabaseAPI, "get_dynamic_global_properties",
		nil, &props); err != nil {
		return nil, err
	}
	return &props, nil
}

// GetConfig returns the node constants. The result is cached.
func (a *API) GetConfig(ctx context.Context) (*Config, error) {
	if cfg, ok := a.cache.Get("config"); ok {
		return cfg.(*Config), nil
	}
	var cfg Config
	if err := a.Call(ctx, DatabaseAPI, "get_config", nil, &cfg); err != nil {
		return nil, err
	}
	a.cache.Set("config", &cfg, cache.DefaultExpiration)
	return &cfg, nil
}

func (a *API) GetChainProperties(
	ctx context.Context) (*protocol.ChainProperties, error) {
	var props protocol.ChainProperties
	if err := a.Call(ctx, DatabaseAPI, "get_chain_properties",
		nil, &props); err != nil {
		return nil, err
	}
	return &props, nil
}

// GetBlock returns ErrBlockNotFound for blocks that do not exist yet.
func (a *API) GetBlock(ctx context.Context, num uint32) (*Block, error) {
	var block *Block
	if err := a.Call(ctx, DatabaseAPI, "get_block",
		[]interface{}{num}, &block); err != nil {
		return nil, err
	}
	if block == nil {
		return nil, fmt.Errorf("%w: %v", ErrBlockNotFound, num)
	}
	return block, nil
}

func (a *API) GetBlockHeader(ctx context.Context, num uint32) (*BlockHeader, error) {
	var header *BlockHeader
	if err := a.Call(ctx, DatabaseAPI, "get_block_header",
		[]interface{}{num}, &header); err != nil {
		return nil, err
	}
	if header == nil {
		return nil, fmt.Errorf("%w: %v", ErrBlockNotFound, num)
	}
	return header, nil
}

func (a *API) GetAccounts(ctx context.Context, names ...string) ([]*Account, error) {
	var accounts []*Account
	if err := a.Call(ctx, DatabaseAPI, "get_accounts",
		[]interface{}{names}, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// GetAccount returns ErrAccountNotFound if name does not exist.
func (a *API) GetAccount(ctx context.Context, name string) (*Account, error) {
	accounts, err := a.GetAccounts(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 || accounts[0] == nil {
		return nil, fmt.Errorf("%w: %q", ErrAccountNotFound, name)
	}
	return accounts[0], nil
}

func (a *API) GetAccountCount(ctx context.Context) (uint64, error) {
	var count uint64
	err := a.Call(ctx, DatabaseAPI, "get_account_count", nil, &count)
	return count, err
}

// LookupAccounts returns up to limit account names starting at lower.
func (a *API) LookupAccounts(ctx context.Context,
	lower string, limit uint32) ([]string, error) {
	var names []string
	if err := a.Call(ctx, DatabaseAPI, "lookup_accounts",
		[]interface{}{lower, limit}, &names); err != nil {
		return nil, err
	}
	return names, nil
}

// GetAccountHistory returns up to limit+1 entries ending at index from. A
// negative from starts at the newest entry.
func (a *API) GetAccountHistory(ctx context.Context,
	name string, from int64, limit uint32) ([]*HistoryEntry, error) {
	var entries []*HistoryEntry
	if err := a.Call(ctx, DatabaseAPI, "get_account_history",
		[]interface{}{name, from, limit}, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (a *API) GetContent(ctx context.Context,
	author, permlink string) (*Content, error) {
	var content Content
	if err := a.Call(ctx, DatabaseAPI, "get_content",
		[]interface{}{author, permlink}, &content); err != nil {
		return nil, err
	}
	if content.Author == "" {
		return nil, fmt.Errorf("%w: @%v/%v", ErrContentNotFound,
			author, permlink)
	}
	return &content, nil
}

func (a *API) GetContentReplies(ctx context.Context,
	author, permlink string) ([]*Content, error) {
	var replies []*Content
	if err := a.Call(ctx, DatabaseAPI, "get_content_replies",
		[]interface{}{author, permlink}, &replies); err != nil {
		return nil, err
	}
	return replies, nil
}

// DiscussionSorts are the valid sorts of GetDiscussionsBy.
var DiscussionSorts = []string{"trending", "created", "active", "cashout",
	"payout", "votes", "children", "hot"}

func (a *API) GetDiscussionsBy(ctx context.Context,
	sort string, q DiscussionQuery) ([]*Content, error) {
	valid := false
	for _, s := range DiscussionSorts {
		valid = valid || s == sort
	}
	if !valid {
		return nil, fmt.Errorf("%w: %q, must be one of %v", ErrInvalidSort,
			sort, strings.Join(DiscussionSorts, ", "))
	}
	var discussions []*Content
	if err := a.Call(ctx, DatabaseAPI, "get_discussions_by_"+sort,
		[]interface{}{q}, &discussions); err != nil {
		return nil, err
	}
	return discussions, nil
}

// GetState returns the state of a condenser path, such as "/@steemit".
func (a *API) GetState(ctx context.Context,
	path string) (map[string]json.RawMessage, error) {
	var state map[string]json.RawMessage
	if err := a.Call(ctx, DatabaseAPI, "get_state",
		[]interface{}{path}, &state); err != nil {
		return nil, err
	}
	return state, nil
}

func (a *API) GetWitnessByAccount(ctx context.Context,
	name string) (*Witness, error) {
	var witness *Witness
	if err := a.Call(ctx, DatabaseAPI, "get_witness_by_account",
		[]interface{}{name}, &witness); err != nil {
		return nil, err
	}
	if witness == nil {
		return nil, fmt.Errorf("%w: %q", ErrWitnessNotFound, name)
	}
	return witness, nil
}

func (a *API) GetFeedHistory(ctx context.Context) (*FeedHistory, error) {
	var history FeedHistory
	if err := a.Call(ctx, DatabaseAPI, "get_feed_history",
		nil, &history); err != nil {
		return nil, err
	}
	return &history, nil
}

func (a *API) GetCurrentMedianHistoryPrice(
	ctx context.Context) (*protocol.Price, error) {
	var price protocol.Price
	if err := a.Call(ctx, DatabaseAPI, "get_current_median_history_price",
		nil, &price); err != nil {
		return nil, err
	}
	return &price, nil
}

func (a *API) GetOpenOrders(ctx context.Context,
	owner string) ([]*OpenOrder, error) {
	var orders []*OpenOrder
	if err := a.Call(ctx, DatabaseAPI, "get_open_orders",
		[]interface{}{owner}, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// GetWithdrawRoutes returns the routes of account. kind is one of
// "outgoing", "incoming" or "all".
func (a *API) GetWithdrawRoutes(ctx context.Context,
	account, kind string) ([]*WithdrawRoute, error) {
	var routes []*WithdrawRoute
	if err := a.Call(ctx, DatabaseAPI, "get_withdraw_routes",
		[]interface{}{account, kind}, &routes); err != nil {
		return nil, err
	}
	return routes, nil
}

func (a *API) GetConversionRequests(ctx context.Context,
	account string) ([]*ConversionRequest, error) {
	var requests []*ConversionRequest
	if err := a.Call(ctx, DatabaseAPI, "get_conversion_requests",
		[]interface{}{account}, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

func (a *API) GetAccountVotes(ctx context.Context,
	voter string) ([]*AccountVote, error) {
	var votes []*AccountVote
	if err := a.Call(ctx, DatabaseAPI, "get_account_votes",
		[]interface{}{voter}, &votes); err != nil {
		return nil, err
	}
	return votes, nil
}

// VerifyAuthority reports whether the signatures of tx satisfy the
// authorities its operations require.
func (a *API) VerifyAuthority(ctx context.Context,
	tx *protocol.Transaction) (bool, error) {
	var ok bool
	err := a.Call(ctx, DatabaseAPI, "verify_authority",
		[]interface{}{tx}, &ok)
	return ok, err
}

func (a *API) GetPotentialSignatures(ctx context.Context,
	tx *protocol.Transaction) ([]*keys.PublicKey, error) {
	var pubs []*keys.PublicKey
	if err := a.Call(ctx, DatabaseAPI, "get_potential_signatures",
		[]interface{}{tx}, &pubs); err != nil {
		return nil, err
	}
	return pubs, nil
}

func (a *API) GetRequiredSignatures(ctx context.Context,
	tx *protocol.Transaction,
	available []*keys.PublicKey) ([]*keys.PublicKey, error) {
	if available == nil {
		available = []*keys.PublicKey{}
	}
	var pubs []*keys.PublicKey
	if err := a.Call(ctx, DatabaseAPI, "get_required_signatures",
		[]interface{}{tx, available}, &pubs); err != nil {
		return nil, err
	}
	return pubs, nil
}
