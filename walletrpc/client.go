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

// Package walletrpc is a client for the JSON-RPC 2.0 API of a STEEM
// cli_wallet or of steemwalletd.
package walletrpc

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	jrpc "github.com/AdamSLevy/jsonrpc2/v14"

	"github.com/Steem-Tools/steemgo/api"
	"github.com/Steem-Tools/steemgo/keys"
	"github.com/Steem-Tools/steemgo/protocol"
	"github.com/Steem-Tools/steemgo/rpc"
)

// Default endpoint of steemwalletd.
const (
	WalletDefault = "http://localhost:8093"
)

// Client makes RPC requests to a wallet. Client embeds a jsonrpc2.Client,
// and thus also the http.Client. Use jsonrpc2.Client's BasicAuth settings to
// set up BasicAuth and http.Client's transport settings to configure TLS.
type Client struct {
	WalletServer string
	jrpc.Client
}

// NewClient returns a Client for the default endpoint with a 15 second
// timeout.
func NewClient() *Client {
	c := &Client{WalletServer: WalletDefault}
	c.Timeout = 15 * time.Second
	return c
}

// Call makes a request for method. Unlike the node API, methods are called
// by name without the "call" envelope.
func (c *Client) Call(ctx context.Context,
	method string, params, result interface{}) error {
	if c.DebugRequest {
		fmt.Println("wallet:", c.WalletServer)
	}
	if result == nil {
		result = new(json.RawMessage)
	}
	err := c.Client.Request(ctx, c.WalletServer, method, params, result)
	if err != nil && !rpc.IsNullResult(err) {
		return fmt.Errorf("%v: %w", method, err)
	}
	return nil
}

func (c *Client) Info(ctx context.Context) (Info, error) {
	var info Info
	return info, c.Call(ctx, "info", []interface{}{}, &info)
}

func (c *Client) About(ctx context.Context) (About, error) {
	var about About
	return about, c.Call(ctx, "about", []interface{}{}, &about)
}

// IsNew reports whether the wallet has no password yet.
func (c *Client) IsNew(ctx context.Context) (bool, error) {
	var isNew bool
	return isNew, c.Call(ctx, "is_new", []interface{}{}, &isNew)
}

func (c *Client) IsLocked(ctx context.Context) (bool, error) {
	var locked bool
	return locked, c.Call(ctx, "is_locked", []interface{}{}, &locked)
}

func (c *Client) Lock(ctx context.Context) error {
	return c.Call(ctx, "lock", []interface{}{}, nil)
}

func (c *Client) Unlock(ctx context.Context, password string) error {
	return c.Call(ctx, "unlock", []interface{}{password}, nil)
}

// SetPassword sets the password of a new wallet, or changes the password of
// an unlocked wallet.
func (c *Client) SetPassword(ctx context.Context, password string) error {
	return c.Call(ctx, "set_password", []interface{}{password}, nil)
}

// ListMyAccounts returns the accounts controlled by the keys of the wallet.
func (c *Client) ListMyAccounts(ctx context.Context) ([]*api.Account, error) {
	var accounts []*api.Account
	return accounts, c.Call(ctx, "list_my_accounts", []interface{}{}, &accounts)
}

// ListKeys returns the key pairs of the unlocked wallet.
func (c *Client) ListKeys(ctx context.Context) ([]KeyPair, error) {
	var pairs []KeyPair
	return pairs, c.Call(ctx, "list_keys", []interface{}{}, &pairs)
}

// ImportKey adds a WIF key to the wallet.
func (c *Client) ImportKey(ctx context.Context, wif string) (bool, error) {
	var ok bool
	return ok, c.Call(ctx, "import_key", []interface{}{wif}, &ok)
}

func (c *Client) GetAccount(ctx context.Context, name string) (*api.Account, error) {
	var account api.Account
	if err := c.Call(ctx, "get_account", []interface{}{name},
		&account); err != nil {
		return nil, err
	}
	return &account, nil
}

// GetPrivateKey returns the WIF key of pub.
func (c *Client) GetPrivateKey(ctx context.Context,
	pub *keys.PublicKey) (*keys.PrivateKey, error) {
	var wif string
	if err := c.Call(ctx, "get_private_key", []interface{}{pub.String()},
		&wif); err != nil {
		return nil, err
	}
	return keys.NewPrivateKey(wif)
}

// SuggestBrainKey returns a new random brain key.
func (c *Client) SuggestBrainKey(ctx context.Context) (*BrainKey, error) {
	var bk BrainKey
	if err := c.Call(ctx, "suggest_brain_key", []interface{}{},
		&bk); err != nil {
		return nil, err
	}
	return &bk, nil
}

func (c *Client) Transfer(ctx context.Context, from, to string,
	amount protocol.Amount, memo string, broadcast bool) (*Transaction, error) {
	var tx Transaction
	if err := c.Call(ctx, "transfer",
		[]interface{}{from, to, amount, memo, broadcast}, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

// Vote with weight in basis points, from -10000 to 10000.
func (c *Client) Vote(ctx context.Context, voter, author, permlink string,
	weight int16, broadcast bool) (*Transaction, error) {
	var tx Transaction
	if err := c.Call(ctx, "vote",
		[]interface{}{voter, author, permlink, weight, broadcast},
		&tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

// SignTransaction signs tx with the keys of the wallet.
func (c *Client) SignTransaction(ctx context.Context, tx *protocol.Transaction,
	broadcast bool) (*Transaction, error) {
	var signed Transaction
	if err := c.Call(ctx, "sign_transaction",
		[]interface{}{tx, broadcast}, &signed); err != nil {
		return nil, err
	}
	return &signed, nil
}
