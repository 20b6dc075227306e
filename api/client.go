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
	"errors"
	"fmt"
	"time"

	"github.com/Steem-Tools/steemgo/rpc"
	"github.com/patrickmn/go-cache"
)

// Node APIs.
const (
	DatabaseAPI         = "database_api"
	NetworkBroadcastAPI = "network_broadcast_api"
	MarketHistoryAPI    = "market_history_api"
	FollowAPI           = "follow_api"
	AccountByKeyAPI     = "account_by_key_api"
)

var (
	// ErrStop may be returned by the callbacks of pagers and streams to
	// end them without an error.
	ErrStop = errors.New("stop")

	ErrAccountNotFound = errors.New("account not found")
	ErrBlockNotFound   = errors.New("block not found")
	ErrContentNotFound = errors.New("content not found")
	ErrWitnessNotFound = errors.New("witness not found")
	ErrInvalidSort     = errors.New("invalid discussion sort")
)

// API makes typed calls to the APIs of a node through a Caller.
type API struct {
	caller rpc.Caller
	cache  *cache.Cache
}

// New returns an API using c.
func New(c rpc.Caller) *API {
	return &API{caller: c, cache: cache.New(10*time.Minute, 20*time.Minute)}
}

// Caller returns the underlying Caller.
func (a *API) Caller() rpc.Caller {
	return a.caller
}

// Call calls api.method.
func (a *API) Call(ctx context.Context, api, method string,
	params, result interface{}) error {
	if err := a.caller.Call(ctx, api, method, params, result); err != nil {
		return fmt.Errorf("%v.%v: %w", api, method, err)
	}
	return nil
}

type apiRegisterer interface {
	Registering() bool
	RegisterAPIs(ctx context.Context, apis ...string) error
}

// RequireAPIs registers apis when the Caller registers APIs, like an
// *rpc.Client that logs in.
func (a *API) RequireAPIs(ctx context.Context, apis ...string) error {
	r, ok := a.caller.(apiRegisterer)
	if !ok || !r.Registering() {
		return nil
	}
	return r.RegisterAPIs(ctx, apis...)
}
