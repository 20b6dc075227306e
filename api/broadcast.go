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

	"github.com/Steem-Tools/steemgo/protocol"
)

// BroadcastTransaction submits tx without waiting for it to be included in
// a block.
func (a *API) BroadcastTransaction(ctx context.Context,
	tx *protocol.Transaction) error {
	return a.Call(ctx, NetworkBroadcastAPI, "broadcast_transaction",
		[]interface{}{tx}, nil)
}

// BroadcastTransactionSynchronous submits tx and waits for the block that
// includes it.
func (a *API) BroadcastTransactionSynchronous(ctx context.Context,
	tx *protocol.Transaction) (*BroadcastResult, error) {
	var res BroadcastResult
	if err := a.Call(ctx, NetworkBroadcastAPI,
		"broadcast_transaction_synchronous",
		[]interface{}{tx}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
