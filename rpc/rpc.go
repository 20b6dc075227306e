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

// Package rpc is a synchronous JSON-RPC client to STEEM nodes.
//
// Every request is a "call" with the params [api, method, args]. Requests
// block until the response arrives. There is no support for notifications.
package rpc

import (
	"context"
	"encoding/json"
)

// Caller makes a call to a method of a node API and decodes the result into
// result, which may be nil.
type Caller interface {
	Call(ctx context.Context, api, method string,
		params, result interface{}) error
}

// Transport is a Caller bound to a single connection.
type Transport interface {
	Caller
	Close() error
}

type request struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

func newRequest(id uint64, api, method string, params interface{}) request {
	return request{
		JSONRPC: "2.0",
		ID:      id,
		Method:  "call",
		Params:  callParams(api, method, params),
	}
}

func callParams(api, method string, params interface{}) []interface{} {
	if params == nil {
		params = []interface{}{}
	}
	return []interface{}{api, method, params}
}

type responseError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

type response struct {
	ID     *uint64         `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *responseError  `json:"error"`
}
