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

package rpc

import (
	"context"
	"encoding/json"
	"errors"

	jsonrpc2 "github.com/AdamSLevy/jsonrpc2/v14"
)

// HTTPTransport makes calls by posting to an HTTP endpoint.
type HTTPTransport struct {
	URL string
	jsonrpc2.Client
}

// NewHTTPTransport returns an HTTPTransport for url using basic auth when
// user or password are set.
func NewHTTPTransport(url, user, password string) *HTTPTransport {
	t := &HTTPTransport{URL: url}
	t.Timeout = DefaultTimeout
	if user != "" || password != "" {
		t.BasicAuth = true
		t.User = user
		t.Password = password
	}
	return t
}

func (t *HTTPTransport) Call(ctx context.Context, api, method string,
	params, result interface{}) error {
	if result == nil {
		result = new(json.RawMessage)
	}
	err := t.Client.Request(ctx, t.URL, "call",
		callParams(api, method, params), result)
	if IsNullResult(err) {
		return nil
	}
	var jErr jsonrpc2.Error
	if errors.As(err, &jErr) {
		return NewError(jErr)
	}
	return err
}

// Close closes idle connections.
func (t *HTTPTransport) Close() error {
	t.CloseIdleConnections()
	return nil
}
