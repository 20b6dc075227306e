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
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	jsonrpc2 "github.com/AdamSLevy/jsonrpc2/v14"
	"github.com/gorilla/websocket"
)

// DefaultTimeout applies to calls whose context has no deadline.
const DefaultTimeout = 60 * time.Second

// WSTransport makes one call at a time over a websocket connection.
type WSTransport struct {
	URL     string
	Timeout time.Duration

	mu     sync.Mutex
	conn   *websocket.Conn
	id     uint64
	closed bool
}

// BasicAuthHeader returns the Authorization header for user and password.
func BasicAuthHeader(user, password string) http.Header {
	h := make(http.Header)
	if user != "" || password != "" {
		auth := base64.StdEncoding.EncodeToString([]byte(user + ":" + password))
		h.Set("Authorization", "Basic "+auth)
	}
	return h
}

// DialWS connects to the websocket url.
func DialWS(ctx context.Context, url string, header http.Header) (*WSTransport, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, fmt.Errorf("websocket.Dial(%q): %w", url, err)
	}
	return &WSTransport{URL: url, Timeout: DefaultTimeout, conn: conn}, nil
}

func (t *WSTransport) deadline(ctx context.Context) time.Time {
	if d, ok := ctx.Deadline(); ok {
		return d
	}
	return time.Now().Add(t.Timeout)
}

// Call sends the request and waits for the response with the same id.
// Messages with other ids are discarded.
func (t *WSTransport) Call(ctx context.Context, api, method string,
	params, result interface{}) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	t.id++
	req := newRequest(t.id, api, method, params)
	deadline := t.deadline(ctx)
	t.conn.SetWriteDeadline(deadline)
	if err := t.conn.WriteJSON(req); err != nil {
		return t.fail(err)
	}

	t.conn.SetReadDeadline(deadline)
	// A past read deadline unblocks ReadJSON once ctx is done.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			t.conn.SetReadDeadline(time.Unix(1, 0))
		case <-done:
		}
	}()
	for {
		var res response
		if err := t.conn.ReadJSON(&res); err != nil {
			var syntaxErr *json.SyntaxError
			if errors.As(err, &syntaxErr) {
				continue
			}
			err = t.fail(err)
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return err
		}
		if res.ID == nil || *res.ID != req.ID {
			continue
		}
		return decodeResponse(res, result)
	}
}

func decodeResponse(res response, result interface{}) error {
	if res.Error != nil {
		return NewError(jsonrpc2.NewError(jsonrpc2.ErrorCode(res.Error.Code),
			res.Error.Message, res.Error.Data))
	}
	if result == nil || len(res.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(res.Result, result); err != nil {
		return fmt.Errorf("json.Unmarshal(result): %w", err)
	}
	return nil
}

// fail closes the connection after a read or write error. The connection can
// not be reused after either.
func (t *WSTransport) fail(err error) error {
	t.closed = true
	t.conn.Close()
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}
	return fmt.Errorf("%w: %v", ErrClosed, err)
}

// Close sends a close message and closes the connection.
func (t *WSTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	t.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return t.conn.Close()
}
