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
	"errors"
	"fmt"
	"io/ioutil"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/Steem-Tools/steemgo/protocol"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Default values of Client options.
const (
	DefaultMaxRetries = 3
	DefaultBackoff    = 500 * time.Millisecond
)

// DefaultAPIs are registered when a Client logs in.
var DefaultAPIs = []string{"database_api", "network_broadcast_api",
	"account_by_key_api"}

// ErrRateLimited is returned when a call can never satisfy the rate limit.
var ErrRateLimited = errors.New("rate limited")

// Observer is called after every call with its duration and error.
type Observer func(api, method string, d time.Duration, err error)

// Option configures a Client.
type Option func(*Client)

// WithCredentials logs in with user and password after connecting. The
// credentials are also sent as basic auth.
func WithCredentials(user, password string) Option {
	return func(c *Client) { c.user, c.password = user, password }
}

// WithAPIs sets the APIs registered after connecting. Registration also
// happens when credentials are set, using DefaultAPIs.
func WithAPIs(apis ...string) Option {
	return func(c *Client) { c.apis = append([]string{}, apis...) }
}

// WithRateLimiter limits the rate of calls across all connections.
func WithRateLimiter(l *rate.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// WithObserver registers an Observer for every call.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// WithLogger sets the logger. Logs are discarded by default.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Client) { c.log = l }
}

// WithMaxRetries sets the number of reconnects per call.
func WithMaxRetries(n int) Option {
	return func(c *Client) { c.maxRetries = n }
}

// WithTimeout sets the timeout of calls whose context has no deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// Client is a Caller that fails over across a list of node urls. A failed
// connection is replaced by one to the next url.
type Client struct {
	urls       []string
	user       string
	password   string
	apis       []string
	limiter    *rate.Limiter
	observer   Observer
	log        logrus.FieldLogger
	maxRetries int
	timeout    time.Duration

	mu        sync.Mutex
	transport Transport
	next      int
	apiIDs    map[string]int
}

// Dial connects to the first reachable url. A url with a ws or wss scheme
// uses a WSTransport. Otherwise an HTTPTransport is used.
func Dial(ctx context.Context, urls []string, opts ...Option) (*Client, error) {
	if len(urls) == 0 {
		return nil, ErrNoNodes
	}
	c := &Client{
		urls:       urls,
		maxRetries: DefaultMaxRetries,
		timeout:    DefaultTimeout,
		apiIDs:     make(map[string]int),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		l := logrus.New()
		l.Out = ioutil.Discard
		c.log = l
	}
	if len(c.apis) == 0 && c.user != "" {
		c.apis = DefaultAPIs
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	var err error
	for range c.urls {
		if _, err = c.connect(ctx); err == nil {
			return c, nil
		}
		c.log.Warnf("%v", err)
	}
	return nil, err
}

// URL returns the url of the current connection.
func (c *Client) URL() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.urls[(c.next+len(c.urls)-1)%len(c.urls)]
}

// connect opens a Transport to the next url, logs in and registers the
// APIs. The caller must hold c.mu.
func (c *Client) connect(ctx context.Context) (Transport, error) {
	if c.transport != nil {
		return c.transport, nil
	}
	u := c.urls[c.next%len(c.urls)]
	c.next = (c.next + 1) % len(c.urls)

	parsed, err := url.Parse(u)
	if err != nil {
		return nil, fmt.Errorf("url.Parse(%q): %w", u, err)
	}
	var t Transport
	switch strings.ToLower(parsed.Scheme) {
	case "ws", "wss":
		ws, err := DialWS(ctx, u, BasicAuthHeader(c.user, c.password))
		if err != nil {
			return nil, err
		}
		ws.Timeout = c.timeout
		t = ws
	case "http", "https":
		h := NewHTTPTransport(u, c.user, c.password)
		h.Timeout = c.timeout
		t = h
	default:
		return nil, fmt.Errorf("unsupported url scheme %q", parsed.Scheme)
	}
	c.log.Debugf("Connected to %v", u)

	if c.user != "" {
		var ok bool
		if err := t.Call(ctx, "login_api", "login",
			[]interface{}{c.user, c.password}, &ok); err != nil {
			t.Close()
			return nil, fmt.Errorf("login_api.login: %w", err)
		}
		if !ok {
			t.Close()
			return nil, fmt.Errorf("login_api.login: %w", ErrNoAccessAPI)
		}
	}
	for _, api := range c.apis {
		if err := c.register(ctx, t, api); err != nil {
			t.Close()
			return nil, err
		}
	}
	c.transport = t
	return t, nil
}

func (c *Client) register(ctx context.Context, t Caller, api string) error {
	var id *int
	if err := t.Call(ctx, "login_api", "get_api_by_name",
		[]interface{}{api}, &id); err != nil {
		return fmt.Errorf("login_api.get_api_by_name(%q): %w", api, err)
	}
	if id == nil {
		return fmt.Errorf("%w: %v", ErrNoAccessAPI, api)
	}
	c.apiIDs[api] = *id
	return nil
}

// Registering reports whether APIs are registered after connecting.
func (c *Client) Registering() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.apis) > 0
}

// RegisterAPIs checks that the node grants access to apis. The apis are
// registered again after every reconnect.
func (c *Client) RegisterAPIs(ctx context.Context, apis ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, err := c.connect(ctx)
	if err != nil {
		return err
	}
	for _, api := range apis {
		if _, ok := c.apiIDs[api]; ok {
			continue
		}
		if err := c.register(ctx, t, api); err != nil {
			return err
		}
		c.apis = append(c.apis, api)
	}
	return nil
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	r := c.limiter.Reserve()
	if !r.OK() {
		return ErrRateLimited
	}
	d := r.Delay()
	if d == 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		r.Cancel()
		return ctx.Err()
	}
}

// Call makes the call on the current connection. Connection failures cause
// a reconnect to the next url, with exponential backoff, up to MaxRetries
// times. Errors returned by the node are returned as they are.
func (c *Client) Call(ctx context.Context, api, method string,
	params, result interface{}) (err error) {
	if err := c.wait(ctx); err != nil {
		return err
	}
	if c.observer != nil {
		start := time.Now()
		defer func() { c.observer(api, method, time.Since(start), err) }()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	backoff := DefaultBackoff
	for attempt := 0; ; attempt++ {
		var t Transport
		if t, err = c.connect(ctx); err == nil {
			err = t.Call(ctx, api, method, params, result)
			var nodeErr Error
			if err == nil || errors.As(err, &nodeErr) {
				return err
			}
			t.Close()
			c.transport = nil
		}
		if ctx.Err() != nil || attempt >= c.maxRetries {
			return err
		}
		c.log.Warnf("%v.%v: %v, reconnecting in %v", api, method, err, backoff)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
		backoff *= 2
	}
}

// Network identifies the chain from the symbol of current_supply.
func (c *Client) Network(ctx context.Context) (protocol.Chain, error) {
	var props struct {
		CurrentSupply string `json:"current_supply"`
	}
	if err := c.Call(ctx, "database_api", "get_dynamic_global_properties",
		nil, &props); err != nil {
		return protocol.Chain{}, err
	}
	fields := strings.Fields(props.CurrentSupply)
	if len(fields) != 2 {
		return protocol.Chain{}, fmt.Errorf("invalid current_supply %q",
			props.CurrentSupply)
	}
	return protocol.ChainBySymbol(fields[1])
}

// Close closes the current connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.transport == nil {
		return nil
	}
	err := c.transport.Close()
	c.transport = nil
	return err
}
