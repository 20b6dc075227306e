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
	"fmt"
	"regexp"

	jsonrpc2 "github.com/AdamSLevy/jsonrpc2/v14"
)

// Errors for well known assertion failures reported by nodes.
var (
	ErrAlreadyTransactedThisBlock = errors.New("account already transacted this block")
	ErrMissingPostingAuthority    = errors.New("missing required posting authority")
	ErrVoteWeightTooSmall         = errors.New("voting weight is too small")
	ErrOnlyVoteOnceEvery3Seconds  = errors.New("can only vote once every 3 seconds")
	ErrAlreadyVotedSimilarly      = errors.New("already voted in a similar way")
	ErrPostOnlyEvery5Min          = errors.New("may only post once every 5 minutes")
	ErrDuplicateTransaction       = errors.New("duplicate transaction")
	ErrExceededBandwidth          = errors.New("account exceeded maximum allowed bandwidth")
	ErrNoMethod                   = errors.New("no method with name")
)

var (
	ErrNoAccessAPI = errors.New("no access to API")
	ErrClosed      = errors.New("connection closed")
	ErrTimeout     = fmt.Errorf("rpc timeout: %w", context.DeadlineExceeded)
	ErrNoNodes     = errors.New("no node urls")
)

var assertMessages = map[string]error{
	"Account already transacted this block.":                                          ErrAlreadyTransactedThisBlock,
	"missing required posting authority":                                              ErrMissingPostingAuthority,
	"Voting weight is too small, please accumulate more voting power or steem power.": ErrVoteWeightTooSmall,
	"Can only vote once every 3 seconds.":                                             ErrOnlyVoteOnceEvery3Seconds,
	"You have already voted in a similar way.":                                        ErrAlreadyVotedSimilarly,
	"You may only post once every 5 minutes.":                                         ErrPostOnlyEvery5Min,
	"Duplicate transaction check failed":                                              ErrDuplicateTransaction,
	"Account exceeded maximum allowed bandwidth per vesting share.":                   ErrExceededBandwidth,
}

var (
	assertRegexp   = regexp.MustCompile(`10 assert_exception: Assert Exception\n.*: (.*)\n`)
	noMethodRegexp = regexp.MustCompile(`^no method with name`)
)

// Error is an error returned by a node.
type Error struct {
	Err jsonrpc2.Error
	// Assert is the message of a failed assertion, if any.
	Assert string

	known error
}

// NewError decodes the assertion message of err.
func NewError(err jsonrpc2.Error) Error {
	e := Error{Err: err}
	msg := err.Message
	if data, ok := err.Data.(map[string]interface{}); ok {
		if m, ok := data["message"].(string); ok && msg == "" {
			msg = m
		}
	}
	if match := assertRegexp.FindStringSubmatch(msg); match != nil {
		e.Assert = match[1]
		e.known = assertMessages[e.Assert]
	} else if noMethodRegexp.MatchString(msg) {
		e.known = ErrNoMethod
	}
	return e
}

func (e Error) Error() string {
	if e.Assert != "" {
		return fmt.Sprintf("node error %v: %v", int(e.Err.Code), e.Assert)
	}
	return fmt.Sprintf("node error %v: %v", int(e.Err.Code), e.Err.Message)
}

// Unwrap returns the sentinel error of a well known assertion.
func (e Error) Unwrap() error {
	return e.known
}

// IsNullResult reports whether err is what jsonrpc2.Client.Request returns
// for a successful response whose result is null, as for void methods.
func IsNullResult(err error) bool {
	var e jsonrpc2.ErrorUnexpectedHTTPResponse
	if !errors.As(err, &e) {
		return false
	}
	var res struct {
		JSONRPC string          `json:"jsonrpc"`
		Result  json.RawMessage `json:"result"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(e.Body, &res); err != nil ||
		res.JSONRPC != "2.0" {
		return false
	}
	if len(res.Error) > 0 && string(res.Error) != "null" {
		return false
	}
	return len(res.Result) == 0 || string(res.Result) == "null"
}
