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
)

// HistoryBatchSize is the number of entries requested per page.
const HistoryBatchSize = 100

// HistoryOptions selects the entries yielded by AccountHistory.
type HistoryOptions struct {
	// First is the index of the newest entry. A negative First starts
	// at the newest entry of the account.
	First int64
	// Limit is the maximum number of entries yielded. Zero means no
	// limit.
	Limit int
	// OnlyOps yields only operations with these names, if not empty.
	OnlyOps []string
	// ExcludeOps skips operations with these names.
	ExcludeOps []string
}

func contains(list []string, s string) bool {
	for _, l := range list {
		if l == s {
			return true
		}
	}
	return false
}

// AccountHistory calls fn for each entry of the history of account, from
// newest to oldest.
func (a *API) AccountHistory(ctx context.Context, account string,
	opts HistoryOptions, fn func(*HistoryEntry) error) error {
	first := opts.First
	batch := int64(HistoryBatchSize)
	if first >= 0 && first < batch {
		batch = first
	}
	count := 0
	for first != 0 {
		entries, err := a.GetAccountHistory(ctx, account, first, uint32(batch))
		if err != nil {
			return err
		}
		for i := len(entries) - 1; i >= 0; i-- {
			entry := entries[i]
			name := entry.Op.Name()
			if contains(opts.ExcludeOps, name) {
				continue
			}
			if len(opts.OnlyOps) > 0 && !contains(opts.OnlyOps, name) {
				continue
			}
			if err := fn(entry); err != nil {
				if errors.Is(err, ErrStop) {
					return nil
				}
				return err
			}
			count++
			if opts.Limit > 0 && count >= opts.Limit {
				return nil
			}
		}
		if int64(len(entries)) < batch || len(entries) == 0 {
			return nil
		}
		first = entries[0].Index - 1
		if first <= 0 {
			return nil
		}
		if first < batch {
			batch = first
		}
	}
	return nil
}

// ListAccounts calls fn for every account name, in order, starting at
// start. Names are requested step at a time. A positive limit stops after
// limit names.
func (a *API) ListAccounts(ctx context.Context, start string, step uint32,
	limit int, fn func(name string) error) error {
	if step == 0 {
		step = 1000
	}
	count := 0
	for {
		names, err := a.LookupAccounts(ctx, start, step)
		if err != nil {
			return err
		}
		for _, name := range names {
			if err := fn(name); err != nil {
				if errors.Is(err, ErrStop) {
					return nil
				}
				return err
			}
			count++
			if limit > 0 && count >= limit {
				return nil
			}
		}
		if uint32(len(names)) < step {
			return nil
		}
		start = names[len(names)-1] + "\x00"
	}
}
