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
	"time"

	"github.com/Steem-Tools/steemgo/protocol"
)

func (a *API) GetTicker(ctx context.Context) (*Ticker, error) {
	var ticker Ticker
	if err := a.Call(ctx, MarketHistoryAPI, "get_ticker",
		nil, &ticker); err != nil {
		return nil, err
	}
	return &ticker, nil
}

func (a *API) GetVolume(ctx context.Context) (*Volume, error) {
	var volume Volume
	if err := a.Call(ctx, MarketHistoryAPI, "get_volume",
		nil, &volume); err != nil {
		return nil, err
	}
	return &volume, nil
}

func (a *API) GetOrderBook(ctx context.Context, limit uint32) (*OrderBook, error) {
	var book OrderBook
	if err := a.Call(ctx, MarketHistoryAPI, "get_order_book",
		[]interface{}{limit}, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

func (a *API) GetTradeHistory(ctx context.Context,
	start, end time.Time, limit uint32) ([]*Trade, error) {
	var trades []*Trade
	if err := a.Call(ctx, MarketHistoryAPI, "get_trade_history",
		[]interface{}{protocol.NewTime(start), protocol.NewTime(end), limit},
		&trades); err != nil {
		return nil, err
	}
	return trades, nil
}

func (a *API) GetRecentTrades(ctx context.Context, limit uint32) ([]*Trade, error) {
	var trades []*Trade
	if err := a.Call(ctx, MarketHistoryAPI, "get_recent_trades",
		[]interface{}{limit}, &trades); err != nil {
		return nil, err
	}
	return trades, nil
}

// GetMarketHistory returns the buckets of bucketSeconds width between start
// and end.
func (a *API) GetMarketHistory(ctx context.Context,
	bucketSeconds uint32, start, end time.Time) ([]*MarketBucket, error) {
	var buckets []*MarketBucket
	if err := a.Call(ctx, MarketHistoryAPI, "get_market_history",
		[]interface{}{bucketSeconds,
			protocol.NewTime(start), protocol.NewTime(end)},
		&buckets); err != nil {
		return nil, err
	}
	return buckets, nil
}

func (a *API) GetMarketHistoryBuckets(ctx context.Context) ([]uint32, error) {
	var buckets []uint32
	if err := a.Call(ctx, MarketHistoryAPI, "get_market_history_buckets",
		nil, &buckets); err != nil {
		return nil, err
	}
	return buckets, nil
}
