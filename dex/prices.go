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

package dex

import "context"

// DefaultFeedWindow is the number of feed entries averaged by
// AvgWitnessPrice.
const DefaultFeedWindow = 10

// AvgWitnessPrice averages the SBD per STEEM of the take newest entries of
// the feed history. A take of zero or less means DefaultFeedWindow.
func (d *Dex) AvgWitnessPrice(ctx context.Context, take int) (float64, error) {
	if take <= 0 {
		take = DefaultFeedWindow
	}
	feed, err := d.steem.API.GetFeedHistory(ctx)
	if err != nil {
		return 0, err
	}
	prices := feed.PriceHistory
	if len(prices) == 0 {
		return 0, ErrEmptyFeed
	}
	if take < len(prices) {
		prices = prices[len(prices)-take:]
	}
	var sum float64
	for _, p := range prices {
		sum += p.Base.Float64()
	}
	return sum / float64(len(prices)), nil
}

// Spread returns the spread of the internal market in percent of the
// lowest ask.
func (d *Dex) Spread(ctx context.Context) (float64, error) {
	book, err := d.OrderBook(ctx, 1)
	if err != nil {
		return 0, err
	}
	if len(book.Bids) == 0 || len(book.Asks) == 0 {
		return 0, ErrEmptyOrderBook
	}
	return SpreadPct(book.Bids[0].Price, book.Asks[0].Price), nil
}

// SpreadPct returns the spread between bid and ask in percent of ask.
func SpreadPct(bid, ask float64) float64 {
	if ask == 0 {
		return 0
	}
	return (1 - bid/ask) * 100
}

// ImpliedPrice is the price of base in quote derived from the prices of
// both in a third asset, such as STEEM/SBD from their BTC prices.
func ImpliedPrice(baseBTC, quoteBTC float64) float64 {
	if quoteBTC == 0 {
		return 0
	}
	return baseBTC / quoteBTC
}

// ImpliedUSD converts a BTC price into USD.
func ImpliedUSD(btcPrice, btcUSD float64) float64 {
	return btcPrice * btcUSD
}
