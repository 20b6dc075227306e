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

// Package dex trades on the internal STEEM:SBD market. Prices are in SBD
// per STEEM.
package dex

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/Steem-Tools/steemgo/api"
	"github.com/Steem-Tools/steemgo/keys"
	"github.com/Steem-Tools/steemgo/protocol"
	"github.com/Steem-Tools/steemgo/steem"
	"github.com/Steem-Tools/steemgo/txbuilder"
)

var (
	ErrUnknownAsset   = errors.New("unknown asset")
	ErrLimitTooLarge  = errors.New("limit must not be larger than 100")
	ErrEmptyOrderBook = errors.New("order book is empty")
	ErrEmptyFeed      = errors.New("feed history is empty")
)

const (
	// DefaultOrderExpiration is the lifetime of an order when
	// OrderOptions.Expiration is zero.
	DefaultOrderExpiration = 7 * 24 * time.Hour

	MaxTradeHistoryLimit = 100
)

// Dex wraps the market calls of a Steem.
type Dex struct {
	steem *steem.Steem
	now   func() time.Time
}

// New returns a Dex for s and registers the market_history_api with the
// node when needed.
func New(ctx context.Context, s *steem.Steem) (*Dex, error) {
	if err := s.API.RequireAPIs(ctx, api.MarketHistoryAPI); err != nil {
		return nil, err
	}
	return &Dex{steem: s, now: time.Now}, nil
}

// assets returns the quote and base asset of the market. The base is the
// other of STEEM and SBD.
func (d *Dex) assets(quote string) (string, string, error) {
	chain := d.steem.Chain()
	switch quote {
	case chain.SteemSymbol:
		return quote, chain.SBDSymbol, nil
	case chain.SBDSymbol:
		return quote, chain.SteemSymbol, nil
	}
	return "", "", fmt.Errorf("%w: %q, must be %v or %v", ErrUnknownAsset,
		quote, chain.SteemSymbol, chain.SBDSymbol)
}

func (d *Dex) Ticker(ctx context.Context) (*api.Ticker, error) {
	return d.steem.API.GetTicker(ctx)
}

// Volume24h returns the volume of the last 24 hours.
func (d *Dex) Volume24h(ctx context.Context) (*api.Volume, error) {
	return d.steem.API.GetVolume(ctx)
}

// BookEntry is an order of the order book with whole units.
type BookEntry struct {
	Price float64 `json:"price"`
	SBD   float64 `json:"sbd"`
	Steem float64 `json:"steem"`
}

type OrderBook struct {
	Bids []BookEntry `json:"bids"`
	Asks []BookEntry `json:"asks"`
}

func bookEntries(orders []api.Order) []BookEntry {
	entries := make([]BookEntry, len(orders))
	for i, o := range orders {
		entries[i] = BookEntry{
			Price: float64(o.RealPrice),
			SBD:   float64(o.SBD) / 1e3,
			Steem: float64(o.Steem) / 1e3,
		}
	}
	return entries
}

// OrderBook returns up to limit bids and asks.
func (d *Dex) OrderBook(ctx context.Context, limit uint32) (*OrderBook, error) {
	book, err := d.steem.API.GetOrderBook(ctx, limit)
	if err != nil {
		return nil, err
	}
	return &OrderBook{Bids: bookEntries(book.Bids), Asks: bookEntries(book.Asks)}, nil
}

// LowestAsk returns the first ask of the order book.
func (d *Dex) LowestAsk(ctx context.Context) (*BookEntry, error) {
	book, err := d.OrderBook(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(book.Asks) == 0 {
		return nil, fmt.Errorf("%w: no asks", ErrEmptyOrderBook)
	}
	return &book.Asks[0], nil
}

// HighestBid returns the first bid of the order book.
func (d *Dex) HighestBid(ctx context.Context) (*BookEntry, error) {
	book, err := d.OrderBook(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(book.Bids) == 0 {
		return nil, fmt.Errorf("%w: no bids", ErrEmptyOrderBook)
	}
	return &book.Bids[0], nil
}

// Balances returns the balances of account.
func (d *Dex) Balances(ctx context.Context, account string) (*steem.Balances, error) {
	return d.steem.GetBalances(ctx, account)
}

// OpenOrders returns the orders of account that are not filled.
func (d *Dex) OpenOrders(ctx context.Context, account string) ([]*api.OpenOrder, error) {
	account, err := d.account(account)
	if err != nil {
		return nil, err
	}
	return d.steem.API.GetOpenOrders(ctx, account)
}

// TradeHistory returns up to limit trades of the last window.
func (d *Dex) TradeHistory(ctx context.Context, window time.Duration,
	limit uint32) ([]*api.Trade, error) {
	if limit > MaxTradeHistoryLimit {
		return nil, fmt.Errorf("%w: %v", ErrLimitTooLarge, limit)
	}
	now := d.now()
	return d.steem.API.GetTradeHistory(ctx, now.Add(-window), now, limit)
}

// MarketHistoryBuckets returns the available bucket sizes in seconds.
func (d *Dex) MarketHistoryBuckets(ctx context.Context) ([]uint32, error) {
	return d.steem.API.GetMarketHistoryBuckets(ctx)
}

// MarketHistory returns the buckets of bucketSeconds width from startAge
// before stopAge until stopAge ago.
func (d *Dex) MarketHistory(ctx context.Context, bucketSeconds uint32,
	startAge, stopAge time.Duration) ([]*api.MarketBucket, error) {
	now := d.now()
	start := now.Add(-startAge - stopAge)
	stop := now.Add(-stopAge)
	return d.steem.API.GetMarketHistory(ctx, bucketSeconds, start, stop)
}

// OrderOptions control a new limit order.
type OrderOptions struct {
	// Expiration defaults to DefaultOrderExpiration.
	Expiration time.Duration
	FillOrKill bool
	// Account defaults to the default account.
	Account string
	// OrderID is random when zero.
	OrderID uint32
}

func (d *Dex) account(account string) (string, error) {
	if account != "" {
		return account, nil
	}
	if d.steem.DefaultAccount != "" {
		return d.steem.DefaultAccount, nil
	}
	return "", steem.ErrNoAccount
}

// Buy amount of quote, paying amount*rate of the other asset.
func (d *Dex) Buy(ctx context.Context, amount float64, quote string,
	rate float64, opts OrderOptions) (*txbuilder.Builder, error) {
	quote, base, err := d.assets(quote)
	if err != nil {
		return nil, err
	}
	return d.order(ctx, amount*rate, base, amount, quote, opts)
}

// Sell amount of quote, receiving at least amount*rate of the other asset.
func (d *Dex) Sell(ctx context.Context, amount float64, quote string,
	rate float64, opts OrderOptions) (*txbuilder.Builder, error) {
	quote, base, err := d.assets(quote)
	if err != nil {
		return nil, err
	}
	return d.order(ctx, amount, quote, amount*rate, base, opts)
}

func (d *Dex) order(ctx context.Context, sell float64, sellSymbol string,
	receive float64, receiveSymbol string,
	opts OrderOptions) (*txbuilder.Builder, error) {
	account, err := d.account(opts.Account)
	if err != nil {
		return nil, err
	}
	toSell, err := protocol.AmountFromFloat(sell, sellSymbol)
	if err != nil {
		return nil, err
	}
	toReceive, err := protocol.AmountFromFloat(receive, receiveSymbol)
	if err != nil {
		return nil, err
	}
	if opts.Expiration == 0 {
		opts.Expiration = DefaultOrderExpiration
	}
	if opts.OrderID == 0 {
		if opts.OrderID, err = randomOrderID(); err != nil {
			return nil, err
		}
	}
	op := &protocol.LimitOrderCreate{
		Owner:        account,
		OrderID:      opts.OrderID,
		AmountToSell: toSell,
		MinToReceive: toReceive,
		FillOrKill:   opts.FillOrKill,
		Expiration:   protocol.NewTime(d.now().Add(opts.Expiration)),
	}
	return d.steem.FinalizeOp(ctx, account, keys.RoleActive, op)
}

func randomOrderID() (uint32, error) {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

// Cancel the order orderID of account.
func (d *Dex) Cancel(ctx context.Context, orderID uint32,
	account string) (*txbuilder.Builder, error) {
	account, err := d.account(account)
	if err != nil {
		return nil, err
	}
	op := &protocol.LimitOrderCancel{Owner: account, OrderID: orderID}
	return d.steem.FinalizeOp(ctx, account, keys.RoleActive, op)
}

// Transfer is steem.Steem.Transfer.
func (d *Dex) Transfer(ctx context.Context, to string, amount protocol.Amount,
	memo, account string) (*txbuilder.Builder, error) {
	return d.steem.Transfer(ctx, to, amount, memo, account)
}
