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

package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/posener/complete"
	"github.com/spf13/cobra"

	"github.com/Steem-Tools/steemgo/dex"
)

func newDex(sign bool) *dex.Dex {
	d, err := dex.New(ctx, newSteem(sign))
	if err != nil {
		log.Fatal(err)
	}
	return d
}

var orderOpts dex.OrderOptions

func newOrderCmd(use, short string, run func(*cobra.Command, []string)) *cobra.Command {
	cmd := &cobra.Command{
		DisableFlagsInUseLine: true,
		Use: fmt.Sprintf(`
%v AMOUNT ASSET PRICE [--account ACCOUNT]`[1:], use),
		Short: short,
		Long: fmt.Sprintf(`
Place an order to %v AMOUNT of ASSET (STEEM or SBD) at PRICE units of the
other asset per ASSET.
`[1:], use),
		Args: cobra.ExactArgs(3),
		Run:  run,
	}
	flags := cmd.Flags()
	flags.DurationVar(&orderOpts.Expiration, "orderexpiration",
		dex.DefaultOrderExpiration, "Time until the order expires")
	flags.BoolVar(&orderOpts.FillOrKill, "fillorkill", false,
		"Cancel the order unless it is filled immediately")
	flags.Uint32Var(&orderOpts.OrderID, "orderid", 0, "Order ID, random if 0")

	cmplCmd := complete.Command{
		Flags: mergeFlags(transactCmplFlags),
		Args:  complete.PredictSet("STEEM", "SBD"),
	}
	rootCmd.AddCommand(cmd)
	rootCmplCmd.Sub[use] = cmplCmd
	rootCmplCmd.Sub["help"].Sub[use] = complete.Command{}
	generateCmplFlags(cmd, cmplCmd.Flags)
	return cmd
}

// buyCmd represents the buy command
var buyCmd = newOrderCmd("buy", "Buy STEEM or SBD on the internal market",
	func(_ *cobra.Command, args []string) {
		amount, asset, price := parseOrderArgs(args)
		broadcast(newDex(true).Buy(ctx, amount, asset, price, orderOpts))
	})

// sellCmd represents the sell command
var sellCmd = newOrderCmd("sell", "Sell STEEM or SBD on the internal market",
	func(_ *cobra.Command, args []string) {
		amount, asset, price := parseOrderArgs(args)
		broadcast(newDex(true).Sell(ctx, amount, asset, price, orderOpts))
	})

func parseOrderArgs(args []string) (float64, string, float64) {
	amount, err := strconv.ParseFloat(args[0], 64)
	if err != nil || amount <= 0 {
		log.Fatalf("invalid amount: %v", args[0])
	}
	price, err := strconv.ParseFloat(args[2], 64)
	if err != nil || price <= 0 {
		log.Fatalf("invalid price: %v", args[2])
	}
	return amount, strings.ToUpper(args[1]), price
}

// cancelCmd represents the cancel command
var cancelCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		DisableFlagsInUseLine: true,
		Use: `
cancel ORDERID [--account ACCOUNT]`[1:],
		Short: "Cancel an open order",
		Args:  cobra.ExactArgs(1),
		Run:   cancelOrder,
	}
	rootCmd.AddCommand(cmd)
	rootCmplCmd.Sub["cancel"] = cancelCmplCmd
	rootCmplCmd.Sub["help"].Sub["cancel"] = complete.Command{}
	generateCmplFlags(cmd, cancelCmplCmd.Flags)
	return cmd
}()

var cancelCmplCmd = complete.Command{
	Flags: mergeFlags(transactCmplFlags),
}

func cancelOrder(_ *cobra.Command, args []string) {
	id, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		log.Fatalf("invalid order id: %v", args[0])
	}
	broadcast(newDex(true).Cancel(ctx, uint32(id), ""))
}

var orderBookLimit uint32

// orderBookCmd represents the orderbook command
var orderBookCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "orderbook",
		Aliases: []string{"book"},
		Short:   "Show the bids and asks of the internal market",
		Args:    cobra.ExactArgs(0),
		Run:     orderBook,
	}
	cmd.Flags().Uint32Var(&orderBookLimit, "limit", 25,
		"Number of bids and asks")
	rootCmd.AddCommand(cmd)
	rootCmplCmd.Sub["orderbook"] = orderBookCmplCmd
	rootCmplCmd.Sub["help"].Sub["orderbook"] = complete.Command{}
	generateCmplFlags(cmd, orderBookCmplCmd.Flags)
	return cmd
}()

var orderBookCmplCmd = complete.Command{
	Flags: mergeFlags(apiCmplFlags),
}

func orderBook(_ *cobra.Command, _ []string) {
	book, err := newDex(false).OrderBook(ctx, orderBookLimit)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%12v %14v %14v | %12v %14v %14v\n",
		"Bid", "SBD", "STEEM", "Ask", "SBD", "STEEM")
	for i := 0; i < len(book.Bids) || i < len(book.Asks); i++ {
		var bid, ask string
		if i < len(book.Bids) {
			b := book.Bids[i]
			bid = fmt.Sprintf("%12.6f %14.3f %14.3f", b.Price, b.SBD, b.Steem)
		} else {
			bid = fmt.Sprintf("%42v", "")
		}
		if i < len(book.Asks) {
			a := book.Asks[i]
			ask = fmt.Sprintf("%12.6f %14.3f %14.3f", a.Price, a.SBD, a.Steem)
		}
		fmt.Printf("%v | %v\n", bid, ask)
	}
}

var tickerTrades time.Duration

// tickerCmd represents the ticker command
var tickerCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ticker",
		Short: "Show the ticker of the internal market",
		Args:  cobra.ExactArgs(0),
		Run:   ticker,
	}
	cmd.Flags().DurationVar(&tickerTrades, "trades", 0,
		"Also show the trades of this last period (i.e. 1h)")
	rootCmd.AddCommand(cmd)
	rootCmplCmd.Sub["ticker"] = tickerCmplCmd
	rootCmplCmd.Sub["help"].Sub["ticker"] = complete.Command{}
	generateCmplFlags(cmd, tickerCmplCmd.Flags)
	return cmd
}()

var tickerCmplCmd = complete.Command{
	Flags: mergeFlags(apiCmplFlags),
}

func ticker(_ *cobra.Command, _ []string) {
	d := newDex(false)
	t, err := d.Ticker(ctx)
	if err != nil {
		log.Fatal(err)
	}
	printJSON(t)
	if tickerTrades == 0 {
		return
	}
	trades, err := d.TradeHistory(ctx, tickerTrades, dex.MaxTradeHistoryLimit)
	if err != nil {
		log.Fatal(err)
	}
	printJSON(trades)
}
