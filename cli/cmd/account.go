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
	"encoding/json"
	"fmt"
	"os"

	"github.com/posener/complete"
	"github.com/spf13/cobra"

	"github.com/Steem-Tools/steemgo/api"
)

// accountCmd represents the account command
var accountCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		DisableFlagsInUseLine: true,
		Use: `
account NAME`[1:],
		Short: "Show an account",
		Long: `
Show the account NAME as returned by the node. With --export, also show its
reputation, steem power, profile, followers and curation rewards.
`[1:],
		Args: cobra.ExactArgs(1),
		Run:  getAccount,
	}
	cmd.Flags().BoolVar(&exportAccount, "export", false,
		"Include the values derived from the account")
	rootCmd.AddCommand(cmd)
	rootCmplCmd.Sub["account"] = accountCmplCmd
	rootCmplCmd.Sub["help"].Sub["account"] = complete.Command{}
	generateCmplFlags(cmd, accountCmplCmd.Flags)
	return cmd
}()

var accountCmplCmd = complete.Command{
	Flags: mergeFlags(apiCmplFlags, walletCmplFlags),
}

var exportAccount bool

func getAccount(_ *cobra.Command, args []string) {
	if !exportAccount {
		acc, err := connect().GetAccount(ctx, args[0])
		if err != nil {
			log.Fatal(err)
		}
		printJSON(acc)
		return
	}
	acc, err := newSteem(false).GetAccount(ctx, args[0])
	if err != nil {
		log.Fatal(err)
	}
	exp, err := acc.Export(ctx)
	if err != nil {
		log.Fatal(err)
	}
	printJSON(exp)
}

// witnessCmd represents the witness command
var witnessCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		DisableFlagsInUseLine: true,
		Use: `
witness NAME`[1:],
		Short: "Show a witness",
		Args:  cobra.ExactArgs(1),
		Run:   getWitness,
	}
	rootCmd.AddCommand(cmd)
	rootCmplCmd.Sub["witness"] = witnessCmplCmd
	rootCmplCmd.Sub["help"].Sub["witness"] = complete.Command{}
	generateCmplFlags(cmd, witnessCmplCmd.Flags)
	return cmd
}()

var witnessCmplCmd = complete.Command{
	Flags: mergeFlags(apiCmplFlags),
}

func getWitness(_ *cobra.Command, args []string) {
	w, err := connect().GetWitnessByAccount(ctx, args[0])
	if err != nil {
		log.Fatal(err)
	}
	printJSON(w)
}

// balanceCmd represents the balance command
var balanceCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		DisableFlagsInUseLine: true,
		Use: `
balance [NAME]`[1:],
		Aliases: []string{"balances"},
		Short:   "Show the balances of an account",
		Long: `
Show the liquid, vesting and savings balances of NAME, or of --account.
`[1:],
		Args: cobra.MaximumNArgs(1),
		Run:  getBalance,
	}
	rootCmd.AddCommand(cmd)
	rootCmplCmd.Sub["balance"] = balanceCmplCmd
	rootCmplCmd.Sub["help"].Sub["balance"] = complete.Command{}
	generateCmplFlags(cmd, balanceCmplCmd.Flags)
	return cmd
}()

var balanceCmplCmd = complete.Command{
	Flags: mergeFlags(apiCmplFlags, walletCmplFlags),
}

func getBalance(_ *cobra.Command, args []string) {
	var name string
	if len(args) > 0 {
		name = args[0]
	}
	s := newSteem(false)
	b, err := s.GetBalances(ctx, name)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%-16v %v\n", "STEEM", b.Balance)
	fmt.Printf("%-16v %v\n", "SBD", b.SBDBalance)
	fmt.Printf("%-16v %v (%v)\n", "VESTS", b.VestingShares, b.VestingSharesSteem)
	fmt.Printf("%-16v %v\n", "Savings STEEM", b.SavingsBalance)
	fmt.Printf("%-16v %v\n", "Savings SBD", b.SavingsSBDBalance)
}

var historyOpts api.HistoryOptions

// historyCmd represents the history command
var historyCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		DisableFlagsInUseLine: true,
		Use: `
history [NAME]`[1:],
		Short: "Show the account history, newest first",
		Long: `
Print the history entries of NAME, or of --account, newest first, one JSON
object per line.

Use --only or --exclude to filter operations by name.
`[1:],
		Args: cobra.MaximumNArgs(1),
		Run:  getHistory,
	}
	flags := cmd.Flags()
	flags.Int64Var(&historyOpts.First, "first", -1,
		"Index of the newest entry, -1 for the latest")
	flags.IntVar(&historyOpts.Limit, "limit", 100,
		"Maximum number of entries, 0 for all")
	flags.StringSliceVar(&historyOpts.OnlyOps, "only", nil,
		"Only show these operations")
	flags.StringSliceVar(&historyOpts.ExcludeOps, "exclude", nil,
		"Do not show these operations")

	rootCmd.AddCommand(cmd)
	rootCmplCmd.Sub["history"] = historyCmplCmd
	rootCmplCmd.Sub["help"].Sub["history"] = complete.Command{}
	generateCmplFlags(cmd, historyCmplCmd.Flags)
	return cmd
}()

var historyCmplCmd = complete.Command{
	Flags: mergeFlags(apiCmplFlags, walletCmplFlags, complete.Flags{
		"--only":    PredictOpNames,
		"--exclude": PredictOpNames,
	}),
}

type historyLine struct {
	Index int64 `json:"index"`
	*api.HistoryEntry
}

func getHistory(_ *cobra.Command, args []string) {
	var name string
	if len(args) > 0 {
		name = args[0]
	}
	s := newSteem(false)
	enc := json.NewEncoder(os.Stdout)
	err := s.GetAccountHistory(ctx, name, historyOpts,
		func(e *api.HistoryEntry) error {
			return enc.Encode(historyLine{Index: e.Index, HistoryEntry: e})
		})
	if err != nil {
		log.Fatal(err)
	}
}
