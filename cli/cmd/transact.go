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
	"io/ioutil"
	"os"
	"strconv"
	"strings"

	"github.com/posener/complete"
	"github.com/spf13/cobra"

	"github.com/Steem-Tools/steemgo/protocol"
	"github.com/Steem-Tools/steemgo/steem"
)

var transactCmplFlags = mergeFlags(apiCmplFlags, walletCmplFlags)

func parseAmount(amount, asset string) (protocol.Amount, error) {
	f, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return protocol.Amount{}, fmt.Errorf("invalid amount: %v", amount)
	}
	return protocol.AmountFromFloat(f, strings.ToUpper(asset))
}

// transferCmd represents the transfer command
var transferCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		DisableFlagsInUseLine: true,
		Use: `
transfer TO AMOUNT ASSET [MEMO] [--account FROM]`[1:],
		Short: "Transfer STEEM or SBD",
		Long: `
Transfer AMOUNT of ASSET (STEEM or SBD) from --account to TO.

A MEMO starting with # is encrypted with the memo keys of both accounts.
`[1:],
		Args: cobra.RangeArgs(3, 4),
		Run:  transfer,
	}
	rootCmd.AddCommand(cmd)
	rootCmplCmd.Sub["transfer"] = transferCmplCmd
	rootCmplCmd.Sub["help"].Sub["transfer"] = complete.Command{}
	generateCmplFlags(cmd, transferCmplCmd.Flags)
	return cmd
}()

var transferCmplCmd = complete.Command{
	Flags: mergeFlags(transactCmplFlags),
	Args:  complete.PredictAnything,
}

func transfer(_ *cobra.Command, args []string) {
	amount, err := parseAmount(args[1], args[2])
	if err != nil {
		log.Fatal(err)
	}
	var memoText string
	if len(args) > 3 {
		memoText = args[3]
	}
	s := newSteem(true)
	broadcast(s.Transfer(ctx, args[0], amount, memoText, ""))
}

// voteCmd represents the vote command
var voteCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		DisableFlagsInUseLine: true,
		Use: `
vote @AUTHOR/PERMLINK [WEIGHT] [--account VOTER]`[1:],
		Short: "Vote on a post or comment",
		Long: `
Vote on the post or comment @AUTHOR/PERMLINK with WEIGHT percent, between -100
and 100. WEIGHT defaults to 100. A negative WEIGHT is a downvote and 0 removes
the vote.
`[1:],
		Args: cobra.RangeArgs(1, 2),
		Run:  vote,
	}
	rootCmd.AddCommand(cmd)
	rootCmplCmd.Sub["vote"] = voteCmplCmd
	rootCmplCmd.Sub["help"].Sub["vote"] = complete.Command{}
	generateCmplFlags(cmd, voteCmplCmd.Flags)
	return cmd
}()

var voteCmplCmd = complete.Command{
	Flags: mergeFlags(transactCmplFlags),
}

func vote(_ *cobra.Command, args []string) {
	weight := 100.0
	if len(args) > 1 {
		var err error
		if weight, err = strconv.ParseFloat(args[1], 64); err != nil {
			log.Fatalf("invalid weight: %v", args[1])
		}
	}
	s := newSteem(true)
	broadcast(s.Vote(ctx, args[0], weight, ""))
}

var postOpts struct {
	steem.PostOptions
	File string
	Meta string
}

// postCmd represents the post command
var postCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		DisableFlagsInUseLine: true,
		Use: `
post --title TITLE [--file FILE] [--tags TAG,...] [--reply @AUTHOR/PERMLINK]`[1:],
		Short: "Publish a post or a reply",
		Long: `
Publish a post with the body read from --file, or from stdin.

The first of --tags is the category of the post, unless --category is given.
With --reply, a reply to @AUTHOR/PERMLINK is published instead.
`[1:],
		Args: cobra.ExactArgs(0),
		PreRunE: func(*cobra.Command, []string) error {
			if postOpts.Title == "" && postOpts.ReplyIdentifier == "" {
				return fmt.Errorf("--title is required for a new post")
			}
			return nil
		},
		Run: post,
	}
	flags := cmd.Flags()
	flags.StringVar(&postOpts.Title, "title", "", "Title of the post")
	flags.StringVarP(&postOpts.File, "file", "f", "-",
		"File with the body, - for stdin")
	flags.StringVar(&postOpts.Permlink, "permlink", "",
		"Permlink, derived from the title if empty")
	flags.StringVar(&postOpts.Category, "category", "", "Category of the post")
	flags.StringSliceVar(&postOpts.Tags, "tags", nil, "Comma separated tags")
	flags.StringVar(&postOpts.ReplyIdentifier, "reply", "",
		"@AUTHOR/PERMLINK of the parent post")
	flags.StringVar(&postOpts.Meta, "meta", "", "JSON metadata object")

	rootCmd.AddCommand(cmd)
	rootCmplCmd.Sub["post"] = postCmplCmd
	rootCmplCmd.Sub["help"].Sub["post"] = complete.Command{}
	generateCmplFlags(cmd, postCmplCmd.Flags)
	return cmd
}()

var postCmplCmd = complete.Command{
	Flags: mergeFlags(transactCmplFlags, complete.Flags{
		"--file": complete.PredictFiles("*"),
		"-f":     complete.PredictFiles("*"),
	}),
}

func post(_ *cobra.Command, _ []string) {
	var body []byte
	var err error
	if postOpts.File == "-" {
		body, err = ioutil.ReadAll(os.Stdin)
	} else {
		body, err = ioutil.ReadFile(postOpts.File)
	}
	if err != nil {
		log.Fatal(err)
	}
	opts := postOpts.PostOptions
	opts.Body = string(body)
	if postOpts.Meta != "" {
		if err := unmarshalMeta(postOpts.Meta, &opts.Meta); err != nil {
			log.Fatal(err)
		}
	}
	s := newSteem(true)
	broadcast(s.Post(ctx, opts))
}

var followOpts struct {
	What     []string
	Unfollow bool
}

// followCmd represents the follow command
var followCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		DisableFlagsInUseLine: true,
		Use: `
follow ACCOUNT [--what blog] [--unfollow] [--account FOLLOWER]`[1:],
		Short: "Follow or unfollow an account",
		Args:  cobra.ExactArgs(1),
		Run:   follow,
	}
	flags := cmd.Flags()
	flags.StringSliceVar(&followOpts.What, "what", []string{"blog"},
		"What to follow: blog, ignore")
	flags.BoolVar(&followOpts.Unfollow, "unfollow", false, "Unfollow ACCOUNT")

	rootCmd.AddCommand(cmd)
	rootCmplCmd.Sub["follow"] = followCmplCmd
	rootCmplCmd.Sub["help"].Sub["follow"] = complete.Command{}
	generateCmplFlags(cmd, followCmplCmd.Flags)
	return cmd
}()

var followCmplCmd = complete.Command{
	Flags: mergeFlags(transactCmplFlags, complete.Flags{
		"--what": complete.PredictSet("blog", "ignore"),
	}),
}

func follow(_ *cobra.Command, args []string) {
	s := newSteem(true)
	if followOpts.Unfollow {
		broadcast(s.Unfollow(ctx, args[0], ""))
		return
	}
	broadcast(s.Follow(ctx, args[0], followOpts.What, ""))
}

// resteemCmd represents the resteem command
var resteemCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		DisableFlagsInUseLine: true,
		Use: `
resteem @AUTHOR/PERMLINK [--account ACCOUNT]`[1:],
		Aliases: []string{"reblog"},
		Short:   "Resteem a post",
		Args:    cobra.ExactArgs(1),
		Run:     resteem,
	}
	rootCmd.AddCommand(cmd)
	rootCmplCmd.Sub["resteem"] = resteemCmplCmd
	rootCmplCmd.Sub["help"].Sub["resteem"] = complete.Command{}
	generateCmplFlags(cmd, resteemCmplCmd.Flags)
	return cmd
}()

var resteemCmplCmd = complete.Command{
	Flags: mergeFlags(transactCmplFlags),
}

func resteem(_ *cobra.Command, args []string) {
	s := newSteem(true)
	broadcast(s.Resteem(ctx, args[0], ""))
}
