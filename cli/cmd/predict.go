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
	"os"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/posener/complete"

	"github.com/Steem-Tools/steemgo/protocol"
	"github.com/Steem-Tools/steemgo/wallet"
)

// parseWalletFlags parses the wallet flags from the line being completed.
func parseWalletFlags() error {
	args := strings.Fields(os.Getenv("COMP_LINE"))[1:]
	if err := walletFlags.Parse(args); err != nil {
		return err
	}
	path, err := homedir.Expand(WalletPath)
	if err != nil {
		return err
	}
	WalletPath = path
	return nil
}

// PredictOpNames completes operation names not yet given.
var PredictOpNames complete.PredictFunc = func(args complete.Args) []string {
	completed := make(map[string]struct{}, len(args.Completed))
	for _, arg := range args.Completed {
		for _, name := range strings.Split(arg, ",") {
			completed[name] = struct{}{}
		}
	}
	var names []string
	for _, name := range protocol.OpNames() {
		if _, ok := completed[name]; ok {
			continue
		}
		names = append(names, name)
	}
	return names
}

// PredictPublicKeys completes the public keys of the wallet. It does not
// need the wallet to be unlocked.
var PredictPublicKeys complete.PredictFunc = func(args complete.Args) []string {
	if err := parseWalletFlags(); err != nil {
		return nil
	}
	if _, err := os.Stat(WalletPath); err != nil {
		return nil
	}
	w, err := wallet.Open(ctx, WalletPath)
	if err != nil {
		return nil
	}
	defer w.Close()
	pubs, err := w.PublicKeys(ctx)
	if err != nil {
		return nil
	}
	completed := make(map[string]struct{}, len(args.Completed))
	for _, arg := range args.Completed {
		completed[arg] = struct{}{}
	}
	var strs []string
	for _, pub := range pubs {
		if _, ok := completed[pub.String()]; ok {
			continue
		}
		strs = append(strs, pub.String())
	}
	return strs
}
