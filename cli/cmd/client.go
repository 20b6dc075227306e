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
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Steem-Tools/steemgo/api"
	"github.com/Steem-Tools/steemgo/internal/db/config"
	"github.com/Steem-Tools/steemgo/steem"
	"github.com/Steem-Tools/steemgo/txbuilder"
	"github.com/Steem-Tools/steemgo/wallet"
)

var errNoWallet = errors.New(`no wallet, create one with "steem-cli wallet create"`)

// openWallet opens the wallet at WalletPath. It is unlocked if unlock is
// true. The wallet must exist unless create is true.
func openWallet(a *api.API, unlock, create bool) *wallet.Wallet {
	if _, err := os.Stat(WalletPath); os.IsNotExist(err) && !create {
		log.Fatal(errNoWallet)
	}
	opts := []wallet.Option{
		wallet.WithPrefix(chain.Prefix),
		wallet.WithLogger(log.WithField("pkg", "wallet")),
	}
	if a != nil {
		opts = append(opts, wallet.WithAPI(a))
	}
	w, err := wallet.Open(ctx, WalletPath, opts...)
	if err != nil {
		log.Fatal(err)
	}
	if !unlock {
		return w
	}
	created, err := w.Created(ctx)
	if err != nil {
		log.Fatal(err)
	}
	if !created {
		log.Fatal(errNoWallet)
	}
	password, err := walletPassword()
	if err != nil {
		log.Fatal(err)
	}
	if err := w.Unlock(ctx, password); err != nil {
		log.Fatal(err)
	}
	return w
}

// newSteem returns a Steem using the nodes and the wallet. The wallet is
// only unlocked when transactions are signed.
func newSteem(sign bool) *steem.Steem {
	a := connect()
	var w *wallet.Wallet
	if _, err := os.Stat(WalletPath); err == nil || sign && !Unsigned {
		w = openWallet(a, sign && !Unsigned, false)
	}
	s := steem.New(a, w,
		steem.WithChain(chain),
		steem.WithExpiration(Expiration),
		steem.WithNoBroadcast(NoBroadcast),
		steem.WithUnsigned(Unsigned),
		steem.WithDefaultAccount(Account),
		steem.WithDefaultAuthor(Account),
		steem.WithDefaultVoter(Account),
		steem.WithLogger(log.WithField("pkg", "steem")))
	if err := s.LoadDefaults(ctx); err != nil {
		log.Fatal(err)
	}
	return s
}

// broadcast broadcasts the transaction of b and prints it.
func broadcast(b *txbuilder.Builder, err error) {
	if err != nil {
		log.Fatal(err)
	}
	if err := b.Broadcast(ctx); err != nil {
		log.Fatal(err)
	}
	data, err := b.JSON()
	if err != nil {
		log.Fatal(err)
	}
	printJSON(json.RawMessage(data))
}

func printJSON(v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(string(data))
}

// validConfigKey reports whether key is a wallet setting.
func validConfigKey(key string) error {
	for _, k := range config.Keys {
		if k == key {
			return nil
		}
	}
	return fmt.Errorf("invalid key %q, must be one of: %v",
		key, strings.Join(config.Keys, ", "))
}

func unmarshalMeta(data string, meta *map[string]interface{}) error {
	if err := json.Unmarshal([]byte(data), meta); err != nil {
		return fmt.Errorf("invalid metadata: %w", err)
	}
	return nil
}
