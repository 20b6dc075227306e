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
	"sort"

	"github.com/posener/complete"
	"github.com/spf13/cobra"

	"github.com/Steem-Tools/steemgo/internal/db/config"
	"github.com/Steem-Tools/steemgo/keys"
)

// walletCmd represents the wallet command
var walletCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wallet",
		Short: "Manage the keys of the local wallet",
		Long: `
Manage the encrypted keys of the wallet at --wallet.

The private keys are encrypted with a key sealed by the wallet password. The
password is prompted for, or read from STEEMCLI_PASSWORD.
`[1:],
	}
	rootCmd.AddCommand(cmd)
	rootCmplCmd.Sub["wallet"] = walletCmplCmd
	rootCmplCmd.Sub["help"].Sub["wallet"] = complete.Command{
		Sub: complete.Commands{}}
	generateCmplFlags(cmd, walletCmplCmd.Flags)
	return cmd
}()

var walletCmplCmd = complete.Command{
	Flags: mergeFlags(walletCmplFlags),
	Sub:   complete.Commands{},
}

func addWalletCmd(cmd *cobra.Command, cmplCmd complete.Command) {
	name := cmd.Name()
	walletCmd.AddCommand(cmd)
	walletCmplCmd.Sub[name] = cmplCmd
	rootCmplCmd.Sub["help"].Sub["wallet"].Sub[name] = complete.Command{}
	generateCmplFlags(cmd, cmplCmd.Flags)
}

// walletCreateCmd represents the wallet create command
var walletCreateCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new wallet",
		Args:  cobra.ExactArgs(0),
		Run:   walletCreate,
	}
	addWalletCmd(cmd, complete.Command{Flags: mergeFlags(walletCmplFlags)})
	return cmd
}()

func walletCreate(cmd *cobra.Command, _ []string) {
	w := openWallet(nil, false, true)
	defer w.Close()
	created, err := w.Created(ctx)
	if err != nil {
		log.Fatal(err)
	}
	if created {
		log.Fatalf("wallet %v already exists", WalletPath)
	}
	password, err := newPassword("wallet")
	if err != nil {
		log.Fatal(err)
	}
	if err := w.Create(ctx, password); err != nil {
		log.Fatal(err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Created wallet", WalletPath)
}

// walletAddKeyCmd represents the wallet addkey command
var walletAddKeyCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		DisableFlagsInUseLine: true,
		Use: `
addkey [WIF...]`[1:],
		Aliases: []string{"import"},
		Short:   "Add private keys to the wallet",
		Long: `
Add each WIF private key to the wallet. If none is given, the key is prompted
for.
`[1:],
		Run: walletAddKey,
	}
	addWalletCmd(cmd, complete.Command{Flags: mergeFlags(walletCmplFlags)})
	return cmd
}()

func walletAddKey(cmd *cobra.Command, args []string) {
	w := openWallet(nil, true, false)
	defer w.Close()
	if len(args) == 0 {
		wif, err := readSecret("Private key (WIF): ")
		if err != nil {
			log.Fatal(err)
		}
		args = []string{wif}
	}
	for _, wif := range args {
		pub, err := w.AddPrivateKey(ctx, wif)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), pub)
	}
}

// walletDelKeyCmd represents the wallet delkey command
var walletDelKeyCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		DisableFlagsInUseLine: true,
		Use: `
delkey PUBKEY...`[1:],
		Aliases: []string{"remove"},
		Short:   "Remove the private keys of public keys from the wallet",
		Args:    cobra.MinimumNArgs(1),
		Run:     walletDelKey,
	}
	addWalletCmd(cmd, complete.Command{
		Flags: mergeFlags(walletCmplFlags),
		Args:  PredictPublicKeys,
	})
	return cmd
}()

func walletDelKey(cmd *cobra.Command, args []string) {
	pubs := make([]*keys.PublicKey, len(args))
	for i, arg := range args {
		pub, err := keys.NewPublicKeyWithPrefix(arg, chain.Prefix)
		if err != nil {
			log.Fatalf("%v: %v", arg, err)
		}
		pubs[i] = pub
	}
	w := openWallet(nil, true, false)
	defer w.Close()
	for _, pub := range pubs {
		if err := w.RemovePrivateKey(ctx, pub); err != nil {
			log.Fatal(err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Removed", pub)
	}
}

// walletListKeysCmd represents the wallet listkeys command
var walletListKeysCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listkeys",
		Short: "List the public keys of the wallet",
		Args:  cobra.ExactArgs(0),
		Run:   walletListKeys,
	}
	addWalletCmd(cmd, complete.Command{Flags: mergeFlags(walletCmplFlags)})
	return cmd
}()

func walletListKeys(cmd *cobra.Command, _ []string) {
	w := openWallet(nil, false, false)
	defer w.Close()
	pubs, err := w.PublicKeys(ctx)
	if err != nil {
		log.Fatal(err)
	}
	for _, pub := range pubs {
		fmt.Fprintln(cmd.OutOrStdout(), pub)
	}
}

// walletListAccountsCmd represents the wallet listaccounts command
var walletListAccountsCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listaccounts",
		Short: "List the accounts of the keys in the wallet",
		Args:  cobra.ExactArgs(0),
		Run:   walletListAccounts,
	}
	addWalletCmd(cmd, complete.Command{
		Flags: mergeFlags(apiCmplFlags, walletCmplFlags)})
	return cmd
}()

func walletListAccounts(cmd *cobra.Command, _ []string) {
	w := openWallet(connect(), false, false)
	defer w.Close()
	accounts, err := w.Accounts(ctx)
	if err != nil {
		log.Fatal(err)
	}
	sort.SliceStable(accounts, func(i, j int) bool {
		return accounts[i].Name < accounts[j].Name
	})
	for _, acc := range accounts {
		name, typ := acc.Name, acc.Type
		if name == "" {
			name, typ = "n/a", "n/a"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%-16v %-8v %v\n", name, typ, acc.PubKey)
	}
}

// walletSetCmd represents the wallet set command
var walletSetCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		DisableFlagsInUseLine: true,
		Use: `
set KEY [VALUE]`[1:],
		Short: "Set or clear a wallet setting",
		Long: fmt.Sprintf(`
Set the wallet setting KEY to VALUE, or clear it if VALUE is omitted.

Settings: %v.

The default accounts are used when --account is not given.
`[1:], config.Keys),
		Args: cobra.RangeArgs(1, 2),
		PreRunE: func(_ *cobra.Command, args []string) error {
			return validConfigKey(args[0])
		},
		Run: walletSet,
	}
	addWalletCmd(cmd, complete.Command{
		Flags: mergeFlags(walletCmplFlags),
		Args:  complete.PredictSet(config.Keys...),
	})
	return cmd
}()

func walletSet(cmd *cobra.Command, args []string) {
	var value string
	if len(args) > 1 {
		value = args[1]
	}
	w := openWallet(nil, false, false)
	defer w.Close()
	if err := w.SetConfig(ctx, args[0], value); err != nil {
		log.Fatal(err)
	}
	configs, err := w.Configs(ctx)
	if err != nil {
		log.Fatal(err)
	}
	printJSON(configs)
}
