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
	"io"

	"github.com/posener/complete"
	"github.com/spf13/cobra"

	"github.com/Steem-Tools/steemgo/keys"
	"github.com/Steem-Tools/steemgo/memo"
	"github.com/Steem-Tools/steemgo/steem"
)

var keygenOpts struct {
	Account  string
	Password string
	Roles    []string
	Import   bool
}

// keygenCmd represents the keygen command
var keygenCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Derive keys from a password, or suggest a brain key",
		Long: `
With --account, derive the keys of each of --roles from the account name and
a password. The password is prompted for if --password is not given.

Without --account, suggest a new random brain key and print its first key.

With --import, the private keys are also added to the wallet.
`[1:],
		Args: cobra.ExactArgs(0),
		Run:  keygen,
	}
	flags := cmd.Flags()
	flags.StringVar(&keygenOpts.Account, "account", "",
		"Account name to derive keys for")
	flags.StringVar(&keygenOpts.Password, "password", "",
		"Password to derive keys from")
	flags.StringSliceVar(&keygenOpts.Roles, "roles", []string{
		keys.RoleOwner, keys.RoleActive, keys.RolePosting, keys.RoleMemo},
		"Roles to derive keys for")
	flags.BoolVar(&keygenOpts.Import, "import", false,
		"Add the private keys to the wallet")

	rootCmd.AddCommand(cmd)
	rootCmplCmd.Sub["keygen"] = keygenCmplCmd
	rootCmplCmd.Sub["help"].Sub["keygen"] = complete.Command{}
	generateCmplFlags(cmd, keygenCmplCmd.Flags)
	return cmd
}()

var keygenCmplCmd = complete.Command{
	Flags: mergeFlags(walletCmplFlags, complete.Flags{
		"--roles": complete.PredictSet(keys.RoleOwner, keys.RoleActive,
			keys.RolePosting, keys.RoleMemo),
	}),
}

type keyLine struct {
	Role string
	Priv *keys.PrivateKey
}

func keygen(cmd *cobra.Command, _ []string) {
	var lines []keyLine
	if keygenOpts.Account == "" {
		bk, err := keys.SuggestBrainKey()
		if err != nil {
			log.Fatal(err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Brain key:", bk.Phrase())
		lines = append(lines, keyLine{Role: "brain", Priv: bk.PrivateKey()})
	} else {
		password := keygenOpts.Password
		if password == "" {
			var err error
			if password, err = newPassword("account"); err != nil {
				log.Fatal(err)
			}
		}
		for _, role := range keygenOpts.Roles {
			if !validRole(role) {
				log.Fatalf("invalid role: %v", role)
			}
			lines = append(lines, keyLine{Role: role,
				Priv: keys.PasswordKey(keygenOpts.Account, password, role)})
		}
	}
	printKeys(cmd.OutOrStdout(), lines)

	if !keygenOpts.Import {
		return
	}
	w := openWallet(nil, true, false)
	defer w.Close()
	for _, l := range lines {
		if _, err := w.AddPrivateKey(ctx, l.Priv.String()); err != nil {
			log.Fatal(err)
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added %v keys to the wallet.\n", len(lines))
}

func printKeys(out io.Writer, lines []keyLine) {
	for _, l := range lines {
		fmt.Fprintf(out, "%-8v %v %v\n", l.Role,
			l.Priv.PublicKey().WithPrefix(chain.Prefix), l.Priv)
	}
}

func validRole(role string) bool {
	switch role {
	case keys.RoleOwner, keys.RoleActive, keys.RolePosting, keys.RoleMemo:
		return true
	}
	return false
}

var decodeMemoKey string

// decodeMemoCmd represents the decode-memo command
var decodeMemoCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		DisableFlagsInUseLine: true,
		Use: `
decode-memo MEMO [--key WIF]`[1:],
		Short: "Decrypt an encrypted memo",
		Long: `
Decrypt MEMO, an encrypted memo starting with #, with the memo key --key, or
with a key of the wallet involved in the memo.
`[1:],
		Args: cobra.ExactArgs(1),
		Run:  decodeMemo,
	}
	cmd.Flags().StringVar(&decodeMemoKey, "key", "",
		"WIF memo key, instead of the wallet keys")
	rootCmd.AddCommand(cmd)
	rootCmplCmd.Sub["decode-memo"] = decodeMemoCmplCmd
	rootCmplCmd.Sub["help"].Sub["decode-memo"] = complete.Command{}
	generateCmplFlags(cmd, decodeMemoCmplCmd.Flags)
	return cmd
}()

var decodeMemoCmplCmd = complete.Command{
	Flags: mergeFlags(walletCmplFlags),
}

func decodeMemo(cmd *cobra.Command, args []string) {
	var text string
	if decodeMemoKey != "" {
		priv, err := keys.NewPrivateKey(decodeMemoKey)
		if err != nil {
			log.Fatal(err)
		}
		if text, err = memo.Decode(priv, args[0]); err != nil {
			log.Fatal(err)
		}
	} else {
		w := openWallet(nil, true, false)
		defer w.Close()
		s := steem.New(nil, w, steem.WithChain(chain))
		var err error
		if text, err = s.DecodeMemo(ctx, args[0]); err != nil {
			log.Fatal(err)
		}
	}
	fmt.Fprintln(cmd.OutOrStdout(), text)
}
