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
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/posener/complete"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Steem-Tools/steemgo/api"
	"github.com/Steem-Tools/steemgo/protocol"
	"github.com/Steem-Tools/steemgo/rpc"
	"github.com/Steem-Tools/steemgo/txbuilder"
)

// Revision is set by main.
var Revision string

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	var cancel context.CancelFunc
	ctx, cancel = context.WithCancel(context.Background())
	sigint := make(chan os.Signal, 1)
	signal.Notify(sigint, os.Interrupt)
	go func() {
		<-sigint
		cancel()
	}()

	rootCmd.Version = Revision
	err := rootCmd.Execute()
	if nodeClient != nil {
		nodeClient.Close()
	}
	cancel()
	if err != nil {
		os.Exit(1)
	}
}

var (
	ctx = context.Background()

	cfgFile string

	Nodes       []string
	Timeout     time.Duration
	ChainName   string
	Debug       bool
	WalletPath  string
	Account     string
	NoBroadcast bool
	Unsigned    bool
	Expiration  time.Duration

	chain protocol.Chain

	log = logrus.New()
)

func init() {
	cobra.OnInitialize(initConfig, initClients)
}

// initClients applies the debug and chain settings.
func initClients() {
	log.Formatter = &logrus.TextFormatter{DisableTimestamp: true}
	if Debug {
		log.SetLevel(logrus.DebugLevel)
	}
	var err error
	if chain, err = protocol.ChainByName(ChainName); err != nil {
		log.Fatal(err)
	}
}

var apiFlags = func() *flag.FlagSet {
	flags := flag.NewFlagSet("", flag.ContinueOnError)
	flags.ParseErrorsWhitelist.UnknownFlags = true
	flags.StringSliceVarP(&Nodes, "node", "n",
		[]string{"wss://steemd.steemit.com", "https://api.steemit.com"},
		"Node URLs to connect to, tried in order")
	flags.DurationVar(&Timeout, "timeout", 20*time.Second,
		"Timeout for all node requests (i.e. 10s, 1m)")
	flags.StringVar(&ChainName, "chain", "steem",
		"Network of the node: steem or test")
	flags.BoolVar(&Debug, "debug", false, "Print all RPC requests and responses")
	return flags
}()

var walletFlags = func() *flag.FlagSet {
	flags := flag.NewFlagSet("", flag.ContinueOnError)
	flags.ParseErrorsWhitelist.UnknownFlags = true
	flags.StringVarP(&WalletPath, "wallet", "w", "~/.steem-cli/wallet.db",
		"Path to the wallet database")
	flags.StringVarP(&Account, "account", "a", "",
		"Account used when a command is given none")
	return flags
}()

var txFlags = func() *flag.FlagSet {
	flags := flag.NewFlagSet("", flag.ContinueOnError)
	flags.BoolVar(&NoBroadcast, "nobroadcast", false,
		"Sign transactions but do not broadcast them")
	flags.BoolVar(&Unsigned, "unsigned", false,
		"Print transactions with their required authorities without signing")
	flags.DurationVarP(&Expiration, "expiration", "e",
		txbuilder.DefaultExpiration, "Expiration of built transactions")
	return flags
}()

// rootCmd represents the base command when called without any subcommands
var rootCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "steem-cli",
		Short: "STEEM command line client",
		Long: `
steem-cli explores the STEEM blockchain and sends transactions signed with the
keys of a local wallet.

Node Settings

Use --node to set the node URLs. Websocket (ws://, wss://) and HTTP (http://,
https://) nodes are supported. When more than one is given, the next one is
used if a node fails.

Wallet Settings

Keys are stored encrypted in the wallet at --wallet. Create it with
"steem-cli wallet create" and import keys with "steem-cli wallet addkey". The
password is prompted for, or read from STEEMCLI_PASSWORD.

Configuration

All flags can also be set in ~/.steem-cli.yaml or with STEEMCLI_ environment
variables, for example STEEMCLI_NODE.
`[1:],
		Args:    cobra.ExactArgs(0),
		PreRunE: validateRunCompletionFlags,
		Run:     runCompletion,
	}

	cmd.Flags().AddFlagSet(installCompletionFlags)
	flags := cmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "",
		"Config file (default is $HOME/.steem-cli.yaml)")
	flags.AddFlagSet(apiFlags)
	flags.AddFlagSet(walletFlags)
	flags.AddFlagSet(txFlags)

	generateCmplFlags(cmd, rootCmplCmd.Flags)
	return cmd
}()

var rootCmplCmd = complete.Command{
	Flags: mergeFlags(apiCmplFlags, walletCmplFlags),
	Sub:   complete.Commands{"help": complete.Command{Sub: complete.Commands{}}},
}
var apiCmplFlags = complete.Flags{
	"--help":  complete.PredictNothing,
	"--chain": complete.PredictSet("steem", "test"),
}
var walletCmplFlags = complete.Flags{
	"--wallet": complete.PredictFiles("*.db"),
	"-w":       complete.PredictFiles("*.db"),
	"--config": complete.PredictFiles("*.yaml"),
}

func validateRunCompletionFlags(cmd *cobra.Command, _ []string) error {
	// Ensure that the install completion flags are not ever used with any
	// other flags.
	flags := cmd.Flags()
	installCompletionMode := false
	otherFlags := false
	flags.Visit(func(flg *flag.Flag) {
		switch flg.Name {
		case "installcompletion", "uninstallcompletion", "yes":
			installCompletionMode = true
		default:
			otherFlags = true
		}
	})
	if installCompletionMode && otherFlags {
		return fmt.Errorf("--installcompletion and --uninstallcompletion " +
			"may not be used with any other flags")
	}
	return nil
}

func runCompletion(cmd *cobra.Command, _ []string) {
	// Complete() returns true if it attempts to install completion,
	// otherwise just output the help page.
	if !Complete() {
		cmd.Help()
	}
}

// initConfig reads in config file and ENV variables if set. Values found
// there are applied to every flag not set on the command line.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			log.Fatal(err)
		}

		// Search config in home directory with name ".steem-cli".
		viper.AddConfigPath(home)
		viper.SetConfigName(".steem-cli")
	}

	viper.SetEnvPrefix("STEEMCLI")
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		log.Debugf("Using config file: %v", viper.ConfigFileUsed())
	}

	if err := applyConfig(rootCmd.PersistentFlags()); err != nil {
		log.Fatal(err)
	}

	path, err := homedir.Expand(WalletPath)
	if err != nil {
		log.Fatal(err)
	}
	WalletPath = path
}

func applyConfig(flags *flag.FlagSet) error {
	var err error
	flags.VisitAll(func(flg *flag.Flag) {
		if err != nil || flg.Changed || !viper.IsSet(flg.Name) {
			return
		}
		val := viper.GetString(flg.Name)
		if flg.Value.Type() == "stringSlice" {
			val = strings.Join(viper.GetStringSlice(flg.Name), ",")
		}
		if err = flg.Value.Set(val); err != nil {
			err = fmt.Errorf("config %v: %w", flg.Name, err)
		}
	})
	return err
}

var nodeClient *rpc.Client

// connect dials the nodes once and returns an API using the connection.
func connect() *api.API {
	if nodeClient == nil {
		opts := []rpc.Option{
			rpc.WithTimeout(Timeout),
			rpc.WithLogger(log.WithField("pkg", "rpc")),
		}
		c, err := rpc.Dial(ctx, Nodes, opts...)
		if err != nil {
			log.Fatal(err)
		}
		log.Debugf("Connected to %v", c.URL())
		nodeClient = c
	}
	return api.New(nodeClient)
}
