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

package flag

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/posener/complete"
	"github.com/sirupsen/logrus"

	"github.com/Steem-Tools/steemgo/api"
	"github.com/Steem-Tools/steemgo/protocol"
)

var Revision string

// Environment variable name prefix
const envNamePrefix = "STEEMWALLETD_"

var (
	envNames = map[string]string{
		"debug":  "DEBUG",
		"dbpath": "DB_PATH",
		"unlock": "UNLOCK",

		"apiaddress":  "API_ADDRESS",
		"apiusername": "API_USERNAME",
		"apipassword": "API_PASSWORD",
		"apitlscert":  "API_TLS_CERT",
		"apitlskey":   "API_TLS_KEY",
		"apitimeout":  "API_TIMEOUT",

		"node":          "NODE",
		"nodetimeout":   "NODE_TIMEOUT",
		"noderatelimit": "NODE_RATE_LIMIT",
		"chain":         "CHAIN",
		"expiration":    "EXPIRATION",
		"nobroadcast":   "NO_BROADCAST",

		"metricsaddress": "METRICS_ADDRESS",

		"amqpurl":      "AMQP_URL",
		"amqpexchange": "AMQP_EXCHANGE",
		"relayops":     "RELAY_OPS",
		"relaymode":    "RELAY_MODE",
		"relaystart":   "RELAY_START",
	}
	defaults = map[string]interface{}{
		"debug": false,
		"dbpath": func() string {
			if home, err := os.UserHomeDir(); err == nil {
				return filepath.Join(home, ".steemwalletd", "wallet.db")
			}
			return "./wallet.db"
		}(),
		"unlock": "",

		"apiaddress":  ":8093",
		"apiusername": "",
		"apipassword": "",
		"apitlscert":  "",
		"apitlskey":   "",
		"apitimeout":  10 * time.Second,

		"nodetimeout":   20 * time.Second,
		"noderatelimit": uint64(0),
		"chain":         "steem",
		"expiration":    30 * time.Second,
		"nobroadcast":   false,

		"metricsaddress": "",

		"amqpurl":      "",
		"amqpexchange": "steem.ops",
		"relaymode":    api.ModeIrreversible,
		"relaystart":   uint64(0),
	}
	descriptions = map[string]string{
		"debug":  "Log debug messages",
		"dbpath": "Path to the wallet database file",
		"unlock": "Password used to unlock the wallet on startup",

		"apiaddress":  "IPAddr:port# to bind to for serving the wallet API",
		"apiusername": "Username required for connections to the wallet API",
		"apipassword": "Password required for connections to the wallet API",
		"apitlscert":  "Path to TLS certificate for the wallet API",
		"apitlskey":   "Path to TLS Key for the wallet API",
		"apitimeout":  "Maximum amount of time to allow API queries to complete",

		"node":          "Comma separated websocket or HTTP URLs of steemd nodes, tried in order",
		"nodetimeout":   "Timeout for node API requests, 0 means never timeout",
		"noderatelimit": "Maximum node requests per second, 0 means unlimited",
		"chain":         `Accepts "steem" or "test"`,
		"expiration":    "Expiration of built transactions",
		"nobroadcast":   "Sign transactions without broadcasting them",

		"metricsaddress": "IPAddr:port# to serve Prometheus metrics on, empty disables metrics",

		"amqpurl":      "URL of an AMQP broker to relay operations to, empty disables the relay",
		"amqpexchange": "AMQP topic exchange that operations are published to",
		"relayops":     "Comma separated operation names to relay, empty relays all",
		"relaymode":    `Relay blocks in "irreversible" or "head" mode`,
		"relaystart":   "Block to start relaying from, 0 means the current block",
	}
	flags = complete.Flags{
		"-debug":  complete.PredictNothing,
		"-dbpath": complete.PredictFiles("*.db"),
		"-unlock": complete.PredictAnything,

		"-apiaddress":  complete.PredictAnything,
		"-apiusername": complete.PredictAnything,
		"-apipassword": complete.PredictAnything,
		"-apitlscert":  complete.PredictFiles("*.cert"),
		"-apitlskey":   complete.PredictFiles("*.key"),
		"-apitimeout":  complete.PredictAnything,

		"-node":          complete.PredictSet(DefaultNodes...),
		"-nodetimeout":   complete.PredictAnything,
		"-noderatelimit": complete.PredictAnything,
		"-chain":         complete.PredictSet("steem", "test"),
		"-expiration":    complete.PredictAnything,
		"-nobroadcast":   complete.PredictNothing,

		"-metricsaddress": complete.PredictAnything,

		"-amqpurl":      complete.PredictAnything,
		"-amqpexchange": complete.PredictAnything,
		"-relayops":     predictOpNames,
		"-relaymode":    complete.PredictSet(api.ModeIrreversible, api.ModeHead),
		"-relaystart":   complete.PredictAnything,

		"-y":                   complete.PredictNothing,
		"-installcompletion":   complete.PredictNothing,
		"-uninstallcompletion": complete.PredictNothing,
	}

	DefaultNodes = []string{"wss://steemd.steemit.com", "https://api.steemit.com"}

	LogDebug bool
	DBPath   string
	Unlock   string

	APIAddress string
	APITimeout time.Duration

	Nodes         = StringList(DefaultNodes)
	NodeTimeout   time.Duration
	NodeRateLimit uint64
	chainName     string
	Chain         protocol.Chain
	Expiration    time.Duration
	NoBroadcast   bool

	MetricsAddress string

	AMQPURL      string
	AMQPExchange string
	RelayOps     StringList
	RelayMode    string
	RelayStart   uint64

	flagset    map[string]bool
	log        *logrus.Entry
	Completion *complete.Complete

	HasAuth  bool
	Username string
	Password string

	HasTLS      bool
	TLSCertFile string
	TLSKeyFile  string
)

func init() {
	flagVar(&LogDebug, "debug")
	flagVar(&DBPath, "dbpath")
	flagVar(&Unlock, "unlock")

	flagVar(&APIAddress, "apiaddress")
	flagVar(&APITimeout, "apitimeout")
	flagVar(&Username, "apiusername")
	flagVar(&Password, "apipassword")
	flagVar(&TLSCertFile, "apitlscert")
	flagVar(&TLSKeyFile, "apitlskey")

	flagVar(&Nodes, "node")
	flagVar(&NodeTimeout, "nodetimeout")
	flagVar(&NodeRateLimit, "noderatelimit")
	flagVar(&chainName, "chain")
	flagVar(&Expiration, "expiration")
	flagVar(&NoBroadcast, "nobroadcast")

	flagVar(&MetricsAddress, "metricsaddress")

	flagVar(&AMQPURL, "amqpurl")
	flagVar(&AMQPExchange, "amqpexchange")
	flagVar(&RelayOps, "relayops")
	flagVar(&RelayMode, "relaymode")
	flagVar(&RelayStart, "relaystart")

	// Add flags for self installing the CLI completion tool
	Completion = complete.New(os.Args[0], complete.Command{Flags: flags})
	Completion.CLI.InstallName = "installcompletion"
	Completion.CLI.UninstallName = "uninstallcompletion"
	Completion.AddFlags(nil)
}

func Parse() {
	flag.Parse()
	flagset = make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { flagset[f.Name] = true })

	// Load options from environment variables if they haven't been
	// specified on the command line.
	loadFromEnv(&LogDebug, "debug")
	loadFromEnv(&DBPath, "dbpath")
	loadFromEnv(&Unlock, "unlock")

	setupLogger()

	loadFromEnv(&APIAddress, "apiaddress")
	loadFromEnv(&APITimeout, "apitimeout")
	loadFromEnv(&Username, "apiusername")
	loadFromEnv(&Password, "apipassword")
	loadFromEnv(&TLSCertFile, "apitlscert")
	loadFromEnv(&TLSKeyFile, "apitlskey")

	loadFromEnv(&Nodes, "node")
	loadFromEnv(&NodeTimeout, "nodetimeout")
	loadFromEnv(&NodeRateLimit, "noderatelimit")
	loadFromEnv(&chainName, "chain")
	loadFromEnv(&Expiration, "expiration")
	loadFromEnv(&NoBroadcast, "nobroadcast")

	loadFromEnv(&MetricsAddress, "metricsaddress")

	loadFromEnv(&AMQPURL, "amqpurl")
	loadFromEnv(&AMQPExchange, "amqpexchange")
	loadFromEnv(&RelayOps, "relayops")
	loadFromEnv(&RelayMode, "relaymode")
	loadFromEnv(&RelayStart, "relaystart")
}

func Validate() {
	// Redact private data from debug output.
	apiPassword := `""`
	if len(Password) > 0 {
		apiPassword = "<redacted>"
	}
	unlock := `""`
	if len(Unlock) > 0 {
		unlock = "<redacted>"
	}

	log.Debugf("-dbpath         %#v", DBPath)
	log.Debugf("-unlock         %v ", unlock)
	debugPrintln()

	log.Debugf("-node           %q", Nodes)
	log.Debugf("-nodetimeout    %v ", NodeTimeout)
	log.Debugf("-noderatelimit  %v ", NodeRateLimit)
	log.Debugf("-chain          %v ", chainName)
	log.Debugf("-expiration     %v ", Expiration)
	log.Debugf("-nobroadcast    %v ", NoBroadcast)
	debugPrintln()

	log.Debugf("-apiaddress     %#v", APIAddress)
	log.Debugf("-apiusername    %#v", Username)
	log.Debugf("-apipassword    %v ", apiPassword)
	log.Debugf("-apitlscert     %#v", TLSCertFile)
	log.Debugf("-apitlskey      %#v", TLSKeyFile)
	log.Debugf("-apitimeout     %v ", APITimeout)
	debugPrintln()

	log.Debugf("-metricsaddress %#v", MetricsAddress)
	log.Debugf("-amqpurl        %#v", AMQPURL)
	log.Debugf("-amqpexchange   %#v", AMQPExchange)
	log.Debugf("-relayops       %q", RelayOps)
	log.Debugf("-relaymode      %v ", RelayMode)
	log.Debugf("-relaystart     %v ", RelayStart)
	debugPrintln()

	var err error
	DBPath, err = filepath.Abs(DBPath)
	if err != nil {
		log.Fatalf("-dbpath %v: %v", DBPath, err)
	}

	if len(Nodes) == 0 {
		log.Fatal("-node must not be empty")
	}
	if Chain, err = protocol.ChainByName(chainName); err != nil {
		log.Fatalf("-chain %q: %v", chainName, err)
	}
	if err := api.ValidateMode(RelayMode); err != nil {
		log.Fatalf("-relaymode %q: %v", RelayMode, err)
	}
	if err := ValidateOpNames(RelayOps); err != nil {
		log.Fatal(err)
	}
	if RelayStart > 0 && len(AMQPURL) == 0 {
		log.Fatal("-relaystart requires -amqpurl")
	}

	if len(Username) > 0 || len(Password) > 0 {
		if len(Username) == 0 || len(Password) == 0 {
			log.Fatal("-apiusername and -apipassword must be used together")
		}
		HasAuth = true
	}
	if len(TLSCertFile) > 0 || len(TLSKeyFile) > 0 {
		if len(TLSCertFile) == 0 || len(TLSKeyFile) == 0 {
			log.Fatal("-apitlscert and -apitlskey must be used together")
		}
		HasTLS = true
	}
}

func flagVar(v interface{}, name string) {
	dflt := defaults[name]
	desc := description(name)
	switch v := v.(type) {
	case *string:
		flag.StringVar(v, name, dflt.(string), desc)
	case *time.Duration:
		flag.DurationVar(v, name, dflt.(time.Duration), desc)
	case *uint64:
		flag.Uint64Var(v, name, dflt.(uint64), desc)
	case *int64:
		flag.Int64Var(v, name, dflt.(int64), desc)
	case *bool:
		flag.BoolVar(v, name, dflt.(bool), desc)
	case flag.Value:
		flag.Var(v, name, desc)
	}
}

func loadFromEnv(v interface{}, flagName string) {
	if flagset[flagName] {
		return
	}
	eName := envName(flagName)
	eVar, ok := os.LookupEnv(eName)
	if len(eVar) > 0 {
		switch v := v.(type) {
		case flag.Value:
			if err := v.Set(eVar); err != nil {
				log.Fatalf("Environment Variable %v: %v", eName, err)
			}
		case *string:
			*v = eVar
		case *time.Duration:
			duration, err := time.ParseDuration(eVar)
			if err != nil {
				log.Fatalf("Environment Variable %v: "+
					"time.ParseDuration(\"%v\"): %v",
					eName, eVar, err)
			}
			*v = duration
		case *uint64:
			val, err := strconv.ParseUint(eVar, 10, 64)
			if err != nil {
				log.Fatalf("Environment Variable %v: "+
					"strconv.ParseUint(\"%v\", 10, 64): %v",
					eName, eVar, err)
			}
			*v = val
		case *int64:
			val, err := strconv.ParseInt(eVar, 10, 64)
			if err != nil {
				log.Fatalf("Environment Variable %v: "+
					"strconv.ParseInt(\"%v\", 10, 64): %v",
					eName, eVar, err)
			}
			*v = val
		case *bool:
			if ok {
				*v = true
			}
		}
	}
}

func debugPrintln() {
	if LogDebug {
		fmt.Println()
	}
}

func envName(flagName string) string {
	return envNamePrefix + envNames[flagName]
}
func description(flagName string) string {
	return fmt.Sprintf("%s\nEnvironment variable: %v",
		descriptions[flagName], envName(flagName))
}

func setupLogger() {
	_log := logrus.New()
	_log.Formatter = &logrus.TextFormatter{ForceColors: true,
		DisableTimestamp:       true,
		DisableLevelTruncation: true}
	if LogDebug {
		_log.SetLevel(logrus.DebugLevel)
	}
	log = _log.WithField("pkg", "flag")
}

// HasRelay reports whether operations are relayed to an AMQP broker.
func HasRelay() bool {
	return len(AMQPURL) > 0
}

// HasMetrics reports whether metrics are served.
func HasMetrics() bool {
	return len(MetricsAddress) > 0
}
