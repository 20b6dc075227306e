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

package main

import (
	"context"
	"os"
	"os/signal"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/Steem-Tools/steemgo/api"
	"github.com/Steem-Tools/steemgo/internal/flag"
	_log "github.com/Steem-Tools/steemgo/internal/log"
	"github.com/Steem-Tools/steemgo/internal/metrics"
	"github.com/Steem-Tools/steemgo/internal/relay"
	"github.com/Steem-Tools/steemgo/internal/srv"
	"github.com/Steem-Tools/steemgo/rpc"
	"github.com/Steem-Tools/steemgo/wallet"
)

func main() { os.Exit(_main()) }
func _main() (ret int) {
	// Completion uses some flags, so parse them first thing.
	flag.Parse()
	if flag.Completion.Complete() {
		// Invoked for the purposes of completion, so don't actually
		// run the daemon.
		return 0
	}
	flag.Validate()

	// Set up interrupts channel. We don't want to be interrupted during
	// initialization. If the signal is sent we will handle it later.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigint := make(chan os.Signal, 1)
	signal.Notify(sigint, os.Interrupt)
	go func() {
		<-sigint
		cancel()
	}()
	// Stop handling signals once we return.
	defer func() { signal.Reset(); close(sigint) }()

	log := _log.New("main")
	log.Info("Steem Wallet Daemon Version: ", flag.Revision)
	defer log.Info("Steem Wallet Daemon stopped.")

	// Wallet
	w, err := wallet.Open(ctx, flag.DBPath,
		wallet.WithPrefix(flag.Chain.Prefix),
		wallet.WithLogger(_log.New("wallet")))
	if err != nil {
		log.Errorf("wallet.Open(): %v", err)
		return 1
	}
	defer func() {
		if err := w.Close(); err != nil {
			log.Errorf("w.Close(): %v", err)
		}
		log.Info("Wallet closed.")
	}()
	if len(flag.Unlock) > 0 {
		if err := w.Unlock(ctx, flag.Unlock); err != nil {
			log.Errorf("w.Unlock(): %v", err)
			return 1
		}
		log.Info("Wallet unlocked.")
	}

	// Node
	opts := []rpc.Option{
		rpc.WithTimeout(flag.NodeTimeout),
		rpc.WithObserver(metrics.ObserveNodeCall),
		rpc.WithLogger(_log.New("rpc")),
	}
	if flag.NodeRateLimit > 0 {
		opts = append(opts, rpc.WithRateLimiter(
			rate.NewLimiter(rate.Limit(flag.NodeRateLimit), 1)))
	}
	client, err := rpc.Dial(ctx, flag.Nodes, opts...)
	if err != nil {
		log.Errorf("rpc.Dial(): %v", err)
		return 1
	}
	defer client.Close()
	log.Infof("Connected to %v", client.URL())
	if chain, err := client.Network(ctx); err != nil {
		log.Errorf("client.Network(): %v", err)
		return 1
	} else if chain.Name != flag.Chain.Name {
		log.Warnf("Node is on the %v chain, not %v", chain.Name, flag.Chain.Name)
	}
	a := api.New(client)
	w.SetAPI(a)

	g, ctx := errgroup.WithContext(ctx)

	// Server
	g.Go(func() error {
		defer log.Info("JSON RPC API server stopped.")
		return srv.ListenAndServe(ctx, srv.NewService(w, a))
	})
	log.Infof("JSON RPC API server listening on %v.", flag.APIAddress)

	// Metrics
	if flag.HasMetrics() {
		g.Go(func() error {
			defer log.Info("Metrics server stopped.")
			return metrics.ListenAndServe(ctx, flag.MetricsAddress)
		})
		log.Infof("Metrics served on %v/metrics.", flag.MetricsAddress)
	}

	// Relay
	if flag.HasRelay() {
		conn, ch, err := relay.Dial(flag.AMQPURL, flag.AMQPExchange)
		if err != nil {
			log.Errorf("relay.Dial(): %v", err)
			cancel()
			g.Wait()
			return 1
		}
		defer conn.Close()
		r := relay.Relay{
			API:       a,
			Publisher: ch,
			Exchange:  flag.AMQPExchange,
			Ops:       flag.RelayOps,
			Options: api.StreamOptions{
				Start: uint32(flag.RelayStart),
				Mode:  flag.RelayMode,
			},
			Log: _log.New("relay"),
		}
		g.Go(func() error {
			defer log.Info("Operation relay stopped.")
			return r.Run(ctx)
		})
		log.Infof("Relaying operations to exchange %q.", flag.AMQPExchange)
	}

	log.Info("Steem Wallet Daemon started.")

	// An error from any component cancels ctx and stops the others.
	if err := g.Wait(); err != nil {
		log.Errorf("%v", err)
		return 1
	}
	return 0
}
