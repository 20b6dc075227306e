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

// Package metrics holds the Prometheus collectors of steemwalletd.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Steem-Tools/steemgo/rpc"
)

const namespace = "steemwalletd"

// Registry holds every collector of this package.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	NodeCalls = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "node",
		Name:      "calls_total",
		Help:      "Node API calls by api, method and outcome.",
	}, []string{"api", "method", "outcome"})

	NodeLatency = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "node",
		Name:      "call_duration_seconds",
		Help:      "Latency of node API calls.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"api", "method"})

	Requests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "api",
		Name:      "requests_total",
		Help:      "Wallet API requests by method.",
	}, []string{"method"})

	RelayedOps = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "relay",
		Name:      "operations_total",
		Help:      "Operations published to the AMQP exchange by name.",
	}, []string{"op"})
)

// ObserveNodeCall records a node API call. It is an rpc.Observer.
func ObserveNodeCall(api, method string, d time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	NodeCalls.WithLabelValues(api, method, outcome).Inc()
	NodeLatency.WithLabelValues(api, method).Observe(d.Seconds())
}

var _ rpc.Observer = ObserveNodeCall

// Handler serves the collectors of Registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// ListenAndServe serves Handler at /metrics on addr until ctx is done.
func ListenAndServe(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	srv := http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
