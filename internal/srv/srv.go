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

// Package srv serves the wallet API of steemwalletd over JSON-RPC 2.0 HTTP.
// The methods and their positional params follow the STEEM cli_wallet.
package srv

import (
	"context"
	"crypto/subtle"
	"net/http"
	"time"

	jsonrpc2 "github.com/AdamSLevy/jsonrpc2/v14"
	"github.com/rs/cors"

	"github.com/Steem-Tools/steemgo/api"
	"github.com/Steem-Tools/steemgo/internal/flag"
	_log "github.com/Steem-Tools/steemgo/internal/log"
	"github.com/Steem-Tools/steemgo/protocol"
	"github.com/Steem-Tools/steemgo/steem"
	"github.com/Steem-Tools/steemgo/wallet"
)

var log = _log.New("srv")

const APIVersion = "1"

// Service holds the wallet and node connection served by the API.
type Service struct {
	Wallet *wallet.Wallet
	API    *api.API

	Chain       protocol.Chain
	Expiration  time.Duration
	NoBroadcast bool

	// Timeout bounds each request, if positive.
	Timeout time.Duration

	// Username and Password enable HTTP basic auth when set.
	Username string
	Password string

	Version string

	started time.Time
	now     func() time.Time
}

// NewService returns a Service configured from the daemon flags.
func NewService(w *wallet.Wallet, a *api.API) *Service {
	return &Service{
		Wallet:      w,
		API:         a,
		Chain:       flag.Chain,
		Expiration:  flag.Expiration,
		NoBroadcast: flag.NoBroadcast,
		Timeout:     flag.APITimeout,
		Username:    flag.Username,
		Password:    flag.Password,
		Version:     flag.Revision,
		started:     time.Now(),
		now:         time.Now,
	}
}

// steem returns a facade that signs with the wallet, and broadcasts only if
// broadcast is set and the Service allows it.
func (s *Service) steem(broadcast bool) *steem.Steem {
	return steem.New(s.API, s.Wallet,
		steem.WithChain(s.Chain),
		steem.WithExpiration(s.Expiration),
		steem.WithNoBroadcast(!broadcast || s.NoBroadcast),
		steem.WithLogger(log))
}

// Handler returns the HTTP handler of the API with version headers, CORS
// and optional basic auth.
func (s *Service) Handler() http.Handler {
	if s.now == nil {
		s.now = time.Now
	}
	if s.started.IsZero() {
		s.started = s.now()
	}
	jrpcHandler := jsonrpc2.HTTPRequestHandler(s.Methods(), log)
	var handler http.HandlerFunc = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add(http.CanonicalHeaderKey("Steemwalletd-Version"), s.Version)
		w.Header().Add(http.CanonicalHeaderKey("Steemwalletd-Api-Version"), APIVersion)
		if !s.authorized(r) {
			w.Header().Set("WWW-Authenticate", `Basic realm="steemwalletd"`)
			http.Error(w, http.StatusText(http.StatusUnauthorized),
				http.StatusUnauthorized)
			return
		}
		jrpcHandler(w, r)
	}

	srvMux := http.NewServeMux()
	srvMux.Handle("/", handler)
	srvMux.Handle("/v1", handler)

	cors := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})
	return cors.Handler(srvMux)
}

func (s *Service) authorized(r *http.Request) bool {
	if len(s.Username) == 0 && len(s.Password) == 0 {
		return true
	}
	user, pass, ok := r.BasicAuth()
	if !ok {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(s.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(pass), []byte(s.Password)) == 1
	return userOK && passOK
}

// ListenAndServe serves the API on flag.APIAddress until ctx is done. TLS is
// used when configured.
func ListenAndServe(ctx context.Context, s *Service) error {
	log = _log.New("srv")
	srv := http.Server{Handler: s.Handler()}
	srv.Addr = flag.APIAddress
	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	var err error
	if flag.HasTLS {
		err = srv.ListenAndServeTLS(flag.TLSCertFile, flag.TLSKeyFile)
	} else {
		err = srv.ListenAndServe()
	}
	if err != http.ErrServerClosed {
		log.Errorf("srv.ListenAndServe(): %v", err)
		return err
	}
	return nil
}
