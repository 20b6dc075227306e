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

// Package steem is a high level client for STEEM that builds, signs and
// broadcasts the common operations using a node API and a wallet.
package steem

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"io/ioutil"
	"time"

	"github.com/Steem-Tools/steemgo/api"
	"github.com/Steem-Tools/steemgo/internal/db/config"
	"github.com/Steem-Tools/steemgo/protocol"
	"github.com/Steem-Tools/steemgo/txbuilder"
	"github.com/Steem-Tools/steemgo/wallet"
	"github.com/sirupsen/logrus"
)

var (
	ErrNoAccount         = errors.New("you need to provide an account")
	ErrNoWallet          = errors.New("no wallet")
	ErrAccountExists     = errors.New("account already exists")
	ErrCategoryWithReply = errors.New("you can't provide a category while replying to a post")
	ErrNoChange          = errors.New("no changes made")
	ErrInvalidWeight     = errors.New("vote weight must be between -100 and 100")
	ErrInvalidPercentage = errors.New("percentage must be between 0 and 100")
	ErrInvalidAsset      = errors.New("invalid asset")
	ErrPasswordAndKeys   = errors.New("you cannot use a password and provide keys")
	ErrIncompleteKeys    = errors.New("provide either a password or all four public keys")
	ErrNoAuths           = errors.New("at least one account needs to be specified")
	ErrInvalidPermission = errors.New(`permission must be "owner", "active" or "posting"`)
	ErrForeignNotFound   = errors.New("foreign key or account not in authority")
	ErrArchivedPost      = errors.New("voting on an archived post has no effect")
	ErrInvalidSort       = errors.New("invalid comment sort")
)

// Option configures a Steem.
type Option func(*Steem)

// WithChain sets the network. It defaults to protocol.SteemChain.
func WithChain(c protocol.Chain) Option {
	return func(s *Steem) { s.chain = c }
}

// WithExpiration sets the expiration of built transactions.
func WithExpiration(d time.Duration) Option {
	return func(s *Steem) { s.expiration = d }
}

func WithNoBroadcast(noBroadcast bool) Option {
	return func(s *Steem) { s.noBroadcast = noBroadcast }
}

// WithUnsigned returns transactions with their required authorities instead
// of signing them.
func WithUnsigned(unsigned bool) Option {
	return func(s *Steem) { s.unsigned = unsigned }
}

func WithDefaultAccount(account string) Option {
	return func(s *Steem) { s.DefaultAccount = account }
}

func WithDefaultAuthor(author string) Option {
	return func(s *Steem) { s.DefaultAuthor = author }
}

func WithDefaultVoter(voter string) Option {
	return func(s *Steem) { s.DefaultVoter = voter }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Steem) { s.log = l }
}

// Steem builds and broadcasts operations on behalf of the accounts whose
// keys are held by its wallet.
type Steem struct {
	API    *api.API
	Wallet *wallet.Wallet

	// Accounts used when an operation is given no account.
	DefaultAccount string
	DefaultAuthor  string
	DefaultVoter   string

	chain       protocol.Chain
	expiration  time.Duration
	noBroadcast bool
	unsigned    bool
	log         logrus.FieldLogger

	now func() time.Time
}

// New returns a Steem using a. The wallet w may be nil when only reading or
// in unsigned mode.
func New(a *api.API, w *wallet.Wallet, opts ...Option) *Steem {
	s := &Steem{
		API:        a,
		Wallet:     w,
		chain:      protocol.SteemChain,
		expiration: txbuilder.DefaultExpiration,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		l := logrus.New()
		l.Out = ioutil.Discard
		s.log = l
	}
	return s
}

// Chain returns the network of s.
func (s *Steem) Chain() protocol.Chain {
	return s.chain
}

// LoadDefaults fills the default accounts that are not set from the wallet
// config.
func (s *Steem) LoadDefaults(ctx context.Context) error {
	if s.Wallet == nil {
		return nil
	}
	for key, dst := range map[string]*string{
		config.DefaultAccount: &s.DefaultAccount,
		config.DefaultAuthor:  &s.DefaultAuthor,
		config.DefaultVoter:   &s.DefaultVoter,
	} {
		if *dst != "" {
			continue
		}
		value, _, err := s.Wallet.Config(ctx, key)
		if err != nil {
			return err
		}
		*dst = value
	}
	return nil
}

func orDefault(account, def string) (string, error) {
	if account != "" {
		return account, nil
	}
	if def != "" {
		return def, nil
	}
	return "", ErrNoAccount
}

// NewBuilder returns an empty transaction builder configured like s.
func (s *Steem) NewBuilder() *txbuilder.Builder {
	opts := []txbuilder.Option{
		txbuilder.WithExpiration(s.expiration),
		txbuilder.WithNoBroadcast(s.noBroadcast),
		txbuilder.WithUnsigned(s.unsigned),
		txbuilder.WithLogger(s.log),
	}
	if s.Wallet != nil {
		opts = append(opts, txbuilder.WithSigner(s.Wallet))
	}
	return txbuilder.New(s.API, s.chain, opts...)
}

// FinalizeOp builds a transaction with ops, signs it with the permission
// of account and broadcasts it. In unsigned mode the returned Builder
// holds the required authorities instead of signatures.
func (s *Steem) FinalizeOp(ctx context.Context, account, permission string,
	ops ...protocol.Operation) (*txbuilder.Builder, error) {
	if err := validPermission(permission); err != nil {
		return nil, err
	}
	b := s.NewBuilder()
	b.AppendOps(ops...)
	if err := b.AppendSigner(ctx, account, permission); err != nil {
		return nil, err
	}
	if err := b.Broadcast(ctx); err != nil {
		return nil, err
	}
	return b, nil
}

// Info returns the dynamic global properties.
func (s *Steem) Info(ctx context.Context) (*api.DynamicGlobalProperties, error) {
	return s.API.GetDynamicGlobalProperties(ctx)
}

func randomUint32() (uint32, error) {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}
