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

// Package txbuilder assembles, signs and broadcasts transactions.
package txbuilder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"time"

	"github.com/Steem-Tools/steemgo/api"
	"github.com/Steem-Tools/steemgo/keys"
	"github.com/Steem-Tools/steemgo/protocol"
	"github.com/sirupsen/logrus"
)

// DefaultExpiration is added to the current time to set the expiration of
// constructed transactions.
const DefaultExpiration = 30 * time.Second

// maxAuthorityDepth limits how many levels of account auths are searched
// for keys.
const maxAuthorityDepth = 2

var (
	ErrMissingKey            = errors.New("missing private key")
	ErrNoOperations          = errors.New("transaction has no operations")
	ErrInsufficientAuthority = errors.New("insufficient authority")
	ErrInvalidRole           = errors.New(`role must be "owner", "active" or "posting"`)
)

// Signer provides the private keys of a wallet.
type Signer interface {
	// ForcedKey returns a key that is used for role regardless of the
	// account, if any.
	ForcedKey(role string) (*keys.PrivateKey, bool)
	PrivateKeyForPublicKey(ctx context.Context,
		pub *keys.PublicKey) (*keys.PrivateKey, error)
}

// Option configures a Builder.
type Option func(*Builder)

func WithExpiration(d time.Duration) Option {
	return func(b *Builder) { b.expiration = d }
}

func WithSigner(s Signer) Option {
	return func(b *Builder) { b.signer = s }
}

// WithNoBroadcast makes Broadcast sign without broadcasting.
func WithNoBroadcast(noBroadcast bool) Option {
	return func(b *Builder) { b.noBroadcast = noBroadcast }
}

// WithUnsigned makes Sign record the required authorities and missing
// signatures instead of signing.
func WithUnsigned(unsigned bool) Option {
	return func(b *Builder) { b.unsigned = unsigned }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(b *Builder) { b.log = l }
}

// Builder builds a single transaction.
type Builder struct {
	api         *api.API
	chain       protocol.Chain
	signer      Signer
	expiration  time.Duration
	noBroadcast bool
	unsigned    bool
	log         logrus.FieldLogger
	now         func() time.Time

	Tx *protocol.Transaction

	// MissingSignatures and RequiredAuthorities are populated by
	// AppendSigner in unsigned mode.
	MissingSignatures   []*keys.PublicKey
	RequiredAuthorities map[string]*protocol.Authority

	signingKeys []*keys.PrivateKey
	constructed bool
	signed      bool
}

// New returns an empty Builder for chain.
func New(a *api.API, chain protocol.Chain, opts ...Option) *Builder {
	b := &Builder{
		api:                 a,
		chain:               chain,
		expiration:          DefaultExpiration,
		now:                 time.Now,
		Tx:                  protocol.NewTransaction(),
		RequiredAuthorities: make(map[string]*protocol.Authority),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.log == nil {
		l := logrus.New()
		l.Out = ioutil.Discard
		b.log = l
	}
	return b
}

// Unsigned reports whether the Builder is in unsigned mode.
func (b *Builder) Unsigned() bool {
	return b.unsigned
}

// AppendOps adds ops to the transaction.
func (b *Builder) AppendOps(ops ...protocol.Operation) {
	b.Tx.AppendOps(ops...)
	b.constructed = false
	b.signed = false
}

// AddSigningKeys adds keys that sign the transaction. A signed transaction
// is signed again by the next Broadcast.
func (b *Builder) AddSigningKeys(privs ...*keys.PrivateKey) {
	b.signingKeys = append(b.signingKeys, privs...)
	b.signed = false
}

// AppendSigner adds the wallet keys that satisfy the role authority of
// account. Keys of accounts in the account auths are searched when the
// account's own keys do not reach the threshold. In unsigned mode the
// authority is recorded instead.
func (b *Builder) AppendSigner(ctx context.Context, account, role string) error {
	switch role {
	case keys.RoleOwner, keys.RoleActive, keys.RolePosting:
	default:
		return ErrInvalidRole
	}
	if !b.unsigned && b.signer != nil {
		if key, ok := b.signer.ForcedKey(role); ok {
			b.AddSigningKeys(key)
			return nil
		}
	}

	acc, err := b.api.GetAccount(ctx, account)
	if err != nil {
		return err
	}
	auth := acc.Authority(role)

	if b.unsigned {
		return b.addSigningInformation(ctx, account, role, auth)
	}

	privs, weight, err := b.fetchKeys(ctx, auth, role, 0)
	if err != nil {
		return err
	}
	if weight < auth.WeightThreshold || len(privs) == 0 {
		return fmt.Errorf("%w: %v authority of %q", ErrMissingKey,
			role, account)
	}
	b.AddSigningKeys(privs...)
	return nil
}

func (b *Builder) fetchKeys(ctx context.Context, auth *protocol.Authority,
	role string, depth int) ([]*keys.PrivateKey, uint32, error) {
	if depth > maxAuthorityDepth || b.signer == nil {
		return nil, 0, nil
	}
	var privs []*keys.PrivateKey
	var weight uint32
	for _, ka := range auth.KeyAuths {
		priv, err := b.signer.PrivateKeyForPublicKey(ctx, ka.Key)
		if err != nil {
			continue
		}
		privs = append(privs, priv)
		weight += uint32(ka.Weight)
	}
	if weight >= auth.WeightThreshold {
		return privs, weight, nil
	}
	for _, aa := range auth.AccountAuths {
		acc, err := b.api.GetAccount(ctx, aa.Account)
		if err != nil {
			return nil, 0, err
		}
		sub, subWeight, err := b.fetchKeys(ctx, acc.Authority(role),
			role, depth+1)
		if err != nil {
			return nil, 0, err
		}
		if len(sub) > 0 && subWeight >= acc.Authority(role).WeightThreshold {
			privs = append(privs, sub...)
			weight += uint32(aa.Weight)
		}
	}
	return privs, weight, nil
}

// addSigningInformation records the authority of account and one level of
// its account auths, and their keys as missing signatures.
func (b *Builder) addSigningInformation(ctx context.Context,
	account, role string, auth *protocol.Authority) error {
	b.RequiredAuthorities[account] = auth
	for _, ka := range auth.KeyAuths {
		b.MissingSignatures = append(b.MissingSignatures, ka.Key)
	}
	for _, aa := range auth.AccountAuths {
		acc, err := b.api.GetAccount(ctx, aa.Account)
		if err != nil {
			return err
		}
		sub := acc.Authority(role)
		b.RequiredAuthorities[aa.Account] = sub
		for _, ka := range sub.KeyAuths {
			b.MissingSignatures = append(b.MissingSignatures, ka.Key)
		}
	}
	return nil
}

// Construct sets the reference block and the expiration of the transaction.
// It only does so once.
func (b *Builder) Construct(ctx context.Context) error {
	if b.constructed {
		return nil
	}
	if len(b.Tx.Operations) == 0 {
		return ErrNoOperations
	}
	num, prefix, err := b.api.GetBlockParams(ctx)
	if err != nil {
		return err
	}
	b.Tx.RefBlockNum = num
	b.Tx.RefBlockPrefix = prefix
	b.Tx.SetExpiration(b.now(), b.expiration)
	b.Tx.Signatures = nil
	b.constructed = true
	return nil
}

// Sign constructs the transaction if needed and signs it with all keys
// collected by AppendSigner and AddSigningKeys. In unsigned mode it only
// constructs the transaction.
func (b *Builder) Sign(ctx context.Context) error {
	if err := b.Construct(ctx); err != nil {
		return err
	}
	if b.unsigned {
		return nil
	}
	if len(b.signingKeys) == 0 {
		return ErrMissingKey
	}
	b.Tx.Signatures = nil
	if err := b.Tx.Sign(b.chain, b.signingKeys...); err != nil {
		return err
	}
	b.signed = true
	return nil
}

// Broadcast signs the transaction if needed, verifies its authority with
// the node and broadcasts it. With NoBroadcast, the signed transaction is
// only logged.
func (b *Builder) Broadcast(ctx context.Context) error {
	if !b.signed {
		if err := b.Sign(ctx); err != nil {
			return err
		}
	}
	if b.unsigned {
		return nil
	}
	if b.noBroadcast {
		data, _ := b.JSON()
		b.log.Warnf("Not broadcasting anything: %s", data)
		return nil
	}
	ok, err := b.api.VerifyAuthority(ctx, b.Tx)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInsufficientAuthority
	}
	if err := b.api.BroadcastTransaction(ctx, b.Tx); err != nil {
		return err
	}
	id, _ := b.Tx.ID()
	b.log.Infof("Broadcast transaction %v", id)
	return nil
}

// UnsignedTransaction is a transaction with the information needed to sign
// it elsewhere.
type UnsignedTransaction struct {
	*protocol.Transaction
	MissingSignatures   []*keys.PublicKey              `json:"missing_signatures"`
	RequiredAuthorities map[string]*protocol.Authority `json:"required_authorities"`
}

// JSON returns the transaction as nodes expect it. In unsigned mode the
// missing signatures and required authorities are included.
func (b *Builder) JSON() ([]byte, error) {
	if b.unsigned {
		return json.Marshal(UnsignedTransaction{
			Transaction:         b.Tx,
			MissingSignatures:   b.MissingSignatures,
			RequiredAuthorities: b.RequiredAuthorities,
		})
	}
	return json.Marshal(b.Tx)
}

// SignTransaction signs a transaction built elsewhere with privs, or with
// the keys of signer for the missing public keys when privs is empty.
func SignTransaction(ctx context.Context, chain protocol.Chain, signer Signer,
	tx *protocol.Transaction, missing []*keys.PublicKey,
	privs ...*keys.PrivateKey) error {
	if len(privs) == 0 {
		if signer == nil {
			return ErrMissingKey
		}
		for _, pub := range missing {
			priv, err := signer.PrivateKeyForPublicKey(ctx, pub)
			if err != nil {
				continue
			}
			privs = append(privs, priv)
		}
	}
	if len(privs) == 0 {
		return ErrMissingKey
	}
	return tx.Sign(chain, privs...)
}
