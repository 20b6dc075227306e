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

package srv

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	jsonrpc2 "github.com/AdamSLevy/jsonrpc2/v14"

	"github.com/Steem-Tools/steemgo/api"
	"github.com/Steem-Tools/steemgo/internal/metrics"
	"github.com/Steem-Tools/steemgo/keys"
	"github.com/Steem-Tools/steemgo/protocol"
	"github.com/Steem-Tools/steemgo/steem"
	"github.com/Steem-Tools/steemgo/txbuilder"
	"github.com/Steem-Tools/steemgo/walletrpc"
)

// null is the result of methods that return nothing.
var null = json.RawMessage("null")

// Methods returns the JSON-RPC methods of s. Every call is counted in
// metrics.Requests and bounded by s.Timeout.
func (s *Service) Methods() jsonrpc2.MethodMap {
	methods := jsonrpc2.MethodMap{
		"info":  s.info,
		"about": s.about,

		"is_new":       s.isNew,
		"is_locked":    s.isLocked,
		"lock":         s.lock,
		"unlock":       s.unlock,
		"set_password": s.setPassword,

		"list_keys":        s.listKeys,
		"list_my_accounts": s.listMyAccounts,
		"import_key":       s.importKey,
		"get_private_key":  s.getPrivateKey,

		"get_account":       s.getAccount,
		"transfer":          s.transfer,
		"vote":              s.vote,
		"sign_transaction":  s.signTransaction,
		"suggest_brain_key": s.suggestBrainKey,
	}
	for name, method := range methods {
		methods[name] = s.instrument(name, method)
	}
	return methods
}

func (s *Service) instrument(name string, method jsonrpc2.MethodFunc) jsonrpc2.MethodFunc {
	requests := metrics.Requests.WithLabelValues(name)
	return func(ctx context.Context, data json.RawMessage) interface{} {
		requests.Inc()
		if s.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.Timeout)
			defer cancel()
		}
		return method(ctx, data)
	}
}

func (s *Service) info(ctx context.Context, data json.RawMessage) interface{} {
	if err := validate(data); err != nil {
		return err
	}
	props, err := s.API.GetDynamicGlobalProperties(ctx)
	if err != nil {
		return toError(err)
	}
	age := s.now().Sub(props.Time.Time) / time.Second
	return walletrpc.Info{
		HeadBlockNum:             props.HeadBlockNumber,
		HeadBlockID:              props.HeadBlockID,
		HeadBlockAge:             fmt.Sprintf("%v seconds old", int64(age)),
		LastIrreversibleBlockNum: props.LastIrreversibleBlockNum,
		ChainID:                  s.Chain.ID.String(),
		Time:                     props.Time,
		Participation:            props.Participation(),
		Locked:                   s.Wallet.Locked(),
	}
}

func (s *Service) about(ctx context.Context, data json.RawMessage) interface{} {
	if err := validate(data); err != nil {
		return err
	}
	return walletrpc.About{
		ClientVersion: s.Version,
		Revision:      APIVersion,
		ChainID:       s.Chain.ID.String(),
		Compiler:      s.started.Format(protocol.TimeFormat),
	}
}

func (s *Service) isNew(ctx context.Context, data json.RawMessage) interface{} {
	if err := validate(data); err != nil {
		return err
	}
	created, err := s.Wallet.Created(ctx)
	if err != nil {
		return toError(err)
	}
	return !created
}

func (s *Service) isLocked(ctx context.Context, data json.RawMessage) interface{} {
	if err := validate(data); err != nil {
		return err
	}
	return s.Wallet.Locked()
}

func (s *Service) lock(ctx context.Context, data json.RawMessage) interface{} {
	if err := validate(data); err != nil {
		return err
	}
	s.Wallet.Lock()
	log.Info("Wallet locked")
	return null
}

func (s *Service) unlock(ctx context.Context, data json.RawMessage) interface{} {
	var password string
	if err := validate(data, &password); err != nil {
		return err
	}
	if err := s.Wallet.Unlock(ctx, password); err != nil {
		return toError(err)
	}
	log.Info("Wallet unlocked")
	return null
}

// setPassword creates a new wallet, or reseals an unlocked wallet.
func (s *Service) setPassword(ctx context.Context, data json.RawMessage) interface{} {
	var password string
	if err := validate(data, &password); err != nil {
		return err
	}
	created, err := s.Wallet.Created(ctx)
	if err != nil {
		return toError(err)
	}
	if !created {
		err = s.Wallet.Create(ctx, password)
	} else {
		err = s.Wallet.SetPassword(ctx, password)
	}
	if err != nil {
		return toError(err)
	}
	return null
}

func (s *Service) listKeys(ctx context.Context, data json.RawMessage) interface{} {
	if err := validate(data); err != nil {
		return err
	}
	if s.Wallet.Locked() {
		return ErrorWalletLocked
	}
	pubs, err := s.Wallet.PublicKeys(ctx)
	if err != nil {
		return toError(err)
	}
	pairs := make([]walletrpc.KeyPair, 0, len(pubs))
	for _, pub := range pubs {
		priv, err := s.Wallet.PrivateKeyForPublicKey(ctx, pub)
		if err != nil {
			return toError(err)
		}
		pairs = append(pairs, walletrpc.KeyPair{
			Public:  pub.WithPrefix(s.Chain.Prefix).String(),
			Private: priv.String(),
		})
	}
	return pairs
}

func (s *Service) listMyAccounts(ctx context.Context, data json.RawMessage) interface{} {
	if err := validate(data); err != nil {
		return err
	}
	perms, err := s.Wallet.AccountsWithPermissions(ctx)
	if err != nil {
		return toError(err)
	}
	accounts := []*api.Account{}
	if len(perms) == 0 {
		return accounts
	}
	names := make([]string, 0, len(perms))
	for name := range perms {
		names = append(names, name)
	}
	if accounts, err = s.API.GetAccounts(ctx, names...); err != nil {
		return toError(err)
	}
	return accounts
}

func (s *Service) importKey(ctx context.Context, data json.RawMessage) interface{} {
	var wif string
	if err := validate(data, &wif); err != nil {
		return err
	}
	pub, err := s.Wallet.AddPrivateKey(ctx, wif)
	if err != nil {
		return toError(err)
	}
	log.Infof("Imported key %v", pub)
	return true
}

func (s *Service) getPrivateKey(ctx context.Context, data json.RawMessage) interface{} {
	var pubStr string
	if err := validate(data, &pubStr); err != nil {
		return err
	}
	pub, err := keys.NewPublicKeyWithPrefix(pubStr, s.Chain.Prefix)
	if err != nil {
		err := ErrorInvalidKey
		err.Data = pubStr
		return err
	}
	priv, err := s.Wallet.PrivateKeyForPublicKey(ctx, pub)
	if err != nil {
		return toError(err)
	}
	return priv.String()
}

func (s *Service) getAccount(ctx context.Context, data json.RawMessage) interface{} {
	var name string
	if err := validate(data, &name); err != nil {
		return err
	}
	account, err := s.API.GetAccount(ctx, name)
	if err != nil {
		return toError(err)
	}
	return account
}

func (s *Service) transfer(ctx context.Context, data json.RawMessage) interface{} {
	var from, to, memo string
	var amount protocol.Amount
	var broadcast bool
	if err := validate(data, &from, &to, &amount, &memo, &broadcast); err != nil {
		return err
	}
	b, err := s.steem(broadcast).Transfer(ctx, to, amount, memo, from)
	if err != nil {
		return toError(err)
	}
	return result(b.Tx)
}

func (s *Service) vote(ctx context.Context, data json.RawMessage) interface{} {
	var voter, author, permlink string
	var weight int16
	var broadcast bool
	if err := validate(data, &voter, &author, &permlink, &weight,
		&broadcast); err != nil {
		return err
	}
	b, err := s.steem(broadcast).Vote(ctx,
		steem.ConstructIdentifier(author, permlink),
		float64(weight)/protocol.Percent1, voter)
	if err != nil {
		return toError(err)
	}
	return result(b.Tx)
}

// signTransaction signs tx with the wallet keys that the node requires.
func (s *Service) signTransaction(ctx context.Context, data json.RawMessage) interface{} {
	var tx protocol.Transaction
	var broadcast bool
	if err := validate(data, &tx, &broadcast); err != nil {
		return err
	}
	available, err := s.Wallet.PublicKeys(ctx)
	if err != nil {
		return toError(err)
	}
	required, err := s.API.GetRequiredSignatures(ctx, &tx, available)
	if err != nil {
		return toError(err)
	}
	if err := txbuilder.SignTransaction(ctx, s.Chain, s.Wallet, &tx,
		required); err != nil {
		return toError(err)
	}
	if broadcast && !s.NoBroadcast {
		if err := s.API.BroadcastTransaction(ctx, &tx); err != nil {
			return toError(err)
		}
	}
	return result(&tx)
}

func (s *Service) suggestBrainKey(ctx context.Context, data json.RawMessage) interface{} {
	if err := validate(data); err != nil {
		return err
	}
	bk, err := keys.SuggestBrainKey()
	if err != nil {
		return toError(err)
	}
	priv := bk.PrivateKey()
	return walletrpc.BrainKey{
		BrainPrivKey: bk.Phrase(),
		WIFPrivKey:   priv.String(),
		PubKey:       priv.PublicKey().WithPrefix(s.Chain.Prefix).String(),
	}
}

func result(tx *protocol.Transaction) interface{} {
	id, err := tx.ID()
	if err != nil {
		return toError(err)
	}
	return walletrpc.Transaction{Transaction: *tx, TransactionID: id}
}
