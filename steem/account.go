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

package steem

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Steem-Tools/steemgo/api"
	"github.com/Steem-Tools/steemgo/keys"
	"github.com/Steem-Tools/steemgo/memo"
	"github.com/Steem-Tools/steemgo/protocol"
	"github.com/Steem-Tools/steemgo/txbuilder"
)

// AccountOptions describe a new account.
type AccountOptions struct {
	Name string
	// Creator pays the fee. It defaults to the default author.
	Creator  string
	JSONMeta map[string]interface{}

	// Either Password or all four public keys must be given.
	Password string

	OwnerKey, ActiveKey, PostingKey, MemoKey string

	AdditionalOwnerKeys   []string
	AdditionalActiveKeys  []string
	AdditionalPostingKeys []string

	AdditionalOwnerAccounts   []string
	AdditionalActiveAccounts  []string
	AdditionalPostingAccounts []string

	// NoStoreKeys does not add the password derived keys to the wallet.
	NoStoreKeys bool
}

func (o AccountOptions) hasKeys() bool {
	return o.OwnerKey != "" || o.ActiveKey != "" ||
		o.PostingKey != "" || o.MemoKey != ""
}

// CreateAccount registers a new account paying the account creation fee.
// Keys derived from a password are added to the wallet, except the owner
// key.
func (s *Steem) CreateAccount(ctx context.Context,
	opts AccountOptions) (*txbuilder.Builder, error) {
	creator, err := orDefault(opts.Creator, s.DefaultAuthor)
	if err != nil {
		return nil, err
	}
	if opts.Password != "" && opts.hasKeys() {
		return nil, ErrPasswordAndKeys
	}

	switch _, err := s.API.GetAccount(ctx, opts.Name); {
	case err == nil:
		return nil, fmt.Errorf("%w: %q", ErrAccountExists, opts.Name)
	case !errors.Is(err, api.ErrAccountNotFound):
		return nil, err
	}

	var owner, active, posting, memoKey *keys.PublicKey
	var store []*keys.PrivateKey
	switch {
	case opts.Password != "":
		derive := func(role string) *keys.PrivateKey {
			return keys.PasswordKey(opts.Name, opts.Password, role)
		}
		ownerPriv, activePriv := derive(keys.RoleOwner), derive(keys.RoleActive)
		postingPriv, memoPriv := derive(keys.RolePosting), derive(keys.RoleMemo)
		owner = ownerPriv.PublicKey()
		active = activePriv.PublicKey()
		posting = postingPriv.PublicKey()
		memoKey = memoPriv.PublicKey()
		store = []*keys.PrivateKey{activePriv, postingPriv, memoPriv}
	case opts.OwnerKey != "" && opts.ActiveKey != "" &&
		opts.PostingKey != "" && opts.MemoKey != "":
		pubs, err := s.publicKeys(opts.OwnerKey, opts.ActiveKey,
			opts.PostingKey, opts.MemoKey)
		if err != nil {
			return nil, err
		}
		owner, active, posting, memoKey = pubs[0], pubs[1], pubs[2], pubs[3]
	default:
		return nil, ErrIncompleteKeys
	}

	ownerAuth, err := s.newAuthority(owner,
		opts.AdditionalOwnerKeys, opts.AdditionalOwnerAccounts)
	if err != nil {
		return nil, err
	}
	activeAuth, err := s.newAuthority(active,
		opts.AdditionalActiveKeys, opts.AdditionalActiveAccounts)
	if err != nil {
		return nil, err
	}
	postingAuth, err := s.newAuthority(posting,
		opts.AdditionalPostingKeys, opts.AdditionalPostingAccounts)
	if err != nil {
		return nil, err
	}

	meta := opts.JSONMeta
	if meta == nil {
		meta = map[string]interface{}{}
	}
	jsonMeta, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("json_metadata: %w", err)
	}

	props, err := s.API.GetChainProperties(ctx)
	if err != nil {
		return nil, err
	}
	op := &protocol.AccountCreate{
		Fee:            props.AccountCreationFee,
		Creator:        creator,
		NewAccountName: opts.Name,
		Owner:          ownerAuth,
		Active:         activeAuth,
		Posting:        postingAuth,
		MemoKey:        memoKey.WithPrefix(s.chain.Prefix),
		JSONMetadata:   string(jsonMeta),
	}
	b, err := s.FinalizeOp(ctx, creator, keys.RoleActive, op)
	if err != nil {
		return nil, err
	}

	if opts.NoStoreKeys || s.Wallet == nil {
		return b, nil
	}
	for _, priv := range store {
		if _, err := s.Wallet.AddPrivateKey(ctx, priv.String()); err != nil {
			return b, fmt.Errorf("store key: %w", err)
		}
	}
	return b, nil
}

func (s *Steem) publicKeys(strs ...string) ([]*keys.PublicKey, error) {
	pubs := make([]*keys.PublicKey, len(strs))
	for i, str := range strs {
		pub, err := keys.NewPublicKeyWithPrefix(str, s.chain.Prefix)
		if err != nil {
			return nil, fmt.Errorf("public key %q: %w", str, err)
		}
		pubs[i] = pub
	}
	return pubs, nil
}

func (s *Steem) newAuthority(main *keys.PublicKey,
	additionalKeys, additionalAccounts []string) (*protocol.Authority, error) {
	auth := protocol.NewKeyAuthority(main.WithPrefix(s.chain.Prefix))
	pubs, err := s.publicKeys(additionalKeys...)
	if err != nil {
		return nil, err
	}
	for _, pub := range pubs {
		auth.KeyAuths = append(auth.KeyAuths, protocol.KeyAuth{Key: pub, Weight: 1})
	}
	for _, account := range additionalAccounts {
		auth.AccountAuths = append(auth.AccountAuths,
			protocol.AccountAuth{Account: account, Weight: 1})
	}
	return auth, nil
}

// Transfer sends amount of STEEM or SBD to to. A memo starting with "#" is
// encrypted with the memo key of account and the memo key of to.
func (s *Steem) Transfer(ctx context.Context, to string, amount protocol.Amount,
	memoText, account string) (*txbuilder.Builder, error) {
	account, err := orDefault(account, s.DefaultAccount)
	if err != nil {
		return nil, err
	}
	if err := s.liquidAsset(amount); err != nil {
		return nil, err
	}
	memoText, err = s.encryptMemo(ctx, account, to, memoText)
	if err != nil {
		return nil, err
	}
	op := &protocol.Transfer{From: account, To: to, Amount: amount, Memo: memoText}
	return s.FinalizeOp(ctx, account, keys.RoleActive, op)
}

func (s *Steem) liquidAsset(amount protocol.Amount) error {
	if amount.Symbol != s.chain.SteemSymbol && amount.Symbol != s.chain.SBDSymbol {
		return fmt.Errorf("%w: %v, must be %v or %v", ErrInvalidAsset,
			amount.Symbol, s.chain.SteemSymbol, s.chain.SBDSymbol)
	}
	return nil
}

func (s *Steem) encryptMemo(ctx context.Context,
	from, to, text string) (string, error) {
	if !strings.HasPrefix(text, "#") {
		return text, nil
	}
	if s.Wallet == nil {
		return "", fmt.Errorf("memo key of %q: %w", from, ErrNoWallet)
	}
	priv, err := s.Wallet.MemoKey(ctx, from)
	if err != nil {
		return "", err
	}
	toAcc, err := s.API.GetAccount(ctx, to)
	if err != nil {
		return "", err
	}
	nonce, err := memo.RandomNonce()
	if err != nil {
		return "", err
	}
	return memo.Encode(priv, toAcc.MemoKey, nonce, text)
}

// DecodeMemo decrypts an encrypted memo with whichever of its keys the
// wallet holds.
func (s *Steem) DecodeMemo(ctx context.Context, encrypted string) (string, error) {
	if s.Wallet == nil {
		return "", ErrNoWallet
	}
	from, to, err := memo.InvolvedKeys(encrypted)
	if err != nil {
		return "", err
	}
	var lastErr error
	for _, pub := range []*keys.PublicKey{from, to} {
		priv, err := s.Wallet.PrivateKeyForPublicKey(ctx, pub)
		if err != nil {
			lastErr = err
			continue
		}
		text, err := memo.Decode(priv, encrypted)
		if errors.Is(err, memo.ErrWrongKey) {
			lastErr = err
			continue
		}
		return text, err
	}
	return "", lastErr
}

// WithdrawVesting starts powering down amount of VESTS.
func (s *Steem) WithdrawVesting(ctx context.Context, amount protocol.Amount,
	account string) (*txbuilder.Builder, error) {
	account, err := orDefault(account, s.DefaultAccount)
	if err != nil {
		return nil, err
	}
	if amount.Symbol != s.chain.VestsSymbol {
		return nil, fmt.Errorf("%w: %v, must be %v", ErrInvalidAsset,
			amount.Symbol, s.chain.VestsSymbol)
	}
	op := &protocol.WithdrawVesting{Account: account, VestingShares: amount}
	return s.FinalizeOp(ctx, account, keys.RoleActive, op)
}

// TransferToVesting powers up amount of STEEM to to, or to account when to
// is empty.
func (s *Steem) TransferToVesting(ctx context.Context, amount protocol.Amount,
	to, account string) (*txbuilder.Builder, error) {
	account, err := orDefault(account, s.DefaultAccount)
	if err != nil {
		return nil, err
	}
	if amount.Symbol != s.chain.SteemSymbol {
		return nil, fmt.Errorf("%w: %v, must be %v", ErrInvalidAsset,
			amount.Symbol, s.chain.SteemSymbol)
	}
	if to == "" {
		to = account
	}
	op := &protocol.TransferToVesting{From: account, To: to, Amount: amount}
	return s.FinalizeOp(ctx, account, keys.RoleActive, op)
}

// Convert converts amount of SBD to STEEM, which settles after a week. A
// zero requestID is replaced by a random one.
func (s *Steem) Convert(ctx context.Context, amount protocol.Amount,
	requestID uint32, account string) (*txbuilder.Builder, error) {
	account, err := orDefault(account, s.DefaultAccount)
	if err != nil {
		return nil, err
	}
	if amount.Symbol != s.chain.SBDSymbol {
		return nil, fmt.Errorf("%w: %v, must be %v", ErrInvalidAsset,
			amount.Symbol, s.chain.SBDSymbol)
	}
	if requestID == 0 {
		if requestID, err = randomUint32(); err != nil {
			return nil, err
		}
	}
	op := &protocol.Convert{Owner: account, RequestID: requestID, Amount: amount}
	return s.FinalizeOp(ctx, account, keys.RoleActive, op)
}

// SetWithdrawVestingRoute routes percentage of the power down of account to
// to. With autoVest the routed amount is received as VESTS.
func (s *Steem) SetWithdrawVestingRoute(ctx context.Context, to string,
	percentage float64, autoVest bool, account string) (*txbuilder.Builder, error) {
	account, err := orDefault(account, s.DefaultAccount)
	if err != nil {
		return nil, err
	}
	if percentage < 0 || percentage > 100 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPercentage, percentage)
	}
	op := &protocol.SetWithdrawVestingRoute{
		FromAccount: account,
		ToAccount:   to,
		Percent:     uint16(percentage * protocol.Percent1),
		AutoVest:    autoVest,
	}
	return s.FinalizeOp(ctx, account, keys.RoleActive, op)
}

// TransferToSavings moves amount into the savings balance of to.
func (s *Steem) TransferToSavings(ctx context.Context, to string,
	amount protocol.Amount, memoText, account string) (*txbuilder.Builder, error) {
	account, err := orDefault(account, s.DefaultAccount)
	if err != nil {
		return nil, err
	}
	if err := s.liquidAsset(amount); err != nil {
		return nil, err
	}
	if to == "" {
		to = account
	}
	memoText, err = s.encryptMemo(ctx, account, to, memoText)
	if err != nil {
		return nil, err
	}
	op := &protocol.TransferToSavings{From: account, To: to, Amount: amount,
		Memo: memoText}
	return s.FinalizeOp(ctx, account, keys.RoleActive, op)
}

// TransferFromSavings requests a withdrawal from the savings of account to
// to, which completes after three days. A zero requestID is replaced by a
// random one.
func (s *Steem) TransferFromSavings(ctx context.Context, to string,
	amount protocol.Amount, memoText string, requestID uint32,
	account string) (*txbuilder.Builder, error) {
	account, err := orDefault(account, s.DefaultAccount)
	if err != nil {
		return nil, err
	}
	if err := s.liquidAsset(amount); err != nil {
		return nil, err
	}
	if to == "" {
		to = account
	}
	if requestID == 0 {
		if requestID, err = randomUint32(); err != nil {
			return nil, err
		}
	}
	memoText, err = s.encryptMemo(ctx, account, to, memoText)
	if err != nil {
		return nil, err
	}
	op := &protocol.TransferFromSavings{From: account, RequestID: requestID,
		To: to, Amount: amount, Memo: memoText}
	return s.FinalizeOp(ctx, account, keys.RoleActive, op)
}

func (s *Steem) CancelTransferFromSavings(ctx context.Context, requestID uint32,
	account string) (*txbuilder.Builder, error) {
	account, err := orDefault(account, s.DefaultAccount)
	if err != nil {
		return nil, err
	}
	op := &protocol.CancelTransferFromSavings{From: account, RequestID: requestID}
	return s.FinalizeOp(ctx, account, keys.RoleActive, op)
}
