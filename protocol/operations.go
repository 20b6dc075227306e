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

package protocol

import (
	"encoding/json"

	"github.com/Steem-Tools/steemgo/keys"
)

// Operation is a single action of a Transaction.
type Operation interface {
	Type() OpType
	BinaryMarshaler
}

// StringList is a list of strings that is never encoded as JSON null.
type StringList []string

func (l StringList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

type Vote struct {
	Voter    string `json:"voter"`
	Author   string `json:"author"`
	Permlink string `json:"permlink"`
	Weight   int16  `json:"weight"`
}

func (op *Vote) Type() OpType { return OpVote }

func (op *Vote) MarshalBinary(enc *Encoder) {
	enc.String(op.Voter)
	enc.String(op.Author)
	enc.String(op.Permlink)
	enc.Int16(op.Weight)
}

type Comment struct {
	ParentAuthor   string `json:"parent_author"`
	ParentPermlink string `json:"parent_permlink"`
	Author         string `json:"author"`
	Permlink       string `json:"permlink"`
	Title          string `json:"title"`
	Body           string `json:"body"`
	JSONMetadata   string `json:"json_metadata"`
}

func (op *Comment) Type() OpType { return OpComment }

func (op *Comment) MarshalBinary(enc *Encoder) {
	enc.String(op.ParentAuthor)
	enc.String(op.ParentPermlink)
	enc.String(op.Author)
	enc.String(op.Permlink)
	enc.String(op.Title)
	enc.String(op.Body)
	enc.String(op.JSONMetadata)
}

// IsReply reports whether the comment has a parent post.
func (op *Comment) IsReply() bool {
	return op.ParentAuthor != ""
}

type DeleteComment struct {
	Author   string `json:"author"`
	Permlink string `json:"permlink"`
}

func (op *DeleteComment) Type() OpType { return OpDeleteComment }

func (op *DeleteComment) MarshalBinary(enc *Encoder) {
	enc.String(op.Author)
	enc.String(op.Permlink)
}

type Transfer struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount Amount `json:"amount"`
	Memo   string `json:"memo"`
}

func (op *Transfer) Type() OpType { return OpTransfer }

func (op *Transfer) MarshalBinary(enc *Encoder) {
	enc.String(op.From)
	enc.String(op.To)
	op.Amount.MarshalBinary(enc)
	enc.String(op.Memo)
}

type TransferToVesting struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount Amount `json:"amount"`
}

func (op *TransferToVesting) Type() OpType { return OpTransferToVesting }

func (op *TransferToVesting) MarshalBinary(enc *Encoder) {
	enc.String(op.From)
	enc.String(op.To)
	op.Amount.MarshalBinary(enc)
}

type WithdrawVesting struct {
	Account       string `json:"account"`
	VestingShares Amount `json:"vesting_shares"`
}

func (op *WithdrawVesting) Type() OpType { return OpWithdrawVesting }

func (op *WithdrawVesting) MarshalBinary(enc *Encoder) {
	enc.String(op.Account)
	op.VestingShares.MarshalBinary(enc)
}

type SetWithdrawVestingRoute struct {
	FromAccount string `json:"from_account"`
	ToAccount   string `json:"to_account"`
	Percent     uint16 `json:"percent"`
	AutoVest    bool   `json:"auto_vest"`
}

func (op *SetWithdrawVestingRoute) Type() OpType { return OpSetWithdrawVestingRoute }

func (op *SetWithdrawVestingRoute) MarshalBinary(enc *Encoder) {
	enc.String(op.FromAccount)
	enc.String(op.ToAccount)
	enc.Uint16(op.Percent)
	enc.Bool(op.AutoVest)
}

type LimitOrderCreate struct {
	Owner        string `json:"owner"`
	OrderID      uint32 `json:"orderid"`
	AmountToSell Amount `json:"amount_to_sell"`
	MinToReceive Amount `json:"min_to_receive"`
	FillOrKill   bool   `json:"fill_or_kill"`
	Expiration   Time   `json:"expiration"`
}

func (op *LimitOrderCreate) Type() OpType { return OpLimitOrderCreate }

func (op *LimitOrderCreate) MarshalBinary(enc *Encoder) {
	enc.String(op.Owner)
	enc.Uint32(op.OrderID)
	op.AmountToSell.MarshalBinary(enc)
	op.MinToReceive.MarshalBinary(enc)
	enc.Bool(op.FillOrKill)
	op.Expiration.MarshalBinary(enc)
}

type LimitOrderCancel struct {
	Owner   string `json:"owner"`
	OrderID uint32 `json:"orderid"`
}

func (op *LimitOrderCancel) Type() OpType { return OpLimitOrderCancel }

func (op *LimitOrderCancel) MarshalBinary(enc *Encoder) {
	enc.String(op.Owner)
	enc.Uint32(op.OrderID)
}

type FeedPublish struct {
	Publisher    string       `json:"publisher"`
	ExchangeRate ExchangeRate `json:"exchange_rate"`
}

func (op *FeedPublish) Type() OpType { return OpFeedPublish }

func (op *FeedPublish) MarshalBinary(enc *Encoder) {
	enc.String(op.Publisher)
	op.ExchangeRate.MarshalBinary(enc)
}

type Convert struct {
	Owner     string `json:"owner"`
	RequestID uint32 `json:"requestid"`
	Amount    Amount `json:"amount"`
}

func (op *Convert) Type() OpType { return OpConvert }

func (op *Convert) MarshalBinary(enc *Encoder) {
	enc.String(op.Owner)
	enc.Uint32(op.RequestID)
	op.Amount.MarshalBinary(enc)
}

type AccountCreate struct {
	Fee            Amount          `json:"fee"`
	Creator        string          `json:"creator"`
	NewAccountName string          `json:"new_account_name"`
	Owner          *Authority      `json:"owner"`
	Active         *Authority      `json:"active"`
	Posting        *Authority      `json:"posting"`
	MemoKey        *keys.PublicKey `json:"memo_key"`
	JSONMetadata   string          `json:"json_metadata"`
}

func (op *AccountCreate) Type() OpType { return OpAccountCreate }

func (op *AccountCreate) MarshalBinary(enc *Encoder) {
	op.Fee.MarshalBinary(enc)
	enc.String(op.Creator)
	enc.String(op.NewAccountName)
	op.Owner.MarshalBinary(enc)
	op.Active.MarshalBinary(enc)
	op.Posting.MarshalBinary(enc)
	enc.Raw(op.MemoKey.Bytes())
	enc.String(op.JSONMetadata)
}

// AccountUpdate replaces the authorities that are not nil.
type AccountUpdate struct {
	Account      string          `json:"account"`
	Owner        *Authority      `json:"owner,omitempty"`
	Active       *Authority      `json:"active,omitempty"`
	Posting      *Authority      `json:"posting,omitempty"`
	MemoKey      *keys.PublicKey `json:"memo_key"`
	JSONMetadata string          `json:"json_metadata"`
}

func (op *AccountUpdate) Type() OpType { return OpAccountUpdate }

func (op *AccountUpdate) MarshalBinary(enc *Encoder) {
	enc.String(op.Account)
	enc.Optional(op.Owner, op.Owner != nil)
	enc.Optional(op.Active, op.Active != nil)
	enc.Optional(op.Posting, op.Posting != nil)
	enc.Raw(op.MemoKey.Bytes())
	enc.String(op.JSONMetadata)
}

type WitnessUpdate struct {
	Owner           string          `json:"owner"`
	URL             string          `json:"url"`
	BlockSigningKey *keys.PublicKey `json:"block_signing_key"`
	Props           ChainProperties `json:"props"`
	Fee             Amount          `json:"fee"`
}

func (op *WitnessUpdate) Type() OpType { return OpWitnessUpdate }

func (op *WitnessUpdate) MarshalBinary(enc *Encoder) {
	enc.String(op.Owner)
	enc.String(op.URL)
	enc.Raw(op.BlockSigningKey.Bytes())
	op.Props.MarshalBinary(enc)
	op.Fee.MarshalBinary(enc)
}

type AccountWitnessVote struct {
	Account string `json:"account"`
	Witness string `json:"witness"`
	Approve bool   `json:"approve"`
}

func (op *AccountWitnessVote) Type() OpType { return OpAccountWitnessVote }

func (op *AccountWitnessVote) MarshalBinary(enc *Encoder) {
	enc.String(op.Account)
	enc.String(op.Witness)
	enc.Bool(op.Approve)
}

type AccountWitnessProxy struct {
	Account string `json:"account"`
	Proxy   string `json:"proxy"`
}

func (op *AccountWitnessProxy) Type() OpType { return OpAccountWitnessProxy }

func (op *AccountWitnessProxy) MarshalBinary(enc *Encoder) {
	enc.String(op.Account)
	enc.String(op.Proxy)
}

// CustomJSON carries application defined JSON, such as follows and
// resteems.
type CustomJSON struct {
	RequiredAuths        StringList `json:"required_auths"`
	RequiredPostingAuths StringList `json:"required_posting_auths"`
	ID                   string     `json:"id"`
	JSON                 string     `json:"json"`
}

func (op *CustomJSON) Type() OpType { return OpCustomJSON }

func (op *CustomJSON) MarshalBinary(enc *Encoder) {
	enc.Strings(op.RequiredAuths)
	enc.Strings(op.RequiredPostingAuths)
	enc.String(op.ID)
	enc.String(op.JSON)
}

type TransferToSavings struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount Amount `json:"amount"`
	Memo   string `json:"memo"`
}

func (op *TransferToSavings) Type() OpType { return OpTransferToSavings }

func (op *TransferToSavings) MarshalBinary(enc *Encoder) {
	enc.String(op.From)
	enc.String(op.To)
	op.Amount.MarshalBinary(enc)
	enc.String(op.Memo)
}

type TransferFromSavings struct {
	From      string `json:"from"`
	RequestID uint32 `json:"request_id"`
	To        string `json:"to"`
	Amount    Amount `json:"amount"`
	Memo      string `json:"memo"`
}

func (op *TransferFromSavings) Type() OpType { return OpTransferFromSavings }

func (op *TransferFromSavings) MarshalBinary(enc *Encoder) {
	enc.String(op.From)
	enc.Uint32(op.RequestID)
	enc.String(op.To)
	op.Amount.MarshalBinary(enc)
	enc.String(op.Memo)
}

type CancelTransferFromSavings struct {
	From      string `json:"from"`
	RequestID uint32 `json:"request_id"`
}

func (op *CancelTransferFromSavings) Type() OpType { return OpCancelTransferFromSavings }

func (op *CancelTransferFromSavings) MarshalBinary(enc *Encoder) {
	enc.String(op.From)
	enc.Uint32(op.RequestID)
}
