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
	"errors"

	jsonrpc2 "github.com/AdamSLevy/jsonrpc2/v14"

	"github.com/Steem-Tools/steemgo/api"
	"github.com/Steem-Tools/steemgo/keys"
	"github.com/Steem-Tools/steemgo/steem"
	"github.com/Steem-Tools/steemgo/txbuilder"
	"github.com/Steem-Tools/steemgo/wallet"
)

var (
	ErrorWalletLocked = jsonrpc2.NewError(-32800, "Wallet Locked",
		"the wallet must be unlocked first")
	ErrorWalletNotCreated = jsonrpc2.NewError(-32801, "Wallet Not Created",
		"set a password with set_password first")
	ErrorWrongPassword = jsonrpc2.NewError(-32802, "Wrong Password", nil)
	ErrorInvalidKey    = jsonrpc2.NewError(-32803, "Invalid Key", nil)
	ErrorMissingKey    = jsonrpc2.NewError(-32804, "Missing Key",
		"the wallet does not hold a required private key")
	ErrorAccountNotFound = jsonrpc2.NewError(-32805, "Account Not Found", nil)
	ErrorNode            = jsonrpc2.NewError(-32806, "Node Error", nil)
)

// toError maps err to one of the errors above. The message of err becomes
// the data of the returned error.
func toError(err error) error {
	var e jsonrpc2.Error
	switch {
	case errors.As(err, &e):
		return e
	case errors.Is(err, steem.ErrInvalidWeight),
		errors.Is(err, steem.ErrInvalidAsset),
		errors.Is(err, steem.ErrInvalidIdentifier),
		errors.Is(err, steem.ErrNoAccount),
		errors.Is(err, wallet.ErrEmptyPassword):
		return jsonrpc2.ErrorInvalidParams(err.Error())
	case errors.Is(err, wallet.ErrLocked):
		e = ErrorWalletLocked
		return e
	case errors.Is(err, wallet.ErrNotCreated):
		e = ErrorWalletNotCreated
		return e
	case errors.Is(err, wallet.ErrWrongPassword):
		e = ErrorWrongPassword
	case errors.Is(err, wallet.ErrInvalidWIF),
		errors.Is(err, keys.ErrInvalidLength),
		errors.Is(err, keys.ErrInvalidChecksum),
		errors.Is(err, keys.ErrInvalidVersion),
		errors.Is(err, keys.ErrInvalidPrefix):
		e = ErrorInvalidKey
	case errors.Is(err, wallet.ErrMissingKey),
		errors.Is(err, txbuilder.ErrMissingKey):
		e = ErrorMissingKey
	case errors.Is(err, api.ErrAccountNotFound):
		e = ErrorAccountNotFound
	default:
		e = ErrorNode
	}
	e.Data = err.Error()
	return e
}
