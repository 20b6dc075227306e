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

package walletrpc

import (
	"encoding/json"
	"fmt"

	"github.com/Steem-Tools/steemgo/protocol"
)

// Info describes the chain as seen by the wallet.
type Info struct {
	HeadBlockNum             uint32        `json:"head_block_num"`
	HeadBlockID              string        `json:"head_block_id"`
	HeadBlockAge             string        `json:"head_block_age"`
	LastIrreversibleBlockNum uint32        `json:"last_irreversible_block_num"`
	ChainID                  string        `json:"chain_id"`
	Time                     protocol.Time `json:"time"`
	Participation            float64       `json:"participation"`
	Locked                   bool          `json:"locked"`
}

// About describes the wallet build.
type About struct {
	ClientVersion string `json:"client_version"`
	Revision      string `json:"steem_revision"`
	ChainID       string `json:"chain_id"`
	Compiler      string `json:"compile_date"`
}

// KeyPair is a public key and its WIF private key. It is encoded as a two
// element array.
type KeyPair struct {
	Public  string
	Private string
}

func (p KeyPair) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{p.Public, p.Private})
}

func (p *KeyPair) UnmarshalJSON(data []byte) error {
	var pair [2]string
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("%T: %w", p, err)
	}
	p.Public, p.Private = pair[0], pair[1]
	return nil
}

type BrainKey struct {
	BrainPrivKey string `json:"brain_priv_key"`
	WIFPrivKey   string `json:"wif_priv_key"`
	PubKey       string `json:"pub_key"`
}

// Transaction is a signed transaction, with its location once it is
// included in a block.
type Transaction struct {
	protocol.Transaction
	TransactionID  string `json:"transaction_id"`
	BlockNum       uint32 `json:"block_num"`
	TransactionNum uint32 `json:"transaction_num"`
}
