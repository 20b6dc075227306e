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
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"
)

// Percentages are expressed in hundredths of a percent.
const (
	Percent100 = 10000
	Percent1   = Percent100 / 100
)

// ChainID is mixed into every transaction digest.
type ChainID [32]byte

func (id ChainID) String() string {
	return hex.EncodeToString(id[:])
}

// ParseChainID decodes a hex chain id.
func ParseChainID(s string) (ChainID, error) {
	var id ChainID
	data, err := hex.DecodeString(s)
	if err != nil {
		return id, err
	}
	if len(data) != len(id) {
		return id, fmt.Errorf("chain id must be %v bytes", len(id))
	}
	copy(id[:], data)
	return id, nil
}

// Chain describes a network.
type Chain struct {
	Name        string
	ID          ChainID
	Prefix      string
	SteemSymbol string
	SBDSymbol   string
	VestsSymbol string
}

var (
	SteemChain = Chain{
		Name:        "STEEM",
		Prefix:      "STM",
		SteemSymbol: SymbolSTEEM,
		SBDSymbol:   SymbolSBD,
		VestsSymbol: SymbolVESTS,
	}
	TestChain = Chain{
		Name:        "TEST",
		ID:          mustParseChainID("9afbce9f2416520733bacb370315d32b6b2c43d6097576df1c1222859d91eecc"),
		Prefix:      "TST",
		SteemSymbol: SymbolTESTS,
		SBDSymbol:   SymbolTBD,
		VestsSymbol: SymbolVESTS,
	}
)

// Chains lists the known networks.
var Chains = []Chain{SteemChain, TestChain}

func mustParseChainID(s string) ChainID {
	id, err := ParseChainID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// ChainByName returns the known chain with the given name, ignoring case.
func ChainByName(name string) (Chain, error) {
	for _, c := range Chains {
		if strings.EqualFold(c.Name, name) {
			return c, nil
		}
	}
	return Chain{}, fmt.Errorf("unknown chain %q", name)
}

// ChainBySymbol identifies the network from the core asset symbol, as found
// in current_supply.
func ChainBySymbol(symbol string) (Chain, error) {
	for _, c := range Chains {
		if c.SteemSymbol == symbol {
			return c, nil
		}
	}
	return Chain{}, fmt.Errorf("%w: no chain for %q", ErrUnknownSymbol, symbol)
}

// RefBlock returns the ref_block_num and ref_block_prefix for a transaction
// that references the block with the given number and hex id.
func RefBlock(num uint32, id string) (uint16, uint32, error) {
	data, err := hex.DecodeString(id)
	if err != nil {
		return 0, 0, fmt.Errorf("block id: %w", err)
	}
	if len(data) < 8 {
		return 0, 0, fmt.Errorf("block id too short: %q", id)
	}
	return uint16(num & 0xFFFF), binary.LittleEndian.Uint32(data[4:8]), nil
}
