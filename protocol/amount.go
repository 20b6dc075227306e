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
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Asset symbols.
const (
	SymbolSTEEM = "STEEM"
	SymbolSBD   = "SBD"
	SymbolVESTS = "VESTS"
	SymbolTESTS = "TESTS"
	SymbolTBD   = "TBD"
)

var precisions = map[string]uint8{
	SymbolSTEEM: 3,
	SymbolSBD:   3,
	SymbolVESTS: 6,
	SymbolTESTS: 3,
	SymbolTBD:   3,
}

var (
	ErrUnknownSymbol  = errors.New("unknown asset symbol")
	ErrSymbolMismatch = errors.New("asset symbols differ")
	ErrInvalidAmount  = errors.New("invalid amount")
)

// Precision returns the number of decimals of symbol.
func Precision(symbol string) (uint8, error) {
	p, ok := precisions[symbol]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownSymbol, symbol)
	}
	return p, nil
}

// Amount is an exact quantity of an asset, stored as an integer number of
// the smallest units.
type Amount struct {
	Amount    int64
	Precision uint8
	Symbol    string
}

// NewAmount returns units of the smallest denomination of symbol.
func NewAmount(units int64, symbol string) (Amount, error) {
	p, err := Precision(symbol)
	if err != nil {
		return Amount{}, err
	}
	return Amount{Amount: units, Precision: p, Symbol: symbol}, nil
}

// AmountFromFloat rounds f to the precision of symbol.
func AmountFromFloat(f float64, symbol string) (Amount, error) {
	p, err := Precision(symbol)
	if err != nil {
		return Amount{}, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Amount{}, ErrInvalidAmount
	}
	units := math.Round(f * math.Pow10(int(p)))
	return Amount{Amount: int64(units), Precision: p, Symbol: symbol}, nil
}

// ParseAmount parses "1.000 STEEM". Fewer decimals than the precision of the
// symbol are allowed. More are not.
func ParseAmount(s string) (Amount, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return Amount{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	num, symbol := fields[0], fields[1]
	p, err := Precision(symbol)
	if err != nil {
		return Amount{}, err
	}

	neg := strings.HasPrefix(num, "-")
	num = strings.TrimPrefix(num, "-")
	whole, frac := num, ""
	if i := strings.IndexByte(num, '.'); i >= 0 {
		whole, frac = num[:i], num[i+1:]
	}
	if len(frac) > int(p) || (whole == "" && frac == "") {
		return Amount{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	frac += strings.Repeat("0", int(p)-len(frac))
	if whole == "" {
		whole = "0"
	}
	units, err := strconv.ParseInt(whole+frac, 10, 64)
	if err != nil || units < 0 {
		return Amount{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if neg {
		units = -units
	}
	return Amount{Amount: units, Precision: p, Symbol: symbol}, nil
}

// MustParseAmount is like ParseAmount but panics on error.
func MustParseAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Amount) String() string {
	units := a.Amount
	sign := ""
	if units < 0 {
		sign = "-"
		units = -units
	}
	if a.Precision == 0 {
		return fmt.Sprintf("%v%v %v", sign, units, a.Symbol)
	}
	div := int64(math.Pow10(int(a.Precision)))
	return fmt.Sprintf("%v%v.%0*d %v", sign, units/div,
		int(a.Precision), units%div, a.Symbol)
}

// Float64 returns the amount for display purposes.
func (a Amount) Float64() float64 {
	return float64(a.Amount) / math.Pow10(int(a.Precision))
}

func (a Amount) IsZero() bool {
	return a.Amount == 0
}

func (a Amount) Add(b Amount) (Amount, error) {
	if a.Symbol != b.Symbol {
		return Amount{}, ErrSymbolMismatch
	}
	a.Amount += b.Amount
	return a, nil
}

func (a Amount) Sub(b Amount) (Amount, error) {
	if a.Symbol != b.Symbol {
		return Amount{}, ErrSymbolMismatch
	}
	a.Amount -= b.Amount
	return a, nil
}

// MarshalJSON encodes the zero Amount, which has no symbol, as null.
func (a Amount) MarshalJSON() ([]byte, error) {
	if a == (Amount{}) {
		return []byte("null"), nil
	}
	return json.Marshal(a.String())
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*a = Amount{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%T: expected JSON string", a)
	}
	amount, err := ParseAmount(s)
	if err != nil {
		return fmt.Errorf("%T: %w", a, err)
	}
	*a = amount
	return nil
}

// MarshalBinary writes int64 ‖ precision ‖ symbol padded to 7 bytes.
func (a Amount) MarshalBinary(enc *Encoder) {
	enc.Int64(a.Amount)
	enc.Uint8(a.Precision)
	var symbol [7]byte
	copy(symbol[:], a.Symbol)
	enc.Raw(symbol[:])
}
