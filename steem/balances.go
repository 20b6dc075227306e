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
	"time"

	"github.com/Steem-Tools/steemgo/api"
	"github.com/Steem-Tools/steemgo/protocol"
)

// Balances of an account.
type Balances struct {
	Balance           protocol.Amount `json:"balance"`
	VestingShares     protocol.Amount `json:"vesting_shares"`
	SBDBalance        protocol.Amount `json:"sbd_balance"`
	SavingsBalance    protocol.Amount `json:"savings_balance"`
	SavingsSBDBalance protocol.Amount `json:"savings_sbd_balance"`

	// VestingSharesSteem is the STEEM value of VestingShares.
	VestingSharesSteem protocol.Amount `json:"vesting_shares_steem"`
}

func (s *Steem) GetBalances(ctx context.Context, account string) (*Balances, error) {
	account, err := orDefault(account, s.DefaultAccount)
	if err != nil {
		return nil, err
	}
	acc, err := s.API.GetAccount(ctx, account)
	if err != nil {
		return nil, err
	}
	props, err := s.API.GetDynamicGlobalProperties(ctx)
	if err != nil {
		return nil, err
	}
	steem := acc.VestingShares.Float64() / 1e6 * props.SteemPerMVests()
	vestingSteem, err := protocol.AmountFromFloat(steem, s.chain.SteemSymbol)
	if err != nil {
		return nil, err
	}
	return &Balances{
		Balance:            acc.Balance,
		VestingShares:      acc.VestingShares,
		SBDBalance:         acc.SBDBalance,
		SavingsBalance:     acc.SavingsBalance,
		SavingsSBDBalance:  acc.SavingsSBDBalance,
		VestingSharesSteem: vestingSteem,
	}, nil
}

// InterestPeriod is the time between SBD interest payments.
const InterestPeriod = 30 * 24 * time.Hour

// Interest on the SBD balance of an account.
type Interest struct {
	// Interest is the SBD accrued since the last payment.
	Interest            float64       `json:"interest"`
	LastPayment         time.Time     `json:"last_payment"`
	NextPayment         time.Time     `json:"next_payment"`
	NextPaymentDuration time.Duration `json:"next_payment_duration"`
	// InterestRate is in percent per year.
	InterestRate float64 `json:"interest_rate"`
}

// Interest estimates the SBD interest of account.
func (s *Steem) Interest(ctx context.Context, account string) (*Interest, error) {
	account, err := orDefault(account, s.DefaultAccount)
	if err != nil {
		return nil, err
	}
	acc, err := s.API.GetAccount(ctx, account)
	if err != nil {
		return nil, err
	}
	props, err := s.API.GetDynamicGlobalProperties(ctx)
	if err != nil {
		return nil, err
	}
	return interest(acc, props, s.now()), nil
}

func interest(acc *api.Account, props *api.DynamicGlobalProperties,
	now time.Time) *Interest {
	const secondsPerYear = 60 * 60 * 24 * 365
	rate := float64(props.SBDInterestRate) / 100
	years := int64(acc.SBDSeconds) / secondsPerYear
	last := acc.SBDLastInterestPayment.Time
	next := last.Add(InterestPeriod)
	return &Interest{
		Interest:            rate / 100 * float64(years) * 1e-3,
		LastPayment:         last,
		NextPayment:         next,
		NextPaymentDuration: next.Sub(now),
		InterestRate:        rate,
	}
}

// GetAccountHistory calls fn for the history entries of account from newest
// to oldest.
func (s *Steem) GetAccountHistory(ctx context.Context, account string,
	opts api.HistoryOptions, fn func(*api.HistoryEntry) error) error {
	account, err := orDefault(account, s.DefaultAccount)
	if err != nil {
		return err
	}
	return s.API.AccountHistory(ctx, account, opts, fn)
}
