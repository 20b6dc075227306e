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

package api

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/Steem-Tools/steemgo/keys"
	"github.com/Steem-Tools/steemgo/protocol"
)

// Float decodes numbers that nodes encode either as JSON numbers or as
// strings.
type Float float64

func (f *Float) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("%T: %w", f, err)
		}
		*f = Float(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("%T: expected number", f)
	}
	*f = Float(v)
	return nil
}

// Int decodes integers that nodes encode either as JSON numbers or as
// strings, such as share counts.
type Int int64

func (i *Int) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("%T: %w", i, err)
		}
		*i = Int(v)
		return nil
	}
	var v int64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("%T: expected integer", i)
	}
	*i = Int(v)
	return nil
}

type DynamicGlobalProperties struct {
	HeadBlockNumber          uint32          `json:"head_block_number"`
	HeadBlockID              string          `json:"head_block_id"`
	Time                     protocol.Time   `json:"time"`
	CurrentWitness           string          `json:"current_witness"`
	CurrentSupply            protocol.Amount `json:"current_supply"`
	VirtualSupply            protocol.Amount `json:"virtual_supply"`
	CurrentSBDSupply         protocol.Amount `json:"current_sbd_supply"`
	TotalVestingFundSteem    protocol.Amount `json:"total_vesting_fund_steem"`
	TotalVestingShares       protocol.Amount `json:"total_vesting_shares"`
	TotalRewardFundSteem     protocol.Amount `json:"total_reward_fund_steem"`
	SBDInterestRate          uint16          `json:"sbd_interest_rate"`
	MaximumBlockSize         uint32          `json:"maximum_block_size"`
	CurrentAslot             uint64          `json:"current_aslot"`
	LastIrreversibleBlockNum uint32          `json:"last_irreversible_block_num"`
	ParticipationCount       uint8           `json:"participation_count"`
}

// Participation is the percentage of the last 128 block slots that were
// filled by witnesses.
func (p *DynamicGlobalProperties) Participation() float64 {
	return float64(p.ParticipationCount) / 128 * 100
}

// SteemPerMVests is the amount of STEEM backing one million VESTS.
func (p *DynamicGlobalProperties) SteemPerMVests() float64 {
	shares := p.TotalVestingShares.Float64()
	if shares == 0 {
		return 0
	}
	return p.TotalVestingFundSteem.Float64() / (shares / 1e6)
}

// Config holds the compile time constants of a node. Older nodes use the
// STEEMIT_ prefix.
type Config struct {
	SteemitBlockInterval  uint32 `json:"STEEMIT_BLOCK_INTERVAL"`
	SteemBlockInterval    uint32 `json:"STEEM_BLOCK_INTERVAL"`
	SteemitAddressPrefix  string `json:"STEEMIT_ADDRESS_PREFIX"`
	SteemitChainID        string `json:"STEEMIT_CHAIN_ID"`
	SteemitBlockchainVers string `json:"STEEMIT_BLOCKCHAIN_VERSION"`
}

// BlockInterval returns the block interval in seconds, defaulting to 3.
func (c *Config) BlockInterval() uint32 {
	switch {
	case c.SteemitBlockInterval > 0:
		return c.SteemitBlockInterval
	case c.SteemBlockInterval > 0:
		return c.SteemBlockInterval
	}
	return 3
}

type BlockHeader struct {
	Previous              string        `json:"previous"`
	Timestamp             protocol.Time `json:"timestamp"`
	Witness               string        `json:"witness"`
	TransactionMerkleRoot string        `json:"transaction_merkle_root"`
}

type BlockTransaction struct {
	protocol.Transaction
	TransactionID  string `json:"transaction_id"`
	BlockNum       uint32 `json:"block_num"`
	TransactionNum uint32 `json:"transaction_num"`
}

type Block struct {
	BlockHeader
	WitnessSignature string             `json:"witness_signature"`
	Transactions     []BlockTransaction `json:"transactions"`
	BlockID          string             `json:"block_id"`
	SigningKey       string             `json:"signing_key"`
	TransactionIDs   []string           `json:"transaction_ids"`
}

type Account struct {
	ID           int64               `json:"id"`
	Name         string              `json:"name"`
	Owner        *protocol.Authority `json:"owner"`
	Active       *protocol.Authority `json:"active"`
	Posting      *protocol.Authority `json:"posting"`
	MemoKey      *keys.PublicKey     `json:"memo_key"`
	JSONMetadata string              `json:"json_metadata"`
	Proxy        string              `json:"proxy"`
	Created      protocol.Time       `json:"created"`
	PostCount    int64               `json:"post_count"`
	VotingPower  uint16              `json:"voting_power"`
	LastVoteTime protocol.Time       `json:"last_vote_time"`
	Reputation   Int                 `json:"reputation"`

	Balance           protocol.Amount `json:"balance"`
	SavingsBalance    protocol.Amount `json:"savings_balance"`
	SBDBalance        protocol.Amount `json:"sbd_balance"`
	SavingsSBDBalance protocol.Amount `json:"savings_sbd_balance"`

	SBDSeconds             Int           `json:"sbd_seconds"`
	SBDSecondsLastUpdate   protocol.Time `json:"sbd_seconds_last_update"`
	SBDLastInterestPayment protocol.Time `json:"sbd_last_interest_payment"`

	VestingShares         protocol.Amount `json:"vesting_shares"`
	VestingWithdrawRate   protocol.Amount `json:"vesting_withdraw_rate"`
	NextVestingWithdrawal protocol.Time   `json:"next_vesting_withdrawal"`
	Withdrawn             Int             `json:"withdrawn"`
	ToWithdraw            Int             `json:"to_withdraw"`

	WitnessesVotedFor int64    `json:"witnesses_voted_for"`
	WitnessVotes      []string `json:"witness_votes"`
}

// Authority returns the authority of role. Memo keys are not authorities and
// return nil.
func (a *Account) Authority(role string) *protocol.Authority {
	switch role {
	case keys.RoleOwner:
		return a.Owner
	case keys.RoleActive:
		return a.Active
	case keys.RolePosting:
		return a.Posting
	}
	return nil
}

type ActiveVote struct {
	Voter   string        `json:"voter"`
	Weight  Int           `json:"weight"`
	Rshares Int           `json:"rshares"`
	Percent int16         `json:"percent"`
	Time    protocol.Time `json:"time"`
}

type Content struct {
	ID                      int64           `json:"id"`
	Author                  string          `json:"author"`
	Permlink                string          `json:"permlink"`
	Category                string          `json:"category"`
	ParentAuthor            string          `json:"parent_author"`
	ParentPermlink          string          `json:"parent_permlink"`
	Title                   string          `json:"title"`
	Body                    string          `json:"body"`
	JSONMetadata            string          `json:"json_metadata"`
	Created                 protocol.Time   `json:"created"`
	LastUpdate              protocol.Time   `json:"last_update"`
	Active                  protocol.Time   `json:"active"`
	LastPayout              protocol.Time   `json:"last_payout"`
	CashoutTime             protocol.Time   `json:"cashout_time"`
	MaxCashoutTime          protocol.Time   `json:"max_cashout_time"`
	Depth                   int             `json:"depth"`
	Children                int             `json:"children"`
	NetVotes                int             `json:"net_votes"`
	Mode                    string          `json:"mode"`
	URL                     string          `json:"url"`
	RootTitle               string          `json:"root_title"`
	PendingPayoutValue      protocol.Amount `json:"pending_payout_value"`
	TotalPendingPayoutValue protocol.Amount `json:"total_pending_payout_value"`
	TotalPayoutValue        protocol.Amount `json:"total_payout_value"`
	CuratorPayoutValue      protocol.Amount `json:"curator_payout_value"`
	MaxAcceptedPayout       protocol.Amount `json:"max_accepted_payout"`
	Promoted                protocol.Amount `json:"promoted"`
	ActiveVotes             []ActiveVote    `json:"active_votes"`
}

// Identifier returns "@author/permlink".
func (c *Content) Identifier() string {
	return "@" + c.Author + "/" + c.Permlink
}

// DiscussionQuery selects discussions for GetDiscussionsBy.
type DiscussionQuery struct {
	Tag           string   `json:"tag"`
	Limit         uint32   `json:"limit"`
	FilterTags    []string `json:"filter_tags,omitempty"`
	StartAuthor   string   `json:"start_author,omitempty"`
	StartPermlink string   `json:"start_permlink,omitempty"`
}

// HistoryEntry is an operation in the history of an account.
type HistoryEntry struct {
	Index      int64                      `json:"-"`
	TrxID      string                     `json:"trx_id"`
	Block      uint32                     `json:"block"`
	TrxInBlock uint32                     `json:"trx_in_block"`
	OpInTrx    uint32                     `json:"op_in_trx"`
	VirtualOp  uint32                     `json:"virtual_op"`
	Timestamp  protocol.Time              `json:"timestamp"`
	Op         protocol.OperationEnvelope `json:"op"`
}

// UnmarshalJSON decodes [index, {entry}].
func (h *HistoryEntry) UnmarshalJSON(data []byte) error {
	type entry HistoryEntry
	pair := []interface{}{&h.Index, (*entry)(h)}
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("%T: %w", h, err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("%T: expected [index, entry]", h)
	}
	return nil
}

type Ticker struct {
	Latest        Float           `json:"latest"`
	LowestAsk     Float           `json:"lowest_ask"`
	HighestBid    Float           `json:"highest_bid"`
	PercentChange Float           `json:"percent_change"`
	SteemVolume   protocol.Amount `json:"steem_volume"`
	SBDVolume     protocol.Amount `json:"sbd_volume"`
}

type Volume struct {
	SteemVolume protocol.Amount `json:"steem_volume"`
	SBDVolume   protocol.Amount `json:"sbd_volume"`
}

// Order is an entry of the order book. Steem and SBD are in thousandths.
type Order struct {
	OrderPrice protocol.Price `json:"order_price"`
	RealPrice  Float          `json:"real_price"`
	Steem      int64          `json:"steem"`
	SBD        int64          `json:"sbd"`
	Created    protocol.Time  `json:"created"`
}

type OrderBook struct {
	Bids []Order `json:"bids"`
	Asks []Order `json:"asks"`
}

type Trade struct {
	Date        protocol.Time   `json:"date"`
	CurrentPays protocol.Amount `json:"current_pays"`
	OpenPays    protocol.Amount `json:"open_pays"`
}

type MarketBucket struct {
	ID          int64         `json:"id"`
	Open        protocol.Time `json:"open"`
	Seconds     uint32        `json:"seconds"`
	HighSteem   int64         `json:"high_steem"`
	HighSBD     int64         `json:"high_sbd"`
	LowSteem    int64         `json:"low_steem"`
	LowSBD      int64         `json:"low_sbd"`
	OpenSteem   int64         `json:"open_steem"`
	OpenSBD     int64         `json:"open_sbd"`
	CloseSteem  int64         `json:"close_steem"`
	CloseSBD    int64         `json:"close_sbd"`
	SteemVolume int64         `json:"steem_volume"`
	SBDVolume   int64         `json:"sbd_volume"`
}

type OpenOrder struct {
	ID         int64          `json:"id"`
	Created    protocol.Time  `json:"created"`
	Expiration protocol.Time  `json:"expiration"`
	Seller     string         `json:"seller"`
	OrderID    uint32         `json:"orderid"`
	ForSale    Int            `json:"for_sale"`
	SellPrice  protocol.Price `json:"sell_price"`
	RealPrice  Float          `json:"real_price"`
	Rewarded   bool           `json:"rewarded"`
}

type FeedHistory struct {
	CurrentMedianHistory protocol.Price   `json:"current_median_history"`
	PriceHistory         []protocol.Price `json:"price_history"`
}

type Witness struct {
	Owner                 string                   `json:"owner"`
	URL                   string                   `json:"url"`
	Votes                 Int                      `json:"votes"`
	TotalMissed           int64                    `json:"total_missed"`
	SigningKey            *keys.PublicKey          `json:"signing_key"`
	Props                 protocol.ChainProperties `json:"props"`
	SBDExchangeRate       protocol.Price           `json:"sbd_exchange_rate"`
	LastSBDExchangeUpdate protocol.Time            `json:"last_sbd_exchange_update"`
	RunningVersion        string                   `json:"running_version"`
}

type WithdrawRoute struct {
	FromAccount string `json:"from_account"`
	ToAccount   string `json:"to_account"`
	Percent     uint16 `json:"percent"`
	AutoVest    bool   `json:"auto_vest"`
}

type ConversionRequest struct {
	ID             int64           `json:"id"`
	Owner          string          `json:"owner"`
	RequestID      uint32          `json:"requestid"`
	Amount         protocol.Amount `json:"amount"`
	ConversionDate protocol.Time   `json:"conversion_date"`
}

type AccountVote struct {
	Authorperm string        `json:"authorperm"`
	Weight     Int           `json:"weight"`
	Rshares    Int           `json:"rshares"`
	Percent    int16         `json:"percent"`
	Time       protocol.Time `json:"time"`
}

type FollowEntry struct {
	Follower  string   `json:"follower"`
	Following string   `json:"following"`
	What      []string `json:"what"`
}

type FollowCount struct {
	Account        string `json:"account"`
	FollowerCount  int64  `json:"follower_count"`
	FollowingCount int64  `json:"following_count"`
}

type BroadcastResult struct {
	ID       string `json:"id"`
	BlockNum uint32 `json:"block_num"`
	TrxNum   uint32 `json:"trx_num"`
	Expired  bool   `json:"expired"`
}
