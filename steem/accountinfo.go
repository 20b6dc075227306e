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
	"math"
	"time"

	"github.com/Steem-Tools/steemgo/api"
	"github.com/Steem-Tools/steemgo/protocol"
)

const (
	followPageSize = 100

	// recentHistory is the number of history entries searched by
	// HasVoted.
	recentHistory = 1000
)

// Account is an account with the values derived from it by wallets and
// condenser.
type Account struct {
	*api.Account

	s *Steem
}

// GetAccount returns account, or the default account if account is empty.
func (s *Steem) GetAccount(ctx context.Context, account string) (*Account, error) {
	account, err := orDefault(account, s.DefaultAccount)
	if err != nil {
		return nil, err
	}
	acc, err := s.API.GetAccount(ctx, account)
	if err != nil {
		return nil, err
	}
	return &Account{Account: acc, s: s}, nil
}

// Reputation converts a raw reputation into the score shown by condenser,
// rounded to two decimals. New accounts score 25 and negative reputations
// score -1.
func Reputation(raw int64) float64 {
	switch {
	case raw < 0:
		return -1
	case raw == 0:
		return 25
	}
	score := (math.Log10(float64(raw))-9)*9 + 25
	return math.Round(score*100) / 100
}

func (a *Account) Reputation() float64 {
	return Reputation(int64(a.Account.Reputation))
}

// VotingPower returns the voting power in percent.
func (a *Account) VotingPower() float64 {
	return float64(a.Account.VotingPower) / 100
}

// Profile returns the profile of the json_metadata, or an empty map.
func (a *Account) Profile() map[string]interface{} {
	var meta struct {
		Profile map[string]interface{} `json:"profile"`
	}
	if err := json.Unmarshal([]byte(a.JSONMetadata), &meta); err != nil ||
		meta.Profile == nil {
		return make(map[string]interface{})
	}
	return meta.Profile
}

// VestsToSP converts vests into STEEM at the current vesting price.
func VestsToSP(props *api.DynamicGlobalProperties, vests float64) float64 {
	return vests / 1e6 * props.SteemPerMVests()
}

// SPToVests converts STEEM into vests at the current vesting price.
func SPToVests(props *api.DynamicGlobalProperties, sp float64) float64 {
	perMVests := props.SteemPerMVests()
	if perMVests == 0 {
		return 0
	}
	return sp / perMVests * 1e6
}

// SteemPower returns the STEEM value of the vesting shares of a.
func (a *Account) SteemPower(ctx context.Context) (float64, error) {
	props, err := a.s.API.GetDynamicGlobalProperties(ctx)
	if err != nil {
		return 0, err
	}
	return VestsToSP(props, a.VestingShares.Float64()), nil
}

// Followers returns the names of all blog followers of a.
func (a *Account) Followers(ctx context.Context) ([]string, error) {
	return a.follows(ctx, false)
}

// Following returns the names of all accounts whose blog a follows.
func (a *Account) Following(ctx context.Context) ([]string, error) {
	return a.follows(ctx, true)
}

// follows pages through the follow_api. Each page after the first starts
// with the last name of the previous page.
func (a *Account) follows(ctx context.Context, following bool) ([]string, error) {
	var names []string
	start := ""
	for {
		var page []*api.FollowEntry
		var err error
		if following {
			page, err = a.s.API.GetFollowing(ctx, a.Name, start, "blog",
				followPageSize)
		} else {
			page, err = a.s.API.GetFollowers(ctx, a.Name, start, "blog",
				followPageSize)
		}
		if err != nil {
			return nil, err
		}
		full := len(page) == followPageSize
		if start != "" && len(page) > 0 {
			page = page[1:]
		}
		for _, e := range page {
			if following {
				names = append(names, e.Following)
			} else {
				names = append(names, e.Follower)
			}
		}
		if !full || len(page) == 0 {
			return names, nil
		}
		start = names[len(names)-1]
	}
}

// Blog returns the posts of the blog of a, newest first.
func (a *Account) Blog(ctx context.Context) ([]*Post, error) {
	state, err := a.s.API.GetState(ctx, "/@"+a.Name+"/blog")
	if err != nil {
		return nil, err
	}
	var accounts map[string]struct {
		Blog []string `json:"blog"`
	}
	if data, ok := state["accounts"]; ok {
		if err := json.Unmarshal(data, &accounts); err != nil {
			return nil, err
		}
	}
	content := make(map[string]*api.Content)
	if data, ok := state["content"]; ok {
		if err := json.Unmarshal(data, &content); err != nil {
			return nil, err
		}
	}
	var posts []*Post
	for _, key := range accounts[a.Name].Blog {
		if c, ok := content[key]; ok {
			posts = append(posts, a.s.newPost(c))
		}
	}
	return posts, nil
}

func blogWindow(blog []*Post, skip, max int) []*Post {
	if skip > len(blog) {
		skip = len(blog)
	}
	blog = blog[skip:]
	if max < len(blog) {
		blog = blog[:max]
	}
	return blog
}

// WinningPosts counts the posts among max blog posts after skip whose
// total payout reaches payout SBD. It also returns the number of posts
// looked at.
func WinningPosts(blog []*Post, skip, max int, payout float64) (int, int) {
	blog = blogWindow(blog, skip, max)
	winners := 0
	for _, p := range blog {
		if p.Reward().Float64() >= payout {
			winners++
		}
	}
	return winners, len(blog)
}

// AvgPayoutPerPost returns the mean total payout of max blog posts after
// skip.
func AvgPayoutPerPost(blog []*Post, skip, max int) float64 {
	blog = blogWindow(blog, skip, max)
	if len(blog) == 0 {
		return 0
	}
	var total float64
	for _, p := range blog {
		total += p.Reward().Float64()
	}
	return total / float64(len(blog))
}

// CurationStats are the curation rewards of an account in STEEM power.
type CurationStats struct {
	Day  float64 `json:"24hr"`
	Week float64 `json:"7d"`
	// Avg is the daily average over the week.
	Avg float64 `json:"avg"`
}

// CurationStats sums the curation rewards of the last 24 hours and of the
// last 7 days.
func (a *Account) CurationStats(ctx context.Context) (*CurationStats, error) {
	props, err := a.s.API.GetDynamicGlobalProperties(ctx)
	if err != nil {
		return nil, err
	}
	now := a.s.now()
	dayAgo := now.Add(-24 * time.Hour)
	weekAgo := now.Add(-7 * 24 * time.Hour)
	var day, week float64
	err = a.s.API.AccountHistory(ctx, a.Name, api.HistoryOptions{First: -1},
		func(e *api.HistoryEntry) error {
			if !e.Timestamp.After(weekAgo) {
				return api.ErrStop
			}
			op, ok := e.Op.Operation.(*protocol.UnknownOperation)
			if !ok || op.Name != "curation_reward" {
				return nil
			}
			var reward struct {
				Reward protocol.Amount `json:"reward"`
			}
			if err := json.Unmarshal(op.Data, &reward); err != nil {
				return err
			}
			week += reward.Reward.Float64()
			if e.Timestamp.After(dayAgo) {
				day += reward.Reward.Float64()
			}
			return nil
		})
	if err != nil {
		return nil, err
	}
	stats := CurationStats{
		Day:  VestsToSP(props, day),
		Week: VestsToSP(props, week),
	}
	stats.Avg = stats.Week / 7
	return &stats, nil
}

// VirtualOpCount returns the index of the newest history entry of a, which
// counts all its operations including virtual ones.
func (a *Account) VirtualOpCount(ctx context.Context) (int64, error) {
	entries, err := a.s.API.GetAccountHistory(ctx, a.Name, -1, 0)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}
	return entries[len(entries)-1].Index, nil
}

// HasVoted reports whether a voted on the post identifier within its
// recent history.
func (a *Account) HasVoted(ctx context.Context, identifier string) (bool, error) {
	author, permlink, err := ResolveIdentifier(identifier)
	if err != nil {
		return false, err
	}
	voted, seen := false, 0
	err = a.s.API.AccountHistory(ctx, a.Name, api.HistoryOptions{First: -1},
		func(e *api.HistoryEntry) error {
			if seen++; seen > recentHistory {
				return api.ErrStop
			}
			v, ok := e.Op.Operation.(*protocol.Vote)
			if ok && v.Voter == a.Name && v.Author == author &&
				v.Permlink == permlink {
				voted = true
				return api.ErrStop
			}
			return nil
		})
	return voted, err
}

// FilterHistoryByDate returns the entries strictly between start and end.
// A zero end means now.
func FilterHistoryByDate(entries []*api.HistoryEntry,
	start, end time.Time) []*api.HistoryEntry {
	end = endOrNow(end)
	var filtered []*api.HistoryEntry
	for _, e := range entries {
		if e.Timestamp.After(start) && e.Timestamp.Before(end) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// FilterVotesByDate returns the votes strictly between start and end. A
// zero end means now.
func FilterVotesByDate(votes []*api.AccountVote,
	start, end time.Time) []*api.AccountVote {
	end = endOrNow(end)
	var filtered []*api.AccountVote
	for _, v := range votes {
		if v.Time.After(start) && v.Time.Before(end) {
			filtered = append(filtered, v)
		}
	}
	return filtered
}

func endOrNow(end time.Time) time.Time {
	if end.IsZero() {
		return time.Now()
	}
	return end
}

// AccountExport is an account with everything known about it, ready to be
// stored as JSON.
type AccountExport struct {
	*api.Account
	Profile            map[string]interface{}   `json:"profile"`
	SP                 float64                  `json:"sp"`
	Rep                float64                  `json:"rep"`
	Balances           *Balances                `json:"balances"`
	Followers          []string                 `json:"followers"`
	FollowersCount     int                      `json:"followers_count"`
	Following          []string                 `json:"following"`
	FollowingCount     int                      `json:"following_count"`
	CurationStats      *CurationStats           `json:"curation_stats"`
	WithdrawRoutes     []*api.WithdrawRoute     `json:"withdrawal_routes"`
	ConversionRequests []*api.ConversionRequest `json:"conversion_requests"`
	AccountVotes       []*api.AccountVote       `json:"account_votes"`
}

// Export collects the AccountExport of a.
func (a *Account) Export(ctx context.Context) (*AccountExport, error) {
	exp := AccountExport{
		Account: a.Account,
		Profile: a.Profile(),
		Rep:     a.Reputation(),
	}
	var err error
	if exp.SP, err = a.SteemPower(ctx); err != nil {
		return nil, err
	}
	if exp.Balances, err = a.s.GetBalances(ctx, a.Name); err != nil {
		return nil, err
	}
	if exp.Followers, err = a.Followers(ctx); err != nil {
		return nil, err
	}
	exp.FollowersCount = len(exp.Followers)
	if exp.Following, err = a.Following(ctx); err != nil {
		return nil, err
	}
	exp.FollowingCount = len(exp.Following)
	if exp.CurationStats, err = a.CurationStats(ctx); err != nil {
		return nil, err
	}
	if exp.WithdrawRoutes, err = a.s.API.GetWithdrawRoutes(ctx, a.Name,
		"all"); err != nil {
		return nil, err
	}
	if exp.ConversionRequests, err = a.s.API.GetConversionRequests(ctx,
		a.Name); err != nil {
		return nil, err
	}
	if exp.AccountVotes, err = a.s.API.GetAccountVotes(ctx,
		a.Name); err != nil {
		return nil, err
	}
	return &exp, nil
}

// GetWitness returns the witness of account. api.ErrWitnessNotFound is
// returned if account is not a witness.
func (s *Steem) GetWitness(ctx context.Context, account string) (*api.Witness, error) {
	if account == "" {
		return nil, ErrNoAccount
	}
	return s.API.GetWitnessByAccount(ctx, account)
}
