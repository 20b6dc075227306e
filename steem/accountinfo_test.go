package steem

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Steem-Tools/steemgo/api"
	"github.com/Steem-Tools/steemgo/api/mocks"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// steemPerMVests is the vesting price of propsJSON.
const steemPerMVests = 485.64198931547145

// historyJSON is oldest first, as nodes return it. The first entry is more
// than a week older than the test clock.
const historyJSON = `[
	[1, {"timestamp": "2016-05-01T00:00:00", "op": ["curation_reward",
		{"curator": "alice", "reward": "9000.000000 VESTS"}]}],
	[2, {"timestamp": "2016-05-12T00:00:00", "op": ["curation_reward",
		{"curator": "alice", "reward": "2000.000000 VESTS"}]}],
	[3, {"timestamp": "2016-05-17T00:00:00", "op": ["vote",
		{"voter": "alice", "author": "bob", "permlink": "hello",
		"weight": 10000}]}],
	[4, {"timestamp": "2016-05-17T08:00:00", "op": ["curation_reward",
		{"curator": "alice", "reward": "1000.000000 VESTS"}]}]
]`

func (n *testNode) expectHistory() {
	n.caller.EXPECT().
		Call(gomock.Any(), "database_api", "get_account_history",
			[]interface{}{"alice", int64(-1), uint32(api.HistoryBatchSize)},
			gomock.Any()).
		DoAndReturn(mocks.Respond(historyJSON)).AnyTimes()
}

func followPage(field string, from, to int) string {
	entries := make([]string, 0, to-from)
	for i := from; i < to; i++ {
		entries = append(entries, fmt.Sprintf(`{%q: "f%03d", "what": ["blog"]}`,
			field, i))
	}
	return "[" + strings.Join(entries, ",") + "]"
}

func (n *testNode) expectFollows() {
	n.caller.EXPECT().
		Call(gomock.Any(), "follow_api", "get_followers",
			[]interface{}{"alice", "", "blog", uint32(100)}, gomock.Any()).
		DoAndReturn(mocks.Respond(followPage("follower", 0, 100))).AnyTimes()
	n.caller.EXPECT().
		Call(gomock.Any(), "follow_api", "get_followers",
			[]interface{}{"alice", "f099", "blog", uint32(100)}, gomock.Any()).
		DoAndReturn(mocks.Respond(followPage("follower", 99, 101))).AnyTimes()
	n.caller.EXPECT().
		Call(gomock.Any(), "follow_api", "get_following",
			[]interface{}{"alice", "", "blog", uint32(100)}, gomock.Any()).
		DoAndReturn(mocks.Respond(followPage("following", 0, 2))).AnyTimes()
}

func TestReputation(t *testing.T) {
	for _, test := range []struct {
		Raw int64
		Exp float64
	}{
		{Raw: -5, Exp: -1},
		{Raw: 0, Exp: 25},
		{Raw: 1000000000, Exp: 25},
		{Raw: 95832978796820, Exp: 69.83},
	} {
		assert.Equal(t, test.Exp, Reputation(test.Raw), "%v", test.Raw)
	}
}

func TestAccount(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()
	s, n := newTestSteem(t, aliceKey, WithDefaultAccount("alice"))
	n.accounts["carol"] = `{"name": "carol", "reputation": "95832978796820",
		"voting_power": 9850, "vesting_shares": "2000000.000000 VESTS",
		"json_metadata": "{\"profile\": {\"name\": \"Carol\"}}"}`

	a, err := s.GetAccount(ctx, "")
	require.NoError(err)
	assert.Equal("alice", a.Name)
	assert.Equal(25.0, a.Reputation())
	assert.Empty(a.Profile())

	a, err = s.GetAccount(ctx, "carol")
	require.NoError(err)
	assert.Equal(69.83, a.Reputation())
	assert.Equal(98.5, a.VotingPower())
	assert.Equal(map[string]interface{}{"name": "Carol"}, a.Profile())
	sp, err := a.SteemPower(ctx)
	require.NoError(err)
	assert.InDelta(2*steemPerMVests, sp, 1e-6)

	_, err = s.GetAccount(ctx, "nobody")
	assert.True(errors.Is(err, api.ErrAccountNotFound))

	props, err := s.API.GetDynamicGlobalProperties(ctx)
	require.NoError(err)
	assert.InDelta(steemPerMVests, VestsToSP(props, 1e6), 1e-6)
	assert.InDelta(1e6, SPToVests(props, steemPerMVests), 1e-3)
	assert.Zero(SPToVests(&api.DynamicGlobalProperties{}, 1))
}

func TestFollows(t *testing.T) {
	ctx := context.Background()
	s, n := newTestSteem(t, aliceKey)
	n.expectFollows()
	a, err := s.GetAccount(ctx, "alice")
	require.NoError(t, err)

	followers, err := a.Followers(ctx)
	require.NoError(t, err)
	require.Len(t, followers, 101)
	assert.Equal(t, "f000", followers[0])
	assert.Equal(t, "f099", followers[99])
	assert.Equal(t, "f100", followers[100])

	following, err := a.Following(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"f000", "f001"}, following)
}

func TestCurationStats(t *testing.T) {
	ctx := context.Background()
	s, n := newTestSteem(t, aliceKey)
	n.expectHistory()
	a, err := s.GetAccount(ctx, "alice")
	require.NoError(t, err)

	stats, err := a.CurationStats(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 1000/1e6*steemPerMVests, stats.Day, 1e-9)
	assert.InDelta(t, 3000/1e6*steemPerMVests, stats.Week, 1e-9)
	assert.InDelta(t, stats.Week/7, stats.Avg, 1e-9)

	voted, err := a.HasVoted(ctx, "@bob/hello")
	require.NoError(t, err)
	assert.True(t, voted)
	voted, err = a.HasVoted(ctx, "@bob/other")
	require.NoError(t, err)
	assert.False(t, voted)
}

func TestVirtualOpCount(t *testing.T) {
	ctx := context.Background()
	s, n := newTestSteem(t, aliceKey)
	n.caller.EXPECT().
		Call(gomock.Any(), "database_api", "get_account_history",
			[]interface{}{"alice", int64(-1), uint32(0)}, gomock.Any()).
		DoAndReturn(mocks.Respond(`[[42, {"timestamp": "2016-05-17T00:00:00",
			"op": ["producer_reward", {"producer": "alice"}]}]]`))
	n.caller.EXPECT().
		Call(gomock.Any(), "database_api", "get_account_history",
			[]interface{}{"bob", int64(-1), uint32(0)}, gomock.Any()).
		DoAndReturn(mocks.Respond(`[]`))

	a, err := s.GetAccount(ctx, "alice")
	require.NoError(t, err)
	count, err := a.VirtualOpCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(42), count)

	b, err := s.GetAccount(ctx, "bob")
	require.NoError(t, err)
	count, err = b.VirtualOpCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestBlog(t *testing.T) {
	ctx := context.Background()
	s, n := newTestSteem(t, aliceKey)
	n.caller.EXPECT().
		Call(gomock.Any(), "database_api", "get_state",
			[]interface{}{"/@alice/blog"}, gomock.Any()).
		DoAndReturn(mocks.Respond(`{
			"accounts": {"alice": {"blog": ["alice/two", "alice/one"]}},
			"content": {
				"alice/one": {"author": "alice", "permlink": "one",
					"parent_permlink": "steem",
					"total_payout_value": "1.000 SBD"},
				"alice/two": {"author": "alice", "permlink": "two",
					"parent_permlink": "go",
					"total_payout_value": "10.000 SBD",
					"total_pending_payout_value": "2.000 SBD"}
			}}`))
	a, err := s.GetAccount(ctx, "alice")
	require.NoError(t, err)

	blog, err := a.Blog(ctx)
	require.NoError(t, err)
	require.Len(t, blog, 2)
	assert.Equal(t, "@alice/two", blog[0].Identifier())
	assert.Equal(t, []string{"go"}, blog[0].Tags)

	winners, total := WinningPosts(blog, 0, 10, 5)
	assert.Equal(t, 1, winners)
	assert.Equal(t, 2, total)
	winners, total = WinningPosts(blog, 1, 10, 5)
	assert.Zero(t, winners)
	assert.Equal(t, 1, total)
	assert.InDelta(t, 6.5, AvgPayoutPerPost(blog, 0, 2), 1e-9)
	assert.Zero(t, AvgPayoutPerPost(blog, 5, 2))
}

func TestFilterByDate(t *testing.T) {
	at := func(s string) time.Time {
		parsed, err := time.Parse("2006-01-02", s)
		require.NoError(t, err)
		return parsed
	}
	var entries []*api.HistoryEntry
	var votes []*api.AccountVote
	for _, day := range []string{"2016-05-01", "2016-05-10", "2016-05-20"} {
		e := &api.HistoryEntry{}
		e.Timestamp.Time = at(day)
		entries = append(entries, e)
		v := &api.AccountVote{}
		v.Time.Time = at(day)
		votes = append(votes, v)
	}

	filtered := FilterHistoryByDate(entries, at("2016-05-01"), at("2016-05-15"))
	require.Len(t, filtered, 1)
	assert.Equal(t, entries[1], filtered[0])
	assert.Len(t, FilterHistoryByDate(entries, at("2016-04-01"), time.Time{}), 3)

	assert.Equal(t, votes[1:], FilterVotesByDate(votes, at("2016-05-02"),
		time.Time{}))
	assert.Empty(t, FilterVotesByDate(votes, at("2016-05-20"), time.Time{}))
}

func TestAccountExport(t *testing.T) {
	ctx := context.Background()
	s, n := newTestSteem(t, aliceKey)
	n.expectHistory()
	n.expectFollows()
	n.caller.EXPECT().
		Call(gomock.Any(), "database_api", "get_withdraw_routes",
			[]interface{}{"alice", "all"}, gomock.Any()).
		DoAndReturn(mocks.Respond(`[{"from_account": "alice",
			"to_account": "bob", "percent": 5000, "auto_vest": true}]`))
	n.caller.EXPECT().
		Call(gomock.Any(), "database_api", "get_conversion_requests",
			[]interface{}{"alice"}, gomock.Any()).
		DoAndReturn(mocks.Respond(`[]`))
	n.caller.EXPECT().
		Call(gomock.Any(), "database_api", "get_account_votes",
			[]interface{}{"alice"}, gomock.Any()).
		DoAndReturn(mocks.Respond(`[{"authorperm": "bob/hello",
			"percent": 10000, "time": "2016-05-17T00:00:00"}]`))
	a, err := s.GetAccount(ctx, "alice")
	require.NoError(t, err)

	exp, err := a.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", exp.Name)
	assert.Equal(t, 25.0, exp.Rep)
	assert.InDelta(t, steemPerMVests, exp.SP, 1e-6)
	assert.Equal(t, "10.000 STEEM", exp.Balances.Balance.String())
	assert.Equal(t, 101, exp.FollowersCount)
	assert.Equal(t, 2, exp.FollowingCount)
	assert.InDelta(t, 3000/1e6*steemPerMVests, exp.CurationStats.Week, 1e-9)
	require.Len(t, exp.WithdrawRoutes, 1)
	assert.Equal(t, "bob", exp.WithdrawRoutes[0].ToAccount)
	assert.Empty(t, exp.ConversionRequests)
	require.Len(t, exp.AccountVotes, 1)
	assert.Equal(t, "bob/hello", exp.AccountVotes[0].Authorperm)
}

func TestGetWitness(t *testing.T) {
	ctx := context.Background()
	s, n := newTestSteem(t, aliceKey)
	n.caller.EXPECT().
		Call(gomock.Any(), "database_api", "get_witness_by_account",
			[]interface{}{"alice"}, gomock.Any()).
		DoAndReturn(mocks.Respond(`{"owner": "alice",
			"url": "https://example.com", "votes": "1000",
			"total_missed": 3, "running_version": "0.19.0"}`))
	n.caller.EXPECT().
		Call(gomock.Any(), "database_api", "get_witness_by_account",
			[]interface{}{"bob"}, gomock.Any()).
		DoAndReturn(mocks.Respond(`null`))

	w, err := s.GetWitness(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", w.URL)
	assert.Equal(t, api.Int(1000), w.Votes)

	_, err = s.GetWitness(ctx, "bob")
	assert.True(t, errors.Is(err, api.ErrWitnessNotFound))
	_, err = s.GetWitness(ctx, "")
	assert.Equal(t, ErrNoAccount, err)
}
