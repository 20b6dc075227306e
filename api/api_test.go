package api_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/Steem-Tools/steemgo/api"
	"github.com/Steem-Tools/steemgo/api/mocks"
	"github.com/Steem-Tools/steemgo/protocol"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const propsJSON = `{
	"head_block_number": 4297462,
	"head_block_id": "00419336a72a7c6b9f8a1a9c3a8e8bc7ef6c3b5d",
	"time": "2016-08-16T12:00:00",
	"current_supply": "271427482.861 STEEM",
	"current_sbd_supply": "2439876.123 SBD",
	"total_vesting_fund_steem": "177045781.132 STEEM",
	"total_vesting_shares": "364560283145.104328 VESTS",
	"last_irreversible_block_num": 4297447
}`

func TestGetBlockParams(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	caller := mocks.NewMockCaller(ctrl)
	caller.EXPECT().
		Call(gomock.Any(), "database_api", "get_dynamic_global_properties",
			nil, gomock.Any()).
		DoAndReturn(mocks.Respond(propsJSON)).Times(2)

	a := api.New(caller)
	num, prefix, err := a.GetBlockParams(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 4297462&0xFFFF, num)
	assert.EqualValues(t, 0x6b7c2aa7, prefix)

	props, err := a.GetDynamicGlobalProperties(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 485.64, props.SteemPerMVests(), 0.01)
}

func TestGetAccount(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	caller := mocks.NewMockCaller(ctrl)
	a := api.New(caller)

	caller.EXPECT().
		Call(gomock.Any(), "database_api", "get_accounts",
			[]interface{}{[]string{"nobody"}}, gomock.Any()).
		DoAndReturn(mocks.Respond(`[]`))
	_, err := a.GetAccount(context.Background(), "nobody")
	assert.True(t, errors.Is(err, api.ErrAccountNotFound))

	caller.EXPECT().
		Call(gomock.Any(), "database_api", "get_accounts",
			[]interface{}{[]string{"alice"}}, gomock.Any()).
		DoAndReturn(mocks.Respond(`[{"name":"alice",
			"owner":{"weight_threshold":1,"account_auths":[],
				"key_auths":[["STM5jYVokmZHdEpwo5oCG3ES2Ca4VYzy6tM8pWWkGdgVnwo2mFLFq",1]]},
			"active":{"weight_threshold":1,"account_auths":[],
				"key_auths":[["STM6pbVDAjRFiw6fkiKYCrkz7PFeL7XNAfefrsREwg8MKpJ9VYV9x",1]]},
			"posting":{"weight_threshold":1,"account_auths":[["app",1]],
				"key_auths":[["STM8CemMDjdUWSV5wKotEimhK6c4dY7p2PdzC2qM1HpAP8aLtZfE7",1]]},
			"memo_key":"STM6zLNtyFVToBsBZDsgMhgjpwysYVbsQD6YhP3kRkQhANUB4w7Qp",
			"balance":"10.000 STEEM","sbd_balance":"1.000 SBD",
			"vesting_shares":"1000.000000 VESTS","reputation":"123456",
			"sbd_seconds":"0","created":"2016-03-24T17:00:21"}]`))
	acc, err := a.GetAccount(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", acc.Name)
	assert.Equal(t, "10.000 STEEM", acc.Balance.String())
	assert.EqualValues(t, 123456, acc.Reputation)
	assert.True(t, acc.Authority("posting").HasAccount("app"))
	assert.Nil(t, acc.Authority("memo"))
}

func historyPage(first int64, n int) string {
	var entries []string
	for i := first - int64(n) + 1; i <= first; i++ {
		op := "vote"
		if i%2 == 0 {
			op = "transfer"
		}
		body := `{"voter":"a","author":"b","permlink":"c","weight":100}`
		if op == "transfer" {
			body = `{"from":"a","to":"b","amount":"1.000 STEEM","memo":""}`
		}
		entries = append(entries, fmt.Sprintf(
			`[%d,{"trx_id":"00","block":%d,"timestamp":"2016-08-16T12:00:00","op":["%s",%s]}]`,
			i, i, op, body))
	}
	return "[" + strings.Join(entries, ",") + "]"
}

func TestAccountHistory(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	caller := mocks.NewMockCaller(ctrl)
	a := api.New(caller)

	// 150 entries, 0 through 149.
	gomock.InOrder(
		caller.EXPECT().
			Call(gomock.Any(), "database_api", "get_account_history",
				[]interface{}{"alice", int64(-1), uint32(100)}, gomock.Any()).
			DoAndReturn(mocks.Respond(historyPage(149, 101))),
		caller.EXPECT().
			Call(gomock.Any(), "database_api", "get_account_history",
				[]interface{}{"alice", int64(48), uint32(48)}, gomock.Any()).
			DoAndReturn(mocks.Respond(historyPage(48, 49))),
	)

	var indexes []int64
	err := a.AccountHistory(context.Background(), "alice",
		api.HistoryOptions{First: -1, OnlyOps: []string{"transfer"}},
		func(e *api.HistoryEntry) error {
			assert.Equal(t, "transfer", e.Op.Name())
			indexes = append(indexes, e.Index)
			return nil
		})
	require.NoError(t, err)
	assert.Len(t, indexes, 75)
	assert.EqualValues(t, 148, indexes[0])
	assert.EqualValues(t, 0, indexes[len(indexes)-1])
}

func TestAccountHistoryLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	caller := mocks.NewMockCaller(ctrl)
	a := api.New(caller)
	caller.EXPECT().
		Call(gomock.Any(), "database_api", "get_account_history",
			[]interface{}{"alice", int64(10), uint32(10)}, gomock.Any()).
		DoAndReturn(mocks.Respond(historyPage(10, 11)))

	count := 0
	err := a.AccountHistory(context.Background(), "alice",
		api.HistoryOptions{First: 10, Limit: 3,
			ExcludeOps: []string{"vote"}},
		func(e *api.HistoryEntry) error {
			count++
			return nil
		})
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestListAccounts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	caller := mocks.NewMockCaller(ctrl)
	a := api.New(caller)
	gomock.InOrder(
		caller.EXPECT().
			Call(gomock.Any(), "database_api", "lookup_accounts",
				[]interface{}{"", uint32(2)}, gomock.Any()).
			DoAndReturn(mocks.Respond([]string{"a", "b"})),
		caller.EXPECT().
			Call(gomock.Any(), "database_api", "lookup_accounts",
				[]interface{}{"b\x00", uint32(2)}, gomock.Any()).
			DoAndReturn(mocks.Respond([]string{"c"})),
	)
	var names []string
	err := a.ListAccounts(context.Background(), "", 2, 0,
		func(name string) error {
			names = append(names, name)
			return nil
		})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, names)
}

func blockJSON(num uint32) string {
	return fmt.Sprintf(`{"previous":"","timestamp":"2016-08-16T12:00:%02d",
		"witness":"w","transactions":[{"ref_block_num":1,"ref_block_prefix":2,
		"expiration":"2016-08-16T12:01:00","operations":[
			["vote",{"voter":"a","author":"b","permlink":"c","weight":100}],
			["transfer",{"from":"a","to":"b","amount":"0.001 SBD","memo":"%d"}]],
		"extensions":[],"signatures":[],"transaction_id":"id%d"}],
		"block_id":"x"}`, num%60, num, num)
}

func TestStream(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	caller := mocks.NewMockCaller(ctrl)
	a := api.New(caller)

	caller.EXPECT().
		Call(gomock.Any(), "database_api", "get_config", nil, gomock.Any()).
		DoAndReturn(mocks.Respond(`{"STEEMIT_BLOCK_INTERVAL":0}`))
	caller.EXPECT().
		Call(gomock.Any(), "database_api", "get_dynamic_global_properties",
			nil, gomock.Any()).
		DoAndReturn(mocks.Respond(`{"head_block_number":12,
			"last_irreversible_block_num":11,
			"current_supply":"1.000 STEEM"}`))
	for num := uint32(10); num <= 11; num++ {
		caller.EXPECT().
			Call(gomock.Any(), "database_api", "get_block",
				[]interface{}{num}, gomock.Any()).
			DoAndReturn(mocks.Respond(blockJSON(num)))
	}

	var ops []api.OperationContext
	err := a.Stream(context.Background(), []string{"transfer"},
		api.StreamOptions{Start: 10, Stop: 11},
		func(op api.OperationContext) error {
			ops = append(ops, op)
			return nil
		})
	require.NoError(t, err)
	require.Len(t, ops, 2)
	assert.EqualValues(t, 10, ops[0].BlockNum)
	assert.Equal(t, "id11", ops[1].TrxID)
	transfer, ok := ops[1].Op.Operation.(*protocol.Transfer)
	require.True(t, ok)
	assert.Equal(t, "11", transfer.Memo)
}

func TestBlockStreamStop(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	caller := mocks.NewMockCaller(ctrl)
	a := api.New(caller)

	caller.EXPECT().
		Call(gomock.Any(), "database_api", "get_config", nil, gomock.Any()).
		DoAndReturn(mocks.Respond(`{}`))
	caller.EXPECT().
		Call(gomock.Any(), "database_api", "get_dynamic_global_properties",
			nil, gomock.Any()).
		DoAndReturn(mocks.Respond(`{"head_block_number":12,
			"last_irreversible_block_num":11,
			"current_supply":"1.000 STEEM"}`))
	caller.EXPECT().
		Call(gomock.Any(), "database_api", "get_block",
			[]interface{}{uint32(12)}, gomock.Any()).
		DoAndReturn(mocks.Respond(blockJSON(12)))

	err := a.BlockStream(context.Background(),
		api.StreamOptions{Mode: api.ModeHead},
		func(num uint32, block *api.Block) error {
			assert.EqualValues(t, 12, num)
			assert.Len(t, block.Transactions, 1)
			return api.ErrStop
		})
	assert.NoError(t, err)

	_, err = a.CurrentBlockNum(context.Background(), "sideways")
	assert.Error(t, err)
}

func TestGetDiscussionsBy(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	caller := mocks.NewMockCaller(ctrl)
	a := api.New(caller)

	_, err := a.GetDiscussionsBy(context.Background(), "sideways",
		api.DiscussionQuery{})
	assert.True(t, errors.Is(err, api.ErrInvalidSort))

	caller.EXPECT().
		Call(gomock.Any(), "database_api", "get_discussions_by_trending",
			gomock.Any(), gomock.Any()).
		DoAndReturn(mocks.Respond(`[{"author":"a","permlink":"p"}]`))
	posts, err := a.GetDiscussionsBy(context.Background(), "trending",
		api.DiscussionQuery{Tag: "steem", Limit: 1})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "@a/p", posts[0].Identifier())
}
