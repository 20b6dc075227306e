package blockchain_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Steem-Tools/steemgo/api"
	"github.com/Steem-Tools/steemgo/api/mocks"
	"github.com/Steem-Tools/steemgo/blockchain"
	"github.com/Steem-Tools/steemgo/protocol"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var genesis = time.Date(2016, 3, 24, 16, 0, 0, 0, time.UTC)

// blockTime has a gap of 20 missed blocks after block 500.
func blockTime(num uint32) time.Time {
	t := genesis.Add(time.Duration(num) * blockchain.BlockInterval)
	if num > 500 {
		t = t.Add(20 * blockchain.BlockInterval)
	}
	return t
}

func newTestChain(t *testing.T, mode string) (*blockchain.Blockchain, *mocks.MockCaller) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	caller := mocks.NewMockCaller(ctrl)
	caller.EXPECT().
		Call(gomock.Any(), api.DatabaseAPI, "get_dynamic_global_properties",
			nil, gomock.Any()).
		DoAndReturn(mocks.Respond(`{"head_block_number":1010,
			"last_irreversible_block_num":1000}`)).AnyTimes()
	caller.EXPECT().
		Call(gomock.Any(), api.DatabaseAPI, "get_block_header",
			gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, apiName, method string,
			params, result interface{}) error {
			num := params.([]interface{})[0].(uint32)
			if num > 1010 {
				return mocks.Respond(`null`)(ctx, apiName, method, params, result)
			}
			header := api.BlockHeader{
				Timestamp: protocol.NewTime(blockTime(num)),
				Witness:   "initminer",
			}
			return mocks.Respond(header)(ctx, apiName, method, params, result)
		}).AnyTimes()
	bc, err := blockchain.New(api.New(caller), mode)
	require.NoError(t, err)
	return bc, caller
}

func TestNew(t *testing.T) {
	_, err := blockchain.New(nil, "latest")
	assert.True(t, errors.Is(err, blockchain.ErrInvalidMode))

	bc, err := blockchain.New(nil, "")
	require.NoError(t, err)
	assert.Equal(t, api.ModeIrreversible, bc.Mode())
}

func TestCurrentBlockNum(t *testing.T) {
	ctx := context.Background()
	bc, _ := newTestChain(t, api.ModeIrreversible)
	num, err := bc.CurrentBlockNum(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1000, num)

	bc, _ = newTestChain(t, api.ModeHead)
	num, err = bc.CurrentBlockNum(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1010, num)
}

func TestBlockTimes(t *testing.T) {
	ctx := context.Background()
	bc, _ := newTestChain(t, api.ModeIrreversible)
	bc.Concurrency = 2

	nums := []uint32{600, 3, 1, 2, 501}
	times, err := bc.BlockTimes(ctx, nums)
	require.NoError(t, err)
	require.Len(t, times, len(nums))
	for i, num := range nums {
		assert.True(t, blockTime(num).Equal(times[i]), "block %v", num)
	}

	_, err = bc.BlockTimes(ctx, []uint32{1, 2000, 3})
	assert.True(t, errors.Is(err, api.ErrBlockNotFound), "err: %v", err)
}

func TestBlockFromTime(t *testing.T) {
	ctx := context.Background()
	bc, _ := newTestChain(t, api.ModeIrreversible)

	for _, num := range []uint32{1, 300, 499, 700, 1000} {
		num := num
		t.Run(fmt.Sprint(num), func(t *testing.T) {
			got, err := bc.BlockFromTime(ctx, blockTime(num), 0)
			require.NoError(t, err)
			assert.InDelta(t, num, got, 1)
		})
	}

	_, err := bc.BlockFromTime(ctx, blockTime(1001), 0)
	assert.True(t, errors.Is(err, blockchain.ErrTimeInFuture))

	_, err = bc.BlockFromTime(ctx, genesis.Add(-time.Hour), 0)
	assert.True(t, errors.Is(err, blockchain.ErrTimeBeforeGenesis))
}

func TestAllAccounts(t *testing.T) {
	ctx := context.Background()
	bc, caller := newTestChain(t, api.ModeIrreversible)
	caller.EXPECT().
		Call(gomock.Any(), api.DatabaseAPI, "lookup_accounts",
			[]interface{}{"", uint32(2)}, gomock.Any()).
		DoAndReturn(mocks.Respond(`["alice","bob"]`))
	caller.EXPECT().
		Call(gomock.Any(), api.DatabaseAPI, "lookup_accounts",
			[]interface{}{"bob\x00", uint32(2)}, gomock.Any()).
		DoAndReturn(mocks.Respond(`["carol","dave"]`))

	var names []string
	err := bc.AllAccounts(ctx, "", "carol", 2, func(name string) error {
		names = append(names, name)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob", "carol"}, names)
}

func TestReplay(t *testing.T) {
	ctx := context.Background()
	bc, caller := newTestChain(t, api.ModeIrreversible)
	caller.EXPECT().
		Call(gomock.Any(), api.DatabaseAPI, "get_config", nil, gomock.Any()).
		DoAndReturn(mocks.Respond(`{"STEEMIT_BLOCK_INTERVAL":3}`))
	for num := 1; num <= 2; num++ {
		caller.EXPECT().
			Call(gomock.Any(), api.DatabaseAPI, "get_block",
				[]interface{}{uint32(num)}, gomock.Any()).
			DoAndReturn(mocks.Respond(fmt.Sprintf(`{"timestamp":"2016-03-24T16:00:0%v",
				"transactions":[{"operations":[
					["vote",{"voter":"alice","author":"bob","permlink":"p","weight":10000}],
					["transfer",{"from":"alice","to":"bob","amount":"1.000 STEEM","memo":""}]
				]}],"transaction_ids":["%040d"]}`, num*3, num)))
	}

	var ops []api.OperationContext
	err := bc.Replay(ctx, 0, 2, []string{"transfer"},
		func(oc api.OperationContext) error {
			ops = append(ops, oc)
			return nil
		})
	require.NoError(t, err)
	require.Len(t, ops, 2)
	assert.EqualValues(t, 2, ops[1].BlockNum)
	assert.Equal(t, "transfer", ops[1].Op.Name())
	assert.Equal(t, fmt.Sprintf("%040d", 2), ops[1].TrxID)
}
