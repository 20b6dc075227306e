package dex

import (
	"context"
	"errors"
	"testing"

	"github.com/Steem-Tools/steemgo/api"
	"github.com/Steem-Tools/steemgo/api/mocks"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvgWitnessPrice(t *testing.T) {
	ctx := context.Background()
	d, caller := newTestDex(t)
	caller.EXPECT().
		Call(gomock.Any(), api.DatabaseAPI, "get_feed_history",
			nil, gomock.Any()).
		DoAndReturn(mocks.Respond(`{
		"current_median_history": {"base": "0.300 SBD", "quote": "1.000 STEEM"},
		"price_history": [
			{"base": "0.100 SBD", "quote": "1.000 STEEM"},
			{"base": "0.200 SBD", "quote": "1.000 STEEM"},
			{"base": "0.400 SBD", "quote": "1.000 STEEM"}
		]}`)).Times(2)

	avg, err := d.AvgWitnessPrice(ctx, 0)
	require.NoError(t, err)
	assert.InDelta(t, 0.7/3, avg, 1e-9)

	avg, err = d.AvgWitnessPrice(ctx, 2)
	require.NoError(t, err)
	assert.InDelta(t, 0.3, avg, 1e-9)

	caller.EXPECT().
		Call(gomock.Any(), api.DatabaseAPI, "get_feed_history",
			nil, gomock.Any()).
		DoAndReturn(mocks.Respond(`{"price_history": []}`))
	_, err = d.AvgWitnessPrice(ctx, 0)
	assert.True(t, errors.Is(err, ErrEmptyFeed))
}

func TestSpread(t *testing.T) {
	ctx := context.Background()
	d, caller := newTestDex(t)
	caller.EXPECT().
		Call(gomock.Any(), api.MarketHistoryAPI, "get_order_book",
			[]interface{}{uint32(1)}, gomock.Any()).
		DoAndReturn(mocks.Respond(`{
			"bids": [{"real_price": "0.300", "sbd": 300, "steem": 1000}],
			"asks": [{"real_price": "0.400", "sbd": 400, "steem": 1000}]}`))

	spread, err := d.Spread(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 25, spread, 1e-9)

	assert.Zero(t, SpreadPct(1, 0))
}

func TestImpliedPrices(t *testing.T) {
	steemBTC, sbdBTC, btcUSD := 0.0002, 0.0001, 5000.0
	assert.InDelta(t, 2, ImpliedPrice(steemBTC, sbdBTC), 1e-9)
	assert.Zero(t, ImpliedPrice(steemBTC, 0))
	assert.InDelta(t, 1, ImpliedUSD(steemBTC, btcUSD), 1e-9)
	assert.InDelta(t, 0.5, ImpliedUSD(sbdBTC, btcUSD), 1e-9)
}
