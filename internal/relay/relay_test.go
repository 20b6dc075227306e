package relay_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Steem-Tools/steemgo/api"
	"github.com/Steem-Tools/steemgo/api/mocks"
	"github.com/Steem-Tools/steemgo/internal/relay"
	"github.com/Steem-Tools/steemgo/protocol"
)

type published struct {
	exchange, key string
	msg           amqp.Publishing
}

type fakePublisher struct {
	published []published
	err       error
}

func (p *fakePublisher) PublishWithContext(ctx context.Context,
	exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, published{exchange, key, msg})
	return nil
}

const blockJSON = `{"timestamp":"2016-03-24T16:00:03",
	"transactions":[{"operations":[
		["vote",{"voter":"alice","author":"bob","permlink":"p","weight":10000}],
		["transfer",{"from":"alice","to":"bob","amount":"1.000 STEEM","memo":""}]
	]}],"transaction_ids":["0000000000000000000000000000000000000001"]}`

func newTestAPI(t *testing.T) *api.API {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	caller := mocks.NewMockCaller(ctrl)
	caller.EXPECT().
		Call(gomock.Any(), api.DatabaseAPI, "get_config", nil, gomock.Any()).
		DoAndReturn(mocks.Respond(`{"STEEMIT_BLOCK_INTERVAL":3}`)).AnyTimes()
	caller.EXPECT().
		Call(gomock.Any(), api.DatabaseAPI, "get_dynamic_global_properties",
			nil, gomock.Any()).
		DoAndReturn(mocks.Respond(`{"head_block_number":10,
			"last_irreversible_block_num":5}`)).AnyTimes()
	caller.EXPECT().
		Call(gomock.Any(), api.DatabaseAPI, "get_block",
			[]interface{}{uint32(5)}, gomock.Any()).
		DoAndReturn(mocks.Respond(blockJSON)).AnyTimes()
	return api.New(caller)
}

func TestRun(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)
	pub := &fakePublisher{}
	r := relay.Relay{
		API:       newTestAPI(t),
		Publisher: pub,
		Exchange:  "steem.ops",
		Ops:       []string{"transfer"},
		Options:   api.StreamOptions{Start: 5, Stop: 5},
	}
	require.NoError(r.Run(context.Background()))

	require.Len(pub.published, 1)
	p := pub.published[0]
	assert.Equal("steem.ops", p.exchange)
	assert.Equal("op.transfer", p.key)
	assert.Equal("application/json", p.msg.ContentType)
	assert.Equal(amqp.Persistent, p.msg.DeliveryMode)
	assert.Equal("5/0000000000000000000000000000000000000001/transfer",
		p.msg.MessageId)

	var msg relay.Message
	require.NoError(json.Unmarshal(p.msg.Body, &msg))
	assert.EqualValues(5, msg.BlockNum)
	transfer, ok := msg.Op.Operation.(*protocol.Transfer)
	require.True(ok)
	assert.Equal("bob", transfer.To)
	assert.Equal("1.000 STEEM", transfer.Amount.String())
}

func TestRunAllOps(t *testing.T) {
	pub := &fakePublisher{}
	r := relay.Relay{
		API:       newTestAPI(t),
		Publisher: pub,
		Options:   api.StreamOptions{Start: 5, Stop: 5},
	}
	require.NoError(t, r.Run(context.Background()))
	require.Len(t, pub.published, 2)
	assert.Equal(t, "op.vote", pub.published[0].key)
	assert.Equal(t, "op.transfer", pub.published[1].key)
}

func TestRunPublishError(t *testing.T) {
	errBroker := errors.New("broker gone")
	r := relay.Relay{
		API:       newTestAPI(t),
		Publisher: &fakePublisher{err: errBroker},
		Options:   api.StreamOptions{Start: 5, Stop: 5},
	}
	assert.True(t, errors.Is(r.Run(context.Background()), errBroker))
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := relay.Relay{
		API:       newTestAPI(t),
		Publisher: &fakePublisher{},
		Options:   api.StreamOptions{Start: 6},
	}
	assert.NoError(t, r.Run(ctx))
}
