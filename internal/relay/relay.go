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

// Package relay publishes the operations of a STEEM node to an AMQP topic
// exchange.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/Steem-Tools/steemgo/api"
	"github.com/Steem-Tools/steemgo/internal/metrics"
	"github.com/Steem-Tools/steemgo/protocol"
)

// RoutingKeyPrefix prefixes the operation name in routing keys.
const RoutingKeyPrefix = "op."

// Publisher publishes a message to an exchange. *amqp.Channel is a
// Publisher.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string,
		mandatory, immediate bool, msg amqp.Publishing) error
}

// Message is the JSON body of a published operation.
type Message struct {
	BlockNum  uint32                     `json:"block_num"`
	TrxIndex  int                        `json:"trx_in_block"`
	TrxID     string                     `json:"trx_id"`
	Timestamp protocol.Time              `json:"timestamp"`
	Op        protocol.OperationEnvelope `json:"op"`
}

// Relay streams operations from API and publishes each one to Exchange with
// the routing key "op.<name>".
type Relay struct {
	API       *api.API
	Publisher Publisher
	Exchange  string

	// Ops limits the relayed operations by name. All operations are
	// relayed if it is empty.
	Ops     []string
	Options api.StreamOptions

	Log logrus.FieldLogger
}

// Run relays operations until ctx is done or publishing fails.
func (r *Relay) Run(ctx context.Context) error {
	err := r.API.Stream(ctx, r.Ops, r.Options, func(oc api.OperationContext) error {
		return r.publish(ctx, oc)
	})
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return nil
	}
	return err
}

func (r *Relay) publish(ctx context.Context, oc api.OperationContext) error {
	name := oc.Op.Name()
	body, err := json.Marshal(Message{
		BlockNum:  oc.BlockNum,
		TrxIndex:  oc.TrxIndex,
		TrxID:     oc.TrxID,
		Timestamp: oc.Timestamp,
		Op:        oc.Op,
	})
	if err != nil {
		return fmt.Errorf("%v in block %v: %w", name, oc.BlockNum, err)
	}
	if err := r.Publisher.PublishWithContext(ctx, r.Exchange,
		RoutingKeyPrefix+name, false, false, amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    fmt.Sprintf("%v/%v/%v", oc.BlockNum, oc.TrxID, name),
			Timestamp:    oc.Timestamp.Time,
			Body:         body,
		}); err != nil {
		return fmt.Errorf("publish %v: %w", name, err)
	}
	metrics.RelayedOps.WithLabelValues(name).Inc()
	if r.Log != nil {
		r.Log.Debugf("Relayed %v of block %v", name, oc.BlockNum)
	}
	return nil
}

// Dial connects to the broker at url and declares exchange as a durable
// topic exchange. Closing the returned connection closes the channel.
func Dial(url, exchange string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("amqp.Dial(): %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("amqp channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic,
		true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("declare exchange %q: %w", exchange, err)
	}
	return conn, ch, nil
}
