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
)

// ErrUnknownOperation is returned when an UnknownOperation is serialized.
var ErrUnknownOperation = errors.New("cannot serialize unknown operation")

var opFactories = map[OpType]func() Operation{
	OpVote:                      func() Operation { return new(Vote) },
	OpComment:                   func() Operation { return new(Comment) },
	OpTransfer:                  func() Operation { return new(Transfer) },
	OpTransferToVesting:         func() Operation { return new(TransferToVesting) },
	OpWithdrawVesting:           func() Operation { return new(WithdrawVesting) },
	OpLimitOrderCreate:          func() Operation { return new(LimitOrderCreate) },
	OpLimitOrderCancel:          func() Operation { return new(LimitOrderCancel) },
	OpFeedPublish:               func() Operation { return new(FeedPublish) },
	OpConvert:                   func() Operation { return new(Convert) },
	OpAccountCreate:             func() Operation { return new(AccountCreate) },
	OpAccountUpdate:             func() Operation { return new(AccountUpdate) },
	OpWitnessUpdate:             func() Operation { return new(WitnessUpdate) },
	OpAccountWitnessVote:        func() Operation { return new(AccountWitnessVote) },
	OpAccountWitnessProxy:       func() Operation { return new(AccountWitnessProxy) },
	OpDeleteComment:             func() Operation { return new(DeleteComment) },
	OpCustomJSON:                func() Operation { return new(CustomJSON) },
	OpSetWithdrawVestingRoute:   func() Operation { return new(SetWithdrawVestingRoute) },
	OpTransferToSavings:         func() Operation { return new(TransferToSavings) },
	OpTransferFromSavings:       func() Operation { return new(TransferFromSavings) },
	OpCancelTransferFromSavings: func() Operation { return new(CancelTransferFromSavings) },
}

// UnknownOperation holds an operation that has no Go type, such as virtual
// operations found in account histories.
type UnknownOperation struct {
	Name string
	Data json.RawMessage
}

// Type returns the OpType of the name, or 0xff for names outside the
// transaction variant.
func (op *UnknownOperation) Type() OpType {
	t, err := ParseOpType(op.Name)
	if err != nil {
		return 0xff
	}
	return t
}

func (op *UnknownOperation) MarshalBinary(enc *Encoder) {
	enc.fail(fmt.Errorf("%w: %v", ErrUnknownOperation, op.Name))
}

func (op *UnknownOperation) MarshalJSON() ([]byte, error) {
	if op.Data == nil {
		return []byte("{}"), nil
	}
	return op.Data, nil
}

// OperationEnvelope encodes an Operation as the node does: [name, {fields}].
type OperationEnvelope struct {
	Operation
}

// Name returns the node name of the operation.
func (e OperationEnvelope) Name() string {
	if op, ok := e.Operation.(*UnknownOperation); ok {
		return op.Name
	}
	return e.Type().String()
}

func (e OperationEnvelope) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{e.Name(), e.Operation})
}

func (e *OperationEnvelope) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("%T: %w", e, err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("%T: expected [name, operation]", e)
	}
	var name string
	if err := json.Unmarshal(pair[0], &name); err != nil {
		return fmt.Errorf("%T: %w", e, err)
	}
	t, err := ParseOpType(name)
	factory, ok := opFactories[t]
	if err != nil || !ok {
		e.Operation = &UnknownOperation{Name: name, Data: pair[1]}
		return nil
	}
	op := factory()
	if err := json.Unmarshal(pair[1], op); err != nil {
		return fmt.Errorf("%T: %v: %w", e, name, err)
	}
	e.Operation = op
	return nil
}

// MarshalBinary writes the varint op id followed by the fields.
func (e OperationEnvelope) MarshalBinary(enc *Encoder) {
	enc.Uvarint(uint64(e.Type()))
	e.Operation.MarshalBinary(enc)
}

// Envelopes wraps ops.
func Envelopes(ops ...Operation) []OperationEnvelope {
	envs := make([]OperationEnvelope, len(ops))
	for i, op := range ops {
		envs[i] = OperationEnvelope{op}
	}
	return envs
}
