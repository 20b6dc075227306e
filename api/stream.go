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
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Steem-Tools/steemgo/protocol"
)

// Stream modes select the block that a stream follows.
const (
	ModeIrreversible = "irreversible"
	ModeHead         = "head"
)

var ErrInvalidMode = errors.New(`mode must be "irreversible" or "head"`)

// StreamOptions control BlockStream and Stream.
type StreamOptions struct {
	// Start is the first block. Zero starts at the current block of Mode.
	Start uint32
	// Stop is the last block. Zero streams until the context is done.
	Stop uint32
	// Mode defaults to ModeIrreversible.
	Mode string
}

// OperationContext is an operation yielded by Stream and the location of
// its transaction.
type OperationContext struct {
	BlockNum  uint32
	TrxIndex  int
	TrxID     string
	Timestamp protocol.Time
	Op        protocol.OperationEnvelope
}

// CurrentBlockNum returns the head or last irreversible block number.
func (a *API) CurrentBlockNum(ctx context.Context, mode string) (uint32, error) {
	if err := ValidateMode(mode); err != nil {
		return 0, err
	}
	props, err := a.GetDynamicGlobalProperties(ctx)
	if err != nil {
		return 0, err
	}
	if mode == ModeHead {
		return props.HeadBlockNumber, nil
	}
	return props.LastIrreversibleBlockNum, nil
}

// ValidateMode returns ErrInvalidMode unless mode is a stream mode or empty.
func ValidateMode(mode string) error {
	switch mode {
	case ModeIrreversible, ModeHead, "":
		return nil
	}
	return ErrInvalidMode
}

// BlockStream calls fn for every block from opts.Start, then waits one block
// interval at a time for new blocks. It returns when ctx is done, when fn
// returns an error, or after the Stop block. ErrStop returned from fn ends
// the stream without an error.
func (a *API) BlockStream(ctx context.Context, opts StreamOptions,
	fn func(num uint32, block *Block) error) error {
	if err := ValidateMode(opts.Mode); err != nil {
		return err
	}
	cfg, err := a.GetConfig(ctx)
	if err != nil {
		return err
	}
	interval := time.Duration(cfg.BlockInterval()) * time.Second

	start := opts.Start
	for {
		current, err := a.CurrentBlockNum(ctx, opts.Mode)
		if err != nil {
			return err
		}
		if start == 0 {
			start = current
		}
		for num := start; num <= current; num++ {
			if opts.Stop > 0 && num > opts.Stop {
				return nil
			}
			block, err := a.GetBlock(ctx, num)
			if err != nil {
				return err
			}
			if err := fn(num, block); err != nil {
				if errors.Is(err, ErrStop) {
					return nil
				}
				return err
			}
		}
		if current+1 > start {
			start = current + 1
		}
		if opts.Stop > 0 && start > opts.Stop {
			return nil
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Stream calls fn for every operation with one of the names in opNames, or
// every operation if opNames is empty, in the blocks of BlockStream.
func (a *API) Stream(ctx context.Context, opNames []string,
	opts StreamOptions, fn func(OperationContext) error) error {
	return a.BlockStream(ctx, opts, func(num uint32, block *Block) error {
		for i, tx := range block.Transactions {
			trxID := tx.TransactionID
			if trxID == "" && i < len(block.TransactionIDs) {
				trxID = block.TransactionIDs[i]
			}
			for _, op := range tx.Operations {
				if len(opNames) > 0 && !contains(opNames, op.Name()) {
					continue
				}
				if err := fn(OperationContext{
					BlockNum:  num,
					TrxIndex:  i,
					TrxID:     trxID,
					Timestamp: block.Timestamp,
					Op:        op,
				}); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// GetBlockParams returns the ref_block_num and ref_block_prefix referencing
// the head block.
func (a *API) GetBlockParams(ctx context.Context) (uint16, uint32, error) {
	props, err := a.GetDynamicGlobalProperties(ctx)
	if err != nil {
		return 0, 0, err
	}
	num, prefix, err := protocol.RefBlock(props.HeadBlockNumber, props.HeadBlockID)
	if err != nil {
		return 0, 0, fmt.Errorf("head block: %w", err)
	}
	return num, prefix, nil
}
