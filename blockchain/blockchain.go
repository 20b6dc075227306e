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

// Package blockchain reads blocks, operations and accounts of the chain,
// following either the head or the last irreversible block.
package blockchain

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/Steem-Tools/steemgo/api"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

var (
	ErrInvalidMode       = api.ErrInvalidMode
	ErrNoConvergence     = errors.New("block estimate did not converge")
	ErrTimeInFuture      = errors.New("time is after the current block")
	ErrTimeBeforeGenesis = errors.New("time is before the first block")
)

const (
	// BlockInterval is the expected time between blocks used by
	// BlockFromTime.
	BlockInterval = 3 * time.Second

	// DefaultConcurrency bounds the requests made by BlockTimes.
	DefaultConcurrency = 10

	maxEstimates = 64
)

// Blockchain reads the chain through an API.
type Blockchain struct {
	api  *api.API
	mode string

	// Concurrency is the maximum number of concurrent requests made by
	// BlockTimes.
	Concurrency int64

	// Block times never change.
	times *cache.Cache
}

// New returns a Blockchain following mode, which is api.ModeIrreversible or
// api.ModeHead. An empty mode is api.ModeIrreversible.
func New(a *api.API, mode string) (*Blockchain, error) {
	if mode == "" {
		mode = api.ModeIrreversible
	}
	if err := api.ValidateMode(mode); err != nil {
		return nil, fmt.Errorf("%w: %q", err, mode)
	}
	return &Blockchain{
		api:         a,
		mode:        mode,
		Concurrency: DefaultConcurrency,
		times:       cache.New(time.Hour, 10*time.Minute),
	}, nil
}

// Mode returns the stream mode of bc.
func (bc *Blockchain) Mode() string {
	return bc.mode
}

// Info returns the dynamic global properties.
func (bc *Blockchain) Info(ctx context.Context) (*api.DynamicGlobalProperties, error) {
	return bc.api.GetDynamicGlobalProperties(ctx)
}

// CurrentBlockNum returns the number of the head or last irreversible
// block, depending on the mode.
func (bc *Blockchain) CurrentBlockNum(ctx context.Context) (uint32, error) {
	return bc.api.CurrentBlockNum(ctx, bc.mode)
}

// CurrentBlock returns the head or last irreversible block.
func (bc *Blockchain) CurrentBlock(ctx context.Context) (*api.Block, error) {
	num, err := bc.CurrentBlockNum(ctx)
	if err != nil {
		return nil, err
	}
	return bc.api.GetBlock(ctx, num)
}

// Blocks calls fn for the blocks from start to stop. A zero start begins at
// the current block and a zero stop never ends.
func (bc *Blockchain) Blocks(ctx context.Context, start, stop uint32,
	fn func(num uint32, block *api.Block) error) error {
	return bc.api.BlockStream(ctx, api.StreamOptions{
		Start: start,
		Stop:  stop,
		Mode:  bc.mode,
	}, fn)
}

// Stream calls fn for the operations named in opNames, or all operations
// if it is empty, from start to stop.
func (bc *Blockchain) Stream(ctx context.Context, opNames []string,
	start, stop uint32, fn func(api.OperationContext) error) error {
	return bc.api.Stream(ctx, opNames, api.StreamOptions{
		Start: start,
		Stop:  stop,
		Mode:  bc.mode,
	}, fn)
}

// Replay is Stream starting at the first block when start is zero.
func (bc *Blockchain) Replay(ctx context.Context, start, end uint32,
	filter []string, fn func(api.OperationContext) error) error {
	if start == 0 {
		start = 1
	}
	return bc.Stream(ctx, filter, start, end, fn)
}

// BlockTime returns the timestamp of block num.
func (bc *Blockchain) BlockTime(ctx context.Context, num uint32) (time.Time, error) {
	key := strconv.FormatUint(uint64(num), 10)
	if t, ok := bc.times.Get(key); ok {
		return t.(time.Time), nil
	}
	header, err := bc.api.GetBlockHeader(ctx, num)
	if err != nil {
		return time.Time{}, err
	}
	t := header.Timestamp.Time
	bc.times.Set(key, t, cache.DefaultExpiration)
	return t, nil
}

// BlockTimes returns the timestamps of nums in the same order. At most
// Concurrency headers are requested at once.
func (bc *Blockchain) BlockTimes(ctx context.Context,
	nums []uint32) ([]time.Time, error) {
	limit := bc.Concurrency
	if limit < 1 {
		limit = 1
	}
	sem := semaphore.NewWeighted(limit)
	times := make([]time.Time, len(nums))
	g, gctx := errgroup.WithContext(ctx)
	for i, num := range nums {
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		i, num := i, num
		g.Go(func() error {
			defer sem.Release(1)
			t, err := bc.BlockTime(gctx, num)
			if err != nil {
				return err
			}
			times[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return times, nil
}

// BlockFromTime estimates the number of the block produced at t, within
// errorMargin. The estimate assumes BlockInterval between blocks and is
// corrected with the timestamps of the guessed blocks.
func (bc *Blockchain) BlockFromTime(ctx context.Context, t time.Time,
	errorMargin time.Duration) (uint32, error) {
	if errorMargin < BlockInterval {
		errorMargin = BlockInterval
	}
	known, err := bc.CurrentBlockNum(ctx)
	if err != nil {
		return 0, err
	}
	knownTime, err := bc.BlockTime(ctx, known)
	if err != nil {
		return 0, err
	}
	if t.After(knownTime) {
		return 0, fmt.Errorf("%w: %v > %v", ErrTimeInFuture, t, knownTime)
	}

	guess := float64(known) - float64(knownTime.Sub(t)/BlockInterval)
	for i := 0; i < maxEstimates; i++ {
		if guess < 1 {
			guess = 1
		}
		if guess > float64(known) {
			guess = float64(known)
		}
		num := uint32(guess)
		guessTime, err := bc.BlockTime(ctx, num)
		if err != nil {
			return 0, err
		}
		diff := t.Sub(guessTime)
		if math.Abs(float64(diff)) <= float64(errorMargin) {
			return num, nil
		}
		if num == 1 && diff < 0 {
			return 0, fmt.Errorf("%w: %v < %v", ErrTimeBeforeGenesis, t, guessTime)
		}
		step := float64(diff) / float64(BlockInterval)
		if math.Abs(step) < 1 {
			step = math.Copysign(1, step)
		}
		guess += step
	}
	return 0, fmt.Errorf("%w after %v estimates", ErrNoConvergence, maxEstimates)
}

// AllAccounts calls fn for the account names from start, step names per
// request. It returns after the stop account when stop is not empty.
func (bc *Blockchain) AllAccounts(ctx context.Context, start, stop string,
	step uint32, fn func(name string) error) error {
	return bc.api.ListAccounts(ctx, start, step, 0, func(name string) error {
		if err := fn(name); err != nil {
			return err
		}
		if stop != "" && name == stop {
			return api.ErrStop
		}
		return nil
	})
}
