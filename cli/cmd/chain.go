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

package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/posener/complete"
	"github.com/spf13/cobra"

	"github.com/Steem-Tools/steemgo/api"
	"github.com/Steem-Tools/steemgo/blockchain"
	"github.com/Steem-Tools/steemgo/protocol"
)

// infoCmd represents the info command
var infoCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show the dynamic global properties of the chain",
		Args:  cobra.ExactArgs(0),
		Run:   info,
	}
	rootCmd.AddCommand(cmd)
	rootCmplCmd.Sub["info"] = infoCmplCmd
	rootCmplCmd.Sub["help"].Sub["info"] = complete.Command{}
	generateCmplFlags(cmd, infoCmplCmd.Flags)
	return cmd
}()

var infoCmplCmd = complete.Command{
	Flags: mergeFlags(apiCmplFlags),
}

type chainInfo struct {
	*api.DynamicGlobalProperties
	Participation float64 `json:"participation"`
	Node          string  `json:"node"`
}

func info(_ *cobra.Command, _ []string) {
	props, err := connect().GetDynamicGlobalProperties(ctx)
	if err != nil {
		log.Fatal(err)
	}
	printJSON(chainInfo{
		DynamicGlobalProperties: props,
		Participation:           props.Participation(),
		Node:                    nodeClient.URL(),
	})
}

// blockCmd represents the block command
var blockCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		DisableFlagsInUseLine: true,
		Use: `
block NUM`[1:],
		Short: "Show a block",
		Args:  cobra.ExactArgs(1),
		Run:   getBlock,
	}
	rootCmd.AddCommand(cmd)
	rootCmplCmd.Sub["block"] = blockCmplCmd
	rootCmplCmd.Sub["help"].Sub["block"] = complete.Command{}
	generateCmplFlags(cmd, blockCmplCmd.Flags)
	return cmd
}()

var blockCmplCmd = complete.Command{
	Flags: mergeFlags(apiCmplFlags),
}

func getBlock(_ *cobra.Command, args []string) {
	num, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		log.Fatalf("invalid block number: %v", args[0])
	}
	block, err := connect().GetBlock(ctx, uint32(num))
	if err != nil {
		log.Fatal(err)
	}
	if block == nil {
		log.Fatalf("block %v does not exist", num)
	}
	printJSON(block)
}

var streamOpts struct {
	Ops   []string
	Start uint32
	Stop  uint32
	Mode  string
}

// streamCmd represents the stream command
var streamCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stream",
		Short: "Stream operations as JSON lines",
		Long: `
Stream the operations of the blockchain, one JSON object per line.

Only the operations named by --ops are printed, if given. Streaming starts at
--start, or at the current block, and runs until --stop, or until interrupted.
With --mode head, blocks are streamed before they are irreversible.
`[1:],
		Args: cobra.ExactArgs(0),
		PreRunE: func(*cobra.Command, []string) error {
			if err := api.ValidateMode(streamOpts.Mode); err != nil {
				return err
			}
			for _, name := range streamOpts.Ops {
				if _, err := protocol.ParseOpType(name); err != nil {
					return err
				}
			}
			return nil
		},
		Run: stream,
	}
	flags := cmd.Flags()
	flags.StringSliceVar(&streamOpts.Ops, "ops", nil,
		"Comma separated operation names to stream, default all")
	flags.Uint32Var(&streamOpts.Start, "start", 0, "First block")
	flags.Uint32Var(&streamOpts.Stop, "stop", 0, "Last block")
	flags.StringVar(&streamOpts.Mode, "mode", api.ModeIrreversible,
		"head or irreversible")

	rootCmd.AddCommand(cmd)
	rootCmplCmd.Sub["stream"] = streamCmplCmd
	rootCmplCmd.Sub["help"].Sub["stream"] = complete.Command{}
	generateCmplFlags(cmd, streamCmplCmd.Flags)
	return cmd
}()

var streamCmplCmd = complete.Command{
	Flags: mergeFlags(apiCmplFlags, complete.Flags{
		"--ops":  PredictOpNames,
		"--mode": complete.PredictSet(api.ModeHead, api.ModeIrreversible),
	}),
}

type streamedOp struct {
	BlockNum  uint32                     `json:"block_num"`
	TrxIndex  int                        `json:"trx_in_block"`
	TrxID     string                     `json:"trx_id"`
	Timestamp protocol.Time              `json:"timestamp"`
	Op        protocol.OperationEnvelope `json:"op"`
}

func stream(_ *cobra.Command, _ []string) {
	bc, err := blockchain.New(connect(), streamOpts.Mode)
	if err != nil {
		log.Fatal(err)
	}
	enc := json.NewEncoder(os.Stdout)
	err = bc.Stream(ctx, streamOpts.Ops, streamOpts.Start, streamOpts.Stop,
		func(oc api.OperationContext) error {
			return enc.Encode(streamedOp{
				BlockNum:  oc.BlockNum,
				TrxIndex:  oc.TrxIndex,
				TrxID:     oc.TrxID,
				Timestamp: oc.Timestamp,
				Op:        oc.Op,
			})
		})
	if err != nil && ctx.Err() == nil {
		log.Fatal(err)
	}
	fmt.Fprintln(os.Stderr, "Stream stopped.")
}
