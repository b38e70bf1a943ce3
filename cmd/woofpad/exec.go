package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"cosmossdk.io/math"
	"github.com/spf13/cobra"

	"github.com/rovshanmuradov/woofpad/internal/launchpad"
	"github.com/rovshanmuradov/woofpad/internal/types"
)

type envelopeFlags struct {
	sender string
	funds  string
	height uint64
}

func (f *envelopeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.sender, "sender", "", "address signing the message")
	cmd.Flags().StringVar(&f.funds, "funds", "", "attached funds, e.g. 150uhuahua")
	cmd.Flags().Uint64Var(&f.height, "height", 0, "block height, defaults to the unix time")
	_ = cmd.MarkFlagRequired("sender")
}

func (f *envelopeFlags) envelope(msg launchpad.ExecuteMsg) (launchpad.Envelope, error) {
	funds, err := parseCoins(f.funds)
	if err != nil {
		return launchpad.Envelope{}, err
	}
	now := time.Now().UTC()
	height := f.height
	if height == 0 {
		height = uint64(now.Unix())
	}
	return launchpad.Envelope{
		Sender:      f.sender,
		BlockHeight: height,
		BlockTime:   now,
		Funds:       funds,
		Msg:         msg,
	}, nil
}

func newExecCmd(flags *globalFlags) *cobra.Command {
	env := &envelopeFlags{}
	var file string
	cmd := &cobra.Command{
		Use:   "exec [message-json]",
		Short: "Send an execute message, e.g. '{\"graduate\":{\"token_address\":\"woof1...\"}}'",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := messageInput(args, file)
			if err != nil {
				return err
			}
			var msg launchpad.ExecuteMsg
			if err := json.Unmarshal(raw, &msg); err != nil {
				return fmt.Errorf("decode message: %w", err)
			}
			if _, err := msg.Action(); err != nil {
				return err
			}
			return execute(cmd, flags, env, msg)
		},
	}
	env.register(cmd)
	cmd.Flags().StringVarP(&file, "file", "f", "", "read the message from a file")
	return cmd
}

func messageInput(args []string, file string) ([]byte, error) {
	switch {
	case file != "":
		return os.ReadFile(file)
	case len(args) == 1:
		return []byte(args[0]), nil
	default:
		return nil, fmt.Errorf("pass the message as an argument or with --file")
	}
}

func execute(cmd *cobra.Command, flags *globalFlags, env *envelopeFlags, msg launchpad.ExecuteMsg) error {
	c, err := flags.client()
	if err != nil {
		return err
	}
	envelope, err := env.envelope(msg)
	if err != nil {
		return err
	}
	resp, err := c.Execute(cmd.Context(), envelope)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), resp)
}

func newSwapCmd(flags *globalFlags) *cobra.Command {
	env := &envelopeFlags{}
	var (
		token    string
		side     string
		amount   string
		slippage string
	)
	cmd := &cobra.Command{
		Use:   "swap",
		Short: "Swap against a bonding curve, deriving min_return from a simulation",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := types.ParseSide(side)
			if err != nil {
				return err
			}
			amt, ok := math.NewIntFromString(amount)
			if !ok {
				return fmt.Errorf("invalid amount %q", amount)
			}
			c, err := flags.client()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			var sim launchpad.SwapSimulation
			err = c.Query(ctx, launchpad.QueryMsg{SimulateSwap: &launchpad.SimulateSwapQuery{
				TokenAddress: token,
				Amount:       amt,
				OrderType:    s,
			}}, &sim)
			if err != nil {
				return fmt.Errorf("simulate swap: %w", err)
			}
			minReturn, err := types.CalculateMinReturn(sim.Net.Amount, types.SlippageConfig{
				Type:  types.SlippagePercent,
				Value: slippage,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "quoted %s, fee %s, min_return %s\n", sim.Net, sim.Fee, minReturn)

			return execute(cmd, flags, env, launchpad.ExecuteMsg{Swap: &launchpad.SwapMsg{
				PairID:       sim.PairID,
				TokenAddress: token,
				Amount:       amt,
				MinReturn:    minReturn,
				OrderType:    s,
			}})
		},
	}
	env.register(cmd)
	cmd.Flags().StringVar(&token, "token", "", "token address")
	cmd.Flags().StringVar(&side, "side", "buy", "buy or sell")
	cmd.Flags().StringVar(&amount, "amount", "", "token amount in smallest units")
	cmd.Flags().StringVar(&slippage, "slippage", "1", "allowed slippage in percent")
	_ = cmd.MarkFlagRequired("token")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}
