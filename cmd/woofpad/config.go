package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newConfigCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Load the config and check the genesis section",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			genesis, err := cfg.Genesis.EngineConfig()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "config ok: owner %s, base denom %s, curve supply %s\n",
				genesis.Owner, genesis.BaseTokenDenom, genesis.BondingCurveSupply)
			return nil
		},
	})
	return cmd
}
