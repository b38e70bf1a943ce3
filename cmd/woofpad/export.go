package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/woofpad/internal/client"
	"github.com/rovshanmuradov/woofpad/internal/export"
	"github.com/rovshanmuradov/woofpad/internal/launchpad"
	"github.com/rovshanmuradov/woofpad/internal/types"
)

func newExportCmd(flags *globalFlags) *cobra.Command {
	var (
		format string
		outDir string
		pair   string
		side   string
		daily  string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export recent trades to CSV or JSON, or write a daily report",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := flags.client()
			if err != nil {
				return err
			}
			trades, err := fetchTrades(cmd.Context(), c)
			if err != nil {
				return err
			}
			exporter := export.NewTradeExporter(zap.NewNop())

			if daily != "" {
				day, err := time.Parse("2006-01-02", daily)
				if err != nil {
					return fmt.Errorf("invalid --daily date: %w", err)
				}
				path, err := exporter.ExportDailyReport(trades, day, outDir)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			}

			opts := export.ExportOptions{
				Format:     export.ExportFormat(format),
				PairFilter: pair,
				OutputDir:  outDir,
			}
			if side != "" {
				if opts.SideFilter, err = types.ParseSide(side); err != nil {
					return err
				}
			}
			path, err := exporter.ExportTrades(trades, opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", string(export.FormatCSV), "csv or json")
	cmd.Flags().StringVarP(&outDir, "out", "o", "exports", "output directory")
	cmd.Flags().StringVar(&pair, "pair", "", "only trades of this pair id")
	cmd.Flags().StringVar(&side, "side", "", "only buy or sell trades")
	cmd.Flags().StringVar(&daily, "daily", "", "write the report for this date (YYYY-MM-DD) instead")
	return cmd
}

// fetchTrades pages through the recent trade window, newest first.
func fetchTrades(ctx context.Context, c *client.Client) ([]launchpad.Trade, error) {
	limit := uint32(launchpad.MaxPageLimit)
	var (
		all  []launchpad.Trade
		from uint64
	)
	for {
		var page launchpad.TradesResponse
		err := c.Query(ctx, launchpad.QueryMsg{GetRecentTrades: &launchpad.GetRecentTradesQuery{
			StartFrom: from,
			Limit:     &limit,
		}}, &page)
		if err != nil {
			return nil, fmt.Errorf("fetch trades: %w", err)
		}
		all = append(all, page.Trades...)
		if len(page.Trades) < int(limit) {
			return all, nil
		}
		last := page.Trades[len(page.Trades)-1].ID
		if last <= 1 {
			return all, nil
		}
		from = last - 1
	}
}
