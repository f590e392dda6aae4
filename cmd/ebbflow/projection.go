package main

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ebbflow-cash/ebbflow/internal/cli"
	"github.com/ebbflow-cash/ebbflow/internal/ledger"
)

const defaultProjectionWeeks = 13

func projectionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projection",
		Short: "Show the projected running balance",
		Long: `Projection folds actual transactions and forecast records into a
week-by-week running balance. Weeks dipping below the configured low
balance floor are highlighted, negative weeks flagged.`,
		RunE: runProjection,
	}

	cmd.Flags().String("from", "", "projection start YYYY-MM-DD (default: today)")
	cmd.Flags().Int("weeks", defaultProjectionWeeks, "number of weeks to project")
	cmd.Flags().String("balance", "0", "starting balance at projection start")
	cmd.Flags().Bool("daily", false, "use daily periods instead of weekly")
	return cmd
}

func runProjection(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	fromFlag, _ := cmd.Flags().GetString("from")
	weeks, _ := cmd.Flags().GetInt("weeks")
	balanceFlag, _ := cmd.Flags().GetString("balance")
	daily, _ := cmd.Flags().GetBool("daily")

	if weeks <= 0 {
		return fmt.Errorf("--weeks must be positive, got %d", weeks)
	}

	start, err := parseDateFlag(fromFlag, today())
	if err != nil {
		return err
	}
	end := start.AddDate(0, 0, weeks*7-1)

	balance, err := decimal.NewFromString(balanceFlag)
	if err != nil {
		return fmt.Errorf("invalid --balance %q: %w", balanceFlag, err)
	}

	granularity := ledger.Weekly
	if daily {
		granularity = ledger.Daily
	}

	eng, store, err := initEngine(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	points, err := eng.Project(ctx, balance, start, end, granularity)
	if err != nil {
		return fmt.Errorf("projection failed: %w", err)
	}

	lowWatermark := decimal.NewFromFloat(viper.GetFloat64("projection.low_balance_floor"))
	cli.RenderProjection(os.Stdout, points, lowWatermark)
	return nil
}
