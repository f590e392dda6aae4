package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ebbflow-cash/ebbflow/internal/cli"
)

const defaultHorizonDays = 90

func forecastCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Regenerate forecast records for auto-recommended entities",
		Long: `Forecast projects each auto-recommended entity's pattern forward over
the horizon and replaces its stored forecast records. Locked records
are never touched; re-running the command is idempotent.`,
		RunE: runForecast,
	}

	cmd.Flags().String("from", "", "horizon start YYYY-MM-DD (default: today)")
	cmd.Flags().Int("days", defaultHorizonDays, "horizon length in days")
	return cmd
}

func runForecast(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	fromFlag, _ := cmd.Flags().GetString("from")
	days, _ := cmd.Flags().GetInt("days")
	if days <= 0 {
		return fmt.Errorf("--days must be positive, got %d", days)
	}

	start, err := parseDateFlag(fromFlag, today())
	if err != nil {
		return err
	}
	end := start.AddDate(0, 0, days)

	eng, store, err := initEngine(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	count, err := eng.GenerateForecasts(ctx, start, end)
	if err != nil {
		return fmt.Errorf("forecast generation failed: %w", err)
	}

	fmt.Printf("%s Generated %d forecast records (%s to %s)\n",
		cli.SuccessStyle.Render(cli.SuccessIcon),
		count,
		start.Format(dateLayout),
		end.Format(dateLayout))
	return nil
}

func today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
