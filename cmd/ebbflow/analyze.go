package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/ebbflow-cash/ebbflow/internal/cli"
	"github.com/ebbflow-cash/ebbflow/internal/common"
	"github.com/ebbflow-cash/ebbflow/internal/engine"
)

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Detect timing and amount patterns for every entity",
		Long: `Analyze groups all imported transactions by entity and detects how
often and how much each one pays or charges. Results are cached and
drive forecast generation: entities with regular, recent behavior are
recommended for automatic forecasting, the rest for manual review.`,
		RunE: runAnalyze,
	}

	cmd.Flags().String("as-of", "", "analysis reference date YYYY-MM-DD (default: latest transaction)")
	return cmd
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	asOfFlag, _ := cmd.Flags().GetString("as-of")

	var bar *progressbar.ProgressBar
	progress := func(done, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionSetWidth(40),
				progressbar.OptionSetDescription("Analyzing entities..."),
			)
		}
		_ = bar.Set(done)
	}

	eng, store, err := initEngine(ctx, engine.WithProgress(progress))
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	asOf := time.Now().UTC()
	if asOfFlag == "" {
		latest, latestErr := store.GetLatestTransactionDate(ctx)
		switch {
		case latestErr == nil:
			asOf = latest
		case errors.Is(latestErr, common.ErrNotFound):
			fmt.Println(cli.WarningStyle.Render("No transactions imported yet"))
			return nil
		default:
			return latestErr
		}
	} else {
		asOf, err = parseDateFlag(asOfFlag, asOf)
		if err != nil {
			return err
		}
	}

	patterns, err := eng.AnalyzePatterns(ctx, asOf)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	if bar != nil {
		_ = bar.Finish()
		fmt.Fprintln(os.Stderr)
	}

	slog.Info("Analysis complete", "entities", len(patterns))
	cli.RenderAnalysisSummary(os.Stdout, patterns)
	return nil
}
