package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ebbflow-cash/ebbflow/internal/cli"
	"github.com/ebbflow-cash/ebbflow/internal/importer"
)

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import transactions from a normalized CSV export",
		Long: `Import transactions from a CSV file with date, vendor, and amount
columns. Rows already present in the database (same date, vendor, and
amount) are skipped, so re-importing an overlapping export is safe.`,
		Args: cobra.ExactArgs(1),
		RunE: runImport,
	}
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	file, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", args[0], err)
	}
	defer func() { _ = file.Close() }()

	transactions, err := importer.ParseCSV(file)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", args[0], err)
	}
	if len(transactions) == 0 {
		fmt.Println(cli.WarningStyle.Render("No transactions found in file"))
		return nil
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.SaveTransactions(ctx, transactions); err != nil {
		return fmt.Errorf("failed to save transactions: %w", err)
	}

	slog.Info("Import complete", "file", args[0], "transactions", len(transactions))
	fmt.Printf("%s Imported %d transactions\n", cli.SuccessStyle.Render(cli.SuccessIcon), len(transactions))
	return nil
}
