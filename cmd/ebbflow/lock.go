package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ebbflow-cash/ebbflow/internal/cli"
	"github.com/ebbflow-cash/ebbflow/internal/common"
)

func lockCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lock <forecast-id>",
		Short: "Lock a forecast record against regeneration",
		Long: `A locked forecast record represents a manual override: regeneration
leaves it in place and never writes a competing record on its date.
Use --unlock to release it.`,
		Args: cobra.ExactArgs(1),
		RunE: runLock,
	}

	cmd.Flags().Bool("unlock", false, "release the lock instead")
	return cmd
}

func runLock(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	unlock, _ := cmd.Flags().GetBool("unlock")

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.SetForecastLock(ctx, args[0], !unlock); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.NewUserError(fmt.Sprintf("no forecast record with ID %q", args[0]), nil)
		}
		return err
	}

	verb := "Locked"
	if unlock {
		verb = "Unlocked"
	}
	fmt.Printf("%s %s forecast %s\n", cli.SuccessStyle.Render(cli.SuccessIcon), verb, args[0])
	return nil
}
