package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ebbflow-cash/ebbflow/internal/cli"
	"github.com/ebbflow-cash/ebbflow/internal/common"
	"github.com/ebbflow-cash/ebbflow/internal/model"
)

func groupsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "groups",
		Short: "Manage vendor-to-entity grouping rules",
		Long: `Grouping rules map raw vendor names onto logical entities so that
variations of the same counterparty ("AMAZON MKTP", "AMZN Marketplace")
are analyzed as one stream. Rules are exact matches by default; use
--regex for pattern matching.`,
	}

	cmd.AddCommand(groupsAddCmd())
	cmd.AddCommand(groupsListCmd())
	cmd.AddCommand(groupsRemoveCmd())
	return cmd
}

func groupsAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <vendor-pattern> <entity-id>",
		Short: "Add or update a grouping rule",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			isRegex, _ := c.Flags().GetBool("regex")
			priority, _ := c.Flags().GetInt("priority")

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			rule := model.GroupRule{
				VendorPattern: args[0],
				EntityID:      args[1],
				IsRegex:       isRegex,
				Priority:      priority,
				Source:        model.RuleSourceManual,
			}
			if err := store.SaveGroupRule(ctx, rule); err != nil {
				return fmt.Errorf("failed to save rule: %w", err)
			}

			fmt.Printf("%s %q → %s\n", cli.SuccessStyle.Render(cli.SuccessIcon), args[0], args[1])
			return nil
		},
	}

	cmd.Flags().Bool("regex", false, "treat the vendor pattern as a regular expression")
	cmd.Flags().Int("priority", 0, "rule priority (higher wins on overlap)")
	return cmd
}

func groupsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List grouping rules",
		RunE: func(c *cobra.Command, _ []string) error {
			ctx := c.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			rules, err := store.GetGroupRules(ctx)
			if err != nil {
				return fmt.Errorf("failed to load rules: %w", err)
			}
			if len(rules) == 0 {
				fmt.Println(cli.SubtleStyle.Render("No grouping rules defined"))
				return nil
			}

			header := fmt.Sprintf("%-32s %-24s %-6s %-8s %s", "Pattern", "Entity", "Regex", "Priority", "Source")
			fmt.Println(cli.TableHeaderStyle.Render(header))
			for _, rule := range rules {
				fmt.Printf("%-32s %-24s %-6v %-8d %s\n",
					rule.VendorPattern, rule.EntityID, rule.IsRegex, rule.Priority, rule.Source)
			}
			return nil
		},
	}
}

func groupsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <vendor-pattern>",
		Short: "Remove a grouping rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteGroupRule(ctx, args[0]); err != nil {
				if errors.Is(err, common.ErrNotFound) {
					return common.NewUserError(fmt.Sprintf("no rule for pattern %q", args[0]), nil)
				}
				return fmt.Errorf("failed to remove rule: %w", err)
			}

			fmt.Printf("%s Removed rule %q\n", cli.SuccessStyle.Render(cli.SuccessIcon), args[0])
			return nil
		},
	}
}
