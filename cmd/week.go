package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
)

var weekCmd = &cobra.Command{
	Use:   "week",
	Short: "Weekly checklist maintenance",
}

var weekResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear every routine's checklist now",
	Long: `Clear the ticked exercises of every routine. This happens on its own
once each Sunday; use this to start the week over early. Logged sessions are
kept.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return weekResetRun()
	},
}

func init() {
	weekCmd.AddCommand(weekResetCmd)
	rootCmd.AddCommand(weekCmd)
}

func weekResetRun() error {
	d, err := getDeps()
	if err != nil {
		return err
	}
	ctx := context.Background()

	if dryRun {
		ids, err := d.progress.Routines(ctx)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			ui.DryRunMsg("Nothing to clear")
			return nil
		}
		ui.DryRunMsg("Would clear checklists of: %s", strings.Join(ids, ", "))
		return nil
	}

	n, err := d.engine.ResetWeek(ctx)
	if err != nil {
		return err
	}
	if n == 0 {
		ui.Info("No checklists to clear")
		return nil
	}
	ui.Success("Cleared %d checklist(s)", n)
	return nil
}
