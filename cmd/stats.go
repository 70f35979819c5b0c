package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/joescharf/rutina/internal/models"
	"github.com/joescharf/rutina/internal/output"
	"github.com/joescharf/rutina/internal/stats"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show training statistics",
	Long:  "Show session totals, streak, weekly compliance against your target, and weekly volume.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return statsRun()
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func statsRun() error {
	d, err := getDeps()
	if err != nil {
		return err
	}
	ctx := context.Background()

	sessions, err := d.history.List(ctx)
	if err != nil {
		return err
	}
	var profile *models.UserProfile
	if p, ok, err := d.state.Profile(ctx); err != nil {
		return err
	} else if ok {
		profile = &p
	}

	sum := stats.NewCalculator(d.loc).Summarize(sessions, profile, time.Now())

	if !sum.HasSessions {
		ui.Info("No sessions logged yet.")
		return nil
	}

	fmt.Fprintf(ui.Out, "Sessions:     %d (avg %d min)\n", sum.TotalSessions, sum.AverageDuration)
	last := "today"
	switch {
	case sum.DaysSinceLast == 1:
		last = "yesterday"
	case sum.DaysSinceLast > 1:
		last = fmt.Sprintf("%d days ago", sum.DaysSinceLast)
	}
	fmt.Fprintf(ui.Out, "Last session: %s\n", last)
	fmt.Fprintf(ui.Out, "Streak:       %d day(s)\n", sum.Streak)
	fmt.Fprintf(ui.Out, "This week:    %d/%d  %s\n", sum.SessionsThisWeek, sum.WeeklyTarget, output.ComplianceColor(sum.Compliance))

	fmt.Fprintln(ui.Out)
	peak := 0.0
	for _, w := range sum.WeeklyVolume {
		peak = max(peak, w.Volume)
	}
	table := ui.Table([]string{"Week", "Volume (kg)", ""})
	for _, w := range sum.WeeklyVolume {
		bar := ""
		if peak > 0 {
			bar = strings.Repeat("#", int(w.Volume/peak*20))
		}
		table.Append([]string{w.Week, fmt.Sprintf("%g", w.Volume), output.Cyan(bar)})
	}
	table.Render()
	return nil
}
