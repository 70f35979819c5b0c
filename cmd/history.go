package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/joescharf/rutina/internal/calendar"
	"github.com/joescharf/rutina/internal/models"
	"github.com/joescharf/rutina/internal/output"
)

var (
	historyRoutine  string
	historyLimit    int
	historyDate     string
	historyDuration int
	historyEffort   float64
	historyVolume   float64
	historyNotes    string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List and edit logged workout sessions",
}

var historyListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List logged sessions, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return historyListRun()
	},
}

var historyLogCmd = &cobra.Command{
	Use:   "log",
	Short: "Log a session by hand",
	Long:  "Log a workout session with its duration, perceived effort and total volume.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return historyLogRun()
	},
}

var historyRemoveCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"remove"},
	Short:   "Remove a logged session",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return historyRemoveRun(args[0])
	},
}

func init() {
	historyListCmd.Flags().StringVar(&historyRoutine, "routine", "", "Only sessions of this routine")
	historyListCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of sessions")

	historyLogCmd.Flags().StringVar(&historyRoutine, "routine", "", "Routine id (default: selected routine)")
	historyLogCmd.Flags().StringVar(&historyDate, "date", "", "Session day YYYY-MM-DD (default: now)")
	historyLogCmd.Flags().IntVar(&historyDuration, "duration", 45, "Duration in minutes")
	historyLogCmd.Flags().Float64Var(&historyEffort, "effort", 7, "Perceived effort, 1-10")
	historyLogCmd.Flags().Float64Var(&historyVolume, "volume", 0, "Total volume in kg")
	historyLogCmd.Flags().StringVar(&historyNotes, "notes", "", "Session notes")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyLogCmd)
	historyCmd.AddCommand(historyRemoveCmd)
	rootCmd.AddCommand(historyCmd)
}

func historyListRun() error {
	d, err := getDeps()
	if err != nil {
		return err
	}

	sessions, err := d.history.List(context.Background())
	if err != nil {
		return err
	}

	table := ui.Table([]string{"ID", "Date", "Routine", "Minutes", "Effort", "Volume", "Exercises"})
	n := 0
	for _, s := range sessions {
		if historyRoutine != "" && s.RoutineID != historyRoutine {
			continue
		}
		if historyLimit > 0 && n >= historyLimit {
			break
		}
		n++

		date := s.Date
		if day, err := calendar.DayOfTimestamp(s.Date, d.loc); err == nil {
			date = day
		}
		table.Append([]string{
			output.Cyan(s.ID),
			date,
			s.RoutineID,
			fmt.Sprintf("%d", s.DurationMinutes),
			fmt.Sprintf("%g", s.PerceivedEffort),
			fmt.Sprintf("%g", s.TotalVolume),
			fmt.Sprintf("%d", len(s.PerformedExercises)),
		})
	}

	if n == 0 {
		ui.Info("No sessions logged yet. Tick exercises with 'rutina day check' and log them with 'rutina day complete'.")
		return nil
	}
	table.Render()
	return nil
}

func historyLogRun() error {
	d, err := getDeps()
	if err != nil {
		return err
	}
	ctx := context.Background()

	routineID, err := d.selectedOr(ctx, historyRoutine)
	if err != nil {
		return err
	}
	if historyEffort < 1 || historyEffort > 10 {
		return fmt.Errorf("effort must be between 1 and 10, got %g", historyEffort)
	}
	if historyDuration <= 0 {
		return fmt.Errorf("duration must be positive, got %d", historyDuration)
	}

	at := time.Now().In(d.loc)
	if historyDate != "" {
		day, err := calendar.ParseDay(historyDate, d.loc)
		if err != nil {
			return err
		}
		at = time.Date(day.Year(), day.Month(), day.Day(), at.Hour(), at.Minute(), at.Second(), 0, d.loc)
	}

	session := models.WorkoutSession{
		RoutineID:       routineID,
		Date:            at.Format(time.RFC3339),
		PerceivedEffort: historyEffort,
		DurationMinutes: historyDuration,
		TotalVolume:     historyVolume,
		Notes:           historyNotes,
	}

	if dryRun {
		ui.DryRunMsg("Would log a %d min session for %s on %s", historyDuration, routineID, calendar.ToISODay(at))
		return nil
	}

	id, err := d.history.Append(ctx, session)
	if err != nil {
		return err
	}
	ui.Success("Logged session %s", output.Cyan(id))
	return nil
}

func historyRemoveRun(id string) error {
	d, err := getDeps()
	if err != nil {
		return err
	}
	ctx := context.Background()

	if _, ok, err := d.history.Get(ctx, id); err != nil {
		return err
	} else if !ok {
		return fmt.Errorf("session not found: %s", id)
	}

	if dryRun {
		ui.DryRunMsg("Would remove session %s", id)
		return nil
	}
	if err := d.history.RemoveByID(ctx, id); err != nil {
		return err
	}
	ui.Success("Removed session %s", id)
	return nil
}
