package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joescharf/rutina/internal/engine"
	"github.com/joescharf/rutina/internal/output"
)

var (
	dayRoutine string
	dayTitle   string
)

var dayCmd = &cobra.Command{
	Use:   "day",
	Short: "Work through this week's checklist",
	Long: `Show and tick the exercises of a routine day, and log a day as a
workout session once you are done. Weekdays may be written in Spanish or
English (Lunes, miercoles, friday).`,
}

var dayShowCmd = &cobra.Command{
	Use:   "show [weekday]",
	Short: "Show a day's checklist, or the whole week",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return weekShowRun(dayRoutine)
		}
		return dayShowRun(dayRoutine, args[0])
	},
}

var dayCheckCmd = &cobra.Command{
	Use:   "check <weekday> <exercise-id>...",
	Short: "Tick or untick exercises",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return dayCheckRun(dayRoutine, args[0], args[1:])
	},
}

var dayCompleteCmd = &cobra.Command{
	Use:   "complete <weekday>",
	Short: "Log the ticked exercises as a workout session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return dayCompleteRun(dayRoutine, args[0])
	},
}

var dayUncompleteCmd = &cobra.Command{
	Use:   "uncomplete <weekday>",
	Short: "Remove the sessions logged for a day",
	Long:  "Remove every session logged for the day this week. The checklist is not restored.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return dayUncompleteRun(dayRoutine, args[0])
	},
}

func init() {
	dayCmd.PersistentFlags().StringVar(&dayRoutine, "routine", "", "Routine id (default: selected routine)")
	dayCompleteCmd.Flags().StringVar(&dayTitle, "title", "", "Workout title for the session note (default: the day's title)")

	dayCmd.AddCommand(dayShowCmd)
	dayCmd.AddCommand(dayCheckCmd)
	dayCmd.AddCommand(dayCompleteCmd)
	dayCmd.AddCommand(dayUncompleteCmd)
	rootCmd.AddCommand(dayCmd)
}

func dayShowRun(routineID, weekday string) error {
	d, err := getDeps()
	if err != nil {
		return err
	}
	ctx := context.Background()

	routineID, err = d.selectedOr(ctx, routineID)
	if err != nil {
		return err
	}
	ds, err := d.engine.DayStatus(ctx, routineID, weekday)
	if err != nil {
		return err
	}

	if !ds.Scheduled {
		ui.Info("%s: rest day (%s)", ds.Weekday, ds.Date)
		return nil
	}

	fmt.Fprintf(ui.Out, "%s  %s  %s  %s\n", output.Yellow(ds.Weekday), ds.Date, ds.Title, output.DayStateColor(ds.State))
	table := ui.Table([]string{"", "ID", "Exercise", "Sets", "Reps", "Notes"})
	for _, ex := range ds.Exercises {
		table.Append([]string{
			output.Check(ex.Done),
			ex.ExerciseID,
			ex.Name,
			fmt.Sprintf("%d", ex.Sets),
			ex.Reps,
			ex.Notes,
		})
	}
	table.Render()

	for _, s := range ds.Sessions {
		ui.Info("Logged: %d min, %d exercises (%s)", s.DurationMinutes, len(s.PerformedExercises), s.ID)
	}
	return nil
}

func weekShowRun(routineID string) error {
	d, err := getDeps()
	if err != nil {
		return err
	}
	ctx := context.Background()

	routineID, err = d.selectedOr(ctx, routineID)
	if err != nil {
		return err
	}
	days, err := d.engine.WeekStatus(ctx, routineID)
	if err != nil {
		return err
	}

	table := ui.Table([]string{"Day", "Date", "Workout", "Done", "State"})
	for _, ds := range days {
		done := 0
		for _, ex := range ds.Exercises {
			if ex.Done {
				done++
			}
		}
		table.Append([]string{
			output.Yellow(ds.Weekday),
			ds.Date,
			ds.Title,
			fmt.Sprintf("%d/%d", done, len(ds.Exercises)),
			output.DayStateColor(ds.State),
		})
	}
	table.Render()
	return nil
}

func dayCheckRun(routineID, weekday string, exerciseIDs []string) error {
	d, err := getDeps()
	if err != nil {
		return err
	}
	ctx := context.Background()

	routineID, err = d.selectedOr(ctx, routineID)
	if err != nil {
		return err
	}

	for _, id := range exerciseIDs {
		if dryRun {
			ui.DryRunMsg("Would toggle %s on %s", id, weekday)
			continue
		}
		res, err := d.engine.ToggleExercise(ctx, routineID, weekday, id)
		if err != nil {
			return err
		}
		name := d.catalog.ExerciseName(id)
		switch {
		case !res.Changed:
			ui.Warning("%s unchanged (day is %s or the exercise is not scheduled)", name, res.State)
		case res.Done:
			ui.Success("%s %s", output.Check(true), name)
		default:
			ui.Info("%s %s", output.Check(false), name)
		}
	}
	return nil
}

func dayCompleteRun(routineID, weekday string) error {
	d, err := getDeps()
	if err != nil {
		return err
	}
	ctx := context.Background()

	routineID, err = d.selectedOr(ctx, routineID)
	if err != nil {
		return err
	}

	if dryRun {
		ds, err := d.engine.DayStatus(ctx, routineID, weekday)
		if err != nil {
			return err
		}
		ui.DryRunMsg("Would log %s (%s) as a session", ds.Weekday, ds.State)
		return nil
	}

	session, err := d.engine.PromoteDay(ctx, routineID, weekday, dayTitle)
	if errors.Is(err, engine.ErrDayLogged) {
		return fmt.Errorf("%s is already logged (use 'rutina day uncomplete %s' first)", weekday, weekday)
	}
	if err != nil {
		return err
	}
	if session == nil {
		ui.Info("Nothing to log: no exercises are ticked on %s", weekday)
		return nil
	}
	ui.VerboseLog("Session %s at %s", session.ID, session.Date)
	return nil
}

func dayUncompleteRun(routineID, weekday string) error {
	d, err := getDeps()
	if err != nil {
		return err
	}
	ctx := context.Background()

	routineID, err = d.selectedOr(ctx, routineID)
	if err != nil {
		return err
	}
	if dryRun {
		ui.DryRunMsg("Would remove the sessions logged for %s", weekday)
		return nil
	}

	n, err := d.engine.UnpromoteDay(ctx, routineID, weekday)
	if err != nil {
		return err
	}
	if n == 0 {
		ui.Info("Nothing logged for %s", weekday)
		return nil
	}
	ui.Success("Removed %d session(s) for %s", n, weekday)
	return nil
}
