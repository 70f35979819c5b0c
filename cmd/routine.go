package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joescharf/rutina/internal/catalog"
	"github.com/joescharf/rutina/internal/models"
	"github.com/joescharf/rutina/internal/output"
)

var (
	overrideSets  int
	overrideReps  string
	overrideNote  string
	overrideReset bool
	routineFlag   string
)

var routineCmd = &cobra.Command{
	Use:   "routine",
	Short: "Browse and select training routines",
	Long:  "List the routine catalog, show a routine's weekly plan, select the active routine, and adjust its sets and reps.",
}

var routineListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List available routines",
	RunE: func(cmd *cobra.Command, args []string) error {
		return routineListRun()
	},
}

var routineShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show a routine's weekly plan (default: selected routine)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := ""
		if len(args) > 0 {
			id = args[0]
		}
		return routineShowRun(id)
	},
}

var routineSelectCmd = &cobra.Command{
	Use:   "select <id>",
	Short: "Select the active routine",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return routineSelectRun(args[0])
	},
}

var routineRecommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Recommend routines for your profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		return routineRecommendRun()
	},
}

var routineOverrideCmd = &cobra.Command{
	Use:   "override <weekday> <exercise-id>",
	Short: "Adjust sets, reps, or notes of a scheduled exercise",
	Long: `Adjust the sets, reps, or notes of one exercise on one day of a routine.
Values equal to the routine's defaults remove the override. Use --reset to
go back to the defaults explicitly.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return routineOverrideRun(args[0], args[1])
	},
}

func init() {
	routineOverrideCmd.Flags().StringVar(&routineFlag, "routine", "", "Routine id (default: selected routine)")
	routineOverrideCmd.Flags().IntVar(&overrideSets, "sets", 0, "Number of sets")
	routineOverrideCmd.Flags().StringVar(&overrideReps, "reps", "", "Reps, e.g. 8 or 45s")
	routineOverrideCmd.Flags().StringVar(&overrideNote, "note", "", "Note shown with the exercise")
	routineOverrideCmd.Flags().BoolVar(&overrideReset, "reset", false, "Remove the override")

	routineCmd.AddCommand(routineListCmd)
	routineCmd.AddCommand(routineShowCmd)
	routineCmd.AddCommand(routineSelectCmd)
	routineCmd.AddCommand(routineRecommendCmd)
	routineCmd.AddCommand(routineOverrideCmd)
	rootCmd.AddCommand(routineCmd)
}

func routineListRun() error {
	d, err := getDeps()
	if err != nil {
		return err
	}
	st, err := d.state.Load(context.Background())
	if err != nil {
		return err
	}
	printRoutines(d.catalog.Routines(), st.SelectedRoutineID)
	return nil
}

func printRoutines(routines []models.RoutinePlan, selected string) {
	table := ui.Table([]string{"", "ID", "Name", "Goal", "Level", "Days/Week", "Focus"})
	for _, r := range routines {
		mark := ""
		if r.ID == selected {
			mark = output.Green("*")
		}
		table.Append([]string{
			mark,
			output.Cyan(r.ID),
			r.Name,
			string(r.Goal),
			string(r.Level),
			fmt.Sprintf("%d", r.SessionsPerWeek),
			strings.Join(r.FocusAreas, ", "),
		})
	}
	table.Render()
}

func routineShowRun(id string) error {
	d, err := getDeps()
	if err != nil {
		return err
	}
	ctx := context.Background()

	id, err = d.selectedOr(ctx, id)
	if err != nil {
		return err
	}
	r, err := d.catalog.Routine(id)
	if err != nil {
		return err
	}

	fmt.Fprintf(ui.Out, "%s\n", output.Cyan(r.Name))
	fmt.Fprintf(ui.Out, "  Goal:       %s\n", r.Goal)
	fmt.Fprintf(ui.Out, "  Level:      %s\n", r.Level)
	fmt.Fprintf(ui.Out, "  Sessions:   %d/week for %d weeks\n", r.SessionsPerWeek, r.DurationWeeks)
	if r.Summary != "" {
		fmt.Fprintf(ui.Out, "  Summary:    %s\n", r.Summary)
	}

	for _, w := range r.Workouts {
		fmt.Fprintln(ui.Out)
		fmt.Fprintf(ui.Out, "%s  %s\n", output.Yellow(w.Day), w.Title)
		table := ui.Table([]string{"Exercise", "Sets", "Reps", "Notes"})
		for _, ex := range w.Exercises {
			eff, err := d.overrides.Apply(ctx, r.ID, w.Day, ex)
			if err != nil {
				return err
			}
			table.Append([]string{
				d.catalog.ExerciseName(ex.ExerciseID),
				fmt.Sprintf("%d", eff.Sets),
				eff.Reps,
				eff.Notes,
			})
		}
		table.Render()
	}
	return nil
}

func routineSelectRun(id string) error {
	d, err := getDeps()
	if err != nil {
		return err
	}
	r, err := d.catalog.Routine(id)
	if err != nil {
		return err
	}

	if dryRun {
		ui.DryRunMsg("Would select routine: %s", r.Name)
		return nil
	}
	if err := d.state.SelectRoutine(context.Background(), r.ID); err != nil {
		return err
	}
	ui.Success("Selected routine: %s", output.Cyan(r.Name))
	return nil
}

func routineRecommendRun() error {
	d, err := getDeps()
	if err != nil {
		return err
	}
	ctx := context.Background()

	profile, ok, err := d.state.Profile(ctx)
	if err != nil {
		return err
	}
	var p *models.UserProfile
	if ok {
		p = &profile
	} else {
		ui.Info("No profile yet; showing the first routines. Set one with 'rutina profile set'.")
	}

	recs := catalog.Recommend(p, d.catalog.Routines())
	if len(recs) == 0 {
		ui.Info("No routine matches your goal and level.")
		return nil
	}

	st, err := d.state.Load(ctx)
	if err != nil {
		return err
	}
	printRoutines(recs, st.SelectedRoutineID)
	return nil
}

func routineOverrideRun(weekday, exerciseID string) error {
	d, err := getDeps()
	if err != nil {
		return err
	}
	ctx := context.Background()

	id, err := d.selectedOr(ctx, routineFlag)
	if err != nil {
		return err
	}
	block, ok, err := d.catalog.Block(id, weekday)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s has no workout on %s", id, weekday)
	}

	var def *models.RoutineExercise
	for i := range block.Exercises {
		if block.Exercises[i].ExerciseID == exerciseID {
			def = &block.Exercises[i]
			break
		}
	}
	if def == nil {
		return fmt.Errorf("%s is not scheduled on %s", exerciseID, block.Day)
	}

	if dryRun {
		ui.DryRunMsg("Would update %s on %s", exerciseID, block.Day)
		return nil
	}

	if overrideReset {
		if err := d.overrides.Reset(ctx, id, block.Day, exerciseID); err != nil {
			return err
		}
		ui.Success("Reset %s on %s to %d x %s", d.catalog.ExerciseName(exerciseID), block.Day, def.Sets, def.Reps)
		return nil
	}

	o := models.ExerciseOverride{Sets: overrideSets, Reps: overrideReps, Note: overrideNote}
	if err := d.overrides.Set(ctx, id, block.Day, *def, o); err != nil {
		return err
	}
	eff, err := d.overrides.Apply(ctx, id, block.Day, *def)
	if err != nil {
		return err
	}
	ui.Success("%s on %s: %d x %s", d.catalog.ExerciseName(exerciseID), block.Day, eff.Sets, eff.Reps)
	return nil
}
