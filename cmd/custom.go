package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joescharf/rutina/internal/models"
	"github.com/joescharf/rutina/internal/output"
)

var (
	customFocus     []string
	customExercises []string
)

var customCmd = &cobra.Command{
	Use:   "custom",
	Short: "Manage your own workouts",
}

var customListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List custom workouts",
	RunE: func(cmd *cobra.Command, args []string) error {
		return customListRun()
	},
}

var customAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a custom workout",
	Long: `Add a custom workout. Each --exercise takes name:sets:reps with an
optional :load, for example --exercise "Hip thrust:4:10:60kg".`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return customAddRun(args[0])
	},
}

var customRemoveCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"remove"},
	Short:   "Remove a custom workout",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return customRemoveRun(args[0])
	},
}

func init() {
	customAddCmd.Flags().StringSliceVar(&customFocus, "focus", nil, "Focus areas (comma-separated)")
	customAddCmd.Flags().StringArrayVar(&customExercises, "exercise", nil, "Exercise as name:sets:reps[:load] (repeatable)")

	customCmd.AddCommand(customListCmd)
	customCmd.AddCommand(customAddCmd)
	customCmd.AddCommand(customRemoveCmd)
	rootCmd.AddCommand(customCmd)
}

func customListRun() error {
	d, err := getDeps()
	if err != nil {
		return err
	}
	st, err := d.state.Load(context.Background())
	if err != nil {
		return err
	}

	if len(st.CustomWorkouts) == 0 {
		ui.Info("No custom workouts. Add one with 'rutina custom add'.")
		return nil
	}

	table := ui.Table([]string{"ID", "Name", "Focus", "Exercises"})
	for _, w := range st.CustomWorkouts {
		names := make([]string, len(w.Exercises))
		for i, ex := range w.Exercises {
			names[i] = fmt.Sprintf("%s %dx%s", ex.Name, ex.Sets, ex.Reps)
		}
		table.Append([]string{
			output.Cyan(w.ID),
			w.Name,
			strings.Join(w.FocusAreas, ", "),
			strings.Join(names, "; "),
		})
	}
	table.Render()
	return nil
}

func customAddRun(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("workout name is required")
	}

	w := models.CustomWorkout{Name: name, FocusAreas: customFocus}
	for _, raw := range customExercises {
		ex, err := parseCustomExercise(raw)
		if err != nil {
			return err
		}
		w.Exercises = append(w.Exercises, ex)
	}

	if dryRun {
		ui.DryRunMsg("Would add custom workout %q with %d exercise(s)", name, len(w.Exercises))
		return nil
	}

	d, err := getDeps()
	if err != nil {
		return err
	}
	id, err := d.state.AddCustomWorkout(context.Background(), w)
	if err != nil {
		return err
	}
	ui.Success("Added custom workout %s (%s)", name, output.Cyan(id))
	return nil
}

// parseCustomExercise reads name:sets:reps[:load].
func parseCustomExercise(s string) (models.CustomWorkoutExercise, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 3 || len(parts) > 4 {
		return models.CustomWorkoutExercise{}, fmt.Errorf("invalid exercise %q: want name:sets:reps[:load]", s)
	}

	name := strings.TrimSpace(parts[0])
	if name == "" {
		return models.CustomWorkoutExercise{}, fmt.Errorf("invalid exercise %q: empty name", s)
	}
	sets, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || sets <= 0 {
		return models.CustomWorkoutExercise{}, fmt.Errorf("invalid exercise %q: sets must be a positive number", s)
	}

	ex := models.CustomWorkoutExercise{
		Name: name,
		Sets: sets,
		Reps: strings.TrimSpace(parts[2]),
	}
	if len(parts) == 4 {
		ex.Load = strings.TrimSpace(parts[3])
	}
	return ex, nil
}

func customRemoveRun(id string) error {
	d, err := getDeps()
	if err != nil {
		return err
	}
	ctx := context.Background()

	st, err := d.state.Load(ctx)
	if err != nil {
		return err
	}
	found := false
	for _, w := range st.CustomWorkouts {
		if w.ID == id {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("custom workout not found: %s", id)
	}

	if dryRun {
		ui.DryRunMsg("Would remove custom workout %s", id)
		return nil
	}
	if err := d.state.DeleteCustomWorkout(ctx, id); err != nil {
		return err
	}
	ui.Success("Removed custom workout %s", id)
	return nil
}
