package cmd

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/joescharf/rutina/internal/models"
	"github.com/joescharf/rutina/internal/stats"
)

var (
	reportFormat string
	exportType   string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export data as JSON, CSV, or Markdown",
	Long:  "Export logged sessions, the routine catalog, or custom workouts in various formats.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return exportRun()
	},
}

func init() {
	exportCmd.Flags().StringVar(&reportFormat, "format", "json", "Output format: json, csv, markdown")
	exportCmd.Flags().StringVar(&exportType, "type", "sessions", "Data type: sessions, routines, custom")
	rootCmd.AddCommand(exportCmd)
}

func exportRun() error {
	d, err := getDeps()
	if err != nil {
		return err
	}
	ctx := context.Background()

	switch exportType {
	case "sessions":
		return exportSessions(ctx, d)
	case "routines":
		return exportRoutines(d)
	case "custom":
		return exportCustom(ctx, d)
	default:
		return fmt.Errorf("unknown export type: %s (use: sessions, routines, custom)", exportType)
	}
}

func writeJSONOut(v any) error {
	enc := json.NewEncoder(ui.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func exportSessions(ctx context.Context, d *appDeps) error {
	sessions, err := d.history.List(ctx)
	if err != nil {
		return err
	}

	switch reportFormat {
	case "json":
		return writeJSONOut(sessions)
	case "csv":
		w := csv.NewWriter(ui.Out)
		_ = w.Write([]string{"ID", "Routine", "Date", "Minutes", "Effort", "Volume", "Exercises", "Notes"})
		for _, s := range sessions {
			ids := make([]string, len(s.PerformedExercises))
			for i, ex := range s.PerformedExercises {
				ids[i] = ex.ExerciseID
			}
			_ = w.Write([]string{s.ID, s.RoutineID, s.Date,
				fmt.Sprintf("%d", s.DurationMinutes), fmt.Sprintf("%g", s.PerceivedEffort),
				fmt.Sprintf("%g", s.TotalVolume), strings.Join(ids, ";"), s.Notes})
		}
		w.Flush()
		return w.Error()
	case "markdown":
		fmt.Fprintln(ui.Out, "# Sessions")
		fmt.Fprintln(ui.Out)
		fmt.Fprintln(ui.Out, "| Date | Routine | Minutes | Exercises | Notes |")
		fmt.Fprintln(ui.Out, "|------|---------|---------|-----------|-------|")
		for _, s := range sessions {
			fmt.Fprintf(ui.Out, "| %s | %s | %d | %d | %s |\n", s.Date, s.RoutineID, s.DurationMinutes, len(s.PerformedExercises), s.Notes)
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %s", reportFormat)
	}
}

func exportRoutines(d *appDeps) error {
	routines := d.catalog.Routines()

	switch reportFormat {
	case "json":
		return writeJSONOut(routines)
	case "csv":
		w := csv.NewWriter(ui.Out)
		_ = w.Write([]string{"Routine", "Day", "Title", "Exercise", "Sets", "Reps"})
		for _, r := range routines {
			for _, wo := range r.Workouts {
				for _, ex := range wo.Exercises {
					_ = w.Write([]string{r.ID, wo.Day, wo.Title, ex.ExerciseID, fmt.Sprintf("%d", ex.Sets), ex.Reps})
				}
			}
		}
		w.Flush()
		return w.Error()
	case "markdown":
		fmt.Fprintln(ui.Out, "# Routines")
		for _, r := range routines {
			fmt.Fprintln(ui.Out)
			fmt.Fprintf(ui.Out, "## %s (%s, %s)\n", r.Name, r.Goal, r.Level)
			for _, wo := range r.Workouts {
				fmt.Fprintln(ui.Out)
				fmt.Fprintf(ui.Out, "### %s: %s\n", wo.Day, wo.Title)
				for _, ex := range wo.Exercises {
					fmt.Fprintf(ui.Out, "- %s %dx%s\n", d.catalog.ExerciseName(ex.ExerciseID), ex.Sets, ex.Reps)
				}
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %s", reportFormat)
	}
}

func exportCustom(ctx context.Context, d *appDeps) error {
	st, err := d.state.Load(ctx)
	if err != nil {
		return err
	}

	switch reportFormat {
	case "json":
		return writeJSONOut(st.CustomWorkouts)
	case "csv":
		w := csv.NewWriter(ui.Out)
		_ = w.Write([]string{"ID", "Workout", "Exercise", "Sets", "Reps", "Load"})
		for _, cw := range st.CustomWorkouts {
			for _, ex := range cw.Exercises {
				_ = w.Write([]string{cw.ID, cw.Name, ex.Name, fmt.Sprintf("%d", ex.Sets), ex.Reps, ex.Load})
			}
		}
		w.Flush()
		return w.Error()
	case "markdown":
		fmt.Fprintln(ui.Out, "# Custom Workouts")
		for _, cw := range st.CustomWorkouts {
			fmt.Fprintln(ui.Out)
			fmt.Fprintf(ui.Out, "## %s\n", cw.Name)
			for _, ex := range cw.Exercises {
				fmt.Fprintf(ui.Out, "- %s %dx%s %s\n", ex.Name, ex.Sets, ex.Reps, ex.Load)
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %s", reportFormat)
	}
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate reports",
	Long:  "Generate Markdown summaries of your training.",
}

var reportWeeklyCmd = &cobra.Command{
	Use:   "weekly",
	Short: "Generate this week's training summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		return reportWeeklyRun(time.Now())
	},
}

func init() {
	reportCmd.AddCommand(reportWeeklyCmd)
	rootCmd.AddCommand(reportCmd)
}

func reportWeeklyRun(now time.Time) error {
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
	sum := stats.NewCalculator(d.loc).Summarize(sessions, profile, now)

	fmt.Fprintln(ui.Out, "# Weekly Report")
	fmt.Fprintln(ui.Out)
	fmt.Fprintf(ui.Out, "- Sessions: %d of %d (%d%%)\n", sum.SessionsThisWeek, sum.WeeklyTarget, sum.Compliance)
	fmt.Fprintf(ui.Out, "- Streak: %d day(s)\n", sum.Streak)
	if n := len(sum.WeeklyVolume); n > 0 {
		fmt.Fprintf(ui.Out, "- Volume: %g kg\n", sum.WeeklyVolume[n-1].Volume)
	}

	st, err := d.state.Load(ctx)
	if err != nil {
		return err
	}
	if st.SelectedRoutineID == "" {
		return nil
	}
	days, err := d.engine.WeekStatus(ctx, st.SelectedRoutineID)
	if err != nil {
		return err
	}

	fmt.Fprintln(ui.Out)
	fmt.Fprintf(ui.Out, "## %s\n", st.SelectedRoutineID)
	for _, ds := range days {
		if !ds.Scheduled {
			continue
		}
		fmt.Fprintf(ui.Out, "- %s (%s) %s: %s\n", ds.Weekday, ds.Date, ds.Title, ds.State)
	}
	return nil
}
