package cmd

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joescharf/rutina/internal/calc"
	"github.com/joescharf/rutina/internal/models"
	"github.com/joescharf/rutina/internal/output"
)

var (
	profileName      string
	profileAge       int
	profileHeight    float64
	profileWeight    float64
	profileGoal      string
	profileLevel     string
	profileFocus     []string
	profileFrequency int
)

var validGoals = []models.UserGoal{
	models.UserGoalHealth,
	models.UserGoalFatLoss,
	models.UserGoalMuscle,
	models.UserGoalPerformance,
}

var validLevels = []models.Level{
	models.LevelBeginner,
	models.LevelIntermediate,
	models.LevelAdvanced,
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or edit your profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		return profileShowRun()
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show your profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		return profileShowRun()
	},
}

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update profile fields",
	Long:  "Update the given profile fields. Fields without a flag keep their value.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return profileSetRun(cmd)
	},
}

func init() {
	f := profileSetCmd.Flags()
	f.StringVar(&profileName, "name", "", "Your name")
	f.IntVar(&profileAge, "age", 0, "Age in years")
	f.Float64Var(&profileHeight, "height", 0, "Height in cm")
	f.Float64Var(&profileWeight, "weight", 0, "Weight in kg")
	f.StringVar(&profileGoal, "goal", "", "Goal: health, fat-loss, muscle, performance")
	f.StringVar(&profileLevel, "level", "", "Level: beginner, intermediate, advanced")
	f.StringSliceVar(&profileFocus, "focus", nil, "Focus areas (comma-separated)")
	f.IntVar(&profileFrequency, "frequency", 0, "Target sessions per week")

	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileSetCmd)
	rootCmd.AddCommand(profileCmd)
}

func profileShowRun() error {
	d, err := getDeps()
	if err != nil {
		return err
	}
	p, ok, err := d.state.Profile(context.Background())
	if err != nil {
		return err
	}
	if !ok {
		ui.Info("No profile yet. Create one with 'rutina profile set --goal ... --level ...'.")
		return nil
	}

	bmi := calc.BMI(p.WeightKg, p.HeightCm)
	fmt.Fprintf(ui.Out, "%s\n", output.Cyan(orDash(p.Name)))
	fmt.Fprintf(ui.Out, "  Age:        %s\n", intOrDash(p.Age))
	fmt.Fprintf(ui.Out, "  Height:     %g cm\n", p.HeightCm)
	fmt.Fprintf(ui.Out, "  Weight:     %g kg\n", p.WeightKg)
	fmt.Fprintf(ui.Out, "  BMI:        %g (%s)\n", bmi, calc.BMIClass(bmi))
	fmt.Fprintf(ui.Out, "  Goal:       %s\n", orDash(string(p.Goal)))
	fmt.Fprintf(ui.Out, "  Level:      %s\n", orDash(string(p.Level)))
	fmt.Fprintf(ui.Out, "  Focus:      %s\n", orDash(strings.Join(p.FocusAreas, ", ")))
	fmt.Fprintf(ui.Out, "  Frequency:  %s/week\n", intOrDash(p.WeeklyFrequency))
	return nil
}

func profileSetRun(cmd *cobra.Command) error {
	d, err := getDeps()
	if err != nil {
		return err
	}
	ctx := context.Background()

	p, _, err := d.state.Profile(ctx)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("name") {
		p.Name = strings.TrimSpace(profileName)
	}
	if flags.Changed("age") {
		if profileAge <= 0 {
			return fmt.Errorf("age must be positive")
		}
		p.Age = profileAge
	}
	if flags.Changed("height") {
		if profileHeight <= 0 {
			return fmt.Errorf("height must be positive")
		}
		p.HeightCm = profileHeight
	}
	if flags.Changed("weight") {
		if profileWeight <= 0 {
			return fmt.Errorf("weight must be positive")
		}
		p.WeightKg = profileWeight
	}
	if flags.Changed("goal") {
		g := models.UserGoal(strings.ToLower(profileGoal))
		if !slices.Contains(validGoals, g) {
			return fmt.Errorf("invalid goal %q (valid: %v)", profileGoal, validGoals)
		}
		p.Goal = g
	}
	if flags.Changed("level") {
		l := models.Level(strings.ToLower(profileLevel))
		if !slices.Contains(validLevels, l) {
			return fmt.Errorf("invalid level %q (valid: %v)", profileLevel, validLevels)
		}
		p.Level = l
	}
	if flags.Changed("focus") {
		p.FocusAreas = profileFocus
	}
	if flags.Changed("frequency") {
		if profileFrequency < 1 || profileFrequency > 7 {
			return fmt.Errorf("frequency must be between 1 and 7")
		}
		p.WeeklyFrequency = profileFrequency
	}
	p.OnboardingComplete = p.Goal != "" && p.Level != ""

	if dryRun {
		ui.DryRunMsg("Would save profile")
		return nil
	}
	if err := d.state.SaveProfile(ctx, p); err != nil {
		return err
	}
	ui.Success("Profile saved")
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func intOrDash(n int) string {
	if n == 0 {
		return "-"
	}
	return fmt.Sprintf("%d", n)
}
