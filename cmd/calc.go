package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joescharf/rutina/internal/calc"
	"github.com/joescharf/rutina/internal/output"
)

var (
	calcWeight  float64
	calcHeight  float64
	calcReps    int
	calcPercent []float64
)

var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Fitness calculators",
}

var calcBMICmd = &cobra.Command{
	Use:   "bmi",
	Short: "Body-mass index (defaults to your profile)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return calcBMIRun()
	},
}

var calcOneRMCmd = &cobra.Command{
	Use:   "1rm",
	Short: "Estimate a one-rep max from a set",
	RunE: func(cmd *cobra.Command, args []string) error {
		return calcOneRMRun()
	},
}

func init() {
	calcBMICmd.Flags().Float64Var(&calcWeight, "weight", 0, "Weight in kg")
	calcBMICmd.Flags().Float64Var(&calcHeight, "height", 0, "Height in cm")

	calcOneRMCmd.Flags().Float64Var(&calcWeight, "weight", 0, "Weight lifted in kg")
	calcOneRMCmd.Flags().IntVar(&calcReps, "reps", 0, "Reps performed")
	calcOneRMCmd.Flags().Float64SliceVar(&calcPercent, "percent", []float64{90, 80, 70}, "Training percentages to show")
	_ = calcOneRMCmd.MarkFlagRequired("weight")
	_ = calcOneRMCmd.MarkFlagRequired("reps")

	calcCmd.AddCommand(calcBMICmd)
	calcCmd.AddCommand(calcOneRMCmd)
	rootCmd.AddCommand(calcCmd)
}

func calcBMIRun() error {
	weight, height := calcWeight, calcHeight
	if weight == 0 || height == 0 {
		d, err := getDeps()
		if err != nil {
			return err
		}
		p, _, err := d.state.Profile(context.Background())
		if err != nil {
			return err
		}
		if weight == 0 {
			weight = p.WeightKg
		}
		if height == 0 {
			height = p.HeightCm
		}
	}

	bmi := calc.BMI(weight, height)
	if bmi == 0 {
		return fmt.Errorf("weight and height are required (flags or 'rutina profile set')")
	}
	fmt.Fprintf(ui.Out, "BMI %s  %s\n", output.Cyan(fmt.Sprintf("%g", bmi)), calc.BMIClass(bmi))
	return nil
}

func calcOneRMRun() error {
	orm := calc.OneRepMax(calcWeight, calcReps)
	if orm == 0 {
		return fmt.Errorf("weight and reps must be positive")
	}

	fmt.Fprintf(ui.Out, "Estimated 1RM: %s kg\n", output.Cyan(fmt.Sprintf("%g", orm)))
	table := ui.Table([]string{"%", "kg"})
	for _, pct := range calcPercent {
		table.Append([]string{fmt.Sprintf("%g", pct), fmt.Sprintf("%g", calc.PercentOf(orm, pct))})
	}
	table.Render()
	return nil
}
