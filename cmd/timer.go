package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/rutina/internal/models"
	"github.com/joescharf/rutina/internal/output"
	"github.com/joescharf/rutina/internal/timer"
)

var timerCmd = &cobra.Command{
	Use:   "timer",
	Short: "Workout stopwatch",
	Long: `Start, stop, and reset the workout stopwatch. The stopwatch keeps
running between invocations: elapsed time is measured from the moment it
was started.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return timerRun("show")
	},
}

var timerShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the elapsed time",
	RunE: func(cmd *cobra.Command, args []string) error {
		return timerRun("show")
	},
}

var timerStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start or resume the stopwatch",
	RunE: func(cmd *cobra.Command, args []string) error {
		return timerRun("start")
	},
}

var timerStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Pause the stopwatch",
	RunE: func(cmd *cobra.Command, args []string) error {
		return timerRun("stop")
	},
}

var timerResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Stop the stopwatch and set it to zero",
	RunE: func(cmd *cobra.Command, args []string) error {
		return timerRun("reset")
	},
}

var timerWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Show a live stopwatch until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		return timerWatchRun()
	},
}

var restCmd = &cobra.Command{
	Use:   "rest [minutes]",
	Short: "Count down a rest period",
	Long: `Count down a rest period between sets. Minutes may be fractional
(1.5) and default to rest.default_minutes. Press Ctrl-C to stop early.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		minutes := viper.GetString("rest.default_minutes")
		if len(args) > 0 {
			minutes = args[0]
		}
		return restRun(minutes)
	},
}

func init() {
	timerCmd.AddCommand(timerShowCmd)
	timerCmd.AddCommand(timerStartCmd)
	timerCmd.AddCommand(timerStopCmd)
	timerCmd.AddCommand(timerResetCmd)
	timerCmd.AddCommand(timerWatchCmd)
	rootCmd.AddCommand(timerCmd)
	rootCmd.AddCommand(restCmd)
}

func loadTimer(ctx context.Context) (*timer.Controller, error) {
	d, err := getDeps()
	if err != nil {
		return nil, err
	}
	return timer.Load(ctx, d.state, time.Now())
}

func timerRun(action string) error {
	ctx := context.Background()
	c, err := loadTimer(ctx)
	if err != nil {
		return err
	}

	if dryRun && action != "show" {
		ui.DryRunMsg("Would %s the stopwatch", action)
		return nil
	}

	now := time.Now()
	switch action {
	case "start":
		err = c.Start(ctx, now)
	case "stop":
		err = c.Stop(ctx, now)
	case "reset":
		err = c.Reset(ctx)
	}
	if err != nil {
		return err
	}

	snap := c.Tick(now)
	state := output.Yellow("stopped")
	if snap.Running {
		state = output.Green("running")
	}
	fmt.Fprintf(ui.Out, "%s  %s\n", output.Clock(snap.ElapsedSeconds), state)
	return nil
}

func timerWatchRun() error {
	ctx, stop := signal.NotifyContext(context.Background(), shutdownSignals()...)
	defer stop()

	c, err := loadTimer(ctx)
	if err != nil {
		return err
	}
	if !c.Snapshot().Running {
		ui.Info("Stopwatch is stopped at %s. Start it with 'rutina timer start'.", output.Clock(c.Snapshot().ElapsedSeconds))
		return nil
	}

	c.Run(ctx, time.Second, func(s timer.Snapshot) {
		fmt.Fprintf(ui.Out, "\r%s ", output.Clock(s.ElapsedSeconds))
	})
	fmt.Fprintln(ui.Out)
	return nil
}

func restRun(minutes string) error {
	secs := timer.RestSeconds(minutes, 0)
	if dryRun {
		ui.DryRunMsg("Would rest for %s", output.Clock(secs))
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), shutdownSignals()...)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c := timer.New(nil, models.TimerState{})
	c.StartRest(minutes, time.Now())
	fmt.Fprintf(ui.Out, "\rRest %s ", output.Clock(secs))

	done := false
	c.Run(ctx, 250*time.Millisecond, func(s timer.Snapshot) {
		if s.Rest == nil {
			return
		}
		fmt.Fprintf(ui.Out, "\rRest %s ", output.Clock(s.Rest.RemainingSeconds))
		if !s.Rest.Active {
			done = true
			cancel()
		}
	})
	fmt.Fprintln(ui.Out)

	if done {
		ui.Success("Rest over, next set")
	} else {
		ui.Info("Rest stopped")
	}
	return nil
}
