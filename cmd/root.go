package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/rutina/internal/output"
	"github.com/joescharf/rutina/internal/store"
)

// Package-level shared dependencies, initialized in cobra.OnInitialize.
var (
	ui        *output.UI
	dataStore store.Store
	deps      *appDeps

	verbose bool
	dryRun  bool
)

var rootCmd = &cobra.Command{
	Use:   "rutina",
	Short: "Rutina - workout routines, checklists, and progress",
	Long: `rutina tracks a weekly training routine from the terminal.
It keeps a per-day exercise checklist, logs completed days as workout
sessions, runs a stopwatch and rest timer, and reports training stats.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
}

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	defer closeStore()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		closeStore()
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initDeps)

	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return rootRun(cmd)
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "Show what would happen without making changes")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/rutina/config.yaml)")
}

func initConfig() {
	// If --config is explicitly set, use that file
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot find home directory: %v\n", err)
			os.Exit(1)
		}

		configDir := filepath.Join(home, ".config", "rutina")
		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("RUTINA")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	home, _ := os.UserHomeDir()
	setDefaults(filepath.Join(home, ".config", "rutina"))

	// Read config file if it exists (optional)
	_ = viper.ReadInConfig()
}

// setDefaults registers every config key with its default value.
func setDefaults(stateDir string) {
	viper.SetDefault("state_dir", stateDir)
	viper.SetDefault("db_path", filepath.Join(stateDir, "rutina.db"))
	viper.SetDefault("app_prefix", store.DefaultKeys.App)
	viper.SetDefault("timezone", "")
	viper.SetDefault("undo_window", "2.8s")
	viper.SetDefault("engine.minutes_per_exercise", 8)
	viper.SetDefault("engine.default_duration", 30)
	viper.SetDefault("engine.allow_duplicate_promotion", false)
	viper.SetDefault("history.max_sessions", 60)
	viper.SetDefault("rest.default_minutes", "1")
	viper.SetDefault("serve.host", "127.0.0.1")
	viper.SetDefault("serve.port", 8484)
}

func initDeps() {
	ui = output.New()
	ui.Verbose = verbose
	ui.DryRun = dryRun

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	// Initialize store lazily, only when commands actually need it.
	// This allows config/version commands to run without a db.
}

// rootRun handles `rutina` with no subcommand: show today's checklist of
// the selected routine.
func rootRun(cmd *cobra.Command) error {
	d, err := getDeps()
	if err != nil {
		return cmd.Help()
	}

	st, err := d.state.Load(context.Background())
	if err != nil || st.SelectedRoutineID == "" {
		return cmd.Help()
	}

	today := time.Now().In(d.loc).Weekday()
	return dayShowRun(st.SelectedRoutineID, today.String())
}

// getStore returns the shared store, initializing it on first call.
func getStore() (store.Store, error) {
	if dataStore != nil {
		return dataStore, nil
	}

	dbPath := viper.GetString("db_path")
	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := s.Migrate(context.Background()); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	dataStore = s
	return dataStore, nil
}

func closeStore() {
	if dataStore != nil {
		_ = dataStore.Close()
		dataStore = nil
		deps = nil
	}
}
