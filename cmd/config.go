package cmd

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"text/template"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var configForce bool

// configDirFunc returns the config directory path, replaceable in tests.
var configDirFunc = defaultConfigDir

func defaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "rutina"), nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or manage configuration",
	Long: `Show or manage rutina configuration.

Running bare 'rutina config' is the same as 'rutina config show'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowRun()
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create config file with commented defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configInitRun()
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration with sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowRun()
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open config file in $EDITOR",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configEditRun()
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite existing config file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEditCmd)
	rootCmd.AddCommand(configCmd)
}

// configTemplate is the template for generating config.yaml with comments.
const configTemplate = `# rutina configuration
# See: rutina config show (for effective values and sources)

# State/data directory (default: ~/.config/rutina)
# state_dir: {{ .StateDir }}

# SQLite database path (default: ~/.config/rutina/rutina.db)
# db_path: {{ .DBPath }}

# Key prefix of the stored documents (default: "Rutina")
app_prefix: "{{ .AppPrefix }}"

# IANA time zone for weekdays and weeks; empty uses the system zone
timezone: "{{ .Timezone }}"

# How long a completed day can be undone from the MCP or API server (default: 2.8s)
undo_window: "{{ .UndoWindow }}"

# Session logging
engine:
  # Minutes credited per scheduled exercise of a completed day (default: 8)
  minutes_per_exercise: {{ .MinutesPerExercise }}

  # Minutes credited when the day has no scheduled exercises (default: 30)
  default_duration: {{ .DefaultDuration }}

  # Allow logging the same day more than once (default: false)
  allow_duplicate_promotion: {{ .AllowDuplicatePromotion }}

history:
  # Sessions kept, newest first (default: 60)
  max_sessions: {{ .MaxSessions }}

rest:
  # Rest countdown length in minutes (default: "1")
  default_minutes: "{{ .RestMinutes }}"

# Local REST API (rutina serve)
serve:
  # Listen host (default: 127.0.0.1)
  host: "{{ .ServeHost }}"

  # Listen port (default: 8484)
  port: {{ .ServePort }}
`

type configTemplateData struct {
	StateDir                string
	DBPath                  string
	AppPrefix               string
	Timezone                string
	UndoWindow              string
	MinutesPerExercise      int
	DefaultDuration         int
	AllowDuplicatePromotion bool
	MaxSessions             int
	RestMinutes             string
	ServeHost               string
	ServePort               int
}

func configFilePath() (string, error) {
	dir, err := configDirFunc()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func configInitRun() error {
	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	// Check if file already exists
	if _, err := os.Stat(cfgPath); err == nil {
		if !configForce {
			return fmt.Errorf("config file already exists: %s (use --force to overwrite)", cfgPath)
		}
		ui.Warning("Overwriting existing config file")
	}

	// Build template data from current viper values
	data := configTemplateData{
		StateDir:                viper.GetString("state_dir"),
		DBPath:                  viper.GetString("db_path"),
		AppPrefix:               viper.GetString("app_prefix"),
		Timezone:                viper.GetString("timezone"),
		UndoWindow:              viper.GetDuration("undo_window").String(),
		MinutesPerExercise:      viper.GetInt("engine.minutes_per_exercise"),
		DefaultDuration:         viper.GetInt("engine.default_duration"),
		AllowDuplicatePromotion: viper.GetBool("engine.allow_duplicate_promotion"),
		MaxSessions:             viper.GetInt("history.max_sessions"),
		RestMinutes:             viper.GetString("rest.default_minutes"),
		ServeHost:               viper.GetString("serve.host"),
		ServePort:               viper.GetInt("serve.port"),
	}

	tmpl, err := template.New("config").Parse(configTemplate)
	if err != nil {
		return fmt.Errorf("template parse error: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("template execute error: %w", err)
	}

	if dryRun {
		ui.DryRunMsg("Would create config file: %s", cfgPath)
		fmt.Fprintln(ui.Out)
		fmt.Fprint(ui.Out, buf.String())
		return nil
	}

	// Create config directory
	dir := filepath.Dir(cfgPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(cfgPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	ui.Success("Config file created: %s", cfgPath)
	fmt.Fprintln(ui.Out)
	fmt.Fprint(ui.Out, buf.String())
	return nil
}

// configKeyInfo describes a config key for display purposes.
type configKeyInfo struct {
	Key    string
	EnvVar string
}

var configKeys = []configKeyInfo{
	{Key: "state_dir", EnvVar: "RUTINA_STATE_DIR"},
	{Key: "db_path", EnvVar: "RUTINA_DB_PATH"},
	{Key: "app_prefix", EnvVar: "RUTINA_APP_PREFIX"},
	{Key: "timezone", EnvVar: "RUTINA_TIMEZONE"},
	{Key: "undo_window", EnvVar: "RUTINA_UNDO_WINDOW"},
	{Key: "engine.minutes_per_exercise", EnvVar: "RUTINA_ENGINE_MINUTES_PER_EXERCISE"},
	{Key: "engine.default_duration", EnvVar: "RUTINA_ENGINE_DEFAULT_DURATION"},
	{Key: "engine.allow_duplicate_promotion", EnvVar: "RUTINA_ENGINE_ALLOW_DUPLICATE_PROMOTION"},
	{Key: "history.max_sessions", EnvVar: "RUTINA_HISTORY_MAX_SESSIONS"},
	{Key: "rest.default_minutes", EnvVar: "RUTINA_REST_DEFAULT_MINUTES"},
	{Key: "serve.host", EnvVar: "RUTINA_SERVE_HOST"},
	{Key: "serve.port", EnvVar: "RUTINA_SERVE_PORT"},
}

func configShowRun() error {
	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	// Check if config file exists
	if _, err := os.Stat(cfgPath); err == nil {
		ui.Info("Config file: %s", cfgPath)
	} else {
		ui.Info("Config file: (none)")
	}
	fmt.Fprintln(ui.Out)

	// Read config file values to determine file source
	fileValues := readConfigFileValues(cfgPath)

	for _, k := range configKeys {
		val := viper.Get(k.Key)
		source := detectSource(k.Key, k.EnvVar, fileValues)
		fmt.Fprintf(ui.Out, "  %-34s %v  %s\n", k.Key, val, source)
	}

	return nil
}

// readConfigFileValues reads the raw YAML file and returns a flat map of keys present in it.
func readConfigFileValues(path string) map[string]bool {
	result := make(map[string]bool)

	data, err := os.ReadFile(path)
	if err != nil {
		return result
	}

	var parsed map[string]any
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return result
	}

	// Flatten nested keys with dot notation
	flattenKeys("", parsed, result)
	return result
}

// flattenKeys recursively flattens a nested map to dot-notation keys.
func flattenKeys(prefix string, m map[string]any, result map[string]bool) {
	for key, val := range m {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}
		if nested, ok := val.(map[string]any); ok {
			flattenKeys(fullKey, nested, result)
		} else {
			result[fullKey] = true
		}
	}
}

// detectSource determines where a config value is coming from.
func detectSource(key, envVar string, fileValues map[string]bool) string {
	if _, ok := os.LookupEnv(envVar); ok {
		return fmt.Sprintf("(env: %s)", envVar)
	}
	if fileValues[key] {
		return "(file)"
	}
	return "(default)"
}

func configEditRun() error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		return fmt.Errorf("$EDITOR is not set; set it to your preferred editor (e.g. export EDITOR=vim)")
	}

	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		return fmt.Errorf("config file not found: %s (run 'rutina config init' first)", cfgPath)
	}

	if dryRun {
		ui.DryRunMsg("Would open %s in %s", cfgPath, editor)
		return nil
	}

	editCmd := exec.Command(editor, cfgPath)
	editCmd.Stdin = os.Stdin
	editCmd.Stdout = os.Stdout
	editCmd.Stderr = os.Stderr
	return editCmd.Run()
}
