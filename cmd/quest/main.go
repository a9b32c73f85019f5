// quest is a terminal player for interactive learning quests.
//
// Usage:
//
//	quest list                - List available quests
//	quest play <quest>        - Play a quest
//	quest menu                - Pick quests interactively
//	quest serve               - Start SSH server for remote play
//	quest progress <quest>    - Show recorded attempts at a quest
//
// Global flags:
//
//	--config <path>   - Player configuration YAML
//	--db <path>       - Progress database path (default: ~/.quest/progress.db)
//	--quests <dir>    - Load quests from a directory instead of the built-in set
//	--log <path>      - Write diagnostics to a file
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-quest/internal/config"
	"github.com/vovakirdan/tui-quest/internal/content"
	"github.com/vovakirdan/tui-quest/internal/platform/tui"
	"github.com/vovakirdan/tui-quest/internal/storage"

	// Register widgets and navigation predicates
	_ "github.com/vovakirdan/tui-quest/internal/predicates"
	_ "github.com/vovakirdan/tui-quest/internal/widgets"
)

var (
	// Global flags
	flagConfig   string
	flagDBPath   string
	flagQuestDir string
	flagLogPath  string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "quest",
	Short: "TUI Quest - Play interactive lessons in your terminal",
	Long: `TUI Quest plays scene and dialog based learning quests in the terminal.
Answers are checked as you go and progress is recorded per learner.

Available commands:
  list      - Show all available quests
  play      - Play a specific quest directly
  menu      - Interactive quest picker
  serve     - Start SSH server for remote play
  progress  - View recorded attempts

Examples:
  quest list
  quest play free-fall
  quest play free-fall --resume "scene=1&dialog=0"
  quest menu --lang de
  quest serve
  quest progress free-fall`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to player config YAML")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to progress database (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagQuestDir, "quests", "", "Quest directory (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogPath, "log", "", "Write diagnostics to this file")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Diagnostics level: debug, info, warn, error")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(progressCmd)
}

// loadConfig loads the player config and applies global flag overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	if flagDBPath != "" {
		cfg.DBPath = flagDBPath
	}
	if flagQuestDir != "" {
		cfg.QuestDir = flagQuestDir
	}
	return cfg, nil
}

// newLogger builds the diagnostics logger. The terminal belongs to the UI,
// so diagnostics are dropped unless --log names a file.
func newLogger() (*log.Logger, func(), error) {
	var w io.Writer = io.Discard
	closeFn := func() {}
	if flagLogPath != "" {
		f, err := os.OpenFile(flagLogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log %s: %w", flagLogPath, err)
		}
		w = f
		closeFn = func() { f.Close() }
	}

	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "quest",
		Level:           level,
	})
	return logger, closeFn, nil
}

// loadQuests loads every quest from the configured source.
func loadQuests(cfg config.Config) ([]content.Quest, error) {
	quests, err := content.NewLoader(cfg.QuestDir).LoadAll()
	if err != nil {
		return nil, fmt.Errorf("load quests: %w", err)
	}
	return quests, nil
}

// openStore opens the progress database. Play continues without it.
func openStore(cfg config.Config) *storage.Store {
	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open progress database: %v\n", err)
		return nil
	}
	return store
}

// newLauncher wires the session launcher from the config.
func newLauncher(cfg config.Config, store *storage.Store, logger *log.Logger) tui.Launcher {
	return tui.Launcher{
		Store:    store,
		Policy:   config.NewMasteryPolicy(cfg.Mastery),
		Settings: cfg.Runtime(),
		Logger:   logger,
	}
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
