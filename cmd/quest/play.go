package main

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-quest/internal/content"
	"github.com/vovakirdan/tui-quest/internal/core"
	"github.com/vovakirdan/tui-quest/internal/engine"
	"github.com/vovakirdan/tui-quest/internal/platform/tui"
)

var (
	flagScene   int
	flagDialog  int
	flagResume  string
	flagLang    string
	flagLearner string
)

var playCmd = &cobra.Command{
	Use:   "play <quest>",
	Short: "Play a quest",
	Long: `Start playing the specified quest.

Without a position the quest resumes where the learner's last unfinished
attempt stopped, or starts at the beginning.

Controls:
  Enter        - Next / Submit
  Esc          - Back
  Tab          - Focus next widget
  Up/Down      - Choose an option
  Left/Right   - Move a slider
  Q/Ctrl+C     - Quit

Examples:
  quest play free-fall
  quest play free-fall --scene 1
  quest play free-fall --resume "scene=1&dialog=2&lang=de"
  quest play welcome --lang de --learner ada`,
	Args: cobra.ExactArgs(1),
	Run:  runPlay,
}

func init() {
	playCmd.Flags().IntVar(&flagScene, "scene", 0, "Start at this scene index")
	playCmd.Flags().IntVar(&flagDialog, "dialog", 0, "Start at this dialog index")
	playCmd.Flags().StringVar(&flagResume, "resume", "", `Resume query, e.g. "scene=1&dialog=0&lang=en"`)
	playCmd.Flags().StringVar(&flagLang, "lang", "", "Display language (overrides config)")
	playCmd.Flags().StringVar(&flagLearner, "learner", "", "Learner id (overrides config)")
}

// resumeFromFlags builds the start position. Explicit scene or dialog
// flags win over a resume query.
func resumeFromFlags(cmd *cobra.Command) engine.Resume {
	var r engine.Resume
	if flagResume != "" {
		r = engine.ParseResume(flagResume)
	}
	if cmd.Flags().Changed("scene") || cmd.Flags().Changed("dialog") {
		r.Position = core.Position{Scene: flagScene, Dialog: flagDialog}
		r.Explicit = true
	}
	return r
}

// resumeNamesLang reports whether a resume query sets the language.
func resumeNamesLang(raw string) bool {
	values, _ := url.ParseQuery(strings.TrimPrefix(strings.TrimSpace(raw), "?"))
	return strings.TrimSpace(values.Get(engine.ParamLang)) != ""
}

func runPlay(cmd *cobra.Command, args []string) {
	questID := args[0]

	cfg, err := loadConfig()
	if err != nil {
		fail("%v", err)
	}
	if flagLang != "" {
		cfg.Lang = flagLang
	}
	if flagLearner != "" {
		cfg.Learner = flagLearner
	}

	q, err := content.NewLoader(cfg.QuestDir).LoadByID(questID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Run 'quest list' to see available quests.")
		os.Exit(1)
	}

	resume := resumeFromFlags(cmd)
	if flagLang == "" && resumeNamesLang(flagResume) {
		cfg.Lang = resume.Lang
	}

	logger, closeLog, err := newLogger()
	if err != nil {
		fail("%v", err)
	}
	defer closeLog()

	store := openStore(cfg)

	settings := cfg.Runtime()
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		settings.ScreenW = w
		settings.ScreenH = h
	}

	launcher := newLauncher(cfg, store, logger)
	launcher.Settings = settings

	sess, sched, err := launcher.Launch(&q, settings.Learner, resume)
	if err != nil {
		if store != nil {
			store.Close()
		}
		fail("%v", err)
	}

	runErr := tui.Run(sess, sched, settings)

	// Close the session before the store so the attempt is flushed
	sess.Close()
	if store != nil {
		store.Close()
	}

	if runErr != nil {
		fail("running quest: %v", runErr)
	}
}
