package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-quest/internal/content"
	"github.com/vovakirdan/tui-quest/internal/engine"
	"github.com/vovakirdan/tui-quest/internal/platform/tui"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Start the player with a quest picker menu",
	Long: `Start the player in interactive menu mode.

Use arrow keys or j/k to navigate, Enter to start a quest.
When a quest ends, you return to the menu.

Controls:
  Up/Down/j/k  - Navigate menu
  Enter/Space  - Start quest
  P/Tab        - Show progress
  Q            - Quit

Examples:
  quest menu
  quest menu --lang de
  quest menu --db ./progress.db`,
	Run: runMenu,
}

func init() {
	menuCmd.Flags().StringVar(&flagLang, "lang", "", "Display language (overrides config)")
	menuCmd.Flags().StringVar(&flagLearner, "learner", "", "Learner id (overrides config)")
}

func runMenu(_ *cobra.Command, _ []string) {
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

	quests, err := loadQuests(cfg)
	if err != nil {
		fail("%v", err)
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

	// Menu loop
	for {
		menuResult, err := tui.RunMenu(quests, store, settings)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			break
		}
		settings = menuResult.Config

		if menuResult.Quit {
			break
		}

		if menuResult.WantsProgress {
			goBack, progErr := tui.RunProgress(quests, store, settings.Lang, settings.ScreenW, settings.ScreenH)
			if progErr != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", progErr)
			}
			if goBack {
				continue
			}
			break
		}

		q := findQuest(quests, menuResult.QuestID)
		if q == nil {
			break
		}

		launcher.Settings = settings
		sess, sched, err := launcher.Launch(q, settings.Learner, engine.Resume{})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}
		if err := tui.Run(sess, sched, settings); err != nil {
			fmt.Fprintf(os.Stderr, "Error running quest: %v\n", err)
		}
		sess.Close()
	}

	if store != nil {
		store.Close()
	}
}

func findQuest(quests []content.Quest, id string) *content.Quest {
	for i := range quests {
		if quests[i].ID == id {
			return &quests[i]
		}
	}
	return nil
}
