package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-quest/internal/content"
	"github.com/vovakirdan/tui-quest/internal/i18n"
	"github.com/vovakirdan/tui-quest/internal/lms"
	"github.com/vovakirdan/tui-quest/internal/storage"
)

var (
	flagLimit int
	flagClear bool
)

var progressCmd = &cobra.Command{
	Use:   "progress <quest>",
	Short: "Show recorded attempts at a quest",
	Long: `Display the most recent attempts at the specified quest with
status, score and time spent.

Examples:
  quest progress free-fall
  quest progress free-fall --limit 50
  quest progress free-fall --clear`,
	Args: cobra.ExactArgs(1),
	Run:  runProgress,
}

func init() {
	progressCmd.Flags().IntVar(&flagLimit, "limit", 10, "Number of attempts to show")
	progressCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete every recorded attempt at the quest")
}

func runProgress(_ *cobra.Command, args []string) {
	questID := args[0]

	cfg, err := loadConfig()
	if err != nil {
		fail("%v", err)
	}

	q, err := content.NewLoader(cfg.QuestDir).LoadByID(questID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Run 'quest list' to see available quests.")
		os.Exit(1)
	}
	cat := i18n.Default().Catalog(cfg.Lang, q.Strings)

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		fail("opening progress database: %v", err)
	}
	defer store.Close()

	if flagClear {
		if err := store.ClearAttempts(questID); err != nil {
			fail("%v", err)
		}
		fmt.Printf("Cleared attempts at %s.\n", questID)
		return
	}

	attempts, err := store.Attempts(questID, flagLimit)
	if err != nil {
		fail("retrieving attempts: %v", err)
	}

	fmt.Printf("%s - %s\n", cat.Translate("progress.title"), cat.Translate(q.Title))
	fmt.Println()

	if len(attempts) == 0 {
		fmt.Println(cat.Translate("progress.empty"))
		fmt.Println()
		fmt.Printf("Run 'quest play %s' to start.\n", questID)
		return
	}

	fmt.Printf("  %-16s  %-14s  %-6s  %-14s  %s\n", "Learner", "Status", "Score", "Time", "Updated")
	fmt.Printf("  %-16s  %-14s  %-6s  %-14s  %s\n", "-------", "------", "-----", "----", "-------")

	for _, a := range attempts {
		score := "-"
		if a.HasScore {
			score = fmt.Sprintf("%.0f%%", a.Score)
		}
		fmt.Printf("  %-16s  %-14s  %-6s  %-14s  %s\n",
			a.Learner,
			a.Status,
			score,
			lms.FormatSessionTime(a.TotalTime),
			a.UpdatedAt.Local().Format("2006-01-02 15:04"),
		)
	}

	fmt.Println()
	if stats, err := store.QuestStats(questID); err == nil {
		fmt.Printf("Attempts: %d  Finished: %d  Passed: %d\n", stats.Attempts, stats.Finished, stats.Passed)
	}
	if best, err := store.BestScore(questID); err == nil {
		fmt.Printf("Best: %.0f%%\n", best)
	}
}
