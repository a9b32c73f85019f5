package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-quest/internal/i18n"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all available quests",
	Long:  `Shows the quests found in the quest directory, or the built-in quests.`,
	Run:   runList,
}

func runList(_ *cobra.Command, _ []string) {
	cfg, err := loadConfig()
	if err != nil {
		fail("%v", err)
	}
	quests, err := loadQuests(cfg)
	if err != nil {
		fail("%v", err)
	}

	if len(quests) == 0 {
		fmt.Println("No quests available.")
		return
	}

	fmt.Println("Available quests:")
	fmt.Println()

	maxIDLen := 2 // "ID" header
	for _, q := range quests {
		if len(q.ID) > maxIDLen {
			maxIDLen = len(q.ID)
		}
	}

	fmt.Printf("  %-*s  %-6s  %s\n", maxIDLen, "ID", "Scenes", "Title")
	fmt.Printf("  %-*s  %-6s  %s\n", maxIDLen, "--", "------", "-----")

	for _, q := range quests {
		title := i18n.Default().Catalog(cfg.Lang, q.Strings).Translate(q.Title)
		fmt.Printf("  %-*s  %-6d  %s\n", maxIDLen, q.ID, len(q.Scenes), title)
	}

	fmt.Println()
	fmt.Println("Run 'quest play <id>' to play a quest.")
}
