package config

import (
	_ "embed"
	"time"

	"github.com/vovakirdan/tui-quest/internal/core"
)

//go:embed defaults/quest.yaml
var defaultQuestYAML []byte

// Default returns the hardcoded default configuration.
func Default() Config {
	return Config{
		Lang:          "en",
		DBPath:        "~/.quest/progress.db",
		Learner:       "anonymous",
		FeedbackDelay: core.DefaultFeedbackDelay,
		Mastery: MasteryConfig{
			Enabled:   true,
			Threshold: 70,
		},
		SSH: SSHConfig{
			Address:     ":2324",
			HostKey:     ".ssh/quest_ed25519",
			IdleTimeout: 30 * time.Minute,
			ResumeTTL:   time.Hour,
		},
	}
}

// DefaultYAML returns the embedded default YAML.
func DefaultYAML() []byte {
	return defaultQuestYAML
}
