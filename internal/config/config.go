// Package config provides YAML-based configuration loading for the quest
// player, an environment overlay, and the mastery policy that turns a
// score into a lesson status.
package config

import (
	"time"

	"github.com/vovakirdan/tui-quest/internal/core"
)

// Config is the top-level player configuration.
type Config struct {
	Lang          string        `yaml:"lang" env:"QUEST_LANG"`
	DBPath        string        `yaml:"db" env:"QUEST_DB"`
	QuestDir      string        `yaml:"quest_dir" env:"QUEST_DIR"`               // Empty = built-in quests only
	Learner       string        `yaml:"learner" env:"QUEST_LEARNER"`             // Learner id reported to the LMS runtime
	FeedbackDelay time.Duration `yaml:"feedback_delay" env:"QUEST_FEEDBACK_DELAY"` // Correct-answer feedback window

	Mastery MasteryConfig `yaml:"mastery" envPrefix:"QUEST_MASTERY_"`
	SSH     SSHConfig     `yaml:"ssh" envPrefix:"QUEST_SSH_"`
}

// MasteryConfig defines how a finished quest is graded.
type MasteryConfig struct {
	Enabled   bool    `yaml:"enabled" env:"ENABLED"`
	Threshold float64 `yaml:"threshold" env:"THRESHOLD"` // Passing percentage when a quest sets none
}

// SSHConfig configures the remote play server.
type SSHConfig struct {
	Address     string        `yaml:"address" env:"ADDRESS"`
	HostKey     string        `yaml:"host_key" env:"HOST_KEY"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"IDLE_TIMEOUT"`
	ResumeTTL   time.Duration `yaml:"resume_ttl" env:"RESUME_TTL"` // How long a dropped session can be resumed
}

// MasteryPreset represents a named grading level.
type MasteryPreset string

const (
	MasteryLenient    MasteryPreset = "lenient"
	MasteryStandard   MasteryPreset = "standard"
	MasteryStrict     MasteryPreset = "strict"
	MasteryCompletion MasteryPreset = "completion"
)

// ThresholdForPreset returns the passing percentage for a preset.
func ThresholdForPreset(preset MasteryPreset) float64 {
	switch preset {
	case MasteryLenient:
		return 50
	case MasteryStandard:
		return 70
	case MasteryStrict:
		return 90
	default:
		return 0
	}
}

// IsCompletionPreset returns true if the preset disables grading.
func IsCompletionPreset(preset MasteryPreset) bool {
	return preset == MasteryCompletion
}

// Runtime builds the per-session runtime configuration.
func (c Config) Runtime() core.RuntimeConfig {
	rc := core.DefaultConfig()
	if c.Lang != "" {
		rc.Lang = c.Lang
	}
	if c.FeedbackDelay > 0 {
		rc.FeedbackDelay = c.FeedbackDelay
	}
	if c.Learner != "" {
		rc.Learner = c.Learner
	}
	return rc
}
