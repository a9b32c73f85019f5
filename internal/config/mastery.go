package config

import (
	"math"

	"github.com/vovakirdan/tui-quest/internal/lms"
)

// MasteryPolicy turns a finished quest's results into a lesson status.
type MasteryPolicy struct {
	cfg       MasteryConfig
	threshold float64
}

// NewMasteryPolicy creates a new mastery policy.
func NewMasteryPolicy(cfg MasteryConfig) *MasteryPolicy {
	return &MasteryPolicy{
		cfg:       cfg,
		threshold: clampF(cfg.Threshold, 0, 100),
	}
}

// SetThreshold overrides the default passing percentage (0 to 100).
func (m *MasteryPolicy) SetThreshold(pct float64) {
	m.threshold = clampF(pct, 0, 100)
}

// SetEnabled enables or disables grading.
func (m *MasteryPolicy) SetEnabled(enabled bool) {
	m.cfg.Enabled = enabled
}

// IsEnabled returns whether finished quests are graded.
func (m *MasteryPolicy) IsEnabled() bool {
	return m.cfg.Enabled
}

// Threshold returns the passing percentage for a quest. A quest's own
// mastery value wins over the configured default; 0 means completion only.
func (m *MasteryPolicy) Threshold(questMastery float64) float64 {
	if !m.cfg.Enabled {
		return 0
	}
	if questMastery > 0 {
		return clampF(questMastery, 0, 100)
	}
	return m.threshold
}

// Percent returns the score percentage for correct out of total graded
// interactions. A quest with nothing to grade scores 100.
func (m *MasteryPolicy) Percent(correct, total int) float64 {
	if total <= 0 {
		return 100
	}
	pct := float64(correct) / float64(total) * 100
	// Two decimals, as stored in cmi.core.score.raw.
	return clampF(math.Round(pct*100)/100, 0, 100)
}

// Status grades a percentage against the quest's threshold.
func (m *MasteryPolicy) Status(pct, questMastery float64) lms.Status {
	threshold := m.Threshold(questMastery)
	if threshold <= 0 {
		return lms.StatusCompleted
	}
	if pct >= threshold {
		return lms.StatusPassed
	}
	return lms.StatusFailed
}

// clampF restricts a float64 to [min, max].
func clampF(val, min, max float64) float64 {
	return math.Max(min, math.Min(max, val))
}
