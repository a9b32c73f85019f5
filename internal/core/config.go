package core

import "time"

// DefaultFeedbackDelay is how long the "correct" feedback stays on screen
// before a passing submit proceeds.
const DefaultFeedbackDelay = 1500 * time.Millisecond

// RuntimeConfig contains configuration passed to a quest session at start.
type RuntimeConfig struct {
	ScreenW       int           // Screen width in characters
	ScreenH       int           // Screen height in characters
	Lang          string        // Requested locale, e.g. "en" or "de"
	FeedbackDelay time.Duration // Correct-answer feedback window
	Learner       string        // Learner identity reported to the LMS runtime
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:       80,
		ScreenH:       24,
		Lang:          "en",
		FeedbackDelay: DefaultFeedbackDelay,
		Learner:       "anonymous",
	}
}
