package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vovakirdan/tui-quest/internal/lms"
)

func TestLoadEmbeddedDefault(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Lang != "en" {
		t.Errorf("Lang = %q, want en", cfg.Lang)
	}
	if cfg.FeedbackDelay != 1500*time.Millisecond {
		t.Errorf("FeedbackDelay = %v, want 1.5s", cfg.FeedbackDelay)
	}
	if !cfg.Mastery.Enabled || cfg.Mastery.Threshold != 70 {
		t.Errorf("Mastery = %+v", cfg.Mastery)
	}
	if cfg.SSH.ResumeTTL != time.Hour || cfg.SSH.IdleTimeout != 30*time.Minute {
		t.Errorf("SSH = %+v", cfg.SSH)
	}
}

func TestLoadCustomPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quest.yaml")
	data := []byte("lang: de\nfeedback_delay: 250ms\nmastery:\n  threshold: 80\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Lang != "de" || cfg.FeedbackDelay != 250*time.Millisecond {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Mastery.Threshold != 80 || !cfg.Mastery.Enabled {
		t.Errorf("Mastery = %+v, want threshold 80 with default enabled", cfg.Mastery)
	}
	if cfg.Learner != "anonymous" {
		t.Errorf("Learner = %q, unset keys should keep defaults", cfg.Learner)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing custom config")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(path, []byte("lang: [unterminated"), 0o644)
	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid yaml")
	}
}

func TestLoadUserConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	dir := filepath.Join(home, ".quest")
	os.MkdirAll(dir, 0o755)
	os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("learner: ada\n"), 0o644)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Learner != "ada" {
		t.Errorf("Learner = %q, want ada", cfg.Learner)
	}
}

func TestEnvOverlay(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("QUEST_LANG", "fr")
	t.Setenv("QUEST_FEEDBACK_DELAY", "2s")
	t.Setenv("QUEST_MASTERY_THRESHOLD", "55")
	t.Setenv("QUEST_SSH_ADDRESS", ":9000")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Lang != "fr" || cfg.FeedbackDelay != 2*time.Second {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Mastery.Threshold != 55 {
		t.Errorf("Mastery.Threshold = %v, want 55", cfg.Mastery.Threshold)
	}
	if cfg.SSH.Address != ":9000" || cfg.SSH.ResumeTTL != time.Hour {
		t.Errorf("SSH = %+v", cfg.SSH)
	}

	t.Setenv("QUEST_FEEDBACK_DELAY", "soon")
	if _, err := Load(""); err == nil {
		t.Error("expected error for malformed duration")
	}
}

func TestRuntime(t *testing.T) {
	rc := Config{Lang: "de"}.Runtime()
	if rc.Lang != "de" || rc.FeedbackDelay != 1500*time.Millisecond || rc.Learner != "anonymous" {
		t.Errorf("Runtime() = %+v", rc)
	}
}

func TestMasteryPolicy(t *testing.T) {
	m := NewMasteryPolicy(MasteryConfig{Enabled: true, Threshold: 70})

	tests := []struct {
		pct     float64
		mastery float64
		want    lms.Status
	}{
		{70, 0, lms.StatusPassed},
		{69.99, 0, lms.StatusFailed},
		{60, 60, lms.StatusPassed},
		{59, 60, lms.StatusFailed},
		{100, 150, lms.StatusPassed},
	}
	for _, tt := range tests {
		if got := m.Status(tt.pct, tt.mastery); got != tt.want {
			t.Errorf("Status(%v, %v) = %q, want %q", tt.pct, tt.mastery, got, tt.want)
		}
	}

	if got := m.Percent(2, 3); got != 66.67 {
		t.Errorf("Percent(2, 3) = %v, want 66.67", got)
	}
	if got := m.Percent(0, 0); got != 100 {
		t.Errorf("Percent(0, 0) = %v, want 100", got)
	}

	m.SetThreshold(120)
	if got := m.Threshold(0); got != 100 {
		t.Errorf("Threshold() = %v, want clamped 100", got)
	}

	m.SetEnabled(false)
	if m.IsEnabled() {
		t.Error("IsEnabled() = true after SetEnabled(false)")
	}
	if got := m.Status(0, 90); got != lms.StatusCompleted {
		t.Errorf("disabled policy Status() = %q, want completed", got)
	}
}

func TestApplyMasteryPreset(t *testing.T) {
	cfg := Default()

	ApplyMasteryPreset(&cfg, MasteryStrict)
	if !cfg.Mastery.Enabled || cfg.Mastery.Threshold != 90 {
		t.Errorf("strict preset: %+v", cfg.Mastery)
	}

	ApplyMasteryPreset(&cfg, MasteryCompletion)
	if cfg.Mastery.Enabled {
		t.Error("completion preset should disable grading")
	}
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	if got := ExpandHome("~/x.db"); got != filepath.Join(home, "x.db") {
		t.Errorf("ExpandHome() = %q", got)
	}
	if got := ExpandHome("/abs/x.db"); got != "/abs/x.db" {
		t.Errorf("ExpandHome() = %q", got)
	}
}
