package widgets

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/vovakirdan/tui-quest/internal/content"
	"github.com/vovakirdan/tui-quest/internal/core"
	"github.com/vovakirdan/tui-quest/internal/registry"
)

// SliderConfig is the config of a bounded integer slider.
type SliderConfig struct {
	Min     int    `yaml:"min"`
	Max     int    `yaml:"max"`
	Step    int    `yaml:"step"`
	Initial int    `yaml:"initial"`
	Unit    string `yaml:"unit"`

	// Target, when set, is the inclusive range counted as correct.
	// Without it any value the learner picks is correct.
	Target *Range `yaml:"target"`
}

// Range is an inclusive integer range.
type Range struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

const sliderWidth = 20

// Slider picks an integer between Min and Max. It stays empty until the
// learner moves it.
type Slider struct {
	cfg     SliderConfig
	value   int
	touched bool
	report  func(core.InteractionState)
}

func init() {
	registry.RegisterWidget("slider", func(in content.Interaction) (registry.Widget, error) {
		return NewSlider(in)
	})
}

// NewSlider creates a slider widget from its interaction config.
func NewSlider(in content.Interaction) (*Slider, error) {
	cfg := SliderConfig{Min: 0, Max: 10, Step: 1}
	if err := in.DecodeConfig(&cfg); err != nil {
		return nil, fmt.Errorf("slider: %w", err)
	}
	if cfg.Max <= cfg.Min {
		return nil, fmt.Errorf("slider: max %d must exceed min %d", cfg.Max, cfg.Min)
	}
	if cfg.Step <= 0 {
		return nil, errors.New("slider: step must be positive")
	}
	if cfg.Target != nil && cfg.Target.Max < cfg.Target.Min {
		return nil, errors.New("slider: empty target range")
	}
	return &Slider{cfg: cfg, value: clamp(cfg.Initial, cfg.Min, cfg.Max)}, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Kind returns the registered kind.
func (s *Slider) Kind() string { return "slider" }

// Mount restores a previously chosen value and reports the initial state.
func (s *Slider) Mount(prior core.InteractionState, report func(core.InteractionState)) {
	s.report = report
	s.touched = false
	s.value = clamp(s.cfg.Initial, s.cfg.Min, s.cfg.Max)
	if !prior.IsEmpty {
		if v, err := strconv.Atoi(prior.Value); err == nil {
			s.value = clamp(v, s.cfg.Min, s.cfg.Max)
			s.touched = true
		}
	}
	s.emit()
}

// HandleInput moves the slider by one step.
func (s *Slider) HandleInput(in core.InputFrame) {
	next := s.value
	switch {
	case in.Has(core.ActionLeft), in.Has(core.ActionDown):
		next -= s.cfg.Step
	case in.Has(core.ActionRight), in.Has(core.ActionUp):
		next += s.cfg.Step
	default:
		return
	}
	next = clamp(next, s.cfg.Min, s.cfg.Max)
	if next == s.value && s.touched {
		return
	}
	s.value = next
	s.touched = true
	s.emit()
}

// State returns the current answer.
func (s *Slider) State() core.InteractionState {
	if !s.touched {
		return core.EmptyState()
	}
	correct := true
	if s.cfg.Target != nil {
		correct = s.value >= s.cfg.Target.Min && s.value <= s.cfg.Target.Max
	}
	return core.InteractionState{
		IsCorrect: correct,
		Value:     strconv.Itoa(s.value),
		Value2:    s.cfg.Unit,
	}
}

func (s *Slider) emit() {
	if s.report != nil {
		s.report(s.State())
	}
}

// View renders a track with the current position.
func (s *Slider) View(focused bool) string {
	pos := (s.value - s.cfg.Min) * (sliderWidth - 1) / (s.cfg.Max - s.cfg.Min)
	track := []rune(strings.Repeat("─", sliderWidth))
	track[pos] = '●'

	left, right := " ", " "
	if focused {
		left, right = "◀", "▶"
	}
	label := strconv.Itoa(s.value)
	if s.cfg.Unit != "" {
		label += " " + s.cfg.Unit
	}
	if !s.touched {
		label += " ?"
	}
	return fmt.Sprintf("%d %s%s%s %d   %s", s.cfg.Min, left, string(track), right, s.cfg.Max, label)
}
