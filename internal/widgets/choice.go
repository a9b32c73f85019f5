// Package widgets implements the built-in interactive widgets. Each widget
// registers itself with the registry in init().
package widgets

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vovakirdan/tui-quest/internal/content"
	"github.com/vovakirdan/tui-quest/internal/core"
	"github.com/vovakirdan/tui-quest/internal/registry"
)

// ChoiceConfig is the config of a single-answer multiple choice.
type ChoiceConfig struct {
	Options []string `yaml:"options"`
	Answer  string   `yaml:"answer"`
}

// Choice lets the learner pick one option.
type Choice struct {
	cfg      ChoiceConfig
	cursor   int
	selected int // -1 = nothing chosen
	report   func(core.InteractionState)
}

func init() {
	registry.RegisterWidget("choice", func(in content.Interaction) (registry.Widget, error) {
		return NewChoice(in)
	})
}

// NewChoice creates a choice widget from its interaction config.
func NewChoice(in content.Interaction) (*Choice, error) {
	var cfg ChoiceConfig
	if err := in.DecodeConfig(&cfg); err != nil {
		return nil, fmt.Errorf("choice: %w", err)
	}
	if len(cfg.Options) == 0 {
		return nil, errors.New("choice: no options")
	}
	found := false
	for _, o := range cfg.Options {
		if o == cfg.Answer {
			found = true
		}
	}
	if !found {
		return nil, fmt.Errorf("choice: answer %q is not an option", cfg.Answer)
	}
	return &Choice{cfg: cfg, selected: -1}, nil
}

// Kind returns the registered kind.
func (c *Choice) Kind() string { return "choice" }

// Mount restores a previous selection and reports the initial state.
func (c *Choice) Mount(prior core.InteractionState, report func(core.InteractionState)) {
	c.report = report
	c.selected = -1
	if !prior.IsEmpty {
		for i, o := range c.cfg.Options {
			if o == prior.Value {
				c.selected = i
				c.cursor = i
			}
		}
	}
	c.emit()
}

// HandleInput moves the cursor and selects options.
func (c *Choice) HandleInput(in core.InputFrame) {
	switch {
	case in.Has(core.ActionUp):
		c.cursor = (c.cursor - 1 + len(c.cfg.Options)) % len(c.cfg.Options)
	case in.Has(core.ActionDown):
		c.cursor = (c.cursor + 1) % len(c.cfg.Options)
	case in.Has(core.ActionSelect):
		if c.selected != c.cursor {
			c.selected = c.cursor
			c.emit()
		}
	}
}

// State returns the current answer.
func (c *Choice) State() core.InteractionState {
	if c.selected < 0 {
		return core.EmptyState()
	}
	v := c.cfg.Options[c.selected]
	return core.InteractionState{IsCorrect: v == c.cfg.Answer, Value: v}
}

func (c *Choice) emit() {
	if c.report != nil {
		c.report(c.State())
	}
}

// View renders the options as a radio list.
func (c *Choice) View(focused bool) string {
	var b strings.Builder
	for i, o := range c.cfg.Options {
		pointer := "  "
		if focused && i == c.cursor {
			pointer = "> "
		}
		mark := "( )"
		if i == c.selected {
			mark = "(•)"
		}
		fmt.Fprintf(&b, "%s%s %s", pointer, mark, o)
		if i < len(c.cfg.Options)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
