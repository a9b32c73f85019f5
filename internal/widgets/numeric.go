package widgets

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"

	"github.com/vovakirdan/tui-quest/internal/content"
	"github.com/vovakirdan/tui-quest/internal/core"
	"github.com/vovakirdan/tui-quest/internal/registry"
)

// NumericConfig is the config of a typed numeric answer.
type NumericConfig struct {
	Answer    float64 `yaml:"answer"`
	Tolerance float64 `yaml:"tolerance"`
	Unit      string  `yaml:"unit"`
}

// Numeric accepts a typed number and grades it against an answer with
// tolerance.
type Numeric struct {
	cfg    NumericConfig
	input  textinput.Model
	report func(core.InteractionState)
}

func init() {
	registry.RegisterWidget("numeric", func(in content.Interaction) (registry.Widget, error) {
		return NewNumeric(in)
	})
}

// NewNumeric creates a numeric widget from its interaction config.
func NewNumeric(in content.Interaction) (*Numeric, error) {
	var cfg NumericConfig
	if err := in.DecodeConfig(&cfg); err != nil {
		return nil, fmt.Errorf("numeric: %w", err)
	}
	if cfg.Tolerance < 0 {
		return nil, errors.New("numeric: negative tolerance")
	}

	ti := textinput.New()
	ti.Prompt = "= "
	ti.Placeholder = "0"
	ti.CharLimit = 16
	ti.Width = 16
	ti.Focus()

	return &Numeric{cfg: cfg, input: ti}, nil
}

// numericText accepts partial input such as "-", "1." or "2,5".
func numericText(s string) bool {
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.', r == ',':
		case r == '-' && i == 0:
		default:
			return false
		}
	}
	return strings.Count(s, ".")+strings.Count(s, ",") <= 1
}

// Kind returns the registered kind.
func (n *Numeric) Kind() string { return "numeric" }

// Mount restores previously typed text and reports the initial state.
func (n *Numeric) Mount(prior core.InteractionState, report func(core.InteractionState)) {
	n.report = report
	n.input.SetValue("")
	if !prior.IsEmpty {
		n.input.SetValue(prior.Value)
		n.input.CursorEnd()
	}
	n.emit()
}

// HandleInput applies typed digits and backspace.
func (n *Numeric) HandleInput(in core.InputFrame) {
	before := n.input.Value()
	v := before
	if in.Has(core.ActionErase) && v != "" {
		r := []rune(v)
		v = string(r[:len(r)-1])
	}
	if len(in.Text) > 0 {
		v += string(in.Text)
	}
	if v == before || !numericText(v) {
		return
	}
	n.input.SetValue(v)
	n.input.CursorEnd()
	if n.input.Value() != before {
		n.emit()
	}
}

// State returns the current answer.
func (n *Numeric) State() core.InteractionState {
	text := strings.TrimSpace(n.input.Value())
	if text == "" {
		return core.EmptyState()
	}
	st := core.InteractionState{Value: text, Value2: n.cfg.Unit}
	if f, err := strconv.ParseFloat(strings.Replace(text, ",", ".", 1), 64); err == nil {
		st.IsCorrect = math.Abs(f-n.cfg.Answer) <= n.cfg.Tolerance+1e-9
	}
	return st
}

func (n *Numeric) emit() {
	if n.report != nil {
		n.report(n.State())
	}
}

// View renders the text input with its unit.
func (n *Numeric) View(focused bool) string {
	if focused {
		n.input.Focus()
	} else {
		n.input.Blur()
	}
	v := n.input.View()
	if n.cfg.Unit != "" {
		v += " " + n.cfg.Unit
	}
	return v
}
