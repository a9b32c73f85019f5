package widgets

import (
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/tui-quest/internal/content"
	"github.com/vovakirdan/tui-quest/internal/core"
	"github.com/vovakirdan/tui-quest/internal/registry"
)

func interaction(t *testing.T, kind, cfg string) content.Interaction {
	t.Helper()
	in := content.Interaction{Kind: kind}
	if cfg != "" {
		var doc yaml.Node
		if err := yaml.Unmarshal([]byte(cfg), &doc); err != nil {
			t.Fatalf("yaml.Unmarshal: %v", err)
		}
		in.Config = *doc.Content[0]
	}
	return in
}

func press(a core.Action) core.InputFrame {
	in := core.NewInputFrame()
	in.Set(a)
	return in
}

func typed(s string) core.InputFrame {
	in := core.NewInputFrame()
	in.Type([]rune(s)...)
	return in
}

// recorder collects reported states.
type recorder struct {
	states []core.InteractionState
}

func (r *recorder) report(st core.InteractionState) { r.states = append(r.states, st) }

func (r *recorder) last() core.InteractionState {
	if len(r.states) == 0 {
		return core.InteractionState{}
	}
	return r.states[len(r.states)-1]
}

func TestRegistered(t *testing.T) {
	for _, kind := range []string{"choice", "numeric", "slider"} {
		found := false
		for _, k := range registry.WidgetKinds() {
			if k == kind {
				found = true
			}
		}
		if !found {
			t.Errorf("widget %q not registered", kind)
		}
	}

	w, err := registry.CreateWidget(interaction(t, "choice", "{options: [a, b], answer: b}"))
	if err != nil {
		t.Fatalf("CreateWidget() error = %v", err)
	}
	if w.Kind() != "choice" {
		t.Errorf("Kind() = %q, want choice", w.Kind())
	}
}

func TestChoice(t *testing.T) {
	c, err := NewChoice(interaction(t, "choice", "{options: [Galileo, Newton, Kepler], answer: Newton}"))
	if err != nil {
		t.Fatalf("NewChoice() error = %v", err)
	}
	rec := &recorder{}
	c.Mount(core.EmptyState(), rec.report)
	if len(rec.states) != 1 || !rec.last().IsEmpty {
		t.Fatalf("Mount reported %+v, want one empty state", rec.states)
	}

	c.HandleInput(press(core.ActionSelect))
	if got := rec.last(); got.Value != "Galileo" || got.IsCorrect || got.IsEmpty {
		t.Errorf("select first = %+v, want incorrect Galileo", got)
	}

	c.HandleInput(press(core.ActionDown))
	c.HandleInput(press(core.ActionSelect))
	if got := rec.last(); got.Value != "Newton" || !got.IsCorrect {
		t.Errorf("select second = %+v, want correct Newton", got)
	}

	n := len(rec.states)
	c.HandleInput(press(core.ActionSelect))
	if len(rec.states) != n {
		t.Errorf("reselecting the same option reported again")
	}

	c.HandleInput(press(core.ActionUp))
	c.HandleInput(press(core.ActionUp))
	if c.cursor != 2 {
		t.Errorf("cursor after wrap = %d, want 2", c.cursor)
	}
}

func TestChoiceRestore(t *testing.T) {
	c, _ := NewChoice(interaction(t, "choice", "{options: [a, b], answer: b}"))
	rec := &recorder{}
	c.Mount(core.InteractionState{IsCorrect: true, Value: "b"}, rec.report)
	if got := rec.last(); got.Value != "b" || !got.IsCorrect {
		t.Errorf("restored state = %+v", got)
	}
	if c.cursor != 1 {
		t.Errorf("cursor = %d, want 1", c.cursor)
	}
}

func TestChoiceConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  string
	}{
		{"no options", "{answer: a}"},
		{"answer missing", "{options: [a, b], answer: c}"},
		{"bad type", "{options: 3}"},
	}
	for _, tt := range tests {
		if _, err := NewChoice(interaction(t, "choice", tt.cfg)); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

func TestNumeric(t *testing.T) {
	n, err := NewNumeric(interaction(t, "numeric", "{answer: 20, tolerance: 0.5, unit: m/s}"))
	if err != nil {
		t.Fatalf("NewNumeric() error = %v", err)
	}
	rec := &recorder{}
	n.Mount(core.EmptyState(), rec.report)
	if !rec.last().IsEmpty {
		t.Fatalf("Mount reported %+v, want empty", rec.last())
	}

	n.HandleInput(typed("19,6"))
	got := rec.last()
	if got.Value != "19,6" || got.Value2 != "m/s" || !got.IsCorrect {
		t.Errorf("typed 19,6 = %+v, want correct with unit", got)
	}

	n.HandleInput(press(core.ActionErase))
	n.HandleInput(press(core.ActionErase))
	if got := rec.last(); got.Value != "19" || got.IsCorrect {
		t.Errorf("after erase = %+v, want incorrect 19", got)
	}

	n.HandleInput(press(core.ActionErase))
	n.HandleInput(press(core.ActionErase))
	if got := rec.last(); !got.IsEmpty {
		t.Errorf("cleared = %+v, want empty", got)
	}
}

func TestNumericRejectsLetters(t *testing.T) {
	n, _ := NewNumeric(interaction(t, "numeric", "{answer: 1}"))
	rec := &recorder{}
	n.Mount(core.EmptyState(), rec.report)
	n.HandleInput(typed("1"))
	n.HandleInput(typed("x"))
	if got := n.State(); got.Value != "1" {
		t.Errorf("State().Value = %q, want 1", got.Value)
	}
	if len(rec.states) != 2 {
		t.Errorf("reported %d states, want 2", len(rec.states))
	}
}

func TestNumericText(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"", true},
		{"-", true},
		{"1.", true},
		{"2,5", true},
		{"-3", true},
		{"3-", false},
		{"1.2.3", false},
		{"1,2.3", false},
		{"abc", false},
	}
	for _, tt := range tests {
		if got := numericText(tt.in); got != tt.want {
			t.Errorf("numericText(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSlider(t *testing.T) {
	s, err := NewSlider(interaction(t, "slider", "{min: 1, max: 5, step: 2, initial: 3, unit: m, target: {min: 5, max: 5}}"))
	if err != nil {
		t.Fatalf("NewSlider() error = %v", err)
	}
	rec := &recorder{}
	s.Mount(core.EmptyState(), rec.report)
	if !rec.last().IsEmpty {
		t.Fatalf("untouched slider reported %+v, want empty", rec.last())
	}

	s.HandleInput(press(core.ActionRight))
	if got := rec.last(); got.Value != "5" || !got.IsCorrect || got.Value2 != "m" {
		t.Errorf("after right = %+v, want correct 5 m", got)
	}

	n := len(rec.states)
	s.HandleInput(press(core.ActionRight))
	if len(rec.states) != n {
		t.Errorf("clamped move reported again")
	}

	s.HandleInput(press(core.ActionLeft))
	s.HandleInput(press(core.ActionLeft))
	s.HandleInput(press(core.ActionLeft))
	if got := rec.last(); got.Value != "1" || got.IsCorrect {
		t.Errorf("after lefts = %+v, want incorrect 1", got)
	}
}

func TestSliderTouchAtBound(t *testing.T) {
	s, _ := NewSlider(interaction(t, "slider", "{min: 0, max: 10, initial: 10}"))
	rec := &recorder{}
	s.Mount(core.EmptyState(), rec.report)
	s.HandleInput(press(core.ActionRight))
	if got := rec.last(); got.IsEmpty || got.Value != "10" || !got.IsCorrect {
		t.Errorf("touch at bound = %+v, want non-empty 10", got)
	}
}

func TestSliderRestore(t *testing.T) {
	s, _ := NewSlider(interaction(t, "slider", ""))
	rec := &recorder{}
	s.Mount(core.InteractionState{IsCorrect: true, Value: "7"}, rec.report)
	if got := rec.last(); got.IsEmpty || got.Value != "7" {
		t.Errorf("restored = %+v, want 7", got)
	}
	if v := s.View(true); v == "" {
		t.Errorf("View() is empty")
	}
}

func TestSliderConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  string
	}{
		{"inverted", "{min: 5, max: 1}"},
		{"zero step", "{step: 0}"},
		{"empty target", "{target: {min: 4, max: 2}}"},
	}
	for _, tt := range tests {
		if _, err := NewSlider(interaction(t, "slider", tt.cfg)); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}
