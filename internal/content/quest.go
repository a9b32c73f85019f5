// Package content describes quests: scenes, dialogs, controls, events and
// the opaque interaction configs handed to widgets. It is pre-loaded data;
// the engine never mutates it.
package content

import (
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/tui-quest/internal/core"
)

// ControlType names a dialog button.
type ControlType string

const (
	ControlBack   ControlType = "back"
	ControlNext   ControlType = "next"
	ControlStart  ControlType = "start"
	ControlSubmit ControlType = "submit"
)

// Valid reports whether t is a known control type.
func (t ControlType) Valid() bool {
	switch t {
	case ControlBack, ControlNext, ControlStart, ControlSubmit:
		return true
	}
	return false
}

// Control declares one button shown by a dialog.
type Control struct {
	Type     ControlType `yaml:"type"`
	Text     string      `yaml:"text"`
	Disabled bool        `yaml:"disabled,omitempty"`
}

// Trigger names the transition an event fires on.
type Trigger string

const (
	TriggerOnNext Trigger = "on-next"
	TriggerOnBack Trigger = "on-back"
)

// EventPayload carries the side effect and optional gate of an event.
type EventPayload struct {
	// Target is the interactive-store namespace the event writes to.
	Target string `yaml:"target"`

	// Disabled names a registered override predicate.
	Disabled string `yaml:"disabled,omitempty"`

	// DisabledFunc is the programmatic form of Disabled and wins over it.
	DisabledFunc core.Predicate `yaml:"-"`

	// Set is merged into the Target namespace when the event fires.
	Set core.Record `yaml:"set,omitempty"`
}

// Gated reports whether the payload declares an override predicate.
func (p EventPayload) Gated() bool {
	return p.Disabled != "" || p.DisabledFunc != nil
}

// Event declares a cross-widget side effect fired on navigation.
type Event struct {
	Triggers []Trigger    `yaml:"triggers"`
	Payload  EventPayload `yaml:"payload"`
}

// Has reports whether the event fires on the given trigger.
func (e Event) Has(t Trigger) bool {
	for _, tr := range e.Triggers {
		if tr == t {
			return true
		}
	}
	return false
}

// Interaction is the declaration of one widget inside a dialog.
// Config is opaque to the engine; only the widget decodes it.
type Interaction struct {
	Kind                string    `yaml:"kind"`
	Name                string    `yaml:"name,omitempty"`
	EnableStateExchange bool      `yaml:"enable_state_exchange,omitempty"`
	Config              yaml.Node `yaml:"config,omitempty"`
}

// DecodeConfig decodes the widget config into v.
// An interaction without config leaves v untouched.
func (i Interaction) DecodeConfig(v any) error {
	if i.Config.Kind == 0 {
		return nil
	}
	return i.Config.Decode(v)
}

// Dialog is one step of a scene.
type Dialog struct {
	Speaker       string         `yaml:"speaker,omitempty"`
	Text          string         `yaml:"text"`
	Controls      []Control      `yaml:"controls"`
	Events        []Event        `yaml:"events,omitempty"`
	Interactions  []Interaction  `yaml:"interactions,omitempty"`
	FeedbackDelay time.Duration  `yaml:"feedback_delay,omitempty"`
	Goto          *core.Position `yaml:"goto,omitempty"`
}

// Control returns the first control of the given type.
func (d *Dialog) Control(t ControlType) (Control, bool) {
	for _, c := range d.Controls {
		if c.Type == t {
			return c, true
		}
	}
	return Control{}, false
}

// PrimaryControl returns the forward control: submit, then next, then start.
func (d *Dialog) PrimaryControl() (Control, bool) {
	for _, t := range []ControlType{ControlSubmit, ControlNext, ControlStart} {
		if c, ok := d.Control(t); ok {
			return c, true
		}
	}
	return Control{}, false
}

// EventsFor returns the events firing on the given trigger, in order.
func (d *Dialog) EventsFor(t Trigger) []Event {
	var out []Event
	for _, e := range d.Events {
		if e.Has(t) {
			out = append(out, e)
		}
	}
	return out
}

// Scene is an ordered group of dialogs.
type Scene struct {
	ID      string   `yaml:"id"`
	Title   string   `yaml:"title"`
	Dialogs []Dialog `yaml:"dialogs"`
}

// Quest is a complete lesson.
type Quest struct {
	ID          string  `yaml:"id"`
	Title       string  `yaml:"title"`
	Description string  `yaml:"description,omitempty"`
	Mastery     float64 `yaml:"mastery,omitempty"` // Passing percentage, 0 = completion only
	Scenes      []Scene `yaml:"scenes"`

	// Strings maps locale -> key -> text for quest-specific translations.
	Strings map[string]map[string]string `yaml:"strings,omitempty"`

	FilePath string `yaml:"-"`
}

// DialogAt returns the dialog at pos.
func (q *Quest) DialogAt(pos core.Position) (*Dialog, bool) {
	if pos.Scene < 0 || pos.Scene >= len(q.Scenes) {
		return nil, false
	}
	dialogs := q.Scenes[pos.Scene].Dialogs
	if pos.Dialog < 0 || pos.Dialog >= len(dialogs) {
		return nil, false
	}
	return &dialogs[pos.Dialog], true
}

// SceneAt returns the scene at index i.
func (q *Quest) SceneAt(i int) (*Scene, bool) {
	if i < 0 || i >= len(q.Scenes) {
		return nil, false
	}
	return &q.Scenes[i], true
}

// NextPosition returns where Next leads from pos: the dialog's goto if
// declared, else the following dialog, else the first dialog of the next
// non-empty scene. The bool is false at the end of the quest.
func (q *Quest) NextPosition(pos core.Position) (core.Position, bool) {
	if d, ok := q.DialogAt(pos); ok && d.Goto != nil {
		return *d.Goto, true
	}
	if pos.Scene >= 0 && pos.Scene < len(q.Scenes) && pos.Dialog+1 < len(q.Scenes[pos.Scene].Dialogs) {
		return core.Position{Scene: pos.Scene, Dialog: pos.Dialog + 1}, true
	}
	for s := pos.Scene + 1; s < len(q.Scenes); s++ {
		if len(q.Scenes[s].Dialogs) > 0 {
			return core.Position{Scene: s}, true
		}
	}
	return core.Position{}, false
}

// PrevPosition returns where Back leads from pos: the previous dialog, or
// the last dialog of the previous non-empty scene.
func (q *Quest) PrevPosition(pos core.Position) (core.Position, bool) {
	if pos.Dialog > 0 {
		return core.Position{Scene: pos.Scene, Dialog: pos.Dialog - 1}, true
	}
	for s := pos.Scene - 1; s >= 0; s-- {
		if n := len(q.Scenes[s].Dialogs); n > 0 {
			return core.Position{Scene: s, Dialog: n - 1}, true
		}
	}
	return core.Position{}, false
}

// GradedInteractions counts the interactions that produce responses,
// i.e. those not routed through the interactive store.
func (q *Quest) GradedInteractions() int {
	n := 0
	for _, s := range q.Scenes {
		for _, d := range s.Dialogs {
			for _, in := range d.Interactions {
				if !in.EnableStateExchange {
					n++
				}
			}
		}
	}
	return n
}
