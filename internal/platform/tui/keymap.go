package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-quest/internal/core"
	"github.com/vovakirdan/tui-quest/internal/i18n"
)

// KeyMap defines the quest player bindings and translates key messages to
// input frames. Keeping the mapping here makes it testable without a
// terminal.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	Select   key.Binding
	Erase    key.Binding
	Confirm  key.Binding
	Back     key.Binding
	Focus    key.Binding
	Progress key.Binding
	Quit     key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Confirm, k.Back, k.Focus, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.Select},
		{k.Confirm, k.Back, k.Focus, k.Quit},
	}
}

// NewKeyMap returns the default bindings with help text in the catalog's
// language.
func NewKeyMap(cat *i18n.Catalog) KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "less"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "more"),
		),
		Select: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", cat.Translate("help.select")),
		),
		Erase: key.NewBinding(
			key.WithKeys("backspace"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", cat.Translate("help.next")),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", cat.Translate("help.back")),
		),
		Focus: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", cat.Translate("help.focus")),
		),
		Progress: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", cat.Translate("help.progress")),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", cat.Translate("help.quit")),
		),
	}
}

// Frame translates a key message into an input frame. Printable runes that
// are not bound to an action are delivered as typed text.
// Returns true if the key was a quit request.
func (k KeyMap) Frame(msg tea.KeyMsg) (core.InputFrame, bool) {
	frame := core.NewInputFrame()

	switch {
	case key.Matches(msg, k.Quit):
		frame.Set(core.ActionQuit)
		return frame, true
	case key.Matches(msg, k.Up):
		frame.Set(core.ActionUp)
	case key.Matches(msg, k.Down):
		frame.Set(core.ActionDown)
	case key.Matches(msg, k.Left):
		frame.Set(core.ActionLeft)
	case key.Matches(msg, k.Right):
		frame.Set(core.ActionRight)
	case key.Matches(msg, k.Select):
		frame.Set(core.ActionSelect)
	case key.Matches(msg, k.Erase):
		frame.Set(core.ActionErase)
	case key.Matches(msg, k.Confirm):
		frame.Set(core.ActionConfirm)
	case key.Matches(msg, k.Back):
		frame.Set(core.ActionBack)
	case key.Matches(msg, k.Focus):
		frame.Set(core.ActionFocusNext)
	case msg.Type == tea.KeyRunes:
		frame.Type(msg.Runes...)
	}
	return frame, false
}
