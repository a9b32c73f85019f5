package core

// Action represents a semantic quest action, abstracted from physical key presses.
// Widgets and dialogs work with these intents rather than raw input.
type Action int

const (
	ActionNone      Action = iota
	ActionUp               // Up arrow, k - previous option
	ActionDown             // Down arrow, j - next option
	ActionLeft             // Left arrow, h - decrease
	ActionRight            // Right arrow, l - increase
	ActionSelect           // Space - choose the highlighted option
	ActionErase            // Backspace - delete typed text
	ActionConfirm          // Enter - primary dialog control (next/start/submit)
	ActionBack             // Esc - back control
	ActionFocusNext        // Tab - focus the next widget
	ActionQuit             // Ctrl+C - exit session
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionUp:
		return "Up"
	case ActionDown:
		return "Down"
	case ActionLeft:
		return "Left"
	case ActionRight:
		return "Right"
	case ActionSelect:
		return "Select"
	case ActionErase:
		return "Erase"
	case ActionConfirm:
		return "Confirm"
	case ActionBack:
		return "Back"
	case ActionFocusNext:
		return "FocusNext"
	case ActionQuit:
		return "Quit"
	default:
		return "Unknown"
	}
}

// InputFrame represents the input delivered to a widget for one key event.
type InputFrame struct {
	// Actions maps action types to whether they were triggered this frame.
	Actions map[Action]bool

	// Text holds printable runes typed this frame.
	Text []rune
}

// NewInputFrame creates an empty input frame.
func NewInputFrame() InputFrame {
	return InputFrame{
		Actions: make(map[Action]bool),
	}
}

// Set marks an action as triggered for this frame.
func (f *InputFrame) Set(a Action) {
	if f.Actions == nil {
		f.Actions = make(map[Action]bool)
	}
	f.Actions[a] = true
}

// Type appends typed runes to the frame.
func (f *InputFrame) Type(r ...rune) {
	f.Text = append(f.Text, r...)
}

// Has returns true if the given action was triggered this frame.
func (f InputFrame) Has(a Action) bool {
	if f.Actions == nil {
		return false
	}
	return f.Actions[a]
}

// Empty reports whether the frame carries neither actions nor text.
func (f InputFrame) Empty() bool {
	return len(f.Actions) == 0 && len(f.Text) == 0
}

// Clear resets all actions and text for the next frame.
func (f *InputFrame) Clear() {
	for k := range f.Actions {
		delete(f.Actions, k)
	}
	f.Text = f.Text[:0]
}
