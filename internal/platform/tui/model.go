package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-quest/internal/content"
	"github.com/vovakirdan/tui-quest/internal/core"
	"github.com/vovakirdan/tui-quest/internal/engine"
	"github.com/vovakirdan/tui-quest/internal/i18n"
	"github.com/vovakirdan/tui-quest/internal/session"
)

// Model is the Bubble Tea model that plays one quest session.
type Model struct {
	sess   *session.Session
	sched  *Scheduler
	cat    *i18n.Catalog
	keys   KeyMap
	help   help.Model
	width  int
	height int

	quitting   bool
	backToMenu bool
}

// NewModel creates a player for a started session. sched must be the
// scheduler the session was built with.
func NewModel(sess *session.Session, sched *Scheduler, cfg core.RuntimeConfig) Model {
	cat := sess.Catalog()
	h := help.New()
	h.Width = cfg.ScreenW
	return Model{
		sess:   sess,
		sched:  sched,
		cat:    cat,
		keys:   NewKeyMap(cat),
		help:   h,
		width:  cfg.ScreenW,
		height: cfg.ScreenH,
	}
}

// Init flushes work queued while the session mounted its first dialog.
func (m Model) Init() tea.Cmd {
	return m.sched.Drain()
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.sched.Handle(msg) {
		return m, m.sched.Drain()
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	frame, quit := m.keys.Frame(msg)
	if quit {
		m.quitting = true
		return m, tea.Quit
	}

	if m.sess.Finished() {
		if frame.Has(core.ActionConfirm) || frame.Has(core.ActionBack) {
			m.backToMenu = true
			return m, tea.Quit
		}
		return m, nil
	}

	m.sess.HandleInput(frame)
	return m, m.sched.Drain()
}

// View renders the current dialog or the final summary.
func (m Model) View() string {
	if m.quitting || m.backToMenu {
		return ""
	}
	if m.sess.Finished() {
		return m.viewSummary()
	}
	ctrl := m.sess.Controller()
	if ctrl == nil {
		return ""
	}
	return m.viewDialog(ctrl)
}

func (m Model) viewDialog(ctrl *engine.DialogController) string {
	q := m.sess.Quest()
	pos := m.sess.Position()
	d := ctrl.Dialog()

	var b strings.Builder

	header := titleStyle.Render(m.cat.Translate(q.Title))
	if sc, ok := q.SceneAt(pos.Scene); ok && sc.Title != "" {
		header += sceneStyle.Render("  ·  " + m.cat.Translate(sc.Title))
	}
	b.WriteString(header)
	b.WriteString("\n")

	done, total := m.sess.Progress()
	b.WriteString(progressBar(done, total, min(40, max(10, m.width-4))))
	b.WriteString("\n\n")

	var body strings.Builder
	if d.Speaker != "" {
		body.WriteString(speakerStyle.Render(m.cat.Translate(d.Speaker)))
		body.WriteString("\n")
	}
	body.WriteString(m.cat.Translate(d.Text))

	for i, w := range m.sess.Widgets() {
		body.WriteString("\n\n")
		if w == nil {
			body.WriteString(widgetStyle.Render(errorStyle.Render(m.cat.Translate("error.interactive"))))
			continue
		}
		focused := i == m.sess.FocusIndex()
		style := widgetStyle
		if focused && len(m.sess.Widgets()) > 1 {
			style = focusedWidgetStyle
		}
		body.WriteString(style.Render(w.View(focused && !ctrl.ShowCorrect())))
	}

	width := m.width - 2
	if width > 76 {
		width = 76
	}
	b.WriteString(dialogStyle.Width(width).Render(body.String()))
	b.WriteString("\n")

	if fb := m.feedback(ctrl); fb != "" {
		b.WriteString(fb)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.controls(ctrl))
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

func (m Model) feedback(ctrl *engine.DialogController) string {
	gate := ctrl.Gate()
	switch {
	case ctrl.ShowCorrect():
		return correctStyle.Render(m.cat.Translate("feedback.correct"))
	case gate.State() == engine.StateAttempted:
		return incorrectStyle.Render(m.cat.Translate("feedback.incorrect"))
	case gate.OverrideLocked():
		return lockedStyle.Render(m.cat.Translate("feedback.locked"))
	}
	return ""
}

func (m Model) controls(ctrl *engine.DialogController) string {
	d := ctrl.Dialog()
	var buttons []string

	if back, ok := d.Control(content.ControlBack); ok {
		buttons = append(buttons, renderButton(m.label(back, "control.back"), ctrl.BackEnabled()))
	}
	if primary, ok := d.PrimaryControl(); ok {
		label := m.label(primary, "control."+string(primary.Type))
		if ctrl.Gate().State() == engine.StateAttempted {
			label = m.cat.Translate("control.try_again")
		}
		buttons = append(buttons, renderButton(label, ctrl.NextEnabled() && !primary.Disabled))
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, strings.Join(buttons, "  "))
}

func (m Model) label(c content.Control, fallback string) string {
	if c.Text != "" {
		return m.cat.Translate(c.Text)
	}
	return m.cat.Translate(fallback)
}

func (m Model) viewSummary() string {
	pct, status := m.sess.Result()
	q := m.sess.Quest()

	lines := []string{
		titleStyle.Render(m.cat.Translate(q.Title)),
		"",
		correctStyle.Render(m.cat.Translate("quest.finished")),
		m.cat.Translatef("quest.score", pct),
		renderStatus(status, m.cat.Translatef("quest.status", m.cat.Translate("status."+string(status)))),
		"",
		helpStyle.Render(m.help.ShortHelpView([]key.Binding{m.keys.Confirm, m.keys.Quit})),
	}
	box := dialogStyle.Render(strings.Join(lines, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// IsQuitting returns true if the user requested to quit entirely.
func (m Model) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if the user left a finished quest.
func (m Model) BackToMenu() bool {
	return m.backToMenu
}

// Session returns the played session.
func (m Model) Session() *session.Session {
	return m.sess
}

// Run plays a started session until the user quits or the quest finishes.
// The session is left open; the caller closes it.
func Run(sess *session.Session, sched *Scheduler, cfg core.RuntimeConfig) error {
	p := tea.NewProgram(
		NewModel(sess, sched, cfg),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
