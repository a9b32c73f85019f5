package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-quest/internal/content"
	"github.com/vovakirdan/tui-quest/internal/i18n"
	"github.com/vovakirdan/tui-quest/internal/storage"
)

// Progress layout constants
const (
	minWidthForSidebar = 90  // Minimum width to show quest list sidebar
	sidebarWidth       = 22  // Width of quest list sidebar
	maxAttempts        = 100 // Max attempts to load
)

// ProgressKeyMap defines the key bindings for the progress screen.
type ProgressKeyMap struct {
	Up        key.Binding
	Down      key.Binding
	NextQuest key.Binding
	PrevQuest key.Binding
	Back      key.Binding
	Quit      key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k ProgressKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextQuest, k.PrevQuest, k.Back}
}

// FullHelp returns key bindings for the full help view.
func (k ProgressKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextQuest, k.PrevQuest},
		{k.Back, k.Quit},
	}
}

// DefaultProgressKeyMap returns default key bindings.
func DefaultProgressKeyMap(cat *i18n.Catalog) ProgressKeyMap {
	return ProgressKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll"),
		),
		NextQuest: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("tab", "next quest"),
		),
		PrevQuest: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("S-tab", "prev quest"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc", cat.Translate("help.back")),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", cat.Translate("help.quit")),
		),
	}
}

// progressQuest is one entry of the quest sidebar.
type progressQuest struct {
	ID    string
	Title string
}

// ProgressModel shows recorded attempts per quest.
type ProgressModel struct {
	quests      []progressQuest
	questCursor int
	store       *storage.Store
	attempts    []storage.AttemptSummary
	cat         *i18n.Catalog
	table       table.Model
	help        help.Model
	keys        ProgressKeyMap
	width       int
	height      int
	quitting    bool
	goingBack   bool
	showSidebar bool
}

// NewProgressModel creates a progress screen over quests.
func NewProgressModel(quests []content.Quest, store *storage.Store, lang string, width, height int) ProgressModel {
	cat := i18n.Default().Catalog(lang, nil)
	list := make([]progressQuest, 0, len(quests))
	for _, q := range quests {
		title := i18n.Default().Catalog(lang, q.Strings).Translate(q.Title)
		list = append(list, progressQuest{ID: q.ID, Title: title})
	}

	h := help.New()
	h.Width = width
	m := ProgressModel{
		quests:      list,
		store:       store,
		cat:         cat,
		keys:        DefaultProgressKeyMap(cat),
		help:        h,
		width:       width,
		height:      height,
		showSidebar: width >= minWidthForSidebar,
	}
	m.table = m.createTable()
	if len(m.quests) > 0 {
		m.loadAttempts(m.quests[0].ID)
	}
	return m
}

// createTable creates a table sized for the current layout.
func (m *ProgressModel) createTable() table.Model {
	columns := []table.Column{
		{Title: m.cat.Translate("progress.col.learner"), Width: 14},
		{Title: m.cat.Translate("progress.col.status"), Width: 13},
		{Title: m.cat.Translate("progress.col.score"), Width: 6},
		{Title: m.cat.Translate("progress.col.time"), Width: 9},
		{Title: m.cat.Translate("progress.col.updated"), Width: 12},
	}

	tableWidth := m.width - 4
	if m.showSidebar {
		tableWidth -= sidebarWidth + 3
	}
	if extra := tableWidth - 64; extra > 0 {
		columns[0].Width += min(extra, 12)
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(3, m.height-8)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// loadAttempts loads the attempt history of a quest.
func (m *ProgressModel) loadAttempts(questID string) {
	m.attempts = nil
	if m.store != nil {
		if attempts, err := m.store.Attempts(questID, maxAttempts); err == nil {
			m.attempts = attempts
		}
	}
	m.updateTableRows()
}

// updateTableRows refreshes the table from the loaded attempts.
func (m *ProgressModel) updateTableRows() {
	m.table.SetRows(attemptRows(m.attempts, m.cat))
	m.table.GotoTop()
}

// attemptRows formats attempts as table rows.
func attemptRows(attempts []storage.AttemptSummary, cat *i18n.Catalog) []table.Row {
	rows := make([]table.Row, len(attempts))
	for i, a := range attempts {
		score := "-"
		if a.HasScore {
			score = fmt.Sprintf("%.0f%%", a.Score)
		}
		rows[i] = table.Row{
			a.Learner,
			cat.Translate("status." + string(a.Status)),
			score,
			formatDuration(a),
			a.UpdatedAt.Local().Format("Jan 02 15:04"),
		}
	}
	return rows
}

// formatDuration renders the accumulated session time of an attempt.
func formatDuration(a storage.AttemptSummary) string {
	if a.TotalTime <= 0 {
		return "-"
	}
	return a.TotalTime.Round(time.Second).String()
}

// Init initializes the progress model.
func (m ProgressModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the progress screen.
func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Back):
			m.goingBack = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.NextQuest):
			if len(m.quests) > 0 {
				m.questCursor = (m.questCursor + 1) % len(m.quests)
				m.loadAttempts(m.quests[m.questCursor].ID)
			}
			return m, nil

		case key.Matches(msg, m.keys.PrevQuest):
			if len(m.quests) > 0 {
				m.questCursor = (m.questCursor - 1 + len(m.quests)) % len(m.quests)
				m.loadAttempts(m.quests[m.questCursor].ID)
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.showSidebar = m.width >= minWidthForSidebar
		m.table = m.createTable()
		m.updateTableRows()
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the progress screen.
func (m ProgressModel) View() string {
	if m.quitting || m.goingBack {
		return ""
	}

	var b strings.Builder

	title := m.cat.Translate("progress.title")
	if len(m.quests) > 0 {
		title += " · " + m.quests[m.questCursor].Title
	}
	b.WriteString(centerText(titleStyle.Render(title), m.width))
	b.WriteString("\n\n")

	if m.showSidebar {
		b.WriteString(m.renderWideLayout())
	} else {
		b.WriteString(m.renderNarrowLayout())
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

var panelStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("240")).
	Padding(0, 1)

// renderWideLayout renders the quest sidebar next to the table.
func (m ProgressModel) renderWideLayout() string {
	var sidebar strings.Builder
	sidebar.WriteString(m.cat.Translate("menu.title"))
	sidebar.WriteString("\n")
	sidebar.WriteString(strings.Repeat("-", sidebarWidth-4))
	sidebar.WriteString("\n")

	for i, q := range m.quests {
		cursor := "  "
		style := lipgloss.NewStyle()
		if i == m.questCursor {
			cursor = "> "
			style = selectedStyle
		}
		sidebar.WriteString(style.Render(cursor + truncate(q.Title, sidebarWidth-6)))
		sidebar.WriteString("\n")
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		panelStyle.Width(sidebarWidth).Render(sidebar.String()),
		"  ",
		panelStyle.Render(m.renderTableContent()),
	)
}

// renderNarrowLayout renders quest tabs above the table.
func (m ProgressModel) renderNarrowLayout() string {
	var b strings.Builder

	tabStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	activeTabStyle := buttonStyle.Bold(true).Padding(0, 1)

	tabs := make([]string, len(m.quests))
	for i, q := range m.quests {
		name := truncate(q.Title, 10)
		if i == m.questCursor {
			tabs[i] = activeTabStyle.Render(name)
		} else {
			tabs[i] = tabStyle.Render(" " + name + " ")
		}
	}

	tabLine := strings.Join(tabs, " ")
	if lipgloss.Width(tabLine) > m.width-4 && len(m.quests) > 0 {
		tabLine = fmt.Sprintf("< %s >", m.quests[m.questCursor].Title)
	}
	b.WriteString(centerText(tabLine, m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText(panelStyle.Render(m.renderTableContent()), m.width))
	return b.String()
}

// renderTableContent renders the table or empty message.
func (m ProgressModel) renderTableContent() string {
	if len(m.attempts) == 0 {
		return lockedStyle.Padding(2, 4).Render(m.cat.Translate("progress.empty"))
	}
	return m.table.View()
}

// truncate shortens s to n runes, marking the cut with a dot.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n || n < 2 {
		return s
	}
	return string(r[:n-1]) + "."
}

// IsGoingBack returns true if user wants to go back to menu.
func (m ProgressModel) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting returns true if user wants to quit entirely.
func (m ProgressModel) IsQuitting() bool {
	return m.quitting
}

// RunProgress runs the progress screen.
// Returns true if user wants to go back to menu, false if quitting.
func RunProgress(quests []content.Quest, store *storage.Store, lang string, width, height int) (goBack bool, err error) {
	p := tea.NewProgram(
		NewProgressModel(quests, store, lang, width, height),
		tea.WithAltScreen(),
	)

	finalModel, err := p.Run()
	if err != nil {
		return false, err
	}

	m, ok := finalModel.(ProgressModel)
	if !ok {
		return false, nil
	}
	return m.IsGoingBack(), nil
}
