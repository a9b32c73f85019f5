package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-quest/internal/content"
	"github.com/vovakirdan/tui-quest/internal/core"
	"github.com/vovakirdan/tui-quest/internal/i18n"
	"github.com/vovakirdan/tui-quest/internal/storage"
)

// MenuItem represents a selectable quest in the menu.
type MenuItem struct {
	QuestID string
	Title   string
	Best    float64
	Played  bool
}

// MenuModel is the Bubble Tea model for the quest picker.
type MenuModel struct {
	items        []MenuItem
	cursor       int
	width        int
	height       int
	config       core.RuntimeConfig
	cat          *i18n.Catalog
	keys         KeyMap
	help         help.Model
	quitting     bool
	selected     *MenuItem
	openProgress bool
}

// NewMenuModel creates a menu over quests. Best scores come from store
// when it is available.
func NewMenuModel(quests []content.Quest, store *storage.Store, cfg core.RuntimeConfig) MenuModel {
	var stats map[string]*storage.QuestStats
	if store != nil {
		//nolint:errcheck // Best-effort, the menu works without stats
		stats, _ = store.AllQuestStats()
	}

	cat := i18n.Default().Catalog(cfg.Lang, nil)
	items := make([]MenuItem, 0, len(quests))
	for _, q := range quests {
		item := MenuItem{
			QuestID: q.ID,
			Title:   i18n.Default().Catalog(cfg.Lang, q.Strings).Translate(q.Title),
		}
		if st, ok := stats[q.ID]; ok && st.Finished > 0 {
			item.Best = st.BestScore
			item.Played = true
		}
		items = append(items, item)
	}

	h := help.New()
	h.Width = cfg.ScreenW
	return MenuModel{
		items:  items,
		width:  cfg.ScreenW,
		height: cfg.ScreenH,
		config: cfg,
		cat:    cat,
		keys:   NewKeyMap(cat),
		help:   h,
	}
}

// Init initializes the menu model.
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		m.help.Width = msg.Width
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input for menu navigation.
func (m MenuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Confirm), key.Matches(msg, m.keys.Select):
		if len(m.items) > 0 {
			selected := m.items[m.cursor]
			m.selected = &selected
			return m, tea.Quit
		}

	case key.Matches(msg, m.keys.Progress), key.Matches(msg, m.keys.Focus):
		m.openProgress = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the menu.
func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(centerText(titleStyle.Render(m.cat.Translate("menu.title")), m.width))
	b.WriteString("\n\n")

	if len(m.items) == 0 {
		b.WriteString(centerText(lockedStyle.Render(m.cat.Translate("menu.empty")), m.width))
		b.WriteString("\n")
	}

	for i, item := range m.items {
		cursor := "  "
		line := item.Title
		if item.Played {
			line += "  " + lockedStyle.Render(m.cat.Translatef("menu.best", item.Best))
		}
		if i == m.cursor {
			cursor = "> "
			line = selectedStyle.Render(item.Title) + strings.TrimPrefix(line, item.Title)
		}
		b.WriteString(centerText(fmt.Sprintf("%s%s", cursor, line), m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	bindings := []key.Binding{m.keys.Confirm, m.keys.Progress, m.keys.Quit}
	b.WriteString(centerText(helpStyle.Render(m.help.ShortHelpView(bindings)), m.width))
	b.WriteString("\n")
	return b.String()
}

// Selected returns the selected menu item, or nil if none selected.
func (m MenuModel) Selected() *MenuItem {
	return m.selected
}

// IsQuitting returns true if user requested to quit.
func (m MenuModel) IsQuitting() bool {
	return m.quitting
}

// WantsProgress returns true if user requested the progress screen.
func (m MenuModel) WantsProgress() bool {
	return m.openProgress
}

// Config returns the current runtime config (may have been updated by resize).
func (m MenuModel) Config() core.RuntimeConfig {
	return m.config
}

// MenuResult holds the result of running the menu.
type MenuResult struct {
	QuestID       string
	Config        core.RuntimeConfig
	WantsProgress bool
	Quit          bool
}

// RunMenu runs the menu and returns the selection result.
func RunMenu(quests []content.Quest, store *storage.Store, cfg core.RuntimeConfig) (MenuResult, error) {
	p := tea.NewProgram(
		NewMenuModel(quests, store, cfg),
		tea.WithAltScreen(),
	)

	finalModel, err := p.Run()
	if err != nil {
		return MenuResult{Config: cfg}, err
	}

	m, ok := finalModel.(MenuModel)
	if !ok {
		return MenuResult{Config: cfg, Quit: true}, nil
	}

	result := MenuResult{Config: m.Config()}
	switch {
	case m.WantsProgress():
		result.WantsProgress = true
	case m.IsQuitting(), m.Selected() == nil:
		result.Quit = true
	default:
		result.QuestID = m.Selected().QuestID
	}
	return result, nil
}
