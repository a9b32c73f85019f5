package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-quest/internal/content"
)

func keyPress(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func step(t *testing.T, m AppModel, msg tea.Msg) AppModel {
	t.Helper()
	next, _ := m.Update(msg)
	app, ok := next.(AppModel)
	if !ok {
		t.Fatalf("Update() returned %T", next)
	}
	return app
}

func welcomeOnly(t *testing.T) []content.Quest {
	t.Helper()
	q, err := content.NewLoader("").LoadByID("welcome")
	if err != nil {
		t.Fatalf("LoadByID() failed: %v", err)
	}
	return []content.Quest{q}
}

func TestAppModelPlaysQuest(t *testing.T) {
	quests := welcomeOnly(t)
	cfg := testLauncher().Settings
	m := NewAppModel(quests, testLauncher(), nil, cfg, "ada")

	m = step(t, m, keyPress(tea.KeyEnter))
	if m.screen != screenQuest || m.quest == nil {
		t.Fatalf("screen = %v, want quest", m.screen)
	}
	sess := m.quest.Session()
	if sess.Quest().ID != quests[0].ID {
		t.Errorf("playing %q, want %q", sess.Quest().ID, quests[0].ID)
	}
	if m.View() == "" {
		t.Error("View() is empty while playing")
	}

	// Play to the end; no dialog of the built-in tour is gated.
	for i := 0; i < 20 && !sess.Finished(); i++ {
		m = step(t, m, keyPress(tea.KeyEnter))
	}
	if !sess.Finished() {
		t.Fatal("quest did not finish")
	}

	m = step(t, m, keyPress(tea.KeyEnter))
	if m.screen != screenMenu {
		t.Errorf("screen = %v after finishing, want menu", m.screen)
	}
	if m.slot.take() != nil {
		t.Error("finished session still held")
	}
}

func TestAppModelDetachParksSession(t *testing.T) {
	quests := welcomeOnly(t)
	live := NewLiveSessions(time.Hour, quietLogger())
	defer live.CloseAll()

	m := NewAppModel(quests, testLauncher(), live, testLauncher().Settings, "ada")
	m = step(t, m, keyPress(tea.KeyEnter))
	sess := m.quest.Session()
	m = step(t, m, keyPress(tea.KeyEnter))
	pos := sess.Position()

	m.Detach()
	m.Detach()

	again := NewAppModel(quests, testLauncher(), live, testLauncher().Settings, "ada")
	again = step(t, again, keyPress(tea.KeyEnter))
	if again.quest == nil || again.quest.Session() != sess {
		t.Fatal("reconnect did not adopt the parked session")
	}
	if again.quest.Session().Position() != pos {
		t.Errorf("Position() = %v, want %v", again.quest.Session().Position(), pos)
	}
}

func TestAppModelProgressAndQuit(t *testing.T) {
	quests := builtinQuests(t)
	m := NewAppModel(quests, testLauncher(), nil, testLauncher().Settings, "ada")

	m = step(t, m, runes("p"))
	if m.screen != screenProgress {
		t.Fatalf("screen = %v, want progress", m.screen)
	}
	m = step(t, m, keyPress(tea.KeyEsc))
	if m.screen != screenMenu {
		t.Fatalf("screen = %v, want menu", m.screen)
	}

	next, cmd := m.Update(runes("q"))
	if !next.(AppModel).quitting || cmd == nil {
		t.Error("q should quit from the menu")
	}
}
