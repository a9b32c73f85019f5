package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vovakirdan/tui-quest/internal/lms"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestAttemptLifecycle(t *testing.T) {
	store := openTestStore(t)
	clock := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }

	a, err := store.OpenAttempt("free-fall", "ada")
	if err != nil {
		t.Fatalf("OpenAttempt() failed: %v", err)
	}
	if a.Resumed() {
		t.Error("first attempt should not be resumed")
	}

	if err := a.SetStatus(lms.StatusIncomplete); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("SetStatus before Initialize = %v, want ErrNotInitialized", err)
	}

	if err := a.Initialize(); err != nil {
		t.Fatalf("Initialize() failed: %v", err)
	}
	if v, _ := a.GetValue(lms.KeyEntry); v != lms.EntryAbInitio {
		t.Errorf("entry = %q, want %q", v, lms.EntryAbInitio)
	}
	if v, _ := a.GetValue(lms.KeyStudentID); v != "ada" {
		t.Errorf("student_id = %q", v)
	}

	if err := a.StartSessionTime(); err != nil {
		t.Fatalf("StartSessionTime() failed: %v", err)
	}
	if err := a.SetStatus(lms.StatusIncomplete); err != nil {
		t.Fatalf("SetStatus() failed: %v", err)
	}
	if err := a.SetLocation("dialog=1&scene=1"); err != nil {
		t.Fatalf("SetLocation() failed: %v", err)
	}
	if err := a.SetSuspendData(`[{"id":"0_1_0"}]`); err != nil {
		t.Fatalf("SetSuspendData() failed: %v", err)
	}
	if err := a.Commit(""); err != nil {
		t.Fatalf("Commit() failed: %v", err)
	}

	clock = clock.Add(90 * time.Second)
	if err := a.EndSessionTime(); err != nil {
		t.Fatalf("EndSessionTime() failed: %v", err)
	}
	if err := a.Terminate(); err != nil {
		t.Fatalf("Terminate() failed: %v", err)
	}
	if err := a.Initialize(); err == nil {
		t.Error("Initialize after Terminate should fail")
	}

	// Unfinished attempt is resumed.
	b, err := store.OpenAttempt("free-fall", "ada")
	if err != nil {
		t.Fatalf("OpenAttempt() failed: %v", err)
	}
	if !b.Resumed() || b.ID() != a.ID() {
		t.Fatalf("expected to resume %s, got %s (resumed=%v)", a.ID(), b.ID(), b.Resumed())
	}
	if err := b.Initialize(); err != nil {
		t.Fatalf("Initialize() failed: %v", err)
	}
	if v, _ := b.GetValue(lms.KeyLessonLocation); v != "dialog=1&scene=1" {
		t.Errorf("location = %q", v)
	}
	if v, _ := b.GetValue(lms.KeySuspendData); v != `[{"id":"0_1_0"}]` {
		t.Errorf("suspend_data = %q", v)
	}
	if v, _ := b.GetValue(lms.KeyEntry); v != lms.EntryResume {
		t.Errorf("entry = %q, want resume", v)
	}
	if v, _ := b.GetValue(lms.KeyTotalTime); v != "0000:01:30.00" {
		t.Errorf("total_time = %q", v)
	}

	if err := b.SetScore(75, 0, 100); err != nil {
		t.Fatalf("SetScore() failed: %v", err)
	}
	if err := b.SetStatus(lms.StatusPassed); err != nil {
		t.Fatalf("SetStatus() failed: %v", err)
	}
	if err := b.Terminate(); err != nil {
		t.Fatalf("Terminate() failed: %v", err)
	}

	// Finished attempt is not resumed.
	c, err := store.OpenAttempt("free-fall", "ada")
	if err != nil {
		t.Fatalf("OpenAttempt() failed: %v", err)
	}
	if c.Resumed() || c.ID() == a.ID() {
		t.Error("finished attempt should not be resumed")
	}

	// Other learners get their own attempt.
	d, err := store.OpenAttempt("free-fall", "grace")
	if err != nil {
		t.Fatalf("OpenAttempt() failed: %v", err)
	}
	if d.Resumed() {
		t.Error("attempt of another learner was resumed")
	}
}

func TestAttemptValidation(t *testing.T) {
	store := openTestStore(t)
	a, err := store.OpenAttempt("q", "ada")
	if err != nil {
		t.Fatalf("OpenAttempt() failed: %v", err)
	}
	a.Initialize()

	if err := a.SetScore(120, 0, 100); err == nil {
		t.Error("score above max should fail")
	}
	if err := a.SetStatus("browsed"); err == nil {
		t.Error("unknown status should fail")
	}
	if err := a.SetLocation(strings.Repeat("x", 256)); err == nil {
		t.Error("location over 255 bytes should fail")
	}
	if err := a.EndSessionTime(); err == nil {
		t.Error("EndSessionTime without start should fail")
	}
	if err := a.Commit("x"); err == nil {
		t.Error("Commit with a parameter should fail")
	}
	if err := a.SetSuspendData(strings.Repeat("x", 4097)); err == nil {
		t.Error("suspend data over 4096 bytes should fail")
	}
	if _, err := a.GetValue("cmi.interactions.0.id"); !errors.Is(err, ErrUnsupportedKey) {
		t.Errorf("GetValue(unsupported) = %v, want ErrUnsupportedKey", err)
	}
	if v, err := a.GetValue(lms.KeyScoreRaw); err != nil || v != "" {
		t.Errorf("unset score = %q, %v", v, err)
	}
}

func TestAttemptsAndStats(t *testing.T) {
	store := openTestStore(t)

	finish := func(learner string, score float64, status lms.Status) {
		t.Helper()
		a, err := store.OpenAttempt("free-fall", learner)
		if err != nil {
			t.Fatalf("OpenAttempt() failed: %v", err)
		}
		a.Initialize()
		if err := a.SetScore(score, 0, 100); err != nil {
			t.Fatalf("SetScore() failed: %v", err)
		}
		a.SetStatus(status)
		if err := a.Terminate(); err != nil {
			t.Fatalf("Terminate() failed: %v", err)
		}
	}

	finish("ada", 40, lms.StatusFailed)
	finish("ada", 90, lms.StatusPassed)
	finish("grace", 70, lms.StatusPassed)

	open, _ := store.OpenAttempt("free-fall", "linus")
	open.Initialize()
	open.SetStatus(lms.StatusIncomplete)
	open.Terminate()

	attempts, err := store.Attempts("free-fall", 10)
	if err != nil {
		t.Fatalf("Attempts() failed: %v", err)
	}
	if len(attempts) != 4 {
		t.Fatalf("Attempts() returned %d rows, want 4", len(attempts))
	}
	if attempts[0].Learner != "linus" || attempts[0].HasScore {
		t.Errorf("newest attempt = %+v", attempts[0])
	}

	best, err := store.BestScore("free-fall")
	if err != nil {
		t.Fatalf("BestScore() failed: %v", err)
	}
	if best != 90 {
		t.Errorf("BestScore() = %v, want 90", best)
	}

	stats, err := store.QuestStats("free-fall")
	if err != nil {
		t.Fatalf("QuestStats() failed: %v", err)
	}
	if stats.Attempts != 4 || stats.Finished != 3 || stats.Passed != 2 {
		t.Errorf("QuestStats() = %+v", stats)
	}
	if stats.AvgScore < 66 || stats.AvgScore > 67 {
		t.Errorf("AvgScore = %v, want ~66.7", stats.AvgScore)
	}

	all, err := store.AllQuestStats()
	if err != nil {
		t.Fatalf("AllQuestStats() failed: %v", err)
	}
	if all["free-fall"] == nil || all["free-fall"].BestScore != 90 {
		t.Errorf("AllQuestStats() = %v", all)
	}

	if err := store.ClearAttempts("free-fall"); err != nil {
		t.Fatalf("ClearAttempts() failed: %v", err)
	}
	best, _ = store.BestScore("free-fall")
	if best != 0 {
		t.Errorf("BestScore() after clear = %v", best)
	}
	empty, err := store.QuestStats("free-fall")
	if err != nil || empty.Attempts != 0 {
		t.Errorf("QuestStats() after clear = %+v, %v", empty, err)
	}
}
