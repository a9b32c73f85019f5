// Package storage provides SQLite-based persistence for quest attempts.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/tui-quest/internal/lms"
)

// Store manages the SQLite database connection for attempt persistence.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// AttemptSummary is one row of a learner's attempt history.
type AttemptSummary struct {
	ID        string
	QuestID   string
	Learner   string
	Status    lms.Status
	Score     float64
	HasScore  bool
	Location  string
	TotalTime time.Duration
	CreatedAt time.Time
	UpdatedAt time.Time
}

// QuestStats contains aggregated statistics for a quest.
type QuestStats struct {
	QuestID    string
	Attempts   int
	Finished   int
	Passed     int
	BestScore  float64
	AvgScore   float64
	LastPlayed time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	// One connection keeps :memory: databases coherent.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db, now: time.Now}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS attempts (
			id TEXT PRIMARY KEY,
			quest_id TEXT NOT NULL,
			learner TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'not attempted',
			location TEXT NOT NULL DEFAULT '',
			score_raw REAL,
			total_secs REAL NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_attempts_quest ON attempts(quest_id);
		CREATE INDEX IF NOT EXISTS idx_attempts_learner ON attempts(quest_id, learner, updated_at DESC);

		CREATE TABLE IF NOT EXISTS attempt_values (
			attempt_id TEXT NOT NULL,
			key TEXT NOT NULL,
			value TEXT NOT NULL,
			PRIMARY KEY (attempt_id, key)
		);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// OpenAttempt returns the runtime for a learner's attempt at a quest.
// The newest unfinished attempt is resumed; otherwise a new one is created.
func (s *Store) OpenAttempt(questID, learner string) (*Attempt, error) {
	var id string
	err := s.db.QueryRow(
		`SELECT id FROM attempts
		 WHERE quest_id = ? AND learner = ? AND status NOT IN (?, ?, ?)
		 ORDER BY updated_at DESC, rowid DESC
		 LIMIT 1`,
		questID, learner, lms.StatusCompleted, lms.StatusPassed, lms.StatusFailed,
	).Scan(&id)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return s.createAttempt(questID, learner)
	case err != nil:
		return nil, fmt.Errorf("storage: cannot query attempts: %w", err)
	}

	values, err := s.loadValues(id)
	if err != nil {
		return nil, err
	}
	return newAttempt(s, id, questID, learner, values, true), nil
}

func (s *Store) createAttempt(questID, learner string) (*Attempt, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		"INSERT INTO attempts (id, quest_id, learner, status) VALUES (?, ?, ?, ?)",
		id, questID, learner, lms.StatusNotAttempted,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot create attempt: %w", err)
	}

	values := map[string]string{
		lms.KeyLessonStatus: string(lms.StatusNotAttempted),
	}
	return newAttempt(s, id, questID, learner, values, false), nil
}

func (s *Store) loadValues(attemptID string) (map[string]string, error) {
	rows, err := s.db.Query(
		"SELECT key, value FROM attempt_values WHERE attempt_id = ?",
		attemptID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot load attempt values: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		values[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return values, nil
}

// flush writes the dirty values of an attempt and refreshes its summary row.
func (s *Store) flush(a *Attempt) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: cannot begin commit: %w", err)
	}
	defer tx.Rollback()

	for key := range a.dirty {
		_, err := tx.Exec(
			`INSERT INTO attempt_values (attempt_id, key, value) VALUES (?, ?, ?)
			 ON CONFLICT(attempt_id, key) DO UPDATE SET value = excluded.value`,
			a.id, key, a.values[key],
		)
		if err != nil {
			return fmt.Errorf("storage: cannot save %s: %w", key, err)
		}
	}

	var score sql.NullFloat64
	if raw, ok := a.score(); ok {
		score = sql.NullFloat64{Float64: raw, Valid: true}
	}
	_, err = tx.Exec(
		`UPDATE attempts
		 SET status = ?, location = ?, score_raw = ?, total_secs = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		a.values[lms.KeyLessonStatus], a.values[lms.KeyLessonLocation], score,
		a.totalTime().Seconds(), a.id,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot update attempt: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: cannot commit attempt: %w", err)
	}
	return nil
}

// Attempts retrieves the most recent attempts at a quest.
func (s *Store) Attempts(questID string, limit int) ([]AttemptSummary, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, quest_id, learner, status, location, score_raw, total_secs, created_at, updated_at
		 FROM attempts
		 WHERE quest_id = ?
		 ORDER BY updated_at DESC, rowid DESC
		 LIMIT ?`,
		questID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query attempts: %w", err)
	}
	defer rows.Close()

	var out []AttemptSummary
	for rows.Next() {
		var a AttemptSummary
		var status string
		var score sql.NullFloat64
		var secs float64
		var createdAt, updatedAt any
		if err := rows.Scan(&a.ID, &a.QuestID, &a.Learner, &status, &a.Location,
			&score, &secs, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		a.Status = lms.Status(status)
		a.Score, a.HasScore = score.Float64, score.Valid
		a.TotalTime = time.Duration(secs * float64(time.Second))
		a.CreatedAt = parseTime(createdAt)
		a.UpdatedAt = parseTime(updatedAt)
		out = append(out, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return out, nil
}

// BestScore returns the highest recorded score for a quest.
// Returns 0 if no attempt has a score.
func (s *Store) BestScore(questID string) (float64, error) {
	var score sql.NullFloat64
	err := s.db.QueryRow(
		"SELECT MAX(score_raw) FROM attempts WHERE quest_id = ?",
		questID,
	).Scan(&score)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot query best score: %w", err)
	}
	if !score.Valid {
		return 0, nil
	}
	return score.Float64, nil
}

// ClearAttempts deletes every attempt at a quest.
func (s *Store) ClearAttempts(questID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: cannot clear attempts: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		"DELETE FROM attempt_values WHERE attempt_id IN (SELECT id FROM attempts WHERE quest_id = ?)",
		questID,
	); err != nil {
		return fmt.Errorf("storage: cannot clear attempt values: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM attempts WHERE quest_id = ?", questID); err != nil {
		return fmt.Errorf("storage: cannot clear attempts: %w", err)
	}
	return tx.Commit()
}

const statsColumns = `COUNT(*),
	SUM(CASE WHEN status IN ('completed', 'passed', 'failed') THEN 1 ELSE 0 END),
	SUM(CASE WHEN status = 'passed' THEN 1 ELSE 0 END),
	COALESCE(MAX(score_raw), 0), COALESCE(AVG(score_raw), 0), MAX(updated_at)`

// QuestStats retrieves aggregated statistics for a specific quest.
func (s *Store) QuestStats(questID string) (*QuestStats, error) {
	stats := &QuestStats{QuestID: questID}
	var finished, passed sql.NullInt64
	var lastPlayed any

	err := s.db.QueryRow(
		"SELECT "+statsColumns+" FROM attempts WHERE quest_id = ?",
		questID,
	).Scan(&stats.Attempts, &finished, &passed, &stats.BestScore, &stats.AvgScore, &lastPlayed)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get quest stats: %w", err)
	}
	stats.Finished = int(finished.Int64)
	stats.Passed = int(passed.Int64)
	stats.LastPlayed = parseTime(lastPlayed)
	return stats, nil
}

// AllQuestStats retrieves statistics for every quest that has attempts.
func (s *Store) AllQuestStats() (map[string]*QuestStats, error) {
	rows, err := s.db.Query(
		"SELECT quest_id, " + statsColumns + " FROM attempts GROUP BY quest_id",
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get all quest stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]*QuestStats)
	for rows.Next() {
		var st QuestStats
		var finished, passed sql.NullInt64
		var lastPlayed any
		if err := rows.Scan(&st.QuestID, &st.Attempts, &finished, &passed,
			&st.BestScore, &st.AvgScore, &lastPlayed); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		st.Finished = int(finished.Int64)
		st.Passed = int(passed.Int64)
		st.LastPlayed = parseTime(lastPlayed)
		stats[st.QuestID] = &st
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return stats, nil
}

// parseTime handles both time.Time and string datetimes from the driver.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
