package storage

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/vovakirdan/tui-quest/internal/lms"
)

var (
	// ErrNotInitialized is returned by Attempt calls made before Initialize
	// or after Terminate.
	ErrNotInitialized = errors.New("storage: attempt not initialized")

	// ErrUnsupportedKey is returned for data model keys the attempt does not keep.
	ErrUnsupportedKey = errors.New("storage: unsupported data model key")
)

var readableKeys = map[string]bool{
	lms.KeyLessonStatus:   true,
	lms.KeyLessonLocation: true,
	lms.KeyScoreRaw:       true,
	lms.KeyScoreMin:       true,
	lms.KeyScoreMax:       true,
	lms.KeyTotalTime:      true,
	lms.KeyEntry:          true,
	lms.KeyStudentID:      true,
	lms.KeySuspendData:    true,
}

// Attempt is one learner's attempt at a quest, exposed as an LMS runtime.
// Values are buffered in memory and written on Commit.
type Attempt struct {
	store   *Store
	id      string
	questID string
	learner string
	resumed bool

	values map[string]string
	dirty  map[string]bool

	started     time.Time
	initialized bool
	terminated  bool
}

var _ lms.Runtime = (*Attempt)(nil)

func newAttempt(s *Store, id, questID, learner string, values map[string]string, resumed bool) *Attempt {
	a := &Attempt{
		store:   s,
		id:      id,
		questID: questID,
		learner: learner,
		resumed: resumed,
		values:  values,
		dirty:   make(map[string]bool),
	}
	if !resumed {
		for k := range values {
			a.dirty[k] = true
		}
	}
	return a
}

// ID returns the attempt id.
func (a *Attempt) ID() string { return a.id }

// QuestID returns the quest the attempt belongs to.
func (a *Attempt) QuestID() string { return a.questID }

// Resumed reports whether an unfinished attempt was reopened.
func (a *Attempt) Resumed() bool { return a.resumed }

func (a *Attempt) set(key, value string) {
	if cur, ok := a.values[key]; ok && cur == value {
		return
	}
	a.values[key] = value
	a.dirty[key] = true
}

func (a *Attempt) ready() error {
	if !a.initialized {
		return ErrNotInitialized
	}
	return nil
}

// Initialize opens the runtime session and records the entry mode.
func (a *Attempt) Initialize() error {
	if a.terminated {
		return fmt.Errorf("storage: attempt %s already terminated", a.id)
	}
	if a.initialized {
		return nil
	}
	a.initialized = true
	if a.resumed {
		a.set(lms.KeyEntry, lms.EntryResume)
	} else {
		a.set(lms.KeyEntry, lms.EntryAbInitio)
	}
	return nil
}

// Terminate flushes pending values and closes the runtime session.
func (a *Attempt) Terminate() error {
	if err := a.ready(); err != nil {
		return err
	}
	err := a.Commit("")
	a.initialized = false
	a.terminated = true
	return err
}

// SetScore records the raw score and its bounds.
func (a *Attempt) SetScore(raw, min, max float64) error {
	if err := a.ready(); err != nil {
		return err
	}
	if min > max || raw < min || raw > max {
		return fmt.Errorf("storage: score %v outside [%v, %v]", raw, min, max)
	}
	a.set(lms.KeyScoreRaw, formatScore(raw))
	a.set(lms.KeyScoreMin, formatScore(min))
	a.set(lms.KeyScoreMax, formatScore(max))
	return nil
}

// SetStatus records the lesson status.
func (a *Attempt) SetStatus(s lms.Status) error {
	if err := a.ready(); err != nil {
		return err
	}
	if !s.Valid() {
		return fmt.Errorf("storage: invalid lesson status %q", s)
	}
	a.set(lms.KeyLessonStatus, string(s))
	return nil
}

// SetLocation records the resume token.
func (a *Attempt) SetLocation(token string) error {
	if err := a.ready(); err != nil {
		return err
	}
	if len(token) > lms.MaxLocationLen {
		return fmt.Errorf("storage: location longer than %d bytes", lms.MaxLocationLen)
	}
	a.set(lms.KeyLessonLocation, token)
	return nil
}

// SetSuspendData records opaque progress data.
func (a *Attempt) SetSuspendData(data string) error {
	if err := a.ready(); err != nil {
		return err
	}
	if len(data) > lms.MaxSuspendDataLen {
		return fmt.Errorf("storage: suspend data longer than %d bytes", lms.MaxSuspendDataLen)
	}
	a.set(lms.KeySuspendData, data)
	return nil
}

// StartSessionTime starts the session clock.
func (a *Attempt) StartSessionTime() error {
	if err := a.ready(); err != nil {
		return err
	}
	a.started = a.store.now()
	return nil
}

// EndSessionTime stops the session clock and adds the elapsed time to the
// attempt's total.
func (a *Attempt) EndSessionTime() error {
	if err := a.ready(); err != nil {
		return err
	}
	if a.started.IsZero() {
		return errors.New("storage: session time was never started")
	}
	elapsed := a.store.now().Sub(a.started)
	a.started = time.Time{}

	a.set(lms.KeySessionTime, lms.FormatSessionTime(elapsed))
	a.set(lms.KeyTotalTime, lms.FormatSessionTime(a.totalTime()+elapsed))
	return nil
}

// GetValue reads a data model value. Unset keys read as "".
func (a *Attempt) GetValue(key string) (string, error) {
	if err := a.ready(); err != nil {
		return "", err
	}
	if !readableKeys[key] {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedKey, key)
	}
	if key == lms.KeyStudentID {
		return a.learner, nil
	}
	return a.values[key], nil
}

// Commit writes buffered values to the database. SCORM requires an empty
// parameter.
func (a *Attempt) Commit(param string) error {
	if err := a.ready(); err != nil {
		return err
	}
	if param != "" {
		return fmt.Errorf("storage: commit parameter must be empty, got %q", param)
	}
	if len(a.dirty) == 0 {
		return nil
	}
	if err := a.store.flush(a); err != nil {
		return err
	}
	a.dirty = make(map[string]bool)
	return nil
}

func (a *Attempt) score() (float64, bool) {
	v, ok := a.values[lms.KeyScoreRaw]
	if !ok || v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func (a *Attempt) totalTime() time.Duration {
	v := a.values[lms.KeyTotalTime]
	if v == "" {
		return 0
	}
	d, err := lms.ParseSessionTime(v)
	if err != nil {
		return 0
	}
	return d
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
