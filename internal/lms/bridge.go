package lms

import (
	"github.com/charmbracelet/log"
)

// Bridge forwards session milestones to a Runtime and flushes after every
// mutating call. Initialization is attempted once; a failure degrades the
// bridge to a no-op for the rest of the session.
type Bridge struct {
	rt          Runtime
	log         *log.Logger
	initialized bool
	failed      bool
}

// NewBridge wraps rt. A nil rt yields a permanently inactive bridge.
func NewBridge(rt Runtime, logger *log.Logger) *Bridge {
	if logger == nil {
		logger = log.Default()
	}
	return &Bridge{rt: rt, log: logger}
}

// Initialize starts the runtime. It is idempotent and never retries.
func (b *Bridge) Initialize() bool {
	if b.initialized {
		return true
	}
	if b.rt == nil || b.failed {
		return false
	}
	if err := b.rt.Initialize(); err != nil {
		b.failed = true
		b.log.Debug("lms unavailable, running offline", "err", err)
		return false
	}
	b.initialized = true
	return true
}

// Active reports whether calls reach the runtime.
func (b *Bridge) Active() bool {
	return b.initialized && !b.failed
}

func (b *Bridge) mutate(op string, fn func() error) {
	if !b.Active() {
		return
	}
	if err := fn(); err != nil {
		b.log.Debug("lms call failed", "op", op, "err", err)
		return
	}
	if err := b.rt.Commit(""); err != nil {
		b.log.Debug("lms commit failed", "op", op, "err", err)
	}
}

// SetScore records a percentage score.
func (b *Bridge) SetScore(score float64) {
	b.SetScoreRange(score, 0, 100)
}

// SetScoreRange records a raw score with explicit bounds.
func (b *Bridge) SetScoreRange(score, min, max float64) {
	b.mutate("set-score", func() error { return b.rt.SetScore(score, min, max) })
}

// SetStatus records the lesson status.
func (b *Bridge) SetStatus(s Status) {
	b.mutate("set-status", func() error { return b.rt.SetStatus(s) })
}

// SetLocation records the resume token.
func (b *Bridge) SetLocation(token string) {
	b.mutate("set-location", func() error { return b.rt.SetLocation(token) })
}

// SetSuspendData stores opaque learner progress for a later resume.
func (b *Bridge) SetSuspendData(data string) {
	b.mutate("set-suspend-data", func() error { return b.rt.SetSuspendData(data) })
}

// SuspendData returns the stored progress blob.
func (b *Bridge) SuspendData() string {
	return b.GetValue(KeySuspendData)
}

// StartSessionTime marks the start of the timed session.
func (b *Bridge) StartSessionTime() {
	b.mutate("start-session-time", func() error { return b.rt.StartSessionTime() })
}

// EndSessionTime records the elapsed session time.
func (b *Bridge) EndSessionTime() {
	b.mutate("end-session-time", func() error { return b.rt.EndSessionTime() })
}

// GetValue reads a data model value. Inactive bridges return "".
func (b *Bridge) GetValue(key string) string {
	if !b.Active() {
		return ""
	}
	v, err := b.rt.GetValue(key)
	if err != nil {
		b.log.Debug("lms get failed", "key", key, "err", err)
		return ""
	}
	return v
}

// Status returns the runtime's lesson status, or "" when unknown.
func (b *Bridge) Status() Status {
	s := Status(b.GetValue(KeyLessonStatus))
	if !s.Valid() {
		return ""
	}
	return s
}

// Location returns the stored resume token.
func (b *Bridge) Location() string {
	return b.GetValue(KeyLessonLocation)
}

// Terminate ends the runtime session. The bridge is inactive afterwards.
func (b *Bridge) Terminate() {
	if !b.Active() {
		return
	}
	if err := b.rt.Terminate(); err != nil {
		b.log.Debug("lms terminate failed", "err", err)
	}
	b.initialized = false
	b.failed = true
}
