package tui

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/patrickmn/go-cache"

	"github.com/vovakirdan/tui-quest/internal/session"
)

// liveEntry is a running quest session owned by at most one connection.
type liveEntry struct {
	sess    *session.Session
	sched   *Scheduler
	claimed bool
}

// LiveSessions keeps quest sessions alive after a connection drops so the
// same learner can pick them up again. Released sessions that are not
// adopted within the TTL are closed.
type LiveSessions struct {
	mu     sync.Mutex
	items  *cache.Cache
	logger *log.Logger
}

// NewLiveSessions creates a session pool. ttl must be positive.
func NewLiveSessions(ttl time.Duration, logger *log.Logger) *LiveSessions {
	if logger == nil {
		logger = log.Default()
	}
	cleanup := ttl / 2
	if cleanup < time.Second {
		cleanup = time.Second
	}
	l := &LiveSessions{
		items:  cache.New(ttl, cleanup),
		logger: logger,
	}
	l.items.OnEvicted(l.evicted)
	return l
}

func liveKey(learner, questID string) string {
	return learner + "\x00" + questID
}

func (l *LiveSessions) evicted(key string, v any) {
	e, ok := v.(*liveEntry)
	if !ok {
		return
	}
	l.mu.Lock()
	claimed := e.claimed
	l.mu.Unlock()
	if claimed {
		return
	}
	e.sess.Close()
	l.logger.Info("released session expired", "quest", e.sess.Quest().ID, "at", e.sess.Position())
}

// Track registers a freshly launched session as owned by the caller.
// Returns false if the learner already runs the quest elsewhere.
func (l *LiveSessions) Track(learner string, sess *session.Session, sched *Scheduler) bool {
	e := &liveEntry{sess: sess, sched: sched, claimed: true}
	return l.items.Add(liveKey(learner, sess.Quest().ID), e, cache.NoExpiration) == nil
}

// Adopt claims a released session. The scheduler's timers are re-armed
// because the ticks issued on the old connection are gone.
func (l *LiveSessions) Adopt(learner, questID string) (*session.Session, *Scheduler, bool) {
	key := liveKey(learner, questID)

	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.items.Get(key)
	if !ok {
		return nil, nil, false
	}
	e := v.(*liveEntry)
	if e.claimed {
		return nil, nil, false
	}
	e.claimed = true
	l.items.Set(key, e, cache.NoExpiration)
	e.sched.Rearm()
	return e.sess, e.sched, true
}

// Release hands a session back to the pool. It expires after the TTL
// unless adopted. Returns false if the pool does not hold sess.
func (l *LiveSessions) Release(learner string, sess *session.Session) bool {
	key := liveKey(learner, sess.Quest().ID)

	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.items.Get(key)
	if !ok {
		return false
	}
	e := v.(*liveEntry)
	if e.sess != sess {
		return false
	}
	e.claimed = false
	l.items.Set(key, e, cache.DefaultExpiration)
	return true
}

// Done removes a session from the pool without closing it.
func (l *LiveSessions) Done(learner string, sess *session.Session) {
	key := liveKey(learner, sess.Quest().ID)

	l.mu.Lock()
	v, ok := l.items.Get(key)
	if !ok || v.(*liveEntry).sess != sess {
		l.mu.Unlock()
		return
	}
	v.(*liveEntry).claimed = true
	l.mu.Unlock()

	l.items.Delete(key)
}

// Len returns the number of pooled sessions.
func (l *LiveSessions) Len() int {
	return l.items.ItemCount()
}

// CloseAll closes every pooled session.
func (l *LiveSessions) CloseAll() {
	l.mu.Lock()
	items := l.items.Items()
	for _, it := range items {
		if e, ok := it.Object.(*liveEntry); ok {
			e.claimed = true
		}
	}
	l.items.Flush()
	l.mu.Unlock()

	for _, it := range items {
		if e, ok := it.Object.(*liveEntry); ok {
			e.sess.Close()
		}
	}
}
