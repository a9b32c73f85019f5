package tui

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-quest/internal/config"
	"github.com/vovakirdan/tui-quest/internal/content"
	"github.com/vovakirdan/tui-quest/internal/core"
	"github.com/vovakirdan/tui-quest/internal/engine"
	"github.com/vovakirdan/tui-quest/internal/i18n"
	"github.com/vovakirdan/tui-quest/internal/lms"
	"github.com/vovakirdan/tui-quest/internal/session"
	"github.com/vovakirdan/tui-quest/internal/storage"
)

// Launcher starts quest sessions wired to the event-loop scheduler and,
// when a store is present, to a persisted LMS attempt.
type Launcher struct {
	Store    *storage.Store // nil = progress is not recorded
	Policy   *config.MasteryPolicy
	Settings core.RuntimeConfig
	Logger   *log.Logger
}

func (l Launcher) logger() *log.Logger {
	if l.Logger == nil {
		return log.Default()
	}
	return l.Logger
}

// Launch opens an attempt for learner and starts a session at resume.
func (l Launcher) Launch(q *content.Quest, learner string, resume engine.Resume) (*session.Session, *Scheduler, error) {
	logger := l.logger()
	settings := l.Settings
	if learner != "" {
		settings.Learner = learner
	}

	var rt lms.Runtime
	if l.Store != nil {
		attempt, err := l.Store.OpenAttempt(q.ID, settings.Learner)
		if err != nil {
			logger.Warn("progress will not be recorded", "quest", q.ID, "err", err)
		} else {
			rt = attempt
		}
	}

	sched := NewScheduler()
	sess := session.New(session.Config{
		Quest:     q,
		LMS:       rt,
		Scheduler: sched,
		Catalog:   i18n.Default().Catalog(settings.Lang, q.Strings),
		Policy:    l.Policy,
		Settings:  settings,
		Resume:    resume,
		Logger:    logger,
	})
	if err := sess.Start(); err != nil {
		sess.Close()
		return nil, nil, fmt.Errorf("start quest %s: %w", q.ID, err)
	}
	return sess, sched, nil
}
