// Package session runs one learner attempt at a quest. It owns the position
// cursor and both response stores, mounts widgets for the current dialog and
// reports progress through the LMS bridge.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-quest/internal/config"
	"github.com/vovakirdan/tui-quest/internal/content"
	"github.com/vovakirdan/tui-quest/internal/core"
	"github.com/vovakirdan/tui-quest/internal/engine"
	"github.com/vovakirdan/tui-quest/internal/i18n"
	"github.com/vovakirdan/tui-quest/internal/lms"
	"github.com/vovakirdan/tui-quest/internal/registry"
)

// ErrEmptyQuest is returned by Start for a quest without dialogs.
var ErrEmptyQuest = errors.New("session: quest has no dialogs")

// WidgetFactory creates the widget for an interaction.
type WidgetFactory func(in content.Interaction) (registry.Widget, error)

// Config wires a Session.
type Config struct {
	Quest *content.Quest

	// LMS is optional; without it progress is not reported.
	LMS lms.Runtime

	Scheduler  engine.Scheduler
	Predicates engine.PredicateLookup
	Widgets    WidgetFactory
	Catalog    *i18n.Catalog
	Policy     *config.MasteryPolicy
	Settings   core.RuntimeConfig

	// Resume seeds the start position. A non-explicit resume defers to the
	// location stored by the LMS runtime.
	Resume engine.Resume

	Logger *log.Logger
}

// Session is one learner attempt.
type Session struct {
	quest       *content.Quest
	seq         *engine.Sequencer
	responses   *engine.ResponseStore
	interactive *engine.InteractiveStore
	bridge      *lms.Bridge
	catalog     *i18n.Catalog
	sched       engine.Scheduler
	lookup      engine.PredicateLookup
	create      WidgetFactory
	policy      *config.MasteryPolicy
	settings    core.RuntimeConfig
	resume      engine.Resume
	log         *log.Logger

	ctrl    *engine.DialogController
	widgets []registry.Widget
	states  []core.InteractionState
	focus   int

	history []core.Position
	missed  map[string]bool

	started  bool
	finished bool
	percent  float64
	status   lms.Status
}

// New creates a session. Call Start before use.
func New(cfg Config) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	q := cfg.Quest
	if q == nil {
		q = &content.Quest{}
	}
	lookup := cfg.Predicates
	if lookup == nil {
		lookup = registry.LookupPredicate
	}
	create := cfg.Widgets
	if create == nil {
		create = registry.CreateWidget
	}
	policy := cfg.Policy
	if policy == nil {
		policy = config.NewMasteryPolicy(config.Default().Mastery)
	}
	settings := cfg.Settings
	if settings.FeedbackDelay <= 0 {
		settings.FeedbackDelay = core.DefaultFeedbackDelay
	}
	catalog := cfg.Catalog
	if catalog == nil {
		lang := settings.Lang
		if lang == "" {
			lang = cfg.Resume.Lang
		}
		catalog = i18n.Default().Catalog(lang, q.Strings)
	}

	l := logger.With("quest", q.ID)
	return &Session{
		quest:       q,
		seq:         engine.NewSequencer(core.Position{}),
		responses:   engine.NewResponseStore(),
		interactive: engine.NewInteractiveStore(),
		bridge:      lms.NewBridge(cfg.LMS, l),
		catalog:     catalog,
		sched:       cfg.Scheduler,
		lookup:      lookup,
		create:      create,
		policy:      policy,
		settings:    settings,
		resume:      cfg.Resume,
		log:         l,
		missed:      make(map[string]bool),
	}
}

// Start opens the LMS session, restores saved progress and mounts the first
// dialog.
func (s *Session) Start() error {
	if s.started {
		return nil
	}
	first, ok := s.firstPosition()
	if !ok {
		return ErrEmptyQuest
	}
	s.started = true

	if s.bridge.Initialize() {
		s.bridge.StartSessionTime()
		if !s.bridge.Status().Finished() {
			s.bridge.SetStatus(lms.StatusIncomplete)
		}
		if err := s.restore(s.bridge.SuspendData()); err != nil {
			s.log.Warn("discarding saved progress", "err", err)
		}
	}

	pos := first
	switch {
	case s.resume.Explicit:
		pos = s.resume.Position
	case s.bridge.Location() != "":
		if r := engine.ParseResume(s.bridge.Location()); r.Explicit {
			pos = r.Position
		}
	}
	if _, ok := s.quest.DialogAt(pos); !ok {
		s.log.Warn("resume position out of range", "pos", pos.String())
		pos = first
	}

	s.log.Info("session started", "pos", pos.String(), "lang", s.Lang(), "lms", s.bridge.Active())
	s.seq.Seek(pos)
	s.mount()
	return nil
}

func (s *Session) firstPosition() (core.Position, bool) {
	for i, sc := range s.quest.Scenes {
		if len(sc.Dialogs) > 0 {
			return core.Position{Scene: i}, true
		}
	}
	return core.Position{}, false
}

// mount builds the controller and widgets for the cursor position. A
// position without a dialog ends the quest.
func (s *Session) mount() {
	s.unmount()

	pos := s.seq.Position()
	d, ok := s.quest.DialogAt(pos)
	if !ok {
		s.finish()
		return
	}

	ctrl := engine.NewDialogController(engine.DialogConfig{
		Position:      pos,
		Dialog:        d,
		Responses:     s.responses,
		Interactive:   s.interactive,
		Scheduler:     s.sched,
		Predicates:    s.lookup,
		FeedbackDelay: s.settings.FeedbackDelay,
		OnNext:        s.next,
		OnBack:        s.back,
		Logger:        s.log,
	})
	s.ctrl = ctrl
	s.widgets = make([]registry.Widget, len(d.Interactions))
	s.states = make([]core.InteractionState, len(d.Interactions))
	s.focus = -1

	for i, in := range d.Interactions {
		s.states[i] = core.EmptyState()
		w, err := s.create(in)
		if err != nil {
			ctrl.MarkLoadError(i, err)
			continue
		}
		s.widgets[i] = w
		if s.focus < 0 {
			s.focus = i
		}
		w.Mount(ctrl.InitialState(i), func(st core.InteractionState) {
			if s.ctrl != ctrl {
				return
			}
			s.states[i] = st
			ctrl.HandleInteraction(i, st)
		})
	}
}

func (s *Session) unmount() {
	if s.ctrl != nil {
		s.ctrl.Close()
	}
	s.ctrl = nil
	s.widgets = nil
	s.states = nil
	s.focus = -1
}

// next runs after the controller committed its responses.
func (s *Session) next() {
	from := s.seq.Position()
	to, ok := s.quest.NextPosition(from)
	s.save()
	if !ok {
		s.finish()
		return
	}
	s.history = append(s.history, from)
	s.seek(to)
}

func (s *Session) back() {
	var to core.Position
	if n := len(s.history); n > 0 {
		to = s.history[n-1]
		s.history = s.history[:n-1]
	} else {
		prev, ok := s.quest.PrevPosition(s.seq.Position())
		if !ok {
			return
		}
		to = prev
	}
	s.seek(to)
}

func (s *Session) seek(to core.Position) {
	s.seq.Seek(to)
	s.bridge.SetLocation(s.seq.Query(s.Lang()))
	s.mount()
}

// finish scores the attempt and reports the result.
func (s *Session) finish() {
	s.unmount()
	if s.finished {
		return
	}
	s.finished = true

	correct := 0
	for _, r := range s.responses.All() {
		if r.IsSubmitted && !s.missed[r.ID] {
			correct++
		}
	}
	s.percent = s.policy.Percent(correct, s.quest.GradedInteractions())
	s.status = s.policy.Status(s.percent, s.quest.Mastery)

	s.bridge.SetScore(s.percent)
	s.bridge.SetStatus(s.status)
	s.save()
	s.log.Info("quest finished", "score", s.percent, "status", s.status)
}

// Close ends the LMS session. The session cannot be used afterwards.
func (s *Session) Close() {
	s.unmount()
	if !s.bridge.Active() {
		return
	}
	s.save()
	s.bridge.EndSessionTime()
	s.bridge.Terminate()
}

// Submit presses the forward control. Answers that were wrong on an attempt
// no longer count toward the score.
func (s *Session) Submit() engine.SubmitResult {
	if s.ctrl == nil {
		return engine.SubmitIgnored
	}
	pos := s.ctrl.Position()
	d := s.ctrl.Dialog()
	states := append([]core.InteractionState(nil), s.states...)

	res := s.ctrl.Submit()
	if res == engine.SubmitRejected {
		for i, in := range d.Interactions {
			if in.EnableStateExchange || states[i].Submittable() {
				continue
			}
			s.missed[core.ResponseID(pos, i)] = true
		}
	}
	return res
}

// Back presses the back control.
func (s *Session) Back() bool {
	if s.ctrl == nil {
		return false
	}
	return s.ctrl.Back()
}

// HandleInput routes one input frame: Confirm submits, Back goes back,
// FocusNext cycles widgets and everything else reaches the focused widget.
func (s *Session) HandleInput(in core.InputFrame) {
	switch {
	case in.Has(core.ActionConfirm):
		s.Submit()
	case in.Has(core.ActionBack):
		s.Back()
	case in.Has(core.ActionFocusNext):
		s.FocusNext()
	default:
		if w := s.Focused(); w != nil && s.ctrl != nil && !s.ctrl.ShowCorrect() {
			w.HandleInput(in)
		}
	}
}

// FocusNext moves input focus to the next loaded widget.
func (s *Session) FocusNext() {
	n := len(s.widgets)
	for step := 1; step <= n; step++ {
		i := (s.focus + step) % n
		if i >= 0 && s.widgets[i] != nil {
			s.focus = i
			return
		}
	}
}

// Focused returns the widget receiving input, or nil.
func (s *Session) Focused() registry.Widget {
	if s.focus < 0 || s.focus >= len(s.widgets) {
		return nil
	}
	return s.widgets[s.focus]
}

// FocusIndex returns the index of the focused interaction, or -1.
func (s *Session) FocusIndex() int { return s.focus }

// Widgets returns the mounted widgets. Entries are nil for interactions that
// failed to load.
func (s *Session) Widgets() []registry.Widget { return s.widgets }

// Controller returns the mounted dialog controller, or nil once finished.
func (s *Session) Controller() *engine.DialogController { return s.ctrl }

// Position returns the cursor.
func (s *Session) Position() core.Position { return s.seq.Position() }

// Quest returns the quest being played.
func (s *Session) Quest() *content.Quest { return s.quest }

// Catalog returns the translator of the session locale.
func (s *Session) Catalog() *i18n.Catalog { return s.catalog }

// Lang returns the resolved locale.
func (s *Session) Lang() string { return s.catalog.Locale() }

// Responses returns the committed responses.
func (s *Session) Responses() *engine.ResponseStore { return s.responses }

// Interactive returns the shared interactive store.
func (s *Session) Interactive() *engine.InteractiveStore { return s.interactive }

// Finished reports whether the quest ended.
func (s *Session) Finished() bool { return s.finished }

// Result returns the final score percentage and status.
func (s *Session) Result() (float64, lms.Status) { return s.percent, s.status }

// LMSActive reports whether progress reaches an LMS runtime.
func (s *Session) LMSActive() bool { return s.bridge.Active() }

// FeedbackDelay returns the delay the current dialog uses.
func (s *Session) FeedbackDelay() time.Duration {
	if s.ctrl == nil {
		return s.settings.FeedbackDelay
	}
	return s.ctrl.Gate().Delay()
}

// Progress returns the index of the current dialog among all dialogs and
// the total count.
func (s *Session) Progress() (int, int) {
	pos := s.seq.Position()
	idx, total := 0, 0
	for i, sc := range s.quest.Scenes {
		if i < pos.Scene {
			idx += len(sc.Dialogs)
		}
		total += len(sc.Dialogs)
	}
	idx += pos.Dialog
	if s.finished {
		idx = total
	}
	return idx, total
}

func (s *Session) String() string {
	return fmt.Sprintf("session(%s@%s)", s.quest.ID, s.seq.Position())
}
