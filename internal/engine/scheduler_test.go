package engine

import "time"

// manualScheduler is a deterministic Scheduler for tests. Timers fire only
// from Advance and tasks run only from RunTasks.
type manualScheduler struct {
	now    time.Duration
	timers []*manualTimer
	tasks  []func() func()
}

type manualTimer struct {
	at        time.Duration
	fn        func()
	cancelled bool
	fired     bool
}

func newManualScheduler() *manualScheduler {
	return &manualScheduler{}
}

func (s *manualScheduler) AfterFunc(d time.Duration, fn func()) func() {
	t := &manualTimer{at: s.now + d, fn: fn}
	s.timers = append(s.timers, t)
	return func() { t.cancelled = true }
}

func (s *manualScheduler) Go(task func() func()) {
	s.tasks = append(s.tasks, task)
}

func (s *manualScheduler) Advance(d time.Duration) {
	s.now += d
	timers := append([]*manualTimer(nil), s.timers...)
	for _, t := range timers {
		if t.cancelled || t.fired || t.at > s.now {
			continue
		}
		t.fired = true
		t.fn()
	}
}

func (s *manualScheduler) RunTasks() {
	for len(s.tasks) > 0 {
		task := s.tasks[0]
		s.tasks = s.tasks[1:]
		if apply := task(); apply != nil {
			apply()
		}
	}
}

func (s *manualScheduler) PendingTimers() int {
	n := 0
	for _, t := range s.timers {
		if !t.cancelled && !t.fired {
			n++
		}
	}
	return n
}
