// Package tui provides the Bubble Tea integration for the quest player.
// It maps keys to input frames, drives engine timers through the event
// loop, and hosts the menu, progress and SSH front ends.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-quest/internal/engine"
)

// timerFiredMsg is delivered when a scheduled delay elapses.
type timerFiredMsg struct {
	id uint64
}

// asyncDoneMsg carries the result of a background task back to the loop.
type asyncDoneMsg struct {
	apply func()
}

type timer struct {
	delay time.Duration
	fn    func()
}

// Scheduler runs engine callbacks on the Bubble Tea event loop. Requests
// made during Update are queued as commands and returned by Drain.
type Scheduler struct {
	nextID  uint64
	timers  map[uint64]timer
	pending []tea.Cmd
}

var _ engine.Scheduler = (*Scheduler)(nil)

// NewScheduler creates an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{timers: make(map[uint64]timer)}
}

// AfterFunc schedules fn on the event loop after d.
func (s *Scheduler) AfterFunc(d time.Duration, fn func()) (cancel func()) {
	s.nextID++
	id := s.nextID
	s.timers[id] = timer{delay: d, fn: fn}
	s.pending = append(s.pending, tickCmd(id, d))
	return func() { delete(s.timers, id) }
}

// Go runs task off the event loop and applies its result on it.
func (s *Scheduler) Go(task func() func()) {
	s.pending = append(s.pending, func() tea.Msg {
		return asyncDoneMsg{apply: task()}
	})
}

func tickCmd(id uint64, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return timerFiredMsg{id: id}
	})
}

// Handle runs the callback a scheduler message carries. It reports whether
// msg belonged to the scheduler.
func (s *Scheduler) Handle(msg tea.Msg) bool {
	switch msg := msg.(type) {
	case timerFiredMsg:
		t, ok := s.timers[msg.id]
		if !ok {
			return true
		}
		delete(s.timers, msg.id)
		t.fn()
		return true
	case asyncDoneMsg:
		if msg.apply != nil {
			msg.apply()
		}
		return true
	}
	return false
}

// Drain returns the queued commands as one batch.
func (s *Scheduler) Drain() tea.Cmd {
	if len(s.pending) == 0 {
		return nil
	}
	cmds := s.pending
	s.pending = nil
	return tea.Batch(cmds...)
}

// Rearm re-issues every live timer with its full delay. A program that
// adopts a scheduler from a closed program calls it so pending delays still
// fire.
func (s *Scheduler) Rearm() {
	for id, t := range s.timers {
		s.pending = append(s.pending, tickCmd(id, t.delay))
	}
}

// Pending returns the number of live timers.
func (s *Scheduler) Pending() int {
	return len(s.timers)
}
