package engine

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-quest/internal/core"
)

// GateState is the submission state of one dialog instance.
type GateState int

const (
	StateIdle GateState = iota
	StateAttempted
	StateCorrectTransient
	StateSubmitted
)

func (s GateState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAttempted:
		return "attempted"
	case StateCorrectTransient:
		return "correct-transient"
	case StateSubmitted:
		return "submitted"
	}
	return fmt.Sprintf("GateState(%d)", int(s))
}

// SubmitResult reports what a submit attempt did.
type SubmitResult int

const (
	// SubmitIgnored: the gate is torn down or already counting down.
	SubmitIgnored SubmitResult = iota
	// SubmitBlocked: Next is disabled (empty answer or override lock).
	SubmitBlocked
	// SubmitRejected: at least one answer is wrong.
	SubmitRejected
	// SubmitPending: every answer is correct, the feedback delay is running.
	SubmitPending
	// SubmitProceeded: the proceed handler ran synchronously.
	SubmitProceeded
)

func (r SubmitResult) String() string {
	switch r {
	case SubmitIgnored:
		return "ignored"
	case SubmitBlocked:
		return "blocked"
	case SubmitRejected:
		return "rejected"
	case SubmitPending:
		return "pending"
	case SubmitProceeded:
		return "proceeded"
	}
	return fmt.Sprintf("SubmitResult(%d)", int(r))
}

// GateConfig configures a Gate.
type GateConfig struct {
	Scheduler Scheduler

	// Delay is the correct-feedback window. Zero means DefaultFeedbackDelay.
	Delay time.Duration

	// BackDisabled mirrors an explicitly disabled back control.
	BackDisabled bool

	// Overridden marks a dialog that declares an on-next override
	// predicate. Next stays locked until the first resolution arrives.
	Overridden bool

	Logger *log.Logger
}

// Gate decides whether Back and Next are enabled for one mounted dialog and
// drives the correct-feedback transient.
type Gate struct {
	sched        Scheduler
	delay        time.Duration
	backDisabled bool
	log          *log.Logger

	state        GateState
	hasAttempted bool
	mounted      bool
	cancelDelay  func()

	overridden     bool
	overrideLocked bool
	overrideErr    error
	overrideToken  uint64
}

// NewGate creates a mounted gate in the idle state.
func NewGate(cfg GateConfig) *Gate {
	delay := cfg.Delay
	if delay <= 0 {
		delay = core.DefaultFeedbackDelay
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Gate{
		sched:          cfg.Scheduler,
		delay:          delay,
		backDisabled:   cfg.BackDisabled,
		log:            logger,
		state:          StateIdle,
		mounted:        true,
		overridden:     cfg.Overridden,
		overrideLocked: cfg.Overridden,
	}
}

// State returns the current gate state.
func (g *Gate) State() GateState { return g.state }

// HasAttempted reports whether a submit was attempted on this instance.
func (g *Gate) HasAttempted() bool { return g.hasAttempted }

// ShowCorrect reports whether the correct-feedback transient is showing.
func (g *Gate) ShowCorrect() bool { return g.state == StateCorrectTransient }

// Delay returns the correct-feedback window.
func (g *Gate) Delay() time.Duration { return g.delay }

// Mounted reports whether the gate still belongs to a live dialog.
func (g *Gate) Mounted() bool { return g.mounted }

// MarkSubmitted restores a previously satisfied dialog straight into the
// submitted state.
func (g *Gate) MarkSubmitted() {
	g.state = StateSubmitted
}

// OverrideLocked reports whether the override predicate keeps Next disabled.
func (g *Gate) OverrideLocked() bool {
	return g.overridden && g.overrideLocked
}

// OverrideErr returns the last override resolution error.
func (g *Gate) OverrideErr() error { return g.overrideErr }

// NextEnabled reports whether the forward control accepts a click.
func (g *Gate) NextEnabled(states []core.InteractionState) bool {
	if g.OverrideLocked() {
		return false
	}
	switch g.state {
	case StateSubmitted:
		return true
	case StateCorrectTransient:
		return false
	}
	for _, s := range states {
		if s.IsEmpty {
			return false
		}
	}
	return true
}

// BackEnabled reports whether the back control accepts a click.
func (g *Gate) BackEnabled() bool {
	return g.mounted && !g.backDisabled
}

// Submit handles a click on the forward control. proceed runs either
// synchronously or on the scheduler once the feedback delay elapses.
func (g *Gate) Submit(states []core.InteractionState, proceed func()) SubmitResult {
	if !g.mounted || g.state == StateCorrectTransient {
		return SubmitIgnored
	}
	if !g.NextEnabled(states) {
		return SubmitBlocked
	}
	if g.state == StateSubmitted {
		proceed()
		return SubmitProceeded
	}

	g.hasAttempted = true
	if len(states) == 0 {
		g.state = StateSubmitted
		proceed()
		return SubmitProceeded
	}

	for _, s := range states {
		if !s.IsCorrect {
			g.state = StateAttempted
			return SubmitRejected
		}
	}

	g.state = StateCorrectTransient
	if g.sched == nil {
		g.finishTransient(proceed)
		return SubmitProceeded
	}
	g.cancelDelay = g.sched.AfterFunc(g.delay, func() {
		if !g.mounted || g.state != StateCorrectTransient {
			return
		}
		g.finishTransient(proceed)
	})
	return SubmitPending
}

func (g *Gate) finishTransient(proceed func()) {
	g.cancelDelay = nil
	g.state = StateSubmitted
	proceed()
}

// Back handles a click on the back control.
func (g *Gate) Back(handler func()) bool {
	if !g.BackEnabled() {
		return false
	}
	handler()
	return true
}

// RequestOverride resolves the override predicate off the event loop.
// Only the newest request is applied, and nothing is applied once the gate
// is torn down. Until a result arrives the previous verdict stands.
func (g *Gate) RequestOverride(resolve func() (bool, error)) {
	if !g.overridden || !g.mounted {
		return
	}
	g.overrideToken++
	token := g.overrideToken

	if g.sched == nil {
		locked, err := safeResolve(resolve)
		g.applyOverride(token, locked, err)
		return
	}
	g.sched.Go(func() func() {
		locked, err := safeResolve(resolve)
		return func() { g.applyOverride(token, locked, err) }
	})
}

func (g *Gate) applyOverride(token uint64, locked bool, err error) {
	if !g.mounted || token != g.overrideToken {
		return
	}
	if err != nil {
		g.log.Warn("override predicate failed, keeping next disabled", "err", err)
		locked = true
	}
	g.overrideLocked = locked
	g.overrideErr = err
}

func safeResolve(resolve func() (bool, error)) (locked bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			locked, err = true, fmt.Errorf("engine: override predicate panicked: %v", r)
		}
	}()
	return resolve()
}

// Teardown unmounts the gate: a pending feedback delay is cancelled and
// in-flight override results are dropped.
func (g *Gate) Teardown() {
	g.mounted = false
	if g.cancelDelay != nil {
		g.cancelDelay()
		g.cancelDelay = nil
	}
}
