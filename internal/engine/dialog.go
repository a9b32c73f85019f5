package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-quest/internal/content"
	"github.com/vovakirdan/tui-quest/internal/core"
)

// ErrNoPredicates is returned when a dialog names an override predicate but
// no lookup table was supplied.
var ErrNoPredicates = errors.New("engine: no predicate lookup configured")

// PredicateLookup resolves a named override predicate.
type PredicateLookup func(name string) (core.Predicate, error)

// DialogConfig wires one DialogController.
type DialogConfig struct {
	Position    core.Position
	Dialog      *content.Dialog
	Responses   *ResponseStore
	Interactive *InteractiveStore
	Scheduler   Scheduler
	Predicates  PredicateLookup

	// FeedbackDelay applies when the dialog does not set its own.
	FeedbackDelay time.Duration

	OnNext func()
	OnBack func()

	Logger *log.Logger
}

// DialogController runs the lifecycle of one mounted dialog: it collects
// interaction states, asks the gate about readiness, commits responses and
// fires transition events.
type DialogController struct {
	pos         core.Position
	dialog      *content.Dialog
	responses   *ResponseStore
	interactive *InteractiveStore
	lookup      PredicateLookup
	gate        *Gate
	log         *log.Logger

	local    []core.InteractionState
	captured []bool
	loadErrs map[int]error

	onNext func()
	onBack func()
}

// NewDialogController mounts the dialog at cfg.Position. Interaction
// states committed on an earlier visit are restored from the response store.
func NewDialogController(cfg DialogConfig) *DialogController {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	d := cfg.Dialog
	if d == nil {
		d = &content.Dialog{}
	}
	responses := cfg.Responses
	if responses == nil {
		responses = NewResponseStore()
	}
	interactive := cfg.Interactive
	if interactive == nil {
		interactive = NewInteractiveStore()
	}

	c := &DialogController{
		pos:         cfg.Position,
		dialog:      d,
		responses:   responses,
		interactive: interactive,
		lookup:      cfg.Predicates,
		log:         logger.With("pos", cfg.Position.String()),
		local:       make([]core.InteractionState, len(d.Interactions)),
		captured:    make([]bool, len(d.Interactions)),
		loadErrs:    make(map[int]error),
		onNext:      cfg.OnNext,
		onBack:      cfg.OnBack,
	}

	delay := d.FeedbackDelay
	if delay <= 0 {
		delay = cfg.FeedbackDelay
	}
	back, _ := d.Control(content.ControlBack)

	c.gate = NewGate(GateConfig{
		Scheduler:    cfg.Scheduler,
		Delay:        delay,
		BackDisabled: back.Disabled,
		Overridden:   c.overridden(),
		Logger:       c.log,
	})

	if c.rehydrate() {
		c.gate.MarkSubmitted()
	}
	c.refreshOverride()
	return c
}

// rehydrate restores local states from the response store and reports
// whether every local interaction was already submitted.
func (c *DialogController) rehydrate() bool {
	locals, submitted := 0, 0
	for i, in := range c.dialog.Interactions {
		c.local[i] = core.EmptyState()
		if in.EnableStateExchange {
			continue
		}
		locals++
		r, ok := c.responses.Get(core.ResponseID(c.pos, i))
		if !ok {
			continue
		}
		c.local[i] = r.State
		c.captured[i] = true
		if r.IsSubmitted {
			submitted++
		}
	}
	return locals > 0 && submitted == locals
}

func (c *DialogController) overridden() bool {
	for _, e := range c.dialog.EventsFor(content.TriggerOnNext) {
		if e.Payload.Gated() {
			return true
		}
	}
	return false
}

// Position returns the dialog's position.
func (c *DialogController) Position() core.Position { return c.pos }

// Dialog returns the dialog content.
func (c *DialogController) Dialog() *content.Dialog { return c.dialog }

// Gate exposes the navigation gate.
func (c *DialogController) Gate() *Gate { return c.gate }

// Namespace returns the interactive-store namespace of interaction i.
// Named interactions use their name; unnamed ones share "{scene}_{dialog}".
func (c *DialogController) Namespace(i int) string {
	if i >= 0 && i < len(c.dialog.Interactions) && c.dialog.Interactions[i].Name != "" {
		return c.dialog.Interactions[i].Name
	}
	return c.pos.String()
}

func (c *DialogController) exchanged(i int) bool {
	return c.dialog.Interactions[i].EnableStateExchange
}

func (c *DialogController) inRange(i int) bool {
	return i >= 0 && i < len(c.dialog.Interactions)
}

// InitialState returns the state a widget should mount with.
func (c *DialogController) InitialState(i int) core.InteractionState {
	if !c.inRange(i) {
		return core.EmptyState()
	}
	if c.exchanged(i) {
		return core.StateFromRecord(c.interactive.Get(c.Namespace(i)))
	}
	return c.local[i]
}

// HandleInteraction records a state reported by widget i.
func (c *DialogController) HandleInteraction(i int, st core.InteractionState) {
	if !c.inRange(i) {
		c.log.Warn("interaction index out of range", "index", i)
		return
	}
	if c.exchanged(i) {
		if c.interactive.Merge(c.Namespace(i), st.Record()) {
			c.refreshOverride()
		}
		return
	}
	c.local[i] = st
	c.captured[i] = true
}

// MarkLoadError records that widget i could not be created. The slot stays
// empty, so Next remains gated.
func (c *DialogController) MarkLoadError(i int, err error) {
	if !c.inRange(i) {
		return
	}
	c.log.Error("interactive failed to load", "index", i, "kind", c.dialog.Interactions[i].Kind, "err", err)
	c.loadErrs[i] = err
	c.local[i] = core.EmptyState()
	c.captured[i] = false
}

// LoadError returns the load failure of widget i, if any.
func (c *DialogController) LoadError(i int) error {
	return c.loadErrs[i]
}

// States returns the states the gate evaluates: every local interaction,
// plus an empty placeholder for each interaction that failed to load.
func (c *DialogController) States() []core.InteractionState {
	out := make([]core.InteractionState, 0, len(c.local))
	for i := range c.dialog.Interactions {
		switch {
		case c.loadErrs[i] != nil:
			out = append(out, core.EmptyState())
		case c.exchanged(i):
		default:
			out = append(out, c.local[i])
		}
	}
	return out
}

// NextEnabled reports whether the forward control is enabled.
func (c *DialogController) NextEnabled() bool {
	return c.gate.NextEnabled(c.States())
}

// BackEnabled reports whether the dialog shows an enabled back control.
func (c *DialogController) BackEnabled() bool {
	if _, ok := c.dialog.Control(content.ControlBack); !ok {
		return false
	}
	return c.gate.BackEnabled()
}

// HasAttempted reports whether a submit was attempted.
func (c *DialogController) HasAttempted() bool { return c.gate.HasAttempted() }

// ShowCorrect reports whether the correct-feedback transient is showing.
func (c *DialogController) ShowCorrect() bool { return c.gate.ShowCorrect() }

// Submit handles a click on the forward control.
func (c *DialogController) Submit() SubmitResult {
	res := c.gate.Submit(c.States(), c.HandleNext)
	c.log.Debug("submit", "result", res, "state", c.gate.State())
	return res
}

// HandleNext commits every captured local state, fires on-next events and
// invokes the next handler. Repeated calls upsert the same response IDs.
func (c *DialogController) HandleNext() {
	for i := range c.dialog.Interactions {
		if c.exchanged(i) || !c.captured[i] {
			continue
		}
		c.responses.Upsert(core.NewResponse(c.pos, i, c.local[i]))
	}
	c.fire(content.TriggerOnNext)
	if c.onNext != nil {
		c.onNext()
	}
}

// Back fires on-back events and invokes the back handler.
// Returns false when back is disabled.
func (c *DialogController) Back() bool {
	if _, ok := c.dialog.Control(content.ControlBack); !ok {
		return false
	}
	return c.gate.Back(func() {
		c.fire(content.TriggerOnBack)
		if c.onBack != nil {
			c.onBack()
		}
	})
}

func (c *DialogController) fire(t content.Trigger) {
	for _, e := range c.dialog.EventsFor(t) {
		if e.Payload.Target == "" || len(e.Payload.Set) == 0 {
			continue
		}
		if c.interactive.Merge(e.Payload.Target, e.Payload.Set) {
			c.log.Debug("event applied", "trigger", t, "target", e.Payload.Target)
		}
	}
}

// refreshOverride re-resolves the on-next override predicates against the
// namespaces this dialog owns.
func (c *DialogController) refreshOverride() {
	if !c.gate.overridden {
		return
	}
	snap := c.scopedSnapshot()
	preds, err := c.resolvePredicates()
	c.gate.RequestOverride(func() (bool, error) {
		if err != nil {
			return true, err
		}
		for _, p := range preds {
			locked, err := p(snap)
			if err != nil {
				return true, err
			}
			if locked {
				return true, nil
			}
		}
		return false, nil
	})
}

// scopedSnapshot copies the records of this dialog's exchanged interactions
// and of its event targets. Records of other dialogs are left out.
func (c *DialogController) scopedSnapshot() map[string]core.Record {
	all := c.interactive.Snapshot()
	out := make(map[string]core.Record)
	keep := func(ns string) {
		if r, ok := all[ns]; ok {
			out[ns] = r
		}
	}
	for i := range c.dialog.Interactions {
		if c.exchanged(i) {
			keep(c.Namespace(i))
		}
	}
	for _, e := range c.dialog.Events {
		if e.Payload.Target != "" {
			keep(e.Payload.Target)
		}
	}
	return out
}

func (c *DialogController) resolvePredicates() ([]core.Predicate, error) {
	var preds []core.Predicate
	for _, e := range c.dialog.EventsFor(content.TriggerOnNext) {
		p := e.Payload
		switch {
		case p.DisabledFunc != nil:
			preds = append(preds, p.DisabledFunc)
		case p.Disabled != "":
			if c.lookup == nil {
				return nil, fmt.Errorf("%w: %q", ErrNoPredicates, p.Disabled)
			}
			fn, err := c.lookup(p.Disabled)
			if err != nil {
				return nil, err
			}
			preds = append(preds, fn)
		}
	}
	return preds, nil
}

// Close unmounts the dialog. A pending feedback delay never fires after
// Close, and late override results are discarded.
func (c *DialogController) Close() {
	c.gate.Teardown()
}
