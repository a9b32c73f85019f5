package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/vovakirdan/tui-quest/internal/content"
	"github.com/vovakirdan/tui-quest/internal/core"
)

func questionDialog(n int) *content.Dialog {
	d := &content.Dialog{
		Text: "What is six times seven?",
		Controls: []content.Control{
			{Type: content.ControlBack, Text: "Back"},
			{Type: content.ControlSubmit, Text: "Submit"},
		},
	}
	for i := 0; i < n; i++ {
		d.Interactions = append(d.Interactions, content.Interaction{Kind: "numeric"})
	}
	return d
}

type harness struct {
	sched       *manualScheduler
	responses   *ResponseStore
	interactive *InteractiveStore
	nexts       int
	backs       int
}

func newHarness() *harness {
	return &harness{
		sched:       newManualScheduler(),
		responses:   NewResponseStore(),
		interactive: NewInteractiveStore(),
	}
}

func (h *harness) mount(pos core.Position, d *content.Dialog, lookup PredicateLookup) *DialogController {
	return NewDialogController(DialogConfig{
		Position:    pos,
		Dialog:      d,
		Responses:   h.responses,
		Interactive: h.interactive,
		Scheduler:   h.sched,
		Predicates:  lookup,
		OnNext:      func() { h.nexts++ },
		OnBack:      func() { h.backs++ },
	})
}

func TestDialogCorrectSubmission(t *testing.T) {
	h := newHarness()
	c := h.mount(core.Position{}, questionDialog(1), nil)

	c.HandleInteraction(0, core.EmptyState())
	if c.NextEnabled() {
		t.Fatal("Submit should be disabled while the answer is empty")
	}

	c.HandleInteraction(0, core.InteractionState{IsCorrect: true, Value: "42"})
	if !c.NextEnabled() {
		t.Fatal("Submit should be enabled once answered")
	}

	if res := c.Submit(); res != SubmitPending {
		t.Fatalf("Submit() = %v, want pending", res)
	}
	if !c.ShowCorrect() {
		t.Error("ShowCorrect() should be true during the delay")
	}
	c.Submit()

	h.sched.Advance(core.DefaultFeedbackDelay - time.Millisecond)
	if h.nexts != 0 {
		t.Fatal("onNext fired before the delay elapsed")
	}
	h.sched.Advance(time.Millisecond)
	if h.nexts != 1 {
		t.Fatalf("onNext fired %d times, want 1", h.nexts)
	}

	if h.responses.Len() != 1 {
		t.Fatalf("responses = %d, want 1", h.responses.Len())
	}
	r, ok := h.responses.Get("0_0_0")
	if !ok || !r.IsSubmitted || r.State.Value != "42" {
		t.Errorf("response 0_0_0 = %+v, ok=%v", r, ok)
	}
}

func TestDialogIncorrectSubmission(t *testing.T) {
	h := newHarness()
	c := h.mount(core.Position{}, questionDialog(1), nil)

	c.HandleInteraction(0, core.EmptyState())
	c.HandleInteraction(0, core.InteractionState{Value: "41"})

	if res := c.Submit(); res != SubmitRejected {
		t.Errorf("Submit() = %v, want rejected", res)
	}
	h.sched.Advance(time.Hour)

	if !c.HasAttempted() {
		t.Error("HasAttempted() should be true")
	}
	if h.nexts != 0 {
		t.Errorf("onNext fired %d times", h.nexts)
	}
	if h.responses.Len() != 0 {
		t.Errorf("responses = %d, want 0", h.responses.Len())
	}
}

func TestDialogHandleNextIdempotent(t *testing.T) {
	h := newHarness()
	c := h.mount(core.Position{Scene: 2, Dialog: 1}, questionDialog(2), nil)
	c.HandleInteraction(0, correct("a"))
	c.HandleInteraction(1, wrong("b"))

	c.HandleNext()
	c.HandleNext()

	if h.responses.Len() != 2 {
		t.Errorf("responses = %d after two HandleNext, want 2", h.responses.Len())
	}
	if r, _ := h.responses.Get("2_1_1"); r.IsSubmitted {
		t.Error("wrong answer must not be marked submitted")
	}
	if h.nexts != 2 {
		t.Errorf("onNext fired %d times, want 2", h.nexts)
	}
}

func TestDialogRoundTrip(t *testing.T) {
	h := newHarness()
	pos := core.Position{Scene: 0, Dialog: 1}
	d := questionDialog(1)
	answer := core.InteractionState{IsCorrect: true, Value: "42", Value2: "m/s"}

	c := h.mount(pos, d, nil)
	c.HandleInteraction(0, answer)
	c.Submit()
	h.sched.Advance(core.DefaultFeedbackDelay)
	c.Close()

	// Back to the dialog: the committed answer comes back as-is.
	again := h.mount(pos, d, nil)
	if got := again.InitialState(0); got != answer {
		t.Errorf("InitialState(0) = %+v, want %+v", got, answer)
	}
	if again.Gate().State() != StateSubmitted {
		t.Errorf("State() = %v, want submitted", again.Gate().State())
	}

	if res := again.Submit(); res != SubmitProceeded {
		t.Errorf("Submit() = %v, want proceeded", res)
	}
	if h.sched.PendingTimers() != 0 {
		t.Error("revisited dialog started a feedback delay")
	}
	if again.ShowCorrect() {
		t.Error("revisited dialog showed correct feedback")
	}
	if h.nexts != 2 || h.responses.Len() != 1 {
		t.Errorf("nexts=%d responses=%d, want 2 and 1", h.nexts, h.responses.Len())
	}
}

func TestDialogPartialRehydrate(t *testing.T) {
	h := newHarness()
	pos := core.Position{}
	h.responses.Upsert(core.NewResponse(pos, 0, correct("1")))
	h.responses.Upsert(core.NewResponse(pos, 1, wrong("2")))

	c := h.mount(pos, questionDialog(2), nil)
	if c.Gate().State() == StateSubmitted {
		t.Error("dialog with a wrong committed answer must not restore as submitted")
	}
	if got := c.InitialState(1); got.Value != "2" {
		t.Errorf("InitialState(1) = %+v", got)
	}
}

func TestDialogZeroInteractions(t *testing.T) {
	h := newHarness()
	for i := 0; i < 5; i++ {
		h.responses.Upsert(core.NewResponse(core.Position{Dialog: i}, 0, core.EmptyState()))
	}

	d := &content.Dialog{Controls: []content.Control{{Type: content.ControlNext, Text: "Next"}}}
	c := h.mount(core.Position{}, d, nil)

	if !c.NextEnabled() {
		t.Error("dialog without interactions must allow Next")
	}
	if res := c.Submit(); res != SubmitProceeded || h.nexts != 1 {
		t.Errorf("Submit() = %v, nexts=%d", res, h.nexts)
	}
}

func TestDialogCloseCancelsDelay(t *testing.T) {
	h := newHarness()
	c := h.mount(core.Position{}, questionDialog(1), nil)
	c.HandleInteraction(0, correct("42"))
	c.Submit()
	c.Close()
	h.sched.Advance(time.Hour)

	if h.nexts != 0 {
		t.Error("stale proceed fired after Close")
	}
	if h.responses.Len() != 0 {
		t.Error("responses committed after Close")
	}
}

func TestDialogFeedbackDelay(t *testing.T) {
	h := newHarness()

	d := questionDialog(1)
	d.FeedbackDelay = 250 * time.Millisecond
	if got := h.mount(core.Position{}, d, nil).Gate().Delay(); got != 250*time.Millisecond {
		t.Errorf("dialog delay = %v", got)
	}

	c := NewDialogController(DialogConfig{Dialog: questionDialog(1), FeedbackDelay: 2 * time.Second})
	if got := c.Gate().Delay(); got != 2*time.Second {
		t.Errorf("configured delay = %v", got)
	}
}

func TestDialogBack(t *testing.T) {
	h := newHarness()
	d := questionDialog(0)
	d.Events = []content.Event{{
		Triggers: []content.Trigger{content.TriggerOnBack},
		Payload:  content.EventPayload{Target: "journal", Set: core.Record{"wentBack": true}},
	}}

	c := h.mount(core.Position{}, d, nil)
	if !c.BackEnabled() || !c.Back() {
		t.Fatal("Back should be enabled")
	}
	if h.backs != 1 {
		t.Errorf("onBack fired %d times", h.backs)
	}
	if h.interactive.Get("journal")["wentBack"] != true {
		t.Error("on-back event was not applied")
	}

	d.Controls[0].Disabled = true
	c = h.mount(core.Position{}, d, nil)
	if c.BackEnabled() || c.Back() {
		t.Error("disabled Back should not fire")
	}

	c = h.mount(core.Position{}, &content.Dialog{}, nil)
	if c.Back() {
		t.Error("dialog without a back control should not go back")
	}
	if h.backs != 1 {
		t.Errorf("onBack fired %d times, want 1", h.backs)
	}
}

func TestDialogOnNextEvent(t *testing.T) {
	h := newHarness()
	d := questionDialog(0)
	d.Events = []content.Event{
		{
			Triggers: []content.Trigger{content.TriggerOnNext},
			Payload:  content.EventPayload{Target: "journal", Set: core.Record{"seen": true}},
		},
		{
			Triggers: []content.Trigger{content.TriggerOnBack},
			Payload:  content.EventPayload{Target: "journal", Set: core.Record{"back": true}},
		},
	}

	c := h.mount(core.Position{}, d, nil)
	c.Submit()

	rec := h.interactive.Get("journal")
	if rec["seen"] != true {
		t.Error("on-next event was not applied")
	}
	if _, ok := rec["back"]; ok {
		t.Error("on-back event fired on next")
	}
}

func exchangeDialog(pred core.Predicate, name string) *content.Dialog {
	return &content.Dialog{
		Controls: []content.Control{{Type: content.ControlNext, Text: "Next"}},
		Interactions: []content.Interaction{
			{Kind: "slider", Name: "height", EnableStateExchange: true},
		},
		Events: []content.Event{{
			Triggers: []content.Trigger{content.TriggerOnNext},
			Payload:  content.EventPayload{Target: "journal", Disabled: name, DisabledFunc: pred},
		}},
	}
}

func TestDialogStateExchange(t *testing.T) {
	h := newHarness()
	untouched := func(r map[string]core.Record) (bool, error) {
		return r["height"]["value"] != "5", nil
	}

	c := h.mount(core.Position{Scene: 1}, exchangeDialog(untouched, ""), nil)
	h.sched.RunTasks()
	if c.NextEnabled() {
		t.Fatal("override should lock Next before the slider moves")
	}

	c.HandleInteraction(0, core.InteractionState{Value: "5"})
	if c.InitialState(0).Value != "5" {
		t.Errorf("exchange state not stored under the interaction name")
	}
	if h.responses.Len() != 0 {
		t.Error("exchange interaction must not write the response store")
	}

	version := h.interactive.Version()
	c.HandleInteraction(0, core.InteractionState{Value: "5"})
	if h.interactive.Version() != version {
		t.Error("identical report was not elided")
	}

	h.sched.RunTasks()
	if !c.NextEnabled() {
		t.Error("override should unlock once the slider reports 5")
	}

	// A remount starts from the exchanged state.
	c.Close()
	again := h.mount(core.Position{Scene: 1}, exchangeDialog(untouched, ""), nil)
	if again.InitialState(0).Value != "5" {
		t.Error("remount lost the exchanged state")
	}
}

func TestDialogOverrideSeesOwnNamespaces(t *testing.T) {
	h := newHarness()
	h.interactive.Merge("journal", core.Record{"seen": true})
	h.interactive.Merge("elsewhere", core.Record{"isEmpty": true})

	var seen map[string]core.Record
	pred := func(r map[string]core.Record) (bool, error) {
		seen = r
		return false, nil
	}
	c := h.mount(core.Position{Scene: 2}, exchangeDialog(pred, ""), nil)
	c.HandleInteraction(0, core.InteractionState{Value: "5"})
	h.sched.RunTasks()

	if _, ok := seen["elsewhere"]; ok {
		t.Error("predicate saw a namespace of another dialog")
	}
	for _, ns := range []string{"height", "journal"} {
		if _, ok := seen[ns]; !ok {
			t.Errorf("predicate did not see %q, got %v", ns, seen)
		}
	}
	if !c.NextEnabled() {
		t.Error("NextEnabled() = false after an unlocking predicate")
	}
}

func TestDialogExchangeUnnamedNamespace(t *testing.T) {
	h := newHarness()
	d := exchangeDialog(nil, "")
	d.Events = nil
	d.Interactions[0].Name = ""

	c := h.mount(core.Position{Scene: 3, Dialog: 4}, d, nil)
	c.HandleInteraction(0, wrong("7"))

	if got := c.Namespace(0); got != "3_4" {
		t.Errorf("Namespace(0) = %q, want 3_4", got)
	}
	if h.interactive.Get("3_4")["value"] != "7" {
		t.Error("unnamed exchange state not stored under scene_dialog")
	}
}

func TestDialogOverrideFailClosed(t *testing.T) {
	tests := []struct {
		name   string
		pred   core.Predicate
		named  string
		lookup PredicateLookup
	}{
		{
			name: "panicking predicate",
			pred: func(map[string]core.Record) (bool, error) { panic("boom") },
		},
		{
			name: "erroring predicate",
			pred: func(map[string]core.Record) (bool, error) { return false, errors.New("bad store") },
		},
		{
			name:  "unknown name",
			named: "missing",
			lookup: func(name string) (core.Predicate, error) {
				return nil, errors.New("not found")
			},
		},
		{
			name:  "no lookup table",
			named: "anything",
		},
	}

	for _, tt := range tests {
		h := newHarness()
		c := h.mount(core.Position{}, exchangeDialog(tt.pred, tt.named), tt.lookup)
		h.sched.RunTasks()

		if c.NextEnabled() {
			t.Errorf("%s: Next enabled", tt.name)
		}
		if c.Submit() != SubmitBlocked || h.nexts != 0 {
			t.Errorf("%s: Submit went through", tt.name)
		}
	}
}

func TestDialogOverrideNamedLookup(t *testing.T) {
	h := newHarness()
	lookup := func(name string) (core.Predicate, error) {
		if name != "open" {
			return nil, errors.New("unknown")
		}
		return func(map[string]core.Record) (bool, error) { return false, nil }, nil
	}

	c := h.mount(core.Position{}, exchangeDialog(nil, "open"), lookup)
	if c.NextEnabled() {
		t.Error("Next should wait for the first resolution")
	}
	h.sched.RunTasks()
	if !c.NextEnabled() {
		t.Error("Next should be enabled by an unlocking predicate")
	}
}

func TestDialogOverrideAfterClose(t *testing.T) {
	h := newHarness()
	open := func(map[string]core.Record) (bool, error) { return false, nil }

	c := h.mount(core.Position{}, exchangeDialog(open, ""), nil)
	c.Close()
	h.sched.RunTasks()

	if !c.Gate().OverrideLocked() {
		t.Error("override result applied to an unmounted dialog")
	}
}

func TestDialogLoadError(t *testing.T) {
	h := newHarness()
	d := exchangeDialog(nil, "")
	d.Events = nil

	c := h.mount(core.Position{}, d, nil)
	if !c.NextEnabled() {
		t.Fatal("exchange-only dialog should allow Next")
	}

	c.MarkLoadError(0, errors.New("unknown widget"))
	if c.LoadError(0) == nil {
		t.Error("LoadError(0) = nil")
	}
	if c.NextEnabled() {
		t.Error("failed interactive must keep Next gated")
	}
}

func TestDialogOutOfRangeInteraction(t *testing.T) {
	h := newHarness()
	c := h.mount(core.Position{}, questionDialog(1), nil)

	c.HandleInteraction(5, correct("x"))
	c.HandleInteraction(-1, correct("x"))
	if got := c.InitialState(9); !got.IsEmpty {
		t.Errorf("InitialState(9) = %+v, want empty", got)
	}
	if len(c.States()) != 1 {
		t.Errorf("States() len = %d, want 1", len(c.States()))
	}
}
