// Package core holds the value types shared by the quest engine, the
// widgets, and the platform layer. Nothing here depends on Bubble Tea.
package core

import (
	"fmt"
	"reflect"
)

// Position identifies a point in a quest. It is a cursor, not an identity:
// replays visit the same positions again.
type Position struct {
	Scene  int
	Dialog int
}

// String renders the position as "scene_dialog".
func (p Position) String() string {
	return fmt.Sprintf("%d_%d", p.Scene, p.Dialog)
}

// Delta is a relative cursor move. Zero fields leave that axis unchanged.
type Delta struct {
	Scene  int
	Dialog int
}

// InteractionState describes the current answer of one widget.
// IsEmpty means the widget has no evaluable answer yet and IsCorrect must
// not be trusted.
type InteractionState struct {
	IsCorrect bool
	IsEmpty   bool
	Value     string
	Value2    string
	Value3    string
}

// EmptyState is the state of a widget that has never been touched.
func EmptyState() InteractionState {
	return InteractionState{IsEmpty: true}
}

// Submittable reports whether the state counts as a correct submission.
func (s InteractionState) Submittable() bool {
	return s.IsCorrect && !s.IsEmpty
}

// Record converts the state into an interactive-store record.
// Blank values are omitted so a partial merge never clears a sibling key.
func (s InteractionState) Record() Record {
	r := Record{
		"isCorrect": s.IsCorrect,
		"isEmpty":   s.IsEmpty,
	}
	if s.Value != "" {
		r["value"] = s.Value
	}
	if s.Value2 != "" {
		r["value2"] = s.Value2
	}
	if s.Value3 != "" {
		r["value3"] = s.Value3
	}
	return r
}

// StateFromRecord rebuilds an InteractionState from a record written by
// Record. A nil record yields EmptyState.
func StateFromRecord(r Record) InteractionState {
	if r == nil {
		return EmptyState()
	}
	st := EmptyState()
	if v, ok := r["isCorrect"].(bool); ok {
		st.IsCorrect = v
	}
	if v, ok := r["isEmpty"].(bool); ok {
		st.IsEmpty = v
	}
	st.Value, _ = r["value"].(string)
	st.Value2, _ = r["value2"].(string)
	st.Value3, _ = r["value3"].(string)
	return st
}

// Response is a committed interaction result.
type Response struct {
	ID          string
	State       InteractionState
	IsSubmitted bool
}

// ResponseID derives the deterministic response id for an interaction.
func ResponseID(pos Position, interaction int) string {
	return fmt.Sprintf("%d_%d_%d", pos.Scene, pos.Dialog, interaction)
}

// NewResponse builds the response committed for an interaction state.
func NewResponse(pos Position, interaction int, st InteractionState) Response {
	return Response{
		ID:          ResponseID(pos, interaction),
		State:       st,
		IsSubmitted: st.Submittable(),
	}
}

// Record is a free-form bag of primitive values (string, bool, numbers)
// that a widget keeps in the interactive store.
type Record map[string]any

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// ValuesEqual compares two primitive record values. Numbers compare by value
// across kinds, so an int written by an event matches the float64 it decodes
// to after a resume. Non-comparable values are never equal, so they always
// count as a change.
func ValuesEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if fa, ok := number(a); ok {
		fb, ok := number(b)
		return ok && fa == fb
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

func number(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// Predicate is a named override gate. Returning true keeps Next disabled.
type Predicate func(responses map[string]Record) (bool, error)
