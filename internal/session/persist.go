package session

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/vovakirdan/tui-quest/internal/core"
	"github.com/vovakirdan/tui-quest/internal/lms"
)

// progress is the cmi.suspend_data payload. It carries what a resumed
// attempt needs to rehydrate submitted dialogs and score correctly.
type progress struct {
	Responses   []savedResponse        `json:"r,omitempty"`
	Missed      []string               `json:"m,omitempty"`
	Interactive map[string]core.Record `json:"x,omitempty"`
}

type savedResponse struct {
	ID        string `json:"id"`
	Correct   bool   `json:"c,omitempty"`
	Empty     bool   `json:"e,omitempty"`
	Submitted bool   `json:"s,omitempty"`
	Value     string `json:"v,omitempty"`
	Value2    string `json:"v2,omitempty"`
	Value3    string `json:"v3,omitempty"`
}

func (s *Session) encode() (string, error) {
	var p progress
	for _, r := range s.responses.All() {
		p.Responses = append(p.Responses, savedResponse{
			ID:        r.ID,
			Correct:   r.State.IsCorrect,
			Empty:     r.State.IsEmpty,
			Submitted: r.IsSubmitted,
			Value:     r.State.Value,
			Value2:    r.State.Value2,
			Value3:    r.State.Value3,
		})
	}
	for id := range s.missed {
		p.Missed = append(p.Missed, id)
	}
	sort.Strings(p.Missed)
	if snap := s.interactive.Snapshot(); len(snap) > 0 {
		p.Interactive = snap
	}

	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("session: encode progress: %w", err)
	}
	return string(data), nil
}

// save writes progress to the LMS runtime. Payloads over the suspend_data
// limit are dropped with a warning, keeping the last saved progress.
func (s *Session) save() {
	if !s.bridge.Active() {
		return
	}
	data, err := s.encode()
	if err != nil {
		s.log.Warn("progress not saved", "err", err)
		return
	}
	if len(data) > lms.MaxSuspendDataLen {
		s.log.Warn("progress not saved, suspend data too large",
			"bytes", len(data), "limit", lms.MaxSuspendDataLen, "at", s.seq.Position())
		return
	}
	s.bridge.SetSuspendData(data)
}

// restore loads progress written by save. An empty payload is a fresh
// attempt.
func (s *Session) restore(data string) error {
	if data == "" {
		return nil
	}
	var p progress
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return fmt.Errorf("session: decode progress: %w", err)
	}
	for _, r := range p.Responses {
		s.responses.Upsert(core.Response{
			ID: r.ID,
			State: core.InteractionState{
				IsCorrect: r.Correct,
				IsEmpty:   r.Empty,
				Value:     r.Value,
				Value2:    r.Value2,
				Value3:    r.Value3,
			},
			IsSubmitted: r.Submitted,
		})
	}
	for _, id := range p.Missed {
		s.missed[id] = true
	}
	for ns, rec := range p.Interactive {
		s.interactive.Merge(ns, rec)
	}
	return nil
}
