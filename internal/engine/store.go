package engine

import "github.com/vovakirdan/tui-quest/internal/core"

// ResponseStore is the ordered collection of committed responses for one
// learner session. IDs are unique: Upsert replaces in place.
type ResponseStore struct {
	items []core.Response
	index map[string]int
}

// NewResponseStore creates an empty store.
func NewResponseStore() *ResponseStore {
	return &ResponseStore{index: make(map[string]int)}
}

// Upsert stores r, replacing any response with the same ID.
// Returns true if an existing response was replaced.
func (s *ResponseStore) Upsert(r core.Response) bool {
	if i, ok := s.index[r.ID]; ok {
		s.items[i] = r
		return true
	}
	s.index[r.ID] = len(s.items)
	s.items = append(s.items, r)
	return false
}

// Get returns the response with the given ID.
func (s *ResponseStore) Get(id string) (core.Response, bool) {
	i, ok := s.index[id]
	if !ok {
		return core.Response{}, false
	}
	return s.items[i], true
}

// Len returns the number of stored responses.
func (s *ResponseStore) Len() int {
	return len(s.items)
}

// All returns a copy of the responses in insertion order.
func (s *ResponseStore) All() []core.Response {
	out := make([]core.Response, len(s.items))
	copy(out, s.items)
	return out
}

// SubmittedCount counts responses marked as submitted.
func (s *ResponseStore) SubmittedCount() int {
	n := 0
	for _, r := range s.items {
		if r.IsSubmitted {
			n++
		}
	}
	return n
}

// Reset drops every response.
func (s *ResponseStore) Reset() {
	s.items = nil
	s.index = make(map[string]int)
}

// InteractiveStore is the free-form namespace -> record bag widgets use to
// externalize live state that must survive a remount.
//
// Records are copy-on-write: a merge that changes anything installs a new
// record for the namespace, so records handed out earlier never change
// underneath their holder. Treat returned records as read-only.
type InteractiveStore struct {
	data    map[string]core.Record
	version uint64
}

// NewInteractiveStore creates an empty store.
func NewInteractiveStore() *InteractiveStore {
	return &InteractiveStore{data: make(map[string]core.Record)}
}

// Merge shallow-merges partial into the namespace. When every key already
// holds an equal value nothing is written and false is returned.
func (s *InteractiveStore) Merge(ns string, partial core.Record) bool {
	cur := s.data[ns]

	changed := cur == nil && len(partial) > 0
	for k, v := range partial {
		old, ok := cur[k]
		if !ok || !core.ValuesEqual(old, v) {
			changed = true
			break
		}
	}
	if !changed {
		return false
	}

	next := cur.Clone()
	if next == nil {
		next = make(core.Record, len(partial))
	}
	for k, v := range partial {
		next[k] = v
	}
	s.data[ns] = next
	s.version++
	return true
}

// Get returns the record for a namespace, or nil.
func (s *InteractiveStore) Get(ns string) core.Record {
	return s.data[ns]
}

// Snapshot returns the current namespace map. Records are shared, the map
// itself is a copy, so later merges do not show up in the snapshot.
func (s *InteractiveStore) Snapshot() map[string]core.Record {
	out := make(map[string]core.Record, len(s.data))
	for ns, r := range s.data {
		out[ns] = r
	}
	return out
}

// Version counts the merges that changed something.
func (s *InteractiveStore) Version() uint64 {
	return s.version
}

// Reset drops every namespace.
func (s *InteractiveStore) Reset() {
	s.data = make(map[string]core.Record)
	s.version++
}
