// Package predicates registers the built-in override predicates that event
// payloads reference by name. A predicate returning true keeps Next locked.
package predicates

import (
	"github.com/vovakirdan/tui-quest/internal/core"
	"github.com/vovakirdan/tui-quest/internal/registry"
)

const (
	ExchangeIncomplete = "exchange-incomplete"
	ExchangeUntouched  = "exchange-untouched"
	ExchangeIncorrect  = "exchange-incorrect"
	AlwaysLocked       = "always-locked"
)

func init() {
	registry.RegisterPredicate(ExchangeIncomplete, Incomplete)
	registry.RegisterPredicate(ExchangeUntouched, Untouched)
	registry.RegisterPredicate(ExchangeIncorrect, Incorrect)
	registry.RegisterPredicate(AlwaysLocked, func(map[string]core.Record) (bool, error) {
		return true, nil
	})
}

// widgetRecords returns the records written by widgets, skipping namespaces
// that only hold event payloads.
func widgetRecords(responses map[string]core.Record) []core.Record {
	var out []core.Record
	for _, r := range responses {
		if _, ok := r["isEmpty"]; ok {
			out = append(out, r)
		}
	}
	return out
}

// Incomplete locks while any widget is still empty, or before any widget
// has reported.
func Incomplete(responses map[string]core.Record) (bool, error) {
	records := widgetRecords(responses)
	if len(records) == 0 {
		return true, nil
	}
	for _, r := range records {
		if core.StateFromRecord(r).IsEmpty {
			return true, nil
		}
	}
	return false, nil
}

// Untouched locks until at least one widget holds a value.
func Untouched(responses map[string]core.Record) (bool, error) {
	for _, r := range widgetRecords(responses) {
		if !core.StateFromRecord(r).IsEmpty {
			return false, nil
		}
	}
	return true, nil
}

// Incorrect locks until every widget holds a correct value.
func Incorrect(responses map[string]core.Record) (bool, error) {
	records := widgetRecords(responses)
	if len(records) == 0 {
		return true, nil
	}
	for _, r := range records {
		if !core.StateFromRecord(r).Submittable() {
			return true, nil
		}
	}
	return false, nil
}
