package content

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrQuestNotFound is returned when a quest id is not present.
var ErrQuestNotFound = errors.New("content: quest not found")

// ParseYAML parses and validates a quest file.
func ParseYAML(data []byte) (Quest, error) {
	var q Quest
	if err := yaml.Unmarshal(data, &q); err != nil {
		return Quest{}, fmt.Errorf("yaml unmarshal: %w", err)
	}
	if err := q.Validate(); err != nil {
		return Quest{}, err
	}
	return q, nil
}

// Validate checks the structural rules the engine relies on.
// Navigation bounds inside dialogs are still the author's responsibility;
// only goto targets are checked because they are easy to get wrong.
func (q *Quest) Validate() error {
	if q.ID == "" {
		return errors.New("content: quest id is required")
	}
	if len(q.Scenes) == 0 {
		return fmt.Errorf("content: quest %s has no scenes", q.ID)
	}

	for si, s := range q.Scenes {
		for di, d := range s.Dialogs {
			where := fmt.Sprintf("quest %s scene %d dialog %d", q.ID, si, di)
			for _, c := range d.Controls {
				if !c.Type.Valid() {
					return fmt.Errorf("content: %s: unknown control type %q", where, c.Type)
				}
			}
			for _, e := range d.Events {
				for _, tr := range e.Triggers {
					if tr != TriggerOnNext && tr != TriggerOnBack {
						return fmt.Errorf("content: %s: unknown trigger %q", where, tr)
					}
				}
			}
			for ii, in := range d.Interactions {
				if in.Kind == "" {
					return fmt.Errorf("content: %s interaction %d: kind is required", where, ii)
				}
			}
			if d.Goto != nil {
				if _, ok := q.DialogAt(*d.Goto); !ok {
					return fmt.Errorf("content: %s: goto %v is out of range", where, *d.Goto)
				}
			}
		}
	}
	return nil
}

// FormatExtensions returns supported file extensions.
func FormatExtensions() []string {
	return []string{".yaml", ".yml"}
}
