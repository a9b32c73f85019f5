// Package registry provides global registries for widget factories and
// override predicates. Widgets and predicates register themselves in init()
// functions, allowing the platform to resolve them by name without
// hardcoded dependencies.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/tui-quest/internal/content"
	"github.com/vovakirdan/tui-quest/internal/core"
)

var (
	// ErrUnknownWidget is returned when no factory is registered for a kind.
	ErrUnknownWidget = errors.New("registry: unknown widget kind")

	// ErrUnknownPredicate is returned when no predicate has the given name.
	ErrUnknownPredicate = errors.New("registry: unknown predicate")
)

// Widget is the contract every interactive widget implements.
// Widgets contain pure input logic with no Bubble Tea dependency; the
// platform maps keys to input frames and places the rendered view.
type Widget interface {
	// Kind returns the registered kind (e.g. "slider", "choice").
	Kind() string

	// Mount attaches the widget to a dialog. prior is the state restored
	// from earlier visits (EmptyState for a fresh widget). The widget must
	// call report once during Mount and again on every value change.
	Mount(prior core.InteractionState, report func(core.InteractionState))

	// HandleInput applies one input frame.
	HandleInput(in core.InputFrame)

	// View renders the widget. focused marks the widget receiving input.
	View(focused bool) string
}

// Factory creates a widget from its interaction declaration.
// It returns an error when the opaque config cannot be understood.
type Factory func(in content.Interaction) (Widget, error)

var (
	factories  = make(map[string]Factory)
	predicates = make(map[string]core.Predicate)
	mu         sync.RWMutex
)

// RegisterWidget adds a widget factory to the registry.
// Panics if a factory with the same kind is already registered.
func RegisterWidget(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[kind]; exists {
		panic(fmt.Sprintf("registry: widget %q already registered", kind))
	}
	factories[kind] = f
}

// CreateWidget instantiates the widget declared by an interaction.
func CreateWidget(in content.Interaction) (Widget, error) {
	mu.RLock()
	f, ok := factories[in.Kind]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownWidget, in.Kind)
	}
	w, err := f(in)
	if err != nil {
		return nil, fmt.Errorf("registry: widget %q: %w", in.Kind, err)
	}
	return w, nil
}

// WidgetKinds returns the registered widget kinds, sorted.
func WidgetKinds() []string {
	mu.RLock()
	defer mu.RUnlock()

	return sortedKeys(factories)
}

// RegisterPredicate adds a named override predicate.
// Panics if a predicate with the same name is already registered.
func RegisterPredicate(name string, p core.Predicate) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := predicates[name]; exists {
		panic(fmt.Sprintf("registry: predicate %q already registered", name))
	}
	predicates[name] = p
}

// LookupPredicate resolves a predicate by name.
func LookupPredicate(name string) (core.Predicate, error) {
	mu.RLock()
	defer mu.RUnlock()

	p, ok := predicates[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPredicate, name)
	}
	return p, nil
}

// PredicateNames returns the registered predicate names, sorted.
func PredicateNames() []string {
	mu.RLock()
	defer mu.RUnlock()

	return sortedKeys(predicates)
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
