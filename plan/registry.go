package plan

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds named customizers. Iteration is sorted by name so assembly
// order does not depend on registration order.
type Registry struct {
	mu          sync.RWMutex
	customizers map[string]Customizer
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{customizers: make(map[string]Customizer)}
}

// Register adds a customizer under name.
func (r *Registry) Register(name string, c Customizer) error {
	if c == nil {
		return fmt.Errorf("%w: %q", ErrNilCustomizer, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.customizers[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateCustomizer, name)
	}
	r.customizers[name] = c
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(name string, c Customizer) {
	if err := r.Register(name, c); err != nil {
		panic(err)
	}
}

// Names returns the registered names in assembly order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.customizers))
	for name := range r.customizers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NamedCustomizer pairs a customizer with its registration name.
type NamedCustomizer struct {
	Name       string
	Customizer Customizer
}

// Ordered returns the customizers in assembly order.
func (r *Registry) Ordered() []NamedCustomizer {
	names := r.Names()

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]NamedCustomizer, 0, len(names))
	for _, name := range names {
		if c, ok := r.customizers[name]; ok {
			out = append(out, NamedCustomizer{Name: name, Customizer: c})
		}
	}
	return out
}
