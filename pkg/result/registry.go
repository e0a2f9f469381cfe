package result

import (
	"fmt"
	"sort"
	"sync"
)

// Registry resolves result types by identifier. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	types map[string]*Type
}

// NewRegistry creates a registry pre-populated with types.
func NewRegistry(types ...*Type) *Registry {
	r := &Registry{types: make(map[string]*Type)}
	for _, t := range types {
		r.types[t.Name()] = t
	}
	return r
}

// Register adds a type. Registering the same name twice is an error.
func (r *Registry) Register(t *Type) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.types[t.Name()]; exists {
		return fmt.Errorf("result type %q is already registered", t.Name())
	}
	r.types[t.Name()] = t
	return nil
}

// Lookup returns the type registered under name.
func (r *Registry) Lookup(name string) (*Type, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[name]
	return t, ok
}

// Names returns the registered type names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
