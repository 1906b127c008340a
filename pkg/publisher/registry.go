package publisher

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds a set of named publishers. The zero value is not usable;
// use NewRegistry.
type Registry struct {
	mu         sync.RWMutex
	publishers map[string]Publisher
}

// NewRegistry creates an empty publisher registry.
func NewRegistry() *Registry {
	return &Registry{publishers: make(map[string]Publisher)}
}

// Register adds a publisher to the registry. Registering a nil publisher,
// an unnamed publisher, or a duplicate name is an error.
func (r *Registry) Register(p Publisher) error {
	if p == nil {
		return fmt.Errorf("cannot register nil publisher")
	}

	name := p.Name()
	if name == "" {
		return fmt.Errorf("publisher name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.publishers[name]; exists {
		return fmt.Errorf("publisher '%s' is already registered", name)
	}

	r.publishers[name] = p
	return nil
}

// Get retrieves a publisher by name, or nil if not registered.
func (r *Registry) Get(name string) Publisher {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.publishers[name]
}

// List returns the registered publisher names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.publishers))
	for name := range r.publishers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// defaultRegistry backs the package-level registration functions.
var defaultRegistry = NewRegistry()

// Register registers a publisher in the default registry.
func Register(p Publisher) error {
	return defaultRegistry.Register(p)
}

// Get retrieves a publisher from the default registry.
func Get(name string) Publisher {
	return defaultRegistry.Get(name)
}

// List returns all publisher names in the default registry.
func List() []string {
	return defaultRegistry.List()
}
