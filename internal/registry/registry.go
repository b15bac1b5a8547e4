package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// ErrBuilderNotFound is returned by Lookup when no builder is registered
// under the requested name.
var ErrBuilderNotFound = errors.New("builder not found")

// Factory resolves builders by name.
type Factory interface {
	Lookup(name string) (Builder, error)
}

// Registry is an in-memory Factory. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	builders map[string]Builder
}

// New creates and initializes an empty Registry.
func New() *Registry {
	return &Registry{builders: make(map[string]Builder)}
}

// Register installs a builder under name. Returns an error if the name is
// empty, the builder is nil, or the name is already taken.
func (r *Registry) Register(name string, b Builder) error {
	if name == "" {
		return errors.New("registry: builder name is required")
	}
	if b == nil {
		return fmt.Errorf("registry: builder %s is nil", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.builders[name]; exists {
		return fmt.Errorf("registry: builder %s already registered", name)
	}
	slog.Debug("Registering builder.", "name", name)
	r.builders[name] = b
	return nil
}

// MustRegister panics if registration fails.
func (r *Registry) MustRegister(name string, b Builder) {
	if err := r.Register(name, b); err != nil {
		panic(err)
	}
}

// Lookup implements Factory.
func (r *Registry) Lookup(name string) (Builder, error) {
	r.mu.RLock()
	b, ok := r.builders[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBuilderNotFound, name)
	}
	return b, nil
}

// Names returns the registered builder names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
