package binding

import (
	"fmt"
	"sort"
	"sync"
)

// Source locates artifact factories by qualified name.
type Source interface {
	Lookup(qualifiedName string) (Factory, bool)
}

// Lister is implemented by sources that can enumerate what they hold.
type Lister interface {
	Names() []string
}

// Registry maps qualified artifact names to factories. Generated code fills
// it from init functions; after start-up it is only read.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

var (
	_ Source = (*Registry)(nil)
	_ Lister = (*Registry)(nil)
)

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: map[string]Factory{}}
}

// DefaultRegistry receives registrations made through Register.
var DefaultRegistry = NewRegistry()

// Register installs a factory in DefaultRegistry.
func Register(qualifiedName string, factory Factory) error {
	return DefaultRegistry.Register(qualifiedName, factory)
}

// MustRegister installs a factory in DefaultRegistry and panics on failure.
func MustRegister(qualifiedName string, factory Factory) {
	DefaultRegistry.MustRegister(qualifiedName, factory)
}

// Register installs a factory. Returns an error if the name already exists.
func (r *Registry) Register(qualifiedName string, factory Factory) error {
	if qualifiedName == "" {
		return fmt.Errorf("binding: artifact name is required")
	}
	if factory == nil {
		return fmt.Errorf("binding: factory is required for %s", qualifiedName)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[qualifiedName]; exists {
		return fmt.Errorf("binding: %s already registered", qualifiedName)
	}
	r.factories[qualifiedName] = factory
	return nil
}

// MustRegister panics if registration fails.
func (r *Registry) MustRegister(qualifiedName string, factory Factory) {
	if err := r.Register(qualifiedName, factory); err != nil {
		panic(err)
	}
}

// RegisterBundle registers a bundle of members for a validator and kind
// under the given namespace.
func (r *Registry) RegisterBundle(namespace, validatorID string, kind Kind, members Members) error {
	className := ClassName(validatorID, kind)
	return r.Register(QualifiedName(namespace, className), BundleFactory(kind, className, members))
}

// Lookup returns the factory registered under qualifiedName.
func (r *Registry) Lookup(qualifiedName string) (Factory, bool) {
	r.mu.RLock()
	factory, ok := r.factories[qualifiedName]
	r.mu.RUnlock()
	return factory, ok
}

// Names returns a sorted list of registered artifact names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
