package loader

import (
	"fmt"
	"sort"
	"sync"

	"github.com/alexbrand/stepexport/internal/step"
)

// Factory is a function that creates a new instance of a loader.
type Factory func() Loader

// registry holds registered loader factories.
var (
	registryMu sync.RWMutex
	loaders    = make(map[string]Factory)
)

// Register registers a loader factory under the given name.
// It panics if the name is already registered or if the factory is nil.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if factory == nil {
		panic(fmt.Sprintf("loader: Register factory is nil for %q", name))
	}
	if _, exists := loaders[name]; exists {
		panic(fmt.Sprintf("loader: Register called twice for %q", name))
	}
	loaders[name] = factory
}

// Get returns a new instance of the loader with the given name.
// Returns an error if no loader is registered with that name.
func Get(name string) (Loader, error) {
	registryMu.RLock()
	factory, exists := loaders[name]
	registryMu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("loader: unknown loader %q", name)
	}
	return factory(), nil
}

// List returns the names of all registered loaders, sorted.
func List() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(loaders))
	for name := range loaders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered returns true if a loader with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()

	_, exists := loaders[name]
	return exists
}

// Unregister removes a loader from the registry.
// This is primarily useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()

	delete(loaders, name)
}

// UnregisterAll removes all loaders from the registry.
// This is primarily useful for testing.
func UnregisterAll() {
	registryMu.Lock()
	defer registryMu.Unlock()

	loaders = make(map[string]Factory)
}

// Load picks the loader registered for the path's kind and loads the module.
func Load(path string, opts Options) (*step.Module, error) {
	l, err := Get(ForPath(path))
	if err != nil {
		return nil, err
	}
	return l.Load(path, opts)
}
