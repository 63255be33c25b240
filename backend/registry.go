package backend

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Factory constructs a backend. Construction must be cheap; resource
// allocation belongs in Backend.Init.
type Factory func() Backend

// ErrNoBackend is returned when no backend has been switched to yet.
var ErrNoBackend = errors.New("backend: no backend selected")

// NotFoundError indicates a named backend is not registered.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return "backend: backend not found: " + e.Name
}

// UnavailableError indicates a backend exists but cannot run here.
type UnavailableError struct {
	Name string
}

func (e *UnavailableError) Error() string {
	return "backend: backend unavailable: " + e.Name
}

var registry = struct {
	mu        sync.RWMutex
	factories map[string]Factory
	instances map[string]Backend
	current   Backend
}{
	factories: make(map[string]Factory),
	instances: make(map[string]Backend),
}

// Register adds a backend factory under name. Registering an existing
// name replaces the previous factory; an already-built instance of
// that name is kept. Backend packages call Register from init:
//
//	func init() {
//	    backend.Register("svg", func() backend.Backend { return New() })
//	}
func Register(name string, f Factory) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.factories[name] = f
}

// Registered returns all registered backend names, sorted.
func Registered() []string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	names := make([]string, 0, len(registry.factories))
	for name := range registry.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the backend instance for name, constructing it on first
// use. It does not initialize the backend or make it current.
func Get(name string) (Backend, error) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	return getLocked(name)
}

func getLocked(name string) (Backend, error) {
	if b, ok := registry.instances[name]; ok {
		return b, nil
	}
	f, ok := registry.factories[name]
	if !ok {
		return nil, &NotFoundError{Name: name}
	}
	b := f()
	registry.instances[name] = b
	return b, nil
}

// Switch makes the named backend current, initializing it if needed.
// The previous backend stays initialized: comparison harnesses switch
// back and forth and re-initialization is the expensive part.
func Switch(name string) error {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	b, err := getLocked(name)
	if err != nil {
		return err
	}
	if !b.Available() {
		return &UnavailableError{Name: name}
	}
	if err := b.Init(); err != nil {
		return fmt.Errorf("backend: init %q: %w", name, err)
	}
	registry.current = b
	return nil
}

// Current returns the current backend, or nil when none is selected.
func Current() Backend {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	return registry.current
}

// CurrentName returns the current backend's name, or "" when none is
// selected.
func CurrentName() string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	if registry.current == nil {
		return ""
	}
	return registry.current.Name()
}

// ClearFontCaches clears the font cache of every constructed backend.
// Backends that were never used have nothing to clear.
func ClearFontCaches() {
	registry.mu.RLock()
	instances := make([]Backend, 0, len(registry.instances))
	for _, b := range registry.instances {
		instances = append(instances, b)
	}
	registry.mu.RUnlock()

	for _, b := range instances {
		b.ClearFontCache()
	}
}
