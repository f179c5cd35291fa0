package hooks

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	// ErrPluginNotFound is returned when loading a name nobody registered.
	ErrPluginNotFound = errors.New("plugin not found")
	// ErrPluginExists is returned when a name is registered twice.
	ErrPluginExists = errors.New("plugin already registered")
)

// Factory installs a plugin's hooks into the broker.
type Factory func(broker *PluginBroker) error

type registryEntry struct {
	desc    PluginDescriptor
	factory Factory
}

// Registry holds the plugins a run may activate, keyed by name. Each plugin
// is installed at most once; loading it again is a no-op, so a viewer never
// receives the same repaint twice.
type Registry struct {
	mu     sync.RWMutex
	broker *PluginBroker

	plugins map[string]registryEntry
	loaded  []string
	active  map[string]bool
}

// NewRegistry binds a registry to broker, creating one when nil.
func NewRegistry(broker *PluginBroker) *Registry {
	if broker == nil {
		broker = NewPluginBroker()
	}
	return &Registry{
		broker:  broker,
		plugins: make(map[string]registryEntry),
		active:  make(map[string]bool),
	}
}

// Broker returns the broker plugins are installed into.
func (r *Registry) Broker() *PluginBroker {
	if r == nil {
		return nil
	}
	return r.broker
}

// Register makes factory available under name.
func (r *Registry) Register(name string, desc PluginDescriptor, factory Factory) error {
	switch {
	case r == nil:
		return errors.New("registry is nil")
	case name == "":
		return errors.New("plugin name is empty")
	case factory == nil:
		return fmt.Errorf("plugin %s: factory is nil", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.plugins[name]; ok {
		return fmt.Errorf("%w: %s", ErrPluginExists, name)
	}
	r.plugins[name] = registryEntry{desc: desc, factory: factory}
	return nil
}

// Load installs the named plugins in order and stops at the first failure.
// A plugin whose factory failed is not marked loaded.
func (r *Registry) Load(names ...string) error {
	if r == nil {
		return errors.New("registry is nil")
	}
	for _, name := range names {
		entry, fresh, err := r.claim(name)
		if err != nil {
			return err
		}
		if !fresh {
			continue
		}
		if err := entry.factory(r.broker); err != nil {
			r.release(name)
			return fmt.Errorf("plugin %s: %w", name, err)
		}
		r.broker.RegisterPluginMetadata(entry.desc)
	}
	return nil
}

// claim marks name active and reports whether this call did so.
func (r *Registry) claim(name string) (registryEntry, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.plugins[name]
	if !ok {
		return registryEntry{}, false, fmt.Errorf("%w: %s", ErrPluginNotFound, name)
	}
	if r.active[name] {
		return entry, false, nil
	}
	r.active[name] = true
	r.loaded = append(r.loaded, name)
	return entry, true, nil
}

func (r *Registry) release(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.active, name)
	for i, n := range r.loaded {
		if n == name {
			r.loaded = append(r.loaded[:i], r.loaded[i+1:]...)
			break
		}
	}
}

// Loaded lists active plugins in load order.
func (r *Registry) Loaded() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.loaded...)
}

// Descriptor returns the metadata registered under name.
func (r *Registry) Descriptor(name string) (PluginDescriptor, bool) {
	if r == nil {
		return PluginDescriptor{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.plugins[name]
	return entry.desc, ok
}

// Names lists registered plugin names in sorted order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.plugins))
	for name := range r.plugins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
