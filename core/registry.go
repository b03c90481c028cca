package core

import (
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/exp/maps"
)

type BackendFactory func() Backend

// Registry maps backend names to factories. It is passed to whoever needs to
// construct backends; there is no package-level instance.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]BackendFactory
}

func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]BackendFactory),
	}
}

func (r *Registry) Register(name string, f BackendFactory) error {
	if name == "" || f == nil {
		return fmt.Errorf("backend name and factory must be given")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.factories[name]; ok {
		return fmt.Errorf("backend:%s is already registered", name)
	}
	zap.L().Debug(fmt.Sprintf("registering backend %s", name))
	r.factories[name] = f
	return nil
}

func (r *Registry) New(name string) (Backend, error) {
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("backend %s is not registered", name)
	}
	return f(), nil
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := maps.Keys(r.factories)
	slices.Sort(names)
	return names
}
