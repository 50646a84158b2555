package model

import (
	"fmt"
	"sync"

	"github.com/mesh-intelligence/contextref/pkg/types"
)

// Registry holds the schemas of every model. Register during startup, then
// Seal; lookups are safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]*Schema
	order   []string
	sealed  bool
}

var _ types.CollectionRegistry = (*Registry)(nil)

// NewRegistry returns an empty, unsealed registry.
func NewRegistry() *Registry {
	return &Registry{schemas: make(map[string]*Schema)}
}

// Register adds a schema. Returns ErrRegistrySealed after Seal and
// ErrModelExists for a duplicate name.
func (r *Registry) Register(s *Schema) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return types.ErrRegistrySealed
	}
	if s.Name() == "" {
		return fmt.Errorf("%w: empty model name", types.ErrInvalidData)
	}
	if _, ok := r.schemas[s.Name()]; ok {
		return fmt.Errorf("%w: %s", types.ErrModelExists, s.Name())
	}
	r.schemas[s.Name()] = s
	r.order = append(r.order, s.Name())
	return nil
}

// Seal freezes the registry.
func (r *Registry) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = true
}

// Sealed reports whether Seal was called.
func (r *Registry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}

// Schema returns the schema registered under name.
func (r *Registry) Schema(name string) (*Schema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.schemas[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrModelNotFound, name)
	}
	return s, nil
}

// Names returns the registered model names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}
