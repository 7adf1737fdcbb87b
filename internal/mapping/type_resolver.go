package mapping

import (
	"fmt"
	"reflect"
	"slices"
	"sync"

	"field-assembler/internal/common"
)

// TypeRegistry binds the type names used in descriptor files to Go types.
type TypeRegistry struct {
	mu     sync.RWMutex
	byName map[string]reflect.Type
}

// NewTypeRegistry creates an empty registry.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{byName: make(map[string]reflect.Type)}
}

// Register binds name to t. An empty name uses the short "alias.Name" form,
// e.g. "orders.Order". Pointer types are stored as their element type.
func (r *TypeRegistry) Register(name string, t reflect.Type) error {
	t = common.Indirect(t)
	if t == nil {
		return fmt.Errorf("register type %q: nil type", name)
	}

	if name == "" {
		name = common.TypeName(t)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byName[name]; ok && existing != t {
		return fmt.Errorf("type name %q already bound to %s", name, existing)
	}

	r.byName[name] = t

	return nil
}

// RegisterValues registers the types of the given values under their short names.
func (r *TypeRegistry) RegisterValues(values ...any) error {
	for _, v := range values {
		if err := r.Register("", reflect.TypeOf(v)); err != nil {
			return err
		}
	}

	return nil
}

// Lookup resolves a type name. Besides the registered name, the full
// "pkgpath.Name" form is accepted.
func (r *TypeRegistry) Lookup(name string) (reflect.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if t, ok := r.byName[name]; ok {
		return t, true
	}

	for _, t := range r.byName {
		if t.PkgPath()+"."+t.Name() == name {
			return t, true
		}
	}

	return nil, false
}

// Names lists the registered names in sorted order.
func (r *TypeRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.byName))
	for n := range r.byName {
		names = append(names, n)
	}

	slices.Sort(names)

	return names
}
