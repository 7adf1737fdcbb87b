package container

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/hashicorp/go-multierror"

	"field-assembler/internal/log"
)

// errDestroyed is returned by the definition of a replaced or unregistered
// namespace.
var errDestroyed = fmt.Errorf("%w: definition destroyed", ErrContainerNotFound)

// Factory creates the container of a definition.
type Factory func(ctx context.Context) (Container, error)

// Processor observes registry events. Processors run in registration order
// and may decorate what they are handed.
type Processor interface {
	// Registered is called before def becomes active; old is the definition
	// it replaces, or nil.
	Registered(old, def *Definition) *Definition
	// Created is called when def realizes its container.
	Created(def *Definition, c Container) Container
	// Destroyed is called after a realized container was discarded.
	Destroyed(def *Definition, c Container)
}

// BaseProcessor implements Processor with no-ops; embed it to override
// a subset of the hooks.
type BaseProcessor struct{}

func (BaseProcessor) Registered(_, def *Definition) *Definition { return def }

func (BaseProcessor) Created(_ *Definition, c Container) Container { return c }

func (BaseProcessor) Destroyed(*Definition, Container) {}

// Definition is the lazy factory and realized singleton of one namespace.
type Definition struct {
	namespace string
	factory   Factory

	mu        sync.Mutex
	instance  Container
	destroyed bool
	created   func(*Definition, Container) Container
	onDestroy func(*Definition, Container)
}

// NewDefinition creates a definition realized by factory on first use.
func NewDefinition(namespace string, factory Factory) *Definition {
	return &Definition{namespace: namespace, factory: factory}
}

// Of wraps an existing container.
func Of(c Container) *Definition {
	return NewDefinition(c.Namespace(), func(context.Context) (Container, error) { return c, nil })
}

// Namespace of the defined container.
func (d *Definition) Namespace() string { return d.namespace }

// Realized reports whether the container was created.
func (d *Definition) Realized() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.instance != nil
}

// Container realizes the container once and returns it.
func (d *Definition) Container(ctx context.Context) (Container, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.destroyed {
		return nil, fmt.Errorf("%w: %s", errDestroyed, d.namespace)
	}

	if d.instance != nil {
		return d.instance, nil
	}

	c, err := d.factory(ctx)
	if err != nil {
		return nil, fmt.Errorf("create container %s: %w", d.namespace, err)
	}

	if c == nil {
		return nil, fmt.Errorf("create container %s: factory returned nil", d.namespace)
	}

	if lc, ok := c.(Lifecycle); ok {
		if err := lc.Init(ctx); err != nil {
			return nil, fmt.Errorf("init container %s: %w", d.namespace, err)
		}
	}

	if d.created != nil {
		c = d.created(d, c)
	}

	d.instance = c
	log.Debug(log.CatContainer, "container created", "namespace", d.namespace)

	return c, nil
}

// Destroy discards the realized container. Calls already running against it
// finish normally.
func (d *Definition) Destroy() error {
	d.mu.Lock()
	c := d.instance
	d.instance = nil
	d.destroyed = true
	d.mu.Unlock()

	if c == nil {
		return nil
	}

	var err error
	if lc, ok := c.(Lifecycle); ok {
		err = lc.Destroy()
	}

	if d.onDestroy != nil {
		d.onDestroy(d, c)
	}

	log.Debug(log.CatContainer, "container destroyed", "namespace", d.namespace)

	if err != nil {
		return fmt.Errorf("destroy container %s: %w", d.namespace, err)
	}

	return nil
}

// Registry maps namespaces to container definitions, one active definition
// per namespace. It is safe for concurrent use.
type Registry struct {
	processors []Processor

	mu   sync.RWMutex
	defs map[string]*Definition
}

// NewRegistry creates a registry applying processors in order.
func NewRegistry(processors ...Processor) *Registry {
	return &Registry{
		processors: slices.Clone(processors),
		defs:       make(map[string]*Definition),
	}
}

// Register registers a container instance.
func (r *Registry) Register(c Container) *Definition {
	return r.RegisterDefinition(Of(c))
}

// RegisterFactory registers a container created lazily by f.
func (r *Registry) RegisterFactory(namespace string, f Factory) *Definition {
	return r.RegisterDefinition(NewDefinition(namespace, f))
}

// RegisterDefinition makes def the active definition of its namespace and
// returns the definition actually registered. A previous definition is
// replaced and its realized container destroyed.
func (r *Registry) RegisterDefinition(def *Definition) *Definition {
	r.mu.Lock()

	old := r.defs[def.Namespace()]
	for _, p := range r.processors {
		def = p.Registered(old, def)
	}

	def.mu.Lock()
	def.created = r.created
	def.onDestroy = r.destroyed
	def.mu.Unlock()

	r.defs[def.Namespace()] = def
	r.mu.Unlock()

	if old != nil && old != def {
		log.Info(log.CatRegistry, "container replaced", "namespace", def.Namespace())

		if err := old.Destroy(); err != nil {
			log.Warn(log.CatRegistry, "destroy replaced container", "namespace", def.Namespace(), "error", err)
		}
	} else {
		log.Info(log.CatRegistry, "container registered", "namespace", def.Namespace())
	}

	return def
}

func (r *Registry) created(def *Definition, c Container) Container {
	for _, p := range r.processors {
		c = p.Created(def, c)
	}

	return c
}

func (r *Registry) destroyed(def *Definition, c Container) {
	for _, p := range r.processors {
		p.Destroyed(def, c)
	}
}

// Container returns the container registered under namespace.
func (r *Registry) Container(ctx context.Context, namespace string) (Container, error) {
	r.mu.RLock()
	def, ok := r.defs[namespace]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrContainerNotFound, namespace)
	}

	return r.realize(ctx, def)
}

// realize returns the container of def. When def was replaced after it was
// looked up, the active definition of its namespace is used instead.
func (r *Registry) realize(ctx context.Context, def *Definition) (Container, error) {
	c, err := def.Container(ctx)
	if errors.Is(err, errDestroyed) {
		if current, ok := r.Definition(def.Namespace()); ok && current != def {
			return current.Container(ctx)
		}
	}

	return c, err
}

// Definition returns the active definition of namespace.
func (r *Registry) Definition(namespace string) (*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.defs[namespace]

	return def, ok
}

// Contains reports whether namespace is registered.
func (r *Registry) Contains(namespace string) bool {
	_, ok := r.Definition(namespace)
	return ok
}

// Namespaces lists the registered namespaces in sorted order.
func (r *Registry) Namespaces() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return sortedNamespaces(r.defs)
}

// Unregister removes and destroys the definition of namespace.
func (r *Registry) Unregister(namespace string) (bool, error) {
	r.mu.Lock()
	def, ok := r.defs[namespace]
	delete(r.defs, namespace)
	r.mu.Unlock()

	if !ok {
		return false, nil
	}

	log.Info(log.CatRegistry, "container unregistered", "namespace", namespace)

	return true, def.Destroy()
}

// Destroy unregisters every definition, destroying realized containers.
func (r *Registry) Destroy() error {
	r.mu.Lock()
	defs := r.defs
	r.defs = make(map[string]*Definition)
	r.mu.Unlock()

	var result *multierror.Error

	for _, ns := range sortedNamespaces(defs) {
		if err := defs[ns].Destroy(); err != nil {
			result = multierror.Append(result, err)
		}
	}

	return result.ErrorOrNil()
}

func sortedNamespaces(defs map[string]*Definition) []string {
	out := make([]string, 0, len(defs))
	for ns := range defs {
		out = append(out, ns)
	}

	slices.Sort(out)

	return out
}

// IsNotFound reports whether err was caused by a missing container.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrContainerNotFound)
}
