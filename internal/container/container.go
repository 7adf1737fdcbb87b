package container

import (
	"context"
	"errors"
	"reflect"
	"sync"

	"field-assembler/internal/property"
)

// ErrContainerNotFound is returned when no container is registered under a namespace.
var ErrContainerNotFound = errors.New("container not found")

// EmptyNamespace is the namespace of the empty container.
const EmptyNamespace = ""

// Container is a namespaced, batched keyed data source. Implementations must
// be safe for concurrent use.
type Container interface {
	Namespace() string
	// Get returns the values of keys. It never returns a nil map on success;
	// keys without a value are omitted.
	Get(ctx context.Context, keys []any) (map[any]any, error)
}

// Lifecycle is implemented by containers holding resources. The registry
// calls Init when a container is realized and Destroy when it is discarded.
type Lifecycle interface {
	Init(ctx context.Context) error
	Destroy() error
}

// Func loads the values of keys.
type Func func(ctx context.Context, keys []any) (map[any]any, error)

type funcContainer struct {
	namespace string
	fn        Func
}

// ForFunc adapts fn to a Container. A nil result is normalized to an empty map.
func ForFunc(namespace string, fn Func) Container {
	return &funcContainer{namespace: namespace, fn: fn}
}

func (c *funcContainer) Namespace() string { return c.namespace }

func (c *funcContainer) Get(ctx context.Context, keys []any) (map[any]any, error) {
	if len(keys) == 0 {
		return map[any]any{}, nil
	}

	out, err := c.fn(ctx, keys)
	if err != nil {
		return nil, err
	}

	if out == nil {
		out = map[any]any{}
	}

	return out, nil
}

// MapContainer serves a constant map.
type MapContainer[K comparable, V any] struct {
	namespace string
	keyType   reflect.Type

	mu   sync.RWMutex
	data map[K]V
}

// ForMap creates a container over a copy of data. Lookup keys of another
// type than K are coerced to K, so "1" finds the entry stored under 1.
func ForMap[K comparable, V any](namespace string, data map[K]V) *MapContainer[K, V] {
	cp := make(map[K]V, len(data))
	for k, v := range data {
		cp[k] = v
	}

	return &MapContainer[K, V]{
		namespace: namespace,
		keyType:   reflect.TypeFor[K](),
		data:      cp,
	}
}

func (c *MapContainer[K, V]) Namespace() string { return c.namespace }

// Get returns the requested entries only.
func (c *MapContainer[K, V]) Get(_ context.Context, keys []any) (map[any]any, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[any]any, len(keys))

	for _, k := range keys {
		key, ok := c.coerce(k)
		if !ok {
			continue
		}

		if v, found := c.data[key]; found {
			out[k] = v
		}
	}

	return out, nil
}

func (c *MapContainer[K, V]) coerce(k any) (K, bool) {
	if key, ok := k.(K); ok {
		return key, true
	}

	var zero K

	cv, err := property.Convert(k, c.keyType)
	if err != nil {
		return zero, false
	}

	key, ok := cv.Interface().(K)

	return key, ok
}

// Len is the number of entries.
func (c *MapContainer[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.data)
}

func (c *MapContainer[K, V]) Init(context.Context) error { return nil }

// Destroy drops the data; later lookups find nothing.
func (c *MapContainer[K, V]) Destroy() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data = map[K]V{}

	return nil
}

// ForSlice indexes items by keyFn. Later items win on duplicate keys.
func ForSlice[T any, K comparable](namespace string, items []T, keyFn func(T) K) *MapContainer[K, T] {
	data := make(map[K]T, len(items))
	for _, it := range items {
		data[keyFn(it)] = it
	}

	return ForMap(namespace, data)
}

type emptyContainer struct{}

// Empty returns the container of EmptyNamespace. The executor never calls
// it: operations naming it use the target itself as the looked-up value.
func Empty() Container { return emptyContainer{} }

func (emptyContainer) Namespace() string { return EmptyNamespace }

func (emptyContainer) Get(context.Context, []any) (map[any]any, error) {
	return map[any]any{}, nil
}
