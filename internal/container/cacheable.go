package container

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"sync"

	"field-assembler/internal/cache"
	"field-assembler/internal/log"
)

// Cacheable serves keys from a cache and forwards misses to the wrapped
// container in one batched call. Concurrent callers missing the same key
// share one underlying lookup. Keys without a value are not cached.
type Cacheable struct {
	inner Container
	store cache.Cache

	mu       sync.Mutex
	inflight map[any]*call
}

type call struct {
	done  chan struct{}
	value any
	found bool
	err   error
}

// NewCacheable decorates inner with store.
func NewCacheable(inner Container, store cache.Cache) *Cacheable {
	return &Cacheable{
		inner:    inner,
		store:    store,
		inflight: make(map[any]*call),
	}
}

func (c *Cacheable) Namespace() string { return c.inner.Namespace() }

// Unwrap returns the decorated container.
func (c *Cacheable) Unwrap() Container { return c.inner }

func (c *Cacheable) Get(ctx context.Context, keys []any) (map[any]any, error) {
	out := make(map[any]any, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	type waiter struct {
		key any
		c   *call
	}

	var (
		waits  []waiter
		misses []any
		owned  []*call
		seen   = make(map[any]struct{}, len(keys))
	)

	c.mu.Lock()

	for _, k := range keys {
		if !reflect.ValueOf(k).Comparable() {
			log.Debug(log.CatCache, "uncomparable key skipped", "namespace", c.Namespace(), "type", fmt.Sprintf("%T", k))
			continue
		}

		if _, dup := seen[k]; dup {
			continue
		}

		seen[k] = struct{}{}

		if v, ok := c.store.Get(cacheKey(k)); ok {
			out[k] = v
			continue
		}

		if pending, ok := c.inflight[k]; ok {
			waits = append(waits, waiter{key: k, c: pending})
			continue
		}

		owner := &call{done: make(chan struct{})}
		c.inflight[k] = owner
		misses = append(misses, k)
		owned = append(owned, owner)
	}

	c.mu.Unlock()

	log.Debug(log.CatCache, "cache lookup", "namespace", c.Namespace(),
		"hits", len(out), "misses", len(misses), "waiting", len(waits))

	if len(misses) > 0 {
		if err := c.load(ctx, misses, owned, out); err != nil {
			return nil, err
		}
	}

	for _, w := range waits {
		select {
		case <-w.c.done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		if w.c.err != nil {
			return nil, w.c.err
		}

		if w.c.found {
			out[w.key] = w.c.value
		}
	}

	return out, nil
}

// load fetches misses, publishing results to waiters even if the wrapped
// container panics.
func (c *Cacheable) load(ctx context.Context, misses []any, owned []*call, out map[any]any) (err error) {
	var loaded map[any]any

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("container %s panicked: %v", c.Namespace(), r)
		}

		c.mu.Lock()

		for i, k := range misses {
			owner := owned[i]

			if err != nil {
				owner.err = err
			} else if v, ok := loaded[k]; ok {
				owner.value, owner.found = v, true
				c.store.Set(cacheKey(k), v)
				out[k] = v
			}

			delete(c.inflight, k)
			close(owner.done)
		}

		c.mu.Unlock()
	}()

	loaded, err = c.inner.Get(ctx, misses)

	return err
}

// Invalidate drops keys from the cache.
func (c *Cacheable) Invalidate(keys ...any) {
	for _, k := range keys {
		c.store.Delete(cacheKey(k))
	}
}

// Flush drops every cached entry.
func (c *Cacheable) Flush() {
	c.store.Flush()
}

func (c *Cacheable) Init(ctx context.Context) error {
	if lc, ok := c.inner.(Lifecycle); ok {
		return lc.Init(ctx)
	}

	return nil
}

func (c *Cacheable) Destroy() error {
	c.store.Flush()

	if lc, ok := c.inner.(Lifecycle); ok {
		return lc.Destroy()
	}

	return nil
}

// cacheKey encodes a comparable key into a string that is unique per key:
// every level carries its type, strings are quoted and composite values are
// encoded field by field, so 1 and "1" or {"a b", ""} and {"a", "b "} stay apart.
func cacheKey(k any) string {
	var b strings.Builder

	writeKey(&b, reflect.ValueOf(k))

	return b.String()
}

func writeKey(b *strings.Builder, v reflect.Value) {
	if !v.IsValid() {
		b.WriteString("<nil>")
		return
	}

	t := v.Type()
	b.WriteString(t.PkgPath())
	b.WriteByte('.')
	b.WriteString(t.String())
	b.WriteByte('(')

	switch v.Kind() {
	case reflect.String:
		b.WriteString(strconv.Quote(v.String()))
	case reflect.Bool:
		b.WriteString(strconv.FormatBool(v.Bool()))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		b.WriteString(strconv.FormatInt(v.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		b.WriteString(strconv.FormatUint(v.Uint(), 10))
	case reflect.Float32, reflect.Float64:
		b.WriteString(strconv.FormatFloat(v.Float(), 'g', -1, 64))
	case reflect.Complex64, reflect.Complex128:
		b.WriteString(strconv.FormatComplex(v.Complex(), 'g', -1, 128))
	case reflect.Pointer, reflect.Chan, reflect.UnsafePointer, reflect.Slice, reflect.Map, reflect.Func:
		b.WriteString(strconv.FormatUint(uint64(v.Pointer()), 16))
	case reflect.Interface:
		if v.IsNil() {
			b.WriteString("<nil>")
		} else {
			writeKey(b, v.Elem())
		}
	case reflect.Struct:
		for i := range v.NumField() {
			if i > 0 {
				b.WriteByte(',')
			}

			writeKey(b, v.Field(i))
		}
	case reflect.Array:
		for i := range v.Len() {
			if i > 0 {
				b.WriteByte(',')
			}

			writeKey(b, v.Index(i))
		}
	}

	b.WriteByte(')')
}

// CacheProcessor wraps the containers of the given namespaces, or of every
// namespace when none is given, with a Cacheable backed by manager. The cache
// of a namespace is removed when its container is destroyed.
func CacheProcessor(manager *cache.Manager, namespaces ...string) Processor {
	return &cacheProcessor{manager: manager, namespaces: slices.Clone(namespaces)}
}

type cacheProcessor struct {
	BaseProcessor

	manager    *cache.Manager
	namespaces []string
}

func (p *cacheProcessor) applies(ns string) bool {
	return ns != EmptyNamespace && (len(p.namespaces) == 0 || slices.Contains(p.namespaces, ns))
}

func (p *cacheProcessor) Created(def *Definition, c Container) Container {
	if !p.applies(def.Namespace()) {
		return c
	}

	if _, ok := c.(*Cacheable); ok {
		return c
	}

	log.Debug(log.CatCache, "container cached", "namespace", def.Namespace())

	return NewCacheable(c, p.manager.Cache(def.Namespace()))
}

func (p *cacheProcessor) Destroyed(def *Definition, _ Container) {
	if p.applies(def.Namespace()) {
		p.manager.Remove(def.Namespace())
	}
}
