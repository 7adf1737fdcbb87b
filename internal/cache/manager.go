package cache

import (
	"fmt"
	"slices"
	"sync"

	"field-assembler/internal/log"
)

// Manager owns named stores, creating each one on first use.
type Manager struct {
	cfg       Config
	overrides map[string]Config

	mu     sync.Mutex
	caches map[string]Cache
}

// NewManager creates a manager using cfg for every name without an override.
func NewManager(cfg Config, overrides map[string]Config) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("cache config: %w", err)
	}

	for name, o := range overrides {
		if err := o.Validate(); err != nil {
			return nil, fmt.Errorf("cache config %q: %w", name, err)
		}
	}

	return &Manager{
		cfg:       cfg,
		overrides: overrides,
		caches:    make(map[string]Cache),
	}, nil
}

// Cache returns the store registered under name, creating it if needed.
func (m *Manager) Cache(name string) Cache {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.caches[name]; ok {
		return c
	}

	cfg, ok := m.overrides[name]
	if !ok {
		cfg = m.cfg
	}

	// configurations were validated by NewManager
	c, err := New(cfg)
	if err != nil {
		panic(fmt.Sprintf("cache %q: %v", name, err))
	}

	m.caches[name] = c
	log.Debug(log.CatCache, "cache created", "name", name, "policy", cfg.Policy.String())

	return c
}

// Remove flushes and forgets the store registered under name.
func (m *Manager) Remove(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.caches[name]; ok {
		c.Flush()
		delete(m.caches, name)
		log.Debug(log.CatCache, "cache removed", "name", name)
	}
}

// Clear flushes and forgets every store.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range m.caches {
		c.Flush()
	}

	clear(m.caches)
}

// Names lists the created stores in sorted order.
func (m *Manager) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, 0, len(m.caches))
	for name := range m.caches {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}
