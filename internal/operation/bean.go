package operation

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"
	"sync"

	"field-assembler/internal/common"
)

// BeanOperations is the immutable set of operations governing one type.
type BeanOperations struct {
	typ          reflect.Type
	assembles    []*AssembleOperation
	disassembles []*DisassembleOperation
}

// NewBeanOperations builds the operations of t. Assemble operations are
// stored stably sorted by Sort.
func NewBeanOperations(t reflect.Type, assembles []*AssembleOperation, disassembles []*DisassembleOperation) *BeanOperations {
	as := slices.Clone(assembles)
	slices.SortStableFunc(as, func(a, b *AssembleOperation) int { return cmp.Compare(a.Sort(), b.Sort()) })

	ds := slices.Clone(disassembles)
	slices.SortStableFunc(ds, func(a, b *DisassembleOperation) int { return cmp.Compare(a.Sort(), b.Sort()) })

	return &BeanOperations{
		typ:          common.Indirect(t),
		assembles:    as,
		disassembles: ds,
	}
}

// Empty returns operations of t that do nothing.
func Empty(t reflect.Type) *BeanOperations {
	return &BeanOperations{typ: common.Indirect(t)}
}

// Type is the governed type with pointers stripped.
func (b *BeanOperations) Type() reflect.Type { return b.typ }

// AssembleOperations returns a copy of the assemble operations in Sort order.
func (b *BeanOperations) AssembleOperations() []*AssembleOperation {
	return slices.Clone(b.assembles)
}

// DisassembleOperations returns a copy of the disassemble operations.
func (b *BeanOperations) DisassembleOperations() []*DisassembleOperation {
	return slices.Clone(b.disassembles)
}

// IsEmpty reports whether there is nothing to execute.
func (b *BeanOperations) IsEmpty() bool {
	return b == nil || (len(b.assembles) == 0 && len(b.disassembles) == 0)
}

func (b *BeanOperations) String() string {
	return fmt.Sprintf("%s{assemble: %d, disassemble: %d}", common.TypeName(b.typ), len(b.assembles), len(b.disassembles))
}

// Parser produces the operations of a type. The catalog asking for them is
// passed along so nested operations can resolve lazily through it.
type Parser interface {
	Parse(t reflect.Type, c *Catalog) (*BeanOperations, error)
}

// ParserFunc adapts a function to Parser.
type ParserFunc func(t reflect.Type, c *Catalog) (*BeanOperations, error)

func (f ParserFunc) Parse(t reflect.Type, c *Catalog) (*BeanOperations, error) { return f(t, c) }

// Catalog caches BeanOperations per type, filling itself lazily from a Parser.
// It is safe for concurrent use.
type Catalog struct {
	parser Parser

	mu  sync.RWMutex
	ops map[reflect.Type]*BeanOperations
}

// NewCatalog creates a catalog. A nil parser resolves unregistered types to
// empty operations.
func NewCatalog(parser Parser) *Catalog {
	return &Catalog{
		parser: parser,
		ops:    make(map[reflect.Type]*BeanOperations),
	}
}

// Resolve returns the operations of t, parsing them on first use.
func (c *Catalog) Resolve(t reflect.Type) (*BeanOperations, error) {
	if t == nil {
		return nil, fmt.Errorf("resolve operations: nil type")
	}

	t = common.Indirect(t)

	c.mu.RLock()
	ops, ok := c.ops[t]
	c.mu.RUnlock()

	if ok {
		return ops, nil
	}

	// parse outside the lock: parsers may resolve other types recursively
	if c.parser == nil {
		ops = Empty(t)
	} else {
		parsed, err := c.parser.Parse(t, c)
		if err != nil {
			return nil, fmt.Errorf("parse operations of %s: %w", common.TypeName(t), err)
		}

		if parsed == nil {
			parsed = Empty(t)
		}

		ops = parsed
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.ops[t]; ok {
		return existing, nil
	}

	c.ops[t] = ops

	return ops, nil
}

// ResolveValue resolves the operations of v's runtime type.
func (c *Catalog) ResolveValue(v any) (*BeanOperations, error) {
	if v == nil {
		return nil, fmt.Errorf("resolve operations: nil value")
	}

	return c.Resolve(reflect.TypeOf(v))
}

// Register replaces the operations of ops.Type().
func (c *Catalog) Register(ops *BeanOperations) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ops[ops.Type()] = ops
}

// Evict drops the cached operations of t.
func (c *Catalog) Evict(t reflect.Type) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.ops, common.Indirect(t))
}

// Clear drops every cached entry.
func (c *Catalog) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.ops)
}

// Len is the number of cached types.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.ops)
}
