package operation

import (
	"fmt"
	"reflect"
	"slices"

	"field-assembler/internal/common"
	"field-assembler/internal/property"
	"field-assembler/internal/strategy"
)

// KeyTriggerOperation is an operation triggered by the value of a key property.
type KeyTriggerOperation interface {
	// Key is the property path of the lookup key on the owning object.
	Key() string
	// Groups returns the sorted, deduplicated tags of the operation.
	Groups() []string
	// Sort is the execution-order hint; lower runs first.
	Sort() int
	// InGroup reports whether the operation is tagged with group.
	InGroup(group string) bool
}

// AssembleHandler extracts lookup keys from a target and merges the
// container result back into it.
type AssembleHandler interface {
	Name() string
	// Keys returns the lookup keys held by target. An empty result means the
	// target has nothing to look up.
	Keys(acc property.Accessor, target any, op *AssembleOperation) ([]any, error)
	// Merge writes the values found for keys in result into target.
	Merge(acc property.Accessor, target any, op *AssembleOperation, keys []any, result map[any]any) error
}

// DisassembleHandler extracts the nested objects held by a target property.
type DisassembleHandler interface {
	Process(acc property.Accessor, target any, op *DisassembleOperation) ([]any, error)
}

// Mapping copies the Source property of a looked-up value into the
// Reference property of the target. An empty Source stands for the whole
// value, an empty Reference for the key property itself.
type Mapping struct {
	Source    string
	Reference string
}

// String returns "source->reference".
func (m Mapping) String() string {
	return fmt.Sprintf("%s->%s", m.Source, m.Reference)
}

type base struct {
	key    string
	groups []string
	sort   int
}

func (b *base) Key() string { return b.key }

func (b *base) Groups() []string { return slices.Clone(b.groups) }

func (b *base) Sort() int { return b.sort }

func (b *base) InGroup(group string) bool {
	_, found := slices.BinarySearch(b.groups, group)
	return found
}

type settings struct {
	groups   []string
	sort     int
	mappings []Mapping
	strategy strategy.Strategy
	handler  AssembleHandler
}

// Option configures an operation at construction time.
type Option func(*settings)

// WithGroups tags the operation.
func WithGroups(groups ...string) Option {
	return func(s *settings) { s.groups = append(s.groups, groups...) }
}

// WithSort sets the execution-order hint.
func WithSort(sort int) Option {
	return func(s *settings) { s.sort = sort }
}

// WithMappings sets the property mappings of an assemble operation.
func WithMappings(mappings ...Mapping) Option {
	return func(s *settings) { s.mappings = append(s.mappings, mappings...) }
}

// WithRef is shorthand for a single mapping of the whole value onto ref.
func WithRef(ref string) Option {
	return WithMappings(Mapping{Reference: ref})
}

// WithStrategy sets the property mapping strategy of an assemble operation.
func WithStrategy(st strategy.Strategy) Option {
	return func(s *settings) { s.strategy = st }
}

// WithHandler sets the cardinality handler of an assemble operation.
func WithHandler(h AssembleHandler) Option {
	return func(s *settings) { s.handler = h }
}

func newSettings(opts []Option) settings {
	var s settings
	for _, o := range opts {
		o(&s)
	}

	groups := slices.Clone(s.groups)
	slices.Sort(groups)
	s.groups = slices.Compact(groups)

	return s
}

// AssembleOperation populates target properties from a container lookup.
type AssembleOperation struct {
	base
	namespace string
	mappings  []Mapping
	strategy  strategy.Strategy
	handler   AssembleHandler
}

// NewAssemble creates an assemble operation reading its key from key and
// looking it up in the container registered under namespace.
func NewAssemble(key, namespace string, opts ...Option) *AssembleOperation {
	s := newSettings(opts)

	mappings := slices.Clone(s.mappings)
	if len(mappings) == 0 {
		mappings = []Mapping{{}}
	}

	st := s.strategy
	if st == nil {
		st = strategy.Default
	}

	return &AssembleOperation{
		base:      base{key: key, groups: s.groups, sort: s.sort},
		namespace: namespace,
		mappings:  mappings,
		strategy:  st,
		handler:   s.handler,
	}
}

// Namespace is the container the operation looks keys up in.
func (o *AssembleOperation) Namespace() string { return o.namespace }

// Mappings returns the property mappings; never empty.
func (o *AssembleOperation) Mappings() []Mapping { return slices.Clone(o.mappings) }

// Strategy is the property mapping strategy.
func (o *AssembleOperation) Strategy() strategy.Strategy { return o.strategy }

// Handler is the cardinality handler, or nil when the executor default applies.
func (o *AssembleOperation) Handler() AssembleHandler { return o.handler }

func (o *AssembleOperation) String() string {
	return fmt.Sprintf("assemble(%s <- %s %v)", o.key, o.namespace, o.mappings)
}

// Resolver returns the operations governing a nested instance.
type Resolver func(instance any) (*BeanOperations, error)

// FixedResolver always resolves to ops, whatever the runtime type.
func FixedResolver(ops *BeanOperations) Resolver {
	return func(any) (*BeanOperations, error) { return ops, nil }
}

// DynamicResolver resolves by the runtime type of each instance.
func DynamicResolver(c *Catalog) Resolver {
	return c.ResolveValue
}

// DisassembleOperation expands the nested objects held by a property.
type DisassembleOperation struct {
	base
	sourceType reflect.Type
	handler    DisassembleHandler
	resolver   Resolver
}

// NewDisassemble creates a disassemble operation for the key property of
// sourceType. Nested instances are resolved with resolver.
func NewDisassemble(key string, sourceType reflect.Type, h DisassembleHandler, resolver Resolver, opts ...Option) *DisassembleOperation {
	s := newSettings(opts)

	return &DisassembleOperation{
		base:       base{key: key, groups: s.groups, sort: s.sort},
		sourceType: common.Indirect(sourceType),
		handler:    h,
		resolver:   resolver,
	}
}

// SourceType is the static type owning the nested property.
func (o *DisassembleOperation) SourceType() reflect.Type { return o.sourceType }

// Handler extracts the nested instances.
func (o *DisassembleOperation) Handler() DisassembleHandler { return o.handler }

// InternalBeanOperations resolves the operations governing instance.
func (o *DisassembleOperation) InternalBeanOperations(instance any) (*BeanOperations, error) {
	if o.resolver == nil {
		return nil, fmt.Errorf("disassemble %s: no resolver", o.key)
	}

	return o.resolver(instance)
}

func (o *DisassembleOperation) String() string {
	return fmt.Sprintf("disassemble(%s)", o.key)
}
