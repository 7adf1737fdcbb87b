package mapping

import (
	"fmt"
	"reflect"

	"field-assembler/internal/container"
	"field-assembler/internal/handler"
	"field-assembler/internal/log"
	"field-assembler/internal/operation"
	"field-assembler/internal/strategy"
)

// Parser produces BeanOperations from descriptor files. It implements
// operation.Parser; types without a descriptor parse to empty operations.
type Parser struct {
	types *TypeRegistry
	defs  map[reflect.Type]TypeDef
}

var _ operation.Parser = (*Parser)(nil)

// NewParser validates f against types and indexes its type descriptors.
func NewParser(types *TypeRegistry, f *File) (*Parser, error) {
	if types == nil {
		types = NewTypeRegistry()
	}

	if diags := Validate(f, types); diags.HasErrors() {
		return nil, fmt.Errorf("invalid descriptors: %w", diags.Error())
	}

	p := &Parser{types: types, defs: make(map[reflect.Type]TypeDef, len(f.Types))}

	for _, td := range f.Types {
		t, _ := types.Lookup(td.Type)
		p.defs[t] = td
	}

	return p, nil
}

// Parse builds the operations of t.
func (p *Parser) Parse(t reflect.Type, c *operation.Catalog) (*operation.BeanOperations, error) {
	td, ok := p.defs[t]
	if !ok {
		return operation.Empty(t), nil
	}

	assembles := make([]*operation.AssembleOperation, 0, len(td.Assemble))

	for _, a := range td.Assemble {
		op, err := p.assemble(a)
		if err != nil {
			return nil, fmt.Errorf("%s: assemble %s: %w", td.Type, a.Key, err)
		}

		assembles = append(assembles, op)
	}

	disassembles := make([]*operation.DisassembleOperation, 0, len(td.Disassemble))

	for _, d := range td.Disassemble {
		resolver := operation.DynamicResolver(c)

		if d.Type != "" {
			nested, ok := p.types.Lookup(d.Type)
			if !ok {
				return nil, fmt.Errorf("%s: disassemble %s: unknown type %q", td.Type, d.Key, d.Type)
			}

			resolver = func(any) (*operation.BeanOperations, error) { return c.Resolve(nested) }
		}

		disassembles = append(disassembles, operation.NewDisassemble(d.Key, t, handler.Disassemble, resolver,
			operation.WithGroups(d.Groups...), operation.WithSort(d.Sort)))
	}

	log.Debug(log.CatMapping, "operations parsed", "type", td.Type,
		"assemble", len(assembles), "disassemble", len(disassembles))

	return operation.NewBeanOperations(t, assembles, disassembles), nil
}

func (p *Parser) assemble(a AssembleDef) (*operation.AssembleOperation, error) {
	h, err := handler.ByName(a.Handler)
	if err != nil {
		return nil, err
	}

	if a.Handler == handler.NameManyToMany && a.Separator != "" {
		h = handler.NewManyToMany(a.Separator)
	}

	st, err := strategy.ByName(a.Strategy)
	if err != nil {
		return nil, err
	}

	mappings := make([]operation.Mapping, 0, len(a.Props))
	for _, prop := range a.Props {
		mappings = append(mappings, operation.Mapping{Source: prop.Src, Reference: prop.Ref})
	}

	return operation.NewAssemble(a.Key, a.Container,
		operation.WithGroups(a.Groups...),
		operation.WithSort(a.Sort),
		operation.WithHandler(h),
		operation.WithStrategy(st),
		operation.WithMappings(mappings...),
	), nil
}

// Containers builds the constant containers declared by f.
func Containers(f *File) []container.Container {
	out := make([]container.Container, 0, len(f.Containers))
	for _, def := range f.Containers {
		out = append(out, container.ForMap(def.Namespace, def.Data))
	}

	return out
}
