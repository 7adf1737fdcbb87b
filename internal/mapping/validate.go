package mapping

import (
	"fmt"
	"reflect"
	"slices"

	"field-assembler/internal/container"
	"field-assembler/internal/diagnostic"
	"field-assembler/internal/handler"
	"field-assembler/internal/match"
	"field-assembler/internal/property"
	"field-assembler/internal/strategy"
)

const maxSuggestions = 2

// Validate validates a descriptor file. When types is nil, type names and
// property paths are not checked against Go types.
func Validate(f *File, types *TypeRegistry) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	if f == nil {
		res.AddError("file_is_nil", "descriptor file is nil", "", "")
		return res
	}

	declared := validateContainers(res, f.Containers)

	seenTypes := map[string]struct{}{}

	for i := range f.Types {
		td := &f.Types[i]

		if td.Type == "" {
			res.AddError("type_name_empty", fmt.Sprintf("type #%d has no name", i+1), "", "")
			continue
		}

		if _, dup := seenTypes[td.Type]; dup {
			res.AddError("duplicate_type", fmt.Sprintf("duplicate type %q", td.Type), td.Type, "")
			continue
		}

		seenTypes[td.Type] = struct{}{}

		var rt reflect.Type

		if types != nil {
			t, ok := types.Lookup(td.Type)
			if !ok {
				res.AddErrorWithSuggestions("type_not_found", fmt.Sprintf("type %q is not registered", td.Type), td.Type, "",
					match.Suggest(td.Type, types.Names(), maxSuggestions))
				continue
			}

			rt = t
		}

		for j := range td.Assemble {
			validateAssemble(res, td.Type, rt, &td.Assemble[j], declared)
		}

		for j := range td.Disassemble {
			validateDisassemble(res, td.Type, rt, &td.Disassemble[j], types)
		}

		if len(td.Assemble) == 0 && len(td.Disassemble) == 0 {
			res.AddWarning("type_without_operations", "type declares no operations", td.Type, "")
		}
	}

	return res
}

func validateContainers(res *diagnostic.Diagnostics, defs []ContainerDef) map[string]struct{} {
	declared := map[string]struct{}{}

	for i, c := range defs {
		if c.Namespace == container.EmptyNamespace {
			res.AddError("container_namespace_empty", fmt.Sprintf("container #%d has no namespace", i+1), "", "")
			continue
		}

		if _, dup := declared[c.Namespace]; dup {
			res.AddError("duplicate_container", fmt.Sprintf("duplicate container %q", c.Namespace), "", c.Namespace)
			continue
		}

		declared[c.Namespace] = struct{}{}

		if len(c.Data) == 0 {
			res.AddInfo("container_empty", fmt.Sprintf("container %q has no data", c.Namespace), "", c.Namespace)
		}
	}

	return declared
}

func validateAssemble(res *diagnostic.Diagnostics, typeName string, rt reflect.Type, a *AssembleDef, declared map[string]struct{}) {
	if a.Key == "" {
		res.AddError("assemble_key_empty", "assemble operation has no key", typeName, "")
		return
	}

	validatePath(res, "invalid_key_path", typeName, rt, a.Key)

	if _, err := handler.ByName(a.Handler); err != nil {
		res.AddErrorWithSuggestions("unknown_handler", err.Error(), typeName, a.Key,
			match.Suggest(a.Handler, handler.Names(), maxSuggestions))
	}

	if a.Separator != "" && a.Handler != handler.NameManyToMany {
		res.AddWarning("separator_ignored", "separator only applies to many-to-many handlers", typeName, a.Key)
	}

	if _, err := strategy.ByName(a.Strategy); err != nil {
		res.AddErrorWithSuggestions("unknown_strategy", err.Error(), typeName, a.Key,
			match.Suggest(a.Strategy, strategy.Names(), maxSuggestions))
	}

	if a.Container != container.EmptyNamespace {
		if _, ok := declared[a.Container]; !ok {
			res.AddWarning("container_not_declared",
				fmt.Sprintf("container %q is not declared in the descriptor files; it must be registered by code", a.Container),
				typeName, a.Key)
		}
	}

	for _, p := range a.Props {
		if p.Ref != "" {
			validatePath(res, "invalid_ref_path", typeName, rt, p.Ref)
		}

		if p.Src != "" {
			if _, err := property.ParsePath(p.Src); err != nil {
				res.AddError("invalid_src_path", err.Error(), typeName, p.Src)
			}
		}
	}
}

func validateDisassemble(res *diagnostic.Diagnostics, typeName string, rt reflect.Type, d *DisassembleDef, types *TypeRegistry) {
	if d.Key == "" {
		res.AddError("disassemble_key_empty", "disassemble operation has no key", typeName, "")
		return
	}

	validatePath(res, "invalid_key_path", typeName, rt, d.Key)

	if d.Type != "" && types != nil {
		if _, ok := types.Lookup(d.Type); !ok {
			res.AddErrorWithSuggestions("nested_type_not_found", fmt.Sprintf("nested type %q is not registered", d.Type),
				typeName, d.Key, match.Suggest(d.Type, types.Names(), maxSuggestions))
		}
	}

	if slices.Contains(d.Groups, "") {
		res.AddWarning("empty_group", "empty group name", typeName, d.Key)
	}
}

// validatePath checks path syntax and, when rt is known, that the path
// resolves on a zero value of rt.
func validatePath(res *diagnostic.Diagnostics, code, typeName string, rt reflect.Type, path string) {
	if _, err := property.ParsePath(path); err != nil {
		res.AddError(code, err.Error(), typeName, path)
		return
	}

	if rt == nil {
		return
	}

	if _, err := property.Default().Read(reflect.New(rt).Interface(), path); err != nil {
		res.AddErrorWithSuggestions(code, fmt.Sprintf("path %q does not resolve on %s: %v", path, rt, err),
			typeName, path, match.Suggest(path, fieldNames(rt), maxSuggestions))
	}
}

// fieldNames lists the exported top-level fields of a struct type.
func fieldNames(t reflect.Type) []string {
	if t.Kind() != reflect.Struct {
		return nil
	}

	var names []string

	for i := range t.NumField() {
		if f := t.Field(i); f.IsExported() {
			names = append(names, f.Name)
		}
	}

	return names
}
