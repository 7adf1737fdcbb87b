package handler

import (
	"cmp"
	"reflect"
	"slices"

	"field-assembler/internal/operation"
	"field-assembler/internal/property"
)

// Disassemble is the default disassemble handler.
var Disassemble operation.DisassembleHandler = disassemble{}

type disassemble struct{}

// Process reads the key property of target and flattens single objects,
// collections and the values of keyed collections into one sequence of
// instances. Struct values are returned as pointers when addressable and
// skipped otherwise, since writes into a copy would be lost.
func (disassemble) Process(acc property.Accessor, target any, op *operation.DisassembleOperation) ([]any, error) {
	var (
		raw any
		err error
	)

	if nav, ok := acc.(property.Navigator); ok {
		raw, err = nav.Navigate(target, op.Key())
	} else {
		raw, err = acc.Read(target, op.Key())
	}

	if err != nil {
		return nil, err
	}

	return Flatten(raw), nil
}

// Flatten normalizes v into the instances it holds.
func Flatten(v any) []any {
	if v == nil {
		return nil
	}

	return flatten(reflect.ValueOf(v), nil)
}

func flatten(v reflect.Value, out []any) []any {
	switch v.Kind() {
	case reflect.Invalid:
		return out

	case reflect.Interface:
		if v.IsNil() {
			return out
		}

		return flatten(v.Elem(), out)

	case reflect.Pointer:
		if v.IsNil() {
			return out
		}

		switch v.Elem().Kind() {
		case reflect.Slice, reflect.Array, reflect.Pointer, reflect.Interface:
			return flatten(v.Elem(), out)
		default:
			return append(out, v.Interface())
		}

	case reflect.Struct:
		if v.CanAddr() {
			return append(out, v.Addr().Interface())
		}

		return out

	case reflect.Slice, reflect.Array:
		for i := range v.Len() {
			out = flatten(v.Index(i), out)
		}

		return out

	case reflect.Map:
		for _, k := range sortedKeys(v) {
			out = flatten(v.MapIndex(k), out)
		}

		return out

	default:
		return out
	}
}

// sortedKeys orders keys of string, integer and float kinds; other keys keep
// the map's iteration order.
func sortedKeys(m reflect.Value) []reflect.Value {
	keys := m.MapKeys()

	switch m.Type().Key().Kind() {
	case reflect.String:
		slices.SortFunc(keys, func(a, b reflect.Value) int { return cmp.Compare(a.String(), b.String()) })
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		slices.SortFunc(keys, func(a, b reflect.Value) int { return cmp.Compare(a.Int(), b.Int()) })
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		slices.SortFunc(keys, func(a, b reflect.Value) int { return cmp.Compare(a.Uint(), b.Uint()) })
	case reflect.Float32, reflect.Float64:
		slices.SortFunc(keys, func(a, b reflect.Value) int { return cmp.Compare(a.Float(), b.Float()) })
	}

	return keys
}
