package executor

import (
	"reflect"
)

// Targets normalizes a targets argument into the objects it holds: nil holds
// nothing, slices, arrays and pointers to them hold their non-nil elements,
// anything else is a single object. Struct elements of slices are returned
// as pointers into the slice.
func Targets(targets any) []any {
	if targets == nil {
		return nil
	}

	v := reflect.ValueOf(targets)

	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return nil
		}

		if k := v.Elem().Kind(); k == reflect.Slice || k == reflect.Array {
			return elementsOf(v.Elem())
		}

		return []any{targets}

	case reflect.Slice, reflect.Array:
		return elementsOf(v)

	default:
		return []any{targets}
	}
}

func elementsOf(v reflect.Value) []any {
	out := make([]any, 0, v.Len())

	for i := range v.Len() {
		e := v.Index(i)
		if e.Kind() == reflect.Interface {
			if e.IsNil() {
				continue
			}

			e = e.Elem()
		}

		switch e.Kind() {
		case reflect.Pointer, reflect.Map:
			if e.IsNil() {
				continue
			}
		case reflect.Struct:
			if e.CanAddr() {
				out = append(out, e.Addr().Interface())
				continue
			}
		}

		out = append(out, e.Interface())
	}

	return out
}

type visitKey struct {
	t  reflect.Type
	id uintptr
}

// identity keys pointer and map instances. Other values have no identity and
// are never considered visited.
func identity(v any) (visitKey, bool) {
	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Pointer, reflect.Map:
		return visitKey{t: rv.Type(), id: rv.Pointer()}, true
	default:
		return visitKey{}, false
	}
}

func typeOf(v any) string {
	if v == nil {
		return "<nil>"
	}

	return reflect.TypeOf(v).String()
}
