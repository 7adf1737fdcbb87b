package property

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// Reflective resolves single-segment property names with reflection.
// Field lookups are memoized per (type, name).
type Reflective struct {
	conv   *Converter
	fields sync.Map // fieldKey -> fieldMatch
}

type fieldKey struct {
	t    reflect.Type
	name string
}

type fieldMatch struct {
	index []int
	found bool
}

// NewReflective creates a reflective accessor using conv for write coercion.
// A nil conv falls back to NewConverter().
func NewReflective(conv *Converter) *Reflective {
	if conv == nil {
		conv = NewConverter()
	}

	return &Reflective{conv: conv}
}

// Read returns the value of the named property. A nil target, a nil
// embedded pointer on the way to a promoted field, or a missing map key read
// as nil without error.
func (r *Reflective) Read(target any, name string) (any, error) {
	v, err := r.lookup(target, name)
	if err != nil || !v.IsValid() {
		return nil, err
	}

	if !v.CanInterface() {
		return nil, fmt.Errorf("%w: %s is unexported", ErrPropertyNotFound, name)
	}

	return v.Interface(), nil
}

// Navigate behaves like Read, but returns a pointer to struct-valued fields
// when they are addressable.
func (r *Reflective) Navigate(target any, name string) (any, error) {
	v, err := r.lookup(target, name)
	if err != nil || !v.IsValid() {
		return nil, err
	}

	if v.Kind() == reflect.Struct && v.CanAddr() {
		return v.Addr().Interface(), nil
	}

	return v.Interface(), nil
}

// Write assigns value to the named property, coercing it to the property type.
func (r *Reflective) Write(target any, name string, value any) error {
	root := indirect(reflect.ValueOf(target))
	if !root.IsValid() {
		return fmt.Errorf("%w: %s on nil target", ErrNotWritable, name)
	}

	switch root.Kind() {
	case reflect.Struct:
		idx, ok := r.fieldIndex(root.Type(), name)
		if !ok {
			return fmt.Errorf("%w: %s on %s", ErrPropertyNotFound, name, root.Type())
		}

		fv, err := root.FieldByIndexErr(idx)
		if err != nil {
			return fmt.Errorf("%w: %s on %s: %v", ErrNotWritable, name, root.Type(), err)
		}

		if !fv.CanSet() {
			return fmt.Errorf("%w: %s on %s", ErrNotWritable, name, root.Type())
		}

		cv, err := r.conv.Convert(value, fv.Type())
		if err != nil {
			return err
		}

		fv.Set(cv)

		return nil

	case reflect.Map:
		if root.Type().Key().Kind() != reflect.String {
			return fmt.Errorf("%w: %s on %s (map key is not a string)", ErrPropertyNotFound, name, root.Type())
		}

		if root.IsNil() {
			return fmt.Errorf("%w: %s on nil map", ErrNotWritable, name)
		}

		cv, err := r.conv.Convert(value, root.Type().Elem())
		if err != nil {
			return err
		}

		root.SetMapIndex(reflect.ValueOf(name).Convert(root.Type().Key()), cv)

		return nil

	default:
		return fmt.Errorf("%w: %s on %s", ErrPropertyNotFound, name, root.Type())
	}
}

func (r *Reflective) lookup(target any, name string) (reflect.Value, error) {
	root := indirect(reflect.ValueOf(target))
	if !root.IsValid() {
		return reflect.Value{}, nil
	}

	switch root.Kind() {
	case reflect.Struct:
		idx, ok := r.fieldIndex(root.Type(), name)
		if !ok {
			return reflect.Value{}, fmt.Errorf("%w: %s on %s", ErrPropertyNotFound, name, root.Type())
		}

		fv, err := root.FieldByIndexErr(idx)
		if err != nil {
			// nil embedded pointer
			return reflect.Value{}, nil
		}

		return fv, nil

	case reflect.Map:
		if root.Type().Key().Kind() != reflect.String {
			return reflect.Value{}, fmt.Errorf("%w: %s on %s (map key is not a string)", ErrPropertyNotFound, name, root.Type())
		}

		mv := root.MapIndex(reflect.ValueOf(name).Convert(root.Type().Key()))
		if !mv.IsValid() {
			return reflect.Value{}, nil
		}

		return mv, nil

	default:
		return reflect.Value{}, fmt.Errorf("%w: %s on %s", ErrPropertyNotFound, name, root.Type())
	}
}

// fieldIndex matches name against exported fields: exact name, json tag name,
// then case-insensitive name.
func (r *Reflective) fieldIndex(t reflect.Type, name string) ([]int, bool) {
	key := fieldKey{t: t, name: name}
	if cached, ok := r.fields.Load(key); ok {
		m := cached.(fieldMatch)
		return m.index, m.found
	}

	m := matchField(t, name)
	r.fields.Store(key, m)

	return m.index, m.found
}

func matchField(t reflect.Type, name string) fieldMatch {
	fields := reflect.VisibleFields(t)

	// 1) exact name
	for _, f := range fields {
		if f.IsExported() && f.Name == name {
			return fieldMatch{index: f.Index, found: true}
		}
	}

	// 2) json tag name
	for _, f := range fields {
		if f.IsExported() && jsonTagName(f) == name {
			return fieldMatch{index: f.Index, found: true}
		}
	}

	// 3) case-insensitive
	for _, f := range fields {
		if f.IsExported() && !f.Anonymous && strings.EqualFold(f.Name, name) {
			return fieldMatch{index: f.Index, found: true}
		}
	}

	return fieldMatch{}
}

func jsonTagName(f reflect.StructField) string {
	tag := f.Tag.Get("json")
	if tag == "" || tag == "-" {
		return ""
	}
	// trim options
	if idx := strings.IndexByte(tag, ','); idx >= 0 {
		tag = tag[:idx]
	}

	return tag
}

// indirect follows pointers and interfaces. It returns an invalid value when
// it meets a nil.
func indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}

		v = v.Elem()
	}

	return v
}
