package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"field-assembler/internal/operation"
	"field-assembler/internal/property"
)

// ErrUncomparableKey is returned for keys that cannot index a container result.
var ErrUncomparableKey = errors.New("key is not comparable")

const (
	NameOneToOne   = "one-to-one"
	NameOneToMany  = "one-to-many"
	NameManyToMany = "many-to-many"
)

// DefaultSeparator splits string-valued keys of many-to-many operations.
const DefaultSeparator = ","

var (
	// OneToOne maps one key to one value.
	OneToOne operation.AssembleHandler = oneToOne{}
	// OneToMany maps one key to a collection of values.
	OneToMany operation.AssembleHandler = oneToMany{}
	// ManyToMany looks up every key held by the key property.
	ManyToMany operation.AssembleHandler = NewManyToMany(DefaultSeparator)
)

// ByName returns the handler registered under name; "" yields OneToOne.
func ByName(name string) (operation.AssembleHandler, error) {
	switch name {
	case "", NameOneToOne:
		return OneToOne, nil
	case NameOneToMany:
		return OneToMany, nil
	case NameManyToMany:
		return ManyToMany, nil
	default:
		return nil, fmt.Errorf("unknown assemble handler %q", name)
	}
}

// Names lists every known handler name.
func Names() []string {
	return []string{NameOneToOne, NameOneToMany, NameManyToMany}
}

type oneToOne struct{}

func (oneToOne) Name() string { return NameOneToOne }

func (oneToOne) Keys(acc property.Accessor, target any, op *operation.AssembleOperation) ([]any, error) {
	return singleKey(acc, target, op)
}

func (oneToOne) Merge(acc property.Accessor, target any, op *operation.AssembleOperation, keys []any, result map[any]any) error {
	value, found := lookup(result, keys)

	for _, m := range op.Mappings() {
		v := value
		if found && m.Source != "" {
			var err error
			if v, err = acc.Read(value, m.Source); err != nil {
				return fmt.Errorf("%s: %w", op, err)
			}
		}

		if err := op.Strategy().Apply(acc, target, reference(op, m), v, found); err != nil {
			return err
		}
	}

	return nil
}

type oneToMany struct{}

func (oneToMany) Name() string { return NameOneToMany }

func (oneToMany) Keys(acc property.Accessor, target any, op *operation.AssembleOperation) ([]any, error) {
	return singleKey(acc, target, op)
}

func (oneToMany) Merge(acc property.Accessor, target any, op *operation.AssembleOperation, keys []any, result map[any]any) error {
	value, found := lookup(result, keys)

	var elems []any
	if found {
		elems = elements(value)
		if !isCollection(value) {
			value = elems
		}
	}

	for _, m := range op.Mappings() {
		v := value
		if found && m.Source != "" {
			collected, err := collect(acc, elems, m.Source)
			if err != nil {
				return fmt.Errorf("%s: %w", op, err)
			}

			v = collected
		}

		if err := op.Strategy().Apply(acc, target, reference(op, m), v, found); err != nil {
			return err
		}
	}

	return nil
}

// ManyToManyHandler looks up every key held by the key property. Collections
// yield their elements, strings are split on Separator.
type ManyToManyHandler struct {
	Separator string
}

// NewManyToMany creates a many-to-many handler splitting strings on sep.
func NewManyToMany(sep string) *ManyToManyHandler {
	return &ManyToManyHandler{Separator: sep}
}

func (h *ManyToManyHandler) Name() string { return NameManyToMany }

func (h *ManyToManyHandler) Keys(acc property.Accessor, target any, op *operation.AssembleOperation) ([]any, error) {
	raw, err := acc.Read(target, op.Key())
	if err != nil {
		return nil, err
	}

	var keys []any

	switch v := raw.(type) {
	case nil:
		return nil, nil
	case string:
		sep := h.Separator
		if sep == "" {
			sep = DefaultSeparator
		}

		for part := range strings.SplitSeq(v, sep) {
			if part = strings.TrimSpace(part); part != "" {
				keys = append(keys, part)
			}
		}
	default:
		for _, k := range elements(v) {
			if property.IsNil(k) {
				continue
			}

			keys = append(keys, k)
		}
	}

	for _, k := range keys {
		if !isComparable(k) {
			return nil, fmt.Errorf("%s: %w: %T", op, ErrUncomparableKey, k)
		}
	}

	return keys, nil
}

// Merge accumulates the values of keys in key order into a fresh slice.
// Keys without a value are dropped; no match at all counts as absent.
func (h *ManyToManyHandler) Merge(acc property.Accessor, target any, op *operation.AssembleOperation, keys []any, result map[any]any) error {
	matched := make([]any, 0, len(keys))

	for _, k := range keys {
		if v, ok := result[k]; ok {
			matched = append(matched, v)
		}
	}

	found := len(matched) > 0

	for _, m := range op.Mappings() {
		var v any = matched
		if !found {
			v = nil
		} else if m.Source != "" {
			collected, err := collect(acc, matched, m.Source)
			if err != nil {
				return fmt.Errorf("%s: %w", op, err)
			}

			v = collected
		}

		if err := op.Strategy().Apply(acc, target, reference(op, m), v, found); err != nil {
			return err
		}
	}

	return nil
}

func singleKey(acc property.Accessor, target any, op *operation.AssembleOperation) ([]any, error) {
	k, err := acc.Read(target, op.Key())
	if err != nil {
		return nil, err
	}

	if property.IsNil(k) {
		return nil, nil
	}

	if !isComparable(k) {
		return nil, fmt.Errorf("%s: %w: %T", op, ErrUncomparableKey, k)
	}

	return []any{k}, nil
}

func lookup(result map[any]any, keys []any) (any, bool) {
	if len(keys) == 0 {
		return nil, false
	}

	v, ok := result[keys[0]]

	return v, ok
}

func reference(op *operation.AssembleOperation, m operation.Mapping) string {
	if m.Reference == "" {
		return op.Key()
	}

	return m.Reference
}

// collect reads source from every element. Nil elements contribute nil.
func collect(acc property.Accessor, elems []any, source string) ([]any, error) {
	out := make([]any, 0, len(elems))

	for _, e := range elems {
		v, err := acc.Read(e, source)
		if err != nil {
			return nil, err
		}

		out = append(out, v)
	}

	return out, nil
}

// elements returns the elements of a slice or array; any other value is a
// single element.
func elements(v any) []any {
	if v == nil {
		return nil
	}

	if !isCollection(v) {
		return []any{v}
	}

	rv := reflect.ValueOf(v)
	out := make([]any, 0, rv.Len())
	for i := range rv.Len() {
		out = append(out, rv.Index(i).Interface())
	}

	return out
}

func isCollection(v any) bool {
	if v == nil {
		return false
	}

	k := reflect.TypeOf(v).Kind()

	return k == reflect.Slice || k == reflect.Array
}

// isComparable checks the dynamic value, so interface fields holding slices
// or maps are rejected too.
func isComparable(k any) bool {
	return reflect.ValueOf(k).Comparable()
}
