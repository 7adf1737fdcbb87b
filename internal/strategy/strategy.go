// Package strategy implements property mapping strategies: the conflict
// policy applied when a looked-up value is written into a target property.
package strategy

import (
	"fmt"
	"reflect"

	"github.com/imdario/mergo"

	"field-assembler/internal/property"
)

// Strategy writes value into the ref property of target. found is false when
// the lookup produced no value for the target's key.
type Strategy interface {
	Name() string
	Apply(acc property.Accessor, target any, ref string, value any, found bool) error
}

const (
	NameOverwrite        = "overwrite"
	NameOverwriteNotNull = "overwrite-not-null"
	NameReferenceMerge   = "reference-merge"
)

var (
	// Overwrite always assigns; an absent or nil value clears the property.
	Overwrite Strategy = overwrite{}
	// OverwriteNotNull assigns only non-nil values.
	OverwriteNotNull Strategy = overwriteNotNull{}
	// ReferenceMerge fills an unset property, or merges into a struct or map
	// property without overriding what it already holds.
	ReferenceMerge Strategy = referenceMerge{}
)

// Default is the strategy used when an operation does not name one.
var Default = OverwriteNotNull

// ByName returns the strategy registered under name. An empty name yields Default.
func ByName(name string) (Strategy, error) {
	switch name {
	case "":
		return Default, nil
	case NameOverwrite:
		return Overwrite, nil
	case NameOverwriteNotNull:
		return OverwriteNotNull, nil
	case NameReferenceMerge:
		return ReferenceMerge, nil
	default:
		return nil, fmt.Errorf("unknown mapping strategy %q", name)
	}
}

// Names lists every known strategy name.
func Names() []string {
	return []string{NameOverwrite, NameOverwriteNotNull, NameReferenceMerge}
}

type overwrite struct{}

func (overwrite) Name() string { return NameOverwrite }

func (overwrite) Apply(acc property.Accessor, target any, ref string, value any, found bool) error {
	if !found {
		value = nil
	}

	return acc.Write(target, ref, value)
}

type overwriteNotNull struct{}

func (overwriteNotNull) Name() string { return NameOverwriteNotNull }

func (overwriteNotNull) Apply(acc property.Accessor, target any, ref string, value any, found bool) error {
	if !found || property.IsNil(value) {
		return nil
	}

	return acc.Write(target, ref, value)
}

type referenceMerge struct{}

func (referenceMerge) Name() string { return NameReferenceMerge }

func (referenceMerge) Apply(acc property.Accessor, target any, ref string, value any, found bool) error {
	if !found || property.IsNil(value) {
		return nil
	}

	current, err := acc.Read(target, ref)
	if err != nil {
		return err
	}

	if property.IsZero(current) {
		return acc.Write(target, ref, value)
	}

	merged, ok, err := merge(current, value)
	if err != nil || !ok {
		return err
	}

	return acc.Write(target, ref, merged)
}

// merge fills the unset parts of current from value. It reports false when
// current is neither a struct nor a map, leaving the property untouched.
func merge(current, value any) (any, bool, error) {
	cv := reflect.ValueOf(current)
	base := cv.Type()

	isPtr := base.Kind() == reflect.Pointer
	if isPtr {
		base = base.Elem()
	}

	if base.Kind() != reflect.Struct && base.Kind() != reflect.Map {
		return nil, false, nil
	}

	src, err := property.Convert(value, base)
	if err != nil {
		return nil, false, err
	}

	dst := reflect.New(base)
	if isPtr {
		dst.Elem().Set(cv.Elem())
	} else {
		dst.Elem().Set(cv)
	}

	if base.Kind() == reflect.Map {
		// merge into a copy so the caller's map is replaced, not mutated
		cp := reflect.MakeMapWithSize(base, dst.Elem().Len())
		iter := dst.Elem().MapRange()
		for iter.Next() {
			cp.SetMapIndex(iter.Key(), iter.Value())
		}

		dst.Elem().Set(cp)
	}

	if err := mergo.Merge(dst.Interface(), src.Interface()); err != nil {
		return nil, false, fmt.Errorf("merge %s: %w", base, err)
	}

	if isPtr {
		if base.Kind() == reflect.Struct {
			// keep the pointer identity of the existing value
			cv.Elem().Set(dst.Elem())
			return current, true, nil
		}

		return dst.Interface(), true, nil
	}

	return dst.Elem().Interface(), true, nil
}
