package property

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrPropertyNotFound is returned when a property does not exist on the target.
	ErrPropertyNotFound = errors.New("property not found")
	// ErrNotWritable is returned when a property exists but cannot be assigned.
	ErrNotWritable = errors.New("property not writable")
	// ErrConversion is matched by every *ConversionError.
	ErrConversion = errors.New("conversion failed")
)

// Accessor reads and writes properties addressed by a path.
type Accessor interface {
	Read(target any, path string) (any, error)
	Write(target any, path string, value any) error
}

// Navigator is implemented by accessors able to step into a property while
// keeping it addressable, so writes through struct-valued fields land on the
// original object instead of a copy.
type Navigator interface {
	Navigate(target any, name string) (any, error)
}

// Decorator wraps an Accessor with extra behavior.
type Decorator func(Accessor) Accessor

// Chain applies decorators to base in order; the last decorator is outermost.
func Chain(base Accessor, decorators ...Decorator) Accessor {
	acc := base
	for _, d := range decorators {
		acc = d(acc)
	}

	return acc
}

// Default returns the reflective accessor with dot-path support.
func Default() Accessor {
	return Chain(NewReflective(NewConverter()), Paths)
}

// ConversionError describes a value that could not be coerced into a property type.
type ConversionError struct {
	From reflect.Type
	To   reflect.Type
	Err  error
}

func (e *ConversionError) Error() string {
	from := "<nil>"
	if e.From != nil {
		from = e.From.String()
	}

	if e.Err == nil {
		return fmt.Sprintf("cannot convert %s to %s", from, e.To)
	}

	return fmt.Sprintf("cannot convert %s to %s: %v", from, e.To, e.Err)
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *ConversionError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrConversion}
	}

	return []error{ErrConversion, e.Err}
}

// IsNil reports whether v is nil or a nil pointer, map, slice, interface, func or chan.
func IsNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}

// IsZero reports whether v is nil or the zero value of its type.
func IsZero(v any) bool {
	if v == nil {
		return true
	}

	return reflect.ValueOf(v).IsZero()
}
