package property

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cast"
)

var (
	timeType     = reflect.TypeOf(time.Time{})
	durationType = reflect.TypeOf(time.Duration(0))
)

// Converter coerces values into property types. Scalars go through
// spf13/cast, structs and maps are decoded with mapstructure, slices and
// arrays are converted element by element.
type Converter struct {
	// TagName is the struct tag used when decoding maps into structs.
	TagName string
}

// NewConverter returns a converter decoding structs by their json tags.
func NewConverter() *Converter {
	return &Converter{TagName: "json"}
}

var defaultConverter = NewConverter()

// Convert coerces value into type to with the default converter.
func Convert(value any, to reflect.Type) (reflect.Value, error) {
	return defaultConverter.Convert(value, to)
}

// Convert coerces value into type to. A nil value yields the zero value.
func (c *Converter) Convert(value any, to reflect.Type) (reflect.Value, error) {
	if value == nil {
		return reflect.Zero(to), nil
	}

	v := reflect.ValueOf(value)
	if v.Type().AssignableTo(to) {
		return v, nil
	}

	if v.Kind() == reflect.Pointer && to.Kind() != reflect.Pointer {
		if v.IsNil() {
			return reflect.Zero(to), nil
		}

		return c.Convert(v.Elem().Interface(), to)
	}

	out, err := c.convert(v, to)
	if err != nil {
		var ce *ConversionError
		if errors.As(err, &ce) {
			return reflect.Value{}, err
		}

		return reflect.Value{}, &ConversionError{From: v.Type(), To: to, Err: err}
	}

	return out, nil
}

func (c *Converter) convert(v reflect.Value, to reflect.Type) (reflect.Value, error) {
	value := v.Interface()

	switch to.Kind() {
	case reflect.Pointer:
		inner, err := c.Convert(value, to.Elem())
		if err != nil {
			return reflect.Value{}, err
		}

		p := reflect.New(to.Elem())
		p.Elem().Set(inner)

		return p, nil

	case reflect.Interface:
		if v.Type().Implements(to) {
			out := reflect.New(to).Elem()
			out.Set(v)

			return out, nil
		}

		return reflect.Value{}, fmt.Errorf("%s does not implement %s", v.Type(), to)

	case reflect.String:
		s, err := cast.ToStringE(value)
		if err != nil {
			return reflect.Value{}, err
		}

		return reflect.ValueOf(s).Convert(to), nil

	case reflect.Bool:
		b, err := cast.ToBoolE(value)
		if err != nil {
			return reflect.Value{}, err
		}

		return reflect.ValueOf(b).Convert(to), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if to == durationType {
			d, err := cast.ToDurationE(value)
			if err != nil {
				return reflect.Value{}, err
			}

			return reflect.ValueOf(d), nil
		}

		n, err := cast.ToInt64E(value)
		if err != nil {
			return reflect.Value{}, err
		}

		out := reflect.New(to).Elem()
		if out.OverflowInt(n) {
			return reflect.Value{}, fmt.Errorf("value %d overflows %s", n, to)
		}

		out.SetInt(n)

		return out, nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, err := cast.ToUint64E(value)
		if err != nil {
			return reflect.Value{}, err
		}

		out := reflect.New(to).Elem()
		if out.OverflowUint(n) {
			return reflect.Value{}, fmt.Errorf("value %d overflows %s", n, to)
		}

		out.SetUint(n)

		return out, nil

	case reflect.Float32, reflect.Float64:
		f, err := cast.ToFloat64E(value)
		if err != nil {
			return reflect.Value{}, err
		}

		out := reflect.New(to).Elem()
		if out.OverflowFloat(f) {
			return reflect.Value{}, fmt.Errorf("value %g overflows %s", f, to)
		}

		out.SetFloat(f)

		return out, nil

	case reflect.Slice:
		if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
			return reflect.Value{}, fmt.Errorf("%s is not a collection", v.Type())
		}

		out := reflect.MakeSlice(to, v.Len(), v.Len())
		for i := range v.Len() {
			ev, err := c.Convert(elemInterface(v.Index(i)), to.Elem())
			if err != nil {
				return reflect.Value{}, fmt.Errorf("element %d: %w", i, err)
			}

			out.Index(i).Set(ev)
		}

		return out, nil

	case reflect.Array:
		if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
			return reflect.Value{}, fmt.Errorf("%s is not a collection", v.Type())
		}

		if v.Len() > to.Len() {
			return reflect.Value{}, fmt.Errorf("%d elements do not fit into %s", v.Len(), to)
		}

		out := reflect.New(to).Elem()
		for i := range v.Len() {
			ev, err := c.Convert(elemInterface(v.Index(i)), to.Elem())
			if err != nil {
				return reflect.Value{}, fmt.Errorf("element %d: %w", i, err)
			}

			out.Index(i).Set(ev)
		}

		return out, nil

	case reflect.Struct:
		if to == timeType {
			t, err := cast.ToTimeE(value)
			if err != nil {
				return reflect.Value{}, err
			}

			return reflect.ValueOf(t), nil
		}

		return c.decode(value, to)

	case reflect.Map:
		return c.decode(value, to)

	default:
		if v.Type().ConvertibleTo(to) {
			return v.Convert(to), nil
		}

		return reflect.Value{}, fmt.Errorf("unsupported target kind %s", to.Kind())
	}
}

// decode maps structs and maps onto a fresh value of type to.
func (c *Converter) decode(value any, to reflect.Type) (reflect.Value, error) {
	out := reflect.New(to)

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out.Interface(),
		TagName:          c.TagName,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		),
	})
	if err != nil {
		return reflect.Value{}, err
	}

	if err := dec.Decode(value); err != nil {
		return reflect.Value{}, err
	}

	return out.Elem(), nil
}

func elemInterface(v reflect.Value) any {
	if v.Kind() == reflect.Interface && v.IsNil() {
		return nil
	}

	return v.Interface()
}
