package jsonapi

import (
	"encoding"
	"encoding/json"
	"fmt"
	"reflect"
	"time"
)

// ValueKind discriminates the variants of a wire Value
type ValueKind uint8

const (
	// ValueNull is an explicit JSON null
	ValueNull ValueKind = iota
	// ValueScalar is a string, number, boolean or any self-marshaling value
	ValueScalar
	// ValueObject is a key/value object
	ValueObject
	// ValueArray is an ordered list of values
	ValueArray
)

// String returns the string representation of the value kind
func (k ValueKind) String() string {
	switch k {
	case ValueNull:
		return "null"
	case ValueScalar:
		return "scalar"
	case ValueObject:
		return "object"
	case ValueArray:
		return "array"
	default:
		return "unknown"
	}
}

// Value is an attribute or meta value as it appears on the wire
type Value struct {
	kind   ValueKind
	scalar any
	object map[string]Value
	array  []Value
}

// Null returns the null value
func Null() Value {
	return Value{kind: ValueNull}
}

// Scalar wraps a scalar Go value
func Scalar(v any) Value {
	if v == nil {
		return Null()
	}
	return Value{kind: ValueScalar, scalar: v}
}

// Object builds an object value from its fields
func Object(fields map[string]Value) Value {
	if fields == nil {
		fields = map[string]Value{}
	}
	return Value{kind: ValueObject, object: fields}
}

// Array builds an array value from its items
func Array(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: ValueArray, array: items}
}

// Kind returns the variant held by the value
func (v Value) Kind() ValueKind {
	return v.kind
}

// IsNull reports whether the value is null
func (v Value) IsNull() bool {
	return v.kind == ValueNull
}

// Raw returns the scalar held by a scalar value, nil otherwise
func (v Value) Raw() any {
	return v.scalar
}

// Fields returns the fields of an object value, nil otherwise
func (v Value) Fields() map[string]Value {
	return v.object
}

// Items returns the items of an array value, nil otherwise
func (v Value) Items() []Value {
	return v.array
}

// Interface converts the value back to plain Go values: map[string]any, []any or the scalar
func (v Value) Interface() any {
	switch v.kind {
	case ValueScalar:
		return v.scalar
	case ValueObject:
		out := make(map[string]any, len(v.object))
		for k, f := range v.object {
			out[k] = f.Interface()
		}
		return out
	case ValueArray:
		out := make([]any, len(v.array))
		for i, item := range v.array {
			out[i] = item.Interface()
		}
		return out
	default:
		return nil
	}
}

// MarshalJSON implements json.Marshaler
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case ValueScalar:
		return json.Marshal(v.scalar)
	case ValueObject:
		return json.Marshal(v.object)
	case ValueArray:
		return json.Marshal(v.array)
	default:
		return []byte("null"), nil
	}
}

var (
	jsonMarshalerType = reflect.TypeOf((*json.Marshaler)(nil)).Elem()
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
)

// ValueOf normalises a Go value into its wire variant.
// Maps with string keys become objects, slices and arrays become arrays
// ([]byte stays a scalar), nil pointers, maps and slices become null.
func ValueOf(in any) (Value, error) {
	switch x := in.(type) {
	case nil:
		return Null(), nil
	case Value:
		return x, nil
	case string, bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, float32, float64,
		json.Number, time.Time, []byte:
		return Scalar(x), nil
	case Wrapped:
		return valueOfBag(x)
	case map[string]any:
		return valueOfBag(x)
	case []any:
		items := make([]Value, len(x))
		for i, item := range x {
			v, err := ValueOf(item)
			if err != nil {
				return Value{}, fmt.Errorf("[%d]: %w", i, err)
			}
			items[i] = v
		}
		return Array(items...), nil
	}

	rv := reflect.ValueOf(in)
	rt := rv.Type()
	if rt.Implements(jsonMarshalerType) || rt.Implements(textMarshalerType) {
		if isNilValue(rv) {
			return Null(), nil
		}
		return Scalar(in), nil
	}

	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null(), nil
		}
		return ValueOf(rv.Elem().Interface())
	case reflect.Map:
		if rt.Key().Kind() != reflect.String {
			return Value{}, fmt.Errorf("%w: map key type %s", ErrInvalidValue, rt.Key())
		}
		if rv.IsNil() {
			return Null(), nil
		}
		fields := make(map[string]Value, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			key := iter.Key().String()
			v, err := ValueOf(iter.Value().Interface())
			if err != nil {
				return Value{}, fmt.Errorf("%s: %w", key, err)
			}
			fields[key] = v
		}
		return Object(fields), nil
	case reflect.Slice:
		if rv.IsNil() {
			return Null(), nil
		}
		if rt.Elem().Kind() == reflect.Uint8 {
			return Scalar(in), nil
		}
		return valueOfList(rv)
	case reflect.Array:
		return valueOfList(rv)
	case reflect.Func, reflect.Chan, reflect.UnsafePointer, reflect.Complex64, reflect.Complex128:
		return Value{}, fmt.Errorf("%w: %s", ErrInvalidValue, rt)
	default:
		return Scalar(in), nil
	}
}

func valueOfBag(bag map[string]any) (Value, error) {
	if bag == nil {
		return Null(), nil
	}
	fields := make(map[string]Value, len(bag))
	for k, item := range bag {
		v, err := ValueOf(item)
		if err != nil {
			return Value{}, fmt.Errorf("%s: %w", k, err)
		}
		fields[k] = v
	}
	return Object(fields), nil
}

func valueOfList(rv reflect.Value) (Value, error) {
	items := make([]Value, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		v, err := ValueOf(rv.Index(i).Interface())
		if err != nil {
			return Value{}, fmt.Errorf("[%d]: %w", i, err)
		}
		items[i] = v
	}
	return Array(items...), nil
}

// isAbsent reports whether an accessor result means "field not present"
func isAbsent(v any) bool {
	if v == nil {
		return true
	}
	return isNilValue(reflect.ValueOf(v))
}

func isNilValue(rv reflect.Value) bool {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
