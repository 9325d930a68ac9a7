package jsonapi

import (
	"fmt"
	"reflect"
)

// Wrapped is a property bag whose keys are mapped by a WrappedSchema.
// It carries no identity of its own.
type Wrapped map[string]any

// NewWrapped returns a shallow copy of bag
func NewWrapped(bag map[string]any) Wrapped {
	w := make(Wrapped, len(bag))
	for k, v := range bag {
		w[k] = v
	}
	return w
}

// Wrapped implements Wrapper
func (w Wrapped) Wrapped() Wrapped {
	return w
}

// Wrapper is implemented by values that expose themselves as a property bag
type Wrapper interface {
	Wrapped() Wrapped
}

// WrappedField maps one bag key to a wire field name
type WrappedField struct {
	Name        string
	Key         string
	Transformer Transformer
}

// Field declares a wrapped field; an empty key defaults to the wire name
func Field(name, key string, opts ...FieldOption) WrappedField {
	o := applyFieldOptions(opts)
	if key == "" {
		key = name
	}
	return WrappedField{Name: name, Key: key, Transformer: o.transformer}
}

// WrappedSchema describes how a property bag is written on the wire
type WrappedSchema struct {
	fields []WrappedField
}

// NewWrappedSchema creates a wrapped schema from its fields
func NewWrappedSchema(fields ...WrappedField) *WrappedSchema {
	return &WrappedSchema{fields: append([]WrappedField(nil), fields...)}
}

// Fields returns the declared wrapped fields in declaration order
func (s *WrappedSchema) Fields() []WrappedField {
	if s == nil {
		return nil
	}
	return append([]WrappedField(nil), s.fields...)
}

// Transform writes the mapped keys of bag as wire fields.
// Absent keys are skipped; a nil schema copies the bag as-is.
func (s *WrappedSchema) Transform(bag Wrapped) (map[string]Value, error) {
	out := make(map[string]Value)
	if s == nil {
		for k, raw := range bag {
			v, err := ValueOf(raw)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			out[k] = v
		}
		return out, nil
	}

	for _, f := range s.fields {
		raw, ok := bag[f.Key]
		if !ok || isAbsent(raw) {
			continue
		}
		if f.Transformer != nil {
			transformed, err := f.Transformer.Serialize(raw)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", f.Name, err)
			}
			raw = transformed
		}
		v, err := ValueOf(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
		out[f.Name] = v
	}
	return out, nil
}

// asBag converts v to a property bag when it is object-like
func asBag(v any) (Wrapped, bool) {
	switch x := v.(type) {
	case Wrapper:
		return x.Wrapped(), true
	case map[string]any:
		return Wrapped(x), true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	bag := make(Wrapped, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		bag[iter.Key().String()] = iter.Value().Interface()
	}
	return bag, true
}

// isDictionary reports whether v is a string-keyed map
func isDictionary(v any) bool {
	if _, ok := v.(Wrapper); ok {
		return false
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String
}

// isList reports whether v is a slice or array other than a byte slice
func isList(v any) (reflect.Value, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice:
		return rv, rv.Type().Elem().Kind() != reflect.Uint8
	case reflect.Array:
		return rv, true
	default:
		return rv, false
	}
}
