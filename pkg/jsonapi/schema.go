package jsonapi

import (
	"fmt"
	"reflect"
)

// Kind is the kind of a field mapping declaration
type Kind uint8

const (
	// KindAttribute is a scalar or structured value written under attributes
	KindAttribute Kind = iota
	// KindNested is an embedded wrapped value written under attributes
	KindNested
	// KindRelationship is a reference to other resources
	KindRelationship
	// KindMeta is a value written under the resource meta
	KindMeta

	kindCount
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindAttribute:
		return "attribute"
	case KindNested:
		return "nested"
	case KindRelationship:
		return "relationship"
	case KindMeta:
		return "meta"
	default:
		return "unknown"
	}
}

// ParseKind converts a string to a Kind
func ParseKind(s string) (Kind, error) {
	switch s {
	case "attribute":
		return KindAttribute, nil
	case "nested":
		return KindNested, nil
	case "relationship":
		return KindRelationship, nil
	case "meta":
		return KindMeta, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownKind, s)
	}
}

// FieldMapping is one declared wire field of a model type
type FieldMapping struct {
	// Name is the wire field name
	Name string
	Kind Kind
	// Target is the related model type of a relationship, nil to infer it
	Target reflect.Type
	// Transformer converts attribute and meta values, may be nil
	Transformer Transformer
	// Wrapped maps nested and meta property bags, may be nil
	Wrapped *WrappedSchema

	get      func(any) any
	relation func(any) Relation
}

// Value reads the field from owner
func (m FieldMapping) Value(owner any) any {
	if m.get == nil {
		return nil
	}
	return m.get(owner)
}

// Relation reads the relationship from owner
func (m FieldMapping) Relation(owner any) Relation {
	if m.relation == nil {
		return nil
	}
	return m.relation(owner)
}

func (m FieldMapping) adapt(upcast func(any) any) FieldMapping {
	if upcast == nil {
		return m
	}
	if get := m.get; get != nil {
		m.get = func(v any) any { return get(upcast(v)) }
	}
	if rel := m.relation; rel != nil {
		m.relation = func(v any) Relation { return rel(upcast(v)) }
	}
	return m
}

// FieldOption configures a field declaration
type FieldOption func(*fieldOptions)

type fieldOptions struct {
	transformer Transformer
	wrapped     *WrappedSchema
	target      reflect.Type
}

func applyFieldOptions(opts []FieldOption) fieldOptions {
	var o fieldOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithTransformer attaches a value transformer
func WithTransformer(t Transformer) FieldOption {
	return func(o *fieldOptions) {
		o.transformer = t
	}
}

// WithWrapped maps a meta value through a wrapped schema
func WithWrapped(ws *WrappedSchema) FieldOption {
	return func(o *fieldOptions) {
		o.wrapped = ws
	}
}

// RelatesTo sets the related model type whose discriminator identifies related resources
func RelatesTo(t reflect.Type) FieldOption {
	return func(o *fieldOptions) {
		o.target = t
	}
}

// TypeOf returns the reflect.Type of T, including interface types
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Registrable is implemented by schemas that can be added to a Registry
type Registrable interface {
	definition() (*definition, error)
}

type definition struct {
	model  reflect.Type
	name   string
	fields []FieldMapping
	parent *definition
	upcast func(any) any
}

// resolve flattens the inheritance chain, base mappings first
func (d *definition) resolve() []FieldMapping {
	var out []FieldMapping
	if d.parent != nil {
		for _, m := range d.parent.resolve() {
			out = append(out, m.adapt(d.upcast))
		}
	}
	return append(out, d.fields...)
}

// Schema is the statically declared field mapping table of model type T
type Schema[T Resource] struct {
	def  *definition
	seen map[string]struct{}
	errs []error
}

// NewSchema starts the schema of model type T with the given type discriminator.
// Every schema extends the base resource schema carrying the timestamps attribute.
func NewSchema[T Resource](typeName string) *Schema[T] {
	return &Schema[T]{
		def: &definition{
			model:  TypeOf[T](),
			name:   typeName,
			parent: baseSchema.def,
		},
		seen: make(map[string]struct{}),
	}
}

// Extends makes child inherit every mapping of parent; upcast converts a child model to its parent
func Extends[T, P Resource](child *Schema[T], parent *Schema[P], upcast func(T) P) *Schema[T] {
	child.def.parent = parent.def
	child.def.upcast = func(v any) any { return upcast(v.(T)) }
	return child
}

// Name returns the type discriminator
func (s *Schema[T]) Name() string {
	return s.def.name
}

// Attribute declares a scalar, list or dictionary attribute
func (s *Schema[T]) Attribute(name string, get func(T) any, opts ...FieldOption) *Schema[T] {
	o := applyFieldOptions(opts)
	return s.add(FieldMapping{
		Name:        name,
		Kind:        KindAttribute,
		Transformer: o.transformer,
		get:         func(v any) any { return get(v.(T)) },
	})
}

// Nested declares an embedded object (or list of objects) mapped by wrapped
func (s *Schema[T]) Nested(name string, get func(T) any, wrapped *WrappedSchema) *Schema[T] {
	return s.add(FieldMapping{
		Name:    name,
		Kind:    KindNested,
		Wrapped: wrapped,
		get:     func(v any) any { return get(v.(T)) },
	})
}

// Relationship declares a reference to other resources
func (s *Schema[T]) Relationship(name string, get func(T) Relation, opts ...FieldOption) *Schema[T] {
	o := applyFieldOptions(opts)
	return s.add(FieldMapping{
		Name:     name,
		Kind:     KindRelationship,
		Target:   o.target,
		relation: func(v any) Relation { return get(v.(T)) },
	})
}

// Meta declares a value written under the resource meta
func (s *Schema[T]) Meta(name string, get func(T) any, opts ...FieldOption) *Schema[T] {
	o := applyFieldOptions(opts)
	return s.add(FieldMapping{
		Name:        name,
		Kind:        KindMeta,
		Transformer: o.transformer,
		Wrapped:     o.wrapped,
		get:         func(v any) any { return get(v.(T)) },
	})
}

func (s *Schema[T]) add(m FieldMapping) *Schema[T] {
	if _, dup := s.seen[m.Name]; dup {
		s.errs = append(s.errs, fmt.Errorf("%w: %s.%s", ErrDuplicateField, s.def.name, m.Name))
		return s
	}
	s.seen[m.Name] = struct{}{}
	s.def.fields = append(s.def.fields, m)
	return s
}

func (s *Schema[T]) definition() (*definition, error) {
	if len(s.errs) > 0 {
		return nil, s.errs[0]
	}
	return s.def, nil
}

// baseSchema is the root of every inheritance chain
var baseSchema = func() *Schema[Resource] {
	s := &Schema[Resource]{
		def:  &definition{model: TypeOf[Resource]()},
		seen: make(map[string]struct{}),
	}
	return s.Nested(TimestampsField, func(r Resource) any {
		return TimestampsOf(r)
	}, TimestampsSchema)
}()
