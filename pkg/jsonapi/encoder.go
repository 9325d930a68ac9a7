package jsonapi

import (
	"fmt"
	"reflect"

	"go.uber.org/zap"
)

// Encoder turns resources into wire documents using the mappings of a Registry
type Encoder struct {
	registry *Registry
	logger   *zap.Logger
}

// EncoderOption configures an Encoder
type EncoderOption func(*Encoder)

// WithLogger sets the logger used for debug output
func WithLogger(logger *zap.Logger) EncoderOption {
	return func(e *Encoder) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEncoder creates an encoder; a nil registry means DefaultRegistry
func NewEncoder(registry *Registry, opts ...EncoderOption) *Encoder {
	if registry == nil {
		registry = DefaultRegistry
	}
	e := &Encoder{
		registry: registry,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registry returns the registry the encoder reads mappings from
func (e *Encoder) Registry() *Registry {
	return e.registry
}

var defaultEncoder = NewEncoder(DefaultRegistry)

// Encode encodes a resource with the DefaultRegistry
func Encode(r Resource, opts ...Option) (*Document, error) {
	return defaultEncoder.Encode(r, opts...)
}

// EncodeCollection encodes a homogeneous list with the DefaultRegistry
func EncodeCollection[T Resource](items []T, opts ...Option) (*Document, error) {
	return defaultEncoder.EncodeCollection(Resources(items), opts...)
}

// Resources converts a typed slice to a slice of Resource, keeping nil as nil
func Resources[T Resource](items []T) []Resource {
	if items == nil {
		return nil
	}
	out := make([]Resource, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}

// encodeState is allocated per encode call
type encodeState struct {
	cfg      Config
	visited  map[string]struct{}
	included []*ResourceObject
}

func newEncodeState(cfg Config) *encodeState {
	return &encodeState{
		cfg:     cfg,
		visited: make(map[string]struct{}),
	}
}

// markVisited returns false when the resource was already seen
func (s *encodeState) markVisited(id ResourceIdentifier) bool {
	k := id.key()
	if _, seen := s.visited[k]; seen {
		return false
	}
	s.visited[k] = struct{}{}
	return true
}

// Encode encodes a single resource. A nil resource yields a nil document.
func (e *Encoder) Encode(r Resource, opts ...Option) (*Document, error) {
	if isNilResource(r) {
		return nil, nil
	}

	st := newEncodeState(NewConfig(opts...))
	body, err := e.encodeResource(r, st.cfg)
	if err != nil {
		return nil, err
	}
	if r.ID() != "" {
		st.markVisited(ResourceIdentifier{ID: r.ID(), Type: body.Type})
	}

	if st.cfg.MapIncluded {
		if err := e.harvest(r, st); err != nil {
			return nil, err
		}
	}

	e.logger.Debug("encoded resource",
		zap.String("type", body.Type),
		zap.String("id", r.ID()),
		zap.Stringer("mode", st.cfg.Mode),
		zap.Int("included", len(st.included)),
	)

	return &Document{
		Data:     []*ResourceObject{body},
		Included: st.included,
		Meta:     st.cfg.Meta,
	}, nil
}

// EncodeCollection encodes a list of resources. A nil slice yields a nil document;
// nil elements are skipped.
func (e *Encoder) EncodeCollection(resources []Resource, opts ...Option) (*Document, error) {
	if resources == nil {
		return nil, nil
	}

	st := newEncodeState(NewConfig(opts...))
	data := make([]*ResourceObject, 0, len(resources))
	primaries := make([]Resource, 0, len(resources))
	for i, r := range resources {
		if isNilResource(r) {
			e.logger.Debug("skipping nil collection element", zap.Int("index", i))
			continue
		}
		body, err := e.encodeResource(r, st.cfg)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		if r.ID() != "" {
			st.markVisited(ResourceIdentifier{ID: r.ID(), Type: body.Type})
		}
		data = append(data, body)
		primaries = append(primaries, r)
	}

	if st.cfg.MapIncluded {
		for _, r := range primaries {
			if err := e.harvest(r, st); err != nil {
				return nil, err
			}
		}
	}

	e.logger.Debug("encoded collection",
		zap.Int("count", len(data)),
		zap.Stringer("mode", st.cfg.Mode),
		zap.Int("included", len(st.included)),
	)

	return &Document{
		Data:       data,
		Collection: true,
		Included:   st.included,
		Meta:       st.cfg.Meta,
	}, nil
}

// typeName resolves the discriminator of r, falling back to r.Type()
func (e *Encoder) typeName(r Resource) string {
	if name, ok := e.registry.TypeName(reflect.TypeOf(r)); ok {
		return name
	}
	return r.Type()
}

// encodeResource builds the resource body of r
func (e *Encoder) encodeResource(r Resource, cfg Config) (*ResourceObject, error) {
	model := reflect.TypeOf(r)
	ent, registered := e.registry.lookupEntry(model)

	typ := r.Type()
	if registered {
		typ = ent.name
	} else {
		e.logger.Debug("encoding unregistered model", zap.Stringer("model", model))
	}

	body := &ResourceObject{Type: typ}
	if !cfg.EmptyID {
		body.ID = r.ID()
	}
	if !registered {
		return body, nil
	}

	attrs := make(map[string]Value)
	for _, m := range ent.byKind[KindAttribute] {
		v, ok, err := encodeAttribute(m, m.Value(r))
		if err != nil {
			return nil, fieldError(typ, m, err)
		}
		if ok {
			attrs[m.Name] = v
		}
	}

	for _, m := range ent.byKind[KindNested] {
		v, ok, err := encodeNested(m.Wrapped, m.Value(r))
		if err != nil {
			return nil, fieldError(typ, m, err)
		}
		if ok {
			attrs[m.Name] = v
		}
	}

	meta := make(map[string]Value)
	for _, m := range ent.byKind[KindMeta] {
		v, ok, err := encodeMeta(m, m.Value(r))
		if err != nil {
			return nil, fieldError(typ, m, err)
		}
		if ok {
			meta[m.Name] = v
		}
	}

	rels := make(map[string]*Relationship)
	for _, m := range ent.byKind[KindRelationship] {
		rel := e.encodeRelationship(m, m.Relation(r))
		if rel != nil {
			rels[m.Name] = rel
		}
	}

	// Timestamps are removed after the generic nested transform has run
	if cfg.EmptyTimestamps {
		delete(attrs, TimestampsField)
	}

	if len(attrs) > 0 {
		body.Attributes = attrs
	}
	if len(meta) > 0 {
		body.Meta = meta
	}
	if len(rels) > 0 {
		body.Relationships = rels
	}
	return body, nil
}

// encodeAttribute returns ok=false when the source field is absent
func encodeAttribute(m FieldMapping, raw any) (Value, bool, error) {
	if isAbsent(raw) {
		return Value{}, false, nil
	}
	if isDictionary(raw) {
		v, err := ValueOf(raw)
		return v, err == nil, err
	}
	if m.Transformer != nil {
		transformed, err := m.Transformer.Serialize(raw)
		if err != nil {
			return Value{}, false, err
		}
		raw = transformed
	}
	v, err := ValueOf(raw)
	if err != nil {
		return Value{}, false, err
	}
	return v, true, nil
}

// encodeNested transforms an object or a list of objects through ws
func encodeNested(ws *WrappedSchema, raw any) (Value, bool, error) {
	if isAbsent(raw) {
		return Value{}, false, nil
	}

	if bag, ok := asBag(raw); ok {
		fields, err := ws.Transform(bag)
		if err != nil {
			return Value{}, false, err
		}
		return Object(fields), true, nil
	}

	list, ok := isList(raw)
	if !ok {
		return Value{}, false, fmt.Errorf("%w: got %T", ErrInvalidNestedValue, raw)
	}
	items := make([]Value, list.Len())
	for i := 0; i < list.Len(); i++ {
		elem := list.Index(i).Interface()
		if isAbsent(elem) {
			items[i] = Null()
			continue
		}
		bag, ok := asBag(elem)
		if !ok {
			return Value{}, false, fmt.Errorf("%w: element %d is %T", ErrInvalidNestedValue, i, elem)
		}
		fields, err := ws.Transform(bag)
		if err != nil {
			return Value{}, false, fmt.Errorf("[%d].%w", i, err)
		}
		items[i] = Object(fields)
	}
	return Array(items...), true, nil
}

// encodeMeta uses the nested transform when a wrapped schema is declared
func encodeMeta(m FieldMapping, raw any) (Value, bool, error) {
	if m.Wrapped != nil {
		return encodeNested(m.Wrapped, raw)
	}
	if w, ok := raw.(Wrapper); ok && !isAbsent(raw) {
		raw = w.Wrapped()
	}
	return encodeAttribute(m, raw)
}

// encodeRelationship returns nil for an unloaded relationship
func (e *Encoder) encodeRelationship(m FieldMapping, rel Relation) *Relationship {
	if isAbsent(rel) {
		return nil
	}

	switch rel.State() {
	case RelationUnloaded:
		return nil
	case RelationNull:
		return NullRelationship()
	}

	target := m.Target
	if target == nil {
		target = rel.ElemType()
	}
	targetName, hasTarget := e.registry.TypeName(target)

	identify := func(res Resource) ResourceIdentifier {
		if hasTarget {
			return ResourceIdentifier{ID: res.ID(), Type: targetName}
		}
		return ResourceIdentifier{ID: res.ID(), Type: res.Type()}
	}

	related := rel.Resources()
	if rel.ToMany() {
		ids := make([]ResourceIdentifier, 0, len(related))
		for _, res := range related {
			ids = append(ids, identify(res))
		}
		return ToManyRelationship(ids...)
	}
	if len(related) == 0 {
		return NullRelationship()
	}
	return ToOneRelationship(identify(related[0]))
}

// harvest walks the relationships of r and side-loads every related resource once
func (e *Encoder) harvest(r Resource, st *encodeState) error {
	ent, ok := e.registry.lookupEntry(reflect.TypeOf(r))
	if !ok {
		return nil
	}

	for _, m := range ent.byKind[KindRelationship] {
		rel := m.Relation(r)
		if isAbsent(rel) || rel.State() != RelationLoaded {
			continue
		}
		for _, related := range rel.Resources() {
			if isNilResource(related) || related.ID() == "" {
				continue
			}
			id := ResourceIdentifier{ID: related.ID(), Type: e.typeName(related)}
			if !st.markVisited(id) {
				e.logger.Debug("skipping visited resource",
					zap.String("type", id.Type),
					zap.String("id", id.ID),
				)
				continue
			}

			body, err := e.encodeResource(related, st.cfg)
			if err != nil {
				return fmt.Errorf("included %s/%s: %w", id.Type, id.ID, err)
			}
			st.included = append(st.included, body)

			if err := e.harvest(related, st); err != nil {
				return err
			}
		}
	}
	return nil
}
