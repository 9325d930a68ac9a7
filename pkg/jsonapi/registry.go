package jsonapi

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Registry associates model types with their resolved field mappings.
// It is populated at start-up and only read while encoding.
type Registry struct {
	entries map[reflect.Type]*entry
	names   map[string]reflect.Type
	frozen  bool
	mu      sync.RWMutex
}

type entry struct {
	name   string
	model  reflect.Type
	byKind [kindCount][]FieldMapping
	byName map[string]FieldMapping
}

// DefaultRegistry is the process-wide registry used by the package-level functions
var DefaultRegistry = NewRegistry()

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[reflect.Type]*entry),
		names:   make(map[string]reflect.Type),
	}
}

// Register adds the schema of a model type, resolving its inheritance chain
func (r *Registry) Register(schema Registrable) error {
	def, err := schema.definition()
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return fmt.Errorf("register %s: %w", def.name, ErrRegistryFrozen)
	}
	if _, exists := r.entries[def.model]; exists {
		return fmt.Errorf("%w: model %s", ErrDuplicateSchema, def.model)
	}
	if _, exists := r.names[def.name]; exists {
		return fmt.Errorf("%w: type %s", ErrDuplicateSchema, def.name)
	}

	// Inherited names may not be redeclared
	if def.parent != nil {
		inherited := make(map[string]struct{})
		for _, m := range def.parent.resolve() {
			inherited[m.Name] = struct{}{}
		}
		for _, m := range def.fields {
			if _, ok := inherited[m.Name]; ok {
				return fmt.Errorf("%w: %s.%s", ErrFieldOverride, def.name, m.Name)
			}
		}
	}

	e := &entry{
		name:   def.name,
		model:  def.model,
		byName: make(map[string]FieldMapping),
	}
	for _, m := range def.resolve() {
		e.byKind[m.Kind] = append(e.byKind[m.Kind], m)
		e.byName[m.Name] = m
	}

	r.entries[def.model] = e
	r.names[def.name] = def.model
	return nil
}

// MustRegister registers schemas and panics on the first error
func (r *Registry) MustRegister(schemas ...Registrable) {
	for _, s := range schemas {
		if err := r.Register(s); err != nil {
			panic(err)
		}
	}
}

// Lookup returns the mappings of a kind for a model type, base mappings first.
// Unknown types and kinds yield an empty result.
func (r *Registry) Lookup(model reflect.Type, kind Kind) []FieldMapping {
	if kind >= kindCount {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[model]
	if !ok {
		return nil
	}
	return append([]FieldMapping(nil), e.byKind[kind]...)
}

// LookupField returns the mapping declared for a wire field name
func (r *Registry) LookupField(model reflect.Type, name string) (FieldMapping, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[model]
	if !ok {
		return FieldMapping{}, false
	}
	m, ok := e.byName[name]
	return m, ok
}

// TypeName returns the type discriminator registered for a model type
func (r *Registry) TypeName(model reflect.Type) (string, bool) {
	if model == nil {
		return "", false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[model]
	if !ok {
		return "", false
	}
	return e.name, true
}

// ModelType returns the model type registered under a type discriminator
func (r *Registry) ModelType(name string) (reflect.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.names[name]
	return t, ok
}

// Types returns the registered type discriminators in sorted order
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.names))
	for name := range r.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered model types
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.entries)
}

// Freeze makes the registry read-only
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.frozen = true
}

// Frozen reports whether the registry is read-only
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.frozen
}

// Register adds a schema to the DefaultRegistry
func Register(schema Registrable) error {
	return DefaultRegistry.Register(schema)
}

// lookupEntry returns the resolved entry for a model type
func (r *Registry) lookupEntry(model reflect.Type) (*entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[model]
	return e, ok
}
