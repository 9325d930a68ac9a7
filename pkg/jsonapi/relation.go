package jsonapi

import (
	"reflect"
)

// RelationState tells a loaded relationship from a cleared or unloaded one
type RelationState uint8

const (
	// RelationUnloaded means the relationship was not loaded and is omitted
	RelationUnloaded RelationState = iota
	// RelationNull means the relationship is explicitly empty
	RelationNull
	// RelationLoaded means the relationship holds related resources
	RelationLoaded
)

// String returns the string representation of the relation state
func (s RelationState) String() string {
	switch s {
	case RelationUnloaded:
		return "unloaded"
	case RelationNull:
		return "null"
	case RelationLoaded:
		return "loaded"
	default:
		return "unknown"
	}
}

// Relation is the runtime value of a relationship field
type Relation interface {
	State() RelationState
	ToMany() bool
	// Resources returns the related resources of a loaded relation
	Resources() []Resource
	// ElemType returns the declared model type of the related resources
	ElemType() reflect.Type
}

// ToOne is a singular relationship; the zero value is unloaded
type ToOne[T Resource] struct {
	value T
	state RelationState
}

// One returns a loaded to-one relation; a nil resource yields a null relation
func One[T Resource](v T) ToOne[T] {
	if isNilResource(v) {
		return NullOne[T]()
	}
	return ToOne[T]{value: v, state: RelationLoaded}
}

// NullOne returns an explicitly cleared to-one relation
func NullOne[T Resource]() ToOne[T] {
	return ToOne[T]{state: RelationNull}
}

// Get returns the related resource when loaded
func (r ToOne[T]) Get() (T, bool) {
	return r.value, r.state == RelationLoaded
}

func (r ToOne[T]) State() RelationState { return r.state }
func (r ToOne[T]) ToMany() bool         { return false }

func (r ToOne[T]) Resources() []Resource {
	if r.state != RelationLoaded {
		return nil
	}
	return []Resource{r.value}
}

func (r ToOne[T]) ElemType() reflect.Type {
	return TypeOf[T]()
}

// ToMany is a plural relationship; the zero value is unloaded
type ToMany[T Resource] struct {
	items []T
	state RelationState
}

// Many returns a loaded to-many relation; nil items are dropped
func Many[T Resource](items ...T) ToMany[T] {
	kept := make([]T, 0, len(items))
	for _, item := range items {
		if !isNilResource(item) {
			kept = append(kept, item)
		}
	}
	return ToMany[T]{items: kept, state: RelationLoaded}
}

// NullMany returns an explicitly cleared to-many relation
func NullMany[T Resource]() ToMany[T] {
	return ToMany[T]{state: RelationNull}
}

// Items returns the related resources
func (r ToMany[T]) Items() []T {
	return append([]T(nil), r.items...)
}

func (r ToMany[T]) State() RelationState { return r.state }
func (r ToMany[T]) ToMany() bool         { return true }

func (r ToMany[T]) Resources() []Resource {
	if r.state != RelationLoaded {
		return nil
	}
	out := make([]Resource, len(r.items))
	for i, item := range r.items {
		out[i] = item
	}
	return out
}

func (r ToMany[T]) ElemType() reflect.Type {
	return TypeOf[T]()
}

func isNilResource(r any) bool {
	return isAbsent(r)
}
