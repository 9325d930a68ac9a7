package jsonapi

import (
	"time"
)

// TimestampsField is the attribute under which every resource carries its timestamps
const TimestampsField = "timestamps"

// Timestamps is the nested value holding a resource's lifecycle times
type Timestamps struct {
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// TimestampsOf extracts the timestamps of r; it returns nil when none are set
func TimestampsOf(r Resource) *Timestamps {
	ts := &Timestamps{
		CreatedAt: r.CreatedAt(),
		UpdatedAt: r.UpdatedAt(),
		DeletedAt: r.DeletedAt(),
	}
	if ts.IsZero() {
		return nil
	}
	return ts
}

// IsZero reports whether no timestamp is set
func (t *Timestamps) IsZero() bool {
	return t == nil || (t.CreatedAt.IsZero() && t.UpdatedAt.IsZero() && t.DeletedAt == nil)
}

// Wrapped exposes the set timestamps as a property bag
func (t *Timestamps) Wrapped() Wrapped {
	bag := Wrapped{}
	if t == nil {
		return bag
	}
	if !t.CreatedAt.IsZero() {
		bag["createdAt"] = t.CreatedAt
	}
	if !t.UpdatedAt.IsZero() {
		bag["updatedAt"] = t.UpdatedAt
	}
	if t.DeletedAt != nil {
		bag["deletedAt"] = *t.DeletedAt
	}
	return bag
}

// TimestampsSchema maps the timestamps bag onto the wire
var TimestampsSchema = NewWrappedSchema(
	Field("createdAt", "createdAt", WithTransformer(ISODate)),
	Field("updatedAt", "updatedAt", WithTransformer(ISODate)),
	Field("deletedAt", "deletedAt", WithTransformer(ISODate)),
)
