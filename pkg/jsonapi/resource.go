package jsonapi

import (
	"time"
)

// Resource is the identity contract every encodable model satisfies
type Resource interface {
	// ID returns the server-assigned identity, empty for unsaved resources
	ID() string
	// Type returns the type discriminator, constant per model type
	Type() string
	CreatedAt() time.Time
	UpdatedAt() time.Time
	// DeletedAt returns nil unless the resource is soft deleted
	DeletedAt() *time.Time
}

// Model is an immutable, embeddable implementation of Resource
type Model struct {
	id        string
	typ       string
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// ModelOption modifies a Model under construction
type ModelOption func(*Model)

// NewModel creates a model identity of the given type
func NewModel(typ string, opts ...ModelOption) Model {
	m := Model{typ: typ}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// With returns a copy of the model with the options applied
func (m Model) With(opts ...ModelOption) Model {
	next := m
	if m.deletedAt != nil {
		d := *m.deletedAt
		next.deletedAt = &d
	}
	for _, opt := range opts {
		opt(&next)
	}
	return next
}

// WithID sets the resource id
func WithID(id string) ModelOption {
	return func(m *Model) {
		m.id = id
	}
}

// WithCreatedAt sets the creation timestamp
func WithCreatedAt(t time.Time) ModelOption {
	return func(m *Model) {
		m.createdAt = t
	}
}

// WithUpdatedAt sets the update timestamp
func WithUpdatedAt(t time.Time) ModelOption {
	return func(m *Model) {
		m.updatedAt = t
	}
}

// WithDeletedAt marks the resource as deleted at t
func WithDeletedAt(t time.Time) ModelOption {
	return func(m *Model) {
		m.deletedAt = &t
	}
}

// WithTimestamps copies all timestamps from ts
func WithTimestamps(ts Timestamps) ModelOption {
	return func(m *Model) {
		m.createdAt = ts.CreatedAt
		m.updatedAt = ts.UpdatedAt
		m.deletedAt = nil
		if ts.DeletedAt != nil {
			d := *ts.DeletedAt
			m.deletedAt = &d
		}
	}
}

func (m Model) ID() string           { return m.id }
func (m Model) Type() string         { return m.typ }
func (m Model) CreatedAt() time.Time { return m.createdAt }
func (m Model) UpdatedAt() time.Time { return m.updatedAt }

func (m Model) DeletedAt() *time.Time {
	if m.deletedAt == nil {
		return nil
	}
	d := *m.deletedAt
	return &d
}

// Identifier returns the resource identifier of r
func Identifier(r Resource) ResourceIdentifier {
	return ResourceIdentifier{ID: r.ID(), Type: r.Type()}
}
