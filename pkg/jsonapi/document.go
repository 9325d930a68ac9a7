package jsonapi

import (
	"encoding/json"
)

// ResourceIdentifier is the minimal reference to a resource
type ResourceIdentifier struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

func (ri ResourceIdentifier) key() string {
	return ri.Type + "\x00" + ri.ID
}

// Relationship is the wire form of one relationship field.
// Its data member is null, a single identifier, or a list of identifiers.
type Relationship struct {
	toMany bool
	null   bool
	data   []ResourceIdentifier
}

// NullRelationship returns a relationship explicitly cleared on the wire
func NullRelationship() *Relationship {
	return &Relationship{null: true}
}

// ToOneRelationship returns a relationship holding a single identifier
func ToOneRelationship(id ResourceIdentifier) *Relationship {
	return &Relationship{data: []ResourceIdentifier{id}}
}

// ToManyRelationship returns a relationship holding a list of identifiers
func ToManyRelationship(ids ...ResourceIdentifier) *Relationship {
	if ids == nil {
		ids = []ResourceIdentifier{}
	}
	return &Relationship{toMany: true, data: ids}
}

// IsNull reports whether the relationship data is null
func (r *Relationship) IsNull() bool {
	return r.null
}

// IsToMany reports whether the relationship data is a list
func (r *Relationship) IsToMany() bool {
	return r.toMany
}

// Identifier returns the identifier of a to-one relationship
func (r *Relationship) Identifier() (ResourceIdentifier, bool) {
	if r.null || r.toMany || len(r.data) == 0 {
		return ResourceIdentifier{}, false
	}
	return r.data[0], true
}

// Identifiers returns the identifiers of the relationship
func (r *Relationship) Identifiers() []ResourceIdentifier {
	return r.data
}

// MarshalJSON implements json.Marshaler
func (r *Relationship) MarshalJSON() ([]byte, error) {
	var payload struct {
		Data any `json:"data"`
	}
	switch {
	case r.null:
		payload.Data = nil
	case r.toMany:
		payload.Data = r.data
	case len(r.data) > 0:
		payload.Data = r.data[0]
	}
	return json.Marshal(payload)
}

// ResourceObject is the full wire body of one resource
type ResourceObject struct {
	ID            string                   `json:"id,omitempty"`
	Type          string                   `json:"type"`
	Attributes    map[string]Value         `json:"attributes,omitempty"`
	Relationships map[string]*Relationship `json:"relationships,omitempty"`
	Meta          map[string]Value         `json:"meta,omitempty"`
}

// Identifier returns the resource identifier of the body
func (o *ResourceObject) Identifier() ResourceIdentifier {
	return ResourceIdentifier{ID: o.ID, Type: o.Type}
}

// Document is the top-level wire document produced by the Encoder
type Document struct {
	// Data holds the primary resources; a single resource document holds one entry
	Data []*ResourceObject
	// Collection reports whether data is written as an array
	Collection bool
	// Included holds side-loaded related resources, deduplicated by type and id
	Included []*ResourceObject
	// Meta is the optional root-level meta object
	Meta map[string]any
}

// Primary returns the first primary resource, or nil
func (d *Document) Primary() *ResourceObject {
	if d == nil || len(d.Data) == 0 {
		return nil
	}
	return d.Data[0]
}

// FindIncluded returns the included resource with the given type and id
func (d *Document) FindIncluded(typ, id string) (*ResourceObject, bool) {
	if d == nil {
		return nil, false
	}
	for _, inc := range d.Included {
		if inc.Type == typ && inc.ID == id {
			return inc, true
		}
	}
	return nil, false
}

// MarshalJSON implements json.Marshaler
func (d *Document) MarshalJSON() ([]byte, error) {
	var payload struct {
		Data     any               `json:"data"`
		Included []*ResourceObject `json:"included,omitempty"`
		Meta     map[string]any    `json:"meta,omitempty"`
	}
	switch {
	case d.Collection:
		data := d.Data
		if data == nil {
			data = []*ResourceObject{}
		}
		payload.Data = data
	case len(d.Data) > 0:
		payload.Data = d.Data[0]
	}
	payload.Included = d.Included
	payload.Meta = d.Meta
	return json.Marshal(payload)
}

// Marshal serialises a document; a nil document is written as {"data":null}
func Marshal(doc *Document) ([]byte, error) {
	if doc == nil {
		return []byte(`{"data":null}`), nil
	}
	return json.Marshal(doc)
}

// MarshalIndent is like Marshal but indents the output
func MarshalIndent(doc *Document, prefix, indent string) ([]byte, error) {
	if doc == nil {
		return []byte(`{"data":null}`), nil
	}
	return json.MarshalIndent(doc, prefix, indent)
}
