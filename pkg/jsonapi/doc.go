// Package jsonapi maps strongly typed domain models onto JSON:API documents.
//
// # Overview
//
// A model type declares its wire fields once, at start-up, with a Schema:
//
//	jsonapi.MustRegister(
//		jsonapi.NewSchema[*Article]("articles").
//			Attribute("title", func(a *Article) any { return a.Title }).
//			Attribute("publishedAt", func(a *Article) any { return a.PublishedAt },
//				jsonapi.WithTransformer(jsonapi.ISODate)).
//			Nested("sections", func(a *Article) any { return a.Sections }, sectionSchema).
//			Relationship("author", func(a *Article) jsonapi.Relation { return a.Author }),
//	)
//
// The Registry holds the resolved mappings of every model type, including the
// mappings inherited through Extends and the timestamps attribute every
// resource carries. It is written during initialisation and only read while
// encoding, so concurrent encode calls need no coordination.
//
// # Modes
//
// Encoding is mode sensitive. Each call derives a fresh Config from its
// options:
//
//	mode           empty id   empty timestamps   included
//	client-create  yes        yes                no
//	client-update  no         yes                no
//	client-delete  no         yes                no
//	server-read    no         no                 yes
//
// client-create is the default so an encode without options always yields the
// shape of a new resource.
//
// # Relationships
//
// Relationship fields hold ToOne or ToMany values. Their zero value means
// "not loaded" and is omitted from the document; NullOne and NullMany encode an
// explicit {"data": null}. Under server-read every loaded related resource is
// encoded once into the included list, keyed by type and id; revisits are
// skipped, so cyclic graphs terminate.
package jsonapi

// MustRegister registers schemas into the DefaultRegistry and panics on error
func MustRegister(schemas ...Registrable) {
	DefaultRegistry.MustRegister(schemas...)
}
