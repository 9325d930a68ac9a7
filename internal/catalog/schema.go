package catalog

import (
	"github.com/dosanma1/forge-sub000/pkg/jsonapi"
)

var sectionSchema = jsonapi.NewWrappedSchema(
	jsonapi.Field("heading", ""),
	jsonapi.Field("body", ""),
	jsonapi.Field("order", ""),
)

var statsSchema = jsonapi.NewWrappedSchema(
	jsonapi.Field("views", ""),
	jsonapi.Field("lastViewedAt", "", jsonapi.WithTransformer(jsonapi.ISODate)),
)

// Schemas returns the mapping tables of every catalog model
func Schemas() []jsonapi.Registrable {
	publishers := jsonapi.NewSchema[*Publisher](TypePublishers).
		Attribute("name", func(p *Publisher) any { return p.Name }).
		Attribute("country", func(p *Publisher) any { return optional(p.Country) }).
		Relationship("authors", func(p *Publisher) jsonapi.Relation { return p.Authors })

	authors := jsonapi.NewSchema[*Author](TypeAuthors).
		Attribute("name", func(a *Author) any { return a.Name }).
		Attribute("email", func(a *Author) any { return optional(a.Email) }).
		Relationship("publisher", func(a *Author) jsonapi.Relation { return a.Publisher })

	articles := jsonapi.NewSchema[*Article](TypeArticles).
		Attribute("title", func(a *Article) any { return a.Title }).
		Attribute("body", func(a *Article) any { return optional(a.Body) }).
		Attribute("tagsByKeyword", func(a *Article) any { return a.TagsByKeyword }).
		Attribute("publishedAt", func(a *Article) any { return a.PublishedAt }, jsonapi.WithTransformer(jsonapi.ISODate)).
		Nested("sections", func(a *Article) any { return a.Sections }, sectionSchema).
		Meta("stats", func(a *Article) any { return a.Stats }, jsonapi.WithWrapped(statsSchema)).
		Relationship("author", func(a *Article) jsonapi.Relation { return a.Author }).
		Relationship("publisher", func(a *Article) jsonapi.Relation { return a.Publisher }).
		Relationship("comments", func(a *Article) jsonapi.Relation { return a.Comments })

	comments := jsonapi.NewSchema[*Comment](TypeComments).
		Attribute("body", func(c *Comment) any { return c.Body }).
		Relationship("author", func(c *Comment) jsonapi.Relation { return c.Author }).
		Relationship("article", func(c *Comment) jsonapi.Relation { return c.Article })

	return []jsonapi.Registrable{publishers, authors, articles, comments}
}

// Register adds the catalog schemas to reg
func Register(reg *jsonapi.Registry) error {
	for _, s := range Schemas() {
		if err := reg.Register(s); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry returns a frozen registry holding the catalog schemas
func NewRegistry() (*jsonapi.Registry, error) {
	reg := jsonapi.NewRegistry()
	if err := Register(reg); err != nil {
		return nil, err
	}
	reg.Freeze()
	return reg, nil
}

// optional turns an empty string into an absent field
func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}
