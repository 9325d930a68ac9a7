package jsonapi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type testPublisher struct {
	Model
	Name    string
	Authors ToMany[*testAuthor]
}

type testAuthor struct {
	Model
	Name      string
	Publisher ToOne[*testPublisher]
}

type testArticle struct {
	Model
	Title         string
	TagsByKeyword map[string][]string
	PublishedAt   *time.Time
	Sections      []Wrapped
	Extra         any
	Stats         Wrapped
	Counters      map[string]int
	Author        ToOne[*testAuthor]
	Publisher     ToOne[*testPublisher]
	Editors       ToMany[*testAuthor]
	Related       ToMany[Resource]
}

var sectionSchema = NewWrappedSchema(
	Field("heading", "title"),
	Field("body", ""),
)

var statsSchema = NewWrappedSchema(
	Field("views", "views"),
	Field("lastViewedAt", "lastViewed", WithTransformer(ISODate)),
)

func registerTestSchemas(t *testing.T, reg *Registry) {
	t.Helper()

	require.NoError(t, reg.Register(NewSchema[*testPublisher]("publishers").
		Attribute("name", func(p *testPublisher) any { return p.Name }).
		Relationship("authors", func(p *testPublisher) Relation { return p.Authors })))

	require.NoError(t, reg.Register(NewSchema[*testAuthor]("authors").
		Attribute("name", func(a *testAuthor) any { return a.Name }).
		Relationship("publisher", func(a *testAuthor) Relation { return a.Publisher })))

	require.NoError(t, reg.Register(NewSchema[*testArticle]("articles").
		Attribute("title", func(a *testArticle) any { return a.Title }).
		Attribute("tagsByKeyword", func(a *testArticle) any { return a.TagsByKeyword }).
		Attribute("publishedAt", func(a *testArticle) any { return a.PublishedAt }, WithTransformer(ISODate)).
		Nested("sections", func(a *testArticle) any { return a.Sections }, sectionSchema).
		Nested("extra", func(a *testArticle) any { return a.Extra }, nil).
		Meta("stats", func(a *testArticle) any { return a.Stats }, WithWrapped(statsSchema)).
		Meta("counters", func(a *testArticle) any { return a.Counters }).
		Relationship("author", func(a *testArticle) Relation { return a.Author }).
		Relationship("publisher", func(a *testArticle) Relation { return a.Publisher }).
		Relationship("editors", func(a *testArticle) Relation { return a.Editors }).
		Relationship("related", func(a *testArticle) Relation { return a.Related })))
}

func newTestEncoder(t *testing.T) *Encoder {
	t.Helper()
	reg := NewRegistry()
	registerTestSchemas(t, reg)
	reg.Freeze()
	return NewEncoder(reg)
}

var (
	testCreated = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	testUpdated = time.Date(2024, 2, 3, 4, 5, 6, 789000000, time.UTC)
)

func newPublisher(id, name string) *testPublisher {
	return &testPublisher{Model: NewModel("publishers", WithID(id)), Name: name}
}

func newAuthor(id, name string) *testAuthor {
	return &testAuthor{Model: NewModel("authors", WithID(id)), Name: name}
}

func newArticle(id, title string) *testArticle {
	return &testArticle{
		Model: NewModel("articles",
			WithID(id),
			WithCreatedAt(testCreated),
			WithUpdatedAt(testUpdated),
		),
		Title: title,
	}
}
