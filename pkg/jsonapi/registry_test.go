package jsonapi

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPost struct {
	Model
	Title string
}

type testFeaturedPost struct {
	testPost
	Rank int
}

func TestRegistry(t *testing.T) {
	t.Run("register and resolve type name", func(t *testing.T) {
		reg := NewRegistry()
		registerTestSchemas(t, reg)

		name, ok := reg.TypeName(TypeOf[*testArticle]())
		assert.True(t, ok)
		assert.Equal(t, "articles", name)

		model, ok := reg.ModelType("authors")
		assert.True(t, ok)
		assert.Equal(t, TypeOf[*testAuthor](), model)

		assert.Equal(t, []string{"articles", "authors", "publishers"}, reg.Types())
		assert.Equal(t, 3, reg.Count())
	})

	t.Run("lookup by kind keeps declaration order", func(t *testing.T) {
		reg := NewRegistry()
		registerTestSchemas(t, reg)

		var names []string
		for _, m := range reg.Lookup(TypeOf[*testArticle](), KindRelationship) {
			names = append(names, m.Name)
		}
		assert.Equal(t, []string{"author", "publisher", "editors", "related"}, names)
	})

	t.Run("timestamps are inherited by every schema", func(t *testing.T) {
		reg := NewRegistry()
		registerTestSchemas(t, reg)

		nested := reg.Lookup(TypeOf[*testAuthor](), KindNested)
		require.Len(t, nested, 1)
		assert.Equal(t, TimestampsField, nested[0].Name)
		assert.Equal(t, TimestampsSchema, nested[0].Wrapped)
	})

	t.Run("lookup never fails", func(t *testing.T) {
		reg := NewRegistry()
		registerTestSchemas(t, reg)

		assert.Empty(t, reg.Lookup(TypeOf[*testAuthor](), KindMeta))
		assert.Empty(t, reg.Lookup(TypeOf[*testPost](), KindAttribute))
		assert.Empty(t, reg.Lookup(TypeOf[*testAuthor](), Kind(99)))

		_, ok := reg.TypeName(nil)
		assert.False(t, ok)
	})

	t.Run("lookup field by wire name", func(t *testing.T) {
		reg := NewRegistry()
		registerTestSchemas(t, reg)

		m, ok := reg.LookupField(TypeOf[*testArticle](), "publishedAt")
		require.True(t, ok)
		assert.Equal(t, KindAttribute, m.Kind)
		assert.Equal(t, ISODate, m.Transformer)

		_, ok = reg.LookupField(TypeOf[*testArticle](), "missing")
		assert.False(t, ok)
	})

	t.Run("duplicate model type", func(t *testing.T) {
		reg := NewRegistry()
		require.NoError(t, reg.Register(NewSchema[*testPost]("posts")))
		err := reg.Register(NewSchema[*testPost]("other_posts"))
		assert.ErrorIs(t, err, ErrDuplicateSchema)
	})

	t.Run("duplicate type name", func(t *testing.T) {
		reg := NewRegistry()
		require.NoError(t, reg.Register(NewSchema[*testPost]("posts")))
		err := reg.Register(NewSchema[*testFeaturedPost]("posts"))
		assert.ErrorIs(t, err, ErrDuplicateSchema)
	})

	t.Run("duplicate field", func(t *testing.T) {
		reg := NewRegistry()
		schema := NewSchema[*testPost]("posts").
			Attribute("title", func(p *testPost) any { return p.Title }).
			Attribute("title", func(p *testPost) any { return p.Title })
		assert.ErrorIs(t, reg.Register(schema), ErrDuplicateField)
		assert.Zero(t, reg.Count())
	})

	t.Run("frozen registry rejects registration", func(t *testing.T) {
		reg := NewRegistry()
		reg.Freeze()
		assert.True(t, reg.Frozen())
		assert.ErrorIs(t, reg.Register(NewSchema[*testPost]("posts")), ErrRegistryFrozen)
	})

	t.Run("must register panics on error", func(t *testing.T) {
		reg := NewRegistry()
		reg.MustRegister(NewSchema[*testPost]("posts"))
		assert.Panics(t, func() {
			reg.MustRegister(NewSchema[*testPost]("posts"))
		})
	})
}

func TestRegistryInheritance(t *testing.T) {
	posts := NewSchema[*testPost]("posts").
		Attribute("title", func(p *testPost) any { return p.Title })

	t.Run("child inherits parent mappings base first", func(t *testing.T) {
		reg := NewRegistry()
		featured := Extends(NewSchema[*testFeaturedPost]("featured_posts"), posts,
			func(f *testFeaturedPost) *testPost { return &f.testPost }).
			Attribute("rank", func(f *testFeaturedPost) any { return f.Rank })
		require.NoError(t, reg.Register(featured))

		attrs := reg.Lookup(TypeOf[*testFeaturedPost](), KindAttribute)
		require.Len(t, attrs, 2)
		assert.Equal(t, "title", attrs[0].Name)
		assert.Equal(t, "rank", attrs[1].Name)

		post := &testFeaturedPost{
			testPost: testPost{Model: NewModel("featured_posts", WithID("f1"), WithCreatedAt(testCreated)), Title: "Top"},
			Rank:     1,
		}
		doc, err := NewEncoder(reg).Encode(post, ForRead())
		require.NoError(t, err)

		body := doc.Primary()
		assert.Equal(t, "featured_posts", body.Type)
		assert.Equal(t, "Top", body.Attributes["title"].Raw())
		assert.Equal(t, 1, body.Attributes["rank"].Raw())
		assert.Contains(t, body.Attributes, TimestampsField)
	})

	t.Run("child may not override an inherited field", func(t *testing.T) {
		reg := NewRegistry()
		featured := Extends(NewSchema[*testFeaturedPost]("featured_posts"), posts,
			func(f *testFeaturedPost) *testPost { return &f.testPost }).
			Attribute("title", func(f *testFeaturedPost) any { return "override" })
		assert.ErrorIs(t, reg.Register(featured), ErrFieldOverride)
	})

	t.Run("timestamps cannot be redeclared", func(t *testing.T) {
		reg := NewRegistry()
		schema := NewSchema[*testPost]("posts").
			Attribute(TimestampsField, func(p *testPost) any { return nil })
		assert.ErrorIs(t, reg.Register(schema), ErrFieldOverride)
	})
}

func TestRegistryConcurrentReads(t *testing.T) {
	reg := NewRegistry()
	registerTestSchemas(t, reg)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Len(t, reg.Lookup(TypeOf[*testArticle](), KindAttribute), 3)
			name, ok := reg.TypeName(TypeOf[*testPublisher]())
			assert.True(t, ok)
			assert.Equal(t, "publishers", name)
		}()
	}
	wg.Wait()
}

func TestParseKind(t *testing.T) {
	for _, k := range []Kind{KindAttribute, KindNested, KindRelationship, KindMeta} {
		parsed, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}

	_, err := ParseKind("link")
	assert.ErrorIs(t, err, ErrUnknownKind)
	assert.Equal(t, "unknown", Kind(42).String())
}
