package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dosanma1/forge-sub000/pkg/jsonapi"
)

type note struct {
	jsonapi.Model
	Text string
}

func newNote(id, text string) *note {
	return &note{Model: jsonapi.NewModel("notes", jsonapi.WithID(id)), Text: text}
}

func newTestDocumentCache(t *testing.T, c Cache, opts ...DocumentCacheOption) *DocumentCache {
	t.Helper()
	reg := jsonapi.NewRegistry()
	reg.MustRegister(jsonapi.NewSchema[*note]("notes").
		Attribute("text", func(n *note) any { return n.Text }))
	reg.Freeze()
	return NewDocumentCache(c, jsonapi.NewEncoder(reg), opts...)
}

// brokenCache fails every operation
type brokenCache struct{}

func (brokenCache) Get(context.Context, string) ([]byte, error) { return nil, assert.AnError }
func (brokenCache) Set(context.Context, string, []byte, time.Duration) error {
	return assert.AnError
}
func (brokenCache) Delete(context.Context, string) error          { return assert.AnError }
func (brokenCache) Clear(context.Context) error                   { return assert.AnError }
func (brokenCache) Exists(context.Context, string) (bool, error) { return false, assert.AnError }
func (brokenCache) Close() error                                  { return nil }

func TestDocumentCache_HitAndInvalidate(t *testing.T) {
	mc, _ := newTestMemoryCache(t)
	dc := newTestDocumentCache(t, mc)
	ctx := context.Background()

	n := newNote("1", "first")
	body, err := dc.Encode(ctx, n, jsonapi.ForRead())
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":{"id":"1","type":"notes","attributes":{"text":"first"}}}`, string(body))

	ok, _ := mc.Exists(ctx, "notes:1:server-read")
	assert.True(t, ok)

	n.Text = "second"
	cached, err := dc.Encode(ctx, n, jsonapi.ForRead())
	require.NoError(t, err)
	assert.Equal(t, body, cached, "served from the cache")

	require.NoError(t, dc.Invalidate(ctx, "notes", "1"))
	fresh, err := dc.Encode(ctx, n, jsonapi.ForRead())
	require.NoError(t, err)
	assert.Contains(t, string(fresh), "second")
}

func TestDocumentCache_ModesAreSeparate(t *testing.T) {
	mc, _ := newTestMemoryCache(t)
	dc := newTestDocumentCache(t, mc)
	ctx := context.Background()

	n := newNote("1", "text")
	read, err := dc.Encode(ctx, n, jsonapi.ForRead())
	require.NoError(t, err)
	create, err := dc.Encode(ctx, n, jsonapi.ForCreate())
	require.NoError(t, err)

	assert.Contains(t, string(read), `"id":"1"`)
	assert.NotContains(t, string(create), `"id"`)
	for _, key := range []string{"notes:1:server-read", "notes:1:client-create"} {
		ok, err := mc.Exists(ctx, key)
		require.NoError(t, err)
		assert.True(t, ok, key)
	}
}

func TestDocumentCache_Bypass(t *testing.T) {
	mc, _ := newTestMemoryCache(t)
	dc := newTestDocumentCache(t, mc)
	ctx := context.Background()

	_, err := dc.Encode(ctx, newNote("", "draft"), jsonapi.ForRead())
	require.NoError(t, err)

	body, err := dc.Encode(ctx, newNote("1", "x"), jsonapi.ForRead(), jsonapi.WithMeta(map[string]any{"page": 1}))
	require.NoError(t, err)
	assert.Contains(t, string(body), `"meta":{"page":1}`)

	assert.Equal(t, 0, mc.Len())

	var nilNote *note
	body, err = dc.Encode(ctx, nilNote)
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":null}`, string(body))
}

func TestDocumentCache_Collection(t *testing.T) {
	mc, _ := newTestMemoryCache(t)
	dc := newTestDocumentCache(t, mc)
	ctx := context.Background()

	items := []jsonapi.Resource{newNote("1", "a"), newNote("2", "b")}
	body, err := dc.EncodeCollection(ctx, "notes", items, jsonapi.ForRead())
	require.NoError(t, err)
	assert.Contains(t, string(body), `"data":[`)

	key := CollectionKey("notes", jsonapi.ServerRead, []jsonapi.ResourceIdentifier{
		{Type: "notes", ID: "1"}, {Type: "notes", ID: "2"},
	})
	ok, _ := mc.Exists(ctx, key)
	assert.True(t, ok)

	require.NoError(t, dc.Invalidate(ctx, "notes", "2"))
	ok, _ = mc.Exists(ctx, key)
	assert.False(t, ok)
}

func TestDocumentCache_CollectionKeyedByItems(t *testing.T) {
	mc, _ := newTestMemoryCache(t)
	dc := newTestDocumentCache(t, mc)
	ctx := context.Background()

	first, err := dc.EncodeCollection(ctx, "notes", []jsonapi.Resource{newNote("1", "a")}, jsonapi.ForRead())
	require.NoError(t, err)
	second, err := dc.EncodeCollection(ctx, "notes", []jsonapi.Resource{newNote("2", "b"), newNote("3", "c")}, jsonapi.ForRead())
	require.NoError(t, err)

	assert.JSONEq(t, `{"data":[{"id":"1","type":"notes","attributes":{"text":"a"}}]}`, string(first))
	assert.JSONEq(t, `{"data":[
		{"id":"2","type":"notes","attributes":{"text":"b"}},
		{"id":"3","type":"notes","attributes":{"text":"c"}}
	]}`, string(second))

	again, err := dc.EncodeCollection(ctx, "notes", []jsonapi.Resource{newNote("1", "changed")}, jsonapi.ForRead())
	require.NoError(t, err)
	assert.Equal(t, first, again, "same members hit the cache")
}

func TestDocumentCache_CollectionInvalidatedByNewMember(t *testing.T) {
	mc, _ := newTestMemoryCache(t)
	dc := newTestDocumentCache(t, mc)
	ctx := context.Background()

	_, err := dc.EncodeCollection(ctx, "notes", []jsonapi.Resource{newNote("1", "a")}, jsonapi.ForRead())
	require.NoError(t, err)
	key := CollectionKey("notes", jsonapi.ServerRead, []jsonapi.ResourceIdentifier{{Type: "notes", ID: "1"}})

	// A resource outside every cached list still drops the lists of its type
	require.NoError(t, dc.Invalidate(ctx, "notes", "9"))
	ok, err := mc.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDocumentCache_CollectionWithoutIDsIsNotCached(t *testing.T) {
	mc, _ := newTestMemoryCache(t)
	dc := newTestDocumentCache(t, mc)

	body, err := dc.EncodeCollection(context.Background(), "notes", []jsonapi.Resource{newNote("1", "a"), newNote("", "draft")}, jsonapi.ForRead())
	require.NoError(t, err)
	assert.Contains(t, string(body), "draft")
	assert.Zero(t, mc.Len())
}

type owner struct {
	jsonapi.Model
	Name string
}

type book struct {
	jsonapi.Model
	Title string
	Owner jsonapi.ToOne[*owner]
}

func newLibraryCache(t *testing.T, c Cache) *DocumentCache {
	t.Helper()
	reg := jsonapi.NewRegistry()
	reg.MustRegister(
		jsonapi.NewSchema[*owner]("owners").
			Attribute("name", func(o *owner) any { return o.Name }),
		jsonapi.NewSchema[*book]("books").
			Attribute("title", func(b *book) any { return b.Title }).
			Relationship("owner", func(b *book) jsonapi.Relation { return b.Owner }),
	)
	reg.Freeze()
	return NewDocumentCache(c, jsonapi.NewEncoder(reg))
}

func TestDocumentCache_InvalidateRelatedResource(t *testing.T) {
	mc, _ := newTestMemoryCache(t)
	dc := newLibraryCache(t, mc)
	ctx := context.Background()

	o := &owner{Model: jsonapi.NewModel("owners", jsonapi.WithID("o1")), Name: "old"}
	b := &book{Model: jsonapi.NewModel("books", jsonapi.WithID("b1")), Title: "Dune", Owner: jsonapi.One(o)}

	body, err := dc.Encode(ctx, b, jsonapi.ForRead())
	require.NoError(t, err)
	assert.Contains(t, string(body), `"name":"old"`)

	list, err := dc.EncodeCollection(ctx, "books", []jsonapi.Resource{b}, jsonapi.ForRead())
	require.NoError(t, err)
	assert.Contains(t, string(list), `"name":"old"`)

	o.Name = "new"
	require.NoError(t, dc.Invalidate(ctx, "owners", "o1"))

	body, err = dc.Encode(ctx, b, jsonapi.ForRead())
	require.NoError(t, err)
	assert.Contains(t, string(body), `"included":[{"id":"o1","type":"owners","attributes":{"name":"new"}}]`)

	list, err = dc.EncodeCollection(ctx, "books", []jsonapi.Resource{b}, jsonapi.ForRead())
	require.NoError(t, err)
	assert.Contains(t, string(list), `"name":"new"`)
}

func TestDocumentCache_InvalidateLeavesUnrelatedDocuments(t *testing.T) {
	mc, _ := newTestMemoryCache(t)
	dc := newLibraryCache(t, mc)
	ctx := context.Background()

	o1 := &owner{Model: jsonapi.NewModel("owners", jsonapi.WithID("o1")), Name: "one"}
	o2 := &owner{Model: jsonapi.NewModel("owners", jsonapi.WithID("o2")), Name: "two"}
	b1 := &book{Model: jsonapi.NewModel("books", jsonapi.WithID("b1")), Owner: jsonapi.One(o1)}
	b2 := &book{Model: jsonapi.NewModel("books", jsonapi.WithID("b2")), Owner: jsonapi.One(o2)}

	_, err := dc.Encode(ctx, b1, jsonapi.ForRead())
	require.NoError(t, err)
	_, err = dc.Encode(ctx, b2, jsonapi.ForRead())
	require.NoError(t, err)

	require.NoError(t, dc.Invalidate(ctx, "owners", "o1"))

	ok, _ := mc.Exists(ctx, "books:b1:server-read")
	assert.False(t, ok)
	ok, _ = mc.Exists(ctx, "books:b2:server-read")
	assert.True(t, ok)
}

func TestDocumentCache_BrokenBackend(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	dc := newTestDocumentCache(t, brokenCache{}, WithLogger(zap.New(core)))

	body, err := dc.Encode(context.Background(), newNote("1", "x"), jsonapi.ForRead())
	require.NoError(t, err)
	assert.Contains(t, string(body), `"text":"x"`)
	assert.Equal(t, 1, logs.FilterMessage("document cache read failed").Len())

	assert.Error(t, dc.Invalidate(context.Background(), "notes", "1"))
	assert.Error(t, dc.Purge(context.Background()))
}

func TestDocumentCache_LogsHitsAndMisses(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	mc, _ := newTestMemoryCache(t)
	dc := newTestDocumentCache(t, mc, WithLogger(zap.New(core)), WithTTL(time.Hour))
	ctx := context.Background()

	n := newNote("1", "x")
	_, _ = dc.Encode(ctx, n, jsonapi.ForRead())
	_, _ = dc.Encode(ctx, n, jsonapi.ForRead())

	assert.Equal(t, 1, logs.FilterMessage("document cache miss").Len())
	assert.Equal(t, 1, logs.FilterMessage("document cache hit").Len())
}

func TestDocumentCache_EncodeError(t *testing.T) {
	mc, _ := newTestMemoryCache(t)
	reg := jsonapi.NewRegistry()
	reg.MustRegister(jsonapi.NewSchema[*note]("notes").
		Attribute("text", func(n *note) any { return func() {} }))
	dc := NewDocumentCache(mc, jsonapi.NewEncoder(reg))

	_, err := dc.Encode(context.Background(), newNote("1", "x"), jsonapi.ForRead())
	assert.ErrorIs(t, err, jsonapi.ErrInvalidValue)
	assert.Equal(t, 0, mc.Len())
}
