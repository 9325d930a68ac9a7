package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dosanma1/forge-sub000/pkg/jsonapi"
)

// DocumentCache memoises encoded documents per resource and mode
type DocumentCache struct {
	cache   Cache
	encoder *jsonapi.Encoder
	ttl     time.Duration
	logger  *zap.Logger

	// mu serialises index updates against invalidation
	mu sync.Mutex
}

// DocumentCacheOption configures a DocumentCache
type DocumentCacheOption func(*DocumentCache)

// WithTTL overrides the backend default TTL for stored documents
func WithTTL(ttl time.Duration) DocumentCacheOption {
	return func(d *DocumentCache) {
		d.ttl = ttl
	}
}

// WithLogger sets the logger used for hit and miss events
func WithLogger(logger *zap.Logger) DocumentCacheOption {
	return func(d *DocumentCache) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDocumentCache wraps c and enc
func NewDocumentCache(c Cache, enc *jsonapi.Encoder, opts ...DocumentCacheOption) *DocumentCache {
	if enc == nil {
		enc = jsonapi.NewEncoder(nil)
	}
	d := &DocumentCache{
		cache:   c,
		encoder: enc,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Encoder returns the wrapped encoder
func (d *DocumentCache) Encoder() *jsonapi.Encoder {
	return d.encoder
}

// Encode returns the marshalled document of r, encoding and storing it on a miss.
// Resources without an id and requests with root meta are never cached.
func (d *DocumentCache) Encode(ctx context.Context, r jsonapi.Resource, opts ...jsonapi.Option) ([]byte, error) {
	cfg := jsonapi.NewConfig(opts...)
	encode := func() (*jsonapi.Document, error) {
		return d.encoder.Encode(r, opts...)
	}

	if isNilResource(r) || r.ID() == "" || len(cfg.Meta) > 0 {
		return marshal(encode())
	}
	primary := jsonapi.ResourceIdentifier{Type: d.typeName(r), ID: r.ID()}
	return d.fetch(ctx, DocumentKey(primary.Type, primary.ID, cfg.Mode), "", []jsonapi.ResourceIdentifier{primary}, encode)
}

// EncodeCollection returns the marshalled collection document of items.
// The entry is keyed by typ and the ordered item identifiers; lists holding
// a resource without an id and requests with root meta are never cached.
func (d *DocumentCache) EncodeCollection(ctx context.Context, typ string, items []jsonapi.Resource, opts ...jsonapi.Option) ([]byte, error) {
	cfg := jsonapi.NewConfig(opts...)
	encode := func() (*jsonapi.Document, error) {
		return d.encoder.EncodeCollection(items, opts...)
	}

	if items == nil || len(cfg.Meta) > 0 {
		return marshal(encode())
	}
	members := make([]jsonapi.ResourceIdentifier, 0, len(items))
	for _, item := range items {
		if isNilResource(item) {
			continue
		}
		if item.ID() == "" {
			return marshal(encode())
		}
		members = append(members, jsonapi.ResourceIdentifier{Type: d.typeName(item), ID: item.ID()})
	}
	return d.fetch(ctx, CollectionKey(typ, cfg.Mode, members), typ, members, encode)
}

// Invalidate drops every cached document embedding typ/id, whether as the
// primary resource or in included, and every stored collection of typ
func (d *DocumentCache) Invalidate(ctx context.Context, typ, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, mode := range jsonapi.Modes() {
		if err := d.cache.Delete(ctx, DocumentKey(typ, id, mode)); err != nil {
			return err
		}
	}
	for _, index := range []string{refsKey(typ, id), collectionRefsKey(typ)} {
		if err := d.dropIndexed(ctx, index); err != nil {
			return err
		}
	}
	d.logger.Debug("invalidated documents", zap.String("type", typ), zap.String("id", id))
	return nil
}

// Purge drops every stored document
func (d *DocumentCache) Purge(ctx context.Context) error {
	return d.cache.Clear(ctx)
}

// fetch serves key from the cache or encodes and stores it. The stored key
// is recorded under every resource the document embeds, and under the
// collection index of collectionOf when set.
func (d *DocumentCache) fetch(ctx context.Context, key, collectionOf string, primaries []jsonapi.ResourceIdentifier, encode func() (*jsonapi.Document, error)) ([]byte, error) {
	body, err := d.cache.Get(ctx, key)
	if err == nil {
		d.logger.Debug("document cache hit", zap.String("key", key))
		return body, nil
	}
	if !IsCacheMiss(err) {
		// A failing backend degrades to encoding on every request
		d.logger.Warn("document cache read failed", zap.String("key", key), zap.Error(err))
		return marshal(encode())
	}

	d.logger.Debug("document cache miss", zap.String("key", key))
	doc, err := encode()
	if err != nil {
		return nil, err
	}
	body, err = jsonapi.Marshal(doc)
	if err != nil {
		return nil, err
	}

	indexes := make([]string, 0, len(primaries)+1)
	for _, ref := range embedded(primaries, doc) {
		indexes = append(indexes, refsKey(ref.Type, ref.ID))
	}
	if collectionOf != "" {
		indexes = append(indexes, collectionRefsKey(collectionOf))
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.cache.Set(ctx, key, body, d.ttl); err != nil {
		d.logger.Warn("document cache write failed", zap.String("key", key), zap.Error(err))
		return body, nil
	}
	for _, index := range indexes {
		if err := d.addIndexed(ctx, index, key); err != nil {
			// An unindexed entry could outlive an invalidation, so drop it
			d.logger.Warn("document cache index failed", zap.String("key", key), zap.String("index", index), zap.Error(err))
			_ = d.cache.Delete(ctx, key)
			break
		}
	}
	return body, nil
}

// addIndexed records key in the index stored under index
func (d *DocumentCache) addIndexed(ctx context.Context, index, key string) error {
	keys, err := d.readIndex(ctx, index)
	if err != nil {
		return err
	}
	if slices.Contains(keys, key) {
		return nil
	}
	data, err := json.Marshal(append(keys, key))
	if err != nil {
		return err
	}
	return d.cache.Set(ctx, index, data, d.ttl)
}

// dropIndexed deletes every key recorded under index and the index itself
func (d *DocumentCache) dropIndexed(ctx context.Context, index string) error {
	keys, err := d.readIndex(ctx, index)
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := d.cache.Delete(ctx, key); err != nil {
			return err
		}
	}
	return d.cache.Delete(ctx, index)
}

func (d *DocumentCache) readIndex(ctx context.Context, index string) ([]string, error) {
	data, err := d.cache.Get(ctx, index)
	if IsCacheMiss(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var keys []string
	if err := json.Unmarshal(data, &keys); err != nil {
		return nil, fmt.Errorf("corrupt document index %s: %w", index, err)
	}
	return keys, nil
}

// embedded lists the primaries followed by the included resources of doc
func embedded(primaries []jsonapi.ResourceIdentifier, doc *jsonapi.Document) []jsonapi.ResourceIdentifier {
	refs := append([]jsonapi.ResourceIdentifier(nil), primaries...)
	if doc == nil {
		return refs
	}
	for _, inc := range doc.Included {
		refs = append(refs, inc.Identifier())
	}
	return refs
}

func marshal(doc *jsonapi.Document, err error) ([]byte, error) {
	if err != nil {
		return nil, err
	}
	return jsonapi.Marshal(doc)
}

func (d *DocumentCache) typeName(r jsonapi.Resource) string {
	if name, ok := d.encoder.Registry().TypeName(reflect.TypeOf(r)); ok {
		return name
	}
	return r.Type()
}

func isNilResource(r jsonapi.Resource) bool {
	if r == nil {
		return true
	}
	rv := reflect.ValueOf(r)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
