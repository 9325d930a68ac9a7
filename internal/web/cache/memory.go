package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryCache is a process-local cache with TTL support
type MemoryCache struct {
	data   sync.Map
	config CacheConfig
	now    func() time.Time
	cancel context.CancelFunc
}

type cacheItem struct {
	value      []byte
	expiration time.Time
}

func (i cacheItem) expired(now time.Time) bool {
	return !i.expiration.IsZero() && now.After(i.expiration)
}

// NewMemoryCache creates a memory cache with the default configuration
func NewMemoryCache() *MemoryCache {
	return NewMemoryCacheWithConfig(DefaultCacheConfig())
}

// NewMemoryCacheWithConfig creates a memory cache and starts its sweeper.
// Call Close to stop the sweeper.
func NewMemoryCacheWithConfig(config CacheConfig) *MemoryCache {
	ctx, cancel := context.WithCancel(context.Background())
	mc := &MemoryCache{
		config: config,
		now:    time.Now,
		cancel: cancel,
	}

	go mc.sweep(ctx, time.Minute)

	return mc
}

func (m *MemoryCache) key(k string) string {
	return m.config.Prefix + k
}

// load returns the live item stored under the prefixed key, evicting it when expired
func (m *MemoryCache) load(fullKey string) (cacheItem, bool) {
	v, ok := m.data.Load(fullKey)
	if !ok {
		return cacheItem{}, false
	}
	item := v.(cacheItem)
	if item.expired(m.now()) {
		m.data.Delete(fullKey)
		return cacheItem{}, false
	}
	return item, true
}

// Get retrieves a value from the cache
func (m *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	item, ok := m.load(m.key(key))
	if !ok {
		return nil, ErrCacheMiss{Key: key}
	}

	out := make([]byte, len(item.value))
	copy(out, item.value)
	return out, nil
}

// Set stores a copy of value
func (m *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if ttl == 0 {
		ttl = m.config.DefaultTTL
	}

	item := cacheItem{value: append([]byte(nil), value...)}
	if ttl > 0 {
		item.expiration = m.now().Add(ttl)
	}

	m.data.Store(m.key(key), item)
	return nil
}

// Delete removes a value from the cache
func (m *MemoryCache) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.data.Delete(m.key(key))
	return nil
}

// Clear removes all values from the cache
func (m *MemoryCache) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.data.Range(func(key, _ any) bool {
		m.data.Delete(key)
		return true
	})
	return nil
}

// Exists checks if a key exists in the cache
func (m *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, ok := m.load(m.key(key))
	return ok, nil
}

// Len returns the number of stored entries, including expired ones not yet swept
func (m *MemoryCache) Len() int {
	n := 0
	m.data.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Close stops the background sweeper
func (m *MemoryCache) Close() error {
	if m.cancel != nil {
		m.cancel()
	}
	return nil
}

func (m *MemoryCache) sweep(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.evictExpired()
		}
	}
}

func (m *MemoryCache) evictExpired() {
	now := m.now()
	m.data.Range(func(key, value any) bool {
		if value.(cacheItem).expired(now) {
			m.data.Delete(key)
		}
		return true
	})
}
