// Package cache stores encoded JSON:API documents in memory or redis
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Backend names accepted by New
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// ErrUnknownBackend is returned by New for an unsupported backend name
var ErrUnknownBackend = errors.New("unknown cache backend")

// Cache is a byte store with per-entry TTL
type Cache interface {
	// Get retrieves a value, returning ErrCacheMiss when absent or expired
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value; a zero ttl uses the backend default, a negative one never expires
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value
	Delete(ctx context.Context, key string) error

	// Clear removes every value under the cache prefix
	Clear(ctx context.Context) error

	// Exists checks if a key is present and not expired
	Exists(ctx context.Context, key string) (bool, error)

	// Close releases the backend
	Close() error
}

// CacheConfig holds common configuration for cache backends
type CacheConfig struct {
	// DefaultTTL is used when Set is called with a zero ttl
	DefaultTTL time.Duration
	// Prefix is prepended to all cache keys
	Prefix string
}

// DefaultCacheConfig returns a default cache configuration
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		DefaultTTL: 5 * time.Minute,
		Prefix:     "forge:",
	}
}

// Config selects and configures a backend
type Config struct {
	Backend string
	CacheConfig
	Redis RedisConfig
}

// New builds the backend named in cfg
func New(cfg Config) (Cache, error) {
	switch cfg.Backend {
	case "", BackendMemory:
		return NewMemoryCacheWithConfig(cfg.CacheConfig), nil
	case BackendRedis:
		rc := cfg.Redis
		rc.CacheConfig = cfg.CacheConfig
		return NewRedisCacheWithConfig(rc)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

// ErrCacheMiss is returned when a key is not found in the cache
type ErrCacheMiss struct {
	Key string
}

func (e ErrCacheMiss) Error() string {
	return "cache miss: " + e.Key
}

// IsCacheMiss checks if err is or wraps a cache miss
func IsCacheMiss(err error) bool {
	var miss ErrCacheMiss
	return errors.As(err, &miss)
}
