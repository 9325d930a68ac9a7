package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// clearBatch is the number of keys deleted per DEL during Clear
const clearBatch = 100

// RedisCache stores entries in redis under the configured prefix
type RedisCache struct {
	client *redis.Client
	config CacheConfig
}

// RedisConfig holds redis connection settings
type RedisConfig struct {
	// Addr is the server address (host:port)
	Addr     string
	Password string
	DB       int
	CacheConfig CacheConfig
}

// DefaultRedisConfig returns a local redis configuration
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:        "localhost:6379",
		CacheConfig: DefaultCacheConfig(),
	}
}

// NewRedisCacheWithConfig connects to redis and verifies the connection with a ping
func NewRedisCacheWithConfig(config RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis %s: %w", config.Addr, err)
	}

	return NewRedisCacheWithClient(client, config.CacheConfig), nil
}

// NewRedisCacheWithClient wraps an existing client
func NewRedisCacheWithClient(client *redis.Client, config CacheConfig) *RedisCache {
	return &RedisCache{
		client: client,
		config: config,
	}
}

func (r *RedisCache) key(k string) string {
	return r.config.Prefix + k
}

// Get returns the stored bytes or ErrCacheMiss
func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss{Key: key}
		}
		return nil, err
	}
	return value, nil
}

// Set stores a value in the cache
func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	switch {
	case ttl == 0:
		ttl = r.config.DefaultTTL
	case ttl < 0:
		ttl = 0 // redis treats zero as no expiration
	}
	return r.client.Set(ctx, r.key(key), value, ttl).Err()
}

// Delete drops key; a missing key is not an error
func (r *RedisCache) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}

// Clear removes every key under the prefix
func (r *RedisCache) Clear(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, r.config.Prefix+"*", clearBatch).Iterator()
	batch := make([]string, 0, clearBatch)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == clearBatch {
			if err := r.client.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return r.client.Del(ctx, batch...).Err()
	}
	return nil
}

// Exists reports whether key is stored
func (r *RedisCache) Exists(ctx context.Context, key string) (bool, error) {
	count, err := r.client.Exists(ctx, r.key(key)).Result()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Close closes the redis connection
func (r *RedisCache) Close() error {
	return r.client.Close()
}
