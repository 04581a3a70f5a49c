package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"todo-sync/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const todosKeyPrefix = "todos:"

// ListCache stores the serialized todo list for a given store revision.
// Revisions are only meaningful within one store instance, so keys are
// namespaced by an instance id.
type ListCache interface {
	GetTodos(ctx context.Context, revision uint64) ([]byte, bool)
	SetTodos(ctx context.Context, revision uint64, payload []byte)
	Ping(ctx context.Context) error
}

// Redis is a ListCache backed by a Redis server.
type Redis struct {
	client    *redis.Client
	ttl       time.Duration
	namespace string
}

// NewRedis parses url, connects and pings. namespace identifies the store
// instance whose revisions are cached.
func NewRedis(ctx context.Context, url string, poolSize int, ttl time.Duration, namespace string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	if poolSize > 0 {
		opts.PoolSize = poolSize
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	logger.Info(ctx, "Redis client initialized", "pool_size", opts.PoolSize)
	return &Redis{client: client, ttl: ttl, namespace: namespace}, nil
}

// Key returns the cache key of the list at a store revision.
func Key(namespace string, revision uint64) string {
	return fmt.Sprintf("%s%s:rev:%d", todosKeyPrefix, namespace, revision)
}

// GetTodos reads the raw todo list. Returns (nil, false) on miss or error.
func (r *Redis) GetTodos(ctx context.Context, revision uint64) ([]byte, bool) {
	b, err := r.client.Get(ctx, Key(r.namespace, revision)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		logger.Debug(ctx, "Redis get todos failed", "error", err)
		return nil, false
	}
	return b, true
}

// SetTodos writes the raw todo list with the configured TTL.
func (r *Redis) SetTodos(ctx context.Context, revision uint64, payload []byte) {
	if err := r.client.Set(ctx, Key(r.namespace, revision), payload, r.ttl).Err(); err != nil {
		logger.Debug(ctx, "Redis set todos failed", "error", err)
	}
}

// Ping checks connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}

// Nop is the ListCache used when REDIS_URL is not set.
type Nop struct{}

func (Nop) GetTodos(context.Context, uint64) ([]byte, bool) { return nil, false }
func (Nop) SetTodos(context.Context, uint64, []byte)        {}
func (Nop) Ping(context.Context) error                      { return nil }
