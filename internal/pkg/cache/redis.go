// Package cache persists cart payloads in Redis under a service-scoped key.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a key-value store with a sliding TTL: every Save pushes the
// expiry out again, so an active cart never expires mid-session.
type RedisStore struct {
	client      *redis.Client
	serviceName string
	ttl         time.Duration
}

func NewRedisStore(client *redis.Client, serviceName string, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client:      client,
		serviceName: serviceName,
		ttl:         ttl,
	}
}

// Dial connects to addr and checks the server answers.
func Dial(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("cache: ping %s: %w", addr, err)
	}
	return client, nil
}

// Load returns nil, nil when the key is absent.
func (r *RedisStore) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.GenerateKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache: get %q: %w", key, err)
	}
	return data, nil
}

func (r *RedisStore) Save(ctx context.Context, key string, data []byte) error {
	if err := r.client.Set(ctx, r.GenerateKey(key), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("cache: set %q: %w", key, err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.GenerateKey(key)).Err(); err != nil {
		return fmt.Errorf("cache: delete %q: %w", key, err)
	}
	return nil
}

// GenerateKey namespaces key with the service name, e.g. "storefront:cart:abc".
func (r *RedisStore) GenerateKey(key string) string {
	return fmt.Sprintf("%s:%s", r.serviceName, key)
}
