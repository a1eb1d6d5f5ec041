// internal/app/store/sessions/redis.go
package sessions

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/information/internal/app/store/kvstore"
	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces session data in the key-value store.
const KeyPrefix = "session:"

// Key returns the key-value key for session id.
func Key(id string) string { return KeyPrefix + id }

// RedisBackend stores sessions as "session:<id>" with a TTL refreshed on
// every write.
type RedisBackend struct {
	client *redis.Client
}

// NewRedisBackend uses the given client; it does not open its own.
func NewRedisBackend(client *redis.Client) *RedisBackend {
	return &RedisBackend{client: client}
}

func (b *RedisBackend) Load(ctx context.Context, id string) ([]byte, bool, error) {
	data, err := b.client.Get(ctx, Key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, kvstore.Wrap(b.client, "get session", err)
	}
	return data, true, nil
}

func (b *RedisBackend) Save(ctx context.Context, id string, data []byte, ttl time.Duration) error {
	return kvstore.Wrap(b.client, "set session", b.client.Set(ctx, Key(id), data, ttl).Err())
}

func (b *RedisBackend) Delete(ctx context.Context, id string) error {
	return kvstore.Wrap(b.client, "delete session", b.client.Del(ctx, Key(id)).Err())
}
