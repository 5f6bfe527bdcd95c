package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Pritam-2002/firness-track/internal/appstate"

	"github.com/redis/go-redis/v9"
)

// RedisBackend keeps the snapshot as one JSON value under key.
type RedisBackend struct {
	client *redis.Client
	key    string
}

func NewRedisBackend(client *redis.Client, key string) *RedisBackend {
	return &RedisBackend{client: client, key: key}
}

func (b *RedisBackend) Load(ctx context.Context) (appstate.State, bool, error) {
	raw, err := b.client.Get(ctx, b.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return appstate.State{}, false, nil
	}
	if err != nil {
		return appstate.State{}, false, fmt.Errorf("redis get %s: %w", b.key, err)
	}
	var st appstate.State
	if err := json.Unmarshal(raw, &st); err != nil {
		return appstate.State{}, false, fmt.Errorf("decode snapshot: %w", err)
	}
	return st, true, nil
}

func (b *RedisBackend) Save(ctx context.Context, st appstate.State) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := b.client.Set(ctx, b.key, raw, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", b.key, err)
	}
	return nil
}
