package persist

import (
	"context"
	"fmt"

	"github.com/Pritam-2002/firness-track/internal/appstate"
	"github.com/Pritam-2002/firness-track/internal/config"
	"github.com/Pritam-2002/firness-track/internal/db"

	"github.com/redis/go-redis/v9"
)

// New picks the snapshot backend named by cfg.StateBackend. The memory
// backend keeps nothing and yields a nil persister.
func New(ctx context.Context, cfg config.Config, pg db.Querier, rdb *redis.Client) (appstate.Persister, error) {
	switch cfg.StateBackend {
	case "", config.BackendMemory:
		return nil, nil
	case config.BackendRedis:
		if rdb == nil {
			return nil, fmt.Errorf("state backend redis: redis not configured")
		}
		return NewRedisBackend(rdb, cfg.StateKey), nil
	case config.BackendPostgres:
		if pg == nil {
			return nil, fmt.Errorf("state backend postgres: postgres not connected")
		}
		b := NewPostgresBackend(pg, cfg.StateKey)
		if err := b.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("migrate app_state: %w", err)
		}
		return b, nil
	}
	return nil, fmt.Errorf("unknown state backend %q", cfg.StateBackend)
}
