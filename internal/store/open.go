package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/eventflow/backend/config"
	"github.com/eventflow/backend/pkg/database"
)

// Open builds the store selected by cfg.Store.Driver. rdb is required for the redis driver and otherwise ignored.
// Closing the returned store releases the connections Open created.
func Open(ctx context.Context, cfg *config.Config, rdb *redis.Client, logger *zap.Logger) (Store, error) {
	switch cfg.Store.Driver {
	case config.StoreMemory:
		logger.Warn("using in-memory store; data is lost on restart")
		return NewMemory(), nil
	case config.StorePostgres:
		pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		return NewPostgres(pool), nil
	case config.StoreRedis:
		if rdb == nil {
			return nil, fmt.Errorf("redis store needs a redis client")
		}
		return NewRedis(rdb), nil
	case config.StoreMongo:
		client, err := database.NewMongoClient(ctx, cfg.Mongo.URI, logger)
		if err != nil {
			return nil, err
		}
		return NewMongo(client, cfg.Mongo.Database), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
