package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/MrSnakeDoc/launchpad/internal/domain"
	"github.com/MrSnakeDoc/launchpad/internal/index"
	"github.com/MrSnakeDoc/launchpad/internal/logger"
	redisstore "github.com/MrSnakeDoc/launchpad/internal/store/redis"
)

// SnapshotReader loads a persisted catalog snapshot.
type SnapshotReader interface {
	LoadCatalog(ctx context.Context) ([]*domain.Program, time.Time, error)
}

// RedisSyncer warms the memory index from the Redis snapshot on startup
type RedisSyncer struct {
	store  SnapshotReader
	index  *index.MemoryIndex
	logger logger.Logger
}

// NewRedisSyncer creates a new Redis syncer
func NewRedisSyncer(
	store SnapshotReader,
	idx *index.MemoryIndex,
	log logger.Logger,
) *RedisSyncer {
	return &RedisSyncer{
		store:  store,
		index:  idx,
		logger: log,
	}
}

// Sync loads the snapshot from Redis into the memory index. A missing
// snapshot is not an error.
func (rs *RedisSyncer) Sync(ctx context.Context) error {
	rs.logger.Info("warming catalog from redis")

	programs, at, err := rs.store.LoadCatalog(ctx)
	if errors.Is(err, redisstore.ErrNoSnapshot) {
		rs.logger.Info("no catalog snapshot in redis")
		return nil
	}
	if err != nil {
		return err
	}

	rs.index.Replace(programs, at)

	rs.logger.Info("catalog warmed from redis",
		logger.Int("count", len(programs)),
		logger.String("taken_at", at.Format(time.RFC3339)))

	return nil
}
