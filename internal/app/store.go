package app

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/sessioncache/internal/data/sequence"
	"github.com/yungbote/sessioncache/internal/data/store"
	"github.com/yungbote/sessioncache/internal/domain"
	"github.com/yungbote/sessioncache/internal/platform/logger"
)

func openStore(cfg Config, log *logger.Logger) (store.RecordStore, error) {
	switch cfg.StoreDriver {
	case store.DriverMemory:
		return store.NewMemoryStore(log), nil
	case store.DriverSQLite:
		return store.OpenSQLite(cfg.SQLitePath, log)
	case store.DriverPostgres:
		return store.OpenPostgres(cfg.PostgresDSN, log)
	case store.DriverRedis:
		return store.NewRedisStore(cfg.RedisAddr, cfg.RedisPrefix, log)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

// openSequence returns the id sequence and, when it opened its own redis
// connection, a closer for it.
func openSequence(ctx context.Context, cfg Config, st store.RecordStore) (sequence.Sequence, func() error, error) {
	start, err := sequenceFloor(ctx, cfg.SequenceStart, st)
	if err != nil {
		return nil, nil, err
	}
	if cfg.SequenceDriver != SequenceRedis {
		return sequence.NewCounter(start), nil, nil
	}
	key := cfg.RedisPrefix + ":seq:product"
	if rs, ok := st.(*store.RedisStore); ok {
		return sequence.NewRedis(rs.Client(), key, start), nil, nil
	}
	rdb := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("redis sequence ping: %w", err)
	}
	return sequence.NewRedis(rdb, key, start), rdb.Close, nil
}

// sequenceFloor returns the larger of the configured start and the highest
// product id the store already holds.
func sequenceFloor(ctx context.Context, start int64, st store.RecordStore) (int64, error) {
	kr, ok := st.(store.KeyRange)
	if !ok {
		return start, nil
	}
	highest, err := kr.MaxID(ctx, domain.EntityProduct)
	if err != nil {
		return 0, fmt.Errorf("read highest product id: %w", err)
	}
	if highest > start {
		return highest, nil
	}
	return start, nil
}
