package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/sessioncache/internal/domain"
	"github.com/yungbote/sessioncache/internal/platform/logger"
)

// RedisStore keeps each record as a JSON string under "<prefix>:<type>:<id>".
// Apply watches every touched key and writes the batch in one MULTI/EXEC, so a
// concurrent change to any of them aborts the whole batch.
type RedisStore struct {
	rdb    *goredis.Client
	prefix string
	log    *logger.Logger
}

var (
	_ RecordStore = (*RedisStore)(nil)
	_ KeyRange    = (*RedisStore)(nil)
)

// NewRedisStore dials addr and pings it before returning.
func NewRedisStore(addr, prefix string, baseLog *logger.Logger) (*RedisStore, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisStoreFromClient(rdb, prefix, baseLog), nil
}

func NewRedisStoreFromClient(rdb *goredis.Client, prefix string, baseLog *logger.Logger) *RedisStore {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "sessioncache"
	}
	return &RedisStore{rdb: rdb, prefix: prefix, log: baseLog.With("store", "RedisStore")}
}

func (s *RedisStore) Driver() Driver { return DriverRedis }

func (s *RedisStore) Client() *goredis.Client { return s.rdb }

func (s *RedisStore) redisKey(key domain.EntityKey) string {
	return s.prefix + ":" + string(key.Type) + ":" + strconv.FormatInt(key.ID, 10)
}

func (s *RedisStore) Fetch(ctx context.Context, key domain.EntityKey) (domain.Record, error) {
	raw, err := s.rdb.Get(ctx, s.redisKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, NotFound(key)
		}
		return nil, err
	}
	rec, err := domain.NewRecord(key.Type)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, rec); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return rec, nil
}

func (s *RedisStore) Apply(ctx context.Context, writes []Write) error {
	if len(writes) == 0 {
		return nil
	}
	keys := make([]string, 0, len(writes))
	payloads := make([][]byte, 0, len(writes))
	for i, w := range writes {
		if err := validateWrite(i, w); err != nil {
			return err
		}
		raw, err := json.Marshal(w.Record)
		if err != nil {
			return Failure(fmt.Sprintf("write %d: encode %s", i, w.Key), err)
		}
		keys = append(keys, s.redisKey(w.Key))
		payloads = append(payloads, raw)
	}

	txf := func(tx *goredis.Tx) error {
		staged := map[string]bool{}
		for i, w := range writes {
			k := keys[i]
			present := staged[k]
			if !present {
				n, err := tx.Exists(ctx, k).Result()
				if err != nil {
					return err
				}
				present = n > 0
			}
			switch {
			case w.Op == OpInsert && present:
				return fmt.Errorf("write %d: duplicate key %s", i, w.Key)
			case w.Op == OpUpdate && !present:
				return fmt.Errorf("write %d: update of missing %s", i, w.Key)
			}
			staged[k] = true
		}
		_, err := tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			for i := range writes {
				pipe.Set(ctx, keys[i], payloads[i], 0)
			}
			return nil
		})
		return err
	}
	if err := s.rdb.Watch(ctx, txf, keys...); err != nil {
		s.log.Warn("batch aborted", "writes", len(writes), "error", err)
		return Failure("apply", err)
	}
	return nil
}

// MaxID scans "<prefix>:<type>:*" and returns the largest numeric id.
func (s *RedisStore) MaxID(ctx context.Context, t domain.EntityType) (int64, error) {
	base := s.prefix + ":" + string(t) + ":"
	var highest int64
	iter := s.rdb.Scan(ctx, 0, base+"*", 500).Iterator()
	for iter.Next(ctx) {
		id, err := strconv.ParseInt(strings.TrimPrefix(iter.Val(), base), 10, 64)
		if err != nil {
			continue
		}
		if id > highest {
			highest = id
		}
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("max id %s: %w", t, err)
	}
	return highest, nil
}

// Seed writes records unconditionally.
func (s *RedisStore) Seed(ctx context.Context, records ...domain.Record) error {
	for _, r := range records {
		raw, err := json.Marshal(r)
		if err != nil {
			return err
		}
		if err := s.rdb.Set(ctx, s.redisKey(domain.KeyOf(r)), raw, 0).Err(); err != nil {
			return err
		}
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
