package sequence

import (
	"context"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"
)

// nextScript raises the counter to the floor when it is missing or behind,
// then increments it.
var nextScript = goredis.NewScript(`
local cur = tonumber(redis.call("GET", KEYS[1]) or "0")
local floor = tonumber(ARGV[1])
if cur < floor then
  redis.call("SET", KEYS[1], floor)
end
return redis.call("INCR", KEYS[1])
`)

// Redis is a sequence backed by INCR so ids stay unique across processes.
type Redis struct {
	rdb   *goredis.Client
	key   string
	start int64
}

func NewRedis(rdb *goredis.Client, key string, start int64) *Redis {
	key = strings.TrimSpace(key)
	if key == "" {
		key = "sessioncache:seq"
	}
	return &Redis{rdb: rdb, key: key, start: start}
}

func (r *Redis) Next(ctx context.Context) (int64, error) {
	if r == nil || r.rdb == nil {
		return 0, fmt.Errorf("redis sequence not initialized")
	}
	id, err := nextScript.Run(ctx, r.rdb, []string{r.key}, r.start).Int64()
	if err != nil {
		return 0, fmt.Errorf("incr sequence: %w", err)
	}
	return id, nil
}
