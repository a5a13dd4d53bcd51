package lease

import (
	"context"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
	"github.com/riskibarqy/battle-arena/internal/platform/id"
)

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLease is a single-holder lease built on SET NX PX.
type RedisLease struct {
	rdb    redis.UniversalClient
	prefix string
	ids    id.Generator
}

func NewRedisLease(rdb redis.UniversalClient, prefix string, ids id.Generator) *RedisLease {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "battle-arena:lease:"
	}
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	return &RedisLease{rdb: rdb, prefix: prefix, ids: ids}
}

// TryAcquire returns ok=false when another holder owns name. The returned
// release func is safe to call after the lease has already expired.
func (l *RedisLease) TryAcquire(ctx context.Context, name string, ttl time.Duration) (func(context.Context) error, bool, error) {
	if ttl <= 0 {
		return nil, false, crerr.New("lease ttl must be > 0")
	}
	token, err := l.ids.NewID()
	if err != nil {
		return nil, false, crerr.Wrap(err, "generate lease token")
	}

	key := l.prefix + name
	ok, err := l.rdb.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, crerr.Wrapf(err, "acquire lease %s", key)
	}
	if !ok {
		return nil, false, nil
	}

	release := func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.rdb, []string{key}, token).Err(); err != nil {
			return crerr.Wrapf(err, "release lease %s", key)
		}
		return nil
	}
	return release, true, nil
}
