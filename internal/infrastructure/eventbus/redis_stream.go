package eventbus

import (
	"context"
	"strings"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
	"github.com/riskibarqy/battle-arena/internal/domain/event"
)

const defaultStreamMaxLen = 10000

// RedisStreamPublisher appends events to a capped Redis stream for
// downstream consumers such as the push gateway.
type RedisStreamPublisher struct {
	rdb    redis.UniversalClient
	stream string
	maxLen int64
}

func NewRedisStreamPublisher(rdb redis.UniversalClient, stream string, maxLen int64) *RedisStreamPublisher {
	stream = strings.TrimSpace(stream)
	if stream == "" {
		stream = "battle-arena:events"
	}
	if maxLen <= 0 {
		maxLen = defaultStreamMaxLen
	}
	return &RedisStreamPublisher{rdb: rdb, stream: stream, maxLen: maxLen}
}

func (p *RedisStreamPublisher) Publish(ctx context.Context, evt event.Event) error {
	data, err := sonic.Marshal(evt)
	if err != nil {
		return crerr.Wrap(err, "marshal stream event")
	}

	err = p.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: p.maxLen,
		Values: map[string]any{
			"event_id": evt.ID,
			"kind":     string(evt.Kind),
			"user_id":  evt.UserID,
			"data":     data,
		},
	}).Err()
	if err != nil {
		return crerr.Wrapf(err, "xadd %s", p.stream)
	}
	return nil
}
