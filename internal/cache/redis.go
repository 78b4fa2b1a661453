package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/campushub/campus-api/internal/models"
)

const (
	recentKeyPrefix = "conv:recent:"
	recentCap       = 100
	recentTTL       = 24 * time.Hour
)

// RecentMessages keeps the newest messages of each conversation in a redis
// list so the first page doesn't hit mongo. Cache errors are logged and
// swallowed; the store is the source of truth.
type RecentMessages struct {
	rdb *redis.Client
	log *zap.SugaredLogger
}

func NewRecentMessages(rdb *redis.Client, log *zap.SugaredLogger) *RecentMessages {
	return &RecentMessages{rdb: rdb, log: log}
}

func (c *RecentMessages) key(convID string) string { return recentKeyPrefix + convID }

func (c *RecentMessages) Push(ctx context.Context, convID string, m *models.Message) {
	b, err := json.Marshal(m)
	if err != nil {
		return
	}
	key := c.key(convID)
	pipe := c.rdb.TxPipeline()
	pipe.LPush(ctx, key, b)
	pipe.LTrim(ctx, key, 0, recentCap-1)
	pipe.Expire(ctx, key, recentTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		c.log.Warnw("recent cache push failed", "conversation_id", convID, "err", err)
	}
}

func (c *RecentMessages) Invalidate(ctx context.Context, convID string) {
	if err := c.rdb.Del(ctx, c.key(convID)).Err(); err != nil {
		c.log.Warnw("recent cache invalidate failed", "conversation_id", convID, "err", err)
	}
}

// GetPage returns the newest messages if the whole page is cached. A short
// list is a miss: it may just mean the conversation is older than the cache.
func (c *RecentMessages) GetPage(ctx context.Context, convID string, limit int64) ([]*models.Message, bool) {
	vals, err := c.rdb.LRange(ctx, c.key(convID), 0, limit-1).Result()
	if err != nil || int64(len(vals)) < limit {
		return nil, false
	}
	out := make([]*models.Message, 0, len(vals))
	for _, v := range vals {
		var m models.Message
		if err := json.Unmarshal([]byte(v), &m); err != nil {
			return nil, false
		}
		out = append(out, &m)
	}
	return out, true
}
