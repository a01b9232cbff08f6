package service

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/inkwell-journal/internal/journal"
	"github.com/iliyamo/inkwell-journal/internal/middleware"
)

// keyStore is the subset of *redis.Client the invalidator needs.
type keyStore interface {
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// CacheInvalidator drops every cached analytics response belonging to the
// owner of a changed entry.
type CacheInvalidator struct {
	rdb    keyStore
	prefix string
	log    *zap.Logger
}

// NewCacheInvalidator returns nil when rdb is nil; callers skip subscribing.
func NewCacheInvalidator(rdb *redis.Client, prefix string, log *zap.Logger) *CacheInvalidator {
	if rdb == nil {
		return nil
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CacheInvalidator{rdb: rdb, prefix: prefix, log: log.Named("cache-invalidator")}
}

// Listener matches journal.Listener.
func (c *CacheInvalidator) Listener(ctx context.Context, ev journal.EntryChanged) error {
	match := middleware.OwnerCachePrefix(c.prefix, ev.OwnerID) + "*"
	var cursor uint64
	removed := 0
	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, match, 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
			removed += len(keys)
		}
		if next == 0 {
			break
		}
		cursor = next
	}
	if removed > 0 {
		c.log.Debug("analytics cache invalidated", zap.Uint64("owner_id", ev.OwnerID), zap.Int("keys", removed))
	}
	return nil
}
