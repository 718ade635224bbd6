package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/livioochertes/DiscountDining-sub003/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const recCacheKeyPrefix = "dietary:recs:"

// RecommendationCache is a best-effort hot layer in front of the database
// window query. Misses and redis errors are equivalent: the engine falls
// through to the database. A nil client disables the layer entirely.
type RecommendationCache struct {
	rdb *redis.Client
	log *zap.SugaredLogger
	ttl time.Duration
}

func NewRecommendationCache(rdb *redis.Client, log *zap.SugaredLogger, ttl time.Duration) *RecommendationCache {
	return &RecommendationCache{rdb: rdb, log: log, ttl: ttl}
}

func (c *RecommendationCache) Get(ctx context.Context, userID string) []models.Recommendation {
	if c == nil || c.rdb == nil {
		return nil
	}
	payload, err := c.rdb.Get(ctx, recCacheKeyPrefix+userID).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warnw("recommendation cache read failed", "error", err)
		}
		return nil
	}
	var recs []models.Recommendation
	if err := json.Unmarshal(payload, &recs); err != nil {
		c.log.Warnw("recommendation cache payload corrupt, dropping", "error", err)
		_ = c.rdb.Del(ctx, recCacheKeyPrefix+userID).Err()
		return nil
	}
	// The redis TTL matches the freshness window, but rows carry their own
	// hard expiry too, so re-check it.
	now := time.Now()
	fresh := recs[:0]
	for _, rec := range recs {
		if rec.ExpiresAt.After(now) {
			fresh = append(fresh, rec)
		}
	}
	return fresh
}

func (c *RecommendationCache) Set(ctx context.Context, userID string, recs []models.Recommendation) {
	if c == nil || c.rdb == nil || len(recs) == 0 {
		return
	}
	payload, err := json.Marshal(recs)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, recCacheKeyPrefix+userID, payload, c.ttl).Err(); err != nil {
		c.log.Warnw("recommendation cache write failed", "error", err)
	}
}
