package services

import (
	"context"
	"fmt"
	"time"

	"chat-gateway/internal/database"

	"github.com/redis/go-redis/v9"
)

// RateLimitService implements a sliding-window counter over a redis sorted
// set, one set per limited key.
type RateLimitService struct {
	client *database.RedisClient
}

func NewRateLimitService(client *database.RedisClient) *RateLimitService {
	return &RateLimitService{client: client}
}

// Allow records one hit against key and reports whether the number of hits
// inside the window stays under limit.
func (s *RateLimitService) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	windowStart := now.Add(-window).Unix()

	pipe := s.client.GetClient().Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", windowStart))
	count := pipe.ZCard(ctx, key)
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.Unix()), Member: now.UnixNano()})
	pipe.Expire(ctx, key, window)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}

	return count.Val() < int64(limit), nil
}
